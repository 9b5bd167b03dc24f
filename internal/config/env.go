package config

import (
	"os"
	"strconv"
	"time"
)

// ShamirShares returns the total number of shares `split` generates for a
// secret. Configurable via META_SECRET_SHAMIR_SHARES; defaults to 3.
func ShamirShares() int {
	return intEnv("META_SECRET_SHAMIR_SHARES", 3)
}

// ShamirThreshold returns the minimum number of shares required to recover
// a secret. Configurable via META_SECRET_SHAMIR_THRESHOLD; defaults to 2.
func ShamirThreshold() int {
	return intEnv("META_SECRET_SHAMIR_THRESHOLD", 2)
}

// PollInterval is the default interval between unattended gateway sync
// cycles. Configurable via META_SECRET_POLL_INTERVAL_SECONDS; defaults
// to 30s. CLI-driven sync is single-shot regardless of this value.
func PollInterval() time.Duration {
	return time.Duration(intEnv("META_SECRET_POLL_INTERVAL_SECONDS", 30)) * time.Second
}

// SyncTimeout is the per-RPC timeout a gateway uses for a sync request.
// Configurable via META_SECRET_SYNC_TIMEOUT_SECONDS; defaults to 5s, per
// the sync protocol's default RPC timeout.
func SyncTimeout() time.Duration {
	return time.Duration(intEnv("META_SECRET_SYNC_TIMEOUT_SECONDS", 5)) * time.Second
}

// SyncMaxElapsed bounds how long the gateway's retry-with-backoff loop
// will keep retrying a failed sync cycle before giving up. Configurable
// via META_SECRET_SYNC_MAX_ELAPSED_SECONDS; defaults to 60s. A zero,
// negative or non-numeric setting also yields the 60s default, so the
// result is never zero (unbounded).
func SyncMaxElapsed() time.Duration {
	return time.Duration(intEnv("META_SECRET_SYNC_MAX_ELAPSED_SECONDS", 60)) * time.Second
}

// RelayAddr is the base URL of the relay server a device synchronizes
// with. Configurable via META_SECRET_RELAY_ADDR; defaults to
// http://127.0.0.1:8080.
func RelayAddr() string {
	if v := os.Getenv("META_SECRET_RELAY_ADDR"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}

// RelayListenAddr is the address the relay server's HTTP listener binds
// to. Configurable via META_SECRET_RELAY_LISTEN_ADDR; defaults to
// :8080.
func RelayListenAddr() string {
	if v := os.Getenv("META_SECRET_RELAY_LISTEN_ADDR"); v != "" {
		return v
	}
	return ":8080"
}

func intEnv(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
