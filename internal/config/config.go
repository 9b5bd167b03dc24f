// Package config provides configuration-related functionality for
// meta-secret, including version constants and directory management for
// storing device credentials, the event log backend, and recovered
// secrets on disk.
package config

import (
	"os"
	"path/filepath"
)

const Version = "0.1.0"

// DataFolder returns the path to the directory where a device stores its
// event log backend file and device credentials. It is created with
// restrictive permissions on first use.
func DataFolder() string {
	path := filepath.Join(dataRoot(), "data")
	if err := os.MkdirAll(path, 0700); err != nil {
		panic(err)
	}
	return path
}

// RecoveryFolder returns the path to the directory where the `recover`
// and `show` CLI commands write a recovered secret, one file per secret
// name.
func RecoveryFolder() string {
	path := filepath.Join(dataRoot(), "recover")
	if err := os.MkdirAll(path, 0700); err != nil {
		panic(err)
	}
	return path
}

func dataRoot() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "/tmp"
	}
	return filepath.Join(homeDir, ".meta-secret")
}
