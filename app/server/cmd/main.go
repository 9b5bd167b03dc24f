// Package main runs the meta-secret relay server: the event store
// embedders talk to over the sync protocol. It never holds a device's
// private key material — it is a dumb, append-only event relay.
package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/meta-secret/meta-secret/internal/config"
	metalog "github.com/meta-secret/meta-secret/internal/log"
	"github.com/meta-secret/meta-secret/internal/store"
	"github.com/meta-secret/meta-secret/internal/store/boltstore"
	"github.com/meta-secret/meta-secret/internal/syncproto"
)

const appName = "meta-secret relay"

func main() {
	backend := flag.String("backend", "memory", "event store backend: memory or bolt")
	boltPath := flag.String("bolt-path", "", "bbolt file path when --backend=bolt (defaults to the config data folder)")
	listenAddr := flag.String("listen", "", "HTTP listen address (defaults to META_SECRET_RELAY_LISTEN_ADDR or :8080)")
	flag.Parse()

	metalog.Log().Info(appName, "msg", appName, "version", config.Version)

	repo, closeRepo, err := openRepository(*backend, *boltPath)
	if err != nil {
		metalog.FatalF("%s: failed to open repository: %s", appName, err.Error())
	}
	defer closeRepo()

	addr := *listenAddr
	if addr == "" {
		addr = config.RelayListenAddr()
	}

	mux := http.NewServeMux()
	syncproto.RegisterRoutes(mux, repo)

	metalog.Log().Info(appName, "msg", "starting", "addr", addr, "backend", *backend)
	if err := http.ListenAndServe(addr, mux); err != nil {
		metalog.FatalF("%s: failed to serve: %s", appName, err.Error())
	}
}

func openRepository(backend, boltPath string) (store.Repository, func(), error) {
	switch backend {
	case "", "memory":
		return store.NewMemoryRepository(), func() {}, nil
	case "bolt":
		path := boltPath
		if path == "" {
			path = config.DataFolder() + string(os.PathSeparator) + "relay.bolt"
		}
		db, err := boltstore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	default:
		metalog.FatalF("unknown backend %q", backend)
		return nil, nil, nil
	}
}
