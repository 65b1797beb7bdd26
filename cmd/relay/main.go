// Package main starts the relay: load configuration, open the store, wire
// the composition root, and serve HTTP/WebSocket until interrupted.
// Grounded on the teacher's top-level main.go.
package main

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/pkg/profile"

	"beacon.dev/app/config"
	"beacon.dev/app/relay"
	"beacon.dev/server"
	"beacon.dev/utils/chk"
	"beacon.dev/utils/context"
	"beacon.dev/utils/interrupt"
	"beacon.dev/utils/log"
)

func main() {
	cfg, err := config.New()
	if chk.T(err) {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n\n", err)
		config.PrintHelp(cfg, os.Stderr)
		os.Exit(1)
	}
	if config.HelpRequested() {
		config.PrintHelp(cfg, os.Stderr)
		os.Exit(0)
	}

	log.SetLevel(log.ParseLevel(cfg.LogLevel))
	log.I.F("starting %s", cfg.AppName)

	if cfg.Pprof {
		defer profile.Start(profile.MemProfile).Stop()
		go func() {
			chk.E(http.ListenAndServe("127.0.0.1:6060", nil))
		}()
	}

	ctx, cancel := context.Cancel(context.Bg())
	r, err := relay.New(ctx, cancel, cfg)
	if chk.E(err) {
		os.Exit(1)
	}
	if err = r.Init(); chk.E(err) {
		os.Exit(1)
	}

	srv := server.New(r, r, "0.1.0")
	interrupt.AddHandler(func() {
		r.Shutdown()
		srv.Shutdown(ctx)
	})
	if err = srv.Start(cfg.Listen, cfg.Port); chk.E(err) {
		log.F.F("server terminated: %v", err)
	}
}
