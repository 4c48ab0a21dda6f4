// boardlink runs the headless daemon that bridges the board's state
// engine to the companion app: wire frames over websocket, optionally
// also over stdin/stdout for a serial bridge.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/boopdotpng/auto-chessboard/internal/engine"
	"github.com/boopdotpng/auto-chessboard/internal/events"
	"github.com/boopdotpng/auto-chessboard/internal/game"
	"github.com/boopdotpng/auto-chessboard/internal/link"
	"github.com/boopdotpng/auto-chessboard/internal/storage"
)

var (
	addr       = flag.String("addr", ":8080", "websocket listen address")
	dataDir    = flag.String("data", "", "database directory (default: per-user data dir)")
	stdio      = flag.Bool("stdio", false, "also speak the wire protocol on stdin/stdout")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	store, err := openStorage(*dataDir)
	if err != nil {
		log.Printf("storage unavailable, games will not be archived: %v", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	bus := events.NewBus()
	bus.Register(game.NewController(engine.NewEngine(), bus, store).HandleEvent)

	server := link.NewServer(bus)
	bus.Register(server.HandleEvent)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Run(ctx)

	if *stdio {
		go func() {
			if err := link.RunStdio(ctx, bus, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("stdio link: %v", err)
			}
		}()
	}

	httpServer := &http.Server{Addr: *addr, Handler: server.Router()}
	go func() {
		log.Printf("listening on %s", *addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Printf("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func openStorage(dir string) (*storage.Storage, error) {
	if dir != "" {
		return storage.NewStorageAt(dir)
	}
	return storage.NewStorage()
}
