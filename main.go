// auto-chessboard simulator: drives the board's state engine from a
// clickable stand-in for the hall-sensor matrix.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/boopdotpng/auto-chessboard/internal/engine"
	"github.com/boopdotpng/auto-chessboard/internal/events"
	"github.com/boopdotpng/auto-chessboard/internal/game"
	"github.com/boopdotpng/auto-chessboard/internal/sim"
	"github.com/boopdotpng/auto-chessboard/internal/storage"
)

var settle = flag.Duration("settle", 0, "quiet window before a board change settles (0 = stored preference)")

func main() {
	flag.Parse()

	store, err := storage.NewStorage()
	if err != nil {
		log.Printf("storage unavailable, games will not be archived: %v", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	window := *settle
	if window == 0 {
		window = time.Second
		if store != nil {
			if prefs, err := store.LoadPreferences(); err == nil {
				window = time.Duration(prefs.SettleMillis) * time.Millisecond
			}
		}
	}

	bus := events.NewBus()
	bus.Register(game.NewController(engine.NewEngine(), bus, store).HandleEvent)

	app := sim.NewApp(bus, window)
	bus.Register(app.HandleEvent)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Run(ctx)

	ebiten.SetWindowSize(sim.ScreenWidth, sim.ScreenHeight)
	ebiten.SetWindowTitle("auto-chessboard")

	if err := ebiten.RunGame(app); err != nil {
		log.Fatal(err)
	}
}
