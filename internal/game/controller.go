// Package game wires the event fabric to the engine and the archive:
// one Controller handler turns inbound events into engine calls and
// engine results into outbound events.
package game

import (
	"log"

	"github.com/boopdotpng/auto-chessboard/internal/engine"
	"github.com/boopdotpng/auto-chessboard/internal/events"
	"github.com/boopdotpng/auto-chessboard/internal/storage"
)

// Controller owns the engine on behalf of the bus. The bus's single
// delivery goroutine is the only caller, so no locking is needed.
type Controller struct {
	eng   *engine.Engine
	bus   *events.Bus
	store *storage.Storage // nil disables archiving
}

// NewController returns a controller ready to register on the bus.
func NewController(eng *engine.Engine, bus *events.Bus, store *storage.Storage) *Controller {
	return &Controller{eng: eng, bus: bus, store: store}
}

// HandleEvent dispatches one inbound event to the engine and publishes
// the results. Outbound events pass through untouched.
func (c *Controller) HandleEvent(ev events.Event) error {
	switch e := ev.(type) {
	case events.SetBoardPosition:
		if err := c.eng.SetPosition(e.FEN); err != nil {
			c.reject(err)
			return nil
		}
		log.Printf("[game] position set: %s", e.FEN)
		c.bus.Publish(events.BoardPositionUpdated{FEN: c.eng.FEN()})
	case events.MovePiece:
		c.finish(c.eng.Command(e.From, e.To))
	case events.BoardChange:
		c.finish(c.eng.Observe(e.Mask, e.State))
	case events.Promotion:
		c.finish(c.eng.ConfirmPromotion(e.Piece, e.Square))
	case events.UndoLastMove:
		fen, err := c.eng.Undo()
		if err != nil {
			c.reject(err)
			return nil
		}
		c.bus.Publish(events.BoardPositionUpdated{FEN: fen})
	case events.RequestBoardPosition:
		c.bus.Publish(events.BoardPositionUpdated{FEN: c.eng.FEN()})
	case events.RequestPgn:
		c.bus.Publish(events.SendPgn{PGN: c.eng.PGN()})
	}
	return nil
}

// finish publishes the outcome of one mutating engine call.
func (c *Controller) finish(sum *engine.MoveSummary, err error) {
	if err != nil {
		c.reject(err)
		return
	}
	if sum == nil {
		return // no move attempt
	}
	if sum.Pending != nil {
		c.bus.Publish(events.PromotionPrompt{Request: *sum.Pending})
		return
	}
	c.bus.Publish(events.MoveApplied{Summary: *sum})
	c.bus.Publish(events.BoardPositionUpdated{FEN: sum.FEN})
	if sum.Outcome != nil {
		c.gameOver(*sum.Outcome, sum.FEN)
	}
}

func (c *Controller) reject(err error) {
	log.Printf("[game] rejected: %v", err)
	c.bus.Publish(events.InvalidMove{Reason: err.Error()})
}

func (c *Controller) gameOver(out engine.Outcome, fen string) {
	pgn := c.eng.PGN()
	log.Printf("[game] over: %s by %s", out.Result, out.Method)
	c.bus.Publish(events.GameEnded{Outcome: out, FEN: fen, PGN: pgn})

	if c.store == nil {
		return
	}
	id, err := c.store.ArchiveGame(pgn, fen, out.Result.String(), out.Method, c.eng.MoveCount())
	if err != nil {
		log.Printf("[game] archive failed: %v", err)
		return
	}
	log.Printf("[game] archived game %s", id)
}
