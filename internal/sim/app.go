package sim

import (
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/boopdotpng/auto-chessboard/internal/board"
	"github.com/boopdotpng/auto-chessboard/internal/events"
	"github.com/boopdotpng/auto-chessboard/internal/sense"
)

const (
	ScreenWidth  = 960
	ScreenHeight = 640
	BoardSize    = 640
	SquareSize   = BoardSize / 8
	PanelWidth   = ScreenWidth - BoardSize
)

// App implements ebiten.Game. It owns the simulated physical plane
// (piece objects, occupancy sensing, settle debouncing) and mirrors the
// engine's view of the game from bus events. It never mutates game
// state directly; every move travels the same occupancy path the real
// sensor matrix uses.
type App struct {
	bus *events.Bus
	deb *sense.Debouncer

	// physical plane
	phys     [64]board.Piece
	hand     board.Piece
	handFrom board.Square
	tray     []board.Piece

	// engine's view, rebuilt from bus events
	pos        *board.Position
	fen        string
	transcript string
	prompt     *events.PromotionPrompt
	result     *events.GameEnded
	toast      string
	toastUntil time.Time

	incoming chan events.Event

	renderer *Renderer
	input    *InputHandler
	panel    *Panel
	scale    float64
}

// NewApp creates the simulator with pieces in the start position.
// Register HandleEvent on the bus before running.
func NewApp(bus *events.Bus, settle time.Duration) *App {
	a := &App{
		bus:      bus,
		renderer: NewRenderer(BoardSize, SquareSize),
		input:    NewInputHandler(),
		incoming: make(chan events.Event, 64),
		fen:      board.StartFEN,
		scale:    1.0,
	}
	a.panel = NewPanel(a)

	pos := board.NewPosition()
	a.pos = pos
	for sq := board.A1; sq <= board.H8; sq++ {
		a.phys[sq] = pos.PieceAt(sq)
	}
	a.deb = sense.NewDebouncer(settle, pos.AllOccupied)
	return a
}

// HandleEvent queues engine-side events for the next frame. It runs on
// the bus goroutine; Update applies the queue on the game loop.
func (a *App) HandleEvent(ev events.Event) error {
	switch ev.(type) {
	case events.BoardPositionUpdated, events.SendPgn, events.PromotionPrompt,
		events.InvalidMove, events.GameEnded:
		a.incoming <- ev
	}
	return nil
}

// Update advances one frame: input, queued bus events, and the sensor
// sweep.
func (a *App) Update() error {
	a.input.SetScale(a.scale)
	a.input.Update()

	a.drainEvents()
	a.handleKeys()
	a.handleClick()

	if ev, ok := a.deb.Sample(a.occupancy(), time.Now()); ok {
		a.bus.Publish(ev)
	}

	if a.toast != "" && time.Now().After(a.toastUntil) {
		a.toast = ""
	}
	return nil
}

func (a *App) drainEvents() {
	for {
		select {
		case ev := <-a.incoming:
			a.apply(ev)
		default:
			return
		}
	}
}

func (a *App) apply(ev events.Event) {
	switch e := ev.(type) {
	case events.BoardPositionUpdated:
		a.resync(e.FEN)
		a.prompt = nil
		a.bus.Publish(events.RequestPgn{})
	case events.SendPgn:
		a.transcript = e.PGN
	case events.PromotionPrompt:
		prompt := e
		a.prompt = &prompt
	case events.InvalidMove:
		a.toast = e.Reason
		a.toastUntil = time.Now().Add(3 * time.Second)
	case events.GameEnded:
		result := e
		a.result = &result
	}
}

// resync snaps the physical plane to the engine position, standing in
// for the robot restoring the board after undo or reset.
func (a *App) resync(fen string) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		log.Printf("[sim] unparseable position update: %v", err)
		return
	}
	a.pos = pos
	a.fen = fen
	for sq := board.A1; sq <= board.H8; sq++ {
		a.phys[sq] = pos.PieceAt(sq)
	}
	a.hand = board.NoPiece
	a.deb.Reset(pos.AllOccupied)
}

var promoKeys = map[ebiten.Key]board.PieceType{
	ebiten.KeyQ: board.Queen,
	ebiten.KeyR: board.Rook,
	ebiten.KeyB: board.Bishop,
	ebiten.KeyN: board.Knight,
}

func (a *App) handleKeys() {
	if a.prompt != nil {
		for key, pt := range promoKeys {
			if inpututil.IsKeyJustPressed(key) {
				a.bus.Publish(events.Promotion{Piece: pt, Square: a.prompt.Request.Square})
			}
		}
		return
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		a.tray = a.tray[:0]
		a.result = nil
		a.toast = ""
		a.bus.Publish(events.SetBoardPosition{FEN: board.StartFEN})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyU) {
		a.bus.Publish(events.UndoLastMove{})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		log.Printf("[sim] pgn: %s", a.transcript)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && a.hand != board.NoPiece {
		if a.phys[a.handFrom] == board.NoPiece {
			a.phys[a.handFrom] = a.hand
			a.hand = board.NoPiece
		}
	}
}

func (a *App) handleClick() {
	if !a.input.LeftJustPressed() {
		return
	}
	mx, my := a.input.MousePosition()

	if mx >= BoardSize {
		if a.prompt != nil {
			if pt, ok := a.panel.ChoiceAt(mx, my); ok {
				a.bus.Publish(events.Promotion{Piece: pt, Square: a.prompt.Request.Square})
				return
			}
		}
		// Dropping a held piece on the panel retires it to the tray,
		// the physical equivalent of a captured piece leaving play.
		if a.hand != board.NoPiece {
			a.tray = append(a.tray, a.hand)
			a.hand = board.NoPiece
		}
		return
	}

	sq := a.renderer.ScreenToSquare(mx, my)
	if sq == board.NoSquare {
		return
	}
	if a.hand == board.NoPiece {
		if p := a.phys[sq]; p != board.NoPiece {
			a.phys[sq] = board.NoPiece
			a.hand = p
			a.handFrom = sq
		}
		return
	}
	if a.phys[sq] == board.NoPiece {
		a.phys[sq] = a.hand
		a.hand = board.NoPiece
	}
}

// occupancy folds the physical piece layer into the sensor view.
func (a *App) occupancy() board.Bitboard {
	var occ board.Bitboard
	for sq := board.A1; sq <= board.H8; sq++ {
		if a.phys[sq] != board.NoPiece {
			occ |= board.SquareBB(sq)
		}
	}
	return occ
}

// Draw renders the frame.
func (a *App) Draw(screen *ebiten.Image) {
	a.renderer.SetScale(a.scale)
	screen.Fill(a.renderer.Theme().Background)
	a.renderer.DrawBoard(screen)

	if a.prompt != nil {
		a.renderer.HighlightSquare(screen, a.prompt.Request.Square, a.renderer.Theme().PromptColor)
	}
	if a.pos != nil && a.pos.InCheck() {
		a.renderer.HighlightSquare(screen, a.pos.KingSquare[a.pos.SideToMove], a.renderer.Theme().CheckColor)
	}

	a.renderer.DrawPieces(screen, &a.phys)
	a.renderer.DrawTouched(screen, a.deb.Pending())

	if a.hand != board.NoPiece {
		mx, my := a.input.MousePosition()
		a.renderer.DrawHeldPiece(screen, a.hand, mx, my)
	}

	a.panel.Draw(screen, a.renderer)
}

// Layout reports the scaled screen size for HiDPI displays.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.scale = ebiten.Monitor().DeviceScaleFactor()
	if a.scale < 1.0 {
		a.scale = 1.0
	}
	return int(float64(ScreenWidth) * a.scale), int(float64(ScreenHeight) * a.scale)
}
