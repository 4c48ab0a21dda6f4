package sim

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/boopdotpng/auto-chessboard/internal/board"
)

// Theme defines the color scheme for the simulator.
type Theme struct {
	LightSquare color.RGBA
	DarkSquare  color.RGBA
	TouchedDot  color.RGBA
	PromptColor color.RGBA
	CheckColor  color.RGBA
	Background  color.RGBA
	PanelColor  color.RGBA
	TextColor   color.RGBA
	MutedText   color.RGBA
	AlertColor  color.RGBA
	ButtonColor color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		LightSquare: color.RGBA{240, 217, 181, 255},
		DarkSquare:  color.RGBA{181, 136, 99, 255},
		TouchedDot:  color.RGBA{235, 170, 60, 230},
		PromptColor: color.RGBA{150, 110, 220, 150},
		CheckColor:  color.RGBA{255, 100, 100, 180},
		Background:  color.RGBA{40, 44, 52, 255},
		PanelColor:  color.RGBA{48, 52, 62, 255},
		TextColor:   color.RGBA{220, 220, 220, 255},
		MutedText:   color.RGBA{150, 155, 165, 255},
		AlertColor:  color.RGBA{235, 110, 100, 255},
		ButtonColor: color.RGBA{60, 64, 72, 255},
	}
}

// Renderer handles all drawing operations.
type Renderer struct {
	sprites    *SpriteManager
	theme      *Theme
	boardSize  int
	squareSize int
	scale      float64
}

// NewRenderer creates a renderer for a board of the given pixel size.
func NewRenderer(boardSize, squareSize int) *Renderer {
	return &Renderer{
		sprites:    NewSpriteManager(squareSize),
		theme:      DefaultTheme(),
		boardSize:  boardSize,
		squareSize: squareSize,
		scale:      1.0,
	}
}

// SetScale sets the HiDPI scale factor for rendering.
func (r *Renderer) SetScale(scale float64) {
	r.scale = scale
}

func (r *Renderer) s(v int) float32 {
	return float32(float64(v) * r.scale)
}

// DrawBoard draws the squares.
func (r *Renderer) DrawBoard(screen *ebiten.Image) {
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			x := r.s(file * r.squareSize)
			y := r.s((7 - rank) * r.squareSize) // rank 1 at the bottom

			c := r.theme.LightSquare
			if (rank+file)%2 == 0 {
				c = r.theme.DarkSquare
			}
			vector.DrawFilledRect(screen, x, y, r.s(r.squareSize), r.s(r.squareSize), c, false)
		}
	}
}

// DrawPieces draws the physical piece layer.
func (r *Renderer) DrawPieces(screen *ebiten.Image, phys *[64]board.Piece) {
	for sq := board.A1; sq <= board.H8; sq++ {
		p := phys[sq]
		if p == board.NoPiece {
			continue
		}
		x, y := r.SquareToScreen(sq)
		r.sprites.drawScaled(screen, p, int(r.s(x)), int(r.s(y)), r.scale)
	}
}

// DrawHeldPiece draws the piece in hand centered on the cursor.
func (r *Renderer) DrawHeldPiece(screen *ebiten.Image, p board.Piece, mouseX, mouseY int) {
	if p == board.NoPiece {
		return
	}
	half := int(r.s(r.squareSize)) / 2
	r.sprites.drawScaled(screen, p, int(r.s(mouseX))-half, int(r.s(mouseY))-half, r.scale)
}

// DrawTouched marks every square the open sensor event has seen.
func (r *Renderer) DrawTouched(screen *ebiten.Image, mask board.Bitboard) {
	for _, sq := range mask.Squares() {
		x, y := r.SquareToScreen(sq)
		cx := r.s(x) + r.s(r.squareSize)/2
		cy := r.s(y) + r.s(r.squareSize) - r.s(r.squareSize)*0.12
		vector.DrawFilledCircle(screen, cx, cy, r.s(r.squareSize)*0.07, r.theme.TouchedDot, false)
	}
}

// HighlightSquare draws a colored overlay on one square.
func (r *Renderer) HighlightSquare(screen *ebiten.Image, sq board.Square, c color.RGBA) {
	if sq == board.NoSquare {
		return
	}
	x, y := r.SquareToScreen(sq)
	vector.DrawFilledRect(screen, r.s(x), r.s(y), r.s(r.squareSize), r.s(r.squareSize), c, false)
}

// SquareToScreen converts a board square to logical screen coordinates.
func (r *Renderer) SquareToScreen(sq board.Square) (int, int) {
	x := sq.File() * r.squareSize
	y := (7 - sq.Rank()) * r.squareSize
	return x, y
}

// ScreenToSquare converts logical screen coordinates to a board square.
func (r *Renderer) ScreenToSquare(x, y int) board.Square {
	if x < 0 || x >= r.boardSize || y < 0 || y >= r.boardSize {
		return board.NoSquare
	}
	file := x / r.squareSize
	rank := 7 - (y / r.squareSize)
	return board.NewSquare(file, rank)
}

// Theme returns the current theme.
func (r *Renderer) Theme() *Theme {
	return r.theme
}

func (r *Renderer) drawText(screen *ebiten.Image, s string, x, y int, face *text.GoTextFace, c color.Color) {
	if face == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Scale(r.scale, r.scale)
	op.GeoM.Translate(float64(r.s(x)), float64(r.s(y)))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}
