package sim

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/boopdotpng/auto-chessboard/internal/board"
)

const (
	panelPad    = 16
	promoButton = 56
	promoGap    = 8
	traySize    = 26
)

var promoChoices = [4]board.PieceType{board.Queen, board.Rook, board.Bishop, board.Knight}

// Panel draws the right-hand strip: status, promotion picker, move
// transcript, capture tray, and key help.
type Panel struct {
	app *App
}

// NewPanel creates the panel for an app.
func NewPanel(app *App) *Panel {
	return &Panel{app: app}
}

func (p *Panel) promoRect(i int) (x, y, w, h int) {
	x = BoardSize + panelPad + i*(promoButton+promoGap)
	return x, 96, promoButton, promoButton
}

// ChoiceAt maps a click to a promotion piece while the picker is up.
func (p *Panel) ChoiceAt(mx, my int) (board.PieceType, bool) {
	if p.app.prompt == nil {
		return 0, false
	}
	for i, pt := range promoChoices {
		x, y, w, h := p.promoRect(i)
		if mx >= x && mx < x+w && my >= y && my < y+h {
			return pt, true
		}
	}
	return 0, false
}

// Draw renders the whole panel.
func (p *Panel) Draw(screen *ebiten.Image, r *Renderer) {
	th := r.Theme()
	vector.DrawFilledRect(screen, r.s(BoardSize), 0, r.s(PanelWidth), r.s(ScreenHeight), th.PanelColor, false)

	x := BoardSize + panelPad
	r.drawText(screen, "auto-chessboard", x, 16, boldFace, th.TextColor)

	status, c := p.status(th)
	r.drawText(screen, status, x, 44, regularFace, c)

	if p.app.prompt != nil {
		p.drawPicker(screen, r)
	}
	p.drawTranscript(screen, r)
	p.drawTray(screen, r)
	p.drawHelp(screen, r)
	p.drawFooter(screen, r)
}

func (p *Panel) status(th *Theme) (string, color.RGBA) {
	switch {
	case p.app.result != nil:
		out := p.app.result.Outcome
		return fmt.Sprintf("Game over: %s %s", out.Method, out.Result), th.AlertColor
	case p.app.prompt != nil:
		return fmt.Sprintf("Promotion on %s: pick a piece", p.app.prompt.Request.Square), th.TextColor
	case p.app.pos != nil && p.app.pos.SideToMove == board.Black:
		return "Black to move", th.TextColor
	default:
		return "White to move", th.TextColor
	}
}

func (p *Panel) drawPicker(screen *ebiten.Image, r *Renderer) {
	th := r.Theme()
	r.drawText(screen, "Promote to:", BoardSize+panelPad, 74, regularFace, th.MutedText)

	pc := p.app.prompt.Request.Color
	for i, pt := range promoChoices {
		x, y, w, h := p.promoRect(i)
		vector.DrawFilledRect(screen, r.s(x), r.s(y), r.s(w), r.s(h), th.ButtonColor, false)
		factor := float64(w) / float64(r.sprites.Size()) * r.scale
		r.sprites.drawScaled(screen, board.NewPiece(pt, pc), int(r.s(x)), int(r.s(y)), factor)
	}
}

func (p *Panel) drawTranscript(screen *ebiten.Image, r *Renderer) {
	th := r.Theme()
	x := BoardSize + panelPad
	r.drawText(screen, "Moves", x, 176, regularFace, th.MutedText)

	lines := wrapText(p.app.transcript, regularFace, float64(PanelWidth-2*panelPad))
	const maxLines = 11
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	for i, line := range lines {
		r.drawText(screen, line, x, 198+i*18, regularFace, th.TextColor)
	}
}

func (p *Panel) drawTray(screen *ebiten.Image, r *Renderer) {
	th := r.Theme()
	x := BoardSize + panelPad
	r.drawText(screen, "Tray", x, 420, regularFace, th.MutedText)

	for i, piece := range p.app.tray {
		col, row := i%10, i/10
		factor := float64(traySize) / float64(r.sprites.Size()) * r.scale
		px := x + col*(traySize+2)
		py := 444 + row*(traySize+2)
		r.sprites.drawScaled(screen, piece, int(r.s(px)), int(r.s(py)), factor)
	}
}

func (p *Panel) drawHelp(screen *ebiten.Image, r *Renderer) {
	th := r.Theme()
	x := BoardSize + panelPad
	help := []string{
		"click: lift or place  Esc: put back",
		"panel click: drop into the tray",
		"N: new game  U: undo  P: log PGN",
	}
	for i, line := range help {
		r.drawText(screen, line, x, 516+i*16, faceWithSize(11), th.MutedText)
	}
}

func (p *Panel) drawFooter(screen *ebiten.Image, r *Renderer) {
	th := r.Theme()
	x := BoardSize + panelPad

	if p.app.toast != "" {
		r.drawText(screen, p.app.toast, x, 576, regularFace, th.AlertColor)
	}

	// FEN split after the placement field so both halves fit.
	parts := strings.SplitN(p.app.fen, " ", 2)
	small := faceWithSize(10)
	r.drawText(screen, parts[0], x, 604, small, th.MutedText)
	if len(parts) > 1 {
		r.drawText(screen, parts[1], x, 618, small, th.MutedText)
	}
}

// wrapText greedily wraps s into lines no wider than maxWidth.
func wrapText(s string, face *text.GoTextFace, maxWidth float64) []string {
	var lines []string
	var cur string
	for _, word := range strings.Fields(s) {
		cand := word
		if cur != "" {
			cand = cur + " " + word
		}
		if w, _ := measureText(cand, face); w > maxWidth && cur != "" {
			lines = append(lines, cur)
			cur = word
		} else {
			cur = cand
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
