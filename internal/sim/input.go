package sim

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputHandler tracks the mouse in logical coordinates.
type InputHandler struct {
	mouseX, mouseY  int
	leftJustPressed bool
	scale           float64
}

// NewInputHandler creates an input handler.
func NewInputHandler() *InputHandler {
	return &InputHandler{scale: 1.0}
}

// SetScale sets the HiDPI factor used to unscale cursor coordinates.
func (ih *InputHandler) SetScale(scale float64) {
	if scale < 1.0 {
		scale = 1.0
	}
	ih.scale = scale
}

// Update refreshes the input state. Call once per frame.
func (ih *InputHandler) Update() {
	rawX, rawY := ebiten.CursorPosition()
	ih.mouseX = int(float64(rawX) / ih.scale)
	ih.mouseY = int(float64(rawY) / ih.scale)
	ih.leftJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
}

// MousePosition returns the cursor position in logical coordinates.
func (ih *InputHandler) MousePosition() (int, int) {
	return ih.mouseX, ih.mouseY
}

// LeftJustPressed reports whether the left button went down this frame.
func (ih *InputHandler) LeftJustPressed() bool {
	return ih.leftJustPressed
}
