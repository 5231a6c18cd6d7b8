// Interactive demo: UI buttons whose clicks broadcast through multicast
// delegates to a shared scoreboard. The "drop scoreboard" button
// destroys the subscriber to show dead bindings being skipped live.
package main

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"delegates/delegate"
	"delegates/ref"
)

type buttonState int

const (
	buttonNormal buttonState = iota
	buttonHovered
	buttonPressed
)

// button is a minimal clickable rectangle with a multicast OnClick
// delegate, click detection press-and-release style.
type button struct {
	rect       rl.Rectangle
	label      string
	state      buttonState
	wasPressed bool

	OnClick delegate.Delegate
}

func newButton(x, y float32, label string) *button {
	return &button{
		rect:  rl.NewRectangle(x, y, 180, 44),
		label: label,
	}
}

func (b *button) handleInput(mousePos rl.Vector2, down, released bool) {
	isHovered := rl.CheckCollisionPointRec(mousePos, b.rect)

	if isHovered {
		if down {
			b.state = buttonPressed
			b.wasPressed = true
		} else {
			b.state = buttonHovered
		}

		// Click: released while hovering and pressed on this button
		if released && b.wasPressed {
			b.OnClick.Broadcast()
			b.wasPressed = false
		}
	} else {
		b.state = buttonNormal
		if released {
			b.wasPressed = false
		}
	}
}

func (b *button) draw() {
	color := rl.NewColor(60, 60, 70, 255)
	switch b.state {
	case buttonHovered:
		color = rl.NewColor(80, 80, 95, 255)
	case buttonPressed:
		color = rl.NewColor(100, 100, 120, 255)
	}

	rl.DrawRectangleRec(b.rect, color)
	rl.DrawRectangleLinesEx(b.rect, 1, rl.NewColor(100, 100, 115, 255))

	textWidth := rl.MeasureText(b.label, 20)
	x := int32(b.rect.X) + (int32(b.rect.Width)-textWidth)/2
	y := int32(b.rect.Y) + (int32(b.rect.Height)-20)/2
	rl.DrawText(b.label, x, y, 20, rl.RayWhite)
}

// scoreboard is the delegate subscriber; both buttons bind methods on
// the same instance.
type scoreboard struct {
	score int
}

func (s *scoreboard) addOne() { s.score++ }
func (s *scoreboard) addTen() { s.score += 10 }

var (
	opAddOne = delegate.NewOp("scoreboard.addOne", (*scoreboard).addOne)
	opAddTen = delegate.NewOp("scoreboard.addTen", (*scoreboard).addTen)
)

func main() {
	rl.InitWindow(640, 360, "Multicast Delegate Demo")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	board := ref.NewSharedFinalizer(&scoreboard{}, func(s *scoreboard) {
		fmt.Printf("scoreboard destroyed at score %d\n", s.score)
	})
	boardView := board.Downgrade()
	dropped := false

	addOneBtn := newButton(40, 80, "+1")
	addTenBtn := newButton(40, 140, "+10")
	dropBtn := newButton(40, 200, "drop scoreboard")

	delegate.Add(&addOneBtn.OnClick, board, opAddOne)
	delegate.Add(&addTenBtn.OnClick, board, opAddTen)

	for !rl.WindowShouldClose() {
		mousePos := rl.GetMousePosition()
		down := rl.IsMouseButtonDown(rl.MouseLeftButton)
		released := rl.IsMouseButtonReleased(rl.MouseLeftButton)

		addOneBtn.handleInput(mousePos, down, released)
		addTenBtn.handleInput(mousePos, down, released)
		dropBtn.handleInput(mousePos, down, released)

		// The drop button is app logic, not a subscriber: destroy the
		// scoreboard once, leaving its bindings behind as dead weight.
		if dropBtn.state == buttonPressed && !dropped {
			board.Release()
			dropped = true
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(30, 30, 36, 255))

		rl.DrawText("Click buttons to broadcast to the scoreboard", 40, 30, 20, rl.LightGray)

		addOneBtn.draw()
		addTenBtn.draw()
		dropBtn.draw()

		if view, ok := boardView.Lock(); ok {
			rl.DrawText(fmt.Sprintf("score: %d", view.Get().score), 300, 110, 30, rl.RayWhite)
			view.Release()
		} else {
			rl.DrawText("scoreboard destroyed", 300, 110, 20, rl.Red)
			rl.DrawText("clicks are skipped silently", 300, 140, 20, rl.Gray)
		}

		rl.DrawText(fmt.Sprintf("+1 bindings: %d   +10 bindings: %d",
			addOneBtn.OnClick.Len(), addTenBtn.OnClick.Len()), 40, 280, 20, rl.Gray)

		rl.EndDrawing()
	}
}
