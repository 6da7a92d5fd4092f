package layout

import "fmt"

// AreaSize is the extent of a rectangle in pixels.
type AreaSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Position is the top-left corner of a rectangle in pixels.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// WindowBounds is a rectangle on the display surface: a position plus the
// size of its content area.
type WindowBounds struct {
	Position Position `json:"position"`
	Content  AreaSize `json:"content"`
}

// Bounds builds a WindowBounds from its four components.
func Bounds(x, y, width, height int) WindowBounds {
	return WindowBounds{
		Position: Position{X: x, Y: y},
		Content:  AreaSize{Width: width, Height: height},
	}
}

// Contains reports whether p lies inside b. The right and bottom edges are
// exclusive, so adjacent tiles never both contain the same point.
func (b WindowBounds) Contains(p Position) bool {
	return b.Position.X <= p.X &&
		b.Position.Y <= p.Y &&
		p.X < b.Position.X+b.Content.Width &&
		p.Y < b.Position.Y+b.Content.Height
}

// String renders b as "WxH+X+Y", the X11 geometry notation.
func (b WindowBounds) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", b.Content.Width, b.Content.Height, b.Position.X, b.Position.Y)
}

// satSub subtracts b from a, clamping at zero.
func satSub(a, b int) int {
	if b >= a {
		return 0
	}
	return a - b
}
