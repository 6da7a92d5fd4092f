// Package term draws a layout onto a character grid.
//
// Every placed window becomes a box scaled from screen pixels to terminal
// cells, titled with its client. The focused item is drawn with heavy
// lines, empty slots with dashed ones. A pending cursor is drawn in red:
// an into cursor as a bar over the gap it would fill (from
// [layout.Layout.InterBounds]), a split cursor as a bar along the side of
// its item where the new window would appear.
package term

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stacktile/pkg/layout"
	"github.com/matzehuels/stacktile/pkg/wm"
)

// Grid sizes beyond these are clamped.
const (
	MaxWidth  = 500
	MaxHeight = 200
)

// Options sets the grid size in cells.
type Options struct {
	Width  int
	Height int
}

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("167")).Bold(true)
	focusStyle  = lipgloss.NewStyle().Bold(true)
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type borderSet struct {
	tl, tr, bl, br, h, v rune
}

var (
	lightBorder  = borderSet{'┌', '┐', '└', '┘', '─', '│'}
	heavyBorder  = borderSet{'┏', '┓', '┗', '┛', '━', '┃'}
	dashedBorder = borderSet{'┌', '┐', '└', '┘', '┄', '┆'}
)

// canvas is a grid of runes, each tagged with an index into styles. Index
// 0 means unstyled.
type canvas struct {
	w, h   int
	runes  []rune
	tags   []int
	styles []lipgloss.Style

	origin layout.Position
	sx, sy float64
}

func newCanvas(opts Options, screen layout.WindowBounds) *canvas {
	w := min(max(opts.Width, 1), MaxWidth)
	h := min(max(opts.Height, 1), MaxHeight)
	c := &canvas{
		w:      w,
		h:      h,
		runes:  make([]rune, w*h),
		tags:   make([]int, w*h),
		styles: []lipgloss.Style{lipgloss.NewStyle()},
		origin: screen.Position,
	}
	for i := range c.runes {
		c.runes[i] = ' '
	}
	if screen.Content.Width > 0 {
		c.sx = float64(w) / float64(screen.Content.Width)
	}
	if screen.Content.Height > 0 {
		c.sy = float64(h) / float64(screen.Content.Height)
	}
	return c
}

func (c *canvas) style(s lipgloss.Style) int {
	c.styles = append(c.styles, s)
	return len(c.styles) - 1
}

func (c *canvas) set(x, y int, r rune, tag int) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.runes[y*c.w+x] = r
	c.tags[y*c.w+x] = tag
}

// cells maps pixel bounds to an inclusive cell rectangle. Degenerate
// bounds still cover one cell.
func (c *canvas) cells(b layout.WindowBounds) (x0, y0, x1, y1 int) {
	px := func(v int, s float64, o int) int { return int(math.Round(float64(v-o) * s)) }
	x0 = px(b.Position.X, c.sx, c.origin.X)
	y0 = px(b.Position.Y, c.sy, c.origin.Y)
	x1 = max(px(b.Position.X+b.Content.Width, c.sx, c.origin.X)-1, x0)
	y1 = max(px(b.Position.Y+b.Content.Height, c.sy, c.origin.Y)-1, y0)
	return min(x0, c.w-1), min(y0, c.h-1), min(x1, c.w-1), min(y1, c.h-1)
}

func (c *canvas) box(b layout.WindowBounds, set borderSet, tag int) (x0, y0, x1, y1 int) {
	x0, y0, x1, y1 = c.cells(b)
	if x1-x0 < 1 || y1-y0 < 1 {
		c.fill(x0, y0, x1, y1, set.v, tag)
		return
	}
	for x := x0 + 1; x < x1; x++ {
		c.set(x, y0, set.h, tag)
		c.set(x, y1, set.h, tag)
	}
	for y := y0 + 1; y < y1; y++ {
		c.set(x0, y, set.v, tag)
		c.set(x1, y, set.v, tag)
	}
	c.set(x0, y0, set.tl, tag)
	c.set(x1, y0, set.tr, tag)
	c.set(x0, y1, set.bl, tag)
	c.set(x1, y1, set.br, tag)
	return
}

func (c *canvas) fill(x0, y0, x1, y1 int, r rune, tag int) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.set(x, y, r, tag)
		}
	}
}

// label writes text inside the box, on its first inner row, truncated to
// fit.
func (c *canvas) label(x0, y0, x1, y1 int, text string, tag int) {
	if x1-x0 < 2 || y1-y0 < 2 {
		return
	}
	room := x1 - x0 - 1
	runes := []rune(text)
	if len(runes) > room {
		if room > 1 {
			runes = append(runes[:room-1], '…')
		} else {
			runes = runes[:room]
		}
	}
	start := x0 + 1 + (room-len(runes))/2
	for i, r := range runes {
		c.set(start+i, y0+1, r, tag)
	}
}

func (c *canvas) String() string {
	var sb strings.Builder
	for y := 0; y < c.h; y++ {
		row := y * c.w
		for x := 0; x < c.w; {
			tag := c.tags[row+x]
			end := x
			for end < c.w && c.tags[row+end] == tag {
				end++
			}
			run := string(c.runes[row+x : row+end])
			if tag == 0 {
				sb.WriteString(run)
			} else {
				sb.WriteString(c.styles[tag].Render(run))
			}
			x = end
		}
		if y < c.h-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Render draws the manager's current screen.
func Render(m *wm.Manager, opts Options) string {
	var out string
	m.View(func(tree *wm.Tree, point layout.ItemIdx, cursor *layout.MoveCursor) {
		out = Draw(tree, point, cursor, opts)
	})
	return out
}

// Draw renders tree with the given point and optional cursor.
func Draw(tree *wm.Tree, point layout.ItemIdx, cursor *layout.MoveCursor, opts Options) string {
	c := newCanvas(opts, tree.RootBounds())

	for item := range tree.All() {
		if !item.IsWindow() {
			continue
		}
		client := tree.WindowData(item.Index)
		set, style, title := lightBorder, lipgloss.NewStyle(), "(empty)"
		switch {
		case client == nil || client.Empty:
			set, style = dashedBorder, emptyStyle
		default:
			title = client.Title
			if client.Color != "" {
				style = style.Foreground(lipgloss.Color(client.Color))
			}
		}
		if item == point {
			set, style = heavyBorder, style.Inherit(focusStyle)
		}
		tag := c.style(style)
		x0, y0, x1, y1 := c.box(tree.Bounds(item), set, tag)
		c.label(x0, y0, x1, y1, title, tag)
	}

	if point.IsContainer() && tree.NChildren(point) > 0 {
		c.box(tree.Bounds(point), heavyBorder, c.style(focusStyle))
	}
	if cursor != nil && tree.IsCursorValid(*cursor) {
		drawCursor(c, tree, *cursor)
	}
	return c.String()
}

func drawCursor(c *canvas, tree *wm.Tree, cur layout.MoveCursor) {
	tag := c.style(cursorStyle)
	var b layout.WindowBounds
	var bar rune
	switch cur.Kind {
	case layout.CursorInto:
		b = tree.InterBounds(cur.Container, cur.Index)
		bar = '┃'
		if tree.Strategy(cur.Container) == layout.Vertical {
			bar = '━'
		}
	case layout.CursorSplit:
		b = tree.Bounds(cur.Item)
		switch cur.Direction {
		case layout.Left:
			b.Content.Width = 0
			bar = '┃'
		case layout.Right:
			b.Position.X += b.Content.Width - 1
			b.Content.Width = 0
			bar = '┃'
		case layout.Up:
			b.Content.Height = 0
			bar = '━'
		case layout.Down:
			b.Position.Y += b.Content.Height - 1
			b.Content.Height = 0
			bar = '━'
		}
	}
	x0, y0, x1, y1 := c.cells(b)
	c.fill(x0, y0, x1, y1, bar, tag)
}
