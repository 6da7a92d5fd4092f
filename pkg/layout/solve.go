package layout

import (
	"fmt"
	"math"
)

// AvailableArea returns the space container c can hand to its children:
// its content minus padding on every side, minus the gaps between children
// along the main axis. Subtraction saturates at zero.
func (l *Layout[W, C]) AvailableArea(c int) AreaSize {
	ctr := l.ctr(c)
	gaps := ctr.inter * max(len(ctr.children)-1, 0)
	size := ctr.bounds.Content
	if ctr.strategy == Horizontal {
		return AreaSize{
			Width:  satSub(size.Width, gaps+2*ctr.padding),
			Height: satSub(size.Height, 2*ctr.padding),
		}
	}
	return AreaSize{
		Width:  satSub(size.Width, 2*ctr.padding),
		Height: satSub(size.Height, gaps+2*ctr.padding),
	}
}

// AvailableLength is AvailableArea measured along c's main axis.
func (l *Layout[W, C]) AvailableLength(c int) int {
	area := l.AvailableArea(c)
	if l.ctr(c).strategy == Horizontal {
		return area.Width
	}
	return area.Height
}

// layout recomputes the bounds of container c's children from their weights
// and recurses into child containers whose bounds changed. A NewBounds
// action is appended for every child whose bounds differ from the stored
// ones; unchanged subtrees are left alone.
//
// Extents come from rounding the running sum of normalized weights, so the
// children always add up to the available length exactly.
func (l *Layout[W, C]) layout(c int, out *[]Action[W, C]) {
	ctr := l.ctr(c)
	avail := l.AvailableArea(c)
	horizontal := ctr.strategy == Horizontal
	length := avail.Height
	if horizontal {
		length = avail.Width
	}

	total := ctr.totalWeight()
	n := len(ctr.children)
	origin := Position{X: ctr.bounds.Position.X + ctr.padding, Y: ctr.bounds.Position.Y + ctr.padding}

	type change struct {
		item   ItemIdx
		bounds WindowBounds
	}
	var changes []change
	var cum float64
	prevEdge := 0
	for i, ch := range ctr.children {
		share := 1 / float64(n)
		if total > 0 {
			share = ch.Weight / total
		}
		cum += share
		edge := int(math.Round(cum * float64(length)))
		if i == n-1 {
			edge = length
		}
		extent := max(edge-prevEdge, 0)
		offset := prevEdge + i*ctr.inter

		var nb WindowBounds
		if horizontal {
			nb = WindowBounds{
				Position: Position{X: origin.X + offset, Y: origin.Y},
				Content:  AreaSize{Width: extent, Height: avail.Height},
			}
		} else {
			nb = WindowBounds{
				Position: Position{X: origin.X, Y: origin.Y + offset},
				Content:  AreaSize{Width: avail.Width, Height: extent},
			}
		}
		prevEdge = max(edge, prevEdge)
		if nb != l.Bounds(ch.Item) {
			changes = append(changes, change{ch.Item, nb})
		}
	}

	for _, ch := range changes {
		if ch.item.IsContainer() {
			l.ctr(ch.item.Index).bounds = ch.bounds
			l.layout(ch.item.Index, out)
		} else {
			l.win(ch.item.Index).bounds = ch.bounds
		}
		*out = append(*out, newBounds[W, C](ch.item, ch.bounds))
	}
}

// Resize moves the root to bounds and lays out the whole tree. The root's own
// NewBounds action comes last.
func (l *Layout[W, C]) Resize(bounds WindowBounds) []Action[W, C] {
	l.logger.Debug("resize", "bounds", bounds)
	l.rootBounds = bounds
	l.ctr(0).bounds = bounds
	var out []Action[W, C]
	l.layout(0, &out)
	return append(out, newBounds[W, C](Root, bounds))
}

// ContentLength returns item's extent along its parent's main axis. It
// returns false for the root and detached windows.
func (l *Layout[W, C]) ContentLength(item ItemIdx) (int, bool) {
	slot, ok := l.SlotInContainer(item)
	if !ok {
		return 0, false
	}
	b := l.Bounds(item)
	if slot.ParentStrategy == Horizontal {
		return b.Content.Width, true
	}
	return b.Content.Height, true
}

// SetContentLength gives item an absolute extent along its parent's main
// axis, clamped to what the parent has available. The remaining length is
// shared among the siblings in proportion to their current weights. Items
// without a parent are left untouched.
func (l *Layout[W, C]) SetContentLength(item ItemIdx, length int) []Action[W, C] {
	slot, ok := l.SlotInContainer(item)
	if !ok {
		return nil
	}
	avail := l.AvailableLength(slot.Container)
	length = min(max(length, 0), avail)
	remaining := avail - length
	l.logger.Debug("set content length", "item", item, "length", length, "remaining", remaining)

	ctr := l.ctr(slot.Container)
	var others float64
	for _, ch := range ctr.children {
		if ch.Item != item {
			others += ch.Weight
		}
	}
	nOthers := float64(len(ctr.children) - 1)
	for i := range ctr.children {
		ch := &ctr.children[i]
		switch {
		case ch.Item == item:
			ch.Weight = float64(length)
		case others > 0:
			ch.Weight = ch.Weight / others * float64(remaining)
		default:
			ch.Weight = float64(remaining) / nOthers
		}
	}

	var out []Action[W, C]
	l.layout(slot.Container, &out)
	return out
}

// EqualizeContainerChildren resets every child of c to the same weight and
// lays c out again.
func (l *Layout[W, C]) EqualizeContainerChildren(c int) []Action[W, C] {
	ctr := l.ctr(c)
	for i := range ctr.children {
		ctr.children[i].Weight = 1
	}
	var out []Action[W, C]
	l.layout(c, &out)
	return out
}

// InterBounds returns the gap before child index of container c, or a
// zero-width strip along the far edge when index equals the number of
// children. The gap before the first child sits just inside the padding.
// Hosts draw insertion cursors with it.
func (l *Layout[W, C]) InterBounds(c, index int) WindowBounds {
	ctr := l.ctr(c)
	n := len(ctr.children)
	if index < 0 || index > n {
		panic(fmt.Sprintf("layout: index %d out of range for container %d", index, c))
	}
	b := ctr.bounds
	if n == 0 {
		return b
	}
	horizontal := ctr.strategy == Horizontal
	if index == n {
		edge := b.Position
		if horizontal {
			edge.X += b.Content.Width
			return WindowBounds{Position: edge, Content: AreaSize{Height: b.Content.Height}}
		}
		edge.Y += b.Content.Height
		return WindowBounds{Position: edge, Content: AreaSize{Width: b.Content.Width}}
	}

	offset := ctr.padding
	if index > 0 {
		length := l.AvailableLength(c)
		total := ctr.totalWeight()
		var cum float64
		for _, ch := range ctr.children[:index] {
			if total > 0 {
				cum += ch.Weight / total
			} else {
				cum += 1 / float64(n)
			}
		}
		offset += int(math.Round(cum*float64(length))) + (index-1)*ctr.inter
	}
	if horizontal {
		return WindowBounds{
			Position: Position{X: b.Position.X + offset, Y: b.Position.Y + ctr.padding},
			Content:  AreaSize{Width: ctr.inter, Height: satSub(b.Content.Height, 2*ctr.padding)},
		}
	}
	return WindowBounds{
		Position: Position{X: b.Position.X + ctr.padding, Y: b.Position.Y + offset},
		Content:  AreaSize{Width: satSub(b.Content.Width, 2*ctr.padding), Height: ctr.inter},
	}
}
