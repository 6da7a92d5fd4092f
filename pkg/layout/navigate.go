package layout

import "fmt"

// Navigate returns the item reached by moving from in direction dir, or
// false when nothing lies that way. point seeds the cross-axis coordinate
// used to pick a child when entering a container of the other orientation;
// nil means from's own position.
func (l *Layout[W, C]) Navigate(from ItemIdx, dir Direction, point *Position) (ItemIdx, bool) {
	loc, ok := l.ChildLocation(from)
	if !ok {
		return ItemIdx{}, false
	}
	dest, ok := l.Navigate2(loc, dir, point, false, true)
	if !ok {
		return ItemIdx{}, false
	}
	item, ok := l.ItemFromChildLocation(dest)
	if !ok {
		panic(fmt.Sprintf("layout: navigation from %s landed past the end of container %d", from, dest.Container))
	}
	return item, true
}

// Navigate2 moves a child location in direction dir.
//
// It first climbs from loc until it finds a container laid out along dir's
// axis with room to move, then descends into the item found there: along
// the travel axis it enters at the near end, across it it picks the child
// whose span holds point. With betweenItems set, locations may point one past
// the last child (the gaps used by insertion cursors). Without mayDescend, a
// location found in loc's own container is returned as is.
func (l *Layout[W, C]) Navigate2(loc ChildLocation, dir Direction, point *Position, betweenItems, mayDescend bool) (ChildLocation, bool) {
	origin := l.ctr(loc.Container)
	n := len(origin.children)
	if loc.Index < 0 || loc.Index > n || (!betweenItems && loc.Index == n) {
		panic(fmt.Sprintf("layout: index %d out of range for container %d", loc.Index, loc.Container))
	}

	var seek Position
	switch {
	case point != nil:
		seek = *point
	case loc.Index < n:
		seek = l.Bounds(origin.children[loc.Index].Item).Position
	case origin.strategy == Horizontal:
		seek = Position{X: origin.bounds.Position.X + origin.bounds.Content.Width, Y: origin.bounds.Position.Y}
	default:
		seek = Position{X: origin.bounds.Position.X, Y: origin.bounds.Position.Y + origin.bounds.Content.Height}
	}

	axis := Vertical
	if dir.Horizontal() {
		axis = Horizontal
	}
	extra := 0
	if betweenItems {
		extra = 1
	}

	found, cur, index := false, loc.Container, loc.Index
	var target ChildLocation
	for {
		ctr := l.ctr(cur)
		if ctr.strategy == axis {
			if !dir.Forward() && index > 0 {
				target, found = ChildLocation{Container: cur, Index: index - 1}, true
				break
			}
			if dir.Forward() && index < len(ctr.children)+extra-1 {
				target, found = ChildLocation{Container: cur, Index: index + 1}, true
				break
			}
		}
		parent, ok := l.ParentContainer(ContainerItem(cur))
		if !ok {
			break
		}
		index = l.ctr(parent).indexOf(ContainerItem(cur))
		cur = parent
	}
	if !found {
		return ChildLocation{}, false
	}
	if !mayDescend && target.Container == loc.Container {
		return target, true
	}
	return l.descend(target, dir, seek, betweenItems), true
}

// descend enters containers starting at loc until it reaches a window, an
// empty container, or a gap.
func (l *Layout[W, C]) descend(loc ChildLocation, dir Direction, seek Position, betweenItems bool) ChildLocation {
	horizontal := dir.Horizontal()
	for {
		item, ok := l.ItemFromChildLocation(loc)
		if !ok || item.IsWindow() {
			return loc
		}
		ctr := l.ctr(item.Index)
		loc.Container = item.Index
		switch {
		case horizontal == (ctr.strategy == Horizontal):
			switch {
			case dir.Forward():
				loc.Index = 0
			case betweenItems:
				loc.Index = len(ctr.children)
			default:
				loc.Index = max(len(ctr.children)-1, 0)
			}
		default:
			loc.Index = l.childSpanning(item.Index, horizontal, seek)
		}
		if len(ctr.children) == 0 {
			return loc
		}
	}
}

// childSpanning returns the index of the child of c whose cross-axis span
// holds seek, or 0 when none does.
func (l *Layout[W, C]) childSpanning(c int, horizontal bool, seek Position) int {
	for i, ch := range l.ctr(c).children {
		b := l.Bounds(ch.Item)
		lo, hi, v := b.Position.X, b.Position.X+b.Content.Width, seek.X
		if horizontal {
			lo, hi, v = b.Position.Y, b.Position.Y+b.Content.Height, seek.Y
		}
		if lo <= v && v < hi {
			return i
		}
	}
	return 0
}
