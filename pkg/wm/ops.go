package wm

import (
	"time"

	serrors "github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/layout"
)

// placement returns where a new window goes: the cursor if set, otherwise a
// split to the right of the point, otherwise the empty root. The cursor is
// consumed.
func (m *Manager) placement() layout.MoveCursor {
	if m.cursor != nil {
		c := *m.cursor
		m.cursor = nil
		return c
	}
	if m.tree.NChildren(layout.Root) == 0 {
		return layout.IntoCursor(0, 0)
	}
	return layout.SplitCursor(m.point, layout.Right)
}

// OpenWindow places a new client and focuses it. When no cursor is set and
// the point is an empty slot, the client takes over that slot instead.
// It returns the client's window index.
func (m *Manager) OpenWindow(title, color string) (int, error) {
	if err := serrors.ValidateTitle(title); err != nil {
		return 0, err
	}
	if err := serrors.ValidateColor(color); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	start := time.Now()

	c := newClient(title, color, m.opened)
	m.opened++

	if m.cursor == nil && m.point.IsWindow() && m.tree.WindowData(m.point.Index).Empty {
		idx := m.point.Index
		m.tree.SetWindowData(idx, c)
		m.clients[c.ID] = idx
		m.apply("open", start, []Action{{
			Kind:   layout.NewBounds,
			Item:   m.point,
			Bounds: m.tree.Bounds(m.point),
		}})
		return idx, nil
	}

	to := m.placement()
	idx := m.tree.AllocWindow(c)
	m.clients[c.ID] = idx
	actions := m.tree.Move(layout.WindowItem(idx), to)
	m.point = layout.WindowItem(idx)
	m.apply("open", start, actions)
	return idx, nil
}

// OpenSlot places an empty placeholder window without moving the point.
func (m *Manager) OpenSlot() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := time.Now()

	to := m.placement()
	idx := m.tree.AllocWindow(&Client{Title: "", Empty: true})
	actions := m.tree.Move(layout.WindowItem(idx), to)
	if m.tree.NChildren(layout.Root) == 1 && m.point == layout.Root {
		m.point = layout.WindowItem(idx)
	}
	m.apply("slot", start, actions)
	return idx
}

// Close destroys the point and everything below it. Focus moves to the
// item that followed it in pre-order, or to the last item when nothing did.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := time.Now()

	if m.point == layout.Root && m.tree.NChildren(layout.Root) == 0 {
		return
	}
	next, hasNext := m.tree.TopologicalNext(m.point)
	actions := m.tree.Destroy(m.point)
	if !m.tree.Exists(m.point) {
		if hasNext && m.tree.Exists(next) {
			m.point = next
		} else {
			m.point = m.tree.TopologicalLast()
		}
	}
	m.apply("close", start, actions)
}

// Navigate moves the point to the neighbour in direction dir. It reports
// whether the point changed.
func (m *Manager) Navigate(dir layout.Direction) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, ok := m.tree.Navigate(m.point, dir, nil)
	if ok {
		m.point = next
	}
	return ok
}

// NavigateParent focuses the point's parent container.
func (m *Manager) NavigateParent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	parent, ok := m.tree.ParentContainer(m.point)
	if ok {
		m.point = layout.ContainerItem(parent)
	}
	return ok
}

// NavigateChild focuses the first child of the point when it is a
// non-empty container.
func (m *Manager) NavigateChild() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.point.IsContainer() {
		return false
	}
	children := m.tree.Children(m.point.Index)
	if len(children) == 0 {
		return false
	}
	m.point = children[0].Item
	return true
}

// NavigateCursor moves the cursor in direction dir, starting from the gap
// before the point when no cursor is set. A split cursor keeps its split
// direction and moves to the neighbouring item; an into cursor steps
// between gaps without descending. A cursor that ends up on the gap before
// the point is cleared.
func (m *Manager) NavigateCursor(dir layout.Direction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := m.tree.CursorBefore(m.point)
	cur := before
	if m.cursor != nil {
		cur = *m.cursor
	}

	next := cur
	switch cur.Kind {
	case layout.CursorSplit:
		if item, ok := m.tree.Navigate(cur.Item, dir, nil); ok {
			next = layout.SplitCursor(item, cur.Direction)
		}
	case layout.CursorInto:
		from := layout.ChildLocation{Container: cur.Container, Index: cur.Index}
		if loc, ok := m.tree.Navigate2(from, dir, nil, true, false); ok {
			next = layout.IntoCursor(loc.Container, loc.Index)
		}
	}

	if next == before {
		m.cursor = nil
	} else {
		m.cursor = &next
	}
}

// SetCursor sets the pending insertion point.
func (m *Manager) SetCursor(c layout.MoveCursor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.tree.IsCursorValid(c) {
		return serrors.New(serrors.ErrCodeInvalidCursor, "cursor %s does not refer to a live item", c)
	}
	m.cursor = &c
	return nil
}

// ClearCursor drops the pending insertion point.
func (m *Manager) ClearCursor() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursor = nil
}

// SetPoint focuses item.
func (m *Manager) SetPoint(item layout.ItemIdx) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.tree.Exists(item) {
		return serrors.New(serrors.ErrCodeNotFound, "no item %s", item)
	}
	if item.IsWindow() {
		if _, attached := m.tree.ParentContainer(item); !attached {
			return serrors.New(serrors.ErrCodeNotFound, "window %d is not placed", item.Index)
		}
	}
	m.point = item
	return nil
}

// MovePointToCursor moves the point to the cursor and clears the cursor.
// Nothing happens without a cursor or when the cursor lies inside the
// point's own subtree.
func (m *Manager) MovePointToCursor() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := time.Now()

	if m.cursor == nil || m.tree.IsAncestor(m.point, m.cursor.Target()) {
		return false
	}
	actions := m.tree.Move(m.point, *m.cursor)
	m.cursor = nil
	m.apply("move", start, actions)
	return true
}

// SetLength sets the point's extent along its parent's axis. Lengths below
// one pixel are raised to one. It reports false for the root.
func (m *Manager) SetLength(length int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setLength("set-length", max(length, 1))
}

func (m *Manager) setLength(op string, length int) bool {
	start := time.Now()
	if _, ok := m.tree.ContentLength(m.point); !ok {
		return false
	}
	m.apply(op, start, m.tree.SetContentLength(m.point, length))
	return true
}

// Grow widens the point by delta pixels along its parent's axis.
func (m *Manager) Grow(delta int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tree.ContentLength(m.point)
	if !ok {
		return false
	}
	return m.setLength("grow", max(cur+delta, 1))
}

// Shrink narrows the point by delta pixels, never below one pixel.
func (m *Manager) Shrink(delta int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tree.ContentLength(m.point)
	if !ok {
		return false
	}
	return m.setLength("shrink", max(cur-delta, 1))
}

// Equalize gives every child of the point's container an equal share. A
// window point equalizes its parent.
func (m *Manager) Equalize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := time.Now()
	c := m.tree.NearestContainer(m.point)
	m.apply("equalize", start, m.tree.EqualizeContainerChildren(c))
}

// Resize changes the screen geometry.
func (m *Manager) Resize(bounds layout.WindowBounds) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := time.Now()
	m.apply("resize", start, m.tree.Resize(bounds))
}

// FocusAt focuses the window under p, as a mouse click would.
func (m *Manager) FocusAt(p layout.Position) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.tree.WindowAt(p)
	if ok {
		m.point = layout.WindowItem(idx)
	}
	return ok
}
