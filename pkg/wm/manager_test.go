package wm

import (
	"context"
	"sync"
	"testing"
	"time"

	serrors "github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/layout"
	"github.com/matzehuels/stacktile/pkg/observability"
)

func newTestManager(t *testing.T, titles ...string) (*Manager, []int) {
	t.Helper()
	m := New(1200, 800, WithInter(0))
	var idx []int
	for _, title := range titles {
		w, err := m.OpenWindow(title, "")
		if err != nil {
			t.Fatalf("OpenWindow(%q): %v", title, err)
		}
		idx = append(idx, w)
	}
	checkGeometry(t, m)
	return m, idx
}

// checkGeometry verifies that the table built from actions agrees with the
// layout for every placed window.
func checkGeometry(t *testing.T, m *Manager) {
	t.Helper()
	geo := m.Geometry()
	m.View(func(tree *Tree, _ layout.ItemIdx, _ *layout.MoveCursor) {
		if err := tree.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
		windows := 0
		for item := range tree.All() {
			if !item.IsWindow() {
				continue
			}
			windows++
			if got, want := geo[item], tree.Bounds(item); got != want {
				t.Errorf("geometry[%v] = %v, layout says %v", item, got, want)
			}
		}
		for item := range geo {
			if item.IsWindow() && !tree.Exists(item) {
				t.Errorf("geometry still lists destroyed %v", item)
			}
		}
	})
}

func windowBounds(m *Manager, idx int) layout.WindowBounds {
	return m.Geometry()[layout.WindowItem(idx)]
}

func TestOpenWindow(t *testing.T) {
	m, w := newTestManager(t, "a", "b", "c")

	if got := m.Point(); got != layout.WindowItem(w[2]) {
		t.Errorf("point = %v, want window %d", got, w[2])
	}
	want := map[int]layout.WindowBounds{
		w[0]: layout.Bounds(0, 0, 600, 800),
		w[1]: layout.Bounds(600, 0, 300, 800),
		w[2]: layout.Bounds(900, 0, 300, 800),
	}
	for idx, b := range want {
		if got := windowBounds(m, idx); got != b {
			t.Errorf("window %d bounds = %v, want %v", idx, got, b)
		}
	}

	m.View(func(tree *Tree, _ layout.ItemIdx, _ *layout.MoveCursor) {
		c := tree.WindowData(w[1])
		if c.Title != "b" || c.ID == "" || c.Color == "" {
			t.Errorf("client = %+v", c)
		}
		if got, ok := m.clients[c.ID]; !ok || got != w[1] {
			t.Errorf("client index = %d, %v", got, ok)
		}
	})

	if _, err := m.OpenWindow("bad", "red"); !serrors.Is(err, serrors.ErrCodeInvalidInput) {
		t.Errorf("bad colour: err = %v", err)
	}
}

func TestClose(t *testing.T) {
	m, w := newTestManager(t, "a", "b", "c")

	m.Close()
	checkGeometry(t, m)
	if got := m.Point(); got != layout.WindowItem(w[1]) {
		t.Errorf("point after first close = %v, want window %d", got, w[1])
	}
	if got := windowBounds(m, w[1]); got != layout.Bounds(600, 0, 600, 800) {
		t.Errorf("survivor bounds = %v", got)
	}
	if len(m.clients) != 2 {
		t.Errorf("clients = %d, want 2", len(m.clients))
	}

	m.Close()
	checkGeometry(t, m)
	if got := m.Point(); got != layout.WindowItem(w[0]) {
		t.Errorf("point after second close = %v, want window %d", got, w[0])
	}
	if got := windowBounds(m, w[0]); got != layout.Bounds(0, 0, 1200, 800) {
		t.Errorf("last window bounds = %v", got)
	}

	m.Close()
	if got := m.Point(); got != layout.Root {
		t.Errorf("point on empty layout = %v, want root", got)
	}
	n := m.ActionCount()
	m.Close()
	if m.ActionCount() != n {
		t.Error("closing the empty root produced actions")
	}
}

func TestCloseContainerPoint(t *testing.T) {
	m, w := newTestManager(t, "a", "b", "c")
	if !m.NavigateParent() {
		t.Fatal("NavigateParent failed")
	}
	m.Close()
	checkGeometry(t, m)
	if got := m.Point(); got != layout.WindowItem(w[0]) {
		t.Errorf("point = %v, want window %d", got, w[0])
	}
	if len(m.clients) != 1 {
		t.Errorf("clients = %d, want 1", len(m.clients))
	}
}

func TestNavigate(t *testing.T) {
	m, w := newTestManager(t, "a", "b")
	if err := m.SetPoint(layout.WindowItem(w[0])); err != nil {
		t.Fatal(err)
	}
	if !m.Navigate(layout.Right) || m.Point() != layout.WindowItem(w[1]) {
		t.Errorf("Navigate(right) point = %v", m.Point())
	}
	if m.Navigate(layout.Right) {
		t.Error("Navigate(right) from the last window moved")
	}
	if !m.NavigateParent() || m.Point() != layout.ContainerItem(1) {
		t.Errorf("NavigateParent point = %v", m.Point())
	}
	if !m.NavigateChild() || m.Point() != layout.WindowItem(w[0]) {
		t.Errorf("NavigateChild point = %v", m.Point())
	}
	if m.NavigateChild() {
		t.Error("NavigateChild on a window succeeded")
	}
	if err := m.SetPoint(layout.WindowItem(42)); !serrors.Is(err, serrors.ErrCodeNotFound) {
		t.Errorf("SetPoint(missing) err = %v", err)
	}
}

func TestCursorPlacesNextWindow(t *testing.T) {
	m, w := newTestManager(t, "a", "b")

	m.NavigateCursor(layout.Left)
	cur, ok := m.Cursor()
	if !ok || cur != layout.IntoCursor(1, 0) {
		t.Fatalf("cursor = %v, %v", cur, ok)
	}

	c, err := m.OpenWindow("c", "")
	if err != nil {
		t.Fatal(err)
	}
	checkGeometry(t, m)
	if _, ok := m.Cursor(); ok {
		t.Error("cursor survived placement")
	}
	want := map[int]layout.WindowBounds{
		c:    layout.Bounds(0, 0, 400, 800),
		w[0]: layout.Bounds(400, 0, 400, 800),
		w[1]: layout.Bounds(800, 0, 400, 800),
	}
	for idx, b := range want {
		if got := windowBounds(m, idx); got != b {
			t.Errorf("window %d bounds = %v, want %v", idx, got, b)
		}
	}
}

func TestNavigateCursorClearsAtPoint(t *testing.T) {
	m, _ := newTestManager(t, "a", "b")
	m.NavigateCursor(layout.Left)
	m.NavigateCursor(layout.Right)
	if cur, ok := m.Cursor(); ok {
		t.Errorf("cursor = %v, want cleared", cur)
	}
}

func TestMovePointToCursor(t *testing.T) {
	m, w := newTestManager(t, "a", "b")

	m.NavigateCursor(layout.Left)
	if !m.MovePointToCursor() {
		t.Fatal("MovePointToCursor did nothing")
	}
	checkGeometry(t, m)
	if got := windowBounds(m, w[1]); got != layout.Bounds(0, 0, 600, 800) {
		t.Errorf("moved window bounds = %v", got)
	}
	if got := windowBounds(m, w[0]); got != layout.Bounds(600, 0, 600, 800) {
		t.Errorf("other window bounds = %v", got)
	}

	// A cursor inside the point's own subtree is ignored.
	m.NavigateParent()
	if err := m.SetCursor(layout.SplitCursor(layout.WindowItem(w[0]), layout.Down)); err != nil {
		t.Fatal(err)
	}
	if m.MovePointToCursor() {
		t.Error("moved a container into itself")
	}
}

func TestSetCursorRejectsStaleCursor(t *testing.T) {
	m, _ := newTestManager(t, "a")
	err := m.SetCursor(layout.IntoCursor(7, 0))
	if !serrors.Is(err, serrors.ErrCodeInvalidCursor) {
		t.Errorf("err = %v, want INVALID_CURSOR", err)
	}
}

func TestLengths(t *testing.T) {
	m, w := newTestManager(t, "a", "b")
	if err := m.SetPoint(layout.WindowItem(w[0])); err != nil {
		t.Fatal(err)
	}

	if !m.Grow(100) {
		t.Fatal("Grow failed")
	}
	checkGeometry(t, m)
	if got := windowBounds(m, w[0]).Content.Width; got != 700 {
		t.Errorf("width after grow = %d, want 700", got)
	}

	m.Shrink(5000)
	checkGeometry(t, m)
	a, b := windowBounds(m, w[0]).Content.Width, windowBounds(m, w[1]).Content.Width
	if a != 1 || a+b != 1200 {
		t.Errorf("widths after shrink = %d, %d", a, b)
	}

	m.SetLength(0)
	if got := windowBounds(m, w[0]).Content.Width; got != 1 {
		t.Errorf("SetLength(0) width = %d, want 1", got)
	}

	m.Equalize()
	checkGeometry(t, m)
	if got := windowBounds(m, w[0]).Content.Width; got != 600 {
		t.Errorf("width after equalize = %d, want 600", got)
	}

	if err := m.SetPoint(layout.Root); err != nil {
		t.Fatal(err)
	}
	if m.Grow(10) {
		t.Error("Grow on the root succeeded")
	}
}

func TestResizeAndFocusAt(t *testing.T) {
	m, w := newTestManager(t, "a", "b")
	m.Resize(layout.Bounds(0, 0, 1000, 500))
	checkGeometry(t, m)
	if got := m.Geometry()[layout.Root]; got != layout.Bounds(0, 0, 1000, 500) {
		t.Errorf("root geometry = %v", got)
	}
	if got := windowBounds(m, w[1]); got != layout.Bounds(500, 0, 500, 500) {
		t.Errorf("window bounds = %v", got)
	}

	if !m.FocusAt(layout.Position{X: 10, Y: 10}) || m.Point() != layout.WindowItem(w[0]) {
		t.Errorf("FocusAt point = %v", m.Point())
	}
	if m.FocusAt(layout.Position{X: 5000, Y: 10}) {
		t.Error("FocusAt outside the screen succeeded")
	}
}

func TestOpenSlot(t *testing.T) {
	m := New(1200, 800)
	slot := m.OpenSlot()
	if got := m.Point(); got != layout.WindowItem(slot) {
		t.Fatalf("point = %v, want the first slot", got)
	}

	w, err := m.OpenWindow("fills", "")
	if err != nil {
		t.Fatal(err)
	}
	if w != slot {
		t.Errorf("OpenWindow used window %d, want slot %d", w, slot)
	}
	m.View(func(tree *Tree, _ layout.ItemIdx, _ *layout.MoveCursor) {
		if n := tree.NChildren(layout.Root); n != 1 {
			t.Errorf("root children = %d, want 1", n)
		}
		if c := tree.WindowData(w); c.Empty || c.Title != "fills" {
			t.Errorf("client = %+v", c)
		}
	})

	m.OpenSlot()
	if got := m.Point(); got != layout.WindowItem(w) {
		t.Errorf("OpenSlot moved the point to %v", got)
	}
	checkGeometry(t, m)
}

func TestSnapshotRestore(t *testing.T) {
	m, w := newTestManager(t, "a", "b", "c")
	if err := m.SetCursor(layout.SplitCursor(layout.WindowItem(w[0]), layout.Down)); err != nil {
		t.Fatal(err)
	}

	data, err := m.MarshalState()
	if err != nil {
		t.Fatal(err)
	}
	state, err := UnmarshalState(data)
	if err != nil {
		t.Fatal(err)
	}
	r, err := Restore(state)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if r.Point() != m.Point() {
		t.Errorf("point = %v, want %v", r.Point(), m.Point())
	}
	if got, _ := r.Cursor(); got != layout.SplitCursor(layout.WindowItem(w[0]), layout.Down) {
		t.Errorf("cursor = %v", got)
	}
	for _, idx := range w {
		if got, want := windowBounds(r, idx), windowBounds(m, idx); got != want {
			t.Errorf("window %d bounds = %v, want %v", idx, got, want)
		}
	}
	if r.frames.next != 3 {
		t.Errorf("frame counter = %d, want 3", r.frames.next)
	}

	var id string
	m.View(func(tree *Tree, _ layout.ItemIdx, _ *layout.MoveCursor) { id = tree.WindowData(w[1]).ID })
	if c, idx, ok := r.Client(id); !ok || idx != w[1] || c.Title != "b" {
		t.Errorf("Client(%s) = %+v, %d, %v", id, c, idx, ok)
	}
	checkGeometry(t, r)

	if _, err := UnmarshalState([]byte("{")); !serrors.Is(err, serrors.ErrCodeInvalidFormat) {
		t.Errorf("bad json err = %v", err)
	}
	state.Point = layout.WindowItem(99)
	if _, err := Restore(state); !serrors.Is(err, serrors.ErrCodeInvalidFormat) {
		t.Errorf("bad point err = %v", err)
	}
}

func TestRestoreRejectsDetachedPoint(t *testing.T) {
	m, _ := newTestManager(t, "a", "b")
	state := m.Snapshot()
	state.Layout.Windows = append(state.Layout.Windows, &layout.WindowSnapshot[*Client]{
		Data: &Client{ID: "loose", Title: "loose"},
	})
	detached := layout.WindowItem(len(state.Layout.Windows) - 1)

	state.Point = detached
	if _, err := Restore(state); !serrors.Is(err, serrors.ErrCodeInvalidFormat) {
		t.Errorf("detached point err = %v, want INVALID_FORMAT", err)
	}

	state.Point = layout.Root
	r, err := Restore(state)
	if err != nil {
		t.Fatalf("Restore with root point: %v", err)
	}
	if err := r.SetPoint(detached); err == nil {
		t.Error("SetPoint accepted a detached window")
	}
}

type recordingHooks struct {
	mu  sync.Mutex
	ops []string
}

func (h *recordingHooks) OnMutation(_ context.Context, op string, _ int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = append(h.ops, op)
}

func TestMutationHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetLayoutHooks(h)
	defer observability.Reset()

	m, _ := newTestManager(t, "a", "b")
	m.Equalize()
	m.Close()

	want := []string{"open", "open", "equalize", "close"}
	if len(h.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", h.ops, want)
	}
	for i := range want {
		if h.ops[i] != want[i] {
			t.Errorf("op %d = %q, want %q", i, h.ops[i], want[i])
		}
	}
}
