package layout

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
)

type testLayout = Layout[string, int]

func newTestLayout(width, height int, opts ...Option) *testLayout {
	n := 0
	return New[string, int](Bounds(0, 0, width, height), ConstructorFunc[int](func() int {
		n++
		return n
	}), opts...)
}

func place(t *testing.T, l *testLayout, name string, to MoveCursor) (int, []Action[string, int]) {
	t.Helper()
	w := l.AllocWindow(name)
	actions := l.Move(WindowItem(w), to)
	if err := l.Validate(); err != nil {
		t.Fatalf("after placing %s at %s: %v", name, to, err)
	}
	return w, actions
}

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("%s: expected panic", name)
		}
		if msg, ok := r.(string); !ok || !strings.HasPrefix(msg, "layout:") {
			t.Fatalf("%s: panic = %v, want layout: prefix", name, r)
		}
	}()
	fn()
}

func items(l *testLayout, c int) []ItemIdx {
	var out []ItemIdx
	for _, ch := range l.Children(c) {
		out = append(out, ch.Item)
	}
	return out
}

func TestNewLayout(t *testing.T) {
	l := newTestLayout(800, 600)
	if !l.Exists(Root) {
		t.Fatal("root missing")
	}
	if got := l.Bounds(Root); got != Bounds(0, 0, 800, 600) {
		t.Errorf("root bounds = %v", got)
	}
	if got := l.Strategy(0); got != Horizontal {
		t.Errorf("root strategy = %v, want horizontal", got)
	}
	if got := l.ContainerData(0); got != 1 {
		t.Errorf("root payload = %d, want 1", got)
	}
	if _, ok := l.ParentContainer(Root); ok {
		t.Error("root has a parent")
	}
	if err := l.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestSplitWindowInOnlyChildOfRoot(t *testing.T) {
	l := newTestLayout(800, 600)
	w0, actions := place(t, l, "w0", IntoCursor(0, 0))
	if len(actions) != 1 || actions[0].Item != WindowItem(w0) || actions[0].Bounds != Bounds(0, 0, 800, 600) {
		t.Fatalf("first placement actions = %+v", actions)
	}

	w1, actions := place(t, l, "w1", SplitCursor(WindowItem(w0), Right))
	want := []struct {
		item   ItemIdx
		bounds WindowBounds
	}{
		{ContainerItem(1), Bounds(0, 0, 800, 600)},
		{WindowItem(w0), Bounds(0, 0, 400, 600)},
		{WindowItem(w1), Bounds(400, 0, 400, 600)},
	}
	if len(actions) != len(want) {
		t.Fatalf("got %d actions, want %d: %+v", len(actions), len(want), actions)
	}
	for i, w := range want {
		if actions[i].Kind != NewBounds || actions[i].Item != w.item || actions[i].Bounds != w.bounds {
			t.Errorf("action %d = %v %v %v, want new-bounds %v %v", i, actions[i].Kind, actions[i].Item, actions[i].Bounds, w.item, w.bounds)
		}
	}
	if got := items(l, 0); !slices.Equal(got, []ItemIdx{ContainerItem(1)}) {
		t.Errorf("root children = %v", got)
	}
	if got := items(l, 1); !slices.Equal(got, []ItemIdx{WindowItem(w0), WindowItem(w1)}) {
		t.Errorf("container 1 children = %v", got)
	}
	if p, _ := l.ParentContainer(WindowItem(w0)); p != 1 {
		t.Errorf("parent of w0 = %d, want 1", p)
	}
	if got := l.ContainerData(1); got != 2 {
		t.Errorf("container 1 payload = %d, want 2", got)
	}
}

func TestSplitThroughSingleChildRoot(t *testing.T) {
	// The root may keep a single child; a split aimed at it is forwarded to
	// that child instead of fusing anything.
	l := newTestLayout(800, 600)
	w0, _ := place(t, l, "w0", IntoCursor(0, 0))
	w1, _ := place(t, l, "w1", SplitCursor(Root, Right))

	if n := l.NChildren(Root); n != 1 {
		t.Fatalf("root has %d children, want 1", n)
	}
	if got := items(l, 1); !slices.Equal(got, []ItemIdx{WindowItem(w0), WindowItem(w1)}) {
		t.Errorf("container 1 children = %v", got)
	}
	for _, w := range []int{w0, w1} {
		if p, _ := l.ParentContainer(WindowItem(w)); p != 1 {
			t.Errorf("parent of window %d = %d, want 1", w, p)
		}
	}
	if got := l.Bounds(WindowItem(w1)); got != Bounds(400, 0, 400, 600) {
		t.Errorf("w1 bounds = %v", got)
	}
}

func TestSplitRootWithSeveralChildren(t *testing.T) {
	l := newTestLayout(800, 600)
	a, _ := place(t, l, "a", IntoCursor(0, 0))
	b, _ := place(t, l, "b", IntoCursor(0, 1))
	c, _ := place(t, l, "c", SplitCursor(Root, Down))

	if got := l.Strategy(0); got != Horizontal {
		t.Errorf("root strategy = %v, want horizontal", got)
	}
	if got := items(l, 0); !slices.Equal(got, []ItemIdx{ContainerItem(1), WindowItem(c)}) {
		t.Fatalf("root children = %v", got)
	}
	if got := items(l, 1); !slices.Equal(got, []ItemIdx{WindowItem(a), WindowItem(b)}) {
		t.Errorf("demoted children = %v", got)
	}
	if got := l.ContainerData(0); got != 1 {
		t.Errorf("root payload = %d, want 1", got)
	}
	if got := l.ContainerData(1); got != 2 {
		t.Errorf("demoted payload = %d, want a freshly constructed 2", got)
	}
	for _, w := range []int{a, b} {
		if p, _ := l.ParentContainer(WindowItem(w)); p != 1 {
			t.Errorf("parent of window %d = %d, want 1", w, p)
		}
	}
	wantBounds := map[ItemIdx]WindowBounds{
		ContainerItem(1): Bounds(0, 0, 400, 600),
		WindowItem(a):    Bounds(0, 0, 200, 600),
		WindowItem(b):    Bounds(200, 0, 200, 600),
		WindowItem(c):    Bounds(400, 0, 400, 600),
	}
	for item, want := range wantBounds {
		if got := l.Bounds(item); got != want {
			t.Errorf("%v bounds = %v, want %v", item, got, want)
		}
	}
}

func TestSplitEmptyRoot(t *testing.T) {
	l := newTestLayout(800, 600)
	if got := l.CursorBefore(Root); got != SplitCursor(Root, Left) {
		t.Errorf("CursorBefore(root) = %v", got)
	}
	w, actions := place(t, l, "w", SplitCursor(Root, Up))
	if got := l.Strategy(0); got != Vertical {
		t.Errorf("root strategy = %v, want vertical", got)
	}
	if actions[0].Item != Root || actions[len(actions)-1].Item != WindowItem(w) {
		t.Errorf("actions = %+v", actions)
	}
	if got := l.CursorBefore(Root); got != SplitCursor(Root, Up) {
		t.Errorf("CursorBefore(root) = %v", got)
	}
}

func TestMoveWithinContainer(t *testing.T) {
	tests := []struct {
		name string
		from int
		to   int
		want []string
	}{
		{name: "FirstToEnd", from: 0, to: 3, want: []string{"b", "c", "a"}},
		{name: "FirstAfterSecond", from: 0, to: 2, want: []string{"b", "a", "c"}},
		{name: "LastToFront", from: 2, to: 0, want: []string{"c", "a", "b"}},
		{name: "GapBeforeSelf", from: 1, to: 1, want: []string{"b", "a", "c"}},
		{name: "GapAfterSelf", from: 1, to: 2, want: []string{"a", "b", "c"}},
		{name: "MiddleToEnd", from: 1, to: 3, want: []string{"a", "c", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLayout(900, 300)
			for i, name := range []string{"a", "b", "c"} {
				place(t, l, name, IntoCursor(0, i))
			}
			from := l.Children(0)[tt.from].Item
			l.Move(from, IntoCursor(0, tt.to))
			if err := l.Validate(); err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, ch := range l.Children(0) {
				got = append(got, l.WindowData(ch.Item.Index))
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
			for i, ch := range l.Children(0) {
				if want := Bounds(i*300, 0, 300, 300); l.Bounds(ch.Item) != want {
					t.Errorf("child %d bounds = %v, want %v", i, l.Bounds(ch.Item), want)
				}
			}
		})
	}
}

func TestMoveFusesOldParent(t *testing.T) {
	l := newTestLayout(800, 600)
	w0, _ := place(t, l, "w0", IntoCursor(0, 0))
	w1, _ := place(t, l, "w1", IntoCursor(0, 1))
	w2, _ := place(t, l, "w2", SplitCursor(WindowItem(w1), Down))

	// Move w2 out of the vertical pair and into the root.
	actions := l.Move(WindowItem(w2), IntoCursor(0, 0))
	if err := l.Validate(); err != nil {
		t.Fatal(err)
	}
	if l.Exists(ContainerItem(1)) {
		t.Error("container 1 survived with one child")
	}
	var destroyed int
	for _, a := range actions {
		if a.Kind == ItemDestroyed {
			destroyed++
			if a.Item != ContainerItem(1) || a.ContainerData != 2 {
				t.Errorf("destroyed %v with payload %d", a.Item, a.ContainerData)
			}
		}
	}
	if destroyed != 1 {
		t.Errorf("got %d destroy actions, want 1", destroyed)
	}
	if got := items(l, 0); !slices.Equal(got, []ItemIdx{WindowItem(w2), WindowItem(w0), WindowItem(w1)}) {
		t.Errorf("root children = %v", got)
	}
	if got := l.Bounds(WindowItem(w1)); got != Bounds(533, 0, 267, 600) {
		t.Errorf("w1 bounds = %v", got)
	}
}

func TestMoveIntoOwnSubtreePanics(t *testing.T) {
	l := newTestLayout(800, 600)
	w0, _ := place(t, l, "w0", IntoCursor(0, 0))
	place(t, l, "w1", SplitCursor(WindowItem(w0), Right))

	expectPanic(t, "container into itself", func() { l.Move(ContainerItem(1), IntoCursor(1, 0)) })
	expectPanic(t, "root", func() { l.Move(Root, IntoCursor(1, 0)) })
	expectPanic(t, "window onto itself", func() { l.Move(WindowItem(w0), SplitCursor(WindowItem(w0), Left)) })
	expectPanic(t, "stale cursor", func() { l.Move(WindowItem(w0), IntoCursor(7, 0)) })
}

func TestDestroyFusesOneLevel(t *testing.T) {
	l := newTestLayout(800, 600)
	w0, _ := place(t, l, "w0", IntoCursor(0, 0))
	w1, _ := place(t, l, "w1", SplitCursor(WindowItem(w0), Right))
	w2, _ := place(t, l, "w2", SplitCursor(WindowItem(w1), Down))

	// root -> c1(H)[w0, c2(V)[w1, w2]]
	if got := items(l, 1); !slices.Equal(got, []ItemIdx{WindowItem(w0), ContainerItem(2)}) {
		t.Fatalf("container 1 children = %v", got)
	}

	actions := l.Destroy(WindowItem(w1))
	if err := l.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(actions) != 3 {
		t.Fatalf("got %d actions: %+v", len(actions), actions)
	}
	if actions[0].Kind != ItemDestroyed || actions[0].Item != WindowItem(w1) || actions[0].WindowData != "w1" {
		t.Errorf("action 0 = %+v", actions[0])
	}
	if actions[1].Kind != ItemDestroyed || actions[1].Item != ContainerItem(2) || actions[1].ContainerData != 3 {
		t.Errorf("action 1 = %+v", actions[1])
	}
	if actions[2].Kind != NewBounds || actions[2].Item != WindowItem(w2) || actions[2].Bounds != Bounds(400, 0, 400, 600) {
		t.Errorf("action 2 = %+v", actions[2])
	}

	if l.Exists(ContainerItem(2)) {
		t.Error("container 2 still exists")
	}
	if !l.Exists(ContainerItem(1)) {
		t.Error("container 1 was collapsed too")
	}
	if p, _ := l.ParentContainer(WindowItem(w2)); p != 1 {
		t.Errorf("parent of w2 = %d, want 1", p)
	}
	if n := l.NChildren(Root); n != 1 {
		t.Errorf("root has %d children, want 1", n)
	}
}

func TestDestroyRoot(t *testing.T) {
	l := newTestLayout(800, 600)
	w0, _ := place(t, l, "w0", IntoCursor(0, 0))
	w1, _ := place(t, l, "w1", SplitCursor(WindowItem(w0), Down))
	place(t, l, "w2", SplitCursor(WindowItem(w1), Right))

	actions := l.Destroy(Root)
	want := []ItemIdx{Root, ContainerItem(1), WindowItem(0), ContainerItem(2), WindowItem(1), WindowItem(2)}
	if len(actions) != len(want) {
		t.Fatalf("got %d actions, want %d", len(actions), len(want))
	}
	for i, a := range actions {
		if a.Kind != ItemDestroyed || a.Item != want[i] {
			t.Errorf("action %d = %v %v, want item-destroyed %v", i, a.Kind, a.Item, want[i])
		}
	}
	if !l.Exists(Root) || l.NChildren(Root) != 0 {
		t.Fatal("root was not reset")
	}
	if got := l.Bounds(Root); got != Bounds(0, 0, 800, 600) {
		t.Errorf("root bounds = %v", got)
	}
	if got := l.Strategy(0); got != Horizontal {
		t.Errorf("root strategy = %v", got)
	}
	if len(l.Windows()) != 0 || len(l.Containers()) != 1 {
		t.Errorf("windows = %v, containers = %v", l.Windows(), l.Containers())
	}

	w, _ := place(t, l, "again", SplitCursor(Root, Left))
	if w != 0 {
		t.Errorf("window slot %d, want reused slot 0", w)
	}
	if got := l.Bounds(WindowItem(w)); got != Bounds(0, 0, 800, 600) {
		t.Errorf("bounds = %v", got)
	}
}

func TestDestroyDetachedWindow(t *testing.T) {
	l := newTestLayout(800, 600)
	w0, _ := place(t, l, "w0", IntoCursor(0, 0))
	loose := l.AllocWindow("loose")

	actions := l.Destroy(WindowItem(loose))
	if len(actions) != 1 || actions[0].WindowData != "loose" {
		t.Fatalf("actions = %+v", actions)
	}
	if !l.Exists(WindowItem(w0)) || l.NChildren(Root) != 1 {
		t.Error("destroying a detached window touched the tree")
	}
}

func TestCursorBeforeRoundTrip(t *testing.T) {
	l := newTestLayout(900, 600)
	place(t, l, "a", IntoCursor(0, 0))
	b, _ := place(t, l, "b", IntoCursor(0, 1))
	place(t, l, "c", IntoCursor(0, 2))

	before := l.Bounds(WindowItem(b))
	cursor := l.CursorBefore(WindowItem(b))
	if cursor != IntoCursor(0, 1) {
		t.Fatalf("CursorBefore = %v", cursor)
	}
	l.Destroy(WindowItem(b))
	d, _ := place(t, l, "d", cursor)
	if got := l.Bounds(WindowItem(d)); got != before {
		t.Errorf("bounds = %v, want %v", got, before)
	}
	if got := l.CursorBefore(WindowItem(d)); got != cursor {
		t.Errorf("CursorBefore = %v, want %v", got, cursor)
	}
}

func TestContentLength(t *testing.T) {
	l := newTestLayout(900, 600)
	var ws []int
	for i := range 3 {
		w, _ := place(t, l, "w", IntoCursor(0, i))
		ws = append(ws, w)
	}
	extents := func() []int {
		var out []int
		for _, w := range ws {
			n, _ := l.ContentLength(WindowItem(w))
			out = append(out, n)
		}
		return out
	}
	if got := extents(); !slices.Equal(got, []int{300, 300, 300}) {
		t.Fatalf("extents = %v", got)
	}

	l.SetContentLength(WindowItem(ws[0]), 450)
	if got := extents(); !slices.Equal(got, []int{450, 225, 225}) {
		t.Errorf("after set: extents = %v, want [450 225 225]", got)
	}

	l.SetContentLength(WindowItem(ws[1]), 5000)
	if got := extents(); !slices.Equal(got, []int{0, 900, 0}) {
		t.Errorf("after clamp: extents = %v, want [0 900 0]", got)
	}

	l.EqualizeContainerChildren(0)
	if got := extents(); !slices.Equal(got, []int{300, 300, 300}) {
		t.Errorf("after equalize: extents = %v", got)
	}

	if _, ok := l.ContentLength(Root); ok {
		t.Error("root has a content length")
	}
	if actions := l.SetContentLength(Root, 10); actions != nil {
		t.Errorf("setting the root's length returned %v", actions)
	}
}

func TestSetContentLengthWithZeroWeightSiblings(t *testing.T) {
	l := newTestLayout(900, 600)
	a, _ := place(t, l, "a", IntoCursor(0, 0))
	b, _ := place(t, l, "b", IntoCursor(0, 1))
	c, _ := place(t, l, "c", IntoCursor(0, 2))

	l.SetContentLength(WindowItem(a), 900)
	l.SetContentLength(WindowItem(a), 500)
	for item, want := range map[int]int{a: 500, b: 200, c: 200} {
		if got, _ := l.ContentLength(WindowItem(item)); got != want {
			t.Errorf("window %d length = %d, want %d", item, got, want)
		}
	}
}

func TestPaddingAndInter(t *testing.T) {
	l := newTestLayout(930, 610, WithPadding(5), WithInter(10))
	var ws []int
	for i := range 3 {
		w, _ := place(t, l, "w", IntoCursor(0, i))
		ws = append(ws, w)
	}
	if got := l.AvailableArea(0); got != (AreaSize{Width: 900, Height: 600}) {
		t.Fatalf("available area = %+v", got)
	}
	for i, w := range ws {
		want := Bounds(5+i*310, 5, 300, 600)
		if got := l.Bounds(WindowItem(w)); got != want {
			t.Errorf("window %d bounds = %v, want %v", i, got, want)
		}
	}
	tests := []struct {
		index int
		want  WindowBounds
	}{
		{0, Bounds(5, 5, 10, 600)},
		{1, Bounds(305, 5, 10, 600)},
		{2, Bounds(615, 5, 10, 600)},
		{3, Bounds(930, 0, 0, 610)},
	}
	for _, tt := range tests {
		if got := l.InterBounds(0, tt.index); got != tt.want {
			t.Errorf("InterBounds(0, %d) = %v, want %v", tt.index, got, tt.want)
		}
	}
}

func TestResize(t *testing.T) {
	l := newTestLayout(800, 600)
	place(t, l, "w0", IntoCursor(0, 0))
	w1, _ := place(t, l, "w1", IntoCursor(0, 1))

	actions := l.Resize(Bounds(0, 0, 1000, 500))
	if last := actions[len(actions)-1]; last.Item != Root || last.Bounds != Bounds(0, 0, 1000, 500) {
		t.Errorf("last action = %+v", last)
	}
	if got := l.Bounds(WindowItem(w1)); got != Bounds(500, 0, 500, 500) {
		t.Errorf("w1 bounds = %v", got)
	}
	if got := l.RootBounds(); got != Bounds(0, 0, 1000, 500) {
		t.Errorf("root bounds = %v", got)
	}

	// Unchanged geometry produces no child actions.
	actions = l.Resize(Bounds(0, 0, 1000, 500))
	if len(actions) != 1 {
		t.Errorf("repeat resize produced %d actions", len(actions))
	}
}

// navTree builds root(H)[w0, c1(V)[w1, w2]] on an 800x600 surface.
func navTree(t *testing.T) (*testLayout, int, int, int) {
	t.Helper()
	l := newTestLayout(800, 600)
	w0, _ := place(t, l, "w0", IntoCursor(0, 0))
	w1, _ := place(t, l, "w1", IntoCursor(0, 1))
	w2, _ := place(t, l, "w2", SplitCursor(WindowItem(w1), Down))
	return l, w0, w1, w2
}

func TestNavigate(t *testing.T) {
	l, w0, w1, w2 := navTree(t)
	low := Position{X: 0, Y: 450}

	tests := []struct {
		name  string
		from  ItemIdx
		dir   Direction
		point *Position
		want  ItemIdx
		ok    bool
	}{
		{"RightEntersTopByDefault", WindowItem(w0), Right, nil, WindowItem(w1), true},
		{"RightSeeksPoint", WindowItem(w0), Right, &low, WindowItem(w2), true},
		{"LeftFromBottom", WindowItem(w2), Left, nil, WindowItem(w0), true},
		{"DownInColumn", WindowItem(w1), Down, nil, WindowItem(w2), true},
		{"UpInColumn", WindowItem(w2), Up, nil, WindowItem(w1), true},
		{"DownAtEdge", WindowItem(w2), Down, nil, ItemIdx{}, false},
		{"UpFromLeft", WindowItem(w0), Up, nil, ItemIdx{}, false},
		{"RightAtEdge", WindowItem(w1), Right, nil, ItemIdx{}, false},
		{"Root", Root, Left, nil, ItemIdx{}, false},
		{"ContainerLeft", ContainerItem(1), Left, nil, WindowItem(w0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := l.Navigate(tt.from, tt.dir, tt.point)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Navigate(%v, %v) = %v, %v; want %v, %v", tt.from, tt.dir, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNavigate2BetweenItems(t *testing.T) {
	l, _, _, _ := navTree(t)

	tests := []struct {
		name       string
		from       ChildLocation
		dir        Direction
		mayDescend bool
		want       ChildLocation
		ok         bool
	}{
		{"PastTheEnd", ChildLocation{0, 1}, Right, false, ChildLocation{0, 2}, true},
		{"StaysInContainer", ChildLocation{0, 0}, Right, false, ChildLocation{0, 1}, true},
		{"DescendsWhenAllowed", ChildLocation{0, 0}, Right, true, ChildLocation{1, 0}, true},
		{"LeavesNestedContainer", ChildLocation{1, 0}, Left, false, ChildLocation{0, 0}, true},
		{"GapBelowColumn", ChildLocation{1, 1}, Down, false, ChildLocation{1, 2}, true},
		{"NothingFurther", ChildLocation{0, 2}, Right, false, ChildLocation{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := l.Navigate2(tt.from, tt.dir, nil, true, tt.mayDescend)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Navigate2(%v, %v) = %v, %v; want %v, %v", tt.from, tt.dir, got, ok, tt.want, tt.ok)
			}
		})
	}
	expectPanic(t, "past the end without gaps", func() {
		l.Navigate2(ChildLocation{0, 2}, Left, nil, false, true)
	})
}

func TestTraversal(t *testing.T) {
	l, w0, w1, w2 := navTree(t)

	got := slices.Collect(l.All())
	want := []ItemIdx{Root, WindowItem(w0), ContainerItem(1), WindowItem(w1), WindowItem(w2)}
	if !slices.Equal(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}
	got = slices.Collect(l.Descendants(ContainerItem(1)))
	if want := want[2:]; !slices.Equal(got, want) {
		t.Errorf("Descendants(c1) = %v, want %v", got, want)
	}

	it := l.IterDescendants(WindowItem(w1))
	if item, ok := it.Next(); !ok || item != WindowItem(w1) {
		t.Errorf("Next() = %v, %v", item, ok)
	}
	if _, ok := it.Next(); ok {
		t.Error("iterator over a window yielded twice")
	}
	if _, ok := it.Next(); ok {
		t.Error("exhausted iterator restarted")
	}

	nextTests := []struct {
		from ItemIdx
		want ItemIdx
		ok   bool
	}{
		{WindowItem(w0), ContainerItem(1), true},
		{WindowItem(w1), WindowItem(w2), true},
		{WindowItem(w2), ItemIdx{}, false},
		{Root, ItemIdx{}, false},
	}
	for _, tt := range nextTests {
		if got, ok := l.TopologicalNext(tt.from); got != tt.want || ok != tt.ok {
			t.Errorf("TopologicalNext(%v) = %v, %v; want %v, %v", tt.from, got, ok, tt.want, tt.ok)
		}
	}
	if got := l.TopologicalLast(); got != WindowItem(w2) {
		t.Errorf("TopologicalLast() = %v", got)
	}
	if got := newTestLayout(10, 10).TopologicalLast(); got != Root {
		t.Errorf("TopologicalLast() on empty layout = %v", got)
	}
}

func TestAccessors(t *testing.T) {
	l, w0, w1, w2 := navTree(t)

	if got := l.NearestContainer(WindowItem(w2)); got != 1 {
		t.Errorf("NearestContainer(w2) = %d", got)
	}
	if got := l.NearestContainer(ContainerItem(1)); got != 1 {
		t.Errorf("NearestContainer(c1) = %d", got)
	}
	if !l.IsAncestor(Root, WindowItem(w2)) || !l.IsAncestor(ContainerItem(1), WindowItem(w1)) {
		t.Error("IsAncestor missed an ancestor")
	}
	if l.IsAncestor(ContainerItem(1), WindowItem(w0)) || l.IsAncestor(WindowItem(w1), WindowItem(w2)) {
		t.Error("IsAncestor reported a non-ancestor")
	}
	slot, ok := l.SlotInContainer(WindowItem(w2))
	if !ok || slot != (SlotInContainer{Container: 1, Index: 1, ParentStrategy: Vertical}) {
		t.Errorf("SlotInContainer(w2) = %+v, %v", slot, ok)
	}
	if item, ok := l.ItemFromChildLocation(ChildLocation{1, 2}); ok {
		t.Errorf("past-the-end location yielded %v", item)
	}
	if got, _ := l.WindowAt(Position{X: 500, Y: 450}); got != w2 {
		t.Errorf("WindowAt = %d, want %d", got, w2)
	}
	if _, ok := l.WindowAt(Position{X: 800, Y: 0}); ok {
		t.Error("WindowAt matched a point outside the surface")
	}
	if !l.IsCursorValid(IntoCursor(1, 2)) || l.IsCursorValid(IntoCursor(1, 3)) || l.IsCursorValid(IntoCursor(4, 0)) {
		t.Error("IsCursorValid misjudged an Into cursor")
	}
	if _, ok := l.TryBounds(WindowItem(9)); ok {
		t.Error("TryBounds found a missing window")
	}
	expectPanic(t, "Bounds of missing window", func() { l.Bounds(WindowItem(9)) })

	l.SetWindowData(w0, "renamed")
	if got, _ := l.TryWindowData(w0); got != "renamed" {
		t.Errorf("window data = %q", got)
	}
	if _, ok := l.TryContainerData(5); ok {
		t.Error("TryContainerData found a missing container")
	}
}

func TestSlotReuse(t *testing.T) {
	l, w0, w1, _ := navTree(t)
	l.Destroy(WindowItem(w1))
	if l.Exists(ContainerItem(1)) {
		t.Fatal("container 1 not fused")
	}
	w3, _ := place(t, l, "w3", SplitCursor(WindowItem(w0), Down))
	if w3 != w1 {
		t.Errorf("new window got slot %d, want reused %d", w3, w1)
	}
	if p, _ := l.ParentContainer(WindowItem(w3)); p != 1 {
		t.Errorf("split container got slot %d, want reused 1", p)
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(s *Snapshot[string, int])
		want    error
	}{
		{"MissingRoot", func(s *Snapshot[string, int]) { s.Containers[0] = nil }, ErrMissingRoot},
		{"UnfusedContainer", func(s *Snapshot[string, int]) {
			s.Containers[1].Children = s.Containers[1].Children[:1]
		}, ErrUnfusedContainer},
		{"DuplicateChild", func(s *Snapshot[string, int]) {
			s.Containers[0].Children = append(s.Containers[0].Children, s.Containers[0].Children[0])
		}, ErrDuplicateChild},
		{"ParentMismatch", func(s *Snapshot[string, int]) {
			zero := 0
			s.Windows[1].Parent = &zero
		}, ErrParentMismatch},
		{"InvalidWeight", func(s *Snapshot[string, int]) { s.Containers[1].Children[0].Weight = -1 }, ErrInvalidWeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _, _, _ := navTree(t)
			s := l.Snapshot()
			tt.corrupt(&s)
			_, err := Restore(s, ConstructorFunc[int](func() int { return 0 }))
			if !errors.Is(err, tt.want) {
				t.Errorf("Restore() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSnapshotRestore(t *testing.T) {
	l, w0, w1, w2 := navTree(t)
	l.Destroy(WindowItem(w0))
	s := l.Snapshot()
	if s.Windows[w0] != nil {
		t.Fatal("freed window slot not kept as nil")
	}

	r, err := Restore(s, ConstructorFunc[int](func() int { return 99 }))
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range []int{w1, w2} {
		if r.Bounds(WindowItem(w)) != l.Bounds(WindowItem(w)) {
			t.Errorf("window %d bounds differ after restore", w)
		}
	}
	if got := items(r, 0); !slices.Equal(got, items(l, 0)) {
		t.Errorf("root children = %v, want %v", got, items(l, 0))
	}
	w, _ := place(t, r, "new", SplitCursor(WindowItem(w1), Left))
	if w != w0 {
		t.Errorf("restored layout allocated slot %d, want freed slot %d", w, w0)
	}
	if got := r.ContainerData(r.NearestContainer(WindowItem(w))); got != 99 {
		t.Errorf("new container payload = %d, want 99", got)
	}
}

// TestRandomOperations drives the engine with a fixed pseudo-random sequence
// of moves and destroys and checks the invariants after each step. At most
// eight windows are live so no item shrinks below a few pixels.
func TestRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	l := newTestLayout(1200, 900)
	dirs := []Direction{Up, Down, Left, Right}

	for step := range 400 {
		attached := slices.Collect(l.All())
		windows := l.Windows()
		op := rng.IntN(10)
		switch {
		case len(windows) == 0 || (op < 6 && len(windows) < 8):
			var from int
			if len(windows) > 0 && rng.IntN(3) == 0 {
				from = windows[rng.IntN(len(windows))]
			} else {
				from = l.AllocWindow("w")
			}
			var to MoveCursor
			if rng.IntN(2) == 0 {
				target := attached[rng.IntN(len(attached))]
				if target == WindowItem(from) {
					target = Root
				}
				to = SplitCursor(target, dirs[rng.IntN(len(dirs))])
			} else {
				cs := l.Containers()
				c := cs[rng.IntN(len(cs))]
				to = IntoCursor(c, rng.IntN(l.NChildren(ContainerItem(c))+1))
			}
			l.Move(WindowItem(from), to)
		case op < 9 || len(l.Containers()) == 1:
			l.Destroy(WindowItem(windows[rng.IntN(len(windows))]))
		default:
			nonRoot := slices.DeleteFunc(l.Containers(), func(c int) bool { return c == 0 })
			l.Destroy(ContainerItem(nonRoot[rng.IntN(len(nonRoot))]))
		}
		if err := l.Validate(); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
	}

	// A resize to a new surface relays out every item.
	l.Resize(Bounds(0, 0, 1000, 700))
	l.Resize(Bounds(0, 0, 1201, 901))
	area := 0
	for _, w := range l.Windows() {
		if _, ok := l.ParentContainer(WindowItem(w)); ok {
			b := l.Bounds(WindowItem(w))
			area += b.Content.Width * b.Content.Height
		}
	}
	if l.NChildren(Root) > 0 && area != 1201*901 {
		t.Errorf("windows cover %d px, want %d", area, 1201*901)
	}
}
