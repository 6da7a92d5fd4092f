package layout

import (
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
)

// noParent marks a slot that is not attached to any container.
const noParent = -1

// Constructor produces the payload of every container the engine creates.
type Constructor[C any] interface {
	Construct() C
}

// ConstructorFunc adapts a function to the Constructor interface.
type ConstructorFunc[C any] func() C

// Construct calls f.
func (f ConstructorFunc[C]) Construct() C { return f() }

type windowSlot[W any] struct {
	bounds WindowBounds
	parent int
	data   W
}

type containerSlot[C any] struct {
	strategy Strategy
	children []Child
	parent   int
	bounds   WindowBounds
	inter    int
	padding  int
	data     C
}

func (c *containerSlot[C]) indexOf(item ItemIdx) int {
	return slices.IndexFunc(c.children, func(ch Child) bool { return ch.Item == item })
}

func (c *containerSlot[C]) totalWeight() float64 {
	var total float64
	for _, ch := range c.children {
		total += ch.Weight
	}
	return total
}

// Layout is a tree of windows and containers covering a rectangular
// surface. Container slot 0 is always the root.
//
// Layout is a synchronous data structure: every mutating method runs to
// completion and returns the actions the host must apply. It never calls back
// into host code and is not safe for concurrent use.
type Layout[W, C any] struct {
	windows    []*windowSlot[W]
	containers []*containerSlot[C]
	rootBounds WindowBounds
	padding    int
	inter      int
	cctor      Constructor[C]
	logger     *log.Logger
}

// Option configures a Layout.
type Option func(*options)

type options struct {
	padding int
	inter   int
	logger  *log.Logger
}

// WithPadding sets the inset applied on all sides of every container.
func WithPadding(px int) Option {
	return func(o *options) { o.padding = max(px, 0) }
}

// WithInter sets the gap between adjacent children of every container.
func WithInter(px int) Option {
	return func(o *options) { o.inter = max(px, 0) }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// New creates a layout whose empty, horizontal root covers bounds. cctor is
// called once for the root and once for every container created later.
func New[W, C any](bounds WindowBounds, cctor Constructor[C], opts ...Option) *Layout[W, C] {
	if cctor == nil {
		panic("layout: nil constructor")
	}
	o := buildOptions(opts)
	l := &Layout[W, C]{
		rootBounds: bounds,
		padding:    o.padding,
		inter:      o.inter,
		cctor:      cctor,
		logger:     o.logger,
	}
	l.containers = append(l.containers, l.newRoot())
	return l
}

func (l *Layout[W, C]) newRoot() *containerSlot[C] {
	return &containerSlot[C]{
		strategy: Horizontal,
		parent:   noParent,
		bounds:   l.rootBounds,
		inter:    l.inter,
		padding:  l.padding,
		data:     l.cctor.Construct(),
	}
}

func (l *Layout[W, C]) win(idx int) *windowSlot[W] {
	if idx < 0 || idx >= len(l.windows) || l.windows[idx] == nil {
		panic(fmt.Sprintf("layout: window %d does not exist", idx))
	}
	return l.windows[idx]
}

func (l *Layout[W, C]) ctr(idx int) *containerSlot[C] {
	if idx < 0 || idx >= len(l.containers) || l.containers[idx] == nil {
		panic(fmt.Sprintf("layout: container %d does not exist", idx))
	}
	return l.containers[idx]
}

// freeContainerSlot returns the first tombstoned container slot, growing the
// arena when there is none.
func (l *Layout[W, C]) freeContainerSlot() int {
	if idx := slices.Index(l.containers, nil); idx >= 0 {
		return idx
	}
	l.containers = append(l.containers, nil)
	return len(l.containers) - 1
}

func (l *Layout[W, C]) setParent(item ItemIdx, parent int) {
	if item.IsContainer() {
		l.ctr(item.Index).parent = parent
	} else {
		l.win(item.Index).parent = parent
	}
}

// AllocWindow stores data in a free window slot and returns its index. The
// window is detached until it is placed with Move.
func (l *Layout[W, C]) AllocWindow(data W) int {
	idx := slices.Index(l.windows, nil)
	if idx < 0 {
		l.windows = append(l.windows, nil)
		idx = len(l.windows) - 1
	}
	l.windows[idx] = &windowSlot[W]{parent: noParent, data: data}
	return idx
}

// Exists reports whether item refers to a live slot. It is the only safe
// way to check an index obtained before a mutation.
func (l *Layout[W, C]) Exists(item ItemIdx) bool {
	if item.IsContainer() {
		return item.Index >= 0 && item.Index < len(l.containers) && l.containers[item.Index] != nil
	}
	return item.Index >= 0 && item.Index < len(l.windows) && l.windows[item.Index] != nil
}

// ParentContainer returns the index of item's parent container. It returns
// false for the root and for detached windows.
func (l *Layout[W, C]) ParentContainer(item ItemIdx) (int, bool) {
	var parent int
	if item.IsContainer() {
		parent = l.ctr(item.Index).parent
	} else {
		parent = l.win(item.Index).parent
	}
	return parent, parent != noParent
}

// NearestContainer returns item itself when it is a container, otherwise
// its parent.
func (l *Layout[W, C]) NearestContainer(item ItemIdx) int {
	if item.IsContainer() {
		l.ctr(item.Index)
		return item.Index
	}
	parent, ok := l.ParentContainer(item)
	if !ok {
		panic(fmt.Sprintf("layout: %s is detached", item))
	}
	return parent
}

// IndexInParent returns item's position in its parent's child list.
func (l *Layout[W, C]) IndexInParent(item ItemIdx) (int, bool) {
	parent, ok := l.ParentContainer(item)
	if !ok {
		return 0, false
	}
	idx := l.ctr(parent).indexOf(item)
	if idx < 0 {
		panic(fmt.Sprintf("layout: %s not listed in container %d", item, parent))
	}
	return idx, true
}

// ChildLocation returns the location of item inside its parent. It returns
// false for the root.
func (l *Layout[W, C]) ChildLocation(item ItemIdx) (ChildLocation, bool) {
	parent, ok := l.ParentContainer(item)
	if !ok {
		return ChildLocation{}, false
	}
	idx, _ := l.IndexInParent(item)
	return ChildLocation{Container: parent, Index: idx}, true
}

// ItemFromChildLocation returns the item at cl. It returns false when cl
// points one past the last child.
func (l *Layout[W, C]) ItemFromChildLocation(cl ChildLocation) (ItemIdx, bool) {
	c := l.ctr(cl.Container)
	if cl.Index < 0 || cl.Index > len(c.children) {
		panic(fmt.Sprintf("layout: index %d out of range for container %d", cl.Index, cl.Container))
	}
	if cl.Index == len(c.children) {
		return ItemIdx{}, false
	}
	return c.children[cl.Index].Item, true
}

// SlotInContainer describes item's position in its parent, or returns
// false for the root.
func (l *Layout[W, C]) SlotInContainer(item ItemIdx) (SlotInContainer, bool) {
	loc, ok := l.ChildLocation(item)
	if !ok {
		return SlotInContainer{}, false
	}
	return SlotInContainer{
		Container:      loc.Container,
		Index:          loc.Index,
		ParentStrategy: l.ctr(loc.Container).strategy,
	}, true
}

// IsAncestor reports whether ancestor is descendant or one of its
// ancestors. Every item is its own ancestor.
func (l *Layout[W, C]) IsAncestor(ancestor, descendant ItemIdx) bool {
	if ancestor == descendant {
		return true
	}
	if !ancestor.IsContainer() {
		return false
	}
	for {
		parent, ok := l.ParentContainer(descendant)
		if !ok {
			return false
		}
		if parent == ancestor.Index {
			return true
		}
		descendant = ContainerItem(parent)
	}
}

// IsCursorValid reports whether cursor still refers to live slots.
func (l *Layout[W, C]) IsCursorValid(cursor MoveCursor) bool {
	if cursor.Kind == CursorSplit {
		return l.Exists(cursor.Item)
	}
	if !l.Exists(ContainerItem(cursor.Container)) {
		return false
	}
	return cursor.Index >= 0 && cursor.Index <= len(l.containers[cursor.Container].children)
}

// CursorBefore returns the canonical cursor describing point's current
// position: the gap before it in its parent, or a split of the root along
// the root's own axis when point has no parent.
func (l *Layout[W, C]) CursorBefore(point ItemIdx) MoveCursor {
	if loc, ok := l.ChildLocation(point); ok {
		return IntoCursor(loc.Container, loc.Index)
	}
	dir := Left
	if l.ctr(0).strategy == Vertical {
		dir = Up
	}
	return SplitCursor(Root, dir)
}

// Children returns a copy of container c's weighted child list.
func (l *Layout[W, C]) Children(c int) []Child {
	return slices.Clone(l.ctr(c).children)
}

// NChildren returns the number of children of item; windows have none.
func (l *Layout[W, C]) NChildren(item ItemIdx) int {
	if item.IsWindow() {
		return 0
	}
	return len(l.ctr(item.Index).children)
}

// Strategy returns the layout axis of container c.
func (l *Layout[W, C]) Strategy(c int) Strategy {
	return l.ctr(c).strategy
}

// RootBounds returns the surface the root covers.
func (l *Layout[W, C]) RootBounds() WindowBounds {
	return l.rootBounds
}

// TryBounds returns item's current bounds, or false if it does not exist.
func (l *Layout[W, C]) TryBounds(item ItemIdx) (WindowBounds, bool) {
	if !l.Exists(item) {
		return WindowBounds{}, false
	}
	if item.IsContainer() {
		return l.containers[item.Index].bounds, true
	}
	return l.windows[item.Index].bounds, true
}

// Bounds returns item's current bounds and panics if it does not exist.
func (l *Layout[W, C]) Bounds(item ItemIdx) WindowBounds {
	b, ok := l.TryBounds(item)
	if !ok {
		panic(fmt.Sprintf("layout: %s does not exist", item))
	}
	return b
}

// WindowAt returns the first window whose bounds contain p.
func (l *Layout[W, C]) WindowAt(p Position) (int, bool) {
	for idx, w := range l.windows {
		if w != nil && w.parent != noParent && w.bounds.Contains(p) {
			return idx, true
		}
	}
	return 0, false
}

// Windows returns the indices of all live windows, attached or not.
func (l *Layout[W, C]) Windows() []int {
	var out []int
	for idx, w := range l.windows {
		if w != nil {
			out = append(out, idx)
		}
	}
	return out
}

// Containers returns the indices of all live containers.
func (l *Layout[W, C]) Containers() []int {
	var out []int
	for idx, c := range l.containers {
		if c != nil {
			out = append(out, idx)
		}
	}
	return out
}

// WindowData returns the payload of window idx.
func (l *Layout[W, C]) WindowData(idx int) W { return l.win(idx).data }

// TryWindowData returns the payload of window idx if it exists.
func (l *Layout[W, C]) TryWindowData(idx int) (W, bool) {
	if !l.Exists(WindowItem(idx)) {
		var zero W
		return zero, false
	}
	return l.windows[idx].data, true
}

// SetWindowData replaces the payload of window idx.
func (l *Layout[W, C]) SetWindowData(idx int, data W) { l.win(idx).data = data }

// ContainerData returns the payload of container idx.
func (l *Layout[W, C]) ContainerData(idx int) C { return l.ctr(idx).data }

// TryContainerData returns the payload of container idx if it exists.
func (l *Layout[W, C]) TryContainerData(idx int) (C, bool) {
	if !l.Exists(ContainerItem(idx)) {
		var zero C
		return zero, false
	}
	return l.containers[idx].data, true
}

// SetContainerData replaces the payload of container idx.
func (l *Layout[W, C]) SetContainerData(idx int, data C) { l.ctr(idx).data = data }
