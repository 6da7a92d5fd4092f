package layout

import (
	"fmt"
	"slices"
)

// Snapshot is a structural copy of a layout, slot for slot. Freed slots are
// kept as nil entries so indices survive a round trip. The JSON form is meant
// for debugging and introspection and carries no compatibility promise.
type Snapshot[W, C any] struct {
	RootBounds WindowBounds            `json:"root_bounds"`
	Padding    int                     `json:"padding"`
	Inter      int                     `json:"inter"`
	Windows    []*WindowSnapshot[W]    `json:"windows"`
	Containers []*ContainerSnapshot[C] `json:"containers"`
}

// WindowSnapshot is one window slot. Parent is nil for a detached window.
type WindowSnapshot[W any] struct {
	Bounds WindowBounds `json:"bounds"`
	Parent *int         `json:"parent"`
	Data   W            `json:"data"`
}

// ContainerSnapshot is one container slot. Parent is nil for the root.
type ContainerSnapshot[C any] struct {
	Strategy Strategy     `json:"strategy"`
	Children []Child      `json:"children"`
	Parent   *int         `json:"parent"`
	Bounds   WindowBounds `json:"bounds"`
	Inter    int          `json:"inter"`
	Padding  int          `json:"padding"`
	Data     C            `json:"data"`
}

func parentRef(p int) *int {
	if p == noParent {
		return nil
	}
	return &p
}

func parentIdx(p *int) int {
	if p == nil {
		return noParent
	}
	return *p
}

// Snapshot copies the tree. Payloads are copied by value.
func (l *Layout[W, C]) Snapshot() Snapshot[W, C] {
	s := Snapshot[W, C]{
		RootBounds: l.rootBounds,
		Padding:    l.padding,
		Inter:      l.inter,
		Windows:    make([]*WindowSnapshot[W], len(l.windows)),
		Containers: make([]*ContainerSnapshot[C], len(l.containers)),
	}
	for i, w := range l.windows {
		if w != nil {
			s.Windows[i] = &WindowSnapshot[W]{Bounds: w.bounds, Parent: parentRef(w.parent), Data: w.data}
		}
	}
	for i, c := range l.containers {
		if c != nil {
			s.Containers[i] = &ContainerSnapshot[C]{
				Strategy: c.strategy,
				Children: slices.Clone(c.children),
				Parent:   parentRef(c.parent),
				Bounds:   c.bounds,
				Inter:    c.inter,
				Padding:  c.padding,
				Data:     c.data,
			}
		}
	}
	return s
}

// Restore rebuilds a layout from s. Padding and inter defaults come from the
// snapshot; opts may still set a logger. The result is checked with
// [Layout.Validate] and an error is returned if the snapshot is inconsistent.
func Restore[W, C any](s Snapshot[W, C], cctor Constructor[C], opts ...Option) (*Layout[W, C], error) {
	if cctor == nil {
		panic("layout: nil constructor")
	}
	o := buildOptions(opts)
	l := &Layout[W, C]{
		windows:    make([]*windowSlot[W], len(s.Windows)),
		containers: make([]*containerSlot[C], len(s.Containers)),
		rootBounds: s.RootBounds,
		padding:    max(s.Padding, 0),
		inter:      max(s.Inter, 0),
		cctor:      cctor,
		logger:     o.logger,
	}
	for i, w := range s.Windows {
		if w != nil {
			l.windows[i] = &windowSlot[W]{bounds: w.Bounds, parent: parentIdx(w.Parent), data: w.Data}
		}
	}
	for i, c := range s.Containers {
		if c != nil {
			l.containers[i] = &containerSlot[C]{
				strategy: c.Strategy,
				children: slices.Clone(c.Children),
				parent:   parentIdx(c.Parent),
				bounds:   c.Bounds,
				inter:    max(c.Inter, 0),
				padding:  max(c.Padding, 0),
				data:     c.Data,
			}
		}
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("restore layout: %w", err)
	}
	return l, nil
}
