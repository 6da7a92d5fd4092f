package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Strategy is the axis along which a container lays out its children.
type Strategy int

const (
	// Horizontal places children left to right: [ a | b | c ].
	Horizontal Strategy = iota
	// Vertical places children top to bottom.
	Vertical
)

func (s Strategy) String() string {
	switch s {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return "Strategy(" + strconv.Itoa(int(s)) + ")"
}

// MarshalText encodes the strategy by name.
func (s Strategy) MarshalText() ([]byte, error) {
	if s != Horizontal && s != Vertical {
		return nil, fmt.Errorf("invalid strategy %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a strategy name.
func (s *Strategy) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "horizontal":
		*s = Horizontal
	case "vertical":
		*s = Vertical
	default:
		return fmt.Errorf("unknown strategy %q", text)
	}
	return nil
}

// Direction is one of the four planar directions used for splitting and
// navigation.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionNames = [...]string{"up", "down", "left", "right"}

func (d Direction) String() string {
	if d < Up || d > Right {
		return "Direction(" + strconv.Itoa(int(d)) + ")"
	}
	return directionNames[d]
}

// ParseDirection converts "up", "down", "left" or "right" (case-insensitive,
// vim-style h/j/k/l also accepted) into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "k":
		return Up, nil
	case "down", "j":
		return Down, nil
	case "left", "h":
		return Left, nil
	case "right", "l":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	if d < Up || d > Right {
		return nil, fmt.Errorf("invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a direction name.
func (d *Direction) UnmarshalText(text []byte) error {
	dir, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = dir
	return nil
}

// Horizontal reports whether d moves along the x axis.
func (d Direction) Horizontal() bool { return d == Left || d == Right }

// Forward reports whether d moves towards larger coordinates.
func (d Direction) Forward() bool { return d == Right || d == Down }

// splitParams maps a split direction to the strategy of the new container and
// whether the inserted item comes first in it.
func (d Direction) splitParams() (Strategy, bool) {
	switch d {
	case Up:
		return Vertical, true
	case Down:
		return Vertical, false
	case Left:
		return Horizontal, true
	case Right:
		return Horizontal, false
	}
	panic(fmt.Sprintf("layout: invalid direction %d", int(d)))
}

// ItemKind tags an ItemIdx as a window or a container.
type ItemKind int

const (
	KindWindow ItemKind = iota
	KindContainer
)

// ItemIdx addresses a slot in one of the two arenas. It is a closed
// two-variant union; build values with WindowItem and ContainerItem.
//
// Indices are reused after destruction, so an ItemIdx must not be kept
// across a Destroy (or Move) that may have freed it. Use Layout.Exists to
// check liveness.
type ItemIdx struct {
	Kind  ItemKind
	Index int
}

// WindowItem addresses window slot idx.
func WindowItem(idx int) ItemIdx { return ItemIdx{Kind: KindWindow, Index: idx} }

// ContainerItem addresses container slot idx.
func ContainerItem(idx int) ItemIdx { return ItemIdx{Kind: KindContainer, Index: idx} }

// Root addresses the root container.
var Root = ContainerItem(0)

// IsWindow reports whether the item is a window.
func (i ItemIdx) IsWindow() bool { return i.Kind == KindWindow }

// IsContainer reports whether the item is a container.
func (i ItemIdx) IsContainer() bool { return i.Kind == KindContainer }

func (i ItemIdx) String() string {
	if i.Kind == KindContainer {
		return "container:" + strconv.Itoa(i.Index)
	}
	return "window:" + strconv.Itoa(i.Index)
}

// MarshalText encodes the item as "window:N" or "container:N".
func (i ItemIdx) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText decodes the form produced by MarshalText. The short forms
// "wN" and "cN" are accepted too.
func (i *ItemIdx) UnmarshalText(text []byte) error {
	item, err := ParseItem(string(text))
	if err != nil {
		return err
	}
	*i = item
	return nil
}

// ParseItem parses "window:N", "container:N", "wN" or "cN".
func ParseItem(s string) (ItemIdx, error) {
	s = strings.TrimSpace(s)
	kind, num, ok := strings.Cut(s, ":")
	if !ok && len(s) > 1 {
		kind, num = s[:1], s[1:]
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return ItemIdx{}, fmt.Errorf("invalid item %q", s)
	}
	switch kind {
	case "window", "w":
		return WindowItem(n), nil
	case "container", "c":
		return ContainerItem(n), nil
	}
	return ItemIdx{}, fmt.Errorf("invalid item %q", s)
}

// Child is one weighted entry in a container's child list.
type Child struct {
	Weight float64 `json:"weight"`
	Item   ItemIdx `json:"item"`
}

// ChildLocation is a position inside a container's child list. Index may
// equal the child count when it denotes the gap after the last child.
type ChildLocation struct {
	Container int `json:"container"`
	Index     int `json:"index"`
}

// SlotInContainer describes where an item sits and along which axis its
// parent lays it out.
type SlotInContainer struct {
	Container      int
	Index          int
	ParentStrategy Strategy
}

// CursorKind tags a MoveCursor.
type CursorKind int

const (
	// CursorSplit replaces Item with a new container holding Item and the
	// inserted item, ordered by Direction.
	CursorSplit CursorKind = iota
	// CursorInto inserts directly as child Index of Container.
	CursorInto
)

// MoveCursor is an insertion point. Build values with SplitCursor and
// IntoCursor. Cursors are comparable; hosts rely on == to detect a cursor
// that did not move.
type MoveCursor struct {
	Kind      CursorKind `json:"kind"`
	Item      ItemIdx    `json:"item"`
	Direction Direction  `json:"direction"`
	Container int        `json:"container"`
	Index     int        `json:"index"`
}

// SplitCursor returns a cursor that splits item in direction dir.
func SplitCursor(item ItemIdx, dir Direction) MoveCursor {
	return MoveCursor{Kind: CursorSplit, Item: item, Direction: dir}
}

// IntoCursor returns a cursor that inserts into container at index.
func IntoCursor(container, index int) MoveCursor {
	return MoveCursor{Kind: CursorInto, Container: container, Index: index}
}

// Target returns the item the cursor refers to: the split item, or the
// container being inserted into.
func (c MoveCursor) Target() ItemIdx {
	if c.Kind == CursorInto {
		return ContainerItem(c.Container)
	}
	return c.Item
}

func (c MoveCursor) String() string {
	if c.Kind == CursorInto {
		return fmt.Sprintf("into(container:%d, %d)", c.Container, c.Index)
	}
	return fmt.Sprintf("split(%s, %s)", c.Item, c.Direction)
}

// MarshalText encodes the kind as "split" or "into".
func (k CursorKind) MarshalText() ([]byte, error) {
	switch k {
	case CursorSplit:
		return []byte("split"), nil
	case CursorInto:
		return []byte("into"), nil
	}
	return nil, fmt.Errorf("invalid cursor kind %d", int(k))
}

// UnmarshalText decodes "split" or "into".
func (k *CursorKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "split":
		*k = CursorSplit
	case "into":
		*k = CursorInto
	default:
		return fmt.Errorf("unknown cursor kind %q", text)
	}
	return nil
}
