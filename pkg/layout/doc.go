// Package layout implements a tiling window-layout engine: a tree of windows
// and containers that covers a rectangular surface and recomputes every
// region's geometry as items are inserted, moved, resized or destroyed.
//
// # Overview
//
// A [Layout] stores two arenas of slots, one for windows and one for
// containers, addressed by [ItemIdx]. Container 0 is always the root. Each
// container lays its children out along one axis ([Horizontal] or
// [Vertical]) and gives each a share of the space proportional to its
// weight. Freed slots are reused before the arenas grow, so an index is only
// meaningful until the next [Layout.Destroy] that could free it; use
// [Layout.Exists] to check one.
//
// # Mutations and Actions
//
// Every mutating method returns a slice of [Action] values for the host to
// apply in order: NewBounds when an item moved or appeared, ItemDestroyed
// when a slot was freed (carrying the payload back), ItemHidden when a window
// is no longer visible. Only items whose bounds actually changed are
// reported.
//
//	l := layout.New[string, int](layout.Bounds(0, 0, 1920, 1080), layout.ConstructorFunc[int](func() int { return 0 }))
//	w := l.AllocWindow("term")
//	actions := l.Move(layout.WindowItem(w), layout.IntoCursor(0, 0))
//
// Items are placed with [MoveCursor] values: [SplitCursor] replaces an item
// with a new two-child container, [IntoCursor] inserts into an existing
// container at an index. [Layout.CursorBefore] describes where an item sits
// now, which is how hosts seed and compare insertion cursors.
//
// Containers are created only by splitting and are removed automatically
// ("fused") when a removal leaves them with a single child. The root is never
// fused and may hold a single child after a split forwards through it.
//
// # Navigation
//
// [Layout.Navigate] finds the neighbour of an item in a direction: it climbs
// to the nearest ancestor laid out along that axis with room to move, then
// descends, keeping to the same column or row when it crosses into a
// container of the other orientation. [Layout.Navigate2] does the same for
// child locations and can also stop on the gaps between items.
//
// # Errors
//
// Stale indices, out-of-range locations and moves into an item's own subtree
// are programmer errors and panic with a message prefixed "layout:". Nothing
// else fails: lengths are clamped and navigation that leads nowhere returns
// false. [Layout.Validate] reports broken invariants as wrapped sentinel
// errors and is run by [Restore].
//
// # Concurrency
//
// A Layout is not safe for concurrent use. It never calls back into host
// code; hosts serialize calls themselves.
package layout
