// Package wm models the window-manager side of a tiling layout.
//
// A [Manager] owns a [layout.Layout] whose windows carry [Client] payloads
// and whose containers carry [Frame] payloads. On top of the tree it keeps
// the two pieces of user-facing state a tiling window manager needs:
//
//   - the point: the focused item, a window or a container
//   - the cursor: an optional pending insertion point for the next window
//     or for moving the point
//
// Every engine call returns actions. The manager applies them to a geometry
// table, the same way a real host would resize and destroy windows, so the
// table is the host's view of the screen rather than a copy of the tree.
//
// A Manager is safe for concurrent use; operations are serialised.
package wm
