package layout

import (
	"fmt"
	"slices"
)

// Destroy frees item and everything beneath it. An ItemDestroyed action is
// returned for each freed slot in pre-order, item first, carrying the
// payload the engine no longer references.
//
// Destroying the root frees its whole subtree and installs a fresh, empty,
// horizontal root over the same bounds. Otherwise item's parent is fused if
// it is left with one child, and the survivor is laid out again.
func (l *Layout[W, C]) Destroy(item ItemIdx) []Action[W, C] {
	if !l.Exists(item) {
		panic(fmt.Sprintf("layout: destroy of missing %s", item))
	}
	l.logger.Debug("destroy", "item", item)

	doomed := slices.Collect(l.Descendants(item))
	parent, hasParent := l.ParentContainer(item)
	at := -1
	if hasParent {
		at = l.ctr(parent).indexOf(item)
	}

	out := make([]Action[W, C], 0, len(doomed))
	for _, d := range doomed {
		a := Action[W, C]{Kind: ItemDestroyed, Item: d}
		if d.IsContainer() {
			a.ContainerData = l.containers[d.Index].data
			l.containers[d.Index] = nil
		} else {
			a.WindowData = l.windows[d.Index].data
			l.windows[d.Index] = nil
		}
		out = append(out, a)
	}

	switch {
	case item == Root:
		l.containers[0] = l.newRoot()
	case hasParent:
		pc := l.ctr(parent)
		pc.children = slices.Delete(pc.children, at, at+1)
		if gp, fused := l.fuseIfNecessary(parent, &out); fused {
			parent = gp
		}
		l.layout(parent, &out)
	}
	return out
}

// fuseIfNecessary removes container c when it is not the root and holds
// exactly one child, splicing that child into c's place in the grandparent.
// It reports the grandparent so callers can lay out from there. Only one
// level is collapsed.
func (l *Layout[W, C]) fuseIfNecessary(c int, out *[]Action[W, C]) (int, bool) {
	gp, ok := l.ParentContainer(ContainerItem(c))
	if !ok {
		return 0, false
	}
	fused := l.ctr(c)
	if len(fused.children) != 1 {
		return 0, false
	}
	gpc := l.ctr(gp)
	at := gpc.indexOf(ContainerItem(c))
	survivor := fused.children[0].Item

	l.containers[c] = nil
	*out = append(*out, Action[W, C]{Kind: ItemDestroyed, Item: ContainerItem(c), ContainerData: fused.data})
	gpc.children[at].Item = survivor
	l.setParent(survivor, gp)
	l.logger.Debug("fused container", "container", c, "into", gp, "survivor", survivor)
	return gp, true
}
