package layout

import (
	"fmt"
	"slices"
)

// split replaces target with a new container holding inserted and target,
// and returns the container that was modified. It does not run the solver.
//
// The root is special: an empty root is repurposed in place, a root with one
// child forwards the split to that child, and a root with several children
// has them demoted into a new container beneath a fresh horizontal root.
// The root keeps its container data through a split; only the demoted
// container gets newly constructed data.
func (l *Layout[W, C]) split(inserted, target ItemIdx, strategy Strategy, insertedFirst bool) int {
	pair := func(other ItemIdx) []Child {
		if insertedFirst {
			return []Child{{Weight: 1, Item: inserted}, {Weight: 1, Item: other}}
		}
		return []Child{{Weight: 1, Item: other}, {Weight: 1, Item: inserted}}
	}

	if parent, ok := l.ParentContainer(target); ok {
		pc := l.ctr(parent)
		at := pc.indexOf(target)
		if at < 0 {
			panic(fmt.Sprintf("layout: %s not listed in container %d", target, parent))
		}
		idx := l.freeContainerSlot()
		l.containers[idx] = &containerSlot[C]{
			strategy: strategy,
			children: pair(target),
			parent:   parent,
			bounds:   l.Bounds(target),
			inter:    l.inter,
			padding:  l.padding,
			data:     l.cctor.Construct(),
		}
		pc.children[at].Item = ContainerItem(idx)
		l.setParent(target, idx)
		return idx
	}

	if target != Root {
		panic(fmt.Sprintf("layout: cannot split detached %s", target))
	}
	root := l.ctr(0)
	switch len(root.children) {
	case 0:
		root.strategy = strategy
		root.children = append(root.children, Child{Weight: 1, Item: inserted})
		return 0
	case 1:
		return l.split(inserted, root.children[0].Item, strategy, insertedFirst)
	}

	idx := l.freeContainerSlot()
	demoted := &containerSlot[C]{
		strategy: root.strategy,
		children: root.children,
		parent:   0,
		inter:    root.inter,
		padding:  root.padding,
		data:     l.cctor.Construct(),
	}
	l.containers[idx] = demoted
	for _, ch := range demoted.children {
		l.setParent(ch.Item, idx)
	}
	root.strategy = Horizontal
	root.children = pair(ContainerItem(idx))
	return 0
}

// insert places from at cursor to and returns the container that received
// it. It does not run the solver.
func (l *Layout[W, C]) insert(from ItemIdx, to MoveCursor) int {
	var target int
	switch to.Kind {
	case CursorSplit:
		strategy, first := to.Direction.splitParams()
		target = l.split(from, to.Item, strategy, first)
	case CursorInto:
		c := l.ctr(to.Container)
		if to.Index < 0 || to.Index > len(c.children) {
			panic(fmt.Sprintf("layout: index %d out of range for container %d", to.Index, to.Container))
		}
		weight := 1.0
		if n := len(c.children); n > 0 {
			weight = c.totalWeight() / float64(n)
		}
		c.children = slices.Insert(c.children, to.Index, Child{Weight: weight, Item: from})
		target = to.Container
	default:
		panic(fmt.Sprintf("layout: invalid cursor kind %d", int(to.Kind)))
	}
	l.setParent(from, target)
	return target
}

// Move detaches from (if it is attached) and inserts it at cursor to. from
// must not be an ancestor of the cursor's target; the root is an ancestor of
// everything and can never be moved.
//
// Moving within one container lands on the slot the cursor described before
// the move: an Into index at or after from's old position is shifted down by
// one to account for the removal.
func (l *Layout[W, C]) Move(from ItemIdx, to MoveCursor) []Action[W, C] {
	if !l.Exists(from) {
		panic(fmt.Sprintf("layout: move of missing %s", from))
	}
	if !l.IsCursorValid(to) {
		panic(fmt.Sprintf("layout: invalid cursor %s", to))
	}
	if l.IsAncestor(from, to.Target()) {
		panic(fmt.Sprintf("layout: cannot move %s into its own subtree at %s", from, to))
	}
	l.logger.Debug("move", "from", from, "to", to)

	var out []Action[W, C]
	oldParent, hadParent := l.ParentContainer(from)
	if hadParent {
		pc := l.ctr(oldParent)
		at := pc.indexOf(from)
		pc.children = slices.Delete(pc.children, at, at+1)
		if to.Kind == CursorInto && to.Container == oldParent && to.Index >= at {
			to.Index = max(to.Index-1, 0)
		}
	}

	modified := l.insert(from, to)
	if to.Kind == CursorSplit {
		out = append(out, newBounds[W, C](ContainerItem(modified), l.ctr(modified).bounds))
	}
	if hadParent {
		if gp, fused := l.fuseIfNecessary(oldParent, &out); fused {
			oldParent = gp
		}
	}
	l.layout(modified, &out)
	if hadParent && !l.IsAncestor(ContainerItem(modified), ContainerItem(oldParent)) {
		l.layout(oldParent, &out)
	}
	return out
}
