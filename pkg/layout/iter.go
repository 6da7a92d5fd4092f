package layout

import "iter"

// DescendantsIter walks a subtree in pre-order. It holds its position
// explicitly, yields each item once, and cannot be restarted. The layout
// must not be mutated while an iterator is in use.
type DescendantsIter[W, C any] struct {
	layout *Layout[W, C]
	next   ItemIdx
	done   bool
	orig   ItemIdx
}

// IterDescendants returns an iterator over item and everything beneath it.
func (l *Layout[W, C]) IterDescendants(item ItemIdx) *DescendantsIter[W, C] {
	return &DescendantsIter[W, C]{layout: l, next: item, orig: item}
}

// Next returns the next item, or false once the subtree is exhausted.
func (it *DescendantsIter[W, C]) Next() (ItemIdx, bool) {
	if it.done {
		return ItemIdx{}, false
	}
	cur := it.next
	if cur.IsContainer() {
		if children := it.layout.ctr(cur.Index).children; len(children) > 0 {
			it.next = children[0].Item
			return cur, true
		}
	}
	it.next, it.done = it.ascend(cur)
	return cur, true
}

// ascend climbs from an exhausted item to the nearest following sibling,
// stopping when it reaches the subtree's root.
func (it *DescendantsIter[W, C]) ascend(exhausted ItemIdx) (ItemIdx, bool) {
	for exhausted != it.orig {
		parent, ok := it.layout.ParentContainer(exhausted)
		if !ok {
			break
		}
		children := it.layout.ctr(parent).children
		at := it.layout.ctr(parent).indexOf(exhausted)
		if at+1 < len(children) {
			return children[at+1].Item, false
		}
		exhausted = ContainerItem(parent)
	}
	return ItemIdx{}, true
}

// Descendants returns item and everything beneath it in pre-order.
func (l *Layout[W, C]) Descendants(item ItemIdx) iter.Seq[ItemIdx] {
	return func(yield func(ItemIdx) bool) {
		it := l.IterDescendants(item)
		for {
			next, ok := it.Next()
			if !ok || !yield(next) {
				return
			}
		}
	}
}

// All returns every attached item in pre-order, starting at the root.
func (l *Layout[W, C]) All() iter.Seq[ItemIdx] {
	return l.Descendants(Root)
}

// TopologicalNext returns the item that follows item in pre-order once
// item's own subtree is skipped: its next sibling, or the next sibling of
// the nearest ancestor that has one.
func (l *Layout[W, C]) TopologicalNext(item ItemIdx) (ItemIdx, bool) {
	for {
		parent, ok := l.ParentContainer(item)
		if !ok {
			return ItemIdx{}, false
		}
		children := l.ctr(parent).children
		if at := l.ctr(parent).indexOf(item); at+1 < len(children) {
			return children[at+1].Item, true
		}
		item = ContainerItem(parent)
	}
}

// TopologicalLast follows last children down from the root and returns the
// window or empty container it ends on.
func (l *Layout[W, C]) TopologicalLast() ItemIdx {
	cur := Root
	for cur.IsContainer() {
		children := l.ctr(cur.Index).children
		if len(children) == 0 {
			break
		}
		cur = children[len(children)-1].Item
	}
	return cur
}
