package layout

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrMissingRoot is returned by [Layout.Validate] when container slot 0
	// is empty or has a parent. Every layout has exactly one root.
	ErrMissingRoot = errors.New("root container missing or attached")

	// ErrParentMismatch is returned by [Layout.Validate] when a child list
	// and a parent pointer disagree, or when a child refers to a freed slot.
	ErrParentMismatch = errors.New("parent and child disagree")

	// ErrDuplicateChild is returned by [Layout.Validate] when an item is
	// listed more than once across the tree's child lists.
	ErrDuplicateChild = errors.New("item listed more than once")

	// ErrUnfusedContainer is returned by [Layout.Validate] when a container
	// other than the root holds fewer than two children. The root may hold
	// any number, including one.
	ErrUnfusedContainer = errors.New("non-root container with fewer than two children")

	// ErrInvalidWeight is returned by [Layout.Validate] when a child weight is
	// negative, NaN or infinite.
	ErrInvalidWeight = errors.New("invalid child weight")
)

// Validate checks the structural invariants of the tree and returns nil if
// they hold:
//
//  1. Container 0 exists and has no parent
//  2. Every child entry names a live item whose parent pointer names the
//     listing container, and no item is listed twice
//  3. Every attached item is listed by its parent
//  4. Every listed item is reachable from the root
//  5. Containers other than the root have at least two children
//  6. Weights are finite and not negative
//
// The engine maintains these on its own; Validate exists for tests and for
// checking restored snapshots.
func (l *Layout[W, C]) Validate() error {
	if len(l.containers) == 0 || l.containers[0] == nil || l.containers[0].parent != noParent {
		return ErrMissingRoot
	}
	listed := make(map[ItemIdx]int)
	for idx, c := range l.containers {
		if c == nil {
			continue
		}
		if idx != 0 && len(c.children) < 2 {
			return fmt.Errorf("%w: container %d has %d", ErrUnfusedContainer, idx, len(c.children))
		}
		for _, ch := range c.children {
			if ch.Weight < 0 || math.IsNaN(ch.Weight) || math.IsInf(ch.Weight, 0) {
				return fmt.Errorf("%w: %v for %s", ErrInvalidWeight, ch.Weight, ch.Item)
			}
			if _, dup := listed[ch.Item]; dup {
				return fmt.Errorf("%w: %s", ErrDuplicateChild, ch.Item)
			}
			listed[ch.Item] = idx
			if !l.Exists(ch.Item) {
				return fmt.Errorf("%w: container %d lists missing %s", ErrParentMismatch, idx, ch.Item)
			}
			if parent, _ := l.ParentContainer(ch.Item); parent != idx {
				return fmt.Errorf("%w: %s listed by container %d but points at %d", ErrParentMismatch, ch.Item, idx, parent)
			}
		}
	}
	for idx, c := range l.containers {
		if c == nil || idx == 0 {
			continue
		}
		if _, ok := listed[ContainerItem(idx)]; !ok {
			return fmt.Errorf("%w: container %d is not listed by its parent", ErrParentMismatch, idx)
		}
	}
	for idx, w := range l.windows {
		if w == nil || w.parent == noParent {
			continue
		}
		if _, ok := listed[WindowItem(idx)]; !ok {
			return fmt.Errorf("%w: window %d is not listed by container %d", ErrParentMismatch, idx, w.parent)
		}
	}
	reached := 0
	for range l.All() {
		reached++
	}
	if reached != len(listed)+1 {
		return fmt.Errorf("%w: %d items unreachable from the root", ErrParentMismatch, len(listed)+1-reached)
	}
	return nil
}
