package frame

import "sort"

// LayoutSubtreeRootList holds layout objects that need a localized relayout.
// Iteration is ordered by tree depth, shallowest first, so an ancestor is
// laid out before any listed descendant.
type LayoutSubtreeRootList struct {
	roots []LayoutObject
}

func depthOf(o LayoutObject) int {
	d := 0
	for p := o.Parent(); p != nil; p = p.Parent() {
		d++
	}
	return d
}

func (l *LayoutSubtreeRootList) indexOf(o LayoutObject) int {
	for i, r := range l.roots {
		if r == o {
			return i
		}
	}
	return -1
}

// Add inserts o if it is not already present.
func (l *LayoutSubtreeRootList) Add(o LayoutObject) {
	if l.indexOf(o) >= 0 {
		return
	}
	l.roots = append(l.roots, o)
}

// Remove drops o, for example when it is destroyed.
func (l *LayoutSubtreeRootList) Remove(o LayoutObject) {
	if i := l.indexOf(o); i >= 0 {
		l.roots = append(l.roots[:i], l.roots[i+1:]...)
	}
}

func (l *LayoutSubtreeRootList) Clear()        { l.roots = nil }
func (l *LayoutSubtreeRootList) IsEmpty() bool { return len(l.roots) == 0 }
func (l *LayoutSubtreeRootList) Len() int      { return len(l.roots) }

// Ordered returns the roots sorted by depth.
func (l *LayoutSubtreeRootList) Ordered() []LayoutObject {
	out := append([]LayoutObject(nil), l.roots...)
	sort.SliceStable(out, func(i, j int) bool { return depthOf(out[i]) < depthOf(out[j]) })
	return out
}

// ClearAndMarkContainingBlocksForLayout turns every pending subtree layout
// into part of a full layout: each root's container chain is marked and the
// list is emptied.
func (l *LayoutSubtreeRootList) ClearAndMarkContainingBlocksForLayout() {
	for _, r := range l.roots {
		r.MarkContainerChainForLayout()
	}
	l.Clear()
}
