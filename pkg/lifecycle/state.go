// Package lifecycle models the per-document rendering lifecycle: an ordered
// set of states that a document walks through on every update pass, plus the
// assertion helpers the frame code uses to enforce its contracts.
package lifecycle

// State is a position in the document lifecycle. States are totally ordered;
// comparisons with < and >= are meaningful.
type State int

const (
	Uninitialized State = iota
	VisualUpdatePending
	InStyleRecalc
	StyleClean
	InPerformLayout
	AfterPerformLayout
	LayoutClean
	InCompositingInputsUpdate
	CompositingInputsClean
	InCompositingAssignment
	CompositingAssignmentsClean
	InPrePaint
	PrePaintClean
	InAccessibility
	AccessibilityClean
	InPaint
	PaintClean
)

var stateNames = [...]string{
	Uninitialized:               "Uninitialized",
	VisualUpdatePending:         "VisualUpdatePending",
	InStyleRecalc:               "InStyleRecalc",
	StyleClean:                  "StyleClean",
	InPerformLayout:             "InPerformLayout",
	AfterPerformLayout:          "AfterPerformLayout",
	LayoutClean:                 "LayoutClean",
	InCompositingInputsUpdate:   "InCompositingInputsUpdate",
	CompositingInputsClean:      "CompositingInputsClean",
	InCompositingAssignment:     "InCompositingAssignment",
	CompositingAssignmentsClean: "CompositingAssignmentsClean",
	InPrePaint:                  "InPrePaint",
	PrePaintClean:               "PrePaintClean",
	InAccessibility:             "InAccessibility",
	AccessibilityClean:          "AccessibilityClean",
	InPaint:                     "InPaint",
	PaintClean:                  "PaintClean",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "State(?)"
	}
	return stateNames[s]
}

// IsUpdateTarget reports whether s may be passed as the target of a
// lifecycle update. Only "clean" states at or after LayoutClean qualify.
func IsUpdateTarget(s State) bool {
	switch s {
	case LayoutClean, CompositingInputsClean, CompositingAssignmentsClean,
		PrePaintClean, AccessibilityClean, PaintClean:
		return true
	}
	return false
}

// IsActivePhase reports whether s is one of the "in progress" markers.
func IsActivePhase(s State) bool {
	switch s {
	case InStyleRecalc, InPerformLayout, InCompositingInputsUpdate,
		InCompositingAssignment, InPrePaint, InAccessibility, InPaint:
		return true
	}
	return false
}
