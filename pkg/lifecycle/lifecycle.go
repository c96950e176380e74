package lifecycle

// TransitionKind distinguishes forward progress from an explicit rewind.
type TransitionKind int

const (
	Advance TransitionKind = iota
	Rewind
)

// TransitionObserver is notified of every state change. It exists for
// tracing and tests; production code leaves it nil.
type TransitionObserver func(from, to State, kind TransitionKind)

// Lifecycle is the lifecycle state of one document. It is only touched by the
// goroutine driving that document's frame view.
type Lifecycle struct {
	state     State
	postponed bool
	observer  TransitionObserver

	// Non-zero while a scope forbids layout invalidation (pre-paint and
	// friends). Checked by the frame view before it schedules layout.
	disallowLayoutInvalidation int
}

// New returns a lifecycle in the Uninitialized state.
func New() *Lifecycle { return &Lifecycle{} }

// State returns the current state.
func (l *Lifecycle) State() State { return l.state }

// SetTransitionObserver installs (or with nil removes) a transition hook.
func (l *Lifecycle) SetTransitionObserver(o TransitionObserver) { l.observer = o }

// AdvanceTo moves the lifecycle forward to next. Moving backwards is a
// programming error; use EnsureStateAtMost to rewind.
func (l *Lifecycle) AdvanceTo(next State) {
	DCheck(next >= l.state, "lifecycle cannot advance from %s back to %s", l.state, next)
	if next == l.state {
		return
	}
	prev := l.state
	l.state = next
	if l.observer != nil {
		l.observer(prev, next, Advance)
	}
}

// EnsureStateAtMost rewinds the recorded state to s if it is currently past
// s. It has no other side effects.
func (l *Lifecycle) EnsureStateAtMost(s State) {
	if l.state <= s {
		return
	}
	prev := l.state
	l.state = s
	if l.observer != nil {
		l.observer(prev, s, Rewind)
	}
}

// PostponeTransitions suspends all lifecycle updates for the document until
// ResumePostponedTransitions is called. Used by inspector-like tooling.
func (l *Lifecycle) PostponeTransitions() { l.postponed = true }

// ResumePostponedTransitions lifts a previous PostponeTransitions.
func (l *Lifecycle) ResumePostponedTransitions() { l.postponed = false }

// LifecyclePostponed reports whether updates are currently suspended.
func (l *Lifecycle) LifecyclePostponed() bool { return l.postponed }

// DisallowLayoutInvalidation opens a scope in which scheduling layout is a
// contract violation. The returned func closes the scope.
func (l *Lifecycle) DisallowLayoutInvalidation() (release func()) {
	l.disallowLayoutInvalidation++
	return func() { l.disallowLayoutInvalidation-- }
}

// LayoutInvalidationAllowed reports whether no DisallowLayoutInvalidation
// scope is open.
func (l *Lifecycle) LayoutInvalidationAllowed() bool {
	return l.disallowLayoutInvalidation == 0
}

// InStyleRecalc reports whether style recalc is in progress.
func (l *Lifecycle) InStyleRecalc() bool { return l.state == InStyleRecalc }

// InPerformLayout reports whether layout is in progress.
func (l *Lifecycle) InPerformLayout() bool { return l.state == InPerformLayout }
