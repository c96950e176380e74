package page

import (
	"sync"
	"time"
)

// Animator coalesces visual update requests into animation frames. Any
// number of requests before a frame is taken produce a single frame; the
// earliest requested time wins.
type Animator struct {
	mu        sync.Mutex
	now       func() time.Time
	scheduled bool
	due       time.Time
	requests  int
	frames    int
}

func newAnimator(now func() time.Time) *Animator {
	return &Animator{now: now}
}

// Schedule requests a frame no earlier than delay from now.
func (a *Animator) Schedule(delay time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	due := a.now().Add(delay)
	if !a.scheduled || due.Before(a.due) {
		a.due = due
	}
	a.scheduled = true
	a.requests++
}

// Pending reports whether a frame is scheduled.
func (a *Animator) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scheduled
}

// Due returns when the scheduled frame may run. ok is false when no frame
// is scheduled.
func (a *Animator) Due() (due time.Time, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.due, a.scheduled
}

// take consumes the scheduled frame if it is due at now. Requests made
// while the frame runs schedule the next one.
func (a *Animator) take(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.scheduled || now.Before(a.due) {
		return false
	}
	a.scheduled = false
	a.frames++
	return true
}

// Requests is the number of Schedule calls so far.
func (a *Animator) Requests() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests
}

// Frames is the number of frames taken so far.
func (a *Animator) Frames() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames
}
