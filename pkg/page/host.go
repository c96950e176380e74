package page

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"framecore/pkg/darkmode"
	"framecore/pkg/frame"
	"framecore/pkg/geom"
	"framecore/pkg/paint"
)

// ScheduleVisualUpdate implements frame.Host. Every frame of the tree
// shares the page's animator.
func (p *Page) ScheduleVisualUpdate(f *frame.Frame, delay time.Duration) {
	if p.closed {
		return
	}
	p.animator.Schedule(delay)
	p.logger.Debug("visual update scheduled", zap.String("frame", f.Name()), zap.Duration("delay", delay))
}

// DarkModeFilter implements frame.Host. It is nil while dark mode is off.
func (p *Page) DarkModeFilter() *darkmode.Filter {
	if p.darkMode == nil || !p.darkMode.IsEnabled() {
		return nil
	}
	return p.darkMode
}

func (p *Page) Compositor() paint.Compositor { return p.compositor }

// DidChangeContentsSize implements frame.Host. Only the main frame's
// contents affect the page scale.
func (p *Page) DidChangeContentsSize(f *frame.Frame, size geom.Size) {
	if !f.IsMainFrame() {
		return
	}
	p.constraints.DidChangeContentsSize(size, 0, p.visual.Scale())
	p.RefreshPageScaleFactor()
}

func (p *Page) ResizeObserverLoopLimit() int  { return p.cfg.Lifecycle.ResizeObserverLoopLimit }
func (p *Page) RenderThrottlingEnabled() bool { return p.cfg.Lifecycle.ThrottlingEnabled }

// Compositor keeps the most recently committed artifact.
type Compositor struct {
	mu       sync.Mutex
	last     *paint.Artifact
	commits  int
	onCommit func(*paint.Artifact)
}

// Commit implements paint.Compositor.
func (c *Compositor) Commit(a *paint.Artifact) {
	c.mu.Lock()
	c.last = a
	c.commits++
	fn := c.onCommit
	c.mu.Unlock()
	if fn != nil {
		fn(a)
	}
}

// LastArtifact returns the last committed artifact, or nil.
func (c *Compositor) LastArtifact() *paint.Artifact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Commits is the number of artifacts committed.
func (c *Compositor) Commits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commits
}
