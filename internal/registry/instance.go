package registry

import (
	"image"
	"sync"
	"time"

	"github.com/rook-computer/mirror/internal/config"
	"github.com/rook-computer/mirror/internal/render/layout"
	"github.com/rook-computer/mirror/mirror"
)

// Instance is one configured module: its placement, its locals from Init
// and its runtime status.
type Instance struct {
	Spec   config.ModuleSpec
	Module mirror.Module
	Locals any

	// Logical is the rectangle in logical pixels, Bounds the same rectangle
	// in device pixels. Neither is clipped; the surface clips while drawing.
	Logical image.Rectangle
	Bounds  image.Rectangle

	// Active is false once the instance has been disabled; it is never
	// drawn again.
	Active    bool
	CrashedAt time.Time
	Err       error

	mu       sync.Mutex
	draws    int64
	last     time.Duration
	skipNext bool
	lastErr  string
}

func (i *Instance) Name() string { return i.Spec.Name }

// Relayout recomputes the bounds for screen.
func (i *Instance) Relayout(screen layout.Screen) {
	i.Logical, i.Bounds = i.Spec.Bounds(screen)
}

// Disable stops the instance permanently and records why.
func (i *Instance) Disable(err error, at time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Active = false
	i.Err = err
	i.CrashedAt = at
}

// SkipNext makes the next DrawAll skip this instance once.
func (i *Instance) SkipNext() {
	i.mu.Lock()
	i.skipNext = true
	i.mu.Unlock()
}

// NoteError reports whether msg differs from the previously noted error,
// so repeated identical failures are logged once.
func (i *Instance) NoteError(msg string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.lastErr == msg {
		return false
	}
	i.lastErr = msg
	return true
}

// ClearError forgets the last noted error after a successful draw.
func (i *Instance) ClearError() {
	i.mu.Lock()
	i.lastErr = ""
	i.mu.Unlock()
}

// Status is a copy of the instance state safe to hand to other goroutines.
type Status struct {
	Name      string          `json:"name"`
	Source    string          `json:"source"`
	Bounds    image.Rectangle `json:"bounds"`
	Active    bool            `json:"active"`
	Draws     int64           `json:"draws"`
	LastDraw  time.Duration   `json:"last_draw_ns"`
	CrashedAt *time.Time      `json:"crashed_at,omitempty"`
	Error     string          `json:"error,omitempty"`
	Info      map[string]any  `json:"info,omitempty"`
}

func (i *Instance) Status() Status {
	i.mu.Lock()
	defer i.mu.Unlock()
	st := Status{
		Name:     i.Spec.Name,
		Source:   i.Spec.Source,
		Bounds:   i.Bounds,
		Active:   i.Active,
		Draws:    i.draws,
		LastDraw: i.last,
	}
	if !i.CrashedAt.IsZero() {
		at := i.CrashedAt
		st.CrashedAt = &at
	}
	if i.Err != nil {
		st.Error = i.Err.Error()
	}
	if d, ok := i.Module.(mirror.DebugInfoer); ok {
		st.Info = d.DebugInfo(i.Locals)
	}
	return st
}

// IsActive reads Active under the instance lock.
func (i *Instance) IsActive() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.Active
}

func (i *Instance) consumeSkip() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	skip := i.skipNext
	i.skipNext = false
	return skip
}

func (i *Instance) record(d time.Duration) {
	i.mu.Lock()
	i.draws++
	i.last = d
	i.mu.Unlock()
}
