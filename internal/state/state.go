// Package state holds the runtime snapshot shared between the render loop
// and observers such as the debug server.
package state

import (
	"sync"
	"time"

	"github.com/rook-computer/mirror/internal/imagecache"
	"github.com/rook-computer/mirror/internal/registry"
)

type Phase int

const (
	Starting Phase = iota
	Running
	Reloading
	Stopping
	Stopped
)

func (p Phase) String() string {
	switch p {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Reloading:
		return "reloading"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

type ScreenInfo struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
}

type FrameInfo struct {
	Count     int64         `json:"count"`
	Last      time.Duration `json:"last_ns"`
	FPS       float64       `json:"fps"`
	Target    float64       `json:"target_fps"`
	Overruns  int64         `json:"overruns"`
	StartedAt time.Time     `json:"started_at"`
}

type CacheInfo struct {
	Dir        string `json:"dir"`
	Persistent bool   `json:"persistent"`
	imagecache.Stats
}

type State struct {
	Phase   Phase             `json:"phase"`
	Config  string            `json:"config"`
	Screen  ScreenInfo        `json:"screen"`
	Frames  FrameInfo         `json:"frames"`
	Cache   CacheInfo         `json:"cache"`
	Modules []registry.Status `json:"modules"`
}

type Store struct {
	mu    sync.RWMutex
	state State
	// phases is closed and replaced on every phase change.
	phases chan struct{}
}

func NewStore() *Store {
	return &Store{state: State{Phase: Starting}, phases: make(chan struct{})}
}

// Snapshot returns a copy that is safe to keep.
func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	s := store.state
	s.Modules = append([]registry.Status(nil), store.state.Modules...)
	return s
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.state.Phase == phase {
		return
	}
	store.state.Phase = phase
	close(store.phases)
	store.phases = make(chan struct{})
}

// PhaseChanged returns a channel closed on the next phase change.
func (store *Store) PhaseChanged() <-chan struct{} {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.phases
}

func (store *Store) SetConfig(path string) {
	store.mu.Lock()
	store.state.Config = path
	store.mu.Unlock()
}

func (store *Store) UpdateScreen(screen ScreenInfo) {
	store.mu.Lock()
	store.state.Screen = screen
	store.mu.Unlock()
}

func (store *Store) UpdateFrames(frames FrameInfo) {
	store.mu.Lock()
	store.state.Frames = frames
	store.mu.Unlock()
}

func (store *Store) UpdateCache(cache CacheInfo) {
	store.mu.Lock()
	store.state.Cache = cache
	store.mu.Unlock()
}

func (store *Store) UpdateModules(modules []registry.Status) {
	store.mu.Lock()
	store.state.Modules = modules
	store.mu.Unlock()
}
