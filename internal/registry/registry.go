// Package registry resolves module sources, runs their one-time Init and
// drives their Draw callbacks in configuration order.
package registry

import (
	"errors"
	"fmt"
	"path/filepath"
	"plugin"
	"reflect"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rook-computer/mirror/internal/config"
	"github.com/rook-computer/mirror/internal/render/layout"
	"github.com/rook-computer/mirror/mirror"
	"go.trai.ch/zerr"
)

// Factory creates a fresh module value for one instance.
type Factory func() mirror.Module

// Binder attaches the drawing context to an instance for the duration of
// one Init or Draw call.
type Binder interface {
	Bind(inst *Instance) mirror.Mirror
	Unbind()
}

// Registry knows the compiled-in modules and owns the loaded instances.
type Registry struct {
	// Dir resolves relative plugin paths, usually the config directory.
	Dir    string
	Logger mirror.Logger

	mu        sync.RWMutex
	factories map[string]Factory
	instances []*Instance
}

func New() *Registry {
	return &Registry{Logger: mirror.NoopLogger{}, factories: make(map[string]Factory)}
}

// Register makes a compiled-in module available under name.
// Registering the same name twice replaces the earlier factory.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Names lists the registered module names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve maps a source locator to a module. Registered names win; sources
// ending in .so are opened as Go plugins exporting Draw and optionally Init.
func (r *Registry) Resolve(source string) (mirror.Module, error) {
	r.mu.RLock()
	f, ok := r.factories[source]
	r.mu.RUnlock()
	if ok {
		mod := f()
		if mod == nil {
			return nil, fmt.Errorf("factory for %q returned nil", source)
		}
		return mod, nil
	}
	if strings.HasSuffix(source, ".so") {
		path := source
		if !filepath.IsAbs(path) && r.Dir != "" {
			path = filepath.Join(r.Dir, path)
		}
		return openPlugin(path)
	}
	return nil, fmt.Errorf("unknown module source %q", source)
}

func openPlugin(path string) (mirror.Module, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	drawSym, err := p.Lookup("Draw")
	if err != nil {
		return nil, err
	}
	draw, ok := drawSym.(func(mirror.Mirror, any) error)
	if !ok {
		return nil, fmt.Errorf("%s: Draw has type %T, want func(mirror.Mirror, any) error", path, drawSym)
	}
	funcs := mirror.Funcs{DrawFunc: draw}
	if initSym, err := p.Lookup("Init"); err == nil {
		init, ok := initSym.(func(mirror.Mirror, mirror.Config) (any, error))
		if !ok {
			return nil, fmt.Errorf("%s: Init has type %T, want func(mirror.Mirror, mirror.Config) (any, error)", path, initSym)
		}
		funcs.InitFunc = init
	}
	return funcs, nil
}

// Instances returns the loaded instances in draw order.
func (r *Registry) Instances() []*Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Instance(nil), r.instances...)
}

// Load resolves spec, places it on screen and runs Init exactly once.
// Any failure is an ErrModuleLoad.
func (r *Registry) Load(b Binder, spec config.ModuleSpec, screen layout.Screen) (*Instance, error) {
	mod, err := r.Resolve(spec.Source)
	if err != nil {
		return nil, loadError(spec, err)
	}
	inst := &Instance{Spec: spec, Module: mod, Active: true}
	inst.Relayout(screen)

	if init, ok := mod.(mirror.Initializer); ok {
		m := b.Bind(inst)
		err := guard(func() error {
			locals, err := init.Init(m, spec.Settings.Clone())
			inst.Locals = locals
			return err
		})
		b.Unbind()
		if err != nil {
			return nil, loadError(spec, err)
		}
	}
	r.Logger.Infof("registry", "loaded %s (%s) at %v", spec.Name, spec.Source, inst.Bounds)
	return inst, nil
}

// LoadAll loads specs in order and stops at the first failure; later
// modules are never initialized. On success the instances replace the
// current set.
func (r *Registry) LoadAll(b Binder, specs []config.ModuleSpec, screen layout.Screen) error {
	loaded := make([]*Instance, 0, len(specs))
	for _, spec := range specs {
		inst, err := r.Load(b, spec, screen)
		if err != nil {
			return err
		}
		loaded = append(loaded, inst)
	}
	r.mu.Lock()
	r.instances = loaded
	r.mu.Unlock()
	return nil
}

// Reload applies a new module list. Instances whose source and settings are
// unchanged keep their locals and only move to the new geometry; the others
// are loaded from scratch. If any load fails the current set is kept.
func (r *Registry) Reload(b Binder, specs []config.ModuleSpec, screen layout.Screen) error {
	current := make(map[string]*Instance)
	for _, inst := range r.Instances() {
		current[inst.Spec.Name] = inst
	}

	next := make([]*Instance, 0, len(specs))
	for _, spec := range specs {
		if old, ok := current[spec.Name]; ok && sameModule(old.Spec, spec) {
			next = append(next, old)
			continue
		}
		inst, err := r.Load(b, spec, screen)
		if err != nil {
			return err
		}
		next = append(next, inst)
	}

	r.mu.Lock()
	for _, inst := range next {
		for _, spec := range specs {
			if spec.Name == inst.Spec.Name {
				inst.Spec = spec
			}
		}
		inst.Relayout(screen)
	}
	r.instances = next
	r.mu.Unlock()
	return nil
}

// sameModule reports whether b only differs from a in its geometry.
func sameModule(a, b config.ModuleSpec) bool {
	if a.Source != b.Source {
		return false
	}
	x, y := a.Settings.Clone(), b.Settings.Clone()
	for _, k := range geometryKeys {
		delete(x, k)
		delete(y, k)
	}
	return reflect.DeepEqual(x, y)
}

var geometryKeys = []string{"top", "left", "width", "height"}

// Relayout recomputes every instance's bounds, e.g. after a resize.
func (r *Registry) Relayout(screen layout.Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inst := range r.instances {
		inst.Relayout(screen)
	}
}

// DrawResult is the outcome of one module's draw in one frame.
type DrawResult struct {
	Instance *Instance
	Err      error
	Skipped  bool
	Duration time.Duration
}

// DrawAll calls Draw on every active instance in order. Failures and panics
// are captured in the results; deciding what happens next is up to the caller.
func (r *Registry) DrawAll(b Binder) []DrawResult {
	instances := r.Instances()
	results := make([]DrawResult, 0, len(instances))
	for _, inst := range instances {
		if !inst.IsActive() || inst.consumeSkip() {
			results = append(results, DrawResult{Instance: inst, Skipped: true})
			continue
		}
		m := b.Bind(inst)
		start := time.Now()
		err := guard(func() error { return inst.Module.Draw(m, inst.Locals) })
		elapsed := time.Since(start)
		b.Unbind()

		inst.record(elapsed)
		res := DrawResult{Instance: inst, Duration: elapsed}
		if err != nil {
			res.Err = drawError(inst.Spec, err)
		}
		results = append(results, res)
	}
	return results
}

// guard runs fn and turns a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = zerr.With(zerr.New(fmt.Sprintf("panic: %v", rec)), "stack", string(debug.Stack()))
		}
	}()
	return fn()
}

func loadError(spec config.ModuleSpec, cause error) error {
	err := mirror.Classify(mirror.ErrModuleLoad, fmt.Sprintf("module %s (%s): %v", spec.Name, spec.Source, cause), cause)
	return zerr.With(err, "module", spec.Name)
}

func drawError(spec config.ModuleSpec, cause error) error {
	msg := fmt.Sprintf("module %s: %v", spec.Name, cause)
	if errors.Is(cause, mirror.ErrAsset) {
		// keep the asset classification visible to the loop
		return zerr.With(zerr.Wrap(cause, msg), "module", spec.Name)
	}
	return zerr.With(mirror.Classify(mirror.ErrModuleDraw, msg, cause), "module", spec.Name)
}
