package plugin

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrNotFound is returned when a plugin id or factory name is unknown.
var ErrNotFound = errors.New("plugin: not found")

// Factory constructs a new plugin instance by implementation name.
type Factory func(id string, sampleRate float64) (Plugin, error)

var factories = map[string]Factory{
	"subtractive_synth": func(id string, sampleRate float64) (Plugin, error) {
		return NewSubtractiveSynthPlugin(id, sampleRate), nil
	},
	"chiptune": func(id string, sampleRate float64) (Plugin, error) {
		return NewChiptunePlugin(id, sampleRate), nil
	},
}

// Registry owns the engine's loaded plugins, keyed by plugin id.
// Structural changes (Load/Unload) take a write lock; the render
// thread takes a read lock only long enough to snapshot the current
// set of plugins once per block, then calls Process on each outside
// the lock.
type Registry struct {
	mu           sync.RWMutex
	byID         map[string]Plugin
	errors       map[string]*int64
	pluginsSlice []Plugin
}

// NewRegistry returns an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]Plugin),
		errors: make(map[string]*int64),
	}
}

// Load instantiates a plugin of the given implementation name and
// registers it under id. Loading over an existing id replaces it.
func (r *Registry) Load(name, id string, sampleRate float64) error {
	factory, ok := factories[name]
	if !ok {
		return fmt.Errorf("plugin: unknown implementation %q: %w", name, ErrNotFound)
	}
	p, err := factory(id, sampleRate)
	if err != nil {
		return fmt.Errorf("plugin: construct %q: %w", name, err)
	}
	r.mu.Lock()
	r.byID[id] = p
	var n int64
	r.errors[id] = &n
	r.mu.Unlock()
	return nil
}

// Unload removes a plugin by id.
func (r *Registry) Unload(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("plugin: unload %q: %w", id, ErrNotFound)
	}
	delete(r.byID, id)
	delete(r.errors, id)
	return nil
}

// Get returns the plugin registered under id, if any.
func (r *Registry) Get(id string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// LoadedIDs returns the ids of every currently loaded plugin.
func (r *Registry) LoadedIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	return ids
}

// ErrorCount returns how many times the named plugin has failed
// during Process since it was loaded.
func (r *Registry) ErrorCount(id string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n, ok := r.errors[id]; ok {
		return atomic.LoadInt64(n)
	}
	return 0
}

// ProcessAll runs every loaded plugin's Process for one block,
// summing each plugin's output into out with a fixed 0.5 mix gain. A
// plugin that returns an error, or panics, is skipped for this block
// and its error counter is incremented; it never aborts the block for
// other plugins.
func (r *Registry) ProcessAll(ctx ProcessContext, out [][]float32, scratch [][]float32) {
	r.mu.RLock()
	r.pluginsSlice = r.pluginsSlice[:0]
	for _, p := range r.byID {
		r.pluginsSlice = append(r.pluginsSlice, p)
	}
	plugins := r.pluginsSlice
	r.mu.RUnlock()

	for _, p := range plugins {
		for ch := range scratch {
			for i := range scratch[ch] {
				scratch[ch][i] = 0
			}
		}
		if err := r.safeProcess(p, ctx, scratch); err != nil {
			r.recordError(p.ID())
			continue
		}
		for ch := range out {
			if ch >= len(scratch) {
				break
			}
			for i := range out[ch] {
				out[ch][i] += scratch[ch][i] * 0.5
			}
		}
	}
}

func (r *Registry) safeProcess(p Plugin, ctx ProcessContext, out [][]float32) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("plugin %q: panic in Process: %v", p.ID(), rec)
		}
	}()
	return p.Process(ctx, out)
}

func (r *Registry) recordError(id string) {
	r.mu.RLock()
	n, ok := r.errors[id]
	r.mu.RUnlock()
	if ok {
		atomic.AddInt64(n, 1)
	}
}
