// Package sample implements sample storage, drum pads, and the
// playback of one-shot/gated/looped sample voices (ActiveSound).
package sample

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Sample is immutable after load: a named, reference-counted buffer of
// interleaved float audio in [-1,1].
type Sample struct {
	ID         string
	Channels   int
	SampleRate int
	FrameCount int
	Data       []float32 // interleaved, len == FrameCount*Channels

	refCount int32
}

// NewSample validates and constructs a Sample. Rejects channel counts
// outside {1,2} and non-positive sample rates.
func NewSample(id string, channels, sampleRate int, data []float32) (*Sample, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("sample %q: invalid channel count %d", id, channels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample %q: invalid sample rate %d", id, sampleRate)
	}
	if len(data)%channels != 0 {
		return nil, fmt.Errorf("sample %q: data length %d not a multiple of channels %d", id, len(data), channels)
	}
	return &Sample{
		ID:         id,
		Channels:   channels,
		SampleRate: sampleRate,
		FrameCount: len(data) / channels,
		Data:       data,
		refCount:   1,
	}, nil
}

func (s *Sample) retain() { atomic.AddInt32(&s.refCount, 1) }

func (s *Sample) release() int32 { return atomic.AddInt32(&s.refCount, -1) }

// FrameMono returns the mono-summed value at the given integer frame
// index, stereo samples summed and halved. Out-of-range frames return 0.
func (s *Sample) FrameMono(frame int) float32 {
	if frame < 0 || frame >= s.FrameCount {
		return 0
	}
	if s.Channels == 1 {
		return s.Data[frame]
	}
	base := frame * 2
	return (s.Data[base] + s.Data[base+1]) * 0.5
}

// Store is a thread-safe, reference-counted registry of loaded samples.
type Store struct {
	mu      sync.RWMutex
	samples map[string]*Sample
}

// NewStore creates an empty sample store.
func NewStore() *Store {
	return &Store{samples: make(map[string]*Sample)}
}

// Load registers a decoded sample under its id, replacing (and
// releasing) any prior sample with the same id.
func (st *Store) Load(s *Sample) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if old, ok := st.samples[s.ID]; ok {
		old.release()
	}
	st.samples[s.ID] = s
}

// Get returns a retained reference to the sample, or false if absent.
// The caller must call Release when done.
func (st *Store) Get(id string) (*Sample, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.samples[id]
	if ok {
		s.retain()
	}
	return s, ok
}

// Release drops a reference obtained via Get; when the count reaches
// zero the sample is removed from the store.
func (st *Store) Release(s *Sample) {
	if s.release() > 0 {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if cur, ok := st.samples[s.ID]; ok && cur == s {
		delete(st.samples, s.ID)
	}
}

// Unload removes a sample from the store by id, dropping the store's
// own reference.
func (st *Store) Unload(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.samples[id]; ok {
		delete(st.samples, id)
		s.release()
	}
}
