package param

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Change is a pending parameter-change request destined for the audio
// callback's per-block queue: {index, normalized_value, sample_offset}.
type Change struct {
	Index           int
	NormalizedValue float64
	SampleOffset    int
}

// Set owns a collection of Parameters, addressable by stable index or
// by string id. It also owns the single-producer change queue the
// audio callback drains once per block.
type Set struct {
	mu      sync.RWMutex
	byID    map[string]*Parameter
	byIndex []*Parameter

	changeMu sync.Mutex
	changes  []Change
}

// NewSet creates an empty parameter set.
func NewSet() *Set {
	return &Set{byID: make(map[string]*Parameter)}
}

// Add registers a parameter. Ids must be unique within the set.
func (s *Set) Add(p *Parameter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[p.id] = p
	for len(s.byIndex) <= p.index {
		s.byIndex = append(s.byIndex, nil)
	}
	s.byIndex[p.index] = p
}

// ByID looks up a parameter by its string id.
func (s *Set) ByID(id string) (*Parameter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok
}

// ByIndex looks up a parameter by its stable index.
func (s *Set) ByIndex(index int) (*Parameter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.byIndex) || s.byIndex[index] == nil {
		return nil, false
	}
	return s.byIndex[index], true
}

// All returns every registered parameter, stable-sorted by index.
func (s *Set) All() []*Parameter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Parameter, 0, len(s.byID))
	for _, p := range s.byIndex {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Snapshot returns an id->value map of every parameter's current
// (unmodulated) raw value.
func (s *Set) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.byID))
	for id, p := range s.byID {
		out[id] = p.rawValue()
	}
	return out
}

// Restore applies a snapshot produced by Snapshot. Unknown ids are
// ignored; values are clamped to each parameter's range by Set.
func (s *Set) Restore(values map[string]float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, v := range values {
		if p, ok := s.byID[id]; ok {
			p.Set(v)
		}
	}
}

// Enqueue adds a pending change to the control-side queue. Safe from
// any control thread; never called from the render thread.
func (s *Set) Enqueue(c Change) {
	s.changeMu.Lock()
	s.changes = append(s.changes, c)
	s.changeMu.Unlock()
}

// DrainChanges removes and returns all pending changes, in the order
// enqueued. Called once per block by the audio callback.
func (s *Set) DrainChanges() []Change {
	s.changeMu.Lock()
	defer s.changeMu.Unlock()
	if len(s.changes) == 0 {
		return nil
	}
	out := s.changes
	s.changes = nil
	return out
}

// ApplyChange applies a single drained change to the parameter it
// targets, by normalized value. Changes with a sample offset within
// the block are expected to be applied by the caller at that offset;
// changes the caller cannot position are applied immediately.
func (s *Set) ApplyChange(c Change) {
	if p, ok := s.ByIndex(c.Index); ok {
		p.SetNormalized(c.NormalizedValue)
	}
}

// WriteText serializes every parameter as "param.<id>=<value>" lines,
// one per line, following the persisted preset line format.
func (s *Set) WriteText(w *bufio.Writer, name, version, pluginID string) error {
	if _, err := fmt.Fprintf(w, "name=%s\n", name); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "version=%s\n", version); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "pluginId=%s\n", pluginID); err != nil {
		return err
	}
	ids := make([]string, 0, len(s.byID))
	s.mu.RLock()
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		v := s.byID[id].rawValue()
		if _, err := fmt.Fprintf(w, "param.%s=%s\n", id, strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
			s.mu.RUnlock()
			return err
		}
	}
	s.mu.RUnlock()
	return w.Flush()
}

// ParsedPreset holds the metadata lines read by ReadText.
type ParsedPreset struct {
	Name     string
	Version  string
	PluginID string
}

// ReadText parses the line-oriented "key=value" preset format (§6).
// Lines without "=" are ignored. Unknown param ids are skipped; values
// are clamped to each parameter's range via Set. The caller must
// verify ParsedPreset.PluginID matches before trusting the values.
func (s *Set) ReadText(r *bufio.Reader) (ParsedPreset, error) {
	var meta ParsedPreset
	for {
		line, err := r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			eq := strings.IndexByte(line, '=')
			if eq >= 0 {
				key := line[:eq]
				val := line[eq+1:]
				switch key {
				case "name":
					meta.Name = val
				case "version":
					meta.Version = val
				case "pluginId":
					meta.PluginID = val
				default:
					if strings.HasPrefix(key, "param.") {
						id := key[len("param."):]
						if f, ferr := strconv.ParseFloat(val, 64); ferr == nil {
							if p, ok := s.ByID(id); ok {
								p.Set(f)
							}
						}
					}
				}
			}
		}
		if err != nil {
			break
		}
	}
	return meta, nil
}
