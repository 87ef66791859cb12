// Package param implements the engine's thread-safe parameter model:
// named, typed, range-bounded values with an atomic current value and
// an atomic modulation offset, safe to read from the audio thread.
package param

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Type identifies the semantic type of a parameter's value.
type Type int

const (
	TypeFloat Type = iota
	TypeInt
	TypeBool
	TypeChoice
	TypeString
)

// Category groups parameters for UI/automation purposes.
type Category int

const (
	CategoryAudioIO Category = iota
	CategoryControl
	CategoryState
	CategoryModulation
)

// Hints is a bitfield of parameter behavior flags.
type Hints uint8

const (
	HintNone           Hints = 0
	HintLogarithmicBit Hints = 1 << 0
	HintBipolarBit     Hints = 1 << 1
	HintGestureXYBit   Hints = 1 << 2
	HintGestureCircBit Hints = 1 << 3
	HintAutomatableBit Hints = 1 << 4
	HintRealtimeSafe   Hints = 1 << 5
)

const logMinEff = 1e-3

// Formatter renders a parameter's raw value to a display string.
type Formatter func(value float64) string

// Parameter is a named, typed, range-bounded double with an atomic
// current value and an atomic modulation offset.
//
// get() never blocks and never allocates: it is safe to call from the
// audio render thread. set() is safe from any thread.
type Parameter struct {
	id       string
	index    int
	typ      Type
	category Category
	hints    Hints
	min, max float64
	raw      uint64 // atomic, math.Float64bits
	mod      uint64 // atomic, math.Float64bits
	choices  []string
	format   Formatter
}

// New creates a parameter with the given id, stable index, type, range,
// and default value. The default is clamped into [min,max].
func New(id string, index int, typ Type, category Category, min, max, def float64) *Parameter {
	if min > max {
		min, max = max, min
	}
	p := &Parameter{
		id:       id,
		index:    index,
		typ:      typ,
		category: category,
		min:      min,
		max:      max,
	}
	p.Set(def)
	return p
}

// WithHints sets the hints bitfield and returns the parameter for chaining.
func (p *Parameter) WithHints(h Hints) *Parameter {
	p.hints = h
	return p
}

// WithChoices attaches enumerated labels for TypeChoice parameters.
func (p *Parameter) WithChoices(choices []string) *Parameter {
	p.choices = choices
	return p
}

// WithFormatter installs a caller-supplied display formatter.
func (p *Parameter) WithFormatter(f Formatter) *Parameter {
	p.format = f
	return p
}

func (p *Parameter) ID() string        { return p.id }
func (p *Parameter) Index() int        { return p.index }
func (p *Parameter) Type() Type        { return p.typ }
func (p *Parameter) Category() Category { return p.category }
func (p *Parameter) Min() float64      { return p.min }
func (p *Parameter) Max() float64      { return p.max }
func (p *Parameter) Hints() Hints      { return p.hints }

// Get returns clamp(raw + mod, min, max). Wait-free, safe from the
// audio thread.
func (p *Parameter) Get() float64 {
	raw := math.Float64frombits(atomic.LoadUint64(&p.raw))
	mod := math.Float64frombits(atomic.LoadUint64(&p.mod))
	return clamp(raw+mod, p.min, p.max)
}

// Set clamps value into [min,max] and stores it. Safe from any thread.
func (p *Parameter) Set(value float64) {
	value = clamp(value, p.min, p.max)
	atomic.StoreUint64(&p.raw, math.Float64bits(value))
}

// rawValue returns the unmodulated stored value, ignoring modulation.
func (p *Parameter) rawValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&p.raw))
}

// AddModulation applies an additive modulation offset, summed with the
// raw value at Get() time and clamped to range.
func (p *Parameter) AddModulation(offset float64) {
	atomic.StoreUint64(&p.mod, math.Float64bits(offset))
}

// ClearModulation removes any modulation offset.
func (p *Parameter) ClearModulation() {
	atomic.StoreUint64(&p.mod, 0)
}

// GetNormalized returns the raw (unmodulated) value mapped to [0,1].
func (p *Parameter) GetNormalized() float64 {
	v := p.rawValue()
	if p.max <= p.min {
		return 0
	}
	if p.hints&HintLogarithmicBit != 0 {
		minEff := math.Max(p.min, logMinEff)
		if v <= 0 {
			v = minEff
		}
		return (math.Log(v) - math.Log(minEff)) / (math.Log(p.max) - math.Log(minEff))
	}
	return (v - p.min) / (p.max - p.min)
}

// SetNormalized sets the raw value from n in [0,1], linear by default or
// logarithmic when the Logarithmic hint is set (lower bound 1e-3).
func (p *Parameter) SetNormalized(n float64) {
	n = clamp(n, 0, 1)
	if p.hints&HintLogarithmicBit != 0 {
		minEff := math.Max(p.min, logMinEff)
		v := math.Exp(math.Log(p.max)*n + math.Log(minEff)*(1-n))
		p.Set(v)
		return
	}
	p.Set(p.min + n*(p.max-p.min))
}

// Display formats the current value to a string.
func (p *Parameter) Display() string {
	v := p.Get()
	if p.format != nil {
		return p.format(v)
	}
	switch p.typ {
	case TypeBool:
		if v != 0 {
			return "On"
		}
		return "Off"
	case TypeInt:
		return fmt.Sprintf("%d", int(math.Round(v)))
	case TypeChoice:
		idx := int(math.Round(v))
		if idx >= 0 && idx < len(p.choices) {
			return p.choices[idx]
		}
		return fmt.Sprintf("%d", idx)
	default:
		return fmt.Sprintf("%.3f", v)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
