package capture

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/go-audio/wav"
	"golang.org/x/sync/errgroup"
)

const (
	blockFrames       = 256
	minFreeSpaceBytes = 10 * 1024 * 1024
	lowFreeSpaceBytes = 1 * 1024 * 1024
	peakSmoothing     = 0.3
	rmsSmoothing      = 0.1
	gainAttack        = 0.01
	gainRelease       = 0.05
	minGain           = 0.1
	maxGain           = 10.0
	autoGainTarget    = 0.5
	autoGainFloorRMS  = 1e-3
)

// InputStream is the subset of a duplex audio device the recorder
// reads from.
type InputStream interface {
	// ReadBlock fills dst (interleaved, channels wide) and returns the
	// number of frames actually read.
	ReadBlock(dst []float32) (frames int, err error)
	SampleRate() int
	Channels() int
	Close() error
}

// FreeSpacer reports free disk space for a path, injected so tests can
// simulate a full disk without touching the real filesystem.
type FreeSpacer func(path string) (uint64, error)

// Result is returned by StopRecording.
type Result struct {
	FilePath    string
	Duration    time.Duration
	SampleRate  int
	Channels    int
	FrameCount  int64
}

// Recorder captures an input stream to a 32-bit float WAV file with
// peak/RMS metering and optional automatic gain.
type Recorder struct {
	freeSpace FreeSpacer

	mu        sync.Mutex
	active    bool
	stopOnce  sync.Once
	stopCh    chan struct{}
	group     *errgroup.Group

	file       *os.File
	encoder    *wav.Encoder
	filePath   string
	sampleRate int
	channels   int
	frameCount int64
	startedAt  time.Time

	autoGainEnabled bool
	currentGain     float64

	meterMu   sync.Mutex
	peak      float64
	rms       float64
	gainRead  float64
}

// New returns a recorder that uses freeSpacer to check available disk
// space before and during recording.
func New(freeSpacer FreeSpacer) *Recorder {
	return &Recorder{freeSpace: freeSpacer, currentGain: 1, gainRead: 1}
}

// SetAutoGainEnabled toggles automatic gain control.
func (r *Recorder) SetAutoGainEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoGainEnabled = enabled
}

// StartRecording validates parameters, opens the output file and WAV
// writer, and spawns the reader goroutine that drains in from blocks
// of blockFrames.
func (r *Recorder) StartRecording(path string, in InputStream, sampleRate, channels int) error {
	if channels != 1 && channels != 2 {
		return fmt.Errorf("capture: channels %d must be 1 or 2", channels)
	}
	if sampleRate < 8000 || sampleRate > 192000 {
		return fmt.Errorf("capture: sample rate %d out of range [8000,192000]", sampleRate)
	}

	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return fmt.Errorf("capture: already recording")
	}
	r.mu.Unlock()

	if free, err := r.freeSpace(path); err == nil && free < minFreeSpaceBytes {
		return fmt.Errorf("capture: insufficient free space to start recording")
	}

	actualSampleRate := in.SampleRate()
	actualChannels := in.Channels()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("capture: open output file: %w", err)
	}
	enc := wav.NewEncoder(f, actualSampleRate, 32, actualChannels, 3)

	r.mu.Lock()
	r.active = true
	r.file = f
	r.encoder = enc
	r.filePath = path
	r.sampleRate = actualSampleRate
	r.channels = actualChannels
	r.frameCount = 0
	r.startedAt = time.Now()
	r.stopCh = make(chan struct{})
	r.stopOnce = sync.Once{}
	g := &errgroup.Group{}
	r.group = g
	r.mu.Unlock()

	g.Go(func() error { return r.readLoop(in) })
	return nil
}

func (r *Recorder) readLoop(in InputStream) error {
	block := make([]float32, blockFrames*r.channels)
	for {
		select {
		case <-r.stopCh:
			return nil
		default:
		}

		frames, err := in.ReadBlock(block[:blockFrames*r.channels])
		if err != nil {
			return err
		}
		if frames == 0 {
			continue
		}
		samples := block[:frames*r.channels]

		r.mu.Lock()
		if r.autoGainEnabled {
			r.applyAutoGain(samples)
		}
		peak, rms := peakAndRMS(samples)
		r.updateMeters(peak, rms)

		if err := r.writeBlock(samples); err != nil {
			r.mu.Unlock()
			if free, ferr := r.freeSpace(r.filePath); ferr == nil && free < lowFreeSpaceBytes {
				r.requestStop()
			}
			continue
		}
		r.frameCount += int64(frames)
		r.mu.Unlock()

		if free, ferr := r.freeSpace(r.filePath); ferr == nil && free < lowFreeSpaceBytes {
			r.requestStop()
		}
	}
}

// writeBlock writes one block of interleaved float32 samples to the
// IEEE-float WAV writer, one frame at a time: the encoder's batched
// Write takes an *audio.IntBuffer, which would quantize our samples,
// so a 32-bit float stream goes through its per-sample WriteFrame.
func (r *Recorder) writeBlock(samples []float32) error {
	for _, s := range samples {
		if err := r.encoder.WriteFrame(s); err != nil {
			return err
		}
	}
	return nil
}

// applyAutoGain computes a desired gain from the block RMS and slews
// the current gain toward it, applying it in place.
func (r *Recorder) applyAutoGain(samples []float32) {
	_, rms := peakAndRMS(samples)
	if rms > autoGainFloorRMS {
		desired := autoGainTarget / rms
		if desired > r.currentGain {
			r.currentGain += (desired - r.currentGain) * gainAttack
		} else {
			r.currentGain += (desired - r.currentGain) * gainRelease
		}
		r.currentGain = clamp(r.currentGain, minGain, maxGain)
	}
	for i := range samples {
		samples[i] *= float32(r.currentGain)
	}
	r.meterMu.Lock()
	r.gainRead = r.currentGain
	r.meterMu.Unlock()
}

func (r *Recorder) updateMeters(peak, rms float64) {
	r.meterMu.Lock()
	defer r.meterMu.Unlock()
	r.peak = peakSmoothing*peak + (1-peakSmoothing)*r.peak
	r.rms = rmsSmoothing*rms + (1-rmsSmoothing)*r.rms
}

func peakAndRMS(samples []float32) (peak, rms float64) {
	var sumSq float64
	for _, s := range samples {
		v := float64(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
		sumSq += float64(s) * float64(s)
	}
	if len(samples) > 0 {
		rms = math.Sqrt(sumSq / float64(len(samples)))
	}
	return peak, rms
}

func (r *Recorder) requestStop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// IsRecording reports whether a recording is currently in progress.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// PeakLevel returns the smoothed peak meter reading.
func (r *Recorder) PeakLevel() float64 {
	r.meterMu.Lock()
	defer r.meterMu.Unlock()
	return r.peak
}

// RMSLevel returns the smoothed RMS meter reading.
func (r *Recorder) RMSLevel() float64 {
	r.meterMu.Lock()
	defer r.meterMu.Unlock()
	return r.rms
}

// ElapsedWallClock returns how long the current recording has been
// running, measured against the system clock rather than frames
// written (useful to detect a stalled input stream).
func (r *Recorder) ElapsedWallClock() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return 0
	}
	return time.Since(r.startedAt)
}

// CurrentGain returns the current automatic-gain multiplier.
func (r *Recorder) CurrentGain() float64 {
	r.meterMu.Lock()
	defer r.meterMu.Unlock()
	return r.gainRead
}

// StopRecording signals the reader to stop, joins it, closes the
// writer and file, and zeroes metering state. On success it re-opens
// the file as a reader to confirm it decodes.
func (r *Recorder) StopRecording() (Result, error) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return Result{}, fmt.Errorf("capture: not recording")
	}
	r.requestStop()
	group := r.group
	r.mu.Unlock()

	_ = group.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.encoder.Close(); err != nil {
		r.active = false
		return Result{}, fmt.Errorf("capture: close WAV writer: %w", err)
	}
	if err := r.file.Close(); err != nil {
		r.active = false
		return Result{}, fmt.Errorf("capture: close output file: %w", err)
	}

	res := Result{
		FilePath:   r.filePath,
		Duration:   time.Duration(float64(r.frameCount) / float64(r.sampleRate) * float64(time.Second)),
		SampleRate: r.sampleRate,
		Channels:   r.channels,
		FrameCount: r.frameCount,
	}

	if err := validateWAV(r.filePath); err != nil {
		r.active = false
		return res, fmt.Errorf("capture: validation failed: %w", err)
	}

	r.active = false
	r.peak = 0
	r.rms = 0
	r.currentGain = 1
	r.gainRead = 1
	return res, nil
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
