package sample

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

// LoadWAV decodes a WAV stream (file or in-memory byte buffer) into an
// immutable Sample, normalizing any source bit depth/encoding to
// interleaved float32 in [-1,1]. Rejects channel counts outside {1,2}
// and non-positive sample rates via NewSample.
func LoadWAV(id string, r io.ReadSeeker) (*Sample, error) {
	d := wav.NewDecoder(r)
	d.ReadInfo()
	if !d.IsValidFile() {
		return nil, fmt.Errorf("sample %q: not a valid WAV file", id)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("sample %q: decode WAV: %w", id, err)
	}
	floatBuf := buf.AsFloatBuffer()
	data := make([]float32, len(floatBuf.Data))
	for i, v := range floatBuf.Data {
		data[i] = float32(v)
	}
	return NewSample(id, buf.Format.NumChannels, buf.Format.SampleRate, data)
}

// LoadWAVRange decodes a WAV stream and trims it to the given frame
// range, per load_sample_to_memory's optional frame offset/length. A
// non-positive offsetFrames and lengthFrames loads the full sample.
func LoadWAVRange(id string, r io.ReadSeeker, offsetFrames, lengthFrames int) (*Sample, error) {
	full, err := LoadWAV(id, r)
	if err != nil {
		return nil, err
	}
	if offsetFrames <= 0 && lengthFrames <= 0 {
		return full, nil
	}
	channels := full.Channels
	start := offsetFrames * channels
	if start < 0 || start > len(full.Data) {
		start = 0
	}
	end := len(full.Data)
	if lengthFrames > 0 {
		if e := start + lengthFrames*channels; e < end {
			end = e
		}
	}
	trimmed := append([]float32(nil), full.Data[start:end]...)
	return NewSample(id, channels, full.SampleRate, trimmed)
}

// LoadWAVBytes decodes a WAV held in a fixed-size in-memory buffer,
// the other source form load_sample_to_memory accepts besides a file
// path.
func LoadWAVBytes(id string, data []byte, offsetFrames, lengthFrames int) (*Sample, error) {
	return LoadWAVRange(id, bytes.NewReader(data), offsetFrames, lengthFrames)
}
