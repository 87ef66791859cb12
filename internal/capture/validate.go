package capture

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// validateWAV re-opens path as a WAV reader to confirm it decodes:
// a valid header, plausible sample rate/channel count, and a readable
// duration.
func validateWAV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reopen for validation: %w", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	d.ReadInfo()
	if !d.IsValidFile() {
		return fmt.Errorf("file does not decode as a valid WAV")
	}
	if d.SampleRate == 0 || d.NumChans == 0 {
		return fmt.Errorf("decoded WAV has zero sample rate or channel count")
	}
	return nil
}
