// Command groovebox starts the sampler/synth engine, loads a plugin
// and an optional drum pad sample, then plays one pad hit (when a pad
// sample is given) and one synth note so the output can be heard on
// the default audio device.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/cbegin/groovebox"
	"github.com/cbegin/groovebox/internal/sample"
	"github.com/cbegin/groovebox/internal/telemetry"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		channels   = flag.Int("channels", 2, "output channel count: 1 or 2")
		pluginName = flag.String("plugin", "subtractive_synth", "hosted plugin: subtractive_synth|chiptune")
		pad        = flag.String("pad", "", "WAV file to load onto drum pad 0")
		bpm        = flag.Float64("bpm", 120, "metronome tempo")
		midiIn     = flag.Bool("midi-in", false, "drive pads from the first available hardware MIDI input port")
	)
	flag.Parse()

	logger := telemetry.NewLogger(os.Stderr, slog.LevelInfo)

	eng, err := groovebox.NewEngine(groovebox.Config{
		SampleRate: *sampleRate,
		Channels:   *channels,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("new engine: %v", err)
	}

	if err := eng.LoadPlugin(*pluginName, "main"); err != nil {
		log.Fatalf("load plugin %q: %v", *pluginName, err)
	}

	if *pad != "" {
		data, err := os.ReadFile(*pad)
		if err != nil {
			log.Fatalf("read pad sample: %v", err)
		}
		if err := eng.LoadSampleToMemory("pad0", data); err != nil {
			log.Fatalf("load pad sample: %v", err)
		}
		padSettings := sample.Pad{
			ID: 0,
			Layers: []sample.Layer{
				{SampleID: "pad0", Enabled: true, VelocityRangeLo: 0, VelocityRangeHi: 127},
			},
			LayerTriggerRule: sample.RuleVelocity,
			PlaybackMode:     sample.OneShot,
			Volume:           1,
			Polyphony:        4,
		}
		if err := eng.UpdatePadSettings(0, padSettings); err != nil {
			log.Fatalf("configure pad 0: %v", err)
		}
	}

	eng.SetMetronomeState(true, *bpm, 4, 4)
	eng.SetMasterVolume(0.8)

	if err := eng.Start(); err != nil {
		log.Fatalf("start engine: %v", err)
	}
	defer eng.Shutdown()

	if *midiIn {
		if err := eng.ConnectMIDIInput(); err != nil {
			log.Printf("midi input: %v", err)
		}
	}

	fmt.Printf("groovebox running: plugin=%s sampleRate=%d channels=%d bpm=%.1f\n", *pluginName, *sampleRate, *channels, *bpm)

	if *pad != "" {
		_ = eng.TriggerDrumPad(0, 1.0)
	}
	_ = eng.SendMIDIToPlugin("main", 0x90, 60, 100)
	time.Sleep(2 * time.Second)
	_ = eng.SendMIDIToPlugin("main", 0x80, 60, 0)

	time.Sleep(1 * time.Second)
	stats := eng.Stats()
	fmt.Printf("triggers fired=%d missed=%d underruns=%d\n", stats.TotalTriggers, stats.MissedTriggers, stats.BufferUnderruns)
}
