package audio

import (
	"os"
	"strconv"
	"time"
)

// SoundType identifies a cue
type SoundType int

const (
	SoundWrap   SoundType = iota // entity crossed a grid edge
	SoundSelect                  // hit-test picked an entity
)

func (s SoundType) String() string {
	switch s {
	case SoundWrap:
		return "wrap"
	case SoundSelect:
		return "select"
	default:
		return "unknown"
	}
}

// AudioConfig holds audio settings
type AudioConfig struct {
	Enabled       bool
	SampleRate    int
	MasterVolume  float64 // 0.0 - 1.0
	EffectVolumes map[SoundType]float64
	// MinGap throttles repeats of the same cue, wraps can fire every tick
	MinGap time.Duration
}

// DefaultAudioConfig returns the built-in audio settings
func DefaultAudioConfig() *AudioConfig {
	return &AudioConfig{
		Enabled:      true,
		SampleRate:   44100,
		MasterVolume: 0.5,
		EffectVolumes: map[SoundType]float64{
			SoundWrap:   0.6,
			SoundSelect: 0.8,
		},
		MinGap: 120 * time.Millisecond,
	}
}

// LoadAudioConfig loads audio configuration from environment variables
func LoadAudioConfig() *AudioConfig {
	cfg := DefaultAudioConfig()

	if enabled := os.Getenv("GRIDSIM_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Master volume is 0-100 converted to 0.0-1.0
	if volume := os.Getenv("GRIDSIM_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = min(max(float64(val)/100.0, 0), 1)
		}
	}

	if sampleRate := os.Getenv("GRIDSIM_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	return cfg
}
