package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
)

func newTestManager() (*SoundManager, *[]beep.Streamer, *time.Time) {
	sm := NewSoundManager(nil)
	played := &[]beep.Streamer{}
	clock := time.Unix(0, 0)
	sm.sink = func(s beep.Streamer) { *played = append(*played, s) }
	sm.now = func() time.Time { return clock }
	return sm, played, &clock
}

func TestSoundManager_NotInitialized(t *testing.T) {
	sm := NewSoundManager(nil)
	if sm.PlayWrap() {
		t.Error("Expected no playback before Initialize")
	}
	// Cleanup without Initialize must be safe
	sm.Cleanup()
}

func TestSoundManager_DisabledInitializeIsNoop(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.Enabled = false
	sm := NewSoundManager(cfg)

	if err := sm.Initialize(); err != nil {
		t.Fatalf("Expected nil error for disabled audio, got %v", err)
	}
	if sm.PlaySelect() {
		t.Error("Expected no playback when disabled")
	}
}

func TestSoundManager_Throttle(t *testing.T) {
	sm, played, clock := newTestManager()

	if !sm.PlayWrap() {
		t.Fatal("Expected first wrap cue to play")
	}
	if sm.PlayWrap() {
		t.Error("Expected immediate repeat to be throttled")
	}
	// Different cue has its own gap
	if !sm.PlaySelect() {
		t.Error("Expected select cue to play")
	}

	*clock = clock.Add(sm.cfg.MinGap)
	if !sm.PlayWrap() {
		t.Error("Expected wrap cue after MinGap")
	}

	if len(*played) != 3 {
		t.Errorf("Expected 3 queued cues, got %d", len(*played))
	}
}

func TestLoadAudioConfig_Env(t *testing.T) {
	t.Setenv("GRIDSIM_AUDIO_ENABLED", "false")
	t.Setenv("GRIDSIM_MASTER_VOLUME", "250")
	t.Setenv("GRIDSIM_SAMPLE_RATE", "22050")

	cfg := LoadAudioConfig()
	if cfg.Enabled {
		t.Error("Expected audio disabled from env")
	}
	if cfg.MasterVolume != 1 {
		t.Errorf("Expected volume clamped to 1, got %f", cfg.MasterVolume)
	}
	if cfg.SampleRate != 22050 {
		t.Errorf("Expected sample rate 22050, got %d", cfg.SampleRate)
	}
}
