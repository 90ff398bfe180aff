package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// SoundManager plays simulation cues through the system speaker
// All methods are safe to call when audio is disabled or failed to start
type SoundManager struct {
	mu          sync.Mutex
	cfg         *AudioConfig
	mixer       *beep.Mixer
	initialized bool

	// sink receives cue streamers, the speaker mixer once initialized
	sink     func(beep.Streamer)
	now      func() time.Time
	lastPlay map[SoundType]time.Time
}

// NewSoundManager creates a new sound manager, nil cfg uses DefaultAudioConfig
func NewSoundManager(cfg *AudioConfig) *SoundManager {
	if cfg == nil {
		cfg = DefaultAudioConfig()
	}
	return &SoundManager{
		cfg:      cfg,
		mixer:    &beep.Mixer{},
		now:      time.Now,
		lastPlay: make(map[SoundType]time.Time),
	}
}

// Initialize sets up the speaker, a disabled config is a no-op
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized || !sm.cfg.Enabled {
		return nil
	}

	rate := beep.SampleRate(sm.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.sink = func(s beep.Streamer) {
		speaker.Lock()
		sm.mixer.Add(s)
		speaker.Unlock()
	}
	sm.initialized = true
	return nil
}

// Cleanup stops all sounds and closes the speaker
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()

	sm.sink = nil
	sm.initialized = false
}

// Play queues the cue unless audio is off or the same cue played within MinGap
// Returns true if the cue was queued
func (sm *SoundManager) Play(soundType SoundType) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.sink == nil {
		return false
	}

	now := sm.now()
	if last, ok := sm.lastPlay[soundType]; ok && now.Sub(last) < sm.cfg.MinGap {
		return false
	}

	s := GetSoundEffect(soundType, sm.cfg)
	if s == nil {
		return false
	}
	sm.lastPlay[soundType] = now
	sm.sink(s)
	return true
}

// PlayWrap plays the edge-crossing cue
func (sm *SoundManager) PlayWrap() bool { return sm.Play(SoundWrap) }

// PlaySelect plays the hit-test cue
func (sm *SoundManager) PlaySelect() bool { return sm.Play(SoundSelect) }
