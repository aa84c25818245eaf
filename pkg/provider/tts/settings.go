package tts

import (
	"slices"
	"strings"
	"sync"
)

// MatchPolicy fixes how SetLanguage compares a requested code against the
// known-languages list. The policy is chosen per provider at construction
// and never changes.
type MatchPolicy int

const (
	// MatchPrefix accepts a code when any known language starts with it
	// ("en" matches "en-GB").
	MatchPrefix MatchPolicy = iota

	// MatchExact accepts only codes present verbatim in the list.
	MatchExact
)

// SettingsConfig seeds a [Settings] value.
type SettingsConfig struct {
	Capabilities   []Capability
	Ranges         Ranges
	KnownLanguages []string
	DefaultLang    string
	DefaultVoice   string
	DefaultGender  Gender
	DefaultVolume  float64
	LangMatch      MatchPolicy
}

// Settings implements the mutable, validated settings half of [Provider].
// Provider implementations embed a *Settings and add Name, voice listing,
// synthesis, and translation on top.
//
// All accessors hold the internal mutex, so a failed validation is never
// observable as a partial update.
type Settings struct {
	mu sync.Mutex

	caps   map[Capability]bool
	ranges Ranges
	policy MatchPolicy

	knownLanguages []string
	defaultLang    string
	defaultVoice   string

	lang   string
	voice  string
	gender Gender
	pitch  int
	volume float64
	rate   float64
}

// NewSettings creates a Settings seeded with the provider defaults.
func NewSettings(cfg SettingsConfig) *Settings {
	caps := make(map[Capability]bool, len(cfg.Capabilities))
	for _, c := range cfg.Capabilities {
		caps[c] = true
	}
	gender := cfg.DefaultGender
	if gender == "" {
		gender = GenderNeutral
	}
	return &Settings{
		caps:           caps,
		ranges:         cfg.Ranges,
		policy:         cfg.LangMatch,
		knownLanguages: slices.Clone(cfg.KnownLanguages),
		defaultLang:    cfg.DefaultLang,
		defaultVoice:   cfg.DefaultVoice,
		lang:           cfg.DefaultLang,
		voice:          cfg.DefaultVoice,
		gender:         gender,
		volume:         cfg.DefaultVolume,
		rate:           RateDefault,
	}
}

// Supports reports whether the capability was declared at construction.
func (s *Settings) Supports(c Capability) bool {
	return s.caps[c]
}

// Ranges returns the configured value ranges.
func (s *Settings) Ranges() Ranges {
	return s.ranges
}

// SetDefault resets language and voice to the factory defaults. Pitch,
// volume, and speaking rate keep their current values.
func (s *Settings) SetDefault() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lang = s.defaultLang
	s.voice = s.defaultVoice
}

// Language returns the active language code.
func (s *Settings) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// SetLanguage validates code against the known-languages list using the
// provider's match policy. The stored value is the trimmed requested code,
// not the matched list entry, mirroring how voice names are resolved per
// language later.
func (s *Settings) SetLanguage(code string) bool {
	code = strings.TrimSpace(code)
	if len(code) < 2 {
		return false
	}
	if !s.IsKnownLanguage(code) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lang = code
	return true
}

// KnownLanguages returns a copy of the accepted language codes.
func (s *Settings) KnownLanguages() []string {
	return slices.Clone(s.knownLanguages)
}

// IsKnownLanguage reports whether code would be accepted by SetLanguage.
func (s *Settings) IsKnownLanguage(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	for _, known := range s.knownLanguages {
		switch s.policy {
		case MatchPrefix:
			if strings.HasPrefix(known, code) || strings.HasPrefix(code, known) {
				return true
			}
		case MatchExact:
			if known == code {
				return true
			}
		}
	}
	return false
}

// Voice returns the active voice name.
func (s *Settings) Voice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice
}

// StoreVoice records a voice name that the provider has already validated
// against its live voice list.
func (s *Settings) StoreVoice(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice = name
}

// Gender returns the active gender, or [GenderUnsupported].
func (s *Settings) Gender() Gender {
	if !s.caps[CapGender] {
		return GenderUnsupported
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gender
}

// SetGender parses and stores the gender. Fails when [CapGender] is not
// declared or the value does not parse; the stored gender is untouched.
func (s *Settings) SetGender(value string) bool {
	if !s.caps[CapGender] {
		return false
	}
	g, ok := ParseGender(value)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gender = g
	return true
}

// Pitch returns the active pitch, or [UnsupportedValue].
func (s *Settings) Pitch() int {
	if !s.caps[CapPitch] {
		return UnsupportedValue
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pitch
}

// SetPitch stores value when [CapPitch] is declared and value is in range.
func (s *Settings) SetPitch(value int) bool {
	if !s.caps[CapPitch] {
		return false
	}
	if value < s.ranges.PitchMin || value > s.ranges.PitchMax {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pitch = value
	return true
}

// Volume returns the active volume, or [UnsupportedValue].
func (s *Settings) Volume() float64 {
	if !s.caps[CapVolume] {
		return UnsupportedValue
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// SetVolume stores value when [CapVolume] is declared and value is in range.
func (s *Settings) SetVolume(value float64) bool {
	if !s.caps[CapVolume] {
		return false
	}
	if value < s.ranges.VolumeMin || value > s.ranges.VolumeMax {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = value
	return true
}

// SpeakingRate returns the active rate, or [UnsupportedValue].
func (s *Settings) SpeakingRate() float64 {
	if !s.caps[CapSpeakRate] {
		return UnsupportedValue
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// SetSpeakingRate stores value when [CapSpeakRate] is declared and value is
// at least the provider minimum. A sub-minimum value resets the rate to
// [RateDefault] and reports failure.
func (s *Settings) SetSpeakingRate(value float64) bool {
	if !s.caps[CapSpeakRate] {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if value < s.ranges.RateMin {
		s.rate = RateDefault
		return false
	}
	if value > s.ranges.RateMax {
		return false
	}
	s.rate = value
	return true
}

// Muted reports whether the current volume is at or below the mute floor.
// Speak implementations check this before any network call.
func (s *Settings) Muted() bool {
	if !s.caps[CapVolume] {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume <= s.ranges.MuteFloor
}
