package tts

import "testing"

func googleLikeSettings() *Settings {
	return NewSettings(SettingsConfig{
		Capabilities: []Capability{CapPitch, CapVolume, CapSpeakRate, CapGender},
		Ranges: Ranges{
			PitchMin: -20, PitchMax: 20,
			VolumeMin: -96, VolumeMax: 16, MuteFloor: -96,
			RateMin: 0.25, RateMax: 4,
		},
		KnownLanguages: []string{"de", "en-GB", "en-US", "fr"},
		DefaultLang:    "de",
		DefaultVoice:   "de-DE-Wavenet-A",
		LangMatch:      MatchPrefix,
	})
}

func TestSettings_SetPitchInRange(t *testing.T) {
	t.Parallel()

	s := googleLikeSettings()
	if !s.SetPitch(7) {
		t.Fatal("expected in-range pitch to be accepted")
	}
	if got := s.Pitch(); got != 7 {
		t.Errorf("Pitch() = %d, want 7", got)
	}
}

func TestSettings_SetPitchOutOfRange(t *testing.T) {
	t.Parallel()

	s := googleLikeSettings()
	s.SetPitch(5)
	if s.SetPitch(21) {
		t.Fatal("expected out-of-range pitch to be rejected")
	}
	if got := s.Pitch(); got != 5 {
		t.Errorf("Pitch() = %d after rejected set, want 5", got)
	}
}

func TestSettings_UndeclaredCapability(t *testing.T) {
	t.Parallel()

	s := NewSettings(SettingsConfig{
		Capabilities:   []Capability{CapVolume},
		Ranges:         Ranges{VolumeMin: 0, VolumeMax: 400},
		KnownLanguages: []string{"de"},
		DefaultLang:    "de",
	})

	if s.SetPitch(0) {
		t.Error("pitch setter succeeded without CapPitch")
	}
	if got := s.Pitch(); got != UnsupportedValue {
		t.Errorf("Pitch() = %d, want UnsupportedValue", got)
	}
	if s.SetGender("male") {
		t.Error("gender setter succeeded without CapGender")
	}
	if got := s.Gender(); got != GenderUnsupported {
		t.Errorf("Gender() = %q, want GenderUnsupported", got)
	}
	if s.SetSpeakingRate(1.5) {
		t.Error("rate setter succeeded without CapSpeakRate")
	}
}

func TestSettings_SetLanguagePrefixMatch(t *testing.T) {
	t.Parallel()

	s := googleLikeSettings()
	if !s.SetLanguage("en") {
		t.Fatal(`expected "en" to prefix-match "en-GB"`)
	}
	if got := s.Language(); got != "en" {
		t.Errorf("Language() = %q, want %q", got, "en")
	}
}

func TestSettings_SetLanguageUnknown(t *testing.T) {
	t.Parallel()

	s := googleLikeSettings()
	if s.SetLanguage("xx") {
		t.Fatal("expected unknown language to be rejected")
	}
	if got := s.Language(); got != "de" {
		t.Errorf("Language() = %q after rejected set, want default", got)
	}
}

func TestSettings_SetLanguageTooShort(t *testing.T) {
	t.Parallel()

	s := googleLikeSettings()
	if s.SetLanguage("d") {
		t.Error("expected single-letter code to be rejected")
	}
	if s.SetLanguage("") {
		t.Error("expected empty code to be rejected")
	}
}

func TestSettings_ExactMatchPolicy(t *testing.T) {
	t.Parallel()

	s := NewSettings(SettingsConfig{
		Capabilities:   []Capability{CapVolume},
		KnownLanguages: []string{"de-DE", "en-US"},
		DefaultLang:    "de-DE",
		LangMatch:      MatchExact,
	})
	if s.SetLanguage("de") {
		t.Error("exact policy accepted a prefix")
	}
	if !s.SetLanguage("en-US") {
		t.Error("exact policy rejected a verbatim entry")
	}
}

func TestSettings_SetDefaultResetsOnlyLanguageAndVoice(t *testing.T) {
	t.Parallel()

	s := googleLikeSettings()
	s.SetLanguage("fr")
	s.StoreVoice("fr-FR-Wavenet-C")
	s.SetPitch(12)
	s.SetVolume(-10)
	s.SetSpeakingRate(2)

	s.SetDefault()

	if got := s.Language(); got != "de" {
		t.Errorf("Language() = %q, want default", got)
	}
	if got := s.Voice(); got != "de-DE-Wavenet-A" {
		t.Errorf("Voice() = %q, want default", got)
	}
	if got := s.Pitch(); got != 12 {
		t.Errorf("SetDefault changed pitch to %d", got)
	}
	if got := s.Volume(); got != -10 {
		t.Errorf("SetDefault changed volume to %v", got)
	}
	if got := s.SpeakingRate(); got != 2 {
		t.Errorf("SetDefault changed rate to %v", got)
	}
}

func TestSettings_SubMinimumRateResetsToDefault(t *testing.T) {
	t.Parallel()

	s := googleLikeSettings()
	s.SetSpeakingRate(2)
	if s.SetSpeakingRate(0.1) {
		t.Fatal("expected sub-minimum rate to report failure")
	}
	if got := s.SpeakingRate(); got != RateDefault {
		t.Errorf("SpeakingRate() = %v, want RateDefault", got)
	}
}

func TestSettings_Muted(t *testing.T) {
	t.Parallel()

	s := googleLikeSettings()
	if s.Muted() {
		t.Fatal("default volume 0 should not be muted with floor -96")
	}
	s.SetVolume(-96)
	if !s.Muted() {
		t.Error("volume at the mute floor should be muted")
	}
}

func TestSettings_GenderParsing(t *testing.T) {
	t.Parallel()

	s := googleLikeSettings()
	if !s.SetGender("FEMALE") {
		t.Fatal("expected case-insensitive gender parse")
	}
	if got := s.Gender(); got != GenderFemale {
		t.Errorf("Gender() = %q, want female", got)
	}
	if s.SetGender("robot") {
		t.Error("expected unknown gender to be rejected")
	}
	if got := s.Gender(); got != GenderFemale {
		t.Errorf("Gender() = %q after rejected set, want female", got)
	}
}
