package tts

import "strings"

// Capability is an optional feature a TTS backend may or may not support.
// Providers declare their capability set at construction; setters for
// undeclared capabilities fail without changing state.
type Capability string

const (
	CapPitch     Capability = "pitch"
	CapVolume    Capability = "volume"
	CapSpeakRate Capability = "speakrate"
	CapGender    Capability = "gender"
)

// Gender selects the synthesis voice gender for providers that support it.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderNeutral Gender = "neutral"

	// GenderUnsupported is returned by Gender getters when the provider does
	// not declare [CapGender].
	GenderUnsupported Gender = "unsupported"
)

// ParseGender parses s case-insensitively into a [Gender].
// Returns false for anything other than male, female, or neutral.
func ParseGender(s string) (Gender, bool) {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	case GenderNeutral:
		return GenderNeutral, true
	}
	return "", false
}

// UnsupportedValue is the sentinel returned by numeric getters for
// capabilities the provider does not declare.
const UnsupportedValue = -9999

// RateDefault is the speaking-rate sentinel meaning "use the provider's
// built-in default". Rates requested below a provider's minimum are
// normalized to this value rather than kept at the old rate.
const RateDefault = 0

// Ranges describes the value ranges a provider accepts for its numeric
// settings. Units are provider-specific: volume may be a dB gain or a
// percentage, documented per provider.
type Ranges struct {
	PitchMin, PitchMax   int
	VolumeMin, VolumeMax float64
	RateMin, RateMax     float64

	// MuteFloor is the volume at or below which synthesis is skipped
	// entirely (no network call).
	MuteFloor float64
}
