// Package tts defines the Provider contract for pluggable text-to-speech
// backends and the Registry that holds the providers available at runtime.
//
// A Provider bundles mutable session settings (language, voice, gender,
// pitch, volume, speaking rate) with two opaque operations: synthesis plus
// local playback, and text translation. Settings validation is always a
// boolean result; a setter never returns an error for an out-of-range or
// unknown value, it simply reports failure and leaves the previous value in
// place. Errors are reserved for transport-level failures (network,
// credentials, audio subsystem) during the real operations.
//
// Implementations must be safe for concurrent use: a single provider
// instance is shared between the chat dispatcher and the settings UI.
package tts

import "context"

// Provider is the abstraction over any TTS backend.
//
// Setter semantics, uniformly:
//   - success leaves the new value observable to all callers, failure leaves
//     the previous value untouched, no partial updates,
//   - a setter for an undeclared [Capability] always fails,
//   - invalid values never produce an error, only a false return.
type Provider interface {
	// Name returns the provider's unique registry name (e.g. "google").
	Name() string

	// Supports reports whether the provider declares the given capability.
	Supports(c Capability) bool

	// Ranges returns the provider's accepted value ranges, used to build
	// user-facing constraint messages.
	Ranges() Ranges

	// SetDefault resets language and voice to the provider's factory
	// defaults. It never touches pitch, volume, or speaking rate.
	SetDefault()

	// Language returns the active language code.
	Language() string

	// SetLanguage updates the active language. Success iff code matches an
	// entry in KnownLanguages under the provider's fixed match policy
	// (prefix or exact, documented per provider).
	SetLanguage(code string) bool

	// KnownLanguages returns the language codes this provider accepts.
	KnownLanguages() []string

	// IsKnownLanguage reports whether code would be accepted by SetLanguage.
	IsKnownLanguage(code string) bool

	// Voice returns the active voice name.
	Voice() string

	// SetVoice updates the active voice. Success iff name is in the
	// supported-voices list for the current language; on failure the list is
	// returned so it can be surfaced to the user.
	SetVoice(ctx context.Context, name string) (ok bool, supported []string)

	// ListVoices returns the voice names available for lang. An empty lang
	// lists all voices. Used both for user reporting and as the liveness
	// probe at registration time.
	ListVoices(ctx context.Context, lang string) ([]string, error)

	// Gender returns the active gender, or [GenderUnsupported] if the
	// provider does not declare [CapGender].
	Gender() Gender

	// SetGender parses value case-insensitively into male/female/neutral.
	// Success iff [CapGender] is declared and the value parses.
	SetGender(value string) bool

	// Pitch returns the active pitch, or [UnsupportedValue].
	Pitch() int

	// SetPitch succeeds iff [CapPitch] is declared and value is in range.
	SetPitch(value int) bool

	// Volume returns the active volume, or [UnsupportedValue]. Units are
	// provider-specific (see [Ranges]).
	Volume() float64

	// SetVolume succeeds iff [CapVolume] is declared and value is in range.
	// Volume is applied as a playback gain, not a synthesis parameter.
	SetVolume(value float64) bool

	// SpeakingRate returns the active rate, [RateDefault] when unset, or
	// [UnsupportedValue].
	SpeakingRate() float64

	// SetSpeakingRate succeeds iff [CapSpeakRate] is declared and value is
	// at least the provider minimum. Values below the minimum reset the
	// rate to [RateDefault] and report failure.
	SetSpeakingRate(value float64) bool

	// Speak synthesizes text with the current settings and plays the result
	// on the local audio output, blocking until playback finishes. When the
	// current volume is at or below the mute floor the call is a no-op and
	// returns nil without any network traffic.
	Speak(ctx context.Context, text string) error

	// SpeakWith is Speak with per-call language and gender overrides. Empty
	// values fall back to the current settings.
	SpeakWith(ctx context.Context, text, langOverride string, genderOverride Gender) error

	// Translate translates text from src to dst. When either language is
	// not supported it returns a "<code> not supported" message string, and
	// on transport failure it returns ""; the caller treats an empty
	// result as "nothing to say".
	Translate(ctx context.Context, src, dst, text string) string
}
