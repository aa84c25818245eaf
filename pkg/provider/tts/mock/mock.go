// Package mock provides a test double for the tts.Provider interface.
//
// The Provider embeds a real *tts.Settings so setter/getter semantics match
// production providers exactly; only voice listing, synthesis, and
// translation are scripted.
//
// Example:
//
//	p := mock.New("fake",
//	    mock.WithVoices("de-DE-A", "de-DE-B"),
//	    mock.WithCapabilities(tts.CapVolume, tts.CapSpeakRate),
//	)
package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/chatvox/chatvox/pkg/provider/tts"
)

// SpeakCall records a single invocation of Speak or SpeakWith.
type SpeakCall struct {
	// Text is the text passed to the call.
	Text string
	// LangOverride is the language override, empty for plain Speak.
	LangOverride string
	// GenderOverride is the gender override, empty for plain Speak.
	GenderOverride tts.Gender
}

// TranslateCall records a single invocation of Translate.
type TranslateCall struct {
	Src, Dst, Text string
}

// Provider is a mock implementation of tts.Provider.
type Provider struct {
	*tts.Settings

	mu sync.Mutex

	name string

	// Voices is the static voice list returned by ListVoices and used to
	// validate SetVoice.
	Voices []string

	// ListVoicesErr, if non-nil, is returned by ListVoices. Set it to make
	// the registry liveness probe fail.
	ListVoicesErr error

	// SpeakErr, if non-nil, is returned by Speak and SpeakWith.
	SpeakErr error

	// Block, if non-nil, is received from at the start of every non-muted
	// Speak/SpeakWith so tests can hold a synthesis in flight. Close it to
	// release all pending calls.
	Block chan struct{}

	// TranslateResult is returned by Translate.
	TranslateResult string

	// --- Call records ---

	// SpeakCalls records every Speak/SpeakWith invocation in order.
	SpeakCalls []SpeakCall

	// TranslateCalls records every Translate invocation in order.
	TranslateCalls []TranslateCall

	// ListVoicesCalls counts ListVoices invocations.
	ListVoicesCalls int
}

// Option configures the mock Provider.
type Option func(*Provider, *tts.SettingsConfig)

// WithVoices sets the static voice list.
func WithVoices(voices ...string) Option {
	return func(p *Provider, _ *tts.SettingsConfig) {
		p.Voices = voices
	}
}

// WithCapabilities overrides the declared capability set.
func WithCapabilities(caps ...tts.Capability) Option {
	return func(_ *Provider, cfg *tts.SettingsConfig) {
		cfg.Capabilities = caps
	}
}

// WithLanguages overrides the known-languages list.
func WithLanguages(langs ...string) Option {
	return func(_ *Provider, cfg *tts.SettingsConfig) {
		cfg.KnownLanguages = langs
	}
}

// WithRanges overrides the value ranges.
func WithRanges(r tts.Ranges) Option {
	return func(_ *Provider, cfg *tts.SettingsConfig) {
		cfg.Ranges = r
	}
}

// New creates a mock provider with permissive defaults: all capabilities,
// Google-like ranges, languages {de, en-US, en-GB}, default voice "mock-a".
func New(name string, opts ...Option) *Provider {
	p := &Provider{
		name:   name,
		Voices: []string{"mock-a", "mock-b"},
	}
	cfg := tts.SettingsConfig{
		Capabilities: []tts.Capability{tts.CapPitch, tts.CapVolume, tts.CapSpeakRate, tts.CapGender},
		Ranges: tts.Ranges{
			PitchMin: -20, PitchMax: 20,
			VolumeMin: -96, VolumeMax: 16, MuteFloor: -96,
			RateMin: 0.25, RateMax: 4,
		},
		KnownLanguages: []string{"de", "en-US", "en-GB"},
		DefaultLang:    "de",
		DefaultVoice:   "mock-a",
		LangMatch:      tts.MatchPrefix,
	}
	for _, o := range opts {
		o(p, &cfg)
	}
	p.Settings = tts.NewSettings(cfg)
	return p
}

var _ tts.Provider = (*Provider)(nil)

// Name returns the name given to New.
func (p *Provider) Name() string { return p.name }

// ListVoices returns the scripted voice list or ListVoicesErr.
func (p *Provider) ListVoices(_ context.Context, _ string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ListVoicesCalls++
	if p.ListVoicesErr != nil {
		return nil, p.ListVoicesErr
	}
	return slices.Clone(p.Voices), nil
}

// SetVoice validates name against the scripted voice list.
func (p *Provider) SetVoice(_ context.Context, name string) (bool, []string) {
	p.mu.Lock()
	voices := slices.Clone(p.Voices)
	p.mu.Unlock()
	if !slices.Contains(voices, name) {
		return false, voices
	}
	p.StoreVoice(name)
	return true, nil
}

// Speak records the call and honors the mute floor like a real provider.
func (p *Provider) Speak(ctx context.Context, text string) error {
	return p.SpeakWith(ctx, text, "", "")
}

// SpeakWith records the call and returns SpeakErr.
func (p *Provider) SpeakWith(_ context.Context, text, langOverride string, genderOverride tts.Gender) error {
	if p.Muted() {
		return nil
	}
	if p.Block != nil {
		<-p.Block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SpeakCalls = append(p.SpeakCalls, SpeakCall{
		Text:           text,
		LangOverride:   langOverride,
		GenderOverride: genderOverride,
	})
	return p.SpeakErr
}

// RecordedSpeaks returns a copy of SpeakCalls, safe to read while speaks
// run on other goroutines.
func (p *Provider) RecordedSpeaks() []SpeakCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.SpeakCalls)
}

// Translate records the call and returns TranslateResult.
func (p *Provider) Translate(_ context.Context, src, dst, text string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TranslateCalls = append(p.TranslateCalls, TranslateCall{Src: src, Dst: dst, Text: text})
	return p.TranslateResult
}
