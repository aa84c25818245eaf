// Package openai provides a TTS provider backed by the OpenAI speech API.
//
// The speech endpoint has no explicit language or gender parameters: the
// model infers the language from the input text and each voice has a fixed
// timbre. The provider therefore advertises only the volume and speaking
// rate capabilities. Voice names are a fixed catalogue, not fetched per
// language.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"slices"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/chatvox/chatvox/pkg/audio"
	"github.com/chatvox/chatvox/pkg/provider/tts"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini-tts"

	defaultLang  = "en"
	defaultVoice = "alloy"
)

// voices is the fixed voice catalogue of the speech API.
var voices = []string{
	"alloy", "ash", "coral", "echo", "fable", "onyx", "nova", "sage", "shimmer",
}

// knownLanguages lists the languages the speech models handle reliably.
// The code is advisory only; synthesis infers the language from the text.
var knownLanguages = []string{
	"en", "de", "es", "fr", "it", "nl", "pl", "pt", "ru", "tr",
	"ja", "ko", "zh", "hi", "sv", "da", "fi", "nb", "cs", "uk",
}

// config holds optional configuration for the provider.
type config struct {
	model      string
	voice      string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option is a functional option for Provider.
type Option func(*config)

// WithModel selects the speech model. Defaults to DefaultModel.
func WithModel(model string) Option {
	return func(c *config) {
		if model != "" {
			c.model = model
		}
	}
}

// WithVoice sets the initial default voice. Defaults to "alloy".
func WithVoice(voice string) Option {
	return func(c *config) {
		if voice != "" {
			c.voice = voice
		}
	}
}

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// Provider implements tts.Provider using the OpenAI speech API.
type Provider struct {
	*tts.Settings

	client oai.Client
	model  string
	out    audio.Output
}

var _ tts.Provider = (*Provider)(nil)

// New constructs an OpenAI provider. apiKey must be non-empty; out receives
// the synthesized audio.
func New(apiKey string, out audio.Output, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: apiKey must not be empty")
	}
	if out == nil {
		return nil, errors.New("openai: audio output must not be nil")
	}

	cfg := &config{model: DefaultModel, voice: defaultVoice}
	for _, o := range opts {
		o(cfg)
	}
	if !slices.Contains(voices, cfg.voice) {
		return nil, fmt.Errorf("openai: unknown voice %q", cfg.voice)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(cfg.httpClient))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.timeout))
	}

	return &Provider{
		Settings: tts.NewSettings(tts.SettingsConfig{
			Capabilities: []tts.Capability{tts.CapVolume, tts.CapSpeakRate},
			Ranges: tts.Ranges{
				VolumeMin: -96, VolumeMax: 16, MuteFloor: -96,
				RateMin: 0.25, RateMax: 4,
			},
			KnownLanguages: knownLanguages,
			DefaultLang:    defaultLang,
			DefaultVoice:   cfg.voice,
			LangMatch:      tts.MatchPrefix,
		}),
		client: oai.NewClient(reqOpts...),
		model:  cfg.model,
		out:    out,
	}, nil
}

// Name returns "openai".
func (p *Provider) Name() string { return "openai" }

// ListVoices returns the fixed voice catalogue. The lang argument is
// ignored since voices are not bound to a language.
func (p *Provider) ListVoices(ctx context.Context, lang string) ([]string, error) {
	return slices.Clone(voices), nil
}

// SetVoice validates name against the voice catalogue.
func (p *Provider) SetVoice(ctx context.Context, name string) (bool, []string) {
	if !slices.Contains(voices, name) {
		return false, slices.Clone(voices)
	}
	p.StoreVoice(name)
	return true, nil
}

// Speak synthesizes text with the current settings and plays the result.
func (p *Provider) Speak(ctx context.Context, text string) error {
	return p.SpeakWith(ctx, text, "", "")
}

// SpeakWith synthesizes text and plays the result. The language and gender
// overrides are accepted for interface compatibility but have no effect on
// this provider. At or below the mute floor the call is a no-op.
func (p *Provider) SpeakWith(ctx context.Context, text, langOverride string, genderOverride tts.Gender) error {
	if p.Muted() {
		return nil
	}

	params := oai.AudioSpeechNewParams{
		Model:          oai.SpeechModel(p.model),
		Input:          text,
		Voice:          oai.AudioSpeechNewParamsVoice(p.Voice()),
		ResponseFormat: oai.AudioSpeechNewParamsResponseFormatWAV,
	}
	if r := p.SpeakingRate(); r != tts.RateDefault {
		params.Speed = oai.Float(r)
	}

	resp, err := p.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return fmt.Errorf("openai: synthesize: %w", err)
	}
	defer resp.Body.Close()

	wav, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("openai: read audio: %w", err)
	}
	clip, err := audio.DecodeWAV(wav)
	if err != nil {
		return fmt.Errorf("openai: %w", err)
	}
	if err := p.out.Play(clip, p.gain()); err != nil {
		return fmt.Errorf("openai: %w", err)
	}
	return nil
}

// gain converts the dB volume setting into a linear playback gain.
func (p *Provider) gain() float64 {
	return math.Pow(10, p.Volume()/20)
}

// Translate reports that this provider cannot translate.
func (p *Provider) Translate(ctx context.Context, src, dst, text string) string {
	return "translation not supported"
}
