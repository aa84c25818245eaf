// Package google provides a Google Cloud backed TTS provider using the
// Text-to-Speech and Translation REST APIs. It implements the tts.Provider
// interface with all four capabilities.
//
// Language matching is by prefix: "en" selects the first known "en-*" code.
// Volume is a dB gain in [-96, +16] applied at playback time; -96 is the
// mute floor.
package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/chatvox/chatvox/pkg/audio"
	"github.com/chatvox/chatvox/pkg/provider/tts"
)

const (
	synthesizeEndpoint = "https://texttospeech.googleapis.com/v1/text:synthesize"
	voicesEndpoint     = "https://texttospeech.googleapis.com/v1/voices"
	translateEndpoint  = "https://translation.googleapis.com/language/translate/v2"
	languagesEndpoint  = "https://translation.googleapis.com/language/translate/v2/languages"

	defaultLang  = "de"
	defaultVoice = "de-DE-Wavenet-A"
)

// knownLanguages lists the language codes the provider accepts, matched by
// prefix against user input.
var knownLanguages = []string{
	"de", "en-GB", "es", "fr", "it", "nl", "ru", "tr", "da", "cs", "el",
	"en-AU", "en-IN", "en-US", "fi", "fil", "hi", "hu", "id", "ja", "ko",
	"nb", "pl", "pt", "sk", "sv", "uk", "vi",
}

// Option is a functional option for configuring the Provider.
type Option func(*Provider)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// WithEndpoints overrides the API base URLs, mainly for tests against a
// local server. Empty strings keep the production endpoints.
func WithEndpoints(synthesize, voices, translate, languages string) Option {
	return func(p *Provider) {
		if synthesize != "" {
			p.synthesizeURL = synthesize
		}
		if voices != "" {
			p.voicesURL = voices
		}
		if translate != "" {
			p.translateURL = translate
		}
		if languages != "" {
			p.languagesURL = languages
		}
	}
}

// Provider implements tts.Provider backed by the Google Cloud REST APIs.
type Provider struct {
	*tts.Settings

	apiKey     string
	httpClient *http.Client
	out        audio.Output

	synthesizeURL string
	voicesURL     string
	translateURL  string
	languagesURL  string
}

var _ tts.Provider = (*Provider)(nil)

// New creates a Google provider. apiKey must be non-empty; out receives the
// synthesized audio.
func New(apiKey string, out audio.Output, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("google: apiKey must not be empty")
	}
	if out == nil {
		return nil, errors.New("google: audio output must not be nil")
	}
	p := &Provider{
		Settings: tts.NewSettings(tts.SettingsConfig{
			Capabilities: []tts.Capability{
				tts.CapPitch, tts.CapVolume, tts.CapSpeakRate, tts.CapGender,
			},
			Ranges: tts.Ranges{
				PitchMin: -20, PitchMax: 20,
				VolumeMin: -96, VolumeMax: 16, MuteFloor: -96,
				RateMin: 0.25, RateMax: 4,
			},
			KnownLanguages: knownLanguages,
			DefaultLang:    defaultLang,
			DefaultVoice:   defaultVoice,
			DefaultGender:  tts.GenderMale,
			DefaultVolume:  -1,
			LangMatch:      tts.MatchPrefix,
		}),
		apiKey:        apiKey,
		httpClient:    &http.Client{},
		out:           out,
		synthesizeURL: synthesizeEndpoint,
		voicesURL:     voicesEndpoint,
		translateURL:  translateEndpoint,
		languagesURL:  languagesEndpoint,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Name returns "google".
func (p *Provider) Name() string { return "google" }

// ---- voices ----

// voicesResponse is the body of GET /v1/voices.
type voicesResponse struct {
	Voices []struct {
		Name          string   `json:"name"`
		LanguageCodes []string `json:"languageCodes"`
		SsmlGender    string   `json:"ssmlGender"`
	} `json:"voices"`
}

// ListVoices returns the voice names whose name carries the lang prefix.
// An empty lang returns all voices.
func (p *Provider) ListVoices(ctx context.Context, lang string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.voicesURL+"?key="+url.QueryEscape(p.apiKey), nil)
	if err != nil {
		return nil, fmt.Errorf("google: list voices: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: list voices: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google: list voices: unexpected status %d", resp.StatusCode)
	}

	var vr voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("google: list voices decode: %w", err)
	}

	names := make([]string, 0, len(vr.Voices))
	for _, v := range vr.Voices {
		if lang == "" || strings.HasPrefix(v.Name, lang) {
			names = append(names, v.Name)
		}
	}
	return names, nil
}

// SetVoice validates name against the voices for the current language.
func (p *Provider) SetVoice(ctx context.Context, name string) (bool, []string) {
	voices, err := p.ListVoices(ctx, p.Language())
	if err != nil {
		return false, nil
	}
	if !slices.Contains(voices, name) {
		return false, voices
	}
	p.StoreVoice(name)
	return true, nil
}

// ---- synthesis ----

// synthesizeRequest is the body of POST /v1/text:synthesize.
type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name,omitempty"`
		SsmlGender   string `json:"ssmlGender,omitempty"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		SpeakingRate  float64 `json:"speakingRate,omitempty"`
		Pitch         float64 `json:"pitch,omitempty"`
	} `json:"audioConfig"`
}

// synthesizeResponse is the body returned by text:synthesize.
type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Speak synthesizes text with the current settings and plays the result.
func (p *Provider) Speak(ctx context.Context, text string) error {
	return p.SpeakWith(ctx, text, "", "")
}

// SpeakWith synthesizes text with optional language and gender overrides.
// At or below the mute floor the call is a no-op.
func (p *Provider) SpeakWith(ctx context.Context, text, langOverride string, genderOverride tts.Gender) error {
	if p.Muted() {
		return nil
	}

	lang := p.Language()
	if langOverride != "" {
		lang = langOverride
	}
	gender := p.Gender()
	if genderOverride != "" {
		gender = genderOverride
	}

	var sr synthesizeRequest
	sr.Input.Text = text
	sr.Voice.LanguageCode = lang
	sr.Voice.Name = p.Voice()
	sr.Voice.SsmlGender = strings.ToUpper(string(gender))
	sr.AudioConfig.AudioEncoding = "LINEAR16"
	sr.AudioConfig.SpeakingRate = p.SpeakingRate()
	sr.AudioConfig.Pitch = float64(p.Pitch())

	body, err := json.Marshal(sr)
	if err != nil {
		return fmt.Errorf("google: marshal synthesize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.synthesizeURL+"?key="+url.QueryEscape(p.apiKey), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("google: synthesize: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("google: synthesize: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("google: synthesize: status %d: %s", resp.StatusCode, msg)
	}

	var out synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("google: synthesize decode: %w", err)
	}
	wav, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return fmt.Errorf("google: decode audio content: %w", err)
	}

	// LINEAR16 responses come wrapped in a WAV container.
	clip, err := audio.DecodeWAV(wav)
	if err != nil {
		return fmt.Errorf("google: %w", err)
	}
	if err := p.out.Play(clip, p.gain()); err != nil {
		return fmt.Errorf("google: %w", err)
	}
	return nil
}

// gain converts the dB volume setting into a linear playback gain.
func (p *Provider) gain() float64 {
	return math.Pow(10, p.Volume()/20)
}

// ---- translation ----

type languagesResponse struct {
	Data struct {
		Languages []struct {
			Language string `json:"language"`
		} `json:"languages"`
	} `json:"data"`
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// Translate translates text from src to dst via the Translation v2 API.
// Unsupported codes produce a "<code> not supported" message string;
// transport failures produce "".
func (p *Provider) Translate(ctx context.Context, src, dst, text string) string {
	supported, err := p.supportedTranslationLanguages(ctx)
	if err != nil {
		return ""
	}
	if !slices.Contains(supported, src) {
		return src + " not supported"
	}
	if !slices.Contains(supported, dst) {
		return dst + " not supported"
	}

	form := url.Values{
		"q":      {text},
		"source": {src},
		"target": {dst},
		"format": {"text"},
		"key":    {p.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.translateURL, strings.NewReader(form.Encode()))
	if err != nil {
		return ""
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var tr translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return ""
	}
	if len(tr.Data.Translations) == 0 {
		return ""
	}
	return tr.Data.Translations[0].TranslatedText
}

func (p *Provider) supportedTranslationLanguages(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.languagesURL+"?key="+url.QueryEscape(p.apiKey), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google: list languages: unexpected status %d", resp.StatusCode)
	}

	var lr languagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(lr.Data.Languages))
	for _, l := range lr.Data.Languages {
		codes = append(codes, l.Language)
	}
	return codes, nil
}
