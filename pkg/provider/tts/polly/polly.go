// Package polly provides an Amazon Polly backed TTS provider using the AWS
// SDK, with translation via Amazon Translate. It implements the
// tts.Provider interface.
//
// Language matching is exact against the fixed Polly language-code list.
// Volume is a playback gain in percent [0, 400]; 0 is the mute floor.
// Speaking rate is applied through SSML prosody. Pitch is not supported.
package polly

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/aws-sdk-go-v2/service/translate"

	"github.com/chatvox/chatvox/pkg/audio"
	"github.com/chatvox/chatvox/pkg/provider/tts"
)

const (
	defaultLang  = "de-DE"
	defaultVoice = "Marlene"

	// pcmSampleRate is the sample rate requested from Polly. PCM output is
	// raw 16-bit mono.
	pcmSampleRate = 16000
)

// knownLanguages lists the Polly language codes, matched exactly.
var knownLanguages = []string{
	"arb", "cmn-CN", "da-DK", "de-DE", "en-AU", "en-GB", "en-IN", "en-US",
	"es-ES", "es-MX", "es-US", "fr-CA", "fr-FR", "hi-IN", "is-IS", "it-IT",
	"ja-JP", "ko-KR", "nb-NO", "nl-NL", "pl-PL", "pt-BR", "pt-PT", "ro-RO",
	"ru-RU", "sv-SE", "tr-TR",
}

// synthesisAPI is the subset of the Polly client the provider uses.
type synthesisAPI interface {
	SynthesizeSpeech(ctx context.Context, in *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
	DescribeVoices(ctx context.Context, in *polly.DescribeVoicesInput, optFns ...func(*polly.Options)) (*polly.DescribeVoicesOutput, error)
}

// translationAPI is the subset of the Translate client the provider uses.
type translationAPI interface {
	TranslateText(ctx context.Context, in *translate.TranslateTextInput, optFns ...func(*translate.Options)) (*translate.TranslateTextOutput, error)
	ListLanguages(ctx context.Context, in *translate.ListLanguagesInput, optFns ...func(*translate.Options)) (*translate.ListLanguagesOutput, error)
}

// Option is a functional option for configuring the Provider.
type Option func(*Provider)

// WithClients injects pre-built service clients, mainly for tests. When
// set, New skips loading the AWS configuration chain.
func WithClients(synth synthesisAPI, trans translationAPI) Option {
	return func(p *Provider) {
		p.client = synth
		p.translator = trans
	}
}

// Provider implements tts.Provider backed by Amazon Polly.
type Provider struct {
	*tts.Settings

	client     synthesisAPI
	translator translationAPI
	out        audio.Output
}

var _ tts.Provider = (*Provider)(nil)

// New creates a Polly provider for the given region. Credentials come from
// the standard AWS environment/shared-config chain.
func New(ctx context.Context, region string, out audio.Output, opts ...Option) (*Provider, error) {
	if out == nil {
		return nil, errors.New("polly: audio output must not be nil")
	}
	p := &Provider{
		Settings: tts.NewSettings(tts.SettingsConfig{
			Capabilities: []tts.Capability{
				tts.CapVolume, tts.CapSpeakRate, tts.CapGender,
			},
			Ranges: tts.Ranges{
				VolumeMin: 0, VolumeMax: 400, MuteFloor: 0,
				RateMin: 0.25, RateMax: 4,
			},
			KnownLanguages: knownLanguages,
			DefaultLang:    defaultLang,
			DefaultVoice:   defaultVoice,
			DefaultGender:  tts.GenderNeutral,
			DefaultVolume:  100,
			LangMatch:      tts.MatchExact,
		}),
		out: out,
	}
	for _, o := range opts {
		o(p)
	}
	if p.client == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return nil, fmt.Errorf("polly: load aws config: %w", err)
		}
		p.client = polly.NewFromConfig(cfg)
		p.translator = translate.NewFromConfig(cfg)
	}
	return p, nil
}

// Name returns "polly".
func (p *Provider) Name() string { return "polly" }

// ListVoices returns the voice IDs for lang, paginating through
// DescribeVoices. When a gender other than neutral is set, the list is
// narrowed to matching voices.
func (p *Provider) ListVoices(ctx context.Context, lang string) ([]string, error) {
	in := &polly.DescribeVoicesInput{}
	if lang != "" {
		in.LanguageCode = pollytypes.LanguageCode(lang)
	}

	gender := p.Gender()
	var names []string
	for {
		out, err := p.client.DescribeVoices(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("polly: describe voices: %w", err)
		}
		for _, v := range out.Voices {
			if gender != tts.GenderNeutral && !genderMatches(v.Gender, gender) {
				continue
			}
			names = append(names, string(v.Id))
		}
		if out.NextToken == nil {
			break
		}
		in.NextToken = out.NextToken
	}
	return names, nil
}

func genderMatches(g pollytypes.Gender, want tts.Gender) bool {
	switch want {
	case tts.GenderFemale:
		return g == pollytypes.GenderFemale
	case tts.GenderMale:
		return g == pollytypes.GenderMale
	}
	return true
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

// Speak synthesizes text with the current settings and plays the result.
func (p *Provider) Speak(ctx context.Context, text string) error {
	return p.SpeakWith(ctx, text, "", "")
}

// SpeakWith synthesizes text with an optional language override. Polly has
// no per-request gender control; the override only narrows voice listing
// and is ignored here. At or below the mute floor the call is a no-op.
func (p *Provider) SpeakWith(ctx context.Context, text, langOverride string, _ tts.Gender) error {
	if p.Muted() {
		return nil
	}

	lang := p.Language()
	if langOverride != "" {
		lang = langOverride
	}

	in := &polly.SynthesizeSpeechInput{
		OutputFormat: pollytypes.OutputFormatPcm,
		SampleRate:   aws.String(fmt.Sprint(pcmSampleRate)),
		VoiceId:      pollytypes.VoiceId(p.Voice()),
		LanguageCode: pollytypes.LanguageCode(lang),
		Text:         aws.String(text),
		TextType:     pollytypes.TextTypeText,
	}
	// Speaking rate goes through SSML prosody; 100% is normal speed.
	if rate := p.SpeakingRate(); rate != tts.RateDefault {
		in.Text = aws.String(fmt.Sprintf(`<speak><prosody rate="%d%%">%s</prosody></speak>`,
			int(rate*100), html.EscapeString(text)))
		in.TextType = pollytypes.TextTypeSsml
	}

	out, err := p.client.SynthesizeSpeech(ctx, in)
	if err != nil {
		return fmt.Errorf("polly: synthesize: %w", err)
	}
	defer out.AudioStream.Close()
	pcm, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return fmt.Errorf("polly: read audio stream: %w", err)
	}

	clip := audio.Clip{Data: pcm, SampleRate: pcmSampleRate, Channels: 1}
	if err := p.out.Play(clip, p.gain()); err != nil {
		return fmt.Errorf("polly: %w", err)
	}
	return nil
}

// gain converts the percent volume setting into a linear playback gain.
func (p *Provider) gain() float64 {
	return p.Volume() / 100
}

// Translate translates text from src to dst via Amazon Translate.
// Unsupported codes produce a "<code> not supported" message string;
// transport failures produce "".
func (p *Provider) Translate(ctx context.Context, src, dst, text string) string {
	langs, err := p.translator.ListLanguages(ctx, &translate.ListLanguagesInput{})
	if err != nil {
		slog.Error("polly: list translation languages failed", "err", err)
		return ""
	}
	supported := make([]string, 0, len(langs.Languages))
	for _, l := range langs.Languages {
		supported = append(supported, aws.ToString(l.LanguageCode))
	}
	if !slices.Contains(supported, src) {
		return src + " not supported"
	}
	if !slices.Contains(supported, dst) {
		return dst + " not supported"
	}

	out, err := p.translator.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String(src),
		TargetLanguageCode: aws.String(dst),
	})
	if err != nil {
		slog.Error("polly: translate failed", "err", err)
		return ""
	}
	return aws.ToString(out.TranslatedText)
}
