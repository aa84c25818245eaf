package polly

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/aws-sdk-go-v2/service/translate"
	translatetypes "github.com/aws/aws-sdk-go-v2/service/translate/types"

	audiomock "github.com/chatvox/chatvox/pkg/audio/mock"
)

// fakeSynth scripts the Polly client.
type fakeSynth struct {
	voices []pollytypes.Voice
	pcm    []byte

	synthCalls []*polly.SynthesizeSpeechInput
	synthErr   error
}

func (f *fakeSynth) SynthesizeSpeech(_ context.Context, in *polly.SynthesizeSpeechInput, _ ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error) {
	f.synthCalls = append(f.synthCalls, in)
	if f.synthErr != nil {
		return nil, f.synthErr
	}
	return &polly.SynthesizeSpeechOutput{
		AudioStream: io.NopCloser(strings.NewReader(string(f.pcm))),
	}, nil
}

func (f *fakeSynth) DescribeVoices(_ context.Context, in *polly.DescribeVoicesInput, _ ...func(*polly.Options)) (*polly.DescribeVoicesOutput, error) {
	var matched []pollytypes.Voice
	for _, v := range f.voices {
		if in.LanguageCode == "" || v.LanguageCode == in.LanguageCode {
			matched = append(matched, v)
		}
	}
	return &polly.DescribeVoicesOutput{Voices: matched}, nil
}

// fakeTranslate scripts the Translate client.
type fakeTranslate struct {
	languages []string
	result    string
	err       error
}

func (f *fakeTranslate) TranslateText(_ context.Context, in *translate.TranslateTextInput, _ ...func(*translate.Options)) (*translate.TranslateTextOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &translate.TranslateTextOutput{TranslatedText: aws.String(f.result)}, nil
}

func (f *fakeTranslate) ListLanguages(_ context.Context, _ *translate.ListLanguagesInput, _ ...func(*translate.Options)) (*translate.ListLanguagesOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	langs := make([]translatetypes.Language, 0, len(f.languages))
	for _, code := range f.languages {
		langs = append(langs, translatetypes.Language{LanguageCode: aws.String(code)})
	}
	return &translate.ListLanguagesOutput{Languages: langs}, nil
}

func newTestProvider(t *testing.T, synth *fakeSynth, trans *fakeTranslate) (*Provider, *audiomock.Output) {
	t.Helper()
	out := &audiomock.Output{}
	p, err := New(context.Background(), "eu-west-1", out, WithClients(synth, trans))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, out
}

func TestListVoices_FiltersByLanguageAndGender(t *testing.T) {
	t.Parallel()

	synth := &fakeSynth{voices: []pollytypes.Voice{
		{Id: "Marlene", LanguageCode: "de-DE", Gender: pollytypes.GenderFemale},
		{Id: "Hans", LanguageCode: "de-DE", Gender: pollytypes.GenderMale},
		{Id: "Joanna", LanguageCode: "en-US", Gender: pollytypes.GenderFemale},
	}}
	p, _ := newTestProvider(t, synth, &fakeTranslate{})

	voices, err := p.ListVoices(context.Background(), "de-DE")
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	if len(voices) != 2 {
		t.Errorf("voices = %v, want both de-DE entries", voices)
	}

	if !p.SetGender("female") {
		t.Fatal("SetGender failed")
	}
	voices, err = p.ListVoices(context.Background(), "de-DE")
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	if len(voices) != 1 || voices[0] != "Marlene" {
		t.Errorf("voices = %v, want only Marlene", voices)
	}
}

func TestSpeak_PlaysRawPCMWithPercentGain(t *testing.T) {
	t.Parallel()

	synth := &fakeSynth{pcm: []byte{1, 0, 2, 0}}
	p, out := newTestProvider(t, synth, &fakeTranslate{})

	if !p.SetVolume(200) {
		t.Fatal("SetVolume failed")
	}
	if err := p.Speak(context.Background(), "hallo"); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	if len(synth.synthCalls) != 1 {
		t.Fatalf("synth calls = %d, want 1", len(synth.synthCalls))
	}
	in := synth.synthCalls[0]
	if in.TextType != pollytypes.TextTypeText || aws.ToString(in.Text) != "hallo" {
		t.Errorf("request text = %q type %q", aws.ToString(in.Text), in.TextType)
	}
	if in.OutputFormat != pollytypes.OutputFormatPcm {
		t.Errorf("output format = %q", in.OutputFormat)
	}

	calls := out.Calls()
	if len(calls) != 1 {
		t.Fatalf("play calls = %d, want 1", len(calls))
	}
	if calls[0].Clip.SampleRate != pcmSampleRate || calls[0].Clip.Channels != 1 {
		t.Errorf("clip format = %d/%d", calls[0].Clip.SampleRate, calls[0].Clip.Channels)
	}
	if calls[0].Gain != 2 {
		t.Errorf("gain = %v, want 2 for 200%%", calls[0].Gain)
	}
}

func TestSpeak_RateGoesThroughSSML(t *testing.T) {
	t.Parallel()

	synth := &fakeSynth{pcm: []byte{0, 0}}
	p, _ := newTestProvider(t, synth, &fakeTranslate{})

	if !p.SetSpeakingRate(1.5) {
		t.Fatal("SetSpeakingRate failed")
	}
	if err := p.Speak(context.Background(), "a < b"); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	in := synth.synthCalls[0]
	if in.TextType != pollytypes.TextTypeSsml {
		t.Fatalf("text type = %q, want ssml", in.TextType)
	}
	text := aws.ToString(in.Text)
	if !strings.Contains(text, `rate="150%"`) {
		t.Errorf("ssml = %q, want prosody rate 150%%", text)
	}
	if !strings.Contains(text, "a &lt; b") {
		t.Errorf("ssml = %q, want escaped text", text)
	}
}

func TestSpeak_MutedIsNoop(t *testing.T) {
	t.Parallel()

	synth := &fakeSynth{pcm: []byte{0, 0}}
	p, out := newTestProvider(t, synth, &fakeTranslate{})

	if !p.SetVolume(0) {
		t.Fatal("SetVolume failed")
	}
	if err := p.Speak(context.Background(), "hello"); err != nil {
		t.Fatalf("muted Speak: %v", err)
	}
	if len(synth.synthCalls) != 0 {
		t.Errorf("synthesize called while muted")
	}
	if len(out.Calls()) != 0 {
		t.Errorf("audio played while muted")
	}
}

func TestSetVoice_UnknownReturnsList(t *testing.T) {
	t.Parallel()

	synth := &fakeSynth{voices: []pollytypes.Voice{
		{Id: "Marlene", LanguageCode: "de-DE", Gender: pollytypes.GenderFemale},
	}}
	p, _ := newTestProvider(t, synth, &fakeTranslate{})

	ok, supported := p.SetVoice(context.Background(), "Joanna")
	if ok {
		t.Fatal("expected failure for an unknown voice")
	}
	if len(supported) != 1 || supported[0] != "Marlene" {
		t.Errorf("supported = %v", supported)
	}
	if got := p.Voice(); got != "Marlene" {
		t.Errorf("voice = %q, want unchanged default", got)
	}
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	trans := &fakeTranslate{languages: []string{"de", "en"}, result: "hallo"}
	p, _ := newTestProvider(t, &fakeSynth{}, trans)
	ctx := context.Background()

	if got := p.Translate(ctx, "en", "de", "hello"); got != "hallo" {
		t.Errorf("Translate = %q", got)
	}
	if got := p.Translate(ctx, "xx", "de", "hello"); got != "xx not supported" {
		t.Errorf("Translate = %q", got)
	}

	trans.err = errors.New("throttled")
	if got := p.Translate(ctx, "en", "de", "hello"); got != "" {
		t.Errorf("Translate = %q, want empty on transport failure", got)
	}
}
