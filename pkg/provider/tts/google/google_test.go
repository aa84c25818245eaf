package google

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	audiomock "github.com/chatvox/chatvox/pkg/audio/mock"
)

// wavBytes builds a minimal 16-bit mono PCM WAV file around the samples.
func wavBytes(t *testing.T, sampleRate int, samples []int16) []byte {
	t.Helper()
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}

	var buf []byte
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(data)))
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, 1) // mono
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate*2))
	buf = binary.LittleEndian.AppendUint16(buf, 2)
	buf = binary.LittleEndian.AppendUint16(buf, 16)
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(data)))
	buf = append(buf, data...)
	return buf
}

func TestListVoices_FiltersByLanguagePrefix(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "k" {
			t.Errorf("missing api key in %s", r.URL)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"voices": []map[string]any{
				{"name": "de-DE-Wavenet-A", "languageCodes": []string{"de-DE"}},
				{"name": "de-DE-Wavenet-B", "languageCodes": []string{"de-DE"}},
				{"name": "en-US-Wavenet-C", "languageCodes": []string{"en-US"}},
			},
		})
	}))
	defer srv.Close()

	p, err := New("k", &audiomock.Output{}, WithEndpoints("", srv.URL, "", ""))
	if err != nil {
		t.Fatal(err)
	}

	voices, err := p.ListVoices(context.Background(), "de")
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	if len(voices) != 2 {
		t.Errorf("voices = %v, want the two de matches", voices)
	}

	all, err := p.ListVoices(context.Background(), "")
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all voices = %v, want 3", all)
	}
}

func TestSpeak_MutedSkipsNetwork(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "should not be called", http.StatusInternalServerError)
	}))
	defer srv.Close()

	out := &audiomock.Output{}
	p, err := New("k", out, WithEndpoints(srv.URL, "", "", ""))
	if err != nil {
		t.Fatal(err)
	}
	if !p.SetVolume(-96) {
		t.Fatal("could not set volume to the mute floor")
	}

	if err := p.Speak(context.Background(), "hello"); err != nil {
		t.Fatalf("muted Speak: %v", err)
	}
	if got := hits.Load(); got != 0 {
		t.Errorf("synthesize endpoint hit %d times while muted", got)
	}
	if calls := out.Calls(); len(calls) != 0 {
		t.Errorf("audio played while muted: %v", calls)
	}
}

func TestSpeak_SynthesizesAndPlaysWithGain(t *testing.T) {
	t.Parallel()

	wav := wavBytes(t, 24000, []int16{100, -100, 200})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req synthesizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Input.Text != "hallo" {
			t.Errorf("text = %q", req.Input.Text)
		}
		if req.Voice.LanguageCode != "de" || req.Voice.SsmlGender != "MALE" {
			t.Errorf("voice = %+v", req.Voice)
		}
		if req.AudioConfig.AudioEncoding != "LINEAR16" {
			t.Errorf("encoding = %q", req.AudioConfig.AudioEncoding)
		}
		_ = json.NewEncoder(w).Encode(synthesizeResponse{
			AudioContent: base64.StdEncoding.EncodeToString(wav),
		})
	}))
	defer srv.Close()

	out := &audiomock.Output{}
	p, err := New("k", out, WithEndpoints(srv.URL, "", "", ""))
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Speak(context.Background(), "hallo"); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	calls := out.Calls()
	if len(calls) != 1 {
		t.Fatalf("play calls = %d, want 1", len(calls))
	}
	if calls[0].Clip.SampleRate != 24000 || calls[0].Clip.Channels != 1 {
		t.Errorf("clip format = %d/%d", calls[0].Clip.SampleRate, calls[0].Clip.Channels)
	}
	// Default volume is -1 dB.
	wantGain := math.Pow(10, -1.0/20)
	if diff := math.Abs(calls[0].Gain - wantGain); diff > 1e-9 {
		t.Errorf("gain = %v, want %v", calls[0].Gain, wantGain)
	}
}

func TestSpeak_ErrorStatusSurfaces(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	p, err := New("k", &audiomock.Output{}, WithEndpoints(srv.URL, "", "", ""))
	if err != nil {
		t.Fatal(err)
	}
	err = p.Speak(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("err = %v, want the HTTP status", err)
	}
}

func TestTranslate_UnsupportedLanguage(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/languages", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"languages":[{"language":"de"},{"language":"en"}]}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := New("k", &audiomock.Output{}, WithEndpoints("", "", "", srv.URL+"/languages"))
	if err != nil {
		t.Fatal(err)
	}

	if got := p.Translate(context.Background(), "xx", "de", "hi"); got != "xx not supported" {
		t.Errorf("Translate = %q", got)
	}
	if got := p.Translate(context.Background(), "de", "yy", "hi"); got != "yy not supported" {
		t.Errorf("Translate = %q", got)
	}
}

func TestTranslate_Roundtrip(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/languages", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"languages":[{"language":"de"},{"language":"en"}]}}`))
	})
	mux.HandleFunc("/translate", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.Form.Get("q") != "hello world" || r.Form.Get("source") != "en" || r.Form.Get("target") != "de" {
			t.Errorf("form = %v", r.Form)
		}
		_, _ = w.Write([]byte(`{"data":{"translations":[{"translatedText":"hallo welt"}]}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := New("k", &audiomock.Output{},
		WithEndpoints("", "", srv.URL+"/translate", srv.URL+"/languages"))
	if err != nil {
		t.Fatal(err)
	}

	if got := p.Translate(context.Background(), "en", "de", "hello world"); got != "hallo welt" {
		t.Errorf("Translate = %q", got)
	}
}

func TestTranslate_TransportFailureReturnsEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	srv.Close() // refuse connections

	p, err := New("k", &audiomock.Output{}, WithEndpoints("", "", "", srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Translate(context.Background(), "en", "de", "hi"); got != "" {
		t.Errorf("Translate = %q, want empty on transport failure", got)
	}
}
