package bot

import (
	"context"
	"log/slog"

	"github.com/chatvox/chatvox/pkg/provider/tts"
)

// ResponseSink sends a message back to the chat channel. Implemented by the
// chat transport; additional sinks (e.g. a Discord mirror) can be composed
// with [FanoutSink].
type ResponseSink interface {
	Send(ctx context.Context, channel, text string) error
}

// FanoutSink sends every message to all wrapped sinks. Errors are logged
// per sink; the first one is returned so callers still see the failure.
type FanoutSink []ResponseSink

// Send delivers text to every sink in order.
func (f FanoutSink) Send(ctx context.Context, channel, text string) error {
	var first error
	for _, s := range f {
		if err := s.Send(ctx, channel, text); err != nil {
			slog.Warn("response sink failed", "err", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// UIObserver receives fire-and-forget notifications about state changes so a
// settings panel can mirror them. Implementations must not block; panics are
// swallowed by the dispatcher so a broken UI cannot take down the listener.
type UIObserver interface {
	OnVolumeChanged(volume float64)
	OnLanguageChanged(lang string)
	OnGenderChanged(gender tts.Gender)
	OnVoiceChanged(voice string)
	OnProviderChanged(name string)
	OnSpeakInputChanged(text string)
}

// NopObserver is a UIObserver that does nothing. Used when the bot runs
// headless.
type NopObserver struct{}

func (NopObserver) OnVolumeChanged(float64)      {}
func (NopObserver) OnLanguageChanged(string)     {}
func (NopObserver) OnGenderChanged(tts.Gender)   {}
func (NopObserver) OnVoiceChanged(string)        {}
func (NopObserver) OnProviderChanged(string)     {}
func (NopObserver) OnSpeakInputChanged(string)   {}

// notify runs fn and swallows any panic so observer bugs never propagate
// back into the dispatch loop.
func notify(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("ui observer panicked", "panic", r)
		}
	}()
	fn()
}
