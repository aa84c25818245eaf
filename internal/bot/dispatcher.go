// Package bot implements the chat command engine: parsing inbound lines,
// dispatching commands against the active TTS provider, and reporting
// outcomes back to the channel.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/chatvox/chatvox/internal/media"
	"github.com/chatvox/chatvox/internal/observe"
	"github.com/chatvox/chatvox/pkg/provider/tts"
)

// DefaultPlayWait bounds how long a speak request waits for the playback
// slot before it is dropped.
const DefaultPlayWait = 15 * time.Second

// Config wires a [Bot] together. State, Registry, and Sink are required;
// everything else has a working default.
type Config struct {
	State    *State
	Registry *tts.Registry
	Sink     ResponseSink

	// UI receives state-change notifications. Defaults to [NopObserver].
	UI UIObserver

	// Media is the media-file fallback trigger. Nil disables the media
	// pass regardless of the state toggle.
	Media *media.Trigger

	// Metrics defaults to [observe.DefaultMetrics].
	Metrics *observe.Metrics

	// PlayWait bounds the wait for the playback slot. Defaults to
	// [DefaultPlayWait].
	PlayWait time.Duration
}

// Bot dispatches chat commands. Dispatch itself is stateless between
// messages; all session state lives in [State] and the providers.
type Bot struct {
	state    *State
	registry *tts.Registry
	sink     ResponseSink
	ui       UIObserver
	media    *media.Trigger
	metrics  *observe.Metrics

	// playSlot enforces at most one concurrent synthesis/playback.
	playSlot *semaphore.Weighted
	playWait time.Duration
}

// New creates a Bot from cfg.
func New(cfg Config) *Bot {
	if cfg.UI == nil {
		cfg.UI = NopObserver{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.DefaultMetrics()
	}
	if cfg.PlayWait <= 0 {
		cfg.PlayWait = DefaultPlayWait
	}
	return &Bot{
		state:    cfg.State,
		registry: cfg.Registry,
		sink:     cfg.Sink,
		ui:       cfg.UI,
		media:    cfg.Media,
		metrics:  cfg.Metrics,
		playSlot: semaphore.NewWeighted(1),
		playWait: cfg.PlayWait,
	}
}

// handler executes one command and returns a status label for metrics.
type handler func(b *Bot, ctx context.Context, arg string) (status string)

// commands maps a normalized token to its handler. Tokens are unique, so at
// most one handler runs per message.
var commands = map[string]handler{
	"!vol":       (*Bot).handleVolume,
	"!lang":      (*Bot).handleLanguage,
	"!gender":    (*Bot).handleGender,
	"!voice":     (*Bot).handleVoice,
	"!tts":       (*Bot).handleProvider,
	"!speak":     (*Bot).handleSpeak,
	"!s":         (*Bot).handleSpeak,
	"!pitch":     (*Bot).handlePitch,
	"!speakrate": (*Bot).handleSpeakRate,
	"!translate": (*Bot).handleTranslate,
}

// HandleMessage processes one inbound chat line. It never panics and never
// returns an error: every failure is either reported to the channel or
// logged, so a single bad command cannot take down the listen loop.
func (b *Bot) HandleMessage(ctx context.Context, sender, raw string) {
	if b.state.IsIgnored(sender) {
		return
	}

	token, arg := Parse(raw)

	if h, ok := commands[token]; ok {
		start := time.Now()
		status := h(b, ctx, arg)
		b.metrics.RecordCommand(ctx, token, status, time.Since(start).Seconds())
	}

	// The media pass runs after every message, matched command or not. A
	// command token and a media basename share the namespace, so both can
	// fire for the same input. Observed behavior, kept as is.
	if b.media != nil && b.state.MediaEnabled() &&
		strings.HasPrefix(token, Sigil) && len(token) > 1 {
		b.media.Fire(token)
	}
}

// reply sends text to the bot's channel. Transport errors are logged, not
// propagated.
func (b *Bot) reply(ctx context.Context, text string) {
	if err := b.sink.Send(ctx, b.state.Channel(), text); err != nil {
		slog.Error("failed to send chat response", "err", err)
	}
}

// active returns the current provider, replying with a degraded-mode
// message when there is none.
func (b *Bot) active(ctx context.Context) (tts.Provider, bool) {
	p := b.state.Active()
	if p == nil {
		b.reply(ctx, "No TTS provider is available.")
		return nil, false
	}
	return p, true
}

func (b *Bot) handleVolume(ctx context.Context, arg string) string {
	p, ok := b.active(ctx)
	if !ok {
		return "no_provider"
	}
	if !p.Supports(tts.CapVolume) {
		b.reply(ctx, fmt.Sprintf("Volume is not supported by %s.", p.Name()))
		return "unsupported"
	}
	if arg == "" {
		b.reply(ctx, fmt.Sprintf("Current volume: %s", formatFloat(p.Volume())))
		return "report"
	}
	r := p.Ranges()
	rangeMsg := fmt.Sprintf("Volume must be a number between %s and %s.",
		formatFloat(r.VolumeMin), formatFloat(r.VolumeMax))

	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		b.reply(ctx, rangeMsg)
		return "rejected"
	}
	if !p.SetVolume(v) {
		b.reply(ctx, rangeMsg)
		return "rejected"
	}
	notify(func() { b.ui.OnVolumeChanged(p.Volume()) })
	b.reply(ctx, fmt.Sprintf("Volume set to %s.", formatFloat(p.Volume())))
	return "ok"
}

func (b *Bot) handleLanguage(ctx context.Context, arg string) string {
	p, ok := b.active(ctx)
	if !ok {
		return "no_provider"
	}
	if arg == "" {
		b.reply(ctx, fmt.Sprintf("Current language: %s", p.Language()))
		return "report"
	}
	if !p.SetLanguage(arg) {
		b.reply(ctx, fmt.Sprintf("Unknown language %q. Known languages: %s",
			arg, strings.Join(p.KnownLanguages(), ", ")))
		return "rejected"
	}
	notify(func() { b.ui.OnLanguageChanged(p.Language()) })
	b.reply(ctx, fmt.Sprintf("Language set to %s.", p.Language()))
	return "ok"
}

func (b *Bot) handleGender(ctx context.Context, arg string) string {
	p, ok := b.active(ctx)
	if !ok {
		return "no_provider"
	}
	if !p.Supports(tts.CapGender) {
		b.reply(ctx, fmt.Sprintf("Gender is not supported by %s.", p.Name()))
		return "unsupported"
	}
	if arg == "" {
		b.reply(ctx, fmt.Sprintf("Current gender: %s", p.Gender()))
		return "report"
	}
	if !p.SetGender(arg) {
		b.reply(ctx, "Gender must be one of: male, female, neutral.")
		return "rejected"
	}
	notify(func() { b.ui.OnGenderChanged(p.Gender()) })
	b.reply(ctx, fmt.Sprintf("Gender set to %s.", p.Gender()))
	return "ok"
}

func (b *Bot) handleVoice(ctx context.Context, arg string) string {
	p, ok := b.active(ctx)
	if !ok {
		return "no_provider"
	}
	if arg == "" {
		b.reply(ctx, fmt.Sprintf("Current voice: %s", p.Voice()))
		return "report"
	}
	ok, supported := p.SetVoice(ctx, arg)
	if !ok {
		msg := fmt.Sprintf("Unknown voice %q.", arg)
		if hint, found := closest(arg, supported); found {
			msg += fmt.Sprintf(" Did you mean %q?", hint)
		}
		if len(supported) > 0 {
			msg += fmt.Sprintf(" Voices for %s: %s",
				p.Language(), strings.Join(supported, ", "))
		}
		b.reply(ctx, msg)
		return "rejected"
	}
	notify(func() { b.ui.OnVoiceChanged(p.Voice()) })
	b.reply(ctx, fmt.Sprintf("Voice set to %s.", p.Voice()))
	return "ok"
}

func (b *Bot) handleProvider(ctx context.Context, arg string) string {
	names := b.registry.Names()
	if arg == "" {
		p := b.state.Active()
		if p == nil {
			b.reply(ctx, "No TTS provider is active.")
			return "no_provider"
		}
		b.reply(ctx, fmt.Sprintf("Active provider: %s. Available: %s",
			p.Name(), strings.Join(names, ", ")))
		return "report"
	}
	next, err := b.registry.FindByName(arg)
	if err != nil {
		msg := fmt.Sprintf("Unknown provider %q.", arg)
		if hint, found := closest(arg, names); found {
			msg += fmt.Sprintf(" Did you mean %q?", hint)
		}
		if len(names) > 0 {
			msg += fmt.Sprintf(" Available: %s", strings.Join(names, ", "))
		}
		b.reply(ctx, msg)
		return "rejected"
	}
	next.SetDefault()
	b.state.SetActive(next)
	notify(func() { b.ui.OnProviderChanged(next.Name()) })
	b.reply(ctx, fmt.Sprintf("Provider set to %s.", next.Name()))
	return "ok"
}

func (b *Bot) handleSpeak(ctx context.Context, arg string) string {
	p, ok := b.active(ctx)
	if !ok {
		return "no_provider"
	}
	if arg == "" {
		return "report"
	}
	notify(func() { b.ui.OnSpeakInputChanged(arg) })
	b.speak(ctx, p, arg)
	return "ok"
}

// speak runs synthesis and playback off the dispatch goroutine so the
// transport keeps answering keepalives during long utterances. The single
// playback slot guarantees clips never overlap; a request that cannot get
// the slot within playWait is dropped with a warning.
//
// The provider is captured here, so an in-flight speak finishes on the old
// provider even if !tts swaps the active one meanwhile.
func (b *Bot) speak(ctx context.Context, p tts.Provider, text string) {
	// Detach from the per-message context: playback outlives dispatch.
	bg := context.WithoutCancel(ctx)
	go func() {
		acquireCtx, cancel := context.WithTimeout(bg, b.playWait)
		defer cancel()
		if err := b.playSlot.Acquire(acquireCtx, 1); err != nil {
			slog.Warn("playback slot busy, dropping speak request",
				"provider", p.Name(), "wait", b.playWait)
			b.metrics.PlaybackDropped.Add(bg, 1)
			return
		}
		defer b.playSlot.Release(1)

		b.metrics.ActivePlaybacks.Add(bg, 1)
		defer b.metrics.ActivePlaybacks.Add(bg, -1)

		spanCtx, span := observe.StartSpan(bg, "tts.speak",
			trace.WithAttributes(attribute.String("tts.provider", p.Name())))
		defer span.End()

		start := time.Now()
		if err := p.Speak(spanCtx, text); err != nil {
			span.RecordError(err)
			slog.Error("synthesis failed",
				"provider", p.Name(), "err", err)
			b.metrics.RecordProviderError(spanCtx, p.Name())
			b.reply(spanCtx, fmt.Sprintf("Exception %s - %v", p.Name(), err))
			return
		}
		b.metrics.RecordSynthesis(spanCtx, p.Name(), time.Since(start).Seconds())
	}()
}

func (b *Bot) handlePitch(ctx context.Context, arg string) string {
	p, ok := b.active(ctx)
	if !ok {
		return "no_provider"
	}
	if !p.Supports(tts.CapPitch) {
		b.reply(ctx, fmt.Sprintf("Pitch is not supported by %s.", p.Name()))
		return "unsupported"
	}
	if arg == "" {
		b.reply(ctx, fmt.Sprintf("Current pitch: %d", p.Pitch()))
		return "report"
	}
	r := p.Ranges()
	rangeMsg := fmt.Sprintf("Pitch must be a whole number between %d and %d.",
		r.PitchMin, r.PitchMax)

	v, err := strconv.Atoi(arg)
	if err != nil {
		b.reply(ctx, rangeMsg)
		return "rejected"
	}
	if !p.SetPitch(v) {
		b.reply(ctx, rangeMsg)
		return "rejected"
	}
	b.reply(ctx, fmt.Sprintf("Pitch set to %d.", p.Pitch()))
	return "ok"
}

func (b *Bot) handleSpeakRate(ctx context.Context, arg string) string {
	p, ok := b.active(ctx)
	if !ok {
		return "no_provider"
	}
	if !p.Supports(tts.CapSpeakRate) {
		b.reply(ctx, fmt.Sprintf("Speaking rate is not supported by %s.", p.Name()))
		return "unsupported"
	}
	if arg == "" {
		b.reply(ctx, fmt.Sprintf("Current speaking rate: %s", formatFloat(p.SpeakingRate())))
		return "report"
	}
	r := p.Ranges()
	rangeMsg := fmt.Sprintf("Speaking rate must be a number between %s and %s.",
		formatFloat(r.RateMin), formatFloat(r.RateMax))

	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		b.reply(ctx, rangeMsg)
		return "rejected"
	}
	// Out-of-range rates clamp instead of rejecting.
	v = min(max(v, r.RateMin), r.RateMax)
	if !p.SetSpeakingRate(v) {
		b.reply(ctx, rangeMsg)
		return "rejected"
	}
	b.reply(ctx, fmt.Sprintf("Speaking rate set to %s.", formatFloat(p.SpeakingRate())))
	return "ok"
}

func (b *Bot) handleTranslate(ctx context.Context, arg string) string {
	p, ok := b.active(ctx)
	if !ok {
		return "no_provider"
	}
	parts := strings.SplitN(arg, " ", 3)
	if len(parts) < 3 || strings.TrimSpace(parts[2]) == "" {
		b.reply(ctx, "Usage: !translate <from> <to> <text>")
		return "rejected"
	}
	result := p.Translate(ctx, parts[0], parts[1], strings.TrimSpace(parts[2]))
	if result == "" {
		// Transport failure already logged by the provider.
		return "error"
	}
	b.reply(ctx, result)
	return "ok"
}

// closest picks the candidate with the smallest edit distance to target,
// used for "did you mean" hints. Matching is case-insensitive; anything
// further than 3 edits away is not worth suggesting.
func closest(target string, candidates []string) (string, bool) {
	const maxDistance = 3
	best, bestDist := "", maxDistance+1
	lower := strings.ToLower(target)
	for _, c := range candidates {
		if d := matchr.DamerauLevenshtein(lower, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist <= maxDistance
}

// formatFloat renders v without trailing zeros, matching how users type
// the values in chat.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
