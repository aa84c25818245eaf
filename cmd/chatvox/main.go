// Command chatvox is a Twitch chat TTS bot. It joins one channel, reads
// audio commands from chat, and speaks messages through a pluggable
// text-to-speech backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chatvox/chatvox/internal/bot"
	"github.com/chatvox/chatvox/internal/config"
	"github.com/chatvox/chatvox/internal/health"
	"github.com/chatvox/chatvox/internal/media"
	"github.com/chatvox/chatvox/internal/observe"
	"github.com/chatvox/chatvox/internal/relay"
	"github.com/chatvox/chatvox/internal/twitch"
	"github.com/chatvox/chatvox/pkg/audio"
	"github.com/chatvox/chatvox/pkg/provider/tts"
	"github.com/chatvox/chatvox/pkg/provider/tts/google"
	"github.com/chatvox/chatvox/pkg/provider/tts/openai"
	"github.com/chatvox/chatvox/pkg/provider/tts/polly"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "chatvox: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "chatvox: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("chatvox starting",
		"version", version,
		"config", *configPath,
		"channel", cfg.Twitch.Channel,
		"log_level", cfg.Server.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "chatvox",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	out, err := audio.NewPlayer(audio.DefaultFormat)
	if err != nil {
		slog.Error("failed to open audio output", "err", err)
		return 1
	}

	reg := tts.NewRegistry()
	registerProviders(ctx, cfg, reg, out)

	active := pickActive(cfg, reg)
	if active == nil {
		slog.Warn("no TTS provider available, running in degraded mode")
	} else {
		slog.Info("active provider selected", "provider", active.Name())
	}

	state := bot.NewState(cfg.Twitch.Channel, active)
	for _, user := range cfg.IgnoredUsers {
		state.Ignore(user)
	}
	state.SetMediaEnabled(cfg.Media.Enabled)

	var trigger *media.Trigger
	if cfg.Media.Dir != "" {
		trigger = media.NewTrigger(cfg.Media.Dir, media.NewExecPlayer(cfg.Media.Player))
		slog.Info("media commands enabled", "dir", cfg.Media.Dir, "initial", cfg.Media.Enabled)
	}

	// The chat client is both message source and response sink, so the bot
	// is wired in two steps.
	var engine *bot.Bot
	client, err := twitch.NewClient(twitch.ClientConfig{
		Nick:    cfg.Twitch.Nick,
		Token:   cfg.Twitch.Token,
		Channel: cfg.Twitch.Channel,
		Handler: func(ctx context.Context, sender, text string) {
			engine.HandleMessage(ctx, sender, text)
		},
	})
	if err != nil {
		slog.Error("failed to create chat client", "err", err)
		return 1
	}

	sink := bot.FanoutSink{client}
	var discord *relay.Discord
	if cfg.Discord.Token != "" {
		discord, err = relay.NewDiscord(cfg.Discord.Token, cfg.Discord.ChannelID)
		if err != nil {
			slog.Error("failed to connect Discord relay", "err", err)
			return 1
		}
		sink = append(sink, discord)
		slog.Info("discord relay connected", "channel_id", cfg.Discord.ChannelID)
	}

	engine = bot.New(bot.Config{
		State:    state,
		Registry: reg,
		Sink:     sink,
		Media:    trigger,
		PlayWait: time.Duration(cfg.Playback.WaitSeconds) * time.Second,
	})

	srv := startHTTPServer(cfg.Server.MetricsAddr, client, reg)

	slog.Info("connecting to chat", "channel", cfg.Twitch.Channel)
	runErr := client.Run(ctx)

	slog.Info("shutdown signal received, stopping")

	if trigger != nil {
		trigger.Stop()
	}
	if discord != nil {
		if err := discord.Close(); err != nil {
			slog.Warn("discord close error", "err", err)
		}
	}
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("http server shutdown error", "err", err)
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("chat client error", "err", runErr)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// registerProviders constructs every backend with a config block and adds
// the working ones to reg. A failing backend is logged and skipped so one
// bad credential does not take the bot down.
func registerProviders(ctx context.Context, cfg *config.Config, reg *tts.Registry, out audio.Output) {
	if gc := cfg.Providers.Google; gc != nil {
		if p, err := google.New(gc.APIKey, out); err != nil {
			slog.Error("failed to create provider", "provider", "google", "err", err)
		} else if err := reg.Register(ctx, p); err != nil {
			slog.Error("provider failed registration probe", "provider", "google", "err", err)
		}
	}

	if pc := cfg.Providers.Polly; pc != nil {
		if p, err := polly.New(ctx, pc.Region, out); err != nil {
			slog.Error("failed to create provider", "provider", "polly", "err", err)
		} else if err := reg.Register(ctx, p); err != nil {
			slog.Error("provider failed registration probe", "provider", "polly", "err", err)
		}
	}

	if oc := cfg.Providers.OpenAI; oc != nil {
		opts := []openai.Option{
			openai.WithModel(oc.Model),
			openai.WithVoice(oc.Voice),
		}
		if p, err := openai.New(oc.APIKey, out, opts...); err != nil {
			slog.Error("failed to create provider", "provider", "openai", "err", err)
		} else if err := reg.Register(ctx, p); err != nil {
			slog.Error("provider failed registration probe", "provider", "openai", "err", err)
		}
	}
}

// pickActive resolves the initially active provider, or nil when none
// registered. A configured default that failed registration falls back to
// the first working provider.
func pickActive(cfg *config.Config, reg *tts.Registry) tts.Provider {
	if name := cfg.Providers.Default; name != "" {
		if p, err := reg.FindByName(name); err == nil {
			return p
		}
		slog.Warn("configured default provider not available", "provider", name)
	}
	p, err := reg.Default()
	if err != nil {
		return nil
	}
	return p
}

// startHTTPServer serves Prometheus metrics and health checks on addr.
// Returns nil when addr is empty.
func startHTTPServer(addr string, client *twitch.Client, reg *tts.Registry) *http.Server {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	health.New(
		health.ChatChecker(client.Connected),
		health.ProvidersChecker(reg),
	).Register(mux)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		slog.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server error", "err", err)
		}
	}()
	return srv
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
