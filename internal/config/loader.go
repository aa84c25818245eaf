package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// providerNames lists the provider blocks [Validate] accepts for
// providers.default.
var providerNames = []string{"google", "polly", "openai"}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Twitch is the one mandatory collaborator: without chat there is no bot.
	if cfg.Twitch.Nick == "" {
		errs = append(errs, errors.New("twitch.nick is required"))
	}
	if cfg.Twitch.Token == "" {
		errs = append(errs, errors.New("twitch.token is required"))
	}
	if cfg.Twitch.Channel == "" {
		errs = append(errs, errors.New("twitch.channel is required"))
	} else if !strings.HasPrefix(cfg.Twitch.Channel, "#") {
		errs = append(errs, fmt.Errorf("twitch.channel %q must start with '#'", cfg.Twitch.Channel))
	}

	// Discord is optional but must be configured wholly or not at all.
	if (cfg.Discord.Token == "") != (cfg.Discord.ChannelID == "") {
		errs = append(errs, errors.New("discord.token and discord.channel_id must both be set to enable the relay"))
	}

	if d := cfg.Providers.Default; d != "" {
		known := false
		for _, n := range providerNames {
			if d == n {
				known = true
				break
			}
		}
		if !known {
			errs = append(errs, fmt.Errorf("providers.default %q is unknown; valid values: %s", d, strings.Join(providerNames, ", ")))
		}
	}
	if cfg.Providers.Google != nil && cfg.Providers.Google.APIKey == "" {
		errs = append(errs, errors.New("providers.google.api_key is required when the google block is present"))
	}
	if cfg.Providers.OpenAI != nil && cfg.Providers.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("providers.openai.api_key is required when the openai block is present"))
	}
	if cfg.Providers.Google == nil && cfg.Providers.Polly == nil && cfg.Providers.OpenAI == nil {
		slog.Warn("no TTS providers configured; the bot will run in degraded mode")
	}

	if cfg.Media.Enabled && cfg.Media.Dir == "" {
		errs = append(errs, errors.New("media.dir is required when media.enabled is true"))
	}

	if cfg.Playback.WaitSeconds < 0 {
		errs = append(errs, fmt.Errorf("playback.wait_seconds %d must not be negative", cfg.Playback.WaitSeconds))
	}

	return errors.Join(errs...)
}
