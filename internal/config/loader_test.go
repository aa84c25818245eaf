package config_test

import (
	"strings"
	"testing"

	"github.com/chatvox/chatvox/internal/config"
)

const validYAML = `
server:
  metrics_addr: ":9090"
  log_level: info
twitch:
  nick: chatvoxbot
  token: oauth:abc123
  channel: "#somestreamer"
providers:
  default: google
  google:
    api_key: test-key
media:
  dir: /var/lib/chatvox/media
  enabled: true
playback:
  wait_seconds: 20
ignored_users:
  - nightbot
`

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Twitch.Channel != "#somestreamer" {
		t.Errorf("channel = %q", cfg.Twitch.Channel)
	}
	if cfg.Providers.Google == nil || cfg.Providers.Google.APIKey != "test-key" {
		t.Errorf("google block = %+v", cfg.Providers.Google)
	}
	if len(cfg.IgnoredUsers) != 1 || cfg.IgnoredUsers[0] != "nightbot" {
		t.Errorf("ignored users = %v", cfg.IgnoredUsers)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()
	yaml := `
twitch:
  nick: chatvoxbot
  token: t
  channel: "#c"
  colour: purple
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestValidate_MissingTwitchCredentials(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader(`server: {log_level: info}`))
	if err == nil {
		t.Fatal("expected errors, got nil")
	}
	errStr := err.Error()
	for _, want := range []string{"twitch.nick", "twitch.token", "twitch.channel"} {
		if !strings.Contains(errStr, want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}

func TestValidate_ChannelNeedsHashPrefix(t *testing.T) {
	t.Parallel()
	yaml := `
twitch:
  nick: chatvoxbot
  token: t
  channel: somestreamer
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil || !strings.Contains(err.Error(), "must start with '#'") {
		t.Errorf("error should mention the channel prefix, got: %v", err)
	}
}

func TestValidate_PartialDiscordRejected(t *testing.T) {
	t.Parallel()
	yaml := `
twitch:
  nick: chatvoxbot
  token: t
  channel: "#c"
discord:
  token: something
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil || !strings.Contains(err.Error(), "discord") {
		t.Errorf("error should mention discord, got: %v", err)
	}
}

func TestValidate_UnknownDefaultProvider(t *testing.T) {
	t.Parallel()
	yaml := `
twitch:
  nick: chatvoxbot
  token: t
  channel: "#c"
providers:
  default: espeak
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil || !strings.Contains(err.Error(), "espeak") {
		t.Errorf("error should mention the bad provider name, got: %v", err)
	}
}

func TestValidate_ProviderBlockNeedsKey(t *testing.T) {
	t.Parallel()
	yaml := `
twitch:
  nick: chatvoxbot
  token: t
  channel: "#c"
providers:
  google: {}
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil || !strings.Contains(err.Error(), "google.api_key") {
		t.Errorf("error should mention google.api_key, got: %v", err)
	}
}

func TestValidate_MediaEnabledNeedsDir(t *testing.T) {
	t.Parallel()
	yaml := `
twitch:
  nick: chatvoxbot
  token: t
  channel: "#c"
media:
  enabled: true
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil || !strings.Contains(err.Error(), "media.dir") {
		t.Errorf("error should mention media.dir, got: %v", err)
	}
}
