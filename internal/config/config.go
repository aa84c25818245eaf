// Package config provides the configuration schema and loader for the
// chatvox bot.
package config

// LogLevel controls log verbosity for the bot process.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for chatvox.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Twitch    TwitchConfig    `yaml:"twitch"`
	Discord   DiscordConfig   `yaml:"discord"`
	Providers ProvidersConfig `yaml:"providers"`
	Media     MediaConfig     `yaml:"media"`
	Playback  PlaybackConfig  `yaml:"playback"`

	// IgnoredUsers lists chat users whose messages are dropped entirely.
	// Matching is case-insensitive.
	IgnoredUsers []string `yaml:"ignored_users"`
}

// ServerConfig holds the local HTTP surface (health and metrics) and
// logging settings.
type ServerConfig struct {
	// MetricsAddr is the TCP address the metrics/health server listens on
	// (e.g., ":9090"). Empty disables the server.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// TwitchConfig holds the chat connection settings.
type TwitchConfig struct {
	// Nick is the bot account's login name.
	Nick string `yaml:"nick"`

	// Token is the OAuth token for the bot account, with or without the
	// "oauth:" prefix.
	Token string `yaml:"token"`

	// Channel is the channel to join (e.g., "#somestreamer").
	Channel string `yaml:"channel"`
}

// DiscordConfig mirrors bot responses into a Discord channel. Both fields
// empty disables the relay.
type DiscordConfig struct {
	// Token is the Discord bot token.
	Token string `yaml:"token"`

	// ChannelID is the Discord channel that receives mirrored responses.
	ChannelID string `yaml:"channel_id"`
}

// ProvidersConfig declares which TTS backends to construct at startup.
// A backend with an empty block is skipped. Default selects the active
// provider by name; empty means the first that registered successfully.
type ProvidersConfig struct {
	Default string        `yaml:"default"`
	Google  *GoogleConfig `yaml:"google"`
	Polly   *PollyConfig  `yaml:"polly"`
	OpenAI  *OpenAIConfig `yaml:"openai"`
}

// GoogleConfig holds credentials for the Google Cloud TTS backend.
type GoogleConfig struct {
	// APIKey authenticates against the Cloud Text-to-Speech and
	// Translation REST APIs.
	APIKey string `yaml:"api_key"`
}

// PollyConfig holds settings for the Amazon Polly backend. Credentials come
// from the standard AWS environment/shared-config chain.
type PollyConfig struct {
	// Region is the AWS region (e.g., "eu-central-1").
	Region string `yaml:"region"`
}

// OpenAIConfig holds settings for the OpenAI speech backend.
type OpenAIConfig struct {
	// APIKey authenticates against the OpenAI API.
	APIKey string `yaml:"api_key"`

	// Model selects the speech model (e.g., "tts-1"). Empty uses the
	// backend default.
	Model string `yaml:"model"`

	// Voice selects the default voice (e.g., "alloy"). Empty uses the
	// backend default.
	Voice string `yaml:"voice"`
}

// MediaConfig controls the media-file fallback path for chat commands.
type MediaConfig struct {
	// Dir is the directory scanned for media basenames. Empty disables
	// media commands.
	Dir string `yaml:"dir"`

	// Enabled is the initial state of the runtime media toggle.
	Enabled bool `yaml:"enabled"`

	// Player is the external player command invoked with the media file
	// path as its only extra argument. Defaults to "mpv".
	Player string `yaml:"player"`
}

// PlaybackConfig tunes the audio playback path.
type PlaybackConfig struct {
	// WaitSeconds bounds how long a speak request waits for the playback
	// slot before being dropped. Zero uses the built-in default.
	WaitSeconds int `yaml:"wait_seconds"`
}
