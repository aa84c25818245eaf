// Package relay mirrors bot responses into a Discord channel so moderators
// can follow the bot without watching the stream chat.
package relay

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Discord is a response sink that forwards every message to a fixed Discord
// channel. It satisfies the bot's ResponseSink interface.
type Discord struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscord creates a connected relay. The token is a Discord bot token
// without the "Bot " prefix.
func NewDiscord(token, channelID string) (*Discord, error) {
	if token == "" || channelID == "" {
		return nil, fmt.Errorf("relay: discord token and channel id are required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("relay: create discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("relay: open discord session: %w", err)
	}
	return &Discord{session: session, channelID: channelID}, nil
}

// Send forwards text to the Discord channel. The chat channel argument is
// ignored; the relay always targets its configured channel.
func (d *Discord) Send(_ context.Context, _ string, text string) error {
	if _, err := d.session.ChannelMessageSend(d.channelID, text); err != nil {
		return fmt.Errorf("relay: discord send: %w", err)
	}
	return nil
}

// Close shuts the Discord session down.
func (d *Discord) Close() error {
	return d.session.Close()
}
