package twitch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

const (
	// DefaultEndpoint is Twitch's IRC-over-WebSocket gateway.
	DefaultEndpoint = "wss://irc-ws.chat.twitch.tv:443"

	// reconnectDelay is the pause between connection attempts.
	reconnectDelay = 2 * time.Second
)

// MessageHandler receives one inbound chat message from the joined channel.
// Handlers run on the read loop goroutine and must return promptly; slow
// work has to be offloaded or PING handling stalls.
type MessageHandler func(ctx context.Context, sender, text string)

// ClientConfig configures a chat [Client].
type ClientConfig struct {
	// Endpoint overrides the gateway URL. Defaults to [DefaultEndpoint].
	Endpoint string

	// Nick is the bot account's login name.
	Nick string

	// Token is the account's OAuth token, with or without the "oauth:"
	// prefix.
	Token string

	// Channel is the channel to join, including the leading '#'.
	Channel string

	// Handler receives inbound PRIVMSGs. Required.
	Handler MessageHandler
}

// Client is a minimal Twitch chat client. It joins a single channel,
// delivers inbound messages to the handler, answers PING keepalives, and
// reconnects with a fixed delay until its context is cancelled.
type Client struct {
	cfg ClientConfig

	mu   sync.Mutex
	conn *websocket.Conn

	connected atomic.Bool
}

// NewClient validates cfg and returns an unconnected Client. Call [Client.Run]
// to connect.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Nick == "" || cfg.Token == "" || cfg.Channel == "" {
		return nil, errors.New("twitch: nick, token, and channel are required")
	}
	if cfg.Handler == nil {
		return nil, errors.New("twitch: handler is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if !strings.HasPrefix(cfg.Token, "oauth:") {
		cfg.Token = "oauth:" + cfg.Token
	}
	return &Client{cfg: cfg}, nil
}

// Run connects and serves until ctx is cancelled. Connection failures and
// dropped connections trigger a reconnect after a fixed delay; Run only
// returns ctx.Err().
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.serve(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("chat connection lost, reconnecting",
				"err", err, "delay", reconnectDelay)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

// serve runs a single connection: handshake, join, then the read loop.
func (c *Client) serve(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.cfg.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("twitch: dial %s: %w", c.cfg.Endpoint, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "shutting down")

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer func() {
		c.connected.Store(false)
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
	}()

	for _, line := range []string{
		"CAP REQ :twitch.tv/tags",
		"PASS " + c.cfg.Token,
		"NICK " + c.cfg.Nick,
		"JOIN " + c.cfg.Channel,
	} {
		if err := c.write(ctx, line); err != nil {
			return fmt.Errorf("twitch: handshake: %w", err)
		}
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("twitch: read: %w", err)
		}
		// A frame can carry several IRC lines.
		for _, raw := range strings.Split(string(data), "\r\n") {
			if err := c.handleLine(ctx, raw); err != nil {
				return err
			}
		}
	}
}

func (c *Client) handleLine(ctx context.Context, raw string) error {
	m, ok := parseLine(raw)
	if !ok {
		return nil
	}
	switch m.Command {
	case "PING":
		if err := c.write(ctx, "PONG :"+m.Trailing); err != nil {
			return fmt.Errorf("twitch: pong: %w", err)
		}
	case "001":
		// Registration accepted.
		c.connected.Store(true)
		slog.Info("joined chat", "channel", c.cfg.Channel, "nick", c.cfg.Nick)
	case "PRIVMSG":
		if m.Channel() != c.cfg.Channel {
			return nil
		}
		c.cfg.Handler(ctx, m.Nick, m.Trailing)
	case "RECONNECT":
		return errors.New("twitch: server requested reconnect")
	}
	return nil
}

// Send delivers text to channel as a PRIVMSG. It implements the bot's
// response sink.
func (c *Client) Send(ctx context.Context, channel, text string) error {
	return c.write(ctx, fmt.Sprintf("PRIVMSG %s :%s", channel, text))
}

// Connected reports whether the client currently has a registered
// connection. Used by the readiness probe.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

func (c *Client) write(ctx context.Context, line string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("twitch: not connected")
	}
	return conn.Write(ctx, websocket.MessageText, []byte(line+"\r\n"))
}
