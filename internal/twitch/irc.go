// Package twitch implements the chat transport: an IRC-over-WebSocket client
// for the Twitch chat network that delivers inbound messages to the bot and
// sends its responses back to the channel.
package twitch

import "strings"

// Message is a single parsed IRC line.
type Message struct {
	// Tags holds IRCv3 message tags (requires the tags capability).
	Tags map[string]string

	// Nick is the sender's nick from the prefix, empty for server lines.
	Nick string

	// Command is the IRC command or numeric (e.g. "PRIVMSG", "PING", "001").
	Command string

	// Params are the middle parameters, excluding the trailing part.
	Params []string

	// Trailing is the text after the final " :" separator, e.g. the chat
	// message body of a PRIVMSG.
	Trailing string
}

// Channel returns the target channel of a PRIVMSG, or "".
func (m Message) Channel() string {
	if m.Command != "PRIVMSG" || len(m.Params) == 0 {
		return ""
	}
	return m.Params[0]
}

// parseLine parses one raw IRC line. Returns false for empty lines.
//
// Grammar: ['@' tags SP] [':' prefix SP] command [params] [' :' trailing]
func parseLine(raw string) (Message, bool) {
	raw = strings.TrimRight(raw, "\r\n")
	if raw == "" {
		return Message{}, false
	}

	var m Message

	if strings.HasPrefix(raw, "@") {
		rawTags, rest, ok := strings.Cut(raw[1:], " ")
		if !ok {
			return Message{}, false
		}
		m.Tags = parseTags(rawTags)
		raw = rest
	}

	if strings.HasPrefix(raw, ":") {
		prefix, rest, ok := strings.Cut(raw[1:], " ")
		if !ok {
			return Message{}, false
		}
		// Prefix is "nick!user@host" for user lines, a hostname otherwise.
		if nick, _, ok := strings.Cut(prefix, "!"); ok {
			m.Nick = nick
		}
		raw = rest
	}

	raw, m.Trailing, _ = strings.Cut(raw, " :")
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Message{}, false
	}
	m.Command = fields[0]
	m.Params = fields[1:]
	return m, true
}

// parseTags splits "key=value;key2=value2" into a map. Twitch escapes
// spaces, semicolons, and backslashes in tag values.
func parseTags(raw string) map[string]string {
	tags := make(map[string]string)
	for _, kv := range strings.Split(raw, ";") {
		key, value, _ := strings.Cut(kv, "=")
		if key == "" {
			continue
		}
		tags[key] = unescapeTag(value)
	}
	return tags
}

var tagUnescaper = strings.NewReplacer(
	`\:`, ";",
	`\s`, " ",
	`\\`, `\`,
	`\r`, "\r",
	`\n`, "\n",
)

func unescapeTag(v string) string {
	if !strings.Contains(v, `\`) {
		return v
	}
	return tagUnescaper.Replace(v)
}
