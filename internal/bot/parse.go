package bot

import "strings"

// Sigil is the command prefix end users type in chat.
const Sigil = "!"

// Parse splits a raw chat line into a command token and the remaining
// argument text.
//
// The token is the first whitespace-delimited word, lower-cased and trimmed.
// When the token carries the command sigil, the remainder is the line with
// the token stripped and trimmed; otherwise the full original line is
// returned untouched; such lines never match a command and fall through to
// the media pass unchanged.
//
// Pure function, safe on empty input.
func Parse(raw string) (token, remainder string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ""
	}

	token = trimmed
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		token = trimmed[:i]
	}
	token = strings.ToLower(token)

	if !strings.HasPrefix(token, Sigil) {
		return token, raw
	}
	if len(trimmed) <= len(token)+1 {
		return token, ""
	}
	return token, strings.TrimSpace(trimmed[len(token):])
}
