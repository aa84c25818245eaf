// Package media implements the media-file fallback path for chat commands.
//
// After regular command handling, the bot hands every sigil-prefixed token
// to the trigger, which treats it as a media-file basename and asks the
// external player to play the first existing match. Whether that lookup
// runs at all is decided by the bot's media toggle; this package only knows
// how to find and request the file.
package media

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// extensions is the fixed lookup order for media basenames. The first
// existing match wins and scanning stops.
var extensions = []string{
	"mp3", "mp4", "wmv", "avi", "mpg", "wav", "ogg", "gif", "png", "jpg", "bmp",
}

// Player is the external media-player collaborator. A nil Player disables
// the trigger permanently.
type Player interface {
	Play(path string) error
	Stop() error
}

// Trigger resolves command tokens to files in the media directory and
// requests playback.
type Trigger struct {
	dir    string
	player Player
}

// NewTrigger creates a Trigger over dir. Returns nil when player is nil or
// dir is empty, which callers treat as "media disabled".
func NewTrigger(dir string, player Player) *Trigger {
	if player == nil || dir == "" {
		return nil
	}
	return &Trigger{dir: dir, player: player}
}

// Find returns the path of the first existing media file for basename,
// scanning the fixed extension list in order.
func (t *Trigger) Find(basename string) (string, bool) {
	for _, ext := range extensions {
		path := filepath.Join(t.dir, fmt.Sprintf("%s.%s", basename, ext))
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// Fire strips the command sigil from token, looks the basename up, and
// plays the first match. Returns true when a file was found, whether or not
// playback succeeded. Playback errors are logged, never surfaced to chat.
func (t *Trigger) Fire(token string) bool {
	basename := strings.TrimPrefix(token, "!")
	if basename == "" || strings.ContainsAny(basename, `/\`) {
		return false
	}
	path, ok := t.Find(basename)
	if !ok {
		return false
	}
	if err := t.player.Play(path); err != nil {
		slog.Warn("media playback failed", "path", path, "err", err)
	}
	return true
}

// Stop forwards to the player. Used by the explicit stop control in the
// settings panel.
func (t *Trigger) Stop() {
	if err := t.player.Stop(); err != nil && !errors.Is(err, os.ErrClosed) {
		slog.Warn("media stop failed", "err", err)
	}
}
