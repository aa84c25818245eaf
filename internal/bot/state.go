package bot

import (
	"strings"
	"sync"

	"github.com/chatvox/chatvox/pkg/provider/tts"
)

// State is the mutable session state of a bot: the active provider, the
// joined channel, the ignore list, and the media-commands toggle. It is
// created once at bot construction and lives for the process lifetime.
//
// The dispatcher runs serialized, but the settings UI mutates the same
// state from its own goroutine, so every accessor locks.
type State struct {
	mu sync.RWMutex

	active       tts.Provider
	channel      string
	ignored      map[string]struct{}
	mediaEnabled bool
}

// NewState creates a State for the given channel. active may be nil when the
// registry came up empty; dispatch handles the degraded case.
func NewState(channel string, active tts.Provider) *State {
	return &State{
		active:  active,
		channel: channel,
		ignored: make(map[string]struct{}),
	}
}

// Active returns the active provider, or nil in degraded mode.
func (s *State) Active() tts.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetActive swaps the active provider. In-flight operations keep the
// provider they captured at dispatch time; new commands see the swap
// immediately.
func (s *State) SetActive(p tts.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = p
}

// Channel returns the joined channel name. Immutable after construction.
func (s *State) Channel() string {
	return s.channel
}

// Ignore adds a user to the ignore list. Matching is case-insensitive.
func (s *State) Ignore(user string) {
	user = strings.ToLower(strings.TrimSpace(user))
	if user == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ignored[user] = struct{}{}
}

// IsIgnored reports whether messages from user are dropped.
func (s *State) IsIgnored(user string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ignored[strings.ToLower(strings.TrimSpace(user))]
	return ok
}

// MediaEnabled reports whether media-file commands are active.
func (s *State) MediaEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mediaEnabled
}

// SetMediaEnabled toggles media-file commands. Exposed to the settings UI.
func (s *State) SetMediaEnabled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mediaEnabled = on
}
