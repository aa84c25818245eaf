package media

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type fakePlayer struct {
	mu    sync.Mutex
	plays []string
	stops int
}

func (f *fakePlayer) Play(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays = append(f.plays, path)
	return nil
}

func (f *fakePlayer) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestTrigger_FirstExtensionWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "fanfare.wav")
	touch(t, dir, "fanfare.mp3")

	trig := NewTrigger(dir, &fakePlayer{})
	path, ok := trig.Find("fanfare")
	if !ok {
		t.Fatal("expected a match")
	}
	// mp3 precedes wav in the scan order.
	if filepath.Ext(path) != ".mp3" {
		t.Errorf("Find returned %q, want the .mp3 match", path)
	}
}

func TestTrigger_FireStripsSigil(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "horn.ogg")
	player := &fakePlayer{}

	trig := NewTrigger(dir, player)
	if !trig.Fire("!horn") {
		t.Fatal("expected Fire to find the file")
	}
	if len(player.plays) != 1 || filepath.Base(player.plays[0]) != "horn.ogg" {
		t.Errorf("plays = %v, want [.../horn.ogg]", player.plays)
	}
}

func TestTrigger_MissingFileDoesNothing(t *testing.T) {
	t.Parallel()

	player := &fakePlayer{}
	trig := NewTrigger(t.TempDir(), player)
	if trig.Fire("!nothing") {
		t.Error("expected Fire to report no match")
	}
	if len(player.plays) != 0 {
		t.Errorf("player was called for a missing file: %v", player.plays)
	}
}

func TestTrigger_RejectsPathSeparators(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sub := filepath.Join(dir, "secret")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, sub, "key.wav")

	player := &fakePlayer{}
	trig := NewTrigger(dir, player)
	if trig.Fire("!secret/key") {
		t.Error("expected path traversal to be rejected")
	}
	if trig.Fire(`!..\key`) {
		t.Error("expected windows separators to be rejected")
	}
}

func TestNewTrigger_NilPlayerDisables(t *testing.T) {
	t.Parallel()

	if NewTrigger(t.TempDir(), nil) != nil {
		t.Error("expected nil trigger without a player")
	}
	if NewTrigger("", &fakePlayer{}) != nil {
		t.Error("expected nil trigger without a directory")
	}
}
