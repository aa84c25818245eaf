package media

import (
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
)

// DefaultPlayerCommand is the external player used when none is configured.
const DefaultPlayerCommand = "mpv"

// ExecPlayer implements [Player] by launching an external player process
// per file. Starting a new file stops the previous process first, so at
// most one player runs at a time.
type ExecPlayer struct {
	command string
	args    []string

	mu  sync.Mutex
	cmd *exec.Cmd
}

var _ Player = (*ExecPlayer)(nil)

// NewExecPlayer creates a player around command. The media file path is
// appended after args on every invocation. An empty command falls back to
// [DefaultPlayerCommand].
func NewExecPlayer(command string, args ...string) *ExecPlayer {
	if command == "" {
		command = DefaultPlayerCommand
	}
	return &ExecPlayer{command: command, args: args}
}

// Play stops any running player and launches a new one for path. It does
// not wait for the process to finish.
func (p *ExecPlayer) Play(path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	argv := append(append([]string{}, p.args...), path)
	cmd := exec.Command(p.command, argv...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("media: start %s: %w", p.command, err)
	}
	p.cmd = cmd

	// Reap the process so it never lingers as a zombie.
	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Debug("media player exited", "command", p.command, "err", err)
		}
	}()
	return nil
}

// Stop terminates the running player process, if any.
func (p *ExecPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *ExecPlayer) stopLocked() {
	if p.cmd == nil || p.cmd.Process == nil {
		return
	}
	if err := p.cmd.Process.Kill(); err != nil {
		slog.Debug("media player kill", "err", err)
	}
	p.cmd = nil
}
