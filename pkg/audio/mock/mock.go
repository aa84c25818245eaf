// Package mock provides a test double for the audio.Output interface.
package mock

import (
	"sync"

	"github.com/chatvox/chatvox/pkg/audio"
)

// PlayCall records a single invocation of Play.
type PlayCall struct {
	Clip audio.Clip
	Gain float64
}

// Output is a mock implementation of audio.Output that records calls.
type Output struct {
	mu sync.Mutex

	// PlayErr, if non-nil, is returned by every Play call.
	PlayErr error

	// Block, if non-nil, is received from before Play returns. Use it to
	// hold a playback open while testing concurrency.
	Block chan struct{}

	calls []PlayCall
}

// Play records the call and returns PlayErr.
func (o *Output) Play(clip audio.Clip, gain float64) error {
	o.mu.Lock()
	o.calls = append(o.calls, PlayCall{Clip: clip, Gain: gain})
	block := o.Block
	err := o.PlayErr
	o.mu.Unlock()

	if block != nil {
		<-block
	}
	return err
}

// Calls returns a copy of the recorded calls.
func (o *Output) Calls() []PlayCall {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]PlayCall, len(o.calls))
	copy(out, o.calls)
	return out
}
