// Package audio provides local playback of synthesized speech clips.
//
// Providers hand over decoded 16-bit PCM clips; the package converts them to
// the output device format (resample + mix-down), applies the session volume
// as a linear gain, and plays them through a single oto output context.
// Playback is blocking; the caller decides how to serialize or offload it.
package audio

import "fmt"

// Clip is a decoded audio clip: little-endian 16-bit PCM.
type Clip struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	samples := len(c.Data) / 2 / c.Channels
	return float64(samples) / float64(c.SampleRate)
}

// Format describes the sample rate and channel count of the output device.
type Format struct {
	SampleRate int
	Channels   int
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch", f.SampleRate, f.Channels)
}

// Output is the playback abstraction consumed by TTS providers. gain is a
// linear amplitude factor (1.0 = unchanged); the implementation applies it
// to the PCM samples before writing to the device.
type Output interface {
	Play(clip Clip, gain float64) error
}
