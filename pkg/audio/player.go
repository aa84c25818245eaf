package audio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

// DefaultFormat is the output device format all clips are converted to.
// 24 kHz mono covers the native rates of the wired TTS backends without
// upsampling beyond what the cheapest one delivers.
var DefaultFormat = Format{SampleRate: 24000, Channels: 1}

// Player plays PCM clips through the system audio device using oto.
// The oto context is created once; the process can only hold one.
//
// Play is blocking and not serialized here; the bot layer guards playback
// with its single-slot semaphore so two clips never overlap on the device.
type Player struct {
	ctx    *oto.Context
	format Format
}

// NewPlayer opens the audio device with the given format and waits for the
// context to become ready.
func NewPlayer(format Format) (*Player, error) {
	if format.SampleRate <= 0 || format.Channels <= 0 {
		return nil, fmt.Errorf("audio: invalid format %s", format)
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("audio: open device: %w", err)
	}
	<-ready
	return &Player{ctx: ctx, format: format}, nil
}

// Play converts the clip to the device format, applies gain, and blocks
// until the clip has drained.
func (p *Player) Play(clip Clip, gain float64) error {
	if len(clip.Data) == 0 {
		return nil
	}
	clip = Convert(clip, p.format)
	clip = ApplyGain(clip, gain)

	player := p.ctx.NewPlayer(bytes.NewReader(clip.Data))
	defer player.Close()
	player.Play()

	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	if err := player.Err(); err != nil {
		return fmt.Errorf("audio: playback: %w", err)
	}
	return nil
}
