package audio

import (
	"bytes"
	"errors"
	"fmt"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrNotWAV is returned by DecodeWAV for data without a valid RIFF header.
var ErrNotWAV = errors.New("audio: not a valid wav stream")

// DecodeWAV decodes a RIFF/WAV byte stream into a 16-bit PCM [Clip].
// Sample depths other than 16 bit are rescaled.
func DecodeWAV(data []byte) (Clip, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return Clip{}, ErrNotWAV
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("audio: decode wav: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 || buf.Format.NumChannels <= 0 {
		return Clip{}, ErrNotWAV
	}
	return clipFromBuffer(buf), nil
}

// clipFromBuffer converts a decoded PCM buffer to a 16-bit Clip, rescaling
// other sample depths.
func clipFromBuffer(buf *gaudio.IntBuffer) Clip {
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = 16
	}
	shift := depth - 16

	pcm := make([]byte, len(buf.Data)*2)
	for i, sample := range buf.Data {
		v := sample
		if shift > 0 {
			v >>= shift
		} else if shift < 0 {
			v <<= -shift
		}
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		pcm[i*2] = byte(v)
		pcm[i*2+1] = byte(v >> 8)
	}

	return Clip{
		Data:       pcm,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
	}
}
