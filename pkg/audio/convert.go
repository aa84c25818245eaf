package audio

// Convert converts a clip to the target format. If the clip already matches,
// it is returned unchanged. Conversion order: resample first, then channel
// conversion, so stereo input is not resampled twice when the target is mono.
func Convert(clip Clip, target Format) Clip {
	if clip.SampleRate == target.SampleRate && clip.Channels == target.Channels {
		return clip
	}

	pcm := clip.Data
	rate := clip.SampleRate
	channels := clip.Channels

	if rate != target.SampleRate {
		if channels == 1 {
			pcm = resampleMono16(pcm, rate, target.SampleRate)
		} else {
			pcm = resampleStereo16(pcm, rate, target.SampleRate)
		}
		rate = target.SampleRate
	}

	if channels != target.Channels {
		if channels == 1 && target.Channels == 2 {
			pcm = monoToStereo(pcm)
		} else if channels == 2 && target.Channels == 1 {
			pcm = stereoToMono(pcm)
		}
		channels = target.Channels
	}

	return Clip{Data: pcm, SampleRate: rate, Channels: channels}
}

// ApplyGain scales every sample by gain, clamping to the int16 range.
// gain 1.0 returns the clip unchanged; gain <= 0 silences it.
func ApplyGain(clip Clip, gain float64) Clip {
	if gain == 1.0 {
		return clip
	}
	out := make([]byte, len(clip.Data))
	for i := 0; i+1 < len(clip.Data); i += 2 {
		s := float64(int16(clip.Data[i]) | int16(clip.Data[i+1])<<8)
		s *= gain
		if s > 32767 {
			s = 32767
		} else if s < -32768 {
			s = -32768
		}
		v := int16(s)
		out[i] = byte(v)
		out[i+1] = byte(v >> 8)
	}
	return Clip{Data: out, SampleRate: clip.SampleRate, Channels: clip.Channels}
}

// monoToStereo duplicates each int16 mono sample into a stereo L+R pair.
func monoToStereo(pcm []byte) []byte {
	out := make([]byte, (len(pcm)/2)*4)
	for i := 0; i+1 < len(pcm); i += 2 {
		lo, hi := pcm[i], pcm[i+1]
		j := i * 2
		out[j] = lo
		out[j+1] = hi
		out[j+2] = lo
		out[j+3] = hi
	}
	return out
}

// stereoToMono averages L+R per stereo frame. Uses int32 arithmetic to
// prevent overflow and clamps to the int16 range.
func stereoToMono(pcm []byte) []byte {
	frames := len(pcm) / 4
	out := make([]byte, frames*2)
	for i := range frames {
		l := int32(int16(pcm[i*4]) | int16(pcm[i*4+1])<<8)
		r := int32(int16(pcm[i*4+2]) | int16(pcm[i*4+3])<<8)
		avg := (l + r) / 2
		if avg > 32767 {
			avg = 32767
		} else if avg < -32768 {
			avg = -32768
		}
		out[i*2] = byte(avg)
		out[i*2+1] = byte(avg >> 8)
	}
	return out
}

// resampleMono16 resamples 16-bit mono PCM from srcRate to dstRate using
// linear interpolation.
func resampleMono16(pcm []byte, srcRate, dstRate int) []byte {
	if srcRate <= 0 || dstRate <= 0 || srcRate == dstRate || len(pcm) < 2 {
		return pcm
	}
	srcSamples := len(pcm) / 2
	dstSamples := int(int64(srcSamples) * int64(dstRate) / int64(srcRate))
	if dstSamples == 0 {
		return nil
	}

	out := make([]byte, dstSamples*2)
	ratio := float64(srcRate) / float64(dstRate)
	for i := range dstSamples {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		s0 := int16(pcm[srcIdx*2]) | int16(pcm[srcIdx*2+1])<<8
		s1 := s0
		if srcIdx+1 < srcSamples {
			s1 = int16(pcm[(srcIdx+1)*2]) | int16(pcm[(srcIdx+1)*2+1])<<8
		}

		v := int16(float64(s0)*(1-frac) + float64(s1)*frac)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// resampleStereo16 resamples 16-bit interleaved stereo PCM from srcRate to
// dstRate using linear interpolation per channel.
func resampleStereo16(pcm []byte, srcRate, dstRate int) []byte {
	if srcRate <= 0 || dstRate <= 0 || srcRate == dstRate || len(pcm) < 4 {
		return pcm
	}
	srcFrames := len(pcm) / 4
	dstFrames := int(int64(srcFrames) * int64(dstRate) / int64(srcRate))
	if dstFrames == 0 {
		return nil
	}

	out := make([]byte, dstFrames*4)
	ratio := float64(srcRate) / float64(dstRate)
	for i := range dstFrames {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		l0 := int16(pcm[srcIdx*4]) | int16(pcm[srcIdx*4+1])<<8
		r0 := int16(pcm[srcIdx*4+2]) | int16(pcm[srcIdx*4+3])<<8
		l1, r1 := l0, r0
		if srcIdx+1 < srcFrames {
			l1 = int16(pcm[(srcIdx+1)*4]) | int16(pcm[(srcIdx+1)*4+1])<<8
			r1 = int16(pcm[(srcIdx+1)*4+2]) | int16(pcm[(srcIdx+1)*4+3])<<8
		}

		lv := int16(float64(l0)*(1-frac) + float64(l1)*frac)
		rv := int16(float64(r0)*(1-frac) + float64(r1)*frac)
		out[i*4] = byte(lv)
		out[i*4+1] = byte(lv >> 8)
		out[i*4+2] = byte(rv)
		out[i*4+3] = byte(rv >> 8)
	}
	return out
}
