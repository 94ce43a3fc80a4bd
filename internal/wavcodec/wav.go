// Package wavcodec decodes and encodes the RIFF/WAVE PCM16 payloads that
// flow between the upstream TTS endpoint and the engine's Player (§6).
package wavcodec

import (
	"errors"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// PCM is decoded, ready-to-play audio: mono or stereo, 16-bit signed,
// interleaved samples at SampleRate.
type PCM struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

// ErrNotPCM16 is returned for WAV payloads outside the PCM16 envelope
// the upstream TTS endpoint is contracted to produce (spec.md §6).
var ErrNotPCM16 = errors.New("wavcodec: not a 16-bit PCM wav payload")

// Decode parses a RIFF/WAVE PCM16 payload. Tolerates any sample rate and
// mono or stereo, per spec.md §6 ("tolerate either 16 kHz or 24 kHz").
func Decode(r io.ReadSeeker) (PCM, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return PCM{}, errors.New("wavcodec: not a valid wav file")
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return PCM{}, err
	}
	if buf.SourceBitDepth != 0 && buf.SourceBitDepth != 16 {
		return PCM{}, ErrNotPCM16
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}

	return PCM{
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		Samples:    samples,
	}, nil
}

// Encode writes a RIFF/WAVE PCM16 payload. Used by tests that need to
// fabricate a WAV payload for Decode.
func Encode(pcm PCM) ([]byte, error) {
	sb := &seekBuffer{}
	enc := wav.NewEncoder(sb, pcm.SampleRate, 16, pcm.Channels, 1)

	ints := make([]int, len(pcm.Samples))
	for i, s := range pcm.Samples {
		ints[i] = int(s)
	}
	audioBuf := &audio.IntBuffer{
		Data: ints,
		Format: &audio.Format{
			SampleRate:  pcm.SampleRate,
			NumChannels: pcm.Channels,
		},
		SourceBitDepth: 16,
	}

	if err := enc.Write(audioBuf); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return sb.buf, nil
}

// seekBuffer is an in-memory io.WriteSeeker, since wav.Encoder needs to
// seek back and patch RIFF/data chunk sizes after writing samples.
type seekBuffer struct {
	buf []byte
	pos int64
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + int64(len(p))
	if end > int64(len(s.buf)) {
		grown := make([]byte, end)
		copy(grown, s.buf)
		s.buf = grown
	}
	copy(s.buf[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = s.pos + offset
	case io.SeekEnd:
		newPos = int64(len(s.buf)) + offset
	default:
		return 0, errors.New("wavcodec: invalid whence")
	}
	if newPos < 0 {
		return 0, errors.New("wavcodec: negative seek position")
	}
	s.pos = newPos
	return newPos, nil
}
