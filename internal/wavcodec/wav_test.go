package wavcodec

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	samples := make([]int16, 100)
	for i := range samples {
		samples[i] = int16(i * 10)
	}
	pcm := PCM{SampleRate: 24000, Channels: 1, Samples: samples}

	data, err := Encode(pcm)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Fatalf("missing RIFF header")
	}

	got, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SampleRate != 24000 {
		t.Fatalf("sample rate mismatch: %d", got.SampleRate)
	}
	if got.Channels != 1 {
		t.Fatalf("channel mismatch: %d", got.Channels)
	}
	if len(got.Samples) != len(samples) {
		t.Fatalf("sample count mismatch: got %d want %d", len(got.Samples), len(samples))
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a wav file at all")))
	if err == nil {
		t.Fatalf("expected error decoding garbage input")
	}
}

func TestDecodeStereo16kHz(t *testing.T) {
	samples := make([]int16, 200)
	pcm := PCM{SampleRate: 16000, Channels: 2, Samples: samples}
	data, err := Encode(pcm)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SampleRate != 16000 || got.Channels != 2 {
		t.Fatalf("unexpected format: %+v", got)
	}
}
