// Package engine implements the Nayru TTS pipeline: Preparer, Synthesizer,
// and Player stages linked by bounded queues around a shared Control block
// (spec.md §2–§5).
package engine

import "context"

// Chunk is one synthesizable unit, emitted by the Preparer and consumed by
// the Synthesizer (spec.md §3).
type Chunk struct {
	Epoch uint64
	Index int
	Text  string
	Voice string
	Speed float32
}

// Clip is decoded PCM for one Chunk, produced by the Synthesizer and
// consumed by the Player (spec.md §3).
type Clip struct {
	Epoch      uint64
	Index      int
	SampleRate int
	Channels   int
	Samples    []int16
}

// Synthesizer is the capability every upstream TTS provider implements
// (design note §9: "dynamic dispatch on upstream provider").
type Synthesizer interface {
	Synthesize(ctx context.Context, chunk Chunk) (Clip, error)
}
