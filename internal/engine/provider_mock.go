package engine

import "context"

// mockProvider is the provider=mock Synthesizer used by tests and by a
// server configured with `provider: mock` (config key or NAYRU_PROVIDER):
// it returns deterministic silence sized
// to the chunk's text length instead of calling an upstream server.
type mockProvider struct {
	sampleRate int
}

func newMockProvider() *mockProvider {
	return &mockProvider{sampleRate: 24000}
}

func (p *mockProvider) Synthesize(ctx context.Context, chunk Chunk) (Clip, error) {
	// 6ms of audio per character, floored at 200ms, so chunk
	// order and timing stay observable in tests without real audio.
	ms := len(chunk.Text) * 6
	if ms < 200 {
		ms = 200
	}
	n := p.sampleRate * ms / 1000
	return Clip{
		Epoch:      chunk.Epoch,
		Index:      chunk.Index,
		SampleRate: p.sampleRate,
		Channels:   1,
		Samples:    make([]int16, n),
	}, nil
}
