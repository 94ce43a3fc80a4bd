package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// NewProvider builds the Synthesizer a Config selects, mirroring the
// platform-auto-selection dispatcher in the teacher's tts.NewEngine but
// keyed on an explicit provider name rather than OS detection (design
// note §9).
func NewProvider(cfg Config, logger *logrus.Entry) (Synthesizer, error) {
	switch cfg.Provider {
	case "", "openai", "kokoro":
		return newOpenAIProvider(cfg)
	case "google":
		return newGoogleProvider(cfg)
	case "mock":
		return newMockProvider(), nil
	default:
		return nil, newError(CodeInvalidConfig, "unknown provider %q", cfg.Provider)
	}
}

// upstreamTimeout is the hard per-request ceiling spec.md §5 places on a
// single upstream synthesis call, independent of the retry/backoff policy.
const upstreamTimeout = 30 * time.Second

// synthesizeWithRetry wraps a single provider call with the retry/backoff
// policy from spec.md §4.2: up to two retries on transient failures,
// none on 4xx or malformed-payload failures. Each attempt is bounded by
// upstreamTimeout regardless of the caller's own ctx deadline.
func synthesizeWithRetry(ctx context.Context, p Synthesizer, chunk Chunk) (Clip, error) {
	backoffs := []time.Duration{200 * time.Millisecond, 400 * time.Millisecond}

	for attempt := 0; ; attempt++ {
		clip, err := synthesizeOnce(ctx, p, chunk)
		if err == nil {
			return clip, nil
		}

		transient := false
		if e, ok := err.(*upstreamError); ok {
			transient = e.transient
		}
		if !transient || attempt >= len(backoffs) {
			return Clip{}, newError(CodeUpstream, "chunk %d: %s", chunk.Index, err.Error())
		}

		select {
		case <-ctx.Done():
			return Clip{}, ctx.Err()
		case <-time.After(backoffs[attempt]):
		}
	}
}

func synthesizeOnce(ctx context.Context, p Synthesizer, chunk Chunk) (Clip, error) {
	ctx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()
	return p.Synthesize(ctx, chunk)
}
