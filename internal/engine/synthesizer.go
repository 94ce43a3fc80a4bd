package engine

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// prefetchDepth bounds how many chunks the worker pool fetches concurrently
// (spec.md §5, PREFETCH_DEPTH).
const prefetchDepth = 2

// synthesizer runs a small worker pool over queueA, decodes upstream
// responses into Clips, and re-orders them back onto queueB so the
// Player always sees strictly ascending indices per epoch even though
// fetches complete out of order.
type synthesizer struct {
	control  *Control
	provider Synthesizer
	queueA   chan Chunk
	queueB   chan<- Clip
	logger   *logrus.Entry

	mu      sync.Mutex
	pending map[uint64]map[int]Clip
	next    map[uint64]int
	stats   map[uint64]*epochStats
}

type epochStats struct {
	total, done, failed int
}

func newSynthesizer(control *Control, provider Synthesizer, queueA chan Chunk, queueB chan<- Clip, logger *logrus.Entry) *synthesizer {
	return &synthesizer{
		control:  control,
		provider: provider,
		queueA:   queueA,
		queueB:   queueB,
		logger:   logger,
		pending:  make(map[uint64]map[int]Clip),
		next:     make(map[uint64]int),
		stats:    make(map[uint64]*epochStats),
	}
}

// Start launches the worker pool (PREFETCH_DEPTH workers bounded via
// errgroup.SetLimit, the way the teacher pack's video-genie job queue
// bounds concurrent work); it returns once ctx is cancelled.
func (s *synthesizer) Start(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchDepth)
	for i := 0; i < prefetchDepth; i++ {
		g.Go(func() error {
			s.worker(gctx)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *synthesizer) noteDispatched(epoch uint64, total int) {
	s.mu.Lock()
	s.stats[epoch] = &epochStats{total: total}
	s.mu.Unlock()
}

func (s *synthesizer) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-s.queueA:
			if !ok {
				return
			}
			s.process(ctx, chunk)
		}
	}
}

func (s *synthesizer) process(ctx context.Context, chunk Chunk) {
	if chunk.Epoch != s.control.Epoch() {
		s.control.DecrementQueueLength()
		return
	}

	clip, err := synthesizeWithRetry(ctx, s.provider, chunk)

	s.mu.Lock()
	st := s.stats[chunk.Epoch]
	s.mu.Unlock()

	if err != nil {
		s.logger.WithError(err).WithField("index", chunk.Index).Warn("chunk synthesis failed")
		s.control.DecrementQueueLength()
		s.recordOutcome(chunk.Epoch, st, false)
		return
	}

	if chunk.Epoch != s.control.Epoch() {
		s.control.DecrementQueueLength()
		return
	}

	s.recordOutcome(chunk.Epoch, st, true)
	s.emitInOrder(chunk.Epoch, chunk.Index, clip)
}

func (s *synthesizer) recordOutcome(epoch uint64, st *epochStats, success bool) {
	if st == nil {
		return
	}
	s.mu.Lock()
	if success {
		st.done++
	} else {
		st.failed++
	}
	complete := st.done+st.failed >= st.total
	allFailed := complete && st.done == 0 && st.total > 0
	s.mu.Unlock()

	if allFailed && epoch == s.control.Epoch() {
		s.control.SetLastError("all chunks failed for this utterance")
		s.control.SetState(StateIdle)
		s.control.SetCurrentIndex(nil)
	}
}

// emitInOrder parks clip until every lower index for its epoch has been
// sent, then drains as many contiguous indices as are ready. Sending to
// queueB while holding mu is intentional: it is the implicit backpressure
// that keeps Stage 2 from racing more than len(queueB) clips ahead of
// playback (spec.md §5).
func (s *synthesizer) emitInOrder(epoch uint64, index int, clip Clip) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending[epoch] == nil {
		s.pending[epoch] = make(map[int]Clip)
	}
	s.pending[epoch][index] = clip

	for {
		want := s.next[epoch]
		c, ok := s.pending[epoch][want]
		if !ok {
			return
		}
		delete(s.pending[epoch], want)
		s.next[epoch] = want + 1
		s.queueB <- c
	}
}
