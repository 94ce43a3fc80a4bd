package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"nayru/internal/textprep"
)

// queueACapacity and queueBCapacity are the bounded-queue sizes from
// spec.md §5; queueA is sized generously since Preparer dispatch for one
// utterance is a single burst, queueB is the ~4-clip playback lookahead.
const (
	queueACapacity = 256
	queueBCapacity = 4
)

// Engine is the façade spec.md §4.4 describes: the only thing callers
// (the HTTP API, the CLI) talk to.
type Engine struct {
	control *Control
	synth   *synthesizer
	player  *Player
	logger  *logrus.Entry

	queueA chan Chunk
	queueB chan Clip

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SpeakResult is returned synchronously from Speak; synthesis and
// playback continue in the background.
type SpeakResult struct {
	UtteranceID  string
	QueuedChunks int
	Total        int
}

// New builds an Engine and starts its Synthesizer workers and Player
// goroutine. Callers must call Close when done.
func New(cfg Config, logger *logrus.Logger) (*Engine, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	entry := logger.WithField("component", "engine")

	provider, err := NewProvider(cfg, entry)
	if err != nil {
		return nil, err
	}

	control := NewControl(cfg)
	queueA := make(chan Chunk, queueACapacity)
	queueB := make(chan Clip, queueBCapacity)

	e := &Engine{
		control: control,
		queueA:  queueA,
		queueB:  queueB,
		logger:  entry,
	}
	e.synth = newSynthesizer(control, provider, queueA, queueB, entry.WithField("stage", "synthesizer"))
	e.player = newPlayer(control, queueB, entry.WithField("stage", "player"))

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	e.wg.Add(2)
	go func() {
		defer e.wg.Done()
		e.synth.Start(ctx)
	}()
	go func() {
		defer e.wg.Done()
		e.player.Run(ctx)
	}()

	return e, nil
}

func validateConfig(cfg Config) error {
	if cfg.Speed != 0 && (cfg.Speed < 0.5 || cfg.Speed > 2.0) {
		return newError(CodeInvalidConfig, "speed %.2f out of range [0.5, 2.0]", cfg.Speed)
	}
	switch cfg.Provider {
	case "", "openai", "kokoro", "google", "mock":
	default:
		return newError(CodeInvalidConfig, "unknown provider %q", cfg.Provider)
	}
	return nil
}

// Speak cancels any in-flight utterance, prepares text into Chunks under
// a new epoch, and dispatches them to the Synthesizer. It returns as
// soon as chunks are queued, before any audio is produced (spec.md §4.4).
// voiceOverride, when non-empty, is used for this utterance only (spec.md
// §6's per-call `{text, voice?}`) and does not change the live config.
func (e *Engine) Speak(text, voiceOverride string) (SpeakResult, error) {
	if strings.TrimSpace(text) == "" {
		return SpeakResult{}, newError(CodeInvalidInput, "text must not be empty")
	}

	epoch := e.control.BumpEpoch()
	cfg := e.control.GetConfig()
	if voiceOverride != "" {
		cfg.Voice = voiceOverride
	}
	e.control.ClearLastError()

	utteranceID := uuid.NewString()
	log := e.logger.WithField("utterance_id", utteranceID)

	chunks := prepare(epoch, text, cfg, textprep.Config{
		CleanOptions: textprep.DefaultCleanOptions,
		MergeTarget:  textprep.DefaultConfig.MergeTarget,
		MergeMax:     textprep.DefaultConfig.MergeMax,
	})

	e.control.SetTotal(len(chunks))
	e.control.SetQueueLength(len(chunks))
	e.control.SetCurrentIndex(nil)
	if len(chunks) == 0 {
		e.control.SetState(StateIdle)
		log.Debug("speak produced no chunks")
		return SpeakResult{UtteranceID: utteranceID, QueuedChunks: 0, Total: 0}, nil
	}
	e.control.SetState(StateConverting)
	e.synth.noteDispatched(epoch, len(chunks))
	log.WithField("chunks", len(chunks)).Info("speak dispatched")

	go func() {
		for _, c := range chunks {
			e.queueA <- c
		}
	}()

	return SpeakResult{UtteranceID: utteranceID, QueuedChunks: len(chunks), Total: len(chunks)}, nil
}

// Stop cancels the current utterance: bumps the epoch so in-flight work
// is dropped at its next boundary check, clears the sink, and returns to
// Idle immediately.
func (e *Engine) Stop() {
	e.control.BumpEpoch()
	e.player.Stop()
	e.control.SetQueueLength(0)
	e.control.SetTotal(0)
	e.control.SetCurrentIndex(nil)
	e.control.SetState(StateIdle)
}

// Pause pauses playback; no-op if not currently playing.
func (e *Engine) Pause() { e.player.Pause() }

// Resume resumes playback; no-op if not currently paused.
func (e *Engine) Resume() { e.player.Resume() }

// Skip drops the currently playing clip and advances to the next.
func (e *Engine) Skip() { e.player.Skip() }

// Status returns a point-in-time snapshot for the /status endpoint.
func (e *Engine) Status() Snapshot { return e.control.Snapshot() }

// GetConfig returns the current runtime config.
func (e *Engine) GetConfig() Config { return e.control.GetConfig() }

// SetConfig merges patch fields (zero-valued fields in patch are left
// unchanged) into the live config. Validation applies to the merged
// result, not the patch in isolation.
func (e *Engine) SetConfig(patch Config) (Config, error) {
	cur := e.control.GetConfig()
	merged := mergeConfig(cur, patch)
	if err := validateConfig(merged); err != nil {
		return cur, err
	}
	e.control.SetConfig(merged)
	return merged, nil
}

func mergeConfig(base, patch Config) Config {
	out := base
	if patch.Provider != "" {
		out.Provider = patch.Provider
	}
	if patch.KokoroURL != "" {
		out.KokoroURL = patch.KokoroURL
	}
	if patch.APIKey != "" {
		out.APIKey = patch.APIKey
	}
	if patch.Voice != "" {
		out.Voice = patch.Voice
	}
	if patch.Speed != 0 {
		out.Speed = patch.Speed
	}
	if patch.HTTPAddr != "" {
		out.HTTPAddr = patch.HTTPAddr
	}
	if patch.LogLevel != "" {
		out.LogLevel = patch.LogLevel
	}
	if patch.GoogleCred != "" {
		out.GoogleCred = patch.GoogleCred
	}
	return out
}

// Close stops every background goroutine. The Engine is unusable after.
// queueA is deliberately left open rather than closed: a Speak dispatch
// goroutine may still be sending to it concurrently, and ctx cancellation
// alone is enough for every worker select to return.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
}
