package engine

import (
	"context"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/sirupsen/logrus"
)

// statusPollInterval bounds how stale control.CurrentIndex can get.
// Mailbox commands do not wait for it: they are handled as soon as the
// wake channel fires.
const statusPollInterval = 50 * time.Millisecond

// audioSink is the boundary around faiface/beep's process-global speaker
// package, so tests can swap in a sink that never touches a real audio
// device.
type audioSink interface {
	Init(rate beep.SampleRate) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

type realSink struct{}

func (realSink) Init(rate beep.SampleRate) error {
	return speaker.Init(rate, rate.N(time.Second/10))
}
func (realSink) Play(s beep.Streamer) { speaker.Play(s) }
func (realSink) Lock()                { speaker.Lock() }
func (realSink) Unlock()              { speaker.Unlock() }

// newAudioSink builds the sink a Player uses; overridden in tests.
var newAudioSink = func() audioSink { return realSink{} }

type mailboxCmd int

const (
	cmdNone mailboxCmd = iota
	cmdPause
	cmdResume
	cmdSkip
	cmdStop
)

// Player owns the audio sink. It runs on its own goroutine, the Go
// analogue of the dedicated OS thread the spec describes — the actual
// audio callback thread is owned internally by faiface/beep's speaker
// package, the way it was in the teacher's GoogleClassicTTSEngine.
type Player struct {
	control *Control
	queueB  <-chan Clip
	logger  *logrus.Entry

	mu        sync.Mutex
	latestCmd mailboxCmd
	wake      chan struct{}

	sink       audioSink
	qs         *clipQueueStreamer
	ctrl       *beep.Ctrl
	deviceRate beep.SampleRate
}

func newPlayer(control *Control, queueB <-chan Clip, logger *logrus.Entry) *Player {
	return &Player{
		control: control,
		queueB:  queueB,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		sink:    newAudioSink(),
	}
}

func (p *Player) post(cmd mailboxCmd) {
	p.mu.Lock()
	p.latestCmd = cmd
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Pause requests a pause; no-op unless currently playing.
func (p *Player) Pause() { p.post(cmdPause) }

// Resume requests a resume; no-op unless currently paused.
func (p *Player) Resume() { p.post(cmdResume) }

// Skip drops the currently playing clip.
func (p *Player) Skip() { p.post(cmdSkip) }

// Stop clears the sink and returns the player to Idle.
func (p *Player) Stop() { p.post(cmdStop) }

// Run is the Player's main loop. It exits when ctx is cancelled.
func (p *Player) Run(ctx context.Context) {
	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.wake:
			p.mu.Lock()
			cmd := p.latestCmd
			p.latestCmd = cmdNone
			p.mu.Unlock()
			p.handleCmd(cmd)
		case clip, ok := <-p.queueB:
			if !ok {
				return
			}
			p.handleClip(clip)
		case <-ticker.C:
			p.syncStatus()
		}
	}
}

func (p *Player) handleCmd(cmd mailboxCmd) {
	switch cmd {
	case cmdPause:
		if p.ctrl != nil && p.control.State() == StatePlaying {
			p.sink.Lock()
			p.ctrl.Paused = true
			p.sink.Unlock()
			p.control.SetState(StatePaused)
		}
	case cmdResume:
		if p.ctrl != nil && p.control.State() == StatePaused {
			p.sink.Lock()
			p.ctrl.Paused = false
			p.sink.Unlock()
			p.control.SetState(StatePlaying)
		}
	case cmdSkip:
		if p.qs != nil {
			p.qs.Skip()
		}
	case cmdStop:
		if p.qs != nil {
			p.qs.Clear()
		}
		if p.ctrl != nil {
			p.sink.Lock()
			p.ctrl.Paused = false
			p.sink.Unlock()
		}
		p.control.SetQueueLength(0)
		p.control.SetCurrentIndex(nil)
		p.control.SetState(StateIdle)
	}
}

func (p *Player) handleClip(clip Clip) {
	if clip.Epoch != p.control.Epoch() {
		p.control.DecrementQueueLength()
		return
	}

	if p.qs == nil {
		if err := p.initSink(clip.SampleRate); err != nil {
			p.logger.WithError(err).Error("failed to initialize audio sink")
			p.control.SetLastError("audio sink initialization failed: " + err.Error())
			p.control.SetState(StateIdle)
			p.control.DecrementQueueLength()
			return
		}
	}

	var stream beep.Streamer = newPCMStreamer(clip.Samples, clip.Channels)
	if rate := beep.SampleRate(clip.SampleRate); rate != p.deviceRate && rate > 0 {
		stream = effects.Resample(4, rate, p.deviceRate, stream)
	}

	p.qs.Enqueue(queuedClip{epoch: clip.Epoch, index: clip.Index, stream: stream})
	p.control.DecrementQueueLength()
	// currentIndex is not set here: it must only ever advance to reflect
	// what is actually sounding, which is reported by qs.Snapshot() in
	// syncStatus. Setting it on arrival would let a later-arriving clip's
	// index jump ahead of, then get rolled back behind, a still-playing
	// earlier one, violating the monotonically-non-decreasing invariant.
	if p.control.State() != StatePaused {
		p.control.SetState(StatePlaying)
	}
}

func (p *Player) initSink(sampleRate int) error {
	p.deviceRate = beep.SampleRate(sampleRate)
	if err := p.sink.Init(p.deviceRate); err != nil {
		return err
	}
	p.qs = newClipQueueStreamer()
	p.ctrl = &beep.Ctrl{Streamer: p.qs}
	p.sink.Play(p.ctrl)
	return nil
}

func (p *Player) syncStatus() {
	if p.qs == nil {
		return
	}
	epoch, index, playing, pending := p.qs.Snapshot()
	if playing && epoch == p.control.Epoch() {
		idx := index
		p.control.SetCurrentIndex(&idx)
		return
	}
	if !playing && pending == 0 && p.control.QueueLength() == 0 {
		if p.control.State() == StatePlaying {
			p.control.SetState(StateIdle)
			p.control.SetCurrentIndex(nil)
			p.control.SetTotal(0)
		}
	}
}
