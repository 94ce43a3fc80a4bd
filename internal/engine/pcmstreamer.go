package engine

import (
	"sync"

	"github.com/faiface/beep"
)

// pcmStreamer adapts interleaved int16 PCM (as decoded by wavcodec) into a
// beep.Streamer, the way the teacher's GoogleClassicTTSEngine adapts an
// mp3.Decode stream for speaker.Play.
type pcmStreamer struct {
	samples  []int16
	channels int
	pos      int // frame index, i.e. samples[pos*channels:]
}

func newPCMStreamer(samples []int16, channels int) *pcmStreamer {
	if channels < 1 {
		channels = 1
	}
	return &pcmStreamer{samples: samples, channels: channels}
}

func (p *pcmStreamer) Stream(out [][2]float64) (n int, ok bool) {
	for n < len(out) {
		idx := p.pos * p.channels
		if idx >= len(p.samples) {
			break
		}
		left := float64(p.samples[idx]) / 32768.0
		right := left
		if p.channels >= 2 && idx+1 < len(p.samples) {
			right = float64(p.samples[idx+1]) / 32768.0
		}
		out[n] = [2]float64{left, right}
		p.pos++
		n++
	}
	return n, n > 0
}

func (p *pcmStreamer) Err() error { return nil }

// clipQueueStreamer is the persistent gapless sink the Player feeds
// decoded Clips into. It is played exactly once via speaker.Play, when
// the first Clip arrives, and wrapped in a beep.Ctrl for pause/resume; Skip/Clear give
// the mailbox a way to reach into it without tearing down the sink
// (spec.md §4.3, "rodio-style sink").
type clipQueueStreamer struct {
	mu       sync.Mutex
	items    []queuedClip
	current  *queuedClip
	skipOnce bool
}

type queuedClip struct {
	epoch  uint64
	index  int
	stream beep.Streamer
}

func newClipQueueStreamer() *clipQueueStreamer {
	return &clipQueueStreamer{}
}

func (q *clipQueueStreamer) Enqueue(qc queuedClip) {
	q.mu.Lock()
	q.items = append(q.items, qc)
	q.mu.Unlock()
}

// Skip drops whatever is currently playing and advances to the next
// queued clip (no-op if nothing is playing).
func (q *clipQueueStreamer) Skip() {
	q.mu.Lock()
	q.skipOnce = true
	q.mu.Unlock()
}

// Clear discards every queued and in-flight clip, used by Stop.
func (q *clipQueueStreamer) Clear() {
	q.mu.Lock()
	q.items = nil
	q.current = nil
	q.skipOnce = false
	q.mu.Unlock()
}

// Snapshot reports what is currently playing, for the Player's periodic
// status sync.
func (q *clipQueueStreamer) Snapshot() (epoch uint64, index int, playing bool, pending int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current != nil {
		return q.current.epoch, q.current.index, true, len(q.items)
	}
	return 0, 0, false, len(q.items)
}

// Stream implements beep.Streamer. It never reports ok=false: with
// nothing queued it emits silence, keeping the sink alive indefinitely
// so the Player never has to re-init the audio device between clips.
func (q *clipQueueStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for n < len(samples) {
		if q.skipOnce {
			q.current = nil
			q.skipOnce = false
		}
		if q.current == nil {
			if len(q.items) == 0 {
				break
			}
			next := q.items[0]
			q.items = q.items[1:]
			q.current = &next
		}

		written, more := q.current.stream.Stream(samples[n:])
		n += written
		if !more {
			q.current = nil
		}
		if written == 0 && more {
			break
		}
	}

	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{0, 0}
	}
	return len(samples), true
}

func (q *clipQueueStreamer) Err() error { return nil }
