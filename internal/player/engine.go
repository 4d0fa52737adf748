// Package player is the simulated playback engine: a current track, a queue
// and an elapsed-time clock that only runs while playing.
package player

import (
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/satindergrewal/cadence/internal/catalog"
)

// Engine owns the playback state. Every method is total: missing tracks or
// an empty queue make an operation a no-op, never an error.
type Engine struct {
	clock   clockwork.Clock
	log     *zap.Logger
	updates chan Snapshot

	mu        sync.Mutex
	state     State
	current   *catalog.Track
	elapsedMs int64
	queue     []catalog.Track
	closed    bool

	// tick handle: at most one live ticker, owned here
	ticker clockwork.Ticker
	stopCh chan struct{}
	gen    uint64 // bumped on every start/stop; ticks from older generations are dropped
}

// NewEngine creates an idle engine. A nil clock means the wall clock.
func NewEngine(clock clockwork.Clock, log *zap.Logger) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		clock:   clock,
		log:     log,
		updates: make(chan Snapshot, updateBuffer),
	}
}

// Updates delivers a snapshot after every state change. Snapshots are
// dropped while the buffer is full. Closed by Close.
func (e *Engine) Updates() <-chan Snapshot {
	return e.updates
}

// Status returns current playback info.
func (e *Engine) Status() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Queue returns a copy of the queue.
func (e *Engine) Queue() []catalog.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]catalog.Track, len(e.queue))
	copy(out, e.queue)
	return out
}

// Play loads t, rewinds to 0 and starts playing, whatever the prior state.
func (e *Engine) Play(t catalog.Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.playLocked(t)
	e.publishLocked()
}

// TogglePlay flips playing and paused. No-op without a current track.
func (e *Engine) TogglePlay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.current == nil {
		return
	}
	if e.state == Playing {
		e.state = Paused
		e.stopTickerLocked()
	} else {
		e.state = Playing
		e.startTickerLocked()
	}
	e.publishLocked()
}

// SetQueue replaces the queue. Current track and state are left alone.
func (e *Engine) SetQueue(tracks []catalog.Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.queue = make([]catalog.Track, len(tracks))
	copy(e.queue, tracks)
	e.publishLocked()
}

// Seek sets elapsed time, clamped to [0, duration]. No-op without a current track.
func (e *Engine) Seek(targetMs int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.current == nil {
		return
	}
	e.elapsedMs = min(max(targetMs, 0), e.current.DurationMs())
	e.publishLocked()
}

// Next plays the queue entry after the current track, wrapping to the start.
func (e *Engine) Next() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if e.stepQueueLocked(1) {
		e.publishLocked()
	}
}

// Prev plays the queue entry before the current track, wrapping to the end.
func (e *Engine) Prev() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if e.stepQueueLocked(-1) {
		e.publishLocked()
	}
}

// Stop unloads the current track and cancels the clock. The queue is kept.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.stopLocked()
	e.publishLocked()
}

// Close stops playback for good and closes the updates channel.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.stopLocked()
	e.closed = true
	close(e.updates)
}

func (e *Engine) stopLocked() {
	e.stopTickerLocked()
	e.state = Idle
	e.current = nil
	e.elapsedMs = 0
}

func (e *Engine) playLocked(t catalog.Track) {
	e.current = &t
	e.elapsedMs = 0
	e.state = Playing
	e.startTickerLocked()
	e.log.Debug("now playing", zap.String("track_id", t.ID), zap.String("title", t.Title))
}

// stepQueueLocked moves dir positions through the queue with wraparound.
// Returns false if there is no current track or it is not in the queue.
func (e *Engine) stepQueueLocked(dir int) bool {
	if e.current == nil || len(e.queue) == 0 {
		return false
	}
	id := e.current.ID
	_, idx, ok := lo.FindIndexOf(e.queue, func(t catalog.Track) bool { return t.ID == id })
	if !ok {
		return false
	}
	n := len(e.queue)
	e.playLocked(e.queue[((idx+dir)%n+n)%n])
	return true
}

// stepLocked advances the clock by one tick. Reaching the end of the track
// moves to the next queue entry and rewinds to 0 in the same step.
func (e *Engine) stepLocked() {
	if e.state != Playing || e.current == nil {
		return
	}
	elapsed := e.elapsedMs + TickStepMs
	if elapsed >= e.current.DurationMs() {
		e.stepQueueLocked(1)
		e.elapsedMs = 0
		return
	}
	e.elapsedMs = elapsed
}

func (e *Engine) startTickerLocked() {
	e.stopTickerLocked()
	e.gen++
	e.ticker = e.clock.NewTicker(TickInterval)
	e.stopCh = make(chan struct{})
	go e.runTicker(e.gen, e.ticker, e.stopCh)
}

// stopTickerLocked cancels the live ticker. Once it returns no tick from
// that ticker can change state, even one already delivered.
func (e *Engine) stopTickerLocked() {
	if e.ticker == nil {
		return
	}
	e.ticker.Stop()
	close(e.stopCh)
	e.ticker = nil
	e.stopCh = nil
	e.gen++
}

func (e *Engine) runTicker(gen uint64, ticker clockwork.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			e.onTick(gen)
		}
	}
}

func (e *Engine) onTick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || e.closed {
		return
	}
	e.stepLocked()
	e.publishLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	s := Snapshot{
		State:     e.state,
		ElapsedMs: e.elapsedMs,
		QueueLen:  len(e.queue),
	}
	if e.current != nil {
		t := *e.current
		s.Track = &t
	}
	return s
}

func (e *Engine) publishLocked() {
	select {
	case e.updates <- e.snapshotLocked():
	default:
	}
}
