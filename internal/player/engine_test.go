package player

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap/zaptest"

	"github.com/satindergrewal/cadence/internal/catalog"
)

var (
	trackA = catalog.Track{ID: "a", Title: "A", Duration: 3}
	trackB = catalog.Track{ID: "b", Title: "B", Duration: 10}
	trackC = catalog.Track{ID: "c", Title: "C", Duration: 210}
	trackX = catalog.Track{ID: "x", Title: "Not queued", Duration: 60}
)

func newTestEngine(t *testing.T) (*Engine, *clockwork.FakeClock) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	e := NewEngine(fc, zaptest.NewLogger(t))
	t.Cleanup(e.Close)
	return e, fc
}

// step runs one clock tick synchronously.
func step(e *Engine) {
	e.mu.Lock()
	e.stepLocked()
	e.mu.Unlock()
}

func currentID(e *Engine) string {
	s := e.Status()
	if s.Track == nil {
		return ""
	}
	return s.Track.ID
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// --- State transitions ---

func TestNewEngineIsIdle(t *testing.T) {
	e, _ := newTestEngine(t)
	s := e.Status()
	if s.State != Idle || s.Track != nil || s.ElapsedMs != 0 {
		t.Errorf("initial status = %+v, want idle", s)
	}
	if _, ok := s.Progress(); ok {
		t.Error("Progress computed with no current track")
	}
}

func TestPlayResetsElapsed(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Play(trackC)
	e.Seek(50_000)
	e.TogglePlay() // paused

	e.Play(trackC)
	s := e.Status()
	if s.State != Playing || s.ElapsedMs != 0 || s.Track.ID != "c" {
		t.Errorf("after Play: %+v, want playing c at 0", s)
	}
}

func TestTogglePlay(t *testing.T) {
	e, _ := newTestEngine(t)

	e.TogglePlay()
	if s := e.Status(); s.State != Idle {
		t.Errorf("TogglePlay without track changed state to %v", s.State)
	}

	e.Play(trackA)
	e.TogglePlay()
	if s := e.Status(); s.State != Paused {
		t.Errorf("first toggle: %v, want paused", s.State)
	}
	e.TogglePlay()
	if s := e.Status(); s.State != Playing {
		t.Errorf("second toggle: %v, want playing", s.State)
	}
}

func TestSetQueueKeepsPlayback(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Play(trackX)
	e.TogglePlay()

	src := []catalog.Track{trackA, trackB}
	e.SetQueue(src)
	src[0] = trackC

	s := e.Status()
	if s.State != Paused || s.Track.ID != "x" {
		t.Errorf("SetQueue changed playback: %+v", s)
	}
	q := e.Queue()
	if len(q) != 2 || q[0].ID != "a" {
		t.Errorf("queue = %v, want independent copy [a b]", q)
	}
}

func TestSeekClamps(t *testing.T) {
	e, _ := newTestEngine(t)

	e.Seek(5000)
	if s := e.Status(); s.ElapsedMs != 0 {
		t.Errorf("Seek without track set elapsed to %d", s.ElapsedMs)
	}

	e.Play(trackC) // 210s
	tests := []struct {
		target int64
		want   int64
	}{
		{-1, 0},
		{0, 0},
		{12_345, 12_345},
		{210_000, 210_000},
		{999_999, 210_000},
	}
	for _, tt := range tests {
		e.Seek(tt.target)
		if got := e.Status().ElapsedMs; got != tt.want {
			t.Errorf("Seek(%d) -> %d, want %d", tt.target, got, tt.want)
		}
	}
}

func TestStop(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetQueue([]catalog.Track{trackA})
	e.Play(trackA)
	e.Stop()

	s := e.Status()
	if s.State != Idle || s.Track != nil || s.ElapsedMs != 0 {
		t.Errorf("after Stop: %+v", s)
	}
	if s.QueueLen != 1 {
		t.Errorf("Stop dropped the queue")
	}
	e.mu.Lock()
	live := e.ticker != nil
	e.mu.Unlock()
	if live {
		t.Error("ticker still live after Stop")
	}
}

// --- Queue navigation ---

func TestNextPrevWraparound(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetQueue([]catalog.Track{trackA, trackB, trackC})

	e.Play(trackC)
	e.Next()
	if got := currentID(e); got != "a" {
		t.Errorf("Next from last = %q, want a", got)
	}
	e.Prev()
	if got := currentID(e); got != "c" {
		t.Errorf("Prev from first = %q, want c", got)
	}
	e.Prev()
	if got := currentID(e); got != "b" {
		t.Errorf("Prev = %q, want b", got)
	}
}

func TestNextPrevCycle(t *testing.T) {
	queue := []catalog.Track{trackA, trackB, trackC, trackX}
	for _, dir := range []string{"next", "prev"} {
		for _, start := range queue {
			e, _ := newTestEngine(t)
			e.SetQueue(queue)
			e.Play(start)
			for i := 0; i < len(queue); i++ {
				if dir == "next" {
					e.Next()
				} else {
					e.Prev()
				}
			}
			if got := currentID(e); got != start.ID {
				t.Errorf("%s x%d from %q ended on %q", dir, len(queue), start.ID, got)
			}
		}
	}
}

func TestNextPrevNoOps(t *testing.T) {
	e, _ := newTestEngine(t)

	e.Next()
	e.Prev()
	if e.Status().Track != nil {
		t.Error("Next/Prev without a track loaded something")
	}

	e.Play(trackX)
	e.Seek(7000)
	e.Next() // empty queue
	if s := e.Status(); s.Track.ID != "x" || s.ElapsedMs != 7000 {
		t.Errorf("Next with empty queue changed state: %+v", s)
	}

	e.SetQueue([]catalog.Track{trackA, trackB})
	e.Prev() // current not in queue
	if s := e.Status(); s.Track.ID != "x" || s.ElapsedMs != 7000 {
		t.Errorf("Prev with current absent from queue changed state: %+v", s)
	}
}

// --- Clock ---

func TestTickAdvancesAndAutoNext(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetQueue([]catalog.Track{trackA, trackB})
	e.Play(trackA) // 3s

	step(e)
	step(e)
	if s := e.Status(); s.Track.ID != "a" || s.ElapsedMs != 2000 {
		t.Fatalf("after 2 ticks: %+v, want a at 2000", s)
	}

	step(e)
	s := e.Status()
	if s.Track.ID != "b" {
		t.Errorf("after 3 ticks on a 3s track current = %q, want b", s.Track.ID)
	}
	if s.ElapsedMs != 0 {
		t.Errorf("elapsed after auto-advance = %d, want 0", s.ElapsedMs)
	}
	if s.State != Playing {
		t.Errorf("state after auto-advance = %v, want playing", s.State)
	}
}

func TestTickWithoutQueueRestartsTrack(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Play(trackA)
	for i := 0; i < 3; i++ {
		step(e)
	}
	if s := e.Status(); s.Track.ID != "a" || s.ElapsedMs != 0 || s.State != Playing {
		t.Errorf("end of track with no queue: %+v, want a rewound", s)
	}
}

func TestTickIgnoredWhenPaused(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Play(trackB)
	step(e)
	e.TogglePlay()
	step(e)
	step(e)
	if got := e.Status().ElapsedMs; got != 1000 {
		t.Errorf("elapsed = %d after pausing at 1000", got)
	}
}

func TestTickerDrivesClock(t *testing.T) {
	e, fc := newTestEngine(t)
	e.Play(trackB)

	fc.Advance(TickInterval)
	waitFor(t, "first tick", func() bool { return e.Status().ElapsedMs == 1000 })

	fc.Advance(TickInterval)
	waitFor(t, "second tick", func() bool { return e.Status().ElapsedMs == 2000 })
}

func TestPauseCancelsTicker(t *testing.T) {
	e, fc := newTestEngine(t)
	e.Play(trackB)
	fc.Advance(TickInterval)
	waitFor(t, "first tick", func() bool { return e.Status().ElapsedMs == 1000 })

	e.TogglePlay()
	e.mu.Lock()
	live := e.ticker != nil
	e.mu.Unlock()
	if live {
		t.Fatal("ticker still live after pause")
	}

	for i := 0; i < 5; i++ {
		fc.Advance(TickInterval)
	}
	time.Sleep(20 * time.Millisecond)
	if got := e.Status().ElapsedMs; got != 1000 {
		t.Errorf("elapsed moved to %d while paused", got)
	}

	e.TogglePlay()
	fc.Advance(TickInterval)
	waitFor(t, "tick after resume", func() bool { return e.Status().ElapsedMs == 2000 })
}

func TestStaleTickDropped(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Play(trackB)

	e.mu.Lock()
	oldGen := e.gen
	e.mu.Unlock()

	e.Play(trackC) // replaces the tick handle
	e.onTick(oldGen)
	if got := e.Status().ElapsedMs; got != 0 {
		t.Errorf("tick from replaced handle advanced elapsed to %d", got)
	}

	e.mu.Lock()
	cur := e.gen
	e.mu.Unlock()
	e.onTick(cur)
	if got := e.Status().ElapsedMs; got != 1000 {
		t.Errorf("tick from live handle: elapsed = %d, want 1000", got)
	}
}

// --- Snapshots ---

func TestProgress(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Play(trackC)
	e.Seek(105_000)
	p, ok := e.Status().Progress()
	if !ok || p != 0.5 {
		t.Errorf("Progress = %v, %v, want 0.5, true", p, ok)
	}
}

func TestUpdatesPublished(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Play(trackA)
	select {
	case s := <-e.Updates():
		if s.State != Playing || s.Track == nil || s.Track.ID != "a" {
			t.Errorf("update = %+v, want playing a", s)
		}
	case <-time.After(time.Second):
		t.Fatal("no update after Play")
	}
}

func TestUpdatesDropWhenFull(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Play(trackC)
	for i := 0; i < updateBuffer*2; i++ {
		e.Seek(int64(i))
	}
	if got := len(e.Updates()); got != updateBuffer {
		t.Errorf("buffered updates = %d, want %d", got, updateBuffer)
	}
}

func TestCloseStopsEverything(t *testing.T) {
	e, fc := newTestEngine(t)
	e.Play(trackB)
	e.Close()
	e.Close()

	e.Play(trackA)
	fc.Advance(TickInterval)
	time.Sleep(20 * time.Millisecond)
	if s := e.Status(); s.Track != nil || s.State != Idle {
		t.Errorf("engine changed after Close: %+v", s)
	}

	// drain, then the channel must be closed
	for range e.Updates() {
	}
}

func TestStateText(t *testing.T) {
	tests := map[State]string{Idle: "idle", Playing: "playing", Paused: "paused", State(9): "State(9)"}
	for s, want := range tests {
		b, _ := s.MarshalText()
		if string(b) != want {
			t.Errorf("MarshalText(%d) = %q, want %q", int(s), b, want)
		}
	}
}
