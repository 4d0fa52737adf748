package player

import (
	"fmt"
	"time"

	"github.com/satindergrewal/cadence/internal/catalog"
)

const (
	TickInterval = time.Second
	TickStepMs   = int64(TickInterval / time.Millisecond) // elapsed time added per tick
	updateBuffer = 64                                     // snapshots held for a slow reader
)

// State is the playback state.
type State int

const (
	Idle State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a point-in-time copy of the engine state.
type Snapshot struct {
	State     State          `json:"state"`
	Track     *catalog.Track `json:"track,omitempty"`
	ElapsedMs int64          `json:"elapsed_ms"`
	QueueLen  int            `json:"queue_len"`
}

// Progress is elapsed / duration. ok is false when no track is loaded.
func (s Snapshot) Progress() (fraction float64, ok bool) {
	if s.Track == nil || s.Track.DurationMs() <= 0 {
		return 0, false
	}
	return float64(s.ElapsedMs) / float64(s.Track.DurationMs()), true
}
