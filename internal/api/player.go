package api

import (
	"net/http"

	"github.com/samber/lo"

	"github.com/satindergrewal/cadence/internal/catalog"
	"github.com/satindergrewal/cadence/internal/player"
)

// playerView is the player status filtered through the live feature set.
type playerView struct {
	State      player.State   `json:"state"`
	Track      *catalog.Track `json:"track,omitempty"`
	ElapsedMs  int64          `json:"elapsed_ms"`
	Elapsed    string         `json:"elapsed"`
	Duration   string         `json:"duration,omitempty"`
	Progress   float64        `json:"progress"`
	QueueLen   int            `json:"queue_len"`
	LyricIndex *int           `json:"lyric_index,omitempty"`
	ShowAds    bool           `json:"show_ads"`
}

func (s *Server) view() playerView {
	return s.viewOf(s.engine.Status())
}

// feedView projects snapshots for the SSE and WebRTC feeds.
func (s *Server) feedView(snap player.Snapshot) any {
	return s.viewOf(snap)
}

// viewOf strips what the live tier does not unlock: lyrics and the lyric
// index without lyrics, the video reference without video.
func (s *Server) viewOf(snap player.Snapshot) playerView {
	feats := s.session.Features()

	v := playerView{
		State:     snap.State,
		ElapsedMs: snap.ElapsedMs,
		Elapsed:   catalog.FormatTime(int(snap.ElapsedMs / 1000)),
		QueueLen:  snap.QueueLen,
		ShowAds:   feats.Ads,
	}
	v.Progress, _ = snap.Progress()

	if snap.Track != nil {
		t := *snap.Track
		v.Duration = catalog.FormatTime(t.Duration)
		if feats.Lyrics {
			v.LyricIndex = lo.ToPtr(catalog.LyricIndex(t.Lyrics, snap.ElapsedMs))
		} else {
			t.Lyrics = nil
		}
		if !feats.Video {
			t.VideoURL = ""
		}
		v.Track = &t
	}
	return v
}

func (s *Server) writePlayer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) playerStatus(w http.ResponseWriter, r *http.Request) {
	s.writePlayer(w, r)
}

// playerOp adapts a no-argument engine operation to a handler.
func (s *Server) playerOp(op func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op()
		s.writePlayer(w, r)
	}
}

type playRequest struct {
	TrackID string   `json:"track_id"`
	Queue   []string `json:"queue,omitempty"` // optional: replaces the queue first
}

func (s *Server) playerPlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if !decode(w, r, &req) {
		return
	}
	t, ok := s.catalog.Lookup(req.TrackID)
	if !ok {
		writeError(w, http.StatusNotFound, "track not found")
		return
	}
	if len(req.Queue) > 0 {
		s.engine.SetQueue(s.catalog.Resolve(catalog.Playlist{SongIDs: req.Queue}))
	}
	s.engine.Play(t)
	s.writePlayer(w, r)
}

type seekRequest struct {
	PositionMs int64 `json:"position_ms"`
}

func (s *Server) playerSeek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if !decode(w, r, &req) {
		return
	}
	s.engine.Seek(req.PositionMs)
	s.writePlayer(w, r)
}
