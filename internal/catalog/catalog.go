// Package catalog holds the session's immutable track list and the playlist records that point into it.
package catalog

import (
	"fmt"

	"github.com/samber/lo"
)

// LyricLine is one timed lyric, Time in whole seconds from track start.
type LyricLine struct {
	Time int    `yaml:"time" json:"time"`
	Text string `yaml:"text" json:"text"`
}

// Track is a playable catalog item.
type Track struct {
	ID       string      `yaml:"id" json:"id"`
	Title    string      `yaml:"title" json:"title"`
	Artist   string      `yaml:"artist" json:"artist"`
	Album    string      `yaml:"album" json:"album"`
	Duration int         `yaml:"duration" json:"duration"` // seconds
	Artwork  string      `yaml:"artwork" json:"artwork"`
	Lyrics   []LyricLine `yaml:"lyrics,omitempty" json:"lyrics,omitempty"`
	VideoURL string      `yaml:"video_url,omitempty" json:"video_url,omitempty"`
}

// DurationMs is the track length in milliseconds.
func (t Track) DurationMs() int64 {
	return int64(t.Duration) * 1000
}

// Playlist is an ordered list of track ids. Ids are not checked against the catalog.
type Playlist struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Artwork     string   `yaml:"artwork" json:"artwork"`
	SongIDs     []string `yaml:"song_ids" json:"song_ids"`
}

// Announcement is a news item shown on the browse view.
type Announcement struct {
	ID      string `yaml:"id" json:"id"`
	Title   string `yaml:"title" json:"title"`
	Content string `yaml:"content" json:"content"`
	Date    string `yaml:"date" json:"date"`
}

// Catalog is the full set of tracks, loaded once and never mutated.
type Catalog struct {
	tracks []Track
	byID   map[string]int
}

// New validates tracks and builds a catalog from a private copy of them.
func New(tracks []Track) (*Catalog, error) {
	c := &Catalog{
		tracks: make([]Track, len(tracks)),
		byID:   make(map[string]int, len(tracks)),
	}
	copy(c.tracks, tracks)

	for i, t := range c.tracks {
		if t.ID == "" {
			return nil, fmt.Errorf("track %d: empty id", i)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate track id %q", t.ID)
		}
		if t.Duration <= 0 {
			return nil, fmt.Errorf("track %q: duration must be > 0, got %d", t.ID, t.Duration)
		}
		for _, l := range t.Lyrics {
			if l.Time < 0 {
				return nil, fmt.Errorf("track %q: negative lyric offset %d", t.ID, l.Time)
			}
		}
		c.byID[t.ID] = i
	}
	return c, nil
}

// Tracks returns the catalog in load order.
func (c *Catalog) Tracks() []Track {
	out := make([]Track, len(c.tracks))
	copy(out, c.tracks)
	return out
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	return len(c.tracks)
}

// Lookup finds a track by id.
func (c *Catalog) Lookup(id string) (Track, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Track{}, false
	}
	return c.tracks[i], true
}

// Resolve returns the catalog tracks a playlist refers to, in catalog order.
// Dangling ids are dropped and each track appears at most once.
func (c *Catalog) Resolve(p Playlist) []Track {
	return lo.Filter(c.tracks, func(t Track, _ int) bool {
		return lo.Contains(p.SongIDs, t.ID)
	})
}
