package catalog

import (
	"sync"

	"github.com/samber/lo"
)

// Collection is the browsable playlist list. Records are replaced or prepended, never edited.
type Collection struct {
	mu        sync.RWMutex
	playlists []Playlist
}

// NewCollection starts a collection from seed playlists.
func NewCollection(seed []Playlist) *Collection {
	c := &Collection{playlists: make([]Playlist, len(seed))}
	copy(c.playlists, seed)
	return c
}

// All returns the playlists, newest first.
func (c *Collection) All() []Playlist {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Playlist, len(c.playlists))
	copy(out, c.playlists)
	return out
}

// Prepend puts p at the head of the collection.
func (c *Collection) Prepend(p Playlist) {
	c.mu.Lock()
	c.playlists = append([]Playlist{p}, c.playlists...)
	c.mu.Unlock()
}

// Lookup finds a playlist by id.
func (c *Collection) Lookup(id string) (Playlist, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Find(c.playlists, func(p Playlist) bool { return p.ID == id })
}
