// Package fixtures loads the startup data set: catalog, seed playlists, roster and announcements.
package fixtures

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/satindergrewal/cadence/internal/account"
	"github.com/satindergrewal/cadence/internal/catalog"
)

//go:embed seed.yaml
var embedded []byte

// Seed is the parsed startup data.
type Seed struct {
	Tracks        []catalog.Track        `yaml:"tracks"`
	Playlists     []catalog.Playlist     `yaml:"playlists"`
	Users         []account.Seed         `yaml:"users"`
	Announcements []catalog.Announcement `yaml:"announcements"`
}

// Default returns the embedded demo data set.
func Default() (*Seed, error) {
	return Parse(embedded)
}

// Load reads a seed file, or the embedded data set when path is empty.
func Load(path string) (*Seed, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML seed.
func Parse(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if len(s.Tracks) == 0 {
		return nil, fmt.Errorf("seed has no tracks")
	}
	for _, u := range s.Users {
		if !u.Tier.Valid() {
			return nil, fmt.Errorf("user %d: unknown tier %q", u.ID, u.Tier)
		}
	}
	return &s, nil
}

// Catalog builds the immutable catalog from the seed tracks.
func (s *Seed) Catalog() (*catalog.Catalog, error) {
	return catalog.New(s.Tracks)
}
