package subscription

import (
	"fmt"
	"strings"
)

// Tier is a subscription level.
type Tier string

const (
	Free        Tier = "free"
	Standard    Tier = "standard"
	Pro         Tier = "pro"
	Ultra       Tier = "ultra"
	UltraProMax Tier = "ultra promax"
)

// FeatureSet is the capability record unlocked by a tier.
type FeatureSet struct {
	Name        string `json:"name"`
	Ads         bool   `json:"ads"`
	Lyrics      bool   `json:"lyrics"`
	Video       bool   `json:"video"`
	AIPlaylists bool   `json:"ai_playlists"`
	HiFiAudio   bool   `json:"hifi_audio"`
}

// tiers lists every tier from lowest to highest.
var tiers = []Tier{Free, Standard, Pro, Ultra, UltraProMax}

// features maps each tier to its capabilities. Every entry of tiers has exactly one row.
var features = map[Tier]FeatureSet{
	Free:        {Name: "Free", Ads: true},
	Standard:    {Name: "Standard", Lyrics: true},
	Pro:         {Name: "Pro", Lyrics: true, Video: true},
	Ultra:       {Name: "Ultra", Lyrics: true, Video: true, AIPlaylists: true},
	UltraProMax: {Name: "Ultra ProMax", Lyrics: true, Video: true, AIPlaylists: true, HiFiAudio: true},
}

// Tiers returns all tiers, lowest first.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// Lowest is the tier given to new sign-ups.
func Lowest() Tier {
	return tiers[0]
}

// FeaturesFor returns the capabilities of a tier.
// Values outside the enumeration get the lowest tier's features.
func FeaturesFor(t Tier) FeatureSet {
	if f, ok := features[t]; ok {
		return f
	}
	return features[Lowest()]
}

// Valid reports whether t is one of the enumerated tiers.
func (t Tier) Valid() bool {
	_, ok := features[t]
	return ok
}

// ParseTier accepts a tier value case-insensitively, with '_' or '-' in place of spaces.
func ParseTier(s string) (Tier, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	t := Tier(norm)
	if !t.Valid() {
		return "", fmt.Errorf("unknown tier %q", s)
	}
	return t, nil
}
