package curator

import (
	"fmt"
	"strings"

	"github.com/satindergrewal/cadence/internal/catalog"
)

// systemPrompt instructs the model to pick tracks from the enumerated catalog.
const systemPrompt = `You are a music expert and playlist curator.

Given a listener's request and a list of available songs, build a playlist of 5 to 8 songs.

Rules:
- Only use songs from the provided list
- Refer to songs by their id exactly as listed
- Order the songs the way they should play

Output format: ONLY a JSON array of song ids, e.g. ["s1","s4","s2"]. No prose. No markdown. No explanations.

/no_think`

// enumerate renders the compact id/title/artist listing sent with every request.
func enumerate(tracks []catalog.Track) string {
	lines := make([]string, len(tracks))
	for i, t := range tracks {
		lines[i] = fmt.Sprintf("id: %s, title: %s, artist: %s", t.ID, t.Title, t.Artist)
	}
	return strings.Join(lines, "\n")
}

// userPrompt combines the listener's request with the catalog listing.
func userPrompt(request string, tracks []catalog.Track) string {
	return fmt.Sprintf("Request: %q\n\nAvailable Songs:\n%s", request, enumerate(tracks))
}
