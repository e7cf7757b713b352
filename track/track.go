package track

import "fmt"

// Source identifies where a track's metadata came from.
type Source string

const (
	// SourceYouTube tracks stream straight from their canonical URL.
	SourceYouTube Source = "youtube"
	// SourceSpotify tracks were resolved to a YouTube stream via search.
	SourceSpotify Source = "spotify"
)

// Track describes one playable item. It is immutable after construction;
// the short-lived stream URL is never stored here and is resolved fresh
// from SourceURL before every play.
type Track struct {
	Title         string
	SourceURL     string // canonical URL, stable across stream expiry
	Duration      int    // seconds
	ThumbnailURL  string
	Source        Source
	RequesterID   string
	RequesterName string
}

func (t Track) String() string {
	return fmt.Sprintf("%s [%s]", t.Title, t.FormattedDuration())
}

// FormattedDuration returns the track length as MM:SS, or H:MM:SS past an hour
func (t Track) FormattedDuration() string {
	hours := t.Duration / 3600
	minutes := (t.Duration % 3600) / 60
	seconds := t.Duration % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
