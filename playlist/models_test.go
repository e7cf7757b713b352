package playlist

import (
	"testing"

	"Serenade/track"

	"github.com/stretchr/testify/assert"
)

func TestTrackRoundTrip(t *testing.T) {
	original := track.Track{
		Title:         "Never Gonna Give You Up",
		SourceURL:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Duration:      213,
		ThumbnailURL:  "https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg",
		Source:        track.SourceSpotify,
		RequesterID:   "user-1",
		RequesterName: "rick",
	}

	saved := fromTrack(original, 3)
	assert.Equal(t, 3, saved.Position)

	// the loader becomes the requester, everything else survives
	restored := saved.ToTrack("user-2", "astley")
	assert.Equal(t, original.Title, restored.Title)
	assert.Equal(t, original.SourceURL, restored.SourceURL)
	assert.Equal(t, original.Duration, restored.Duration)
	assert.Equal(t, original.ThumbnailURL, restored.ThumbnailURL)
	assert.Equal(t, original.Source, restored.Source)
	assert.Equal(t, "user-2", restored.RequesterID)
	assert.Equal(t, "astley", restored.RequesterName)
}
