package yt

import (
	"testing"
	"time"

	"Serenade/track"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", canonicalURL("dQw4w9WgXcQ"))
}

func TestBuildTrack(t *testing.T) {
	m := &Manager{}
	video := &youtube.Video{
		ID:       "dQw4w9WgXcQ",
		Title:    "  Never Gonna Give You Up  ",
		Duration: 213 * time.Second,
		Thumbnails: youtube.Thumbnails{
			{URL: "https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg"},
		},
	}

	tr := m.buildTrack(video, "user-1", "rick")

	assert.Equal(t, "Never Gonna Give You Up", tr.Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", tr.SourceURL)
	assert.Equal(t, 213, tr.Duration)
	assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg", tr.ThumbnailURL)
	assert.Equal(t, track.SourceYouTube, tr.Source)
	assert.Equal(t, "user-1", tr.RequesterID)
	assert.Equal(t, "rick", tr.RequesterName)
}

func TestBuildTrack_NoThumbnail(t *testing.T) {
	m := &Manager{}
	video := &youtube.Video{ID: "abc", Title: "untitled"}

	tr := m.buildTrack(video, "user-1", "rick")

	assert.Empty(t, tr.ThumbnailURL)
	assert.Zero(t, tr.Duration)
}
