package playlist

import (
	"time"

	"Serenade/track"
)

// Playlist is a saved queue, scoped to a guild and unique by name within it
type Playlist struct {
	ID        uint   `gorm:"primaryKey"`
	GuildID   string `gorm:"index:idx_guild_name,unique"`
	Name      string `gorm:"index:idx_guild_name,unique"`
	CreatedBy string
	CreatedAt time.Time
	Tracks    []PlaylistTrack `gorm:"constraint:OnDelete:CASCADE"`
}

// PlaylistTrack is one saved entry, enough to rebuild a track.Track
type PlaylistTrack struct {
	ID           uint `gorm:"primaryKey"`
	PlaylistID   uint `gorm:"index"`
	Position     int
	Title        string
	SourceURL    string
	Duration     int
	ThumbnailURL string
	Source       string
}

// ToTrack rebuilds the playable track value, attributed to whoever loads it
func (pt PlaylistTrack) ToTrack(requesterID, requesterName string) track.Track {
	return track.Track{
		Title:         pt.Title,
		SourceURL:     pt.SourceURL,
		Duration:      pt.Duration,
		ThumbnailURL:  pt.ThumbnailURL,
		Source:        track.Source(pt.Source),
		RequesterID:   requesterID,
		RequesterName: requesterName,
	}
}

func fromTrack(t track.Track, position int) PlaylistTrack {
	return PlaylistTrack{
		Position:     position,
		Title:        t.Title,
		SourceURL:    t.SourceURL,
		Duration:     t.Duration,
		ThumbnailURL: t.ThumbnailURL,
		Source:       string(t.Source),
	}
}
