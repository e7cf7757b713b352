package yt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"Serenade/redis_client"
	"Serenade/track"

	"github.com/kkdai/youtube/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// Manager resolves YouTube queries into tracks and tracks into fresh stream
// URLs. Metadata is cached in Redis with a TTL; stream URLs never are, since
// they expire upstream after a few hours.
type Manager struct {
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewManager creates a Manager with Redis metadata caching
func NewManager(rdb *redis.Client) *Manager {
	return &Manager{
		redis:    rdb,
		cacheTTL: time.Duration(viper.GetInt("cache.youtube")) * time.Second,
	}
}

// Search turns a YouTube URL or free-text query into a Track
func (m *Manager) Search(ctx context.Context, query, requesterID, requesterName string) (track.Track, error) {
	videoID, err := youtube.ExtractVideoID(query)
	if err != nil {
		videoID, err = searchVideoID(query)
		if err != nil {
			return track.Track{}, err
		}
	}

	video, err := m.videoMetadata(ctx, videoID)
	if err != nil {
		return track.Track{}, err
	}

	return m.buildTrack(video, requesterID, requesterName), nil
}

// Playlist expands a YouTube playlist URL into tracks, up to limit
func (m *Manager) Playlist(ctx context.Context, playlistURL, requesterID, requesterName string, limit int) ([]track.Track, error) {
	videoIDs, err := playlistVideoIDs(playlistURL)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(videoIDs) > limit {
		videoIDs = videoIDs[:limit]
	}

	tracks := make([]track.Track, 0, len(videoIDs))
	for _, videoID := range videoIDs {
		video, err := m.videoMetadata(ctx, videoID)
		if err != nil {
			continue
		}
		tracks = append(tracks, m.buildTrack(video, requesterID, requesterName))
	}
	return tracks, nil
}

// ResolveFresh returns a stream URL for the track, fetched from YouTube at
// call time. Called by the player immediately before every play and resume.
func (m *Manager) ResolveFresh(ctx context.Context, t track.Track) (string, error) {
	videoID, err := youtube.ExtractVideoID(t.SourceURL)
	if err != nil {
		return "", err
	}

	client := youtube.Client{}
	video, err := client.GetVideoContext(ctx, videoID)
	if err != nil {
		return "", err
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return "", fmt.Errorf("no audio formats available for video %s", videoID)
	}

	return client.GetStreamURLContext(ctx, video, &formats[0])
}

// videoMetadata fetches video metadata, trying the Redis cache first
func (m *Manager) videoMetadata(ctx context.Context, videoID string) (*youtube.Video, error) {
	if m.redis != nil {
		cached, err := m.redis.Get(redis_client.Ctx, "ytmeta:"+videoID).Result()
		if err == nil && cached != "" {
			var video youtube.Video
			if err := json.Unmarshal([]byte(cached), &video); err == nil {
				return &video, nil
			}
		}
	}

	video, err := fetchVideoMetadata(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if m.redis != nil {
		data, _ := json.Marshal(video)
		m.redis.Set(redis_client.Ctx, "ytmeta:"+videoID, data, m.cacheTTL)
	}

	return video, nil
}

// buildTrack maps video metadata onto the immutable track value
func (m *Manager) buildTrack(video *youtube.Video, requesterID, requesterName string) track.Track {
	thumbnail := ""
	if len(video.Thumbnails) > 0 {
		thumbnail = video.Thumbnails[0].URL
	}
	return track.Track{
		Title:         strings.TrimSpace(video.Title),
		SourceURL:     canonicalURL(video.ID),
		Duration:      int(video.Duration / time.Second),
		ThumbnailURL:  thumbnail,
		Source:        track.SourceYouTube,
		RequesterID:   requesterID,
		RequesterName: requesterName,
	}
}
