package player

import (
	"context"
	"time"

	"Serenade/track"

	"github.com/spf13/viper"
)

// StreamResolver turns a track's canonical URL into a playable stream URL.
// Resolved URLs are short-lived upstream (they expire after a few hours), so
// the player calls this immediately before every playback start and every
// resume, and never caches the result.
type StreamResolver interface {
	ResolveFresh(ctx context.Context, t track.Track) (string, error)
}

// Transport is the live voice connection the player pushes audio through.
// Play starts streaming from the given offset and returns a channel that
// receives exactly one value when playback ends, whether it ran to
// completion, failed, or was stopped.
type Transport interface {
	Connect(ctx context.Context, channelID string) error
	Disconnect() error
	Play(streamURL string, volume float64, offset time.Duration) (<-chan error, error)
	Pause()
	Resume()
	Stop()
	SetVolume(v float64)
	IsPlaying() bool
	IsPaused() bool
	IsConnected() bool
}

// Config carries the per-player tunables.
type Config struct {
	DefaultVolume     float64
	InactivityTimeout time.Duration
	AloneTimeout      time.Duration
	ConnectionTimeout time.Duration
	MaxQueueSize      int
}

// ConfigFromViper builds a Config from the recognized player.* options
func ConfigFromViper() Config {
	return Config{
		DefaultVolume:     viper.GetFloat64("player.default_volume"),
		InactivityTimeout: time.Duration(viper.GetInt("player.inactivity_timeout")) * time.Second,
		AloneTimeout:      time.Duration(viper.GetInt("player.alone_timeout")) * time.Second,
		ConnectionTimeout: time.Duration(viper.GetInt("player.connection_timeout")) * time.Second,
		MaxQueueSize:      viper.GetInt("player.max_queue_size"),
	}
}
