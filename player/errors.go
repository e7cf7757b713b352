package player

import "errors"

var (
	// ErrConnectionTimeout is returned by Connect when joining or moving to
	// a voice channel exceeds the configured connection timeout.
	ErrConnectionTimeout = errors.New("timed out connecting to voice channel")

	// ErrInvalidVolume is returned by SetVolume for values outside [0.0, 1.0].
	ErrInvalidVolume = errors.New("volume must be between 0.0 and 1.0")

	// ErrQueueFull is returned by AddTrack once the queue holds the
	// configured maximum number of pending tracks.
	ErrQueueFull = errors.New("queue is full")

	// ErrBotNotConnected and ErrNotInVoiceChannel are precondition failures
	// surfaced by the command layer, not by the player itself.
	ErrBotNotConnected   = errors.New("bot is not connected to a voice channel")
	ErrNotInVoiceChannel = errors.New("you must be in a voice channel to use this command")
)
