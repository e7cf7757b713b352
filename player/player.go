package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"Serenade/queue"
	"Serenade/track"

	"github.com/Strum355/log"
)

// Player drives playback for a single guild. It owns the guild's queue and
// voice transport, and runs one background loop goroutine that dequeues
// tracks, resolves a fresh stream for each, and plays them in order.
//
// The current track is owned by the queue's current slot; the player reads
// it through Queue.Current rather than keeping its own copy.
type Player struct {
	GuildID string
	Queue   *queue.Queue

	transport Transport
	resolver  StreamResolver
	cfg       Config

	mu                sync.Mutex
	volume            float64
	loopEnabled       bool
	playing           bool
	paused            bool
	playbackStartedAt time.Time     // zero while not actively playing
	pausedElapsed     time.Duration // elapsed playback excluding paused intervals
	lastActivity      time.Time
	skipRequested     bool
	finished          <-chan error // one-shot channel of the active playback

	loopCancel context.CancelFunc
	loopDone   chan struct{}

	// loop timing, overridable in tests
	pollInterval time.Duration
	settleDelay  time.Duration
	trackGap     time.Duration
}

// New creates a player for the given guild. The transport and resolver are
// injected so the command layer and tests can supply their own.
func New(guildID string, transport Transport, resolver StreamResolver, cfg Config) *Player {
	return &Player{
		GuildID:      guildID,
		Queue:        queue.New(),
		transport:    transport,
		resolver:     resolver,
		cfg:          cfg,
		volume:       cfg.DefaultVolume,
		pollInterval: time.Second,
		settleDelay:  500 * time.Millisecond,
		trackGap:     500 * time.Millisecond,
	}
}

// Connect joins the given voice channel, or moves there if already connected
// elsewhere, bounded by the configured connection timeout. On success the
// background loop is started if it is not already running; a second Connect
// never spawns a duplicate loop.
func (p *Player) Connect(channelID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.ConnectionTimeout)
	defer cancel()

	if err := p.transport.Connect(ctx, channelID); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrConnectionTimeout
		}
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastActivity = time.Now()

	if !p.loopAlive() {
		loopCtx, loopCancel := context.WithCancel(context.Background())
		p.loopCancel = loopCancel
		p.loopDone = make(chan struct{})
		go p.run(loopCtx, p.loopDone)
	}
	return nil
}

// loopAlive reports whether the background loop goroutine is still running.
// Caller must hold p.mu.
func (p *Player) loopAlive() bool {
	if p.loopDone == nil {
		return false
	}
	select {
	case <-p.loopDone:
		return false
	default:
		return true
	}
}

// Disconnect cancels the background loop, waits for it to exit, then tears
// down the transport and resets all playback state. Safe to call when
// already disconnected.
func (p *Player) Disconnect() {
	p.mu.Lock()
	cancel := p.loopCancel
	done := p.loopDone
	p.loopCancel = nil
	p.loopDone = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.transport.Stop()
	if err := p.transport.Disconnect(); err != nil {
		log.WithError(err).WithFields(log.Fields{"guild_id": p.GuildID}).Error("Failed to disconnect voice transport")
	}

	p.Queue.Clear()

	p.mu.Lock()
	p.playing = false
	p.paused = false
	p.playbackStartedAt = time.Time{}
	p.pausedElapsed = 0
	p.lastActivity = time.Time{}
	p.skipRequested = false
	p.finished = nil
	p.mu.Unlock()

	log.WithFields(log.Fields{"guild_id": p.GuildID}).Info("Player disconnected")
}

// AddTrack appends a track to the queue and returns its 1-indexed position
func (p *Player) AddTrack(t track.Track) (int, error) {
	if p.cfg.MaxQueueSize > 0 && p.Queue.Size() >= p.cfg.MaxQueueSize {
		return 0, ErrQueueFull
	}
	position := p.Queue.Add(t)

	p.mu.Lock()
	p.lastActivity = time.Now()
	p.mu.Unlock()

	log.WithFields(log.Fields{
		"guild_id": p.GuildID,
		"title":    t.Title,
		"position": position,
	}).Info("Track added to queue")
	return position, nil
}

// Stop clears the queue and halts active playback. The loop re-enters its
// waiting state once the finished signal fires.
func (p *Player) Stop() {
	p.mu.Lock()
	// consume the loop flag so the stopped track is not re-queued
	p.skipRequested = true
	p.playing = false
	p.paused = false
	p.playbackStartedAt = time.Time{}
	p.pausedElapsed = 0
	p.mu.Unlock()

	p.Queue.Clear()
	p.transport.Stop()
}

// Pause suspends active playback and snapshots the elapsed time. Returns
// false if nothing is playing.
func (p *Player) Pause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing || p.paused || !p.transport.IsPlaying() {
		return false
	}

	if !p.playbackStartedAt.IsZero() {
		p.pausedElapsed += time.Since(p.playbackStartedAt)
		p.playbackStartedAt = time.Time{}
	}
	p.transport.Pause()
	p.paused = true
	return true
}

// Resume restarts playback of the paused track. The stream URL obtained for
// the original play may have expired while paused, so a fresh one is
// resolved and playback restarts positioned at the accumulated elapsed time.
// Returns false if nothing is paused or resolution fails (state unchanged).
func (p *Player) Resume() bool {
	p.mu.Lock()
	if !p.paused {
		p.mu.Unlock()
		return false
	}
	current, ok := p.Queue.Current()
	if !ok {
		p.mu.Unlock()
		return false
	}
	offset := p.pausedElapsed
	p.mu.Unlock()

	streamURL, err := p.resolver.ResolveFresh(context.Background(), current)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guild_id": p.GuildID,
			"title":    current.Title,
		}).Error("Failed to resolve fresh stream for resume")
		return false
	}

	// Swap in the new playback under the lock so the loop, which compares
	// the channel it is waiting on against p.finished, keeps waiting instead
	// of treating the stop below as the track ending.
	p.mu.Lock()
	defer p.mu.Unlock()

	p.transport.Stop()
	ch, err := p.transport.Play(streamURL, p.volume, offset)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"guild_id": p.GuildID}).Error("Failed to restart playback on resume")
		return false
	}

	p.finished = ch
	p.paused = false
	p.playing = true
	p.playbackStartedAt = time.Now()
	p.lastActivity = time.Now()

	log.WithFields(log.Fields{
		"guild_id": p.GuildID,
		"title":    current.Title,
		"offset":   offset.String(),
	}).Info("Playback resumed")
	return true
}

// Skip stops the active track so the loop advances to the next one. Returns
// false if nothing is playing.
func (p *Player) Skip() bool {
	p.mu.Lock()
	if !p.playing || p.paused || !p.transport.IsPlaying() {
		p.mu.Unlock()
		return false
	}
	p.skipRequested = true
	p.mu.Unlock()

	p.transport.Stop()
	return true
}

// SetVolume sets the playback volume, applying it immediately to a live
// source. Values outside [0.0, 1.0] are rejected, not clamped.
func (p *Player) SetVolume(v float64) error {
	if v < 0.0 || v > 1.0 {
		return ErrInvalidVolume
	}

	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()

	p.transport.SetVolume(v)
	return nil
}

// Volume returns the configured playback volume
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// ToggleLoop flips the repeat flag and returns the new state. While enabled,
// each finished track is re-added to the tail of the queue.
func (p *Player) ToggleLoop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loopEnabled = !p.loopEnabled
	return p.loopEnabled
}

// LoopEnabled reports whether the repeat flag is set
func (p *Player) LoopEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loopEnabled
}

// CurrentPosition returns how far into the current track playback is. This
// is an elapsed wall-clock counter for display, not an exact frame position.
func (p *Player) CurrentPosition() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing && !p.paused && !p.playbackStartedAt.IsZero() {
		return p.pausedElapsed + time.Since(p.playbackStartedAt)
	}
	return p.pausedElapsed
}

// IsPlaying reports whether a track is actively playing (not paused)
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && p.transport.IsPlaying()
}

// IsPaused reports whether playback is suspended on a current track
func (p *Player) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// IsConnected reports whether the voice transport is up
func (p *Player) IsConnected() bool {
	return p.transport.IsConnected()
}
