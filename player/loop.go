package player

import (
	"context"
	"time"

	"github.com/Strum355/log"
)

const resolveTimeout = 30 * time.Second

// run is the player's background loop: it waits for tracks, resolves a
// fresh stream for each, plays it, and blocks until playback finishes. It
// is the only goroutine that starts queued playback, so no two tracks can
// overlap for one guild. It exits on context cancellation or after
// triggering its own inactivity disconnect.
func (p *Player) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	log.WithFields(log.Fields{"guild_id": p.GuildID}).Info("Player loop started")

	for {
		if p.idleTimedOut() {
			log.WithFields(log.Fields{"guild_id": p.GuildID}).Info("Inactivity timeout reached, disconnecting")
			// Disconnect waits for this goroutine to exit, so it cannot be
			// called inline from here
			go p.Disconnect()
			return
		}

		if p.Queue.IsEmpty() {
			p.mu.Lock()
			p.playing = false
			p.mu.Unlock()

			select {
			case <-ctx.Done():
				return
			case <-time.After(p.pollInterval):
			}
			continue
		}

		t, ok := p.Queue.Next()
		if !ok {
			continue
		}

		p.mu.Lock()
		p.skipRequested = false
		p.mu.Unlock()

		// Stream URLs expire upstream after a few hours, so resolve one
		// immediately before playing; a cached URL is never reused.
		resolveCtx, cancel := context.WithTimeout(ctx, resolveTimeout)
		streamURL, err := p.resolver.ResolveFresh(resolveCtx, t)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).WithFields(log.Fields{
				"guild_id": p.GuildID,
				"title":    t.Title,
			}).Error("Failed to resolve stream, dropping track")
			p.Queue.ClearCurrent()
			continue
		}

		// A rapid skip or retry can leave the previous stream still winding
		// down; stop it and let the transport settle before starting the
		// next one so two streams never overlap.
		if p.transport.IsPlaying() {
			p.transport.Stop()
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.settleDelay):
			}
		}

		p.mu.Lock()
		ch, err := p.transport.Play(streamURL, p.volume, 0)
		if err != nil {
			p.mu.Unlock()
			log.WithError(err).WithFields(log.Fields{
				"guild_id": p.GuildID,
				"title":    t.Title,
			}).Error("Failed to start playback")
			p.Queue.ClearCurrent()
			continue
		}
		p.finished = ch
		p.playing = true
		p.paused = false
		p.playbackStartedAt = time.Now()
		p.pausedElapsed = 0
		p.lastActivity = time.Now()
		p.mu.Unlock()

		log.WithFields(log.Fields{
			"guild_id": p.GuildID,
			"title":    t.Title,
		}).Info("Now playing")

		playErr, cancelled := p.awaitFinished(ctx, ch)
		if cancelled {
			return
		}
		if playErr != nil {
			log.WithError(playErr).WithFields(log.Fields{
				"guild_id": p.GuildID,
				"title":    t.Title,
			}).Error("Playback ended with error")
		}

		p.mu.Lock()
		requeue := p.loopEnabled && !p.skipRequested
		p.playing = false
		p.finished = nil
		p.lastActivity = time.Now()
		p.mu.Unlock()

		// Repeat mode re-adds the finished track at the tail, behind any
		// tracks queued meanwhile.
		if requeue {
			p.Queue.Add(t)
		}
		p.Queue.ClearCurrent()

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.trackGap):
		}
	}
}

// awaitFinished blocks until the active playback ends or the loop is
// cancelled. Resume replaces the playback mid-wait with a fresh stream; the
// resulting stop on the old one is recognized by the channel having been
// swapped, and the wait moves to the replacement.
func (p *Player) awaitFinished(ctx context.Context, ch <-chan error) (error, bool) {
	for {
		select {
		case err := <-ch:
			p.mu.Lock()
			current := p.finished
			p.mu.Unlock()
			if current != nil && current != ch {
				ch = current
				continue
			}
			return err, false
		case <-ctx.Done():
			return nil, true
		}
	}
}

// idleTimedOut reports whether the player has sat idle past the configured
// inactivity timeout
func (p *Player) idleTimedOut() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cfg.InactivityTimeout <= 0 || p.playing || p.paused || p.lastActivity.IsZero() {
		return false
	}
	if !p.Queue.IsEmpty() {
		return false
	}
	return time.Since(p.lastActivity) >= p.cfg.InactivityTimeout
}
