package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"Serenade/track"

	"github.com/stretchr/testify/assert"
)

type fakeTransport struct {
	mu              sync.Mutex
	connected       bool
	playing         bool
	paused          bool
	volume          float64
	finished        chan error
	connectDelay    time.Duration
	playCount       int
	playedURLs      []string
	playedOffsets   []time.Duration
	disconnectCount int
}

func (f *fakeTransport) Connect(ctx context.Context, channelID string) error {
	if f.connectDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.connectDelay):
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	return nil
}

func (f *fakeTransport) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.disconnectCount++
	return nil
}

func (f *fakeTransport) Play(streamURL string, volume float64, offset time.Duration) (<-chan error, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan error, 1)
	f.finished = ch
	f.playing = true
	f.paused = false
	f.volume = volume
	f.playCount++
	f.playedURLs = append(f.playedURLs, streamURL)
	f.playedOffsets = append(f.playedOffsets, offset)
	return ch, nil
}

func (f *fakeTransport) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
}

func (f *fakeTransport) Resume() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = false
}

func (f *fakeTransport) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
	f.paused = false
	if f.finished != nil {
		f.finished <- nil
		f.finished = nil
	}
}

// finish simulates the stream reaching its natural end
func (f *fakeTransport) finish() {
	f.Stop()
}

func (f *fakeTransport) SetVolume(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = v
}

func (f *fakeTransport) IsPlaying() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing && !f.paused
}

func (f *fakeTransport) IsPaused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

func (f *fakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeTransport) plays() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playCount
}

type fakeResolver struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (r *fakeResolver) ResolveFresh(ctx context.Context, t track.Track) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return fmt.Sprintf("stream://%s/%d", t.Title, r.calls), nil
}

func (r *fakeResolver) resolves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func testConfig() Config {
	return Config{
		DefaultVolume:     0.5,
		ConnectionTimeout: time.Second,
		MaxQueueSize:      100,
	}
}

func newTestPlayer(cfg Config) (*Player, *fakeTransport, *fakeResolver) {
	transport := &fakeTransport{}
	resolver := &fakeResolver{}
	p := New("guild-123", transport, resolver, cfg)
	p.pollInterval = 10 * time.Millisecond
	p.settleDelay = 5 * time.Millisecond
	p.trackGap = 5 * time.Millisecond
	return p, transport, resolver
}

func TestPlayer_PreconditionsWhenNotConnected(t *testing.T) {
	p, _, _ := newTestPlayer(testConfig())

	assert.False(t, p.Pause())
	assert.False(t, p.Resume())
	assert.False(t, p.Skip())
	assert.False(t, p.IsPlaying())
	assert.False(t, p.IsConnected())
}

func TestSetVolume(t *testing.T) {
	p, transport, _ := newTestPlayer(testConfig())

	assert.ErrorIs(t, p.SetVolume(1.5), ErrInvalidVolume)
	assert.ErrorIs(t, p.SetVolume(-0.1), ErrInvalidVolume)

	assert.NoError(t, p.SetVolume(0))
	assert.NoError(t, p.SetVolume(1))
	assert.Equal(t, 1.0, p.Volume())
	assert.Equal(t, 1.0, transport.volume)
}

func TestConnect_Timeout(t *testing.T) {
	cfg := testConfig()
	cfg.ConnectionTimeout = 20 * time.Millisecond
	p, transport, _ := newTestPlayer(cfg)
	transport.connectDelay = 200 * time.Millisecond

	err := p.Connect("channel-1")

	assert.ErrorIs(t, err, ErrConnectionTimeout)
	assert.False(t, p.IsConnected())
	p.mu.Lock()
	assert.Nil(t, p.loopDone)
	p.mu.Unlock()
}

func TestConnect_DoesNotSpawnDuplicateLoop(t *testing.T) {
	p, _, _ := newTestPlayer(testConfig())
	defer p.Disconnect()

	assert.NoError(t, p.Connect("channel-1"))
	p.mu.Lock()
	first := p.loopDone
	p.mu.Unlock()

	assert.NoError(t, p.Connect("channel-1"))
	p.mu.Lock()
	second := p.loopDone
	p.mu.Unlock()

	assert.Equal(t, first, second)
}

func TestPlaybackFlow(t *testing.T) {
	p, transport, resolver := newTestPlayer(testConfig())
	defer p.Disconnect()

	assert.NoError(t, p.Connect("channel-1"))

	pos, err := p.AddTrack(track.Track{Title: "A", SourceURL: "url-a"})
	assert.NoError(t, err)
	assert.Equal(t, 1, pos)

	assert.Eventually(t, p.IsPlaying, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, resolver.resolves())

	current, ok := p.Queue.Current()
	assert.True(t, ok)
	assert.Equal(t, "A", current.Title)

	transport.finish()

	assert.Eventually(t, func() bool {
		_, ok := p.Queue.Current()
		return !p.IsPlaying() && !ok
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSkip_AdvancesToNextTrack(t *testing.T) {
	p, transport, _ := newTestPlayer(testConfig())
	defer p.Disconnect()

	assert.NoError(t, p.Connect("channel-1"))
	p.AddTrack(track.Track{Title: "A", SourceURL: "url-a"})
	p.AddTrack(track.Track{Title: "B", SourceURL: "url-b"})

	assert.Eventually(t, p.IsPlaying, 2*time.Second, 5*time.Millisecond)

	assert.True(t, p.Skip())

	assert.Eventually(t, func() bool {
		return transport.plays() == 2 && p.IsPlaying()
	}, 2*time.Second, 5*time.Millisecond)

	current, ok := p.Queue.Current()
	assert.True(t, ok)
	assert.Equal(t, "B", current.Title)
	// skipped track must not come back
	assert.Empty(t, p.Queue.GetList())
}

func TestLoop_RequeuesFinishedTrackOnce(t *testing.T) {
	p, transport, _ := newTestPlayer(testConfig())
	defer p.Disconnect()

	assert.True(t, p.ToggleLoop())
	assert.NoError(t, p.Connect("channel-1"))
	p.AddTrack(track.Track{Title: "A", SourceURL: "url-a"})

	assert.Eventually(t, p.IsPlaying, 2*time.Second, 5*time.Millisecond)

	transport.finish()

	// the finished track reappears at the tail and plays again
	assert.Eventually(t, func() bool {
		return transport.plays() == 2 && p.IsPlaying()
	}, 2*time.Second, 5*time.Millisecond)

	current, ok := p.Queue.Current()
	assert.True(t, ok)
	assert.Equal(t, "A", current.Title)
	assert.Empty(t, p.Queue.GetList())
}

func TestSkip_DoesNotRequeueWithLoopEnabled(t *testing.T) {
	p, transport, _ := newTestPlayer(testConfig())
	defer p.Disconnect()

	assert.True(t, p.ToggleLoop())
	assert.NoError(t, p.Connect("channel-1"))
	p.AddTrack(track.Track{Title: "A", SourceURL: "url-a"})

	assert.Eventually(t, p.IsPlaying, 2*time.Second, 5*time.Millisecond)

	assert.True(t, p.Skip())

	assert.Eventually(t, func() bool {
		return !p.IsPlaying() && p.Queue.IsEmpty()
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, transport.plays())
}

func TestPauseResume_TracksPosition(t *testing.T) {
	p, transport, resolver := newTestPlayer(testConfig())
	defer p.Disconnect()

	assert.NoError(t, p.Connect("channel-1"))
	p.AddTrack(track.Track{Title: "A", SourceURL: "url-a", Duration: 300})

	assert.Eventually(t, p.IsPlaying, 2*time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.True(t, p.Pause())
	assert.True(t, p.IsPaused())
	assert.False(t, p.IsPlaying())

	// position freezes while paused
	frozen := p.CurrentPosition()
	assert.Greater(t, frozen, time.Duration(0))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, frozen, p.CurrentPosition())

	assert.True(t, p.Resume())
	assert.False(t, p.IsPaused())
	assert.True(t, p.IsPlaying())

	// resume resolved a fresh stream and restarted at the paused offset
	assert.Equal(t, 2, resolver.resolves())
	assert.Equal(t, 2, transport.plays())
	assert.Equal(t, frozen, transport.playedOffsets[1])
	assert.NotEqual(t, transport.playedURLs[0], transport.playedURLs[1])

	time.Sleep(30 * time.Millisecond)
	assert.Greater(t, p.CurrentPosition(), frozen)

	// the resumed stream finishing still advances the loop
	transport.finish()
	assert.Eventually(t, func() bool {
		_, ok := p.Queue.Current()
		return !p.IsPlaying() && !ok
	}, 2*time.Second, 5*time.Millisecond)
}

func TestResume_ResolutionFailureStaysPaused(t *testing.T) {
	p, _, resolver := newTestPlayer(testConfig())
	defer p.Disconnect()

	assert.NoError(t, p.Connect("channel-1"))
	p.AddTrack(track.Track{Title: "A", SourceURL: "url-a"})

	assert.Eventually(t, p.IsPlaying, 2*time.Second, 5*time.Millisecond)
	assert.True(t, p.Pause())

	resolver.mu.Lock()
	resolver.err = errors.New("stream extraction failed")
	resolver.mu.Unlock()

	assert.False(t, p.Resume())
	assert.True(t, p.IsPaused())
}

func TestStop_ClearsQueueAndState(t *testing.T) {
	p, transport, _ := newTestPlayer(testConfig())
	defer p.Disconnect()

	assert.True(t, p.ToggleLoop())
	assert.NoError(t, p.Connect("channel-1"))
	p.AddTrack(track.Track{Title: "A", SourceURL: "url-a"})
	p.AddTrack(track.Track{Title: "B", SourceURL: "url-b"})

	assert.Eventually(t, p.IsPlaying, 2*time.Second, 5*time.Millisecond)

	p.Stop()

	// loop flag must not resurrect the stopped track
	assert.Eventually(t, func() bool {
		return !p.IsPlaying() && p.Queue.IsEmpty()
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, transport.plays())
	assert.Equal(t, time.Duration(0), p.CurrentPosition())
	assert.True(t, p.IsConnected())
}

func TestInactivityTimeout_DisconnectsOnce(t *testing.T) {
	cfg := testConfig()
	cfg.InactivityTimeout = 50 * time.Millisecond
	p, transport, _ := newTestPlayer(cfg)

	assert.NoError(t, p.Connect("channel-1"))
	assert.True(t, p.IsConnected())

	assert.Eventually(t, func() bool {
		return !p.IsConnected()
	}, 2*time.Second, 5*time.Millisecond)

	// give the disconnect goroutine time to fully finish
	time.Sleep(50 * time.Millisecond)

	transport.mu.Lock()
	defer transport.mu.Unlock()
	assert.Equal(t, 1, transport.disconnectCount)
	assert.True(t, p.Queue.IsEmpty())
}

func TestDisconnect_Idempotent(t *testing.T) {
	p, _, _ := newTestPlayer(testConfig())

	assert.NoError(t, p.Connect("channel-1"))
	p.Disconnect()
	assert.NotPanics(t, p.Disconnect)
	assert.False(t, p.IsConnected())
}

func TestAddTrack_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 2
	p, _, _ := newTestPlayer(cfg)

	_, err := p.AddTrack(track.Track{Title: "A"})
	assert.NoError(t, err)
	_, err = p.AddTrack(track.Track{Title: "B"})
	assert.NoError(t, err)

	_, err = p.AddTrack(track.Track{Title: "C"})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 2, p.Queue.Size())
}

func TestResolutionFailure_DropsTrackAndContinues(t *testing.T) {
	p, _, resolver := newTestPlayer(testConfig())
	defer p.Disconnect()

	resolver.mu.Lock()
	resolver.err = errors.New("video unavailable")
	resolver.mu.Unlock()

	assert.NoError(t, p.Connect("channel-1"))
	p.AddTrack(track.Track{Title: "A", SourceURL: "url-a"})
	p.AddTrack(track.Track{Title: "B", SourceURL: "url-b"})

	// both tracks are dropped without ever starting playback
	assert.Eventually(t, func() bool {
		return p.Queue.IsEmpty() && resolver.resolves() == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.False(t, p.IsPlaying())
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(func(guildID string) *Player {
		transport := &fakeTransport{}
		return New(guildID, transport, &fakeResolver{}, testConfig())
	})

	a := registry.Get("guild-a")
	assert.Same(t, a, registry.Get("guild-a"))
	assert.NotSame(t, a, registry.Get("guild-b"))

	_, ok := registry.Peek("guild-c")
	assert.False(t, ok)

	registry.Remove("guild-a")
	_, ok = registry.Peek("guild-a")
	assert.False(t, ok)

	registry.StopAll()
	_, ok = registry.Peek("guild-b")
	assert.False(t, ok)
}
