package voice

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

const (
	sampleRate       = 48000
	channels         = 2
	frameSize        = 960
	maxOpusFrameSize = 4000
)

// Session is the voice transport for one guild: it owns the Discord voice
// connection and streams one ffmpeg-decoded source at a time through it.
// It implements the player.Transport interface.
type Session struct {
	discord *discordgo.Session
	guildID string

	mu       sync.Mutex
	vc       *discordgo.VoiceConnection
	volume   float64
	paused   bool
	playing  bool
	stop     chan struct{}
	finished chan error
}

// NewSession creates a transport for the given guild
func NewSession(discord *discordgo.Session, guildID string) *Session {
	return &Session{
		discord: discord,
		guildID: guildID,
		volume:  1.0,
	}
}

// Connect joins the given voice channel, moving there if already connected
// to a different one. Bounded by the context deadline.
func (v *Session) Connect(ctx context.Context, channelID string) error {
	v.mu.Lock()
	vc := v.vc
	v.mu.Unlock()

	if vc != nil && vc.ChannelID == channelID {
		return nil
	}

	type joinResult struct {
		vc  *discordgo.VoiceConnection
		err error
	}
	result := make(chan joinResult, 1)

	go func() {
		if vc != nil {
			result <- joinResult{vc, vc.ChangeChannel(channelID, false, false)}
			return
		}
		joined, err := v.discord.ChannelVoiceJoin(v.guildID, channelID, false, false)
		result <- joinResult{joined, err}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r := <-result:
		if r.err != nil {
			return r.err
		}
		v.mu.Lock()
		v.vc = r.vc
		v.mu.Unlock()
		return nil
	}
}

// Disconnect stops any active stream and drops the voice connection
func (v *Session) Disconnect() error {
	v.Stop()

	v.mu.Lock()
	vc := v.vc
	v.vc = nil
	v.mu.Unlock()

	if vc != nil {
		return vc.Disconnect()
	}
	return nil
}

// Play starts streaming the given URL from the given offset. The returned
// channel receives exactly one value when the stream ends: nil on a clean
// finish or stop, an error otherwise.
func (v *Session) Play(streamURL string, volume float64, offset time.Duration) (<-chan error, error) {
	v.mu.Lock()
	vc := v.vc
	if vc == nil {
		v.mu.Unlock()
		return nil, errors.New("no voice connection")
	}

	stop := make(chan struct{})
	finished := make(chan error, 1)
	v.stop = stop
	v.finished = finished
	v.volume = volume
	v.paused = false
	v.playing = true
	v.mu.Unlock()

	go func() {
		err := v.stream(vc, streamURL, offset, stop)

		v.mu.Lock()
		if v.finished == finished {
			v.playing = false
			v.paused = false
			v.stop = nil
		}
		v.mu.Unlock()

		finished <- err
	}()

	return finished, nil
}

// stream runs the ffmpeg -> PCM -> opus -> Discord pipeline until the source
// is exhausted or the stop channel closes
func (v *Session) stream(vc *discordgo.VoiceConnection, streamURL string, offset time.Duration, stop chan struct{}) error {
	if !vc.Ready {
		for i := 0; i < 20; i++ {
			time.Sleep(250 * time.Millisecond)
			if vc.Ready {
				break
			}
		}
		if !vc.Ready {
			return fmt.Errorf("voice connection never became ready")
		}
	}

	// -reconnect flags keep long streams alive over flaky upstream CDNs
	args := []string{
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
	}
	if offset > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.2f", offset.Seconds()))
	}
	args = append(args,
		"-i", streamURL,
		"-vn",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"pipe:1",
	)

	cmd := exec.Command("ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	defer func() {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		_ = cmd.Wait()
	}()

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return err
	}

	vc.Speaking(true)
	defer vc.Speaking(false)

	pcm := bufio.NewReaderSize(stdout, frameSize*channels*2*4)
	buf := make([]int16, frameSize*channels)

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		v.mu.Lock()
		paused := v.paused
		volume := v.volume
		v.mu.Unlock()

		if paused {
			select {
			case <-stop:
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		err := binary.Read(pcm, binary.LittleEndian, buf)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return err
		}

		applyVolume(buf, volume)

		opus, err := encoder.Encode(buf, frameSize, maxOpusFrameSize)
		if err != nil {
			return err
		}

		if len(opus) > 0 {
			select {
			case vc.OpusSend <- opus:
			case <-stop:
				return nil
			case <-time.After(time.Second):
				return fmt.Errorf("timeout sending opus frame")
			}
		}
	}
}

// Pause suspends frame delivery; the ffmpeg process stays alive
func (v *Session) Pause() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.playing {
		v.paused = true
	}
}

// Resume reverses Pause
func (v *Session) Resume() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.paused = false
}

// Stop ends the active stream, if any. The stream's finished channel fires
// once the pipeline goroutine winds down.
func (v *Session) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stop != nil {
		close(v.stop)
		v.stop = nil
	}
	v.playing = false
	v.paused = false
}

// SetVolume applies a [0,1] volume to the live stream from the next frame on
func (v *Session) SetVolume(volume float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.volume = volume
}

// IsPlaying reports whether a stream is active and not paused
func (v *Session) IsPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing && !v.paused
}

// IsPaused reports whether a stream is active but paused
func (v *Session) IsPaused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing && v.paused
}

// IsConnected reports whether a voice connection is held
func (v *Session) IsConnected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vc != nil
}

// applyVolume scales raw PCM samples in place, clamping at the int16 range
func applyVolume(samples []int16, volume float64) {
	if volume == 1.0 {
		return
	}
	for i, s := range samples {
		scaled := float64(s) * volume
		switch {
		case scaled > 32767:
			samples[i] = 32767
		case scaled < -32768:
			samples[i] = -32768
		default:
			samples[i] = int16(scaled)
		}
	}
}
