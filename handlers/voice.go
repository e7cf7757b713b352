package handlers

import (
	"sync"
	"time"

	"Serenade/player"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// VoiceWatcher disconnects a guild's player after the bot has been alone in
// its voice channel for the configured alone timeout. A human joining the
// channel cancels the pending disconnect.
type VoiceWatcher struct {
	registry     *player.Registry
	aloneTimeout time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewVoiceWatcher creates a watcher bound to the player registry
func NewVoiceWatcher(registry *player.Registry) *VoiceWatcher {
	return &VoiceWatcher{
		registry:     registry,
		aloneTimeout: time.Duration(viper.GetInt("player.alone_timeout")) * time.Second,
		timers:       make(map[string]*time.Timer),
	}
}

// HandleVoiceStateUpdate re-evaluates whether the bot is alone whenever
// anyone joins, leaves or moves voice channels in a guild
func (w *VoiceWatcher) HandleVoiceStateUpdate(s *discordgo.Session, e *discordgo.VoiceStateUpdate) {
	vc, ok := s.VoiceConnections[e.GuildID]
	if !ok || vc == nil {
		w.cancelTimer(e.GuildID)
		return
	}

	if w.humansInChannel(s, e.GuildID, vc.ChannelID) == 0 {
		w.startTimer(e.GuildID)
	} else {
		w.cancelTimer(e.GuildID)
	}
}

// humansInChannel counts non-bot users currently in the given voice channel
func (w *VoiceWatcher) humansInChannel(s *discordgo.Session, guildID, channelID string) int {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return 0
	}

	count := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		if s.State.User != nil && vs.UserID == s.State.User.ID {
			continue
		}
		if member, err := s.State.Member(guildID, vs.UserID); err == nil && member.User != nil && member.User.Bot {
			continue
		}
		count++
	}
	return count
}

func (w *VoiceWatcher) startTimer(guildID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, running := w.timers[guildID]; running {
		return
	}
	w.timers[guildID] = time.AfterFunc(w.aloneTimeout, func() {
		w.mu.Lock()
		delete(w.timers, guildID)
		w.mu.Unlock()

		if p, ok := w.registry.Peek(guildID); ok && p.IsConnected() {
			log.WithFields(log.Fields{"guild_id": guildID}).Info("Alone in voice channel, disconnecting")
			p.Disconnect()
		}
	})
}

func (w *VoiceWatcher) cancelTimer(guildID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, running := w.timers[guildID]; running {
		timer.Stop()
		delete(w.timers, guildID)
	}
}
