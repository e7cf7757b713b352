package handlers

import (
	"Serenade/player"

	"github.com/bwmarrin/discordgo"
)

// HandlerConfig configures gateway intents and registers event handlers
func HandlerConfig(s *discordgo.Session, registry *player.Registry) {
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	s.AddHandler(MessageHandler)
	s.AddHandler(NewVoiceWatcher(registry).HandleVoiceStateUpdate)

	// drop the player when the bot is removed from a guild
	s.AddHandler(func(s *discordgo.Session, g *discordgo.GuildDelete) {
		registry.Remove(g.ID)
	})
}
