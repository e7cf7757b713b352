package handlers

import (
	"github.com/bwmarrin/discordgo"
)

// HelpEmbedding creates the embedding for the help menu
func HelpEmbedding(s *discordgo.Session, m *discordgo.MessageCreate) {
	botAvatarURL := s.State.User.AvatarURL("64")
	helpEmbed := &discordgo.MessageEmbed{
		Title: "Serenade Help",
		Description: "Use `/` slash commands to control playback:\n" +
			"`/play` `/pause` `/resume` `/skip` `/stop`\n" +
			"`/queue` `/nowplaying` `/volume` `/loop` `/shuffle`\n" +
			"`/clear` `/remove` `/move` `/disconnect`\n" +
			"`/playlist save|load|list|info|delete`",
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: botAvatarURL,
		},
	}
	s.ChannelMessageSendEmbed(m.ChannelID, helpEmbed)
}
