package commands

import (
	"errors"

	"Serenade/player"

	"github.com/bwmarrin/discordgo"
)

// respond sends a plain text reply to an interaction
func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

// respondEmbed sends an embed reply to an interaction
func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// followUp sends a plain text follow-up after a deferred response
func followUp(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
	})
}

// userVoiceChannel returns the voice channel the invoking user is in
func userVoiceChannel(s *discordgo.Session, i *discordgo.InteractionCreate) (string, bool) {
	vs, err := s.State.VoiceState(i.GuildID, i.Member.User.ID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return "", false
	}
	return vs.ChannelID, true
}

// sameVoiceChannel checks whether the bot is free to serve the user: either
// not connected yet, or connected to the user's channel
func sameVoiceChannel(s *discordgo.Session, i *discordgo.InteractionCreate, channelID string) bool {
	vc, ok := s.VoiceConnections[i.GuildID]
	if !ok || vc == nil {
		return true
	}
	return vc.ChannelID == channelID
}

// connectPlayer joins the user's channel, mapping the timeout to a
// user-facing message
func connectPlayer(p *player.Player, channelID string) (string, bool) {
	if err := p.Connect(channelID); err != nil {
		if errors.Is(err, player.ErrConnectionTimeout) {
			return "Timed out connecting to the voice channel ⏳", false
		}
		return "Couldn't connect to the voice channel 😞", false
	}
	return "", true
}

// connectedPlayer fetches the guild's player if the bot is currently in a
// voice channel, replying when it is not
func connectedPlayer(s *discordgo.Session, i *discordgo.InteractionCreate) (*player.Player, bool) {
	p, ok := registry.Peek(i.GuildID)
	if !ok || !p.IsConnected() {
		respond(s, i, "Nothing is playing right now 😶")
		return nil, false
	}
	return p, true
}
