package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Serenade/playlist"
	"Serenade/track"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// playList routes the playlist subcommands
func playList(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	if playlists == nil {
		respond(s, i, "Playlists aren't available right now 🗄️")
		return nil
	}

	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "save":
		return savePlaylist(ctx, s, i, sub.Options[0].StringValue())
	case "load":
		return loadPlaylist(ctx, s, i, sub.Options[0].StringValue())
	case "list":
		return listPlaylists(ctx, s, i)
	case "info":
		return playlistInfo(ctx, s, i, sub.Options[0].StringValue())
	case "delete":
		return deletePlaylist(ctx, s, i, sub.Options[0].StringValue())
	}
	return nil
}

// savePlaylist stores the current song plus the pending queue under a name
func savePlaylist(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, name string) *interactionError {
	p, ok := connectedPlayer(s, i)
	if !ok {
		return nil
	}

	var tracks []track.Track
	if current, ok := p.Queue.Current(); ok {
		tracks = append(tracks, current)
	}
	tracks = append(tracks, p.Queue.GetList()...)

	err := playlists.Save(i.GuildID, name, i.Member.User.ID, tracks)
	switch {
	case errors.Is(err, playlist.ErrEmptyQueue):
		respond(s, i, "There's nothing queued to save 😶")
		return nil
	case errors.Is(err, playlist.ErrAlreadyExists):
		respond(s, i, fmt.Sprintf("A playlist named **%s** already exists 🤔", name))
		return nil
	case err != nil:
		return &interactionError{err, "Failed to save the playlist"}
	}

	respond(s, i, fmt.Sprintf("Saved **%d** songs as **%s** 💾", len(tracks), name))
	return nil
}

// loadPlaylist queues every song of a saved playlist
func loadPlaylist(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, name string) *interactionError {
	channelID, ok := userVoiceChannel(s, i)
	if !ok {
		respond(s, i, "You need to be in a voice channel to load a playlist 🎧")
		return nil
	}
	if !sameVoiceChannel(s, i, channelID) {
		respond(s, i, "I'm already playing in another voice channel 🙉")
		return nil
	}

	saved, err := playlists.Load(i.GuildID, name)
	if errors.Is(err, playlist.ErrNotFound) {
		respond(s, i, fmt.Sprintf("No playlist named **%s** 🤔", name))
		return nil
	}
	if err != nil {
		return &interactionError{err, "Failed to load the playlist"}
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return &interactionError{err, "Failed to acknowledge the command"}
	}

	p := registry.Get(i.GuildID)
	if msg, ok := connectPlayer(p, channelID); !ok {
		followUp(s, i, msg)
		return nil
	}

	queued := 0
	for _, pt := range saved {
		t := pt.ToTrack(i.Member.User.ID, i.Member.User.Username)
		if _, err := p.AddTrack(t); err != nil {
			break
		}
		queued++
	}

	if queued == 0 {
		followUp(s, i, "The queue is full, try again later 🚧")
		return nil
	}

	log.WithContext(ctx).WithFields(log.Fields{
		"playlist": name,
		"queued":   queued,
	}).Info("Playlist loaded")
	followUp(s, i, fmt.Sprintf("Queued **%d** songs from **%s** 🎶", queued, name))
	return nil
}

// listPlaylists shows the playlists saved for this server
func listPlaylists(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	saved, err := playlists.List(i.GuildID)
	if err != nil {
		return &interactionError{err, "Failed to list playlists"}
	}
	if len(saved) == 0 {
		respond(s, i, "No playlists saved for this server yet 😶")
		return nil
	}

	var b strings.Builder
	for idx, p := range saved {
		fmt.Fprintf(&b, "`%d.` **%s** · saved %s\n", idx+1, p.Name, p.CreatedAt.Format("2 Jan 2006"))
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "Saved playlists",
		Description: b.String(),
		Color:       viper.GetInt("theme"),
	})
	return nil
}

// playlistInfo shows the songs of one saved playlist
func playlistInfo(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, name string) *interactionError {
	p, err := playlists.Info(i.GuildID, name)
	if errors.Is(err, playlist.ErrNotFound) {
		respond(s, i, fmt.Sprintf("No playlist named **%s** 🤔", name))
		return nil
	}
	if err != nil {
		return &interactionError{err, "Failed to fetch the playlist"}
	}

	var b strings.Builder
	for idx, pt := range p.Tracks {
		if idx >= queuePageSize {
			fmt.Fprintf(&b, "\n…and **%d** more", len(p.Tracks)-queuePageSize)
			break
		}
		t := pt.ToTrack("", "")
		fmt.Fprintf(&b, "`%d.` %s\n", idx+1, t.String())
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s (%d songs)", p.Name, len(p.Tracks)),
		Description: b.String(),
		Color:       viper.GetInt("theme"),
	})
	return nil
}

// deletePlaylist removes a saved playlist
func deletePlaylist(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, name string) *interactionError {
	err := playlists.Delete(i.GuildID, name)
	if errors.Is(err, playlist.ErrNotFound) {
		respond(s, i, fmt.Sprintf("No playlist named **%s** 🤔", name))
		return nil
	}
	if err != nil {
		return &interactionError{err, "Failed to delete the playlist"}
	}
	respond(s, i, fmt.Sprintf("Deleted playlist **%s** 🗑️", name))
	return nil
}
