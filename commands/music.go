package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Serenade/player"
	"Serenade/spotify"
	"Serenade/track"
	"Serenade/utils"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

// playMusic queues a song or playlist and starts playback if idle
func playMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	query := i.ApplicationCommandData().Options[0].StringValue()

	channelID, ok := userVoiceChannel(s, i)
	if !ok {
		respond(s, i, "You need to be in a voice channel to play music 🎧")
		return nil
	}
	if !sameVoiceChannel(s, i, channelID) {
		respond(s, i, "I'm already playing in another voice channel 🙉")
		return nil
	}

	// Resolution can take a while, acknowledge first
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

	requesterID := i.Member.User.ID
	requesterName := i.Member.User.Username

	switch {
	case spotify.IsSpotifyURL(query):
		return playSpotify(ctx, s, i, p, query, requesterID, requesterName)
	case strings.Contains(query, "list="):
		return playYoutubePlaylist(ctx, s, i, p, query, requesterID, requesterName)
	default:
		t, err := ytManager.Search(ctx, query, requesterID, requesterName)
		if err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to resolve query")
			followUp(s, i, "Couldn't find anything for that query 😔")
			return nil
		}
		queueTrack(s, i, p, t)
		return nil
	}
}

// playSpotify expands a Spotify link into YouTube tracks and queues them
func playSpotify(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, p *player.Player, query, requesterID, requesterName string) *interactionError {
	if !spotifySource.IsAvailable() {
		followUp(s, i, "Spotify support isn't configured on this bot 😔")
		return nil
	}

	kind, id, ok := spotify.ExtractIDFromURL(query)
	if !ok {
		followUp(s, i, "That Spotify link doesn't look right 🤔")
		return nil
	}

	var infos []spotify.TrackInfo
	switch kind {
	case "track":
		info, err := spotifySource.Track(ctx, id)
		if err != nil {
			log.WithContext(ctx).WithError(err).Error("Spotify track lookup failed")
			followUp(s, i, "Couldn't fetch that Spotify track 😔")
			return nil
		}
		infos = []spotify.TrackInfo{info}
	case "playlist":
		var err error
		infos, err = spotifySource.Playlist(ctx, id)
		if err != nil {
			log.WithContext(ctx).WithError(err).Error("Spotify playlist lookup failed")
			followUp(s, i, "Couldn't fetch that Spotify playlist 😔")
			return nil
		}
	case "album":
		var err error
		infos, err = spotifySource.Album(ctx, id)
		if err != nil {
			log.WithContext(ctx).WithError(err).Error("Spotify album lookup failed")
			followUp(s, i, "Couldn't fetch that Spotify album 😔")
			return nil
		}
	}

	if len(infos) == 0 {
		followUp(s, i, "That Spotify link has no playable songs 😶")
		return nil
	}

	// Single track gets the full embed, collections get a summary
	if len(infos) == 1 {
		t, err := ytManager.Search(ctx, infos[0].SearchQuery(), requesterID, requesterName)
		if err != nil {
			log.WithContext(ctx).WithError(err).Error("Failed to match Spotify track on YouTube")
			followUp(s, i, "Couldn't find that song on YouTube 😔")
			return nil
		}
		t.Source = track.SourceSpotify
		queueTrack(s, i, p, t)
		return nil
	}

	queued := 0
	for _, info := range infos {
		t, err := ytManager.Search(ctx, info.SearchQuery(), requesterID, requesterName)
		if err != nil {
			continue
		}
		t.Source = track.SourceSpotify
		if _, err := p.AddTrack(t); err != nil {
			break
		}
		queued++
	}

	if queued == 0 {
		followUp(s, i, "Couldn't queue any songs from that link 😔")
		return nil
	}
	followUp(s, i, fmt.Sprintf("Queued **%d** songs from Spotify 🎶", queued))
	return nil
}

// playYoutubePlaylist expands a YouTube playlist link and queues its videos
func playYoutubePlaylist(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, p *player.Player, query, requesterID, requesterName string) *interactionError {
	limit := viper.GetInt("player.max_queue_size")
	tracks, err := ytManager.Playlist(ctx, query, requesterID, requesterName, limit)
	if err != nil {
		log.WithContext(ctx).WithError(err).Error("Failed to expand playlist")
		followUp(s, i, "Couldn't read that playlist 😔")
		return nil
	}
	if len(tracks) == 0 {
		followUp(s, i, "That playlist has no playable videos 😶")
		return nil
	}

	queued := 0
	for _, t := range tracks {
		if _, err := p.AddTrack(t); err != nil {
			break
		}
		queued++
	}

	if queued == 0 {
		followUp(s, i, "The queue is full, try again later 🚧")
		return nil
	}
	followUp(s, i, fmt.Sprintf("Queued **%d** songs from the playlist 🎶", queued))
	return nil
}

// queueTrack adds a single track, reporting its position
func queueTrack(s *discordgo.Session, i *discordgo.InteractionCreate, p *player.Player, t track.Track) {
	position, err := p.AddTrack(t)
	if err != nil {
		if errors.Is(err, player.ErrQueueFull) {
			followUp(s, i, "The queue is full, try again later 🚧")
			return
		}
		followUp(s, i, "Couldn't add that song to the queue 😔")
		return
	}
	followUp(s, i, fmt.Sprintf("Queued **%s** `[%s]` at position **%d** 🎶", t.Title, t.FormattedDuration(), position))
}

// pauseMusic pauses the current song
func pauseMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	p, ok := connectedPlayer(s, i)
	if !ok {
		return nil
	}
	if !p.Pause() {
		respond(s, i, "Nothing is playing to pause 😶")
		return nil
	}
	respond(s, i, "Paused ⏸️")
	return nil
}

// resumeMusic resumes the paused song
func resumeMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	p, ok := connectedPlayer(s, i)
	if !ok {
		return nil
	}
	if !p.IsPaused() {
		respond(s, i, "Nothing is paused right now 😶")
		return nil
	}

	// Resuming resolves a fresh stream, acknowledge first
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return &interactionError{err, "Failed to acknowledge the command"}
	}

	if !p.Resume() {
		followUp(s, i, "Couldn't resume playback, try again 😔")
		return nil
	}
	followUp(s, i, "Resumed ▶️")
	return nil
}

// skipMusic skips to the next song in the queue
func skipMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	p, ok := connectedPlayer(s, i)
	if !ok {
		return nil
	}
	if !p.Skip() {
		respond(s, i, "Nothing is playing to skip 😶")
		return nil
	}
	respond(s, i, "Skipped ⏭️")
	return nil
}

// stopMusic stops playback and clears the queue
func stopMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	p, ok := connectedPlayer(s, i)
	if !ok {
		return nil
	}
	p.Stop()
	respond(s, i, "Stopped playback and cleared the queue ⏹️")
	return nil
}

// disconnectMusic drops the bot out of the voice channel
func disconnectMusic(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	p, ok := connectedPlayer(s, i)
	if !ok {
		return nil
	}
	p.Disconnect()
	respond(s, i, "Disconnected, see you next time 👋")
	return nil
}

// setVolume sets the playback volume as a percentage
func setVolume(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	percent := i.ApplicationCommandData().Options[0].IntValue()

	p, ok := connectedPlayer(s, i)
	if !ok {
		return nil
	}

	if err := p.SetVolume(float64(percent) / 100); err != nil {
		if errors.Is(err, player.ErrInvalidVolume) {
			respond(s, i, "Volume must be between 0 and 100 🔊")
			return nil
		}
		return &interactionError{err, "Failed to set the volume"}
	}
	respond(s, i, fmt.Sprintf("Volume set to **%d%%** 🔊", percent))
	return nil
}

// toggleLoop flips queue repeat on or off
func toggleLoop(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	p, ok := connectedPlayer(s, i)
	if !ok {
		return nil
	}
	if p.ToggleLoop() {
		respond(s, i, "Loop enabled, finished songs go back to the end of the queue 🔁")
	} else {
		respond(s, i, "Loop disabled ➡️")
	}
	return nil
}

// nowPlaying shows the current song with a progress bar
func nowPlaying(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	p, ok := connectedPlayer(s, i)
	if !ok {
		return nil
	}

	current, ok := p.Queue.Current()
	if !ok {
		respond(s, i, "Nothing is playing right now 😶")
		return nil
	}

	position := p.CurrentPosition()
	total := time.Duration(current.Duration) * time.Second

	status := "Playing ▶️"
	if p.IsPaused() {
		status = "Paused ⏸️"
	}

	embed := &discordgo.MessageEmbed{
		Title: status,
		Description: fmt.Sprintf("**[%s](%s)**\n%s\n`%s / %s`",
			current.Title,
			current.SourceURL,
			utils.ProgressBar(position, total),
			utils.FormatDuration(position),
			current.FormattedDuration(),
		),
		Color: viper.GetInt("theme"),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Requested by " + current.RequesterName,
		},
	}
	if current.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: current.ThumbnailURL}
	}

	respondEmbed(s, i, embed)
	return nil
}
