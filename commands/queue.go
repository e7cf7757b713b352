package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

const queuePageSize = 10

// currentQueue shows the current song and the upcoming queue
func currentQueue(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	p, ok := connectedPlayer(s, i)
	if !ok {
		return nil
	}

	current, hasCurrent := p.Queue.Current()
	pending := p.Queue.GetList()

	if !hasCurrent && len(pending) == 0 {
		respond(s, i, "The queue is empty 😶")
		return nil
	}

	var b strings.Builder
	if hasCurrent {
		fmt.Fprintf(&b, "**Now playing:** %s\n\n", current.String())
	}

	for idx, t := range pending {
		if idx >= queuePageSize {
			fmt.Fprintf(&b, "\n…and **%d** more", len(pending)-queuePageSize)
			break
		}
		fmt.Fprintf(&b, "`%d.` %s\n", idx+1, t.String())
	}

	title := fmt.Sprintf("Queue (%d songs)", len(pending))
	if p.LoopEnabled() {
		title += " 🔁"
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       title,
		Description: b.String(),
		Color:       viper.GetInt("theme"),
	})
	return nil
}

// shuffleQueue randomizes the order of the pending queue
func shuffleQueue(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	p, ok := connectedPlayer(s, i)
	if !ok {
		return nil
	}
	if p.Queue.IsEmpty() {
		respond(s, i, "There's nothing to shuffle 😶")
		return nil
	}
	p.Queue.Shuffle()
	respond(s, i, "Shuffled the queue 🔀")
	return nil
}

// clearQueue removes every pending song, leaving the current one playing
func clearQueue(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	p, ok := connectedPlayer(s, i)
	if !ok {
		return nil
	}
	size := p.Queue.Size()
	if size == 0 {
		respond(s, i, "The queue is already empty 😶")
		return nil
	}
	p.Queue.ClearPending()
	respond(s, i, fmt.Sprintf("Cleared **%d** songs from the queue 🧹", size))
	return nil
}

// removeTrack removes the song at the given queue position
func removeTrack(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	position := int(i.ApplicationCommandData().Options[0].IntValue())

	p, ok := connectedPlayer(s, i)
	if !ok {
		return nil
	}

	removed, ok := p.Queue.Remove(position)
	if !ok {
		respond(s, i, fmt.Sprintf("There's no song at position **%d** 🤔", position))
		return nil
	}
	respond(s, i, fmt.Sprintf("Removed **%s** from the queue 🗑️", removed.Title))
	return nil
}

// moveTrack moves a song from one queue position to another
func moveTrack(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) *interactionError {
	options := i.ApplicationCommandData().Options
	from := int(options[0].IntValue())
	to := int(options[1].IntValue())

	p, ok := connectedPlayer(s, i)
	if !ok {
		return nil
	}

	moved, ok := p.Queue.Move(from, to)
	if !ok {
		respond(s, i, "Those queue positions don't exist 🤔")
		return nil
	}
	respond(s, i, fmt.Sprintf("Moved **%s** to position **%d** ↕️", moved.Title, to))
	return nil
}
