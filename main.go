package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Serenade/commands"
	"Serenade/config"
	"Serenade/db_client"
	"Serenade/handlers"
	"Serenade/player"
	"Serenade/playlist"
	"Serenade/redis_client"
	"Serenade/spotify"
	"Serenade/voice"
	"Serenade/yt"

	"github.com/Strum355/log"
	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"
)

var production *bool

func main() {
	// Sets Flag to Debug Mode
	production = flag.Bool("p", false, "enables production with json logging")
	flag.Parse()
	if *production {
		log.InitJSONLogger(&log.Config{Output: os.Stdout})
	} else {
		log.InitSimpleLogger(&log.Config{Output: os.Stdout})
	}

	// Sets up Configurations for Viper
	config.InitConfig()

	// Creates Discord Bot Session
	s, err := discordgo.New("Bot " + viper.GetString("discord.token"))
	if err != nil {
		log.WithError(err).Error("Failed to create Discord session")
		return
	}

	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info("Bot has registered handlers")
	})

	redis_client.Init()
	db_client.Init()

	ytManager := yt.NewManager(redis_client.RDB)
	spotifySource := spotify.NewSource(context.Background())

	var playlists *playlist.Manager
	if db_client.DB != nil {
		playlists = playlist.NewManager(db_client.DB)
	}

	cfg := player.ConfigFromViper()
	registry := player.NewRegistry(func(guildID string) *player.Player {
		return player.New(guildID, voice.NewSession(s, guildID), ytManager, cfg)
	})

	// Configuring Intents and Adding Handlers
	handlers.HandlerConfig(s, registry)

	// Register Slash Commands
	commands.Setup(registry, ytManager, spotifySource, playlists)
	commands.RegisterSlashCommands(s)

	// Connecting to Discord Server Gateway
	s.Open()
	log.Info("Bot is initialising")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc
	gracefulShutdown(s, registry)
}

// gracefulShutdown handles cleaning up after the bot is shutdown
func gracefulShutdown(s *discordgo.Session, registry *player.Registry) {
	log.Info("Starting graceful shutdown...")

	registry.StopAll()

	for _, vc := range s.VoiceConnections {
		if vc != nil {
			vc.Disconnect()
		}
	}

	time.Sleep(time.Second)

	s.Close()

	log.Info("Cleanly exiting")
}
