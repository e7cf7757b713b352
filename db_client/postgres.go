package db_client

import (
	"time"

	"Serenade/playlist"

	"github.com/Strum355/log"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB *gorm.DB
)

// Init connects to Postgres and migrates the playlist tables. The bot keeps
// running without playlist support if the database never comes up.
func Init() {
	dsn := viper.GetString("postgres.dsn")

	var err error
	for range 10 {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			sqlDB, _ := DB.DB()
			if pingErr := sqlDB.Ping(); pingErr == nil {
				break
			}
		}
		log.Info("Waiting for Postgres to be ready...")
		time.Sleep(time.Second)
	}
	if err != nil {
		log.WithError(err).Error("Unable to connect to database, playlists disabled")
		DB = nil
		return
	}

	if err := DB.AutoMigrate(&playlist.Playlist{}, &playlist.PlaylistTrack{}); err != nil {
		log.WithError(err).Error("Unable to migrate playlist schema")
	}
}
