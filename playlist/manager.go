package playlist

import (
	"errors"

	"Serenade/track"

	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("playlist not found")
	ErrAlreadyExists = errors.New("a playlist with that name already exists")
	ErrEmptyQueue    = errors.New("nothing to save, the queue is empty")
)

// Manager persists guild playlists
type Manager struct {
	db *gorm.DB
}

// NewManager returns a Manager backed by the given database
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// Save stores the given tracks as a named playlist for the guild
func (m *Manager) Save(guildID, name, createdBy string, tracks []track.Track) error {
	if len(tracks) == 0 {
		return ErrEmptyQueue
	}

	var count int64
	m.db.Model(&Playlist{}).Where("guild_id = ? AND name = ?", guildID, name).Count(&count)
	if count > 0 {
		return ErrAlreadyExists
	}

	p := Playlist{
		GuildID:   guildID,
		Name:      name,
		CreatedBy: createdBy,
	}
	for i, t := range tracks {
		p.Tracks = append(p.Tracks, fromTrack(t, i+1))
	}

	return m.db.Create(&p).Error
}

// Load returns the tracks of a named playlist in saved order
func (m *Manager) Load(guildID, name string) ([]PlaylistTrack, error) {
	p, err := m.find(guildID, name)
	if err != nil {
		return nil, err
	}

	var tracks []PlaylistTrack
	err = m.db.Where("playlist_id = ?", p.ID).Order("position").Find(&tracks).Error
	return tracks, err
}

// List returns all playlists saved for the guild
func (m *Manager) List(guildID string) ([]Playlist, error) {
	var playlists []Playlist
	err := m.db.Where("guild_id = ?", guildID).Order("created_at").Find(&playlists).Error
	return playlists, err
}

// Info returns a playlist with its tracks preloaded
func (m *Manager) Info(guildID, name string) (*Playlist, error) {
	var p Playlist
	err := m.db.Preload("Tracks", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).Where("guild_id = ? AND name = ?", guildID, name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a named playlist and its tracks
func (m *Manager) Delete(guildID, name string) error {
	p, err := m.find(guildID, name)
	if err != nil {
		return err
	}

	if err := m.db.Where("playlist_id = ?", p.ID).Delete(&PlaylistTrack{}).Error; err != nil {
		return err
	}
	return m.db.Delete(p).Error
}

func (m *Manager) find(guildID, name string) (*Playlist, error) {
	var p Playlist
	err := m.db.Where("guild_id = ? AND name = ?", guildID, name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
