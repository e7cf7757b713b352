package spotify

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Strum355/log"
	"github.com/spf13/viper"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

var urlPattern = regexp.MustCompile(`spotify\.com/(?:intl-[a-z]+/)?(track|playlist|album)/([a-zA-Z0-9]+)`)

// TrackInfo is the Spotify metadata needed to find the same song on
// YouTube; Spotify itself provides no playable stream.
type TrackInfo struct {
	Title    string
	Artist   string
	Duration int // seconds
}

// SearchQuery returns the text used to look the song up on YouTube
func (t TrackInfo) SearchQuery() string {
	return fmt.Sprintf("%s %s", t.Artist, t.Title)
}

// Source looks up track, playlist and album metadata on Spotify using the
// client-credentials flow. It is disabled when credentials are not
// configured.
type Source struct {
	client *spotify.Client
}

// NewSource authenticates against Spotify with the configured credentials.
// Missing credentials are not an error; the source just reports unavailable.
func NewSource(ctx context.Context) *Source {
	clientID := viper.GetString("spotify.client.id")
	clientSecret := viper.GetString("spotify.client.secret")
	if clientID == "" || clientSecret == "" {
		return &Source{}
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := config.Token(ctx)
	if err != nil {
		log.WithError(err).Error("Spotify authentication failed, integration disabled")
		return &Source{}
	}

	httpClient := spotifyauth.New().Client(ctx, token)
	return &Source{client: spotify.New(httpClient)}
}

// IsAvailable reports whether Spotify credentials were configured and valid
func (s *Source) IsAvailable() bool {
	return s.client != nil
}

// IsSpotifyURL reports whether the query is a Spotify link
func IsSpotifyURL(url string) bool {
	return urlPattern.MatchString(url)
}

// ExtractIDFromURL pulls the link kind (track, playlist or album) and ID out
// of a Spotify URL
func ExtractIDFromURL(url string) (kind, id string, ok bool) {
	matches := urlPattern.FindStringSubmatch(url)
	if matches == nil {
		return "", "", false
	}
	return matches[1], matches[2], true
}

// Track fetches metadata for a single Spotify track
func (s *Source) Track(ctx context.Context, id string) (TrackInfo, error) {
	full, err := s.client.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return TrackInfo{}, err
	}
	return simpleTrackInfo(full.SimpleTrack), nil
}

// Playlist fetches metadata for every track of a Spotify playlist
func (s *Source) Playlist(ctx context.Context, id string) ([]TrackInfo, error) {
	page, err := s.client.GetPlaylistItems(ctx, spotify.ID(id))
	if err != nil {
		return nil, err
	}

	tracks := make([]TrackInfo, 0, len(page.Items))
	for _, item := range page.Items {
		if item.Track.Track == nil {
			continue
		}
		tracks = append(tracks, simpleTrackInfo(item.Track.Track.SimpleTrack))
	}
	return tracks, nil
}

// Album fetches metadata for every track of a Spotify album
func (s *Source) Album(ctx context.Context, id string) ([]TrackInfo, error) {
	album, err := s.client.GetAlbum(ctx, spotify.ID(id))
	if err != nil {
		return nil, err
	}

	tracks := make([]TrackInfo, 0, len(album.Tracks.Tracks))
	for _, item := range album.Tracks.Tracks {
		tracks = append(tracks, simpleTrackInfo(item))
	}
	return tracks, nil
}

func simpleTrackInfo(t spotify.SimpleTrack) TrackInfo {
	artist := ""
	if len(t.Artists) > 0 {
		artist = t.Artists[0].Name
	}
	return TrackInfo{
		Title:    t.Name,
		Artist:   artist,
		Duration: int(t.TimeDuration().Seconds()),
	}
}
