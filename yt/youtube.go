package yt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/kkdai/youtube/v2"
)

// searchResult is the subset of yt-dlp's JSON output we care about
type searchResult struct {
	ID string `json:"id"`
}

// fetchVideoMetadata fetches video metadata straight from YouTube
func fetchVideoMetadata(ctx context.Context, videoID string) (*youtube.Video, error) {
	client := youtube.Client{}
	return client.GetVideoContext(ctx, videoID)
}

// searchVideoID finds the first YouTube video ID matching a free-text query
func searchVideoID(query string) (string, error) {
	cmd := exec.Command("yt-dlp", "-j", "--flat-playlist", "ytsearch1:"+query)

	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("yt-dlp search failed: %s", stderr.String())
	}

	var entry searchResult
	if err := json.Unmarshal(bytes.TrimSpace(out), &entry); err != nil || entry.ID == "" {
		return "", fmt.Errorf("no results for %q", query)
	}
	return entry.ID, nil
}

// playlistVideoIDs returns all video IDs from a YouTube playlist URL
func playlistVideoIDs(playlistURL string) ([]string, error) {
	cmd := exec.Command("yt-dlp", "-j", "--flat-playlist", playlistURL)
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	lines := bytes.Split(out, []byte("\n"))
	videoIDs := []string{}
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		var entry searchResult
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		videoIDs = append(videoIDs, entry.ID)
	}

	return videoIDs, nil
}

// canonicalURL returns the stable watch URL used to re-resolve streams
func canonicalURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
