package media

import (
	"fmt"
	"regexp"

	"edulingua/errors"
)

// videoIDPattern matches the three common YouTube URL shapes
// (watch?v=, youtu.be/, embed/) and captures the 11-character video id.
var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)

// VideoInfo describes a resolved YouTube video. The thumbnail and embed
// URLs are synthesized from the id; the video's existence is not checked
// against YouTube.
type VideoInfo struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	EmbedURL     string `json:"embed_url"`
	Title        string `json:"title"`
	Type         string `json:"type"`
}

// ProcessYouTubeURL extracts the video id from url and builds a
// descriptor for it.
func ProcessYouTubeURL(url string) (*VideoInfo, error) {
	const op = "Media.ProcessYouTubeURL"

	match := videoIDPattern.FindStringSubmatch(url)
	if match == nil {
		return nil, errors.InvalidURL(op, nil, "Invalid YouTube URL")
	}

	videoID := match[1]
	return &VideoInfo{
		ID:           videoID,
		URL:          url,
		ThumbnailURL: fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", videoID),
		EmbedURL:     fmt.Sprintf("https://www.youtube.com/embed/%s", videoID),
		Title:        "YouTube Video - " + videoID,
		Type:         "youtube",
	}, nil
}
