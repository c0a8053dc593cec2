package kkdai

import (
	"errors"
	"strings"
)

// ExtractYouTubeID returns the video ID of a youtu.be or youtube.com/watch URL.
func ExtractYouTubeID(url string) (string, error) {
	switch {
	case strings.Contains(url, "youtu.be/"):
		parts := strings.Split(url, "youtu.be/")
		if len(parts) != 2 {
			return "", errors.New("invalid YouTube URL format")
		}
		id := strings.Split(parts[1], "?")[0]
		if id == "" {
			return "", errors.New("missing YouTube video ID")
		}
		return id, nil

	case strings.Contains(url, "youtube.com/watch?"):
		parts := strings.Split(url, "v=")
		if len(parts) != 2 {
			return "", errors.New("invalid YouTube URL format")
		}
		id := strings.Split(parts[1], "&")[0]
		if id == "" {
			return "", errors.New("missing YouTube video ID")
		}
		return id, nil

	default:
		return "", errors.New("unsupported URL format")
	}
}
