// Package radio handles direct media links: audio files, HLS playlists and
// internet radio streams that ffmpeg can read without an extractor.
package radio

import (
	"errors"
	"net/url"
	"path"
	"strings"

	"github.com/samber/lo"

	"github.com/keshon/jukebox/internal/music/parsers"
	"github.com/keshon/jukebox/internal/music/sources"
	"github.com/keshon/jukebox/internal/playback"
)

var mediaExtensions = []string{
	".mp3", ".ogg", ".opus", ".oga", ".flac", ".wav", ".m4a", ".aac", ".webm",
	".m3u", ".m3u8", ".pls", ".xspf", ".asx",
}

type RadioSource struct{}

func New() *RadioSource {
	return &RadioSource{}
}

func (r *RadioSource) Match(input string) bool {
	return isLikelyStream(strings.TrimSpace(input))
}

func (r *RadioSource) Resolve(input string) (playback.Track, error) {
	input = strings.TrimSpace(input)
	if !sources.IsURL(input) {
		return playback.Track{}, errors.New("invalid radio URL: " + input)
	}

	return playback.Track{
		URL:     input,
		Parsers: r.AvailableParsers(),
	}, nil
}

func (r *RadioSource) SourceName() string {
	return sources.SourceRadio
}

func (r *RadioSource) AvailableParsers() []string {
	return []string{parsers.FfmpegLink, parsers.YtdlpLink}
}

func isLikelyStream(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return lo.Contains(mediaExtensions, strings.ToLower(path.Ext(u.Path)))
}
