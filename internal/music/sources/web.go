package sources

import (
	"errors"
	"strings"

	"github.com/keshon/jukebox/internal/music/parsers"
	"github.com/keshon/jukebox/internal/playback"
)

// WebSource is the catch-all for http(s) pages: yt-dlp knows most video
// sites, and ffmpeg gets a last try in case the link is raw media.
type WebSource struct{}

func (WebSource) Match(input string) bool {
	return IsURL(strings.TrimSpace(input))
}

func (w WebSource) Resolve(input string) (playback.Track, error) {
	input = strings.TrimSpace(input)
	if !IsURL(input) {
		return playback.Track{}, errors.New("not an http(s) URL: " + input)
	}
	return playback.Track{URL: input, Parsers: w.AvailableParsers()}, nil
}

func (WebSource) SourceName() string { return SourceWeb }

func (WebSource) AvailableParsers() []string {
	return []string{parsers.YtdlpPipe, parsers.YtdlpLink, parsers.FfmpegLink}
}
