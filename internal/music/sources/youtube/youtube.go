package youtube

import (
	"errors"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/keshon/jukebox/internal/music/parsers"
	"github.com/keshon/jukebox/internal/music/sources"
	"github.com/keshon/jukebox/internal/playback"
)

var DefaultParsers = []string{parsers.KkdaiPipe, parsers.KkdaiLink, parsers.YtdlpPipe, parsers.YtdlpLink}

type YouTubeSource struct {
	parsers []string
}

// New creates the YouTube source. order sets the parser order; unknown names
// are dropped and an empty result falls back to DefaultParsers.
func New(order []string) *YouTubeSource {
	ps := lo.Uniq(lo.FilterMap(order, func(p string, _ int) (string, bool) {
		p = strings.TrimSpace(p)
		return p, slices.Contains(DefaultParsers, p)
	}))
	if len(ps) == 0 {
		ps = slices.Clone(DefaultParsers)
	}
	return &YouTubeSource{parsers: ps}
}

func (y *YouTubeSource) Match(input string) bool {
	return isYouTubeURL(input)
}

func (y *YouTubeSource) Resolve(input string) (playback.Track, error) {
	input = strings.TrimSpace(input)
	if !isYouTubeVideoURL(input) {
		return playback.Track{}, errors.New("invalid YouTube URL format")
	}

	return playback.Track{
		URL:     CleanVideoURL(input),
		Parsers: y.AvailableParsers(),
	}, nil
}

func (y *YouTubeSource) SourceName() string {
	return sources.SourceYouTube
}

func (y *YouTubeSource) AvailableParsers() []string {
	return slices.Clone(y.parsers)
}
