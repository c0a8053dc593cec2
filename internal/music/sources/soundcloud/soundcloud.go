package soundcloud

import (
	"errors"
	"net/url"
	"strings"

	"github.com/keshon/jukebox/internal/music/parsers"
	"github.com/keshon/jukebox/internal/music/sources"
	"github.com/keshon/jukebox/internal/playback"
)

type SoundCloudSource struct{}

func New() *SoundCloudSource {
	return &SoundCloudSource{}
}

func (s *SoundCloudSource) Match(input string) bool {
	u, err := url.Parse(strings.TrimSpace(input))
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	return host == "soundcloud.com" || host == "m.soundcloud.com" || host == "on.soundcloud.com"
}

func (s *SoundCloudSource) Resolve(input string) (playback.Track, error) {
	input = strings.TrimSpace(input)
	if !sources.IsURL(input) {
		return playback.Track{}, errors.New("invalid SoundCloud URL format")
	}

	return playback.Track{
		URL:     input,
		Parsers: s.AvailableParsers(),
	}, nil
}

func (s *SoundCloudSource) SourceName() string {
	return sources.SourceSoundCloud
}

func (s *SoundCloudSource) AvailableParsers() []string {
	return []string{parsers.YtdlpPipe, parsers.YtdlpLink}
}
