// Package sources decides how a URL should be played: which site it belongs
// to, how to normalize it and which parsers can extract it.
package sources

import (
	"strings"

	"github.com/keshon/jukebox/internal/playback"
)

const (
	SourceYouTube    = "youtube"
	SourceSoundCloud = "soundcloud"
	SourceRadio      = "radio"
	SourceWeb        = "web"
)

type Source interface {
	// Match checks if this source can handle the given URL
	Match(input string) bool

	// Resolve turns a URL into a playable track
	Resolve(input string) (playback.Track, error)

	// SourceName returns the string identifier ("youtube", "radio", etc.)
	SourceName() string

	// AvailableParsers returns the parsers supported by this source, in the
	// order they are tried
	AvailableParsers() []string
}

func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
