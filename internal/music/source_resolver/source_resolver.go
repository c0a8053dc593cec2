// Package source_resolver picks the source for a URL and turns it into a
// track with its parser chain.
package source_resolver

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/samber/lo"

	"github.com/keshon/jukebox/internal/music/sources"
	"github.com/keshon/jukebox/internal/music/sources/radio"
	"github.com/keshon/jukebox/internal/music/sources/soundcloud"
	"github.com/keshon/jukebox/internal/music/sources/youtube"
	"github.com/keshon/jukebox/internal/playback"
)

var ErrNotURL = errors.New("input is not an http(s) URL")

type SourceResolver struct {
	Sources []sources.Source // checked in order, first match wins
}

var _ playback.TrackResolver = (*SourceResolver)(nil)

// New builds the default resolver. youtubeParsers sets the YouTube parser
// order.
func New(youtubeParsers []string) *SourceResolver {
	return &SourceResolver{
		Sources: []sources.Source{
			youtube.New(youtubeParsers),
			soundcloud.New(),
			radio.New(),
			sources.WebSource{},
		},
	}
}

func (r *SourceResolver) Resolve(ctx context.Context, input string) (playback.Track, error) {
	if err := ctx.Err(); err != nil {
		return playback.Track{}, err
	}

	input = strings.TrimSpace(input)
	if !sources.IsURL(input) {
		return playback.Track{}, ErrNotURL
	}

	src, ok := lo.Find(r.Sources, func(s sources.Source) bool { return s.Match(input) })
	if !ok {
		return playback.Track{}, errors.New("no matching source found")
	}

	t, err := src.Resolve(input)
	if err != nil {
		return playback.Track{}, err
	}
	log.Printf("[DEBUG] [Resolver] %s resolved by %s | Parsers=%v", t.URL, src.SourceName(), t.Parsers)
	return t, nil
}
