// Package stream opens a track through its parser chain and encodes the PCM
// into Opus frames ready for a voice connection.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/keshon/jukebox/internal/music/parsers"
	"github.com/keshon/jukebox/internal/playback"
)

// Registry maps parser names to the streamer that implements them.
type Registry map[string]parsers.Streamer

// TrackStream is an open PCM stream for a track.
type TrackStream struct {
	io.ReadCloser
	parser  string
	cleanup func()
}

func (m *TrackStream) GetMode() string {
	return m.parser
}

// Close closes the stream and releases the processes behind it.
func (m *TrackStream) Close() error {
	err := m.ReadCloser.Close()
	if m.cleanup != nil {
		m.cleanup()
	}
	return err
}

// AutoOpenStream tries the track's parsers in order and returns the first
// stream that opens. Every parser is tried once. On success t.CurrentParser
// names the parser in use.
func (r Registry) AutoOpenStream(ctx context.Context, t *playback.Track) (*TrackStream, error) {
	if len(t.Parsers) == 0 {
		return nil, fmt.Errorf("no parsers available for track %s", t.URL)
	}

	var errs []error
	for _, parser := range t.Parsers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t.CurrentParser = parser
		stream, err := r.OpenStream(ctx, t, parser)
		if err == nil {
			return stream, nil
		}

		errs = append(errs, fmt.Errorf("parser %s failed: %w", parser, err))
		log.Printf("[WARN] [Stream] Parser %s failed for track %s: %v, trying next parser...", parser, t.URL, err)
	}

	t.CurrentParser = ""
	return nil, fmt.Errorf("all parsers failed for track %s: %w", t.URL, errors.Join(errs...))
}

// OpenStream opens t with one named parser.
func (r Registry) OpenStream(ctx context.Context, t *playback.Track, parser string) (*TrackStream, error) {
	streamer, ok := r[parser]
	if !ok {
		return nil, fmt.Errorf("streamer not found for parser: %v", parser)
	}

	var (
		rc      io.ReadCloser
		cleanup func()
		err     error
	)
	if parsers.IsPipeMode(parser) && streamer.SupportsPipe() {
		rc, cleanup, err = streamer.GetPipeStream(ctx, t)
	} else {
		rc, cleanup, err = streamer.GetLinkStream(ctx, t)
	}
	if err != nil {
		return nil, err
	}

	return &TrackStream{
		ReadCloser: rc,
		parser:     parser,
		cleanup:    cleanup,
	}, nil
}
