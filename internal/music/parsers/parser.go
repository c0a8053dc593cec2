// Package parsers turns a track URL into a raw PCM stream: signed 16-bit
// little endian, 48kHz, stereo. Each parser is an extractor paired with an
// ffmpeg transcode, and comes in a "link" flavour (ffmpeg reads a resolved
// media URL) and a "pipe" flavour (the extractor's bytes are piped into ffmpeg).
package parsers

import (
	"context"
	"io"
	"strings"

	"github.com/keshon/jukebox/internal/playback"
)

const (
	Channels   = 2
	SampleRate = 48000
	FrameSize  = 960 // 20ms at 48kHz
)

const (
	KkdaiPipe  = "kkdai-pipe"
	KkdaiLink  = "kkdai-link"
	YtdlpPipe  = "ytdlp-pipe"
	YtdlpLink  = "ytdlp-link"
	FfmpegLink = "ffmpeg-link"
)

// Streamer opens PCM streams. The returned cleanup releases every process and
// connection behind the stream and must be called once reading is done.
// Streamers may fill in the track's title and duration.
type Streamer interface {
	GetLinkStream(ctx context.Context, t *playback.Track) (io.ReadCloser, func(), error)
	GetPipeStream(ctx context.Context, t *playback.Track) (io.ReadCloser, func(), error)
	SupportsPipe() bool
}

// IsPipeMode reports whether the parser name asks for the pipe flavour.
func IsPipeMode(parser string) bool {
	return strings.HasSuffix(parser, "-pipe")
}
