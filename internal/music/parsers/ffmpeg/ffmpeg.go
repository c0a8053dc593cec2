package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/keshon/jukebox/internal/music/parsers"
	"github.com/keshon/jukebox/internal/playback"
)

// Transcoder runs ffmpeg to turn any input ffmpeg understands into PCM.
type Transcoder struct {
	Path string
}

func (tr Transcoder) path() string {
	if tr.Path == "" {
		return "ffmpeg"
	}
	return tr.Path
}

// Args builds the ffmpeg command line reading from input.
func Args(input string) []string {
	args := []string{}
	if input != "pipe:0" {
		args = append(args,
			"-reconnect", "1",
			"-reconnect_streamed", "1",
			"-reconnect_delay_max", "5",
		)
	}
	return append(args,
		"-i", input,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", parsers.SampleRate),
		"-ac", fmt.Sprintf("%d", parsers.Channels),
		"-loglevel", "warning",
		"pipe:1",
	)
}

// FromURL transcodes the media at url.
func (tr Transcoder) FromURL(ctx context.Context, url string) (io.ReadCloser, func(), error) {
	return tr.start(exec.CommandContext(ctx, tr.path(), Args(url)...))
}

// FromReader transcodes whatever is read from r.
func (tr Transcoder) FromReader(ctx context.Context, r io.Reader) (io.ReadCloser, func(), error) {
	cmd := exec.CommandContext(ctx, tr.path(), Args("pipe:0")...)
	cmd.Stdin = r
	return tr.start(cmd)
}

func (tr Transcoder) start(cmd *exec.Cmd) (io.ReadCloser, func(), error) {
	reader, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	cleanup := func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}

	return reader, cleanup, nil
}

// FFMPEGStreamer hands the track URL straight to ffmpeg. It suits direct
// audio files and internet radio streams.
type FFMPEGStreamer struct {
	Transcoder
}

func (s *FFMPEGStreamer) GetLinkStream(ctx context.Context, t *playback.Track) (io.ReadCloser, func(), error) {
	return s.FromURL(ctx, t.URL)
}

func (s *FFMPEGStreamer) GetPipeStream(ctx context.Context, t *playback.Track) (io.ReadCloser, func(), error) {
	return nil, nil, errors.New("pipe streaming not supported for now")
}

func (s *FFMPEGStreamer) SupportsPipe() bool {
	return false
}
