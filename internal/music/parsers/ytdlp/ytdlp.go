package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/keshon/jukebox/internal/music/parsers/ffmpeg"
	"github.com/keshon/jukebox/internal/playback"
)

const metadataTemplate = "%(url)s\t%(title)s\t%(duration)s"

// YTDLPStreamer extracts audio from any site yt-dlp supports.
type YTDLPStreamer struct {
	Path   string // yt-dlp executable, looked up in PATH when empty
	Proxy  string
	FFmpeg ffmpeg.Transcoder
}

func (s *YTDLPStreamer) GetLinkStream(ctx context.Context, t *playback.Track) (io.ReadCloser, func(), error) {
	meta, err := s.fetchMeta(ctx, t.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("[ytdlp-link] %w", err)
	}
	if meta.URL == "" {
		return nil, nil, errors.New("[ytdlp-link] empty URL returned from yt-dlp")
	}
	meta.apply(t)

	return s.FFmpeg.FromURL(ctx, meta.URL)
}

func (s *YTDLPStreamer) GetPipeStream(ctx context.Context, t *playback.Track) (io.ReadCloser, func(), error) {
	meta, err := s.fetchMeta(ctx, t.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("[ytdlp-pipe] %w", err)
	}
	meta.apply(t)

	dl := s.command().
		Format("bestaudio").
		Output("-").
		NoPart().
		NoPlaylist().
		BuildCommand(ctx, t.URL)

	out, err := dl.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("[ytdlp-pipe] yt-dlp stdout pipe error: %w", err)
	}
	if err := dl.Start(); err != nil {
		return nil, nil, fmt.Errorf("[ytdlp-pipe] yt-dlp start error: %w", err)
	}

	reader, cleanup, err := s.FFmpeg.FromReader(ctx, out)
	if err != nil {
		_ = dl.Process.Kill()
		_ = dl.Wait()
		return nil, nil, fmt.Errorf("[ytdlp-pipe] %w", err)
	}

	return reader, func() {
		cleanup()
		_ = dl.Process.Kill()
		_ = dl.Wait()
	}, nil
}

func (s *YTDLPStreamer) SupportsPipe() bool {
	return true
}

func (s *YTDLPStreamer) command() *ytdlp.Command {
	cmd := ytdlp.New().
		NoWarnings().
		IgnoreConfig()
	if s.Path != "" {
		cmd.SetExecutable(s.Path)
	}
	if s.Proxy != "" {
		cmd.Proxy(s.Proxy)
	}
	return cmd
}

type metadata struct {
	URL      string
	Title    string
	Duration time.Duration
}

func (m metadata) apply(t *playback.Track) {
	if m.Title != "" {
		t.Title = m.Title
	}
	if m.Duration > 0 {
		t.Duration = m.Duration
	}
}

// fetchMeta asks yt-dlp for the direct media URL and metadata without
// downloading anything.
func (s *YTDLPStreamer) fetchMeta(ctx context.Context, u string) (metadata, error) {
	res, err := s.command().
		Format("bestaudio").
		NoPlaylist().
		Print(metadataTemplate).
		Run(ctx, "--skip-download", u)
	if err != nil {
		return metadata{}, fmt.Errorf("yt-dlp metadata error: %w", err)
	}
	return parseMetadata(res.Stdout)
}

// parseMetadata reads the first complete line printed with metadataTemplate.
func parseMetadata(stdout string) (metadata, error) {
	for _, l := range strings.Split(strings.TrimSpace(stdout), "\n") {
		ps := strings.Split(l, "\t")
		if len(ps) < 3 {
			continue
		}
		m := metadata{URL: strings.TrimSpace(ps[0]), Title: strings.TrimSpace(ps[1])}
		if m.URL == "NA" {
			m.URL = ""
		}
		if m.Title == "NA" {
			m.Title = ""
		}
		if d, err := time.ParseDuration(strings.TrimSpace(ps[2]) + "s"); err == nil {
			m.Duration = d
		}
		return m, nil
	}
	return metadata{}, errors.New("failed to parse yt-dlp metadata")
}
