package kkdai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"time"

	_ "github.com/bdandy/go-socks4"
	youtube "github.com/kkdai/youtube/v2"
	"golang.org/x/net/proxy"

	"github.com/keshon/jukebox/internal/music/parsers/ffmpeg"
	"github.com/keshon/jukebox/internal/playback"
)

// KKDAIStreamer extracts YouTube audio with the kkdai/youtube client.
type KKDAIStreamer struct {
	Client *youtube.Client
	FFmpeg ffmpeg.Transcoder
}

func New(proxyStr string, tr ffmpeg.Transcoder) *KKDAIStreamer {
	client, _ := NewKkdaiClient(proxyStr)
	return &KKDAIStreamer{Client: client, FFmpeg: tr}
}

func (s *KKDAIStreamer) GetLinkStream(ctx context.Context, t *playback.Track) (io.ReadCloser, func(), error) {
	video, format, err := s.lookup(ctx, t)
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-link] %w", err)
	}

	link, err := s.Client.GetStreamURLContext(ctx, video, format)
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-link] get stream URL error: %w", err)
	}

	return s.FFmpeg.FromURL(ctx, link)
}

func (s *KKDAIStreamer) GetPipeStream(ctx context.Context, t *playback.Track) (io.ReadCloser, func(), error) {
	video, format, err := s.lookup(ctx, t)
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-pipe] %w", err)
	}

	stream, _, err := s.Client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, nil, fmt.Errorf("[kkdai-pipe] get stream error: %w", err)
	}

	reader, cleanup, err := s.FFmpeg.FromReader(ctx, stream)
	if err != nil {
		stream.Close()
		return nil, nil, fmt.Errorf("[kkdai-pipe] %w", err)
	}

	return reader, func() {
		stream.Close()
		cleanup()
	}, nil
}

func (s *KKDAIStreamer) SupportsPipe() bool {
	return true
}

// lookup fetches the video, records its metadata on t and picks the first
// format that carries audio.
func (s *KKDAIStreamer) lookup(ctx context.Context, t *playback.Track) (*youtube.Video, *youtube.Format, error) {
	videoID, err := ExtractYouTubeID(t.URL)
	if err != nil {
		return nil, nil, err
	}

	video, err := s.Client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, nil, fmt.Errorf("youtube client error: %w", err)
	}

	t.Title = video.Title
	t.Duration = video.Duration

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, nil, errors.New("no audio formats found for video")
	}
	return video, &formats[0], nil
}

// NewKkdaiClient builds a YouTube client, routed through proxyStr when it is
// set. http, https, socks4 and socks5 proxies are supported. The second value
// is the proxy actually in use.
func NewKkdaiClient(proxyStr string) (*youtube.Client, string) {
	if proxyStr == "" {
		log.Println("[DEBUG] [kkdai] No proxy selected, going direct")
		return directClient(), ""
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		log.Printf("[WARN] [kkdai] Invalid proxy format: %v", err)
		return directClient(), ""
	}

	var transport *http.Transport

	switch proxyURL.Scheme {
	case "http", "https":
		log.Printf("[INFO] [kkdai] Using HTTP proxy: %s", proxyURL.Redacted())
		transport = &http.Transport{
			Proxy: http.ProxyURL(proxyURL),
		}
	case "socks5":
		log.Printf("[INFO] [kkdai] Using SOCKS5 proxy: %s", proxyURL.Redacted())
		auth := &proxy.Auth{}
		if proxyURL.User != nil {
			auth.User = proxyURL.User.Username()
			if pass, ok := proxyURL.User.Password(); ok {
				auth.Password = pass
			}
		}
		dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[WARN] [kkdai] SOCKS5 dialer error: %v", err)
			break
		}
		transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		}
	case "socks4":
		log.Printf("[INFO] [kkdai] Using SOCKS4 proxy: %s", proxyURL.Redacted())
		dialer, err := proxy.FromURL(proxyURL, &net.Dialer{
			Timeout: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[WARN] [kkdai] SOCKS4 dialer error: %v", err)
			break
		}
		transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		}
	default:
		log.Printf("[WARN] [kkdai] Unsupported proxy scheme: %s", proxyURL.Scheme)
	}

	if transport == nil {
		log.Println("[WARN] [kkdai] Falling back to a direct client")
		return directClient(), ""
	}

	return &youtube.Client{
		HTTPClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}, proxyStr
}

func directClient() *youtube.Client {
	return &youtube.Client{
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}
