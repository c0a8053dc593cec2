package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/jukebox/internal/playback"
)

// Fakes for a real playback.Service.

type stubConn struct {
	channelID string
	dialer    *stubDialer
}

func (c *stubConn) SendOpus(context.Context, []byte) error { return nil }
func (c *stubConn) ChannelID() string                      { return c.channelID }
func (c *stubConn) Subscribe(p playback.Player)            { p.SetOutput(c) }
func (c *stubConn) Quiet()                                 {}

func (c *stubConn) Destroy() error {
	c.dialer.mu.Lock()
	defer c.dialer.mu.Unlock()
	c.dialer.open--
	return nil
}

// stubDialer counts the voice connections that are currently open.
type stubDialer struct {
	mu   sync.Mutex
	open int
}

func (d *stubDialer) Join(_ context.Context, _, channelID string) (playback.Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open++
	return &stubConn{channelID: channelID, dialer: d}, nil
}

func (d *stubDialer) connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open > 0
}

type stubPlayer struct {
	mu     sync.Mutex
	gen    uint64
	status playback.Status
	cur    playback.Track
	events chan playback.Event
}

func newStubPlayer() *stubPlayer {
	return &stubPlayer{status: playback.StatusIdle, events: make(chan playback.Event, 16)}
}

func (p *stubPlayer) Play(_ context.Context, t *playback.Track) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t.Title == "" {
		t.Title = "Title " + t.URL
	}
	p.gen++
	p.cur = *t
	p.status = playback.StatusPlaying
	return p.gen, nil
}

func (p *stubPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = playback.StatusIdle
}

func (p *stubPlayer) Status() playback.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *stubPlayer) SetOutput(playback.Output)     {}
func (p *stubPlayer) Events() <-chan playback.Event { return p.events }

func (p *stubPlayer) playing() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != playback.StatusPlaying {
		return ""
	}
	return p.cur.URL
}

func (p *stubPlayer) finish() {
	p.mu.Lock()
	ev := playback.Event{Kind: playback.EventFinished, Gen: p.gen, Track: p.cur}
	p.mu.Unlock()
	p.events <- ev
}

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, url string) (playback.Track, error) {
	if url == "not-a-url" {
		return playback.Track{}, errors.New("not an http(s) URL")
	}
	return playback.Track{URL: url}, nil
}

type chat struct {
	mu      sync.Mutex
	replies []string
}

func (c *chat) msg(content, voice string) *MessageContext {
	return &MessageContext{
		GuildID:        "g",
		ChannelID:      "text",
		AuthorID:       "u",
		Author:         "user",
		Content:        content,
		VoiceChannelID: voice,
		Reply: func(text string) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.replies = append(c.replies, text)
			return nil
		},
	}
}

func (c *chat) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.replies) == 0 {
		return ""
	}
	return c.replies[len(c.replies)-1]
}

func (c *chat) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.replies)
}

type env struct {
	router *Router
	svc    *playback.Service
	dialer *stubDialer
	chat   *chat
	mu     sync.Mutex
	player *stubPlayer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{chat: &chat{}, dialer: &stubDialer{}}
	e.svc = playback.New(e.dialer, func(string) playback.Player {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.player = newStubPlayer()
		return e.player
	}, stubResolver{})
	t.Cleanup(func() { _ = e.svc.Close(context.Background()) })
	e.router = NewRouter("!", e.svc)
	return e
}

func (e *env) send(t *testing.T, content, voice string) string {
	t.Helper()
	require.NoError(t, e.router.Handle(context.Background(), e.chat.msg(content, voice)))
	return e.chat.last()
}

func TestRouter_IgnoresBotsAndUnprefixed(t *testing.T) {
	e := newEnv(t)

	m := e.chat.msg("!ping", "")
	m.AuthorBot = true
	require.NoError(t, e.router.Handle(context.Background(), m))
	require.NoError(t, e.router.Handle(context.Background(), e.chat.msg("ping", "")))
	require.NoError(t, e.router.Handle(context.Background(), e.chat.msg("!", "")))
	require.NoError(t, e.router.Handle(context.Background(), e.chat.msg("!unknown", "")))
	require.NoError(t, e.router.Handle(context.Background(), nil))

	assert.Equal(t, 0, e.chat.count())
}

func TestRouter_Ping(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, "pong", e.send(t, "!PING", ""))
	assert.Equal(t, "pong", e.send(t, "!ping extra args", ""))
}

func TestRouter_Commands(t *testing.T) {
	e := newEnv(t)
	var names []string
	for _, c := range e.router.Commands() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"join", "listqueue", "ping", "play", "queue", "shuffle", "skip", "stop"}, names)
	assert.Equal(t, "!", e.router.Prefix())
}

func TestRouter_Join(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, "Please join a voice channel first", e.send(t, "!join", ""))
	assert.Equal(t, "Joined voice channel", e.send(t, "!join", "voice"))
	assert.True(t, e.dialer.connected())
}

func TestRouter_PlayGuidance(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, "Please join a voice channel first", e.send(t, "!play https://a", ""))
	assert.Equal(t, "Please provide a valid URL to play.", e.send(t, "!play", "voice"))
	assert.Equal(t, "Please provide a valid URL to play.", e.send(t, "!play not-a-url", "voice"))
}

func TestRouter_PlayThenQueue(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, "Now playing: Title https://a", e.send(t, "!play https://a", "voice"))
	assert.Equal(t, "Added song to queue", e.send(t, "!play https://b", "voice"))
	assert.Equal(t, "Added song to queue", e.send(t, "!play https://c", "voice"))

	assert.Equal(t, "Queue:\n1. https://b\n2. https://c", e.send(t, "!queue", ""))
	assert.Equal(t, "Queue:\n1. https://b\n2. https://c", e.send(t, "!listqueue", ""))
	assert.Equal(t, "Queue shuffled", e.send(t, "!shuffle", ""))
}

func TestRouter_ScenarioAB(t *testing.T) {
	e := newEnv(t)

	e.send(t, "!play https://a", "voice")
	e.send(t, "!play https://b", "voice")

	e.mu.Lock()
	p := e.player
	e.mu.Unlock()
	p.finish()

	require.Eventually(t, func() bool {
		return p.playing() == "https://b"
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "The queue is empty", e.send(t, "!queue", ""))

	assert.Equal(t, "Stopped playing and left the voice channel.", e.send(t, "!stop", "voice"))
	assert.False(t, e.dialer.connected())
}

func TestRouter_Skip(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, "Nothing is playing", e.send(t, "!skip", ""))

	e.send(t, "!play https://a", "voice")
	e.send(t, "!play https://b", "voice")
	assert.Equal(t, "Now playing: Title https://b", e.send(t, "!skip", ""))
	assert.Equal(t, "The queue is empty", e.send(t, "!skip", ""))
}

func TestRouter_Stop(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, "I'm not in a voice channel!", e.send(t, "!stop", ""))

	e.send(t, "!play https://a", "voice")
	e.send(t, "!play https://b", "voice")
	assert.Equal(t, "Stopped playing and left the voice channel.", e.send(t, "!stop", "voice"))

	// The queue survives stop.
	assert.Equal(t, "Queue:\n1. https://b", e.send(t, "!listqueue", ""))
}

func TestRouter_QueueLifecycle(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, "There is no queue", e.send(t, "!listqueue", ""))
	assert.Equal(t, "There is no queue", e.send(t, "!shuffle", ""))
	assert.Equal(t, "There is no queue, new queue created", e.send(t, "!queue", ""))
	assert.Equal(t, "The queue is empty", e.send(t, "!queue", ""))
	assert.Equal(t, "There is no queue", e.send(t, "!listqueue", ""))
}
