package playback

import (
	"context"
	"errors"
	"sync"
)

type fakeConn struct {
	mu         sync.Mutex
	channelID  string
	subscribed Player
	destroyed  bool
	quiets     int
	quietPanic bool
}

func newFakeConn(channelID string) *fakeConn { return &fakeConn{channelID: channelID} }

func (c *fakeConn) SendOpus(context.Context, []byte) error { return nil }
func (c *fakeConn) ChannelID() string                      { return c.channelID }

func (c *fakeConn) Subscribe(p Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribed = p
	p.SetOutput(c)
}

func (c *fakeConn) Quiet() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quiets++
	if c.quietPanic {
		panic("quiet failed")
	}
}

func (c *fakeConn) quietCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quiets
}

func (c *fakeConn) Destroy() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyed = true
	return nil
}

func (c *fakeConn) isDestroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
	err   error
}

func (d *fakeDialer) Join(_ context.Context, _, channelID string) (Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	c := newFakeConn(channelID)
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) joined() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

func (d *fakeDialer) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

// fakePlayer records what it was asked to play. Tests drive it through
// finish and fail, which emit events the way a real player would.
type fakePlayer struct {
	mu      sync.Mutex
	gen     uint64
	status  Status
	current Track
	played  []string
	stops   int
	out     Output
	playErr error
	events  chan Event
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{status: StatusIdle, events: make(chan Event, 16)}
}

func (p *fakePlayer) Play(_ context.Context, t *Track) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playErr != nil {
		p.status = StatusIdle
		return 0, p.playErr
	}
	p.gen++
	p.status = StatusPlaying
	p.current = *t
	p.played = append(p.played, t.URL)
	return p.gen, nil
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
	p.status = StatusIdle
}

func (p *fakePlayer) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *fakePlayer) SetOutput(out Output) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = out
}

func (p *fakePlayer) Events() <-chan Event { return p.events }

func (p *fakePlayer) emit(kind EventKind, err error, out Output) {
	p.mu.Lock()
	ev := Event{Kind: kind, Gen: p.gen, Track: p.current, Err: err, Out: out}
	p.status = StatusIdle
	p.mu.Unlock()
	p.events <- ev
}

func (p *fakePlayer) finish()        { p.emit(EventFinished, nil, nil) }
func (p *fakePlayer) fail(err error) { p.emit(EventError, err, nil) }

// dropConn reports a failed send on the output the player currently uses.
func (p *fakePlayer) dropConn(err error) { p.dropConnOn(p.output(), err) }

// dropConnOn reports a failed send on out.
func (p *fakePlayer) dropConnOn(out Output, err error) {
	p.emit(EventConnectionError, err, out)
}

func (p *fakePlayer) output() Output {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out
}

func (p *fakePlayer) playedURLs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.played...)
}

func (p *fakePlayer) stopCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stops
}

type fakeResolver struct {
	titles map[string]string
}

var errUnplayable = errors.New("unplayable")

func (r fakeResolver) Resolve(_ context.Context, url string) (Track, error) {
	switch url {
	case "bad":
		return Track{}, errUnplayable
	case "panic":
		panic("resolver exploded")
	}
	return Track{URL: url, Title: r.titles[url]}, nil
}
