// Package player streams one track at a time into a voice output and reports
// how each track ended on an event channel.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/keshon/jukebox/internal/playback"
)

var ErrNoOutput = errors.New("player has no output")

// FrameReader yields encoded Opus frames until io.EOF.
type FrameReader interface {
	ReadFrame() ([]byte, error)
	Close() error
}

// OpenFunc opens a track for playback. It may fill in the track's metadata.
type OpenFunc func(ctx context.Context, t *playback.Track) (FrameReader, error)

var _ playback.Player = (*Player)(nil)

type Player struct {
	mu      sync.Mutex
	guildID string
	open    OpenFunc
	out     playback.Output
	status  playback.Status
	gen     uint64

	base         context.Context
	cancel       context.CancelFunc
	playbackDone chan struct{}

	events chan playback.Event
}

// New creates a Player. Streams opened by the player live until the track ends,
// Stop is called or ctx is cancelled, whichever comes first.
func New(ctx context.Context, guildID string, open OpenFunc) *Player {
	return &Player{
		guildID: guildID,
		open:    open,
		status:  playback.StatusIdle,
		base:    ctx,
		events:  make(chan playback.Event, 16), // buffered to reduce drops
	}
}

// Play stops the current track, if any, and starts t.
func (p *Player) Play(_ context.Context, t *playback.Track) (uint64, error) {
	p.Stop()

	log.Printf("[Player] [%s] Preparing playback for track %s | Parsers=%v", p.guildID, t.URL, t.Parsers)

	ctx, cancel := context.WithCancel(p.base)
	reader, err := p.open(ctx, t)
	if err != nil {
		cancel()
		log.Printf("[Player] [%s] Failed to open stream for track %s: %v", p.guildID, t.URL, err)
		return 0, fmt.Errorf("failed to open stream for track: %w", err)
	}

	p.mu.Lock()
	p.gen++
	gen := p.gen
	track := *t
	p.status = playback.StatusPlaying
	p.cancel = cancel
	done := make(chan struct{})
	p.playbackDone = done
	p.mu.Unlock()

	log.Printf("[Player] [%s] Starting track %q | Parser=%s", p.guildID, track.String(), track.CurrentParser)

	go p.runPlayback(ctx, gen, track, reader, done)
	return gen, nil
}

// Stop ends the current track and waits for its goroutine to finish. It is a
// no-op when nothing is playing and never emits an event.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.playbackDone
	p.cancel, p.playbackDone = nil, nil
	p.status = playback.StatusIdle
	p.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done // wait for goroutine to finish
	log.Printf("[DEBUG] [Player] [%s] Playback goroutine finished", p.guildID)
}

func (p *Player) Status() playback.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// SetOutput sets where frames go. It may be changed while playing.
func (p *Player) SetOutput(out playback.Output) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = out
}

func (p *Player) output() playback.Output {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out
}

func (p *Player) Events() <-chan playback.Event {
	return p.events
}

// runPlayback pumps frames from reader into the output until the track ends.
func (p *Player) runPlayback(ctx context.Context, gen uint64, t playback.Track, reader FrameReader, done chan struct{}) {
	defer close(done)
	defer reader.Close()

	for {
		frame, err := reader.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				log.Printf("[Player] [%s] Playback finished successfully: %q", p.guildID, t.String())
				p.finish(gen, playback.Event{Kind: playback.EventFinished, Track: t})
				return
			}
			log.Printf("[Player] [%s] Playback error for track %q: %v", p.guildID, t.String(), err)
			p.finish(gen, playback.Event{Kind: playback.EventError, Track: t, Err: err})
			return
		}

		if !p.send(ctx, gen, t, frame) {
			return
		}
	}
}

// send delivers frame to the current output. An output swapped while a send
// was in flight gets the frame again. It reports whether playback continues.
func (p *Player) send(ctx context.Context, gen uint64, t playback.Track, frame []byte) bool {
	for {
		out := p.output()
		if out == nil {
			p.finish(gen, playback.Event{Kind: playback.EventError, Track: t, Err: ErrNoOutput})
			return false
		}

		err := out.SendOpus(ctx, frame)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		if p.output() != out {
			log.Printf("[DEBUG] [Player] [%s] Output changed during send, resending frame", p.guildID)
			continue
		}

		log.Printf("[Player] [%s] Output error for track %q: %v", p.guildID, t.String(), err)
		p.finish(gen, playback.Event{Kind: playback.EventConnectionError, Track: t, Err: err, Out: out})
		return false
	}
}

// finish marks the player idle if gen is still current and reports ev.
func (p *Player) finish(gen uint64, ev playback.Event) {
	var cancel context.CancelFunc
	p.mu.Lock()
	if p.gen == gen {
		cancel = p.cancel
		p.status = playback.StatusIdle
		p.cancel, p.playbackDone = nil, nil
	}
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	ev.Gen = gen
	p.emitStatus(ev)
}

// emitStatus safely sends player status
func (p *Player) emitStatus(ev playback.Event) {
	select {
	case p.events <- ev:
	default:
		log.Printf("[WARN] [Player] [%s] Player event dropped (channel full) - %s", p.guildID, ev.Kind)
	}
}
