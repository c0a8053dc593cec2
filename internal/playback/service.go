package playback

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/keshon/jukebox/pkg/jobmgr"
	"github.com/keshon/jukebox/pkg/util"
)

// PlayResult describes what a play request did.
type PlayResult struct {
	Track  Track
	Queued bool // true when something was already playing
}

// QueueView is a snapshot of a guild's queue.
type QueueView struct {
	Created bool // the queue did not exist before this call
	Tracks  []Track
}

// guild is the serialized executor for one guild. Only its own goroutine
// touches state.
type guild struct {
	id    string
	tasks chan func()
	state State
}

// Service owns the connection, player and queue stores for every guild and
// runs one goroutine per guild that applies commands and player events in
// order. Create it with New and release it with Close.
type Service struct {
	registry  *Registry
	queues    *Queues
	voice     VoiceDialer
	newPlayer PlayerFactory
	resolver  TrackResolver
	jobs      *jobmgr.Manager

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	guilds map[string]*guild
	closed bool
}

func New(voice VoiceDialer, newPlayer PlayerFactory, resolver TrackResolver) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		registry:  NewRegistry(),
		queues:    NewQueues(),
		voice:     voice,
		newPlayer: newPlayer,
		resolver:  resolver,
		jobs: jobmgr.NewManager(func(msg string) {
			log.Printf("[DEBUG] [Playback] job %s", msg)
		}),
		ctx:    ctx,
		cancel: cancel,
		guilds: make(map[string]*guild),
	}
}

// Join connects the guild to channelID unless it already has a connection
// there. An existing connection elsewhere is replaced.
func (s *Service) Join(ctx context.Context, guildID, channelID string) error {
	return s.do(ctx, guildID, func(ctx context.Context, g *guild) error {
		if c, ok := s.registry.Connection(g.id); ok {
			if c.ChannelID() == channelID {
				return nil
			}
			if err := c.Destroy(); err != nil {
				log.Printf("[WARN] [Playback] [%s] Failed to leave channel %s: %v", g.id, c.ChannelID(), err)
			}
			s.registry.DeleteConnection(g.id)
		}

		c, err := s.connect(ctx, g, channelID)
		if err != nil {
			return err
		}
		if p, ok := s.registry.Player(g.id); ok {
			c.Subscribe(p)
		}
		return nil
	})
}

// Play starts url right away when the guild is idle, or appends it to the
// queue when a track is already playing. The guild is connected to channelID
// and given a player first if it lacks either.
func (s *Service) Play(ctx context.Context, guildID, channelID, url string) (PlayResult, error) {
	var res PlayResult
	err := s.do(ctx, guildID, func(ctx context.Context, g *guild) error {
		t, err := s.resolver.Resolve(ctx, url)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrUnresolvable, url, err)
		}

		c, ok := s.registry.Connection(g.id)
		if !ok {
			if c, err = s.connect(ctx, g, channelID); err != nil {
				return err
			}
			s.queues.EnsureQueue(g.id)
		}

		p := s.player(g)

		if g.state.Playing() {
			s.queues.Enqueue(g.id, t)
			log.Printf("[Playback] [%s] Queued %s | QueueLen=%d", g.id, t.URL, s.queues.Len(g.id))
			res = PlayResult{Track: t, Queued: true}
			return nil
		}

		if err := s.start(ctx, g, c, p, t); err != nil {
			return err
		}
		res = PlayResult{Track: g.state.Track}
		return nil
	})
	return res, err
}

// Skip abandons the current track and moves on to the next queued one. It
// returns the track now playing, or ok == false when the queue was empty and
// the player went idle.
func (s *Service) Skip(ctx context.Context, guildID string) (next Track, ok bool, err error) {
	err = s.do(ctx, guildID, func(ctx context.Context, g *guild) error {
		if _, has := s.registry.Player(g.id); !has {
			return ErrNoPlayer
		}
		if err := s.playNext(ctx, g); err != nil {
			return err
		}
		next, ok = g.state.Track, g.state.Playing()
		return nil
	})
	return next, ok, err
}

// Stop halts playback, leaves the voice channel and forgets the guild's
// connection and player. The queue is left as it is.
func (s *Service) Stop(ctx context.Context, guildID string) error {
	return s.do(ctx, guildID, func(_ context.Context, g *guild) error {
		s.teardown(g)
		return nil
	})
}

// Queue returns the guild's queue, creating an empty one when it has none.
func (s *Service) Queue(ctx context.Context, guildID string) (QueueView, error) {
	var view QueueView
	err := s.do(ctx, guildID, func(_ context.Context, g *guild) error {
		view.Created = s.queues.EnsureQueue(g.id)
		view.Tracks = s.queues.Tracks(g.id)
		return nil
	})
	return view, err
}

// Shuffle randomizes the guild's queue. It reports false when there was
// nothing to shuffle.
func (s *Service) Shuffle(ctx context.Context, guildID string) (bool, error) {
	var shuffled bool
	err := s.do(ctx, guildID, func(_ context.Context, g *guild) error {
		shuffled = s.queues.Shuffle(g.id)
		return nil
	})
	return shuffled, err
}

// Tracks returns a copy of the guild's queue without creating one.
func (s *Service) Tracks(ctx context.Context, guildID string) ([]Track, error) {
	var tracks []Track
	err := s.do(ctx, guildID, func(_ context.Context, g *guild) error {
		tracks = s.queues.Tracks(g.id)
		return nil
	})
	return tracks, err
}

// Close stops every guild's player, leaves every voice channel and ends the
// per-guild goroutines. Queues are dropped with the service.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	guilds := make([]*guild, 0, len(s.guilds))
	for _, g := range s.guilds {
		guilds = append(guilds, g)
	}
	s.mu.Unlock()

	err := util.Parallel(ctx, guilds, 4, func(ctx context.Context, g *guild) error {
		return s.submit(ctx, g, func(_ context.Context, g *guild) error {
			s.teardown(g)
			return nil
		})
	})

	log.Printf("[INFO] [Playback] Stopping guild workers. %s", s.jobs.Status())
	s.cancel()
	s.jobs.StopAll()
	return err
}

// connect joins channelID and records the connection.
func (s *Service) connect(ctx context.Context, g *guild, channelID string) (Connection, error) {
	c, err := s.voice.Join(ctx, g.id, channelID)
	if err != nil {
		return nil, fmt.Errorf("join voice channel %s: %w", channelID, err)
	}
	s.registry.SetConnection(g.id, c)
	log.Printf("[INFO] [Playback] [%s] Joined voice channel %s", g.id, channelID)
	return c, nil
}

// player returns the guild's player, creating it on first use.
func (s *Service) player(g *guild) Player {
	if p, ok := s.registry.Player(g.id); ok {
		return p
	}
	p := s.newPlayer(g.id)
	s.registry.SetPlayer(g.id, p)
	return p
}

// start routes p into c and begins playing t.
func (s *Service) start(ctx context.Context, g *guild, c Connection, p Player, t Track) error {
	if c != nil {
		c.Subscribe(p)
	}

	gen, err := p.Play(ctx, &t)
	if err != nil {
		s.goIdle(g)
		return fmt.Errorf("start %s: %w", t.URL, err)
	}

	g.state = playing(t, gen)
	log.Printf("[Playback] [%s] Now playing %q (%s) | Duration=%s | QueueLen=%d",
		g.id, t.String(), t.URL, t.Duration, s.queues.Len(g.id))
	return nil
}

// playNext starts the next queued track, or stops the player and goes idle
// when the queue is empty. The connection is kept either way. Without a
// connection nothing is dequeued.
func (s *Service) playNext(ctx context.Context, g *guild) error {
	p, ok := s.registry.Player(g.id)
	if !ok {
		g.state = idle()
		return ErrNoPlayer
	}

	c, ok := s.registry.Connection(g.id)
	if !ok {
		p.Stop()
		g.state = idle()
		return ErrNoConnection
	}

	next, ok := s.queues.DequeueNext(g.id)
	if !ok {
		p.Stop()
		s.goIdle(g)
		log.Printf("[Playback] [%s] Queue is empty, player is idle", g.id)
		return nil
	}

	if err := s.start(ctx, g, c, p, next); err != nil {
		p.Stop()
		return err
	}
	return nil
}

// goIdle moves g to Idle and lets its connection stop speaking.
func (s *Service) goIdle(g *guild) {
	g.state = idle()
	if c, ok := s.registry.Connection(g.id); ok {
		c.Quiet()
	}
}

// teardown is the body of Stop, shared with Close.
func (s *Service) teardown(g *guild) {
	if p, ok := s.registry.Player(g.id); ok {
		p.Stop()
	}
	if c, ok := s.registry.Connection(g.id); ok {
		if err := c.Destroy(); err != nil {
			log.Printf("[WARN] [Playback] [%s] Failed to destroy voice connection: %v", g.id, err)
		}
	}
	s.registry.Delete(g.id)
	g.state = idle()
	log.Printf("[INFO] [Playback] [%s] Stopped and left voice channel | QueueLen=%d", g.id, s.queues.Len(g.id))
}

// handle applies a player event to the guild's state machine.
func (s *Service) handle(ctx context.Context, g *guild, ev Event) {
	if !g.state.accepts(ev) {
		log.Printf("[DEBUG] [Playback] [%s] Ignoring stale %s event (gen %d)", g.id, ev.Kind, ev.Gen)
		return
	}

	switch ev.Kind {
	case EventFinished:
		log.Printf("[Playback] [%s] Finished %q", g.id, ev.Track.String())
		if err := s.playNext(ctx, g); err != nil {
			log.Printf("[ERR] [Playback] [%s] Failed to play next track: %v", g.id, err)
		}

	case EventError:
		log.Printf("[ERR] [Playback] [%s] Player error with track %s: %v", g.id, ev.Track.URL, ev.Err)
		if p, ok := s.registry.Player(g.id); ok {
			p.Stop()
		}
		s.goIdle(g)

	case EventConnectionError:
		s.connectionLost(ctx, g, ev)
	}
}

// connectionLost handles a failed send. A failure on a connection that join
// already replaced restarts the track on the current one; otherwise the
// current connection is the broken one and is torn down.
func (s *Service) connectionLost(ctx context.Context, g *guild, ev Event) {
	c, hasConn := s.registry.Connection(g.id)
	p, hasPlayer := s.registry.Player(g.id)

	if hasConn && hasPlayer && ev.Out != nil && ev.Out != Output(c) {
		log.Printf("[INFO] [Playback] [%s] Previous voice connection closed, resuming %q on channel %s", g.id, ev.Track.String(), c.ChannelID())
		if err := s.start(ctx, g, c, p, ev.Track); err != nil {
			log.Printf("[ERR] [Playback] [%s] Failed to resume track: %v", g.id, err)
		}
		return
	}

	log.Printf("[ERR] [Playback] [%s] Voice connection error: %v", g.id, ev.Err)
	if hasPlayer {
		p.Stop()
		p.SetOutput(nil)
	}
	if hasConn {
		if err := c.Destroy(); err != nil {
			log.Printf("[WARN] [Playback] [%s] Failed to destroy voice connection: %v", g.id, err)
		}
		s.registry.DeleteConnection(g.id)
	}
	g.state = idle()
}
