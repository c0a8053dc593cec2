package playback

import (
	"context"
	"fmt"
	"log"
)

// do runs fn on the guild's goroutine and waits for its result. The guild's
// goroutine is started on first use.
func (s *Service) do(ctx context.Context, guildID string, fn func(context.Context, *guild) error) error {
	g, err := s.guild(guildID)
	if err != nil {
		return err
	}
	return s.submit(ctx, g, fn)
}

func (s *Service) guild(id string) (*guild, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if g, ok := s.guilds[id]; ok {
		return g, nil
	}

	g := &guild{id: id, tasks: make(chan func()), state: idle()}
	if err := s.jobs.StartAsync(s.ctx, "guild:"+id, func(ctx context.Context) error {
		return s.serve(ctx, g)
	}); err != nil {
		return nil, err
	}
	s.guilds[id] = g
	return g, nil
}

func (s *Service) submit(ctx context.Context, g *guild, fn func(context.Context, *guild) error) error {
	done := make(chan error, 1)
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[ERR] [Playback] [%s] Recovered from panic: %v", g.id, r)
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- fn(ctx, g)
	}

	select {
	case g.tasks <- task:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrClosed
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// serve is the guild's goroutine. It alternates between queued tasks and
// events from the guild's current player, one at a time.
func (s *Service) serve(ctx context.Context, g *guild) error {
	for {
		var events <-chan Event
		if p, ok := s.registry.Player(g.id); ok {
			events = p.Events()
		}

		select {
		case <-ctx.Done():
			return nil
		case task := <-g.tasks:
			task()
		case ev := <-events:
			s.safeHandle(ctx, g, ev)
		}
	}
}

func (s *Service) safeHandle(ctx context.Context, g *guild, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERR] [Playback] [%s] Recovered from panic while handling %s event: %v", g.id, ev.Kind, r)
		}
	}()
	s.handle(ctx, g, ev)
}
