package command

import (
	"context"
	"errors"
	"log"

	"github.com/keshon/jukebox/pkg/cmd"
)

// Router turns chat messages into command invocations.
type Router struct {
	prefix   string
	registry *cmd.Registry
}

// NewRouter registers the music command set, each wrapped with mws.
func NewRouter(prefix string, pb Playback, mws ...cmd.Middleware) *Router {
	r := &Router{prefix: prefix, registry: cmd.NewRegistry()}

	for _, c := range []cmd.Command{
		&PingCommand{},
		&JoinCommand{Playback: pb},
		&PlayCommand{Playback: pb},
		&SkipCommand{Playback: pb},
		&StopCommand{Playback: pb},
		&QueueCommand{Playback: pb},
		&ShuffleCommand{Playback: pb},
		&ListQueueCommand{Playback: pb},
	} {
		r.registry.Register(cmd.Apply(c, mws...))
	}
	return r
}

func (r *Router) Prefix() string { return r.prefix }

// Commands lists the registered commands sorted by name.
func (r *Router) Commands() []cmd.Command { return r.registry.GetAll() }

// Handle runs the command in m, if any. Messages from bots, messages without
// the prefix and unknown command names are ignored.
func (r *Router) Handle(ctx context.Context, m *MessageContext) error {
	if m == nil || m.AuthorBot {
		return nil
	}

	inv, ok := cmd.Parse(r.prefix, m.Content)
	if !ok {
		return nil
	}

	inv.Data = m
	err := r.registry.Dispatch(ctx, inv)
	if errors.Is(err, cmd.ErrUnknownCommand) {
		log.Printf("[DEBUG] [Router] Ignoring unknown command %q", inv.Name)
		return nil
	}
	return err
}
