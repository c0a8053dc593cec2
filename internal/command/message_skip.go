package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/keshon/jukebox/internal/playback"
	"github.com/keshon/jukebox/pkg/cmd"
)

type SkipCommand struct {
	Playback Playback
}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skip to the next queued track" }

func (c *SkipCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, ok := messageContext(inv.Data)
	if !ok {
		return nil
	}

	next, playing, err := c.Playback.Skip(ctx, m.GuildID)
	switch {
	case errors.Is(err, playback.ErrNoPlayer):
		return m.Reply("Nothing is playing")
	case errors.Is(err, playback.ErrNoConnection):
		return m.Reply("I'm not in a voice channel!")
	case err != nil:
		return fmt.Errorf("skip: %w", err)
	}

	if !playing {
		return m.Reply("The queue is empty")
	}
	return m.Reply("Now playing: " + next.String())
}
