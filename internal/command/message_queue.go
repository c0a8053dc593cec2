package command

import (
	"context"
	"fmt"

	"github.com/keshon/jukebox/internal/playback"
	"github.com/keshon/jukebox/pkg/cmd"
)

type QueueCommand struct {
	Playback Playback
}

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Show the queue, creating it if needed" }

func (c *QueueCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, ok := messageContext(inv.Data)
	if !ok {
		return nil
	}

	view, err := c.Playback.Queue(ctx, m.GuildID)
	if err != nil {
		return fmt.Errorf("queue: %w", err)
	}

	switch {
	case view.Created:
		return m.Reply("There is no queue, new queue created")
	case len(view.Tracks) == 0:
		return m.Reply("The queue is empty")
	default:
		return m.Reply("Queue:\n" + playback.RenderList(view.Tracks))
	}
}

type ListQueueCommand struct {
	Playback Playback
}

func (c *ListQueueCommand) Name() string        { return "listqueue" }
func (c *ListQueueCommand) Description() string { return "List the queued tracks" }

func (c *ListQueueCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, ok := messageContext(inv.Data)
	if !ok {
		return nil
	}

	tracks, err := c.Playback.Tracks(ctx, m.GuildID)
	if err != nil {
		return fmt.Errorf("listqueue: %w", err)
	}

	if len(tracks) == 0 {
		return m.Reply("There is no queue")
	}
	return m.Reply("Queue:\n" + playback.RenderList(tracks))
}

type ShuffleCommand struct {
	Playback Playback
}

func (c *ShuffleCommand) Name() string        { return "shuffle" }
func (c *ShuffleCommand) Description() string { return "Shuffle the queue" }

func (c *ShuffleCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, ok := messageContext(inv.Data)
	if !ok {
		return nil
	}

	shuffled, err := c.Playback.Shuffle(ctx, m.GuildID)
	if err != nil {
		return fmt.Errorf("shuffle: %w", err)
	}

	if !shuffled {
		return m.Reply("There is no queue")
	}
	return m.Reply("Queue shuffled")
}
