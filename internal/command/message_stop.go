package command

import (
	"context"
	"fmt"

	"github.com/keshon/jukebox/pkg/cmd"
)

type StopCommand struct {
	Playback Playback
}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop playing and leave the voice channel" }

func (c *StopCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, ok := messageContext(inv.Data)
	if !ok {
		return nil
	}

	if m.VoiceChannelID == "" {
		return m.Reply("I'm not in a voice channel!")
	}

	if err := c.Playback.Stop(ctx, m.GuildID); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return m.Reply("Stopped playing and left the voice channel.")
}
