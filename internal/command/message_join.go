package command

import (
	"context"
	"fmt"

	"github.com/keshon/jukebox/pkg/cmd"
)

type JoinCommand struct {
	Playback Playback
}

func (c *JoinCommand) Name() string        { return "join" }
func (c *JoinCommand) Description() string { return "Join your voice channel" }

func (c *JoinCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, ok := messageContext(inv.Data)
	if !ok {
		return nil
	}

	if m.VoiceChannelID == "" {
		return m.Reply("Please join a voice channel first")
	}

	if err := c.Playback.Join(ctx, m.GuildID, m.VoiceChannelID); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	return m.Reply("Joined voice channel")
}
