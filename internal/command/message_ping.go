package command

import (
	"context"

	"github.com/keshon/jukebox/pkg/cmd"
)

type PingCommand struct{}

func (c *PingCommand) Name() string        { return "ping" }
func (c *PingCommand) Description() string { return "Check that the bot is alive" }

func (c *PingCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, ok := messageContext(inv.Data)
	if !ok {
		return nil
	}
	return m.Reply("pong")
}
