// Package middleware holds the cross-cutting wrappers applied to every chat
// command.
package middleware

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/keshon/jukebox/internal/command"
	"github.com/keshon/jukebox/pkg/cmd"
)

// WithCommandLogger wraps a command to log its execution
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			id := uuid.NewString()
			start := time.Now()

			var guildID, user string
			if m, ok := inv.Data.(*command.MessageContext); ok && m != nil {
				guildID, user = m.GuildID, m.Author
			}

			log.Printf("[DEBUG] [Command] [%s] %s %v | guild=%s user=%s", id, c.Name(), inv.Args, guildID, user)

			err := c.Run(ctx, inv)
			if err != nil {
				log.Printf("[ERR] [Command] [%s] %s failed after %s: %v", id, c.Name(), time.Since(start), err)
				return err
			}

			log.Printf("[INFO] [Command] [%s] %s done in %s | guild=%s user=%s", id, c.Name(), time.Since(start), guildID, user)
			return nil
		})
	}
}
