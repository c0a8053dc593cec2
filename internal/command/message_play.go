package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/keshon/jukebox/internal/playback"
	"github.com/keshon/jukebox/pkg/cmd"
)

type PlayCommand struct {
	Playback Playback
}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play a URL, or queue it if something is playing" }

func (c *PlayCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, ok := messageContext(inv.Data)
	if !ok {
		return nil
	}

	if m.VoiceChannelID == "" {
		return m.Reply("Please join a voice channel first")
	}

	url := inv.Arg(0)
	if url == "" {
		return m.Reply("Please provide a valid URL to play.")
	}

	res, err := c.Playback.Play(ctx, m.GuildID, m.VoiceChannelID, url)
	switch {
	case errors.Is(err, playback.ErrUnresolvable):
		return m.Reply("Please provide a valid URL to play.")
	case err != nil:
		return fmt.Errorf("play %s: %w", url, err)
	}

	if res.Queued {
		return m.Reply("Added song to queue")
	}
	return m.Reply("Now playing: " + res.Track.String())
}
