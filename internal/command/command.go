// Package command holds the prefix chat commands and the router that
// dispatches messages to them.
package command

import (
	"context"

	"github.com/keshon/jukebox/internal/playback"
)

// MessageContext is the invocation payload for prefix commands. Transports
// fill it from their own message type.
type MessageContext struct {
	GuildID   string
	ChannelID string
	AuthorID  string
	Author    string
	AuthorBot bool
	Content   string

	// VoiceChannelID is the voice channel the author is in, or "".
	VoiceChannelID string

	// Reply answers the message in its channel.
	Reply func(text string) error
}

// Playback is what the commands need from the playback service.
type Playback interface {
	Join(ctx context.Context, guildID, channelID string) error
	Play(ctx context.Context, guildID, channelID, url string) (playback.PlayResult, error)
	Skip(ctx context.Context, guildID string) (playback.Track, bool, error)
	Stop(ctx context.Context, guildID string) error
	Queue(ctx context.Context, guildID string) (playback.QueueView, error)
	Shuffle(ctx context.Context, guildID string) (bool, error)
	Tracks(ctx context.Context, guildID string) ([]playback.Track, error)
}

var _ Playback = (*playback.Service)(nil)

func messageContext(data any) (*MessageContext, bool) {
	m, ok := data.(*MessageContext)
	return m, ok && m != nil
}
