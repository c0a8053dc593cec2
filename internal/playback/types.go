// Package playback owns the per-guild voice state of the bot: which voice
// connection and audio player a guild has, its pending track queue, and the
// state machine that advances from one track to the next.
//
// Every operation on a guild runs on that guild's own goroutine, so commands
// and player notifications for one guild are applied strictly in order while
// other guilds proceed independently.
package playback

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNoConnection = errors.New("no voice connection")
	ErrNoPlayer     = errors.New("no audio player")
	ErrClosed       = errors.New("playback service is closed")
	ErrUnresolvable = errors.New("url cannot be played")
)

// Track is a reference to something playable plus whatever metadata the
// extractors learned about it.
type Track struct {
	URL           string
	Title         string
	Duration      time.Duration
	Parsers       []string // parsers to try, in order
	CurrentParser string
}

// String returns the title when known and the URL otherwise.
func (t Track) String() string {
	if t.Title != "" {
		return t.Title
	}
	return t.URL
}

// Status is the coarse state of an audio player.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPlaying Status = "playing"
)

// EventKind tells why a player notified its guild.
type EventKind int

const (
	// EventFinished: the track reached its end.
	EventFinished EventKind = iota
	// EventError: decoding or streaming the track failed.
	EventError
	// EventConnectionError: the voice connection stopped accepting audio.
	EventConnectionError
)

func (k EventKind) String() string {
	switch k {
	case EventFinished:
		return "finished"
	case EventError:
		return "error"
	case EventConnectionError:
		return "connection-error"
	default:
		return "unknown"
	}
}

// Event is a player notification. Gen identifies the Play call it belongs to,
// so notifications from a replaced track can be told apart from current ones.
type Event struct {
	Kind  EventKind
	Gen   uint64
	Track Track
	Err   error
	// Out is the output that failed, set for EventConnectionError.
	Out Output
}

// Output accepts encoded Opus frames.
type Output interface {
	SendOpus(ctx context.Context, frame []byte) error
}

// Player streams one track at a time into its output.
type Player interface {
	// Play stops whatever is playing and starts t, filling in metadata learned
	// while opening it. The returned generation tags later events for t.
	Play(ctx context.Context, t *Track) (uint64, error)
	// Stop ends playback. It is a no-op when idle and emits no event.
	Stop()
	Status() Status
	SetOutput(out Output)
	Events() <-chan Event
}

// Connection is an established voice session for one guild.
type Connection interface {
	Output
	ChannelID() string
	// Subscribe routes p's audio into this connection.
	Subscribe(p Player)
	// Quiet tells the voice server the bot stopped sending audio.
	Quiet()
	Destroy() error
}

// VoiceDialer opens voice connections.
type VoiceDialer interface {
	Join(ctx context.Context, guildID, channelID string) (Connection, error)
}

// PlayerFactory creates the audio player for a guild.
type PlayerFactory func(guildID string) Player

// TrackResolver turns a user supplied URL into a Track with its parser chain.
type TrackResolver interface {
	Resolve(ctx context.Context, url string) (Track, error)
}
