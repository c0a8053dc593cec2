package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/jukebox/internal/playback"
	"github.com/keshon/jukebox/pkg/cmd"
)

// failingPlayback fails every call with err.
type failingPlayback struct{ err error }

func (f failingPlayback) Join(context.Context, string, string) error { return f.err }
func (f failingPlayback) Play(context.Context, string, string, string) (playback.PlayResult, error) {
	return playback.PlayResult{}, f.err
}
func (f failingPlayback) Skip(context.Context, string) (playback.Track, bool, error) {
	return playback.Track{}, false, f.err
}
func (f failingPlayback) Stop(context.Context, string) error { return f.err }
func (f failingPlayback) Queue(context.Context, string) (playback.QueueView, error) {
	return playback.QueueView{}, f.err
}
func (f failingPlayback) Shuffle(context.Context, string) (bool, error) { return false, f.err }
func (f failingPlayback) Tracks(context.Context, string) ([]playback.Track, error) {
	return nil, f.err
}

func TestCommands_ResourceErrorsAreReturnedNotReplied(t *testing.T) {
	boom := errors.New("voice gateway down")
	r := NewRouter("!", failingPlayback{err: boom})

	for _, content := range []string{"!join", "!play https://a", "!skip", "!stop", "!queue", "!shuffle", "!listqueue"} {
		t.Run(content, func(t *testing.T) {
			c := &chat{}
			err := r.Handle(context.Background(), c.msg(content, "voice"))
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, 0, c.count())
		})
	}
}

func TestCommands_SkipWithoutConnection(t *testing.T) {
	r := NewRouter("!", failingPlayback{err: playback.ErrNoConnection})
	c := &chat{}

	require.NoError(t, r.Handle(context.Background(), c.msg("!skip", "voice")))
	assert.Equal(t, "I'm not in a voice channel!", c.last())
}

func TestCommands_IgnoreForeignPayload(t *testing.T) {
	for _, c := range []cmd.Command{
		&PingCommand{},
		&JoinCommand{},
		&PlayCommand{},
		&SkipCommand{},
		&StopCommand{},
		&QueueCommand{},
		&ShuffleCommand{},
		&ListQueueCommand{},
	} {
		require.NoError(t, c.Run(context.Background(), &cmd.Invocation{Name: c.Name(), Data: "not a message"}), c.Name())
		assert.NotEmpty(t, c.Description())
	}
}

func TestRouter_AppliesMiddleware(t *testing.T) {
	var seen []string
	mw := func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			seen = append(seen, inv.Name)
			return c.Run(ctx, inv)
		})
	}

	r := NewRouter("?", failingPlayback{}, mw)
	c := &chat{}
	require.NoError(t, r.Handle(context.Background(), c.msg("?ping", "")))
	require.NoError(t, r.Handle(context.Background(), c.msg("!ping", "")))

	assert.Equal(t, []string{"ping"}, seen)
	assert.Equal(t, "pong", c.last())
}
