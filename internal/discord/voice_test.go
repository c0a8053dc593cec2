package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/jukebox/internal/command"
	"github.com/keshon/jukebox/internal/playback"
)

func TestFindUserVoiceState(t *testing.T) {
	state := discordgo.NewState()
	require.NoError(t, state.GuildAdd(&discordgo.Guild{
		ID: "g",
		VoiceStates: []*discordgo.VoiceState{
			{UserID: "u1", ChannelID: "v1", GuildID: "g"},
			{UserID: "u2", ChannelID: "", GuildID: "g"},
		},
	}))

	vs, err := FindUserVoiceState(state, "g", "u1")
	require.NoError(t, err)
	assert.Equal(t, "v1", vs.ChannelID)

	_, err = FindUserVoiceState(state, "g", "u2")
	assert.Error(t, err)

	_, err = FindUserVoiceState(state, "missing", "u1")
	assert.Error(t, err)
}

type connHarness struct {
	conn        *voiceConn
	frames      chan []byte
	speaking    []bool
	disconnects int
}

func newConnHarness(buffer int) *connHarness {
	h := &connHarness{frames: make(chan []byte, buffer)}
	h.conn = &voiceConn{
		channelID:   "v1",
		sendTimeout: 20 * time.Millisecond,
		opus:        h.frames,
		speaking: func(on bool) error {
			h.speaking = append(h.speaking, on)
			return nil
		},
		disconnect: func() error {
			h.disconnects++
			return nil
		},
	}
	return h
}

func TestVoiceConn_SendOpus(t *testing.T) {
	h := newConnHarness(2)

	require.NoError(t, h.conn.SendOpus(context.Background(), []byte{1}))
	require.NoError(t, h.conn.SendOpus(context.Background(), []byte{2}))

	assert.Equal(t, []byte{1}, <-h.frames)
	assert.Equal(t, []byte{2}, <-h.frames)
	assert.Equal(t, []bool{true}, h.speaking, "speaking is announced once")
}

func TestVoiceConn_QuietUntilNextFrame(t *testing.T) {
	h := newConnHarness(2)

	require.NoError(t, h.conn.SendOpus(context.Background(), []byte{1}))
	h.conn.Quiet()
	h.conn.Quiet()
	require.NoError(t, h.conn.SendOpus(context.Background(), []byte{2}))

	assert.Equal(t, []bool{true, false, true}, h.speaking)

	require.NoError(t, h.conn.Destroy())
	h.conn.Quiet()
	assert.Equal(t, []bool{true, false, true, false}, h.speaking, "quiet after destroy does nothing")
}

func TestVoiceConn_SendTimeout(t *testing.T) {
	h := newConnHarness(0)

	err := h.conn.SendOpus(context.Background(), []byte{1})
	assert.ErrorContains(t, err, "timed out")
}

func TestVoiceConn_SendCancelled(t *testing.T) {
	h := newConnHarness(0)
	h.conn.sendTimeout = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.conn.SendOpus(ctx, []byte{1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVoiceConn_Destroy(t *testing.T) {
	h := newConnHarness(1)
	require.NoError(t, h.conn.SendOpus(context.Background(), []byte{1}))

	require.NoError(t, h.conn.Destroy())
	require.NoError(t, h.conn.Destroy())

	assert.Equal(t, 1, h.disconnects)
	assert.Equal(t, []bool{true, false}, h.speaking)
	assert.Error(t, h.conn.SendOpus(context.Background(), []byte{2}))
}

func TestVoiceConn_DestroyError(t *testing.T) {
	h := newConnHarness(1)
	h.conn.disconnect = func() error { return errors.New("ws closed") }

	assert.ErrorContains(t, h.conn.Destroy(), "ws closed")
}

type outputRecorder struct {
	playback.Player
	out playback.Output
}

func (r *outputRecorder) SetOutput(out playback.Output) { r.out = out }

func TestVoiceConn_Subscribe(t *testing.T) {
	h := newConnHarness(1)
	rec := &outputRecorder{}

	h.conn.Subscribe(rec)
	assert.Same(t, h.conn, rec.out)
	assert.Equal(t, "v1", h.conn.ChannelID())
}

func TestNewMessageContext(t *testing.T) {
	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		GuildID:   "g",
		ChannelID: "c",
		Content:   "!play https://a",
		Author:    &discordgo.User{ID: "u", Username: "name", Bot: true},
	}}

	var replied string
	mc := newMessageContext(m, func(s string) error { replied = s; return nil })

	assert.Equal(t, "g", mc.GuildID)
	assert.Equal(t, "c", mc.ChannelID)
	assert.Equal(t, "u", mc.AuthorID)
	assert.Equal(t, "name", mc.Author)
	assert.True(t, mc.AuthorBot)
	assert.Equal(t, "!play https://a", mc.Content)
	assert.Empty(t, mc.VoiceChannelID)

	require.NoError(t, mc.Reply("hi"))
	assert.Equal(t, "hi", replied)
}

func TestCommandList(t *testing.T) {
	r := command.NewRouter("?", nil)
	assert.Equal(t, "?join, ?listqueue, ?ping, ?play, ?queue, ?shuffle, ?skip, ?stop", commandList(r))
}
