package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/jukebox/internal/playback"
)

// VoiceState holds minimal voice channel state for a user.
type VoiceState struct {
	ChannelID string
	UserID    string
}

// FindUserVoiceState finds the voice state of a user
func FindUserVoiceState(state *discordgo.State, guildID, userID string) (*VoiceState, error) {
	guild, err := state.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving guild: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return &VoiceState{
				ChannelID: vs.ChannelID,
				UserID:    vs.UserID,
			}, nil
		}
	}
	return nil, errors.New("user not in any voice channel")
}

// VoiceDialer joins voice channels through a gateway session.
type VoiceDialer struct {
	dg          *discordgo.Session
	sendTimeout time.Duration
	debug       bool
}

func (d *VoiceDialer) Join(ctx context.Context, guildID, channelID string) (playback.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vc, err := d.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}
	if d.debug {
		vc.LogLevel = discordgo.LogDebug
	}

	log.Printf("[INFO] [Voice] Joined voice channel %s on guild %s", channelID, guildID)
	return newVoiceConn(vc, channelID, d.sendTimeout), nil
}

// voiceConn adapts a discordgo voice connection to playback.Connection.
type voiceConn struct {
	channelID   string
	sendTimeout time.Duration
	opus        chan<- []byte
	speaking    func(bool) error
	disconnect  func() error

	mu        sync.Mutex
	talking   bool
	destroyed bool
}

func newVoiceConn(vc *discordgo.VoiceConnection, channelID string, sendTimeout time.Duration) *voiceConn {
	return &voiceConn{
		channelID:   channelID,
		sendTimeout: sendTimeout,
		opus:        vc.OpusSend,
		speaking:    vc.Speaking,
		disconnect:  vc.Disconnect,
	}
}

func (c *voiceConn) ChannelID() string { return c.channelID }

func (c *voiceConn) Subscribe(p playback.Player) {
	p.SetOutput(c)
}

// SendOpus queues one frame for the voice connection. It fails when the
// connection does not take the frame within the send timeout.
func (c *voiceConn) SendOpus(ctx context.Context, frame []byte) error {
	if err := c.setSpeaking(true); err != nil {
		return err
	}

	timer := time.NewTimer(c.sendTimeout)
	defer timer.Stop()

	select {
	case c.opus <- frame:
		return nil
	case <-timer.C:
		return fmt.Errorf("voice send timed out after %s", c.sendTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Quiet clears the speaking flag. The next SendOpus sets it again.
func (c *voiceConn) Quiet() {
	if err := c.setSpeaking(false); err != nil {
		log.Printf("[DEBUG] [Voice] Not clearing speaking on channel %s: %v", c.channelID, err)
	}
}

func (c *voiceConn) setSpeaking(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return errors.New("voice connection destroyed")
	}
	if c.talking == on {
		return nil
	}
	if err := c.speaking(on); err != nil {
		log.Printf("[WARN] [Voice] Failed to set speaking=%v on channel %s: %v", on, c.channelID, err)
	}
	c.talking = on
	return nil
}

func (c *voiceConn) Destroy() error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return nil
	}
	talking := c.talking
	c.destroyed = true
	c.mu.Unlock()

	if talking {
		_ = c.speaking(false)
	}
	if err := c.disconnect(); err != nil {
		return fmt.Errorf("voice disconnect: %w", err)
	}
	log.Printf("[INFO] [Voice] Left voice channel %s", c.channelID)
	return nil
}
