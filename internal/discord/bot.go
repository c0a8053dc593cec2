package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"github.com/keshon/jukebox/internal/command"
	"github.com/keshon/jukebox/internal/config"
	"github.com/keshon/jukebox/internal/middleware"
	"github.com/keshon/jukebox/internal/music/parsers"
	"github.com/keshon/jukebox/internal/music/parsers/ffmpeg"
	"github.com/keshon/jukebox/internal/music/parsers/kkdai"
	"github.com/keshon/jukebox/internal/music/parsers/ytdlp"
	"github.com/keshon/jukebox/internal/music/player"
	"github.com/keshon/jukebox/internal/music/source_resolver"
	"github.com/keshon/jukebox/internal/music/stream"
	"github.com/keshon/jukebox/internal/playback"
	"github.com/keshon/jukebox/pkg/cmd"
)

const (
	commandTimeout  = 2 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// Bot is a Discord bot
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	ctx      context.Context
	service  *playback.Service
	router   *command.Router
	streamer *stream.Opener
}

// StartBot starts the Discord bot and blocks until ctx is cancelled
func StartBot(ctx context.Context, cfg *config.Config) error {
	b := &Bot{cfg: cfg, ctx: ctx}
	if err := b.run(ctx, cfg.DiscordToken); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

// run starts the Discord bot
func (b *Bot) run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b.dg = dg
	if b.cfg.Debug {
		dg.LogLevel = discordgo.LogDebug
	}

	b.streamer = newOpener(b.cfg)
	b.service = playback.New(
		&VoiceDialer{dg: dg, sendTimeout: b.cfg.VoiceSendTimeout, debug: b.cfg.Debug},
		b.newPlayer,
		source_resolver.New(b.cfg.Parsers),
	)
	b.router = command.NewRouter(b.cfg.CommandPrefix, b.service,
		middleware.WithRecover(),
		middleware.WithGuildOnly(),
		middleware.WithCommandLogger(),
	)

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received. Cleaning up...")

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := b.service.Close(closeCtx); err != nil {
		log.Printf("[WARN] Playback shutdown finished with errors: %v", err)
	}
	return nil
}

// configureIntents configures the Discord intents
func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentMessageContent
}

// newPlayer builds the audio player for a guild.
func (b *Bot) newPlayer(guildID string) playback.Player {
	return player.New(b.ctx, guildID, func(ctx context.Context, t *playback.Track) (player.FrameReader, error) {
		s, err := b.streamer.Open(ctx, t)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

// newOpener wires every parser the bot knows into one stream opener.
func newOpener(cfg *config.Config) *stream.Opener {
	tr := ffmpeg.Transcoder{Path: cfg.FFmpegPath}
	kk := kkdai.New(cfg.YouTubeProxy, tr)
	yt := &ytdlp.YTDLPStreamer{Path: cfg.YtdlpPath, Proxy: cfg.YouTubeProxy, FFmpeg: tr}

	return &stream.Opener{Streamers: stream.Registry{
		parsers.KkdaiPipe:  kk,
		parsers.KkdaiLink:  kk,
		parsers.YtdlpPipe:  yt,
		parsers.YtdlpLink:  yt,
		parsers.FfmpegLink: &ffmpeg.FFMPEGStreamer{Transcoder: tr},
	}}
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[INFO] Discord bot %v is running in %d guild(s)", r.User.Username, len(r.Guilds))
	log.Printf("[INFO] Commands: %s", commandList(b.router))
}

// commandList renders the router's commands as "!join, !play, ...".
func commandList(r *command.Router) string {
	names := lo.Map(r.Commands(), func(c cmd.Command, _ int) string {
		return r.Prefix() + c.Name()
	})
	return strings.Join(names, ", ")
}

// onMessageCreate is called when a message is created
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
		return
	}

	mc := newMessageContext(m, func(text string) error {
		_, err := s.ChannelMessageSendReply(m.ChannelID, text, m.Reference())
		return err
	})
	if vs, err := FindUserVoiceState(s.State, m.GuildID, m.Author.ID); err == nil {
		mc.VoiceChannelID = vs.ChannelID
	}

	ctx, cancel := context.WithTimeout(b.ctx, commandTimeout)
	defer cancel()

	if err := b.router.Handle(ctx, mc); err != nil {
		log.Printf("[ERR] Error running command %q: %v", m.Content, err)
	}
}

func newMessageContext(m *discordgo.MessageCreate, reply func(string) error) *command.MessageContext {
	mc := &command.MessageContext{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Reply:     reply,
	}
	if m.Author != nil {
		mc.AuthorID = m.Author.ID
		mc.Author = m.Author.Username
		mc.AuthorBot = m.Author.Bot
	}
	return mc
}
