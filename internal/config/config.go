package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	// DiscordBotToken is read when DISCORD_TOKEN is unset.
	DiscordBotToken string `env:"DISCORD_BOT_TOKEN"`

	CommandPrefix    string        `env:"COMMAND_PREFIX" envDefault:"!"`
	Debug            bool          `env:"DEBUG" envDefault:"false"`
	YouTubeProxy     string        `env:"YOUTUBE_PROXY"`
	Parsers          []string      `env:"PARSERS" envSeparator:"," envDefault:"kkdai-pipe,kkdai-link,ytdlp-pipe,ytdlp-link"`
	FFmpegPath       string        `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	YtdlpPath        string        `env:"YTDLP_PATH" envDefault:"yt-dlp"`
	VoiceSendTimeout time.Duration `env:"VOICE_SEND_TIMEOUT" envDefault:"5s"`
}

// Load reads envFiles (".env" when none are given) into the environment and
// parses the configuration from it. Variables already set in the environment
// win over the files. A missing file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("[INFO] No .env file found, falling back to system environment variables")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.DiscordToken == "" {
		cfg.DiscordToken = cfg.DiscordBotToken
	}
	if cfg.DiscordToken == "" {
		return nil, errors.New("DISCORD_TOKEN or DISCORD_BOT_TOKEN must be set")
	}

	cfg.CommandPrefix = strings.TrimSpace(cfg.CommandPrefix)
	if cfg.CommandPrefix == "" {
		return nil, errors.New("COMMAND_PREFIX must not be blank")
	}
	if cfg.VoiceSendTimeout <= 0 {
		return nil, errors.New("VOICE_SEND_TIMEOUT must be positive")
	}

	return &cfg, nil
}
