package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	RedisURL         string
	DrawSeconds      int
	VoteSeconds      int
	RoomTTLSeconds   int
	MaxPlayers       int
	ServerURL        string
	KeepAliveMinutes int
}

func Default() Config {
	return Config{
		RedisURL:         "redis://localhost:6379",
		DrawSeconds:      120,
		VoteSeconds:      30,
		RoomTTLSeconds:   3600,
		MaxPlayers:       2,
		KeepAliveMinutes: 14,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("REDIS_URL"); raw != "" {
		cfg.RedisURL = raw
	}
	if raw := os.Getenv("DRAW_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DrawSeconds = value
		}
	}
	if raw := os.Getenv("VOTE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.VoteSeconds = value
		}
	}
	if raw := os.Getenv("ROOM_TTL_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.RoomTTLSeconds = value
		}
	}
	if raw := os.Getenv("MAX_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.MaxPlayers = value
		}
	}
	if raw := os.Getenv("SERVER_URL"); raw != "" {
		cfg.ServerURL = raw
	}
	if raw := os.Getenv("KEEPALIVE_MINUTES"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.KeepAliveMinutes = value
		}
	}
	return cfg
}

func (c Config) DrawDuration() time.Duration {
	return time.Duration(c.DrawSeconds) * time.Second
}

func (c Config) VoteDuration() time.Duration {
	return time.Duration(c.VoteSeconds) * time.Second
}

func (c Config) RoomTTL() time.Duration {
	return time.Duration(c.RoomTTLSeconds) * time.Second
}

func (c Config) KeepAliveInterval() time.Duration {
	return time.Duration(c.KeepAliveMinutes) * time.Minute
}
