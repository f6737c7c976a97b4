package music_player

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// Track resolver names accepted by TRACK_RESOLVER.
const (
	resolverLavalink = "lavalink"
	resolverYtdlp    = "ytdlp"
)

// Config holds the music player module configuration.
type Config struct {
	// Lavalink is always the voice transport, so the node is required.
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE" envDefault:"false"`
	LavalinkNodeName string `env:"LAVALINK_NODE_NAME" envDefault:"main"`

	// TrackResolver selects how queries become tracks: lavalink or ytdlp.
	TrackResolver string `env:"TRACK_RESOLVER" envDefault:"lavalink"`
	SearchSource  string `env:"SEARCH_SOURCE" envDefault:"ytsearch"`

	YtdlpProxy   string        `env:"YTDLP_PROXY"`
	StreamURLTTL time.Duration `env:"STREAM_URL_TTL" envDefault:"5h"`

	// ResolveRate is the number of resolutions per second across all guilds. 0 disables limiting.
	ResolveRate  float64 `env:"RESOLVE_RATE" envDefault:"2"`
	ResolveBurst int     `env:"RESOLVE_BURST" envDefault:"5"`

	DefaultVolume          int `env:"DEFAULT_VOLUME" envDefault:"50"`
	MaxConsecutiveFailures int `env:"MAX_CONSECUTIVE_FAILURES" envDefault:"3"`
}

// loadConfig parses the module configuration from environment variables.
func loadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	switch c.TrackResolver {
	case resolverLavalink, resolverYtdlp:
	default:
		errs = append(errs, fmt.Errorf("TRACK_RESOLVER must be %q or %q, got %q",
			resolverLavalink, resolverYtdlp, c.TrackResolver))
	}
	if _, err := domain.ParseSearchSource(c.SearchSource); err != nil {
		errs = append(errs, fmt.Errorf("SEARCH_SOURCE: %w", err))
	}
	if _, err := domain.VolumeFromPercent(c.DefaultVolume); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_VOLUME: %w", err))
	}
	if c.ResolveRate < 0 {
		errs = append(errs, errors.New("RESOLVE_RATE must not be negative"))
	}
	if c.ResolveRate > 0 && c.ResolveBurst < 1 {
		errs = append(errs, errors.New("RESOLVE_BURST must be at least 1"))
	}
	if c.MaxConsecutiveFailures < 1 {
		errs = append(errs, errors.New("MAX_CONSECUTIVE_FAILURES must be at least 1"))
	}
	if c.StreamURLTTL <= 0 {
		errs = append(errs, errors.New("STREAM_URL_TTL must be positive"))
	}

	return errors.Join(errs...)
}

// searchSource returns the validated search source.
func (c *Config) searchSource() domain.SearchSource {
	source, _ := domain.ParseSearchSource(c.SearchSource)
	return source
}

// volume returns the validated default volume.
func (c *Config) volume() domain.Volume {
	v, _ := domain.VolumeFromPercent(c.DefaultVolume)
	return v
}
