package bot

import (
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config holds the bot configuration loaded from environment variables.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,notEmpty"`

	// LogLevel accepts debug, info, warn or error.
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	// CommandPrefix starts text commands such as "!play".
	CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"!"`

	// MetricsAddr is the listen address of the /metrics endpoint. Empty disables it.
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	// ListeningStatus is shown as "Listening to ..." in the member list.
	ListeningStatus string `env:"LISTENING_STATUS" envDefault:"/play"`
}

// LoadConfig loads configuration from environment variables.
// Returns an error if required fields are missing.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
