package usecases

import (
	"context"
	"errors"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// BotVoiceStateChangeInput contains the input for handling bot voice state changes.
type BotVoiceStateChangeInput struct {
	GuildID      snowflake.ID
	NewChannelID *snowflake.ID // nil means disconnected
}

// HandleBotVoiceStateChange handles external voice state changes (bot moved or disconnected).
// This should be called when the bot's voice state changes due to external factors
// (e.g., being moved by a user or disconnected by Discord).
func (p *PlayerService) HandleBotVoiceStateChange(ctx context.Context, input BotVoiceStateChangeInput) {
	s, ok := p.registry.Get(input.GuildID)
	if !ok {
		// No session exists, nothing to do
		return
	}

	if input.NewChannelID != nil {
		// Moves are followed by the transport; the session keeps playing.
		slog.Debug("bot moved to another voice channel",
			"guild", input.GuildID,
			"channel", *input.NewChannelID,
		)
		return
	}

	if err := s.HandleDisconnect(ctx); err != nil && !errors.Is(err, domain.ErrSessionClosed) {
		slog.Error("failed to close session after disconnect", "guild", input.GuildID, "error", err)
	}
}

// Shutdown closes every session.
func (p *PlayerService) Shutdown(ctx context.Context) error {
	return p.registry.CloseAll(ctx)
}
