package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// VoiceConnection is a handle to an established voice connection.
// It is owned by exactly one session.
type VoiceConnection interface {
	GuildID() snowflake.ID
	ChannelID() snowflake.ID
}

// CompletionFunc is invoked once when a stream started by PlayStream ends,
// whether it finished, was stopped or failed. It may run on any goroutine.
type CompletionFunc func(reason domain.TrackEndReason)

// VoiceTransport connects to voice channels and streams audio into them.
type VoiceTransport interface {
	// Connect joins the voice channel and blocks until the connection is usable.
	Connect(ctx context.Context, guildID, channelID snowflake.ID) (VoiceConnection, error)

	// Disconnect releases the connection.
	Disconnect(ctx context.Context, conn VoiceConnection) error

	// PlayStream starts streaming source at volume. onComplete is invoked
	// exactly once after PlayStream returns nil, and never if it returns an error.
	PlayStream(
		ctx context.Context,
		conn VoiceConnection,
		source string,
		volume domain.Volume,
		onComplete CompletionFunc,
	) error

	// StopStream terminates the current stream, which fires its completion.
	StopStream(ctx context.Context, conn VoiceConnection) error

	// SetVolume changes the level of the live stream without restarting it.
	SetVolume(ctx context.Context, conn VoiceConnection, volume domain.Volume) error

	// Pause suspends the current stream.
	Pause(ctx context.Context, conn VoiceConnection) error

	// Resume continues a suspended stream.
	Resume(ctx context.Context, conn VoiceConnection) error

	// IsPlaying returns true if a stream is active and not paused.
	IsPlaying(conn VoiceConnection) bool

	// IsPaused returns true if a stream is active and paused.
	IsPaused(conn VoiceConnection) bool
}
