package discord

import (
	"context"

	"github.com/sglre6355/tunebot/internal/modules/music_player/application/usecases"
)

// MusicPlayer is the command API used by the chat handlers.
type MusicPlayer interface {
	Play(ctx context.Context, input usecases.PlayInput) (*usecases.PlayOutput, error)
	Pause(ctx context.Context, input usecases.PauseInput) error
	Resume(ctx context.Context, input usecases.ResumeInput) error
	Skip(ctx context.Context, input usecases.SkipInput) (*usecases.SkipOutput, error)
	Stop(ctx context.Context, input usecases.StopInput) error
	SetVolume(ctx context.Context, input usecases.SetVolumeInput) (*usecases.SetVolumeOutput, error)
	ListQueue(ctx context.Context, input usecases.ListQueueInput) (*usecases.ListQueueOutput, error)
	NowPlaying(ctx context.Context, input usecases.NowPlayingInput) (*usecases.NowPlayingOutput, error)
}

// BotVoiceStateHandler reacts to the bot's own voice state changes.
type BotVoiceStateHandler interface {
	HandleBotVoiceStateChange(ctx context.Context, input usecases.BotVoiceStateChangeInput)
}

var (
	_ MusicPlayer          = (*usecases.PlayerService)(nil)
	_ BotVoiceStateHandler = (*usecases.PlayerService)(nil)
)
