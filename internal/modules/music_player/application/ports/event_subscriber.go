package ports

import (
	"context"

	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// EventSubscriber registers handlers for playback events.
type EventSubscriber interface {
	OnPlaybackStarted(handler func(context.Context, domain.PlaybackStartedEvent))
	OnPlaybackFailed(handler func(context.Context, domain.PlaybackFailedEvent))
	OnQueueExhausted(handler func(context.Context, domain.QueueExhaustedEvent))
	OnSessionClosed(handler func(context.Context, domain.SessionClosedEvent))
}
