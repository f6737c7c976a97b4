package ports

import "github.com/sglre6355/tunebot/internal/modules/music_player/domain"

// EventPublisher publishes playback events. Implementations must not block.
type EventPublisher interface {
	PublishPlaybackStarted(event domain.PlaybackStartedEvent)
	PublishPlaybackFailed(event domain.PlaybackFailedEvent)
	PublishQueueExhausted(event domain.QueueExhaustedEvent)
	PublishSessionClosed(event domain.SessionClosedEvent)
}
