package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size for the event channel.
const DefaultEventBufferSize = 100

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// delivery invokes the handlers registered for one published event.
type delivery struct {
	eventType string
	dispatch  func(ctx context.Context)
}

// ChannelEventBus provides a channel-based event bus for async event handling.
// It implements both EventPublisher and EventSubscriber interfaces.
//
// Events are delivered by a single dispatcher goroutine in publication order,
// so handlers of one guild observe "started" before "closed".
type ChannelEventBus struct {
	events chan delivery

	// Handler slices for callback-based subscription
	playbackStartedHandlers []func(context.Context, domain.PlaybackStartedEvent)
	playbackFailedHandlers  []func(context.Context, domain.PlaybackFailedEvent)
	queueExhaustedHandlers  []func(context.Context, domain.QueueExhaustedEvent)
	sessionClosedHandlers   []func(context.Context, domain.SessionClosedEvent)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		events: make(chan delivery, bufferSize),
		ctx:    ctx,
		cancel: cancel,
	}

	bus.wg.Add(1)
	go bus.dispatch()

	return bus
}

func (b *ChannelEventBus) dispatch() {
	defer b.wg.Done()
	for d := range b.events {
		d.dispatch(b.ctx)
	}
}

// publish enqueues d without blocking. If the buffer is full, the event is
// dropped with a warning.
func (b *ChannelEventBus) publish(d delivery, guildID any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", d.eventType)
		return
	}

	select {
	case b.events <- d:
		slog.Debug("published event", "type", d.eventType, "guild", guildID)
	default:
		slog.Warn("event buffer full, dropping event", "type", d.eventType, "guild", guildID)
	}
}

// handlersOf returns a snapshot of a handler slice.
func handlersOf[E any](mu *sync.RWMutex, handlers *[]func(context.Context, E)) []func(context.Context, E) {
	mu.RLock()
	defer mu.RUnlock()
	return *handlers
}

// --- EventPublisher interface ---

// PublishPlaybackStarted publishes a PlaybackStartedEvent.
func (b *ChannelEventBus) PublishPlaybackStarted(event domain.PlaybackStartedEvent) {
	b.publish(delivery{
		eventType: "PlaybackStarted",
		dispatch: func(ctx context.Context) {
			for _, handler := range handlersOf(&b.mu, &b.playbackStartedHandlers) {
				handler(ctx, event)
			}
		},
	}, event.GuildID)
}

// PublishPlaybackFailed publishes a PlaybackFailedEvent.
func (b *ChannelEventBus) PublishPlaybackFailed(event domain.PlaybackFailedEvent) {
	b.publish(delivery{
		eventType: "PlaybackFailed",
		dispatch: func(ctx context.Context) {
			for _, handler := range handlersOf(&b.mu, &b.playbackFailedHandlers) {
				handler(ctx, event)
			}
		},
	}, event.GuildID)
}

// PublishQueueExhausted publishes a QueueExhaustedEvent.
func (b *ChannelEventBus) PublishQueueExhausted(event domain.QueueExhaustedEvent) {
	b.publish(delivery{
		eventType: "QueueExhausted",
		dispatch: func(ctx context.Context) {
			for _, handler := range handlersOf(&b.mu, &b.queueExhaustedHandlers) {
				handler(ctx, event)
			}
		},
	}, event.GuildID)
}

// PublishSessionClosed publishes a SessionClosedEvent.
func (b *ChannelEventBus) PublishSessionClosed(event domain.SessionClosedEvent) {
	b.publish(delivery{
		eventType: "SessionClosed",
		dispatch: func(ctx context.Context) {
			for _, handler := range handlersOf(&b.mu, &b.sessionClosedHandlers) {
				handler(ctx, event)
			}
		},
	}, event.GuildID)
}

// --- EventSubscriber interface ---

// OnPlaybackStarted registers a handler for PlaybackStartedEvent.
func (b *ChannelEventBus) OnPlaybackStarted(
	handler func(context.Context, domain.PlaybackStartedEvent),
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playbackStartedHandlers = append(b.playbackStartedHandlers, handler)
}

// OnPlaybackFailed registers a handler for PlaybackFailedEvent.
func (b *ChannelEventBus) OnPlaybackFailed(
	handler func(context.Context, domain.PlaybackFailedEvent),
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playbackFailedHandlers = append(b.playbackFailedHandlers, handler)
}

// OnQueueExhausted registers a handler for QueueExhaustedEvent.
func (b *ChannelEventBus) OnQueueExhausted(
	handler func(context.Context, domain.QueueExhaustedEvent),
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queueExhaustedHandlers = append(b.queueExhaustedHandlers, handler)
}

// OnSessionClosed registers a handler for SessionClosedEvent.
func (b *ChannelEventBus) OnSessionClosed(
	handler func(context.Context, domain.SessionClosedEvent),
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionClosedHandlers = append(b.sessionClosedHandlers, handler)
}

// Close stops accepting events, delivers the ones already buffered and stops
// the dispatcher.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.events)
	b.wg.Wait()
	b.cancel()

	slog.Debug("channel event bus closed")
}
