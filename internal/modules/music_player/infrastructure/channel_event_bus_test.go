package infrastructure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

func TestChannelEventBus_DeliversInPublicationOrder(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	var mu sync.Mutex
	var got []string
	record := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, name)
	}

	done := make(chan struct{})
	bus.OnPlaybackStarted(func(_ context.Context, e domain.PlaybackStartedEvent) {
		record("started:" + e.Track.Title)
	})
	bus.OnPlaybackFailed(func(_ context.Context, e domain.PlaybackFailedEvent) {
		record("failed:" + e.Track.Title)
	})
	bus.OnQueueExhausted(func(_ context.Context, _ domain.QueueExhaustedEvent) {
		record("exhausted")
	})
	bus.OnSessionClosed(func(_ context.Context, _ domain.SessionClosedEvent) {
		record("closed")
		close(done)
	})

	guildID := snowflake.ID(1)
	bus.PublishPlaybackStarted(domain.PlaybackStartedEvent{GuildID: guildID, Track: domain.Track{Title: "A"}})
	bus.PublishPlaybackFailed(domain.PlaybackFailedEvent{GuildID: guildID, Track: domain.Track{Title: "B"}})
	bus.PublishQueueExhausted(domain.QueueExhaustedEvent{GuildID: guildID})
	bus.PublishSessionClosed(domain.SessionClosedEvent{GuildID: guildID})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for events")
	}

	want := []string{"started:A", "failed:B", "exhausted", "closed"}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func TestChannelEventBus_MultipleHandlers(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	for range 2 {
		bus.OnPlaybackStarted(func(_ context.Context, _ domain.PlaybackStartedEvent) {
			wg.Done()
		})
	}

	bus.PublishPlaybackStarted(domain.PlaybackStartedEvent{GuildID: snowflake.ID(1)})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected both handlers to be called")
	}
}

func TestChannelEventBus_CloseDeliversBufferedEvents(t *testing.T) {
	bus := NewChannelEventBus(10)

	var mu sync.Mutex
	delivered := 0
	bus.OnSessionClosed(func(_ context.Context, _ domain.SessionClosedEvent) {
		mu.Lock()
		defer mu.Unlock()
		delivered++
	})

	for range 5 {
		bus.PublishSessionClosed(domain.SessionClosedEvent{GuildID: snowflake.ID(1)})
	}
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	if delivered != 5 {
		t.Errorf("expected 5 delivered events, got %d", delivered)
	}
}

func TestChannelEventBus_PublishAfterClose(t *testing.T) {
	bus := NewChannelEventBus(10)

	called := false
	bus.OnQueueExhausted(func(_ context.Context, _ domain.QueueExhaustedEvent) {
		called = true
	})

	bus.Close()
	bus.Close() // idempotent

	// Must not panic.
	bus.PublishQueueExhausted(domain.QueueExhaustedEvent{GuildID: snowflake.ID(1)})

	if called {
		t.Error("expected no delivery after close")
	}
}

func TestChannelEventBus_DropsWhenFull(t *testing.T) {
	bus := NewChannelEventBus(1)
	defer bus.Close()

	block := make(chan struct{})
	entered := make(chan struct{}, 1)
	bus.OnPlaybackStarted(func(_ context.Context, _ domain.PlaybackStartedEvent) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-block
	})

	bus.PublishPlaybackStarted(domain.PlaybackStartedEvent{GuildID: snowflake.ID(1)})
	<-entered

	// One fits in the buffer, the rest are dropped without blocking.
	finished := make(chan struct{})
	go func() {
		for range 5 {
			bus.PublishPlaybackStarted(domain.PlaybackStartedEvent{GuildID: snowflake.ID(1)})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Error("expected publish not to block on a full buffer")
	}
	close(block)
}
