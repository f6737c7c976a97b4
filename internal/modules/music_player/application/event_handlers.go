package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// Notification texts sent to the guild's text channel.
const (
	msgDisconnected     = "Disconnected from the voice channel, the queue was cleared."
	msgRepeatedFailures = "Playback failed %d times in a row, so I stopped. Use play to try again."
)

type nowPlayingMessage struct {
	channelID snowflake.ID
	messageID snowflake.ID
}

// NotificationEventHandler turns playback events into Discord messages.
// It keeps one "Now Playing" message per guild and deletes it when the
// track it announces is no longer current.
type NotificationEventHandler struct {
	subscriber       ports.EventSubscriber
	notifier         ports.NotificationSender
	userInfoProvider ports.UserInfoProvider
	failureLimit     int

	mu         sync.Mutex
	nowPlaying map[snowflake.ID]nowPlayingMessage
}

// NewNotificationEventHandler creates a new NotificationEventHandler.
func NewNotificationEventHandler(
	subscriber ports.EventSubscriber,
	notifier ports.NotificationSender,
	userInfoProvider ports.UserInfoProvider,
	failureLimit int,
) *NotificationEventHandler {
	return &NotificationEventHandler{
		subscriber:       subscriber,
		notifier:         notifier,
		userInfoProvider: userInfoProvider,
		failureLimit:     failureLimit,
		nowPlaying:       make(map[snowflake.ID]nowPlayingMessage),
	}
}

// Start registers event handlers with the subscriber.
func (h *NotificationEventHandler) Start() {
	h.subscriber.OnPlaybackStarted(h.handlePlaybackStarted)
	h.subscriber.OnPlaybackFailed(h.handlePlaybackFailed)
	h.subscriber.OnQueueExhausted(h.handleQueueExhausted)
	h.subscriber.OnSessionClosed(h.handleSessionClosed)

	slog.Debug("notification event handlers properly registered")
}

func (h *NotificationEventHandler) handlePlaybackStarted(
	_ context.Context,
	event domain.PlaybackStartedEvent,
) {
	h.deleteNowPlaying(event.GuildID)

	if event.NotificationChannelID == 0 {
		return
	}

	info := &ports.NowPlayingInfo{Track: event.Track}
	if event.Track.RequesterID != 0 && h.userInfoProvider != nil {
		userInfo, err := h.userInfoProvider.GetUserInfo(event.GuildID, event.Track.RequesterID)
		if err != nil {
			slog.Debug(
				"failed to get requester info",
				"guild", event.GuildID,
				"user", event.Track.RequesterID,
				"error", err,
			)
		} else {
			info.RequesterName = userInfo.DisplayName
			info.RequesterAvatarURL = userInfo.AvatarURL
		}
	}

	slog.Debug("sending now playing notification", "guild", event.GuildID, "track", event.Track.Title)

	messageID, err := h.notifier.SendNowPlaying(event.NotificationChannelID, info)
	if err != nil {
		slog.Error(
			"failed to send now playing notification",
			"guild", event.GuildID,
			"error", err,
		)
		return
	}

	h.mu.Lock()
	h.nowPlaying[event.GuildID] = nowPlayingMessage{
		channelID: event.NotificationChannelID,
		messageID: messageID,
	}
	h.mu.Unlock()
}

func (h *NotificationEventHandler) handlePlaybackFailed(
	_ context.Context,
	event domain.PlaybackFailedEvent,
) {
	h.deleteNowPlaying(event.GuildID)

	if event.NotificationChannelID == 0 {
		return
	}

	message := failureMessage(event)
	if event.Halted {
		message = fmt.Sprintf(msgRepeatedFailures, h.failureLimit)
	}

	if err := h.notifier.SendError(event.NotificationChannelID, message); err != nil {
		slog.Warn("failed to send playback failure notification", "guild", event.GuildID, "error", err)
	}
}

func (h *NotificationEventHandler) handleQueueExhausted(
	_ context.Context,
	event domain.QueueExhaustedEvent,
) {
	h.deleteNowPlaying(event.GuildID)
}

func (h *NotificationEventHandler) handleSessionClosed(
	_ context.Context,
	event domain.SessionClosedEvent,
) {
	h.deleteNowPlaying(event.GuildID)

	if event.Reason != domain.CloseDisconnected || event.NotificationChannelID == 0 {
		return
	}

	if err := h.notifier.SendInfo(event.NotificationChannelID, msgDisconnected); err != nil {
		slog.Warn("failed to send disconnect notification", "guild", event.GuildID, "error", err)
	}
}

// deleteNowPlaying removes the guild's current "Now Playing" message, if any.
func (h *NotificationEventHandler) deleteNowPlaying(guildID snowflake.ID) {
	h.mu.Lock()
	msg, ok := h.nowPlaying[guildID]
	delete(h.nowPlaying, guildID)
	h.mu.Unlock()

	if !ok {
		return
	}

	if err := h.notifier.DeleteMessage(msg.channelID, msg.messageID); err != nil {
		slog.Warn(
			"failed to delete previous now playing message",
			"guild", guildID,
			"message", msg.messageID,
			"error", err,
		)
	}
}

func failureMessage(event domain.PlaybackFailedEvent) string {
	title := event.Track.Title
	if title == "" {
		title = "the next track"
	}

	switch domain.KindOf(event.Err) {
	case domain.KindResolution:
		if errors.Is(event.Err, domain.ErrNoResults) {
			return fmt.Sprintf("Could not find a playable source for **%s**, skipping.", title)
		}
		return fmt.Sprintf("Could not load **%s**, skipping.", title)
	default:
		return fmt.Sprintf("Playback of **%s** failed, skipping.", title)
	}
}
