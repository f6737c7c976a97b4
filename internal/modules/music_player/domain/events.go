package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track finished normally.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the stream failed to load or broke mid-play.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means the stream was stopped, e.g. by a skip.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means another stream replaced this one.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the transport cleaned up the player.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// IsFailure returns true if the track ended because of a transport failure.
func (r TrackEndReason) IsFailure() bool {
	return r == TrackEndLoadFailed
}

// CloseReason represents why a session was closed.
type CloseReason string

const (
	// CloseStopped means a user issued stop.
	CloseStopped CloseReason = "stopped"
	// CloseDisconnected means the voice connection dropped.
	CloseDisconnected CloseReason = "disconnected"
	// CloseShutdown means the bot is shutting down.
	CloseShutdown CloseReason = "shutdown"
)

// PlaybackStartedEvent is published when a track starts playing.
type PlaybackStartedEvent struct {
	GuildID               snowflake.ID
	Track                 Track
	NotificationChannelID snowflake.ID
}

// PlaybackFailedEvent is published when a queued track could not be played,
// either because it failed to resolve or because the transport failed.
type PlaybackFailedEvent struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID
	Track                 Track
	Err                   error
	// Halted is true when the player stopped advancing after repeated failures.
	Halted bool
}

// QueueExhaustedEvent is published when the last track ended and the queue is empty.
type QueueExhaustedEvent struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID
}

// SessionClosedEvent is published when a guild's session is torn down.
type SessionClosedEvent struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID
	Reason                CloseReason
}
