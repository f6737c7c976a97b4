package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// PlaybackStatus is the state of a guild's player.
type PlaybackStatus int

const (
	// StatusIdle means there is no current track.
	StatusIdle PlaybackStatus = iota
	// StatusPlaying means a current track is streaming.
	StatusPlaying
	// StatusPaused means a current track is set but streaming is suspended.
	StatusPaused
)

// String returns a human-readable representation of the status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "idle"
	}
}

// CurrentTrack is the track being played together with its playback sequence
// number. Completion signals carrying another sequence number are stale.
type CurrentTrack struct {
	Track Track
	Seq   uint64
}

// PlayerState holds the playback state of a single guild.
// It is not safe for concurrent use; callers serialize access.
type PlayerState struct {
	guildID               snowflake.ID
	voiceChannelID        snowflake.ID // zero when not connected
	notificationChannelID snowflake.ID
	Queue                 Queue
	current               *CurrentTrack
	status                PlaybackStatus
	volume                Volume
	preparing             bool // next track is being resolved
	seq                   uint64
	consecutiveFailures   int
}

// NewPlayerState creates an idle, disconnected PlayerState for the given guild.
func NewPlayerState(guildID snowflake.ID, volume Volume) *PlayerState {
	return &PlayerState{
		guildID: guildID,
		Queue:   NewQueue(),
		volume:  volume,
	}
}

// GetGuildID returns the guild ID.
func (p *PlayerState) GetGuildID() snowflake.ID {
	// guildID must not be modified after initialization
	return p.guildID
}

// VoiceChannelID returns the connected voice channel, or zero.
func (p *PlayerState) VoiceChannelID() snowflake.ID {
	return p.voiceChannelID
}

// IsConnected returns true if a voice connection is held.
func (p *PlayerState) IsConnected() bool {
	return p.voiceChannelID != 0
}

// SetVoiceChannelID records the voice channel the player is connected to.
func (p *PlayerState) SetVoiceChannelID(channelID snowflake.ID) {
	p.voiceChannelID = channelID
}

// NotificationChannelID returns the text channel for notifications.
func (p *PlayerState) NotificationChannelID() snowflake.ID {
	return p.notificationChannelID
}

// SetNotificationChannelID updates the text channel for notifications.
func (p *PlayerState) SetNotificationChannelID(channelID snowflake.ID) {
	p.notificationChannelID = channelID
}

// Status returns the playback status.
func (p *PlayerState) Status() PlaybackStatus {
	return p.status
}

// Current returns the current track, if any.
func (p *PlayerState) Current() (CurrentTrack, bool) {
	if p.current == nil {
		return CurrentTrack{}, false
	}
	return *p.current, true
}

// Volume returns the stored volume.
func (p *PlayerState) Volume() Volume {
	return p.volume
}

// SetVolume stores a new volume. It persists across tracks.
func (p *PlayerState) SetVolume(v Volume) {
	p.volume = v
}

// IsPreparing returns true while the next track is being resolved.
func (p *PlayerState) IsPreparing() bool {
	return p.preparing
}

// SetPreparing marks whether the next track is being resolved.
func (p *PlayerState) SetPreparing(preparing bool) {
	p.preparing = preparing
}

// Enqueue appends tracks and returns the 1-based queue position of the last
// one and whether the player should advance now.
func (p *PlayerState) Enqueue(tracks ...Track) (position int, shouldAdvance bool) {
	position = p.Queue.Push(tracks...)
	return position, p.CanAdvance() == nil
}

// CanAdvance reports whether a new track may become current.
func (p *PlayerState) CanAdvance() error {
	if p.current != nil || p.preparing {
		return ErrAlreadyCurrent
	}
	if !p.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// Begin makes track current and returns its playback sequence number.
func (p *PlayerState) Begin(track Track) (uint64, error) {
	if err := p.CanAdvance(); err != nil {
		return 0, err
	}
	p.seq++
	p.current = &CurrentTrack{Track: track, Seq: p.seq}
	p.status = StatusPlaying
	return p.seq, nil
}

// End clears the current track if seq identifies it. It returns false for
// stale sequence numbers and leaves the state untouched.
func (p *PlayerState) End(seq uint64) bool {
	if p.current == nil || p.current.Seq != seq {
		return false
	}
	p.current = nil
	p.status = StatusIdle
	return true
}

// Pause transitions Playing to Paused.
func (p *PlayerState) Pause() error {
	switch p.status {
	case StatusPlaying:
		p.status = StatusPaused
		return nil
	case StatusPaused:
		return ErrAlreadyPaused
	default:
		return ErrNotPlaying
	}
}

// Resume transitions Paused to Playing.
func (p *PlayerState) Resume() error {
	switch p.status {
	case StatusPaused:
		p.status = StatusPlaying
		return nil
	case StatusPlaying:
		return ErrNotPaused
	default:
		return ErrNotPlaying
	}
}

// CanSkip reports whether there is a current track to skip.
func (p *PlayerState) CanSkip() error {
	if p.current == nil {
		return ErrNotPlaying
	}
	return nil
}

// RecordFailure increments and returns the consecutive failure count.
func (p *PlayerState) RecordFailure() int {
	p.consecutiveFailures++
	return p.consecutiveFailures
}

// ResetFailures clears the consecutive failure count.
func (p *PlayerState) ResetFailures() {
	p.consecutiveFailures = 0
}

// ConsecutiveFailures returns the consecutive failure count.
func (p *PlayerState) ConsecutiveFailures() int {
	return p.consecutiveFailures
}

// Reset discards the queue and current track and disconnects.
func (p *PlayerState) Reset() {
	p.Queue.Clear()
	p.current = nil
	p.status = StatusIdle
	p.preparing = false
	p.voiceChannelID = 0
}
