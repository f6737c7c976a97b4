package usecases

import (
	"context"
	"errors"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/session"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// DefaultQueuePreview is the number of queued tracks ListQueue returns.
const DefaultQueuePreview = 10

// PlayInput contains the input for the Play use case.
type PlayInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	Query                 string
}

// PlayOutput contains the result of the Play use case.
type PlayOutput struct {
	Track Track
	// Position is the 1-based queue position, or 0 if the track started playing.
	Position int
}

// StartedPlaying returns true if the track began playing immediately.
func (o *PlayOutput) StartedPlaying() bool {
	return o.Position == 0
}

// ListQueueInput contains the input for the ListQueue use case.
type ListQueueInput struct {
	GuildID snowflake.ID
	Limit   int // Optional: defaults to DefaultQueuePreview
}

// ListQueueOutput contains the result of the ListQueue use case.
type ListQueueOutput struct {
	CurrentTrack *Track
	Status       PlaybackStatus
	Tracks       []Track
	Remaining    int // queued tracks not included in Tracks
	TotalTracks  int
}

// NowPlayingInput contains the input for the NowPlaying use case.
type NowPlayingInput struct {
	GuildID snowflake.ID
}

// NowPlayingOutput contains the result of the NowPlaying use case.
type NowPlayingOutput struct {
	Track         Track
	Status        PlaybackStatus
	VolumePercent int
	QueueLength   int
}

// PlayerService is the inbound command API of the music player. Every
// operation resolves the guild's session through the registry and delegates
// to it.
type PlayerService struct {
	registry    *session.Registry
	newSession  session.Factory
	voiceState  ports.VoiceStateProvider
	trackLoader *TrackLoaderService
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(
	registry *session.Registry,
	newSession session.Factory,
	voiceState ports.VoiceStateProvider,
	trackLoader *TrackLoaderService,
) *PlayerService {
	return &PlayerService{
		registry:    registry,
		newSession:  newSession,
		voiceState:  voiceState,
		trackLoader: trackLoader,
	}
}

// Play resolves the query, joins the caller's voice channel and enqueues the
// track, creating the guild's session if needed.
func (p *PlayerService) Play(ctx context.Context, input PlayInput) (*PlayOutput, error) {
	query, err := domain.ParseSearchQuery(input.Query)
	if err != nil {
		return nil, err
	}

	voiceChannelID, err := p.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	if voiceChannelID == 0 {
		return nil, ErrUserNotInVoice
	}

	// Resolution runs on the caller's goroutine so the session stays responsive.
	track, err := p.trackLoader.LoadTrack(ctx, LoadTrackInput{
		Query:       query,
		RequesterID: input.UserID,
	})
	if err != nil {
		return nil, err
	}

	// A session found in the registry may close before we reach it. Retry
	// once with a fresh one.
	for range 2 {
		s := p.registry.GetOrCreate(input.GuildID, p.newSession)

		result, err := p.enqueue(ctx, s, voiceChannelID, input.NotificationChannelID, track)
		if errors.Is(err, domain.ErrSessionClosed) {
			continue
		}
		if err != nil {
			return nil, err
		}

		slog.Info("enqueued track",
			"guild", input.GuildID,
			"track", track.Title,
			"position", result.Position,
		)

		return &PlayOutput{
			Track:    track,
			Position: result.Position,
		}, nil
	}

	return nil, domain.ErrSessionClosed
}

func (p *PlayerService) enqueue(
	ctx context.Context,
	s *session.Session,
	voiceChannelID, notificationChannelID snowflake.ID,
	track domain.Track,
) (session.EnqueueResult, error) {
	if err := s.Connect(ctx, voiceChannelID, notificationChannelID); err != nil {
		p.discardIfUnused(ctx, s)
		return session.EnqueueResult{}, err
	}
	return s.Enqueue(ctx, track)
}

// discardIfUnused stops a session that never got a voice connection so it
// does not linger in the registry.
func (p *PlayerService) discardIfUnused(ctx context.Context, s *session.Session) {
	snap, err := s.Snapshot(ctx)
	if err != nil || snap.VoiceChannelID != 0 || len(snap.Queue) > 0 {
		return
	}
	if err := s.Stop(ctx); err != nil && !errors.Is(err, domain.ErrSessionClosed) {
		slog.Warn("failed to discard session", "guild", s.GuildID(), "error", err)
	}
}

// ListQueue returns the current track and the head of the queue.
func (p *PlayerService) ListQueue(ctx context.Context, input ListQueueInput) (*ListQueueOutput, error) {
	s, ok := p.registry.Get(input.GuildID)
	if !ok {
		return nil, domain.ErrQueueEmpty
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Current == nil && len(snap.Queue) == 0 {
		return nil, domain.ErrQueueEmpty
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultQueuePreview
	}
	n := min(limit, len(snap.Queue))

	return &ListQueueOutput{
		CurrentTrack: snap.Current,
		Status:       snap.Status,
		Tracks:       snap.Queue[:n],
		Remaining:    len(snap.Queue) - n,
		TotalTracks:  len(snap.Queue),
	}, nil
}

// NowPlaying returns the current track.
func (p *PlayerService) NowPlaying(ctx context.Context, input NowPlayingInput) (*NowPlayingOutput, error) {
	s, ok := p.registry.Get(input.GuildID)
	if !ok {
		return nil, domain.ErrNotPlaying
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Current == nil {
		return nil, domain.ErrNotPlaying
	}

	return &NowPlayingOutput{
		Track:         *snap.Current,
		Status:        snap.Status,
		VolumePercent: snap.Volume.Percent(),
		QueueLength:   len(snap.Queue),
	}, nil
}
