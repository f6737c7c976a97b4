package usecases

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// PauseInput contains the input for the Pause use case.
type PauseInput struct {
	GuildID snowflake.ID
}

// ResumeInput contains the input for the Resume use case.
type ResumeInput struct {
	GuildID snowflake.ID
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID snowflake.ID
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	SkippedTrack Track
}

// StopInput contains the input for the Stop use case.
type StopInput struct {
	GuildID snowflake.ID
}

// SetVolumeInput contains the input for the SetVolume use case.
type SetVolumeInput struct {
	GuildID snowflake.ID
	Percent int // 0-100
}

// SetVolumeOutput contains the result of the SetVolume use case.
type SetVolumeOutput struct {
	Percent int
}

// Pause pauses the current playback.
func (p *PlayerService) Pause(ctx context.Context, input PauseInput) error {
	s, ok := p.registry.Get(input.GuildID)
	if !ok {
		return domain.ErrNotPlaying
	}
	return notPlayingIfClosed(s.Pause(ctx))
}

// Resume resumes the paused playback.
func (p *PlayerService) Resume(ctx context.Context, input ResumeInput) error {
	s, ok := p.registry.Get(input.GuildID)
	if !ok {
		return domain.ErrNotPlaying
	}
	return notPlayingIfClosed(s.Resume(ctx))
}

// Skip ends the current track. The next queued track starts once the
// transport reports the end.
func (p *PlayerService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	s, ok := p.registry.Get(input.GuildID)
	if !ok {
		return nil, domain.ErrNotPlaying
	}

	skipped, err := s.Skip(ctx)
	if err != nil {
		return nil, notPlayingIfClosed(err)
	}

	return &SkipOutput{SkippedTrack: skipped}, nil
}

// Stop clears the queue, leaves the voice channel and closes the session.
func (p *PlayerService) Stop(ctx context.Context, input StopInput) error {
	s, ok := p.registry.Get(input.GuildID)
	if !ok {
		return domain.ErrNotConnected
	}

	if err := s.Stop(ctx); err != nil {
		if errors.Is(err, domain.ErrSessionClosed) {
			return domain.ErrNotConnected
		}
		return err
	}
	return nil
}

// SetVolume changes the playback volume.
func (p *PlayerService) SetVolume(ctx context.Context, input SetVolumeInput) (*SetVolumeOutput, error) {
	volume, err := domain.VolumeFromPercent(input.Percent)
	if err != nil {
		return nil, err
	}

	s, ok := p.registry.Get(input.GuildID)
	if !ok {
		return nil, domain.ErrNotConnected
	}

	if err := s.SetVolume(ctx, volume); err != nil {
		if errors.Is(err, domain.ErrSessionClosed) {
			return nil, domain.ErrNotConnected
		}
		return nil, err
	}

	return &SetVolumeOutput{Percent: volume.Percent()}, nil
}

// notPlayingIfClosed reports a session that closed underneath the caller as
// nothing playing.
func notPlayingIfClosed(err error) error {
	if errors.Is(err, domain.ErrSessionClosed) {
		return domain.ErrNotPlaying
	}
	return err
}
