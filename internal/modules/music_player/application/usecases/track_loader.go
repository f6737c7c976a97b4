package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// LoadTrackInput contains the input for the LoadTrack use case.
type LoadTrackInput struct {
	Query       domain.SearchQuery
	RequesterID snowflake.ID
}

// TrackLoaderService resolves user queries into validated tracks.
type TrackLoaderService struct {
	trackResolver ports.TrackResolver
	metrics       ports.PlaybackMetrics
}

// NewTrackLoaderService creates a new TrackLoaderService.
func NewTrackLoaderService(
	trackResolver ports.TrackResolver,
	metrics ports.PlaybackMetrics,
) *TrackLoaderService {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &TrackLoaderService{
		trackResolver: trackResolver,
		metrics:       metrics,
	}
}

// LoadTrack resolves the query and returns the first matching track.
func (s *TrackLoaderService) LoadTrack(ctx context.Context, input LoadTrackInput) (domain.Track, error) {
	started := time.Now()
	track, err := s.trackResolver.Resolve(ctx, input.Query)
	s.metrics.ObserveResolve(time.Since(started), err)
	if err != nil {
		if domain.KindOf(err) == domain.KindUnknown {
			err = domain.NewError(domain.KindResolution, err)
		}
		return domain.Track{}, fmt.Errorf("failed to resolve %q: %w", input.Query.Text, err)
	}

	if err := track.Validate(); err != nil {
		return domain.Track{}, err
	}

	if track.Query == "" {
		track.Query = input.Query.Text
	}
	track.RequesterID = input.RequesterID

	return track, nil
}
