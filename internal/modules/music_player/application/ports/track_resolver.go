package ports

import (
	"context"

	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// TrackResolver turns a user query into a playable track.
type TrackResolver interface {
	// Resolve returns the track for a URL, or the first result of a search for
	// free text. Failures wrap domain errors of KindResolution.
	Resolve(ctx context.Context, query domain.SearchQuery) (domain.Track, error)
}
