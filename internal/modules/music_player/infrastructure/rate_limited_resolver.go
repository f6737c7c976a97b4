package infrastructure

import (
	"context"
	"fmt"

	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
	"golang.org/x/time/rate"
)

var _ ports.TrackResolver = (*RateLimitedResolver)(nil)

// RateLimitedResolver limits how often the wrapped resolver is called.
// Callers over the limit wait for a token until their context is done.
type RateLimitedResolver struct {
	next    ports.TrackResolver
	limiter *rate.Limiter
}

// NewRateLimitedResolver wraps next with a limiter allowing perSecond calls
// with bursts of up to burst calls.
func NewRateLimitedResolver(next ports.TrackResolver, perSecond float64, burst int) *RateLimitedResolver {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedResolver{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Resolve waits for the limiter and then delegates to the wrapped resolver.
func (r *RateLimitedResolver) Resolve(ctx context.Context, query domain.SearchQuery) (domain.Track, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Track{}, ctxErr
		}
		return domain.Track{}, fmt.Errorf("resolve rate limit: %w", err)
	}
	return r.next.Resolve(ctx, query)
}
