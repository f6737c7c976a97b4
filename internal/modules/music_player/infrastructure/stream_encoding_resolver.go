package infrastructure

import (
	"context"
	"fmt"

	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

var _ ports.TrackResolver = (*StreamEncodingResolver)(nil)

// StreamEncoder turns a direct stream URL into an encoded playable track.
type StreamEncoder interface {
	EncodeStream(ctx context.Context, url string) (string, error)
}

// StreamEncodingResolver encodes direct stream URLs returned by the wrapped
// resolver, so the voice transport only ever receives encoded tracks.
// It runs wherever Resolve runs, keeping the lookup off the session goroutine.
type StreamEncodingResolver struct {
	next    ports.TrackResolver
	encoder StreamEncoder
}

// NewStreamEncodingResolver wraps next, encoding its stream URLs with encoder.
func NewStreamEncodingResolver(next ports.TrackResolver, encoder StreamEncoder) *StreamEncodingResolver {
	return &StreamEncodingResolver{next: next, encoder: encoder}
}

// Resolve delegates to the wrapped resolver and encodes a stream URL source.
// The track's expiry is kept, since the encoded track embeds the same URL.
func (r *StreamEncodingResolver) Resolve(ctx context.Context, query domain.SearchQuery) (domain.Track, error) {
	track, err := r.next.Resolve(ctx, query)
	if err != nil {
		return domain.Track{}, err
	}
	if !isStreamURL(track.Source) {
		return track, nil
	}

	encoded, err := r.encoder.EncodeStream(ctx, track.Source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Track{}, ctxErr
		}
		return domain.Track{}, domain.NewError(domain.KindResolution, fmt.Errorf("failed to encode stream: %w", err))
	}
	track.Source = encoded
	return track, nil
}
