package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// TrackID uniquely identifies a resolved track.
type TrackID string

// Track is the normalized metadata of a playable audio item.
// Tracks are values: once enqueued they are copied, never mutated.
type Track struct {
	ID         TrackID
	Title      string
	Source     string        // playable locator: stream URL or Lavalink encoded track
	URL        string        // canonical webpage URL, optional
	Duration   time.Duration // zero when unknown
	Artist     string
	ArtworkURL string
	SourceName string // e.g. "youtube", "soundcloud"
	Identifier string // provider-side identifier, e.g. the YouTube video ID
	IsStream   bool

	// Query is the user query the track was resolved from.
	Query string
	// ExpiresAt is when Source stops being playable. Zero means never.
	ExpiresAt time.Time

	RequesterID snowflake.ID
}

// Validate reports whether the track has the fields required for playback.
func (t Track) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("%w: missing title", ErrMalformedMetadata)
	}
	if t.Source == "" {
		return fmt.Errorf("%w: missing source locator", ErrMalformedMetadata)
	}
	if t.Duration < 0 {
		return fmt.Errorf("%w: negative duration", ErrMalformedMetadata)
	}
	return nil
}

// NeedsRefresh returns true if Source is missing or has expired at now.
func (t Track) NeedsRefresh(now time.Time) bool {
	if t.Source == "" {
		return true
	}
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// RefreshQuery returns the query to re-resolve the track with.
func (t Track) RefreshQuery() (string, error) {
	switch {
	case t.URL != "":
		return t.URL, nil
	case t.Query != "":
		return t.Query, nil
	default:
		return "", errors.New("track has neither URL nor query to refresh from")
	}
}

// WithRefreshedSource returns a copy of t carrying the playable locator of
// fresh. Identity and requester are kept from t.
func (t Track) WithRefreshedSource(fresh Track) Track {
	t.Source = fresh.Source
	t.ExpiresAt = fresh.ExpiresAt
	if t.Duration == 0 {
		t.Duration = fresh.Duration
	}
	return t
}

// TrackSourceName returns the parsed TrackSource for this track.
func (t Track) TrackSourceName() TrackSource {
	if t.SourceName != "" {
		return ParseTrackSource(t.SourceName)
	}
	return DetectTrackSource(t.URL)
}

// FormattedDuration returns the duration as a human-readable string (mm:ss or hh:mm:ss).
func (t Track) FormattedDuration() string {
	if t.IsStream {
		return "LIVE"
	}
	if t.Duration == 0 {
		return "?"
	}

	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return formatTime(hours, minutes, seconds)
	}
	return formatTimeShort(minutes, seconds)
}

func formatTime(hours, minutes, seconds int) string {
	return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
}

func formatTimeShort(minutes, seconds int) string {
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
