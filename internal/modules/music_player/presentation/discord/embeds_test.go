package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sglre6355/tunebot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "user input", err: domain.ErrEmptyQuery, expected: "Query must not be empty."},
		{name: "internal state", err: domain.ErrAlreadyPaused, expected: "Playback is already paused."},
		{
			name:     "wrapped no results",
			err:      fmt.Errorf("failed to resolve %q: %w", "song", domain.ErrNoResults),
			expected: "No results found.",
		},
		{name: "source unavailable", err: domain.ErrSourceUnavailable, expected: "Could not load that track."},
		{name: "timeout", err: context.DeadlineExceeded, expected: "That took too long, please try again."},
		{name: "unclassified", err: errors.New("boom"), expected: msgInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := userMessage("test", tt.err); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestQueueEmbed(t *testing.T) {
	current := testTrack("Current")
	output := &usecases.ListQueueOutput{
		CurrentTrack: &current,
		Status:       domain.StatusPaused,
		Tracks:       []domain.Track{testTrack("A"), testTrack("B")},
		Remaining:    3,
		TotalTracks:  5,
	}

	embed := queueEmbed(output)

	for _, want := range []string{
		"### Now Playing\n[Current](https://example.com/Current) - 03:05 (paused)",
		"1\\. [A](https://example.com/A) - 03:05",
		"2\\. [B](https://example.com/B) - 03:05",
	} {
		if !strings.Contains(embed.Description, want) {
			t.Errorf("expected %q in %q", want, embed.Description)
		}
	}
	if embed.Footer.Text != "3 more, 5 tracks queued" {
		t.Errorf("unexpected footer %q", embed.Footer.Text)
	}
}

func TestTrackLink(t *testing.T) {
	track := testTrack("A")
	if got := trackLink(track); got != "[A](https://example.com/A)" {
		t.Errorf("unexpected link %q", got)
	}

	track.URL = ""
	if got := trackLink(track); got != "**A**" {
		t.Errorf("unexpected link %q", got)
	}
}
