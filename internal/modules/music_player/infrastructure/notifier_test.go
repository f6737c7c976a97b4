package infrastructure

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

func TestNotifier_NowPlayingEmbed(t *testing.T) {
	n := NewNotifier(nil)

	tests := []struct {
		name       string
		info       *ports.NowPlayingInfo
		wantFields []string
		wantFooter bool
	}{
		{
			name: "full track",
			info: &ports.NowPlayingInfo{
				Track: domain.Track{
					Title:      "Song",
					URL:        "https://www.youtube.com/watch?v=abc",
					Artist:     "Artist",
					Duration:   3*time.Minute + 5*time.Second,
					SourceName: "youtube",
				},
				RequesterName: "alice",
			},
			wantFields: []string{"Artist", "Duration"},
			wantFooter: true,
		},
		{
			name: "live stream without requester",
			info: &ports.NowPlayingInfo{
				Track: domain.Track{
					Title:      "Stream",
					Artist:     "Streamer",
					IsStream:   true,
					SourceName: "twitch",
				},
			},
			wantFields: []string{"Artist"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embed := n.nowPlayingEmbed(tt.info)

			if embed.Title != tt.info.Track.Title {
				t.Errorf("expected title %q, got %q", tt.info.Track.Title, embed.Title)
			}
			if embed.Color != tt.info.Track.TrackSourceName().Color() {
				t.Errorf("unexpected color %x", embed.Color)
			}
			if len(embed.Fields) != len(tt.wantFields) {
				t.Fatalf("expected %d fields, got %d", len(tt.wantFields), len(embed.Fields))
			}
			for i, name := range tt.wantFields {
				if embed.Fields[i].Name != name {
					t.Errorf("expected field %q, got %q", name, embed.Fields[i].Name)
				}
			}
			if (embed.Footer != nil) != tt.wantFooter {
				t.Errorf("expected footer %v, got %+v", tt.wantFooter, embed.Footer)
			}
		})
	}
}

func TestNotifier_GetBestThumbnail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/1280x720.jpg" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	n := NewNotifier(nil)

	tests := []struct {
		name     string
		source   domain.TrackSource
		artwork  string
		expected string
	}{
		{
			name:     "other source keeps artwork",
			source:   domain.TrackSourceOther,
			artwork:  "https://example.com/art.png",
			expected: "https://example.com/art.png",
		},
		{
			name:     "youtube without identifier keeps artwork",
			source:   domain.TrackSourceYouTube,
			artwork:  "https://example.com/art.png",
			expected: "https://example.com/art.png",
		},
		{
			name:     "twitch upgrades resolution",
			source:   domain.TrackSourceTwitch,
			artwork:  server.URL + "/440x248.jpg",
			expected: server.URL + "/1280x720.jpg",
		},
		{
			name:     "twitch without artwork",
			source:   domain.TrackSourceTwitch,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.getBestThumbnail(tt.source, "", tt.artwork); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
