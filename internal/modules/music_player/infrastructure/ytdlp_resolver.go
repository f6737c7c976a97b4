package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// DefaultStreamURLTTL is how long a yt-dlp stream URL is assumed to stay playable.
// YouTube signs its URLs for about six hours.
const DefaultStreamURLTTL = 5 * time.Hour

// ytdlpPrintTemplate selects the fields parsed by parseYtdlpOutput.
const ytdlpPrintTemplate = "%(title)s\t%(webpage_url)s\t%(duration)s\t%(uploader)s\t%(url)s\t%(id)s\t%(extractor_key)s\t%(is_live)s\t%(thumbnail)s"

var _ ports.TrackResolver = (*YtdlpResolver)(nil)

// YtdlpConfig configures YtdlpResolver.
type YtdlpConfig struct {
	Proxy        string
	StreamURLTTL time.Duration
	SearchSource domain.SearchSource
}

// ytdlpRunner runs yt-dlp against a single target and returns its stdout.
type ytdlpRunner func(ctx context.Context, target string) (string, error)

// YtdlpResolver resolves queries by running yt-dlp. The resulting Source is a
// direct stream URL, which expires.
type YtdlpResolver struct {
	run          ytdlpRunner
	ttl          time.Duration
	searchSource domain.SearchSource
	now          func() time.Time
}

// NewYtdlpResolver creates a YtdlpResolver using the yt-dlp binary on PATH.
func NewYtdlpResolver(config YtdlpConfig) *YtdlpResolver {
	proxy := config.Proxy
	run := func(ctx context.Context, target string) (string, error) {
		cmd := ytdlp.New().
			Quiet().
			NoWarnings().
			IgnoreConfig().
			NoPlaylist().
			Format("bestaudio/best").
			Print(ytdlpPrintTemplate)

		if proxy != "" {
			cmd.Proxy(proxy)
		}

		res, err := cmd.Run(ctx, target)
		if err != nil {
			return "", err
		}
		return res.Stdout, nil
	}

	return newYtdlpResolver(run, config)
}

func newYtdlpResolver(run ytdlpRunner, config YtdlpConfig) *YtdlpResolver {
	if config.StreamURLTTL <= 0 {
		config.StreamURLTTL = DefaultStreamURLTTL
	}
	if config.SearchSource == "" {
		config.SearchSource = domain.SourceYouTube
	}

	return &YtdlpResolver{
		run:          run,
		ttl:          config.StreamURLTTL,
		searchSource: config.SearchSource,
		now:          time.Now,
	}
}

// Resolve runs yt-dlp for the query and returns the first result.
func (r *YtdlpResolver) Resolve(ctx context.Context, query domain.SearchQuery) (domain.Track, error) {
	out, err := r.run(ctx, query.YtdlpTarget(r.searchSource))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Track{}, ctxErr
		}
		return domain.Track{}, domain.NewError(
			domain.KindResolution,
			fmt.Errorf("%w: yt-dlp: %w", domain.ErrSourceUnavailable, err),
		)
	}

	track, err := parseYtdlpOutput(out)
	if err != nil {
		return domain.Track{}, err
	}

	track.ID = domain.TrackID(uuid.NewString())
	track.Query = query.Text
	if !track.IsStream {
		track.ExpiresAt = r.now().Add(r.ttl)
	}

	if err := track.Validate(); err != nil {
		return domain.Track{}, err
	}
	return track, nil
}

// parseYtdlpOutput parses the first line printed with ytdlpPrintTemplate.
func parseYtdlpOutput(out string) (domain.Track, error) {
	out = strings.TrimSpace(out)
	if out == "" {
		return domain.Track{}, domain.ErrNoResults
	}

	line, _, _ := strings.Cut(out, "\n")
	fields := strings.Split(line, "\t")
	if len(fields) < 5 {
		return domain.Track{}, fmt.Errorf(
			"%w: expected at least 5 fields, got %d",
			domain.ErrMalformedMetadata,
			len(fields),
		)
	}

	duration, err := parseYtdlpDuration(fields[2])
	if err != nil {
		return domain.Track{}, fmt.Errorf("%w: %w", domain.ErrMalformedMetadata, err)
	}

	track := domain.Track{
		Title:    naToEmpty(fields[0]),
		URL:      naToEmpty(fields[1]),
		Duration: duration,
		Artist:   naToEmpty(fields[3]),
		Source:   naToEmpty(fields[4]),
	}
	if len(fields) >= 9 {
		track.Identifier = naToEmpty(fields[5])
		track.SourceName = strings.ToLower(naToEmpty(fields[6]))
		track.IsStream = fields[7] == "True"
		track.ArtworkURL = naToEmpty(fields[8])
	}

	return track, nil
}

// parseYtdlpDuration parses yt-dlp's duration in (possibly fractional) seconds.
// "NA" means unknown and yields zero.
func parseYtdlpDuration(s string) (time.Duration, error) {
	s = naToEmpty(s)
	if s == "" {
		return 0, nil
	}

	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if seconds < 0 {
		return 0, errors.New("negative duration")
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// naToEmpty maps yt-dlp's placeholder for missing fields to "".
func naToEmpty(s string) string {
	s = strings.TrimSpace(s)
	if s == "NA" {
		return ""
	}
	return s
}
