package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
	colorInfo    = 0x5865F2
)

const msgInternalError = "Something went wrong, please try again."

func successEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Description: description,
		Color:       colorSuccess,
	}
}

func errorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorError,
	}
}

// userMessage turns a use case error into the text shown to the user.
// Errors without a user-facing kind are logged and replaced by a generic message.
func userMessage(command string, err error) string {
	switch kind := domain.KindOf(err); {
	case errors.Is(err, domain.ErrNoResults):
		return "No results found."
	case kind == domain.KindResolution:
		return "Could not load that track."
	case kind == domain.KindUserInput, kind == domain.KindInternalState:
		var e *domain.Error
		errors.As(err, &e)
		return capitalize(e.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return "That took too long, please try again."
	default:
		slog.Error("failed to handle command", "command", command, "error", err)
		return msgInternalError
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:] + "."
}

// trackLink formats a track as a markdown link when it has a URL.
func trackLink(track domain.Track) string {
	if track.URL != "" {
		return fmt.Sprintf("[%s](%s)", track.Title, track.URL)
	}
	return fmt.Sprintf("**%s**", track.Title)
}

func playEmbed(output *usecases.PlayOutput) *discordgo.MessageEmbed {
	if output.StartedPlaying() {
		return successEmbed(fmt.Sprintf("Playing %s.", trackLink(output.Track)))
	}
	return successEmbed(fmt.Sprintf(
		"Added %s to the queue at position %d.",
		trackLink(output.Track),
		output.Position,
	))
}

func skippedEmbed(output *usecases.SkipOutput) *discordgo.MessageEmbed {
	return successEmbed(fmt.Sprintf("Skipped %s.", trackLink(output.SkippedTrack)))
}

func volumeEmbed(output *usecases.SetVolumeOutput) *discordgo.MessageEmbed {
	return successEmbed(fmt.Sprintf("Volume set to %d%%.", output.Percent))
}

func queueEmbed(output *usecases.ListQueueOutput) *discordgo.MessageEmbed {
	var sb strings.Builder

	if output.CurrentTrack != nil {
		sb.WriteString("### Now Playing\n")
		fmt.Fprintf(&sb, "%s - %s", trackLink(*output.CurrentTrack), output.CurrentTrack.FormattedDuration())
		if output.Status == domain.StatusPaused {
			sb.WriteString(" (paused)")
		}
		sb.WriteString("\n")
	}

	if len(output.Tracks) > 0 {
		sb.WriteString("### Up Next\n")
		for i, track := range output.Tracks {
			// Escape the period to prevent Discord markdown list formatting
			fmt.Fprintf(&sb, "%d\\. %s - %s\n", i+1, trackLink(track), track.FormattedDuration())
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Queue",
		Description: sb.String(),
		Color:       colorInfo,
	}

	footer := fmt.Sprintf("%d tracks queued", output.TotalTracks)
	if output.Remaining > 0 {
		footer = fmt.Sprintf("%d more, %s", output.Remaining, footer)
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}

	return embed
}

func nowPlayingEmbed(output *usecases.NowPlayingOutput) *discordgo.MessageEmbed {
	track := output.Track

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{Name: "Now Playing"},
		Title:  track.Title,
		URL:    track.URL,
		Color:  track.TrackSourceName().Color(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Duration", Value: track.FormattedDuration(), Inline: true},
			{Name: "Volume", Value: fmt.Sprintf("%d%%", output.VolumePercent), Inline: true},
			{Name: "Status", Value: output.Status.String(), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d tracks queued", output.QueueLength),
		},
	}

	if track.Artist != "" {
		embed.Description = track.Artist
	}
	if track.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: track.ArtworkURL}
	}

	return embed
}
