package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/usecases"
)

// MessageSender posts embeds to a text channel. *discordgo.Session satisfies it.
type MessageSender interface {
	ChannelMessageSendEmbed(
		channelID string,
		embed *discordgo.MessageEmbed,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
}

// prefixCommand handles a prefix command and returns the reply embed.
type prefixCommand func(ctx context.Context, target interactionTarget, args string) *discordgo.MessageEmbed

// PrefixHandlers runs text commands such as "!play <query>".
type PrefixHandlers struct {
	prefix   string
	player   MusicPlayer
	commands map[string]prefixCommand
}

// NewPrefixHandlers creates new PrefixHandlers for commands starting with prefix.
func NewPrefixHandlers(prefix string, player MusicPlayer) *PrefixHandlers {
	h := &PrefixHandlers{
		prefix: prefix,
		player: player,
	}
	h.commands = map[string]prefixCommand{
		"play":   h.play,
		"p":      h.play,
		"pause":  h.pause,
		"resume": h.resume,
		"skip":   h.skip,
		"stop":   h.stop,
		"volume": h.volume,
		"vol":    h.volume,
		"queue":  h.queue,
		"q":      h.queue,
		"np":     h.nowPlaying,
	}
	return h
}

// HandleMessageCreate is registered as a discordgo MessageCreate handler.
func (h *PrefixHandlers) HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	h.handleMessage(s, m.Message)
}

func (h *PrefixHandlers) handleMessage(sender MessageSender, m *discordgo.Message) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	name, args, ok := parsePrefixCommand(h.prefix, m.Content)
	if !ok {
		return
	}
	command, ok := h.commands[name]
	if !ok {
		return
	}

	target, err := parseMessage(m)
	if err != nil {
		slog.Warn("failed to parse prefix command message", "command", name, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	embed := command(ctx, target, args)
	if _, err := sender.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
		slog.Error("failed to send prefix command reply", "command", name, "error", err)
	}
}

// parsePrefixCommand splits "!play some song" into ("play", "some song").
func parsePrefixCommand(prefix, content string) (name, args string, ok bool) {
	if prefix == "" {
		return "", "", false
	}
	rest, found := strings.CutPrefix(strings.TrimSpace(content), prefix)
	if !found || rest == "" {
		return "", "", false
	}

	name, args, _ = strings.Cut(rest, " ")
	return strings.ToLower(name), strings.TrimSpace(args), true
}

func parseMessage(m *discordgo.Message) (interactionTarget, error) {
	return parseInteraction(&discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			GuildID:   m.GuildID,
			ChannelID: m.ChannelID,
			Member:    &discordgo.Member{User: m.Author},
		},
	})
}

func (h *PrefixHandlers) play(ctx context.Context, target interactionTarget, args string) *discordgo.MessageEmbed {
	output, err := h.player.Play(ctx, usecases.PlayInput{
		GuildID:               target.guildID,
		UserID:                target.userID,
		NotificationChannelID: target.channelID,
		Query:                 args,
	})
	if err != nil {
		return errorEmbed(userMessage("play", err))
	}
	return playEmbed(output)
}

func (h *PrefixHandlers) pause(ctx context.Context, target interactionTarget, _ string) *discordgo.MessageEmbed {
	if err := h.player.Pause(ctx, usecases.PauseInput{GuildID: target.guildID}); err != nil {
		return errorEmbed(userMessage("pause", err))
	}
	return successEmbed("Paused playback.")
}

func (h *PrefixHandlers) resume(ctx context.Context, target interactionTarget, _ string) *discordgo.MessageEmbed {
	if err := h.player.Resume(ctx, usecases.ResumeInput{GuildID: target.guildID}); err != nil {
		return errorEmbed(userMessage("resume", err))
	}
	return successEmbed("Resumed playback.")
}

func (h *PrefixHandlers) skip(ctx context.Context, target interactionTarget, _ string) *discordgo.MessageEmbed {
	output, err := h.player.Skip(ctx, usecases.SkipInput{GuildID: target.guildID})
	if err != nil {
		return errorEmbed(userMessage("skip", err))
	}
	return skippedEmbed(output)
}

func (h *PrefixHandlers) stop(ctx context.Context, target interactionTarget, _ string) *discordgo.MessageEmbed {
	if err := h.player.Stop(ctx, usecases.StopInput{GuildID: target.guildID}); err != nil {
		return errorEmbed(userMessage("stop", err))
	}
	return successEmbed("Stopped playback and left the voice channel.")
}

func (h *PrefixHandlers) volume(ctx context.Context, target interactionTarget, args string) *discordgo.MessageEmbed {
	percent, err := strconv.Atoi(strings.TrimSuffix(args, "%"))
	if err != nil {
		return errorEmbed(fmt.Sprintf("Usage: %svolume <0-100>", h.prefix))
	}

	output, err := h.player.SetVolume(ctx, usecases.SetVolumeInput{
		GuildID: target.guildID,
		Percent: percent,
	})
	if err != nil {
		return errorEmbed(userMessage("volume", err))
	}
	return volumeEmbed(output)
}

func (h *PrefixHandlers) queue(ctx context.Context, target interactionTarget, _ string) *discordgo.MessageEmbed {
	output, err := h.player.ListQueue(ctx, usecases.ListQueueInput{GuildID: target.guildID})
	if err != nil {
		return errorEmbed(userMessage("queue", err))
	}
	return queueEmbed(output)
}

func (h *PrefixHandlers) nowPlaying(ctx context.Context, target interactionTarget, _ string) *discordgo.MessageEmbed {
	output, err := h.player.NowPlaying(ctx, usecases.NowPlayingInput{GuildID: target.guildID})
	if err != nil {
		return errorEmbed(userMessage("np", err))
	}
	return nowPlayingEmbed(output)
}
