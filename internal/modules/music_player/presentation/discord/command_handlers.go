package discord

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/bot"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/usecases"
)

// commandTimeout bounds a single command, including track resolution.
const commandTimeout = 30 * time.Second

var errNotInGuild = errors.New("command used outside a guild")

// interactionTarget holds the IDs every music command needs.
type interactionTarget struct {
	guildID   snowflake.ID
	userID    snowflake.ID
	channelID snowflake.ID
}

func parseInteraction(i *discordgo.InteractionCreate) (interactionTarget, error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return interactionTarget{}, errNotInGuild
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return interactionTarget{}, err
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return interactionTarget{}, err
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return interactionTarget{}, err
	}

	return interactionTarget{guildID: guildID, userID: userID, channelID: channelID}, nil
}

// CommandHandlers holds the slash command handlers.
type CommandHandlers struct {
	player MusicPlayer
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(player MusicPlayer) *CommandHandlers {
	return &CommandHandlers{player: player}
}

// Handlers returns the slash command handlers keyed by command name.
func (h *CommandHandlers) Handlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":   h.HandlePlay,
		"pause":  h.HandlePause,
		"resume": h.HandleResume,
		"skip":   h.HandleSkip,
		"stop":   h.HandleStop,
		"volume": h.HandleVolume,
		"queue":  h.HandleQueue,
		"np":     h.HandleNowPlaying,
	}
}

// HandlePlay handles the /play command.
// Resolution can take longer than the interaction deadline, so the response
// is deferred and edited once the track is queued.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	target, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}

	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" {
			query = opt.StringValue()
		}
	}

	if err := r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.player.Play(ctx, usecases.PlayInput{
		GuildID:               target.guildID,
		UserID:                target.userID,
		NotificationChannelID: target.channelID,
		Query:                 query,
	})
	if err != nil {
		return editEmbed(r, errorEmbed(userMessage("play", err)))
	}

	return editEmbed(r, playEmbed(output))
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	target, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := h.player.Pause(ctx, usecases.PauseInput{GuildID: target.guildID}); err != nil {
		return respondError(r, userMessage("pause", err))
	}

	return respondEmbed(r, successEmbed("Paused playback."))
}

// HandleResume handles the /resume command.
func (h *CommandHandlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	target, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := h.player.Resume(ctx, usecases.ResumeInput{GuildID: target.guildID}); err != nil {
		return respondError(r, userMessage("resume", err))
	}

	return respondEmbed(r, successEmbed("Resumed playback."))
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	target, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.player.Skip(ctx, usecases.SkipInput{GuildID: target.guildID})
	if err != nil {
		return respondError(r, userMessage("skip", err))
	}

	// "Now Playing" for the next track is sent as a separate message
	return respondEmbed(r, skippedEmbed(output))
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	target, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := h.player.Stop(ctx, usecases.StopInput{GuildID: target.guildID}); err != nil {
		return respondError(r, userMessage("stop", err))
	}

	return respondEmbed(r, successEmbed("Stopped playback and left the voice channel."))
}

// HandleVolume handles the /volume command.
func (h *CommandHandlers) HandleVolume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	target, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}

	var percent int
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "percent" {
			percent = int(opt.IntValue())
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.player.SetVolume(ctx, usecases.SetVolumeInput{
		GuildID: target.guildID,
		Percent: percent,
	})
	if err != nil {
		return respondError(r, userMessage("volume", err))
	}

	return respondEmbed(r, volumeEmbed(output))
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	target, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.player.ListQueue(ctx, usecases.ListQueueInput{GuildID: target.guildID})
	if err != nil {
		return respondError(r, userMessage("queue", err))
	}

	return respondEmbed(r, queueEmbed(output))
}

// HandleNowPlaying handles the /np command.
func (h *CommandHandlers) HandleNowPlaying(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	target, err := parseInteraction(i)
	if err != nil {
		return respondError(r, "This command can only be used in a server.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.player.NowPlaying(ctx, usecases.NowPlayingInput{GuildID: target.guildID})
	if err != nil {
		return respondError(r, userMessage("np", err))
	}

	return respondEmbed(r, nowPlayingEmbed(output))
}

// Response helpers.

func respondEmbed(r bot.Responder, embed *discordgo.MessageEmbed) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{errorEmbed(message)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func editEmbed(r bot.Responder, embed *discordgo.MessageEmbed) error {
	embeds := []*discordgo.MessageEmbed{embed}
	return r.Edit(&discordgo.WebhookEdit{Embeds: &embeds})
}
