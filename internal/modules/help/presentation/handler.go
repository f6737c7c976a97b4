package presentation

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/tunebot/internal/bot"
	"github.com/sglre6355/tunebot/internal/modules/help/application"
	"github.com/sglre6355/tunebot/internal/modules/help/domain"
)

const colorHelp = 0x5865F2

// MessageSender posts embeds to a text channel.
type MessageSender interface {
	ChannelMessageSendEmbed(
		channelID string,
		embed *discordgo.MessageEmbed,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
}

// HelpHandler handles the /help command and the text help command.
type HelpHandler struct {
	interactor *application.HelpInteractor
}

// NewHelpHandler creates a new HelpHandler.
func NewHelpHandler(prefix string) *HelpHandler {
	return &HelpHandler{
		interactor: application.NewHelpInteractor(prefix),
	}
}

// Handle processes the help command and sends the response.
func (h *HelpHandler) Handle(
	_ *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{helpEmbed(h.interactor.Execute())},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// HandleMessage is the discordgo event handler for MessageCreate events.
func (h *HelpHandler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	h.handleMessage(s, m.Message)
}

func (h *HelpHandler) handleMessage(sender MessageSender, m *discordgo.Message) {
	// Ignore bots, including ourselves
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !h.interactor.Matches(m.Content) {
		return
	}

	if _, err := sender.ChannelMessageSendEmbed(m.ChannelID, helpEmbed(h.interactor.Execute())); err != nil {
		slog.Error("failed to send help", "channel", m.ChannelID, "error", err)
	}
}

func helpEmbed(page *domain.HelpPage) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       page.Title,
		Description: page.Description,
		Color:       colorHelp,
	}
}
