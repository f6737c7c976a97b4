package help

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/tunebot/internal/bot"
	"github.com/sglre6355/tunebot/internal/modules/help/presentation"
)

func init() {
	bot.Register(&HelpModule{})
}

// HelpModule provides /help and the text help command.
type HelpModule struct {
	helpHandler *presentation.HelpHandler
}

// Name returns the module name.
func (m *HelpModule) Name() string {
	return "help"
}

// Commands returns the slash commands for this module.
func (m *HelpModule) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "help",
			Description: "List the music commands",
		},
	}
}

// CommandHandlers returns the command handlers for this module.
func (m *HelpModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"help": m.helpHandler.Handle,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *HelpModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		m.helpHandler.HandleMessage,
	}
}

// Init initializes the module.
func (m *HelpModule) Init(deps bot.ModuleDependencies) error {
	m.helpHandler = presentation.NewHelpHandler(deps.Config.CommandPrefix)
	return nil
}

// Shutdown cleans up module resources.
func (m *HelpModule) Shutdown() error {
	return nil
}
