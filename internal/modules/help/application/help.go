package application

import "github.com/sglre6355/tunebot/internal/modules/help/domain"

// HelpInteractor handles the help use case.
type HelpInteractor struct {
	prefix string
}

// NewHelpInteractor creates a new HelpInteractor for the given command prefix.
func NewHelpInteractor(prefix string) *HelpInteractor {
	return &HelpInteractor{prefix: prefix}
}

// Execute returns the help page.
func (h *HelpInteractor) Execute() *domain.HelpPage {
	return domain.NewHelpPage(h.prefix, domain.MusicCommands)
}

// Matches reports whether content is the text help command.
func (h *HelpInteractor) Matches(content string) bool {
	return domain.NewCommandsResult(h.prefix, content).ShouldRespond
}
