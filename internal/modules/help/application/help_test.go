package application

import (
	"strings"
	"testing"
)

func TestHelpInteractor_Execute(t *testing.T) {
	interactor := NewHelpInteractor("!")

	page := interactor.Execute()

	if !strings.Contains(page.Description, "/volume <0-100>") {
		t.Errorf("expected volume usage in %q", page.Description)
	}
}

func TestHelpInteractor_Matches(t *testing.T) {
	interactor := NewHelpInteractor("!")

	if !interactor.Matches("!commands") {
		t.Error("expected !commands to match")
	}
	if interactor.Matches("!play song") {
		t.Error("expected !play not to match")
	}
}
