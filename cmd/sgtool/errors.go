package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	sgerrors "github.com/sightglass-data/sgtool/pkg/errors"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)
	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	panelHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// renderError formats err for the terminal. Syncer errors carry enough
// structure for a titled panel; anything else renders as a plain line.
func renderError(err error) string {
	title, ok := errorKind(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}

	message, hint := splitHint(err.Error())
	body := message
	if hint != "" {
		body = message + "\n\n" + panelHintStyle.Render("Hint: "+hint)
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		panelTitleStyle.Render(title),
		"",
		body,
	))
}

func errorKind(err error) (string, bool) {
	var (
		defErr   *sgerrors.DefinitionError
		resErr   *sgerrors.ResolutionError
		initErr  *sgerrors.InitError
		parseErr *sgerrors.ParseError
		valErr   *sgerrors.ValidationError
		capErr   *sgerrors.CapabilityError
	)

	switch {
	case errors.As(err, &defErr):
		return "Definition Error", true
	case errors.As(err, &resErr):
		return "Resolution Error", true
	case errors.As(err, &initErr):
		return "Configuration Error", true
	case errors.As(err, &parseErr):
		return "Parse Error", true
	case errors.As(err, &valErr):
		return "Validation Error", true
	case errors.As(err, &capErr):
		return "Capability Error", true
	}
	return "", false
}

// splitHint separates an error message from its trailing hint line.
func splitHint(message string) (string, string) {
	body, hint, found := strings.Cut(message, "\nHint: ")
	if !found {
		return message, ""
	}
	return strings.TrimRight(body, "\n"), hint
}
