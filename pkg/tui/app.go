package tui

import (
	"context"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"railctl/pkg/config"
	"railctl/pkg/trainstatus"
)

var (
	// Replaced by GetTheme once the saved accent colour is known.
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// defaultAccent is TRA blue.
const defaultAccent = "33"

// GetTheme loads the saved accent colour and builds the form theme from it.
func GetTheme() *huh.Theme {
	baseColor := defaultAccent
	if cfg, err := config.Load(); err == nil && cfg.AccentColor != "" {
		baseColor = cfg.AccentColor
	}

	// Plain Println output shares the accent
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(baseColor))

	return GetCustomTheme(baseColor)
}

// GetCustomTheme builds a theme around baseColor. The settings screen uses it to
// preview a colour before saving.
func GetCustomTheme(baseColor string) *huh.Theme {
	t := huh.ThemeCharm()
	p := lipgloss.Color(baseColor)

	t.Focused.Title = t.Focused.Title.Foreground(p).Bold(true)
	t.Focused.Base = t.Focused.Base.Border(lipgloss.RoundedBorder()).BorderForeground(p).Padding(0, 1)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(p)
	t.Focused.MultiSelectSelector = t.Focused.MultiSelectSelector.Foreground(p)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(p)
	t.Focused.SelectedPrefix = t.Focused.SelectedPrefix.Foreground(p)
	t.Focused.UnselectedPrefix = t.Focused.UnselectedPrefix.Foreground(lipgloss.AdaptiveColor{Light: "", Dark: "235"})
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(p)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(p)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Foreground(lipgloss.Color("0")).Background(p)

	t.Blurred.Base = t.Blurred.Base.Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)

	return t
}

// Session is one wired resolver plus its cleanup.
type Session struct {
	Resolver *trainstatus.Resolver
	Close    func() error
}

// Opener builds a Session from the current saved config. The menu reopens it for
// every query so settings changes apply immediately.
type Opener func(ctx context.Context) (Session, error)

// RunTUI launches the main menu interactive form experience
func RunTUI(ctx context.Context, open Opener) error {
	for {
		var action string

		initialForm := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("What would you like to do?").
					Options(
						huh.NewOption("🚆 Live Status (next hour home)", "check"),
						huh.NewOption("🌅 Morning Commute", "morning"),
						huh.NewOption("🌆 Evening Commute", "evening"),
						huh.NewOption("🗺️ Check Any Station Pair", "pair"),
						huh.NewOption("📅 Export Commute to Calendar", "export"),
						huh.NewOption("⚙️ Settings", "config"),
						huh.NewOption("Quit", "quit"),
					).
					Value(&action),
			),
		).WithTheme(GetTheme())

		if err := initialForm.Run(); err != nil {
			return err
		}

		var err error
		switch action {
		case "quit":
			return nil
		case "config":
			err = RunConfigTUI()
		case "pair":
			err = RunPairTUI(ctx, open)
		case "export":
			err = RunExportTUI(ctx, open)
		default:
			err = RunStatusTUI(ctx, open, trainstatus.Request{Mode: trainstatus.ParseMode(action)})
		}
		if err != nil {
			return err
		}
	}
}
