package tui

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"railctl/pkg/config"
	"railctl/pkg/trainstatus"
)

// RunConfigTUI launches the interactive experience for managing configurations
func RunConfigTUI() error {
	for {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		var action string

		initialForm := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Configuration Settings").
					Options(
						huh.NewOption("Set Commute Stations", "route"),
						huh.NewOption("Set Commute Time Windows", "windows"),
						huh.NewOption("Set Token Cache Storage", "store"),
						huh.NewOption("Set Accent Color (Theme)", "theme"),
						huh.NewOption("View Current Config", "view"),
						huh.NewOption("Back to Main Menu", "back"),
					).
					Value(&action),
			),
		).WithTheme(GetTheme())

		if err := initialForm.Run(); err != nil {
			return err
		}

		switch action {
		case "back":
			return nil
		case "route":
			err = runSetRouteTUI(cfg)
		case "windows":
			err = runSetWindowsTUI(cfg)
		case "store":
			err = runSetTokenStoreTUI(cfg)
		case "theme":
			err = runSetThemeTUI(cfg)
		case "view":
			fmt.Println(accentStyle.Render("\n--- Current Configuration (~/.railctl.json) ---"))
			fmt.Print(describeConfig(cfg))
			fmt.Println()
		}

		if err != nil {
			return err
		}
	}
}

func describeConfig(cfg *config.AppConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Commute: %s >> %s\n", cfg.CommuteOrigin, cfg.CommuteDestination)
	fmt.Fprintf(&sb, "Morning window: %s-%s\n", cfg.MorningWindow.Start, cfg.MorningWindow.End)
	fmt.Fprintf(&sb, "Evening window: %s-%s (reverse direction)\n", cfg.EveningWindow.Start, cfg.EveningWindow.End)
	fmt.Fprintf(&sb, "Time zone: %s\n", cfg.TimeZone)
	fmt.Fprintf(&sb, "Extra stations: %d\n", len(cfg.ExtraStations))
	store := cfg.TokenStore
	if path, err := cfg.ResolvedTokenPath(); err == nil && store != config.TokenStoreMemory {
		store += " (" + path + ")"
	}
	fmt.Fprintf(&sb, "Token cache: %s\n", store)
	if cfg.AccentColor == "" {
		fmt.Fprintf(&sb, "Accent Color: default\n")
	} else {
		fmt.Fprintf(&sb, "Accent Color: %s\n", cfg.AccentColor)
	}
	return sb.String()
}

func runSetRouteTUI(cfg *config.AppConfig) error {
	dir := trainstatus.DefaultDirectory(cfg.ExtraStations)

	var options []huh.Option[string]
	for _, n := range dir.Names() {
		options = append(options, huh.NewOption(n, n))
	}

	origin, destination := cfg.CommuteOrigin, cfg.CommuteDestination

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Home station").
				Description("Where your morning commute starts.").
				Options(options...).
				Filtering(true).
				Value(&origin),
			huh.NewSelect[string]().
				Title("Work station").
				Description("Where your morning commute ends. The evening check runs in reverse.").
				Options(options...).
				Filtering(true).
				Value(&destination).
				Validate(func(s string) error {
					a, _ := dir.Lookup(origin)
					b, _ := dir.Lookup(s)
					if a.Code == b.Code {
						return fmt.Errorf("home and work must be different stations")
					}
					return nil
				}),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.CommuteOrigin = origin
	cfg.CommuteDestination = destination
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\n✅ Commute saved: %s >> %s\n", origin, destination)))
	return nil
}

func runSetWindowsTUI(cfg *config.AppConfig) error {
	morning := cfg.MorningWindow.Start + "-" + cfg.MorningWindow.End
	evening := cfg.EveningWindow.Start + "-" + cfg.EveningWindow.End

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Morning departure window").
				Description("Trains leaving your home station in this range, both ends included.").
				Placeholder("07:40-08:10").
				Value(&morning).
				Validate(func(s string) error { _, err := ParseWindow(s); return err }),
			huh.NewInput().
				Title("Evening departure window").
				Description("Trains leaving your work station in this range.").
				Placeholder("18:00-18:50").
				Value(&evening).
				Validate(func(s string) error { _, err := ParseWindow(s); return err }),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	m, _ := ParseWindow(morning)
	e, _ := ParseWindow(evening)
	cfg.MorningWindow, cfg.EveningWindow = m, e
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\n✅ Windows saved: morning %s-%s, evening %s-%s\n", m.Start, m.End, e.Start, e.End)))
	return nil
}

// ParseWindow reads "HH:MM-HH:MM" into a normalised config window.
func ParseWindow(s string) (config.Window, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return config.Window{}, fmt.Errorf("expected HH:MM-HH:MM")
	}
	w, err := trainstatus.ParseClockWindow(start, end)
	if err != nil {
		return config.Window{}, err
	}
	return config.Window{Start: w.Start.String(), End: w.End.String()}, nil
}

func runSetTokenStoreTUI(cfg *config.AppConfig) error {
	store := cfg.TokenStore

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should the TDX access token be cached?").
				Description("The token is reused until 10 minutes before it expires.").
				Options(
					huh.NewOption("JSON file (~/.railctl_cache)", config.TokenStoreFile),
					huh.NewOption("SQLite database (~/.railctl_cache)", config.TokenStoreSQLite),
					huh.NewOption("Memory only (new token every run)", config.TokenStoreMemory),
				).
				Value(&store),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.TokenStore = store
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\n✅ Token cache storage set to: %s\n", store)))
	return nil
}

func validateHex(str string) error {
	if len(str) != 7 || !strings.HasPrefix(str, "#") {
		return fmt.Errorf("must be a valid 6-character hex code starting with #")
	}
	if _, err := hex.DecodeString(str[1:]); err != nil {
		return fmt.Errorf("must be a valid 6-character hex code starting with #")
	}
	return nil
}

func colorBlock(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("██")
}

func runSetThemeTUI(cfg *config.AppConfig) error {
	var input string

	inputForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose an accent colour for railctl").
				Description("Select a curated Charm style or choose Custom to enter your own Hex.").
				Options(
					huh.NewOption(fmt.Sprintf("%s TRA Blue", colorBlock(defaultAccent)), defaultAccent),
					huh.NewOption(fmt.Sprintf("%s Puyuma Red", colorBlock("160")), "160"),
					huh.NewOption(fmt.Sprintf("%s Sakura Pink", colorBlock("205")), "205"),
					huh.NewOption(fmt.Sprintf("%s Taroko Orange", colorBlock("208")), "208"),
					huh.NewOption(fmt.Sprintf("%s Local Green", colorBlock("42")), "42"),
					huh.NewOption("✨ Custom Hex Code", "custom"),
				).
				Value(&input),
		),
	).WithTheme(GetTheme())

	if err := inputForm.Run(); err != nil {
		return err
	}

	if input == "custom" {
		var hexInput string
		hexForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Enter a Hex Color Code").
					Description("Include the `#` symbol. Example: #FF00FF").
					Placeholder("#").
					Value(&hexInput).
					Validate(validateHex),
			),
		).WithTheme(GetTheme())

		if err := hexForm.Run(); err != nil {
			return err
		}
		cfg.AccentColor = hexInput
	} else {
		cfg.AccentColor = input
	}

	if err := config.Save(cfg); err != nil {
		return err
	}

	GetTheme()
	fmt.Println(accentStyle.Render("\n✅ Accent colour saved.\n"))
	return nil
}
