package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"

	"railctl/pkg/exporter"
	"railctl/pkg/trainstatus"
)

var tierStyles = map[trainstatus.Tier]lipgloss.Style{
	trainstatus.TierOnTime: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	trainstatus.TierMinor:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	trainstatus.TierMajor:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

// RenderReport is Report.Render with each line coloured by its delay tier.
func RenderReport(rep *trainstatus.Report) string {
	text := rep.Render()

	switch rep.Outcome {
	case trainstatus.OutcomeUnknownStation:
		return errorStyle.Render(text)
	case trainstatus.OutcomeListing:
	default:
		title, rest, _ := strings.Cut(text, "\n")
		style := mutedStyle
		if rep.Outcome == trainstatus.OutcomeSummary {
			style = tierStyles[trainstatus.TierOnTime]
		} else if rep.Outcome == trainstatus.OutcomeTimetableUnavailable {
			style = errorStyle
		}
		return accentStyle.Bold(true).Render(title) + "\n" + style.Render(rest)
	}

	lines := []string{accentStyle.Bold(true).Render(rep.Query.Title())}
	for _, t := range rep.Trains {
		lines = append(lines, tierStyles[t.Tier].Render(trainstatus.FormatLine(t)))
	}
	if !rep.DelaysAvailable {
		lines = append(lines, mutedStyle.Render("(live delays unavailable, times are as scheduled)"))
	}
	return strings.Join(lines, "\n")
}

func compileWithSpinner(ctx context.Context, open Opener, req trainstatus.Request) (*trainstatus.Report, error) {
	session, err := open(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	var rep *trainstatus.Report
	_ = spinner.New().
		Title("Fetching TRA timetable and live delays...").
		Action(func() {
			rep, _ = session.Resolver.Compile(ctx, req, time.Now())
		}).
		Run()

	if rep == nil {
		return nil, fmt.Errorf("status query was interrupted")
	}
	return rep, nil
}

// RunStatusTUI runs one query and prints the coloured report
func RunStatusTUI(ctx context.Context, open Opener, req trainstatus.Request) error {
	rep, err := compileWithSpinner(ctx, open, req)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(RenderReport(rep))
	fmt.Println()
	return nil
}

// RunPairTUI asks for two stations and checks the next hour between them
func RunPairTUI(ctx context.Context, open Opener) error {
	session, err := open(ctx)
	if err != nil {
		return err
	}
	names := session.Resolver.Directory().Names()
	session.Close()

	var options []huh.Option[string]
	for _, n := range names {
		options = append(options, huh.NewOption(n, n))
	}

	var from, to string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Departure station").
				Options(options...).
				Filtering(true).
				Value(&from),
			huh.NewSelect[string]().
				Title("Arrival station").
				Options(options...).
				Filtering(true).
				Value(&to).
				Validate(func(s string) error {
					if strings.EqualFold(s, from) {
						return fmt.Errorf("pick a different arrival station")
					}
					return nil
				}),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	return RunStatusTUI(ctx, open, trainstatus.Request{Origin: from, Destination: to})
}

// RunExportTUI writes a commute window to an .ics file
func RunExportTUI(ctx context.Context, open Opener) error {
	var mode string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which commute do you want in your calendar?").
				Options(
					huh.NewOption("Morning", trainstatus.ModeMorning.String()),
					huh.NewOption("Evening", trainstatus.ModeEvening.String()),
				).
				Value(&mode),
		),
	).WithTheme(GetTheme())

	if err := form.Run(); err != nil {
		return err
	}

	rep, err := compileWithSpinner(ctx, open, trainstatus.Request{Mode: trainstatus.ParseMode(mode)})
	if err != nil {
		return err
	}
	if len(rep.Trains) == 0 {
		fmt.Println(RenderReport(rep))
		return nil
	}

	filename := fmt.Sprintf("TRA_%s_%s.ics", mode, rep.Query.Start.Format("20060102"))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not write ics file: %w", err)
	}
	defer file.Close()

	if err := exporter.GenerateICS(rep, file); err != nil {
		return err
	}

	fmt.Println(accentStyle.Render(fmt.Sprintf("\n✨ Exported %d trains to: %s\n", len(rep.Trains), filename)))
	return nil
}
