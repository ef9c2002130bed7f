package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"railctl/pkg/trainstatus"
	"railctl/pkg/tui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show live train status for your commute or any station pair",
	Long: `Shows the trains in the requested window together with their live delay.

  railctl status                       next hour on the return leg
  railctl status -m morning            configured morning commute window
  railctl status -m evening            configured evening commute window
  railctl status --from 台北 --to 桃園   any pair, next hour`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		at, _ := cmd.Flags().GetString("at")
		asJSON, _ := cmd.Flags().GetBool("json")
		color, _ := cmd.Flags().GetBool("color")

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		now, err := queryTime(a, at)
		if err != nil {
			return err
		}

		req := trainstatus.Request{Mode: trainstatus.ParseMode(mode), Origin: from, Destination: to}

		var rep *trainstatus.Report
		withSpinner("Fetching TRA timetable and live delays...", func() {
			rep, err = a.resolver.Compile(cmd.Context(), req, now)
		})

		switch {
		case asJSON:
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(rep); encErr != nil {
				return encErr
			}
		case color:
			fmt.Println(tui.RenderReport(rep))
		default:
			fmt.Println(rep.Render())
		}

		if err != nil {
			// Already rendered; only the exit code is left.
			a.Close()
			os.Exit(2)
		}
		return nil
	},
}

// queryTime returns now, or today at the given HH:MM in the configured time zone.
func queryTime(a *app, at string) (time.Time, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return time.Time{}, err
	}
	now := time.Now().In(loc)
	if at == "" {
		return now, nil
	}
	clock, err := trainstatus.ParseClock(at)
	if err != nil {
		return time.Time{}, err
	}
	return clock.On(now), nil
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringP("mode", "m", "check", "Query mode: check, morning (routine_morning) or evening (routine_evening)")
	statusCmd.Flags().StringP("from", "f", "", "Departure station (requires --to)")
	statusCmd.Flags().StringP("to", "t", "", "Arrival station (requires --from)")
	statusCmd.Flags().String("at", "", "Pretend the current time is HH:MM today")
	statusCmd.Flags().Bool("json", false, "Print the structured report as JSON")
	statusCmd.Flags().Bool("color", false, "Colour the output by delay tier")
}
