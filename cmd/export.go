package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"railctl/pkg/exporter"
	"railctl/pkg/trainstatus"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the trains of a status query to an ICS file",
	Long:  `Export the trains in the requested window as calendar events, shifted by their current delay.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		output, _ := cmd.Flags().GetString("output")

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		now, err := queryTime(a, "")
		if err != nil {
			return err
		}

		req := trainstatus.Request{Mode: trainstatus.ParseMode(mode), Origin: from, Destination: to}

		var rep *trainstatus.Report
		withSpinner(fmt.Sprintf("Exporting trains to %s...", output), func() {
			rep, err = a.resolver.Compile(cmd.Context(), req, now)
		})
		if err != nil {
			return err
		}

		if rep.Outcome == trainstatus.OutcomeTimetableUnavailable {
			return fmt.Errorf("failed to fetch timetable: %w", rep.Err)
		}
		if len(rep.Trains) == 0 {
			return fmt.Errorf("no trains found for %s", rep.Query.Title())
		}

		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()

		err = exporter.GenerateICS(rep, file)
		if err != nil {
			return fmt.Errorf("failed to generate ICS: %w", err)
		}

		fmt.Printf("Successfully exported %d trains to %s\n", len(rep.Trains), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("mode", "m", "morning", "Query mode: check, morning or evening")
	exportCmd.Flags().StringP("from", "f", "", "Departure station (requires --to)")
	exportCmd.Flags().StringP("to", "t", "", "Arrival station (requires --from)")
	exportCmd.Flags().StringP("output", "o", "trains.ics", "Output file path")
}
