package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"railctl/pkg/config"
	"railctl/pkg/trainstatus"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List the station names railctl understands",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		dir := trainstatus.DefaultDirectory(cfg.ExtraStations)
		for _, s := range dir.Stations() {
			fmt.Printf("%s  %s\n", s.Code, strings.Join(s.Names, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stationsCmd)
}
