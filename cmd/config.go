package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"railctl/pkg/config"
	"railctl/pkg/trainstatus"
	"railctl/pkg/tui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage railctl configuration",
	Long:  "View or edit your local configuration settings (commute route, time windows, token store).",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if show, _ := cmd.Flags().GetBool("show"); show {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		}

		changed, err := applyConfigFlags(cmd, cfg)
		if err != nil {
			return err
		}
		if changed {
			if err := config.Save(cfg); err != nil {
				return err
			}
			fmt.Printf("✅ Configuration saved: %s >> %s, morning %s-%s, evening %s-%s\n",
				cfg.CommuteOrigin, cfg.CommuteDestination,
				cfg.MorningWindow.Start, cfg.MorningWindow.End,
				cfg.EveningWindow.Start, cfg.EveningWindow.End)
			return nil
		}

		// If no flags are given, launch the interactive TUI flow
		return tui.RunConfigTUI()
	},
}

func applyConfigFlags(cmd *cobra.Command, cfg *config.AppConfig) (bool, error) {
	flags := cmd.Flags()
	changed := false

	if flags.Changed("add-station") {
		entries, _ := flags.GetStringSlice("add-station")
		for _, e := range entries {
			name, code, ok := strings.Cut(e, "=")
			if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(code) == "" {
				return false, fmt.Errorf("invalid station %q, expected NAME=CODE", e)
			}
			if cfg.ExtraStations == nil {
				cfg.ExtraStations = make(map[string]string)
			}
			cfg.ExtraStations[strings.TrimSpace(name)] = strings.TrimSpace(code)
		}
		changed = true
	}

	dir := trainstatus.DefaultDirectory(cfg.ExtraStations)
	for flag, target := range map[string]*string{"origin": &cfg.CommuteOrigin, "destination": &cfg.CommuteDestination} {
		if !flags.Changed(flag) {
			continue
		}
		name, _ := flags.GetString(flag)
		station, err := dir.Lookup(name)
		if err != nil {
			return false, err
		}
		*target = station.Name
		changed = true
	}

	for flag, target := range map[string]*config.Window{"morning": &cfg.MorningWindow, "evening": &cfg.EveningWindow} {
		if !flags.Changed(flag) {
			continue
		}
		value, _ := flags.GetString(flag)
		w, err := tui.ParseWindow(value)
		if err != nil {
			return false, fmt.Errorf("invalid --%s: %w", flag, err)
		}
		*target = w
		changed = true
	}

	if flags.Changed("token-store") {
		kind, _ := flags.GetString("token-store")
		kind = strings.ToLower(strings.TrimSpace(kind))
		switch kind {
		case config.TokenStoreFile, config.TokenStoreSQLite, config.TokenStoreMemory:
		default:
			return false, fmt.Errorf("unknown token store %q (use file, sqlite or memory)", kind)
		}
		cfg.TokenStore = kind
		changed = true
	}

	if flags.Changed("time-zone") {
		tz, _ := flags.GetString("time-zone")
		if _, err := time.LoadLocation(tz); err != nil {
			return false, fmt.Errorf("invalid time zone %q: %w", tz, err)
		}
		cfg.TimeZone = tz
		changed = true
	}

	return changed, nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().String("origin", "", "Home station of the commute (morning departure)")
	configCmd.Flags().String("destination", "", "Work station of the commute (morning arrival)")
	configCmd.Flags().String("morning", "", "Morning departure window, e.g. 07:40-08:10")
	configCmd.Flags().String("evening", "", "Evening departure window, e.g. 18:00-18:50")
	configCmd.Flags().String("token-store", "", "Where to cache the TDX token: file, sqlite or memory")
	configCmd.Flags().String("time-zone", "", "IANA time zone for commute windows")
	configCmd.Flags().StringSlice("add-station", nil, "Add a station as NAME=CODE (repeatable)")
	configCmd.Flags().Bool("show", false, "Print the current configuration")
}
