package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"railctl/pkg/logging"
)

var (
	debugFlag bool
	logger    = logging.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "railctl",
	Short: "Live TRA train status for your daily commute",
	Long: `railctl checks Taiwan Railways timetables and live delays through the TDX API
and summarizes the trains on your commute. TDX credentials are read from
TDX_CLIENT_ID and TDX_CLIENT_SECRET (a .env file in the working directory works too).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(cmd)
	},
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
		return logging.NewJSON(os.Stderr, debugFlag)
	}
	return logging.New(os.Stderr, debugFlag)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// .env.local overrides .env for local development
	_ = godotenv.Load()
	_ = godotenv.Overload(".env.local")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging on stderr")
}
