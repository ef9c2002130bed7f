package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"railctl/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve train status and the agent tools over HTTP",
	Long: `Starts an HTTP API:

  GET  /health
  GET  /api/status?mode=&dep=&arr=[&format=json]
  GET  /api/tools
  POST /api/tools/{name}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		origins, _ := cmd.Flags().GetString("origins")

		// Get port from environment variable when no address was given
		if addr == "" {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8081"
			}
			addr = ":" + port
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		var allowed []string
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				allowed = append(allowed, o)
			}
		}

		srv := server.New(a.resolver, a.toolRegistry(), server.Options{
			AllowedOrigins: allowed,
			Logger:         logger,
		})
		return srv.Run(cmd.Context(), addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default :$PORT or :8081)")
	serveCmd.Flags().String("origins", "", "Comma separated CORS origins (default any)")
	serveCmd.Flags().Bool("json-logs", false, "Log as JSON")
}
