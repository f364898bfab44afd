package cli

import (
	"github.com/spf13/cobra"

	"clinicdesk/internal/stub"
)

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Development helpers",
}

var devServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the in-memory backend for offline use",
	Long: `Serves both the auth and clinic APIs from a single in-memory
process. Point the client at it with AUTH_SERVER_URL and CLINIC_API_URL.
All data is lost when the process exits.`,
	RunE: runDevServe,
}

func init() {
	devCmd.AddCommand(devServeCmd)
	devServeCmd.Flags().String("addr", "", "listen address (default :SERVER_PORT)")
}

func runDevServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = ":" + app.Config.Server.Port
	}
	return stub.New(app.Log).Start(addr)
}
