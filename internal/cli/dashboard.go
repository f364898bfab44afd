package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the active clinic's dashboard",
	RunE:  runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}

	stats, err := app.Clinic.DashboardStats(ctx)
	if err != nil {
		return handleError(err)
	}
	recent, err := app.Clinic.RecentAppointments(ctx)
	if err != nil {
		return handleError(err)
	}

	if outputJSON(cmd) {
		return printJSON(map[string]any{"stats": stats, "recentAppointments": recent})
	}

	if active := app.Tenant.Active(); active != nil {
		fmt.Printf("Dashboard for %s\n\n", active.Name)
	}
	fmt.Printf("Patients:               %d\n", stats.TotalPatients)
	fmt.Printf("Appointments today:     %d\n", stats.TodayAppointments)
	fmt.Printf("Pending appointments:   %d\n", stats.PendingAppointments)
	fmt.Printf("Completed appointments: %d\n", stats.CompletedAppointments)
	fmt.Printf("New patients (30 days): %d\n", stats.RecentPatients)

	if len(recent) > 0 {
		fmt.Println("\nRecent appointments:")
		rows := make([][]string, 0, len(recent))
		for _, a := range recent {
			rows = append(rows, []string{a.Date, orDash(a.Time), orDash(a.PatientName), string(a.Status)})
		}
		printTable([]string{"DATE", "TIME", "PATIENT", "STATUS"}, rows)
	}
	return nil
}
