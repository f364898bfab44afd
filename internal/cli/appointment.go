package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clinicdesk/internal/model"
)

var appointmentCmd = &cobra.Command{
	Use:     "appointment",
	Aliases: []string{"appt"},
	Short:   "Manage the active clinic's appointments",
}

var appointmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List appointments",
	RunE:  runAppointmentList,
}

var appointmentCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Schedule an appointment",
	RunE:  runAppointmentCreate,
}

var appointmentUpdateCmd = &cobra.Command{
	Use:   "update <appointment-id>",
	Short: "Update or reschedule an appointment",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppointmentUpdate,
}

func init() {
	appointmentCmd.AddCommand(appointmentListCmd)
	appointmentCmd.AddCommand(appointmentCreateCmd)
	appointmentCmd.AddCommand(appointmentUpdateCmd)

	for _, c := range []*cobra.Command{appointmentCreateCmd, appointmentUpdateCmd} {
		c.Flags().String("patient", "", "patient id")
		c.Flags().String("doctor", "", "doctor id")
		c.Flags().String("date", "", "date (YYYY-MM-DD)")
		c.Flags().String("time", "", "time (HH:MM)")
		c.Flags().Int("duration", 30, "duration in minutes")
		c.Flags().String("type", "", "visit type")
		c.Flags().String("status", "", "status (SCHEDULED, CONFIRMED, COMPLETED, CANCELLED)")
		c.Flags().String("notes", "", "free-form notes")
	}
}

func appointmentFromFlags(cmd *cobra.Command) model.Appointment {
	var a model.Appointment
	a.PatientID, _ = cmd.Flags().GetString("patient")
	a.DoctorID, _ = cmd.Flags().GetString("doctor")
	a.Date, _ = cmd.Flags().GetString("date")
	a.Time, _ = cmd.Flags().GetString("time")
	a.Duration, _ = cmd.Flags().GetInt("duration")
	a.Type, _ = cmd.Flags().GetString("type")
	a.Notes, _ = cmd.Flags().GetString("notes")
	if status, _ := cmd.Flags().GetString("status"); status != "" {
		a.Status = model.AppointmentStatus(status)
	}
	return a
}

func runAppointmentList(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}

	result, err := app.Clinic.ListAppointments(ctx)
	if err != nil {
		return handleError(err)
	}
	if outputJSON(cmd) {
		return printJSON(result)
	}
	if result.Empty {
		fmt.Println("No appointments")
		return nil
	}

	rows := make([][]string, 0, len(result.Content))
	for _, a := range result.Content {
		rows = append(rows, []string{
			a.ID, a.Date, orDash(a.Time),
			orDash(a.PatientName), orDash(a.DoctorName),
			strconv.Itoa(a.Duration), string(a.Status),
		})
	}
	printTable([]string{"ID", "DATE", "TIME", "PATIENT", "DOCTOR", "MIN", "STATUS"}, rows)
	return nil
}

func runAppointmentCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}

	appointment := appointmentFromFlags(cmd)
	if appointment.PatientID == "" || appointment.Date == "" {
		return errors.New("--patient and --date are required")
	}

	created, err := app.Clinic.CreateAppointment(ctx, appointment)
	if err != nil {
		return handleError(err)
	}
	if outputJSON(cmd) {
		return printJSON(created)
	}
	fmt.Printf("Appointment scheduled for %s %s (%s)\n", created.Date, created.Time, created.ID)
	return nil
}

func runAppointmentUpdate(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}

	updated, err := app.Clinic.UpdateAppointment(ctx, args[0], appointmentFromFlags(cmd))
	if err != nil {
		return handleError(err)
	}
	if outputJSON(cmd) {
		return printJSON(updated)
	}
	fmt.Printf("Appointment %s updated (%s)\n", updated.ID, updated.Status)
	return nil
}
