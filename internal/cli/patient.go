package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clinicdesk/internal/model"
)

var patientCmd = &cobra.Command{
	Use:   "patient",
	Short: "Manage the active clinic's patients",
}

var patientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List patients, one page at a time",
	RunE:  runPatientList,
}

var patientCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a patient record",
	RunE:  runPatientCreate,
}

var patientUpdateCmd = &cobra.Command{
	Use:   "update <patient-id>",
	Short: "Update a patient record",
	Args:  cobra.ExactArgs(1),
	RunE:  runPatientUpdate,
}

var patientStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many patients were added this month",
	RunE:  runPatientStats,
}

var recordListCmd = &cobra.Command{
	Use:   "records <patient-id>",
	Short: "Show a patient's visit history",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordList,
}

var recordAddCmd = &cobra.Command{
	Use:   "record-add <patient-id>",
	Short: "Add a visit entry to a patient's history",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordAdd,
}

func init() {
	patientCmd.AddCommand(patientListCmd)
	patientCmd.AddCommand(patientCreateCmd)
	patientCmd.AddCommand(patientUpdateCmd)
	patientCmd.AddCommand(patientStatsCmd)
	patientCmd.AddCommand(recordListCmd)
	patientCmd.AddCommand(recordAddCmd)

	patientListCmd.Flags().Int("page", 0, "page number, starting at 0")
	patientListCmd.Flags().Int("size", 20, "page size")

	for _, c := range []*cobra.Command{patientCreateCmd, patientUpdateCmd} {
		c.Flags().String("first-name", "", "first name")
		c.Flags().String("last-name", "", "last name")
		c.Flags().String("email", "", "email address")
		c.Flags().String("phone", "", "phone number")
		c.Flags().String("date-of-birth", "", "date of birth (YYYY-MM-DD)")
		c.Flags().String("gender", "", "gender")
		c.Flags().String("address", "", "street address")
		c.Flags().String("emergency-contact", "", "emergency contact")
		c.Flags().StringSlice("medical-history", nil, "known conditions")
		c.Flags().StringSlice("allergies", nil, "known allergies")
	}

	recordAddCmd.Flags().String("doctor", "", "doctor id")
	recordAddCmd.Flags().String("diagnosis", "", "diagnosis")
	recordAddCmd.Flags().StringSlice("symptoms", nil, "observed symptoms")
	recordAddCmd.Flags().String("treatment", "", "treatment")
	recordAddCmd.Flags().StringSlice("prescription", nil, "prescribed medication")
	recordAddCmd.Flags().String("notes", "", "free-form notes")
	recordAddCmd.Flags().String("follow-up", "", "follow-up date (YYYY-MM-DD)")
}

func patientFromFlags(cmd *cobra.Command) model.Patient {
	var p model.Patient
	p.FirstName, _ = cmd.Flags().GetString("first-name")
	p.LastName, _ = cmd.Flags().GetString("last-name")
	p.Email, _ = cmd.Flags().GetString("email")
	p.Phone, _ = cmd.Flags().GetString("phone")
	p.DateOfBirth, _ = cmd.Flags().GetString("date-of-birth")
	p.Gender, _ = cmd.Flags().GetString("gender")
	p.Address, _ = cmd.Flags().GetString("address")
	p.EmergencyContact, _ = cmd.Flags().GetString("emergency-contact")
	p.MedicalHistory, _ = cmd.Flags().GetStringSlice("medical-history")
	p.Allergies, _ = cmd.Flags().GetStringSlice("allergies")
	return p
}

func runPatientList(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}

	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")

	result, err := app.Clinic.ListPatients(ctx, page, size)
	if err != nil {
		return handleError(err)
	}
	if outputJSON(cmd) {
		return printJSON(result)
	}
	if result.Empty {
		fmt.Println("No patients on this page")
		return nil
	}

	rows := make([][]string, 0, len(result.Content))
	for _, p := range result.Content {
		rows = append(rows, []string{p.ID, p.FirstName + " " + p.LastName, orDash(p.Email), orDash(p.Phone), orDash(p.DateOfBirth)})
	}
	printTable([]string{"ID", "NAME", "EMAIL", "PHONE", "BORN"}, rows)
	fmt.Printf("Page %d of %d (%d patients total)\n", result.Number+1, result.TotalPages, result.TotalElements)
	return nil
}

func runPatientCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}

	patient := patientFromFlags(cmd)
	if patient.FirstName == "" || patient.LastName == "" {
		return errors.New("--first-name and --last-name are required")
	}

	created, err := app.Clinic.CreatePatient(ctx, patient)
	if err != nil {
		return handleError(err)
	}
	if outputJSON(cmd) {
		return printJSON(created)
	}
	fmt.Printf("Patient %s %s created (%s)\n", created.FirstName, created.LastName, created.ID)
	return nil
}

func runPatientUpdate(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}

	updated, err := app.Clinic.UpdatePatient(ctx, args[0], patientFromFlags(cmd))
	if err != nil {
		return handleError(err)
	}
	if outputJSON(cmd) {
		return printJSON(updated)
	}
	fmt.Printf("Patient %s updated\n", updated.ID)
	return nil
}

func runPatientStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}

	count, err := app.Clinic.NewPatientsThisMonth(ctx)
	if err != nil {
		return handleError(err)
	}
	fmt.Printf("%d new patients this month\n", count)
	return nil
}

func runRecordList(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}

	records, err := app.Clinic.MedicalRecords(ctx, args[0])
	if err != nil {
		return handleError(err)
	}
	if outputJSON(cmd) {
		return printJSON(records)
	}
	if len(records) == 0 {
		fmt.Println("No visit history")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Date, orDash(r.Diagnosis), orDash(r.Treatment), orDash(strings.Join(r.Prescription, ", "))})
	}
	printTable([]string{"DATE", "DIAGNOSIS", "TREATMENT", "PRESCRIPTION"}, rows)
	return nil
}

func runRecordAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}

	record := model.MedicalRecord{PatientID: args[0]}
	record.DoctorID, _ = cmd.Flags().GetString("doctor")
	record.Diagnosis, _ = cmd.Flags().GetString("diagnosis")
	record.Symptoms, _ = cmd.Flags().GetStringSlice("symptoms")
	record.Treatment, _ = cmd.Flags().GetString("treatment")
	record.Prescription, _ = cmd.Flags().GetStringSlice("prescription")
	record.Notes, _ = cmd.Flags().GetString("notes")
	record.FollowUpDate, _ = cmd.Flags().GetString("follow-up")

	if record.Diagnosis == "" {
		return errors.New("--diagnosis is required")
	}

	created, err := app.Clinic.CreateMedicalRecord(ctx, record)
	if err != nil {
		return handleError(err)
	}
	if outputJSON(cmd) {
		return printJSON(created)
	}
	fmt.Printf("Visit entry recorded (%s)\n", created.ID)
	return nil
}
