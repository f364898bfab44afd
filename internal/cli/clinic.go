package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clinicdesk/internal/model"
)

var clinicCmd = &cobra.Command{
	Use:   "clinic",
	Short: "Manage clinics and the active clinic",
}

var clinicListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the clinics you belong to",
	RunE:  runClinicList,
}

var clinicCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a clinic and make it active",
	RunE:  runClinicCreate,
}

var clinicJoinCmd = &cobra.Command{
	Use:   "join <invite-code>",
	Short: "Join a clinic with an invite code",
	Args:  cobra.ExactArgs(1),
	RunE:  runClinicJoin,
}

var clinicSwitchCmd = &cobra.Command{
	Use:   "switch <clinic-id>",
	Short: "Switch the active clinic",
	Args:  cobra.ExactArgs(1),
	RunE:  runClinicSwitch,
}

var clinicInviteCodeCmd = &cobra.Command{
	Use:   "invite-code [clinic-id]",
	Short: "Generate a join code for a clinic",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClinicInviteCode,
}

var clinicDoctorsCmd = &cobra.Command{
	Use:   "doctors [clinic-id]",
	Short: "List the doctors practicing at a clinic",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClinicDoctors,
}

func init() {
	clinicCmd.AddCommand(clinicListCmd)
	clinicCmd.AddCommand(clinicCreateCmd)
	clinicCmd.AddCommand(clinicJoinCmd)
	clinicCmd.AddCommand(clinicSwitchCmd)
	clinicCmd.AddCommand(clinicInviteCodeCmd)
	clinicCmd.AddCommand(clinicDoctorsCmd)

	clinicCreateCmd.Flags().String("name", "", "clinic name")
	clinicCreateCmd.Flags().String("address", "", "street address")
	clinicCreateCmd.Flags().String("phone", "", "contact phone")
	clinicCreateCmd.Flags().String("description", "", "description")
	clinicCreateCmd.Flags().String("email", "", "contact email")
	clinicCreateCmd.Flags().String("website", "", "website URL")
}

func runClinicList(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireSession(ctx); err != nil {
		return err
	}

	clinics := app.Tenant.Memberships()
	if outputJSON(cmd) {
		return printJSON(clinics)
	}
	if len(clinics) == 0 {
		fmt.Println("You do not belong to any clinic yet")
		return nil
	}

	active := app.Tenant.Active()
	rows := make([][]string, 0, len(clinics))
	for _, c := range clinics {
		marker := ""
		if active != nil && active.ID == c.ID {
			marker = "*"
		}
		rows = append(rows, []string{marker, c.ID, c.Name, orDash(c.Address), orDash(c.Phone)})
	}
	printTable([]string{"", "ID", "NAME", "ADDRESS", "PHONE"}, rows)
	return nil
}

func runClinicCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireSession(ctx); err != nil {
		return err
	}

	draft := model.ClinicDraft{}
	draft.Name, _ = cmd.Flags().GetString("name")
	draft.Address, _ = cmd.Flags().GetString("address")
	draft.Phone, _ = cmd.Flags().GetString("phone")
	draft.Description, _ = cmd.Flags().GetString("description")
	draft.Email, _ = cmd.Flags().GetString("email")
	draft.Website, _ = cmd.Flags().GetString("website")

	if draft.Name == "" || draft.Address == "" || draft.Phone == "" {
		return errors.New("--name, --address and --phone are required")
	}

	clinic, err := app.Tenant.Create(ctx, draft)
	if err != nil {
		return handleError(err)
	}
	if outputJSON(cmd) {
		return printJSON(clinic)
	}
	fmt.Printf("Clinic %q created and set active (%s)\n", clinic.Name, clinic.ID)
	return nil
}

func runClinicJoin(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireSession(ctx); err != nil {
		return err
	}

	if err := app.Tenant.Join(ctx, args[0]); err != nil {
		return handleError(err)
	}
	if active := app.Tenant.Active(); active != nil {
		fmt.Printf("Joined clinic %q (%s)\n", active.Name, active.ID)
	} else {
		fmt.Println("Joined clinic")
	}
	return nil
}

func runClinicSwitch(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}

	if !app.Tenant.SwitchActive(args[0]) {
		return fmt.Errorf("you are not a member of clinic %s", args[0])
	}
	active := app.Tenant.Active()
	fmt.Printf("Active clinic is now %q (%s)\n", active.Name, active.ID)
	return nil
}

// activeClinicID resolves the clinic id argument, defaulting to the
// active clinic.
func activeClinicID(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if active := app.Tenant.Active(); active != nil {
		return active.ID, nil
	}
	return "", errors.New("no active clinic, pass a clinic id")
}

func runClinicInviteCode(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}
	clinicID, err := activeClinicID(args)
	if err != nil {
		return err
	}

	code, err := app.Clinic.GenerateInviteCode(ctx, clinicID)
	if err != nil {
		return handleError(err)
	}
	if outputJSON(cmd) {
		return printJSON(code)
	}
	fmt.Printf("Invite code: %s (expires %s)\n", code.InviteCode, code.ExpiresAt)
	return nil
}

func runClinicDoctors(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}
	clinicID, err := activeClinicID(args)
	if err != nil {
		return err
	}

	doctors, err := app.Clinic.DoctorsByClinic(ctx, clinicID)
	if err != nil {
		return handleError(err)
	}
	if outputJSON(cmd) {
		return printJSON(doctors)
	}
	if len(doctors) == 0 {
		fmt.Println("No doctors found")
		return nil
	}
	rows := make([][]string, 0, len(doctors))
	for _, d := range doctors {
		rows = append(rows, []string{d.ID, d.FirstName + " " + d.LastName, d.Email, orDash(d.Specialty)})
	}
	printTable([]string{"ID", "NAME", "EMAIL", "SPECIALTY"}, rows)
	return nil
}
