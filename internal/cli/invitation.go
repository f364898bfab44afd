package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clinicdesk/internal/model"
)

var invitationCmd = &cobra.Command{
	Use:   "invitation",
	Short: "Send and manage staff invitations",
}

var invitationSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Invite a staff member to a clinic",
	RunE:  runInvitationSend,
}

var invitationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the invitations you sent",
	RunE:  runInvitationList,
}

var invitationAcceptCmd = &cobra.Command{
	Use:   "accept",
	Short: "Accept an invitation token and create your account",
	RunE:  runInvitationAccept,
}

var invitationVerifyCmd = &cobra.Command{
	Use:   "verify <token>",
	Short: "Show what an invitation token grants",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvitationVerify,
}

var invitationCancelCmd = &cobra.Command{
	Use:   "cancel <invitation-id>",
	Short: "Revoke a pending invitation",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvitationCancel,
}

var invitationResendCmd = &cobra.Command{
	Use:   "resend <invitation-id>",
	Short: "Re-send an invitation",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvitationResend,
}

func init() {
	invitationCmd.AddCommand(invitationSendCmd)
	invitationCmd.AddCommand(invitationListCmd)
	invitationCmd.AddCommand(invitationAcceptCmd)
	invitationCmd.AddCommand(invitationVerifyCmd)
	invitationCmd.AddCommand(invitationCancelCmd)
	invitationCmd.AddCommand(invitationResendCmd)

	invitationSendCmd.Flags().StringP("email", "e", "", "invitee email")
	invitationSendCmd.Flags().String("role", "", "role to grant (DOCTOR, ASSISTANT, RECEPTIONIST)")
	invitationSendCmd.Flags().String("clinic", "", "clinic id (defaults to the active clinic)")
	invitationSendCmd.Flags().String("doctor", "", "doctor id, for assistants attached to a doctor")

	invitationAcceptCmd.Flags().String("token", "", "invitation token")
	invitationAcceptCmd.Flags().StringP("password", "p", "", "password for the new account")
	invitationAcceptCmd.Flags().String("first-name", "", "first name")
	invitationAcceptCmd.Flags().String("last-name", "", "last name")
}

func runInvitationSend(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}

	invite := model.InviteRequest{}
	invite.Email, _ = cmd.Flags().GetString("email")
	invite.Role, _ = cmd.Flags().GetString("role")
	invite.ClinicID, _ = cmd.Flags().GetString("clinic")
	invite.DoctorID, _ = cmd.Flags().GetString("doctor")

	if invite.Email == "" || invite.Role == "" {
		return errors.New("--email and --role are required")
	}
	if invite.ClinicID == "" {
		if active := app.Tenant.Active(); active != nil {
			invite.ClinicID = active.ID
		} else {
			return errors.New("no active clinic, pass --clinic")
		}
	}

	if err := app.Clinic.SendInvitation(ctx, invite); err != nil {
		return handleError(err)
	}
	fmt.Printf("Invitation sent to %s as %s\n", invite.Email, invite.Role)
	return nil
}

func runInvitationList(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}

	invitations, err := app.Clinic.MyInvitations(ctx)
	if err != nil {
		return handleError(err)
	}
	if outputJSON(cmd) {
		return printJSON(invitations)
	}
	if len(invitations) == 0 {
		fmt.Println("No invitations sent")
		return nil
	}

	rows := make([][]string, 0, len(invitations))
	for _, inv := range invitations {
		rows = append(rows, []string{inv.ID, inv.Email, inv.Role, string(inv.Status), inv.CreatedAt})
	}
	printTable([]string{"ID", "EMAIL", "ROLE", "STATUS", "SENT"}, rows)
	return nil
}

// runInvitationAccept runs without a session: the invitee does not have an
// account yet.
func runInvitationAccept(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	accept := model.InvitationAccept{}
	accept.Token, _ = cmd.Flags().GetString("token")
	accept.EncodedPassword, _ = cmd.Flags().GetString("password")
	accept.FirstName, _ = cmd.Flags().GetString("first-name")
	accept.LastName, _ = cmd.Flags().GetString("last-name")

	if accept.Token == "" || accept.EncodedPassword == "" {
		return errors.New("--token and --password are required")
	}

	if err := app.Clinic.AcceptInvitation(ctx, accept); err != nil {
		return handleError(err)
	}
	fmt.Println(`Invitation accepted, log in with "clinicdesk auth login"`)
	return nil
}

func runInvitationVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	claims, err := app.Clinic.VerifyInvitation(ctx, args[0])
	if err != nil {
		return handleError(err)
	}
	if outputJSON(cmd) {
		return printJSON(claims)
	}
	fmt.Printf("Invitation for %s as %s (clinic %s)\n", claims.Email, claims.Role, claims.ClinicID)
	return nil
}

func runInvitationCancel(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}

	if err := app.Clinic.CancelInvitation(ctx, args[0]); err != nil {
		return handleError(err)
	}
	fmt.Printf("Invitation %s cancelled\n", args[0])
	return nil
}

func runInvitationResend(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	if err := requireAccess(ctx); err != nil {
		return err
	}

	if err := app.Clinic.ResendInvitation(ctx, args[0]); err != nil {
		return handleError(err)
	}
	fmt.Printf("Invitation %s resent\n", args[0])
	return nil
}
