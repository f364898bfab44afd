package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clinicdesk/internal/model"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Log in, register and manage your account",
}

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Log in and store the session token",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and discard the stored token",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user and active clinic",
	RunE:  runWhoami,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update your profile",
	RunE:  runProfile,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)
	authCmd.AddCommand(profileCmd)

	loginCmd.Flags().StringP("password", "p", "", "account password")
	loginCmd.Flags().String("google", "", "Google identity credential instead of a password")

	registerCmd.Flags().StringP("email", "e", "", "email address")
	registerCmd.Flags().StringP("password", "p", "", "account password")
	registerCmd.Flags().String("first-name", "", "first name")
	registerCmd.Flags().String("last-name", "", "last name")
	registerCmd.Flags().String("role", "", "role (OWNER, DOCTOR, ASSISTANT, RECEPTIONIST)")

	profileCmd.Flags().String("first-name", "", "first name")
	profileCmd.Flags().String("last-name", "", "last name")
	profileCmd.Flags().String("role", "", "role, completes a fresh OAuth profile")
	profileCmd.Flags().String("avatar", "", "avatar URL")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	credential, _ := cmd.Flags().GetString("google")
	if credential != "" {
		user, err := app.Session.LoginWithGoogle(ctx, credential)
		if err != nil {
			return handleError(err)
		}
		return announceLogin(cmd, user)
	}

	if len(args) == 0 {
		return errors.New("email is required")
	}
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		return errors.New("password is required, pass it with -p")
	}

	user, err := app.Session.Login(ctx, args[0], password)
	if err != nil {
		return handleError(err)
	}
	return announceLogin(cmd, user)
}

func announceLogin(cmd *cobra.Command, user *model.User) error {
	if outputJSON(cmd) {
		return printJSON(user)
	}
	fmt.Printf("Logged in as %s (%s)\n", user.Email, strings.Join(user.Roles, ", "))

	ctx, cancel := cmdContext()
	defer cancel()
	if err := requireAccess(ctx); err != nil {
		fmt.Printf("Next step: %s\n", err.Error())
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	data := model.RegisterData{}
	data.Email, _ = cmd.Flags().GetString("email")
	data.Password, _ = cmd.Flags().GetString("password")
	data.FirstName, _ = cmd.Flags().GetString("first-name")
	data.LastName, _ = cmd.Flags().GetString("last-name")
	data.Role, _ = cmd.Flags().GetString("role")

	if data.Email == "" || data.Password == "" {
		return errors.New("email and password are required")
	}

	message, err := app.Session.Register(ctx, data)
	if err != nil {
		return handleError(err)
	}
	fmt.Println(message)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	app.Session.Logout(ctx)
	fmt.Println("Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	decision := resolve(ctx)
	user := app.Session.User()
	if user == nil {
		return errors.New("not logged in")
	}

	if outputJSON(cmd) {
		return printJSON(map[string]any{
			"user":   user,
			"state":  decision.State,
			"clinic": app.Tenant.Active(),
		})
	}

	fmt.Printf("User:   %s (%s)\n", user.FullName(), user.Email)
	fmt.Printf("Roles:  %s\n", strings.Join(user.Roles, ", "))
	fmt.Printf("State:  %s\n", decision.State)
	if active := app.Tenant.Active(); active != nil {
		fmt.Printf("Clinic: %s (%s)\n", active.Name, active.ID)
	} else {
		fmt.Println("Clinic: none")
	}
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext()
	defer cancel()

	app.Session.Resume(ctx)
	if !app.Session.Authenticated() {
		return errors.New(`not logged in, run "clinicdesk auth login" first`)
	}

	update := model.ProfileUpdate{}
	update.FirstName, _ = cmd.Flags().GetString("first-name")
	update.LastName, _ = cmd.Flags().GetString("last-name")
	update.Role, _ = cmd.Flags().GetString("role")
	update.Avatar, _ = cmd.Flags().GetString("avatar")

	if update == (model.ProfileUpdate{}) {
		return errors.New("nothing to update, pass at least one flag")
	}

	user, err := app.Session.UpdateProfile(ctx, update)
	if err != nil {
		return handleError(err)
	}
	if outputJSON(cmd) {
		return printJSON(user)
	}
	fmt.Printf("Profile updated: %s (%s)\n", user.FullName(), strings.Join(user.Roles, ", "))
	return nil
}
