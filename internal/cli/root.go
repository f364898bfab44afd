// Package cli wires the cobra command tree around the session, tenant and
// access stores. Protected commands run the access resolver before touching
// the clinic backend, so every command lands where the resolver says.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clinicdesk/internal/access"
	"clinicdesk/internal/session"
	"clinicdesk/internal/state"
	"clinicdesk/internal/tenant"
	"clinicdesk/pkg/apierror"
	"clinicdesk/pkg/authapi"
	"clinicdesk/pkg/clinicapi"
	"clinicdesk/pkg/config"
	"clinicdesk/pkg/httpapi"
	"clinicdesk/pkg/logger"
)

const commandTimeout = 30 * time.Second

// App holds the wired client stack shared by every command.
type App struct {
	Config  *config.Config
	Log     *zap.Logger
	State   *state.Store
	Auth    *authapi.Client
	Clinic  *clinicapi.Client
	Session *session.Store
	Tenant  *tenant.Store
}

var app *App

var rootCmd = &cobra.Command{
	Use:     "clinicdesk",
	Short:   "Manage your clinic from the command line",
	Long: `clinicdesk talks to the clinic platform: accounts and sessions,
clinic membership, patients, appointments, medical records, staff
invitations and the dashboard.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("state-file", "", "state file (default is $HOME/"+state.DefaultFileName+")")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table, json)")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(clinicCmd)
	rootCmd.AddCommand(patientCmd)
	rootCmd.AddCommand(appointmentCmd)
	rootCmd.AddCommand(invitationCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(devCmd)
}

// initApp builds the client stack once per invocation.
func initApp(cmd *cobra.Command) error {
	cfg, err := config.Load("clinicdesk")
	if err != nil {
		return err
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		return err
	}
	log := logger.GetLogger()

	statePath, _ := cmd.Flags().GetString("state-file")
	if statePath == "" {
		statePath, err = state.DefaultPath()
		if err != nil {
			return err
		}
	}
	st := state.Open(statePath)

	authHTTP := httpapi.NewClient(cfg.Backend.AuthBaseURL, "auth", cfg.Backend.Timeout, st.Token, log)
	clinicHTTP := httpapi.NewClient(cfg.Backend.ClinicBaseURL, "clinic", cfg.Backend.Timeout, st.Token, log)
	authClient := authapi.NewClient(authHTTP)
	clinicClient := clinicapi.NewClient(clinicHTTP)

	app = &App{
		Config:  cfg,
		Log:     log,
		State:   st,
		Auth:    authClient,
		Clinic:  clinicClient,
		Session: session.NewStore(authClient, st, log),
		Tenant:  tenant.NewStore(clinicClient, st, log),
	}
	return nil
}

func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// resolve runs the resolver over the current session and tenancy. The
// membership load is skipped entirely when no user resolved; the resolver
// treats that tenancy as settled.
func resolve(ctx context.Context) access.Decision {
	app.Session.Resume(ctx)
	if app.Session.Authenticated() {
		app.Tenant.LoadMemberships(ctx)
	}
	return access.Resolve(
		access.Session{Loading: !app.Session.Resolved(), User: app.Session.User()},
		access.Tenancy{
			Loading:     app.Session.Authenticated() && !app.Tenant.Loaded(),
			Memberships: len(app.Tenant.Memberships()),
		},
	)
}

// requireSession gates commands that only need a logged-in user with a
// complete profile, such as clinic setup itself.
func requireSession(ctx context.Context) error {
	decision := resolve(ctx)
	switch decision.Destination {
	case access.DestLogin:
		return errors.New(`not logged in, run "clinicdesk auth login" first`)
	case access.DestCompleteProfile:
		return errors.New(`your profile is incomplete, run "clinicdesk auth profile --role <ROLE>" first`)
	default:
		return nil
	}
}

// requireAccess gates commands that need an active clinic behind them.
func requireAccess(ctx context.Context) error {
	decision := resolve(ctx)
	switch decision.Destination {
	case access.DestProceed:
		return nil
	case access.DestLogin:
		return errors.New(`not logged in, run "clinicdesk auth login" first`)
	case access.DestCompleteProfile:
		return errors.New(`your profile is incomplete, run "clinicdesk auth profile --role <ROLE>" first`)
	case access.DestClinicSetup:
		return errors.New(`you have no clinic yet, run "clinicdesk clinic create" to set one up`)
	case access.DestInvitation:
		return errors.New(`you need an invitation to a clinic, ask your clinic owner or run "clinicdesk clinic join <code>"`)
	default:
		return fmt.Errorf("cannot resolve access (state %s)", decision.State)
	}
}

// handleError turns client errors into user-facing messages. A rejected
// token is dropped on the spot so the next command starts logged out.
func handleError(err error) error {
	if err == nil {
		return nil
	}

	if apierror.IsCode(err, apierror.CodeAuth) && apierror.StatusOf(err) == 401 {
		app.Session.DropToken()
		return errors.New(`session expired, run "clinicdesk auth login" again`)
	}

	switch apierror.CodeOf(err) {
	case apierror.CodeAuth:
		return fmt.Errorf("permission denied: %s", err.Error())
	case apierror.CodeTimeout:
		return errors.New("the server took too long to respond, try again")
	case apierror.CodeNetwork:
		return errors.New("could not reach the server, check your connection")
	case apierror.CodeServer:
		return errors.New("the server hit an internal error, try again later")
	default:
		return err
	}
}
