package stub

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clinicdesk/internal/access"
	"clinicdesk/internal/model"
	"clinicdesk/internal/session"
	"clinicdesk/internal/state"
	"clinicdesk/internal/tenant"
	"clinicdesk/pkg/apierror"
	"clinicdesk/pkg/authapi"
	"clinicdesk/pkg/clinicapi"
	"clinicdesk/pkg/httpapi"
)

type stack struct {
	server  *Server
	state   *state.Store
	auth    *authapi.Client
	clinic  *clinicapi.Client
	session *session.Store
	tenant  *tenant.Store
}

// newStack wires the full client stack against a fresh stub instance, the
// way the CLI does at startup.
func newStack(t *testing.T) *stack {
	t.Helper()

	server := New(zap.NewNop())
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	st := state.Open(filepath.Join(t.TempDir(), state.DefaultFileName))
	log := zap.NewNop()
	authClient := authapi.NewClient(httpapi.NewClient(ts.URL, "auth", 5*time.Second, st.Token, log))
	clinicClient := clinicapi.NewClient(httpapi.NewClient(ts.URL, "clinic", 5*time.Second, st.Token, log))

	return &stack{
		server:  server,
		state:   st,
		auth:    authClient,
		clinic:  clinicClient,
		session: session.NewStore(authClient, st, log),
		tenant:  tenant.NewStore(clinicClient, st, log),
	}
}

func (s *stack) resolve(ctx context.Context) access.Decision {
	s.session.Resume(ctx)
	if s.session.Authenticated() {
		s.tenant.LoadMemberships(ctx)
	}
	return access.Resolve(
		access.Session{Loading: !s.session.Resolved(), User: s.session.User()},
		access.Tenancy{
			Loading:     s.session.Authenticated() && !s.tenant.Loaded(),
			Memberships: len(s.tenant.Memberships()),
		},
	)
}

func registerAndLogin(t *testing.T, s *stack, email, role string) *model.User {
	t.Helper()
	ctx := context.Background()

	_, err := s.session.Register(ctx, model.RegisterData{
		Email:     email,
		Password:  "secret123",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	})
	require.NoError(t, err)

	user, err := s.session.Login(ctx, email, "secret123")
	require.NoError(t, err)
	return user
}

func TestOwnerFlowEndToEnd(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	// Fresh owner: logged in but no clinic yet.
	registerAndLogin(t, s, "owner@example.com", model.RoleOwner)
	decision := s.resolve(ctx)
	assert.Equal(t, access.DestClinicSetup, decision.Destination)

	// Creating a clinic makes it active and unlocks access.
	clinic, err := s.tenant.Create(ctx, model.ClinicDraft{
		Name:    "Sunrise Dental",
		Address: "1 Main St",
		Phone:   "555-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, clinic.ID, s.state.ClinicID())

	decision = s.resolve(ctx)
	assert.Equal(t, access.StateReady, decision.State)
	assert.True(t, decision.Allowed())

	// Clinic-scoped CRUD works against the new tenant.
	patient, err := s.clinic.CreatePatient(ctx, model.Patient{FirstName: "Ana", LastName: "Pop"})
	require.NoError(t, err)

	_, err = s.clinic.CreateAppointment(ctx, model.Appointment{
		PatientID: patient.ID,
		Date:      time.Now().UTC().Format("2006-01-02"),
		Time:      "10:00",
	})
	require.NoError(t, err)

	page, err := s.clinic.ListPatients(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)
	assert.True(t, page.First)
	assert.True(t, page.Last)

	stats, err := s.clinic.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalPatients)
	assert.Equal(t, 1, stats.TodayAppointments)

	count, err := s.clinic.NewPatientsThisMonth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOAuthProfileCompletionFlow(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	// A first-time OAuth login provisions a placeholder account.
	user, err := s.session.LoginWithGoogle(ctx, "google-credential-abc")
	require.NoError(t, err)
	assert.Equal(t, []string{model.RoleUser}, user.Roles)

	decision := s.resolve(ctx)
	assert.Equal(t, access.DestCompleteProfile, decision.Destination)

	// Completing the profile replaces the placeholder role.
	updated, err := s.session.UpdateProfile(ctx, model.ProfileUpdate{
		FirstName: "Maria",
		LastName:  "Ionescu",
		Role:      model.RoleOwner,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{model.RoleOwner}, updated.Roles)

	decision = s.resolve(ctx)
	assert.Equal(t, access.DestClinicSetup, decision.Destination)
}

func TestDoctorJoinsByInviteCode(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	registerAndLogin(t, s, "owner@example.com", model.RoleOwner)
	clinic, err := s.tenant.Create(ctx, model.ClinicDraft{Name: "Clinic", Address: "2 Oak Ave", Phone: "555"})
	require.NoError(t, err)

	code, err := s.clinic.GenerateInviteCode(ctx, clinic.ID)
	require.NoError(t, err)
	require.NotEmpty(t, code.InviteCode)
	s.session.Logout(ctx)

	// Doctor with no clinic is pointed at the invitation flow.
	registerAndLogin(t, s, "doctor@example.com", model.RoleDoctor)
	decision := s.resolve(ctx)
	assert.Equal(t, access.DestInvitation, decision.Destination)

	require.NoError(t, s.tenant.Join(ctx, code.InviteCode))
	decision = s.resolve(ctx)
	assert.Equal(t, access.StateReady, decision.State)
	require.NotNil(t, s.tenant.Active())
	assert.Equal(t, clinic.ID, s.tenant.Active().ID)

	// The doctor now shows up in the clinic's roster.
	doctors, err := s.clinic.DoctorsByClinic(ctx, clinic.ID)
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "doctor@example.com", doctors[0].Email)
}

func TestInvitationTokenFlow(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	registerAndLogin(t, s, "owner@example.com", model.RoleOwner)
	clinic, err := s.tenant.Create(ctx, model.ClinicDraft{Name: "Clinic", Address: "3 Elm St", Phone: "555"})
	require.NoError(t, err)

	err = s.clinic.SendInvitation(ctx, model.InviteRequest{
		Email:    "assistant@example.com",
		Role:     model.RoleAssistant,
		ClinicID: clinic.ID,
	})
	require.NoError(t, err)

	sent, err := s.clinic.MyInvitations(ctx)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, model.InvitationPending, sent[0].Status)

	// The token normally travels by email; pull it from the store.
	token := s.server.store.invitations[sent[0].ID].Token
	require.NotEmpty(t, token)

	claims, err := s.clinic.VerifyInvitation(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "assistant@example.com", claims.Email)
	assert.Equal(t, model.RoleAssistant, claims.Role)
	assert.Equal(t, clinic.ID, claims.ClinicID)

	err = s.clinic.AcceptInvitation(ctx, model.InvitationAccept{
		Token:           token,
		EncodedPassword: "assistant-pw",
		FirstName:       "Ion",
		LastName:        "Vasile",
	})
	require.NoError(t, err)

	sent, err = s.clinic.MyInvitations(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.InvitationAccepted, sent[0].Status)
	s.session.Logout(ctx)

	// The invitee's account works and is already a member.
	user, err := s.session.Login(ctx, "assistant@example.com", "assistant-pw")
	require.NoError(t, err)
	assert.Contains(t, user.Roles, model.RoleAssistant)
	decision := s.resolve(ctx)
	assert.Equal(t, access.StateReady, decision.State)
}

func TestInvitationCancelAndResend(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	registerAndLogin(t, s, "owner@example.com", model.RoleOwner)
	clinic, err := s.tenant.Create(ctx, model.ClinicDraft{Name: "Clinic", Address: "4 Pine Rd", Phone: "555"})
	require.NoError(t, err)

	require.NoError(t, s.clinic.SendInvitation(ctx, model.InviteRequest{
		Email: "a@example.com", Role: model.RoleDoctor, ClinicID: clinic.ID,
	}))
	require.NoError(t, s.clinic.SendInvitation(ctx, model.InviteRequest{
		Email: "b@example.com", Role: model.RoleDoctor, ClinicID: clinic.ID,
	}))

	sent, err := s.clinic.MyInvitations(ctx)
	require.NoError(t, err)
	require.Len(t, sent, 2)

	require.NoError(t, s.clinic.ResendInvitation(ctx, sent[0].ID))
	require.NoError(t, s.clinic.CancelInvitation(ctx, sent[1].ID))

	sent, err = s.clinic.MyInvitations(ctx)
	require.NoError(t, err)
	assert.Len(t, sent, 1)

	err = s.clinic.CancelInvitation(ctx, "missing")
	assert.Equal(t, apierror.CodeNotFound, apierror.CodeOf(err))
}

func TestStaleTokenResolvesToLogin(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	require.NoError(t, s.state.SetToken("garbage-token"))

	decision := s.resolve(ctx)
	assert.Equal(t, access.DestLogin, decision.Destination)
	assert.False(t, s.session.Authenticated())
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.clinic.ListClinics(ctx)
	require.Error(t, err)
	assert.Equal(t, apierror.CodeAuth, apierror.CodeOf(err))
	assert.Equal(t, 401, apierror.StatusOf(err))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	registerAndLogin(t, s, "owner@example.com", model.RoleOwner)
	s.session.Logout(ctx)

	_, err := s.session.Login(ctx, "owner@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, apierror.CodeAuth, apierror.CodeOf(err))
	assert.Empty(t, s.state.Token())
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.session.Register(ctx, model.RegisterData{Email: "dup@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = s.session.Register(ctx, model.RegisterData{Email: "dup@example.com", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, apierror.CodeConflict, apierror.CodeOf(err))
}

func TestJoinWithInvalidCodeFails(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	registerAndLogin(t, s, "doctor@example.com", model.RoleDoctor)

	err := s.tenant.Join(ctx, "NOPE1234")
	require.Error(t, err)
	assert.Equal(t, apierror.CodeNotFound, apierror.CodeOf(err))
}

func TestActiveClinicPersistsAcrossRestart(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	registerAndLogin(t, s, "owner@example.com", model.RoleOwner)
	first, err := s.tenant.Create(ctx, model.ClinicDraft{Name: "First", Address: "a", Phone: "1"})
	require.NoError(t, err)
	second, err := s.tenant.Create(ctx, model.ClinicDraft{Name: "Second", Address: "b", Phone: "2"})
	require.NoError(t, err)
	require.True(t, s.tenant.SwitchActive(first.ID))

	// A fresh tenant store over the same state file lands on the same clinic.
	fresh := tenant.NewStore(s.clinic, s.state, zap.NewNop())
	require.True(t, fresh.LoadMemberships(ctx))
	require.NotNil(t, fresh.Active())
	assert.Equal(t, first.ID, fresh.Active().ID)
	assert.NotEqual(t, second.ID, fresh.Active().ID)
}

func TestPatientListPagination(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	registerAndLogin(t, s, "owner@example.com", model.RoleOwner)
	_, err := s.tenant.Create(ctx, model.ClinicDraft{Name: "Clinic", Address: "x", Phone: "1"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := s.clinic.CreatePatient(ctx, model.Patient{FirstName: "P", LastName: string(rune('A' + i))})
		require.NoError(t, err)
	}

	page, err := s.clinic.ListPatients(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Content, 2)
	assert.True(t, page.First)
	assert.False(t, page.Last)

	last, err := s.clinic.ListPatients(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, last.Content, 1)
	assert.True(t, last.Last)
	assert.False(t, last.Empty)

	beyond, err := s.clinic.ListPatients(ctx, 9, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond.Content)
	assert.True(t, beyond.Empty)
}

func TestMedicalRecordsRoundTrip(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	registerAndLogin(t, s, "owner@example.com", model.RoleOwner)
	_, err := s.tenant.Create(ctx, model.ClinicDraft{Name: "Clinic", Address: "x", Phone: "1"})
	require.NoError(t, err)

	patient, err := s.clinic.CreatePatient(ctx, model.Patient{FirstName: "Ana", LastName: "Pop"})
	require.NoError(t, err)

	created, err := s.clinic.CreateMedicalRecord(ctx, model.MedicalRecord{
		PatientID: patient.ID,
		Diagnosis: "flu",
		Symptoms:  []string{"fever"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.Date)

	records, err := s.clinic.MedicalRecords(ctx, patient.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "flu", records[0].Diagnosis)
}
