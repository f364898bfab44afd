package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clinicdesk/internal/model"
)

func user(roles ...string) *model.User {
	return &model.User{ID: "u1", Email: "u@example.com", Roles: roles}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		tenancy Tenancy
		state   State
		dest    Destination
	}{
		{
			name:    "session loading wins over everything",
			session: Session{Loading: true, User: user(model.RoleOwner)},
			tenancy: Tenancy{Memberships: 3},
			state:   StateUnresolved,
			dest:    DestLoading,
		},
		{
			name:    "tenancy loading wins over everything",
			session: Session{User: user(model.RoleOwner)},
			tenancy: Tenancy{Loading: true, Memberships: 3},
			state:   StateUnresolved,
			dest:    DestLoading,
		},
		{
			name:    "no user goes to login",
			session: Session{},
			tenancy: Tenancy{},
			state:   StateUnauthenticated,
			dest:    DestLogin,
		},
		{
			name:    "placeholder role goes to profile completion",
			session: Session{User: user(model.RoleUser)},
			tenancy: Tenancy{},
			state:   StateIncompleteProfile,
			dest:    DestCompleteProfile,
		},
		{
			name:    "placeholder role preempts memberships",
			session: Session{User: user(model.RoleUser)},
			tenancy: Tenancy{Memberships: 2},
			state:   StateIncompleteProfile,
			dest:    DestCompleteProfile,
		},
		{
			name:    "membership proceeds",
			session: Session{User: user(model.RoleDoctor)},
			tenancy: Tenancy{Memberships: 1},
			state:   StateReady,
			dest:    DestProceed,
		},
		{
			name:    "owner without clinic goes to setup",
			session: Session{User: user(model.RoleOwner)},
			tenancy: Tenancy{},
			state:   StateNeedsClinicSetup,
			dest:    DestClinicSetup,
		},
		{
			name:    "doctor without clinic goes to invitation",
			session: Session{User: user(model.RoleDoctor)},
			tenancy: Tenancy{},
			state:   StateNeedsInvitation,
			dest:    DestInvitation,
		},
		{
			name:    "assistant without clinic goes to invitation",
			session: Session{User: user(model.RoleAssistant)},
			tenancy: Tenancy{},
			state:   StateNeedsInvitation,
			dest:    DestInvitation,
		},
		{
			name:    "owner eligibility beats invitation eligibility",
			session: Session{User: user(model.RoleDoctor, model.RoleOwner)},
			tenancy: Tenancy{},
			state:   StateNeedsClinicSetup,
			dest:    DestClinicSetup,
		},
		{
			name:    "receptionist without clinic proceeds unguarded",
			session: Session{User: user(model.RoleReceptionist)},
			tenancy: Tenancy{},
			state:   StateNoClinicPermitted,
			dest:    DestProceed,
		},
		{
			name:    "empty role set proceeds unguarded",
			session: Session{User: user()},
			tenancy: Tenancy{},
			state:   StateNoClinicPermitted,
			dest:    DestProceed,
		},
		{
			name:    "placeholder mixed with real role is not a placeholder",
			session: Session{User: user(model.RoleUser, model.RoleOwner)},
			tenancy: Tenancy{},
			state:   StateNeedsClinicSetup,
			dest:    DestClinicSetup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Resolve(tt.session, tt.tenancy)
			assert.Equal(t, tt.state, decision.State)
			assert.Equal(t, tt.dest, decision.Destination)
		})
	}
}

func TestDecisionAllowed(t *testing.T) {
	assert.True(t, Decision{Destination: DestProceed}.Allowed())
	assert.False(t, Decision{Destination: DestLogin}.Allowed())
	assert.False(t, Decision{Destination: DestLoading}.Allowed())
}

func TestResolveIsDeterministic(t *testing.T) {
	s := Session{User: user(model.RoleOwner, model.RoleDoctor)}
	tn := Tenancy{}
	first := Resolve(s, tn)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Resolve(s, tn))
	}
}
