// Package access decides where a navigation attempt lands, given the
// session and clinic state. Resolve is a pure function: all policy about
// redirects lives here and nowhere else.
package access

import "clinicdesk/internal/model"

// State is the resolved situation of the current user.
type State string

const (
	// StateUnresolved means session or clinic data is still loading.
	StateUnresolved State = "UNRESOLVED"
	// StateUnauthenticated means no user could be resolved.
	StateUnauthenticated State = "UNAUTHENTICATED"
	// StateIncompleteProfile means the user still carries only the
	// placeholder role handed out to fresh OAuth accounts.
	StateIncompleteProfile State = "INCOMPLETE_PROFILE"
	// StateReady means the user belongs to at least one clinic.
	StateReady State = "READY"
	// StateNeedsClinicSetup means the user can own a clinic but has none.
	StateNeedsClinicSetup State = "NEEDS_CLINIC_SETUP"
	// StateNeedsInvitation means the user's role is granted clinic access
	// through an invitation and they have no clinic yet.
	StateNeedsInvitation State = "NEEDS_INVITATION"
	// StateNoClinicPermitted means the user has no clinic and no rule
	// claims them; access is permitted unguarded.
	StateNoClinicPermitted State = "NO_CLINIC_PERMITTED"
)

// Destination is where the navigation attempt should resolve to.
type Destination string

const (
	DestProceed         Destination = "PROCEED"
	DestLoading         Destination = "LOADING"
	DestLogin           Destination = "LOGIN"
	DestCompleteProfile Destination = "COMPLETE_PROFILE"
	DestClinicSetup     Destination = "CLINIC_SETUP"
	DestInvitation      Destination = "INVITATION"
)

// Session is the session-side input to Resolve.
type Session struct {
	Loading bool
	User    *model.User
}

// Tenancy is the clinic-side input to Resolve.
type Tenancy struct {
	Loading     bool
	Memberships int
}

// Decision is the outcome of a navigation attempt.
type Decision struct {
	State       State
	Destination Destination
}

// Allowed reports whether the requested content may be shown.
func (d Decision) Allowed() bool {
	return d.Destination == DestProceed
}

// Resolve gates a protected navigation. Rules are evaluated in a fixed
// order, first match wins:
//
//  1. data still loading        -> wait
//  2. no user                   -> login
//  3. placeholder role only     -> profile completion, regardless of clinics
//  4. has a clinic membership   -> proceed
//  5. may own a clinic          -> clinic setup
//  6. joins by invitation       -> invitation
//  7. anything else             -> proceed unguarded
//
// Profile completion preempts every clinic check, and ownership is checked
// before invitation eligibility for a role set that satisfies both.
func Resolve(s Session, t Tenancy) Decision {
	if s.Loading || t.Loading {
		return Decision{State: StateUnresolved, Destination: DestLoading}
	}
	if s.User == nil {
		return Decision{State: StateUnauthenticated, Destination: DestLogin}
	}
	if placeholderOnly(s.User.Roles) {
		return Decision{State: StateIncompleteProfile, Destination: DestCompleteProfile}
	}
	if t.Memberships > 0 {
		return Decision{State: StateReady, Destination: DestProceed}
	}
	if ownerEligible(s.User.Roles) {
		return Decision{State: StateNeedsClinicSetup, Destination: DestClinicSetup}
	}
	if invitationEligible(s.User.Roles) {
		return Decision{State: StateNeedsInvitation, Destination: DestInvitation}
	}
	return Decision{State: StateNoClinicPermitted, Destination: DestProceed}
}

// placeholderOnly reports whether the role set is exactly the placeholder.
func placeholderOnly(roles []string) bool {
	if len(roles) == 0 {
		return false
	}
	for _, r := range roles {
		if r != model.RoleUser {
			return false
		}
	}
	return true
}

// ownerEligible reports whether the role set permits creating a clinic.
func ownerEligible(roles []string) bool {
	for _, r := range roles {
		if r == model.RoleOwner {
			return true
		}
	}
	return false
}

// invitationEligible reports whether the role set is normally granted
// clinic access via an invitation.
func invitationEligible(roles []string) bool {
	for _, r := range roles {
		if r == model.RoleDoctor || r == model.RoleAssistant {
			return true
		}
	}
	return false
}
