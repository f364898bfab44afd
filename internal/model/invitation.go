package model

// InvitationStatus is the lifecycle state of a staff invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)

// Invitation is a staff invitation sent from a clinic
type Invitation struct {
	ID         string           `json:"id"`
	Email      string           `json:"email"`
	Role       string           `json:"role"`
	ClinicName string           `json:"clinicName"`
	Status     InvitationStatus `json:"status"`
	CreatedAt  string           `json:"createdAt"`
	AcceptedAt string           `json:"acceptedAt,omitempty"`
}

// InviteRequest is the payload for sending a staff invitation.
// DoctorID is set when inviting an assistant attached to a doctor.
type InviteRequest struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	ClinicID string `json:"cabinetId"`
	DoctorID string `json:"doctorId,omitempty"`
}

// InvitationAccept is the payload for accepting an invitation token
type InvitationAccept struct {
	Token           string `json:"token"`
	EncodedPassword string `json:"encodedPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
}

// InvitationClaims is what the backend discloses about an invitation token
type InvitationClaims struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	ClinicID string `json:"cabinet_id"`
	DoctorID string `json:"doctor_id,omitempty"`
}

// InviteCode is a join code generated for a clinic
type InviteCode struct {
	InviteCode string `json:"inviteCode"`
	ExpiresAt  string `json:"expiresAt"`
}
