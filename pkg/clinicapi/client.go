// Package clinicapi is the typed client for the clinic backend.
package clinicapi

import (
	"context"
	"net/url"
	"strconv"

	"clinicdesk/internal/model"
	"clinicdesk/pkg/httpapi"
)

// Client wraps the clinic backend endpoints
type Client struct {
	api *httpapi.Client
}

// NewClient creates a clinic backend client on top of a base HTTP client
func NewClient(api *httpapi.Client) *Client {
	return &Client{api: api}
}

// ListClinics returns the clinics the current user belongs to
func (c *Client) ListClinics(ctx context.Context) ([]model.Clinic, error) {
	var clinics []model.Clinic
	if err := c.api.Get(ctx, "list_clinics", "/api/cabinets", nil, &clinics); err != nil {
		return nil, err
	}
	return clinics, nil
}

// CreateClinic creates a clinic owned by the current user
func (c *Client) CreateClinic(ctx context.Context, draft model.ClinicDraft) (*model.Clinic, error) {
	var clinic model.Clinic
	if err := c.api.Post(ctx, "create_clinic", "/api/cabinets", draft, &clinic); err != nil {
		return nil, err
	}
	return &clinic, nil
}

// JoinClinic redeems an invitation code
func (c *Client) JoinClinic(ctx context.Context, inviteCode string) error {
	req := map[string]string{"inviteCode": inviteCode}
	return c.api.Post(ctx, "join_clinic", "/api/clinics/join", req, nil)
}

// GenerateInviteCode creates a join code for the given clinic
func (c *Client) GenerateInviteCode(ctx context.Context, clinicID string) (*model.InviteCode, error) {
	var code model.InviteCode
	if err := c.api.Post(ctx, "generate_invite_code", "/api/clinics/"+clinicID+"/invite", nil, &code); err != nil {
		return nil, err
	}
	return &code, nil
}

// ListPatients returns one page of the clinic's patients
func (c *Client) ListPatients(ctx context.Context, page, size int) (*model.Page[model.Patient], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	var result model.Page[model.Patient]
	if err := c.api.Get(ctx, "list_patients", "/api/patients", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreatePatient creates a patient record
func (c *Client) CreatePatient(ctx context.Context, patient model.Patient) (*model.Patient, error) {
	var created model.Patient
	if err := c.api.Post(ctx, "create_patient", "/api/patients", patient, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePatient updates an existing patient record
func (c *Client) UpdatePatient(ctx context.Context, id string, patient model.Patient) (*model.Patient, error) {
	var updated model.Patient
	if err := c.api.Put(ctx, "update_patient", "/api/patients/"+id, patient, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// NewPatientsThisMonth returns the count of patients created this month
func (c *Client) NewPatientsThisMonth(ctx context.Context) (int, error) {
	var count int
	if err := c.api.Get(ctx, "patient_stats", "/api/patients/stats/new-this-month", nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListAppointments returns one page of the clinic's appointments
func (c *Client) ListAppointments(ctx context.Context) (*model.Page[model.Appointment], error) {
	var result model.Page[model.Appointment]
	if err := c.api.Get(ctx, "list_appointments", "/api/appointments", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateAppointment schedules an appointment
func (c *Client) CreateAppointment(ctx context.Context, appointment model.Appointment) (*model.Appointment, error) {
	var created model.Appointment
	if err := c.api.Post(ctx, "create_appointment", "/api/appointments", appointment, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateAppointment updates an existing appointment
func (c *Client) UpdateAppointment(ctx context.Context, id string, appointment model.Appointment) (*model.Appointment, error) {
	var updated model.Appointment
	if err := c.api.Put(ctx, "update_appointment", "/api/appointments/"+id, appointment, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// RecentAppointments returns the appointments shown on the dashboard
func (c *Client) RecentAppointments(ctx context.Context) ([]model.Appointment, error) {
	var appointments []model.Appointment
	if err := c.api.Get(ctx, "recent_appointments", "/api/dashboard/recent-appointments", nil, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

// MedicalRecords returns a patient's visit history
func (c *Client) MedicalRecords(ctx context.Context, patientID string) ([]model.MedicalRecord, error) {
	var records []model.MedicalRecord
	if err := c.api.Get(ctx, "list_medical_records", "/api/medical-records/patient/"+patientID, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CreateMedicalRecord adds a visit entry to a patient's history
func (c *Client) CreateMedicalRecord(ctx context.Context, record model.MedicalRecord) (*model.MedicalRecord, error) {
	var created model.MedicalRecord
	if err := c.api.Post(ctx, "create_medical_record", "/api/medical-records", record, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DashboardStats returns the aggregate dashboard snapshot
func (c *Client) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	if err := c.api.Get(ctx, "dashboard_stats", "/api/dashboard", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SendInvitation sends a staff invitation for a clinic
func (c *Client) SendInvitation(ctx context.Context, invite model.InviteRequest) error {
	return c.api.Post(ctx, "send_invitation", "/api/invitations", invite, nil)
}

// MyInvitations returns the invitations sent by the current user
func (c *Client) MyInvitations(ctx context.Context) ([]model.Invitation, error) {
	var invitations []model.Invitation
	if err := c.api.Get(ctx, "list_invitations", "/api/invitations/my", nil, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

// AcceptInvitation redeems an invitation token for a new staff account
func (c *Client) AcceptInvitation(ctx context.Context, accept model.InvitationAccept) error {
	return c.api.Post(ctx, "accept_invitation", "/api/invitations/accept", accept, nil)
}

// CancelInvitation revokes a pending invitation
func (c *Client) CancelInvitation(ctx context.Context, id string) error {
	return c.api.Delete(ctx, "cancel_invitation", "/api/invitations/"+id)
}

// ResendInvitation re-sends an expired or pending invitation
func (c *Client) ResendInvitation(ctx context.Context, id string) error {
	return c.api.Post(ctx, "resend_invitation", "/api/invitations/"+id+"/resend", nil, nil)
}

// VerifyInvitation discloses what an invitation token grants
func (c *Client) VerifyInvitation(ctx context.Context, token string) (*model.InvitationClaims, error) {
	query := url.Values{}
	query.Set("token", token)
	var claims model.InvitationClaims
	if err := c.api.Get(ctx, "verify_invitation", "/api/invitations/verify", query, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// DoctorsByClinic lists the doctors practicing at a clinic
func (c *Client) DoctorsByClinic(ctx context.Context, clinicID string) ([]model.Doctor, error) {
	var doctors []model.Doctor
	if err := c.api.Get(ctx, "list_doctors", "/api/doctor-assistants/doctor/by-clinic/"+clinicID, nil, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}
