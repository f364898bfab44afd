package stub

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"clinicdesk/internal/model"
)

const inviteCodeTTL = 72 * time.Hour

func (s *Server) handleListClinics(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.clinicsOf(currentUser(c).ID))
}

func (s *Server) handleCreateClinic(c echo.Context) error {
	log := fromEcho(c)

	var req model.ClinicDraft
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.Address == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, address and phone are required"})
	}

	clinic := s.store.addClinic(req, currentUser(c).ID)
	log.Info("clinic created", zap.String("clinic_id", clinic.ID), zap.String("name", clinic.Name))
	return c.JSON(http.StatusCreated, clinic)
}

func (s *Server) handleJoinClinic(c echo.Context) error {
	log := fromEcho(c)

	var req struct {
		InviteCode string `json:"inviteCode"`
	}
	if err := c.Bind(&req); err != nil || req.InviteCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "inviteCode is required"})
	}

	clinicID, ok := s.store.redeemInviteCode(strings.TrimSpace(req.InviteCode))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid or expired invite code"})
	}

	s.store.addMember(currentUser(c).ID, clinicID)
	log.Info("user joined clinic", zap.String("clinic_id", clinicID))
	return c.JSON(http.StatusOK, echo.Map{"message": "joined clinic"})
}

func (s *Server) handleGenerateInviteCode(c echo.Context) error {
	clinicID := c.Param("id")
	if !s.memberOf(currentUser(c).ID, clinicID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	code, expires := s.store.addInviteCode(clinicID, inviteCodeTTL)
	return c.JSON(http.StatusOK, model.InviteCode{
		InviteCode: code,
		ExpiresAt:  expires.Format(time.RFC3339),
	})
}

func (s *Server) memberOf(userID, clinicID string) bool {
	for _, clinic := range s.store.clinicsOf(userID) {
		if clinic.ID == clinicID {
			return true
		}
	}
	return false
}

// activeClinic resolves the clinic scoping the caller's patient and
// appointment operations.
func (s *Server) activeClinic(c echo.Context) (string, error) {
	clinicID, ok := s.store.firstClinicOf(currentUser(c).ID)
	if !ok {
		return "", c.JSON(http.StatusForbidden, echo.Map{"error": "no clinic membership"})
	}
	return clinicID, nil
}

func (s *Server) handleListPatients(c echo.Context) error {
	clinicID, err := s.activeClinic(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	if size <= 0 {
		size = 20
	}

	patients := s.store.patientsOf(clinicID)
	sort.Slice(patients, func(i, j int) bool { return patients[i].CreatedAt < patients[j].CreatedAt })
	return c.JSON(http.StatusOK, paginate(patients, page, size))
}

func (s *Server) handleCreatePatient(c echo.Context) error {
	clinicID, err := s.activeClinic(c)
	if err != nil {
		return err
	}

	var req model.Patient
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "firstName and lastName are required"})
	}

	patient := s.store.addPatient(clinicID, req)
	fromEcho(c).Info("patient created", zap.String("patient_id", patient.ID))
	return c.JSON(http.StatusCreated, patient)
}

func (s *Server) handleUpdatePatient(c echo.Context) error {
	if _, err := s.activeClinic(c); err != nil {
		return err
	}

	var req model.Patient
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	patient, ok := s.store.updatePatient(c.Param("id"), req)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "patient not found"})
	}
	return c.JSON(http.StatusOK, patient)
}

func (s *Server) handlePatientStats(c echo.Context) error {
	clinicID, err := s.activeClinic(c)
	if err != nil {
		return err
	}

	monthStart := time.Now().UTC().Format("2006-01")
	count := 0
	for _, p := range s.store.patientsOf(clinicID) {
		if strings.HasPrefix(p.CreatedAt, monthStart) {
			count++
		}
	}
	return c.JSON(http.StatusOK, count)
}

func (s *Server) handleListAppointments(c echo.Context) error {
	clinicID, err := s.activeClinic(c)
	if err != nil {
		return err
	}

	appointments := s.store.appointmentsOf(clinicID)
	sort.Slice(appointments, func(i, j int) bool {
		if appointments[i].Date != appointments[j].Date {
			return appointments[i].Date < appointments[j].Date
		}
		return appointments[i].Time < appointments[j].Time
	})
	return c.JSON(http.StatusOK, paginate(appointments, 0, len(appointments)+1))
}

func (s *Server) handleCreateAppointment(c echo.Context) error {
	clinicID, err := s.activeClinic(c)
	if err != nil {
		return err
	}

	var req model.Appointment
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.PatientID == "" || req.Date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "patientId and date are required"})
	}

	appointment := s.store.addAppointment(clinicID, req)
	return c.JSON(http.StatusCreated, appointment)
}

func (s *Server) handleUpdateAppointment(c echo.Context) error {
	if _, err := s.activeClinic(c); err != nil {
		return err
	}

	var req model.Appointment
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	appointment, ok := s.store.updateAppointment(c.Param("id"), req)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
	}
	return c.JSON(http.StatusOK, appointment)
}

func (s *Server) handleRecentAppointments(c echo.Context) error {
	clinicID, err := s.activeClinic(c)
	if err != nil {
		return err
	}

	appointments := s.store.appointmentsOf(clinicID)
	sort.Slice(appointments, func(i, j int) bool { return appointments[i].CreatedAt > appointments[j].CreatedAt })
	if len(appointments) > 5 {
		appointments = appointments[:5]
	}
	return c.JSON(http.StatusOK, appointments)
}

func (s *Server) handleDashboard(c echo.Context) error {
	clinicID, err := s.activeClinic(c)
	if err != nil {
		return err
	}

	today := time.Now().UTC().Format("2006-01-02")
	stats := model.DashboardStats{TotalPatients: len(s.store.patientsOf(clinicID))}
	for _, a := range s.store.appointmentsOf(clinicID) {
		if a.Date == today {
			stats.TodayAppointments++
		}
		switch a.Status {
		case model.AppointmentScheduled, model.AppointmentConfirmed:
			stats.PendingAppointments++
		case model.AppointmentCompleted:
			stats.CompletedAppointments++
		}
	}

	monthStart := time.Now().UTC().Format("2006-01")
	for _, p := range s.store.patientsOf(clinicID) {
		if strings.HasPrefix(p.CreatedAt, monthStart) {
			stats.RecentPatients++
		}
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleListRecords(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.recordsOf(c.Param("id")))
}

func (s *Server) handleCreateRecord(c echo.Context) error {
	var req model.MedicalRecord
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.PatientID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "patientId is required"})
	}

	record := s.store.addRecord(req)
	return c.JSON(http.StatusCreated, record)
}

func (s *Server) handleSendInvitation(c echo.Context) error {
	log := fromEcho(c)

	var req model.InviteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Email == "" || req.Role == "" || req.ClinicID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, role and cabinetId are required"})
	}
	if !s.memberOf(currentUser(c).ID, req.ClinicID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	clinicName := ""
	for _, clinic := range s.store.clinicsOf(currentUser(c).ID) {
		if clinic.ID == req.ClinicID {
			clinicName = clinic.Name
		}
	}

	inv := s.store.addInvitation(currentUser(c).ID, req.ClinicID, clinicName, req.Email, req.Role, req.DoctorID)
	log.Info("invitation sent",
		zap.String("invitation_id", inv.ID),
		zap.String("email", req.Email),
		zap.String("role", req.Role))
	return c.JSON(http.StatusCreated, inv.Invitation)
}

func (s *Server) handleMyInvitations(c echo.Context) error {
	invitations := s.store.invitationsOf(currentUser(c).ID)
	sort.Slice(invitations, func(i, j int) bool { return invitations[i].CreatedAt > invitations[j].CreatedAt })
	return c.JSON(http.StatusOK, invitations)
}

func (s *Server) handleAcceptInvitation(c echo.Context) error {
	log := fromEcho(c)

	var req model.InvitationAccept
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	inv, ok := s.store.invitationByToken(req.Token)
	if !ok || inv.Status != model.InvitationPending {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid or expired invitation"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.EncodedPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create account"})
	}

	user, created := s.store.addUser(inv.Email, hash, req.FirstName, req.LastName, []string{inv.Role})
	if !created {
		// Existing account: the invitation just grants membership.
		user, _ = s.store.userByEmail(inv.Email)
	}
	s.store.addMember(user.ID, inv.ClinicID)
	s.store.markInvitation(inv.ID, model.InvitationAccepted)

	log.Info("invitation accepted", zap.String("invitation_id", inv.ID), zap.String("email", inv.Email))
	return c.JSON(http.StatusOK, echo.Map{"message": "invitation accepted"})
}

func (s *Server) handleCancelInvitation(c echo.Context) error {
	if !s.store.deleteInvitation(c.Param("id")) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invitation not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "invitation cancelled"})
}

func (s *Server) handleResendInvitation(c echo.Context) error {
	if _, ok := s.store.markInvitation(c.Param("id"), model.InvitationPending); !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invitation not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "invitation resent"})
}

func (s *Server) handleVerifyInvitation(c echo.Context) error {
	inv, ok := s.store.invitationByToken(c.QueryParam("token"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid invitation token"})
	}
	return c.JSON(http.StatusOK, model.InvitationClaims{
		Email:    inv.Email,
		Role:     inv.Role,
		ClinicID: inv.ClinicID,
		DoctorID: inv.DoctorID,
	})
}

func (s *Server) handleDoctorsByClinic(c echo.Context) error {
	clinicID := c.Param("id")
	if !s.memberOf(currentUser(c).ID, clinicID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}
	return c.JSON(http.StatusOK, s.store.doctorsOf(clinicID))
}

// paginate wraps a slice in the page envelope the real backend uses.
func paginate[T any](items []T, page, size int) model.Page[T] {
	if page < 0 {
		page = 0
	}
	start := page * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}

	totalPages := 0
	if size > 0 {
		totalPages = (len(items) + size - 1) / size
	}
	content := items[start:end]
	return model.Page[T]{
		Content:          content,
		TotalElements:    int64(len(items)),
		TotalPages:       totalPages,
		Size:             size,
		Number:           page,
		NumberOfElements: len(content),
		First:            page == 0,
		Last:             end >= len(items),
		Empty:            len(content) == 0,
	}
}
