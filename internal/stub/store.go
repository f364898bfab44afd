package stub

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"clinicdesk/internal/model"
)

// memStore holds the stub's entire world behind one mutex. State is
// ephemeral by design: the stub exists for offline demos and tests, and
// every test wants a fresh store.
type memStore struct {
	mu sync.Mutex

	users   map[string]*userRecord // by user id
	byEmail map[string]*userRecord

	clinics map[string]*model.Clinic
	members map[string][]string // user id -> clinic ids

	inviteCodes map[string]inviteCode // code -> clinic

	patients      map[string]*model.Patient
	patientClinic map[string]string // patient id -> clinic id

	appointments map[string]*model.Appointment
	apptClinic   map[string]string

	records map[string][]model.MedicalRecord // patient id -> visits

	invitations map[string]*invitationRecord // by invitation id
	byInvToken  map[string]string            // token -> invitation id
}

type userRecord struct {
	model.User
	PasswordHash []byte
}

type inviteCode struct {
	ClinicID  string
	ExpiresAt time.Time
}

type invitationRecord struct {
	model.Invitation
	Token    string
	ClinicID string
	DoctorID string
	SenderID string
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[string]*userRecord),
		byEmail:       make(map[string]*userRecord),
		clinics:       make(map[string]*model.Clinic),
		members:       make(map[string][]string),
		inviteCodes:   make(map[string]inviteCode),
		patients:      make(map[string]*model.Patient),
		patientClinic: make(map[string]string),
		appointments:  make(map[string]*model.Appointment),
		apptClinic:    make(map[string]string),
		records:       make(map[string][]model.MedicalRecord),
		invitations:   make(map[string]*invitationRecord),
		byInvToken:    make(map[string]string),
	}
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func newID() string {
	return uuid.New().String()
}

func (m *memStore) addUser(email string, hash []byte, firstName, lastName string, roles []string) (*userRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := m.byEmail[key]; exists {
		return nil, false
	}
	u := &userRecord{
		User: model.User{
			ID:        newID(),
			Email:     email,
			FirstName: firstName,
			LastName:  lastName,
			Roles:     roles,
			CreatedAt: nowStamp(),
		},
		PasswordHash: hash,
	}
	m.users[u.ID] = u
	m.byEmail[key] = u
	return u, true
}

func (m *memStore) userByEmail(email string) (*userRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[strings.ToLower(email)]
	return u, ok
}

func (m *memStore) userByID(id string) (*userRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	return u, ok
}

func (m *memStore) updateUser(id string, update model.ProfileUpdate) (*userRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, false
	}
	if update.FirstName != "" {
		u.FirstName = update.FirstName
	}
	if update.LastName != "" {
		u.LastName = update.LastName
	}
	if update.Avatar != "" {
		u.Avatar = update.Avatar
	}
	if update.Role != "" {
		// Completing the profile replaces the placeholder role.
		u.Roles = []string{update.Role}
	}
	return u, true
}

func (m *memStore) addClinic(draft model.ClinicDraft, ownerID string) *model.Clinic {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := &model.Clinic{
		ID:          newID(),
		Name:        draft.Name,
		Description: draft.Description,
		Address:     draft.Address,
		Phone:       draft.Phone,
		Email:       draft.Email,
		Website:     draft.Website,
		OwnerID:     ownerID,
		CreatedAt:   nowStamp(),
		UpdatedAt:   nowStamp(),
	}
	m.clinics[c.ID] = c
	m.members[ownerID] = append(m.members[ownerID], c.ID)
	return c
}

func (m *memStore) clinicsOf(userID string) []model.Clinic {
	m.mu.Lock()
	defer m.mu.Unlock()

	clinics := []model.Clinic{}
	for _, id := range m.members[userID] {
		if c, ok := m.clinics[id]; ok {
			clinics = append(clinics, *c)
		}
	}
	return clinics
}

func (m *memStore) addMember(userID, clinicID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clinics[clinicID]; !ok {
		return false
	}
	for _, id := range m.members[userID] {
		if id == clinicID {
			return true
		}
	}
	m.members[userID] = append(m.members[userID], clinicID)
	return true
}

func (m *memStore) addInviteCode(clinicID string, ttl time.Duration) (string, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code := strings.ToUpper(uuid.New().String()[:8])
	expires := time.Now().UTC().Add(ttl)
	m.inviteCodes[code] = inviteCode{ClinicID: clinicID, ExpiresAt: expires}
	return code, expires
}

func (m *memStore) redeemInviteCode(code string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ic, ok := m.inviteCodes[code]
	if !ok || time.Now().UTC().After(ic.ExpiresAt) {
		return "", false
	}
	return ic.ClinicID, true
}

// firstClinicOf returns the clinic that scopes a user's patient and
// appointment operations.
func (m *memStore) firstClinicOf(userID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.members[userID]
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

func (m *memStore) addPatient(clinicID string, p model.Patient) *model.Patient {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = newID()
	p.CreatedAt = nowStamp()
	p.UpdatedAt = p.CreatedAt
	m.patients[p.ID] = &p
	m.patientClinic[p.ID] = clinicID
	return &p
}

func (m *memStore) updatePatient(id string, p model.Patient) (*model.Patient, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.patients[id]
	if !ok {
		return nil, false
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = nowStamp()
	m.patients[id] = &p
	return &p, true
}

func (m *memStore) patientsOf(clinicID string) []model.Patient {
	m.mu.Lock()
	defer m.mu.Unlock()

	patients := []model.Patient{}
	for id, p := range m.patients {
		if m.patientClinic[id] == clinicID {
			patients = append(patients, *p)
		}
	}
	return patients
}

func (m *memStore) addAppointment(clinicID string, a model.Appointment) *model.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()

	a.ID = newID()
	a.CreatedAt = nowStamp()
	if a.Status == "" {
		a.Status = model.AppointmentScheduled
	}
	m.appointments[a.ID] = &a
	m.apptClinic[a.ID] = clinicID
	return &a
}

func (m *memStore) updateAppointment(id string, a model.Appointment) (*model.Appointment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.appointments[id]
	if !ok {
		return nil, false
	}
	a.ID = existing.ID
	a.CreatedAt = existing.CreatedAt
	if a.Status == "" {
		a.Status = existing.Status
	}
	m.appointments[id] = &a
	return &a, true
}

func (m *memStore) appointmentsOf(clinicID string) []model.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()

	appointments := []model.Appointment{}
	for id, a := range m.appointments {
		if m.apptClinic[id] == clinicID {
			appointments = append(appointments, *a)
		}
	}
	return appointments
}

func (m *memStore) addRecord(r model.MedicalRecord) *model.MedicalRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.ID = newID()
	if r.Date == "" {
		r.Date = nowStamp()
	}
	m.records[r.PatientID] = append(m.records[r.PatientID], r)
	return &r
}

func (m *memStore) recordsOf(patientID string) []model.MedicalRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := m.records[patientID]
	out := make([]model.MedicalRecord, len(records))
	copy(out, records)
	return out
}

func (m *memStore) addInvitation(senderID, clinicID, clinicName, email, role, doctorID string) *invitationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv := &invitationRecord{
		Invitation: model.Invitation{
			ID:         newID(),
			Email:      email,
			Role:       role,
			ClinicName: clinicName,
			Status:     model.InvitationPending,
			CreatedAt:  nowStamp(),
		},
		Token:    newID(),
		ClinicID: clinicID,
		DoctorID: doctorID,
		SenderID: senderID,
	}
	m.invitations[inv.ID] = inv
	m.byInvToken[inv.Token] = inv.ID
	return inv
}

func (m *memStore) invitationsOf(senderID string) []model.Invitation {
	m.mu.Lock()
	defer m.mu.Unlock()

	invitations := []model.Invitation{}
	for _, inv := range m.invitations {
		if inv.SenderID == senderID {
			invitations = append(invitations, inv.Invitation)
		}
	}
	return invitations
}

func (m *memStore) invitationByToken(token string) (*invitationRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byInvToken[token]
	if !ok {
		return nil, false
	}
	inv, ok := m.invitations[id]
	return inv, ok
}

func (m *memStore) deleteInvitation(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.invitations[id]
	if !ok {
		return false
	}
	delete(m.byInvToken, inv.Token)
	delete(m.invitations, id)
	return true
}

func (m *memStore) markInvitation(id string, status model.InvitationStatus) (*invitationRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.invitations[id]
	if !ok {
		return nil, false
	}
	inv.Status = status
	if status == model.InvitationAccepted {
		inv.AcceptedAt = nowStamp()
	}
	if status == model.InvitationPending {
		inv.CreatedAt = nowStamp()
	}
	return inv, true
}

func (m *memStore) doctorsOf(clinicID string) []model.Doctor {
	m.mu.Lock()
	defer m.mu.Unlock()

	doctors := []model.Doctor{}
	for userID, clinicIDs := range m.members {
		for _, id := range clinicIDs {
			if id != clinicID {
				continue
			}
			u := m.users[userID]
			if u == nil || !u.HasRole(model.RoleDoctor) {
				continue
			}
			doctors = append(doctors, model.Doctor{
				ID:        u.ID,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Email:     u.Email,
			})
		}
	}
	return doctors
}
