// Package tenant enumerates the clinics reachable by the current user and
// tracks which one is active.
package tenant

import (
	"context"

	"go.uber.org/zap"

	"clinicdesk/internal/model"
	"clinicdesk/prometheus"
)

// ClinicAPI is the slice of the clinic backend the store depends on.
type ClinicAPI interface {
	ListClinics(ctx context.Context) ([]model.Clinic, error)
	CreateClinic(ctx context.Context, draft model.ClinicDraft) (*model.Clinic, error)
	JoinClinic(ctx context.Context, inviteCode string) error
}

// ClinicIDStore persists the active clinic id across runs.
type ClinicIDStore interface {
	ClinicID() string
	SetClinicID(id string) error
}

// Store holds the user's clinic memberships and the active clinic.
// Exactly one clinic is active at a time; the choice is client-local and
// only scopes subsequent API calls.
type Store struct {
	api   ClinicAPI
	state ClinicIDStore
	log   *zap.Logger

	memberships []model.Clinic
	active      *model.Clinic
	loaded      bool
}

// NewStore wires a tenant store to its clinic client and id storage.
func NewStore(api ClinicAPI, state ClinicIDStore, log *zap.Logger) *Store {
	return &Store{api: api, state: state, log: log}
}

// LoadMemberships fetches the full clinic list and resolves the active
// clinic: the persisted id if still a member, else the first clinic, else
// none. It reports ok=false and leaves an empty list on backend failure;
// the opportunistic load must never block the caller.
func (s *Store) LoadMemberships(ctx context.Context) bool {
	prometheus.RecordClinicOperation("load")

	clinics, err := s.api.ListClinics(ctx)
	if err != nil {
		s.log.Warn("failed to load clinic memberships", zap.Error(err))
		s.memberships = []model.Clinic{}
		s.active = nil
		s.loaded = true
		return false
	}

	// Optional fields decode to empty strings, so views never see absent
	// values; an empty body decodes to a nil slice, which we flatten here.
	if clinics == nil {
		clinics = []model.Clinic{}
	}
	s.memberships = clinics
	s.resolveActive()
	s.loaded = true
	return true
}

// resolveActive applies the selection rule over the current membership list.
func (s *Store) resolveActive() {
	saved := s.state.ClinicID()
	for i := range s.memberships {
		if s.memberships[i].ID == saved {
			s.active = &s.memberships[i]
			return
		}
	}
	if len(s.memberships) > 0 {
		s.setActive(s.memberships[0])
		return
	}
	s.active = nil
}

// SetActive makes the given clinic active and persists the choice. No
// backend call is involved.
func (s *Store) SetActive(clinic model.Clinic) {
	s.setActive(clinic)
}

func (s *Store) setActive(clinic model.Clinic) {
	c := clinic
	s.active = &c
	if err := s.state.SetClinicID(clinic.ID); err != nil {
		s.log.Warn("failed to persist active clinic", zap.Error(err))
	}
}

// SwitchActive activates the clinic with the given id if it is in the
// membership list. An unknown id is a no-op and reports false.
func (s *Store) SwitchActive(id string) bool {
	prometheus.RecordClinicOperation("switch")

	for _, c := range s.memberships {
		if c.ID == id {
			s.setActive(c)
			s.log.Info("switched clinic", zap.String("clinic_id", c.ID), zap.String("name", c.Name))
			return true
		}
	}
	return false
}

// Create submits a new clinic, reloads the membership list to pick up
// server-assigned fields, and makes the new clinic active. On failure the
// membership list is left at its pre-call state.
func (s *Store) Create(ctx context.Context, draft model.ClinicDraft) (*model.Clinic, error) {
	prometheus.RecordClinicOperation("create")

	created, err := s.api.CreateClinic(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.LoadMemberships(ctx)

	// Prefer the reloaded copy, which carries server-assigned fields.
	for _, c := range s.memberships {
		if c.ID == created.ID {
			s.setActive(c)
			s.log.Info("clinic created", zap.String("clinic_id", c.ID), zap.String("name", c.Name))
			return &c, nil
		}
	}
	s.setActive(*created)
	return created, nil
}

// Join redeems an invitation code and reloads the membership list.
func (s *Store) Join(ctx context.Context, inviteCode string) error {
	prometheus.RecordClinicOperation("join")

	if err := s.api.JoinClinic(ctx, inviteCode); err != nil {
		return err
	}
	s.LoadMemberships(ctx)
	return nil
}

// Memberships returns the loaded clinic list, never nil.
func (s *Store) Memberships() []model.Clinic {
	if s.memberships == nil {
		return []model.Clinic{}
	}
	return s.memberships
}

// Active returns the active clinic, or nil when the user has none.
func (s *Store) Active() *model.Clinic {
	return s.active
}

// Loaded reports whether a membership load has completed since startup.
func (s *Store) Loaded() bool {
	return s.loaded
}
