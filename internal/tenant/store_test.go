package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clinicdesk/internal/model"
	"clinicdesk/pkg/apierror"
)

type fakeClinicAPI struct {
	clinics   []model.Clinic
	listErr   error
	created   *model.Clinic
	createErr error
	joinErr   error
	joinCodes []string
}

func (f *fakeClinicAPI) ListClinics(ctx context.Context) ([]model.Clinic, error) {
	return f.clinics, f.listErr
}

func (f *fakeClinicAPI) CreateClinic(ctx context.Context, draft model.ClinicDraft) (*model.Clinic, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.clinics = append(f.clinics, *f.created)
	return f.created, nil
}

func (f *fakeClinicAPI) JoinClinic(ctx context.Context, inviteCode string) error {
	if f.joinErr != nil {
		return f.joinErr
	}
	f.joinCodes = append(f.joinCodes, inviteCode)
	return nil
}

type fakeClinicID struct {
	id     string
	setErr error
}

func (f *fakeClinicID) ClinicID() string { return f.id }

func (f *fakeClinicID) SetClinicID(id string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.id = id
	return nil
}

func clinics(ids ...string) []model.Clinic {
	out := make([]model.Clinic, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Clinic{ID: id, Name: "Clinic " + id})
	}
	return out
}

func TestLoadMembershipsResolvesSavedClinic(t *testing.T) {
	api := &fakeClinicAPI{clinics: clinics("a", "b", "c")}
	s := NewStore(api, &fakeClinicID{id: "b"}, zap.NewNop())

	ok := s.LoadMemberships(context.Background())

	require.True(t, ok)
	assert.True(t, s.Loaded())
	assert.Len(t, s.Memberships(), 3)
	require.NotNil(t, s.Active())
	assert.Equal(t, "b", s.Active().ID)
}

func TestLoadMembershipsFallsBackToFirst(t *testing.T) {
	api := &fakeClinicAPI{clinics: clinics("a", "b")}
	ids := &fakeClinicID{id: "gone"}
	s := NewStore(api, ids, zap.NewNop())

	require.True(t, s.LoadMemberships(context.Background()))

	require.NotNil(t, s.Active())
	assert.Equal(t, "a", s.Active().ID)
	assert.Equal(t, "a", ids.id)
}

func TestLoadMembershipsEmptyList(t *testing.T) {
	s := NewStore(&fakeClinicAPI{}, &fakeClinicID{id: "stale"}, zap.NewNop())

	require.True(t, s.LoadMemberships(context.Background()))

	assert.Empty(t, s.Memberships())
	assert.NotNil(t, s.Memberships())
	assert.Nil(t, s.Active())
}

func TestLoadMembershipsFailureDegrades(t *testing.T) {
	api := &fakeClinicAPI{listErr: apierror.FromStatus(503, "down")}
	s := NewStore(api, &fakeClinicID{}, zap.NewNop())

	ok := s.LoadMemberships(context.Background())

	assert.False(t, ok)
	assert.True(t, s.Loaded())
	assert.Empty(t, s.Memberships())
	assert.Nil(t, s.Active())
}

func TestSwitchActive(t *testing.T) {
	api := &fakeClinicAPI{clinics: clinics("a", "b")}
	ids := &fakeClinicID{}
	s := NewStore(api, ids, zap.NewNop())
	require.True(t, s.LoadMemberships(context.Background()))

	assert.True(t, s.SwitchActive("b"))
	assert.Equal(t, "b", s.Active().ID)
	assert.Equal(t, "b", ids.id)
}

func TestSwitchActiveUnknownIsNoOp(t *testing.T) {
	api := &fakeClinicAPI{clinics: clinics("a")}
	s := NewStore(api, &fakeClinicID{}, zap.NewNop())
	require.True(t, s.LoadMemberships(context.Background()))

	assert.False(t, s.SwitchActive("nope"))
	assert.Equal(t, "a", s.Active().ID)
}

func TestSetActivePersistFailureKeepsInMemoryChoice(t *testing.T) {
	api := &fakeClinicAPI{clinics: clinics("a", "b")}
	ids := &fakeClinicID{setErr: errors.New("disk full")}
	s := NewStore(api, ids, zap.NewNop())
	require.True(t, s.LoadMemberships(context.Background()))

	assert.True(t, s.SwitchActive("b"))
	assert.Equal(t, "b", s.Active().ID)
}

func TestCreateActivatesNewClinic(t *testing.T) {
	created := model.Clinic{ID: "new", Name: "Fresh Clinic"}
	api := &fakeClinicAPI{clinics: clinics("a"), created: &created}
	ids := &fakeClinicID{id: "a"}
	s := NewStore(api, ids, zap.NewNop())
	require.True(t, s.LoadMemberships(context.Background()))

	clinic, err := s.Create(context.Background(), model.ClinicDraft{Name: "Fresh Clinic"})

	require.NoError(t, err)
	assert.Equal(t, "new", clinic.ID)
	assert.Equal(t, "new", s.Active().ID)
	assert.Equal(t, "new", ids.id)
	assert.Len(t, s.Memberships(), 2)
}

func TestCreateFailureLeavesMemberships(t *testing.T) {
	api := &fakeClinicAPI{clinics: clinics("a"), createErr: apierror.FromStatus(400, "bad")}
	s := NewStore(api, &fakeClinicID{}, zap.NewNop())
	require.True(t, s.LoadMemberships(context.Background()))

	_, err := s.Create(context.Background(), model.ClinicDraft{})

	require.Error(t, err)
	assert.Len(t, s.Memberships(), 1)
	assert.Equal(t, "a", s.Active().ID)
}

func TestJoinReloadsMemberships(t *testing.T) {
	api := &fakeClinicAPI{clinics: clinics("a")}
	s := NewStore(api, &fakeClinicID{}, zap.NewNop())

	require.NoError(t, s.Join(context.Background(), "CODE1234"))

	assert.Equal(t, []string{"CODE1234"}, api.joinCodes)
	assert.True(t, s.Loaded())
	assert.Equal(t, "a", s.Active().ID)
}

func TestJoinFailureSurfaces(t *testing.T) {
	api := &fakeClinicAPI{joinErr: apierror.FromStatus(404, "invalid code")}
	s := NewStore(api, &fakeClinicID{}, zap.NewNop())

	err := s.Join(context.Background(), "BAD")

	require.Error(t, err)
	assert.False(t, s.Loaded())
}

func TestMembershipsNeverNil(t *testing.T) {
	s := NewStore(&fakeClinicAPI{}, &fakeClinicID{}, zap.NewNop())
	assert.NotNil(t, s.Memberships())
	assert.Empty(t, s.Memberships())
}
