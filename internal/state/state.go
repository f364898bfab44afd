// Package state persists the two pieces of durable client state: the
// bearer token and the active clinic id. Everything else is rebuilt from
// the backends on startup.
package state

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

const (
	keyToken    = "auth.token"
	keyClinicID = "clinic.id"

	// DefaultFileName is the state file created under the user's home dir.
	DefaultFileName = ".clinicdesk.yaml"
)

// Store is the persisted client state. A missing or unreadable file
// degrades to empty values rather than an error.
type Store struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// DefaultPath returns the state file location under the user's home dir.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultFileName), nil
}

// Open loads the state file at path, tolerating its absence.
func Open(path string) *Store {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	// Corrupt or missing state means "logged out", never a startup failure.
	_ = v.ReadInConfig()
	return &Store{v: v, path: path}
}

// Token returns the stored bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetString(keyToken)
}

// SetToken persists the bearer token.
func (s *Store) SetToken(token string) error {
	return s.set(keyToken, token)
}

// ClearToken removes the bearer token.
func (s *Store) ClearToken() error {
	return s.set(keyToken, "")
}

// ClinicID returns the persisted active clinic id, or "".
func (s *Store) ClinicID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.GetString(keyClinicID)
}

// SetClinicID persists the active clinic id.
func (s *Store) SetClinicID(id string) error {
	return s.set(keyClinicID, id)
}

// ClearClinicID removes the persisted active clinic id.
func (s *Store) ClearClinicID() error {
	return s.set(keyClinicID, "")
}

func (s *Store) set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(key, value)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return s.v.WriteConfigAs(s.path)
}
