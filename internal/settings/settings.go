// Package settings holds the process-wide runtime settings loaded from a YAML
// file. Settings are read once at startup and replaced atomically on Reload.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Settings is the parsed settings file.
type Settings struct {
	// SystemPasswordHash is the bcrypt hash of the shared login password.
	SystemPasswordHash string        `yaml:"systemPasswordHash"`
	Notifications      Notifications `yaml:"notifications"`
	// PhoneRegion is the default region for phone normalization.
	PhoneRegion string `yaml:"phoneRegion"`
}

// Notifications controls the case outcome emails.
type Notifications struct {
	Enabled    bool     `yaml:"enabled"`
	Recipients []string `yaml:"recipients"`
	Stages     []string `yaml:"stages"`
}

// NotifiesStage reports whether a case entering stage should trigger mail.
func (n Notifications) NotifiesStage(stage string) bool {
	return n.Enabled && slices.Contains(n.Stages, stage)
}

// Defaults returns the settings used when no file is configured.
func Defaults() Settings {
	return Settings{
		Notifications: Notifications{
			Enabled: true,
			Stages:  []string{"disbursed", "declined", "withdrawn"},
		},
		PhoneRegion: "AE",
	}
}

// Parse decodes data on top of Defaults. Unknown keys are rejected.
func Parse(data []byte) (Settings, error) {
	s := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.SystemPasswordHash != "" && !strings.HasPrefix(s.SystemPasswordHash, "$2") {
		return errors.New("settings: systemPasswordHash must be a bcrypt hash")
	}
	if len(s.PhoneRegion) != 2 {
		return fmt.Errorf("settings: invalid phoneRegion %q", s.PhoneRegion)
	}
	for _, r := range s.Notifications.Recipients {
		if !strings.Contains(r, "@") {
			return fmt.Errorf("settings: invalid notification recipient %q", r)
		}
	}
	return nil
}

// Store holds the current settings. It is safe for concurrent use.
type Store struct {
	path    string
	current atomic.Pointer[Settings]
}

// Load reads path into a new store. An empty path yields Defaults.
func Load(path string) (*Store, error) {
	st := &Store{path: path}
	if err := st.Reload(); err != nil {
		return nil, err
	}
	return st, nil
}

// NewStatic returns a store that always holds s.
func NewStatic(s Settings) *Store {
	st := &Store{}
	st.current.Store(&s)
	return st
}

// Get returns the current settings.
func (st *Store) Get() Settings {
	return *st.current.Load()
}

// Reload re-reads the settings file. On error the previous settings stay.
func (st *Store) Reload() error {
	if st.path == "" {
		if st.current.Load() == nil {
			d := Defaults()
			st.current.Store(&d)
		}
		return nil
	}

	data, err := os.ReadFile(st.path)
	if err != nil {
		return fmt.Errorf("read settings file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return err
	}
	st.current.Store(&s)
	return nil
}

// SystemPasswordHash returns the current bcrypt hash of the shared login password.
func (st *Store) SystemPasswordHash() string {
	return st.Get().SystemPasswordHash
}
