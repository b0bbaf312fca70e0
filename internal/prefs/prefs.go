// Package prefs persists the last used generator paths.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// CacheFileName is the file created in the user's home directory.
const CacheFileName = "prowogene_toolkit_cache.json"

// Preferences are the three paths the toolkit remembers between runs.
type Preferences struct {
	Application string `json:"application" mapstructure:"application"`
	Settings    string `json:"settings" mapstructure:"settings"`
	WorkingDir  string `json:"working_dir" mapstructure:"working_dir"`
}

// IsEmpty reports whether no path is set.
func (p Preferences) IsEmpty() bool {
	return p.Application == "" && p.Settings == "" && p.WorkingDir == ""
}

// Store reads and writes the preference cache file.
type Store struct {
	fs   afero.Fs
	path string
}

// DefaultPath returns <home>/prowogene_toolkit_cache.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, CacheFileName), nil
}

// NewStore creates a store for path. A nil fs uses the OS filesystem.
func NewStore(fs afero.Fs, path string) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{fs: fs, path: path}
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) newViper() *viper.Viper {
	v := viper.New()
	v.SetFs(s.fs)
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	return v
}

// Save writes p to the cache file. Nothing is written when p is empty.
func (s *Store) Save(p Preferences) error {
	if p.IsEmpty() {
		return nil
	}

	v := s.newViper()
	v.Set("application", p.Application)
	v.Set("settings", p.Settings)
	v.Set("working_dir", p.WorkingDir)

	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// Load reads the cache file. All three keys must be present.
func (s *Store) Load() (Preferences, error) {
	v := s.newViper()
	if err := v.ReadInConfig(); err != nil {
		return Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}

	for _, key := range []string{"application", "settings", "working_dir"} {
		if !v.IsSet(key) {
			return Preferences{}, fmt.Errorf("preferences: missing key %q", key)
		}
	}

	return Preferences{
		Application: v.GetString("application"),
		Settings:    v.GetString("settings"),
		WorkingDir:  v.GetString("working_dir"),
	}, nil
}
