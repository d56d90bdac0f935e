package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the config file next to the executable.
const FileName = "config.toml"

// AppConfig is the application-wide configuration stored in config.toml.
type AppConfig struct {
	// HashtableDir is where the hash tables are loaded from. Empty means unset.
	HashtableDir string `toml:"hashtable_dir,omitempty"`
}

// pathKeys are the schema keys holding paths; they are stored with forward slashes.
var pathKeys = map[string]bool{"hashtable_dir": true}

var ErrNoConfigPath = errors.New("could not determine config path")

// ValidationError reports a config document that does not fit the schema.
type ValidationError struct {
	Key string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid configuration for %q: %v", e.Key, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Locator finds the config file.
type Locator interface {
	ConfigPath() (string, error)
}

// ExecutableLocator places the config file in the running executable's directory.
type ExecutableLocator struct{}

func (ExecutableLocator) ConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoConfigPath, err)
	}
	return filepath.Join(filepath.Dir(exe), FileName), nil
}

// FileLocator is a fixed config file path.
type FileLocator string

func (l FileLocator) ConfigPath() (string, error) {
	if l == "" {
		return "", ErrNoConfigPath
	}
	return string(l), nil
}

// Store loads and persists the configuration.
type Store struct {
	locator  Locator
	defaults func() AppConfig
}

// NewStore returns a store reading the file found by locator.
func NewStore(locator Locator) *Store {
	return &Store{locator: locator, defaults: DefaultConfig}
}

// WithDefaults returns a copy of s using fn to compute default values.
func (s *Store) WithDefaults(fn func() AppConfig) *Store {
	return &Store{locator: s.locator, defaults: fn}
}

// DefaultConfig returns the configuration used when nothing is persisted.
func DefaultConfig() AppConfig {
	return AppConfig{HashtableDir: DefaultHashtableDir()}
}

// Path returns the config file path.
func (s *Store) Path() (string, error) {
	return s.locator.ConfigPath()
}

// LoadOrCreate reads the config file, filling absent fields from defaults.
// When the file does not exist it is created with the defaults.
func (s *Store) LoadOrCreate() (AppConfig, string, error) {
	path, err := s.Path()
	if err != nil {
		return AppConfig{}, "", err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := s.defaults()
		if err := s.Save(cfg); err != nil {
			return AppConfig{}, "", fmt.Errorf("failed to save config file: %w", err)
		}
		return cfg, path, nil
	}
	if err != nil {
		return AppConfig{}, "", fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg AppConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, "", fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if cfg.HashtableDir == "" {
		cfg.HashtableDir = s.defaults().HashtableDir
	}
	return cfg, path, nil
}

// Save writes cfg, normalizing paths to forward slashes.
func (s *Store) Save(cfg AppConfig) error {
	path, err := s.Path()
	if err != nil {
		return err
	}
	cfg.HashtableDir = NormalizePath(cfg.HashtableDir)

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// Reset overwrites the config file with the defaults.
func (s *Store) Reset() (AppConfig, error) {
	cfg := s.defaults()
	if err := s.Save(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to reset config: %w", err)
	}
	return cfg, nil
}

// loadTable reads the config file as a generic document. A missing file
// yields the defaults.
func (s *Store) loadTable() (map[string]any, error) {
	path, err := s.Path()
	if err != nil {
		return nil, err
	}

	table := make(map[string]any)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if dir := s.defaults().HashtableDir; dir != "" {
			table["hashtable_dir"] = NormalizePath(dir)
		}
		return table, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), &table); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return table, nil
}

// Set assigns value to key. The whole resulting document is validated
// against the schema before anything is written; an invalid update leaves
// the file untouched.
func (s *Store) Set(key, value string) error {
	table, err := s.loadTable()
	if err != nil {
		return err
	}

	table[key] = ParseValue(value)
	if _, err := validate(table, key); err != nil {
		return err
	}

	for k := range pathKeys {
		if str, ok := table[k].(string); ok {
			table[k] = NormalizePath(str)
		}
	}

	path, err := s.Path()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(table); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// validate coerces a generic document into AppConfig. key names the entry
// being changed and is reported when the failure cannot be pinned elsewhere.
// Keys outside the schema are ignored and kept in the document.
func validate(table map[string]any, key string) (AppConfig, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(table); err != nil {
		return AppConfig{}, &ValidationError{Key: key, Err: err}
	}

	var cfg AppConfig
	if _, err := toml.Decode(buf.String(), &cfg); err != nil {
		return AppConfig{}, &ValidationError{Key: key, Err: err}
	}
	if dir, ok := table["hashtable_dir"]; ok && dir == "" {
		return AppConfig{}, &ValidationError{Key: "hashtable_dir", Err: errors.New("must not be empty")}
	}
	return cfg, nil
}

// ParseValue converts a command line value into the most specific TOML
// primitive: boolean, integer, float (only with a decimal point), string.
func ParseValue(value string) any {
	if b, err := strconv.ParseBool(value); err == nil && (value == "true" || value == "false") {
		return b
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if strings.Contains(value, ".") {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return value
}

// NormalizePath converts backslashes to forward slashes.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
