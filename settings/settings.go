// Package settings provides storage for mclocalizer user settings:
// translation endpoint credentials, the instruction prompt and the user
// configuration file.
//
// All settings are stored in the XDG data directory:
//
//	$XDG_DATA_HOME/mclocalizer/  (default: ~/.local/share/mclocalizer/)
//
// Files stored:
//   - auth.json     API keys per translation endpoint
//   - prompts.json  translation instruction (customizable by user)
//   - config.yaml   user-wide defaults, overridden by a project .mclocalizer.yaml
//
// auth.json is a JSON object keyed by endpoint ID (the endpoint host, e.g.
// "localhost:1337"). File permissions are 0600 (owner read/write only).
//
// Lookup order for API keys:
//  1. --api-key flag (highest priority)
//  2. MCLOCALIZER_API_KEY environment variable
//  3. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	dataDirName = "mclocalizer"
	authFile    = "auth.json"
	promptsFile = "prompts.json"
	configFile  = "config.yaml"

	// APIKeyEnv is the environment variable consulted by ResolveAPIKey.
	APIKeyEnv = "MCLOCALIZER_API_KEY"
)

// Info is one stored credential.
type Info struct {
	// Type is "api" for API keys.
	Type string `json:"type"`
	Key  string `json:"key,omitempty"`
	// BaseURL records the endpoint the key was saved for.
	BaseURL string `json:"baseUrl,omitempty"`
}

// IsAPI returns true if this is an API key entry.
func (i *Info) IsAPI() bool {
	return i.Type == "api"
}

// Store holds all credentials, keyed by endpoint ID.
type Store map[string]*Info

// EndpointID derives the store key for an endpoint URL: its host, or the
// raw string when it does not parse as a URL with a host.
func EndpointID(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return strings.TrimSpace(endpoint)
	}
	return u.Host
}

// ---------------------------------------------------------------------------
// File paths
// ---------------------------------------------------------------------------

// DataDir returns the mclocalizer data directory.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func dataFile(name string) (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// FilePath returns the auth.json path for display purposes.
func FilePath() string {
	p, err := dataFile(authFile)
	if err != nil {
		return ""
	}
	return p
}

// PromptsFilePath returns the path to prompts.json.
func PromptsFilePath() (string, error) {
	return dataFile(promptsFile)
}

// ConfigFilePath returns the path to the user-wide config.yaml.
func ConfigFilePath() (string, error) {
	return dataFile(configFile)
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path, err := dataFile(authFile)
	if err != nil {
		return make(Store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := dataFile(authFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// SetAPIKey stores an API key for an endpoint URL.
func SetAPIKey(endpoint, key string) error {
	store := Load()
	store[EndpointID(endpoint)] = &Info{Type: "api", Key: key, BaseURL: endpoint}
	return Save(store)
}

// GetAPIKey returns the stored key for an endpoint URL, or "".
func GetAPIKey(endpoint string) string {
	info := Load()[EndpointID(endpoint)]
	if info == nil || !info.IsAPI() {
		return ""
	}
	return info.Key
}

// Remove deletes the credential of an endpoint URL.
func Remove(endpoint string) error {
	store := Load()
	id := EndpointID(endpoint)
	if _, ok := store[id]; !ok {
		return nil
	}
	delete(store, id)
	return Save(store)
}

// ResolveAPIKey picks the key for endpoint: flagKey, then APIKeyEnv, then
// the credential store.
func ResolveAPIKey(endpoint, flagKey string) string {
	if flagKey != "" {
		return flagKey
	}
	if env := os.Getenv(APIKeyEnv); env != "" {
		return env
	}
	return GetAPIKey(endpoint)
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
