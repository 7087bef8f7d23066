package session

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Storage keys, mirroring the browser origin of the persisted state.
const (
	keyToken    = "token"
	keyUser     = "user"
	keyExpires  = "token_expires_at"
	keyRegistry = "registrationSuccess"
)

// Storage is a flat key-value file in the state dir, the client-side
// analog of window.localStorage. Every mutation rewrites the whole file,
// so multi-key changes land as a unit.
type Storage struct {
	path string
}

// NewStorage places the state file under dir.
func NewStorage(dir string) *Storage {
	return &Storage{path: filepath.Join(dir, "state.json")}
}

// Get returns the value for key, with ok=false when absent.
func (s *Storage) Get(key string) (string, bool) {
	kv := s.load()
	v, ok := kv[key]
	return v, ok
}

// Set writes a single key.
func (s *Storage) Set(key, value string) error {
	kv := s.load()
	kv[key] = value
	return s.save(kv)
}

// SetAll writes several keys in one file write.
func (s *Storage) SetAll(values map[string]string) error {
	kv := s.load()
	for k, v := range values {
		kv[k] = v
	}
	return s.save(kv)
}

// Remove deletes keys in one file write.
func (s *Storage) Remove(keys ...string) error {
	kv := s.load()
	for _, k := range keys {
		delete(kv, k)
	}
	return s.save(kv)
}

func (s *Storage) load() map[string]string {
	kv := map[string]string{}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return kv
	}
	if err := json.Unmarshal(b, &kv); err != nil {
		// unreadable state behaves as empty storage
		return map[string]string{}
	}
	return kv
}

func (s *Storage) save(kv map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(kv, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o600)
}
