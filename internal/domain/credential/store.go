package credential

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/felixgeelhaar/hostprep/internal/ports"
)

// StorageError indicates the credential file could not be read or written.
type StorageError struct {
	Path string
	Op   string
	Err  error
}

// Error returns the formatted error message.
func (e *StorageError) Error() string {
	return fmt.Sprintf("credential storage: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// File permissions: the secret is readable by the owning principal only.
const (
	filePerm = 0600
	dirPerm  = 0700
)

// Store persists a single secret token in protected local storage.
// The first Get on a fresh host prompts the operator and persists the
// value; every later Get is a cached read. Safe for concurrent use.
type Store struct {
	path     string
	fs       ports.FileSystem
	prompter ports.Prompter

	mu     sync.Mutex
	loaded bool
	cached Credential
}

// NewStore creates a Store backed by the file at path.
func NewStore(path string, fs ports.FileSystem, prompter ports.Prompter) *Store {
	return &Store{
		path:     path,
		fs:       fs,
		prompter: prompter,
	}
}

// Path returns the storage path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a credential has been persisted.
func (s *Store) Exists() bool {
	return s.fs.Exists(s.path)
}

// Get returns the credential, loading it from disk on first call.
// If no credential is persisted, the operator is prompted once and the
// value is stored with restrictive permissions before being returned.
func (s *Store) Get(ctx context.Context) (Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.cached, nil
	}

	if s.fs.Exists(s.path) {
		data, err := s.fs.ReadFile(s.path)
		if err != nil {
			return Credential{}, &StorageError{Path: s.path, Op: "read", Err: err}
		}
		s.cached = New(strings.TrimSpace(string(data)))
		s.loaded = true
		return s.cached, nil
	}

	value, err := s.prompter.Secret(ctx, "Enter provisioning token")
	if err != nil {
		return Credential{}, fmt.Errorf("credential prompt: %w", err)
	}

	cred := New(strings.TrimSpace(value))
	if err := s.persist(cred); err != nil {
		return Credential{}, err
	}

	s.cached = cred
	s.loaded = true
	return s.cached, nil
}

// Set replaces the persisted credential wholesale (rotation).
func (s *Store) Set(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred := New(strings.TrimSpace(value))
	if err := s.persist(cred); err != nil {
		return err
	}

	s.cached = cred
	s.loaded = true
	return nil
}

// persist writes the secret with owner-only permissions. Caller holds the
// lock.
func (s *Store) persist(cred Credential) error {
	dir := filepath.Dir(s.path)
	if !s.fs.Exists(dir) {
		if err := s.fs.MkdirAll(dir, dirPerm); err != nil {
			return &StorageError{Path: dir, Op: "mkdir", Err: err}
		}
	}

	if err := s.fs.WriteFile(s.path, []byte(cred.Value()+"\n"), filePerm); err != nil {
		return &StorageError{Path: s.path, Op: "write", Err: err}
	}

	// WriteFile permissions do not apply when the file already exists.
	if err := s.fs.Chmod(s.path, filePerm); err != nil {
		return &StorageError{Path: s.path, Op: "chmod", Err: err}
	}

	return nil
}
