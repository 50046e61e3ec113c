package mocks

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/felixgeelhaar/hostprep/internal/ports"
)

// fileEntry is one in-memory file.
type fileEntry struct {
	data []byte
	perm os.FileMode
}

// FileSystem is a thread-safe in-memory test double for ports.FileSystem.
type FileSystem struct {
	mu       sync.RWMutex
	files    map[string]fileEntry
	dirs     map[string]bool
	readErr  map[string]error
	writeErr map[string]error
}

// NewFileSystem creates a new FileSystem mock.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files:    make(map[string]fileEntry),
		dirs:     make(map[string]bool),
		readErr:  make(map[string]error),
		writeErr: make(map[string]error),
	}
}

// AddFile seeds a file with default permissions.
func (m *FileSystem) AddFile(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = fileEntry{data: data, perm: 0644}
}

// AddReadError makes reads of path fail.
func (m *FileSystem) AddReadError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr[path] = err
}

// AddWriteError makes writes of path fail.
func (m *FileSystem) AddWriteError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr[path] = err
}

// Perm returns the recorded permissions for path.
func (m *FileSystem) Perm(path string) (os.FileMode, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.files[path]
	return entry.perm, ok
}

// ReadFile reads an in-memory file.
func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.readErr[path]; ok {
		return nil, err
	}
	entry, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	data := make([]byte, len(entry.data))
	copy(data, entry.data)
	return data, nil
}

// WriteFile stores an in-memory file.
func (m *FileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.writeErr[path]; ok {
		return err
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	existing, exists := m.files[path]
	if exists {
		// Like os.WriteFile, permissions only apply on creation.
		perm = existing.perm
	}
	m.files[path] = fileEntry{data: stored, perm: perm}
	return nil
}

// Exists reports whether path is a stored file or directory.
func (m *FileSystem) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.files[path]; ok {
		return true
	}
	return m.dirs[path]
}

// IsDir reports whether path is a stored directory.
func (m *FileSystem) IsDir(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[path]
}

// MkdirAll records a directory.
func (m *FileSystem) MkdirAll(path string, _ os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
	return nil
}

// Remove deletes a stored file.
func (m *FileSystem) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; !ok {
		return fmt.Errorf("file not found: %s", path)
	}
	delete(m.files, path)
	return nil
}

// Rename moves a stored file.
func (m *FileSystem) Rename(oldPath, newPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.files[oldPath]
	if !ok {
		return fmt.Errorf("file not found: %s", oldPath)
	}
	delete(m.files, oldPath)
	m.files[newPath] = entry
	return nil
}

// Chmod updates the recorded permissions.
func (m *FileSystem) Chmod(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.files[path]
	if !ok {
		return fmt.Errorf("file not found: %s", path)
	}
	entry.perm = perm
	m.files[path] = entry
	return nil
}

// GetFileInfo returns metadata for a stored file.
func (m *FileSystem) GetFileInfo(path string) (ports.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.files[path]
	if !ok {
		return ports.FileInfo{}, fmt.Errorf("file not found: %s", path)
	}
	return ports.FileInfo{
		Size:    int64(len(entry.data)),
		Mode:    entry.perm,
		ModTime: time.Now(),
	}, nil
}

// Ensure FileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*FileSystem)(nil)
