// Package session persists small string keys that must survive between operator sessions.
package session

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	appErr "github.com/portfolio-studio/engine/pkg/errors"
	"github.com/portfolio-studio/engine/pkg/storage"
)

// Well-known keys.
const (
	KeyStoreSnapshot       = "portfolio-storage"
	KeyOnboardingCompleted = "portfolio-onboarding-completed"
	KeyLastStep            = "onboarding-last-step"
	KeyCompletedBefore     = "onboarding-completed-before"
	KeyStepJumpHintSeen    = "onboarding-step-jump-toast-seen"
)

// Storage is a string key/value store. Get reports false for missing keys.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryStorage keeps keys in process memory.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: map[string]string{}}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// FileStorage keeps every key in one JSON document, rewritten atomically on each change.
type FileStorage struct {
	mu   sync.Mutex
	fs   billy.Filesystem
	name string
}

func NewFileStorage(fs billy.Filesystem, name string) *FileStorage {
	return &FileStorage{fs: fs, name: name}
}

func (f *FileStorage) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return err
	}
	data[key] = value
	return f.save(data)
}

func (f *FileStorage) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return f.save(data)
}

func (f *FileStorage) load() (map[string]string, error) {
	b, err := util.ReadFile(f.fs, f.name)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, appErr.Wrap(err, appErr.CodeInternal, "read session failed")
	}
	data := map[string]string{}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "decode session failed")
	}
	return data, nil
}

func (f *FileStorage) save(data map[string]string) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "encode session failed")
	}
	if err := storage.WriteFileAtomic(f.fs, f.name, b, 0o600); err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "write session failed")
	}
	return nil
}

// GetBool reads a "true"/"false" flag; missing or unreadable keys are false.
func GetBool(s Storage, key string) bool {
	v, ok, err := s.Get(key)
	return err == nil && ok && v == "true"
}

// SetBool stores a flag as "true"/"false".
func SetBool(s Storage, key string, v bool) error {
	if v {
		return s.Set(key, "true")
	}
	return s.Set(key, "false")
}
