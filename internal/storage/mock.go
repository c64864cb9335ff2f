package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/scene-engine/pkg/scene"
)

// MockStorage is an in-memory Storage for handler tests.
type MockStorage struct {
	mu        sync.RWMutex
	scenes    map[uuid.UUID]*scene.Scene
	fixtures  map[string]*scene.Scene
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		scenes:   make(map[uuid.UUID]*scene.Scene),
		fixtures: make(map[string]*scene.Scene),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError makes every SaveScene call fail with err.
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// AddFixture registers a fixture scene under filename.
func (m *MockStorage) AddFixture(filename string, s *scene.Scene) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixtures[filename] = s
}

// SceneCount reports how many generated scenes are stored.
func (m *MockStorage) SceneCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.scenes)
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveScene(ctx context.Context, id uuid.UUID, s *scene.Scene) error {
	if s == nil {
		return errors.New("scene cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.scenes[id] = s
	return nil
}

func (m *MockStorage) LoadScene(ctx context.Context, id uuid.UUID) (*scene.Scene, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scenes[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (m *MockStorage) DeleteScene(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scenes, id)
	return nil
}

func (m *MockStorage) ListFixtures(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.fixtures))
	for filename, s := range m.fixtures {
		out[s.ID()] = filename
	}
	return out, nil
}

func (m *MockStorage) GetFixture(ctx context.Context, filename string) (*scene.Scene, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.fixtures[filename]
	if !ok {
		return nil, fmt.Errorf("fixture %q: %w", filename, ErrNotFound)
	}
	return s, nil
}
