package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/scene-engine/pkg/scene"
)

// ErrNotFound is returned when a fixture scene does not exist.
var ErrNotFound = errors.New("not found")

// Storage combines the store of generated scenes (Redis) with read-only
// fixture scenes (filesystem).
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// SaveScene stores a validated scene under id, replacing any previous one.
	SaveScene(ctx context.Context, id uuid.UUID, s *scene.Scene) error
	// LoadScene returns nil, nil when no scene is stored under id.
	LoadScene(ctx context.Context, id uuid.UUID) (*scene.Scene, error)
	DeleteScene(ctx context.Context, id uuid.UUID) error

	// ListFixtures maps fixture scene ids to their filenames.
	ListFixtures(ctx context.Context) (map[string]string, error)
	GetFixture(ctx context.Context, filename string) (*scene.Scene, error)
}
