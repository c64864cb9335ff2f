package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/scene-engine/internal/storage"
	"github.com/jwebster45206/scene-engine/pkg/chat"
	"github.com/jwebster45206/scene-engine/pkg/scene"
)

const ambushJSON = `{
  "id": "ambush",
  "duration": 10,
  "decision_deadline": 8,
  "states": [
    {"id": "approach", "at": 0, "duration": 5, "text": "Footsteps behind you.", "time_to_read": 1,
     "choices": [{"choice_id": "run", "birth": 1, "death": 3}, {"choice_id": "hide", "birth": 0, "death": 5}]},
    {"id": "cornered", "at": 5, "duration": 5, "text": "A blade glints.",
     "choices": [{"choice_id": "run", "birth": 0, "death": 2, "override_text": "Sprint for the gap", "base_probability": 0.9},
                 {"choice_id": "fight", "birth": 1, "death": 1}]}
  ],
  "choices": {
    "run": {"id": "run", "text": "Run", "base_probability": 0.3, "rt_factor": 0.5},
    "hide": {"id": "hide", "text": "Hide", "time_to_read": 0.5},
    "fight": {"id": "fight", "text": "Fight", "base_probability": 0.4, "rt_factor": 1.0}
  }
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

type generatorFunc func(ctx context.Context, req chat.SceneRequest) (*scene.Scene, error)

func (f generatorFunc) Generate(ctx context.Context, req chat.SceneRequest) (*scene.Scene, error) {
	return f(ctx, req)
}

func ambushScene(t *testing.T) *scene.Scene {
	t.Helper()
	s, err := scene.Parse([]byte(ambushJSON))
	require.NoError(t, err)
	return s
}

func unusedGenerator(t *testing.T) Generator {
	return generatorFunc(func(ctx context.Context, req chat.SceneRequest) (*scene.Scene, error) {
		t.Error("generator should not be called")
		return nil, errors.New("unexpected call")
	})
}

// newStoredScene returns a handler whose storage holds the ambush scene.
func newStoredScene(t *testing.T) (*SceneHandler, *storage.MockStorage, uuid.UUID) {
	t.Helper()
	mockStorage := storage.NewMockStorage()
	id := uuid.New()
	require.NoError(t, mockStorage.SaveScene(context.Background(), id, ambushScene(t)))
	return NewSceneHandler(mockStorage, unusedGenerator(t), testLogger()), mockStorage, id
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
