package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/scene-engine/internal/logger"
	"github.com/jwebster45206/scene-engine/internal/middleware"
	"github.com/jwebster45206/scene-engine/internal/services"
	"github.com/jwebster45206/scene-engine/internal/storage"
	"github.com/jwebster45206/scene-engine/pkg/chat"
	"github.com/jwebster45206/scene-engine/pkg/scene"
)

const scenesPrefix = "/v1/scenes"

// Generator produces a validated scene from a prompt.
type Generator interface {
	Generate(ctx context.Context, req chat.SceneRequest) (*scene.Scene, error)
}

type CreateSceneResponse struct {
	SceneID uuid.UUID    `json:"scene_id"`
	Scene   *scene.Scene `json:"scene"`
}

type SceneHandler struct {
	storage   storage.Storage
	generator Generator
	logger    *slog.Logger
}

func NewSceneHandler(storage storage.Storage, generator Generator, logger *slog.Logger) *SceneHandler {
	return &SceneHandler{
		storage:   storage,
		generator: generator,
		logger:    logger,
	}
}

// ServeHTTP handles HTTP requests for scene operations
// Routes:
// POST /v1/scenes                 - Generate a scene or load a fixture
// GET /v1/scenes                  - List fixture scenes
// GET /v1/scenes/{id}             - Read scene by ID
// DELETE /v1/scenes/{id}          - Delete scene by ID
// GET /v1/scenes/{id}/active?t=   - Active state at scene time t
// GET /v1/scenes/{id}/choices?t=  - Visible choices at scene time t
// POST /v1/scenes/{id}/resolve    - Roll for a visible choice
func (h *SceneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.WithRequestID(h.logger, middleware.RequestID(r.Context()))

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, scenesPrefix), "/")
	if path == "" {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r, log)
		case http.MethodGet:
			h.handleList(w, r, log)
		default:
			writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET")
		}
		return
	}

	parts := strings.Split(path, "/")
	if len(parts) > 2 {
		writeError(w, log, http.StatusNotFound, "Not found")
		return
	}

	sceneID, err := uuid.Parse(parts[0])
	if err != nil {
		log.Warn("Invalid scene ID", "id", parts[0], "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid scene ID format")
		return
	}
	log = logger.WithScene(log, sceneID.String())

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, log, sceneID)
		case http.MethodDelete:
			h.handleDelete(w, r, log, sceneID)
		default:
			writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}
	case "active":
		if r.Method != http.MethodGet {
			writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
			return
		}
		h.handleActive(w, r, log, sceneID)
	case "choices":
		if r.Method != http.MethodGet {
			writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
			return
		}
		h.handleChoices(w, r, log, sceneID)
	case "resolve":
		if r.Method != http.MethodPost {
			writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleResolve(w, r, log, sceneID)
	default:
		writeError(w, log, http.StatusNotFound, "Not found")
	}
}

func (h *SceneHandler) handleCreate(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	var req chat.SceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Invalid scene request body", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	}

	var (
		s   *scene.Scene
		err error
	)
	if req.Fixture != "" {
		s, err = h.storage.GetFixture(r.Context(), strings.TrimSpace(req.Fixture))
	} else {
		s, err = h.generator.Generate(r.Context(), req)
	}
	if err != nil {
		h.writeCreateError(w, log, err)
		return
	}

	sceneID := uuid.New()
	if err := h.storage.SaveScene(r.Context(), sceneID, s); err != nil {
		log.Error("Failed to save scene", "error", err)
		writeError(w, log, http.StatusInternalServerError, "Failed to save scene")
		return
	}

	log.Info("Scene created", "scene_id", sceneID.String(), "scene", s.ID(), "fixture", req.Fixture)
	writeJSON(w, log, http.StatusCreated, CreateSceneResponse{SceneID: sceneID, Scene: s})
}

func (h *SceneHandler) writeCreateError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, log, http.StatusNotFound, "Fixture not found")
	case errors.Is(err, services.ErrGenerationFailed):
		log.Error("Scene generation failed", "error", err)
		writeError(w, log, http.StatusBadGateway, "Scene generation failed")
	case errors.Is(err, services.ErrMalformedContent), errors.Is(err, scene.ErrInvalidScene):
		log.Warn("Scene rejected", "error", err)
		writeError(w, log, http.StatusUnprocessableEntity, "malformed generated content: "+err.Error())
	default:
		log.Error("Failed to create scene", "error", err)
		writeError(w, log, http.StatusInternalServerError, "Failed to create scene")
	}
}

func (h *SceneHandler) handleList(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	fixtures, err := h.storage.ListFixtures(r.Context())
	if err != nil {
		log.Error("Failed to list fixtures", "error", err)
		writeError(w, log, http.StatusInternalServerError, "Failed to list scenes")
		return
	}
	writeJSON(w, log, http.StatusOK, fixtures)
}

// loadScene writes the error response itself and returns nil when the scene
// cannot be served.
func (h *SceneHandler) loadScene(w http.ResponseWriter, r *http.Request, log *slog.Logger, sceneID uuid.UUID) *scene.Scene {
	s, err := h.storage.LoadScene(r.Context(), sceneID)
	if err != nil {
		log.Error("Failed to load scene", "error", err)
		writeError(w, log, http.StatusInternalServerError, "Failed to load scene")
		return nil
	}
	if s == nil {
		log.Debug("Scene not found")
		writeError(w, log, http.StatusNotFound, "Scene not found")
		return nil
	}
	return s
}

func (h *SceneHandler) handleRead(w http.ResponseWriter, r *http.Request, log *slog.Logger, sceneID uuid.UUID) {
	s := h.loadScene(w, r, log, sceneID)
	if s == nil {
		return
	}
	writeJSON(w, log, http.StatusOK, s)
}

func (h *SceneHandler) handleDelete(w http.ResponseWriter, r *http.Request, log *slog.Logger, sceneID uuid.UUID) {
	if err := h.storage.DeleteScene(r.Context(), sceneID); err != nil {
		log.Error("Failed to delete scene", "error", err)
		writeError(w, log, http.StatusInternalServerError, "Failed to delete scene")
		return
	}
	log.Debug("Scene deleted")
	w.WriteHeader(http.StatusNoContent)
}
