package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jwebster45206/scene-engine/internal/telemetry"
	"github.com/jwebster45206/scene-engine/pkg/dice"
	"github.com/jwebster45206/scene-engine/pkg/scene"
)

// ResolveRequest settles a choice picked at scene time T.
type ResolveRequest struct {
	T            float64  `json:"t"`
	ChoiceID     string   `json:"choice_id"`
	ResponseTime *float64 `json:"response_time,omitempty"`
	TimeLimit    *float64 `json:"time_limit,omitempty"`
	Seed         *int64   `json:"seed,omitempty"`
}

type ResolveResponse struct {
	ChoiceID     string  `json:"choice_id"`
	StateID      string  `json:"state_id"`
	T            float64 `json:"t"`
	ResponseTime float64 `json:"response_time"`
	TimeLimit    float64 `json:"time_limit"`
	Seed         int64   `json:"seed"`
	dice.Outcome
}

// timeLimitFor defaults to the choice's window, then the scene's decision
// deadline when the window has no length.
func timeLimitFor(s *scene.Scene, vc scene.VisibleChoice) float64 {
	if window := vc.Window(); window > dice.Epsilon {
		return window
	}
	if deadline, ok := s.DecisionDeadline(); ok {
		return deadline
	}
	return vc.Window()
}

func (h *SceneHandler) handleResolve(w http.ResponseWriter, r *http.Request, log *slog.Logger, sceneID uuid.UUID) {
	ctx, span := telemetry.Tracer().Start(r.Context(), "scene.resolve")
	defer span.End()

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("Invalid resolve request body", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.ChoiceID == "" {
		writeError(w, log, http.StatusBadRequest, "choice_id is required")
		return
	}

	s := h.loadScene(w, r.WithContext(ctx), log, sceneID)
	if s == nil {
		return
	}

	st := s.ActiveState(req.T)
	var picked *scene.VisibleChoice
	for _, vc := range s.VisibleChoices(req.T) {
		if vc.Definition.ID == req.ChoiceID {
			picked = &vc
			break
		}
	}
	if picked == nil {
		log.Info("Choice not visible", "choice_id", req.ChoiceID, "t", req.T, "state_id", st.ID)
		writeError(w, log, http.StatusConflict, "Choice '"+req.ChoiceID+"' is not visible at this time")
		return
	}

	responseTime := req.T - st.At - picked.Scheduled.Birth
	if req.ResponseTime != nil {
		responseTime = *req.ResponseTime
	}
	timeLimit := timeLimitFor(s, *picked)
	if req.TimeLimit != nil {
		timeLimit = *req.TimeLimit
	}

	var seed int64
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		var err error
		if seed, err = dice.NewSeed(); err != nil {
			log.Error("Failed to draw seed", "error", err)
			writeError(w, log, http.StatusInternalServerError, "Failed to roll")
			return
		}
	}

	bp, rt := picked.Params()
	p := dice.ResolveProbability(bp, rt, responseTime, timeLimit)
	outcome := dice.Resolve(p, dice.NewRoller(seed))

	span.SetAttributes(
		attribute.String("scene.choice_id", req.ChoiceID),
		attribute.Float64("scene.probability", outcome.Probability),
		attribute.Int("dice.roll", outcome.Roll),
		attribute.String("dice.category", string(outcome.Category)),
	)
	log.Info("Choice resolved",
		"choice_id", req.ChoiceID,
		"state_id", st.ID,
		"probability", outcome.Probability,
		"roll", outcome.Roll,
		"category", outcome.Category)

	writeJSON(w, log, http.StatusOK, ResolveResponse{
		ChoiceID:     req.ChoiceID,
		StateID:      st.ID,
		T:            req.T,
		ResponseTime: responseTime,
		TimeLimit:    timeLimit,
		Seed:         seed,
		Outcome:      outcome,
	})
}
