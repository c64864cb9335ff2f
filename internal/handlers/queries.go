package handlers

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jwebster45206/scene-engine/pkg/scene"
)

type StateResponse struct {
	ID           string  `json:"id"`
	At           float64 `json:"at"`
	Duration     float64 `json:"duration"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	TimeToRead   float64 `json:"time_to_read"`
	ReadingPause float64 `json:"reading_pause"`
}

type ActiveStateResponse struct {
	T         float64       `json:"t"`
	LocalTime float64       `json:"local_time"`
	Progress  float64       `json:"progress"`
	TimedOut  bool          `json:"timed_out"`
	State     StateResponse `json:"state"`
}

type ChoiceResponse struct {
	ChoiceID        string  `json:"choice_id"`
	Text            string  `json:"text"`
	BaseProbability float64 `json:"base_probability"`
	RTFactor        float64 `json:"rt_factor"`
	Birth           float64 `json:"birth"`
	Death           float64 `json:"death"`
	Window          float64 `json:"window"`
	TimeToRead      float64 `json:"time_to_read"`
}

type VisibleChoicesResponse struct {
	T         float64          `json:"t"`
	StateID   string           `json:"state_id"`
	LocalTime float64          `json:"local_time"`
	Choices   []ChoiceResponse `json:"choices"`
}

// parseT reads the required scene time query parameter.
func parseT(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("t")
	if raw == "" {
		return 0, fmt.Errorf("query parameter 't' is required")
	}
	t, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, fmt.Errorf("query parameter 't' must be a finite number")
	}
	return t, nil
}

func newStateResponse(s *scene.Scene, st scene.State) StateResponse {
	return StateResponse{
		ID:           st.ID,
		At:           st.At,
		Duration:     st.Duration,
		End:          st.End(),
		Text:         st.Text,
		TimeToRead:   st.TimeToRead,
		ReadingPause: s.ReadingPause(st),
	}
}

func newChoiceResponse(vc scene.VisibleChoice) ChoiceResponse {
	bp, rt := vc.Params()
	return ChoiceResponse{
		ChoiceID:        vc.Definition.ID,
		Text:            vc.Text(),
		BaseProbability: bp,
		RTFactor:        rt,
		Birth:           vc.Scheduled.Birth,
		Death:           vc.Scheduled.Death,
		Window:          vc.Window(),
		TimeToRead:      vc.Definition.TimeToRead,
	}
}

func (h *SceneHandler) handleActive(w http.ResponseWriter, r *http.Request, log *slog.Logger, sceneID uuid.UUID) {
	t, err := parseT(r)
	if err != nil {
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	}

	s := h.loadScene(w, r, log, sceneID)
	if s == nil {
		return
	}

	st := s.ActiveState(t)
	writeJSON(w, log, http.StatusOK, ActiveStateResponse{
		T:         t,
		LocalTime: t - st.At,
		Progress:  s.Progress(t),
		TimedOut:  s.TimedOut(t),
		State:     newStateResponse(s, st),
	})
}

func (h *SceneHandler) handleChoices(w http.ResponseWriter, r *http.Request, log *slog.Logger, sceneID uuid.UUID) {
	t, err := parseT(r)
	if err != nil {
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	}

	s := h.loadScene(w, r, log, sceneID)
	if s == nil {
		return
	}

	st := s.ActiveState(t)
	visible := s.VisibleChoices(t)
	choices := make([]ChoiceResponse, 0, len(visible))
	for _, vc := range visible {
		choices = append(choices, newChoiceResponse(vc))
	}

	writeJSON(w, log, http.StatusOK, VisibleChoicesResponse{
		T:         t,
		StateID:   st.ID,
		LocalTime: t - st.At,
		Choices:   choices,
	})
}
