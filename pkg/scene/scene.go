// Package scene models a short branching narrative scene: a timeline of
// states, each exposing timed choices drawn from a shared catalog.
//
// A *Scene can only be obtained through Validate (or by unmarshaling JSON,
// which validates). Every value returned from its accessors is a copy, so a
// validated scene stays read-only and can be queried from any number of
// goroutines without coordination.
package scene

import (
	"encoding/json"
	"maps"
	"slices"
)

const (
	// Tolerance absorbs floating point drift in window bound checks.
	Tolerance = 1e-6

	MinSceneDuration       = 0.5
	DefaultBaseProbability = 0.5
	DefaultRTFactor        = 0.0
)

// Optional is a value that may be absent.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// Or returns the value when present, fallback otherwise.
func (o Optional[T]) Or(fallback T) T {
	if o.Valid {
		return o.Value
	}
	return fallback
}

func optionalFrom[T any](p *T) Optional[T] {
	if p == nil {
		return Optional[T]{}
	}
	return Some(*p)
}

func (o Optional[T]) ptr() *T {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// ChoiceDefinition is a reusable catalog entry.
type ChoiceDefinition struct {
	ID              string
	Text            string
	BaseProbability float64
	RTFactor        float64
	TimeToRead      float64
}

// ScheduledChoice is a state-local window referencing a catalog entry by id,
// with optional per-occurrence overrides.
type ScheduledChoice struct {
	ChoiceID        string
	Birth           float64
	Death           float64
	OverrideText    Optional[string]
	BaseProbability Optional[float64]
	RTFactor        Optional[float64]
}

// Window returns the length of the visibility window in seconds.
func (sc ScheduledChoice) Window() float64 {
	return sc.Death - sc.Birth
}

// State is a time-bounded segment of a scene.
type State struct {
	ID         string
	At         float64
	Duration   float64
	Text       string
	TimeToRead float64

	choices []ScheduledChoice
}

// End returns the scene time at which the state's window closes.
func (st State) End() float64 {
	return st.At + st.Duration
}

// Choices returns the state's schedule in declaration order.
func (st State) Choices() []ScheduledChoice {
	return slices.Clone(st.choices)
}

// Scene is a validated scene. Obtain one from Validate, Parse or
// UnmarshalJSON; only those guarantee the invariants. The zero Scene has no
// states: ActiveState returns the zero State and VisibleChoices is empty.
type Scene struct {
	id                  string
	duration            float64
	states              []State
	catalog             map[string]ChoiceDefinition
	readingTimeEstimate Optional[float64]
	decisionDeadline    Optional[float64]
}

func (s *Scene) ID() string        { return s.id }
func (s *Scene) Duration() float64 { return s.duration }

// States returns the states in scene order.
func (s *Scene) States() []State {
	return slices.Clone(s.states)
}

// State looks a state up by id. The first match wins.
func (s *Scene) State(id string) (State, bool) {
	for _, st := range s.states {
		if st.ID == id {
			return st, true
		}
	}
	return State{}, false
}

// Choice looks a catalog entry up by id.
func (s *Scene) Choice(id string) (ChoiceDefinition, bool) {
	def, ok := s.catalog[id]
	return def, ok
}

// Catalog returns a copy of the choice catalog.
func (s *Scene) Catalog() map[string]ChoiceDefinition {
	return maps.Clone(s.catalog)
}

func (s *Scene) ReadingTimeEstimate() (float64, bool) {
	return s.readingTimeEstimate.Value, s.readingTimeEstimate.Valid
}

func (s *Scene) DecisionDeadline() (float64, bool) {
	return s.decisionDeadline.Value, s.decisionDeadline.Valid
}

// Payload converts the scene back to its wire shape with every default
// filled in. Validating the result yields an equal scene.
func (s *Scene) Payload() Payload {
	p := Payload{
		ID:                  s.id,
		Duration:            s.duration,
		States:              make([]StatePayload, 0, len(s.states)),
		Choices:             make(map[string]ChoicePayload, len(s.catalog)),
		ReadingTimeEstimate: s.readingTimeEstimate.ptr(),
		DecisionDeadline:    s.decisionDeadline.ptr(),
	}

	for id, def := range s.catalog {
		p.Choices[id] = ChoicePayload{
			ID:              def.ID,
			Text:            def.Text,
			BaseProbability: Some(def.BaseProbability).ptr(),
			RTFactor:        Some(def.RTFactor).ptr(),
			TimeToRead:      Some(def.TimeToRead).ptr(),
		}
	}

	for _, st := range s.states {
		sp := StatePayload{
			ID:         st.ID,
			At:         st.At,
			Duration:   st.Duration,
			Text:       st.Text,
			TimeToRead: Some(st.TimeToRead).ptr(),
			Choices:    make([]ScheduledChoicePayload, 0, len(st.choices)),
		}
		for _, sc := range st.choices {
			sp.Choices = append(sp.Choices, ScheduledChoicePayload{
				ChoiceID:        sc.ChoiceID,
				Birth:           sc.Birth,
				Death:           sc.Death,
				OverrideText:    sc.OverrideText.ptr(),
				BaseProbability: sc.BaseProbability.ptr(),
				RTFactor:        sc.RTFactor.ptr(),
			})
		}
		p.States = append(p.States, sp)
	}

	return p
}

// MarshalJSON encodes the scene in its wire shape.
func (s *Scene) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Payload())
}

// UnmarshalJSON decodes and validates a scene. On failure the receiver is
// left untouched.
func (s *Scene) UnmarshalJSON(data []byte) error {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	v, err := Validate(p)
	if err != nil {
		return err
	}
	*s = *v
	return nil
}
