package scene

import (
	"maps"
	"math"
	"slices"
)

// Validate builds a Scene from an untrusted payload, enforcing every
// structural invariant. It returns the first violation as a
// *ValidationError, checking in this order:
//
//  1. at least one state
//  2. scene-level fields (id, duration, optional estimates)
//  3. catalog entries, by ascending key
//  4. states sorted by start time (ties allowed)
//  5. per-state fields and bounds, in state order
//  6. per-choice windows and catalog references, in schedule order
//  7. decision deadline within the scene
//
// Validate does not modify p and never returns a partial scene.
func Validate(p Payload) (*Scene, error) {
	if len(p.States) == 0 {
		return nil, failf(ReasonNoStates, p.ID, "scene '%s' has no states", p.ID)
	}

	if err := validateSceneFields(p); err != nil {
		return nil, err
	}

	catalog, err := buildCatalog(p.Choices)
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(p.States); i++ {
		if p.States[i].At < p.States[i-1].At {
			return nil, failf(ReasonUnsortedStates, p.States[i].ID,
				"states must be sorted by 'at': state '%s' starts at %g before state '%s' at %g",
				p.States[i].ID, p.States[i].At, p.States[i-1].ID, p.States[i-1].At)
		}
	}

	for _, sp := range p.States {
		if err := validateStateBounds(sp, p.Duration); err != nil {
			return nil, err
		}
	}

	states := make([]State, 0, len(p.States))
	for _, sp := range p.States {
		st, err := buildState(sp, catalog)
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}

	if p.DecisionDeadline != nil && *p.DecisionDeadline > p.Duration {
		return nil, failf(ReasonDeadlineExceeded, p.ID,
			"decision deadline %g exceeds scene duration %g", *p.DecisionDeadline, p.Duration)
	}

	return &Scene{
		id:                  p.ID,
		duration:            p.Duration,
		states:              states,
		catalog:             catalog,
		readingTimeEstimate: optionalFrom(p.ReadingTimeEstimate),
		decisionDeadline:    optionalFrom(p.DecisionDeadline),
	}, nil
}

func validateSceneFields(p Payload) error {
	if p.ID == "" {
		return failf(ReasonInvalidField, "", "scene id is required")
	}
	if !finite(p.Duration) || p.Duration < MinSceneDuration {
		return failf(ReasonInvalidField, p.ID, "scene '%s' duration %g must be at least %g", p.ID, p.Duration, MinSceneDuration)
	}
	if p.ReadingTimeEstimate != nil && !nonNegative(*p.ReadingTimeEstimate) {
		return failf(ReasonInvalidField, p.ID, "scene '%s' reading_time_estimate must be >= 0", p.ID)
	}
	if p.DecisionDeadline != nil && !nonNegative(*p.DecisionDeadline) {
		return failf(ReasonInvalidField, p.ID, "scene '%s' decision_deadline must be >= 0", p.ID)
	}
	return nil
}

func buildCatalog(choices map[string]ChoicePayload) (map[string]ChoiceDefinition, error) {
	catalog := make(map[string]ChoiceDefinition, len(choices))
	for _, key := range slices.Sorted(maps.Keys(choices)) {
		cp := choices[key]
		if key == "" {
			return nil, failf(ReasonInvalidField, "", "catalog key must not be empty")
		}

		id := cp.ID
		if id == "" {
			id = key
		}
		if id != key {
			return nil, failf(ReasonCatalogMismatch, key, "catalog key '%s' does not match choice id '%s'", key, cp.ID)
		}

		def := ChoiceDefinition{
			ID:              id,
			Text:            cp.Text,
			BaseProbability: optionalFrom(cp.BaseProbability).Or(DefaultBaseProbability),
			RTFactor:        optionalFrom(cp.RTFactor).Or(DefaultRTFactor),
			TimeToRead:      optionalFrom(cp.TimeToRead).Or(0),
		}
		if !unit(def.BaseProbability) {
			return nil, failf(ReasonInvalidField, id, "choice '%s' base_probability %g must be in [0,1]", id, def.BaseProbability)
		}
		if !unit(def.RTFactor) {
			return nil, failf(ReasonInvalidField, id, "choice '%s' rt_factor %g must be in [0,1]", id, def.RTFactor)
		}
		if !nonNegative(def.TimeToRead) {
			return nil, failf(ReasonInvalidField, id, "choice '%s' time_to_read must be >= 0", id)
		}
		catalog[id] = def
	}
	return catalog, nil
}

func validateStateBounds(sp StatePayload, sceneDuration float64) error {
	if sp.ID == "" {
		return failf(ReasonInvalidField, "", "state id is required")
	}
	if !nonNegative(sp.At) {
		return failf(ReasonStateOutOfBounds, sp.ID, "state '%s' starts before the scene (at=%g)", sp.ID, sp.At)
	}
	if !finite(sp.Duration) || sp.Duration <= 0 {
		return failf(ReasonStateOutOfBounds, sp.ID, "state '%s' duration %g must be > 0", sp.ID, sp.Duration)
	}
	if sp.At+sp.Duration > sceneDuration+Tolerance {
		return failf(ReasonStateOutOfBounds, sp.ID, "state '%s' exceeds scene duration (end=%g, duration=%g)",
			sp.ID, sp.At+sp.Duration, sceneDuration)
	}
	if sp.TimeToRead != nil && !nonNegative(*sp.TimeToRead) {
		return failf(ReasonInvalidField, sp.ID, "state '%s' time_to_read must be >= 0", sp.ID)
	}
	return nil
}

func buildState(sp StatePayload, catalog map[string]ChoiceDefinition) (State, error) {
	st := State{
		ID:         sp.ID,
		At:         sp.At,
		Duration:   sp.Duration,
		Text:       sp.Text,
		TimeToRead: optionalFrom(sp.TimeToRead).Or(0),
		choices:    make([]ScheduledChoice, 0, len(sp.Choices)),
	}

	for _, cp := range sp.Choices {
		if !nonNegative(cp.Birth) || !finite(cp.Death) || cp.Death < cp.Birth {
			return State{}, failf(ReasonChoiceOutOfBounds, cp.ChoiceID,
				"choice window for '%s' in state '%s' is invalid (birth=%g, death=%g)", cp.ChoiceID, sp.ID, cp.Birth, cp.Death)
		}
		if cp.Death > sp.Duration+Tolerance {
			return State{}, failf(ReasonChoiceOutOfBounds, cp.ChoiceID,
				"choice window for '%s' must be inside state '%s' duration (death=%g, duration=%g)", cp.ChoiceID, sp.ID, cp.Death, sp.Duration)
		}
		if _, ok := catalog[cp.ChoiceID]; !ok {
			return State{}, failf(ReasonUnknownChoice, cp.ChoiceID,
				"scheduled choice in state '%s' references unknown choice '%s'", sp.ID, cp.ChoiceID)
		}
		if cp.BaseProbability != nil && !unit(*cp.BaseProbability) {
			return State{}, failf(ReasonInvalidField, cp.ChoiceID,
				"base_probability override for '%s' in state '%s' must be in [0,1]", cp.ChoiceID, sp.ID)
		}
		if cp.RTFactor != nil && !unit(*cp.RTFactor) {
			return State{}, failf(ReasonInvalidField, cp.ChoiceID,
				"rt_factor override for '%s' in state '%s' must be in [0,1]", cp.ChoiceID, sp.ID)
		}

		st.choices = append(st.choices, ScheduledChoice{
			ChoiceID:        cp.ChoiceID,
			Birth:           cp.Birth,
			Death:           cp.Death,
			OverrideText:    optionalFrom(cp.OverrideText),
			BaseProbability: optionalFrom(cp.BaseProbability),
			RTFactor:        optionalFrom(cp.RTFactor),
		})
	}

	return st, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nonNegative(v float64) bool {
	return finite(v) && v >= 0
}

func unit(v float64) bool {
	return finite(v) && v >= 0 && v <= 1
}
