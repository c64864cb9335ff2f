package scene

// VisibleChoice pairs a scheduled choice with its resolved catalog entry.
type VisibleChoice struct {
	Definition ChoiceDefinition
	Scheduled  ScheduledChoice
}

// Text returns the display text for this occurrence.
func (vc VisibleChoice) Text() string {
	return ResolvedText(vc.Definition, vc.Scheduled)
}

// Params returns the base probability and response-time factor for this
// occurrence.
func (vc VisibleChoice) Params() (baseProbability, rtFactor float64) {
	return ResolvedParams(vc.Definition, vc.Scheduled)
}

// Window returns the length of the choice's visibility window.
func (vc VisibleChoice) Window() float64 {
	return vc.Scheduled.Window()
}

// ActiveState returns the state current at scene time t. t may lie outside
// the scene.
//
// Among states whose window covers t the one with the latest start wins, so
// a shared boundary belongs to the later state. When no window covers t the
// closest preceding state is used, and when t precedes every state the
// earliest one is. States with equal starts resolve to the one listed last
// for the first two rules and first for the last rule.
func (s *Scene) ActiveState(t float64) State {
	if len(s.states) == 0 {
		return State{}
	}

	best := -1
	for i, st := range s.states {
		if st.At <= t && t <= st.End() && (best < 0 || st.At >= s.states[best].At) {
			best = i
		}
	}
	if best >= 0 {
		return s.states[best]
	}

	for i, st := range s.states {
		if st.At <= t && (best < 0 || st.At >= s.states[best].At) {
			best = i
		}
	}
	if best >= 0 {
		return s.states[best]
	}

	best = 0
	for i, st := range s.states {
		if st.At < s.states[best].At {
			best = i
		}
	}
	return s.states[best]
}

// VisibleChoices returns the choices of the active state whose window covers
// t, in schedule order. State-local time is t minus the state's start and is
// not clamped, so a t outside every state window can still match.
func (s *Scene) VisibleChoices(t float64) []VisibleChoice {
	st := s.ActiveState(t)
	localT := t - st.At

	out := make([]VisibleChoice, 0, len(st.choices))
	for _, sc := range st.choices {
		if sc.Birth <= localT && localT <= sc.Death {
			out = append(out, VisibleChoice{
				Definition: s.catalog[sc.ChoiceID],
				Scheduled:  sc,
			})
		}
	}
	return out
}

// ResolvedText returns the override text when set and non-empty, otherwise
// the catalog text.
func ResolvedText(def ChoiceDefinition, sc ScheduledChoice) string {
	if sc.OverrideText.Valid && sc.OverrideText.Value != "" {
		return sc.OverrideText.Value
	}
	return def.Text
}

// ResolvedParams merges per-occurrence overrides over the catalog defaults,
// field by field.
func ResolvedParams(def ChoiceDefinition, sc ScheduledChoice) (baseProbability, rtFactor float64) {
	return sc.BaseProbability.Or(def.BaseProbability), sc.RTFactor.Or(def.RTFactor)
}

// ReadingPause returns the seconds needed to read a state's text and every
// choice it schedules.
func (s *Scene) ReadingPause(st State) float64 {
	total := st.TimeToRead
	for _, sc := range st.choices {
		total += s.catalog[sc.ChoiceID].TimeToRead
	}
	return total
}

// Progress returns the elapsed fraction of the scene at time t, in [0,1].
func (s *Scene) Progress(t float64) float64 {
	if s.duration <= 0 || t <= 0 {
		return 0
	}
	if x := t / s.duration; x < 1 {
		return x
	}
	return 1
}

// TimedOut reports whether the scene has run its full duration at time t.
func (s *Scene) TimedOut(t float64) bool {
	return t >= s.duration
}
