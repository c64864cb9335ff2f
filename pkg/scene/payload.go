package scene

// Payload is the untrusted wire shape of a scene, as produced by the LLM
// generator or read from a fixture file. Optional fields are pointers so a
// missing value can be told apart from an explicit zero.
type Payload struct {
	ID                  string                   `json:"id" yaml:"id"`
	Duration            float64                  `json:"duration" yaml:"duration"`
	States              []StatePayload           `json:"states" yaml:"states"`
	Choices             map[string]ChoicePayload `json:"choices" yaml:"choices"`
	ReadingTimeEstimate *float64                 `json:"reading_time_estimate,omitempty" yaml:"reading_time_estimate,omitempty"`
	DecisionDeadline    *float64                 `json:"decision_deadline,omitempty" yaml:"decision_deadline,omitempty"`
}

// StatePayload is a time-bounded segment of the scene. At is scene-relative.
type StatePayload struct {
	ID         string                   `json:"id" yaml:"id"`
	At         float64                  `json:"at" yaml:"at"`
	Duration   float64                  `json:"duration" yaml:"duration"`
	Text       string                   `json:"text" yaml:"text"`
	TimeToRead *float64                 `json:"time_to_read,omitempty" yaml:"time_to_read,omitempty"`
	Choices    []ScheduledChoicePayload `json:"choices" yaml:"choices"`
}

// ScheduledChoicePayload places a catalog choice inside a state. Birth and
// Death are inclusive and relative to the state's start.
type ScheduledChoicePayload struct {
	ChoiceID        string   `json:"choice_id" yaml:"choice_id"`
	Birth           float64  `json:"birth" yaml:"birth"`
	Death           float64  `json:"death" yaml:"death"`
	OverrideText    *string  `json:"override_text,omitempty" yaml:"override_text,omitempty"`
	BaseProbability *float64 `json:"base_probability,omitempty" yaml:"base_probability,omitempty"`
	RTFactor        *float64 `json:"rt_factor,omitempty" yaml:"rt_factor,omitempty"`
}

// ChoicePayload is a catalog entry.
type ChoicePayload struct {
	ID              string   `json:"id" yaml:"id"`
	Text            string   `json:"text" yaml:"text"`
	BaseProbability *float64 `json:"base_probability,omitempty" yaml:"base_probability,omitempty"`
	RTFactor        *float64 `json:"rt_factor,omitempty" yaml:"rt_factor,omitempty"`
	TimeToRead      *float64 `json:"time_to_read,omitempty" yaml:"time_to_read,omitempty"`
}
