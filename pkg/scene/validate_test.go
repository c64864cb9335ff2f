package scene

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func ptr[T any](v T) *T { return &v }

// twoStatePayload is a 10 second scene split into two adjacent states.
func twoStatePayload() Payload {
	return Payload{
		ID:       "ambush",
		Duration: 10,
		States: []StatePayload{
			{
				ID:       "approach",
				At:       0,
				Duration: 5,
				Text:     "Footsteps behind you.",
				Choices: []ScheduledChoicePayload{
					{ChoiceID: "run", Birth: 1, Death: 3},
					{ChoiceID: "hide", Birth: 0, Death: 5},
				},
			},
			{
				ID:       "cornered",
				At:       5,
				Duration: 5,
				Text:     "A blade glints in the alley.",
				Choices: []ScheduledChoicePayload{
					{ChoiceID: "run", Birth: 0, Death: 2, OverrideText: ptr("Sprint for the gap"), BaseProbability: ptr(0.9)},
					{ChoiceID: "fight", Birth: 1, Death: 4},
				},
			},
		},
		Choices: map[string]ChoicePayload{
			"run":   {ID: "run", Text: "Run", BaseProbability: ptr(0.3), RTFactor: ptr(0.5)},
			"hide":  {ID: "hide", Text: "Hide behind the crates", TimeToRead: ptr(0.5)},
			"fight": {Text: "Draw your knife", BaseProbability: ptr(0.4), RTFactor: ptr(1.0)},
		},
		DecisionDeadline: ptr(8.0),
	}
}

func TestValidate_ValidScene(t *testing.T) {
	s, err := Validate(twoStatePayload())
	if err != nil {
		t.Fatalf("Expected valid scene, got %v", err)
	}

	if s.ID() != "ambush" {
		t.Errorf("Expected id 'ambush', got %q", s.ID())
	}
	if len(s.States()) != 2 {
		t.Fatalf("Expected 2 states, got %d", len(s.States()))
	}

	fight, ok := s.Choice("fight")
	if !ok {
		t.Fatal("Expected catalog entry 'fight'")
	}
	if fight.ID != "fight" {
		t.Errorf("Expected empty catalog id to take its key, got %q", fight.ID)
	}

	hide, _ := s.Choice("hide")
	if hide.BaseProbability != DefaultBaseProbability || hide.RTFactor != DefaultRTFactor {
		t.Errorf("Expected defaults (%g, %g), got (%g, %g)", DefaultBaseProbability, DefaultRTFactor, hide.BaseProbability, hide.RTFactor)
	}

	deadline, ok := s.DecisionDeadline()
	if !ok || deadline != 8 {
		t.Errorf("Expected decision deadline 8, got %g (present=%v)", deadline, ok)
	}
	if _, ok := s.ReadingTimeEstimate(); ok {
		t.Error("Expected reading time estimate to be absent")
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Payload)
		reason Reason
		entity string
	}{
		{
			name:   "no states",
			mutate: func(p *Payload) { p.States = nil },
			reason: ReasonNoStates,
			entity: "ambush",
		},
		{
			name: "states out of order",
			mutate: func(p *Payload) {
				p.States[0], p.States[1] = p.States[1], p.States[0]
			},
			reason: ReasonUnsortedStates,
			entity: "approach",
		},
		{
			name: "state past scene end",
			mutate: func(p *Payload) {
				p.States[1].At = 8
				p.States[1].Duration = 3
			},
			reason: ReasonStateOutOfBounds,
			entity: "cornered",
		},
		{
			name:   "state with zero duration",
			mutate: func(p *Payload) { p.States[0].Duration = 0 },
			reason: ReasonStateOutOfBounds,
			entity: "approach",
		},
		{
			name:   "state with negative start",
			mutate: func(p *Payload) { p.States[0].At = -1 },
			reason: ReasonStateOutOfBounds,
			entity: "approach",
		},
		{
			name:   "state without id",
			mutate: func(p *Payload) { p.States[1].ID = "" },
			reason: ReasonInvalidField,
		},
		{
			name:   "choice window past state end",
			mutate: func(p *Payload) { p.States[0].Choices[1].Death = 5.5 },
			reason: ReasonChoiceOutOfBounds,
			entity: "hide",
		},
		{
			name:   "choice death before birth",
			mutate: func(p *Payload) { p.States[0].Choices[0].Death = 0.5 },
			reason: ReasonChoiceOutOfBounds,
			entity: "run",
		},
		{
			name:   "choice with negative birth",
			mutate: func(p *Payload) { p.States[0].Choices[0].Birth = -0.1 },
			reason: ReasonChoiceOutOfBounds,
			entity: "run",
		},
		{
			name: "unknown choice reference",
			mutate: func(p *Payload) {
				p.States[1].Choices[1].ChoiceID = "surrender"
			},
			reason: ReasonUnknownChoice,
			entity: "surrender",
		},
		{
			name:   "deadline past scene end",
			mutate: func(p *Payload) { p.DecisionDeadline = ptr(10.5) },
			reason: ReasonDeadlineExceeded,
			entity: "ambush",
		},
		{
			name:   "scene too short",
			mutate: func(p *Payload) { p.Duration = 0.4 },
			reason: ReasonInvalidField,
			entity: "ambush",
		},
		{
			name:   "scene duration NaN",
			mutate: func(p *Payload) { p.Duration = math.NaN() },
			reason: ReasonInvalidField,
			entity: "ambush",
		},
		{
			name:   "missing scene id",
			mutate: func(p *Payload) { p.ID = "" },
			reason: ReasonInvalidField,
		},
		{
			name: "catalog probability out of range",
			mutate: func(p *Payload) {
				c := p.Choices["run"]
				c.BaseProbability = ptr(1.2)
				p.Choices["run"] = c
			},
			reason: ReasonInvalidField,
			entity: "run",
		},
		{
			name: "catalog rt factor out of range",
			mutate: func(p *Payload) {
				c := p.Choices["hide"]
				c.RTFactor = ptr(-0.1)
				p.Choices["hide"] = c
			},
			reason: ReasonInvalidField,
			entity: "hide",
		},
		{
			name: "catalog key mismatch",
			mutate: func(p *Payload) {
				c := p.Choices["run"]
				c.ID = "flee"
				p.Choices["run"] = c
			},
			reason: ReasonCatalogMismatch,
			entity: "run",
		},
		{
			name:   "override probability out of range",
			mutate: func(p *Payload) { p.States[1].Choices[0].BaseProbability = ptr(2.0) },
			reason: ReasonInvalidField,
			entity: "run",
		},
		{
			name:   "override rt factor out of range",
			mutate: func(p *Payload) { p.States[1].Choices[0].RTFactor = ptr(1.5) },
			reason: ReasonInvalidField,
			entity: "run",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := twoStatePayload()
			tt.mutate(&p)

			s, err := Validate(p)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if s != nil {
				t.Error("Expected no scene on failure")
			}
			if !errors.Is(err, ErrInvalidScene) {
				t.Errorf("Expected error to match ErrInvalidScene, got %v", err)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *ValidationError, got %T", err)
			}
			if verr.Reason != tt.reason {
				t.Errorf("Expected reason %s, got %s (%s)", tt.reason, verr.Reason, verr.Message)
			}
			if verr.Entity != tt.entity {
				t.Errorf("Expected entity %q, got %q", tt.entity, verr.Entity)
			}
		})
	}
}

func TestValidate_ExceedsSceneDurationMessage(t *testing.T) {
	p := twoStatePayload()
	p.States[1].At = 8
	p.States[1].Duration = 3

	_, err := Validate(p)
	if err == nil {
		t.Fatal("Expected error")
	}
	want := "invalid scene: state 'cornered' exceeds scene duration (end=11, duration=10)"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestValidate_CheckOrder(t *testing.T) {
	// Every category is broken at once; the documented order decides which
	// one is reported.
	empty := Payload{
		ID:       "",
		Duration: 0.1,
		Choices:  map[string]ChoicePayload{"run": {Text: "Run", BaseProbability: ptr(2.0)}},
	}
	_, err := Validate(empty)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != ReasonNoStates {
		t.Errorf("Expected emptiness failure before field and catalog failures, got %v", err)
	}

	p := twoStatePayload()
	p.States[0], p.States[1] = p.States[1], p.States[0]
	p.States[0].Duration = 20
	p.States[1].Choices[0].ChoiceID = "nope"
	p.DecisionDeadline = ptr(50.0)

	_, err = Validate(p)
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %v", err)
	}
	if verr.Reason != ReasonUnsortedStates {
		t.Errorf("Expected ordering failure first, got %s", verr.Reason)
	}

	p = twoStatePayload()
	p.States[0].Duration = 20
	p.States[0].Choices[0].ChoiceID = "nope"
	_, err = Validate(p)
	if !errors.As(err, &verr) || verr.Reason != ReasonStateOutOfBounds {
		t.Errorf("Expected bounds failure before referential failure, got %s", verr.Reason)
	}

	p = twoStatePayload()
	p.States[1].Choices[1].ChoiceID = "nope"
	p.DecisionDeadline = ptr(50.0)
	_, err = Validate(p)
	if !errors.As(err, &verr) || verr.Reason != ReasonUnknownChoice {
		t.Errorf("Expected referential failure before deadline failure, got %s", verr.Reason)
	}
}

func TestValidate_Tolerance(t *testing.T) {
	p := twoStatePayload()
	p.States[1].Duration = 5 + 5e-7
	p.States[0].Choices[1].Death = 5 + 5e-7

	if _, err := Validate(p); err != nil {
		t.Errorf("Expected drift within tolerance to pass, got %v", err)
	}
}

func TestValidate_OrderingTies(t *testing.T) {
	p := twoStatePayload()
	p.States[1].At = 0
	p.States[1].Duration = 5

	if _, err := Validate(p); err != nil {
		t.Errorf("Expected states with equal starts to be valid, got %v", err)
	}
}

func TestValidate_ZeroWidthWindow(t *testing.T) {
	p := twoStatePayload()
	p.States[0].Choices[0].Birth = 2
	p.States[0].Choices[0].Death = 2

	if _, err := Validate(p); err != nil {
		t.Errorf("Expected death == birth to be valid, got %v", err)
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	p := twoStatePayload()
	p.ReadingTimeEstimate = ptr(3.5)

	first, err := Validate(p)
	if err != nil {
		t.Fatalf("Failed to validate: %v", err)
	}
	second, err := Validate(first.Payload())
	if err != nil {
		t.Fatalf("Failed to re-validate: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected re-validated scene to equal the original\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestValidate_DoesNotAliasPayload(t *testing.T) {
	p := twoStatePayload()
	s, err := Validate(p)
	if err != nil {
		t.Fatalf("Failed to validate: %v", err)
	}

	p.States[0].Choices[0].Birth = 4
	*p.States[1].Choices[0].BaseProbability = 0.1

	st, _ := s.State("approach")
	if got := st.Choices()[0].Birth; got != 1 {
		t.Errorf("Expected scene to be unaffected by payload changes, got birth %g", got)
	}
	st, _ = s.State("cornered")
	if got := st.Choices()[0].BaseProbability.Value; got != 0.9 {
		t.Errorf("Expected override to be copied, got %g", got)
	}
}
