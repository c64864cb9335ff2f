package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustValidate(t *testing.T, p Payload) *Scene {
	t.Helper()
	s, err := Validate(p)
	require.NoError(t, err)
	return s
}

// gappedPayload has states at [2,4] and [6,8] inside a 10 second scene.
func gappedPayload() Payload {
	return Payload{
		ID:       "gapped",
		Duration: 10,
		States: []StatePayload{
			{ID: "first", At: 2, Duration: 2, Text: "first"},
			{ID: "second", At: 6, Duration: 2, Text: "second", Choices: []ScheduledChoicePayload{
				{ChoiceID: "wait", Birth: 0, Death: 2},
			}},
		},
		Choices: map[string]ChoicePayload{
			"wait": {Text: "Wait"},
		},
	}
}

func TestActiveState(t *testing.T) {
	two := mustValidate(t, twoStatePayload())

	gapped := mustValidate(t, gappedPayload())

	tests := []struct {
		name  string
		scene *Scene
		t     float64
		want  string
	}{
		{"inside first state", two, 2.5, "approach"},
		{"shared boundary goes to later state", two, 5.0, "cornered"},
		{"scene start", two, 0, "approach"},
		{"scene end", two, 10, "cornered"},
		{"past scene end", two, 42, "cornered"},
		{"before everything", two, -3, "approach"},
		{"before first state", gapped, 1, "first"},
		{"gap uses preceding state", gapped, 5, "first"},
		{"after last state", gapped, 9.5, "second"},
		{"inside second", gapped, 7, "second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scene.ActiveState(tt.t).ID)
		})
	}
}

func TestZeroScene(t *testing.T) {
	var s Scene
	assert.Equal(t, State{}, s.ActiveState(1))
	assert.Empty(t, s.VisibleChoices(1))
	assert.Equal(t, 0.0, s.Progress(1))
	assert.True(t, s.TimedOut(0))

	_, err := Validate(s.Payload())
	assert.ErrorIs(t, err, ErrInvalidScene)
}

func TestActiveState_EqualStarts(t *testing.T) {
	p := Payload{
		ID:       "ties",
		Duration: 6,
		States: []StatePayload{
			{ID: "a", At: 1, Duration: 2},
			{ID: "b", At: 1, Duration: 4},
		},
	}
	s := mustValidate(t, p)

	assert.Equal(t, "b", s.ActiveState(2).ID, "covering states with equal starts resolve to the last listed")
	assert.Equal(t, "b", s.ActiveState(5.5).ID, "preceding states with equal starts resolve to the last listed")
	assert.Equal(t, "a", s.ActiveState(0).ID, "earliest fallback resolves to the first listed")
}

func TestActiveState_Deterministic(t *testing.T) {
	s := mustValidate(t, twoStatePayload())
	for _, ts := range []float64{-1, 0, 2.5, 5, 7.25, 10, 11} {
		first := s.ActiveState(ts)
		for i := 0; i < 50; i++ {
			require.Equal(t, first, s.ActiveState(ts))
		}
	}
}

func TestVisibleChoices(t *testing.T) {
	s := mustValidate(t, twoStatePayload())

	ids := func(vcs []VisibleChoice) []string {
		out := make([]string, 0, len(vcs))
		for _, vc := range vcs {
			out = append(out, vc.Scheduled.ChoiceID)
		}
		return out
	}

	assert.Equal(t, []string{"run", "hide"}, ids(s.VisibleChoices(2.0)), "order follows the schedule")
	assert.Equal(t, []string{"hide"}, ids(s.VisibleChoices(4.0)))
	assert.Equal(t, []string{"run", "hide"}, ids(s.VisibleChoices(1.0)), "birth is inclusive")
	assert.Equal(t, []string{"run", "hide"}, ids(s.VisibleChoices(3.0)), "death is inclusive")
	assert.Equal(t, []string{"run"}, ids(s.VisibleChoices(5.0)), "boundary belongs to the later state")
	assert.Equal(t, []string{"run", "fight"}, ids(s.VisibleChoices(6.5)))
	assert.Equal(t, []string{"fight"}, ids(s.VisibleChoices(8.5)))
}

func TestVisibleChoices_Window(t *testing.T) {
	build := func(birth, death float64) *Scene {
		return mustValidate(t, Payload{
			ID:       "window",
			Duration: 5,
			States: []StatePayload{{ID: "only", At: 0, Duration: 5, Choices: []ScheduledChoicePayload{
				{ChoiceID: "act", Birth: birth, Death: death},
			}}},
			Choices: map[string]ChoicePayload{"act": {Text: "Act"}},
		})
	}

	assert.Len(t, build(1, 3).VisibleChoices(2.0), 1)
	assert.Empty(t, build(3, 5).VisibleChoices(2.0))
}

func TestVisibleChoices_EmptyIsNotNil(t *testing.T) {
	s := mustValidate(t, twoStatePayload())
	got := s.VisibleChoices(9.5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestVisibleChoices_LocalTimePassThrough(t *testing.T) {
	s := mustValidate(t, gappedPayload())

	// t=9 is past the second state's end, local time 3 is past 'wait'.
	assert.Empty(t, s.VisibleChoices(9))
	// t=8 is the final inclusive instant of 'wait'.
	got := s.VisibleChoices(8)
	require.Len(t, got, 1)
	assert.Equal(t, "wait", got[0].Scheduled.ChoiceID)
}

func TestResolvedText(t *testing.T) {
	def := ChoiceDefinition{ID: "run", Text: "Run"}

	assert.Equal(t, "Run", ResolvedText(def, ScheduledChoice{ChoiceID: "run"}))
	assert.Equal(t, "Sprint", ResolvedText(def, ScheduledChoice{ChoiceID: "run", OverrideText: Some("Sprint")}))
	assert.Equal(t, "Run", ResolvedText(def, ScheduledChoice{ChoiceID: "run", OverrideText: Some("")}), "empty override falls back")
}

func TestResolvedParams(t *testing.T) {
	def := ChoiceDefinition{ID: "run", BaseProbability: 0.3, RTFactor: 0.5}

	bp, rt := ResolvedParams(def, ScheduledChoice{ChoiceID: "run", BaseProbability: Some(0.9)})
	assert.Equal(t, 0.9, bp)
	assert.Equal(t, 0.5, rt)

	bp, rt = ResolvedParams(def, ScheduledChoice{ChoiceID: "run", RTFactor: Some(0.0)})
	assert.Equal(t, 0.3, bp)
	assert.Equal(t, 0.0, rt, "explicit zero override is honoured")

	bp, rt = ResolvedParams(def, ScheduledChoice{ChoiceID: "run"})
	assert.Equal(t, 0.3, bp)
	assert.Equal(t, 0.5, rt)
}

func TestVisibleChoice_ResolvesOverrides(t *testing.T) {
	s := mustValidate(t, twoStatePayload())

	got := s.VisibleChoices(5.5)
	require.NotEmpty(t, got)
	run := got[0]

	assert.Equal(t, "Sprint for the gap", run.Text())
	bp, rt := run.Params()
	assert.Equal(t, 0.9, bp)
	assert.Equal(t, 0.5, rt)
	assert.Equal(t, 2.0, run.Window())
}

func TestReadingPause(t *testing.T) {
	p := twoStatePayload()
	p.States[0].TimeToRead = ptr(1.5)
	s := mustValidate(t, p)

	st, ok := s.State("approach")
	require.True(t, ok)
	assert.InDelta(t, 2.0, s.ReadingPause(st), 1e-9)

	st, _ = s.State("cornered")
	assert.Equal(t, 0.0, s.ReadingPause(st))
}

func TestProgressAndTimeout(t *testing.T) {
	s := mustValidate(t, twoStatePayload())

	assert.Equal(t, 0.0, s.Progress(-1))
	assert.Equal(t, 0.25, s.Progress(2.5))
	assert.Equal(t, 1.0, s.Progress(15))

	assert.False(t, s.TimedOut(9.99))
	assert.True(t, s.TimedOut(10))
}

func TestScene_AccessorsReturnCopies(t *testing.T) {
	s := mustValidate(t, twoStatePayload())

	states := s.States()
	states[0].ID = "mutated"
	choices := states[1].Choices()
	choices[0].ChoiceID = "mutated"
	catalog := s.Catalog()
	delete(catalog, "run")

	assert.Equal(t, "approach", s.States()[0].ID)
	assert.Equal(t, "run", s.States()[1].Choices()[0].ChoiceID)
	_, ok := s.Choice("run")
	assert.True(t, ok)
}
