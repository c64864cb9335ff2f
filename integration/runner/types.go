package runner

import (
	"time"

	"github.com/google/uuid"
)

// Step actions
const (
	ActionActive  = "active"
	ActionChoices = "choices"
	ActionResolve = "resolve"
)

// TestSuite defines a complete integration test scenario
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name    string     `json:"name"`
	Fixture string     `json:"fixture,omitempty"` // scene fixture to create the scene from
	Prompt  string     `json:"prompt,omitempty"`  // generate the scene instead of loading a fixture
	Steps   []TestStep `json:"steps,omitempty"`
	Cases   []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep queries or resolves against the scene at time T.
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Action       string       `json:"action"`
	T            float64      `json:"t"`
	ChoiceID     string       `json:"choice_id,omitempty"`
	ResponseTime *float64     `json:"response_time,omitempty"`
	TimeLimit    *float64     `json:"time_limit,omitempty"`
	Seed         *int64       `json:"seed,omitempty"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	Status *int `json:"status,omitempty"` // defaults to 200

	// Active state
	StateID  *string `json:"state_id,omitempty"`
	TimedOut *bool   `json:"timed_out,omitempty"`

	// Visible choices, in schedule order
	Choices    []string          `json:"choices,omitempty"`
	NoChoices  bool              `json:"no_choices,omitempty"`
	ChoiceText map[string]string `json:"choice_text,omitempty"`

	// Resolution
	MinProbability *float64 `json:"min_probability,omitempty"`
	MaxProbability *float64 `json:"max_probability,omitempty"`
	Roll           *int     `json:"roll,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Success        *bool    `json:"success,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
}

// TestJob represents a test suite to be executed by a worker
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	SceneID  uuid.UUID // scene created for this run
}
