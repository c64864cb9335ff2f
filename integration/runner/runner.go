package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/scene-engine/internal/handlers"
	"github.com/jwebster45206/scene-engine/pkg/chat"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running scene-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
	FixtureOverride   string // If set, overrides the fixture for all test cases
	KeepScenes        bool   // skip deleting scenes after a run
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 3 * time.Minute},
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Sequences may reference other sequences
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite creates a scene for the suite, runs every step against it, then
// deletes the scene.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	sceneReq := chat.SceneRequest{Fixture: suite.Fixture, Prompt: suite.Prompt}
	if r.FixtureOverride != "" {
		sceneReq = chat.SceneRequest{Fixture: r.FixtureOverride}
	}
	sceneID, err := r.createScene(ctx, sceneReq)
	if err != nil {
		result.Error = fmt.Errorf("failed to create scene: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.SceneID = sceneID

	if !r.KeepScenes {
		defer func() {
			if err := r.deleteScene(context.WithoutCancel(ctx), sceneID); err != nil {
				r.Logger("    warning: failed to delete scene %s: %v", sceneID, err)
			}
		}()
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.executeStep(ctx, sceneID, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) createScene(ctx context.Context, sceneReq chat.SceneRequest) (uuid.UUID, error) {
	body, err := json.Marshal(sceneReq)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to marshal create request: %w", err)
	}

	status, respBody, err := r.do(ctx, http.MethodPost, r.BaseURL+"/v1/scenes", body)
	if err != nil {
		return uuid.UUID{}, err
	}
	if status != http.StatusCreated {
		return uuid.UUID{}, fmt.Errorf("expected status 201, got %d: %s", status, respBody)
	}

	var created handlers.CreateSceneResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to decode create response: %w", err)
	}
	return created.SceneID, nil
}

func (r *Runner) deleteScene(ctx context.Context, sceneID uuid.UUID) error {
	status, respBody, err := r.do(ctx, http.MethodDelete, r.sceneURL(sceneID, ""), nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent && status != http.StatusNotFound {
		return fmt.Errorf("unexpected status %d: %s", status, respBody)
	}
	return nil
}

func (r *Runner) executeStep(ctx context.Context, sceneID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	var err error
	switch step.Action {
	case ActionActive:
		err = r.runActive(ctx, sceneID, step)
	case ActionChoices:
		err = r.runChoices(ctx, sceneID, step)
	case ActionResolve:
		err = r.runResolve(ctx, sceneID, step)
	default:
		err = fmt.Errorf("unknown action %q", step.Action)
	}

	result.Duration = time.Since(start)
	result.Error = err
	result.Success = err == nil
	return result
}

func (r *Runner) runActive(ctx context.Context, sceneID uuid.UUID, step TestStep) error {
	respBody, done, err := r.query(ctx, sceneID, "active", step)
	if err != nil || done {
		return err
	}

	var active handlers.ActiveStateResponse
	if err := json.Unmarshal(respBody, &active); err != nil {
		return fmt.Errorf("failed to decode active state: %w", err)
	}
	return checkActive(step.Expectations, active)
}

func (r *Runner) runChoices(ctx context.Context, sceneID uuid.UUID, step TestStep) error {
	respBody, done, err := r.query(ctx, sceneID, "choices", step)
	if err != nil || done {
		return err
	}

	var visible handlers.VisibleChoicesResponse
	if err := json.Unmarshal(respBody, &visible); err != nil {
		return fmt.Errorf("failed to decode visible choices: %w", err)
	}
	return checkChoices(step.Expectations, visible)
}

func (r *Runner) runResolve(ctx context.Context, sceneID uuid.UUID, step TestStep) error {
	body, err := json.Marshal(handlers.ResolveRequest{
		T:            step.T,
		ChoiceID:     step.ChoiceID,
		ResponseTime: step.ResponseTime,
		TimeLimit:    step.TimeLimit,
		Seed:         step.Seed,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal resolve request: %w", err)
	}

	status, respBody, err := r.do(ctx, http.MethodPost, r.sceneURL(sceneID, "resolve"), body)
	if err != nil {
		return err
	}
	if done, err := checkStatus(step.Expectations, status, respBody); err != nil || done {
		return err
	}

	var resolved handlers.ResolveResponse
	if err := json.Unmarshal(respBody, &resolved); err != nil {
		return fmt.Errorf("failed to decode resolution: %w", err)
	}
	return checkResolve(step.Expectations, resolved)
}

// query GETs a time-indexed scene view. done is true when the expected
// status was not 200 and the body needs no further checks.
func (r *Runner) query(ctx context.Context, sceneID uuid.UUID, action string, step TestStep) ([]byte, bool, error) {
	u := r.sceneURL(sceneID, action) + "?" + url.Values{
		"t": []string{strconv.FormatFloat(step.T, 'f', -1, 64)},
	}.Encode()

	status, respBody, err := r.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, err
	}
	done, err := checkStatus(step.Expectations, status, respBody)
	return respBody, done, err
}

func (r *Runner) sceneURL(sceneID uuid.UUID, action string) string {
	u := r.BaseURL + "/v1/scenes/" + sceneID.String()
	if action != "" {
		u += "/" + action
	}
	return u
}

func (r *Runner) do(ctx context.Context, method, u string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s failed: %w", method, u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func checkStatus(exp Expectations, status int, body []byte) (bool, error) {
	want := http.StatusOK
	if exp.Status != nil {
		want = *exp.Status
	}
	if status != want {
		return false, fmt.Errorf("expected status %d, got %d: %s", want, status, strings.TrimSpace(string(body)))
	}
	return want != http.StatusOK, nil
}

func checkActive(exp Expectations, active handlers.ActiveStateResponse) error {
	var errs []string

	if exp.StateID != nil && active.State.ID != *exp.StateID {
		errs = append(errs, fmt.Sprintf("state_id: expected %q, got %q", *exp.StateID, active.State.ID))
	}
	if exp.TimedOut != nil && active.TimedOut != *exp.TimedOut {
		errs = append(errs, fmt.Sprintf("timed_out: expected %v, got %v", *exp.TimedOut, active.TimedOut))
	}

	return joinErrors(errs)
}

func checkChoices(exp Expectations, visible handlers.VisibleChoicesResponse) error {
	var errs []string

	if exp.StateID != nil && visible.StateID != *exp.StateID {
		errs = append(errs, fmt.Sprintf("state_id: expected %q, got %q", *exp.StateID, visible.StateID))
	}

	got := make([]string, len(visible.Choices))
	texts := make(map[string]string, len(visible.Choices))
	for i, c := range visible.Choices {
		got[i] = c.ChoiceID
		texts[c.ChoiceID] = c.Text
	}

	if exp.NoChoices && len(got) > 0 {
		errs = append(errs, fmt.Sprintf("choices: expected none, got %v", got))
	}
	if exp.Choices != nil && strings.Join(got, ",") != strings.Join(exp.Choices, ",") {
		errs = append(errs, fmt.Sprintf("choices: expected %v, got %v", exp.Choices, got))
	}
	for id, want := range exp.ChoiceText {
		text, ok := texts[id]
		if !ok {
			errs = append(errs, fmt.Sprintf("choice_text: choice %q not visible", id))
			continue
		}
		if text != want {
			errs = append(errs, fmt.Sprintf("choice_text[%s]: expected %q, got %q", id, want, text))
		}
	}

	return joinErrors(errs)
}

func checkResolve(exp Expectations, resolved handlers.ResolveResponse) error {
	var errs []string

	if exp.StateID != nil && resolved.StateID != *exp.StateID {
		errs = append(errs, fmt.Sprintf("state_id: expected %q, got %q", *exp.StateID, resolved.StateID))
	}
	if exp.MinProbability != nil && resolved.Probability < *exp.MinProbability {
		errs = append(errs, fmt.Sprintf("probability: expected >= %g, got %g", *exp.MinProbability, resolved.Probability))
	}
	if exp.MaxProbability != nil && resolved.Probability > *exp.MaxProbability {
		errs = append(errs, fmt.Sprintf("probability: expected <= %g, got %g", *exp.MaxProbability, resolved.Probability))
	}
	if exp.Roll != nil && resolved.Roll != *exp.Roll {
		errs = append(errs, fmt.Sprintf("roll: expected %d, got %d", *exp.Roll, resolved.Roll))
	}
	if exp.Category != nil && string(resolved.Category) != *exp.Category {
		errs = append(errs, fmt.Sprintf("category: expected %q, got %q", *exp.Category, resolved.Category))
	}
	if exp.Success != nil && resolved.Success != *exp.Success {
		errs = append(errs, fmt.Sprintf("success: expected %v, got %v", *exp.Success, resolved.Success))
	}
	if resolved.Success != resolved.Category.Succeeded() {
		errs = append(errs, fmt.Sprintf("success %v disagrees with category %q", resolved.Success, resolved.Category))
	}

	return joinErrors(errs)
}

func joinErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("expectations failed:\n  - %s", strings.Join(errs, "\n  - "))
}
