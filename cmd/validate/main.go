package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/scene-engine/pkg/scene"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintf(stderr, "Usage: validate <scene.json|scene.yaml>...\n")
		return 1
	}

	failed := 0
	for _, filename := range args {
		validator := &SceneValidator{}
		s, err := validator.validateFile(filename, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed: %v\n", err)
			failed++
			continue
		}
		printSummary(stdout, s)
	}

	if failed > 0 {
		fmt.Fprintf(stderr, "%d of %d scene files failed validation\n", failed, len(args))
		return 1
	}
	fmt.Fprintln(stdout, "All scene files are valid!")
	return 0
}

type SceneValidator struct {
	errors []string
}

func (v *SceneValidator) validateFile(filename string, out io.Writer) (*scene.Scene, error) {
	fmt.Fprintf(out, "Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	nameWithoutExt := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	if !isValidSceneFilename(nameWithoutExt) {
		return nil, fmt.Errorf("scene filename '%s' must be lowercase snake_case (e.g., my_scene.json, not my-scene.json or MyScene.json)", baseName)
	}

	p, err := scene.DecodeFile(filename)
	if err != nil {
		return nil, fmt.Errorf("file %s failed strict decoding: %w", filename, err)
	}

	s, err := scene.Validate(p)
	if err != nil {
		return nil, fmt.Errorf("file %s: %w", filename, err)
	}

	v.errors = nil
	v.validateIDs(p)
	if len(v.errors) > 0 {
		return nil, fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return s, nil
}

func (v *SceneValidator) validateIDs(p scene.Payload) {
	v.validateIDFormat("scene ID", p.ID)

	for _, st := range p.States {
		v.validateIDFormat("state ID", st.ID)
	}

	for key := range p.Choices {
		v.validateIDFormat("choice ID", key)
	}
}

func (v *SceneValidator) validateIDFormat(fieldName, id string) {
	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *SceneValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func printSummary(out io.Writer, s *scene.Scene) {
	fmt.Fprintf(out, "  scene %s: %gs, %d states, %d choices\n", s.ID(), s.Duration(), len(s.States()), len(s.Catalog()))
	if deadline, ok := s.DecisionDeadline(); ok {
		fmt.Fprintf(out, "  decision deadline: %gs\n", deadline)
	}
	for _, st := range s.States() {
		fmt.Fprintf(out, "  - %s [%g, %g] %d choices, reading pause %gs\n",
			st.ID, st.At, st.End(), len(st.Choices()), s.ReadingPause(st))
	}
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidSceneFilename(name string) bool {
	// Allow 'x.' prefix for experimental scenes
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
