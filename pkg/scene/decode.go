package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeJSON decodes a scene payload. With strict set, unknown fields are
// rejected. The payload still has to go through Validate.
func DecodeJSON(data []byte, strict bool) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}

	var p Payload
	if err := dec.Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("failed to decode scene json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Payload{}, fmt.Errorf("failed to decode scene json: unexpected data after scene object")
	}
	return p, nil
}

// DecodeYAML decodes a scene payload from YAML, rejecting unknown fields.
func DecodeYAML(data []byte) (Payload, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Payload
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return Payload{}, fmt.Errorf("failed to decode scene yaml: empty document")
		}
		return Payload{}, fmt.Errorf("failed to decode scene yaml: %w", err)
	}
	return p, nil
}

// DecodeFile reads a payload from a .json, .yaml or .yml file. JSON files are
// decoded strictly.
func DecodeFile(path string) (Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to read scene file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeJSON(data, true)
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return Payload{}, fmt.Errorf("unsupported scene file extension: %s", filepath.Base(path))
	}
}

// Parse decodes JSON leniently and validates it.
func Parse(data []byte) (*Scene, error) {
	p, err := DecodeJSON(data, false)
	if err != nil {
		return nil, err
	}
	return Validate(p)
}
