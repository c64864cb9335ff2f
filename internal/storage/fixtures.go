package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/scene-engine/pkg/scene"
)

// Fixture operations (filesystem-backed)

func isSceneFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func (r *RedisStorage) scenesDir() string {
	return filepath.Join(r.dataDir, "scenes")
}

// ListFixtures skips files that fail to decode or validate.
func (r *RedisStorage) ListFixtures(ctx context.Context) (map[string]string, error) {
	fixtures := make(map[string]string)

	err := filepath.WalkDir(r.scenesDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isSceneFile(path) {
			return nil
		}

		s, err := loadFixture(path)
		if err != nil {
			r.logger.Warn("Skipping invalid scene fixture", "path", path, "error", err)
			return nil
		}

		fixtures[s.ID()] = filepath.Base(path)
		return nil
	})

	if err != nil {
		r.logger.Error("Failed to walk scenes directory", "error", err)
		return nil, fmt.Errorf("failed to list fixtures: %w", err)
	}

	return fixtures, nil
}

func (r *RedisStorage) GetFixture(ctx context.Context, filename string) (*scene.Scene, error) {
	if filename != filepath.Base(filename) || !isSceneFile(filename) {
		return nil, fmt.Errorf("fixture %q: %w", filename, ErrNotFound)
	}

	path := filepath.Join(r.scenesDir(), filename)
	r.logger.Debug("Loading scene fixture", "filename", filename, "full_path", path)

	s, err := loadFixture(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("fixture %q: %w", filename, ErrNotFound)
		}
		return nil, err
	}
	return s, nil
}

func loadFixture(path string) (*scene.Scene, error) {
	p, err := scene.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return scene.Validate(p)
}
