package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"go.viam.com/chainik/logging"
	"go.viam.com/chainik/motionplan/ik"
)

// Read reads a scene from the given file, expanding environment variables first.
func Read(filePath string, logger logging.Logger) (*Scene, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a scene from the given reader and specifies
// where, if applicable, the file the reader originated from.
// Options missing from the file keep their defaults.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Scene, error) {
	scene := Scene{
		ConfigFilePath: originalPath,
		Solver:         SolverGradient,
		Threshold:      defaultThreshold,
		Options:        ik.NewDefaultOptions(),
	}
	if err := json.NewDecoder(r).Decode(&scene); err != nil {
		return nil, errors.Wrapf(err, "failed to decode scene from json")
	}
	if err := scene.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid scene %q", originalPath)
	}
	logger.Debugw("scene loaded",
		"path", originalPath,
		"joints", len(scene.Joints),
		"obstacles", len(scene.Obstacles),
		"solver", scene.Solver,
	)
	return &scene, nil
}
