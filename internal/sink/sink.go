// ============================================================================
// mDW WebR Client - Remote R Execution
// ============================================================================
//
// Package:     sink
// Description: Artifact sinks that persist decoded plot bytes
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package sink

import (
	"context"
	"fmt"

	mdwerror "github.com/msto63/webr/foundation/core/error"
	"github.com/msto63/webr/internal/webr"
	"github.com/msto63/webr/pkg/core/config"
)

// Sink stores named byte blobs and returns where they ended up
type Sink interface {
	Store(ctx context.Context, name string, data []byte) (string, error)
	Close() error
}

// Open creates the sink selected by the configuration
func Open(cfg config.SinkConfig) (Sink, error) {
	switch cfg.Type {
	case "", "file":
		s, err := NewFileSink(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := NewSQLiteSink(SQLiteConfig{Path: cfg.Path})
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, mdwerror.Newf("unknown sink type %q", cfg.Type).
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("sink.open")
	}
}

// SaveReport lists what SaveArtifacts stored and what it skipped
type SaveReport struct {
	Paths   []string
	Skipped []int
}

// SaveArtifacts stores every decodable artifact of result as
// <prefix>_<n>.<ext>, n counting from 1 by artifact position. Artifacts
// that failed to decode are skipped and listed in the report.
func SaveArtifacts(ctx context.Context, s Sink, result *webr.ExecutionResult, prefix string) (*SaveReport, error) {
	report := &SaveReport{}
	if result == nil {
		return report, nil
	}
	if prefix == "" {
		prefix = "plot"
	}

	for _, a := range result.Artifacts {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		data, err := a.Bytes()
		if err != nil {
			report.Skipped = append(report.Skipped, a.Index())
			continue
		}

		name := ArtifactName(prefix, a.Index(), a.Format())
		path, err := s.Store(ctx, name, data)
		if err != nil {
			return report, err
		}
		report.Paths = append(report.Paths, path)
	}

	return report, nil
}

// ArtifactName builds the file name for the artifact at index
func ArtifactName(prefix string, index int, format string) string {
	ext := format
	switch format {
	case "":
		ext = "png"
	case "jpeg":
		ext = "jpg"
	}
	return fmt.Sprintf("%s_%d.%s", prefix, index+1, ext)
}

func storageError(err error, op, msg string) error {
	return mdwerror.Wrap(err, msg).
		WithCode(mdwerror.CodeStorageError).
		WithOperation(op)
}
