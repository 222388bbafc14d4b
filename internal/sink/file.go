package sink

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	mdwerror "github.com/msto63/webr/foundation/core/error"
)

// FileSink writes each blob to a file in a directory
type FileSink struct {
	dir string
}

// NewFileSink creates the directory if needed
func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, storageError(err, "sink.file.open", "failed to create directory")
	}
	return &FileSink{dir: dir}, nil
}

// Dir returns the target directory
func (s *FileSink) Dir() string { return s.dir }

// Store writes data to dir/name. The file is written under a temporary
// name and renamed so readers never see a partial plot.
func (s *FileSink) Store(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validName(name); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return "", storageError(err, "sink.file.store", "failed to create file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", storageError(err, "sink.file.store", "failed to write file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", storageError(err, "sink.file.store", "failed to close file")
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return "", storageError(err, "sink.file.store", "failed to set permissions")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", storageError(err, "sink.file.store", "failed to rename file")
	}
	return path, nil
}

// Close is a no-op for files
func (s *FileSink) Close() error { return nil }

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return mdwerror.Newf("invalid artifact name %q", name).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("sink.store")
	}
	return nil
}
