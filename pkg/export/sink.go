package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives a finished artifact and returns where it ended up.
type Sink interface {
	Write(ctx context.Context, a *Artifact) (string, error)
}

// DirSink writes artifacts as files into a directory, creating it when
// needed. It is the command-line equivalent of a browser download.
type DirSink struct {
	Dir string
}

// Write stores a.PNG as Dir/a.Filename. The file is written under a
// temporary name and renamed, so readers never see a partial image.
func (s DirSink) Write(_ context.Context, a *Artifact) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, a.Filename)
	tmp, err := os.CreateTemp(dir, ".gera-post-*.png")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(a.PNG); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return path, nil
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, a *Artifact) (string, error)

func (f SinkFunc) Write(ctx context.Context, a *Artifact) (string, error) { return f(ctx, a) }
