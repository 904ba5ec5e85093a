package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/aura-webinar/studytime/pkg/storage"
)

// ErrCancelled means the user dismissed the save prompt. Callers treat it as a no-op.
var ErrCancelled = errors.New("save cancelled")

// IOError is a failure writing an exported artifact.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }

func (e *IOError) Unwrap() error { return e.Err }

// Stdout is the destination that writes to the sink's stdout writer.
const Stdout = "-"

// ObjectStore uploads artifacts to object storage (see pkg/storage).
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, size int64) (string, error)
}

// Destination is a parsed save target.
type Destination struct {
	Raw    string
	Bucket string // set for s3:// targets
	Key    string
	Path   string // set for local targets
	Stdout bool
}

// ParseDestination resolves a save target. An empty target means the prompt was cancelled.
func ParseDestination(target string) (Destination, error) {
	target = strings.TrimSpace(target)
	switch {
	case target == "":
		return Destination{}, ErrCancelled
	case target == Stdout:
		return Destination{Raw: target, Stdout: true}, nil
	case storage.IsURI(target):
		bucket, key, err := storage.ParseURI(target)
		if err != nil {
			return Destination{}, err
		}
		return Destination{Raw: target, Bucket: bucket, Key: key}, nil
	}
	return Destination{Raw: target, Path: target}, nil
}

// Sink writes artifacts to local files, stdout or S3.
type Sink struct {
	store  ObjectStore
	stdout io.Writer
	logger *zap.Logger
}

// NewSink creates a sink. store may be nil when S3 is not configured.
func NewSink(store ObjectStore, stdout io.Writer, logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Sink{store: store, stdout: stdout, logger: logger}
}

// Write delivers data to target, overwriting any existing file or object.
func (s *Sink) Write(ctx context.Context, target, contentType string, data []byte) error {
	dest, err := ParseDestination(target)
	if err != nil {
		return err
	}
	switch {
	case dest.Stdout:
		if _, err := s.stdout.Write(data); err != nil {
			return &IOError{Path: dest.Raw, Err: err}
		}
	case dest.Bucket != "":
		if s.store == nil {
			return &IOError{Path: dest.Raw, Err: errors.New("s3 not configured")}
		}
		uri, err := s.store.Upload(ctx, dest.Bucket, dest.Key, contentType, bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return &IOError{Path: dest.Raw, Err: err}
		}
		s.logger.Info("artifact uploaded", zap.String("object", uri), zap.Int("bytes", len(data)))
	default:
		if dir := filepath.Dir(dest.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return &IOError{Path: dest.Path, Err: err}
			}
		}
		if err := os.WriteFile(dest.Path, data, 0o644); err != nil {
			return &IOError{Path: dest.Path, Err: err}
		}
		s.logger.Info("artifact written", zap.String("path", dest.Path), zap.Int("bytes", len(data)))
	}
	return nil
}
