package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/aura-webinar/studytime/internal/models"
)

// ProcessParser delegates parsing to an external executable invoked as `<bin> <records> <standard>`.
// The executable prints {"data": [...], "totalStandardTime": n} or {"error": true, "message": "..."}.
type ProcessParser struct {
	bin     string
	timeout time.Duration
	logger  *zap.Logger
}

// NewProcessParser creates a parser around bin. A zero timeout means no limit beyond ctx.
func NewProcessParser(bin string, timeout time.Duration, logger *zap.Logger) *ProcessParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessParser{bin: bin, timeout: timeout, logger: logger}
}

type processOutput struct {
	Error             bool             `json:"error"`
	Message           string           `json:"message"`
	Data              []map[string]any `json:"data"`
	TotalStandardTime float64          `json:"totalStandardTime"`
}

// Parse runs the executable and decodes its output.
func (p *ProcessParser) Parse(ctx context.Context, src Source) (*models.Batch, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.bin, src.RecordsPath, src.StandardTimesPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()
	p.logger.Debug("batch parser finished",
		zap.String("bin", p.bin),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("stdout_bytes", stdout.Len()),
		zap.Error(err))
	if err != nil {
		perr := &ExternalProcessError{Stderr: stderr.String(), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
		}
		return nil, perr
	}

	return decodeProcessOutput(stdout.Bytes(), stderr.String())
}

func decodeProcessOutput(stdout []byte, stderr string) (*models.Batch, error) {
	var out processOutput
	if err := json.Unmarshal(bytes.TrimSpace(stdout), &out); err != nil {
		return nil, &ExternalProcessError{Stderr: stderr, Err: fmt.Errorf("decode output: %w", err)}
	}
	if out.Error {
		msg := out.Message
		if msg == "" {
			msg = "unknown error"
		}
		return nil, &ExternalProcessError{Stderr: stderr, Message: msg}
	}

	records := make([]models.RawRecord, 0, len(out.Data))
	standards := models.NewStandardTimes()
	for _, row := range out.Data {
		rec := recordFrom(func(name string) string { return cellString(row[name]) })
		if rec.StandardDuration != "" {
			if _, ok := standards.Lookup(rec.Content); !ok {
				standards.Set(rec.Content, rec.StandardDuration)
			}
		}
		records = append(records, rec)
	}
	return &models.Batch{
		Records:              records,
		StandardTimes:        standards,
		TotalStandardSeconds: int(out.TotalStandardTime),
	}, nil
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return cleanCell(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprint(t)
	}
	return cleanCell(fmt.Sprint(v))
}
