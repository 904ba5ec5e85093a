package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-webinar/studytime/internal/models"
)

// Multipart field names shared by every upload endpoint.
const (
	FieldRecords       = "records"
	FieldStandardTimes = "standard_times"
	FieldTable         = "table"
)

// ErrMissingUpload is returned when a required multipart file is absent.
var ErrMissingUpload = errors.New("missing upload")

// Loader resolves standard-time tables and runs the configured parser.
type Loader struct {
	parser    Parser
	tables    *StandardTables
	uploadDir string
	logger    *zap.Logger
}

// NewLoader creates a loader. uploadDir defaults to the OS temp dir.
func NewLoader(parser Parser, tables *StandardTables, uploadDir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &Loader{parser: parser, tables: tables, uploadDir: uploadDir, logger: logger}
}

// Tables returns the named tables the loader resolves against.
func (l *Loader) Tables() *StandardTables { return l.tables }

// Load parses a records file against a standard-time table given by name or path.
func (l *Loader) Load(ctx context.Context, recordsPath, standard string) (*models.Batch, error) {
	standardPath, err := l.tables.Resolve(standard)
	if err != nil {
		return nil, &ParseError{File: standard, Err: err}
	}
	return l.parser.Parse(ctx, Source{RecordsPath: recordsPath, StandardTimesPath: standardPath})
}

// FromRequest saves the multipart uploads of c, parses them and removes the temp files.
// The standard-time table comes from the standard_times file or, failing that, the table field.
func (l *Loader) FromRequest(c *gin.Context) (*models.Batch, error) {
	recordsPath, cleanup, err := SaveUpload(c, FieldRecords, l.uploadDir)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var standardPath string
	if _, ferr := c.FormFile(FieldStandardTimes); ferr == nil {
		p, cleanupStd, err := SaveUpload(c, FieldStandardTimes, l.uploadDir)
		if err != nil {
			return nil, err
		}
		defer cleanupStd()
		standardPath = p
	} else if name := c.PostForm(FieldTable); name != "" {
		// Uploaded requests may only name tables, never arbitrary server paths.
		p, err := l.tables.ResolveName(name)
		if err != nil {
			return nil, &ParseError{File: name, Err: err}
		}
		standardPath = p
	} else {
		return nil, &ParseError{File: FieldStandardTimes, Err: ErrMissingUpload}
	}
	return l.parser.Parse(c.Request.Context(), Source{RecordsPath: recordsPath, StandardTimesPath: standardPath})
}

// SaveUpload writes the multipart file in field to dir under a random name.
// The returned cleanup removes it.
func SaveUpload(c *gin.Context, field, dir string) (string, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, &ParseError{File: field, Err: ErrMissingUpload}
		}
		return "", nil, &ParseError{File: field, Err: err}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create upload dir: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = ".csv"
	}
	path := filepath.Join(dir, field+"-"+uuid.New().String()+ext)
	if err := c.SaveUploadedFile(fh, path); err != nil {
		return "", nil, fmt.Errorf("save upload %s: %w", field, err)
	}
	return path, func() { _ = os.Remove(path) }, nil
}
