package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-webinar/studytime/internal/models"
)

func summary() models.SummaryRecord {
	return models.SummaryRecord{
		Person:           "山田 太郎",
		Folder:           "基礎, 応用",
		Content:          `安全衛生 "入門"`,
		Start:            "2024/04/01 09:00",
		End:              "2024/04/01 10:00:00",
		Duration:         "00:45:00",
		StandardDuration: "01:00:00",
		Mark:             models.MarkFail,
		Shortfall:        "00:15:00",
		Confirmed:        "00:00:00",
		URL:              "https://lms.example.com/c?id=1,2",
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	data, err := CSV([]models.SummaryRecord{summary()})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte(BOM)))
	assert.True(t, bytes.HasSuffix(data, []byte("\n")))
	assert.NotContains(t, string(data), "\r\n")

	records, err := csv.NewReader(bytes.NewReader(data[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, row(summary()), records[1])
	assert.Equal(t, "基礎, 応用", records[1][0])
	assert.Equal(t, `安全衛生 "入門"`, records[1][1])
	assert.Equal(t, "X", records[1][6])
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	data, err := CSV(nil)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(string(data), BOM), "\n"), "\n")
	assert.Len(t, lines, 1)
}

func TestParseDestination(t *testing.T) {
	_, err := ParseDestination("  ")
	assert.ErrorIs(t, err, ErrCancelled)

	d, err := ParseDestination("s3://bucket/certs/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "bucket", d.Bucket)
	assert.Equal(t, "certs/a.pdf", d.Key)

	_, err = ParseDestination("s3://bucket")
	assert.Error(t, err)

	d, err = ParseDestination("-")
	require.NoError(t, err)
	assert.True(t, d.Stdout)
}

type fakeStore struct {
	bucket, key string
	body        []byte
	err         error
}

func (f *fakeStore) Upload(_ context.Context, bucket, key, _ string, body io.Reader, _ int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.bucket, f.key = bucket, key
	f.body, _ = io.ReadAll(body)
	return "s3://" + bucket + "/" + key, nil
}

func TestSink_Write(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	store := &fakeStore{}
	sink := NewSink(store, &out, nil)

	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	require.NoError(t, sink.Write(ctx, path, "text/csv", []byte("new")))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	require.NoError(t, sink.Write(ctx, "-", "text/csv", []byte("stdout")))
	assert.Equal(t, "stdout", out.String())

	require.NoError(t, sink.Write(ctx, "s3://b/k.csv", "text/csv", []byte("s3")))
	assert.Equal(t, "b", store.bucket)
	assert.Equal(t, "s3", string(store.body))

	assert.ErrorIs(t, sink.Write(ctx, "", "text/csv", nil), ErrCancelled)
}

func TestSink_WriteErrors(t *testing.T) {
	ctx := context.Background()

	var ioErr *IOError
	err := NewSink(nil, nil, nil).Write(ctx, "s3://b/k", "text/csv", []byte("x"))
	require.True(t, errors.As(err, &ioErr))

	err = NewSink(&fakeStore{err: errors.New("denied")}, nil, nil).Write(ctx, "s3://b/k", "text/csv", []byte("x"))
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "s3://b/k", ioErr.Path)

	dir := t.TempDir()
	err = NewSink(nil, nil, nil).Write(ctx, dir, "text/csv", []byte("x"))
	require.True(t, errors.As(err, &ioErr))
}
