package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-webinar/studytime/internal/models"
)

type memLists struct {
	mu    sync.Mutex
	lists map[string][]string
	err   error
}

func newMemLists() *memLists { return &memLists{lists: make(map[string][]string)} }

func (m *memLists) RPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return redis.NewIntResult(0, m.err)
	}
	for _, v := range values {
		switch t := v.(type) {
		case []byte:
			m.lists[key] = append(m.lists[key], string(t))
		default:
			m.lists[key] = append(m.lists[key], fmt.Sprint(t))
		}
	}
	return redis.NewIntResult(int64(len(m.lists[key])), nil)
}

func (m *memLists) BLPop(_ context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return redis.NewStringSliceResult(nil, m.err)
	}
	for _, k := range keys {
		if l := m.lists[k]; len(l) > 0 {
			m.lists[k] = l[1:]
			return redis.NewStringSliceResult([]string{k, l[0]}, nil)
		}
	}
	return redis.NewStringSliceResult(nil, redis.Nil)
}

func (m *memLists) len(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lists[key])
}

func TestEnqueueDequeueCertificate(t *testing.T) {
	lists := newMemLists()
	q := NewQueue(lists, nil)
	ctx := context.Background()

	payload := CertificatePayload{
		Person:               "山田",
		Rows:                 []models.CertificateRow{{Folder: "f", Content: "第1章", Duration: "00:30:00", StandardDuration: "00:30:00"}},
		TotalStandardSeconds: 1800,
		Destination:          "s3://bucket/certificates/job-1/山田_certificate.pdf",
	}
	require.NoError(t, q.EnqueueCertificate(ctx, "job-1", payload))

	job, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, JobTypeCertificate, job.Type)

	got, err := DecodeCertificate(job)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	job, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestEnqueueGeneratesID(t *testing.T) {
	lists := newMemLists()
	q := NewQueue(lists, nil)
	require.NoError(t, q.EnqueueCertificate(context.Background(), "", CertificatePayload{Person: "a"}))
	job, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
}

func TestRetryMovesToDLQ(t *testing.T) {
	lists := newMemLists()
	q := NewQueue(lists, nil)
	ctx := context.Background()
	job := &Job{ID: "j", Type: JobTypeCertificate}

	for i := 1; i < MaxRetries; i++ {
		require.NoError(t, q.Retry(ctx, job))
		assert.Equal(t, i, lists.len(QueueCertificates))
	}
	require.NoError(t, q.Retry(ctx, job))
	assert.Equal(t, MaxRetries, job.Attempt)
	assert.Equal(t, 1, lists.len(QueueDLQ))
}

func TestDeadLetterSkipsRetries(t *testing.T) {
	lists := newMemLists()
	q := NewQueue(lists, nil)
	job := &Job{ID: "j", Type: JobTypeCertificate}

	require.NoError(t, q.DeadLetter(context.Background(), job, errors.New("malformed duration")))
	assert.Equal(t, 0, job.Attempt)
	assert.Equal(t, 0, lists.len(QueueCertificates))
	require.Equal(t, 1, lists.len(QueueDLQ))
	assert.Contains(t, lists.lists[QueueDLQ][0], `"last_error":"malformed duration"`)

	lists.err = errors.New("connection refused")
	assert.Error(t, q.DeadLetter(context.Background(), job, nil))
}

func TestPermanent(t *testing.T) {
	assert.NoError(t, Permanent(nil))
	cause := errors.New("bad payload")
	err := fmt.Errorf("job j: %w", Permanent(cause))
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsPermanent(cause))
}

func TestDequeueErrorsAndGarbage(t *testing.T) {
	lists := newMemLists()
	q := NewQueue(lists, nil)
	lists.lists[QueueCertificates] = []string{"not json"}

	job, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)

	lists.err = errors.New("connection refused")
	_, err = q.Dequeue(context.Background())
	assert.Error(t, err)
	assert.Error(t, q.EnqueueCertificate(context.Background(), "x", CertificatePayload{}))
}

func TestDecodeCertificate_WrongType(t *testing.T) {
	_, err := DecodeCertificate(&Job{Type: "email"})
	assert.Error(t, err)
}
