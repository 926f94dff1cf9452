package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-content-gateway/internal/domain/entity"
	apperrors "ai-content-gateway/pkg/errors"
)

type fakeQueue struct {
	enqueued []string
	err      error
}

func (q *fakeQueue) EnqueueJob(ctx context.Context, jobID string) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, jobID)
	return nil
}

func TestStartWorkflow(t *testing.T) {
	repo := newFakeJobRepo()
	queue := &fakeQueue{}
	svc := NewService(repo, queue)

	jobID, err := svc.StartWorkflow(context.Background(), "acc-1", "uploads/a.mp3", "audio", []StepInput{
		{Model: "gpt", Action: "summarize"},
		{Model: "claude", Action: "translate to German"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)
	assert.Equal(t, []string{jobID}, queue.enqueued)

	job := repo.jobs[jobID]
	require.NotNil(t, job)
	assert.Equal(t, entity.JobStatusPending, job.Status)
	assert.Equal(t, "uploads/a.mp3", job.SourceKey)
	assert.Equal(t, "audio", job.SourceKind)
}

func TestStartWorkflowValidation(t *testing.T) {
	svc := NewService(newFakeJobRepo(), &fakeQueue{})

	_, err := svc.StartWorkflow(context.Background(), "acc-1", "uploads/a.txt", "text", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)

	_, err = svc.StartWorkflow(context.Background(), "acc-1", "", "text", []StepInput{{Model: "gpt", Action: "summarize"}})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)

	_, err = svc.StartWorkflow(context.Background(), "acc-1", "uploads/a.txt", "text", []StepInput{{Model: "gpt"}})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)
}

func TestStartWorkflowEnqueueFailure(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewService(repo, &fakeQueue{err: errors.New("stream down")})

	_, err := svc.StartWorkflow(context.Background(), "acc-1", "uploads/a.txt", "text", []StepInput{
		{Model: "gpt", Action: "summarize"},
	})
	require.Error(t, err)

	// 落库未入队的任务标记失败，避免永久 pending
	require.Len(t, repo.jobs, 1)
	for _, job := range repo.jobs {
		assert.Equal(t, entity.JobStatusFailed, job.Status)
	}
}

func TestGetJobNotFound(t *testing.T) {
	svc := NewService(newFakeJobRepo(), &fakeQueue{})
	_, err := svc.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, error(apperrors.ErrJobNotFound))
}
