package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-content-gateway/internal/application/workflow"
	"ai-content-gateway/internal/domain/entity"
	"ai-content-gateway/internal/domain/repository"
	"ai-content-gateway/internal/interfaces/http/dto"
)

type fakeJobRepo struct {
	jobs map[string]*entity.AiProcessJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[string]*entity.AiProcessJob)}
}

func (r *fakeJobRepo) Create(ctx context.Context, job *entity.AiProcessJob) error {
	job.ID = uuid.NewString()
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id string) (*entity.AiProcessJob, error) {
	return r.jobs[id], nil
}

func (r *fakeJobRepo) Update(ctx context.Context, job *entity.AiProcessJob) error {
	r.jobs[job.ID] = job
	return nil
}

func (r *fakeJobRepo) ListByAccount(ctx context.Context, accountID string, p repository.Pagination) ([]*entity.AiProcessJob, error) {
	return nil, nil
}

type fakeQueue struct {
	enqueued []string
}

func (q *fakeQueue) EnqueueJob(ctx context.Context, jobID string) error {
	q.enqueued = append(q.enqueued, jobID)
	return nil
}

func setupWorkflowRouter(repo *fakeJobRepo, accountID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWorkflowHandler(workflow.NewService(repo, &fakeQueue{}))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if accountID != "" {
			c.Set("account_id", accountID)
		}
	})
	r.POST("/v1/workflows", h.Start)
	r.GET("/v1/workflows/:id", h.Get)
	return r
}

func TestWorkflowStartAccepted(t *testing.T) {
	repo := newFakeJobRepo()
	r := setupWorkflowRouter(repo, "acc-1")

	body := `{"source_key":"uploads/a.txt","source_kind":"text","steps":[{"model":"gpt","action":"summarize"}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/workflows", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp dto.Response[dto.WorkflowAcceptedResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.JobID)
	assert.NotNil(t, repo.jobs[resp.Data.JobID])
}

func TestWorkflowStartValidation(t *testing.T) {
	r := setupWorkflowRouter(newFakeJobRepo(), "acc-1")

	// steps 至少一条
	body := `{"source_key":"uploads/a.txt","source_kind":"text","steps":[]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/workflows", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkflowStartMissingIdentity(t *testing.T) {
	r := setupWorkflowRouter(newFakeJobRepo(), "")

	body := `{"source_key":"uploads/a.txt","source_kind":"text","steps":[{"model":"gpt","action":"summarize"}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/workflows", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWorkflowGetSnapshot(t *testing.T) {
	repo := newFakeJobRepo()
	job, err := entity.NewAiProcessJob("acc-1", "uploads/a.txt", "text", []entity.WorkflowStep{
		{Model: "gpt", Action: "summarize"},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), job))

	r := setupWorkflowRouter(repo, "acc-1")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/workflows/"+job.ID, nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response[dto.WorkflowJobResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(entity.JobStatusPending), resp.Data.Status)
	require.Len(t, resp.Data.Steps, 1)
	assert.Equal(t, string(entity.StepStatusPending), resp.Data.Steps[0].Status)
}

func TestWorkflowGetHiddenFromOtherAccounts(t *testing.T) {
	repo := newFakeJobRepo()
	job, err := entity.NewAiProcessJob("acc-1", "uploads/a.txt", "text", []entity.WorkflowStep{
		{Model: "gpt", Action: "summarize"},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), job))

	// 其他账号看不到任务，以 404 而非 403 掩盖存在性
	r := setupWorkflowRouter(repo, "acc-2")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/workflows/"+job.ID, nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkflowGetUnknownJob(t *testing.T) {
	r := setupWorkflowRouter(newFakeJobRepo(), "acc-1")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/workflows/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
