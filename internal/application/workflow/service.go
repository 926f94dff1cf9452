// Package workflow 实现工作流链：对一段提取后的源文本
// 依序执行 (model, instruction) 步骤，首个错误即中止。
package workflow

import (
	"context"
	"fmt"

	"ai-content-gateway/internal/domain/entity"
	"ai-content-gateway/internal/domain/repository"
	apperrors "ai-content-gateway/pkg/errors"
	"ai-content-gateway/pkg/logger"
)

// StepInput 接受请求时的单个步骤定义
type StepInput struct {
	Model  string `json:"model"`
	Action string `json:"action"`
}

// Service 工作流任务接受与查询服务。
// 执行本身由 Executor 在后台消费队列完成。
type Service struct {
	jobRepo repository.JobRepository
	queue   JobQueue
}

// NewService 创建工作流服务
func NewService(jobRepo repository.JobRepository, queue JobQueue) *Service {
	return &Service{jobRepo: jobRepo, queue: queue}
}

// StartWorkflow 接受一个链式任务：落库后入队，立即返回任务 ID。
// 进度只能通过轮询任务快照观察。
func (s *Service) StartWorkflow(ctx context.Context, accountID, sourceKey, sourceKind string, steps []StepInput) (string, error) {
	if len(steps) == 0 {
		return "", apperrors.New(apperrors.CodeInvalidParam, "workflow requires at least one step")
	}
	if sourceKey == "" {
		return "", apperrors.New(apperrors.CodeInvalidParam, "source reference is required")
	}
	for i, step := range steps {
		if step.Model == "" || step.Action == "" {
			return "", apperrors.New(apperrors.CodeInvalidParam, fmt.Sprintf("step %d is missing model or action", i+1))
		}
	}

	jobSteps := make([]entity.WorkflowStep, len(steps))
	for i, step := range steps {
		jobSteps[i] = entity.WorkflowStep{Model: step.Model, Action: step.Action}
	}

	job, err := entity.NewAiProcessJob(accountID, sourceKey, sourceKind, jobSteps)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInvalidParam, "invalid workflow steps")
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create process job")
	}

	if err := s.queue.EnqueueJob(ctx, job.ID); err != nil {
		// 任务已落库但未入队：标记失败，避免永久 pending
		job.Fail("failed to enqueue job")
		if updateErr := s.jobRepo.Update(ctx, job); updateErr != nil {
			logger.Error(ctx, "failed to mark unenqueued job as failed", updateErr, "job_id", job.ID)
		}
		return "", apperrors.Wrap(err, apperrors.CodeServiceUnavailable, "failed to enqueue process job")
	}

	logger.Info(ctx, "workflow job accepted",
		"job_id", job.ID,
		"account_id", accountID,
		"steps", len(steps),
	)
	return job.ID, nil
}

// GetJob 返回任务快照
func (s *Service) GetJob(ctx context.Context, jobID string) (*entity.AiProcessJob, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load process job")
	}
	if job == nil {
		return nil, apperrors.ErrJobNotFound
	}
	return job, nil
}

// ListJobs 按账号列出任务
func (s *Service) ListJobs(ctx context.Context, accountID string, pagination repository.Pagination) ([]*entity.AiProcessJob, error) {
	jobs, err := s.jobRepo.ListByAccount(ctx, accountID, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list process jobs")
	}
	return jobs, nil
}
