package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ai-content-gateway/internal/domain/entity"
	"ai-content-gateway/internal/domain/repository"
)

// JobRepository 工作流任务仓储实现
type JobRepository struct {
	client *Client
}

// NewJobRepository 创建工作流任务仓储
func NewJobRepository(client *Client) *JobRepository {
	return &JobRepository{client: client}
}

// Create 创建任务
func (r *JobRepository) Create(ctx context.Context, job *entity.AiProcessJob) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(job).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create process job: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取任务
func (r *JobRepository) GetByID(ctx context.Context, id string) (*entity.AiProcessJob, error) {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var job entity.AiProcessJob
	if err := db.First(&job, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get process job: %w", err)
	}
	return &job, nil
}

// Update 回写任务的步骤与状态
func (r *JobRepository) Update(ctx context.Context, job *entity.AiProcessJob) error {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(job).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update process job: %w", err)
	}
	return nil
}

// ListByAccount 按账号列出任务
func (r *JobRepository) ListByAccount(ctx context.Context, accountID string, pagination repository.Pagination) ([]*entity.AiProcessJob, error) {
	ctx, span := tracer.Start(ctx, "postgres.JobRepository.ListByAccount")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var jobs []*entity.AiProcessJob
	if err := db.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&jobs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list process jobs: %w", err)
	}
	return jobs, nil
}
