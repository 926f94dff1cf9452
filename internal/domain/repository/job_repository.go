// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"ai-content-gateway/internal/domain/entity"
)

// JobRepository 工作流任务仓储接口
type JobRepository interface {
	Create(ctx context.Context, job *entity.AiProcessJob) error

	// GetByID 不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.AiProcessJob, error)

	// Update 回写任务的步骤与状态
	Update(ctx context.Context, job *entity.AiProcessJob) error

	// ListByAccount 按账号列出任务
	ListByAccount(ctx context.Context, accountID string, pagination Pagination) ([]*entity.AiProcessJob, error)
}
