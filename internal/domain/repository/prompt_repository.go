// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"ai-content-gateway/internal/domain/entity"
)

// PromptRepository 请求记录仓储接口
type PromptRepository interface {
	Create(ctx context.Context, prompt *entity.Prompt) error
	GetByID(ctx context.Context, id string) (*entity.Prompt, error)
}

// PromptResponseRepository 响应记录仓储接口
type PromptResponseRepository interface {
	Create(ctx context.Context, response *entity.PromptResponse) error
	GetByPromptID(ctx context.Context, promptID string) (*entity.PromptResponse, error)
}
