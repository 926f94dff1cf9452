package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ai-content-gateway/internal/domain/entity"
)

// PromptRepository 请求记录仓储实现
type PromptRepository struct {
	client *Client
}

// NewPromptRepository 创建请求记录仓储
func NewPromptRepository(client *Client) *PromptRepository {
	return &PromptRepository{client: client}
}

// Create 创建请求记录
func (r *PromptRepository) Create(ctx context.Context, prompt *entity.Prompt) error {
	ctx, span := tracer.Start(ctx, "postgres.PromptRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(prompt).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create prompt: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取请求记录
func (r *PromptRepository) GetByID(ctx context.Context, id string) (*entity.Prompt, error) {
	ctx, span := tracer.Start(ctx, "postgres.PromptRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var prompt entity.Prompt
	if err := db.First(&prompt, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get prompt: %w", err)
	}
	return &prompt, nil
}

// PromptResponseRepository 响应记录仓储实现
type PromptResponseRepository struct {
	client *Client
}

// NewPromptResponseRepository 创建响应记录仓储
func NewPromptResponseRepository(client *Client) *PromptResponseRepository {
	return &PromptResponseRepository{client: client}
}

// Create 创建响应记录
func (r *PromptResponseRepository) Create(ctx context.Context, response *entity.PromptResponse) error {
	ctx, span := tracer.Start(ctx, "postgres.PromptResponseRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(response).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create prompt response: %w", err)
	}
	return nil
}

// GetByPromptID 根据请求记录 ID 获取响应记录
func (r *PromptResponseRepository) GetByPromptID(ctx context.Context, promptID string) (*entity.PromptResponse, error) {
	ctx, span := tracer.Start(ctx, "postgres.PromptResponseRepository.GetByPromptID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var response entity.PromptResponse
	if err := db.First(&response, "prompt_id = ?", promptID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get prompt response: %w", err)
	}
	return &response, nil
}
