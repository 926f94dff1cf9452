package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ai-content-gateway/internal/domain/entity"
)

// GroupRepository 会话仓储实现
type GroupRepository struct {
	client *Client
}

// NewGroupRepository 创建会话仓储
func NewGroupRepository(client *Client) *GroupRepository {
	return &GroupRepository{client: client}
}

// Create 创建会话
func (r *GroupRepository) Create(ctx context.Context, group *entity.ConversationGroup) error {
	ctx, span := tracer.Start(ctx, "postgres.GroupRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(group).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取会话
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*entity.ConversationGroup, error) {
	ctx, span := tracer.Start(ctx, "postgres.GroupRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var group entity.ConversationGroup
	if err := db.First(&group, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &group, nil
}

// UpdateHistory 回写会话历史缓冲区
func (r *GroupRepository) UpdateHistory(ctx context.Context, group *entity.ConversationGroup) error {
	ctx, span := tracer.Start(ctx, "postgres.GroupRepository.UpdateHistory")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.ConversationGroup{}).Where("id = ?", group.ID).
		Update("history", group.History).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update group history: %w", err)
	}
	return nil
}
