// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"ai-content-gateway/internal/domain/entity"
)

// GroupRepository 会话仓储接口
type GroupRepository interface {
	Create(ctx context.Context, group *entity.ConversationGroup) error

	// GetByID 不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.ConversationGroup, error)

	// UpdateHistory 回写历史缓冲区
	UpdateHistory(ctx context.Context, group *entity.ConversationGroup) error
}
