// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"ai-content-gateway/internal/domain/entity"
)

// AccountRepository 账号仓储接口
type AccountRepository interface {
	// GetByID 不存在时返回 (nil, nil)
	GetByID(ctx context.Context, id string) (*entity.Account, error)
}

// SubscriptionRepository 订阅仓储接口
type SubscriptionRepository interface {
	// GetByOwner 按账号或集群 ID 获取订阅，不存在时返回 (nil, nil)
	GetByOwner(ctx context.Context, ownerID string) (*entity.Subscription, error)
}
