// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"ai-content-gateway/internal/domain/entity"
)

// ProviderRepository LLM Provider 仓储接口。
// Provider 由管理端维护，网关侧只读。
type ProviderRepository interface {
	// GetByName 按名称获取 Provider，不存在时返回 (nil, nil)
	GetByName(ctx context.Context, name string) (*entity.LLMProvider, error)

	// ListEnabled 获取所有启用的 Provider
	ListEnabled(ctx context.Context) ([]*entity.LLMProvider, error)
}
