// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ai-content-gateway/internal/domain/entity"
)

// ProviderRepository Provider 仓储实现
type ProviderRepository struct {
	client *Client
}

// NewProviderRepository 创建 Provider 仓储
func NewProviderRepository(client *Client) *ProviderRepository {
	return &ProviderRepository{client: client}
}

// GetByName 按名称获取 Provider
func (r *ProviderRepository) GetByName(ctx context.Context, name string) (*entity.LLMProvider, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProviderRepository.GetByName")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var provider entity.LLMProvider
	if err := db.First(&provider, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return &provider, nil
}

// ListEnabled 获取所有启用的 Provider
func (r *ProviderRepository) ListEnabled(ctx context.Context) ([]*entity.LLMProvider, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProviderRepository.ListEnabled")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var providers []*entity.LLMProvider
	if err := db.Where("enabled = ?", true).Order("name ASC").Find(&providers).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}
