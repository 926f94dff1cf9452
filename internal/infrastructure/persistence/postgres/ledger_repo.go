package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ai-content-gateway/internal/domain/entity"
)

// LedgerRepository 账本仓储实现
type LedgerRepository struct {
	client *Client
}

// NewLedgerRepository 创建账本仓储
func NewLedgerRepository(client *Client) *LedgerRepository {
	return &LedgerRepository{client: client}
}

// DebitBalance 对订阅余额执行单行原子扣减。
// 同一 owner 的并发扣减由行锁串行化；余额允许被最后一次
// 生成透支，入场控制在编排器之前完成。
func (r *LedgerRepository) DebitBalance(ctx context.Context, ownerID string, kind entity.TokenKind, amount int64) error {
	ctx, span := tracer.Start(ctx, "postgres.LedgerRepository.DebitBalance")
	defer span.End()

	column := "text_tokens"
	if kind == entity.TokenKindFile {
		column = "file_tokens"
	}

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.Subscription{}).
		Where("owner_id = ?", ownerID).
		Update(column, gorm.Expr(column+" - ?", amount))
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to debit balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no subscription found for owner %s", ownerID)
	}
	return nil
}

// CreateEntry 插入账本条目
func (r *LedgerRepository) CreateEntry(ctx context.Context, entry *entity.UsageLedgerEntry) error {
	ctx, span := tracer.Start(ctx, "postgres.LedgerRepository.CreateEntry")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(entry).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

// SumByAccount 汇总账号的账本条目
func (r *LedgerRepository) SumByAccount(ctx context.Context, accountID string, kind entity.TokenKind) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.LedgerRepository.SumByAccount")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var total *int64
	if err := db.Model(&entity.UsageLedgerEntry{}).
		Where("account_id = ? AND kind = ?", accountID, kind).
		Select("SUM(amount)").
		Scan(&total).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to sum ledger entries: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
