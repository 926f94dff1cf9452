// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"ai-content-gateway/internal/domain/entity"
)

// LedgerRepository 账本仓储接口。
// DebitBalance 与条目插入必须在同一事务内执行。
type LedgerRepository interface {
	// DebitBalance 对订阅余额执行单行原子扣减
	DebitBalance(ctx context.Context, ownerID string, kind entity.TokenKind, amount int64) error

	// CreateEntry 插入账本条目
	CreateEntry(ctx context.Context, entry *entity.UsageLedgerEntry) error

	// SumByAccount 汇总账号的账本条目（对账用）
	SumByAccount(ctx context.Context, accountID string, kind entity.TokenKind) (int64, error)
}
