// Package admission 提供生成请求的准入检查
package admission

import (
	"context"
	"fmt"
	"time"

	"ai-content-gateway/internal/domain/entity"
	"ai-content-gateway/internal/domain/repository"
	apperrors "ai-content-gateway/pkg/errors"
)

// Checker 准入检查器：要求账号存在一份未过期、余额高于
// 下限的订阅。只在 Orchestrator 启动前消费一次，流中不再咨询。
type Checker struct {
	accountRepo repository.AccountRepository
	subRepo     repository.SubscriptionRepository
	floor       int64
	now         func() time.Time
}

// NewChecker 创建准入检查器
func NewChecker(accountRepo repository.AccountRepository, subRepo repository.SubscriptionRepository, floor int64) *Checker {
	return &Checker{
		accountRepo: accountRepo,
		subRepo:     subRepo,
		floor:       floor,
		now:         time.Now,
	}
}

// Allow 检查账号是否可以发起生成请求
func (c *Checker) Allow(ctx context.Context, accountID string) error {
	account, err := c.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to resolve account: %w", err)
	}
	if account == nil {
		return apperrors.New(apperrors.CodeNotFound, "account not found")
	}

	ownerID := account.ID
	if account.ClusterID != "" {
		ownerID = account.ClusterID
	}

	sub, err := c.subRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub == nil || !sub.Active(c.now()) {
		return apperrors.ErrSubscriptionExpired
	}
	if sub.Balance(entity.TokenKindText) < c.floor {
		return apperrors.ErrInsufficientBalance
	}
	return nil
}
