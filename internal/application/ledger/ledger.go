// Package ledger 提供账号/集群 Token 账本
package ledger

import (
	"context"
	"fmt"

	"ai-content-gateway/internal/domain/entity"
	"ai-content-gateway/internal/domain/repository"
	apperrors "ai-content-gateway/pkg/errors"
	"ai-content-gateway/pkg/metrics"
)

// Debit 单次扣费输入
type Debit struct {
	AccountID string
	Provider  string
	PromptID  string
	Kind      entity.TokenKind
	Amount    int64
}

// Ledger Token 账本。余额扣减与条目插入在同一事务内，
// 余额只是条目的缓存投影。
type Ledger struct {
	accountRepo repository.AccountRepository
	ledgerRepo  repository.LedgerRepository
	txMgr       repository.Transactor
}

// NewLedger 创建账本服务
func NewLedger(accountRepo repository.AccountRepository, ledgerRepo repository.LedgerRepository, txMgr repository.Transactor) *Ledger {
	return &Ledger{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		txMgr:       txMgr,
	}
}

// Apply 执行一次扣费：解析扣费目标、原子扣减余额并插入账本条目。
// 集群归属每次调用都重新解析，不做缓存，避免集群变更后的脏路由。
// 生成产出后无条件扣费，不做预授权；单次最多透支一笔生成的成本。
func (l *Ledger) Apply(ctx context.Context, d Debit) error {
	if d.Amount < 0 {
		return apperrors.New(apperrors.CodeInvalidParam, "debit amount must not be negative")
	}
	if d.Amount == 0 {
		return nil
	}

	ownerID, err := l.resolveOwner(ctx, d.AccountID)
	if err != nil {
		return err
	}

	entry := &entity.UsageLedgerEntry{
		AccountID: d.AccountID,
		OwnerID:   ownerID,
		Provider:  d.Provider,
		PromptID:  d.PromptID,
		Kind:      d.Kind,
		Amount:    d.Amount,
	}

	err = l.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := l.ledgerRepo.DebitBalance(txCtx, ownerID, d.Kind, d.Amount); err != nil {
			return err
		}
		return l.ledgerRepo.CreateEntry(txCtx, entry)
	})
	if err != nil {
		metrics.LedgerDebitFailures.WithLabelValues(string(d.Kind)).Inc()
		return fmt.Errorf("failed to debit %d %s tokens for owner %s: %w", d.Amount, d.Kind, ownerID, err)
	}

	metrics.TokensDebited.WithLabelValues(d.Provider, string(d.Kind)).Add(float64(d.Amount))
	return nil
}

// resolveOwner 解析扣费目标：集群成员扣集群共享订阅，否则扣账号自身
func (l *Ledger) resolveOwner(ctx context.Context, accountID string) (string, error) {
	account, err := l.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve account %s: %w", accountID, err)
	}
	if account == nil {
		return "", apperrors.New(apperrors.CodeNotFound, "account not found")
	}
	if account.ClusterID != "" {
		return account.ClusterID, nil
	}
	return account.ID, nil
}
