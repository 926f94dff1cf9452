package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-content-gateway/internal/domain/entity"
	apperrors "ai-content-gateway/pkg/errors"
)

type fakeAccountRepo struct {
	accounts map[string]*entity.Account
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.accounts[id], nil
}

// fakeLedgerRepo 用余额表加条目表模拟仓储，DebitBalance 失败时可注入错误
type fakeLedgerRepo struct {
	balances map[string]map[entity.TokenKind]int64
	entries  []*entity.UsageLedgerEntry
	debitErr error
	entryErr error
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{balances: make(map[string]map[entity.TokenKind]int64)}
}

func (r *fakeLedgerRepo) setBalance(ownerID string, kind entity.TokenKind, amount int64) {
	if r.balances[ownerID] == nil {
		r.balances[ownerID] = make(map[entity.TokenKind]int64)
	}
	r.balances[ownerID][kind] = amount
}

func (r *fakeLedgerRepo) DebitBalance(ctx context.Context, ownerID string, kind entity.TokenKind, amount int64) error {
	if r.debitErr != nil {
		return r.debitErr
	}
	if r.balances[ownerID] == nil {
		return errors.New("no subscription for owner")
	}
	r.balances[ownerID][kind] -= amount
	return nil
}

func (r *fakeLedgerRepo) CreateEntry(ctx context.Context, entry *entity.UsageLedgerEntry) error {
	if r.entryErr != nil {
		return r.entryErr
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeLedgerRepo) SumByAccount(ctx context.Context, accountID string, kind entity.TokenKind) (int64, error) {
	var sum int64
	for _, e := range r.entries {
		if e.AccountID == accountID && e.Kind == kind {
			sum += e.Amount
		}
	}
	return sum, nil
}

// fakeTx 直接透传回调，失败时模拟整体回滚由断言覆盖
type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestLedger(accounts map[string]*entity.Account, repo *fakeLedgerRepo) *Ledger {
	return NewLedger(&fakeAccountRepo{accounts: accounts}, repo, fakeTx{})
}

func TestApplyNegativeAmountRejected(t *testing.T) {
	l := newTestLedger(nil, newFakeLedgerRepo())
	err := l.Apply(context.Background(), Debit{AccountID: "acc-1", Kind: entity.TokenKindText, Amount: -1})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)
}

func TestApplyZeroAmountNoop(t *testing.T) {
	repo := newFakeLedgerRepo()
	l := newTestLedger(map[string]*entity.Account{"acc-1": {ID: "acc-1"}}, repo)

	err := l.Apply(context.Background(), Debit{AccountID: "acc-1", Kind: entity.TokenKindText, Amount: 0})
	require.NoError(t, err)
	assert.Empty(t, repo.entries)
}

func TestApplyDebitsOwnAccount(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.setBalance("acc-1", entity.TokenKindText, 1000)
	l := newTestLedger(map[string]*entity.Account{"acc-1": {ID: "acc-1"}}, repo)

	err := l.Apply(context.Background(), Debit{
		AccountID: "acc-1",
		Provider:  "gpt",
		PromptID:  "p-1",
		Kind:      entity.TokenKindText,
		Amount:    500,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(500), repo.balances["acc-1"][entity.TokenKindText])
	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, "acc-1", entry.AccountID)
	assert.Equal(t, "acc-1", entry.OwnerID)
	assert.Equal(t, "p-1", entry.PromptID)
	assert.Equal(t, int64(500), entry.Amount)
}

func TestApplyRedirectsToCluster(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.setBalance("cluster-1", entity.TokenKindText, 1000)
	l := newTestLedger(map[string]*entity.Account{
		"acc-1": {ID: "acc-1", ClusterID: "cluster-1"},
	}, repo)

	err := l.Apply(context.Background(), Debit{
		AccountID: "acc-1",
		Provider:  "gpt",
		Kind:      entity.TokenKindText,
		Amount:    300,
	})
	require.NoError(t, err)

	// 集群成员扣集群共享池，条目仍记发起账号
	assert.Equal(t, int64(700), repo.balances["cluster-1"][entity.TokenKindText])
	require.Len(t, repo.entries, 1)
	assert.Equal(t, "acc-1", repo.entries[0].AccountID)
	assert.Equal(t, "cluster-1", repo.entries[0].OwnerID)
}

func TestApplyOverdraftAllowed(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.setBalance("acc-1", entity.TokenKindText, 100)
	l := newTestLedger(map[string]*entity.Account{"acc-1": {ID: "acc-1"}}, repo)

	// 产出已发生，余额不足也照常扣减
	err := l.Apply(context.Background(), Debit{AccountID: "acc-1", Kind: entity.TokenKindText, Amount: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(-400), repo.balances["acc-1"][entity.TokenKindText])
}

func TestApplyAccountNotFound(t *testing.T) {
	l := newTestLedger(map[string]*entity.Account{}, newFakeLedgerRepo())
	err := l.Apply(context.Background(), Debit{AccountID: "ghost", Kind: entity.TokenKindText, Amount: 1})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.AsAppError(err).Code)
}

func TestApplyDebitFailureNoEntry(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.debitErr = errors.New("subscription row missing")
	l := newTestLedger(map[string]*entity.Account{"acc-1": {ID: "acc-1"}}, repo)

	err := l.Apply(context.Background(), Debit{AccountID: "acc-1", Kind: entity.TokenKindFile, Amount: 1})
	require.Error(t, err)
	assert.Empty(t, repo.entries)
}
