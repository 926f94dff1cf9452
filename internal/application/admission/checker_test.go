package admission

import (
	"context"
	"testing"
	"time"

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

type fakeSubRepo struct {
	subs map[string]*entity.Subscription
}

func (r *fakeSubRepo) GetByOwner(ctx context.Context, ownerID string) (*entity.Subscription, error) {
	return r.subs[ownerID], nil
}

func newTestChecker(accounts map[string]*entity.Account, subs map[string]*entity.Subscription, floor int64) *Checker {
	return NewChecker(&fakeAccountRepo{accounts: accounts}, &fakeSubRepo{subs: subs}, floor)
}

func TestAllowOK(t *testing.T) {
	c := newTestChecker(
		map[string]*entity.Account{"acc-1": {ID: "acc-1"}},
		map[string]*entity.Subscription{"acc-1": {
			OwnerID:    "acc-1",
			TextTokens: 500,
			ExpiresAt:  time.Now().Add(time.Hour),
		}},
		100,
	)
	assert.NoError(t, c.Allow(context.Background(), "acc-1"))
}

func TestAllowAccountNotFound(t *testing.T) {
	c := newTestChecker(nil, nil, 100)
	err := c.Allow(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.AsAppError(err).Code)
}

func TestAllowExpiredSubscription(t *testing.T) {
	c := newTestChecker(
		map[string]*entity.Account{"acc-1": {ID: "acc-1"}},
		map[string]*entity.Subscription{"acc-1": {
			OwnerID:    "acc-1",
			TextTokens: 500,
			ExpiresAt:  time.Now().Add(-time.Hour),
		}},
		100,
	)
	err := c.Allow(context.Background(), "acc-1")
	assert.ErrorIs(t, err, error(apperrors.ErrSubscriptionExpired))
}

func TestAllowMissingSubscription(t *testing.T) {
	c := newTestChecker(
		map[string]*entity.Account{"acc-1": {ID: "acc-1"}},
		nil,
		100,
	)
	err := c.Allow(context.Background(), "acc-1")
	assert.ErrorIs(t, err, error(apperrors.ErrSubscriptionExpired))
}

func TestAllowBelowFloor(t *testing.T) {
	c := newTestChecker(
		map[string]*entity.Account{"acc-1": {ID: "acc-1"}},
		map[string]*entity.Subscription{"acc-1": {
			OwnerID:    "acc-1",
			TextTokens: 99,
			ExpiresAt:  time.Now().Add(time.Hour),
		}},
		100,
	)
	err := c.Allow(context.Background(), "acc-1")
	assert.ErrorIs(t, err, error(apperrors.ErrInsufficientBalance))
}

func TestAllowClusterSubscription(t *testing.T) {
	// 集群成员的准入看集群共享订阅，账号自身无需订阅
	c := newTestChecker(
		map[string]*entity.Account{"acc-1": {ID: "acc-1", ClusterID: "cluster-1"}},
		map[string]*entity.Subscription{"cluster-1": {
			OwnerID:    "cluster-1",
			TextTokens: 10000,
			ExpiresAt:  time.Now().Add(time.Hour),
		}},
		100,
	)
	assert.NoError(t, c.Allow(context.Background(), "acc-1"))
}
