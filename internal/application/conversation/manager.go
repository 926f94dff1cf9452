// Package conversation 提供多轮会话状态管理
package conversation

import (
	"context"
	"fmt"

	"ai-content-gateway/internal/domain/entity"
	"ai-content-gateway/internal/domain/repository"
	apperrors "ai-content-gateway/pkg/errors"
	"ai-content-gateway/pkg/logger"
)

// HistoryCache 会话历史读穿缓存端口。
// 缓存失效只影响读放大，数据库中的会话行是权威事实。
type HistoryCache interface {
	GetHistory(ctx context.Context, groupID string) ([]entity.Turn, bool, error)
	SetHistory(ctx context.Context, groupID string, turns []entity.Turn) error
	DelHistory(ctx context.Context, groupID string) error
}

// Manager 会话状态管理器。历史缓冲区只追加、
// 每次追加后截断到最近 entity.HistoryLimit 条。
type Manager struct {
	groupRepo repository.GroupRepository
	cache     HistoryCache
}

// NewManager 创建会话状态管理器。cache 可为 nil（直读数据库）。
func NewManager(groupRepo repository.GroupRepository, cache HistoryCache) *Manager {
	return &Manager{
		groupRepo: groupRepo,
		cache:     cache,
	}
}

// StartGroup 创建新会话（新聊天的首轮）
func (m *Manager) StartGroup(ctx context.Context, accountID, provider, label string) (*entity.ConversationGroup, error) {
	group := entity.NewConversationGroup(accountID, provider, label)
	if err := m.groupRepo.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create conversation group: %w", err)
	}
	return group, nil
}

// Group 加载账号名下的会话。属主不符与会话不存在一律返回
// ErrGroupNotFound，不向调用方泄露他人会话的存在。
func (m *Manager) Group(ctx context.Context, groupID, accountID string) (*entity.ConversationGroup, error) {
	group, err := m.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation group: %w", err)
	}
	if group == nil || group.AccountID != accountID {
		return nil, apperrors.ErrGroupNotFound
	}
	return group, nil
}

// LoadHistory 返回会话的历史轮次。groupID 为空（新聊天）
// 或会话尚无历史时返回空；需要 system 轮的由调用方自行补充。
func (m *Manager) LoadHistory(ctx context.Context, groupID string) ([]entity.Turn, error) {
	if groupID == "" {
		return nil, nil
	}

	if m.cache != nil {
		turns, ok, err := m.cache.GetHistory(ctx, groupID)
		if err != nil {
			logger.Warn(ctx, "history cache read failed", "group_id", groupID, "error", err.Error())
		} else if ok {
			return turns, nil
		}
	}

	group, err := m.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation group: %w", err)
	}
	if group == nil {
		return nil, apperrors.ErrGroupNotFound
	}

	turns, err := group.Turns()
	if err != nil {
		return nil, fmt.Errorf("failed to decode group history: %w", err)
	}

	if m.cache != nil {
		if err := m.cache.SetHistory(ctx, groupID, turns); err != nil {
			logger.Warn(ctx, "history cache write failed", "group_id", groupID, "error", err.Error())
		}
	}
	return turns, nil
}

// AppendTurn 在一次成功生成后追加 user/assistant 两条记录，
// 并截断到最近 entity.HistoryLimit 条。groupID 为空时整体跳过：
// 单次非会话生成不积累状态。
func (m *Manager) AppendTurn(ctx context.Context, groupID string, userTurn, modelTurn entity.Turn) error {
	if groupID == "" {
		return nil
	}

	group, err := m.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to load conversation group: %w", err)
	}
	if group == nil {
		return apperrors.ErrGroupNotFound
	}

	if err := group.AppendTurns(userTurn, modelTurn); err != nil {
		return fmt.Errorf("failed to append turns: %w", err)
	}
	if err := m.groupRepo.UpdateHistory(ctx, group); err != nil {
		return fmt.Errorf("failed to persist group history: %w", err)
	}

	if m.cache != nil {
		if err := m.cache.DelHistory(ctx, groupID); err != nil {
			logger.Warn(ctx, "history cache invalidation failed", "group_id", groupID, "error", err.Error())
		}
	}
	return nil
}
