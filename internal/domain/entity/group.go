// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"
)

// Role 对话角色
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// HistoryLimit 会话历史缓冲区上限（条）。超出后丢弃最旧的条目。
const HistoryLimit = 20

// Turn 会话历史中的一条记录
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ConversationGroup 多轮对话会话。历史缓冲区只追加，
// 每次追加后截断到最近 HistoryLimit 条，尾部为权威上下文。
type ConversationGroup struct {
	ID        string          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AccountID string          `json:"account_id" gorm:"type:uuid;index;not null"`
	Provider  string          `json:"provider" gorm:"type:varchar(64);not null"`
	Label     string          `json:"label" gorm:"type:varchar(255)"`
	History   json.RawMessage `json:"history,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ConversationGroup) TableName() string {
	return "conversation_groups"
}

// NewConversationGroup 创建会话
func NewConversationGroup(accountID, provider, label string) *ConversationGroup {
	now := time.Now()
	return &ConversationGroup{
		AccountID: accountID,
		Provider:  provider,
		Label:     label,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Turns 解码历史缓冲区。空缓冲区返回空切片。
func (g *ConversationGroup) Turns() ([]Turn, error) {
	if g == nil || len(g.History) == 0 {
		return nil, nil
	}
	var turns []Turn
	if err := json.Unmarshal(g.History, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// AppendTurns 追加记录并截断到最近 HistoryLimit 条
func (g *ConversationGroup) AppendTurns(turns ...Turn) error {
	existing, err := g.Turns()
	if err != nil {
		return err
	}
	existing = append(existing, turns...)
	if len(existing) > HistoryLimit {
		existing = existing[len(existing)-HistoryLimit:]
	}
	raw, err := json.Marshal(existing)
	if err != nil {
		return err
	}
	g.History = raw
	g.UpdatedAt = time.Now()
	return nil
}
