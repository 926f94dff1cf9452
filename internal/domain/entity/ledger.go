// Package entity 定义领域实体
package entity

import "time"

// UsageLedgerEntry 一次生成对应的扣费记录。条目只追加，
// 是每次余额变动的证明；余额本身只是最终一致的缓存投影。
type UsageLedgerEntry struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AccountID string    `json:"account_id" gorm:"type:uuid;index;not null"`
	OwnerID   string    `json:"owner_id" gorm:"type:uuid;index;not null"`
	Provider  string    `json:"provider" gorm:"type:varchar(64);not null"`
	PromptID  string    `json:"prompt_id,omitempty" gorm:"type:uuid;index"`
	Kind      TokenKind `json:"kind" gorm:"type:varchar(8);not null"`
	Amount    int64     `json:"amount" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (UsageLedgerEntry) TableName() string {
	return "usage_ledger_entries"
}
