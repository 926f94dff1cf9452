// Package entity 定义领域实体
package entity

import "time"

// TokenKind 账本 Token 池类型
type TokenKind string

const (
	TokenKindText TokenKind = "text"
	TokenKindFile TokenKind = "file"
)

// Account 账号。ClusterID 非空时为企业/组织模式，
// 扣费重定向到集群的共享订阅。
type Account struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	ClusterID string    `json:"cluster_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Account) TableName() string {
	return "accounts"
}

// Subscription 订阅余额记录。OwnerID 指向账号或集群；
// 余额是账本条目的缓存投影，账本是权威事实。
type Subscription struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID    string    `json:"owner_id" gorm:"type:uuid;uniqueIndex;not null"`
	TextTokens int64     `json:"text_tokens" gorm:"not null;default:0"`
	FileTokens int64     `json:"file_tokens" gorm:"not null;default:0"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// Active 报告订阅是否未过期
func (s *Subscription) Active(now time.Time) bool {
	return s != nil && s.ExpiresAt.After(now)
}

// Balance 返回指定 Token 池的余额
func (s *Subscription) Balance(kind TokenKind) int64 {
	if s == nil {
		return 0
	}
	if kind == TokenKindFile {
		return s.FileTokens
	}
	return s.TextTokens
}
