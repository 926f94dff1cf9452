// Package entity 定义领域实体
package entity

import "time"

// ResponseType 生成响应类型编码
type ResponseType int

const (
	ResponseTypeText         ResponseType = 2
	ResponseTypeImageToText  ResponseType = 3
	ResponseTypeTextToImage  ResponseType = 4
	ResponseTypeTextToSpeech ResponseType = 5
	ResponseTypeSpeechToText ResponseType = 6
	ResponseTypeCode         ResponseType = 7
	ResponseTypePromptWriter ResponseType = 8
	ResponseTypeVideoToText  ResponseType = 9
)

// Capability 返回响应类型对应的 Provider 能力
func (t ResponseType) Capability() Capability {
	switch t {
	case ResponseTypeCode:
		return CapabilityCode
	case ResponseTypeImageToText:
		return CapabilityImageToText
	case ResponseTypeVideoToText:
		return CapabilityVideoToText
	case ResponseTypeTextToImage:
		return CapabilityTextToImage
	case ResponseTypeTextToSpeech:
		return CapabilityTextToAudio
	case ResponseTypeSpeechToText:
		return CapabilityAudioToText
	default:
		// 文本与 prompt-writer 共用 text 能力
		return CapabilityText
	}
}

// Streaming 报告该响应类型是否走增量流式协议
func (t ResponseType) Streaming() bool {
	switch t {
	case ResponseTypeText, ResponseTypeCode, ResponseTypePromptWriter:
		return true
	default:
		return false
	}
}

// Prompt 一次用户请求的持久化记录，在响应产生前写入
type Prompt struct {
	ID            string       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AccountID     string       `json:"account_id" gorm:"type:uuid;index;not null"`
	GroupID       string       `json:"group_id,omitempty" gorm:"type:uuid;index"`
	Text          string       `json:"text" gorm:"type:text"`
	AttachmentKey string       `json:"attachment_key,omitempty" gorm:"type:varchar(255)"`
	ResponseType  ResponseType `json:"response_type" gorm:"not null"`
	CreatedAt     time.Time    `json:"created_at" gorm:"autoCreateTime"`
}

func (Prompt) TableName() string {
	return "prompts"
}

// PromptResponse 一次生成输出的持久化记录，在上游流结束后写入
type PromptResponse struct {
	ID           string       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PromptID     string       `json:"prompt_id" gorm:"type:uuid;uniqueIndex;not null"`
	AccountID    string       `json:"account_id" gorm:"type:uuid;index;not null"`
	Provider     string       `json:"provider" gorm:"type:varchar(64);not null"`
	ResponseType ResponseType `json:"response_type" gorm:"not null"`
	Text         string       `json:"text,omitempty" gorm:"type:text"`
	StorageKey   string       `json:"storage_key,omitempty" gorm:"type:varchar(255)"`
	TokenUsed    int64        `json:"token_used" gorm:"not null;default:0"`
	ByteSize     int64        `json:"byte_size,omitempty" gorm:"not null;default:0"`
	CreatedAt    time.Time    `json:"created_at" gorm:"autoCreateTime"`
}

func (PromptResponse) TableName() string {
	return "prompt_responses"
}
