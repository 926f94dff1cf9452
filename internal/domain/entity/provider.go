// Package entity 定义领域实体
package entity

import "time"

// Vendor 上游 LLM 供应商
type Vendor string

const (
	VendorOpenAI     Vendor = "openai"
	VendorGemini     Vendor = "gemini"
	VendorClaude     Vendor = "claude"
	VendorStability  Vendor = "stability"
	VendorElevenLabs Vendor = "elevenlabs"
)

// Capability Provider 能力
type Capability string

const (
	CapabilityText        Capability = "text"
	CapabilityCode        Capability = "code"
	CapabilityImageToText Capability = "image_to_text"
	CapabilityVideoToText Capability = "video_to_text"
	CapabilityTextToImage Capability = "text_to_image"
	CapabilityTextToAudio Capability = "text_to_audio"
	CapabilityAudioToText Capability = "audio_to_text"
)

// LLMProvider 管理端配置的上游模型。生成期间只读。
type LLMProvider struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"type:varchar(64);uniqueIndex;not null"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(128);not null"`
	Vendor      Vendor    `json:"vendor" gorm:"type:varchar(32);not null"`
	Model       string    `json:"model" gorm:"type:varchar(128);not null"`
	APIKey      string    `json:"-" gorm:"type:text"`
	BaseURL     string    `json:"base_url,omitempty" gorm:"type:text"`
	Text        bool      `json:"text" gorm:"not null;default:false"`
	Code        bool      `json:"code" gorm:"not null;default:false"`
	ImageToText bool      `json:"image_to_text" gorm:"not null;default:false"`
	VideoToText bool      `json:"video_to_text" gorm:"not null;default:false"`
	TextToImage bool      `json:"text_to_image" gorm:"not null;default:false"`
	TextToAudio bool      `json:"text_to_audio" gorm:"not null;default:false"`
	AudioToText bool      `json:"audio_to_text" gorm:"not null;default:false"`
	Enabled     bool      `json:"enabled" gorm:"not null;default:true"`
	Connected   bool      `json:"connected" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (LLMProvider) TableName() string {
	return "llm_providers"
}

// Available 报告 Provider 是否可以接收生成请求
func (p *LLMProvider) Available() bool {
	return p != nil && p.Enabled && p.Connected
}

// Supports 报告 Provider 是否支持指定能力
func (p *LLMProvider) Supports(cap Capability) bool {
	if p == nil {
		return false
	}
	switch cap {
	case CapabilityText:
		return p.Text
	case CapabilityCode:
		return p.Code
	case CapabilityImageToText:
		return p.ImageToText
	case CapabilityVideoToText:
		return p.VideoToText
	case CapabilityTextToImage:
		return p.TextToImage
	case CapabilityTextToAudio:
		return p.TextToAudio
	case CapabilityAudioToText:
		return p.AudioToText
	default:
		return false
	}
}
