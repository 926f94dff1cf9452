package llm

import (
	"ai-content-gateway/internal/application/adapter"
	"ai-content-gateway/internal/config"
	"ai-content-gateway/internal/domain/entity"
)

// BuildRegistry 按供应商装配 Adapter 注册表。
// 所有客户端在进程启动时构建一次并注入，不依赖包级全局状态。
func BuildRegistry(cfg *config.Config) *adapter.Registry {
	factory := NewEinoFactory(cfg)
	chat := NewChatGenerator(factory)
	rest := NewRESTBinaryGenerator(cfg)

	registry := adapter.NewRegistry()

	// 聊天协议供应商共用同一个 Eino 实现；复合提示词渲染
	// 由 Adapter 按 vendor 决定
	for _, vendor := range []entity.Vendor{entity.VendorOpenAI, entity.VendorGemini, entity.VendorClaude} {
		registry.RegisterText(vendor, chat)
	}

	registry.RegisterBinary(entity.VendorOpenAI, entity.CapabilityTextToImage, rest)
	registry.RegisterBinary(entity.VendorOpenAI, entity.CapabilityTextToAudio, rest)
	registry.RegisterBinary(entity.VendorOpenAI, entity.CapabilityAudioToText, rest)
	registry.RegisterBinary(entity.VendorOpenAI, entity.CapabilityImageToText, rest)
	registry.RegisterBinary(entity.VendorOpenAI, entity.CapabilityVideoToText, rest)
	registry.RegisterBinary(entity.VendorGemini, entity.CapabilityImageToText, rest)
	registry.RegisterBinary(entity.VendorGemini, entity.CapabilityVideoToText, rest)
	registry.RegisterBinary(entity.VendorStability, entity.CapabilityTextToImage, rest)
	registry.RegisterBinary(entity.VendorElevenLabs, entity.CapabilityTextToAudio, rest)

	return registry
}
