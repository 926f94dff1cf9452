// Package llm 提供上游 LLM 客户端的基础设施实现
package llm

import (
	"context"
	"fmt"
	"sync"

	"ai-content-gateway/internal/config"
	"ai-content-gateway/internal/domain/entity"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// EinoFactory 管理多个 Eino ChatModel 客户端实例。
// 客户端按 Provider 名称惰性构建并复用；每个 Provider 携带
// 自己的 API Key（管理端配置），静态配置只作兜底。
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 获取指定 Provider 的 ChatModel
func (f *EinoFactory) Get(ctx context.Context, provider *entity.LLMProvider) (model.BaseChatModel, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is nil")
	}

	f.mu.RLock()
	m, ok := f.models[provider.Name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	// 惰性加载
	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[provider.Name]; ok {
		return m, nil
	}

	cred := f.credential(provider)
	if cred.APIKey == "" {
		return nil, fmt.Errorf("no credentials configured for provider %s", provider.Name)
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cred.APIKey,
		BaseURL: cred.BaseURL,
		Model:   cred.Model,
		Timeout: cred.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", provider.Name, err)
	}

	f.models[provider.Name] = chatModel
	return chatModel, nil
}

// credential 合并 Provider 自带凭据和静态配置兜底
func (f *EinoFactory) credential(provider *entity.LLMProvider) config.ProviderCredential {
	var cred config.ProviderCredential
	if f.config != nil {
		cred = f.config.Providers[provider.Name]
	}
	if provider.APIKey != "" {
		cred.APIKey = provider.APIKey
	}
	if provider.BaseURL != "" {
		cred.BaseURL = provider.BaseURL
	}
	if provider.Model != "" {
		cred.Model = provider.Model
	}
	return cred
}
