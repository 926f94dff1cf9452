// Package extract 把存储的源文件提取为纯文本，
// 供工作流链作为链前输入使用。
package extract

import (
	"context"
	"fmt"
	"strings"

	"ai-content-gateway/internal/application/adapter"
	"ai-content-gateway/internal/domain/entity"
	"ai-content-gateway/internal/domain/repository"
	apperrors "ai-content-gateway/pkg/errors"
)

// Extractor 内容提取实现。纯文本对象直接透传，
// 音频走转写 Adapter，图片走描述 Adapter。
type Extractor struct {
	storage         repository.ObjectStorage
	providerRepo    repository.ProviderRepository
	registry        *adapter.Registry
	defaultProvider string
}

// NewExtractor 创建内容提取器
func NewExtractor(
	storage repository.ObjectStorage,
	providerRepo repository.ProviderRepository,
	registry *adapter.Registry,
	defaultProvider string,
) *Extractor {
	return &Extractor{
		storage:         storage,
		providerRepo:    providerRepo,
		registry:        registry,
		defaultProvider: defaultProvider,
	}
}

// Extract 按源类型把存储对象提取为纯文本
func (e *Extractor) Extract(ctx context.Context, sourceKey, sourceKind string) (string, error) {
	data, contentType, err := e.storage.Get(ctx, sourceKey)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExtractionFailed, fmt.Sprintf("failed to load source %s", sourceKey))
	}

	switch sourceKind {
	case "text":
		return string(data), nil
	case "audio":
		return e.viaBinaryAdapter(ctx, entity.CapabilityAudioToText, data, contentType)
	case "image":
		return e.viaBinaryAdapter(ctx, entity.CapabilityImageToText, data, contentType)
	default:
		if strings.HasPrefix(contentType, "text/") {
			return string(data), nil
		}
		return "", apperrors.New(apperrors.CodeExtractionFailed, fmt.Sprintf("unsupported source kind %q", sourceKind))
	}
}

// viaBinaryAdapter 用默认 Provider 的二进制 Adapter 做转写/描述
func (e *Extractor) viaBinaryAdapter(ctx context.Context, capability entity.Capability, data []byte, contentType string) (string, error) {
	provider, err := e.providerRepo.GetByName(ctx, e.defaultProvider)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExtractionFailed, "failed to resolve extraction provider")
	}
	if provider == nil || !provider.Available() {
		return "", apperrors.New(apperrors.CodeExtractionFailed, "extraction provider unavailable")
	}

	gen, err := e.registry.Binary(provider.Vendor, capability)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExtractionFailed, "no extraction adapter for source")
	}

	result, err := gen.Generate(ctx, provider, adapter.BinaryRequest{
		Attachment: &adapter.Attachment{Data: data, ContentType: contentType},
		Capability: capability,
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExtractionFailed, "source extraction failed")
	}
	return string(result.Data), nil
}
