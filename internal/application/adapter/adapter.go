// Package adapter 定义 Provider Adapter 抽象：
// 把异构上游 LLM 供应商统一为一个归一化的生成契约。
package adapter

import (
	"context"

	"ai-content-gateway/internal/domain/entity"
)

// Usage 上游流结束后的最终用量
type Usage struct {
	TotalTokens int64 `json:"total_tokens"`
}

// DeltaStream 惰性有限的增量文本片段序列。
// Recv 在流结束时返回 io.EOF；Usage 仅在 EOF 之后有效。
// 消费方 context 取消必须终止上游调用。
type DeltaStream interface {
	Recv() (string, error)
	Usage() Usage
	Close()
}

// Attachment 请求附带的二进制输入（图片/音频/视频）
type Attachment struct {
	Data        []byte
	ContentType string
}

// BinaryResult 非流式模态的单次二进制输出
type BinaryResult struct {
	Data        []byte
	ContentType string
	Usage       Usage
}

// BinaryRequest 非流式生成请求
type BinaryRequest struct {
	Prompt     string
	Attachment *Attachment
	Capability entity.Capability
}

// TextGenerator 文本/代码模态的生成契约。
// transcript 为历史轮次加本轮用户输入；
// 不支持原生多轮的实现自行渲染复合提示词。
type TextGenerator interface {
	// Stream 发起流式生成
	Stream(ctx context.Context, provider *entity.LLMProvider, transcript []entity.Turn) (DeltaStream, error)

	// Invoke 发起非流式生成，返回完整文本与用量
	Invoke(ctx context.Context, provider *entity.LLMProvider, transcript []entity.Turn) (string, Usage, error)
}

// BinaryGenerator 二进制模态（图片/语音/转写/描述）的生成契约
type BinaryGenerator interface {
	Generate(ctx context.Context, provider *entity.LLMProvider, req BinaryRequest) (*BinaryResult, error)
}
