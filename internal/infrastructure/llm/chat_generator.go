package llm

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/cloudwego/eino/schema"

	"ai-content-gateway/internal/application/adapter"
	"ai-content-gateway/internal/domain/entity"
)

// ChatGenerator 文本/代码模态的 Adapter 实现，基于 Eino ChatModel。
// 不支持原生多轮的供应商由复合提示词承载历史。
type ChatGenerator struct {
	factory *EinoFactory
}

// NewChatGenerator 创建文本生成 Adapter
func NewChatGenerator(factory *EinoFactory) *ChatGenerator {
	return &ChatGenerator{factory: factory}
}

var _ adapter.TextGenerator = (*ChatGenerator)(nil)

// Stream 发起流式生成
func (g *ChatGenerator) Stream(ctx context.Context, provider *entity.LLMProvider, transcript []entity.Turn) (adapter.DeltaStream, error) {
	chatModel, err := g.factory.Get(ctx, provider)
	if err != nil {
		return nil, adapter.Normalize(err)
	}

	msgs := buildMessages(provider, transcript)
	reader, err := chatModel.Stream(ctx, msgs)
	if err != nil {
		return nil, adapter.Normalize(err)
	}
	return &einoDeltaStream{reader: reader}, nil
}

// Invoke 发起非流式生成
func (g *ChatGenerator) Invoke(ctx context.Context, provider *entity.LLMProvider, transcript []entity.Turn) (string, adapter.Usage, error) {
	chatModel, err := g.factory.Get(ctx, provider)
	if err != nil {
		return "", adapter.Usage{}, adapter.Normalize(err)
	}

	msgs := buildMessages(provider, transcript)
	outMsg, err := chatModel.Generate(ctx, msgs)
	if err != nil {
		return "", adapter.Usage{}, adapter.Normalize(err)
	}
	if outMsg == nil {
		return "", adapter.Usage{}, adapter.Normalize(fmt.Errorf("empty llm response"))
	}

	usage := adapter.Usage{}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		usage.TotalTokens = int64(outMsg.ResponseMeta.Usage.TotalTokens)
	}
	return outMsg.Content, usage, nil
}

// buildMessages 把记录转换为供应商的消息格式
func buildMessages(provider *entity.LLMProvider, transcript []entity.Turn) []*schema.Message {
	if !adapter.NativeMultiTurn(provider.Vendor) {
		return []*schema.Message{schema.UserMessage(adapter.RenderComposite(transcript))}
	}

	msgs := make([]*schema.Message, 0, len(transcript))
	for _, turn := range transcript {
		switch turn.Role {
		case entity.RoleSystem:
			msgs = append(msgs, schema.SystemMessage(turn.Content))
		case entity.RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(turn.Content, nil))
		default:
			msgs = append(msgs, schema.UserMessage(turn.Content))
		}
	}
	return msgs
}

// einoDeltaStream 把 Eino StreamReader 适配为 DeltaStream。
// 约定：流可能在最后返回一个 Content 为空但包含 Usage 的消息，用于 Token 统计。
type einoDeltaStream struct {
	reader *schema.StreamReader[*schema.Message]
	usage  adapter.Usage

	closeOnce sync.Once
}

func (s *einoDeltaStream) Recv() (string, error) {
	for {
		msg, err := s.reader.Recv()
		if err == io.EOF {
			return "", io.EOF
		}
		if err != nil {
			return "", adapter.Normalize(err)
		}
		if msg == nil {
			continue
		}
		if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
			s.usage.TotalTokens = int64(msg.ResponseMeta.Usage.TotalTokens)
		}
		if msg.Content == "" {
			// 纯 Usage 尾包，不作为增量下发
			continue
		}
		return msg.Content, nil
	}
}

func (s *einoDeltaStream) Usage() adapter.Usage {
	return s.usage
}

func (s *einoDeltaStream) Close() {
	s.closeOnce.Do(func() {
		s.reader.Close()
	})
}
