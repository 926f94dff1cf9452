package adapter

import (
	"strings"

	"ai-content-gateway/internal/domain/entity"
)

// NativeMultiTurn 报告供应商是否支持原生多轮对话格式。
// 不支持的供应商由 RenderComposite 渲染单条复合提示词。
func NativeMultiTurn(vendor entity.Vendor) bool {
	switch vendor {
	case entity.VendorOpenAI, entity.VendorClaude:
		return true
	default:
		return false
	}
}

// RenderComposite 把多轮记录渲染为单条复合提示词。
// 最后一条 user 轮作为本轮输入，其余作为会话历史。
func RenderComposite(transcript []entity.Turn) string {
	if len(transcript) == 0 {
		return ""
	}

	last := transcript[len(transcript)-1]
	history := transcript[:len(transcript)-1]

	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Conversation History:\n")
		for _, turn := range history {
			switch turn.Role {
			case entity.RoleAssistant:
				b.WriteString("Model: ")
			case entity.RoleSystem:
				b.WriteString("System: ")
			default:
				b.WriteString("User: ")
			}
			b.WriteString(turn.Content)
			b.WriteString("\n")
		}
	}
	b.WriteString("User: ")
	b.WriteString(last.Content)
	b.WriteString("\nModel:")
	return b.String()
}
