// Package generation 提供生成会话编排
package generation

// DoneSentinel 终止消息的文本哨兵值
const DoneSentinel = "DONE"

// Message 流式响应协议的一条消息。每条增量消息携带
// Provider 展示名与到目前为止的累计文本（非本次片段），
// 客户端丢包后整体替换本地缓冲即可重新同步。
type Message struct {
	Provider   string `json:"provider"`
	Text       string `json:"text"`
	PromptID   string `json:"promptId,omitempty"`
	ResponseID string `json:"responseId,omitempty"`
	GroupID    string `json:"groupId,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Terminal 报告是否为会话的最后一条消息
func (m Message) Terminal() bool {
	return m.Text == DoneSentinel || m.Error != ""
}

// BinaryOutcome 二进制模态的同步响应：不走增量流，
// 直接返回存储键与记录 ID。
type BinaryOutcome struct {
	PromptID   string `json:"promptId"`
	ResponseID string `json:"responseId"`
	StorageKey string `json:"storageKey,omitempty"`
	Text       string `json:"text,omitempty"`
	ByteSize   int64  `json:"byteSize,omitempty"`
	TokenUsed  int64  `json:"tokenUsed"`
}
