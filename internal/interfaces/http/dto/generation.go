package dto

// GenerationRequest 生成请求
type GenerationRequest struct {
	Provider     string `json:"provider"`
	Prompt       string `json:"prompt" binding:"required"`
	ResponseType int    `json:"response_type" binding:"required"`
	GroupID      string `json:"group_id,omitempty"`
	// GroupLabel 非空且 group_id 为空时开启新会话
	GroupLabel string `json:"group_label,omitempty"`
	WriterMode bool   `json:"writer_mode,omitempty"`
	// Attachment base64 编码的二进制输入（图片/音频/视频）
	Attachment            string `json:"attachment,omitempty"`
	AttachmentContentType string `json:"attachment_content_type,omitempty"`
}

// BinaryGenerationResponse 二进制模态的单次响应
type BinaryGenerationResponse struct {
	PromptID   string `json:"prompt_id"`
	ResponseID string `json:"response_id"`
	StorageKey string `json:"storage_key,omitempty"`
	Text       string `json:"text,omitempty"`
	ByteSize   int64  `json:"byte_size,omitempty"`
	TokenUsed  int64  `json:"token_used"`
}

// HistoryTurn 会话历史中的一轮
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GroupHistoryResponse 会话历史响应
type GroupHistoryResponse struct {
	GroupID string        `json:"group_id"`
	Turns   []HistoryTurn `json:"turns"`
}
