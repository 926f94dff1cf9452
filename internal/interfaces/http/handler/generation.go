// Package handler 提供 HTTP 请求处理器
package handler

import (
	"encoding/base64"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"ai-content-gateway/internal/application/adapter"
	"ai-content-gateway/internal/application/admission"
	"ai-content-gateway/internal/application/generation"
	"ai-content-gateway/internal/domain/entity"
	"ai-content-gateway/internal/interfaces/http/dto"
	"ai-content-gateway/pkg/logger"
)

// GenerationHandler 生成请求处理器
type GenerationHandler struct {
	orchestrator    *generation.Orchestrator
	admission       *admission.Checker
	defaultProvider string
}

// NewGenerationHandler 创建生成请求处理器
func NewGenerationHandler(orchestrator *generation.Orchestrator, checker *admission.Checker, defaultProvider string) *GenerationHandler {
	return &GenerationHandler{
		orchestrator:    orchestrator,
		admission:       checker,
		defaultProvider: defaultProvider,
	}
}

// Generate 发起一次生成。文本/代码模态走 SSE 增量推送，
// 二进制模态返回单次 JSON 响应。
// @Summary 发起生成
// @Tags Generations
// @Accept json
// @Produce text/event-stream
// @Produce json
// @Success 200 "SSE stream or binary outcome"
// @Router /v1/generations [post]
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req dto.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	accountID := c.GetString("account_id")
	if accountID == "" {
		dto.Unauthorized(c, "missing account identity")
		return
	}

	// 入场控制：订阅有效且余额高于下限，流中不再复查
	if err := h.admission.Allow(c.Request.Context(), accountID); err != nil {
		dto.AppError(c, err)
		return
	}

	provider := strings.TrimSpace(req.Provider)
	if provider == "" {
		provider = h.defaultProvider
	}

	genReq := generation.Request{
		AccountID:    accountID,
		Provider:     provider,
		Prompt:       req.Prompt,
		ResponseType: entity.ResponseType(req.ResponseType),
		GroupID:      req.GroupID,
		GroupLabel:   req.GroupLabel,
		WriterMode:   req.WriterMode,
	}

	if req.Attachment != "" {
		data, err := base64.StdEncoding.DecodeString(req.Attachment)
		if err != nil {
			dto.BadRequest(c, "attachment is not valid base64")
			return
		}
		genReq.Attachment = &adapter.Attachment{
			Data:        data,
			ContentType: req.AttachmentContentType,
		}
	}

	if genReq.ResponseType.Streaming() {
		h.streamGeneration(c, genReq)
		return
	}

	outcome, err := h.orchestrator.GenerateBinary(c.Request.Context(), genReq)
	if err != nil {
		dto.AppError(c, err)
		return
	}

	dto.Success(c, dto.BinaryGenerationResponse{
		PromptID:   outcome.PromptID,
		ResponseID: outcome.ResponseID,
		StorageKey: outcome.StorageKey,
		Text:       outcome.Text,
		ByteSize:   outcome.ByteSize,
		TokenUsed:  outcome.TokenUsed,
	})
}

// streamGeneration 把编排器的协议消息转发为 SSE 事件
func (h *GenerationHandler) streamGeneration(c *gin.Context, req generation.Request) {
	messages, err := h.orchestrator.StartGeneration(c.Request.Context(), req)
	if err != nil {
		dto.AppError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-messages:
			if !ok {
				return false
			}
			c.SSEvent("message", msg)
			return !msg.Terminal()

		case <-c.Request.Context().Done():
			// 客户端断开：停止推送，编排器在后台跑完会话
			logger.Info(c.Request.Context(), "client disconnected during stream")
			return false
		}
	})
}
