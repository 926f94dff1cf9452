package handler

import (
	"github.com/gin-gonic/gin"

	"ai-content-gateway/internal/application/conversation"
	"ai-content-gateway/internal/domain/repository"
	"ai-content-gateway/internal/interfaces/http/dto"
	apperrors "ai-content-gateway/pkg/errors"
)

// GroupHandler 会话处理器
type GroupHandler struct {
	groups    *conversation.Manager
	groupRepo repository.GroupRepository
}

// NewGroupHandler 创建会话处理器
func NewGroupHandler(groups *conversation.Manager, groupRepo repository.GroupRepository) *GroupHandler {
	return &GroupHandler{groups: groups, groupRepo: groupRepo}
}

// History 返回会话的历史缓冲区
// @Summary 查询会话历史
// @Tags Groups
// @Produce json
// @Param id path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.GroupHistoryResponse]
// @Router /v1/groups/{id}/history [get]
func (h *GroupHandler) History(c *gin.Context) {
	groupID := c.Param("id")

	group, err := h.groupRepo.GetByID(c.Request.Context(), groupID)
	if err != nil {
		dto.AppError(c, err)
		return
	}
	if group == nil {
		dto.AppError(c, apperrors.ErrGroupNotFound)
		return
	}
	if accountID := c.GetString("account_id"); accountID != "" && group.AccountID != accountID {
		dto.AppError(c, apperrors.ErrGroupNotFound)
		return
	}

	turns, err := h.groups.LoadHistory(c.Request.Context(), groupID)
	if err != nil {
		dto.AppError(c, err)
		return
	}

	views := make([]dto.HistoryTurn, len(turns))
	for i, turn := range turns {
		views[i] = dto.HistoryTurn{Role: string(turn.Role), Content: turn.Content}
	}
	dto.Success(c, dto.GroupHistoryResponse{GroupID: groupID, Turns: views})
}
