package handler

import (
	"github.com/gin-gonic/gin"

	"ai-content-gateway/internal/application/workflow"
	"ai-content-gateway/internal/interfaces/http/dto"
)

// WorkflowHandler 工作流链处理器
type WorkflowHandler struct {
	service *workflow.Service
}

// NewWorkflowHandler 创建工作流链处理器
func NewWorkflowHandler(service *workflow.Service) *WorkflowHandler {
	return &WorkflowHandler{service: service}
}

// Start 接受一个工作流链任务，返回 202 与任务 ID。
// 执行是异步的，进度通过任务快照轮询。
// @Summary 发起工作流链
// @Tags Workflows
// @Accept json
// @Produce json
// @Success 202 {object} dto.Response[dto.WorkflowAcceptedResponse]
// @Router /v1/workflows [post]
func (h *WorkflowHandler) Start(c *gin.Context) {
	var req dto.WorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	accountID := c.GetString("account_id")
	if accountID == "" {
		dto.Unauthorized(c, "missing account identity")
		return
	}

	steps := make([]workflow.StepInput, len(req.Steps))
	for i, step := range req.Steps {
		steps[i] = workflow.StepInput{Model: step.Model, Action: step.Action}
	}

	jobID, err := h.service.StartWorkflow(c.Request.Context(), accountID, req.SourceKey, req.SourceKind, steps)
	if err != nil {
		dto.AppError(c, err)
		return
	}

	dto.Accepted(c, dto.WorkflowAcceptedResponse{JobID: jobID})
}

// Get 返回任务快照
// @Summary 查询工作流任务
// @Tags Workflows
// @Produce json
// @Param id path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.WorkflowJobResponse]
// @Router /v1/workflows/{id} [get]
func (h *WorkflowHandler) Get(c *gin.Context) {
	job, err := h.service.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.AppError(c, err)
		return
	}

	// 任务只对属主可见
	if accountID := c.GetString("account_id"); accountID != "" && job.AccountID != accountID {
		dto.NotFound(c, "process job not found")
		return
	}

	view, err := dto.NewWorkflowJobResponse(job)
	if err != nil {
		dto.InternalError(c, "failed to decode job steps")
		return
	}
	dto.Success(c, view)
}
