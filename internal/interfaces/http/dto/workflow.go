package dto

import (
	"time"

	"ai-content-gateway/internal/domain/entity"
)

// WorkflowStepRequest 工作流步骤定义
type WorkflowStepRequest struct {
	Model  string `json:"model" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// WorkflowRequest 工作流链请求
type WorkflowRequest struct {
	// SourceKey 已上传源文件的存储键
	SourceKey string `json:"source_key" binding:"required"`
	// SourceKind 源类型：text / audio / image
	SourceKind string                `json:"source_kind" binding:"required"`
	Steps      []WorkflowStepRequest `json:"steps" binding:"required,min=1"`
}

// WorkflowAcceptedResponse 工作流接受响应
type WorkflowAcceptedResponse struct {
	JobID string `json:"job_id"`
}

// WorkflowStepView 工作流步骤快照
type WorkflowStepView struct {
	Model  string `json:"model"`
	Action string `json:"action"`
	Input  string `json:"input,omitempty"`
	Output string `json:"output,omitempty"`
	Status string `json:"status"`
}

// WorkflowJobResponse 工作流任务快照
type WorkflowJobResponse struct {
	JobID        string             `json:"job_id"`
	Status       string             `json:"status"`
	Steps        []WorkflowStepView `json:"steps"`
	FinalOutput  string             `json:"final_output,omitempty"`
	ErrorMessage string             `json:"error_message,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
}

// NewWorkflowJobResponse 从实体构造任务快照
func NewWorkflowJobResponse(job *entity.AiProcessJob) (*WorkflowJobResponse, error) {
	steps, err := job.StepList()
	if err != nil {
		return nil, err
	}

	views := make([]WorkflowStepView, len(steps))
	for i, step := range steps {
		views[i] = WorkflowStepView{
			Model:  step.Model,
			Action: step.Action,
			Input:  step.Input,
			Output: step.Output,
			Status: string(step.Status),
		}
	}

	return &WorkflowJobResponse{
		JobID:        job.ID,
		Status:       string(job.Status),
		Steps:        views,
		FinalOutput:  job.FinalOutput,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		CompletedAt:  job.CompletedAt,
	}, nil
}
