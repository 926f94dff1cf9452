// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"
)

// StepStatus 工作流步骤状态
type StepStatus string

const (
	StepStatusPending StepStatus = "pending"
	StepStatusDone    StepStatus = "done"
	StepStatusFailed  StepStatus = "failed"
)

// WorkflowStep 工作流链中的一步。Input/Output 在执行后回填。
type WorkflowStep struct {
	Model  string     `json:"model"`
	Action string     `json:"action"`
	Input  string     `json:"input,omitempty"`
	Output string     `json:"output,omitempty"`
	Status StepStatus `json:"status"`
}

// JobStatus 工作流任务状态。done/failed 为终态，不会再变更。
type JobStatus string

const (
	JobStatusPending JobStatus = "pending"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// AiProcessJob 工作流链任务
type AiProcessJob struct {
	ID           string          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AccountID    string          `json:"account_id" gorm:"type:uuid;index;not null"`
	SourceKey    string          `json:"source_key" gorm:"type:varchar(255);not null"`
	SourceKind   string          `json:"source_kind" gorm:"type:varchar(32);not null"`
	InputText    string          `json:"input_text,omitempty" gorm:"type:text"`
	Steps        json.RawMessage `json:"steps" gorm:"type:jsonb;not null"`
	Status       JobStatus       `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
	FinalOutput  string          `json:"final_output,omitempty" gorm:"type:text"`
	ErrorMessage string          `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

func (AiProcessJob) TableName() string {
	return "ai_process_jobs"
}

// NewAiProcessJob 创建工作流任务，所有步骤初始为 pending
func NewAiProcessJob(accountID, sourceKey, sourceKind string, steps []WorkflowStep) (*AiProcessJob, error) {
	for i := range steps {
		steps[i].Status = StepStatusPending
	}
	raw, err := json.Marshal(steps)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &AiProcessJob{
		AccountID:  accountID,
		SourceKey:  sourceKey,
		SourceKind: sourceKind,
		Steps:      raw,
		Status:     JobStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// StepList 解码步骤列表
func (j *AiProcessJob) StepList() ([]WorkflowStep, error) {
	if j == nil || len(j.Steps) == 0 {
		return nil, nil
	}
	var steps []WorkflowStep
	if err := json.Unmarshal(j.Steps, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}

// SetSteps 编码并回写步骤列表
func (j *AiProcessJob) SetSteps(steps []WorkflowStep) error {
	raw, err := json.Marshal(steps)
	if err != nil {
		return err
	}
	j.Steps = raw
	j.UpdatedAt = time.Now()
	return nil
}

// Terminal 报告任务是否处于终态
func (j *AiProcessJob) Terminal() bool {
	return j != nil && (j.Status == JobStatusDone || j.Status == JobStatusFailed)
}

// Complete 任务成功。最终输出保留链前的原始提取文本。
func (j *AiProcessJob) Complete(sourceText string) {
	if j.Terminal() {
		return
	}
	now := time.Now()
	j.Status = JobStatusDone
	j.FinalOutput = sourceText
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// Fail 任务失败
func (j *AiProcessJob) Fail(errMsg string) {
	if j.Terminal() {
		return
	}
	now := time.Now()
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.CompletedAt = &now
	j.UpdatedAt = now
}
