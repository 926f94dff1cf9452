package workflow

import (
	"context"
	"fmt"
	"time"

	"ai-content-gateway/internal/application/generation"
	"ai-content-gateway/internal/domain/entity"
	"ai-content-gateway/internal/domain/repository"
	apperrors "ai-content-gateway/pkg/errors"
	"ai-content-gateway/pkg/logger"
	"ai-content-gateway/pkg/metrics"
)

// Executor 工作流链执行器。每个任务是一个独立的后台执行单元，
// 步骤严格串行：步骤 i+1 的输入是步骤 i 的输出。
type Executor struct {
	jobRepo     repository.JobRepository
	accountRepo repository.AccountRepository
	extractor   Extractor
	notifier    Notifier
	invoker     TextInvoker
}

// NewExecutor 创建工作流链执行器
func NewExecutor(
	jobRepo repository.JobRepository,
	accountRepo repository.AccountRepository,
	extractor Extractor,
	notifier Notifier,
	invoker TextInvoker,
) *Executor {
	return &Executor{
		jobRepo:     jobRepo,
		accountRepo: accountRepo,
		extractor:   extractor,
		notifier:    notifier,
		invoker:     invoker,
	}
}

// Execute 运行一个任务直至终态。业务性失败（提取失败、步骤失败）
// 记录在任务自身并返回 nil，消息视为已处理；只有加载/回写任务
// 本身的错误才返回，交给队列重试。重复投递对终态任务是幂等的。
func (e *Executor) Execute(ctx context.Context, jobID string) error {
	job, err := e.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	if job == nil {
		logger.Warn(ctx, "process job not found, dropping delivery", "job_id", jobID)
		return nil
	}
	if job.Terminal() {
		logger.Info(ctx, "process job already terminal, skipping redelivery",
			"job_id", jobID,
			"status", string(job.Status),
		)
		return nil
	}

	ctx = logger.WithContext(ctx, logger.JobIDKey, job.ID)

	sourceText := job.InputText
	if sourceText == "" {
		sourceText, err = e.extractor.Extract(ctx, job.SourceKey, job.SourceKind)
		if err != nil {
			// 提取失败即任务失败，错误信息原样落在任务上
			return e.fail(ctx, job, apperrors.AsAppError(err).Message)
		}
		// 提取结果立即落库，后续回写失败重投时不再重复提取
		job.InputText = sourceText
		if err := e.jobRepo.Update(ctx, job); err != nil {
			return fmt.Errorf("failed to persist extracted text for job %s: %w", job.ID, err)
		}
	}

	steps, err := job.StepList()
	if err != nil {
		return e.fail(ctx, job, "corrupt step list")
	}

	input := sourceText
	for i := range steps {
		output, stepErr := e.runStep(ctx, job.AccountID, input, &steps[i])
		if stepErr != nil {
			// 首个错误即中止：当前步骤记录输入并置 failed，后续步骤保持 pending
			steps[i].Input = input
			steps[i].Status = entity.StepStatusFailed
			if err := job.SetSteps(steps); err != nil {
				return e.fail(ctx, job, "failed to encode steps")
			}
			reason := fmt.Sprintf("step %d (%s) failed: %s", i+1, steps[i].Model, apperrors.AsAppError(stepErr).Message)
			return e.fail(ctx, job, reason)
		}

		steps[i].Input = input
		steps[i].Output = output
		steps[i].Status = entity.StepStatusDone
		if err := job.SetSteps(steps); err != nil {
			return e.fail(ctx, job, "failed to encode steps")
		}
		// 每步执行后回写，进度对轮询可见
		if err := e.jobRepo.Update(ctx, job); err != nil {
			return fmt.Errorf("failed to persist step progress for job %s: %w", job.ID, err)
		}
		input = output
	}

	// 最终输出保留链前的原始提取文本，作为权威记录
	job.Complete(sourceText)
	if err := e.jobRepo.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to persist completed job %s: %w", job.ID, err)
	}
	metrics.WorkflowJobsTotal.WithLabelValues(string(entity.JobStatusDone)).Inc()
	e.notify(ctx, job, "Workflow completed", fmt.Sprintf("All %d steps completed successfully.", len(steps)))
	logger.Info(ctx, "workflow job completed", "job_id", job.ID, "steps", len(steps))
	return nil
}

// runStep 执行单个步骤：渲染提示词后做一次非流式文本生成
func (e *Executor) runStep(ctx context.Context, accountID, input string, step *entity.WorkflowStep) (string, error) {
	start := time.Now()
	outcome, err := e.invoker.Invoke(ctx, generation.Request{
		AccountID:    accountID,
		Provider:     step.Model,
		Prompt:       renderStepPrompt(input, step.Action),
		ResponseType: entity.ResponseTypeText,
	})
	if err != nil {
		return "", err
	}
	metrics.WorkflowStepDuration.WithLabelValues(step.Model).Observe(time.Since(start).Seconds())
	return outcome.Text, nil
}

// renderStepPrompt 把步骤输入与指令拼成提示词
func renderStepPrompt(input, action string) string {
	return fmt.Sprintf("%s\n%s for above text", input, action)
}

// fail 把任务置为 failed 并通知用户
func (e *Executor) fail(ctx context.Context, job *entity.AiProcessJob, reason string) error {
	job.Fail(reason)
	if err := e.jobRepo.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to persist failed job %s: %w", job.ID, err)
	}
	metrics.WorkflowJobsTotal.WithLabelValues(string(entity.JobStatusFailed)).Inc()
	e.notify(ctx, job, "Workflow failed", reason)
	logger.Warn(ctx, "workflow job failed", "job_id", job.ID, "reason", reason)
	return nil
}

// notify 投递即忘。通知失败不改变任务终态。
func (e *Executor) notify(ctx context.Context, job *entity.AiProcessJob, subject, message string) {
	account, err := e.accountRepo.GetByID(ctx, job.AccountID)
	if err != nil || account == nil {
		logger.Warn(ctx, "failed to resolve account for notification", "account_id", job.AccountID)
		return
	}
	if err := e.notifier.Notify(ctx, account.Email, subject, message); err != nil {
		logger.Warn(ctx, "failed to send workflow notification", "job_id", job.ID, "error", err.Error())
	}
}
