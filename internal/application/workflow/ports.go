package workflow

import (
	"context"

	"ai-content-gateway/internal/application/generation"
)

// Notifier 通知端口。投递即忘，失败只记日志不影响任务终态。
type Notifier interface {
	Notify(ctx context.Context, accountEmail, subject, message string) error
}

// Extractor 内容提取端口：把存储的源文件提取为纯文本。
// 提取失败以任务自身的 failed 状态呈现，错误信息即提取错误。
type Extractor interface {
	Extract(ctx context.Context, sourceKey, sourceKind string) (string, error)
}

// JobQueue 任务入队端口，接受请求后异步触发执行
type JobQueue interface {
	EnqueueJob(ctx context.Context, jobID string) error
}

// TextInvoker 每个步骤内部执行一次非流式文本生成，
// 走与普通生成相同的落库与扣费路径。
type TextInvoker interface {
	Invoke(ctx context.Context, req generation.Request) (*generation.TextOutcome, error)
}
