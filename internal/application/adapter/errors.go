package adapter

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	goopenai "github.com/meguminnnnnnnnn/go-openai"

	apperrors "ai-content-gateway/pkg/errors"
)

// httpStatusPattern 只识别带明确状态语境的三位数字，
// 避免把模型名里的数字（如 gpt-404）误当成状态码。
var httpStatusPattern = regexp.MustCompile(`(?:status(?: code)?|code|http|returned)[ :=]+([1-5][0-9]{2})\b`)

// Normalize 把供应商错误归一化为网关错误分类。
// 供应商的原生错误类型不允许越过 Adapter 边界。
// 分类优先走结构化状态码（SDK 错误类型或带状态语境的文案），
// 文案关键词只作兜底。
func Normalize(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.CodeUpstreamTransient, "upstream call cancelled")
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperrors.Wrap(err, apperrors.CodeUpstreamTransient, "upstream stream interrupted")
	}

	if status := upstreamStatus(err); status != 0 {
		return classifyStatus(err, status)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "rate limit", "rate_limit", "too many requests", "quota exceeded", "insufficient_quota"):
		return apperrors.Wrap(err, apperrors.CodeUpstreamRateLimited, "upstream rate limited")
	case containsAny(msg, "invalid model", "model not found", "model_not_found", "invalid request", "invalid_request", "unsupported", "context length", "unauthorized", "invalid api key"):
		return apperrors.Wrap(err, apperrors.CodeUpstreamRejected, "upstream rejected request")
	case containsAny(msg, "timeout", "timed out", "connection refused", "connection reset", "temporarily", "unavailable", "overloaded"):
		return apperrors.Wrap(err, apperrors.CodeUpstreamTransient, "upstream temporarily unavailable")
	default:
		return apperrors.Wrap(err, apperrors.CodeUnknown, "upstream call failed")
	}
}

// upstreamStatus 从供应商错误中提取 HTTP 状态码。
// 优先识别 SDK 的结构化错误类型，其次才从文案中提取。
func upstreamStatus(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	if m := httpStatusPattern.FindStringSubmatch(strings.ToLower(err.Error())); m != nil {
		status, _ := strconv.Atoi(m[1])
		return status
	}
	return 0
}

// classifyStatus 按 HTTP 状态码分类上游错误
func classifyStatus(err error, status int) error {
	switch {
	case status == 429:
		return apperrors.Wrap(err, apperrors.CodeUpstreamRateLimited, "upstream rate limited")
	case status >= 400 && status < 500:
		return apperrors.Wrap(err, apperrors.CodeUpstreamRejected, "upstream rejected request")
	case status >= 500:
		return apperrors.Wrap(err, apperrors.CodeUpstreamTransient, "upstream temporarily unavailable")
	default:
		return apperrors.Wrap(err, apperrors.CodeUnknown, "upstream call failed")
	}
}

// IsRetryable 报告归一化后的错误是否原则上可重试。
// 网关自身不重试生成调用（避免重复扣费），调用方可据此决定是否重新提交。
func IsRetryable(err error) bool {
	appErr := apperrors.AsAppError(err)
	return appErr.Code == apperrors.CodeUpstreamRateLimited || appErr.Code == apperrors.CodeUpstreamTransient
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
