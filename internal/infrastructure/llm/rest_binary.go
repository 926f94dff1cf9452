package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"ai-content-gateway/internal/application/adapter"
	"ai-content-gateway/internal/config"
	"ai-content-gateway/internal/domain/entity"
	apperrors "ai-content-gateway/pkg/errors"
)

const defaultBinaryTimeout = 120 * time.Second

// RESTBinaryGenerator 二进制模态的 Adapter 实现，直接调用供应商 REST 端点。
// 二进制调用自带 HTTP 超时，失败走与文本模态相同的归一化错误通道。
type RESTBinaryGenerator struct {
	config     *config.LLMConfig
	httpClient *http.Client
}

// NewRESTBinaryGenerator 创建二进制生成 Adapter
func NewRESTBinaryGenerator(cfg *config.Config) *RESTBinaryGenerator {
	timeout := cfg.LLM.BinaryTimeout
	if timeout <= 0 {
		timeout = defaultBinaryTimeout
	}
	return &RESTBinaryGenerator{
		config:     &cfg.LLM,
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ adapter.BinaryGenerator = (*RESTBinaryGenerator)(nil)

// Generate 发起一次非流式二进制生成
func (g *RESTBinaryGenerator) Generate(ctx context.Context, provider *entity.LLMProvider, req adapter.BinaryRequest) (*adapter.BinaryResult, error) {
	switch req.Capability {
	case entity.CapabilityTextToImage:
		return g.generateImage(ctx, provider, req.Prompt)
	case entity.CapabilityTextToAudio:
		return g.generateSpeech(ctx, provider, req.Prompt)
	case entity.CapabilityAudioToText:
		return g.transcribe(ctx, provider, req.Attachment)
	case entity.CapabilityImageToText, entity.CapabilityVideoToText:
		return g.describe(ctx, provider, req.Prompt, req.Attachment)
	default:
		return nil, apperrors.New(apperrors.CodeInvalidParam, fmt.Sprintf("unsupported binary capability: %s", req.Capability))
	}
}

func (g *RESTBinaryGenerator) generateImage(ctx context.Context, provider *entity.LLMProvider, prompt string) (*adapter.BinaryResult, error) {
	payload := map[string]any{
		"model":           provider.Model,
		"prompt":          prompt,
		"n":               1,
		"response_format": "b64_json",
	}

	var out struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := g.postJSON(ctx, provider, "/images/generations", payload, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || out.Data[0].B64JSON == "" {
		return nil, adapter.Normalize(fmt.Errorf("empty image response"))
	}

	data, err := base64.StdEncoding.DecodeString(out.Data[0].B64JSON)
	if err != nil {
		return nil, adapter.Normalize(fmt.Errorf("decode image payload: %w", err))
	}
	return &adapter.BinaryResult{Data: data, ContentType: "image/png"}, nil
}

func (g *RESTBinaryGenerator) generateSpeech(ctx context.Context, provider *entity.LLMProvider, prompt string) (*adapter.BinaryResult, error) {
	payload := map[string]any{
		"model": provider.Model,
		"input": prompt,
		"voice": "alloy",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal speech payload: %w", err)
	}

	resp, err := g.do(ctx, provider, "/audio/speech", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return &adapter.BinaryResult{Data: resp, ContentType: "audio/mpeg"}, nil
}

func (g *RESTBinaryGenerator) transcribe(ctx context.Context, provider *entity.LLMProvider, attachment *adapter.Attachment) (*adapter.BinaryResult, error) {
	if attachment == nil || len(attachment.Data) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "audio attachment is required")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "audio"+extensionFor(attachment.ContentType))
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(attachment.Data); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if err := w.WriteField("model", provider.Model); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	resp, err := g.do(ctx, provider, "/audio/transcriptions", w.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, adapter.Normalize(fmt.Errorf("decode transcription response: %w", err))
	}
	return &adapter.BinaryResult{Data: []byte(out.Text), ContentType: "text/plain"}, nil
}

// describe 通过带附件的 chat completions 调用实现图片/视频描述
func (g *RESTBinaryGenerator) describe(ctx context.Context, provider *entity.LLMProvider, prompt string, attachment *adapter.Attachment) (*adapter.BinaryResult, error) {
	if attachment == nil || len(attachment.Data) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "media attachment is required")
	}
	if strings.TrimSpace(prompt) == "" {
		prompt = "Describe the attached media in detail."
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", attachment.ContentType, base64.StdEncoding.EncodeToString(attachment.Data))
	payload := map[string]any{
		"model": provider.Model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": prompt},
					{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
				},
			},
		},
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			TotalTokens int64 `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := g.postJSON(ctx, provider, "/chat/completions", payload, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, adapter.Normalize(fmt.Errorf("empty description response"))
	}
	return &adapter.BinaryResult{
		Data:        []byte(out.Choices[0].Message.Content),
		ContentType: "text/plain",
		Usage:       adapter.Usage{TotalTokens: out.Usage.TotalTokens},
	}, nil
}

func (g *RESTBinaryGenerator) postJSON(ctx context.Context, provider *entity.LLMProvider, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	resp, err := g.do(ctx, provider, path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return adapter.Normalize(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (g *RESTBinaryGenerator) do(ctx context.Context, provider *entity.LLMProvider, path, contentType string, body io.Reader) ([]byte, error) {
	cred := g.credential(provider)
	if cred.APIKey == "" {
		return nil, apperrors.New(apperrors.CodeModelUnavailable, fmt.Sprintf("no credentials configured for provider %s", provider.Name))
	}

	baseURL := strings.TrimRight(cred.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+cred.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, adapter.Normalize(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, adapter.Normalize(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, normalizeHTTPStatus(resp.StatusCode, data)
	}
	return data, nil
}

func (g *RESTBinaryGenerator) credential(provider *entity.LLMProvider) config.ProviderCredential {
	var cred config.ProviderCredential
	if g.config != nil {
		cred = g.config.Providers[provider.Name]
	}
	if provider.APIKey != "" {
		cred.APIKey = provider.APIKey
	}
	if provider.BaseURL != "" {
		cred.BaseURL = provider.BaseURL
	}
	return cred
}

// normalizeHTTPStatus 把上游 HTTP 状态映射为归一化错误
func normalizeHTTPStatus(status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 512 {
		detail = detail[:512]
	}
	err := fmt.Errorf("upstream returned %d: %s", status, detail)

	switch {
	case status == http.StatusTooManyRequests:
		return apperrors.Wrap(err, apperrors.CodeUpstreamRateLimited, "upstream rate limited")
	case status >= 400 && status < 500:
		return apperrors.Wrap(err, apperrors.CodeUpstreamRejected, "upstream rejected request")
	case status >= 500:
		return apperrors.Wrap(err, apperrors.CodeUpstreamTransient, "upstream temporarily unavailable")
	default:
		return apperrors.Wrap(err, apperrors.CodeUnknown, "upstream call failed")
	}
}

func extensionFor(contentType string) string {
	switch contentType {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/mp4", "audio/m4a":
		return ".m4a"
	case "audio/webm":
		return ".webm"
	default:
		return ".bin"
	}
}
