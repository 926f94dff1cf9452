package generation

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-content-gateway/internal/application/adapter"
	"ai-content-gateway/internal/application/conversation"
	"ai-content-gateway/internal/application/ledger"
	"ai-content-gateway/internal/domain/entity"
	"ai-content-gateway/internal/domain/repository"
	apperrors "ai-content-gateway/pkg/errors"
	"ai-content-gateway/pkg/logger"
	"ai-content-gateway/pkg/metrics"
)

// sessionState 会话状态机：Idle -> Dispatched -> Streaming -> Finalizing -> Done | Failed
type sessionState string

const (
	stateIdle       sessionState = "idle"
	stateDispatched sessionState = "dispatched"
	stateStreaming  sessionState = "streaming"
	stateFinalizing sessionState = "finalizing"
	stateDone       sessionState = "done"
	stateFailed     sessionState = "failed"
)

// Request 一次生成请求的输入
type Request struct {
	AccountID    string
	Provider     string
	Prompt       string
	ResponseType entity.ResponseType
	GroupID      string
	// GroupLabel 非空且 GroupID 为空时创建新会话（新聊天首轮）
	GroupLabel string
	// WriterMode 只改变持久化的响应类型标记
	WriterMode bool
	Attachment *adapter.Attachment
}

// Orchestrator 生成会话编排器：选择 Adapter、装配会话上下文、
// 把增量转发给调用方，流结束后扣费并持久化记录。
type Orchestrator struct {
	providerRepo repository.ProviderRepository
	promptRepo   repository.PromptRepository
	responseRepo repository.PromptResponseRepository
	storage      repository.ObjectStorage
	txMgr        repository.Transactor
	registry     *adapter.Registry
	groups       *conversation.Manager
	ledger       *ledger.Ledger

	fileTokenFlatRate int64
}

// NewOrchestrator 创建生成会话编排器
func NewOrchestrator(
	providerRepo repository.ProviderRepository,
	promptRepo repository.PromptRepository,
	responseRepo repository.PromptResponseRepository,
	storage repository.ObjectStorage,
	txMgr repository.Transactor,
	registry *adapter.Registry,
	groups *conversation.Manager,
	tokenLedger *ledger.Ledger,
	fileTokenFlatRate int64,
) *Orchestrator {
	if fileTokenFlatRate <= 0 {
		fileTokenFlatRate = 1
	}
	return &Orchestrator{
		providerRepo:      providerRepo,
		promptRepo:        promptRepo,
		responseRepo:      responseRepo,
		storage:           storage,
		txMgr:             txMgr,
		registry:          registry,
		groups:            groups,
		ledger:            tokenLedger,
		fileTokenFlatRate: fileTokenFlatRate,
	}
}

// StartGeneration 启动一次流式生成（文本/代码模态）。
// 返回的通道承载协议消息，流结束或失败后关闭。
// 调用方断开不会取消上游调用：Token 成本已在上游产生，
// 会话在后台跑完并照常落库扣费。
func (o *Orchestrator) StartGeneration(ctx context.Context, req Request) (<-chan Message, error) {
	if !req.ResponseType.Streaming() {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "response type is not a streaming modality")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "prompt is required")
	}

	// Idle -> Dispatched：上游调用前快速失败
	provider, err := o.resolveProvider(ctx, req.Provider, req.ResponseType.Capability())
	if err != nil {
		return nil, err
	}

	groupID, err := o.resolveGroup(ctx, &req, provider)
	if err != nil {
		return nil, err
	}

	history, err := o.groups.LoadHistory(ctx, groupID)
	if err != nil {
		return nil, err
	}
	userTurn := entity.Turn{Role: entity.RoleUser, Content: req.Prompt}
	transcript := append(append([]entity.Turn{}, history...), userTurn)

	gen, err := o.registry.Text(provider.Vendor)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelUnavailable, "model unavailable")
	}

	// Dispatched -> Streaming。上游流挂在与调用方断开解耦的
	// context 上，调用方掉线后会话继续跑完。
	upstreamCtx := context.WithoutCancel(ctx)
	stream, err := gen.Stream(upstreamCtx, provider, transcript)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues(provider.Name, fmt.Sprint(int(req.ResponseType)), string(stateFailed)).Inc()
		return nil, err
	}

	out := make(chan Message, 16)
	go o.runSession(ctx, upstreamCtx, req, provider, groupID, userTurn, stream, out)
	return out, nil
}

// runSession 消费上游流并驱动状态机直至终态
func (o *Orchestrator) runSession(
	callerCtx, upstreamCtx context.Context,
	req Request,
	provider *entity.LLMProvider,
	groupID string,
	userTurn entity.Turn,
	stream adapter.DeltaStream,
	out chan<- Message,
) {
	defer close(out)
	defer stream.Close()

	metrics.ActiveGenerations.Inc()
	defer metrics.ActiveGenerations.Dec()

	start := time.Now()
	state := stateStreaming
	var accumulated strings.Builder
	callerGone := false

	emit := func(msg Message) {
		if callerGone {
			return
		}
		select {
		case out <- msg:
		case <-callerCtx.Done():
			// 调用方断开：停止转发，但继续消费上游流
			callerGone = true
			logger.Info(upstreamCtx, "caller disconnected, finishing session in background",
				"provider", provider.Name,
			)
		}
	}

	for {
		delta, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			// * -> Failed：已下发的部分文本不撤回，但不落库不扣费
			state = stateFailed
			logger.Error(upstreamCtx, "upstream stream failed", err, "provider", provider.Name)
			emit(Message{Provider: provider.DisplayName, Error: apperrors.AsAppError(err).Message})
			metrics.GenerationTotal.WithLabelValues(provider.Name, fmt.Sprint(int(req.ResponseType)), string(state)).Inc()
			return
		}
		accumulated.WriteString(delta)
		metrics.StreamDeltasRelayed.WithLabelValues(provider.Name).Inc()
		emit(Message{Provider: provider.DisplayName, Text: accumulated.String()})
	}

	// Streaming -> Finalizing：由流耗尽触发，与调用方断开无关
	state = stateFinalizing
	usage := stream.Usage()
	fullText := accumulated.String()

	prompt, response, err := o.persistRecords(upstreamCtx, req, provider, groupID, fullText, usage.TotalTokens, "", 0)
	if err != nil {
		state = stateFailed
		logger.Error(upstreamCtx, "failed to persist generation records", err, "provider", provider.Name)
		emit(Message{Provider: provider.DisplayName, Error: apperrors.ErrPersistenceFailure.Message})
		metrics.GenerationTotal.WithLabelValues(provider.Name, fmt.Sprint(int(req.ResponseType)), string(state)).Inc()
		return
	}

	if err := o.ledger.Apply(upstreamCtx, ledger.Debit{
		AccountID: req.AccountID,
		Provider:  provider.Name,
		PromptID:  prompt.ID,
		Kind:      entity.TokenKindText,
		Amount:    usage.TotalTokens,
	}); err != nil {
		// 记录已落库但扣费失败：记为致命不一致。宁可漏记一笔费用，
		// 也不在持久化前扣费导致“收了钱没记录”。
		logger.Error(upstreamCtx, "ledger debit failed after records were persisted", err,
			"prompt_id", prompt.ID,
			"provider", provider.Name,
		)
	}

	if groupID != "" {
		modelTurn := entity.Turn{Role: entity.RoleAssistant, Content: fullText}
		if err := o.groups.AppendTurn(upstreamCtx, groupID, userTurn, modelTurn); err != nil {
			logger.Error(upstreamCtx, "failed to append group history", err, "group_id", groupID)
		}
	}

	// Finalizing -> Done：终止消息携带记录 ID 供调用方关联
	state = stateDone
	emit(Message{
		Provider:   provider.DisplayName,
		Text:       DoneSentinel,
		PromptID:   prompt.ID,
		ResponseID: response.ID,
		GroupID:    groupID,
	})
	metrics.GenerationTotal.WithLabelValues(provider.Name, fmt.Sprint(int(req.ResponseType)), string(state)).Inc()
	metrics.GenerationDuration.WithLabelValues(provider.Name).Observe(time.Since(start).Seconds())
}

// TextOutcome 一次非流式文本生成的结果
type TextOutcome struct {
	PromptID   string
	ResponseID string
	Text       string
	TokenUsed  int64
}

// Invoke 执行一次非流式文本生成，与流式路径共用
// Provider 解析、落库与扣费步骤。工作流链按步骤调用此方法。
func (o *Orchestrator) Invoke(ctx context.Context, req Request) (*TextOutcome, error) {
	if !req.ResponseType.Streaming() {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "response type is not a text modality")
	}

	provider, err := o.resolveProvider(ctx, req.Provider, req.ResponseType.Capability())
	if err != nil {
		return nil, err
	}

	gen, err := o.registry.Text(provider.Vendor)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelUnavailable, "model unavailable")
	}

	transcript := []entity.Turn{{Role: entity.RoleUser, Content: req.Prompt}}
	text, usage, err := gen.Invoke(ctx, provider, transcript)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues(provider.Name, fmt.Sprint(int(req.ResponseType)), string(stateFailed)).Inc()
		return nil, err
	}

	prompt, response, err := o.persistRecords(ctx, req, provider, "", text, usage.TotalTokens, "", 0)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues(provider.Name, fmt.Sprint(int(req.ResponseType)), string(stateFailed)).Inc()
		return nil, apperrors.Wrap(err, apperrors.CodePersistenceFailure, "failed to persist generation records")
	}

	if err := o.ledger.Apply(ctx, ledger.Debit{
		AccountID: req.AccountID,
		Provider:  provider.Name,
		PromptID:  prompt.ID,
		Kind:      entity.TokenKindText,
		Amount:    usage.TotalTokens,
	}); err != nil {
		logger.Error(ctx, "ledger debit failed after records were persisted", err, "prompt_id", prompt.ID)
	}

	metrics.GenerationTotal.WithLabelValues(provider.Name, fmt.Sprint(int(req.ResponseType)), string(stateDone)).Inc()
	return &TextOutcome{
		PromptID:   prompt.ID,
		ResponseID: response.ID,
		Text:       text,
		TokenUsed:  usage.TotalTokens,
	}, nil
}

// GenerateBinary 执行一次非流式二进制生成（图片/语音/转写/描述）。
// 与流式路径共用账本与持久化步骤，统一按文件 Token 平价扣费。
func (o *Orchestrator) GenerateBinary(ctx context.Context, req Request) (*BinaryOutcome, error) {
	if req.ResponseType.Streaming() {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "response type is a streaming modality")
	}

	capability := req.ResponseType.Capability()
	provider, err := o.resolveProvider(ctx, req.Provider, capability)
	if err != nil {
		return nil, err
	}

	gen, err := o.registry.Binary(provider.Vendor, capability)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelUnavailable, "model unavailable")
	}

	result, err := gen.Generate(ctx, provider, adapter.BinaryRequest{
		Prompt:     req.Prompt,
		Attachment: req.Attachment,
		Capability: capability,
	})
	if err != nil {
		metrics.GenerationTotal.WithLabelValues(provider.Name, fmt.Sprint(int(req.ResponseType)), string(stateFailed)).Inc()
		return nil, err
	}

	var (
		text       string
		storageKey string
		byteSize   int64
	)
	if result.ContentType == "text/plain" {
		text = string(result.Data)
	} else {
		storageKey = fmt.Sprintf("generated/%s/%s", req.AccountID, uuid.NewString())
		byteSize = int64(len(result.Data))
		if err := o.storage.Put(ctx, storageKey, result.Data, result.ContentType); err != nil {
			metrics.GenerationTotal.WithLabelValues(provider.Name, fmt.Sprint(int(req.ResponseType)), string(stateFailed)).Inc()
			return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "failed to store generated output")
		}
	}

	prompt, response, err := o.persistRecords(ctx, req, provider, "", text, o.fileTokenFlatRate, storageKey, byteSize)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues(provider.Name, fmt.Sprint(int(req.ResponseType)), string(stateFailed)).Inc()
		return nil, apperrors.Wrap(err, apperrors.CodePersistenceFailure, "failed to persist generation records")
	}

	if err := o.ledger.Apply(ctx, ledger.Debit{
		AccountID: req.AccountID,
		Provider:  provider.Name,
		PromptID:  prompt.ID,
		Kind:      entity.TokenKindFile,
		Amount:    o.fileTokenFlatRate,
	}); err != nil {
		logger.Error(ctx, "ledger debit failed after records were persisted", err, "prompt_id", prompt.ID)
	}

	metrics.GenerationTotal.WithLabelValues(provider.Name, fmt.Sprint(int(req.ResponseType)), string(stateDone)).Inc()
	return &BinaryOutcome{
		PromptID:   prompt.ID,
		ResponseID: response.ID,
		StorageKey: storageKey,
		Text:       text,
		ByteSize:   byteSize,
		TokenUsed:  response.TokenUsed,
	}, nil
}

// resolveProvider 解析 Provider 并做上游调用前的快速失败检查
func (o *Orchestrator) resolveProvider(ctx context.Context, name string, capability entity.Capability) (*entity.LLMProvider, error) {
	provider, err := o.providerRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve provider: %w", err)
	}
	if provider == nil {
		return nil, apperrors.ErrProviderNotFound
	}
	if !provider.Available() {
		return nil, apperrors.New(apperrors.CodeModelUnavailable, fmt.Sprintf("model %s is unavailable", provider.DisplayName))
	}
	if !provider.Supports(capability) {
		return nil, apperrors.New(apperrors.CodeModelUnavailable, fmt.Sprintf("model %s does not support %s", provider.DisplayName, capability))
	}
	return provider, nil
}

// resolveGroup 解析或创建会话。调用方指定的 groupID 必须属于
// 当前账号，否则按不存在处理。
func (o *Orchestrator) resolveGroup(ctx context.Context, req *Request, provider *entity.LLMProvider) (string, error) {
	if req.GroupID != "" {
		if _, err := o.groups.Group(ctx, req.GroupID, req.AccountID); err != nil {
			return "", err
		}
		return req.GroupID, nil
	}
	if req.GroupLabel == "" {
		return "", nil
	}
	group, err := o.groups.StartGroup(ctx, req.AccountID, provider.Name, req.GroupLabel)
	if err != nil {
		return "", err
	}
	return group.ID, nil
}

// persistRecords 在一个事务内写 Prompt 与 PromptResponse。
// 失败的生成不落任何记录：只为被持久化的产出扣费。
func (o *Orchestrator) persistRecords(
	ctx context.Context,
	req Request,
	provider *entity.LLMProvider,
	groupID, text string,
	tokenUsed int64,
	storageKey string,
	byteSize int64,
) (*entity.Prompt, *entity.PromptResponse, error) {
	responseType := req.ResponseType
	if req.WriterMode && responseType == entity.ResponseTypeText {
		responseType = entity.ResponseTypePromptWriter
	}

	var attachmentKey string
	if req.Attachment != nil {
		attachmentKey = fmt.Sprintf("attachments/%s/%s", req.AccountID, uuid.NewString())
		if err := o.storage.Put(ctx, attachmentKey, req.Attachment.Data, req.Attachment.ContentType); err != nil {
			return nil, nil, fmt.Errorf("failed to store attachment: %w", err)
		}
	}

	prompt := &entity.Prompt{
		AccountID:     req.AccountID,
		GroupID:       groupID,
		Text:          req.Prompt,
		AttachmentKey: attachmentKey,
		ResponseType:  responseType,
	}
	response := &entity.PromptResponse{
		AccountID:    req.AccountID,
		Provider:     provider.Name,
		ResponseType: responseType,
		Text:         text,
		StorageKey:   storageKey,
		TokenUsed:    tokenUsed,
		ByteSize:     byteSize,
	}

	err := o.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := o.promptRepo.Create(txCtx, prompt); err != nil {
			return err
		}
		response.PromptID = prompt.ID
		return o.responseRepo.Create(txCtx, response)
	})
	if err != nil {
		return nil, nil, err
	}
	return prompt, response, nil
}
