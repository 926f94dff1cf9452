package generation

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-content-gateway/internal/application/adapter"
	"ai-content-gateway/internal/application/conversation"
	"ai-content-gateway/internal/application/ledger"
	"ai-content-gateway/internal/domain/entity"
	apperrors "ai-content-gateway/pkg/errors"
)

// --- 仓储与端口假实现 ---

type fakeProviderRepo struct {
	providers map[string]*entity.LLMProvider
}

func (r *fakeProviderRepo) GetByName(ctx context.Context, name string) (*entity.LLMProvider, error) {
	return r.providers[name], nil
}

func (r *fakeProviderRepo) ListEnabled(ctx context.Context) ([]*entity.LLMProvider, error) {
	var out []*entity.LLMProvider
	for _, p := range r.providers {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakePromptRepo struct {
	prompts map[string]*entity.Prompt
}

func (r *fakePromptRepo) Create(ctx context.Context, prompt *entity.Prompt) error {
	prompt.ID = uuid.NewString()
	r.prompts[prompt.ID] = prompt
	return nil
}

func (r *fakePromptRepo) GetByID(ctx context.Context, id string) (*entity.Prompt, error) {
	return r.prompts[id], nil
}

type fakeResponseRepo struct {
	responses map[string]*entity.PromptResponse
	createErr error
}

func (r *fakeResponseRepo) Create(ctx context.Context, response *entity.PromptResponse) error {
	if r.createErr != nil {
		return r.createErr
	}
	response.ID = uuid.NewString()
	r.responses[response.PromptID] = response
	return nil
}

func (r *fakeResponseRepo) GetByPromptID(ctx context.Context, promptID string) (*entity.PromptResponse, error) {
	return r.responses[promptID], nil
}

type storedObject struct {
	data        []byte
	contentType string
}

type fakeStorage struct {
	objects map[string]storedObject
}

func (s *fakeStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	s.objects[key] = storedObject{data: data, contentType: contentType}
	return nil
}

func (s *fakeStorage) Get(ctx context.Context, key string) ([]byte, string, error) {
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", apperrors.New(apperrors.CodeObjectNotFound, "object not found")
	}
	return obj.data, obj.contentType, nil
}

type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeGroupRepo struct {
	groups map[string]*entity.ConversationGroup
}

func (r *fakeGroupRepo) Create(ctx context.Context, group *entity.ConversationGroup) error {
	group.ID = uuid.NewString()
	r.groups[group.ID] = group
	return nil
}

func (r *fakeGroupRepo) GetByID(ctx context.Context, id string) (*entity.ConversationGroup, error) {
	return r.groups[id], nil
}

func (r *fakeGroupRepo) UpdateHistory(ctx context.Context, group *entity.ConversationGroup) error {
	r.groups[group.ID] = group
	return nil
}

type fakeAccountRepo struct {
	accounts map[string]*entity.Account
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.accounts[id], nil
}

type fakeLedgerRepo struct {
	entries []*entity.UsageLedgerEntry
}

func (r *fakeLedgerRepo) DebitBalance(ctx context.Context, ownerID string, kind entity.TokenKind, amount int64) error {
	return nil
}

func (r *fakeLedgerRepo) CreateEntry(ctx context.Context, entry *entity.UsageLedgerEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeLedgerRepo) SumByAccount(ctx context.Context, accountID string, kind entity.TokenKind) (int64, error) {
	var sum int64
	for _, e := range r.entries {
		if e.AccountID == accountID && e.Kind == kind {
			sum += e.Amount
		}
	}
	return sum, nil
}

// --- Adapter 假实现 ---

type fakeStream struct {
	deltas  []string
	failErr error
	usage   adapter.Usage
	closed  bool
}

func (s *fakeStream) Recv() (string, error) {
	if len(s.deltas) > 0 {
		d := s.deltas[0]
		s.deltas = s.deltas[1:]
		return d, nil
	}
	if s.failErr != nil {
		return "", s.failErr
	}
	return "", io.EOF
}

func (s *fakeStream) Usage() adapter.Usage { return s.usage }
func (s *fakeStream) Close()               { s.closed = true }

type fakeTextGen struct {
	stream     *fakeStream
	transcript []entity.Turn
	invokeText string
	invokeErr  error
	usage      adapter.Usage
}

func (g *fakeTextGen) Stream(ctx context.Context, p *entity.LLMProvider, transcript []entity.Turn) (adapter.DeltaStream, error) {
	g.transcript = transcript
	return g.stream, nil
}

func (g *fakeTextGen) Invoke(ctx context.Context, p *entity.LLMProvider, transcript []entity.Turn) (string, adapter.Usage, error) {
	g.transcript = transcript
	if g.invokeErr != nil {
		return "", adapter.Usage{}, g.invokeErr
	}
	return g.invokeText, g.usage, nil
}

type fakeBinaryGen struct {
	result *adapter.BinaryResult
	err    error
}

func (g *fakeBinaryGen) Generate(ctx context.Context, p *entity.LLMProvider, req adapter.BinaryRequest) (*adapter.BinaryResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

// --- 测试装配 ---

type fixture struct {
	orch       *Orchestrator
	providers  *fakeProviderRepo
	prompts    *fakePromptRepo
	responses  *fakeResponseRepo
	storage    *fakeStorage
	groupRepo  *fakeGroupRepo
	ledgerRepo *fakeLedgerRepo
	registry   *adapter.Registry
}

func textProvider() *entity.LLMProvider {
	return &entity.LLMProvider{
		ID:          uuid.NewString(),
		Name:        "gpt",
		DisplayName: "GPT",
		Vendor:      entity.VendorOpenAI,
		Model:       "gpt-4o-mini",
		Text:        true,
		Code:        true,
		AudioToText: true,
		TextToImage: true,
		Enabled:     true,
		Connected:   true,
	}
}

func newFixture(t *testing.T, providers ...*entity.LLMProvider) *fixture {
	t.Helper()
	f := &fixture{
		providers:  &fakeProviderRepo{providers: make(map[string]*entity.LLMProvider)},
		prompts:    &fakePromptRepo{prompts: make(map[string]*entity.Prompt)},
		responses:  &fakeResponseRepo{responses: make(map[string]*entity.PromptResponse)},
		storage:    &fakeStorage{objects: make(map[string]storedObject)},
		groupRepo:  &fakeGroupRepo{groups: make(map[string]*entity.ConversationGroup)},
		ledgerRepo: &fakeLedgerRepo{},
		registry:   adapter.NewRegistry(),
	}
	for _, p := range providers {
		f.providers.providers[p.Name] = p
	}

	accounts := &fakeAccountRepo{accounts: map[string]*entity.Account{
		"acc-1": {ID: "acc-1", Email: "user@example.com"},
	}}
	groups := conversation.NewManager(f.groupRepo, nil)
	tokenLedger := ledger.NewLedger(accounts, f.ledgerRepo, fakeTx{})

	f.orch = NewOrchestrator(
		f.providers, f.prompts, f.responses, f.storage,
		fakeTx{}, f.registry, groups, tokenLedger, 1,
	)
	return f
}

func collect(t *testing.T, ch <-chan Message) []Message {
	t.Helper()
	var msgs []Message
	for msg := range ch {
		msgs = append(msgs, msg)
	}
	return msgs
}

// --- 流式路径 ---

func TestStartGenerationSuccess(t *testing.T) {
	provider := textProvider()
	f := newFixture(t, provider)

	stream := &fakeStream{
		deltas: []string{"Once ", "upon ", "a time"},
		usage:  adapter.Usage{TotalTokens: 500},
	}
	f.registry.RegisterText(entity.VendorOpenAI, &fakeTextGen{stream: stream})

	ch, err := f.orch.StartGeneration(context.Background(), Request{
		AccountID:    "acc-1",
		Provider:     "gpt",
		Prompt:       "tell me a story",
		ResponseType: entity.ResponseTypeText,
		GroupLabel:   "story chat",
	})
	require.NoError(t, err)

	msgs := collect(t, ch)
	require.Len(t, msgs, 4)

	// 增量消息携带累计文本而非片段
	assert.Equal(t, "Once ", msgs[0].Text)
	assert.Equal(t, "Once upon ", msgs[1].Text)
	assert.Equal(t, "Once upon a time", msgs[2].Text)
	assert.Equal(t, "GPT", msgs[0].Provider)

	final := msgs[3]
	assert.True(t, final.Terminal())
	assert.Equal(t, DoneSentinel, final.Text)
	assert.NotEmpty(t, final.PromptID)
	assert.NotEmpty(t, final.ResponseID)
	assert.NotEmpty(t, final.GroupID)

	// 记录落库且 ID 与终止消息一致
	prompt := f.prompts.prompts[final.PromptID]
	require.NotNil(t, prompt)
	assert.Equal(t, "tell me a story", prompt.Text)
	response := f.responses.responses[final.PromptID]
	require.NotNil(t, response)
	assert.Equal(t, final.ResponseID, response.ID)
	assert.Equal(t, "Once upon a time", response.Text)
	assert.Equal(t, int64(500), response.TokenUsed)

	// 恰好一条账本条目
	require.Len(t, f.ledgerRepo.entries, 1)
	entry := f.ledgerRepo.entries[0]
	assert.Equal(t, entity.TokenKindText, entry.Kind)
	assert.Equal(t, int64(500), entry.Amount)
	assert.Equal(t, final.PromptID, entry.PromptID)

	// 会话历史追加 user/assistant 两条
	group := f.groupRepo.groups[final.GroupID]
	require.NotNil(t, group)
	turns, err := group.Turns()
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, entity.RoleUser, turns[0].Role)
	assert.Equal(t, "Once upon a time", turns[1].Content)

	assert.True(t, stream.closed)
}

func TestStartGenerationResyncInvariant(t *testing.T) {
	provider := textProvider()
	f := newFixture(t, provider)

	deltas := []string{"a", "b", "c", "d", "e"}
	stream := &fakeStream{deltas: append([]string{}, deltas...), usage: adapter.Usage{TotalTokens: 5}}
	f.registry.RegisterText(entity.VendorOpenAI, &fakeTextGen{stream: stream})

	ch, err := f.orch.StartGeneration(context.Background(), Request{
		AccountID:    "acc-1",
		Provider:     "gpt",
		Prompt:       "go",
		ResponseType: entity.ResponseTypeText,
	})
	require.NoError(t, err)

	// 任一消息单独就是到该时刻的完整状态，丢包后整体替换即可重同步
	var expect strings.Builder
	msgs := collect(t, ch)
	for i, d := range deltas {
		expect.WriteString(d)
		assert.Equal(t, expect.String(), msgs[i].Text)
	}
	assert.Equal(t, "abcde", msgs[len(msgs)-2].Text)
}

func TestStartGenerationStreamFailure(t *testing.T) {
	provider := textProvider()
	f := newFixture(t, provider)

	stream := &fakeStream{
		deltas:  []string{"partial "},
		failErr: errors.New("connection reset by peer"),
	}
	f.registry.RegisterText(entity.VendorOpenAI, &fakeTextGen{stream: stream})

	ch, err := f.orch.StartGeneration(context.Background(), Request{
		AccountID:    "acc-1",
		Provider:     "gpt",
		Prompt:       "tell me a story",
		ResponseType: entity.ResponseTypeText,
	})
	require.NoError(t, err)

	msgs := collect(t, ch)
	require.Len(t, msgs, 2)
	assert.Equal(t, "partial ", msgs[0].Text)
	assert.NotEmpty(t, msgs[1].Error)
	assert.True(t, msgs[1].Terminal())

	// 失败的生成不落记录不扣费
	assert.Empty(t, f.prompts.prompts)
	assert.Empty(t, f.responses.responses)
	assert.Empty(t, f.ledgerRepo.entries)
}

func TestStartGenerationPersistFailure(t *testing.T) {
	provider := textProvider()
	f := newFixture(t, provider)
	f.responses.createErr = errors.New("db down")

	stream := &fakeStream{deltas: []string{"text"}, usage: adapter.Usage{TotalTokens: 10}}
	f.registry.RegisterText(entity.VendorOpenAI, &fakeTextGen{stream: stream})

	ch, err := f.orch.StartGeneration(context.Background(), Request{
		AccountID:    "acc-1",
		Provider:     "gpt",
		Prompt:       "go",
		ResponseType: entity.ResponseTypeText,
	})
	require.NoError(t, err)

	msgs := collect(t, ch)
	final := msgs[len(msgs)-1]
	assert.NotEmpty(t, final.Error)
	// 记录没写成就绝不扣费
	assert.Empty(t, f.ledgerRepo.entries)
}

func TestStartGenerationCallerDisconnect(t *testing.T) {
	provider := textProvider()
	f := newFixture(t, provider)

	stream := &fakeStream{
		deltas: []string{"one", "two", "three"},
		usage:  adapter.Usage{TotalTokens: 30},
	}
	f.registry.RegisterText(entity.VendorOpenAI, &fakeTextGen{stream: stream})

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := f.orch.StartGeneration(ctx, Request{
		AccountID:    "acc-1",
		Provider:     "gpt",
		Prompt:       "go",
		ResponseType: entity.ResponseTypeText,
	})
	require.NoError(t, err)

	// 调用方立刻断开，不再消费通道
	cancel()
	for range ch {
	}

	// 会话照常跑完：记录与扣费不受断开影响
	assert.Len(t, f.ledgerRepo.entries, 1)
	assert.Len(t, f.responses.responses, 1)
}

func TestStartGenerationValidation(t *testing.T) {
	provider := textProvider()
	f := newFixture(t, provider)
	f.registry.RegisterText(entity.VendorOpenAI, &fakeTextGen{stream: &fakeStream{}})

	_, err := f.orch.StartGeneration(context.Background(), Request{
		AccountID:    "acc-1",
		Provider:     "gpt",
		Prompt:       "draw a cat",
		ResponseType: entity.ResponseTypeTextToImage,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)

	_, err = f.orch.StartGeneration(context.Background(), Request{
		AccountID:    "acc-1",
		Provider:     "gpt",
		Prompt:       "   ",
		ResponseType: entity.ResponseTypeText,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)
}

func TestStartGenerationProviderChecks(t *testing.T) {
	disabled := textProvider()
	disabled.Name = "off"
	disabled.Enabled = false

	disconnected := textProvider()
	disconnected.Name = "flaky"
	disconnected.Connected = false

	noCode := textProvider()
	noCode.Name = "textonly"
	noCode.Code = false

	f := newFixture(t, disabled, disconnected, noCode)
	f.registry.RegisterText(entity.VendorOpenAI, &fakeTextGen{stream: &fakeStream{}})

	_, err := f.orch.StartGeneration(context.Background(), Request{
		AccountID: "acc-1", Provider: "ghost", Prompt: "hi", ResponseType: entity.ResponseTypeText,
	})
	assert.ErrorIs(t, err, error(apperrors.ErrProviderNotFound))

	_, err = f.orch.StartGeneration(context.Background(), Request{
		AccountID: "acc-1", Provider: "off", Prompt: "hi", ResponseType: entity.ResponseTypeText,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeModelUnavailable, apperrors.AsAppError(err).Code)

	// 启用但未连通同样不可用
	_, err = f.orch.StartGeneration(context.Background(), Request{
		AccountID: "acc-1", Provider: "flaky", Prompt: "hi", ResponseType: entity.ResponseTypeText,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeModelUnavailable, apperrors.AsAppError(err).Code)

	_, err = f.orch.StartGeneration(context.Background(), Request{
		AccountID: "acc-1", Provider: "textonly", Prompt: "hi", ResponseType: entity.ResponseTypeCode,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeModelUnavailable, apperrors.AsAppError(err).Code)
}

func TestStartGenerationIncludesHistory(t *testing.T) {
	provider := textProvider()
	f := newFixture(t, provider)

	group := entity.NewConversationGroup("acc-1", "gpt", "chat")
	require.NoError(t, group.AppendTurns(
		entity.Turn{Role: entity.RoleUser, Content: "hi"},
		entity.Turn{Role: entity.RoleAssistant, Content: "hello"},
	))
	group.ID = uuid.NewString()
	f.groupRepo.groups[group.ID] = group

	gen := &fakeTextGen{stream: &fakeStream{deltas: []string{"ok"}, usage: adapter.Usage{TotalTokens: 1}}}
	f.registry.RegisterText(entity.VendorOpenAI, gen)

	ch, err := f.orch.StartGeneration(context.Background(), Request{
		AccountID:    "acc-1",
		Provider:     "gpt",
		Prompt:       "and then?",
		ResponseType: entity.ResponseTypeText,
		GroupID:      group.ID,
	})
	require.NoError(t, err)
	collect(t, ch)

	// 上游收到历史加本轮输入
	require.Len(t, gen.transcript, 3)
	assert.Equal(t, "hi", gen.transcript[0].Content)
	assert.Equal(t, "and then?", gen.transcript[2].Content)
}

func TestStartGenerationRejectsForeignGroup(t *testing.T) {
	provider := textProvider()
	f := newFixture(t, provider)

	group := entity.NewConversationGroup("acc-other", "gpt", "chat")
	require.NoError(t, group.AppendTurns(
		entity.Turn{Role: entity.RoleUser, Content: "private question"},
		entity.Turn{Role: entity.RoleAssistant, Content: "private answer"},
	))
	group.ID = uuid.NewString()
	f.groupRepo.groups[group.ID] = group

	gen := &fakeTextGen{stream: &fakeStream{deltas: []string{"ok"}}}
	f.registry.RegisterText(entity.VendorOpenAI, gen)

	_, err := f.orch.StartGeneration(context.Background(), Request{
		AccountID:    "acc-1",
		Provider:     "gpt",
		Prompt:       "and then?",
		ResponseType: entity.ResponseTypeText,
		GroupID:      group.ID,
	})
	// 他人会话按不存在处理：历史不进入转写，上游不被调用
	require.ErrorIs(t, err, error(apperrors.ErrGroupNotFound))
	assert.Empty(t, gen.transcript)

	// 他人会话本身不被改写
	turns, terr := f.groupRepo.groups[group.ID].Turns()
	require.NoError(t, terr)
	assert.Len(t, turns, 2)
}

func TestStartGenerationWriterMode(t *testing.T) {
	provider := textProvider()
	f := newFixture(t, provider)

	stream := &fakeStream{deltas: []string{"prompt draft"}, usage: adapter.Usage{TotalTokens: 5}}
	f.registry.RegisterText(entity.VendorOpenAI, &fakeTextGen{stream: stream})

	ch, err := f.orch.StartGeneration(context.Background(), Request{
		AccountID:    "acc-1",
		Provider:     "gpt",
		Prompt:       "write a prompt",
		ResponseType: entity.ResponseTypeText,
		WriterMode:   true,
	})
	require.NoError(t, err)
	msgs := collect(t, ch)
	final := msgs[len(msgs)-1]

	// writer 模式只改持久化标记，流程与文本完全一致
	assert.Equal(t, entity.ResponseTypePromptWriter, f.prompts.prompts[final.PromptID].ResponseType)
	assert.Equal(t, entity.ResponseTypePromptWriter, f.responses.responses[final.PromptID].ResponseType)
}

// --- 非流式路径 ---

func TestInvoke(t *testing.T) {
	provider := textProvider()
	f := newFixture(t, provider)
	f.registry.RegisterText(entity.VendorOpenAI, &fakeTextGen{
		invokeText: "summary of the text",
		usage:      adapter.Usage{TotalTokens: 42},
	})

	outcome, err := f.orch.Invoke(context.Background(), Request{
		AccountID:    "acc-1",
		Provider:     "gpt",
		Prompt:       "summarize",
		ResponseType: entity.ResponseTypeText,
	})
	require.NoError(t, err)
	assert.Equal(t, "summary of the text", outcome.Text)
	assert.Equal(t, int64(42), outcome.TokenUsed)
	assert.NotEmpty(t, outcome.PromptID)

	require.Len(t, f.ledgerRepo.entries, 1)
	assert.Equal(t, entity.TokenKindText, f.ledgerRepo.entries[0].Kind)
	assert.Equal(t, int64(42), f.ledgerRepo.entries[0].Amount)
}

func TestInvokeUpstreamFailureNoRecords(t *testing.T) {
	provider := textProvider()
	f := newFixture(t, provider)
	f.registry.RegisterText(entity.VendorOpenAI, &fakeTextGen{
		invokeErr: apperrors.New(apperrors.CodeUpstreamTransient, "upstream temporarily unavailable"),
	})

	_, err := f.orch.Invoke(context.Background(), Request{
		AccountID:    "acc-1",
		Provider:     "gpt",
		Prompt:       "summarize",
		ResponseType: entity.ResponseTypeText,
	})
	require.Error(t, err)
	assert.Empty(t, f.prompts.prompts)
	assert.Empty(t, f.ledgerRepo.entries)
}

func TestGenerateBinaryStoresOutput(t *testing.T) {
	provider := textProvider()
	f := newFixture(t, provider)
	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	f.registry.RegisterBinary(entity.VendorOpenAI, entity.CapabilityTextToImage, &fakeBinaryGen{
		result: &adapter.BinaryResult{Data: payload, ContentType: "image/png", Usage: adapter.Usage{TotalTokens: 9000}},
	})

	outcome, err := f.orch.GenerateBinary(context.Background(), Request{
		AccountID:    "acc-1",
		Provider:     "gpt",
		Prompt:       "draw a gopher",
		ResponseType: entity.ResponseTypeTextToImage,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(outcome.StorageKey, "generated/acc-1/"))
	assert.Equal(t, int64(len(payload)), outcome.ByteSize)
	assert.Empty(t, outcome.Text)

	obj, ok := f.storage.objects[outcome.StorageKey]
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.contentType)

	// 二进制模态统一按文件 Token 平价扣费，与上游用量无关
	require.Len(t, f.ledgerRepo.entries, 1)
	assert.Equal(t, entity.TokenKindFile, f.ledgerRepo.entries[0].Kind)
	assert.Equal(t, int64(1), f.ledgerRepo.entries[0].Amount)
}

func TestGenerateBinaryTextResultInline(t *testing.T) {
	provider := textProvider()
	f := newFixture(t, provider)
	f.registry.RegisterBinary(entity.VendorOpenAI, entity.CapabilityAudioToText, &fakeBinaryGen{
		result: &adapter.BinaryResult{Data: []byte("transcribed words"), ContentType: "text/plain"},
	})

	outcome, err := f.orch.GenerateBinary(context.Background(), Request{
		AccountID:    "acc-1",
		Provider:     "gpt",
		Prompt:       "",
		ResponseType: entity.ResponseTypeSpeechToText,
		Attachment:   &adapter.Attachment{Data: []byte("audio-bytes"), ContentType: "audio/mpeg"},
	})
	require.NoError(t, err)

	// 文本结果内联返回，不进对象存储
	assert.Equal(t, "transcribed words", outcome.Text)
	assert.Empty(t, outcome.StorageKey)

	// 附件本身落对象存储并挂在请求记录上
	prompt := f.prompts.prompts[outcome.PromptID]
	require.NotNil(t, prompt)
	assert.True(t, strings.HasPrefix(prompt.AttachmentKey, "attachments/acc-1/"))
	_, ok := f.storage.objects[prompt.AttachmentKey]
	assert.True(t, ok)
}

func TestGenerateBinaryRejectsStreamingType(t *testing.T) {
	provider := textProvider()
	f := newFixture(t, provider)

	_, err := f.orch.GenerateBinary(context.Background(), Request{
		AccountID:    "acc-1",
		Provider:     "gpt",
		Prompt:       "hi",
		ResponseType: entity.ResponseTypeText,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidParam, apperrors.AsAppError(err).Code)
}
