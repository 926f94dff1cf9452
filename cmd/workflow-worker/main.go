// Package main 工作流链执行器入口（workflow-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"ai-content-gateway/internal/application/conversation"
	"ai-content-gateway/internal/application/generation"
	"ai-content-gateway/internal/application/ledger"
	"ai-content-gateway/internal/application/workflow"
	"ai-content-gateway/internal/config"
	"ai-content-gateway/internal/infrastructure/extract"
	"ai-content-gateway/internal/infrastructure/llm"
	"ai-content-gateway/internal/infrastructure/messaging"
	"ai-content-gateway/internal/infrastructure/notify"
	"ai-content-gateway/internal/infrastructure/persistence/postgres"
	"ai-content-gateway/internal/infrastructure/persistence/redis"
	"ai-content-gateway/pkg/logger"
	"ai-content-gateway/pkg/tracer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()
	log := logger.FromContext(ctx)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "workflow-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to init postgres", err)
	}
	defer func() { _ = pgClient.Close() }()

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", err)
	}
	defer func() { _ = redisClient.Close() }()

	txMgr := postgres.NewTxManager(pgClient)
	providerRepo := postgres.NewProviderRepository(pgClient)
	groupRepo := postgres.NewGroupRepository(pgClient)
	promptRepo := postgres.NewPromptRepository(pgClient)
	responseRepo := postgres.NewPromptResponseRepository(pgClient)
	ledgerRepo := postgres.NewLedgerRepository(pgClient)
	accountRepo := postgres.NewAccountRepository(pgClient)
	jobRepo := postgres.NewJobRepository(pgClient)
	objectStore := postgres.NewObjectStore(pgClient)

	registry := llm.BuildRegistry(cfg)
	groups := conversation.NewManager(groupRepo, redis.NewHistoryCache(redisClient, cfg.Cache.HistoryTTL))
	tokenLedger := ledger.NewLedger(accountRepo, ledgerRepo, txMgr)
	orchestrator := generation.NewOrchestrator(
		providerRepo,
		promptRepo,
		responseRepo,
		objectStore,
		txMgr,
		registry,
		groups,
		tokenLedger,
		cfg.Ledger.FileTokenFlatRate,
	)

	producer := messaging.NewProducer(redisClient.Redis(), cfg.Messaging.RedisStream.MaxLen)
	notifier := notify.NewStreamNotifier(producer)
	extractor := extract.NewExtractor(objectStore, providerRepo, registry, cfg.LLM.DefaultProvider)
	executor := workflow.NewExecutor(jobRepo, accountRepo, extractor, notifier, orchestrator)

	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamWorkflowJobs,
		Group:        messaging.ConsumerGroupWorkflowWorker,
		ConsumerName: hostnameConsumerName(),
		BlockTimeout: cfg.Messaging.RedisStream.BlockTimeout,
		RetryLimit:   cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})

	consumer.RegisterHandler(messaging.TypeWorkflowJob, func(msgCtx context.Context, msg *messaging.Message) error {
		var payload messaging.WorkflowJobMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}
		return executor.Execute(msgCtx, payload.JobID)
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		if err := consumer.Start(gCtx); err != nil {
			return err
		}
		<-gCtx.Done()
		consumer.Stop()
		return nil
	})
	g.Go(func() error {
		consumer.MonitorDLQ(gCtx, 100)
		return nil
	})

	log.Info("workflow-worker started",
		"stream", messaging.StreamWorkflowJobs,
		"group", messaging.ConsumerGroupWorkflowWorker,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()
	if err := g.Wait(); err != nil {
		log.Error("worker exited with error", "error", err)
	}
	log.Info("worker exited")
}

// hostnameConsumerName 以主机名区分消费者实例
func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "workflow-worker"
	}
	return "workflow-worker-" + host
}
