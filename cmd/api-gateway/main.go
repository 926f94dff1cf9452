// Package main API Gateway 服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ai-content-gateway/internal/application/admission"
	"ai-content-gateway/internal/application/conversation"
	"ai-content-gateway/internal/application/generation"
	"ai-content-gateway/internal/application/ledger"
	"ai-content-gateway/internal/application/workflow"
	"ai-content-gateway/internal/config"
	"ai-content-gateway/internal/infrastructure/llm"
	"ai-content-gateway/internal/infrastructure/messaging"
	"ai-content-gateway/internal/infrastructure/persistence/postgres"
	"ai-content-gateway/internal/infrastructure/persistence/redis"
	"ai-content-gateway/internal/interfaces/http/handler"
	"ai-content-gateway/internal/interfaces/http/router"
	"ai-content-gateway/pkg/logger"
	"ai-content-gateway/pkg/tracer"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting api-gateway",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

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

	// 仓储与事务
	txMgr := postgres.NewTxManager(pgClient)
	providerRepo := postgres.NewProviderRepository(pgClient)
	groupRepo := postgres.NewGroupRepository(pgClient)
	promptRepo := postgres.NewPromptRepository(pgClient)
	responseRepo := postgres.NewPromptResponseRepository(pgClient)
	ledgerRepo := postgres.NewLedgerRepository(pgClient)
	accountRepo := postgres.NewAccountRepository(pgClient)
	subRepo := postgres.NewSubscriptionRepository(pgClient)
	jobRepo := postgres.NewJobRepository(pgClient)
	objectStore := postgres.NewObjectStore(pgClient)

	// 应用服务
	registry := llm.BuildRegistry(cfg)
	historyCache := redis.NewHistoryCache(redisClient, cfg.Cache.HistoryTTL)
	groups := conversation.NewManager(groupRepo, historyCache)
	tokenLedger := ledger.NewLedger(accountRepo, ledgerRepo, txMgr)
	checker := admission.NewChecker(accountRepo, subRepo, cfg.Ledger.AdmissionFloor)
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
	workflowSvc := workflow.NewService(jobRepo, producer)

	// HTTP 路由
	r := router.New(cfg, router.Handlers{
		Health:     handler.NewHealthHandler(pgClient, redisClient),
		Generation: handler.NewGenerationHandler(orchestrator, checker, cfg.LLM.DefaultProvider),
		Workflow:   handler.NewWorkflowHandler(workflowSvc),
		Group:      handler.NewGroupHandler(groups, groupRepo),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r.Engine(),
		// SSE 连接是长连接，写超时由上游流的寿命决定
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
