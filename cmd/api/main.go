package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/capitalize-ai/assistant-intelligence/internal/config"
	"github.com/capitalize-ai/assistant-intelligence/internal/handler"
	"github.com/capitalize-ai/assistant-intelligence/internal/intelligence"
	"github.com/capitalize-ai/assistant-intelligence/internal/llm"
	"github.com/capitalize-ai/assistant-intelligence/internal/middleware"
	natsclient "github.com/capitalize-ai/assistant-intelligence/internal/nats"
	"github.com/capitalize-ai/assistant-intelligence/internal/orchestrator"
	"github.com/capitalize-ai/assistant-intelligence/internal/prompt"
	"github.com/capitalize-ai/assistant-intelligence/internal/service"
	"github.com/capitalize-ai/assistant-intelligence/internal/store"
	"github.com/capitalize-ai/assistant-intelligence/pkg/logger"
	"github.com/capitalize-ai/assistant-intelligence/pkg/tracing"
)

const serviceName = "assistant-intelligence"

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, serviceName, cfg.TracingEndpoint)
		if err != nil {
			log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(context.Background(), tp)
		}
	}

	// Message log. The service cannot run without it.
	nc, err := natsclient.Connect(ctx, natsclient.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to NATS", zap.Error(err))
	}
	defer nc.Close()

	streamManager := natsclient.NewStreamManager(nc)
	if err := streamManager.EnsureStream(ctx); err != nil {
		log.Fatal("failed to ensure message stream", zap.Error(err))
	}

	// Intelligence snapshots degrade to no-op storage when the buckets are
	// unavailable: the pipeline still runs, it just forgets between requests.
	var patternKV, prefKV store.KV
	patternBucket, prefBucket, err := streamManager.EnsureBuckets(ctx)
	if err != nil {
		log.Warn("KV buckets unavailable, intelligence snapshots disabled", zap.Error(err))
		patternKV = store.NoopKV{}
		prefKV = store.NoopKV{}
	} else {
		patternKV = store.NewJetStreamKV(patternBucket)
		prefKV = store.NewJetStreamKV(prefBucket)
	}

	patternStore := store.NewPatternStore(patternKV, log)
	prefStore := store.NewPreferenceStore(prefKV, log)

	// LLM provider.
	apiKey := cfg.AnthropicAPIKey
	if llm.Provider(cfg.DefaultLLM) == llm.ProviderOpenAI {
		apiKey = cfg.OpenAIAPIKey
	}
	providerClient, err := llm.NewClient(llm.Provider(cfg.DefaultLLM), apiKey, llm.Models{
		Primary: cfg.PrimaryModel,
		Lite:    cfg.LiteModel,
	})
	if err != nil {
		log.Fatal("failed to create LLM client", zap.Error(err))
	}
	llmClient := llm.NewMetered(providerClient, cfg.PrimaryModelRate, cfg.LiteModelRate)
	log.Info("LLM client ready",
		zap.String("provider", llmClient.Name()),
		zap.String("primary", llmClient.ModelFor(llm.VariantPrimary)),
		zap.String("lite", llmClient.ModelFor(llm.VariantLite)),
	)

	// Intelligence pipeline.
	optimizer := prompt.NewOptimizer(cfg.PrimaryModelRate, cfg.LiteModelRate, cfg.MaxHistoryWindow)
	orch := orchestrator.New(orchestrator.Deps{
		LLM:         llmClient,
		Style:       intelligence.NewStyleDetector(llmClient, log),
		Preferences: intelligence.NewPreferenceAnalyzer(log, cfg.PreferenceDecay),
		Patterns:    intelligence.NewPatternEngine(llmClient, optimizer, log, cfg.PatternMaxAge),
		Insights:    intelligence.NewInsightBuilder(llmClient, log),
		Reasoner:    intelligence.NewReasoner(llmClient, optimizer, log),
		Workflow:    intelligence.NewWorkflowAdvisor(llmClient, log),
		Optimizer:   optimizer,
		PatternKV:   patternStore,
		PrefKV:      prefStore,
		Logger:      log,
	})

	sessionService := service.NewSessionService(streamManager, patternStore, prefStore, log)
	chatService := service.NewChatService(streamManager, sessionService, orch, log)

	insightBuilder := intelligence.NewInsightBuilder(llmClient, log)

	healthHandler := handler.NewHealthHandler(nc)
	sessionHandler := handler.NewSessionHandler(sessionService)
	chatHandler := handler.NewChatHandler(chatService)
	intelHandler := handler.NewIntelligenceHandler(sessionService, patternStore, prefStore, insightBuilder)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.CorrelationIDHeader},
		ExposedHeaders:   []string{middleware.CorrelationIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Logging(log))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Get("/", sessionHandler.List)
			r.Get("/{sessionID}", sessionHandler.Get)
			r.Patch("/{sessionID}", sessionHandler.Update)
			r.Delete("/{sessionID}", sessionHandler.Delete)
			r.Get("/{sessionID}/messages", sessionHandler.Messages)
			r.Post("/{sessionID}/chat", chatHandler.Send)
			r.Get("/{sessionID}/patterns", intelHandler.Patterns)
			r.Get("/{sessionID}/preferences", intelHandler.Preferences)
			r.Get("/{sessionID}/insight", intelHandler.Insight)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
