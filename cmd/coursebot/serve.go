package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ahsan-courses/coursebot/internal/db/sqlite"
	chatrepo "github.com/ahsan-courses/coursebot/internal/repository/chat"
	enrollmentrepo "github.com/ahsan-courses/coursebot/internal/repository/enrollment"
	leadrepo "github.com/ahsan-courses/coursebot/internal/repository/lead"
	chiTransport "github.com/ahsan-courses/coursebot/internal/transport/chi"
	openaiLLM "github.com/ahsan-courses/coursebot/internal/transport/openai"
	chatuc "github.com/ahsan-courses/coursebot/internal/usecase/chat"
	enrollmentuc "github.com/ahsan-courses/coursebot/internal/usecase/enrollment"
	healthuc "github.com/ahsan-courses/coursebot/internal/usecase/health"
	leaduc "github.com/ahsan-courses/coursebot/internal/usecase/lead"
	"github.com/ahsan-courses/coursebot/internal/usecase/retrieval"
	"github.com/ahsan-courses/coursebot/internal/version"
)

func NewServeCmd(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  `Serve the chat, lead, enrollment and knowledge base API. The knowledge base warms up in the background.`,
		Args:  cobra.NoArgs,
		RunE:  makeServeRunner(load),
	}

	cmd.Flags().IntP("port", "p", 0, "Listen port (overrides http.port)")
	return cmd
}

func makeServeRunner(load appLoader) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := appFor(cmd, load)
		if err != nil {
			return err
		}
		defer a.Close()

		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			a.cfg.HTTP.Port = port
		}
		return serve(cmd.Context(), a)
	}
}

// serve runs the HTTP server until ctx is cancelled, then shuts down gracefully.
func serve(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger

	logger.Info("Starting coursebot API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_dsn", cfg.Database.DSN),
	)

	store, err := sqlite.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Error closing database", zap.Error(err))
		}
	}()
	logger.Info("Connected to database")

	llm := openaiLLM.NewChatClient(&openaiLLM.ChatConfig{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		TopP:        cfg.LLM.TopP,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		Logger:      logger,
	})
	if !llm.Configured() {
		logger.Warn("LLM API key not configured, chat replies are placeholders")
	}

	chatSvc := chatuc.New(a.knowledge, llm, chatrepo.New(store.DB()), cfg.Knowledge.TopK, logger)
	leadSvc := leaduc.New(leadrepo.New(store.DB()), logger)
	enrollmentSvc := enrollmentuc.New(enrollmentrepo.New(store.DB()), logger)

	healthSvc := healthuc.New(store, embeddingHealthChecker{embedder: a.docs}).
		WithKnowledge(a.knowledge)
	if llm.Configured() {
		healthSvc = healthSvc.WithLLM(llm)
	}

	server := chiTransport.NewServer(chatSvc, leadSvc, enrollmentSvc, a.knowledge, healthSvc, logger)
	router := chiTransport.NewRouter(server, chiTransport.RouterOptions{
		AdminAPIKeys: cfg.Auth.AdminAPIKeys,
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		Logger:       logger,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second,
		)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		warmup(gctx, a)
		return nil
	})

	if cfg.Knowledge.Watch {
		g.Go(func() error {
			watcher := retrieval.NewWatcher(
				a.knowledge, a.corpus.Dir(), a.corpus.Eligible,
				time.Duration(cfg.Knowledge.WatchDebounceMs)*time.Millisecond, logger,
			)
			if err := watcher.Run(gctx); err != nil {
				// serving goes on without hot reload
				logger.Warn("Corpus watcher stopped", zap.Error(err))
			}
			return nil
		})
	}

	err = g.Wait()
	logger.Info("Server stopped gracefully")
	return err
}

// warmup loads or builds the knowledge base without blocking request serving.
func warmup(ctx context.Context, a *app) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.Knowledge.WarmupTimeoutSec)*time.Second)
	defer cancel()

	start := time.Now()
	if err := a.knowledge.Warmup(ctx); err != nil {
		a.logger.Warn("Knowledge base warmup failed, retrieval unavailable", zap.Error(err))
		return
	}

	st := a.knowledge.Status()
	a.logger.Info("Knowledge base ready",
		zap.String("source", st.Source),
		zap.Int("documents", st.Documents),
		zap.Int("dimension", st.Dimension),
		zap.Duration("duration", time.Since(start)),
	)
}
