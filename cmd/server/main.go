package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/ai"
	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/api"
	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/config"
	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/core"
	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	var storage store.Storage
	switch cfg.StorageBackend {
	case "sqlite":
		storage, err = store.NewSQLiteStorage(cfg.SQLitePath)
	default:
		storage, err = store.NewJSONFileStorage(cfg.DataDir)
	}
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	data := store.NewDataManager(storage)

	var generator ai.Generator
	if cfg.AIProvider == "gemini" {
		gemini, err := ai.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout)
		if err != nil {
			logger.Fatal("failed to initialize Gemini generator", zap.Error(err))
		}
		defer gemini.Close()
		generator = gemini
	} else {
		generator = ai.NewSimulated()
	}

	chatService := core.NewChatService(data, generator, logger)
	authService := core.NewAuthService(data, logger)
	apiHandler := api.NewAPIHandler(chatService, authService, data, logger)
	router := api.NewRouter(apiHandler, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // generation calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.StorageBackend),
			zap.String("aiProvider", cfg.AIProvider))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not listen", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
