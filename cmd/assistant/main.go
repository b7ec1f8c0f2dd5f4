// The assistant binary runs the full portfolio chat service: knowledge base,
// embedding retriever, generation model, and session store behind a REST API.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/portfolio-ai-assistant/internal/config"
	"github.com/portfolio-ai-assistant/internal/embedding"
	"github.com/portfolio-ai-assistant/internal/generation"
	"github.com/portfolio-ai-assistant/internal/knowledge"
	"github.com/portfolio-ai-assistant/internal/retrieval"
	"github.com/portfolio-ai-assistant/internal/server"
	"github.com/portfolio-ai-assistant/internal/session"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Starting portfolio assistant",
		zap.String("addr", cfg.Addr()),
		zap.String("model", cfg.ModelName),
		zap.String("embedding_model", cfg.EmbeddingModel),
		zap.String("data_dir", cfg.DataDir))

	// Knowledge base + retriever.
	loader := knowledge.NewLoader(cfg.DataDir, logger.Named("knowledge"))

	var embedder embedding.Embedder
	if cfg.OfflineEmbeddings {
		embedder = embedding.NewHashEmbedder(384)
		logger.Warn("Using offline hash embeddings")
	} else {
		embedder = embedding.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel)
	}
	defer embedder.Close()

	index, err := retrieval.NewIndex(loader, embedder, logger)
	if err != nil {
		logger.Fatal("Failed to create retrieval index", zap.Error(err))
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	if err := index.Reload(startupCtx); err != nil {
		cancel()
		logger.Fatal("Failed to load context", zap.Error(err))
	}
	cancel()
	logger.Info("Context loaded", zap.Int("items", index.Len()))

	// Generator and sessions.
	client := generation.NewOllamaClient(cfg.OllamaURL, cfg.ModelName, cfg.Temperature, cfg.MaxNewTokens)
	generator := generation.NewGenerator(client, cfg.Temperature, cfg.MaxNewTokens, cfg.GenerationTimeout, logger)
	sessions := session.NewStore(cfg.SessionTimeout)

	// HTTP wiring.
	router := mux.NewRouter()
	srv := server.New(index, generator, sessions, cfg.APIKey, logger)
	srv.SetupRoutes(router)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-API-Key"}),
		handlers.AllowCredentials(),
	)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      cors(router),
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		logger.Info("Assistant API listening", zap.String("addr", cfg.Addr()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server startup failed", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("Shutting down assistant...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
}
