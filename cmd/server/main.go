package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Milo82/construction-ai-assistant/internal/adapters/filewatcher"
	"github.com/Milo82/construction-ai-assistant/internal/adapters/llm"
	"github.com/Milo82/construction-ai-assistant/internal/adapters/loader"
	"github.com/Milo82/construction-ai-assistant/internal/adapters/parser"
	"github.com/Milo82/construction-ai-assistant/internal/adapters/session"
	"github.com/Milo82/construction-ai-assistant/internal/config"
	"github.com/Milo82/construction-ai-assistant/internal/domain/ports"
	"github.com/Milo82/construction-ai-assistant/internal/domain/usecases"
	httpserver "github.com/Milo82/construction-ai-assistant/internal/infrastructure/http"
	"github.com/Milo82/construction-ai-assistant/internal/infrastructure/metrics"
	"github.com/apex/log"
	jsonhandler "github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.App)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder()

	var completions ports.CompletionService
	switch cfg.LLM.Provider {
	case "ollama":
		completions = llm.NewOllamaAdapter(cfg.LLM.OllamaBaseURL)
	case "openai":
		completions = llm.NewOpenAIAdapter(cfg.LLM.OpenAIBaseURL)
	default:
		log.Fatalf("Unknown LLM_PROVIDER %q (want openai or ollama)", cfg.LLM.Provider)
	}

	ingest := usecases.NewIngestUseCase(parser.NewPDFParser(), recorder)
	converse := usecases.NewConverseUseCase(completions, recorder, usecases.ConverseOptions{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Pricing: usecases.Pricing{
			PromptTokenRate:     cfg.Pricing.PromptPer1K,
			CompletionTokenRate: cfg.Pricing.CompletionPer1K,
		},
	})

	folder := startSharedFolder(ctx, cfg.App.DocumentsDir)

	server, err := httpserver.NewServer(httpserver.Options{
		Addr:               ":" + cfg.App.Port,
		Registry:           session.NewMemoryRegistry(cfg.Session.TTL, cfg.LLM.OpenAIAPIKey),
		Ingest:             ingest,
		Converse:           converse,
		Folder:             folder,
		Metrics:            recorder.Handler(),
		MaxMultipartMemory: int64(cfg.App.UploadMaxMemoryMB) << 20,
	})
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}

	log.WithFields(log.Fields{
		"provider": cfg.LLM.Provider,
		"model":    cfg.LLM.Model,
		"port":     cfg.App.Port,
	}).Info("Construction consulting assistant starting")

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Info("server.stopped")
}

func setupLogging(app config.AppConfig) {
	if app.LogFormat == "json" {
		log.SetHandler(jsonhandler.New(os.Stderr))
	} else {
		log.SetHandler(text.New(os.Stderr))
	}

	level, err := log.ParseLevel(app.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// startSharedFolder returns nil when dir is empty.
func startSharedFolder(ctx context.Context, dir string) *usecases.SharedFolder {
	if dir == "" {
		return nil
	}

	var watcher ports.FileWatcher
	w, err := filewatcher.NewFSNotifyWatcher(loader.SupportedExtensions())
	if err != nil {
		log.WithError(err).Warn("folder.watch.unavailable")
	} else {
		watcher = w
		go func() {
			<-ctx.Done()
			w.Stop()
		}()
	}

	folder := usecases.NewSharedFolder(loader.NewDirectoryLoader(dir), watcher)
	go func() {
		if err := folder.Run(ctx, dir); err != nil {
			log.WithError(err).WithField("dir", dir).Error("folder.run.failed")
		}
	}()
	return folder
}
