package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pagereply/pagereply/internal/api"
	"github.com/pagereply/pagereply/internal/biz/usecase"
	"github.com/pagereply/pagereply/internal/conf"
	"github.com/pagereply/pagereply/internal/data"
	"github.com/pagereply/pagereply/internal/server"
	"github.com/pagereply/pagereply/internal/service"
	"github.com/pagereply/pagereply/messenger"
	"github.com/pagereply/pagereply/providers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := data.OpenDB(cfg.DB.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var messengerOpts []messenger.Option
	if cfg.Graph.BaseURL != "" {
		messengerOpts = append(messengerOpts, messenger.WithBaseURL(cfg.Graph.BaseURL))
	}
	repos := data.NewRepositories(db, messenger.NewClient(messengerOpts...), providers.NewManager())

	resolver := usecase.NewResolverUsecase(repos.Rule, repos.AIConfig, repos.Generator)
	pipeline := usecase.NewPipelineUsecase(resolver, repos.Page, repos.Messenger, repos.History, repos.SystemLog)
	queueUC := usecase.NewQueueUsecase(repos.Event, pipeline)
	housekeepingUC := usecase.NewHousekeepingUsecase(
		repos.History, repos.SystemLog, repos.Event, usecase.DefaultRetentionConfig())

	mux := http.NewServeMux()
	server.NewWebhookServer(cfg.Server.VerifyToken, queueUC).Register(mux)
	api.NewServer(repos.Page, repos.Rule, repos.AIConfig, repos.History, repos.Messenger, repos.Generator).Register(mux)

	sweeper := service.NewSweeper(queueUC, housekeepingUC, cfg.Sweep.Interval, cfg.Sweep.CleanupInterval)
	sweeper.Start(context.Background())

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: mux,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		sweeper.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	fmt.Printf("Starting PageReply on port %d...\n", cfg.Server.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
