package main

import (
	"context"
	"embed"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playerscout/adapters/statsapi"
	"playerscout/internal/api"
	"playerscout/internal/config"
	"playerscout/internal/search"
	"playerscout/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

//go:embed ui/templates ui/static
var embeddedFiles embed.FS

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := statsapi.NewClient(appConfig.Client.APIURL, &http.Client{})
	opts := search.DefaultOptions()
	opts.MinDisplay = appConfig.Client.MinDisplay
	opts.RevealDelay = appConfig.Client.RevealDelay
	opts.RequestTimeout = appConfig.Client.RequestTimeout

	hub := api.NewSSEHub()
	sessions := api.NewSessions(client, opts, hub, appConfig.Server.SessionTTL)
	defer sessions.Close()

	go sessions.RunJanitor(ctx, janitorInterval(appConfig.Server.SessionTTL))

	server, err := ui.NewServer(embeddedFiles, sessions, hub)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	log.Printf("Using statistics service at %s", appConfig.Client.APIURL)
	if err := server.Start(ctx, ":"+appConfig.Server.Port); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}

func janitorInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		return time.Second
	}
	return interval
}
