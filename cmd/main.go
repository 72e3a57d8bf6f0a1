package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"ui_forge_server/api"
	"ui_forge_server/config"
	"ui_forge_server/internal/auth"
	handlers "ui_forge_server/internal/api"
	"ui_forge_server/internal/session"
)

func main() {
	app := &cli.App{
		Name:  "uiforge",
		Usage: "Generate standalone HTML pages from designs, screenshots or text",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Directory containing config.yaml",
				Value: ".",
			},
		},
		Before: func(c *cli.Context) error {
			loadDotEnv()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveCommand,
			},
			generateCmd(),
			imageCmd(),
			signinCmd(),
			signupCmd(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadDotEnv loads a .env file if present. It must run before viper reads the environment.
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		} else {
			log.Println("Info: .env file not found, relying on system environment variables.")
		}
	} else {
		log.Println("Info: Loaded environment variables from .env file.")
	}
}

func serveCommand(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Dependency Initialization ---
	models, err := buildRegistry(cfg)
	if err != nil {
		log.Fatalf("Cannot initialize AI provider: %v", err)
	}
	authClient := auth.NewClient(cfg.APIBaseURL, nil)
	publisher, err := buildPublisher(ctx, cfg, "")
	if err != nil {
		log.Fatalf("Cannot initialize publisher: %v", err)
	}

	sessions := session.NewStore()
	go expireSessions(ctx, sessions, cfg.SessionTTL)

	var limiter *handlers.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = handlers.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		defer limiter.Close()
	} else {
		log.Println("WARN: RATE_LIMIT_RPS <= 0, generation endpoints are not rate limited.")
	}

	apiHandler := handlers.NewAPIHandler(
		models,
		authClient,
		sessions,
		publisher,
		cfg.MaxInputChars,
	)

	// --- Start API Server ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in Gin Debug Mode")
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = handlers.MaxImageBytes

	api.RegisterRoutes(router, apiHandler, limiter)

	server := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router,
		// Generation waits on the provider, so writes get a long timeout.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting API server on %s\n", cfg.ServerAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server listen error: %s\n", err)
		}
		log.Println("API server has stopped listening.")
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received signal: %s. Shutting down server...", sig)

	shutdownCtx, serverCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer serverCancel()

	log.Println("Cancelling main application context...")
	cancel()

	log.Println("Shutting down API server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server forced shutdown error: %v", err)
	} else {
		log.Println("API server gracefully stopped.")
	}

	log.Println("Application exiting.")
	return nil
}

func expireSessions(ctx context.Context, sessions *session.Store, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := sessions.Expire(now, ttl); n > 0 {
				log.Printf("Expired %d idle sessions (%d live)", n, sessions.Len())
			}
		}
	}
}
