package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"r2r-mcp/internal/api"
	"r2r-mcp/internal/auth"
	"r2r-mcp/internal/config"
	"r2r-mcp/internal/logging"
	"r2r-mcp/internal/mcp"
	"r2r-mcp/internal/pipeline"
	"r2r-mcp/internal/r2r"
	"r2r-mcp/internal/tls"
)

func main() {
	// Initialize logging
	logger := logging.NewLogger()

	// Parse command line flags
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		log.Fatalf("Configuration loading failed: %v", err)
	}
	logger.SetLevel(cfg.Log.Level)

	tokens := auth.NewEnvTokenSource(cfg.Backend.APIKeyEnv)
	logger.Info("Configuration loaded",
		"backend_url", cfg.Backend.BaseURL,
		"api_key_env", cfg.Backend.APIKeyEnv,
		"api_key", auth.MaskToken(tokens.Resolve()),
		"config_file", viper.ConfigFileUsed(),
	)
	if tokens.Resolve() == "" {
		logger.Warn("No API key present yet; requests will go out unauthenticated until the variable is set",
			"env", cfg.Backend.APIKeyEnv)
	}

	logger.Info("Starting R2R MCP Service")

	// Initialize the backend gateway and shared cache
	backend := r2r.NewClient(cfg.Backend.BaseURL, tokens, cfg.BackendTimeout())
	searchCache := pipeline.NewCache()

	logger.Info("Backend gateway initialized", "timeout", cfg.BackendTimeout())

	// Create Echo server
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("r2r-mcp"))

	// Operational endpoints
	apiHandler := api.NewHandler(backend)
	e.GET("/healthz", echo.WrapHandler(http.HandlerFunc(apiHandler.HandleHealth)))
	e.GET("/healthz/backend", echo.WrapHandler(http.HandlerFunc(apiHandler.HandleBackendHealth)))

	// Mount MCP protocol handlers
	mcpServer := mcp.NewServer(backend, searchCache, cfg.SearchTTL(), logger)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp", echo.WrapHandler(mcpHandlers))
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))

	logger.Info("MCP protocol handlers mounted")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", cfg.Server.Addr, "tls", cfg.TLS.Enable)
		if cfg.TLS.Enable {
			if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
				logger.Error("TLS enabled but cert/key file not provided")
				serverErrors <- server.ListenAndServe()
				return
			}
			// generate if missing and hostnames provided
			if _, err := os.Stat(cfg.TLS.CertFile); os.IsNotExist(err) {
				if len(cfg.TLS.Hostnames) > 0 {
					if err := tls.GenerateSelfSignedCert(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.Hostnames); err != nil {
						logger.Error("failed to generate self-signed cert", "error", err)
					}
				}
			}
			serverErrors <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			if err := server.Close(); err != nil {
				logger.Error("Server close error", "error", err)
			}
		}

		logger.Info("Server stopped gracefully")
	}
}
