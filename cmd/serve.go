package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/LullabiesGr/AilbumsV2-sub002/internal/ai"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/backend"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/config"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/database/postgres"
	"github.com/LullabiesGr/AilbumsV2-sub002/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the culling workspace server",
	Long: `Start the Ailbums web server.
Each browser session gets its own in-memory workspace that walks the
upload -> configure -> analyzing -> review pipeline. The AI backend,
caption providers and the embedding cache are optional; endpoints that
need a missing piece report a precondition failure instead.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().String("session-secret", "", "Secret for signing session cookies")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")
	sessionSecret := mustGetString(cmd, "session-secret")

	if sessionSecret == "" {
		sessionSecret = os.Getenv("WEB_SESSION_SECRET")
	}
	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host, sessionSecret
}

// buildCaptionProvider picks whichever vision provider has credentials,
// preferring OpenAI. Returns nil when neither is configured.
func buildCaptionProvider(cfg *config.Config) (ai.Provider, error) {
	if cfg.OpenAI.Token != "" {
		return ai.NewOpenAIProvider(cfg.OpenAI.Token), nil
	}
	if cfg.Gemini.APIKey != "" {
		provider, err := ai.NewGeminiProvider(context.Background(), cfg.Gemini.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini provider: %w", err)
		}
		return provider, nil
	}
	return nil, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	var backendClient *backend.Client
	if cfg.Backend.URL != "" {
		var err error
		backendClient, err = backend.New(cfg.Backend.URL)
		if err != nil {
			return fmt.Errorf("failed to create backend client: %w", err)
		}
		fmt.Printf("AI backend: %s\n", cfg.Backend.URL)
	} else {
		fmt.Println("AI backend: not configured (manual culling and local duplicate search only)")
	}

	aiProvider, err := buildCaptionProvider(cfg)
	if err != nil {
		return err
	}
	if aiProvider != nil {
		fmt.Printf("Caption provider: %s\n", aiProvider.Name())
	}

	var embeddingRepo *postgres.EmbeddingRepository
	if cfg.Database.URL != "" {
		fmt.Println("Connecting to PostgreSQL embedding cache...")
		pool, err := postgres.Connect(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		defer pool.Close()
		embeddingRepo = postgres.NewEmbeddingRepository(pool)
		if count, err := embeddingRepo.Count(context.Background()); err == nil {
			fmt.Printf("Embedding cache ready (%d cached signatures)\n", count)
		}
	}

	port, host, sessionSecret := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, sessionSecret, backendClient, aiProvider, embeddingRepo)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Ailbums workspace on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
