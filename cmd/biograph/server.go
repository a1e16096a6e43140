package biograph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/biograph"
	"github.com/soundprediction/biograph/pkg/config"
	"github.com/soundprediction/biograph/pkg/conversation"
	"github.com/soundprediction/biograph/pkg/driver"
	"github.com/soundprediction/biograph/pkg/embedder"
	"github.com/soundprediction/biograph/pkg/logger"
	"github.com/soundprediction/biograph/pkg/nlp"
	"github.com/soundprediction/biograph/pkg/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the BioGraph HTTP server",
	Long: `Start the BioGraph HTTP server to provide REST API access to the
question-answering pipeline.

The server provides endpoints for:
- Chatting over the knowledge graph with conversation memory
- Searching the knowledge graph without generating an answer
- Inspecting and deleting conversations
- Health checks`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "release", "Server mode (debug, release, test)")

	serverCmd.Flags().String("db-uri", "", "Neo4j URI")
	serverCmd.Flags().String("db-username", "", "Neo4j username")
	serverCmd.Flags().String("db-password", "", "Neo4j password")
	serverCmd.Flags().String("db-database", "", "Neo4j database name")

	serverCmd.Flags().String("nlp-model", "", "Completion model")
	serverCmd.Flags().String("nlp-api-key", "", "Completion API key")
	serverCmd.Flags().String("nlp-base-url", "", "Completion base URL")

	serverCmd.Flags().String("embedding-model", "", "Embedding model")
	serverCmd.Flags().String("embedding-api-key", "", "Embedding API key")

	serverCmd.Flags().String("archive-path", "", "Path for the evicted-conversation archive")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideConfigWithFlags(cmd, cfg)

	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	client, cleanup, err := initializeClient(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize biograph: %w", err)
	}
	defer cleanup()

	srv := server.New(cfg, client)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		fmt.Println("Server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	if cmd.Flags().Changed("db-uri") {
		cfg.Database.URI, _ = cmd.Flags().GetString("db-uri")
	}
	if cmd.Flags().Changed("db-username") {
		cfg.Database.Username, _ = cmd.Flags().GetString("db-username")
	}
	if cmd.Flags().Changed("db-password") {
		cfg.Database.Password, _ = cmd.Flags().GetString("db-password")
	}
	if cmd.Flags().Changed("db-database") {
		cfg.Database.Database, _ = cmd.Flags().GetString("db-database")
	}

	if cmd.Flags().Changed("nlp-model") {
		cfg.NLP.Model, _ = cmd.Flags().GetString("nlp-model")
	}
	if cmd.Flags().Changed("nlp-api-key") {
		cfg.NLP.APIKey, _ = cmd.Flags().GetString("nlp-api-key")
	}
	if cmd.Flags().Changed("nlp-base-url") {
		cfg.NLP.BaseURL, _ = cmd.Flags().GetString("nlp-base-url")
	}

	if cmd.Flags().Changed("embedding-model") {
		cfg.Embedding.Model, _ = cmd.Flags().GetString("embedding-model")
	}
	if cmd.Flags().Changed("embedding-api-key") {
		cfg.Embedding.APIKey, _ = cmd.Flags().GetString("embedding-api-key")
	}

	if cmd.Flags().Changed("archive-path") {
		cfg.Conversation.ArchivePath, _ = cmd.Flags().GetString("archive-path")
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}
	if cfg.Database.URI == "" {
		return fmt.Errorf("database URI is required")
	}
	if cfg.NLP.APIKey == "" {
		return fmt.Errorf("completion API key is required (set OPENAI_API_KEY)")
	}
	if cfg.Embedding.APIKey == "" {
		return fmt.Errorf("embedding API key is required (set OPENAI_API_KEY)")
	}
	return nil
}

// initializeClient wires the backends into a biograph client. The returned
// cleanup closes everything the initialization opened.
func initializeClient(ctx context.Context, cfg *config.Config) (*biograph.Client, func(), error) {
	log := logger.NewDefaultLogger(parseLogLevel(cfg.Log.Level))

	graphDriver, err := driver.NewNeo4jDriver(ctx, cfg.Database.URI, cfg.Database.Username, cfg.Database.Password, cfg.Database.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	nlpConfig := nlp.Config{
		Model:          cfg.NLP.Model,
		Temperature:    &cfg.NLP.Temperature,
		MaxTokens:      &cfg.NLP.MaxTokens,
		BaseURL:        cfg.NLP.BaseURL,
		RequestTimeout: cfg.NLP.RequestTimeout,
	}
	baseClient, err := nlp.NewOpenAIClient(cfg.NLP.APIKey, nlpConfig)
	if err != nil {
		graphDriver.Close(ctx)
		return nil, nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	retryConfig := nlp.DefaultRetryConfig()
	if cfg.NLP.MaxAttempts > 0 {
		retryConfig.MaxAttempts = cfg.NLP.MaxAttempts
	}
	var llmClient nlp.Client = nlp.NewRetryClient(baseClient, retryConfig)
	if cfg.CircuitBreaker.Enabled {
		llmClient = nlp.NewCircuitBreakerClient(llmClient, nlp.CircuitBreakerConfig{
			Enabled:          cfg.CircuitBreaker.Enabled,
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         cfg.CircuitBreaker.Interval,
			Timeout:          cfg.CircuitBreaker.Timeout,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, log, "completion")
	}

	embedderClient := embedder.NewOpenAIClient(cfg.Embedding.APIKey, embedder.Config{
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		BatchSize:  cfg.Embedding.BatchSize,
	})

	clientConfig := &biograph.Config{
		RetrievalLimit:       cfg.Retrieval.Limit,
		MaxHops:              cfg.Retrieval.MaxHops,
		ConversationCapacity: cfg.Conversation.Capacity,
		ConversationTTL:      cfg.Conversation.TTL,
	}

	var archive *conversation.BadgerArchive
	if cfg.Conversation.ArchivePath != "" {
		archive, err = conversation.NewBadgerArchive(cfg.Conversation.ArchivePath)
		if err != nil {
			log.Warn("failed to open conversation archive, continuing without it",
				"path", cfg.Conversation.ArchivePath, "error", err)
		} else {
			clientConfig.Archiver = archive
		}
	}

	client, err := biograph.NewClient(graphDriver, llmClient, embedderClient, clientConfig, log)
	if err != nil {
		if archive != nil {
			archive.Close()
		}
		graphDriver.Close(ctx)
		return nil, nil, err
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Close(shutdownCtx); err != nil {
			log.Warn("error closing client", "error", err)
		}
		if archive != nil {
			if err := archive.Close(); err != nil {
				log.Warn("error closing conversation archive", "error", err)
			}
		}
	}

	fmt.Printf("BioGraph initialized with database: %s\n", cfg.Database.URI)
	fmt.Printf("Completion model: %s, embedding model: %s\n", cfg.NLP.Model, cfg.Embedding.Model)

	return client, cleanup, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
