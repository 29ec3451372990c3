package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/floai/flo-assistant/internal/ai"
	"github.com/floai/flo-assistant/internal/ai/gemini"
	"github.com/floai/flo-assistant/internal/conversation"
	"github.com/floai/flo-assistant/internal/embedding"
	"github.com/floai/flo-assistant/internal/knowledge"
	"github.com/floai/flo-assistant/internal/logger"
	"github.com/floai/flo-assistant/internal/secrets"
	"github.com/floai/flo-assistant/internal/server"
	"github.com/floai/flo-assistant/internal/storage"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assistant API over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address, overrides server.address from the config")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve(_ *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the flo-assistant", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	profile, err := buildProfile(config)
	if err != nil {
		logger.Fatal("building the candidate profile", zap.Error(err))
	}

	store, err := storage.NewSQLiteStore(config.Database.Path, logger)
	if err != nil {
		logger.Fatal("opening the knowledge database", zap.Error(err), zap.String("path", config.Database.Path))
	}
	defer store.Close()

	embedder, err := newEmbedder(ctx, config.Embedding, logger)
	if err != nil {
		logger.Fatal(
			"building the embedding provider",
			zap.Error(err),
			zap.String("hint", "set embedding.<provider>.api-key-file or the matching *_API_KEY_FILE environment variable"),
		)
	}

	generator, err := newGenerator(ctx, config.AI)
	if err != nil {
		logger.Fatal(
			"building the content generator",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY_FILE"),
		)
	}

	genLogger := logger.With(zap.String("provider", "gemini"), zap.String("model", generator.Model()))

	retriever := knowledge.NewRetriever(store, embedder, logger)
	curator := knowledge.NewCurator(store, embedder, logger)
	tracker := conversation.NewTracker(store, logger)

	maxLogLength := 0
	if config.AI != nil {
		maxLogLength = config.AI.MaxLogLength
	}

	analyzer := ai.NewAnalyzer(generator, profile, genLogger, maxLogLength)
	responder := ai.NewResponder(generator, retriever, profile, genLogger)

	srv := &http.Server{
		Addr:              config.Server.Address,
		Handler:           server.New(curator, responder, analyzer, tracker, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("address", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("reason", "signal received"))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serving http", zap.Error(err))
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("shutting down http server", zap.Error(err))
	}
}

// newEmbedder builds the configured embedding provider. The api key is
// resolved from a file first, then from the provider's environment variable.
func newEmbedder(ctx context.Context, cfg *EmbeddingConfig, baseLogger *zap.Logger) (knowledge.Embedder, error) {
	switch strings.TrimSpace(strings.ToLower(cfg.Provider)) {
	case "openai":
		var fileSource string
		if cfg.OpenAI != nil {
			fileSource = cfg.OpenAI.APIKeyFile
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "openai api key",
			File: fileSource,
			Env:  "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, err
		}

		openAICfg := embedding.OpenAIConfig{
			APIKey:        apiKey,
			MaxInputChars: cfg.MaxInputChars,
		}
		if cfg.OpenAI != nil {
			openAICfg.Model = cfg.OpenAI.Model
			openAICfg.BaseURL = cfg.OpenAI.BaseURL
		}

		return embedding.NewOpenAI(openAICfg, logger.WithProvider(baseLogger, "openai", openAICfg.Model))
	case "gemini":
		var fileSource string
		if cfg.Gemini != nil {
			fileSource = cfg.Gemini.APIKeyFile
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: fileSource,
			Env:  "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, err
		}

		geminiCfg := embedding.GeminiConfig{
			APIKey:        apiKey,
			MaxInputChars: cfg.MaxInputChars,
		}
		if cfg.Gemini != nil {
			geminiCfg.Model = cfg.Gemini.Model
		}

		return embedding.NewGemini(ctx, geminiCfg, logger.WithProvider(baseLogger, "gemini", geminiCfg.Model))
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

func newGenerator(ctx context.Context, cfg *AIConfig) (*gemini.Generator, error) {
	if cfg == nil {
		cfg = &AIConfig{}
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	var fileSource, model string
	if cfg.Gemini != nil {
		fileSource = cfg.Gemini.APIKeyFile
		model = cfg.Gemini.Model
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: fileSource,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	return gemini.NewGenerator(ctx, apiKey, model)
}
