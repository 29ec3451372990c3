package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/floai/flo-assistant/internal/ai"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "flo-assistant"

	defaultServerAddress = ":8080"
	defaultProfileName   = "Flo"
)

type Config struct {
	Server    *ServerConfig    `mapstructure:"server"`
	Database  *DatabaseConfig  `mapstructure:"database" validate:"required"`
	Embedding *EmbeddingConfig `mapstructure:"embedding" validate:"required"`
	AI        *AIConfig        `mapstructure:"ai"`
	Profile   *ProfileConfig   `mapstructure:"profile"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type EmbeddingConfig struct {
	Provider      string                 `mapstructure:"provider" validate:"required,oneof=openai gemini"`
	MaxInputChars int                    `mapstructure:"max-input-chars"`
	OpenAI        *OpenAIEmbeddingConfig `mapstructure:"openai"`
	Gemini        *GeminiEmbeddingConfig `mapstructure:"gemini"`
}

type OpenAIEmbeddingConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
}

type GeminiEmbeddingConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type AIConfig struct {
	Provider     string          `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Gemini       *GeminiAIConfig `mapstructure:"gemini"`
	MaxLogLength int             `mapstructure:"max-log-length"`
}

type GeminiAIConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type ProfileConfig struct {
	Name       string    `mapstructure:"name"`
	Skills     []string  `mapstructure:"skills"`
	ResumeText string    `mapstructure:"resume-text"`
	ResumeFile string    `mapstructure:"resume-file"`
	Experience *struct {
		Years int      `mapstructure:"years"`
		Roles []string `mapstructure:"roles"`
	} `mapstructure:"experience"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "flo-assistant serves a conversational assistant for Flo's profile, backed by a retrieval knowledge base",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("embedding.openai.api-key-file", "OPENAI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding OPENAI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("embedding.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is flo-assistant.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// The version command works without a config file.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.Server.Address == "" {
		config.Server.Address = defaultServerAddress
	}

	return config, nil
}

// buildProfile resolves the candidate profile from the configuration,
// loading the resume text from a file when one is given.
func buildProfile(config *Config) (ai.Profile, error) {
	profile := ai.Profile{Name: defaultProfileName}

	cfg := config.Profile
	if cfg == nil {
		return profile, nil
	}

	if strings.TrimSpace(cfg.Name) != "" {
		profile.Name = cfg.Name
	}
	profile.Skills = cfg.Skills
	profile.ResumeText = cfg.ResumeText

	if file := strings.TrimSpace(cfg.ResumeFile); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return profile, fmt.Errorf("reading resume from file %q: %w", file, err)
		}
		profile.ResumeText = string(data)
	}

	if cfg.Experience != nil {
		profile.Experience = ai.Experience{
			Years: cfg.Experience.Years,
			Roles: cfg.Experience.Roles,
		}
	}

	return profile, nil
}
