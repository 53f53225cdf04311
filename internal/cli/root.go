package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/hanrei/internal/logging"
	"github.com/ppiankov/hanrei/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is overridden at build time with -ldflags "-X ...cli.version=..."
var version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hanrei",
	Short: "hanrei - Precedent-grounded answers to Japanese legal questions",
	Long: `hanrei answers legal questions using similar Japanese court decisions.

It retrieves precedent excerpts from a local vector index, asks a language
model to answer from those excerpts only, then looks up the statutes the
answer cites and shows their text from the e-Gov law API.

Answers are generated by a language model and are not legal advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetDefault(logging.New(os.Stderr, verbose))
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("hanrei " + version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.hanrei/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// envKeys are the settings Unmarshal should pick up from HANREI_* variables
// even when the config file does not mention them
var envKeys = []string{
	"llm.provider",
	"llm.model",
	"llm.api_key",
	"llm.base_url",
	"embedding.provider",
	"embedding.model",
	"embedding.api_key",
	"embedding.base_url",
	"embedding.dimensions",
	"vector_store.path",
	"statute.directory_path",
	"statute.api_base_url",
	"cache.enabled",
	"cache.dir",
	"http.http_proxy",
	"http.https_proxy",
	"http.no_proxy",
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".hanrei"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// HANREI_LLM_MODEL overrides llm.model, and so on
	viper.SetEnvPrefix("HANREI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig overlays the config file and environment onto the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	// The default model is an OpenAI one
	if cfg.LLM.Provider != "openai" && cfg.LLM.Provider != "" && !viper.IsSet("llm.model") {
		cfg.LLM.Model = ""
	}
	applyEnvCredentials(cfg)
	return cfg, nil
}

// applyEnvCredentials fills API keys and endpoints from the provider's
// conventional environment variables when the config leaves them empty
func applyEnvCredentials(cfg *model.Config) {
	switch cfg.LLM.Provider {
	case "openai", "":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "ollama":
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}

	switch cfg.Embedding.Provider {
	case "openai", "":
		if cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "ollama":
		if cfg.Embedding.BaseURL == "" {
			cfg.Embedding.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
}

// checkCredentials reports a missing API key before any request is made
func checkCredentials(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai", "":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	}
	if (cfg.Embedding.Provider == "openai" || cfg.Embedding.Provider == "") && cfg.Embedding.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set (needed for embeddings)")
	}
	return nil
}
