package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/trackmatch/internal/catalog"
	"github.com/ppiankov/trackmatch/internal/logging"
	"github.com/ppiankov/trackmatch/internal/model"
	"github.com/ppiankov/trackmatch/internal/pipeline"
	"github.com/ppiankov/trackmatch/internal/util"
)

const version = "0.1.0"

var (
	cfgFile string
	verbose bool
	debug   bool
	noColor bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "trackmatch",
	Short: "TrackMatch - identify the song in a video and find it in a catalog",
	Long: `TrackMatch reads the fragments a video page publishes (title, description,
channel name, metadata rows), fuses them into a best guess of song and artist,
searches a music catalog with several query variants and decides whether one
track is a confident match or the caller has to choose between candidates.

A confident match can be added to a playlist automatically.`,
	SilenceErrors: true,
	SilenceUsage:  true,
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
		fmt.Printf("trackmatch v%s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.trackmatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "development logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := setDefaults(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting config defaults: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	configureEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".trackmatch"), nil
}

// setDefaults registers every key of the built-in config so that
// environment overrides and Unmarshal see the complete tree
func setDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	flatten("", tree, v.SetDefault)
	return nil
}

func flatten(prefix string, tree map[string]any, set func(string, any)) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			flatten(key, sub, set)
			continue
		}
		set(key, val)
	}
}

// configureEnv maps TRACKMATCH_CATALOG_TOKEN to catalog.token and so on
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("TRACKMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvFallbacks(v)
}

// bindEnvFallbacks binds keys that are empty by default, along with the
// conventional variable names of the services they configure
func bindEnvFallbacks(v *viper.Viper) {
	_ = v.BindEnv("catalog.token", "TRACKMATCH_CATALOG_TOKEN", "SPOTIFY_ACCESS_TOKEN")
	_ = v.BindEnv("catalog.market", "TRACKMATCH_CATALOG_MARKET")
	_ = v.BindEnv("catalog.local_path", "TRACKMATCH_CATALOG_LOCAL_PATH")
	_ = v.BindEnv("catalog.playlist_id", "TRACKMATCH_CATALOG_PLAYLIST_ID")
	_ = v.BindEnv("llm.api_key", "TRACKMATCH_LLM_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.base_url", "TRACKMATCH_LLM_BASE_URL", "OLLAMA_BASE_URL")
	_ = v.BindEnv("source.ytdlp_path", "TRACKMATCH_SOURCE_YTDLP_PATH")
	_ = v.BindEnv("http.http_proxy", "TRACKMATCH_HTTP_HTTP_PROXY")
	_ = v.BindEnv("http.https_proxy", "TRACKMATCH_HTTP_HTTPS_PROXY")
	_ = v.BindEnv("http.no_proxy", "TRACKMATCH_HTTP_NO_PROXY")
}

// loadConfig returns the effective configuration: defaults, config file,
// environment and bound flags, in increasing priority
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if noColor {
		cfg.Output.Color = false
	}
	return cfg, nil
}

// session bundles a pipeline with the resources it owns
type session struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
	client   catalog.Client
}

// openSession validates cfg and opens the logger, catalog and pipeline
func openSession(cfg *model.Config) (*session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	httpClient := &http.Client{
		Timeout: cfg.HTTP.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
		},
	}
	client, err := catalog.Open(cfg.Catalog, catalog.WithHTTPClient(httpClient))
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	return &session{
		pipeline: pipeline.NewPipeline(cfg, client, logger),
		logger:   logger,
		client:   client,
	}, nil
}

// Close releases the catalog and flushes the logger
func (s *session) Close() {
	if c, ok := s.client.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.logger.Warn("close catalog", zap.Error(err))
		}
	}
	_ = s.logger.Sync()
}
