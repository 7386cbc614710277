// Package config loads moodqueue settings from an optional YAML file, a
// .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "MOODQUEUE"

const (
	StrategySongs    = "songs"
	StrategyPlaylist = "playlist"

	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	// StorageNone disables queue persistence.
	StorageNone   = "none"
	StorageSQLite = "sqlite"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	LLM     LLMConfig     `mapstructure:"llm"`
	YouTube YouTubeConfig `mapstructure:"youtube"`
	Builder BuilderConfig `mapstructure:"builder"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Storage StorageConfig `mapstructure:"storage"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Log     LogConfig     `mapstructure:"log"`
	Player  PlayerConfig  `mapstructure:"player"`
}

type ServerConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type YouTubeConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	RPS     float64       `mapstructure:"rps"`
	Burst   int           `mapstructure:"burst"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type BuilderConfig struct {
	Strategy       string        `mapstructure:"strategy"`
	SongCount      int           `mapstructure:"song_count"`
	CollectionSize int           `mapstructure:"collection_size"`
	ResolveTimeout time.Duration `mapstructure:"resolve_timeout"`
	Concurrency    int           `mapstructure:"concurrency"`
	// LowConfidence flags resolved tracks whose title match scores below it.
	LowConfidence float64 `mapstructure:"low_confidence"`
}

// RetryConfig applies to transport failures only (429, 5xx, network).
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Backoff     time.Duration `mapstructure:"backoff"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

// CacheConfig enables the resolver cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr string        `mapstructure:"redis_addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	TTL       time.Duration `mapstructure:"ttl"`
	Prefix    string        `mapstructure:"prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type PlayerConfig struct {
	EndedDelay   time.Duration `mapstructure:"ended_delay"`
	ErrorDelay   time.Duration `mapstructure:"error_delay"`
	StrictErrors bool          `mapstructure:"strict_errors"`
}

// Load reads configuration. path may be empty, in which case moodqueue.yaml
// is looked up in the working directory and ./config; a missing file is
// not an error.
func Load(path string) (*Config, error) {
	// .env is optional; existing environment wins.
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("moodqueue")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindLegacyEnv accepts the unprefixed variable names used by earlier
// deployments alongside the prefixed ones.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"llm.api_key":      {"MOODQUEUE_LLM_API_KEY", "OPENAI_API_KEY"},
		"youtube.api_key":  {"MOODQUEUE_YOUTUBE_API_KEY", "YOUTUBE_API_KEY"},
		"cache.redis_addr": {"MOODQUEUE_CACHE_REDIS_ADDR", "REDIS_ADDR"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("config: bind %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_header_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout", 30*time.Second)

	v.SetDefault("youtube.base_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("youtube.api_key", "")
	v.SetDefault("youtube.rps", 10.0)
	v.SetDefault("youtube.burst", 10)
	v.SetDefault("youtube.timeout", 10*time.Second)

	v.SetDefault("builder.strategy", StrategySongs)
	v.SetDefault("builder.song_count", 10)
	v.SetDefault("builder.collection_size", 10)
	v.SetDefault("builder.resolve_timeout", 5*time.Second)
	v.SetDefault("builder.concurrency", 10)
	v.SetDefault("builder.low_confidence", 0.5)

	v.SetDefault("retry.max_attempts", 2)
	v.SetDefault("retry.backoff", 300*time.Millisecond)

	v.SetDefault("storage.driver", StorageNone)
	v.SetDefault("storage.path", "moodqueue.db")

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.prefix", "moodqueue:resolve:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("player.ended_delay", 500*time.Millisecond)
	v.SetDefault("player.error_delay", 2*time.Second)
	v.SetDefault("player.strict_errors", false)
}

func (c *Config) normalize() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.Builder.Strategy = strings.ToLower(strings.TrimSpace(c.Builder.Strategy))
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
}

// Validate checks enumerations and ranges. Credentials are checked
// separately by RequireCredentials.
func (c *Config) Validate() error {
	switch c.Builder.Strategy {
	case StrategySongs, StrategyPlaylist:
	default:
		return fmt.Errorf("config: unknown builder.strategy %q", c.Builder.Strategy)
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("config: unknown llm.provider %q", c.LLM.Provider)
	}
	switch c.Storage.Driver {
	case StorageNone, StorageSQLite:
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Builder.SongCount < 1 {
		return errors.New("config: builder.song_count must be positive")
	}
	if c.Builder.CollectionSize < 1 || c.Builder.CollectionSize > 15 {
		return errors.New("config: builder.collection_size must be between 1 and 15")
	}
	if c.Builder.LowConfidence < 0 || c.Builder.LowConfidence > 1 {
		return errors.New("config: builder.low_confidence must be between 0 and 1")
	}
	if c.Retry.MaxAttempts < 1 {
		return errors.New("config: retry.max_attempts must be at least 1")
	}
	return nil
}

// RequireCredentials reports missing API keys for the selected providers.
func (c *Config) RequireCredentials() error {
	var missing []string
	if c.LLM.Provider == ProviderOpenAI && c.LLM.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.YouTube.APIKey == "" {
		missing = append(missing, "YOUTUBE_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}
