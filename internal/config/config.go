package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quiz-ai-cache/internal/domain"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	StoreREST     = "rest"
	StorePostgres = "postgres"
	StoreOracle   = "oracle"

	UpsertMerge   = "merge"
	UpsertReplace = "replace"

	ProviderGoogleAI    = "googleai"
	ProviderOpenAI      = "openai"
	ProviderHuggingFace = "huggingface"
	ProviderOllama      = "ollama"
)

type Config struct {
	Logger  LoggerConfig
	Store   StoreConfig
	Redis   RedisConfig
	LLM     LLMConfig
	Batch   BatchConfig
	Prompt  PromptConfig
	Import  ImportConfig
	Metrics MetricsConfig
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
	File  string `yaml:"file"`
}

type StoreConfig struct {
	Backend        string
	URL            string
	APIKey         string
	DSN            string
	QuestionsTable string
	CacheTable     string
	UpsertMode     string
	Timeout        time.Duration
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      time.Duration
}

type LLMConfig struct {
	Provider     string
	Model        string
	BaseURL      string
	APIKeys      []string
	MaxRetries   int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	LoadingDelay time.Duration
	Timeout      time.Duration
	MaxTokens    int
	Temperature  float64
	RateLimit    float64
	Fallback     bool
}

type BatchConfig struct {
	Workers   int
	Languages []string
	Types     string
	Force     bool
}

type PromptConfig struct {
	Profile string
}

type ImportConfig struct {
	BatchSize int
	Delimiter string
}

type MetricsConfig struct {
	PushgatewayURL string
	Job            string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")

	v.SetDefault("store.backend", StoreREST)
	v.SetDefault("store.questions_table", "questions")
	v.SetDefault("store.cache_table", "ai_cache")
	v.SetDefault("store.upsert_mode", UpsertMerge)
	v.SetDefault("store.timeout", "15s")

	v.SetDefault("redis.ttl", "24h")

	v.SetDefault("llm.provider", ProviderGoogleAI)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.base_delay", "2s")
	v.SetDefault("llm.max_delay", "30s")
	v.SetDefault("llm.loading_delay", "10s")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.fallback", true)

	v.SetDefault("batch.workers", 5)
	v.SetDefault("batch.languages", "vi,en")
	v.SetDefault("batch.types", "both")

	v.SetDefault("prompt.profile", "aws")

	v.SetDefault("import.batch_size", 100)
	v.SetDefault("import.delimiter", "----------------------------------------")

	v.SetDefault("metrics.job", "quiz_ai_cache")
}

// flagKeys maps command-line flags to config keys. Flags absent from the set are ignored.
var flagKeys = map[string]string{
	"workers":    "batch.workers",
	"lang":       "batch.languages",
	"type":       "batch.types",
	"force":      "batch.force",
	"profile":    "prompt.profile",
	"provider":   "llm.provider",
	"model":      "llm.model",
	"store":      "store.backend",
	"batch-size": "import.batch_size",
	"log-level":  "logger.level",
}

// LoadConfig reads configuration from config.yaml, the environment and flags, in increasing precedence.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
	}
	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../configs")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		if absPath, err := filepath.Abs(configFile); err == nil {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", absPath)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	config := &Config{
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
			File:  v.GetString("logger.file"),
		},
		Store: StoreConfig{
			Backend:        strings.ToLower(v.GetString("store.backend")),
			URL:            strings.TrimRight(v.GetString("store.url"), "/"),
			APIKey:         v.GetString("store.api_key"),
			DSN:            v.GetString("store.dsn"),
			QuestionsTable: v.GetString("store.questions_table"),
			CacheTable:     v.GetString("store.cache_table"),
			UpsertMode:     strings.ToLower(v.GetString("store.upsert_mode")),
			Timeout:        v.GetDuration("store.timeout"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		LLM: LLMConfig{
			Provider:     strings.ToLower(v.GetString("llm.provider")),
			Model:        v.GetString("llm.model"),
			BaseURL:      v.GetString("llm.base_url"),
			APIKeys:      stringList(v.Get("llm.api_keys")),
			MaxRetries:   v.GetInt("llm.max_retries"),
			BaseDelay:    v.GetDuration("llm.base_delay"),
			MaxDelay:     v.GetDuration("llm.max_delay"),
			LoadingDelay: v.GetDuration("llm.loading_delay"),
			Timeout:      v.GetDuration("llm.timeout"),
			MaxTokens:    v.GetInt("llm.max_tokens"),
			Temperature:  v.GetFloat64("llm.temperature"),
			RateLimit:    v.GetFloat64("llm.rate_limit"),
			Fallback:     v.GetBool("llm.fallback"),
		},
		Batch: BatchConfig{
			Workers:   v.GetInt("batch.workers"),
			Languages: stringList(v.Get("batch.languages")),
			Types:     v.GetString("batch.types"),
			Force:     v.GetBool("batch.force"),
		},
		Prompt: PromptConfig{
			Profile: strings.ToLower(v.GetString("prompt.profile")),
		},
		Import: ImportConfig{
			BatchSize: v.GetInt("import.batch_size"),
			Delimiter: v.GetString("import.delimiter"),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: v.GetString("metrics.pushgateway_url"),
			Job:            v.GetString("metrics.job"),
		},
	}

	// Override with the legacy environment variables if set
	if url := firstEnv("SUPABASE_URL", "VITE_SUPABASE_URL"); url != "" && config.Store.URL == "" {
		config.Store.URL = strings.TrimRight(url, "/")
	}
	if key := firstEnv("SUPABASE_KEY", "SUPABASE_ANON_KEY", "VITE_SUPABASE_ANON_KEY"); key != "" && config.Store.APIKey == "" {
		config.Store.APIKey = key
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" && config.Store.DSN == "" {
		config.Store.DSN = dsn
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if len(config.LLM.APIKeys) == 0 {
		config.LLM.APIKeys = legacyAPIKeys(config.LLM.Provider)
	}
	if config.LLM.Model == "" {
		switch config.LLM.Provider {
		case ProviderOpenAI:
			config.LLM.Model = os.Getenv("OPENAI_MODEL")
		case ProviderHuggingFace:
			config.LLM.Model = os.Getenv("HF_MODEL")
		}
	}
	if url := os.Getenv("PUSHGATEWAY_URL"); url != "" && config.Metrics.PushgatewayURL == "" {
		config.Metrics.PushgatewayURL = url
	}

	return config, nil
}

// legacyAPIKeys reads provider-specific key variables: a comma list first, then single keys.
func legacyAPIKeys(provider string) []string {
	var list, single []string
	switch provider {
	case ProviderGoogleAI:
		list = []string{"GEMINI_API_KEYS"}
		single = []string{"GEMINI_API_KEY", "VITE_GEMINI_API_KEY"}
	case ProviderOpenAI:
		list = []string{"OPENAI_API_KEYS"}
		single = []string{"OPENAI_API_KEY"}
	case ProviderHuggingFace:
		list = []string{"HF_TOKENS"}
		single = []string{"HF_TOKEN", "HUGGINGFACE_API_KEY"}
	}
	if keys := stringList(firstEnv(list...)); len(keys) > 0 {
		return keys
	}
	if key := firstEnv(single...); key != "" {
		return []string{strings.TrimSpace(key)}
	}
	return nil
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			return val
		}
	}
	return ""
}

// stringList accepts a comma separated string or a YAML list and drops blanks.
func stringList(raw interface{}) []string {
	var parts []string
	switch val := raw.(type) {
	case nil:
		return nil
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []interface{}:
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
	default:
		parts = []string{fmt.Sprint(val)}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Validate reports missing or contradictory settings before any work starts.
func (c *Config) Validate() error {
	problems := c.storeProblems()

	switch c.LLM.Provider {
	case ProviderGoogleAI, ProviderOpenAI, ProviderHuggingFace:
		if len(c.LLM.APIKeys) == 0 {
			problems = append(problems, fmt.Sprintf("no API keys configured for provider %s", c.LLM.Provider))
		}
	case ProviderOllama:
	default:
		problems = append(problems, fmt.Sprintf("unknown llm provider %q", c.LLM.Provider))
	}
	if c.LLM.MaxRetries < 1 {
		problems = append(problems, "llm.max_retries must be at least 1")
	}
	if c.Batch.Workers < 1 {
		problems = append(problems, "batch.workers must be at least 1")
	}
	if c.Prompt.Profile != "aws" && c.Prompt.Profile != "pmp" {
		problems = append(problems, fmt.Sprintf("unknown prompt profile %q", c.Prompt.Profile))
	}
	return configError(problems)
}

// ValidateStore checks only the store settings, for commands that never call a model.
func (c *Config) ValidateStore() error {
	return configError(c.storeProblems())
}

func (c *Config) storeProblems() []string {
	var problems []string
	switch c.Store.Backend {
	case StoreREST:
		if c.Store.URL == "" {
			problems = append(problems, "store.url (SUPABASE_URL) is required for the rest backend")
		}
		if c.Store.APIKey == "" {
			problems = append(problems, "store.api_key (SUPABASE_KEY) is required for the rest backend")
		}
	case StorePostgres, StoreOracle:
		if c.Store.DSN == "" {
			problems = append(problems, "store.dsn (DATABASE_URL) is required for sql backends")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown store backend %q", c.Store.Backend))
	}
	if c.Store.UpsertMode != UpsertMerge && c.Store.UpsertMode != UpsertReplace {
		problems = append(problems, fmt.Sprintf("unknown upsert mode %q", c.Store.UpsertMode))
	}
	return problems
}

func configError(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return domain.NewConfigError("invalid configuration: "+strings.Join(problems, "; "), nil)
}

// Mask hides all but the last four characters of a credential.
func Mask(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
