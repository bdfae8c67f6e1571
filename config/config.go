package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultMarketURL = "https://www.psx.com.pk/market-summary/#main"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

	RendererBrowser = "browser"
	RendererHTTP    = "http"

	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
)

type Config struct {
	MarketURL     string        `envconfig:"PSX_MARKET_URL" default:"https://www.psx.com.pk/market-summary/#main" validate:"required,url" json:"market_url"`
	Renderer      string        `envconfig:"PSX_RENDERER" default:"browser" validate:"oneof=browser http" json:"renderer"`
	Headless      bool          `envconfig:"PSX_HEADLESS" default:"true" json:"headless"`
	WaitSelector  string        `envconfig:"PSX_WAIT_SELECTOR" default:"table" validate:"required" json:"wait_selector"`
	SettleDelay   time.Duration `envconfig:"PSX_SETTLE_DELAY" default:"2s" validate:"gte=0" json:"settle_delay"`
	RenderTimeout time.Duration `envconfig:"PSX_RENDER_TIMEOUT" default:"60s" validate:"gt=0" json:"render_timeout"`
	UserAgent     string        `envconfig:"PSX_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64)" json:"user_agent"`
	SnapshotTTL   time.Duration `envconfig:"PSX_SNAPSHOT_TTL" default:"5m" validate:"gte=0" json:"snapshot_ttl"`
	TopN          int           `envconfig:"PSX_TOP_N" default:"10" validate:"min=1,max=1000" json:"top_n"`
	ResultsDir    string        `envconfig:"PSX_RESULTS_DIR" default:"psx_output" json:"results_dir"`

	LLMProvider string        `envconfig:"LLM_PROVIDER" default:"openai" validate:"oneof=openai deepseek" json:"llm_provider"`
	LLMModel    string        `envconfig:"LLM_MODEL" json:"llm_model"`
	LLMBaseURL  string        `envconfig:"LLM_BASE_URL" validate:"omitempty,url" json:"llm_base_url"`
	MaxTokens   int           `envconfig:"LLM_MAX_TOKENS" default:"1024" validate:"min=1" json:"max_tokens"`
	LLMTimeout  time.Duration `envconfig:"LLM_TIMEOUT" default:"30s" validate:"gt=0" json:"llm_timeout"`

	// AI Model API Keys
	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY" json:"-"`
	DeepSeekAPIKey string `envconfig:"DEEPSEEK_API_KEY" json:"-"`

	EinoDebugEnabled bool   `envconfig:"EINO_DEBUG_ENABLED" json:"eino_debug_enabled"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error" json:"log_level"`
	Debug            bool   `envconfig:"PSX_DEBUG" json:"debug"`
}

var validate = validator.New()

// DefaultConfig returns the built-in defaults without reading the environment.
func DefaultConfig() *Config {
	return &Config{
		MarketURL:     DefaultMarketURL,
		Renderer:      RendererBrowser,
		Headless:      true,
		WaitSelector:  "table",
		SettleDelay:   2 * time.Second,
		RenderTimeout: 60 * time.Second,
		UserAgent:     DefaultUserAgent,
		SnapshotTTL:   5 * time.Minute,
		TopN:          10,
		ResultsDir:    "psx_output",
		LLMProvider:   ProviderOpenAI,
		MaxTokens:     1024,
		LLMTimeout:    30 * time.Second,
		LogLevel:      "info",
	}
}

// Load reads envFile (".env" when empty) if it exists, overlays the process
// environment and validates the result. A missing env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Model returns the configured model name or the provider default.
func (c *Config) Model() string {
	if m := strings.TrimSpace(c.LLMModel); m != "" {
		return m
	}
	if c.LLMProvider == ProviderDeepSeek {
		return "deepseek-chat"
	}
	return "gpt-4.1-mini"
}

// APIKey returns the credential of the selected provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == ProviderDeepSeek {
		return c.DeepSeekAPIKey
	}
	return c.OpenAIAPIKey
}

// ExplanationEnabled reports whether a completion credential is present.
// Analytics work without it.
func (c *Config) ExplanationEnabled() bool {
	return strings.TrimSpace(c.APIKey()) != ""
}

func (c *Config) EnsureDirectories() error {
	path := strings.TrimSpace(c.ResultsDir)
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}
