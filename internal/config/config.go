package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

const (
	defaultProvider         = ProviderGemini
	defaultGeminiModel      = "gemini-1.5-flash"
	defaultGraphBaseURL     = "https://graph.microsoft.com/v1.0"
	defaultTokenCache       = "ms_token.json"
	defaultMaxKeywords      = 15
	defaultMaxDownloadBytes = 50 << 20
	defaultServerAddr       = ":8501"
	defaultLogLevel         = "info"
)

type Config struct {
	LLM      LLMConfig    `yaml:"llm"`
	Auth     AuthConfig   `yaml:"auth"`
	Graph    GraphConfig  `yaml:"graph"`
	Search   SearchConfig `yaml:"search"`
	Server   ServerConfig `yaml:"server"`
	LogLevel string       `yaml:"log_level"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	BaseURL     string  `yaml:"base_url"`
	Key         string  `yaml:"key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// AuthConfig describes the public client registration used for the device-code flow.
type AuthConfig struct {
	ClientID      string   `yaml:"client_id"`
	TenantID      string   `yaml:"tenant_id"`
	Scopes        []string `yaml:"scopes"`
	TokenCache    string   `yaml:"token_cache"`
	DeviceAuthURL string   `yaml:"device_auth_url"`
	TokenURL      string   `yaml:"token_url"`
	// AccessToken skips the device flow entirely when set.
	AccessToken string `yaml:"access_token"`
}

type GraphConfig struct {
	BaseURL string `yaml:"base_url"`
}

type SearchConfig struct {
	MaxKeywords      int      `yaml:"max_keywords"`
	Extensions       []string `yaml:"extensions"`
	TempDir          string   `yaml:"temp_dir"`
	MaxDownloadBytes int64    `yaml:"max_download_bytes"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: defaultProvider,
			Model:    defaultGeminiModel,
		},
		Auth: AuthConfig{
			Scopes:     []string{"Files.Read.All", "User.Read", "offline_access"},
			TokenCache: defaultTokenCache,
		},
		Graph: GraphConfig{
			BaseURL: defaultGraphBaseURL,
		},
		Search: SearchConfig{
			MaxKeywords:      defaultMaxKeywords,
			Extensions:       []string{".docx"},
			MaxDownloadBytes: defaultMaxDownloadBytes,
		},
		Server: ServerConfig{
			Addr: defaultServerAddr,
		},
		LogLevel: defaultLogLevel,
	}
}

// LoadConfig reads the YAML file at path on top of the defaults and applies
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	cfg.applyEnv()
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && c.LLM.Provider == ProviderGemini {
		c.LLM.Key = key
	}
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		c.LLM.Key = key
	}
	if id := os.Getenv("DOCSEARCH_CLIENT_ID"); id != "" {
		c.Auth.ClientID = id
	}
	if tenant := os.Getenv("DOCSEARCH_TENANT_ID"); tenant != "" {
		c.Auth.TenantID = tenant
	}
}

// fillDefaults restores zero values a partial YAML file may have produced.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = def.LLM.Provider
	}
	if c.LLM.Model == "" && c.LLM.Provider == ProviderGemini {
		c.LLM.Model = def.LLM.Model
	}
	if len(c.Auth.Scopes) == 0 {
		c.Auth.Scopes = def.Auth.Scopes
	}
	if c.Auth.TokenCache == "" {
		c.Auth.TokenCache = def.Auth.TokenCache
	}
	if c.Graph.BaseURL == "" {
		c.Graph.BaseURL = def.Graph.BaseURL
	}
	c.Graph.BaseURL = strings.TrimRight(c.Graph.BaseURL, "/")
	if c.Search.MaxKeywords <= 0 {
		c.Search.MaxKeywords = def.Search.MaxKeywords
	}
	if len(c.Search.Extensions) == 0 {
		c.Search.Extensions = def.Search.Extensions
	}
	for i, ext := range c.Search.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Search.Extensions[i] = ext
	}
	if c.Search.MaxDownloadBytes <= 0 {
		c.Search.MaxDownloadBytes = def.Search.MaxDownloadBytes
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Validate reports the first setting that prevents a query from running.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
		if c.LLM.Key == "" {
			return fmt.Errorf("llm.key is required for provider %q (or set GEMINI_API_KEY / LLM_API_KEY)", c.LLM.Provider)
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model is required")
	}
	if c.Auth.AccessToken == "" && c.Auth.ClientID == "" {
		return errors.New("auth.client_id is required (or set DOCSEARCH_CLIENT_ID)")
	}
	return nil
}
