package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend kinds.
const (
	BackendSimulated = "simulated"
	BackendLLM       = "llm"
	BackendOpenAI    = "openai"
	BackendFFmpeg    = "ffmpeg"
)

// Busy policies.
const (
	BusyReject    = "reject"
	BusySupersede = "supersede"
)

// Config is the root configuration.
type Config struct {
	Logger      LoggerConfig      `yaml:"logger"`
	Tracer      TracerConfig      `yaml:"tracer"`
	LLM         LLMConfig         `yaml:"llm"`
	Backends    BackendsConfig    `yaml:"backends"`
	Invocation  InvocationConfig  `yaml:"invocation"`
	Resilience  ResilienceConfig  `yaml:"resilience"`
	Store       StoreConfig       `yaml:"store"`
	Simulated   SimulatedConfig   `yaml:"simulated"`
	SideEffects SideEffectsConfig `yaml:"side_effects"`
	DownloadDir string            `yaml:"download_dir"`
}

// FailoverConfig lists providers tried, in order, when the primary fails.
type FailoverConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Fallbacks []string `yaml:"fallbacks"`
}

// LLMConfig holds LLM provider settings for the text tools.
type LLMConfig struct {
	DefaultProvider string           `yaml:"default_provider"`
	Providers       []ProviderConfig `yaml:"providers"`
	Failover        FailoverConfig   `yaml:"failover"`
}

// PoolConfig holds HTTP connection pool settings for providers.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// ProviderConfig holds settings for a single provider.
type ProviderConfig struct {
	Name        string        `yaml:"name"`
	Type        string        `yaml:"type"` // openai | anthropic | bedrock | ollama
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Region      string        `yaml:"region,omitempty"`
	MaxTokens   int           `yaml:"max_tokens,omitempty"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	RespTimeout time.Duration `yaml:"resp_timeout"`
	Pool        PoolConfig    `yaml:"pool"`
}

// BackendConfig selects the capability behind one tool.
type BackendConfig struct {
	Kind     string `yaml:"kind"`
	Provider string `yaml:"provider,omitempty"` // provider name for llm/openai kinds
	Model    string `yaml:"model,omitempty"`
	Command  string `yaml:"command,omitempty"` // executable for the ffmpeg kind
}

// BackendsConfig selects a backend per tool.
type BackendsConfig struct {
	Image      BackendConfig `yaml:"image"`
	Voice      BackendConfig `yaml:"voice"`
	Summarizer BackendConfig `yaml:"summarizer"`
	Translator BackendConfig `yaml:"translator"`
	Chat       BackendConfig `yaml:"chat"`
}

// InvocationConfig tunes the controller shared by every tool.
type InvocationConfig struct {
	BusyPolicy string `yaml:"busy_policy"` // reject | supersede
}

// CircuitBreakerConfig holds circuit breaker settings for capabilities.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// RateLimitConfig holds token-bucket settings for capabilities.
type RateLimitConfig struct {
	Enabled   bool    `yaml:"enabled"`
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// ResilienceConfig wraps every real backend.
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	Timeout        time.Duration        `yaml:"timeout"` // 0 disables
}

// StoreConfig holds invocation history settings.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// SimulatedConfig holds the artificial latency of the simulated backends.
type SimulatedConfig struct {
	ImageDelay       time.Duration `yaml:"image_delay"`
	VoiceDelay       time.Duration `yaml:"voice_delay"`
	SummaryDelay     time.Duration `yaml:"summary_delay"`
	TranslationDelay time.Duration `yaml:"translation_delay"`
	ChatDelay        time.Duration `yaml:"chat_delay"`
}

// SideEffectsConfig configures the external commands behind speech and
// audio playback. Empty values pick a platform default.
type SideEffectsConfig struct {
	SpeechCommand string `yaml:"speech_command"`
	PlayerCommand string `yaml:"player_command"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

// defaultDataDir returns the persistent data directory under $HOME/.aitools/data.
// Falls back to "./data" if $HOME cannot be determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".aitools", "data")
}

// Defaults returns a Config with sensible defaults. Every tool runs on its
// simulated backend until configured otherwise.
func Defaults() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
		LLM: LLMConfig{
			DefaultProvider: "openai",
		},
		Backends: BackendsConfig{
			Image:      BackendConfig{Kind: BackendSimulated},
			Voice:      BackendConfig{Kind: BackendSimulated},
			Summarizer: BackendConfig{Kind: BackendSimulated},
			Translator: BackendConfig{Kind: BackendSimulated},
			Chat:       BackendConfig{Kind: BackendSimulated},
		},
		Invocation: InvocationConfig{
			BusyPolicy: BusyReject,
		},
		Resilience: ResilienceConfig{
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:     true,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
			RateLimit: RateLimitConfig{
				Enabled:   false,
				PerSecond: 1,
				Burst:     3,
			},
			Timeout: 2 * time.Minute,
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    filepath.Join(dataDir, "history.db"),
		},
		Simulated: SimulatedConfig{
			ImageDelay:       3000 * time.Millisecond,
			VoiceDelay:       4000 * time.Millisecond,
			SummaryDelay:     2500 * time.Millisecond,
			TranslationDelay: 1500 * time.Millisecond,
			ChatDelay:        2000 * time.Millisecond,
		},
		DownloadDir: filepath.Join(dataDir, "downloads"),
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// path if it exists, then AITOOLS_* environment overrides, then sealed
// secrets opened with PassphraseEnv. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if err := readFile(path, cfg); err != nil {
		return nil, err
	}
	ApplyEnvOverrides(cfg)

	if passphrase := os.Getenv(PassphraseEnv); passphrase != "" {
		if err := openSecrets(cfg, passphrase); err != nil {
			return nil, fmt.Errorf("decrypt secrets: %w", err)
		}
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readFile decodes path over cfg. A missing file leaves cfg untouched.
func readFile(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	// Group or world writable files could smuggle in a provider base_url.
	if perm := info.Mode().Perm(); perm&0o022 != 0 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// envVar binds one environment variable to a config field.
type envVar struct {
	name  string
	apply func(string)
}

func envString(name string, dst *string) envVar {
	return envVar{name, func(v string) { *dst = v }}
}

func envBool(name string, dst *bool) envVar {
	return envVar{name, func(v string) { *dst = v == "true" }}
}

// envDuration ignores values time.ParseDuration rejects.
func envDuration(name string, dst *time.Duration) envVar {
	return envVar{name, func(v string) {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}}
}

func (c *Config) envVars() []envVar {
	vars := []envVar{
		envString("AITOOLS_LOGGER_LEVEL", &c.Logger.Level),
		envString("AITOOLS_LOGGER_FORMAT", &c.Logger.Format),
		envString("AITOOLS_LOGGER_OUTPUT", &c.Logger.Output),
		envBool("AITOOLS_TRACER_ENABLED", &c.Tracer.Enabled),
		envString("AITOOLS_TRACER_EXPORTER", &c.Tracer.Exporter),
		envString("AITOOLS_TRACER_ENDPOINT", &c.Tracer.Endpoint),
		envString("AITOOLS_LLM_DEFAULT_PROVIDER", &c.LLM.DefaultProvider),
		envString("AITOOLS_BUSY_POLICY", &c.Invocation.BusyPolicy),
		envBool("AITOOLS_STORE_ENABLED", &c.Store.Enabled),
		envString("AITOOLS_STORE_PATH", &c.Store.Path),
		envString("AITOOLS_DOWNLOAD_DIR", &c.DownloadDir),
		envDuration("AITOOLS_RESILIENCE_TIMEOUT", &c.Resilience.Timeout),
		envString("AITOOLS_SPEECH_COMMAND", &c.SideEffects.SpeechCommand),
		envString("AITOOLS_PLAYER_COMMAND", &c.SideEffects.PlayerCommand),
		{"AITOOLS_LLM_FAILOVER_FALLBACKS", func(v string) {
			c.LLM.Failover.Enabled = true
			c.LLM.Failover.Fallbacks = nil
			for part := range strings.SplitSeq(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					c.LLM.Failover.Fallbacks = append(c.LLM.Failover.Fallbacks, part)
				}
			}
		}},
		{"AITOOLS_RATE_LIMIT_PER_SECOND", func(v string) {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.Resilience.RateLimit.Enabled = f > 0
				c.Resilience.RateLimit.PerSecond = f
			}
		}},
	}
	for name, b := range c.Backends.byName() {
		vars = append(vars, envString("AITOOLS_BACKEND_"+strings.ToUpper(name), &b.Kind))
	}
	for name, d := range c.Simulated.byName() {
		vars = append(vars, envDuration("AITOOLS_SIMULATED_"+strings.ToUpper(name)+"_DELAY", d))
	}
	for i := range c.LLM.Providers {
		p := &c.LLM.Providers[i]
		key := strings.ToUpper(strings.ReplaceAll(p.Name, "-", "_"))
		vars = append(vars, envString("AITOOLS_LLM_PROVIDER_"+key+"_API_KEY", &p.APIKey))
	}
	return vars
}

// ApplyEnvOverrides copies every non-empty AITOOLS_* variable into cfg.
func ApplyEnvOverrides(cfg *Config) {
	for _, ev := range cfg.envVars() {
		if v := os.Getenv(ev.name); v != "" {
			ev.apply(v)
		}
	}
}

func (b *BackendsConfig) byName() map[string]*BackendConfig {
	return map[string]*BackendConfig{
		"image":      &b.Image,
		"voice":      &b.Voice,
		"summarizer": &b.Summarizer,
		"translator": &b.Translator,
		"chat":       &b.Chat,
	}
}

func (s *SimulatedConfig) byName() map[string]*time.Duration {
	return map[string]*time.Duration{
		"image":       &s.ImageDelay,
		"voice":       &s.VoiceDelay,
		"summary":     &s.SummaryDelay,
		"translation": &s.TranslationDelay,
		"chat":        &s.ChatDelay,
	}
}

// Provider returns the provider named name.
func (c *LLMConfig) Provider(name string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}
