package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	validateLLM(cfg, ve)
	validateBackends(cfg, ve)
	validateInvocation(cfg, ve)
	validateResilience(cfg, ve)
	validateStore(cfg, ve)
	validateSimulated(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var validFormats = map[string]bool{"text": true, "json": true}

func validateLogger(cfg *Config, ve *ValidationError) {
	if !validLevels[strings.ToLower(cfg.Logger.Level)] {
		ve.Add("logger.level %q is invalid (want: debug, info, warn, error)", cfg.Logger.Level)
	}
	if !validFormats[cfg.Logger.Format] {
		ve.Add("logger.format %q is invalid (want: text, json)", cfg.Logger.Format)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !cfg.Tracer.Enabled {
		return
	}
	switch cfg.Tracer.Exporter {
	case "", "noop", "stdout":
	case "file":
		if cfg.Tracer.Endpoint == "" {
			ve.Add("tracer.endpoint must name a file when tracer.exporter is \"file\"")
		}
	default:
		ve.Add("tracer.exporter %q is invalid (want: noop, stdout, file)", cfg.Tracer.Exporter)
	}
}

var validProviderTypes = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"ollama":    true,
	"bedrock":   true,
}

func validateLLM(cfg *Config, ve *ValidationError) {
	if len(cfg.LLM.Providers) == 0 {
		return
	}
	if cfg.LLM.DefaultProvider == "" {
		ve.Add("llm.default_provider must not be empty")
	}

	seen := make(map[string]bool)
	foundDefault := false
	for i, p := range cfg.LLM.Providers {
		if p.Name == "" {
			ve.Add("llm.providers[%d].name must not be empty", i)
			continue
		}
		if seen[p.Name] {
			ve.Add("llm.providers[%d]: duplicate provider name %q", i, p.Name)
		}
		seen[p.Name] = true

		if p.Type != "" && !validProviderTypes[p.Type] {
			ve.Add("llm.providers[%d].type %q is invalid (want: openai, anthropic, ollama, bedrock)", i, p.Type)
		}
		if p.APIKey == "" && p.Type != "bedrock" && p.Type != "ollama" {
			ve.Add("llm.providers[%d] (%s): api_key is empty (set via AITOOLS_LLM_PROVIDER_%s_API_KEY)",
				i, p.Name, strings.ToUpper(strings.ReplaceAll(p.Name, "-", "_")))
		}
		if p.Type == "bedrock" && p.Region == "" {
			ve.Add("llm.providers[%d] (%s): region is required for bedrock provider", i, p.Name)
		}
		if p.Name == cfg.LLM.DefaultProvider {
			foundDefault = true
		}
	}

	if !foundDefault && cfg.LLM.DefaultProvider != "" {
		ve.Add("llm.default_provider %q does not match any configured provider", cfg.LLM.DefaultProvider)
	}

	if cfg.LLM.Failover.Enabled {
		for _, name := range cfg.LLM.Failover.Fallbacks {
			if !seen[name] {
				ve.Add("llm.failover.fallbacks: unknown provider %q", name)
			}
		}
	}
}

// allowedKinds lists the backend kinds each tool accepts.
var allowedKinds = map[string][]string{
	"image":      {BackendSimulated, BackendOpenAI},
	"voice":      {BackendSimulated, BackendFFmpeg},
	"summarizer": {BackendSimulated, BackendLLM},
	"translator": {BackendSimulated, BackendLLM},
	"chat":       {BackendSimulated, BackendLLM},
}

func validateBackends(cfg *Config, ve *ValidationError) {
	for name, b := range cfg.Backends.byName() {
		kinds := allowedKinds[name]
		if !slices.Contains(kinds, b.Kind) {
			ve.Add("backends.%s.kind %q is invalid (want: %s)", name, b.Kind, strings.Join(kinds, ", "))
			continue
		}
		if b.Kind == BackendLLM || b.Kind == BackendOpenAI {
			if len(cfg.LLM.Providers) == 0 {
				ve.Add("backends.%s.kind %q requires at least one llm provider", name, b.Kind)
				continue
			}
			if b.Provider != "" {
				if _, found := cfg.LLM.Provider(b.Provider); !found {
					ve.Add("backends.%s.provider %q does not match any configured provider", name, b.Provider)
				}
			}
		}
	}
}

func validateInvocation(cfg *Config, ve *ValidationError) {
	switch cfg.Invocation.BusyPolicy {
	case BusyReject, BusySupersede:
	default:
		ve.Add("invocation.busy_policy %q is invalid (want: reject, supersede)", cfg.Invocation.BusyPolicy)
	}
}

func validateResilience(cfg *Config, ve *ValidationError) {
	cb := cfg.Resilience.CircuitBreaker
	if cb.Enabled {
		if cb.MaxFailures == 0 {
			ve.Add("resilience.circuit_breaker.max_failures must be > 0 when enabled")
		}
		if cb.Timeout <= 0 {
			ve.Add("resilience.circuit_breaker.timeout must be > 0 when enabled")
		}
	}
	rl := cfg.Resilience.RateLimit
	if rl.Enabled {
		if rl.PerSecond <= 0 {
			ve.Add("resilience.rate_limit.per_second must be > 0 when enabled")
		}
		if rl.Burst <= 0 {
			ve.Add("resilience.rate_limit.burst must be > 0 when enabled")
		}
	}
	if cfg.Resilience.Timeout < 0 {
		ve.Add("resilience.timeout must be >= 0")
	}
}

func validateStore(cfg *Config, ve *ValidationError) {
	if cfg.Store.Enabled && cfg.Store.Path == "" {
		ve.Add("store.path must not be empty when the store is enabled")
	}
}

func validateSimulated(cfg *Config, ve *ValidationError) {
	for name, d := range cfg.Simulated.byName() {
		if *d < 0 {
			ve.Add("simulated.%s_delay must be >= 0", name)
		}
	}
}
