package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitools/internal/infra/config"
)

func TestConfigFileProbe(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "aitools.yaml")
	require.NoError(t, os.WriteFile(existing, []byte("logger:\n  level: debug\n"), 0o600))

	tests := []struct {
		name    string
		path    string
		loadErr error
		want    verdict
	}{
		{"missing file", "/nonexistent/path/aitools.yaml", nil, verdictWarn},
		{"load error", "aitools.yaml", &config.ValidationError{Errors: []string{"bad"}}, verdictFail},
		{"valid file", existing, nil, verdictPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := configFileProbe(tt.path, tt.loadErr)(nil)
			assert.Equal(t, tt.want, f.verdict, f.detail)
			if tt.want != verdictPass {
				assert.NotEmpty(t, f.fix)
			}
		})
	}
}

func TestNeedsConfig(t *testing.T) {
	called := false
	p := needsConfig("x", func(*config.Config) finding { called = true; return passed("ok") })

	assert.Equal(t, verdictFail, p.run(nil).verdict)
	assert.False(t, called)
	assert.Equal(t, verdictPass, p.run(config.Defaults()).verdict)
	assert.True(t, called)
}

func TestSimulatedSetupNeedsNoProvider(t *testing.T) {
	cfg := config.Defaults()
	assert.Equal(t, verdictPass, probeCredentials(cfg).verdict)
	assert.Equal(t, verdictPass, probeConnectivity(cfg).verdict)
	assert.Equal(t, verdictPass, probeFFmpeg(cfg).verdict)
}

func TestProbeCredentials(t *testing.T) {
	cfg := config.Defaults()
	cfg.LLM.Providers = []config.ProviderConfig{
		{Name: "openai", Type: "openai"},
		{Name: "local", Type: "ollama"},
	}
	cfg.Backends.Chat.Kind = config.BackendLLM
	cfg.Backends.Summarizer = config.BackendConfig{Kind: config.BackendLLM, Provider: "local"}

	f := probeCredentials(cfg)
	require.Equal(t, verdictFail, f.verdict)
	assert.Contains(t, f.detail, "openai")
	assert.NotContains(t, f.detail, "local")

	cfg.LLM.Providers[0].APIKey = "sk-test"
	assert.Equal(t, verdictPass, probeCredentials(cfg).verdict)
}

func TestUsedProvidersDeduplicates(t *testing.T) {
	cfg := config.Defaults()
	cfg.LLM.Providers = []config.ProviderConfig{{Name: "openai", Type: "openai", APIKey: "k"}}
	cfg.Backends.Image.Kind = config.BackendOpenAI
	cfg.Backends.Chat.Kind = config.BackendLLM
	cfg.Backends.Translator.Kind = config.BackendLLM

	got := usedProviders(cfg)
	require.Len(t, got, 1)
	assert.Equal(t, "openai", got[0].Name)
}

func TestProbeConnectivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := config.Defaults()
	cfg.Backends.Chat.Kind = config.BackendLLM
	cfg.LLM.DefaultProvider = "main"
	cfg.LLM.Providers = []config.ProviderConfig{{Name: "main", Type: "openai", BaseURL: srv.URL}}

	f := probeConnectivity(cfg)
	assert.Equal(t, verdictPass, f.verdict, f.detail)
	assert.Contains(t, f.detail, "main (")

	cfg.LLM.Providers[0].BaseURL = "http://127.0.0.1:1"
	assert.Equal(t, verdictFail, probeConnectivity(cfg).verdict)

	cfg.LLM.Providers[0] = config.ProviderConfig{Name: "main", Type: "bedrock"}
	assert.Equal(t, verdictWarn, probeConnectivity(cfg).verdict)
}

func TestProviderEndpoint(t *testing.T) {
	tests := []struct {
		p    config.ProviderConfig
		want string
	}{
		{config.ProviderConfig{Type: "openai"}, "https://api.openai.com/v1/models"},
		{config.ProviderConfig{Type: "openai", BaseURL: "https://api.groq.com/openai/v1/"}, "https://api.groq.com/openai/v1"},
		{config.ProviderConfig{Type: "anthropic"}, "https://api.anthropic.com/"},
		{config.ProviderConfig{Type: "ollama"}, "http://localhost:11434/api/tags"},
		{config.ProviderConfig{Type: "ollama", BaseURL: "http://gpu:11434/v1/"}, "http://gpu:11434/api/tags"},
		{config.ProviderConfig{Type: "bedrock"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, providerEndpoint(tt.p), "%s %s", tt.p.Type, tt.p.BaseURL)
	}
}

func TestProbeFFmpegMissingBinary(t *testing.T) {
	cfg := config.Defaults()
	cfg.Backends.Voice = config.BackendConfig{Kind: config.BackendFFmpeg, Command: "definitely-not-ffmpeg-xyz"}
	assert.Equal(t, verdictFail, probeFFmpeg(cfg).verdict)
}

func TestCommandFinding(t *testing.T) {
	f := commandFinding("say", nil, "speech", "fix")
	assert.Equal(t, verdictPass, f.verdict)
	assert.Contains(t, f.detail, "say")

	f = commandFinding("", errors.New("none"), "speech", "fix")
	assert.Equal(t, verdictWarn, f.verdict)
	assert.Equal(t, "fix", f.fix)
}

func TestWritableDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "downloads")
	require.Equal(t, verdictPass, writableDir(dir).verdict)
	assert.DirExists(t, dir)
	assert.Equal(t, verdictPass, writableDir(dir).verdict)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file is removed")

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	assert.Equal(t, verdictFail, writableDir(file).verdict)
}

func TestProbeHistoryDisabled(t *testing.T) {
	cfg := config.Defaults()
	cfg.Store.Enabled = false
	assert.Equal(t, verdictPass, probeHistory(cfg).verdict)
}

func TestDiagnose(t *testing.T) {
	var buf bytes.Buffer
	err := diagnose(&buf, nil, []probe{
		{"ok", func(*config.Config) finding { return passed("fine") }},
		{"meh", func(*config.Config) finding { return warned("do it", "hmm") }},
	})
	require.NoError(t, err, "warnings do not fail")
	out := buf.String()
	for _, want := range []string{"[PASS] ok: fine", "[WARN] meh: hmm", "Fix: do it", "1 passed, 1 warnings, 0 failed"} {
		assert.Contains(t, out, want)
	}

	err = diagnose(&buf, nil, []probe{{"bad", func(*config.Config) finding { return failed("", "broken") }}})
	assert.EqualError(t, err, "1 check(s) failed")
}
