package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"aitools/internal/adapter/capability"
	"aitools/internal/adapter/llm"
	"aitools/internal/adapter/sideeffect"
	"aitools/internal/infra/config"
)

type verdict int

const (
	verdictPass verdict = iota
	verdictWarn
	verdictFail
)

func (v verdict) String() string {
	return [...]string{"PASS", "WARN", "FAIL"}[v]
}

// finding is the outcome of one probe.
type finding struct {
	verdict verdict
	detail  string
	fix     string
}

func passed(format string, args ...any) finding {
	return finding{verdict: verdictPass, detail: fmt.Sprintf(format, args...)}
}

func warned(fix, format string, args ...any) finding {
	return finding{verdict: verdictWarn, detail: fmt.Sprintf(format, args...), fix: fix}
}

func failed(fix, format string, args ...any) finding {
	return finding{verdict: verdictFail, detail: fmt.Sprintf(format, args...), fix: fix}
}

type probe struct {
	name string
	run  func(*config.Config) finding
}

// needsConfig fails the probe when the config did not load.
func needsConfig(name string, run func(*config.Config) finding) probe {
	return probe{name: name, run: func(cfg *config.Config) finding {
		if cfg == nil {
			return failed("", "cannot check, config not loaded")
		}
		return run(cfg)
	}}
}

func runDoctor() error {
	path := configPath()
	cfg, err := config.Load(path)
	return diagnose(os.Stdout, cfg, []probe{
		{"Config file", configFileProbe(path, err)},
		needsConfig("Backends", probeBackends),
		needsConfig("LLM credentials", probeCredentials),
		needsConfig("LLM connectivity", probeConnectivity),
		needsConfig("Voice enhancer", probeFFmpeg),
		needsConfig("Speech", probeSpeech),
		needsConfig("Playback", probePlayback),
		{"Clipboard", probeClipboard},
		needsConfig("History store", probeHistory),
		needsConfig("Download directory", func(cfg *config.Config) finding { return writableDir(cfg.DownloadDir) }),
	})
}

// diagnose runs probes in order, prints one line per finding and fails
// when any probe failed.
func diagnose(w io.Writer, cfg *config.Config, probes []probe) error {
	fmt.Fprintf(w, "aitools doctor\n%s\n\n", strings.Repeat("=", 50))

	var tally [3]int
	for _, p := range probes {
		f := p.run(cfg)
		tally[f.verdict]++
		fmt.Fprintf(w, "  [%s] %s: %s\n", f.verdict, p.name, f.detail)
		if f.fix != "" {
			fmt.Fprintf(w, "      Fix: %s\n", f.fix)
		}
	}

	fmt.Fprintf(w, "\n%s\nResults: %d passed, %d warnings, %d failed\n",
		strings.Repeat("-", 50), tally[verdictPass], tally[verdictWarn], tally[verdictFail])
	switch {
	case tally[verdictFail] > 0:
		fmt.Fprintln(w, "\nFix the FAIL issues above to ensure aitools runs correctly.")
		return fmt.Errorf("%d check(s) failed", tally[verdictFail])
	case tally[verdictWarn] > 0:
		fmt.Fprintln(w, "\naitools should work, but some actions may be unavailable.")
	default:
		fmt.Fprintln(w, "\nAll checks passed! aitools is ready to run.")
	}
	return nil
}

// configFileProbe accepts a missing file: every tool then runs simulated.
func configFileProbe(path string, loadErr error) func(*config.Config) finding {
	return func(*config.Config) finding {
		if loadErr != nil {
			return failed(fmt.Sprintf("Check %s syntax and the AITOOLS_* environment", path), "config error: %v", loadErr)
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return warned("Create the file to configure real backends", "no config file at %s, using defaults", path)
		}
		return passed("config loaded from %s", path)
	}
}

func probeBackends(cfg *config.Config) finding {
	b := cfg.Backends
	return passed("image=%s, voice=%s, summarizer=%s, translator=%s, chat=%s",
		b.Image.Kind, b.Voice.Kind, b.Summarizer.Kind, b.Translator.Kind, b.Chat.Kind)
}

// usedProviders returns each configured provider some backend relies on,
// once.
func usedProviders(cfg *config.Config) []config.ProviderConfig {
	seen := map[string]bool{}
	var out []config.ProviderConfig
	for _, bc := range []config.BackendConfig{cfg.Backends.Image, cfg.Backends.Summarizer, cfg.Backends.Translator, cfg.Backends.Chat} {
		if bc.Kind != config.BackendLLM && bc.Kind != config.BackendOpenAI {
			continue
		}
		name := providerName(cfg, bc)
		if seen[name] {
			continue
		}
		seen[name] = true
		if pc, ok := cfg.LLM.Provider(name); ok {
			out = append(out, pc)
		}
	}
	return out
}

const noProviderNeeded = "not needed, no backend uses an LLM provider"

// probeCredentials skips provider types that authenticate without a key.
func probeCredentials(cfg *config.Config) finding {
	providers := usedProviders(cfg)
	if len(providers) == 0 {
		return passed(noProviderNeeded)
	}
	var have, missing []string
	for _, p := range providers {
		if p.APIKey == "" && p.Type != "ollama" && p.Type != "bedrock" {
			missing = append(missing, p.Name)
			continue
		}
		have = append(have, p.Name)
	}
	if len(missing) > 0 {
		return failed("Set API keys via environment variables (e.g., AITOOLS_LLM_PROVIDER_OPENAI_API_KEY)",
			"no API key for: %s", strings.Join(missing, ", "))
	}
	return passed("credentials configured for: %s", strings.Join(have, ", "))
}

// probeConnectivity pings every provider in use at once, each through the
// pooled client its provider would use.
func probeConnectivity(cfg *config.Config) finding {
	providers := usedProviders(cfg)
	if len(providers) == 0 {
		return passed(noProviderNeeded)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	reached := make([]string, len(providers))
	for i, p := range providers {
		endpoint := providerEndpoint(p)
		if endpoint == "" {
			continue
		}
		g.Go(func() error {
			latency, err := ping(ctx, llm.NewHTTPClient(p), endpoint)
			if err != nil {
				return fmt.Errorf("cannot reach %s: %w", endpoint, err)
			}
			reached[i] = fmt.Sprintf("%s (%dms)", p.Name, latency.Milliseconds())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return failed("Check your internet connection and firewall settings", "%v", err)
	}

	var names []string
	for _, r := range reached {
		if r != "" {
			names = append(names, r)
		}
	}
	if len(names) == 0 {
		return warned("", "no known endpoint to test")
	}
	return passed("reachable: %s", strings.Join(names, ", "))
}

// ping counts any HTTP response as reachable.
func ping(ctx context.Context, client *http.Client, endpoint string) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return time.Since(start), nil
}

// providerEndpoint returns a URL that answers without credentials, or ""
// when the provider type has none.
func providerEndpoint(p config.ProviderConfig) string {
	base := strings.TrimRight(p.BaseURL, "/")
	switch p.Type {
	case "ollama":
		if base == "" {
			base = "http://localhost:11434"
		}
		return strings.TrimSuffix(base, "/v1") + "/api/tags"
	case "openai", "":
		if base == "" {
			return "https://api.openai.com/v1/models"
		}
	case "anthropic":
		if base == "" {
			return "https://api.anthropic.com/"
		}
	}
	return base
}

func probeFFmpeg(cfg *config.Config) finding {
	if cfg.Backends.Voice.Kind != config.BackendFFmpeg {
		return passed("simulated, no dependencies")
	}
	bin := cfg.Backends.Voice.Command
	if bin == "" {
		bin = capability.DefaultFFmpegCommand
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return failed("Install ffmpeg or set backends.voice.command", "%s not found on PATH", bin)
	}
	return passed("using %s", path)
}

// commandFinding warns rather than fails: a missing command disables only
// one action.
func commandFinding(bin string, err error, feature, fix string) finding {
	if err != nil {
		return warned(fix, "no command found, %s unavailable", feature)
	}
	return passed("using %s", bin)
}

func probeSpeech(cfg *config.Config) finding {
	bin, err := sideeffect.SpeechCommand(cfg.SideEffects.SpeechCommand)
	return commandFinding(bin, err, "text to speech", "Install espeak-ng or set side_effects.speech_command")
}

func probePlayback(cfg *config.Config) finding {
	bin, err := sideeffect.PlayerCommand(cfg.SideEffects.PlayerCommand)
	return commandFinding(bin, err, "audio playback", "Install ffplay or set side_effects.player_command")
}

func probeClipboard(*config.Config) finding {
	if !(sideeffect.SystemClipboard{}).Available() {
		return warned("Install xclip, xsel or wl-clipboard", "no clipboard utility found, copy unavailable")
	}
	return passed("available")
}

func probeHistory(cfg *config.Config) finding {
	if !cfg.Store.Enabled {
		return passed("disabled (no persistence)")
	}
	return writableDir(filepath.Dir(cfg.Store.Path))
}

// writableDir creates dir when missing and proves it writable with a
// throwaway file.
func writableDir(dir string) finding {
	dir, _ = filepath.Abs(dir)

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return failed("Create the directory: mkdir -p "+dir, "directory %s does not exist and cannot be created: %v", dir, err)
		}
		return passed("directory created at %s", dir)
	case err != nil:
		return failed("", "cannot stat directory: %v", err)
	case !info.IsDir():
		return failed("", "%s exists but is not a directory", dir)
	}

	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return failed("Fix permissions: chmod 700 "+dir, "directory %s is not writable: %v", dir, err)
	}
	f.Close()
	os.Remove(f.Name())
	return passed("%s writable", dir)
}
