package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"aitools/internal/adapter/capability"
	"aitools/internal/adapter/llm"
	"aitools/internal/adapter/sideeffect"
	"aitools/internal/adapter/store"
	"aitools/internal/domain"
	"aitools/internal/infra/config"
	"aitools/internal/infra/logger"
	"aitools/internal/infra/tracer"
	"aitools/internal/usecase/eventbus"
	"aitools/internal/usecase/tools"
)

// services holds everything a command needs to drive the tools.
type services struct {
	log   *slog.Logger
	bus   *eventbus.Bus
	store *store.SQLiteStore
	kit   *tools.Kit

	closers []func()
}

// newServices builds the logger, tracer, event bus, history recorder and
// tool kit described by cfg.
func newServices(ctx context.Context, cfg *config.Config) (_ *services, err error) {
	rt := &services{}
	defer func() {
		if err != nil {
			rt.Close()
		}
	}()

	// 1. Logger & Tracer
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	rt.log = log
	rt.onClose(func() { _ = logCloser() })

	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return nil, fmt.Errorf("tracer: %w", err)
	}
	rt.onClose(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown", "error", err)
		}
	})

	// 2. History
	if cfg.Store.Enabled {
		st, err := openStore(cfg.Store)
		if err != nil {
			return nil, err
		}
		rt.store = st
		rt.onClose(func() { _ = st.Close() })
	}

	// 3. Event bus, closed first so the recorder drains into an open store.
	rt.bus = eventbus.New(log)
	rt.onClose(rt.bus.Close)
	if rt.store != nil {
		store.NewRecorder(rt.store, log).Attach(rt.bus)
	}

	// 4. Backends
	backends, err := buildBackends(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("backends: %w", err)
	}

	rt.kit = tools.NewKit(buildEnv(cfg, rt.bus, log), backends)
	return rt, nil
}

func (rt *services) onClose(fn func()) {
	rt.closers = append(rt.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (rt *services) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

func openStore(cfg config.StoreConfig) (*store.SQLiteStore, error) {
	st, err := store.NewSQLiteStore(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", cfg.Path, err)
	}
	return st, nil
}

// busyPolicy maps the configured policy name onto the controller setting.
func busyPolicy(name string) domain.BusyPolicy {
	if name == config.BusySupersede {
		return domain.SupersedeWhileBusy
	}
	return domain.RejectWhileBusy
}

func buildEnv(cfg *config.Config, events domain.EventPublisher, log *slog.Logger) tools.Env {
	return tools.Env{
		Logger:    log,
		Events:    events,
		Busy:      busyPolicy(cfg.Invocation.BusyPolicy),
		Clipboard: sideeffect.SystemClipboard{},
		Speaker:   sideeffect.NewCommandSpeaker(cfg.SideEffects.SpeechCommand, log),
		Player:    sideeffect.NewCommandPlayer(cfg.SideEffects.PlayerCommand, log),
		Fetcher:   sideeffect.NewFetcher(nil, log),
	}
}

// buildBackends picks the capability behind every tool. Real backends are
// wrapped with the configured resilience middleware; simulated ones are not.
func buildBackends(cfg *config.Config, log *slog.Logger) (tools.Backends, error) {
	sim := capability.NewSimulated(cfg.Simulated)
	b := tools.Backends{
		Image:      sim.Image(),
		Voice:      sim.Voice(),
		Summarizer: sim.Summary(),
		Translator: sim.Translation(),
		Chat:       sim.Chat(),
	}

	var registry *llm.Registry
	text := func(bc config.BackendConfig) (*capability.LLMText, error) {
		if registry == nil {
			r, err := llm.NewRegistryFromConfig(cfg.LLM, log)
			if err != nil {
				return nil, err
			}
			registry = r
		}
		name := providerName(cfg, bc)
		provider, err := registry.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("resolve provider %q: %w", name, err)
		}
		pc, _ := cfg.LLM.Provider(name)
		model := bc.Model
		if model == "" {
			model = pc.Model
		}
		return capability.NewLLMText(provider, model, pc.MaxTokens), nil
	}

	res := cfg.Resilience

	switch cfg.Backends.Image.Kind {
	case config.BackendOpenAI:
		name := providerName(cfg, cfg.Backends.Image)
		pc, ok := cfg.LLM.Provider(name)
		if !ok {
			return b, fmt.Errorf("image: unknown provider %q", name)
		}
		gen := capability.NewOpenAIImageGenerator(pc, cfg.Backends.Image.Model, log)
		b.Image = capability.Wrap("image", res, log, gen.Capability())
	}

	switch cfg.Backends.Voice.Kind {
	case config.BackendFFmpeg:
		ff := capability.NewFFmpegEnhancer(cfg.Backends.Voice.Command, cfg.DownloadDir, log)
		b.Voice = capability.Wrap("voice", res, log, ff.Capability())
	}

	if cfg.Backends.Summarizer.Kind == config.BackendLLM {
		t, err := text(cfg.Backends.Summarizer)
		if err != nil {
			return b, fmt.Errorf("summarizer: %w", err)
		}
		b.Summarizer = capability.Wrap("summarizer", res, log, t.Summary())
	}
	if cfg.Backends.Translator.Kind == config.BackendLLM {
		t, err := text(cfg.Backends.Translator)
		if err != nil {
			return b, fmt.Errorf("translator: %w", err)
		}
		b.Translator = capability.Wrap("translator", res, log, t.Translation())
	}
	if cfg.Backends.Chat.Kind == config.BackendLLM {
		t, err := text(cfg.Backends.Chat)
		if err != nil {
			return b, fmt.Errorf("chat: %w", err)
		}
		b.Chat = capability.Wrap("chat", res, log, t.Chat())
	}
	return b, nil
}

// providerName is the backend's provider, or the default one.
func providerName(cfg *config.Config, bc config.BackendConfig) string {
	if bc.Provider != "" {
		return bc.Provider
	}
	return cfg.LLM.DefaultProvider
}
