package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"aitools/internal/adapter/tui/app"
	"aitools/internal/adapter/tui/uxerror"
	"aitools/internal/domain"
	"aitools/internal/infra/config"
)

func main() {
	// Handle help flag first
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	// A missing .env is the normal case.
	_ = godotenv.Load()

	args := positional(os.Args[1:])
	if len(args) == 0 || args[0] == "tui" {
		if err := runTUI(); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var err error
	switch args[0] {
	case "tools":
		err = runTools(os.Stdout)
	case "run":
		err = runHeadless(args[1:])
	case "history":
		err = runHistory(args[1:], os.Stdout)
	case "encrypt":
		err = runEncrypt(args[1:], os.Stdout)
	case "doctor":
		err = runDoctor()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'aitools --help' for usage information.\n", args[0])
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`aitools - AI tools in your terminal

USAGE:
    aitools [COMMAND] [FLAGS]

COMMANDS:
    tui                     Open the interactive tool catalog (default)
    tools                   List the available tools
    run <tool> <input>      Run one tool and print its result
                            Input is plain text or a JSON payload
    history [n]             Show the last n invocations (default 20)
    encrypt <value>         Encrypt a secret for the config file
                            Requires AITOOLS_CONFIG_KEY
    doctor                  Run health checks on your setup

FLAGS:
    -h, --help         Show this help message
    --config PATH      Specify config file path (default: ./aitools.yaml)

CONFIGURATION:
    Config file: ./aitools.yaml (optional, every tool runs simulated without it)
    Environment: AITOOLS_* variables override config, .env is loaded first

EXAMPLES:
    aitools                                        # Open the catalog
    aitools run image-generator "a lighthouse at dusk"
    aitools run text-summarizer '{"text":"...","length":"short"}'
    aitools run translator '{"text":"hello","target":"es"}'
    aitools history 5`)
}

// positional strips flags (and the value of --config) from args.
func positional(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--config":
			i++
		case strings.HasPrefix(arg, "-") && arg != "-":
		default:
			out = append(out, arg)
		}
	}
	return out
}

func configPath() string {
	// Check --config flag in os.Args.
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			return os.Args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv("AITOOLS_CONFIG"); p != "" {
		return p
	}
	return "aitools.yaml"
}

// tuiLogOutput moves terminal log output into a file next to the
// downloads so records do not tear the alt screen.
func tuiLogOutput(cfg *config.Config) string {
	switch strings.ToLower(cfg.Logger.Output) {
	case "", "stderr", "stdout":
		return filepath.Join(filepath.Dir(cfg.DownloadDir), "aitools.log")
	}
	return cfg.Logger.Output
}

func runTUI() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg.Logger.Output = tuiLogOutput(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := newServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.log.Info("aitools starting",
		"image", cfg.Backends.Image.Kind,
		"voice", cfg.Backends.Voice.Kind,
		"summarizer", cfg.Backends.Summarizer.Kind,
		"translator", cfg.Backends.Translator.Kind,
		"chat", cfg.Backends.Chat.Kind,
		"busy_policy", cfg.Invocation.BusyPolicy,
		"history", rt.store != nil,
	)

	program := app.NewProgram(rt.kit, cfg.DownloadDir, rt.log)
	program.SetEventBus(rt.bus)
	return program.Run(ctx)
}

func runTools(w io.Writer) error {
	for _, d := range domain.Catalog() {
		fmt.Fprintf(w, "%-16s %s\n", d.ID, d.Title)
		fmt.Fprintf(w, "%-16s %s\n", "", d.Description)
	}
	return nil
}

func runHeadless(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: aitools run <tool> <input|json>")
	}
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := newServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := runTool(ctx, rt.kit, domain.ToolID(args[0]), strings.Join(args[1:], " "), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, uxerror.Explain(err).Render())
		return err
	}
	return nil
}

const defaultHistoryLimit = 20

// parseLimit reads the optional record count of the history command.
func parseLimit(args []string) (int, error) {
	if len(args) == 0 {
		return defaultHistoryLimit, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid count %q: want a positive number", args[0])
	}
	return n, nil
}

func runHistory(args []string, w io.Writer) error {
	limit, err := parseLimit(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if !cfg.Store.Enabled {
		return errors.New("history is disabled (store.enabled: false)")
	}
	st, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.Recent(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	printHistory(w, records)
	return nil
}

func printHistory(w io.Writer, records []domain.InvocationRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No invocations recorded yet.")
		return
	}
	for _, r := range records {
		line := fmt.Sprintf("%-16s %-10s %-14s", r.Tool, r.Status, humanize.Time(r.SubmittedAt))
		if d := r.Duration(); d > 0 {
			line += fmt.Sprintf(" %6.1fs", d.Seconds())
		}
		if r.ErrorCode != "" {
			line += "  " + string(r.ErrorCode)
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

func runEncrypt(args []string, w io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: aitools encrypt <value>")
	}
	passphrase := os.Getenv(config.PassphraseEnv)
	if passphrase == "" {
		return fmt.Errorf("%s must be set", config.PassphraseEnv)
	}
	sealed, err := config.Seal(args[0], passphrase)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, sealed)
	return nil
}
