package main

import (
	"bytes"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"aitools/internal/domain"
	"aitools/internal/infra/config"
)

func TestPositionalSkipsFlags(t *testing.T) {
	got := positional([]string{"--config", "x.yaml", "run", "-v", "translator", "--config=y.yaml", "hello"})
	want := []string{"run", "translator", "hello"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("positional = %v, want %v", got, want)
	}
	if got := positional(nil); len(got) != 0 {
		t.Errorf("positional(nil) = %v", got)
	}
}

func TestConfigPath(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	t.Setenv("AITOOLS_CONFIG", "")
	os.Args = []string{"aitools"}
	if got := configPath(); got != "aitools.yaml" {
		t.Errorf("default configPath = %q", got)
	}

	t.Setenv("AITOOLS_CONFIG", "/etc/aitools.yaml")
	if got := configPath(); got != "/etc/aitools.yaml" {
		t.Errorf("env configPath = %q", got)
	}

	os.Args = []string{"aitools", "--config", "a.yaml"}
	if got := configPath(); got != "a.yaml" {
		t.Errorf("flag configPath = %q", got)
	}
	os.Args = []string{"aitools", "--config=b.yaml"}
	if got := configPath(); got != "b.yaml" {
		t.Errorf("flag= configPath = %q", got)
	}
}

func TestParseLimit(t *testing.T) {
	n, err := parseLimit(nil)
	if err != nil || n != defaultHistoryLimit {
		t.Errorf("parseLimit(nil) = %d, %v", n, err)
	}
	n, err = parseLimit([]string{"5"})
	if err != nil || n != 5 {
		t.Errorf("parseLimit(5) = %d, %v", n, err)
	}
	for _, bad := range []string{"0", "-2", "many"} {
		if _, err := parseLimit([]string{bad}); err == nil {
			t.Errorf("parseLimit(%q) should fail", bad)
		}
	}
}

func TestTUILogOutput(t *testing.T) {
	cfg := config.Defaults()
	cfg.DownloadDir = "/data/downloads"
	for _, out := range []string{"", "stderr", "stdout"} {
		cfg.Logger.Output = out
		if got := tuiLogOutput(cfg); got != "/data/aitools.log" {
			t.Errorf("tuiLogOutput(%q) = %q", out, got)
		}
	}
	cfg.Logger.Output = "/var/log/aitools.log"
	if got := tuiLogOutput(cfg); got != "/var/log/aitools.log" {
		t.Errorf("file output should be kept, got %q", got)
	}
}

func TestRunToolsListsCatalog(t *testing.T) {
	var buf bytes.Buffer
	if err := runTools(&buf); err != nil {
		t.Fatal(err)
	}
	for _, d := range domain.Catalog() {
		if !strings.Contains(buf.String(), string(d.ID)) {
			t.Errorf("output missing %s", d.ID)
		}
	}
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil)
	if !strings.Contains(buf.String(), "No invocations") {
		t.Errorf("empty history output = %q", buf.String())
	}

	buf.Reset()
	start := time.Now().Add(-time.Hour)
	printHistory(&buf, []domain.InvocationRecord{
		{Token: "a", Tool: domain.ToolTranslator, Status: domain.StatusSucceeded, SubmittedAt: start, FinishedAt: start.Add(1500 * time.Millisecond)},
		{Token: "b", Tool: domain.ToolImageGenerator, Status: domain.StatusFailed, ErrorCode: domain.CodeRateLimit, SubmittedAt: start, FinishedAt: start.Add(time.Second)},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %q", buf.String())
	}
	if !strings.Contains(lines[0], "translator") || !strings.Contains(lines[0], "1.5s") || !strings.Contains(lines[0], "hour ago") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], string(domain.CodeRateLimit)) {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestRunEncrypt(t *testing.T) {
	t.Setenv(config.PassphraseEnv, "")
	var buf bytes.Buffer
	if err := runEncrypt([]string{"sk-test"}, &buf); err == nil {
		t.Fatal("expected error without passphrase")
	}

	t.Setenv(config.PassphraseEnv, "hunter2")
	if err := runEncrypt(nil, &buf); err == nil {
		t.Fatal("expected usage error")
	}
	if err := runEncrypt([]string{"sk-test"}, &buf); err != nil {
		t.Fatal(err)
	}
	out := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(out, "enc:") {
		t.Fatalf("output = %q", out)
	}
	plain, err := config.Open(out, "hunter2")
	if err != nil || plain != "sk-test" {
		t.Errorf("Open = %q, %v", plain, err)
	}
}
