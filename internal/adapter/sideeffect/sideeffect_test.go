package sideeffect

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitools/internal/domain"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func script(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestSpeakerPassesTextLast(t *testing.T) {
	out := filepath.Join(t.TempDir(), "args")
	bin := script(t, `printf '%s\n' "$@" > "`+out+`"`+"\n")

	s := NewCommandSpeaker(bin+" --rate 180", quiet())
	require.NoError(t, s.Speak(context.Background(), "hola mundo", "es"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "--rate\n180\nhola mundo\n", string(data))
}

func TestSpeakerFailure(t *testing.T) {
	bin := script(t, "echo 'no audio device' >&2\nexit 3\n")
	err := NewCommandSpeaker(bin, quiet()).Speak(context.Background(), "hi", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSideEffect))
	assert.Contains(t, err.Error(), "no audio device")
}

func TestVoiceArgs(t *testing.T) {
	assert.Equal(t, []string{"-v", "fr"}, voiceArgs("espeak-ng", "fr"))
	assert.Equal(t, []string{"-l", "de"}, voiceArgs("spd-say", "de"))
	assert.Nil(t, voiceArgs("say", "fr"))
	assert.Nil(t, voiceArgs("espeak", domain.LanguageAuto))
}

func TestPlayerCallsDoneOnNaturalEnd(t *testing.T) {
	bin := script(t, "exit 0\n")
	done := make(chan struct{})
	stop, err := NewCommandPlayer(bin, quiet()).Play("/tmp/a.wav", func() { close(done) })
	require.NoError(t, err)
	require.NotNil(t, stop)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("done was not called")
	}
}

func TestPlayerStopSuppressesDone(t *testing.T) {
	bin := script(t, "exec sleep 5\n")
	called := make(chan struct{}, 1)
	stop, err := NewCommandPlayer(bin, quiet()).Play("/tmp/a.wav", func() { called <- struct{}{} })
	require.NoError(t, err)
	stop()

	select {
	case <-called:
		t.Fatal("done called after stop")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestPlayerMissingBinary(t *testing.T) {
	_, err := NewCommandPlayer(filepath.Join(t.TempDir(), "missing"), quiet()).Play("/tmp/a.wav", nil)
	assert.True(t, errors.Is(err, domain.ErrSideEffect))
}

func TestFetcherDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := NewFetcher(srv.Client(), quiet())

	first, err := f.Fetch(context.Background(), srv.URL+"/photos/fox.png?w=512", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fox.png"), first)

	second, err := f.Fetch(context.Background(), srv.URL+"/photos/fox.png", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fox-1.png"), second)

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	_, err = f.Fetch(context.Background(), srv.URL+"/missing", dir)
	assert.True(t, errors.Is(err, domain.ErrSideEffect))
}

func TestFetcherExtensionFromContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	got, err := NewFetcher(srv.Client(), quiet()).Fetch(context.Background(), srv.URL+"/render", t.TempDir())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "render.png"), got)
}

func TestFetcherCopiesLocalFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "memo-enhanced.wav")
	require.NoError(t, os.WriteFile(src, []byte("RIFF"), 0o600))
	dir := filepath.Join(t.TempDir(), "downloads")

	got, err := NewFetcher(nil, quiet()).Fetch(context.Background(), src, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "memo-enhanced.wav"), got)

	_, err = NewFetcher(nil, quiet()).Fetch(context.Background(), filepath.Join(dir, "nope.wav"), dir)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestConfiguredCommandWins(t *testing.T) {
	bin, err := SpeechCommand("my-tts --fast")
	require.NoError(t, err)
	assert.Equal(t, "my-tts", bin)

	bin, err = PlayerCommand("  /opt/play  ")
	require.NoError(t, err)
	assert.Equal(t, "/opt/play", bin)
}
