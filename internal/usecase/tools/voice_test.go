package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitools/internal/domain"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func echoVoice(_ context.Context, in domain.VoiceInput) (domain.EnhancedAudio, error) {
	return domain.EnhancedAudio{Path: in.File.Path, Source: *in.File, Options: in.Options}, nil
}

func TestVoiceDefaults(t *testing.T) {
	v := NewVoiceEnhancer(Env{}, echoVoice)
	in := v.Controller().Snapshot().Input
	assert.Nil(t, in.File)
	assert.Equal(t, domain.DefaultVoiceOptions(), in.Options)
	assert.Empty(t, v.FileSummary())

	_, ok := v.Enhance()
	assert.False(t, ok, "no file selected")
}

func TestSelectFileRejectsNonAudio(t *testing.T) {
	v := NewVoiceEnhancer(Env{}, echoVoice)

	err := v.SelectFile(filepath.Join(t.TempDir(), "missing.wav"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, domain.CodeVoiceNotFound, domain.ErrorCodeOf(err))

	err = v.SelectFile(writeFile(t, "notes.txt", []byte("just text")))
	assert.ErrorIs(t, err, domain.ErrUnsupportedAudio)

	err = v.SelectFile(t.TempDir())
	assert.ErrorIs(t, err, domain.ErrUnsupportedAudio)

	assert.Nil(t, v.Controller().Snapshot().Input.File)
}

func TestSelectFileSniffsContent(t *testing.T) {
	v := NewVoiceEnhancer(Env{}, echoVoice)
	wav := append([]byte("RIFF\x24\x00\x00\x00WAVEfmt "), make([]byte, 32)...)
	path := writeFile(t, "recording", wav)

	require.NoError(t, v.SelectFile(path))
	f := v.Controller().Snapshot().Input.File
	require.NotNil(t, f)
	assert.Equal(t, "audio/wave", f.MimeType)
}

func TestEnhanceAndReselect(t *testing.T) {
	v := NewVoiceEnhancer(Env{}, echoVoice)
	path := writeFile(t, "memo.mp3", []byte("ID3fake"))

	require.NoError(t, v.SelectFile(path))
	assert.Equal(t, "memo.mp3 (7 B)", v.FileSummary())

	v.ToggleOption(EchoRemoval)
	v.ToggleOption(NoiseReduction)
	_, ok := v.Enhance()
	require.True(t, ok)
	v.Controller().Wait()

	snap := v.Controller().Snapshot()
	require.True(t, snap.HasResult)
	assert.Equal(t, path, snap.Result.Path)
	assert.Equal(t, "audio/mpeg", snap.Result.Source.MimeType)
	assert.Equal(t, domain.VoiceOptions{VoiceClarity: true, EchoRemoval: true}, snap.Result.Options)

	other := writeFile(t, "take2.wav", []byte("RIFF"))
	require.NoError(t, v.SelectFile(other))
	snap = v.Controller().Snapshot()
	assert.False(t, snap.HasResult, "new file discards the previous result")
	assert.Equal(t, domain.StatusIdle, snap.Status)
	assert.Equal(t, "take2.wav", snap.Input.File.Name)
	assert.True(t, snap.Input.Options.EchoRemoval, "options survive reselection")
}

func TestVoiceBackendFailure(t *testing.T) {
	boom := errors.New("ffmpeg exited")
	v := NewVoiceEnhancer(Env{}, func(context.Context, domain.VoiceInput) (domain.EnhancedAudio, error) {
		return domain.EnhancedAudio{}, boom
	})
	require.NoError(t, v.SelectFile(writeFile(t, "a.wav", []byte("RIFF"))))
	_, ok := v.Enhance()
	require.True(t, ok)
	v.Controller().Wait()

	snap := v.Controller().Snapshot()
	assert.Equal(t, domain.StatusFailed, snap.Status)
	assert.ErrorIs(t, snap.Err, boom)

	v.SetOptions(domain.VoiceOptions{})
	assert.Equal(t, domain.StatusIdle, v.Controller().Snapshot().Status, "editing dismisses the failure")
}

func TestTogglePlayback(t *testing.T) {
	player := &fakePlayer{}
	pub := &recordingPublisher{}
	v := NewVoiceEnhancer(Env{Player: player, Events: pub}, echoVoice)

	_, err := v.TogglePlayback()
	assert.ErrorIs(t, err, domain.ErrNoResult)

	path := writeFile(t, "a.ogg", []byte("OggS"))
	require.NoError(t, v.SelectFile(path))
	_, ok := v.Enhance()
	require.True(t, ok)
	v.Controller().Wait()

	playing, err := v.TogglePlayback()
	require.NoError(t, err)
	assert.True(t, playing)
	assert.True(t, v.Playing())
	assert.Equal(t, path, player.path)

	playing, err = v.TogglePlayback()
	require.NoError(t, err)
	assert.False(t, playing)
	assert.Equal(t, 1, player.stopped)

	playing, err = v.TogglePlayback()
	require.NoError(t, err)
	require.True(t, playing)
	player.finish()
	assert.Eventually(t, func() bool { return !v.Playing() }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 3, pub.count(domain.EventPlaybackToggled))
}

func TestPlaybackStopsOnReset(t *testing.T) {
	player := &fakePlayer{}
	v := NewVoiceEnhancer(Env{Player: player}, echoVoice)
	require.NoError(t, v.SelectFile(writeFile(t, "a.flac", []byte("fLaC"))))
	_, ok := v.Enhance()
	require.True(t, ok)
	v.Controller().Wait()

	_, err := v.TogglePlayback()
	require.NoError(t, err)
	v.Reset()
	assert.False(t, v.Playing())
	assert.Equal(t, 1, player.stopped)
	assert.False(t, v.Controller().Snapshot().HasResult)

	// A late end-of-playback from the stopped session changes nothing.
	player.finish()
	time.Sleep(10 * time.Millisecond)
	assert.False(t, v.Playing())
}

func TestPlaybackWithoutPlayer(t *testing.T) {
	v := NewVoiceEnhancer(Env{}, echoVoice)
	require.NoError(t, v.SelectFile(writeFile(t, "a.wav", []byte("RIFF"))))
	_, ok := v.Enhance()
	require.True(t, ok)
	v.Controller().Wait()

	_, err := v.TogglePlayback()
	assert.ErrorIs(t, err, domain.ErrSideEffect)
}

func TestVoiceDownload(t *testing.T) {
	fetcher := &fakeFetcher{}
	v := NewVoiceEnhancer(Env{Fetcher: fetcher}, echoVoice)
	path := writeFile(t, "a.wav", []byte("RIFF"))
	require.NoError(t, v.SelectFile(path))
	_, ok := v.Enhance()
	require.True(t, ok)
	v.Controller().Wait()

	_, err := v.Download(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, path, fetcher.src)
}
