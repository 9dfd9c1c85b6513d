package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainset/internal/config"
	"trainset/internal/domain"
	"trainset/internal/logger"
	"trainset/internal/service"
	"trainset/internal/storage"
)

func TestSettingsWatcher_DetectsExternalChange(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemorySettingsStore()
	var calls atomic.Int32

	w, err := newSettingsWatcher(ctx, store, "", logger.NewNop(), func() { calls.Add(1) })
	require.NoError(t, err)

	w.check() // records the baseline
	assert.Zero(t, calls.Load())

	w.check()
	assert.Zero(t, calls.Load(), "unchanged store must not fire")

	require.NoError(t, store.Set(ctx, domain.SettingTheme, "helix"))
	w.check()
	assert.Equal(t, int32(1), calls.Load())

	w.check()
	assert.Equal(t, int32(1), calls.Load())
}

func TestSettingsWatcher_FirstChangeAfterEmptyStore(t *testing.T) {
	ctx := context.Background()
	db, err := storage.NewSQLite(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	store := storage.NewSQLSettingsStore(db)
	defer store.Close()
	var calls atomic.Int32

	w, err := newSettingsWatcher(ctx, store, "@every 1h", logger.NewNop(), func() { calls.Add(1) })
	require.NoError(t, err)

	w.check()
	require.NoError(t, store.Set(ctx, domain.SettingTheme, "helix"))
	w.check()
	assert.Equal(t, int32(1), calls.Load())
}

func TestSettingsWatcher_BadSchedule(t *testing.T) {
	_, err := newSettingsWatcher(context.Background(), storage.NewMemorySettingsStore(), "every now and then", logger.NewNop(), func() {})
	assert.Error(t, err)
}

func TestSettingsWatcher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := storage.NewMemorySettingsStore()
	var calls atomic.Int32
	w, err := newSettingsWatcher(ctx, store, "", logger.NewNop(), func() { calls.Add(1) })
	require.NoError(t, err)

	w.check()
	cancel()
	require.NoError(t, store.Set(context.Background(), domain.SettingTheme, "x"))
	w.check()
	assert.Zero(t, calls.Load())
}

func TestOpenServices_MemoryDriver(t *testing.T) {
	cfg := &config.Config{Settings: config.SettingsConfig{Driver: "memory"}}
	svc, err := openServices(context.Background(), cfg, logger.NewNop(), logEmitter{log: logger.NewNop()})
	require.NoError(t, err)
	defer svc.settings.Close()

	require.NoError(t, svc.themes.SetTheme(context.Background(), "helix"))
	v, err := svc.settings.Get(context.Background(), domain.SettingTheme)
	require.NoError(t, err)
	assert.Equal(t, "helix", v)
}

func TestFileReader(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "a.txt")
	big := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(small, []byte("ok"), 0o644))
	require.NoError(t, os.WriteFile(big, []byte("too large"), 0o644))

	files := fileReader{maxBytes: 4, log: logger.NewNop()}.Ingest([]string{small, big, dir})
	require.Len(t, files, 1)
	assert.Equal(t, "a.txt", files[0].Name)
}

func TestMCPLogConfig(t *testing.T) {
	assert.Equal(t, []string{"stderr"}, MCPLogConfig(logger.Config{}).OutputPaths)
	assert.Equal(t, []string{"stderr"}, MCPLogConfig(logger.Config{OutputPaths: []string{"stdout"}}).OutputPaths)
	assert.Equal(t, []string{"/tmp/t.log"}, MCPLogConfig(logger.Config{OutputPaths: []string{"stdout", "/tmp/t.log"}}).OutputPaths)
}

func TestSummarizeHidesContent(t *testing.T) {
	s := summarize(domain.InputsChanged{Counter: 2, Files: []domain.VirtualFile{
		domain.NewVirtualFile("a.txt", domain.MimeTextPlain, []byte("secret")),
	}})
	out := fmt.Sprintf("%+v", s)
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "a.txt")
}

func newTestApp(t *testing.T) (*App, *service.MockEmitter) {
	t.Helper()
	emitter := &service.MockEmitter{}
	cfg := &config.Config{Drop: config.DropConfig{MaxBytes: 16}}
	a := New(cfg, logger.NewNop())
	a.ctx = context.Background()
	a.inputs = service.NewInputService(emitter, a.log)
	store := storage.NewMemorySettingsStore()
	a.settings = store
	a.themes = service.NewThemeService(store, emitter, a.log)
	a.inputs.Start(a.ctx, domain.InputSeed{ShowButton: true})
	emitter.Reset()
	return a, emitter
}

func TestUploadFiles(t *testing.T) {
	a, emitter := newTestApp(t)

	added, err := a.UploadFiles([]UploadInput{
		{Name: "a.txt", Content: base64.StdEncoding.EncodeToString([]byte("hello"))},
		{Name: "b.bin", MimeType: "application/octet-stream", Content: base64.StdEncoding.EncodeToString([]byte("this is far too long"))},
		{Name: "a.txt", Content: base64.StdEncoding.EncodeToString([]byte("again"))},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	files := a.ListFiles()
	require.Len(t, files, 1)
	assert.Equal(t, "a.txt", files[0].Name)
	assert.Contains(t, files[0].MimeType, "text/plain")
	assert.Len(t, emitter.Named(service.EventInputsChanged), 1)

	_, err = a.UploadFiles([]UploadInput{{Name: "c.txt", Content: "not base64!"}})
	assert.Error(t, err)
}

func TestThemeBindings(t *testing.T) {
	a, _ := newTestApp(t)

	name, err := a.ResolveTheme("")
	require.NoError(t, err)
	assert.Equal(t, "helix", name)

	_, err = a.ResolveTheme("://bad")
	assert.Error(t, err)

	css, err := a.GetThemeCSS("", "light")
	require.NoError(t, err)
	assert.Contains(t, css, "--theme-")

	assert.ErrorIs(t, a.SetTheme("nope"), service.ErrUnknownTheme)
	assert.Contains(t, a.ListThemes(), "helix")
}

func TestFinishBinding(t *testing.T) {
	a, emitter := newTestApp(t)

	assert.ErrorIs(t, a.Finish(false), service.ErrNotReady)
	assert.Equal(t, "textfile-1.txt", a.AddTextFile("x"))
	require.NoError(t, a.Finish(true))
	assert.Len(t, emitter.Named(service.EventInputsDone), 1)
}

func TestWatchSettings_IgnoresInProcessWrites(t *testing.T) {
	a, emitter := newTestApp(t)
	w, err := a.watchSettings(a.ctx)
	require.NoError(t, err)
	w.check()

	for range 3 {
		_, err := a.GetThemeCSS("https://app.example.com/?theme=helix", "dark")
		require.NoError(t, err)
		w.check()
	}
	assert.Empty(t, emitter.Named(service.EventThemeChanged), "query override must not loop through the watcher")

	require.NoError(t, a.SetTheme("helix"))
	w.check()
	assert.Len(t, emitter.Named(service.EventThemeChanged), 1)

	require.NoError(t, a.ClearTheme())
	w.check()
	assert.Len(t, emitter.Named(service.EventThemeChanged), 2)
}

func TestWatchSettings_FiresOnExternalWrite(t *testing.T) {
	a, emitter := newTestApp(t)
	w, err := a.watchSettings(a.ctx)
	require.NoError(t, err)
	w.check()

	// another process writing the same store
	require.NoError(t, a.settings.Set(a.ctx, domain.SettingTheme, "helix"))
	w.check()
	assert.Len(t, emitter.Named(service.EventThemeChanged), 1)

	w.check()
	assert.Len(t, emitter.Named(service.EventThemeChanged), 1)
}
