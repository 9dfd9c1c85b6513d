package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainset/internal/domain"
	"trainset/internal/logger"
	"trainset/internal/service"
)

// ─────────────────────────────────────────────────────────────
// InputService tests
// ─────────────────────────────────────────────────────────────

func newInputService(t *testing.T, seed domain.InputSeed) (*service.InputService, *service.MockEmitter) {
	t.Helper()
	emitter := &service.MockEmitter{}
	svc := service.NewInputService(emitter, logger.NewNop())
	svc.Start(context.Background(), seed)
	emitter.Reset()
	return svc, emitter
}

func fileNames(files []domain.VirtualFile) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

func TestInputService_StartEmitsSeed(t *testing.T) {
	emitter := &service.MockEmitter{}
	svc := service.NewInputService(emitter, logger.NewNop())
	seedFile := domain.NewVirtualFile("notes.md", "text/markdown", []byte("# hi"))

	st := svc.Start(context.Background(), domain.InputSeed{Counter: 4, Files: []domain.VirtualFile{seedFile}})

	assert.NotEmpty(t, st.SessionID)
	assert.Equal(t, 4, st.TextFileCounter)
	require.Len(t, emitter.Named(service.EventInputsChanged), 1)
	payload := emitter.Events[0].Data.(domain.InputsChanged)
	assert.Equal(t, 4, payload.Counter)
	assert.Equal(t, []string{"notes.md"}, fileNames(payload.Files))
	assert.Equal(t, st.SessionID, payload.SessionID)
}

func TestInputService_StartNewSessionID(t *testing.T) {
	svc, _ := newInputService(t, domain.InputSeed{})
	first := svc.State().SessionID
	svc.Start(context.Background(), domain.InputSeed{})
	assert.NotEqual(t, first, svc.State().SessionID)
}

func TestInputService_AddURL_Invalid(t *testing.T) {
	for _, raw := range []string{"", "example.com", "ftp://example.com", "http:/example.com", " https://example.com", "mailto:a@b.c"} {
		t.Run(fmt.Sprintf("%q", raw), func(t *testing.T) {
			svc, emitter := newInputService(t, domain.InputSeed{})
			svc.SetPendingURL(raw)

			f, err := svc.AddURL(context.Background(), raw)

			assert.Nil(t, f)
			assert.True(t, errors.Is(err, service.ErrInvalidURL))
			assert.Empty(t, svc.State().Files)
			assert.Equal(t, raw, svc.State().PendingURL)
			require.Len(t, emitter.Events, 1)
			assert.Equal(t, service.EventNotifyError, emitter.Events[0].Event)
			assert.Equal(t, service.MsgInvalidURL, emitter.Events[0].Data.(service.NotifyError).Message)
		})
	}
}

func TestInputService_AddURL_Normalization(t *testing.T) {
	cases := []struct {
		raw  string
		name string
	}{
		// host and path keep their case; only the scheme and a www. prefix are stripped
		{"https://Example.com/Path/", "Example.com/Path.url"},
		{"https://www.example.com/a%20b/", "example.com/a b.url"},
		{"HTTP://WWW.Example.com", "Example.com.url"},
		{"http://example.com//", "example.com/.url"},
		{"https://example.com/caf%C3%A9", "example.com/café.url"},
		{"https://example.com/a+b", "example.com/a+b.url"},
		{"https://www.www.example.com", "www.example.com.url"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			svc, emitter := newInputService(t, domain.InputSeed{})
			svc.SetPendingURL(tc.raw)

			f, err := svc.AddURL(context.Background(), tc.raw)
			require.NoError(t, err)

			assert.Equal(t, tc.name, f.Name)
			assert.Equal(t, domain.MimeTextHTML, f.MimeType)
			assert.Equal(t, tc.raw, string(f.Content))
			assert.Equal(t, int64(len(tc.raw)), f.Size)
			assert.Empty(t, svc.State().PendingURL)
			require.Len(t, emitter.Named(service.EventInputsChanged), 1)
		})
	}
}

func TestInputService_AddURL_Malformed(t *testing.T) {
	for _, raw := range []string{"https://example.com/%zz", "https://example.com/%", "https://example.com/%ff"} {
		t.Run(raw, func(t *testing.T) {
			svc, emitter := newInputService(t, domain.InputSeed{})

			_, err := svc.AddURL(context.Background(), raw)

			assert.True(t, errors.Is(err, service.ErrMalformedURL))
			assert.Empty(t, svc.State().Files)
			require.Len(t, emitter.Events, 1)
			assert.Equal(t, service.MsgMalformedURL, emitter.Events[0].Data.(service.NotifyError).Message)
		})
	}
}

func TestInputService_AddURL_NoDedup(t *testing.T) {
	svc, _ := newInputService(t, domain.InputSeed{})
	ctx := context.Background()

	_, err := svc.AddURL(ctx, "https://example.com")
	require.NoError(t, err)
	_, err = svc.AddURL(ctx, "https://example.com/")
	require.NoError(t, err)

	assert.Equal(t, []string{"example.com.url", "example.com.url"}, fileNames(svc.State().Files))
}

func TestInputService_AddPendingURL(t *testing.T) {
	svc, _ := newInputService(t, domain.InputSeed{})
	svc.SetPendingURL("https://helix.ml/docs/")

	f, err := svc.AddPendingURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "helix.ml/docs.url", f.Name)
	assert.Empty(t, svc.State().PendingURL)
}

func TestInputService_AddTextFile_Counter(t *testing.T) {
	svc, emitter := newInputService(t, domain.InputSeed{Counter: 2})
	ctx := context.Background()

	svc.SetPendingText("first")
	a := svc.AddPendingText(ctx)
	b := svc.AddTextFile(ctx, "")
	c := svc.AddTextFile(ctx, "third")

	assert.Equal(t, "textfile-3.txt", a.Name)
	assert.Equal(t, "textfile-4.txt", b.Name)
	assert.Equal(t, "textfile-5.txt", c.Name)
	assert.Equal(t, []byte("first"), a.Content)
	assert.Equal(t, int64(0), b.Size)
	assert.Equal(t, domain.MimeTextPlain, c.MimeType)

	st := svc.State()
	assert.Equal(t, 5, st.TextFileCounter)
	assert.Empty(t, st.PendingText)

	changes := emitter.Named(service.EventInputsChanged)
	require.Len(t, changes, 3)
	for i, e := range changes {
		p := e.Data.(domain.InputsChanged)
		assert.Equal(t, 3+i, p.Counter)
		assert.Len(t, p.Files, i+1)
	}
}

func TestInputService_DropFiles_Dedup(t *testing.T) {
	svc, emitter := newInputService(t, domain.InputSeed{})
	ctx := context.Background()
	svc.AddTextFile(ctx, "x")
	emitter.Reset()

	added := svc.DropFiles(ctx, []domain.VirtualFile{
		domain.NewVirtualFile("a.pdf", "application/pdf", []byte("A1")),
		domain.NewVirtualFile("textfile-1.txt", domain.MimeTextPlain, []byte("other")),
		domain.NewVirtualFile("b.docx", "application/octet-stream", []byte("B")),
		domain.NewVirtualFile("a.pdf", "application/pdf", []byte("A2")),
	})

	assert.Equal(t, 2, added)
	files := svc.State().Files
	assert.Equal(t, []string{"textfile-1.txt", "a.pdf", "b.docx"}, fileNames(files))
	assert.Equal(t, []byte("x"), files[0].Content)
	assert.Equal(t, []byte("A1"), files[1].Content)
	require.Len(t, emitter.Named(service.EventInputsChanged), 1)
}

func TestInputService_DropFiles_OnlyDuplicates(t *testing.T) {
	svc, emitter := newInputService(t, domain.InputSeed{
		Files: []domain.VirtualFile{domain.NewVirtualFile("a.pdf", "application/pdf", []byte("A"))},
	})

	added := svc.DropFiles(context.Background(), []domain.VirtualFile{
		domain.NewVirtualFile("a.pdf", "application/pdf", []byte("A again")),
	})

	assert.Zero(t, added)
	assert.Len(t, svc.State().Files, 1)
	assert.Empty(t, emitter.Events)
}

func TestInputService_Finish(t *testing.T) {
	ctx := context.Background()

	t.Run("empty collection", func(t *testing.T) {
		svc, emitter := newInputService(t, domain.InputSeed{ShowButton: true})
		assert.ErrorIs(t, svc.Finish(ctx, true), service.ErrNotReady)
		assert.Empty(t, emitter.Events)
	})

	t.Run("button not offered", func(t *testing.T) {
		svc, _ := newInputService(t, domain.InputSeed{})
		svc.AddTextFile(ctx, "x")
		assert.False(t, svc.State().CanProceed())
		assert.ErrorIs(t, svc.Finish(ctx, false), service.ErrNotReady)
	})

	t.Run("forwards review flag once", func(t *testing.T) {
		svc, emitter := newInputService(t, domain.InputSeed{ShowButton: true})
		svc.AddTextFile(ctx, "x")
		assert.True(t, svc.State().CanProceed())
		svc.SetReviewFlag(true)

		require.NoError(t, svc.Done(ctx))
		assert.ErrorIs(t, svc.Done(ctx), service.ErrAlreadyDone)

		done := emitter.Named(service.EventInputsDone)
		require.Len(t, done, 1)
		p := done[0].Data.(domain.InputsDone)
		assert.True(t, p.ManuallyReview)
		assert.Equal(t, 1, p.FileCount)
		assert.True(t, svc.State().Done)
		assert.False(t, svc.State().CanProceed())
	})

	t.Run("explicit flag overrides buffer", func(t *testing.T) {
		svc, emitter := newInputService(t, domain.InputSeed{ShowButton: true})
		svc.AddTextFile(ctx, "x")
		svc.SetReviewFlag(true)

		require.NoError(t, svc.Finish(ctx, false))
		assert.False(t, emitter.Named(service.EventInputsDone)[0].Data.(domain.InputsDone).ManuallyReview)
	})

	t.Run("show button toggled later", func(t *testing.T) {
		svc, _ := newInputService(t, domain.InputSeed{})
		svc.AddTextFile(ctx, "x")
		svc.SetShowButton(true)
		assert.NoError(t, svc.Finish(ctx, false))
	})
}

func TestInputService_StateIsSnapshot(t *testing.T) {
	svc, _ := newInputService(t, domain.InputSeed{})
	svc.AddTextFile(context.Background(), "x")

	st := svc.State()
	st.Files[0].Name = "mutated"
	assert.Equal(t, "textfile-1.txt", svc.State().Files[0].Name)
}

func TestInputService_FileViews(t *testing.T) {
	svc, _ := newInputService(t, domain.InputSeed{})
	ctx := context.Background()
	svc.AddTextFile(ctx, "hello")
	_, err := svc.AddURL(ctx, "https://example.com")
	require.NoError(t, err)
	svc.DropFiles(ctx, []domain.VirtualFile{domain.NewVirtualFile("Report.PDF", "application/pdf", make([]byte, 2048))})

	views := svc.FileViews()
	require.Len(t, views, 3)
	assert.Equal(t, "5 B", views[0].SizeLabel)
	assert.Equal(t, "txt", views[0].Icon)
	assert.Equal(t, "url", views[1].Icon)
	assert.Equal(t, "pdf", views[2].Icon)
	assert.Equal(t, "2.0 kB", views[2].SizeLabel)
}

func TestFileIcon(t *testing.T) {
	assert.Equal(t, "txt", service.FileIcon("README"))
	assert.Equal(t, "gz", service.FileIcon("data.tar.gz"))
	assert.Equal(t, "md", service.FileIcon("notes.MD"))
}
