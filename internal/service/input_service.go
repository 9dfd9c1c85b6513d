package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"trainset/internal/domain"
	"trainset/internal/logger"
)

// ─────────────────────────────────────────────────────────────
// Input Service — collects training data for a fine-tune
// ─────────────────────────────────────────────────────────────
//
// URLs, pasted text and dropped files all end up as VirtualFiles in one
// ordered collection. Every change to the text counter or the collection is
// pushed synchronously as EventInputsChanged, in mutation order.

// Messages shown to the user through EventNotifyError.
const (
	MsgInvalidURL   = "Please enter a valid URL"
	MsgMalformedURL = "Please enter a valid URL (it contains invalid percent-encoding)"
)

var (
	ErrInvalidURL   = errors.New("invalid url")
	ErrMalformedURL = errors.New("malformed url encoding")
	ErrNotReady     = errors.New("inputs not ready to proceed")
	ErrAlreadyDone  = errors.New("inputs already submitted")
)

var (
	httpSchemeRe = regexp.MustCompile(`(?i)^https?://`)
	wwwPrefixRe  = regexp.MustCompile(`(?i)^www\.`)
)

// InputService owns one input session at a time.
type InputService struct {
	mu      sync.Mutex
	state   domain.InputState
	emitter EventEmitter
	log     logger.Logger
}

// NewInputService creates an InputService with an empty session.
// Call Start to seed it and announce it to the frontend.
func NewInputService(emitter EventEmitter, log logger.Logger) *InputService {
	return &InputService{
		state:   domain.InputState{SessionID: uuid.New().String(), Files: []domain.VirtualFile{}},
		emitter: emitter,
		log:     log,
	}
}

// Start replaces the current session with a fresh one seeded from seed.
func (s *InputService) Start(ctx context.Context, seed domain.InputSeed) domain.InputState {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]domain.VirtualFile, len(seed.Files))
	copy(files, seed.Files)
	s.state = domain.InputState{
		SessionID:       uuid.New().String(),
		TextFileCounter: seed.Counter,
		Files:           files,
		ShowButton:      seed.ShowButton,
	}
	s.log.Info("input session started",
		logger.String("session", s.state.SessionID),
		logger.Int("counter", seed.Counter),
		logger.Int("files", len(files)),
	)
	s.emitChangedLocked(ctx)
	return s.snapshotLocked()
}

// SetPendingURL updates the single-line URL buffer.
func (s *InputService) SetPendingURL(v string) {
	s.mu.Lock()
	s.state.PendingURL = v
	s.mu.Unlock()
}

// SetPendingText updates the multi-line text buffer.
func (s *InputService) SetPendingText(v string) {
	s.mu.Lock()
	s.state.PendingText = v
	s.mu.Unlock()
}

// SetReviewFlag records whether the user wants to review the generated data.
func (s *InputService) SetReviewFlag(v bool) {
	s.mu.Lock()
	s.state.ReviewFlag = v
	s.mu.Unlock()
}

// SetShowButton toggles whether the proceed action is offered.
func (s *InputService) SetShowButton(v bool) {
	s.mu.Lock()
	s.state.ShowButton = v
	s.mu.Unlock()
}

// AddURL adds raw as a "<title>.url" file whose content is raw itself.
// Invalid input is reported through EventNotifyError and leaves the session
// untouched.
func (s *InputService) AddURL(ctx context.Context, raw string) (*domain.VirtualFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !httpSchemeRe.MatchString(raw) {
		s.notifyLocked(ctx, MsgInvalidURL)
		return nil, fmt.Errorf("add url %q: %w", raw, ErrInvalidURL)
	}
	title, err := urlFileTitle(raw)
	if err != nil {
		s.notifyLocked(ctx, MsgMalformedURL)
		return nil, fmt.Errorf("add url %q: %w", raw, err)
	}

	f := domain.NewVirtualFile(title+".url", domain.MimeTextHTML, []byte(raw))
	s.state.Files = append(s.state.Files, f)
	s.state.PendingURL = ""
	s.log.Debug("url added", logger.String("name", f.Name))
	s.emitChangedLocked(ctx)
	return &f, nil
}

// AddPendingURL commits the URL buffer.
func (s *InputService) AddPendingURL(ctx context.Context) (*domain.VirtualFile, error) {
	s.mu.Lock()
	raw := s.state.PendingURL
	s.mu.Unlock()
	return s.AddURL(ctx, raw)
}

// AddTextFile adds text as the next "textfile-<n>.txt". Empty text is allowed.
func (s *InputService) AddTextFile(ctx context.Context, text string) domain.VirtualFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.TextFileCounter++
	f := domain.NewVirtualFile(
		fmt.Sprintf("textfile-%d.txt", s.state.TextFileCounter),
		domain.MimeTextPlain,
		[]byte(text),
	)
	s.state.Files = append(s.state.Files, f)
	s.state.PendingText = ""
	s.log.Debug("text added", logger.String("name", f.Name), logger.Int64("size", f.Size))
	s.emitChangedLocked(ctx)
	return f
}

// AddPendingText commits the text buffer.
func (s *InputService) AddPendingText(ctx context.Context) domain.VirtualFile {
	s.mu.Lock()
	text := s.state.PendingText
	s.mu.Unlock()
	return s.AddTextFile(ctx, text)
}

// DropFiles appends files whose names are not in the collection yet, keeping
// their order. Collisions, including repeats inside files, are discarded: the
// first occurrence wins. It returns how many files were appended.
func (s *InputService) DropFiles(ctx context.Context, files []domain.VirtualFile) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.state.Files)+len(files))
	for _, f := range s.state.Files {
		seen[f.Name] = struct{}{}
	}

	added := 0
	var skipped []string
	for _, f := range files {
		if _, dup := seen[f.Name]; dup {
			skipped = append(skipped, f.Name)
			continue
		}
		seen[f.Name] = struct{}{}
		s.state.Files = append(s.state.Files, f)
		added++
	}

	if len(skipped) > 0 {
		s.log.Debug("dropped duplicate files", logger.Strings("names", skipped))
	}
	if added > 0 {
		s.emitChangedLocked(ctx)
	}
	return added
}

// Finish submits the session with the given review flag.
func (s *InputService) Finish(ctx context.Context, manuallyReview bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Done {
		return ErrAlreadyDone
	}
	if len(s.state.Files) == 0 || !s.state.ShowButton {
		return ErrNotReady
	}
	s.state.ReviewFlag = manuallyReview
	s.state.Done = true
	s.log.Info("input session submitted",
		logger.String("session", s.state.SessionID),
		logger.Int("files", len(s.state.Files)),
		logger.Bool("review", manuallyReview),
	)
	s.emitter.Emit(ctx, EventInputsDone, domain.InputsDone{
		SessionID:      s.state.SessionID,
		ManuallyReview: manuallyReview,
		FileCount:      len(s.state.Files),
	})
	return nil
}

// Done submits the session with the current review flag.
func (s *InputService) Done(ctx context.Context) error {
	s.mu.Lock()
	review := s.state.ReviewFlag
	s.mu.Unlock()
	return s.Finish(ctx, review)
}

// State returns a snapshot of the session.
func (s *InputService) State() domain.InputState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Files returns a copy of the collected files in insertion order.
func (s *InputService) Files() []domain.VirtualFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	files := make([]domain.VirtualFile, len(s.state.Files))
	copy(files, s.state.Files)
	return files
}

// FileViews returns the listing rows for the collected files.
func (s *InputService) FileViews() []domain.FileView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]domain.FileView, len(s.state.Files))
	for i, f := range s.state.Files {
		views[i] = domain.FileView{
			Name:      f.Name,
			MimeType:  f.MimeType,
			Size:      f.Size,
			SizeLabel: humanize.Bytes(uint64(f.Size)),
			Icon:      FileIcon(f.Name),
		}
	}
	return views
}

// FileIcon returns the icon key for a file name: its lower-cased extension,
// or "txt" when it has none.
func FileIcon(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ext == "" {
		return "txt"
	}
	return ext
}

// urlFileTitle derives the display title of a URL: drop one trailing slash,
// percent-decode, then strip the scheme and a leading "www.".
func urlFileTitle(raw string) (string, error) {
	trimmed := strings.TrimSuffix(raw, "/")
	decoded, err := url.PathUnescape(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if !utf8.ValidString(decoded) {
		return "", fmt.Errorf("%w: decoded text is not valid UTF-8", ErrMalformedURL)
	}
	title := httpSchemeRe.ReplaceAllString(decoded, "")
	return wwwPrefixRe.ReplaceAllString(title, ""), nil
}

func (s *InputService) snapshotLocked() domain.InputState {
	st := s.state
	st.Files = make([]domain.VirtualFile, len(s.state.Files))
	copy(st.Files, s.state.Files)
	return st
}

func (s *InputService) emitChangedLocked(ctx context.Context) {
	files := make([]domain.VirtualFile, len(s.state.Files))
	copy(files, s.state.Files)
	s.emitter.Emit(ctx, EventInputsChanged, domain.InputsChanged{
		SessionID: s.state.SessionID,
		Counter:   s.state.TextFileCounter,
		Files:     files,
	})
}

func (s *InputService) notifyLocked(ctx context.Context, msg string) {
	s.log.Warn("input rejected", logger.String("reason", msg))
	s.emitter.Emit(ctx, EventNotifyError, NotifyError{Message: msg})
}
