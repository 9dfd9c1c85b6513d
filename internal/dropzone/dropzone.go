package dropzone

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/wailsapp/mimetype"

	"trainset/internal/domain"
	"trainset/internal/logger"
)

// DefaultDebounce is how long the zone waits after the last write before it
// hands a batch over.
const DefaultDebounce = 300 * time.Millisecond

// ErrTooLarge is returned by Read for files above the size limit.
var ErrTooLarge = errors.New("file too large")

// UploadHandler receives the files that landed in the drop directory, in the
// order their first event arrived.
type UploadHandler func(files []domain.VirtualFile)

// Options configures a Zone.
type Options struct {
	Dir      string
	MaxBytes int64
	Debounce time.Duration
}

// Zone watches a directory and turns files written into it into VirtualFiles.
// Editors and copy tools write in several steps, so events for the same path
// are coalesced until the directory has been quiet for Debounce.
type Zone struct {
	watcher  *fsnotify.Watcher
	dir      string
	maxBytes int64
	debounce time.Duration
	onUpload UploadHandler
	log      logger.Logger

	mu      sync.Mutex
	pending []string
	queued  map[string]struct{}
	timer   *time.Timer
	closed  bool
}

// New creates the drop directory if needed and starts watching it.
func New(opts Options, onUpload UploadHandler, log logger.Logger) (*Zone, error) {
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve drop dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create drop dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	z := &Zone{
		watcher:  watcher,
		dir:      dir,
		maxBytes: opts.MaxBytes,
		debounce: debounce,
		onUpload: onUpload,
		log:      log.With(logger.String("component", "dropzone")),
		queued:   make(map[string]struct{}),
	}

	go z.watchLoop()

	z.log.Info("watching drop directory", logger.String("dir", dir))
	return z, nil
}

// Dir returns the absolute path being watched.
func (z *Zone) Dir() string { return z.dir }

// Ingest reads the given paths for an explicit selection. Directories and
// unreadable or oversized files are skipped and logged.
func (z *Zone) Ingest(paths []string) []domain.VirtualFile {
	files := make([]domain.VirtualFile, 0, len(paths))
	for _, p := range paths {
		f, err := Read(p, z.maxBytes)
		if err != nil {
			z.log.Warn("skipping file", logger.String("path", p), logger.Error(err))
			continue
		}
		if f == nil {
			continue
		}
		files = append(files, *f)
	}
	return files
}

// Close stops the watcher. Pending batches are discarded.
func (z *Zone) Close() error {
	z.mu.Lock()
	z.closed = true
	if z.timer != nil {
		z.timer.Stop()
	}
	z.mu.Unlock()
	return z.watcher.Close()
}

// Read loads path into a VirtualFile named after its base name. It returns
// nil, nil for directories and other non-regular files. maxBytes <= 0 means
// no limit.
func Read(path string, maxBytes int64) (*domain.VirtualFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%s (%d bytes): %w", path, info.Size(), ErrTooLarge)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f := domain.NewVirtualFile(filepath.Base(path), mimetype.Detect(content).String(), content)
	return &f, nil
}

func (z *Zone) watchLoop() {
	for {
		select {
		case event, ok := <-z.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				z.enqueue(event.Name)
			}
		case err, ok := <-z.watcher.Errors:
			if !ok {
				return
			}
			z.log.Error("watcher error", logger.Error(err))
		}
	}
}

func (z *Zone) enqueue(path string) {
	if filepath.Base(path)[0] == '.' {
		return
	}
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.closed {
		return
	}
	if _, ok := z.queued[path]; !ok {
		z.queued[path] = struct{}{}
		z.pending = append(z.pending, path)
	}
	if z.timer != nil {
		z.timer.Stop()
	}
	z.timer = time.AfterFunc(z.debounce, z.flush)
}

func (z *Zone) flush() {
	z.mu.Lock()
	if z.closed || len(z.pending) == 0 {
		z.mu.Unlock()
		return
	}
	paths := z.pending
	z.pending = nil
	z.queued = make(map[string]struct{})
	z.mu.Unlock()

	files := z.Ingest(paths)
	if len(files) == 0 || z.onUpload == nil {
		return
	}
	z.log.Debug("drop batch ready", logger.Int("files", len(files)))
	z.onUpload(files)
}
