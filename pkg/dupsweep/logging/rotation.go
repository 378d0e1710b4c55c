package logging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// RotationConfig configures log file rotation behavior.
type RotationConfig struct {
	// MaxSize is the maximum size in bytes before rotation. Zero uses 10 MiB.
	MaxSize int64

	// MaxAge is the maximum number of days to retain rotated files. Zero keeps them.
	MaxAge int

	// MaxBackups is the maximum number of rotated files to keep. Zero keeps all.
	MaxBackups int

	// Daily rotates the log file when the day changes.
	Daily bool
}

// DefaultRotationConfig keeps five backups for up to thirty days and
// rotates daily or at 10 MiB.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSize:    10 * 1024 * 1024,
		MaxAge:     30,
		MaxBackups: 5,
		Daily:      true,
	}
}

// backupStamp is embedded in backup names: dupsweep.2024-01-20-150405.log.
const backupStamp = "2006-01-02-150405"

// RotatingWriter is an io.WriteCloser over a log file that is moved aside
// when it outgrows MaxSize or, with Daily, when the calendar day changes.
// Each write holds an advisory flock so several dupsweep processes can
// append to the same file.
type RotatingWriter struct {
	path string
	cfg  RotationConfig

	mu      sync.Mutex
	file    *os.File
	size    int64
	started time.Time // when the current file was opened or last rotated
}

// NewRotatingWriter opens path for appending, creating parent directories,
// and prunes backups left by earlier runs.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultRotationConfig().MaxSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	w := &RotatingWriter{path: path, cfg: cfg}
	if err := w.open(); err != nil {
		return nil, err
	}
	w.prune()
	return w, nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}
	if w.due(int64(len(p)), time.Now()) {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("rotating log file: %w", err)
		}
	}

	unlock, err := flock(w.file)
	if err != nil {
		return 0, err
	}
	defer unlock()

	n, err := w.file.Write(p)
	w.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("writing log file: %w", err)
	}
	return n, nil
}

// Close syncs and closes the file. Later writes fail with os.ErrClosed.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	f := w.file
	w.file = nil

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("syncing log file: %w", err)
	}
	return f.Close()
}

func flock(f *os.File) (func(), error) {
	fd := int(f.Fd())
	if err := unix.Flock(fd, unix.LOCK_EX); err != nil {
		return nil, fmt.Errorf("locking log file: %w", err)
	}
	return func() { _ = unix.Flock(fd, unix.LOCK_UN) }, nil
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	w.file, w.size, w.started = f, info.Size(), time.Now()
	if w.size > 0 {
		w.started = info.ModTime()
	}
	return nil
}

// due reports whether a write of n bytes at now must go to a fresh file.
// An empty file is never rotated.
func (w *RotatingWriter) due(n int64, now time.Time) bool {
	if w.size == 0 {
		return false
	}
	if w.size+n > w.cfg.MaxSize {
		return true
	}
	return w.cfg.Daily && !sameDay(now, w.started)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func (w *RotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}
	w.file = nil

	if err := os.Rename(w.path, w.backupName(time.Now())); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("moving log file aside: %w", err)
	}
	if err := w.open(); err != nil {
		return err
	}
	w.prune()
	return nil
}

// backupName returns an unused name for a backup taken at now, adding a
// counter when several rotations happen within one second.
func (w *RotatingWriter) backupName(now time.Time) string {
	stem, ext := splitExt(w.path)
	stamp := now.Format(backupStamp)

	name := stem + "." + stamp + ext
	for i := 1; exists(name); i++ {
		name = fmt.Sprintf("%s.%s-%d%s", stem, stamp, i, ext)
	}
	return name
}

// backups lists this log's rotated files, newest first.
func (w *RotatingWriter) backups() []fs.FileInfo {
	dir := filepath.Dir(w.path)
	current := filepath.Base(w.path)
	stem, ext := splitExt(current)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var found []fs.FileInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == current || !strings.HasPrefix(name, stem+".") || !strings.HasSuffix(name, ext) {
			continue
		}
		if info, err := e.Info(); err == nil {
			found = append(found, info)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ModTime().After(found[j].ModTime()) })
	return found
}

// prune removes backups past MaxBackups or older than MaxAge days.
func (w *RotatingWriter) prune() {
	cutoff := time.Now().AddDate(0, 0, -w.cfg.MaxAge)
	dir := filepath.Dir(w.path)

	for i, info := range w.backups() {
		tooMany := w.cfg.MaxBackups > 0 && i >= w.cfg.MaxBackups
		tooOld := w.cfg.MaxAge > 0 && info.ModTime().Before(cutoff)
		if tooMany || tooOld {
			_ = os.Remove(filepath.Join(dir, info.Name()))
		}
	}
}

func splitExt(path string) (stem, ext string) {
	ext = filepath.Ext(path)
	return strings.TrimSuffix(path, ext), ext
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
