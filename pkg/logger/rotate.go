package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// backupLayout names rotated audit files; it sorts lexically in time order.
const backupLayout = "20060102T150405.000Z"

// auditWriter appends submission records to path. The file is sealed into
// path.<UTC timestamp> when the UTC day changes or when a write would exceed
// maxSize, so each backup covers at most one day of submissions. Only the
// newest maxBackups backups younger than maxAge are kept.
type auditWriter struct {
	mu         sync.Mutex
	file       *os.File
	path       string
	size       int64
	day        string
	maxSize    int64
	maxBackups int
	maxAge     time.Duration
	now        func() time.Time
}

func newAuditWriter(path string, maxSizeMB, maxBackups, maxAgeDays int) (*auditWriter, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 100
	}
	if maxBackups <= 0 {
		maxBackups = 7
	}
	if maxAgeDays <= 0 {
		maxAgeDays = 30
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit log directory: %w", err)
	}
	return &auditWriter{
		path:       path,
		maxSize:    int64(maxSizeMB) << 20,
		maxBackups: maxBackups,
		maxAge:     time.Duration(maxAgeDays) * 24 * time.Hour,
		now:        time.Now,
	}, nil
}

func (w *auditWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now().UTC()
	if err := w.open(now); err != nil {
		return 0, err
	}
	if w.size > 0 && (w.size+int64(len(p)) > w.maxSize || w.day != now.Format(time.DateOnly)) {
		if err := w.seal(now); err != nil {
			return 0, err
		}
		if err := w.open(now); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *auditWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file, w.size = nil, 0
	return err
}

// open reopens the active file. A file left by an earlier process keeps the
// day of its last modification.
func (w *auditWriter) open(now time.Time) error {
	if w.file != nil {
		return nil
	}
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("stat audit log: %w", err)
	}
	w.file, w.size = file, info.Size()
	w.day = now.Format(time.DateOnly)
	if w.size > 0 {
		w.day = info.ModTime().UTC().Format(time.DateOnly)
	}
	return nil
}

func (w *auditWriter) seal(now time.Time) error {
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}
	w.size = 0
	if err := os.Rename(w.path, w.path+"."+now.Format(backupLayout)); err != nil {
		return fmt.Errorf("seal audit log: %w", err)
	}
	w.prune(now)
	return nil
}

// backups lists sealed files oldest first.
func (w *auditWriter) backups() []string {
	matches, _ := filepath.Glob(w.path + ".*")
	out := matches[:0]
	for _, m := range matches {
		if _, err := time.Parse(backupLayout, strings.TrimPrefix(m, w.path+".")); err == nil {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out
}

func (w *auditWriter) prune(now time.Time) {
	cutoff := now.Add(-w.maxAge)
	backups := w.backups()
	for i, name := range backups {
		sealed, _ := time.Parse(backupLayout, strings.TrimPrefix(name, w.path+"."))
		if i < len(backups)-w.maxBackups || sealed.Before(cutoff) {
			_ = os.Remove(name)
		}
	}
}
