package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAuditLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit", "submissions.log")

	if err := Init(Config{Level: "debug", OutputPaths: []string{filepath.Join(dir, "app.log")}, Audit: AuditConfig{Enabled: true, Path: path}}); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { _ = Sync() })

	Audit().Info("transaction submitted", "digest", "abc")
	Named("submit").Debug("resolved inputs", "count", 2)
	if err := Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}

	audit, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit: %v", err)
	}
	if !strings.Contains(string(audit), `"digest":"abc"`) {
		t.Fatalf("unexpected audit content %s", audit)
	}
	app, err := os.ReadFile(filepath.Join(dir, "app.log"))
	if err != nil {
		t.Fatalf("read app log: %v", err)
	}
	if !strings.Contains(string(app), "component=submit") {
		t.Fatalf("component attribute missing: %s", app)
	}
}

// stepClock advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(step)
		return now
	}
}

func writeChunks(t *testing.T, w *auditWriter, chunks ...string) {
	t.Helper()
	for _, chunk := range chunks {
		if _, err := w.Write([]byte(chunk)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}

func TestAuditWriterSealsOnSize(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audit.log")
	w, err := newAuditWriter(path, 1, 1, 30)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	w.maxSize = 8
	w.now = stepClock(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), time.Second)
	defer w.Close()

	writeChunks(t, w, "aaaaaa\n", "bbbbbb\n", "cccccc\n")

	current, _ := os.ReadFile(path)
	if string(current) != "cccccc\n" {
		t.Fatalf("unexpected active file %q", current)
	}
	backups := w.backups()
	if len(backups) != 1 {
		t.Fatalf("expected one backup kept, got %v", backups)
	}
	sealed, _ := os.ReadFile(backups[0])
	if string(sealed) != "bbbbbb\n" || !strings.HasSuffix(backups[0], ".20261019T080002.000Z") {
		t.Fatalf("unexpected backup %s: %q", backups[0], sealed)
	}
}

func TestAuditWriterSealsOnDayChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audit.log")
	w, err := newAuditWriter(path, 1, 5, 30)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	w.now = stepClock(time.Date(2026, 10, 19, 23, 59, 59, 0, time.UTC), 2*time.Second)
	defer w.Close()

	writeChunks(t, w, "day one\n", "day two\n")

	backups := w.backups()
	if len(backups) != 1 {
		t.Fatalf("expected the first day to be sealed, got %v", backups)
	}
	sealed, _ := os.ReadFile(backups[0])
	current, _ := os.ReadFile(path)
	if string(sealed) != "day one\n" || string(current) != "day two\n" {
		t.Fatalf("unexpected split %q / %q", sealed, current)
	}
}

func TestAuditWriterDropsExpiredBackups(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audit.log")
	w, err := newAuditWriter(path, 1, 5, 1)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	w.now = stepClock(time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC), 24*time.Hour)
	defer w.Close()

	writeChunks(t, w, "1\n", "2\n", "3\n", "4\n", "5\n")

	backups := w.backups()
	if len(backups) != 2 {
		t.Fatalf("expected backups sealed within the last day, got %v", backups)
	}
	if content, _ := os.ReadFile(backups[0]); string(content) != "3\n" {
		t.Fatalf("oldest kept backup should hold day three, got %q", content)
	}
}

func TestInitRejectsAuditWithoutPath(t *testing.T) {
	if err := Init(Config{Audit: AuditConfig{Enabled: true}}); err == nil {
		t.Fatalf("expected error for empty audit path")
	}
}
