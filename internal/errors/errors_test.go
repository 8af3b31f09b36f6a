package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	t.Parallel()

	sentinel := New(CodeRejectedTransaction, "")
	err := fmt.Errorf("submit: %w", Wrap(CodeRejectedTransaction, stdErrors.New("object not found"), "bad reference"))

	if !stdErrors.Is(err, sentinel) {
		t.Fatalf("expected errors.Is to match by code")
	}
	if stdErrors.Is(err, New(CodeLedgerFault, "")) {
		t.Fatalf("expected different codes not to match")
	}
	if CodeOf(err) != CodeRejectedTransaction {
		t.Fatalf("unexpected code %s", CodeOf(err))
	}
}

func TestRetryableDefaults(t *testing.T) {
	t.Parallel()

	if !RetryableError(New(CodeNetwork, "")) {
		t.Fatalf("network errors should default to retryable")
	}
	if RetryableError(New(CodeRejectedTransaction, "")) {
		t.Fatalf("rejected transactions must not be retryable")
	}
	if RetryableError(New(CodeNetwork, "", WithRetryable(false))) {
		t.Fatalf("explicit retryable override ignored")
	}
	if RetryableError(stdErrors.New("plain")) {
		t.Fatalf("plain errors are never retryable")
	}
}

func TestAnnotateAddsMetadata(t *testing.T) {
	t.Parallel()

	base := New(CodeNetwork, "timeout")
	err := Annotate(base, WithMetadata(MetaDigest, "abc"), WithMetadata(MetaOutcome, "unknown"))

	meta := MetadataOf(err)
	if meta[MetaDigest] != "abc" || meta[MetaOutcome] != "unknown" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}

	plain := Annotate(stdErrors.New("boom"), WithMetadata("k", "v"))
	if CodeOf(plain) != CodeUnknown {
		t.Fatalf("plain errors should be wrapped as UNKNOWN, got %s", CodeOf(plain))
	}
	if len(base.Metadata()) != 0 {
		t.Fatalf("annotate must not mutate the original error")
	}
	if Annotate(nil) != nil {
		t.Fatalf("annotating nil must return nil")
	}
}

func TestMessageFallsBackToRegistry(t *testing.T) {
	t.Parallel()

	err := New(CodeNotImplemented, "")
	if err.Message() != "capability not implemented" {
		t.Fatalf("unexpected message %q", err.Message())
	}
	if got := New(Code("CUSTOM"), "").Severity(); got != SeverityCritical {
		t.Fatalf("unregistered codes should use UNKNOWN attributes, got %s", got)
	}
}
