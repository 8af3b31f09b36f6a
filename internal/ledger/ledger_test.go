package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseAddressPadsShortForms(t *testing.T) {
	t.Parallel()

	addr, err := ParseAddress("0x6")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := "0x" + strings.Repeat("0", 63) + "6"
	if addr.String() != want {
		t.Fatalf("unexpected canonical form %s", addr.String())
	}
	if addr != ClockObjectID {
		t.Fatalf("clock id mismatch")
	}

	upper, err := ParseAddress("0XABC")
	if err != nil {
		t.Fatalf("parse upper: %v", err)
	}
	if !strings.HasSuffix(upper.String(), "abc") {
		t.Fatalf("unexpected value %s", upper)
	}
}

func TestParseAddressRejectsMalformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "0x", "0xzz", "0x" + strings.Repeat("1", 65), "model-object-id"} {
		if _, err := ParseAddress(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestAddressJSONRoundTrip(t *testing.T) {
	t.Parallel()

	var decoded struct {
		ID Address `json:"id"`
	}
	if err := json.Unmarshal([]byte(`{"id":"0x2"}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(decoded)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), strings.Repeat("0", 63)+"2") {
		t.Fatalf("unexpected json %s", out)
	}
}

func TestEffectsComputationCostDefaultsToZero(t *testing.T) {
	t.Parallel()

	if got := (Effects{}).ComputationCost(); got != 0 {
		t.Fatalf("expected zero, got %d", got)
	}
	if got := (Effects{GasUsed: &GasCost{ComputationCost: 750}}).ComputationCost(); got != 750 {
		t.Fatalf("expected 750, got %d", got)
	}
}

func TestNetworkDefinitions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "networks.yaml")
	content := "networks:\n  staging:\n    rpc_url: http://staging:9000\n  testnet:\n    rpc_url: http://mirror:9000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	defs, err := LoadNetworkDefinitions(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	url, err := defs.Endpoint("testnet", "")
	if err != nil || url != "http://mirror:9000" {
		t.Fatalf("unexpected testnet endpoint %q (%v)", url, err)
	}
	if url, _ := defs.Endpoint("staging", ""); url != "http://staging:9000" {
		t.Fatalf("unexpected staging endpoint %q", url)
	}
	if url, _ := defs.Endpoint("mainnet", ""); !strings.Contains(url, "mainnet") {
		t.Fatalf("built-in network lost: %q", url)
	}
	if url, _ := defs.Endpoint("unknown", "http://override"); url != "http://override" {
		t.Fatalf("override ignored: %q", url)
	}
	if _, err := defs.Endpoint("unknown", ""); err == nil {
		t.Fatalf("expected error for unknown network")
	}
}
