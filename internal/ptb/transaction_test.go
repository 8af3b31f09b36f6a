package ptb

import (
	"bytes"
	"testing"

	"SuiAI-SDK/internal/ledger"

	"github.com/mr-tron/base58"
)

func TestPureEncoding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value any
		want  []byte
	}{
		{"u64", uint64(5), []byte{5, 0, 0, 0, 0, 0, 0, 0}},
		{"u8", uint8(7), []byte{7}},
		{"bool", true, []byte{1}},
		{"string", "hi", []byte{2, 'h', 'i'}},
		{"vector<u64>", []uint64{1, 2}, []byte{2, 1, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0}},
		{"vector<u8>", []byte{0xaa, 0xbb}, []byte{2, 0xaa, 0xbb}},
	}
	for _, tc := range cases {
		tx := New()
		arg, err := tx.Pure(tc.value)
		if err != nil {
			t.Fatalf("%s: pure: %v", tc.name, err)
		}
		idx, ok := arg.InputIndex()
		if !ok || idx != 0 {
			t.Fatalf("%s: expected input 0", tc.name)
		}
		if got := tx.Inputs()[0].Pure; !bytes.Equal(got, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestResultChaining(t *testing.T) {
	t.Parallel()

	pkg := ledger.MustParseAddress("0xabc")
	tx := New()
	a, _ := tx.Pure(uint64(1))
	first := tx.MoveCall(pkg, "m", "first", a, tx.Clock())
	second := tx.MoveCall(pkg, "m", "second", first, tx.Clock())
	recipient, _ := tx.Pure(ledger.MustParseAddress("0x1"))
	tx.TransferObjects([]Argument{second}, recipient)

	if len(tx.Inputs()) != 3 {
		t.Fatalf("expected clock to be deduplicated, got %d inputs", len(tx.Inputs()))
	}
	cmds := tx.Commands()
	if len(cmds) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(cmds))
	}
	if idx, ok := cmds[1].MoveCall.Arguments[0].ResultIndex(); !ok || idx != 0 {
		t.Fatalf("second call should consume result 0")
	}
	if idx, ok := cmds[2].TransferObjects.Objects[0].ResultIndex(); !ok || idx != 1 {
		t.Fatalf("transfer should move result 1")
	}
	if got := cmds[0].MoveCall.Target(); got != pkg.String()+"::m::first" {
		t.Fatalf("unexpected target %s", got)
	}
	if len(tx.PendingObjects()) != 0 {
		t.Fatalf("clock must not require resolution")
	}
}

func TestDataRequiresResolvedObjects(t *testing.T) {
	t.Parallel()

	pkg := ledger.MustParseAddress("0xabc")
	agent := ledger.MustParseAddress("0x77")
	tx := New()
	tx.MoveCall(pkg, "m", "f", tx.Object(agent, true))

	if got := tx.PendingObjects(); len(got) != 1 || got[0] != agent {
		t.Fatalf("unexpected pending objects %v", got)
	}
	if _, err := tx.Data(ledger.Address{}, GasData{}, nil); err == nil {
		t.Fatalf("expected unresolved object error")
	}

	shared := ResolveShared(agent, 9, false)
	data, err := tx.Data(ledger.MustParseAddress("0x5"), GasData{Price: 1000, Budget: 10}, map[ledger.Address]ObjectArg{agent: shared})
	if err != nil {
		t.Fatalf("data: %v", err)
	}
	in := data.V1.Kind.ProgrammableTransaction.Inputs[0]
	if in.Object == nil || in.Object.SharedObject == nil || !in.Object.SharedObject.Mutable {
		t.Fatalf("expected mutable shared input, got %+v", in)
	}
	if data.V1.GasData.Owner != ledger.MustParseAddress("0x5") {
		t.Fatalf("gas owner should default to sender")
	}

	raw, err := Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if raw[0] != 0 || raw[1] != 0 || raw[2] != 1 {
		t.Fatalf("unexpected prefix %v", raw[:3])
	}
	if Digest(raw) != Digest(raw) || Digest(raw) == Digest(append(raw, 0)) {
		t.Fatalf("digest must be deterministic and content dependent")
	}
}

func TestDataRejectsEmptyTransaction(t *testing.T) {
	t.Parallel()

	if _, err := New().Data(ledger.Address{}, GasData{}, nil); err == nil {
		t.Fatalf("expected error for empty transaction")
	}
}

func TestWireRefDecodesDigest(t *testing.T) {
	t.Parallel()

	digest := make([]byte, 32)
	digest[0] = 9
	ref, err := WireRef(ledger.ObjectRef{ObjectID: ledger.MustParseAddress("0x1"), Version: 4, Digest: base58.Encode(digest)})
	if err != nil {
		t.Fatalf("wire ref: %v", err)
	}
	if ref.Version != 4 || !bytes.Equal(ref.Digest, digest) {
		t.Fatalf("unexpected ref %+v", ref)
	}
	if _, err := WireRef(ledger.ObjectRef{Digest: "0OIl"}); err == nil {
		t.Fatalf("expected invalid base58 error")
	}
	if _, err := WireRef(ledger.ObjectRef{Digest: base58.Encode([]byte{1, 2})}); err == nil {
		t.Fatalf("expected short digest error")
	}
}
