package suiai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	xerrors "SuiAI-SDK/internal/errors"
	"SuiAI-SDK/internal/ledger"
	"SuiAI-SDK/internal/ledger/ledgertest"
	"SuiAI-SDK/pkg/journal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestSDK(t *testing.T, fake *ledgertest.Fake, withIdentity bool, opts ...Option) *SDK {
	t.Helper()

	cfg := Config{Network: "testnet", PackageID: "0xabc"}
	if withIdentity {
		id, err := IdentityFromMnemonic(testMnemonic)
		if err != nil {
			t.Fatalf("identity: %v", err)
		}
		cfg.Identity = id
	}
	opts = append([]Option{WithLedgerClient(fake), WithLogger(quiet)}, opts...)
	sdk, err := New(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("new sdk: %v", err)
	}
	t.Cleanup(sdk.Close)
	return sdk
}

// rejectUnknownModels refuses transactions that reference a model id the
// fake ledger does not hold.
func rejectUnknownModels(fake *ledgertest.Fake, known ledger.Address) {
	fake.OnExecute(func(sender ledger.Address, txBytes []byte, digest string) (ledger.Effects, error) {
		if !bytes.Contains(txBytes, known[:]) {
			return ledger.Effects{}, xerrors.New(xerrors.CodeRejectedTransaction, "model does not exist")
		}
		return ledgertest.SuccessEffects(sender, digest), nil
	})
}

func TestCreateAgentScenario(t *testing.T) {
	t.Parallel()

	fake := ledgertest.NewFake()
	model := ledger.MustParseAddress("0x1")
	rejectUnknownModels(fake, model)
	sdk := newTestSDK(t, fake, true)

	digest, err := sdk.CreateAgent(context.Background(), AgentConfig{
		Name: "A", Description: "d", ModelID: "0x1", Capabilities: []string{"x"},
	})
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}
	if digest == "" {
		t.Fatalf("expected a digest")
	}
}

func TestCreateAgentRejectedForUnknownModel(t *testing.T) {
	t.Parallel()

	fake := ledgertest.NewFake()
	rejectUnknownModels(fake, ledger.MustParseAddress("0x1"))
	sdk := newTestSDK(t, fake, true)

	digest, err := sdk.CreateAgent(context.Background(), AgentConfig{Name: "A", ModelID: "0x2"})
	if !errors.Is(err, ErrRejectedTransaction) {
		t.Fatalf("expected REJECTED_TRANSACTION, got %v", err)
	}
	if digest != "" {
		t.Fatalf("no digest expected on rejection")
	}
	if MetadataOf(err)["digest"] == "" {
		t.Fatalf("rejection should carry the local digest")
	}
}

func TestWritesWithoutIdentityMakeNoCalls(t *testing.T) {
	t.Parallel()

	fake := ledgertest.NewFake()
	sdk := newTestSDK(t, fake, false)
	ctx := context.Background()

	if _, err := sdk.CreateModel(ctx, ModelConfig{Name: "m"}); !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("create model: expected MISSING_IDENTITY, got %v", err)
	}
	if _, err := sdk.CreateAgent(ctx, AgentConfig{Name: "a", ModelID: "0x1"}); !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("create agent: expected MISSING_IDENTITY, got %v", err)
	}
	resp, err := sdk.ExecuteInference(ctx, "0x2", ExecutionContext{RequestID: "R"})
	if !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("inference: expected MISSING_IDENTITY, got %v", err)
	}
	if resp.RequestID != "R" {
		t.Fatalf("request id not echoed: %q", resp.RequestID)
	}
	if fake.TotalCalls() != 0 {
		t.Fatalf("expected zero transport calls, got %d", fake.TotalCalls())
	}
}

func TestSetIdentityEnablesWrites(t *testing.T) {
	t.Parallel()

	fake := ledgertest.NewFake()
	sdk := newTestSDK(t, fake, false)
	id, err := IdentityFromMnemonic(testMnemonic)
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	sdk.SetIdentity(id)
	if sdk.Identity() != id {
		t.Fatalf("identity not stored")
	}

	receipt, err := sdk.CreateModelReceipt(context.Background(), ModelConfig{Name: "m", InputShape: []uint64{1, 3}})
	if err != nil {
		t.Fatalf("create model: %v", err)
	}
	if receipt.Digest == "" || len(receipt.CreatedObjects) != 1 || receipt.GasUsed != ledgertest.DefaultComputationCost {
		t.Fatalf("unexpected receipt %+v", receipt)
	}

	sdk.SetIdentity(nil)
	if _, err := sdk.CreateModel(context.Background(), ModelConfig{Name: "m"}); !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("expected MISSING_IDENTITY after clearing, got %v", err)
	}
}

func TestExecuteInferenceEchoesRequestID(t *testing.T) {
	t.Parallel()

	fake := ledgertest.NewFake()
	agent := ledger.MustParseAddress("0xa9e")
	sdk := newTestSDK(t, fake, true)
	fake.AddOwned(agent, "0xabc::ai_agent::Agent", sdk.Identity().Address())

	fake.OnExecute(func(sender ledger.Address, _ []byte, digest string) (ledger.Effects, error) {
		payload, _ := json.Marshal(map[string]any{
			"request_id":        "req-42",
			"output_data":       []int{7, 8, 9},
			"confidence_score":  "8800",
			"execution_time_ms": "15",
		})
		return ledger.Effects{
			Digest:  digest,
			Success: true,
			GasUsed: &ledger.GasCost{ComputationCost: 4321},
			Events: []ledger.Event{{
				Type:       "0xabc::ai_agent::InferenceCompleted",
				PackageID:  ledger.MustParseAddress("0xabc"),
				Sender:     sender,
				ParsedJSON: payload,
			}},
		}, nil
	})

	resp, err := sdk.ExecuteInference(context.Background(), agent.String(), ExecutionContext{RequestID: "req-42", InputData: []byte("hi")})
	if err != nil {
		t.Fatalf("execute inference: %v", err)
	}
	if resp.RequestID != "req-42" || resp.GasUsed != 4321 || resp.ConfidenceScore != 8800 || resp.ExecutionTimeMs != 15 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if !bytes.Equal(resp.OutputData, []byte{7, 8, 9}) {
		t.Fatalf("unexpected output %v", resp.OutputData)
	}
}

func TestExecuteInferenceDecodeFailureStillEchoes(t *testing.T) {
	t.Parallel()

	fake := ledgertest.NewFake()
	agent := ledger.MustParseAddress("0xa9e")
	sdk := newTestSDK(t, fake, true)
	fake.AddOwned(agent, "0xabc::ai_agent::Agent", sdk.Identity().Address())

	resp, err := sdk.ExecuteInference(context.Background(), agent.String(), ExecutionContext{RequestID: "R"})
	if !errors.Is(err, ErrDecoding) {
		t.Fatalf("expected DECODING_ERROR, got %v", err)
	}
	if resp.RequestID != "R" || resp.GasUsed != ledgertest.DefaultComputationCost {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.OutputData != nil {
		t.Fatalf("output must not be silently defaulted")
	}
}

func TestCustomDecoderByModelType(t *testing.T) {
	t.Parallel()

	fake := ledgertest.NewFake()
	agent := ledger.MustParseAddress("0xa9e")
	decoder := DecoderFunc(func(requestID string, effects Effects) (Output, error) {
		return Output{OutputData: []byte(effects.Digest), ConfidenceScore: 1}, nil
	})
	sdk := newTestSDK(t, fake, true, WithDecoder(2, decoder))
	fake.AddOwned(agent, "0xabc::ai_agent::Agent", sdk.Identity().Address())

	resp, err := sdk.ExecuteInference(context.Background(), agent.String(), ExecutionContext{RequestID: "R", ModelType: 2})
	if err != nil {
		t.Fatalf("execute inference: %v", err)
	}
	if len(resp.OutputData) == 0 || resp.ConfidenceScore != 1 {
		t.Fatalf("custom decoder not used: %+v", resp)
	}
}

func TestLedgerFaultReportsGas(t *testing.T) {
	t.Parallel()

	fake := ledgertest.NewFake()
	agent := ledger.MustParseAddress("0xa9e")
	sdk := newTestSDK(t, fake, true)
	fake.AddOwned(agent, "0xabc::ai_agent::Agent", sdk.Identity().Address())
	fake.OnExecute(func(_ ledger.Address, _ []byte, digest string) (ledger.Effects, error) {
		return ledger.Effects{Digest: digest, Error: "MoveAbort", GasUsed: &ledger.GasCost{ComputationCost: 99}}, nil
	})

	resp, err := sdk.ExecuteInference(context.Background(), agent.String(), ExecutionContext{RequestID: "R"})
	if !errors.Is(err, ErrLedgerFault) {
		t.Fatalf("expected LEDGER_FAULT, got %v", err)
	}
	if resp.RequestID != "R" || resp.GasUsed != 99 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if MetadataOf(err)["request_id"] != "R" {
		t.Fatalf("request id missing from metadata")
	}
}

func TestJournalAndMetrics(t *testing.T) {
	t.Parallel()

	fake := ledgertest.NewFake()
	store := journal.NewMemoryStore(10)
	reg := prometheus.NewRegistry()
	sdk := newTestSDK(t, fake, true, WithJournal(store), WithMetricsRegisterer(reg))
	ctx := context.Background()

	if _, err := sdk.CreateAgent(ctx, AgentConfig{Name: "A", ModelID: "0x1"}); err != nil {
		t.Fatalf("create agent: %v", err)
	}
	if _, err := sdk.ExecuteInference(ctx, "0xdead", ExecutionContext{RequestID: "R"}); !errors.Is(err, ErrRejectedTransaction) {
		t.Fatalf("expected rejection for missing agent, got %v", err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(entries))
	}
	if entries[0].Operation != OpExecuteInference || entries[0].Status != journal.StatusRejected || entries[0].RequestID != "R" {
		t.Fatalf("unexpected rejection entry %+v", entries[0])
	}
	if entries[1].Status != journal.StatusSuccess || entries[1].Digest == "" || len(entries[1].CreatedObjects) != 1 {
		t.Fatalf("unexpected success entry %+v", entries[1])
	}
	if entries[1].Sender != sdk.Identity().Address().String() {
		t.Fatalf("unexpected sender %s", entries[1].Sender)
	}

	if n, err := testutil.GatherAndCount(reg, "suiai_submissions_total"); err != nil || n != 2 {
		t.Fatalf("expected two submission series, got %d (%v)", n, err)
	}
}

func TestQueries(t *testing.T) {
	t.Parallel()

	fake := ledgertest.NewFake()
	sdk := newTestSDK(t, fake, false)
	ctx := context.Background()
	model := ledger.MustParseAddress("0x77")
	fake.AddOwned(model, "0xabc::ai_model::Model", ledger.MustParseAddress("0x5"))

	snap, err := sdk.GetModel(ctx, "0x77")
	if err != nil {
		t.Fatalf("get model: %v", err)
	}
	if snap.Ref.ObjectID != model || snap.Owner.Kind != ledger.OwnerAddress {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if _, err := sdk.GetAgent(ctx, "0x77"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("model must not be returned as an agent, got %v", err)
	}
	if _, err := sdk.GetObject(ctx, "0x404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
	if _, err := sdk.GetObject(ctx, "not-hex"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func TestCollectionQueriesAreNotImplemented(t *testing.T) {
	t.Parallel()

	fake := ledgertest.NewFake()
	sdk := newTestSDK(t, fake, true)
	ctx := context.Background()

	agents, err := sdk.QueryAgentsByOwner(ctx, "0xdead")
	if !errors.Is(err, ErrNotImplemented) || CodeOf(err) != CodeNotImplemented {
		t.Fatalf("expected NOT_IMPLEMENTED, got %v", err)
	}
	if agents != nil {
		t.Fatalf("expected no result, got %v", agents)
	}
	if _, err := sdk.QueryPublicModels(ctx); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected NOT_IMPLEMENTED, got %v", err)
	}
	if fake.TotalCalls() != 0 {
		t.Fatalf("collection queries must not reach the ledger")
	}
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, err := New(ctx, Config{Network: "testnet"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("missing package id: expected INVALID_ARGUMENT, got %v", err)
	}
	if _, err := New(ctx, Config{Network: "moonnet", PackageID: "0xabc"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("unknown network: expected INVALID_ARGUMENT, got %v", err)
	}

	sdk, err := New(ctx, Config{Network: "TestNet", PackageID: "0xabc"}, WithLogger(quiet))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer sdk.Close()
	if sdk.Network() != NetworkTestnet {
		t.Fatalf("unexpected network %s", sdk.Network())
	}
	if sdk.PackageID() != ledger.MustParseAddress("0xabc").String() {
		t.Fatalf("unexpected package id %s", sdk.PackageID())
	}
}
