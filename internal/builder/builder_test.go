package builder

import (
	"bytes"
	"testing"

	"SuiAI-SDK/internal/errors"
	"SuiAI-SDK/internal/keys"
	"SuiAI-SDK/internal/ledger"
	"SuiAI-SDK/internal/ptb"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func newTestBuilder(t *testing.T) (*Builder, *keys.Identity) {
	t.Helper()

	b, err := New("0xabc")
	if err != nil {
		t.Fatalf("new builder: %v", err)
	}
	id, err := keys.FromMnemonic(testMnemonic)
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	return b, id
}

func sampleModel() ModelConfig {
	return ModelConfig{
		Name:               "Basic Text Classifier",
		Description:        "A simple text classification model",
		ModelType:          0,
		Version:            "1.0.0",
		ModelHash:          "QmExample123",
		ModelURL:           "https://ipfs.io/ipfs/QmExample123",
		InputShape:         []uint64{512},
		OutputShape:        []uint64{10},
		ModelSizeBytes:     1024000,
		MaxInferenceTimeMs: 1000,
		RequiredMemoryMb:   100,
		SupportedFormats:   []string{"onnx", "pytorch"},
		IsPublic:           true,
	}
}

// recipientOf returns the pure bytes passed as the transfer address.
func recipientOf(t *testing.T, tx *ptb.Transaction, cmd ptb.Command) []byte {
	t.Helper()

	idx, ok := cmd.TransferObjects.Address.InputIndex()
	if !ok {
		t.Fatalf("transfer address is not an input")
	}
	return tx.Inputs()[idx].Pure
}

func TestCreateModelTransfersToSigner(t *testing.T) {
	t.Parallel()

	b, id := newTestBuilder(t)
	tx, err := b.CreateModel(id, sampleModel())
	if err != nil {
		t.Fatalf("create model: %v", err)
	}

	cmds := tx.Commands()
	if len(cmds) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(cmds))
	}
	if got := cmds[0].MoveCall.Target(); got != CreateModelConfig.Target(b.Package()) {
		t.Fatalf("unexpected first target %s", got)
	}
	if got := cmds[1].MoveCall.Target(); got != CreateModel.Target(b.Package()) {
		t.Fatalf("unexpected second target %s", got)
	}

	args := cmds[1].MoveCall.Arguments
	if len(args) != 9 {
		t.Fatalf("create_model expects 9 arguments, got %d", len(args))
	}
	if idx, ok := args[6].ResultIndex(); !ok || idx != 0 {
		t.Fatalf("create_model must consume the config result")
	}
	clockIdx, _ := args[8].InputIndex()
	if in := tx.Inputs()[clockIdx]; in.ObjectID != ledger.ClockObjectID || in.Shared == nil || in.Mutable {
		t.Fatalf("last argument must be the immutable clock, got %+v", in)
	}

	last := cmds[2]
	if last.TransferObjects == nil {
		t.Fatalf("final step must be a transfer")
	}
	if idx, ok := last.TransferObjects.Objects[0].ResultIndex(); !ok || idx != 1 {
		t.Fatalf("transfer must move the created model")
	}
	addr := id.Address()
	if got := recipientOf(t, tx, last); !bytes.Equal(got, addr[:]) {
		t.Fatalf("model transferred to %x, want %s", got, addr)
	}
}

func TestCreateAgent(t *testing.T) {
	t.Parallel()

	b, id := newTestBuilder(t)
	tx, err := b.CreateAgent(id, AgentConfig{Name: "A", Description: "d", ModelID: "0x1", Capabilities: []string{"x"}})
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}
	cmds := tx.Commands()
	if len(cmds) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(cmds))
	}
	call := cmds[0].MoveCall
	if call.Module != ModuleAgent || call.Function != "create_agent" || len(call.Arguments) != 5 {
		t.Fatalf("unexpected call %+v", call)
	}
	modelIdx, _ := call.Arguments[2].InputIndex()
	want := ledger.MustParseAddress("0x1")
	if got := tx.Inputs()[modelIdx].Pure; !bytes.Equal(got, want[:]) {
		t.Fatalf("model id encoded as %x", got)
	}
	if idx, ok := cmds[1].TransferObjects.Objects[0].ResultIndex(); !ok || idx != 0 {
		t.Fatalf("transfer must move the created agent")
	}
	addr := id.Address()
	if got := recipientOf(t, tx, cmds[1]); !bytes.Equal(got, addr[:]) {
		t.Fatalf("agent transferred to %x", got)
	}
}

func TestExecuteInferenceHasNoTransfer(t *testing.T) {
	t.Parallel()

	b, id := newTestBuilder(t)
	tx, err := b.ExecuteInference(id, "0x77", ExecutionContext{RequestID: "req_1", InputData: []byte("hello")})
	if err != nil {
		t.Fatalf("execute inference: %v", err)
	}
	cmds := tx.Commands()
	if len(cmds) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(cmds))
	}
	for _, cmd := range cmds {
		if cmd.TransferObjects != nil {
			t.Fatalf("inference must not transfer objects")
		}
	}
	call := cmds[1].MoveCall
	if call.Function != "execute_inference" {
		t.Fatalf("unexpected function %s", call.Function)
	}
	agentIdx, _ := call.Arguments[0].InputIndex()
	if in := tx.Inputs()[agentIdx]; in.ObjectID != ledger.MustParseAddress("0x77") || !in.Mutable {
		t.Fatalf("agent must be a mutable object input, got %+v", in)
	}
	if idx, ok := call.Arguments[1].ResultIndex(); !ok || idx != 0 {
		t.Fatalf("inference must consume the execution context")
	}
	if pending := tx.PendingObjects(); len(pending) != 1 {
		t.Fatalf("expected only the agent to need resolution, got %v", pending)
	}
}

func TestBuildersRequireIdentity(t *testing.T) {
	t.Parallel()

	b, _ := newTestBuilder(t)
	_, errModel := b.CreateModel(nil, sampleModel())
	_, errAgent := b.CreateAgent(nil, AgentConfig{ModelID: "0x1"})
	_, errInfer := b.ExecuteInference(nil, "0x1", ExecutionContext{RequestID: "r"})

	for _, err := range []error{errModel, errAgent, errInfer} {
		if errors.CodeOf(err) != errors.CodeMissingIdentity {
			t.Fatalf("expected MISSING_IDENTITY, got %v", err)
		}
	}
}

func TestBuildersValidateReferences(t *testing.T) {
	t.Parallel()

	b, id := newTestBuilder(t)
	if _, err := b.CreateAgent(id, AgentConfig{ModelID: "model-object-id-from-previous-step"}); errors.CodeOf(err) != errors.CodeInvalidArgument {
		t.Fatalf("expected INVALID_ARGUMENT for bad model id, got %v", err)
	}
	if _, err := b.ExecuteInference(id, "agent-object-id", ExecutionContext{RequestID: "r"}); errors.CodeOf(err) != errors.CodeInvalidArgument {
		t.Fatalf("expected INVALID_ARGUMENT for bad agent id, got %v", err)
	}
	if _, err := b.ExecuteInference(id, "0x1", ExecutionContext{}); errors.CodeOf(err) != errors.CodeInvalidArgument {
		t.Fatalf("expected INVALID_ARGUMENT for empty request id, got %v", err)
	}
	if _, err := New("not-an-address"); errors.CodeOf(err) != errors.CodeInvalidArgument {
		t.Fatalf("expected INVALID_ARGUMENT for bad package, got %v", err)
	}
}

func TestEntryPointTargets(t *testing.T) {
	t.Parallel()

	pkg := ledger.MustParseAddress("0xabc")
	seen := map[string]bool{}
	for _, ep := range EntryPoints() {
		target := ep.Target(pkg)
		if seen[target] {
			t.Fatalf("duplicate entry point %s", target)
		}
		seen[target] = true
	}
	if got := CreateAgent.Target(pkg); got != pkg.String()+"::ai_agent::create_agent" {
		t.Fatalf("unexpected target %s", got)
	}
}
