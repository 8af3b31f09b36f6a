package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"SuiAI-SDK/internal/ledger"
	"SuiAI-SDK/internal/ledger/ledgertest"
	"SuiAI-SDK/sdk/go/suiai"
)

const (
	packageID = "0xabc"
	mnemonic  = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := run(ctx, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// run walks through model registration, agent creation and one inference
// against an in-memory ledger. Swap WithLedgerClient for a real RPCURL to run
// it against a fullnode.
func run(ctx context.Context, w io.Writer) (suiai.AgentResponse, error) {
	requestID := suiai.NewRequestID()
	fake := ledgertest.NewFake()
	fake.OnExecute(simulate(fake, requestID))

	id, err := suiai.IdentityFromMnemonic(mnemonic)
	if err != nil {
		return suiai.AgentResponse{}, fmt.Errorf("identity: %w", err)
	}

	sdk, err := suiai.New(ctx, suiai.Config{
		Network:   suiai.NetworkLocalnet,
		PackageID: packageID,
		Identity:  id,
	}, suiai.WithLedgerClient(fake))
	if err != nil {
		return suiai.AgentResponse{}, fmt.Errorf("new sdk: %w", err)
	}
	defer sdk.Close()

	model, err := sdk.CreateModelReceipt(ctx, suiai.ModelConfig{
		Name:               "sentiment",
		Description:        "binary sentiment classifier",
		ModelType:          1,
		Version:            "1.0.0",
		ModelHash:          "sha256:demo",
		ModelURL:           "https://models.example.com/sentiment.onnx",
		InputShape:         []uint64{1, 128},
		OutputShape:        []uint64{1, 2},
		ModelSizeBytes:     4 << 20,
		MaxInferenceTimeMs: 200,
		RequiredMemoryMb:   64,
		SupportedFormats:   []string{"onnx"},
		IsPublic:           true,
	})
	if err != nil {
		return suiai.AgentResponse{}, fmt.Errorf("create model: %w", err)
	}
	fmt.Fprintf(w, "model  %s (tx %s)\n", model.CreatedObjects[0], model.Digest)

	agent, err := sdk.CreateAgentReceipt(ctx, suiai.AgentConfig{
		Name:         "reviewer",
		Description:  "scores product reviews",
		ModelID:      model.CreatedObjects[0],
		Capabilities: []string{"sentiment"},
	})
	if err != nil {
		return suiai.AgentResponse{}, fmt.Errorf("create agent: %w", err)
	}
	fmt.Fprintf(w, "agent  %s (tx %s)\n", agent.CreatedObjects[0], agent.Digest)

	resp, err := sdk.ExecuteInference(ctx, agent.CreatedObjects[0], suiai.ExecutionContext{
		RequestID: requestID,
		InputData: []byte("great product, would buy again"),
		ModelType: 1,
	})
	if err != nil {
		return resp, fmt.Errorf("inference %s: %w", resp.RequestID, err)
	}
	out, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Fprintln(w, string(out))
	return resp, nil
}

// simulate registers created objects so later calls can resolve them, and
// answers the inference for requestID with an InferenceCompleted event.
func simulate(fake *ledgertest.Fake, requestID string) ledgertest.ExecuteFunc {
	return func(sender ledger.Address, txBytes []byte, digest string) (ledger.Effects, error) {
		if !bytes.Contains(txBytes, []byte("execute_inference")) {
			effects := ledgertest.SuccessEffects(sender, digest)
			typ := packageID + "::ai_model::Model"
			if bytes.Contains(txBytes, []byte("create_agent")) {
				typ = packageID + "::ai_agent::Agent"
			}
			for _, obj := range effects.Created {
				fake.AddOwned(obj.Ref.ObjectID, typ, sender)
			}
			return effects, nil
		}

		if !bytes.Contains(txBytes, []byte(requestID)) {
			return ledger.Effects{Digest: digest, Error: "unknown request"}, nil
		}
		payload, _ := json.Marshal(map[string]any{
			"request_id":        requestID,
			"output_data":       []int{0, 1},
			"confidence_score":  "9120",
			"execution_time_ms": "42",
		})
		return ledger.Effects{
			Digest:  digest,
			Success: true,
			GasUsed: &ledger.GasCost{ComputationCost: ledgertest.DefaultComputationCost},
			Events: []ledger.Event{{
				Type:       packageID + "::ai_agent::InferenceCompleted",
				PackageID:  ledger.MustParseAddress(packageID),
				Module:     "ai_agent",
				Sender:     sender,
				ParsedJSON: payload,
			}},
		}, nil
	}
}
