package suiai

import (
	"SuiAI-SDK/internal/builder"
	"SuiAI-SDK/internal/keys"
	"SuiAI-SDK/internal/ledger"
	"SuiAI-SDK/internal/response"
)

// Identity is an ed25519 signing identity and its Sui address.
type Identity = keys.Identity

// ModelConfig describes a registrable ML model.
type ModelConfig = builder.ModelConfig

// AgentConfig describes an agent bound to a previously created model.
type AgentConfig = builder.AgentConfig

// ExecutionContext is one inference request.
type ExecutionContext = builder.ExecutionContext

// AgentResponse is the result of one inference invocation.
type AgentResponse = response.AgentResponse

// Decoder extracts program-defined inference output from effects.
type Decoder = response.Decoder

// DecoderFunc adapts a function to Decoder.
type DecoderFunc = response.DecoderFunc

// Output is what a Decoder produces.
type Output = response.Output

// Effects is the ledger's report of an executed transaction.
type Effects = ledger.Effects

// ObjectSnapshot is the current on-ledger state of one object.
type ObjectSnapshot = ledger.ObjectSnapshot

// LedgerClient is the fullnode surface the SDK depends on.
type LedgerClient = ledger.Client

// Receipt summarises a successful create operation.
type Receipt struct {
	Digest         string   `json:"digest"`
	CreatedObjects []string `json:"created_objects"`
	GasUsed        uint64   `json:"gas_used"`
}
