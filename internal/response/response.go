// Package response maps transaction effects into caller-facing results.
//
// Create operations only need the digest. Inference results are extracted
// by a Decoder chosen by model type; the default decoder reads the
// InferenceCompleted event emitted by the agent module. Decoding never
// falls back to empty values: a payload that cannot be read is reported as
// DECODING_ERROR while the response still carries the request id and gas.
package response

import (
	"fmt"
	"sync"

	xerrors "SuiAI-SDK/internal/errors"
	"SuiAI-SDK/internal/ledger"
)

// AgentResponse is the result of one inference invocation.
type AgentResponse struct {
	RequestID       string `json:"request_id"`
	OutputData      []byte `json:"output_data"`
	ConfidenceScore uint64 `json:"confidence_score"`
	ExecutionTimeMs uint64 `json:"execution_time_ms"`
	GasUsed         uint64 `json:"gas_used"`
}

// Output is the decoded, program-defined part of a response.
type Output struct {
	OutputData      []byte
	ConfidenceScore uint64
	ExecutionTimeMs uint64
}

// Decoder extracts inference output for requestID from effects.
type Decoder interface {
	Decode(requestID string, effects ledger.Effects) (Output, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(requestID string, effects ledger.Effects) (Output, error)

// Decode implements Decoder.
func (f DecoderFunc) Decode(requestID string, effects ledger.Effects) (Output, error) {
	return f(requestID, effects)
}

// Digest returns the transaction digest used as the success token of create
// operations.
func Digest(effects ledger.Effects) string {
	return effects.Digest
}

// MapInference builds the AgentResponse for requestID. RequestID and GasUsed
// are always populated, including when the returned error is non-nil.
func MapInference(requestID string, effects ledger.Effects, decoder Decoder) (AgentResponse, error) {
	resp := AgentResponse{
		RequestID: requestID,
		GasUsed:   effects.ComputationCost(),
	}
	if decoder == nil {
		return resp, xerrors.New(xerrors.CodeDecoding, "未配置推理输出解码器",
			xerrors.WithMetadata(xerrors.MetaRequestID, requestID))
	}
	out, err := decoder.Decode(requestID, effects)
	if err != nil {
		if xerrors.CodeOf(err) != xerrors.CodeDecoding {
			err = xerrors.Wrap(xerrors.CodeDecoding, err, "解析推理输出失败")
		}
		return resp, xerrors.Annotate(err,
			xerrors.WithMetadata(xerrors.MetaRequestID, requestID),
			xerrors.WithMetadata(xerrors.MetaDigest, effects.Digest))
	}
	resp.OutputData = out.OutputData
	resp.ConfidenceScore = out.ConfidenceScore
	resp.ExecutionTimeMs = out.ExecutionTimeMs
	return resp, nil
}

// Registry selects decoders by model type, falling back to a default.
type Registry struct {
	mu       sync.RWMutex
	fallback Decoder
	byType   map[uint8]Decoder
}

// NewRegistry returns a registry whose fallback is fallback, or the
// default EventDecoder when nil.
func NewRegistry(fallback Decoder) *Registry {
	if fallback == nil {
		fallback = EventDecoder{}
	}
	return &Registry{fallback: fallback, byType: make(map[uint8]Decoder)}
}

// Register binds a decoder to a model type.
func (r *Registry) Register(modelType uint8, d Decoder) error {
	if d == nil {
		return xerrors.New(xerrors.CodeInvalidArgument, fmt.Sprintf("模型类型 %d 的解码器为空", modelType))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[modelType] = d
	return nil
}

// For returns the decoder for modelType.
func (r *Registry) For(modelType uint8) Decoder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.byType[modelType]; ok {
		return d
	}
	return r.fallback
}
