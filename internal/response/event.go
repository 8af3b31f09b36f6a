package response

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	xerrors "SuiAI-SDK/internal/errors"
	"SuiAI-SDK/internal/ledger"
)

// InferenceEventSuffix identifies the event emitted by execute_inference.
const InferenceEventSuffix = "::ai_agent::InferenceCompleted"

// EventDecoder reads the InferenceCompleted event. When Package is set only
// events from that package are considered.
type EventDecoder struct {
	Package ledger.Address
}

type inferenceEvent struct {
	RequestID       *string         `json:"request_id"`
	OutputData      json.RawMessage `json:"output_data"`
	ConfidenceScore json.RawMessage `json:"confidence_score"`
	ExecutionTimeMs json.RawMessage `json:"execution_time_ms"`
}

// Decode implements Decoder.
func (d EventDecoder) Decode(requestID string, effects ledger.Effects) (Output, error) {
	var (
		candidates int
		lastID     string
	)
	for _, ev := range effects.Events {
		if !strings.HasSuffix(ev.Type, InferenceEventSuffix) {
			continue
		}
		if !d.Package.IsZero() && ev.PackageID != d.Package {
			continue
		}
		candidates++
		var payload inferenceEvent
		if err := json.Unmarshal(ev.ParsedJSON, &payload); err != nil {
			return Output{}, decodingError("推理事件不是合法的 JSON", err)
		}
		if payload.RequestID == nil {
			return Output{}, decodingError("推理事件缺少 request_id", nil)
		}
		if *payload.RequestID != requestID {
			lastID = *payload.RequestID
			continue
		}
		return payload.output()
	}
	if candidates == 0 {
		return Output{}, decodingError("effects 中没有 InferenceCompleted 事件", nil)
	}
	return Output{}, decodingError(fmt.Sprintf("推理事件的 request_id 不匹配: 期望 %q, 实际 %q", requestID, lastID), nil)
}

func (p inferenceEvent) output() (Output, error) {
	data, err := decodeBytes(p.OutputData)
	if err != nil {
		return Output{}, decodingError("output_data 无法解析", err)
	}
	confidence, err := decodeU64(p.ConfidenceScore)
	if err != nil {
		return Output{}, decodingError("confidence_score 无法解析", err)
	}
	elapsed, err := decodeU64(p.ExecutionTimeMs)
	if err != nil {
		return Output{}, decodingError("execution_time_ms 无法解析", err)
	}
	return Output{OutputData: data, ConfidenceScore: confidence, ExecutionTimeMs: elapsed}, nil
}

// decodeBytes accepts a vector<u8> rendered as a number array or as base64.
func decodeBytes(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("字段缺失")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return base64.StdEncoding.DecodeString(s)
	}
	var nums []uint8
	if err := json.Unmarshal(raw, &nums); err != nil {
		return nil, err
	}
	if nums == nil {
		nums = []uint8{}
	}
	return nums, nil
}

// decodeU64 accepts a JSON number or a decimal string.
func decodeU64(raw json.RawMessage) (uint64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("字段缺失")
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
	}
	return strconv.ParseUint(text, 10, 64)
}

func decodingError(message string, cause error) error {
	if cause == nil {
		return xerrors.New(xerrors.CodeDecoding, message)
	}
	return xerrors.Wrap(xerrors.CodeDecoding, cause, message)
}
