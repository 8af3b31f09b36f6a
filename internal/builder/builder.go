// Package builder turns typed model, agent and inference requests into
// programmable transactions addressed to the deployed AI package. Builders
// are pure: they validate locally and describe the work, they never touch
// the network.
package builder

import (
	"fmt"
	"strings"

	"SuiAI-SDK/internal/errors"
	"SuiAI-SDK/internal/keys"
	"SuiAI-SDK/internal/ledger"
	"SuiAI-SDK/internal/ptb"
)

// ModelConfig describes a registrable ML model.
type ModelConfig struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	ModelType          uint8    `json:"model_type"`
	Version            string   `json:"version"`
	ModelHash          string   `json:"model_hash"`
	ModelURL           string   `json:"model_url"`
	InputShape         []uint64 `json:"input_shape"`
	OutputShape        []uint64 `json:"output_shape"`
	ModelSizeBytes     uint64   `json:"model_size_bytes"`
	MaxInferenceTimeMs uint64   `json:"max_inference_time_ms"`
	RequiredMemoryMb   uint64   `json:"required_memory_mb"`
	SupportedFormats   []string `json:"supported_formats"`
	IsPublic           bool     `json:"is_public"`
}

// AgentConfig describes an agent bound to one model by id.
type AgentConfig struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	ModelID      string   `json:"model_id"`
	Capabilities []string `json:"capabilities"`
}

// ExecutionContext is one inference request.
type ExecutionContext struct {
	RequestID string `json:"request_id"`
	InputData []byte `json:"input_data"`
	// ModelType selects the output decoder; zero uses the default.
	ModelType uint8 `json:"model_type,omitempty"`
}

// Builder assembles transactions for one deployed package.
type Builder struct {
	pkg ledger.Address
}

// New parses the package address.
func New(packageID string) (*Builder, error) {
	pkg, err := ledger.ParseAddress(packageID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidArgument, err, "packageId 不合法")
	}
	return &Builder{pkg: pkg}, nil
}

// Package returns the package address.
func (b *Builder) Package() ledger.Address {
	return b.pkg
}

// CreateModel builds create_model_config → create_model → transfer.
func (b *Builder) CreateModel(id *keys.Identity, cfg ModelConfig) (*ptb.Transaction, error) {
	if id == nil {
		return nil, errors.New(errors.CodeMissingIdentity, "创建模型需要签名身份")
	}

	tx := ptb.New()
	modelConfig, err := callCreateModelConfig(tx, b.pkg, modelConfigArgs{
		InputShape:         nonNil(cfg.InputShape),
		OutputShape:        nonNil(cfg.OutputShape),
		ModelSizeBytes:     cfg.ModelSizeBytes,
		MaxInferenceTimeMs: cfg.MaxInferenceTimeMs,
		RequiredMemoryMb:   cfg.RequiredMemoryMb,
		SupportedFormats:   nonNil(cfg.SupportedFormats),
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidArgument, err, "构建模型配置失败")
	}
	model, err := callCreateModel(tx, b.pkg, modelArgs{
		Name:        cfg.Name,
		Description: cfg.Description,
		ModelType:   cfg.ModelType,
		Version:     cfg.Version,
		ModelHash:   cfg.ModelHash,
		ModelURL:    cfg.ModelURL,
		Config:      modelConfig,
		IsPublic:    cfg.IsPublic,
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidArgument, err, "构建模型失败")
	}
	if err := transferToSender(tx, id, model); err != nil {
		return nil, err
	}
	return tx, nil
}

// CreateAgent builds create_agent → transfer.
func (b *Builder) CreateAgent(id *keys.Identity, cfg AgentConfig) (*ptb.Transaction, error) {
	if id == nil {
		return nil, errors.New(errors.CodeMissingIdentity, "创建智能体需要签名身份")
	}
	modelID, err := parseObjectID("modelId", cfg.ModelID)
	if err != nil {
		return nil, err
	}

	tx := ptb.New()
	agent, err := callCreateAgent(tx, b.pkg, agentArgs{
		Name:         cfg.Name,
		Description:  cfg.Description,
		ModelID:      modelID,
		Capabilities: nonNil(cfg.Capabilities),
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidArgument, err, "构建智能体失败")
	}
	if err := transferToSender(tx, id, agent); err != nil {
		return nil, err
	}
	return tx, nil
}

// ExecuteInference builds create_execution_context → execute_inference. The
// returned response is consumed inside the transaction and not transferred.
func (b *Builder) ExecuteInference(id *keys.Identity, agentID string, execCtx ExecutionContext) (*ptb.Transaction, error) {
	if id == nil {
		return nil, errors.New(errors.CodeMissingIdentity, "执行推理需要签名身份")
	}
	agent, err := parseObjectID("agentId", agentID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(execCtx.RequestID) == "" {
		return nil, errors.New(errors.CodeInvalidArgument, "requestId 不能为空")
	}

	tx := ptb.New()
	ctxArg, err := callCreateExecutionContext(tx, b.pkg, executionContextArgs{
		RequestID: execCtx.RequestID,
		InputData: nonNil(execCtx.InputData),
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidArgument, err, "构建执行上下文失败")
	}
	callExecuteInference(tx, b.pkg, agent, ctxArg)
	return tx, nil
}

func transferToSender(tx *ptb.Transaction, id *keys.Identity, objects ...ptb.Argument) error {
	recipient, err := tx.Pure(id.Address())
	if err != nil {
		return errors.Wrap(errors.CodeInvalidArgument, err, "编码接收地址失败")
	}
	tx.TransferObjects(objects, recipient)
	return nil
}

func parseObjectID(field, raw string) (ledger.Address, error) {
	addr, err := ledger.ParseAddress(raw)
	if err != nil {
		return ledger.Address{}, errors.Wrap(errors.CodeInvalidArgument, err, fmt.Sprintf("%s 不是合法的对象 ID", field),
			errors.WithMetadata(errors.MetaObjectID, raw))
	}
	return addr, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
