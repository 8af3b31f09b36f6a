package builder

import (
	"fmt"

	"SuiAI-SDK/internal/ledger"
	"SuiAI-SDK/internal/ptb"
)

// Move modules of the deployed package.
const (
	ModuleModel = "ai_model"
	ModuleAgent = "ai_agent"
)

// EntryPoint names one public function of the deployed package.
type EntryPoint struct {
	Module   string
	Function string
}

// Target renders <package>::<module>::<function>.
func (e EntryPoint) Target(pkg ledger.Address) string {
	return fmt.Sprintf("%s::%s::%s", pkg, e.Module, e.Function)
}

// Known entry points. Calls go through the typed helpers below so argument
// lists are checked by the compiler rather than assembled ad hoc.
var (
	CreateModelConfig      = EntryPoint{Module: ModuleModel, Function: "create_model_config"}
	CreateModel            = EntryPoint{Module: ModuleModel, Function: "create_model"}
	CreateAgent            = EntryPoint{Module: ModuleAgent, Function: "create_agent"}
	CreateExecutionContext = EntryPoint{Module: ModuleAgent, Function: "create_execution_context"}
	ExecuteInference       = EntryPoint{Module: ModuleAgent, Function: "execute_inference"}
)

// EntryPoints lists every registered entry point.
func EntryPoints() []EntryPoint {
	return []EntryPoint{CreateModelConfig, CreateModel, CreateAgent, CreateExecutionContext, ExecuteInference}
}

type modelConfigArgs struct {
	InputShape         []uint64
	OutputShape        []uint64
	ModelSizeBytes     uint64
	MaxInferenceTimeMs uint64
	RequiredMemoryMb   uint64
	SupportedFormats   []string
}

type modelArgs struct {
	Name        string
	Description string
	ModelType   uint8
	Version     string
	ModelHash   string
	ModelURL    string
	Config      ptb.Argument
	IsPublic    bool
}

type agentArgs struct {
	Name         string
	Description  string
	ModelID      ledger.Address
	Capabilities []string
}

type executionContextArgs struct {
	RequestID string
	InputData []byte
}

// pureArgs encodes values in order, stopping at the first failure.
func pureArgs(tx *ptb.Transaction, values ...any) ([]ptb.Argument, error) {
	args := make([]ptb.Argument, 0, len(values))
	for _, v := range values {
		arg, err := tx.Pure(v)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func callCreateModelConfig(tx *ptb.Transaction, pkg ledger.Address, a modelConfigArgs) (ptb.Argument, error) {
	args, err := pureArgs(tx,
		a.InputShape,
		a.OutputShape,
		a.ModelSizeBytes,
		a.MaxInferenceTimeMs,
		a.RequiredMemoryMb,
		a.SupportedFormats,
	)
	if err != nil {
		return ptb.Argument{}, err
	}
	return tx.MoveCall(pkg, CreateModelConfig.Module, CreateModelConfig.Function, args...), nil
}

func callCreateModel(tx *ptb.Transaction, pkg ledger.Address, a modelArgs) (ptb.Argument, error) {
	head, err := pureArgs(tx, a.Name, a.Description, a.ModelType, a.Version, a.ModelHash, a.ModelURL)
	if err != nil {
		return ptb.Argument{}, err
	}
	public, err := tx.Pure(a.IsPublic)
	if err != nil {
		return ptb.Argument{}, err
	}
	args := append(head, a.Config, public, tx.Clock())
	return tx.MoveCall(pkg, CreateModel.Module, CreateModel.Function, args...), nil
}

func callCreateAgent(tx *ptb.Transaction, pkg ledger.Address, a agentArgs) (ptb.Argument, error) {
	args, err := pureArgs(tx, a.Name, a.Description, a.ModelID, a.Capabilities)
	if err != nil {
		return ptb.Argument{}, err
	}
	return tx.MoveCall(pkg, CreateAgent.Module, CreateAgent.Function, append(args, tx.Clock())...), nil
}

func callCreateExecutionContext(tx *ptb.Transaction, pkg ledger.Address, a executionContextArgs) (ptb.Argument, error) {
	args, err := pureArgs(tx, a.RequestID, a.InputData)
	if err != nil {
		return ptb.Argument{}, err
	}
	return tx.MoveCall(pkg, CreateExecutionContext.Module, CreateExecutionContext.Function, append(args, tx.Clock())...), nil
}

func callExecuteInference(tx *ptb.Transaction, pkg ledger.Address, agent ledger.Address, execCtx ptb.Argument) ptb.Argument {
	return tx.MoveCall(pkg, ExecuteInference.Module, ExecuteInference.Function, tx.Object(agent, true), execCtx, tx.Clock())
}
