// Package suiai is the Go client for the on-chain AI package: it registers
// models and agents, runs inference, and reads objects back, by building
// Sui programmable transactions and submitting them with the active
// identity.
package suiai

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"SuiAI-SDK/internal/builder"
	xerrors "SuiAI-SDK/internal/errors"
	"SuiAI-SDK/internal/ledger"
	"SuiAI-SDK/internal/ledger/sui"
	"SuiAI-SDK/internal/observability/metrics"
	"SuiAI-SDK/internal/ptb"
	"SuiAI-SDK/internal/response"
	"SuiAI-SDK/internal/submit"
	"SuiAI-SDK/pkg/journal"
	"SuiAI-SDK/pkg/logger"
)

// Networks with built-in endpoints.
const (
	NetworkMainnet  = ledger.NetworkMainnet
	NetworkTestnet  = ledger.NetworkTestnet
	NetworkDevnet   = ledger.NetworkDevnet
	NetworkLocalnet = ledger.NetworkLocalnet
)

// DefaultGasBudget is the per-transaction budget in MIST.
const DefaultGasBudget = submit.DefaultGasBudget

// Operation names used in logs, metrics and the journal.
const (
	OpCreateModel      = "create_model"
	OpCreateAgent      = "create_agent"
	OpExecuteInference = "execute_inference"
)

// Config selects the network and deployed package.
type Config struct {
	// Network is mainnet, testnet, devnet, localnet or a name defined in
	// NetworksFile.
	Network string
	// PackageID is the address of the deployed AI package. Required.
	PackageID string
	// RPCURL overrides the endpoint of Network.
	RPCURL string
	// Identity is the initial signing identity; it may be set later.
	Identity *Identity
	// GasBudget defaults to DefaultGasBudget.
	GasBudget uint64
	// NetworksFile is an optional YAML file with extra network endpoints.
	NetworksFile string
	// Timeout bounds each JSON-RPC round trip when the SDK dials the node.
	Timeout time.Duration
}

// SDK owns one ledger client and one replaceable identity.
type SDK struct {
	network    string
	builder    *builder.Builder
	client     ledger.Client
	ownsClient bool
	submitter  *submit.Submitter
	decoders   *response.Registry
	journal    journal.Sink
	metrics    *metrics.Collector
	log        *slog.Logger

	mu       sync.RWMutex
	identity *Identity
}

// New validates cfg and connects to the ledger. No network round trip is
// made until the first operation.
func New(ctx context.Context, cfg Config, opts ...Option) (*SDK, error) {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if strings.TrimSpace(cfg.PackageID) == "" {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "packageId is required")
	}
	b, err := builder.New(cfg.PackageID)
	if err != nil {
		return nil, err
	}

	log := o.logger
	if log == nil {
		log = logger.Named("suiai")
	}
	network := strings.ToLower(strings.TrimSpace(cfg.Network))

	client, owns := o.client, false
	if client == nil {
		defs, err := ledger.LoadNetworkDefinitions(cfg.NetworksFile)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.CodeInvalidArgument, err, "invalid networks file")
		}
		endpoint, err := defs.Endpoint(network, cfg.RPCURL)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.CodeInvalidArgument, err, "invalid network")
		}
		node, err := sui.NewClient(ctx, sui.Config{Name: network, RPCURL: endpoint, Timeout: cfg.Timeout})
		if err != nil {
			return nil, err
		}
		client, owns = node, true
	}

	budget := cfg.GasBudget
	if budget == 0 {
		budget = DefaultGasBudget
	}
	submitter, err := submit.New(client,
		submit.WithGasBudget(budget),
		submit.WithLogger(log.With("component", "submit")))
	if err != nil {
		return nil, err
	}

	decoders := response.NewRegistry(response.EventDecoder{Package: b.Package()})
	for modelType, d := range o.decoders {
		if err := decoders.Register(modelType, d); err != nil {
			return nil, err
		}
	}

	var collector *metrics.Collector
	if o.registerer != nil {
		collector, err = metrics.NewCollector(o.registerer)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.CodeInvalidArgument, err, "register metrics")
		}
	}

	return &SDK{
		network:    network,
		builder:    b,
		client:     client,
		ownsClient: owns,
		submitter:  submitter,
		decoders:   decoders,
		journal:    o.journal,
		metrics:    collector,
		log:        log,
		identity:   cfg.Identity,
	}, nil
}

// SetIdentity replaces the signing identity. Passing nil clears it.
func (s *SDK) SetIdentity(id *Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = id
}

// Identity returns the current signing identity, or nil.
func (s *SDK) Identity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// PackageID returns the normalised package address.
func (s *SDK) PackageID() string {
	return s.builder.Package().String()
}

// Network returns the configured network name.
func (s *SDK) Network() string {
	return s.network
}

// Client returns the underlying ledger client.
func (s *SDK) Client() LedgerClient {
	return s.client
}

// Close releases the ledger client when the SDK dialed it.
func (s *SDK) Close() {
	if s.ownsClient {
		s.client.Close()
	}
}

// CreateModel registers a model and transfers it to the signer. It returns
// the transaction digest.
func (s *SDK) CreateModel(ctx context.Context, cfg ModelConfig) (string, error) {
	receipt, err := s.CreateModelReceipt(ctx, cfg)
	if err != nil {
		return "", err
	}
	return receipt.Digest, nil
}

// CreateModelReceipt is CreateModel returning the created object ids too.
func (s *SDK) CreateModelReceipt(ctx context.Context, cfg ModelConfig) (Receipt, error) {
	id := s.Identity()
	tx, err := s.builder.CreateModel(id, cfg)
	return s.create(ctx, OpCreateModel, id, tx, err)
}

// CreateAgent registers an agent for an existing model and transfers it to
// the signer. It returns the transaction digest.
//
// The model id is passed to the package as a plain ID value, not as an object
// input, so the SDK does not check that the model exists. Whether an unknown
// model fails, and with which code, depends on the deployed ai_agent module:
// a Move abort surfaces as ErrLedgerFault and a node-side refusal as
// ErrRejectedTransaction. Call GetModel first when the distinction matters.
func (s *SDK) CreateAgent(ctx context.Context, cfg AgentConfig) (string, error) {
	receipt, err := s.CreateAgentReceipt(ctx, cfg)
	if err != nil {
		return "", err
	}
	return receipt.Digest, nil
}

// CreateAgentReceipt is CreateAgent returning the created object ids too.
func (s *SDK) CreateAgentReceipt(ctx context.Context, cfg AgentConfig) (Receipt, error) {
	id := s.Identity()
	tx, err := s.builder.CreateAgent(id, cfg)
	return s.create(ctx, OpCreateAgent, id, tx, err)
}

func (s *SDK) create(ctx context.Context, op string, id *Identity, tx *ptb.Transaction, buildErr error) (Receipt, error) {
	start := time.Now()
	if buildErr != nil {
		s.observe(ctx, op, start, submit.Result{}, "", buildErr, false)
		return Receipt{}, buildErr
	}
	res, err := s.submitter.Submit(ctx, op, tx, id)
	s.observe(ctx, op, start, res, "", err, true)
	if err != nil {
		return Receipt{}, err
	}
	created := make([]string, 0, len(res.Effects.Created))
	for _, objectID := range res.Effects.CreatedIDs() {
		created = append(created, objectID.String())
	}
	return Receipt{
		Digest:         response.Digest(res.Effects),
		CreatedObjects: created,
		GasUsed:        res.Effects.ComputationCost(),
	}, nil
}

// ExecuteInference runs the agent on execCtx. The response always echoes
// execCtx.RequestID and reports the gas of an executed transaction, even
// when an error is returned.
func (s *SDK) ExecuteInference(ctx context.Context, agentID string, execCtx ExecutionContext) (AgentResponse, error) {
	start := time.Now()
	resp := AgentResponse{RequestID: execCtx.RequestID}
	id := s.Identity()

	tx, err := s.builder.ExecuteInference(id, agentID, execCtx)
	if err != nil {
		s.observe(ctx, OpExecuteInference, start, submit.Result{}, execCtx.RequestID, err, false)
		return resp, err
	}
	res, err := s.submitter.Submit(ctx, OpExecuteInference, tx, id)
	if err != nil {
		if res.Executed {
			resp.GasUsed = res.Effects.ComputationCost()
		}
		s.observe(ctx, OpExecuteInference, start, res, execCtx.RequestID, err, true)
		return resp, xerrors.Annotate(err, xerrors.WithMetadata(xerrors.MetaRequestID, execCtx.RequestID))
	}

	resp, err = response.MapInference(execCtx.RequestID, res.Effects, s.decoders.For(execCtx.ModelType))
	s.observe(ctx, OpExecuteInference, start, res, execCtx.RequestID, err, true)
	return resp, err
}

// observe feeds metrics and the journal. Neither can fail the operation.
func (s *SDK) observe(ctx context.Context, op string, start time.Time, res submit.Result, requestID string, err error, submitted bool) {
	s.metrics.ObserveSubmission(op, outcomeOf(res, err), res.Effects.ComputationCost(), res.Executed, time.Since(start))
	if !submitted || s.journal == nil {
		return
	}

	entry := journal.Entry{
		Digest:    res.Digest,
		Operation: op,
		Sender:    res.Sender.String(),
		Status:    statusOf(res, err),
		RequestID: requestID,
	}
	if res.Executed {
		entry.GasUsed = res.Effects.ComputationCost()
		for _, objectID := range res.Effects.CreatedIDs() {
			entry.CreatedObjects = append(entry.CreatedObjects, objectID.String())
		}
	}
	if err != nil {
		entry.ErrorCode = string(xerrors.CodeOf(err))
		entry.Error = err.Error()
	}
	if jerr := s.journal.Record(context.WithoutCancel(ctx), entry); jerr != nil {
		s.log.Warn("写入提交日志失败", "operation", op, "digest", res.Digest, "error", jerr)
	}
}

func outcomeOf(res submit.Result, err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	switch xerrors.CodeOf(err) {
	case xerrors.CodeLedgerFault:
		return metrics.OutcomeFault
	case xerrors.CodeRejectedTransaction:
		return metrics.OutcomeRejected
	case xerrors.CodeNetwork:
		return metrics.OutcomeNetwork
	case xerrors.CodeDecoding:
		if res.Executed {
			return metrics.OutcomeDecoding
		}
	}
	return metrics.OutcomeLocal
}

func statusOf(res submit.Result, err error) journal.Status {
	if res.Executed && res.Effects.Success {
		return journal.StatusSuccess
	}
	switch xerrors.CodeOf(err) {
	case xerrors.CodeLedgerFault:
		return journal.StatusFault
	case xerrors.CodeRejectedTransaction:
		return journal.StatusRejected
	case xerrors.CodeNetwork:
		if xerrors.MetadataOf(err)[xerrors.MetaOutcome] == submit.OutcomeUnknown {
			return journal.StatusUnknown
		}
	}
	return journal.StatusFailed
}
