package submit

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strconv"

	xerrors "SuiAI-SDK/internal/errors"
	"SuiAI-SDK/internal/keys"
	"SuiAI-SDK/internal/ledger"
	"SuiAI-SDK/internal/ptb"
	"SuiAI-SDK/pkg/logger"
)

// DefaultGasBudget is the budget used when none is configured, in MIST.
const DefaultGasBudget uint64 = 50_000_000

// maxCoinsPerQuery bounds the suix_getCoins page used for gas selection.
const maxCoinsPerQuery = 50

// Outcome values carried in error metadata under errors.MetaOutcome.
const (
	OutcomeNotSubmitted = "not_submitted"
	OutcomeUnknown      = "unknown"
	OutcomeExecuted     = "executed"
)

// Result is the outcome of one submission.
type Result struct {
	Digest   string
	Sender   ledger.Address
	Effects  ledger.Effects
	Executed bool
}

// Submitter signs and submits transactions through a ledger client.
type Submitter struct {
	client    ledger.Client
	gasBudget uint64
	log       *slog.Logger
	audit     *slog.Logger
}

// Option customises a Submitter.
type Option func(*Submitter)

// WithGasBudget overrides the per-transaction gas budget.
func WithGasBudget(budget uint64) Option {
	return func(s *Submitter) {
		if budget > 0 {
			s.gasBudget = budget
		}
	}
}

// WithLogger sets the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Submitter) {
		if l != nil {
			s.log = l
		}
	}
}

// WithAuditLogger sets the logger receiving one record per submission.
func WithAuditLogger(l *slog.Logger) Option {
	return func(s *Submitter) {
		if l != nil {
			s.audit = l
		}
	}
}

// New creates a Submitter.
func New(client ledger.Client, opts ...Option) (*Submitter, error) {
	if client == nil {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "未配置账本客户端")
	}
	s := &Submitter{
		client:    client,
		gasBudget: DefaultGasBudget,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.log == nil {
		s.log = logger.Named("submit")
	}
	if s.audit == nil {
		s.audit = logger.Audit()
	}
	return s, nil
}

// GasBudget returns the configured budget.
func (s *Submitter) GasBudget() uint64 {
	return s.gasBudget
}

// Submit resolves, signs and executes tx as id. operation only labels logs.
//
// The returned Result carries the digest as soon as it is known, so callers
// can correlate failures. A failed execution status yields LEDGER_FAULT
// together with the effects.
func (s *Submitter) Submit(ctx context.Context, operation string, tx *ptb.Transaction, id *keys.Identity) (Result, error) {
	// 先在本地校验前置条件，不发起任何网络请求。
	if id == nil {
		return Result{}, xerrors.New(xerrors.CodeMissingIdentity, "")
	}
	if tx == nil {
		return Result{}, xerrors.New(xerrors.CodeInvalidArgument, "交易不能为空")
	}
	sender := id.Address()
	res := Result{Sender: sender}

	resolved, err := s.resolveObjects(ctx, tx)
	if err != nil {
		return res, notSubmitted(ctx, err)
	}
	gas, err := s.selectGas(ctx, sender, tx)
	if err != nil {
		return res, notSubmitted(ctx, err)
	}

	data, err := tx.Data(sender, gas, resolved)
	if err != nil {
		return res, xerrors.Wrap(xerrors.CodeInvalidArgument, err, "组装交易数据失败")
	}
	txBytes, err := ptb.Marshal(data)
	if err != nil {
		return res, xerrors.Wrap(xerrors.CodeInvalidArgument, err, "编码交易失败")
	}
	res.Digest = ptb.Digest(txBytes)
	signature, err := id.SignTransaction(txBytes)
	if err != nil {
		return res, err
	}

	// 交易一旦发出便无法撤回，传输失败只能视为结果未知。
	effects, err := s.client.ExecuteTransaction(ctx, txBytes, []string{signature})
	if err != nil {
		err = s.classifyExecuteError(ctx, res.Digest, err)
		s.record(operation, res, err)
		return res, err
	}
	if effects.Digest == "" {
		effects.Digest = res.Digest
	} else if effects.Digest != res.Digest {
		s.log.Warn("节点返回的交易摘要与本地计算不一致", "local", res.Digest, "remote", effects.Digest)
		effects.Digest = res.Digest
	}
	res.Effects = effects
	res.Executed = true

	if !effects.Success {
		reason := effects.Error
		if reason == "" {
			reason = "交易执行失败"
		}
		err = xerrors.New(xerrors.CodeLedgerFault, reason,
			xerrors.WithMetadata(xerrors.MetaDigest, res.Digest),
			xerrors.WithMetadata(xerrors.MetaOutcome, OutcomeExecuted),
			xerrors.WithMetadata(xerrors.MetaGasUsed, strconv.FormatUint(effects.ComputationCost(), 10)))
		s.record(operation, res, err)
		return res, err
	}
	s.record(operation, res, nil)
	return res, nil
}

// resolveObjects looks up every object input that still needs a version.
func (s *Submitter) resolveObjects(ctx context.Context, tx *ptb.Transaction) (map[ledger.Address]ptb.ObjectArg, error) {
	pending := tx.PendingObjects()
	resolved := make(map[ledger.Address]ptb.ObjectArg, len(pending))
	for _, objectID := range pending {
		snapshot, err := s.client.GetObject(ctx, objectID)
		if err != nil {
			if xerrors.CodeOf(err) == xerrors.CodeNotFound {
				return nil, xerrors.Wrap(xerrors.CodeRejectedTransaction, err, fmt.Sprintf("引用的对象 %s 不存在", objectID),
					xerrors.WithMetadata(xerrors.MetaObjectID, objectID.String()))
			}
			return nil, err
		}
		if snapshot.Owner.Kind == ledger.OwnerShared {
			resolved[objectID] = ptb.ResolveShared(objectID, snapshot.Owner.InitialSharedVersion, false)
			continue
		}
		arg, err := ptb.ResolveOwned(snapshot.Ref)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.CodeDecoding, err, "对象引用无法编码",
				xerrors.WithMetadata(xerrors.MetaObjectID, objectID.String()))
		}
		resolved[objectID] = arg
	}
	return resolved, nil
}

// selectGas picks sender coins until their balance covers the budget.
func (s *Submitter) selectGas(ctx context.Context, sender ledger.Address, tx *ptb.Transaction) (ptb.GasData, error) {
	price, err := s.client.ReferenceGasPrice(ctx)
	if err != nil {
		return ptb.GasData{}, err
	}
	coins, err := s.client.GetCoins(ctx, sender, maxCoinsPerQuery)
	if err != nil {
		return ptb.GasData{}, err
	}

	// 作为交易输入的对象不能同时用作 gas。
	used := make(map[ledger.Address]struct{})
	for _, in := range tx.Inputs() {
		if in.Kind == ptb.InputObject {
			used[in.ObjectID] = struct{}{}
		}
	}

	var (
		payment []ptb.ObjectRef
		total   uint64
	)
	for _, coin := range coins {
		if total >= s.gasBudget {
			break
		}
		if _, skip := used[coin.Ref.ObjectID]; skip || coin.Balance == 0 {
			continue
		}
		ref, err := ptb.WireRef(coin.Ref)
		if err != nil {
			return ptb.GasData{}, xerrors.Wrap(xerrors.CodeDecoding, err, "gas 币引用无法编码")
		}
		payment = append(payment, ref)
		total += coin.Balance
	}
	if total < s.gasBudget {
		return ptb.GasData{}, xerrors.New(xerrors.CodeRejectedTransaction,
			fmt.Sprintf("账户 %s 的 gas 余额不足: 需要 %d, 可用 %d", sender, s.gasBudget, total))
	}
	return ptb.GasData{Payment: payment, Price: price, Budget: s.gasBudget}, nil
}

func (s *Submitter) classifyExecuteError(ctx context.Context, digest string, err error) error {
	outcome := OutcomeExecuted
	code := xerrors.CodeOf(err)
	if code == xerrors.CodeNetwork || ctx.Err() != nil || code == xerrors.CodeUnknown {
		outcome = OutcomeUnknown
		if code != xerrors.CodeNetwork {
			err = xerrors.Wrap(xerrors.CodeNetwork, err, "提交交易超时或被取消")
		}
	}
	if code == xerrors.CodeRejectedTransaction {
		outcome = OutcomeNotSubmitted
	}
	return xerrors.Annotate(err,
		xerrors.WithMetadata(xerrors.MetaDigest, digest),
		xerrors.WithMetadata(xerrors.MetaOutcome, outcome))
}

// notSubmitted tags errors raised before the transaction left the process.
func notSubmitted(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && xerrors.CodeOf(err) != xerrors.CodeNetwork {
		err = xerrors.Wrap(xerrors.CodeNetwork, err, "准备交易时上下文已结束")
	}
	return xerrors.Annotate(err, xerrors.WithMetadata(xerrors.MetaOutcome, OutcomeNotSubmitted))
}

func (s *Submitter) record(operation string, res Result, err error) {
	attrs := []any{
		"operation", operation,
		"digest", res.Digest,
		"sender", res.Sender.String(),
		"executed", res.Executed,
	}
	if res.Executed {
		attrs = append(attrs, "gas_used", res.Effects.ComputationCost(), "created", len(res.Effects.Created))
	}
	if err != nil {
		attrs = append(attrs, "code", string(xerrors.CodeOf(err)), "error", err.Error())
		var coded *xerrors.Error
		if stdErrors.As(err, &coded) && coded.Retryable() {
			attrs = append(attrs, "retryable", true)
		}
		s.audit.Warn("交易提交失败", attrs...)
		s.log.Warn("交易提交失败", attrs...)
		return
	}
	s.audit.Info("交易已执行", attrs...)
	s.log.Debug("交易已执行", attrs...)
}
