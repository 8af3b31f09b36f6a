// Package ledgertest provides an in-memory ledger.Client for tests and
// offline examples.
package ledgertest

import (
	"context"
	"crypto/sha256"
	"sync"

	xerrors "SuiAI-SDK/internal/errors"
	"SuiAI-SDK/internal/keys"
	"SuiAI-SDK/internal/ledger"
	"SuiAI-SDK/internal/ptb"

	"github.com/mr-tron/base58"
)

// ZeroDigest is a syntactically valid object digest.
var ZeroDigest = base58.Encode(make([]byte, 32))

// DefaultGasCoin is returned by GetCoins when no coins were configured.
var DefaultGasCoin = ledger.Coin{
	Ref:     ledger.ObjectRef{ObjectID: ledger.MustParseAddress("0xc0ffee"), Version: 1, Digest: ZeroDigest},
	Balance: 10_000_000_000,
}

// DefaultComputationCost is reported by the default executor.
const DefaultComputationCost uint64 = 1_000_000

// ExecuteFunc produces effects for a verified transaction.
type ExecuteFunc func(sender ledger.Address, txBytes []byte, digest string) (ledger.Effects, error)

// Fake is a thread-safe in-memory ledger.
type Fake struct {
	mu       sync.Mutex
	objects  map[ledger.Address]ledger.ObjectSnapshot
	coins    []ledger.Coin
	gasPrice uint64
	execute  ExecuteFunc
	calls    map[string]int
	executed [][]byte
	closed   bool
}

// NewFake returns a ledger holding the clock object and nothing else.
func NewFake() *Fake {
	f := &Fake{
		objects:  make(map[ledger.Address]ledger.ObjectSnapshot),
		gasPrice: 1000,
		calls:    make(map[string]int),
	}
	f.AddObject(ledger.ObjectSnapshot{
		Ref:   ledger.ObjectRef{ObjectID: ledger.ClockObjectID, Version: 1, Digest: ZeroDigest},
		Type:  "0x2::clock::Clock",
		Owner: ledger.Owner{Kind: ledger.OwnerShared, InitialSharedVersion: ledger.ClockInitialSharedVersion},
	})
	return f
}

// AddObject stores or replaces an object.
func (f *Fake) AddObject(obj ledger.ObjectSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if obj.Ref.Digest == "" {
		obj.Ref.Digest = ZeroDigest
	}
	if obj.Ref.Version == 0 {
		obj.Ref.Version = 1
	}
	f.objects[obj.Ref.ObjectID] = obj
}

// AddOwned stores an address-owned object of the given type.
func (f *Fake) AddOwned(id ledger.Address, typ string, owner ledger.Address) {
	f.AddObject(ledger.ObjectSnapshot{
		Ref:   ledger.ObjectRef{ObjectID: id},
		Type:  typ,
		Owner: ledger.Owner{Kind: ledger.OwnerAddress, Address: owner},
	})
}

// SetCoins replaces the gas coins returned to every owner.
func (f *Fake) SetCoins(coins ...ledger.Coin) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coins = append([]ledger.Coin{}, coins...)
}

// SetGasPrice sets the reference gas price.
func (f *Fake) SetGasPrice(price uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gasPrice = price
}

// OnExecute installs the executor used by ExecuteTransaction.
func (f *Fake) OnExecute(fn ExecuteFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execute = fn
}

// Calls returns how often method was invoked.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// Executed returns the transaction bytes accepted so far.
func (f *Fake) Executed() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.executed...)
}

// GetObject implements ledger.Client.
func (f *Fake) GetObject(ctx context.Context, id ledger.Address) (ledger.ObjectSnapshot, error) {
	if err := f.enter(ctx, "sui_getObject"); err != nil {
		return ledger.ObjectSnapshot{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[id]
	if !ok {
		return ledger.ObjectSnapshot{}, xerrors.New(xerrors.CodeNotFound, "对象不存在",
			xerrors.WithMetadata(xerrors.MetaObjectID, id.String()))
	}
	return obj, nil
}

// ReferenceGasPrice implements ledger.Client.
func (f *Fake) ReferenceGasPrice(ctx context.Context) (uint64, error) {
	if err := f.enter(ctx, "suix_getReferenceGasPrice"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gasPrice, nil
}

// GetCoins implements ledger.Client.
func (f *Fake) GetCoins(ctx context.Context, owner ledger.Address, limit int) ([]ledger.Coin, error) {
	if err := f.enter(ctx, "suix_getCoins"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.coins == nil {
		return []ledger.Coin{DefaultGasCoin}, nil
	}
	coins := append([]ledger.Coin{}, f.coins...)
	if limit > 0 && len(coins) > limit {
		coins = coins[:limit]
	}
	return coins, nil
}

// ExecuteTransaction verifies the signature and runs the executor. Without
// an executor every transaction succeeds and creates one address-owned
// object per call.
func (f *Fake) ExecuteTransaction(ctx context.Context, txBytes []byte, signatures []string) (ledger.Effects, error) {
	if err := f.enter(ctx, "sui_executeTransactionBlock"); err != nil {
		return ledger.Effects{}, err
	}
	if len(signatures) != 1 {
		return ledger.Effects{}, xerrors.New(xerrors.CodeRejectedTransaction, "缺少签名")
	}
	sender, ok := keys.VerifyTransactionSignature(txBytes, signatures[0])
	if !ok {
		return ledger.Effects{}, xerrors.New(xerrors.CodeRejectedTransaction, "签名校验失败")
	}
	digest := ptb.Digest(txBytes)

	f.mu.Lock()
	f.executed = append(f.executed, append([]byte(nil), txBytes...))
	execute := f.execute
	f.mu.Unlock()

	if execute != nil {
		return execute(sender, txBytes, digest)
	}
	return SuccessEffects(sender, digest), nil
}

// Close implements ledger.Client.
func (f *Fake) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// SuccessEffects builds successful effects with one object owned by sender.
func SuccessEffects(sender ledger.Address, digest string) ledger.Effects {
	sum := sha256.Sum256([]byte(digest))
	return ledger.Effects{
		Digest:  digest,
		Success: true,
		GasUsed: &ledger.GasCost{ComputationCost: DefaultComputationCost, StorageCost: 2_000_000},
		Created: []ledger.CreatedObject{{
			Ref:   ledger.ObjectRef{ObjectID: ledger.Address(sum), Version: 2, Digest: ZeroDigest},
			Owner: ledger.Owner{Kind: ledger.OwnerAddress, Address: sender},
		}},
	}
}

func (f *Fake) enter(ctx context.Context, method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	if f.closed {
		return xerrors.New(xerrors.CodeNetwork, "账本客户端已关闭", xerrors.WithRetryable(false))
	}
	if err := ctx.Err(); err != nil {
		return xerrors.Wrap(xerrors.CodeNetwork, err, "请求被取消")
	}
	return nil
}

var _ ledger.Client = (*Fake)(nil)
