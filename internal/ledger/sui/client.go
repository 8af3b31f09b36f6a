package sui

import (
	"context"
	"encoding/base64"
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"SuiAI-SDK/internal/errors"
	"SuiAI-SDK/internal/ledger"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// SuiCoinType is the native gas coin.
const SuiCoinType = "0x2::sui::SUI"

// DefaultHTTPTimeout bounds a single JSON-RPC round trip.
const DefaultHTTPTimeout = 30 * time.Second

// Request types accepted by sui_executeTransactionBlock.
const (
	WaitForEffectsCert    = "WaitForEffectsCert"
	WaitForLocalExecution = "WaitForLocalExecution"
)

// Config describes how to reach a Sui fullnode.
type Config struct {
	Name        string
	RPCURL      string
	Timeout     time.Duration
	RequestType string
}

// Client implements ledger.Client over the fullnode JSON-RPC API.
type Client struct {
	name        string
	rpc         *gethrpc.Client
	requestType string
	mu          sync.Mutex
}

// NewClient dials the configured endpoint. HTTP endpoints are connected
// lazily, so this does not perform a round trip.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	rpcURL := strings.TrimSpace(cfg.RPCURL)
	if rpcURL == "" {
		return nil, errors.New(errors.CodeInvalidArgument, "未配置 Sui RPC 地址")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	rpcClient, err := gethrpc.DialOptions(ctx, rpcURL, gethrpc.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, errors.Wrap(errors.CodeNetwork, err, "连接 Sui 节点失败")
	}

	requestType := cfg.RequestType
	if requestType == "" {
		requestType = WaitForLocalExecution
	}
	return &Client{name: cfg.Name, rpc: rpcClient, requestType: requestType}, nil
}

// Name returns the configured network name.
func (c *Client) Name() string {
	return c.name
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rpc != nil {
		c.rpc.Close()
		c.rpc = nil
	}
}

func (c *Client) conn() (*gethrpc.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rpc == nil {
		return nil, errors.New(errors.CodeNetwork, "Sui 客户端已关闭", errors.WithRetryable(false))
	}
	return c.rpc, nil
}

// GetObject fetches the current content, type and owner of id.
func (c *Client) GetObject(ctx context.Context, id ledger.Address) (ledger.ObjectSnapshot, error) {
	rpc, err := c.conn()
	if err != nil {
		return ledger.ObjectSnapshot{}, err
	}

	var resp objectResponse
	opts := map[string]bool{"showType": true, "showOwner": true, "showContent": true}
	if err := rpc.CallContext(ctx, &resp, "sui_getObject", id.String(), opts); err != nil {
		return ledger.ObjectSnapshot{}, classify(err, errors.CodeInvalidArgument, "查询对象失败")
	}
	if resp.Error != nil || resp.Data == nil {
		code := "notExists"
		if resp.Error != nil && resp.Error.Code != "" {
			code = resp.Error.Code
		}
		return ledger.ObjectSnapshot{}, errors.New(errors.CodeNotFound, fmt.Sprintf("对象 %s 不存在 (%s)", id, code),
			errors.WithMetadata(errors.MetaObjectID, id.String()))
	}

	ref, err := resp.Data.objectRefJSON.toLedger()
	if err != nil {
		return ledger.ObjectSnapshot{}, errors.Wrap(errors.CodeDecoding, err, "解析对象引用失败")
	}
	owner, err := parseOwner(resp.Data.Owner)
	if err != nil {
		return ledger.ObjectSnapshot{}, errors.Wrap(errors.CodeDecoding, err, "解析对象所有者失败")
	}
	return ledger.ObjectSnapshot{Ref: ref, Type: resp.Data.Type, Owner: owner, Content: resp.Data.Content}, nil
}

// ReferenceGasPrice returns the gas price of the current epoch.
func (c *Client) ReferenceGasPrice(ctx context.Context) (uint64, error) {
	rpc, err := c.conn()
	if err != nil {
		return 0, err
	}
	var price u64
	if err := rpc.CallContext(ctx, &price, "suix_getReferenceGasPrice"); err != nil {
		return 0, classify(err, errors.CodeInvalidArgument, "获取参考 gas 价格失败")
	}
	return uint64(price), nil
}

// GetCoins returns up to limit SUI coins owned by owner.
func (c *Client) GetCoins(ctx context.Context, owner ledger.Address, limit int) ([]ledger.Coin, error) {
	rpc, err := c.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	var page coinPage
	if err := rpc.CallContext(ctx, &page, "suix_getCoins", owner.String(), SuiCoinType, nil, limit); err != nil {
		return nil, classify(err, errors.CodeInvalidArgument, "查询 gas 币失败")
	}
	coins := make([]ledger.Coin, 0, len(page.Data))
	for _, item := range page.Data {
		ref, err := objectRefJSON{ObjectID: item.CoinObjectID, Version: item.Version, Digest: item.Digest}.toLedger()
		if err != nil {
			return nil, errors.Wrap(errors.CodeDecoding, err, "解析 gas 币失败")
		}
		coins = append(coins, ledger.Coin{Ref: ref, Balance: uint64(item.Balance)})
	}
	return coins, nil
}

// ExecuteTransaction submits signed transaction bytes and waits for effects.
// A JSON-RPC error response means the node refused the transaction.
func (c *Client) ExecuteTransaction(ctx context.Context, txBytes []byte, signatures []string) (ledger.Effects, error) {
	rpc, err := c.conn()
	if err != nil {
		return ledger.Effects{}, err
	}
	if len(txBytes) == 0 || len(signatures) == 0 {
		return ledger.Effects{}, errors.New(errors.CodeInvalidArgument, "交易字节或签名为空")
	}

	opts := map[string]bool{"showEffects": true, "showEvents": true}
	var resp executeResponse
	err = rpc.CallContext(ctx, &resp, "sui_executeTransactionBlock",
		base64.StdEncoding.EncodeToString(txBytes), signatures, opts, c.requestType)
	if err != nil {
		return ledger.Effects{}, classify(err, errors.CodeRejectedTransaction, "提交交易失败")
	}
	effects, err := resp.toEffects()
	if err != nil {
		return effects, errors.Wrap(errors.CodeDecoding, err, "解析交易 effects 失败",
			errors.WithMetadata(errors.MetaDigest, resp.Digest))
	}
	return effects, nil
}

// classify separates transport failures from answers the node gave.
// Responses carrying a JSON-RPC error object map to answerCode.
func classify(err error, answerCode errors.Code, message string) error {
	var rpcErr gethrpc.Error
	if stdErrors.As(err, &rpcErr) {
		return errors.Wrap(answerCode, err, message,
			errors.WithMetadata("rpc_code", fmt.Sprintf("%d", rpcErr.ErrorCode())))
	}
	var httpErr gethrpc.HTTPError
	if stdErrors.As(err, &httpErr) {
		return errors.Wrap(errors.CodeNetwork, err, message,
			errors.WithMetadata("http_status", fmt.Sprintf("%d", httpErr.StatusCode)))
	}
	return errors.Wrap(errors.CodeNetwork, err, message)
}

var _ ledger.Client = (*Client)(nil)
