package ledger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AddressLength is the size in bytes of Sui addresses and object ids.
const AddressLength = 32

// Address is a 32-byte Sui account address or object id.
type Address [AddressLength]byte

// ClockObjectID is the well-known shared clock object.
var ClockObjectID = MustParseAddress("0x6")

// ClockInitialSharedVersion is the version at which the clock became shared.
const ClockInitialSharedVersion uint64 = 1

// ParseAddress accepts 0x-prefixed or bare hex, including short forms such as
// "0x2", and left-pads the value to 32 bytes.
func ParseAddress(raw string) (Address, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return Address{}, fmt.Errorf("地址为空: %q", raw)
	}
	if len(s) > AddressLength*2 {
		return Address{}, fmt.Errorf("地址过长: %q", raw)
	}
	for _, r := range s {
		if !isHexRune(r) {
			return Address{}, fmt.Errorf("地址包含非法字符: %q", raw)
		}
	}
	var addr Address
	copy(addr[:], common.LeftPadBytes(common.FromHex(s), AddressLength))
	return addr, nil
}

// MustParseAddress is ParseAddress for compile-time constants.
func MustParseAddress(raw string) Address {
	addr, err := ParseAddress(raw)
	if err != nil {
		panic(err)
	}
	return addr
}

// String renders the canonical 0x-prefixed 64 hex digit form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether the address is all zero bytes.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalJSON encodes the address in canonical form.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts any form understood by ParseAddress.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func isHexRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// ObjectRef pins an object at a specific version.
type ObjectRef struct {
	ObjectID Address `json:"objectId"`
	Version  uint64  `json:"version"`
	Digest   string  `json:"digest"`
}

// OwnerKind enumerates Sui ownership modes.
type OwnerKind string

const (
	OwnerAddress   OwnerKind = "address"
	OwnerObject    OwnerKind = "object"
	OwnerShared    OwnerKind = "shared"
	OwnerImmutable OwnerKind = "immutable"
)

// Owner describes who controls an object.
type Owner struct {
	Kind                 OwnerKind `json:"kind"`
	Address              Address   `json:"address"`
	InitialSharedVersion uint64    `json:"initialSharedVersion,omitempty"`
}

// ObjectSnapshot is the current on-ledger state of one object.
type ObjectSnapshot struct {
	Ref     ObjectRef       `json:"ref"`
	Type    string          `json:"type"`
	Owner   Owner           `json:"owner"`
	Content json.RawMessage `json:"content,omitempty"`
}

// Coin is a gas coin owned by an address.
type Coin struct {
	Ref     ObjectRef
	Balance uint64
}

// GasCost mirrors the gasUsed block of transaction effects.
type GasCost struct {
	ComputationCost         uint64 `json:"computationCost"`
	StorageCost             uint64 `json:"storageCost"`
	StorageRebate           uint64 `json:"storageRebate"`
	NonRefundableStorageFee uint64 `json:"nonRefundableStorageFee"`
}

// CreatedObject is an object created by a transaction.
type CreatedObject struct {
	Ref   ObjectRef `json:"reference"`
	Owner Owner     `json:"owner"`
}

// Event is a Move event emitted during execution.
type Event struct {
	Type       string          `json:"type"`
	PackageID  Address         `json:"packageId"`
	Module     string          `json:"transactionModule"`
	Sender     Address         `json:"sender"`
	ParsedJSON json.RawMessage `json:"parsedJson,omitempty"`
}

// Effects is the ledger's report of what a submitted transaction did.
type Effects struct {
	Digest  string          `json:"digest"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	GasUsed *GasCost        `json:"gasUsed,omitempty"`
	Created []CreatedObject `json:"created,omitempty"`
	Events  []Event         `json:"events,omitempty"`
}

// ComputationCost returns the computation cost, or zero when the ledger did
// not report a gas block.
func (e Effects) ComputationCost() uint64 {
	if e.GasUsed == nil {
		return 0
	}
	return e.GasUsed.ComputationCost
}

// CreatedIDs lists the ids of created objects in effect order.
func (e Effects) CreatedIDs() []Address {
	if len(e.Created) == 0 {
		return nil
	}
	ids := make([]Address, 0, len(e.Created))
	for _, obj := range e.Created {
		ids = append(ids, obj.Ref.ObjectID)
	}
	return ids
}

// Client defines the subset of the fullnode API the SDK depends on so the
// facade can run against a real node or an in-memory fake.
type Client interface {
	GetObject(ctx context.Context, id Address) (ObjectSnapshot, error)
	ReferenceGasPrice(ctx context.Context) (uint64, error)
	GetCoins(ctx context.Context, owner Address, limit int) ([]Coin, error)
	ExecuteTransaction(ctx context.Context, txBytes []byte, signatures []string) (Effects, error)
	Close()
}
