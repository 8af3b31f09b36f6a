package ptb

import (
	"SuiAI-SDK/internal/ledger"
)

// The types in this file mirror Sui's BCS layout for TransactionData. Field
// order and enum variant order are part of the wire format.

// TransactionData is the signed payload.
type TransactionData struct {
	V1 *TransactionDataV1
}

func (TransactionData) IsBcsEnum() {}

// TransactionDataV1 carries the kind, sender, gas and expiration.
type TransactionDataV1 struct {
	Kind       TransactionKind
	Sender     ledger.Address
	GasData    GasData
	Expiration TransactionExpiration
}

// TransactionKind only models programmable transactions.
type TransactionKind struct {
	ProgrammableTransaction *ProgrammableTransaction
}

func (TransactionKind) IsBcsEnum() {}

// ProgrammableTransaction is the ordered inputs and commands.
type ProgrammableTransaction struct {
	Inputs   []CallArg
	Commands []Command
}

// GasData selects the coins and price paying for execution.
type GasData struct {
	Payment []ObjectRef
	Owner   ledger.Address
	Price   uint64
	Budget  uint64
}

// TransactionExpiration bounds the epoch a transaction may execute in.
type TransactionExpiration struct {
	None  *struct{}
	Epoch *uint64
}

func (TransactionExpiration) IsBcsEnum() {}

// CallArg is a resolved transaction input.
type CallArg struct {
	Pure   *[]byte
	Object *ObjectArg
}

func (CallArg) IsBcsEnum() {}

// ObjectArg references an object input.
type ObjectArg struct {
	ImmOrOwnedObject *ObjectRef
	SharedObject     *SharedObjectArg
	Receiving        *ObjectRef
}

func (ObjectArg) IsBcsEnum() {}

// ObjectRef is (id, version, digest); the digest is length-prefixed.
type ObjectRef struct {
	ObjectID ledger.Address
	Version  uint64
	Digest   []byte
}

// SharedObjectArg references a shared object by initial shared version.
type SharedObjectArg struct {
	ID                   ledger.Address
	InitialSharedVersion uint64
	Mutable              bool
}

// Command is one step of a programmable transaction.
type Command struct {
	MoveCall        *ProgrammableMoveCall
	TransferObjects *TransferObjects
}

func (Command) IsBcsEnum() {}

// ProgrammableMoveCall invokes package::module::function.
type ProgrammableMoveCall struct {
	Package       ledger.Address
	Module        string
	Function      string
	TypeArguments []TypeTag
	Arguments     []Argument
}

// Target renders the fully qualified entry point name.
func (c *ProgrammableMoveCall) Target() string {
	return c.Package.String() + "::" + c.Module + "::" + c.Function
}

// TransferObjects moves objects to the address argument.
type TransferObjects struct {
	Objects []Argument
	Address Argument
}

// Argument references gas, an input, or an earlier command's result.
type Argument struct {
	GasCoin      *struct{}
	Input        *uint16
	Result       *uint16
	NestedResult *NestedResult
}

func (Argument) IsBcsEnum() {}

// NestedResult selects one value of a multi-value command result.
type NestedResult struct {
	Command uint16
	Index   uint16
}

// TypeTag is a Move type argument.
type TypeTag struct {
	Bool    *struct{}
	U8      *struct{}
	U64     *struct{}
	U128    *struct{}
	Address *struct{}
	Signer  *struct{}
	Vector  *TypeTag
	Struct  *StructTag
}

func (TypeTag) IsBcsEnum() {}

// StructTag names a Move struct type.
type StructTag struct {
	Address    ledger.Address
	Module     string
	Name       string
	TypeParams []TypeTag
}

// ResultIndex reports the command index when a is a Result argument.
func (a Argument) ResultIndex() (uint16, bool) {
	if a.Result == nil {
		return 0, false
	}
	return *a.Result, true
}

// InputIndex reports the input index when a is an Input argument.
func (a Argument) InputIndex() (uint16, bool) {
	if a.Input == nil {
		return 0, false
	}
	return *a.Input, true
}
