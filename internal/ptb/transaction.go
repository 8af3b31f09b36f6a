// Package ptb models Sui programmable transaction blocks: an ordered list of
// inputs and commands where later commands consume the results of earlier
// ones. A Transaction is assembled without network access; object inputs are
// resolved to versioned references only when it is turned into
// TransactionData for signing.
package ptb

import (
	"errors"
	"fmt"

	"SuiAI-SDK/internal/ledger"

	"github.com/fardream/go-bcs/bcs"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// InputKind distinguishes pure values from object references.
type InputKind int

const (
	InputPure InputKind = iota
	InputObject
)

// Input is an unresolved transaction input.
type Input struct {
	Kind     InputKind
	Pure     []byte
	ObjectID ledger.Address
	Mutable  bool
	// Shared is set when the shared version is known up front, as for the
	// clock, so no lookup is needed.
	Shared *SharedObjectArg
}

// Transaction is an ephemeral, ordered sequence of commands.
type Transaction struct {
	inputs   []Input
	commands []Command
}

// New returns an empty transaction.
func New() *Transaction {
	return &Transaction{}
}

// Inputs returns a copy of the inputs.
func (t *Transaction) Inputs() []Input {
	return append([]Input(nil), t.inputs...)
}

// Commands returns a copy of the commands.
func (t *Transaction) Commands() []Command {
	return append([]Command(nil), t.commands...)
}

// Pure BCS-encodes v as a pure input.
func (t *Transaction) Pure(v any) (Argument, error) {
	encoded, err := bcs.Marshal(v)
	if err != nil {
		return Argument{}, fmt.Errorf("编码纯值参数失败: %w", err)
	}
	return t.addInput(Input{Kind: InputPure, Pure: encoded}), nil
}

// Object adds an object input resolved at submission time.
func (t *Transaction) Object(id ledger.Address, mutable bool) Argument {
	for i, in := range t.inputs {
		if in.Kind == InputObject && in.ObjectID == id {
			if mutable && !t.inputs[i].Mutable {
				t.inputs[i].Mutable = true
				if t.inputs[i].Shared != nil {
					t.inputs[i].Shared.Mutable = true
				}
			}
			return inputArg(uint16(i))
		}
	}
	return t.addInput(Input{Kind: InputObject, ObjectID: id, Mutable: mutable})
}

// SharedObject adds a shared object input whose initial version is known.
func (t *Transaction) SharedObject(id ledger.Address, initialVersion uint64, mutable bool) Argument {
	for i, in := range t.inputs {
		if in.Kind == InputObject && in.ObjectID == id {
			return inputArg(uint16(i))
		}
	}
	return t.addInput(Input{
		Kind:     InputObject,
		ObjectID: id,
		Mutable:  mutable,
		Shared:   &SharedObjectArg{ID: id, InitialSharedVersion: initialVersion, Mutable: mutable},
	})
}

// Clock references the shared clock object immutably.
func (t *Transaction) Clock() Argument {
	return t.SharedObject(ledger.ClockObjectID, ledger.ClockInitialSharedVersion, false)
}

// MoveCall appends a call and returns a reference to its result.
func (t *Transaction) MoveCall(pkg ledger.Address, module, function string, args ...Argument) Argument {
	return t.addCommand(Command{MoveCall: &ProgrammableMoveCall{
		Package:       pkg,
		Module:        module,
		Function:      function,
		TypeArguments: []TypeTag{},
		Arguments:     append([]Argument{}, args...),
	}})
}

// TransferObjects appends a transfer of objects to recipient.
func (t *Transaction) TransferObjects(objects []Argument, recipient Argument) {
	t.addCommand(Command{TransferObjects: &TransferObjects{
		Objects: append([]Argument{}, objects...),
		Address: recipient,
	}})
}

// PendingObjects lists object ids that still need a versioned reference.
func (t *Transaction) PendingObjects() []ledger.Address {
	var ids []ledger.Address
	for _, in := range t.inputs {
		if in.Kind == InputObject && in.Shared == nil {
			ids = append(ids, in.ObjectID)
		}
	}
	return ids
}

// ResolveOwned builds the object argument for a non-shared lookup result.
func ResolveOwned(ref ledger.ObjectRef) (ObjectArg, error) {
	wire, err := WireRef(ref)
	if err != nil {
		return ObjectArg{}, err
	}
	return ObjectArg{ImmOrOwnedObject: &wire}, nil
}

// ResolveShared builds the object argument for a shared object.
func ResolveShared(id ledger.Address, initialVersion uint64, mutable bool) ObjectArg {
	return ObjectArg{SharedObject: &SharedObjectArg{ID: id, InitialSharedVersion: initialVersion, Mutable: mutable}}
}

// WireRef converts a ledger reference, decoding its base58 digest.
func WireRef(ref ledger.ObjectRef) (ObjectRef, error) {
	digest, err := base58.Decode(ref.Digest)
	if err != nil {
		return ObjectRef{}, fmt.Errorf("对象 %s 的摘要不是合法的 base58: %w", ref.ObjectID, err)
	}
	if len(digest) != 32 {
		return ObjectRef{}, fmt.Errorf("对象 %s 的摘要长度不合法: %d", ref.ObjectID, len(digest))
	}
	return ObjectRef{ObjectID: ref.ObjectID, Version: ref.Version, Digest: digest}, nil
}

// Data assembles TransactionData. resolved must contain every id reported by
// PendingObjects.
func (t *Transaction) Data(sender ledger.Address, gas GasData, resolved map[ledger.Address]ObjectArg) (TransactionData, error) {
	if len(t.commands) == 0 {
		return TransactionData{}, errors.New("交易不包含任何指令")
	}
	inputs := make([]CallArg, 0, len(t.inputs))
	for _, in := range t.inputs {
		switch {
		case in.Kind == InputPure:
			pure := append([]byte(nil), in.Pure...)
			inputs = append(inputs, CallArg{Pure: &pure})
		case in.Shared != nil:
			shared := *in.Shared
			inputs = append(inputs, CallArg{Object: &ObjectArg{SharedObject: &shared}})
		default:
			arg, ok := resolved[in.ObjectID]
			if !ok {
				return TransactionData{}, fmt.Errorf("对象输入 %s 未解析", in.ObjectID)
			}
			if arg.SharedObject != nil {
				shared := *arg.SharedObject
				shared.Mutable = in.Mutable
				arg = ObjectArg{SharedObject: &shared}
			}
			inputs = append(inputs, CallArg{Object: &arg})
		}
	}
	gas.Owner = sender
	return TransactionData{V1: &TransactionDataV1{
		Kind: TransactionKind{ProgrammableTransaction: &ProgrammableTransaction{
			Inputs:   inputs,
			Commands: t.Commands(),
		}},
		Sender:     sender,
		GasData:    gas,
		Expiration: TransactionExpiration{None: &struct{}{}},
	}}, nil
}

// Marshal BCS-encodes transaction data.
func Marshal(data TransactionData) ([]byte, error) {
	out, err := bcs.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("编码交易数据失败: %w", err)
	}
	return out, nil
}

// Digest computes the base58 transaction digest of encoded TransactionData.
func Digest(txBytes []byte) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte("TransactionData::"))
	h.Write(txBytes)
	return base58.Encode(h.Sum(nil))
}

func (t *Transaction) addInput(in Input) Argument {
	t.inputs = append(t.inputs, in)
	return inputArg(uint16(len(t.inputs) - 1))
}

func (t *Transaction) addCommand(cmd Command) Argument {
	t.commands = append(t.commands, cmd)
	idx := uint16(len(t.commands) - 1)
	return Argument{Result: &idx}
}

func inputArg(idx uint16) Argument {
	return Argument{Input: &idx}
}
