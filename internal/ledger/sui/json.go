package sui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"SuiAI-SDK/internal/ledger"
)

// u64 accepts both JSON numbers and decimal strings; the fullnode encodes
// most 64-bit values as strings.
type u64 uint64

func (v *u64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*v = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("无法解析整数 %q: %w", s, err)
	}
	*v = u64(n)
	return nil
}

type objectRefJSON struct {
	ObjectID string `json:"objectId"`
	Version  u64    `json:"version"`
	Digest   string `json:"digest"`
}

func (r objectRefJSON) toLedger() (ledger.ObjectRef, error) {
	id, err := ledger.ParseAddress(r.ObjectID)
	if err != nil {
		return ledger.ObjectRef{}, err
	}
	return ledger.ObjectRef{ObjectID: id, Version: uint64(r.Version), Digest: r.Digest}, nil
}

// parseOwner decodes {"AddressOwner": ...}, {"ObjectOwner": ...},
// {"Shared": {"initial_shared_version": n}} and "Immutable".
func parseOwner(raw json.RawMessage) (ledger.Owner, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return ledger.Owner{}, nil
	}
	var tag string
	if err := json.Unmarshal(raw, &tag); err == nil {
		if tag == "Immutable" {
			return ledger.Owner{Kind: ledger.OwnerImmutable}, nil
		}
		return ledger.Owner{}, fmt.Errorf("未知的所有者类型 %q", tag)
	}

	var variants struct {
		AddressOwner *string `json:"AddressOwner"`
		ObjectOwner  *string `json:"ObjectOwner"`
		Shared       *struct {
			InitialSharedVersion u64 `json:"initial_shared_version"`
		} `json:"Shared"`
	}
	if err := json.Unmarshal(raw, &variants); err != nil {
		return ledger.Owner{}, fmt.Errorf("解析所有者失败: %w", err)
	}
	switch {
	case variants.AddressOwner != nil:
		addr, err := ledger.ParseAddress(*variants.AddressOwner)
		return ledger.Owner{Kind: ledger.OwnerAddress, Address: addr}, err
	case variants.ObjectOwner != nil:
		addr, err := ledger.ParseAddress(*variants.ObjectOwner)
		return ledger.Owner{Kind: ledger.OwnerObject, Address: addr}, err
	case variants.Shared != nil:
		return ledger.Owner{Kind: ledger.OwnerShared, InitialSharedVersion: uint64(variants.Shared.InitialSharedVersion)}, nil
	default:
		return ledger.Owner{}, fmt.Errorf("未知的所有者格式: %s", string(raw))
	}
}

type objectResponse struct {
	Data *struct {
		objectRefJSON
		Type    string          `json:"type"`
		Owner   json.RawMessage `json:"owner"`
		Content json.RawMessage `json:"content"`
	} `json:"data"`
	Error *struct {
		Code     string `json:"code"`
		ObjectID string `json:"object_id"`
	} `json:"error"`
}

type coinPage struct {
	Data []struct {
		CoinObjectID string `json:"coinObjectId"`
		Version      u64    `json:"version"`
		Digest       string `json:"digest"`
		Balance      u64    `json:"balance"`
	} `json:"data"`
	HasNextPage bool `json:"hasNextPage"`
}

type executeResponse struct {
	Digest  string `json:"digest"`
	Effects *struct {
		Status struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"status"`
		GasUsed *struct {
			ComputationCost         u64 `json:"computationCost"`
			StorageCost             u64 `json:"storageCost"`
			StorageRebate           u64 `json:"storageRebate"`
			NonRefundableStorageFee u64 `json:"nonRefundableStorageFee"`
		} `json:"gasUsed"`
		Created []struct {
			Owner     json.RawMessage `json:"owner"`
			Reference objectRefJSON   `json:"reference"`
		} `json:"created"`
	} `json:"effects"`
	Events []struct {
		Type              string          `json:"type"`
		PackageID         string          `json:"packageId"`
		TransactionModule string          `json:"transactionModule"`
		Sender            string          `json:"sender"`
		ParsedJSON        json.RawMessage `json:"parsedJson"`
	} `json:"events"`
	Errors []string `json:"errors"`
}

func (r executeResponse) toEffects() (ledger.Effects, error) {
	effects := ledger.Effects{Digest: r.Digest}
	if r.Effects == nil {
		return effects, fmt.Errorf("交易 %s 的响应缺少 effects", r.Digest)
	}

	effects.Success = strings.EqualFold(r.Effects.Status.Status, "success")
	effects.Error = r.Effects.Status.Error
	if !effects.Success && effects.Error == "" && len(r.Errors) > 0 {
		effects.Error = strings.Join(r.Errors, "; ")
	}
	if gas := r.Effects.GasUsed; gas != nil {
		effects.GasUsed = &ledger.GasCost{
			ComputationCost:         uint64(gas.ComputationCost),
			StorageCost:             uint64(gas.StorageCost),
			StorageRebate:           uint64(gas.StorageRebate),
			NonRefundableStorageFee: uint64(gas.NonRefundableStorageFee),
		}
	}
	for _, created := range r.Effects.Created {
		ref, err := created.Reference.toLedger()
		if err != nil {
			return effects, fmt.Errorf("解析新建对象失败: %w", err)
		}
		owner, err := parseOwner(created.Owner)
		if err != nil {
			return effects, err
		}
		effects.Created = append(effects.Created, ledger.CreatedObject{Ref: ref, Owner: owner})
	}
	for _, ev := range r.Events {
		event := ledger.Event{Type: ev.Type, Module: ev.TransactionModule, ParsedJSON: ev.ParsedJSON}
		if ev.PackageID != "" {
			if pkg, err := ledger.ParseAddress(ev.PackageID); err == nil {
				event.PackageID = pkg
			}
		}
		if ev.Sender != "" {
			if sender, err := ledger.ParseAddress(ev.Sender); err == nil {
				event.Sender = sender
			}
		}
		effects.Events = append(effects.Events, event)
	}
	return effects, nil
}
