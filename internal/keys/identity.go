// Package keys derives ed25519 signing identities from BIP-39 mnemonics or
// encoded secret keys and signs transaction bytes with Sui intent framing.
package keys

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"

	"SuiAI-SDK/internal/errors"
	"SuiAI-SDK/internal/ledger"

	"github.com/cosmos/go-bip39"
	"golang.org/x/crypto/blake2b"
)

// SchemeFlagEd25519 prefixes ed25519 keys and signatures.
const SchemeFlagEd25519 byte = 0x00

// DerivationPath is the default Sui ed25519 path (coin type 784).
const DerivationPath = "m/44'/784'/0'/0'/0'"

// transactionIntent is IntentScope::TransactionData, IntentVersion::V0, AppId::Sui.
var transactionIntent = []byte{0x00, 0x00, 0x00}

// Identity is an ed25519 key pair plus its derived Sui address.
type Identity struct {
	priv    ed25519.PrivateKey
	pub     ed25519.PublicKey
	address ledger.Address
}

// FromMnemonic derives the identity at DerivationPath from a BIP-39 phrase.
func FromMnemonic(phrase string) (*Identity, error) {
	return FromMnemonicPath(phrase, DerivationPath)
}

// FromMnemonicPath derives the identity at an explicit hardened path.
func FromMnemonicPath(phrase, path string) (*Identity, error) {
	normalized := strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
	if normalized == "" {
		return nil, errors.New(errors.CodeInvalidMnemonic, "助记词为空")
	}
	words := len(strings.Fields(normalized))
	if words%3 != 0 || words < 12 || words > 24 {
		return nil, errors.New(errors.CodeInvalidMnemonic, fmt.Sprintf("助记词单词数不合法: %d", words))
	}
	// IsMnemonicValid 只检查单词表，校验和需要完整解码才能验证。
	if _, err := bip39.MnemonicToByteArray(normalized); err != nil {
		return nil, errors.Wrap(errors.CodeInvalidMnemonic, err, "助记词校验和不合法")
	}

	seed := bip39.NewSeed(normalized, "")
	key, err := deriveEd25519(seed, path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidMnemonic, err, "派生密钥失败")
	}
	return fromSeed(key), nil
}

// FromSecretKey decodes a base64 secret. Accepted layouts are a 32-byte
// seed, a flag-prefixed 33-byte seed and a 64-byte ed25519 private key.
func FromSecretKey(encoded string) (*Identity, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInvalidKeyEncoding, err, "私钥不是合法的 base64")
	}

	switch len(raw) {
	case ed25519.SeedSize:
		return fromSeed(raw), nil
	case ed25519.SeedSize + 1:
		if raw[0] != SchemeFlagEd25519 {
			return nil, errors.New(errors.CodeInvalidKeyEncoding, fmt.Sprintf("不支持的签名方案标识: 0x%02x", raw[0]))
		}
		return fromSeed(raw[1:]), nil
	case ed25519.PrivateKeySize:
		id := fromSeed(raw[:ed25519.SeedSize])
		if !bytes.Equal(id.pub, raw[ed25519.SeedSize:]) {
			return nil, errors.New(errors.CodeInvalidKeyEncoding, "私钥与公钥不匹配")
		}
		return id, nil
	default:
		return nil, errors.New(errors.CodeInvalidKeyEncoding, fmt.Sprintf("私钥长度不合法: %d 字节", len(raw)))
	}
}

func fromSeed(seed []byte) *Identity {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Identity{priv: priv, pub: pub, address: AddressOf(pub)}
}

// AddressOf derives the Sui address blake2b-256(flag || pubkey).
func AddressOf(pub ed25519.PublicKey) ledger.Address {
	h, _ := blake2b.New256(nil)
	h.Write([]byte{SchemeFlagEd25519})
	h.Write(pub)
	var addr ledger.Address
	copy(addr[:], h.Sum(nil))
	return addr
}

// Address returns the derived Sui address.
func (i *Identity) Address() ledger.Address {
	return i.address
}

// PublicKey returns a copy of the ed25519 public key.
func (i *Identity) PublicKey() ed25519.PublicKey {
	return append(ed25519.PublicKey(nil), i.pub...)
}

// ExportSecretKey encodes the seed as base64(flag || seed).
func (i *Identity) ExportSecretKey() string {
	return base64.StdEncoding.EncodeToString(append([]byte{SchemeFlagEd25519}, i.priv.Seed()...))
}

// SignTransaction signs BCS TransactionData bytes and returns the serialized
// signature base64(flag || signature || pubkey).
func (i *Identity) SignTransaction(txBytes []byte) (string, error) {
	if i == nil || len(i.priv) == 0 {
		return "", errors.New(errors.CodeMissingIdentity, "")
	}
	if len(txBytes) == 0 {
		return "", errors.New(errors.CodeInvalidArgument, "待签名交易为空")
	}
	msg := make([]byte, 0, len(transactionIntent)+len(txBytes))
	msg = append(msg, transactionIntent...)
	msg = append(msg, txBytes...)
	digest := blake2b.Sum256(msg)

	sig := ed25519.Sign(i.priv, digest[:])
	out := make([]byte, 0, 1+len(sig)+len(i.pub))
	out = append(out, SchemeFlagEd25519)
	out = append(out, sig...)
	out = append(out, i.pub...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// VerifyTransactionSignature checks a serialized signature produced by
// SignTransaction against txBytes.
func VerifyTransactionSignature(txBytes []byte, serialized string) (ledger.Address, bool) {
	raw, err := base64.StdEncoding.DecodeString(serialized)
	if err != nil || len(raw) != 1+ed25519.SignatureSize+ed25519.PublicKeySize || raw[0] != SchemeFlagEd25519 {
		return ledger.Address{}, false
	}
	sig := raw[1 : 1+ed25519.SignatureSize]
	pub := ed25519.PublicKey(raw[1+ed25519.SignatureSize:])
	digest := blake2b.Sum256(append(append([]byte{}, transactionIntent...), txBytes...))
	return AddressOf(pub), ed25519.Verify(pub, digest[:], sig)
}
