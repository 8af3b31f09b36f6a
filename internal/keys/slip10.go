package keys

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

const hardenedOffset uint32 = 0x80000000

// deriveEd25519 implements SLIP-0010 for ed25519, where every segment must
// be hardened.
func deriveEd25519(seed []byte, path string) ([]byte, error) {
	segments, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	key, chain := sum[:32], sum[32:]

	for _, index := range segments {
		data := make([]byte, 0, 1+32+4)
		data = append(data, 0x00)
		data = append(data, key...)
		data = binary.BigEndian.AppendUint32(data, index)

		mac = hmac.New(sha512.New, chain)
		mac.Write(data)
		sum = mac.Sum(nil)
		key, chain = sum[:32], sum[32:]
	}
	return key, nil
}

func parsePath(path string) ([]uint32, error) {
	parts := strings.Split(strings.TrimSpace(path), "/")
	if len(parts) < 2 || parts[0] != "m" {
		return nil, fmt.Errorf("派生路径格式不合法: %q", path)
	}
	out := make([]uint32, 0, len(parts)-1)
	for _, part := range parts[1:] {
		if !strings.HasSuffix(part, "'") {
			return nil, fmt.Errorf("ed25519 仅支持硬化派生: %q", part)
		}
		n, err := strconv.ParseUint(strings.TrimSuffix(part, "'"), 10, 31)
		if err != nil {
			return nil, fmt.Errorf("派生路径片段不合法 %q: %w", part, err)
		}
		out = append(out, uint32(n)+hardenedOffset)
	}
	return out, nil
}
