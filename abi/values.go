package abi

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ValueError reports a constant that cannot be encoded as the target type.
type ValueError struct {
	Type   string
	Value  any
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("cannot encode %v as %s: %s", e.Value, e.Type, e.Reason)
}

// fixedScale is the implied decimal scale of fixed/ufixed constants written
// as plain numbers.
var fixedScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

var wordModulus = new(big.Int).Lsh(big.NewInt(1), 256)

// EncodeValue encodes a descriptor constant as the given ABI type and
// returns the 0x-prefixed hex encoding:
//
//   - uint/int: a 32-byte big-endian word, two's complement for negatives;
//     a 0x-prefixed string value passes through unchanged
//   - fixed/ufixed: the number scaled by 10^18, encoded as an integer word
//   - bool: a 32-byte word holding 0 or 1
//   - address: the lowercased 20-byte address, unpadded
//   - bytes: the 0x-prefixed hex string, passed through
//   - string: the ABI dynamic encoding, a length word followed by the
//     right-padded UTF-8 bytes
func EncodeValue(abiType string, value any) (string, error) {
	base := abiType
	if i := strings.IndexByte(base, '['); i >= 0 {
		base = base[:i]
	}
	switch {
	case strings.HasPrefix(base, "uint"), strings.HasPrefix(base, "int"):
		return encodeInteger(abiType, value)
	case strings.HasPrefix(base, "ufixed"), strings.HasPrefix(base, "fixed"):
		return encodeFixed(abiType, value)
	case base == "bool":
		return encodeBool(abiType, value)
	case base == "address":
		return encodeAddress(abiType, value)
	case base == "bytes" || strings.HasPrefix(base, "bytes"):
		return encodeBytes(abiType, value)
	case base == "string":
		return encodeString(abiType, value)
	default:
		return "", &ValueError{Type: abiType, Value: value, Reason: "unsupported type"}
	}
}

// wordHex renders an integer as a 32-byte big-endian word, wrapping
// negatives into two's complement.
func wordHex(v *big.Int) string {
	w := new(big.Int).Mod(v, wordModulus)
	return fmt.Sprintf("0x%064x", w)
}

func toBigInt(value any) (*big.Int, bool) {
	switch v := value.(type) {
	case int:
		return big.NewInt(int64(v)), true
	case int64:
		return big.NewInt(v), true
	case float64:
		f := new(big.Float).SetFloat64(v)
		if !f.IsInt() {
			return nil, false
		}
		i, _ := f.Int(nil)
		return i, true
	case *big.Int:
		return v, true
	case string:
		i, ok := new(big.Int).SetString(v, 10)
		return i, ok
	default:
		return nil, false
	}
}

func encodeInteger(abiType string, value any) (string, error) {
	if s, ok := value.(string); ok && strings.HasPrefix(s, "0x") {
		if _, err := hexutil.Decode(s); err != nil {
			return "", &ValueError{Type: abiType, Value: value, Reason: "not a hex string"}
		}
		return s, nil
	}
	i, ok := toBigInt(value)
	if !ok {
		return "", &ValueError{Type: abiType, Value: value, Reason: "not an integer"}
	}
	return wordHex(i), nil
}

func encodeFixed(abiType string, value any) (string, error) {
	if s, ok := value.(string); ok && strings.HasPrefix(s, "0x") {
		if _, err := hexutil.Decode(s); err != nil {
			return "", &ValueError{Type: abiType, Value: value, Reason: "not a hex string"}
		}
		return s, nil
	}
	var r *big.Rat
	switch v := value.(type) {
	case int:
		r = new(big.Rat).SetInt64(int64(v))
	case int64:
		r = new(big.Rat).SetInt64(v)
	case float64:
		r = new(big.Rat).SetFloat64(v)
	case string:
		var ok bool
		r, ok = new(big.Rat).SetString(v)
		if !ok {
			return "", &ValueError{Type: abiType, Value: value, Reason: "not a number"}
		}
	default:
		return "", &ValueError{Type: abiType, Value: value, Reason: "not a number"}
	}
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(fixedScale))
	if !scaled.IsInt() {
		return "", &ValueError{Type: abiType, Value: value, Reason: "more than 18 decimal places"}
	}
	return wordHex(scaled.Num()), nil
}

func encodeBool(abiType string, value any) (string, error) {
	b, ok := value.(bool)
	if !ok {
		return "", &ValueError{Type: abiType, Value: value, Reason: "not a boolean"}
	}
	if b {
		return wordHex(big.NewInt(1)), nil
	}
	return wordHex(big.NewInt(0)), nil
}

func encodeAddress(abiType string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", &ValueError{Type: abiType, Value: value, Reason: "not an address string"}
	}
	if !strings.HasPrefix(s, "0x") || !common.IsHexAddress(s) {
		return "", &ValueError{Type: abiType, Value: value, Reason: "not a 20-byte hex address"}
	}
	return strings.ToLower(s), nil
}

func encodeBytes(abiType string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", &ValueError{Type: abiType, Value: value, Reason: "not a hex string"}
	}
	if _, err := hexutil.Decode(s); err != nil {
		return "", &ValueError{Type: abiType, Value: value, Reason: "not a hex string"}
	}
	return s, nil
}

func encodeString(abiType string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", &ValueError{Type: abiType, Value: value, Reason: "not a string"}
	}
	data := []byte(s)
	padded := len(data)
	if rem := padded % 32; rem != 0 {
		padded += 32 - rem
	}
	var b strings.Builder
	fmt.Fprintf(&b, "0x%064x%x", len(data), data)
	b.WriteString(strings.Repeat("00", padded-len(data)))
	return b.String(), nil
}
