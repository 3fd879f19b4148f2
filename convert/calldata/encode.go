package calldata

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
)

// Field binary encoding. Each field encodes as a format tag, the
// length-prefixed display name and the parameter payload; values and strings
// inside the payload are length-prefixed as well. The per-field hex of this
// encoding ships in the artifact, and the sha3-256 over the concatenation of
// all field encodings is the instruction set hash.
const (
	tagParamRaw         byte = 0x01
	tagParamAmount      byte = 0x02
	tagParamTokenAmount byte = 0x03
	tagParamTrustedName byte = 0x04
	tagParamNFT         byte = 0x05
	tagParamDatetime    byte = 0x06
	tagParamDuration    byte = 0x07
	tagParamUnit        byte = 0x08
	tagParamEnum        byte = 0x09
	tagParamCalldata    byte = 0x0a
)

func appendLengthPrefixed(buf, data []byte) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(data)))
	return append(buf, data...)
}

func appendString(buf []byte, s string) []byte {
	return appendLengthPrefixed(buf, []byte(s))
}

func appendValue(buf []byte, v Value) []byte {
	return appendLengthPrefixed(buf, v.encode())
}

func appendOptionalValue(buf []byte, v *Value) []byte {
	if v == nil {
		return append(buf, 0x00)
	}
	buf = append(buf, 0x01)
	return appendValue(buf, *v)
}

func appendHex(buf []byte, s string) []byte {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return appendString(buf, s)
	}
	return appendLengthPrefixed(buf, raw)
}

func (p ParamRaw) encode() []byte {
	return appendValue([]byte{tagParamRaw}, p.Value)
}

func (p ParamAmount) encode() []byte {
	return appendValue([]byte{tagParamAmount}, p.Value)
}

func (p ParamTokenAmount) encode() []byte {
	buf := appendValue([]byte{tagParamTokenAmount}, p.Value)
	buf = appendOptionalValue(buf, p.Token)
	buf = append(buf, byte(len(p.NativeCurrencies)))
	for _, c := range p.NativeCurrencies {
		buf = appendHex(buf, c)
	}
	buf = appendString(buf, p.Threshold)
	return appendString(buf, p.AboveThresholdMessage)
}

func (p ParamTrustedName) encode() []byte {
	buf := appendValue([]byte{tagParamTrustedName}, p.Value)
	buf = append(buf, byte(len(p.Types)))
	for _, t := range p.Types {
		buf = appendString(buf, t)
	}
	buf = append(buf, byte(len(p.Sources)))
	for _, s := range p.Sources {
		buf = appendString(buf, s)
	}
	return buf
}

func (p ParamNFT) encode() []byte {
	buf := appendValue([]byte{tagParamNFT}, p.Value)
	return appendValue(buf, p.Collection)
}

func (p ParamDatetime) encode() []byte {
	buf := appendValue([]byte{tagParamDatetime}, p.Value)
	return appendString(buf, p.DateType)
}

func (p ParamDuration) encode() []byte {
	return appendValue([]byte{tagParamDuration}, p.Value)
}

func (p ParamUnit) encode() []byte {
	buf := appendValue([]byte{tagParamUnit}, p.Value)
	buf = appendString(buf, p.Base)
	if p.Decimals != nil {
		buf = append(buf, 0x01, byte(*p.Decimals))
	} else {
		buf = append(buf, 0x00)
	}
	if p.Prefix != nil && *p.Prefix {
		return append(buf, 0x01)
	}
	return append(buf, 0x00)
}

func (p ParamEnum) encode() []byte {
	buf := appendValue([]byte{tagParamEnum}, p.Value)
	return append(buf, byte(p.ID))
}

func (p ParamCalldata) encode() []byte {
	buf := appendValue([]byte{tagParamCalldata}, p.Value)
	buf = appendValue(buf, p.Callee)
	return appendHex(buf, p.Selector)
}

// encodeField renders one display instruction: format tag, name, parameter
// payload.
func encodeField(name string, p Param) []byte {
	encoded := p.encode()
	buf := []byte{encoded[0]}
	buf = appendString(buf, name)
	return append(buf, encoded[1:]...)
}
