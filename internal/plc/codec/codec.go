// Package codec implements the four S7 cell encodings used by the experiment
// block: REAL (4-byte big-endian IEEE-754 single), INT (2-byte big-endian
// signed), BOOL (single bit within a byte), and STRING (2-byte header plus
// padded data). All functions are pure; no I/O happens here.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// RealSize and IntSize are the on-wire cell widths in bytes.
const (
	RealSize = 4
	IntSize  = 2
)

// StringSize returns the on-wire size of a STRING[maxLen] cell.
func StringSize(maxLen int) int { return 2 + maxLen }

// RangeError reports a value that cannot be represented in its cell.
type RangeError struct {
	Kind string
	Msg  string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s out of range: %s", e.Kind, e.Msg)
}

// EncodingError reports malformed wire data during decode.
type EncodingError struct {
	Kind string
	Msg  string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Kind, e.Msg)
}

// EncodeReal encodes a REAL. The controller stores single precision, so the
// value round-trips only within float32 resolution.
func EncodeReal(v float64) []byte {
	buf := make([]byte, RealSize)
	binary.BigEndian.PutUint32(buf, math.Float32bits(float32(v)))
	return buf
}

// DecodeReal decodes a REAL cell.
func DecodeReal(data []byte) (float64, error) {
	if len(data) < RealSize {
		return 0, &EncodingError{Kind: "REAL", Msg: fmt.Sprintf("need %d bytes, got %d", RealSize, len(data))}
	}
	return float64(math.Float32frombits(binary.BigEndian.Uint32(data))), nil
}

// EncodeInt encodes an INT. Values outside the signed 16-bit range are a
// RangeError, raised before any I/O is attempted.
func EncodeInt(v int) ([]byte, error) {
	if v < math.MinInt16 || v > math.MaxInt16 {
		return nil, &RangeError{Kind: "INT", Msg: fmt.Sprintf("%d not in [%d, %d]", v, math.MinInt16, math.MaxInt16)}
	}
	buf := make([]byte, IntSize)
	binary.BigEndian.PutUint16(buf, uint16(int16(v)))
	return buf, nil
}

// DecodeInt decodes an INT cell.
func DecodeInt(data []byte) (int16, error) {
	if len(data) < IntSize {
		return 0, &EncodingError{Kind: "INT", Msg: fmt.Sprintf("need %d bytes, got %d", IntSize, len(data))}
	}
	return int16(binary.BigEndian.Uint16(data)), nil
}

// SetBit returns b with the given bit set or cleared. Bit offsets outside
// [0,7] are a RangeError.
func SetBit(b byte, bit uint8, v bool) (byte, error) {
	if bit > 7 {
		return b, &RangeError{Kind: "BOOL", Msg: fmt.Sprintf("bit offset %d not in [0, 7]", bit)}
	}
	if v {
		return b | (1 << bit), nil
	}
	return b &^ (1 << bit), nil
}

// GetBit reports whether the given bit of b is set.
func GetBit(b byte, bit uint8) (bool, error) {
	if bit > 7 {
		return false, &RangeError{Kind: "BOOL", Msg: fmt.Sprintf("bit offset %d not in [0, 7]", bit)}
	}
	return b&(1<<bit) != 0, nil
}

// EncodeString encodes an S7 STRING[maxLen] cell:
//
//	byte 0: maximum length
//	byte 1: actual length
//	bytes 2..: data, zero padded to maxLen
//
// Strings longer than maxLen are a RangeError.
func EncodeString(s string, maxLen int) ([]byte, error) {
	if maxLen < 1 || maxLen > 254 {
		return nil, &RangeError{Kind: "STRING", Msg: fmt.Sprintf("max length %d not in [1, 254]", maxLen)}
	}
	if len(s) > maxLen {
		return nil, &RangeError{Kind: "STRING", Msg: fmt.Sprintf("%q exceeds max length %d", s, maxLen)}
	}
	buf := make([]byte, StringSize(maxLen))
	buf[0] = byte(maxLen)
	buf[1] = byte(len(s))
	copy(buf[2:], s)
	return buf, nil
}

// DecodeString decodes an S7 STRING cell. The actual length in the header is
// clamped against both the declared maximum and the available data.
func DecodeString(data []byte) (string, error) {
	if len(data) < 2 {
		return "", &EncodingError{Kind: "STRING", Msg: fmt.Sprintf("need at least 2 header bytes, got %d", len(data))}
	}
	maxLen := int(data[0])
	actual := int(data[1])
	if actual > maxLen {
		return "", &EncodingError{Kind: "STRING", Msg: fmt.Sprintf("actual length %d exceeds declared max %d", actual, maxLen)}
	}
	if actual > len(data)-2 {
		return "", &EncodingError{Kind: "STRING", Msg: fmt.Sprintf("actual length %d exceeds available %d bytes", actual, len(data)-2)}
	}
	return string(data[2 : 2+actual]), nil
}
