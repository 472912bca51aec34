package codec

import (
	"errors"
	"math"
	"testing"
)

func TestRealRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value float64
	}{
		{"zero", 0},
		{"typical flow rate", 1.0},
		{"fractional", 0.125},
		{"negative", -273.15},
		{"large", 1e6},
		{"large negative", -1e6},
		{"lab pressure", 1013.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := EncodeReal(tt.value)
			if len(buf) != RealSize {
				t.Fatalf("EncodeReal() len = %d, want %d", len(buf), RealSize)
			}
			got, err := DecodeReal(buf)
			if err != nil {
				t.Fatalf("DecodeReal() error = %v", err)
			}
			// Single precision on the wire: tolerance scales with magnitude.
			tol := math.Max(1e-6, math.Abs(tt.value)*1e-6)
			if math.Abs(got-tt.value) > tol {
				t.Errorf("round trip = %v, want %v (tol %v)", got, tt.value, tol)
			}
		})
	}
}

func TestRealBigEndianLayout(t *testing.T) {
	// 1.0 as IEEE-754 single, big-endian: 3F 80 00 00
	buf := EncodeReal(1.0)
	want := []byte{0x3F, 0x80, 0x00, 0x00}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("EncodeReal(1.0) = % X, want % X", buf, want)
		}
	}
}

func TestDecodeRealShortBuffer(t *testing.T) {
	if _, err := DecodeReal([]byte{0x3F, 0x80}); err == nil {
		t.Error("DecodeReal() on short buffer: expected error, got nil")
	}
}

func TestIntRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value int
	}{
		{"zero", 0},
		{"small", 5},
		{"negative", -42},
		{"min", math.MinInt16},
		{"max", math.MaxInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := EncodeInt(tt.value)
			if err != nil {
				t.Fatalf("EncodeInt() error = %v", err)
			}
			got, err := DecodeInt(buf)
			if err != nil {
				t.Fatalf("DecodeInt() error = %v", err)
			}
			if int(got) != tt.value {
				t.Errorf("round trip = %d, want %d", got, tt.value)
			}
		})
	}
}

func TestEncodeIntOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		value int
	}{
		{"above max", 40000},
		{"below min", -40000},
		{"just above", math.MaxInt16 + 1},
		{"just below", math.MinInt16 - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeInt(tt.value)
			var rangeErr *RangeError
			if !errors.As(err, &rangeErr) {
				t.Errorf("EncodeInt(%d) error = %v, want RangeError", tt.value, err)
			}
		})
	}
}

func TestBitHelpers(t *testing.T) {
	tests := []struct {
		name string
		in   byte
		bit  uint8
		set  bool
		want byte
	}{
		{"set bit 0", 0x00, 0, true, 0x01},
		{"set bit 3", 0x00, 3, true, 0x08},
		{"set bit 7", 0x00, 7, true, 0x80},
		{"set already set", 0x01, 0, true, 0x01},
		{"clear bit 0", 0x0F, 0, false, 0x0E},
		{"clear bit 3", 0x0F, 3, false, 0x07},
		{"clear already clear", 0x00, 5, false, 0x00},
		{"preserves neighbors", 0xA5, 1, true, 0xA7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SetBit(tt.in, tt.bit, tt.set)
			if err != nil {
				t.Fatalf("SetBit() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SetBit(0x%02X, %d, %v) = 0x%02X, want 0x%02X", tt.in, tt.bit, tt.set, got, tt.want)
			}
			on, err := GetBit(got, tt.bit)
			if err != nil {
				t.Fatalf("GetBit() error = %v", err)
			}
			if on != tt.set {
				t.Errorf("GetBit() = %v after SetBit(.., %v)", on, tt.set)
			}
		})
	}
}

func TestBitOffsetRange(t *testing.T) {
	if _, err := SetBit(0, 8, true); err == nil {
		t.Error("SetBit(bit=8): expected RangeError, got nil")
	}
	if _, err := GetBit(0, 9); err == nil {
		t.Error("GetBit(bit=9): expected RangeError, got nil")
	}
}

func TestStringRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		maxLen int
	}{
		{"empty", "", 16},
		{"short", "DMSO", 16},
		{"exact fit", "0123456789ABCDEF", 16},
		{"single char", "x", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := EncodeString(tt.value, tt.maxLen)
			if err != nil {
				t.Fatalf("EncodeString() error = %v", err)
			}
			if len(buf) != StringSize(tt.maxLen) {
				t.Fatalf("EncodeString() len = %d, want %d", len(buf), StringSize(tt.maxLen))
			}
			if int(buf[0]) != tt.maxLen || int(buf[1]) != len(tt.value) {
				t.Errorf("header = (%d, %d), want (%d, %d)", buf[0], buf[1], tt.maxLen, len(tt.value))
			}
			got, err := DecodeString(buf)
			if err != nil {
				t.Fatalf("DecodeString() error = %v", err)
			}
			if got != tt.value {
				t.Errorf("round trip = %q, want %q", got, tt.value)
			}
		})
	}
}

func TestEncodeStringTooLong(t *testing.T) {
	_, err := EncodeString("this name is far too long", 16)
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Errorf("EncodeString() error = %v, want RangeError", err)
	}
}

func TestDecodeStringMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"no header", []byte{0x10}},
		{"actual exceeds max", []byte{0x04, 0x08, 'a', 'b', 'c', 'd'}},
		{"actual exceeds data", []byte{0x10, 0x05, 'a', 'b'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeString(tt.data); err == nil {
				t.Errorf("DecodeString(% X): expected error, got nil", tt.data)
			}
		})
	}
}
