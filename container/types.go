package container

import "fmt"

// ElementType identifies the stored element encoding of a dataset.
type ElementType uint8

const (
	Float64     ElementType = 0x1 // 8-byte IEEE 754 floats
	Float32     ElementType = 0x2 // 4-byte IEEE 754 floats
	Int64       ElementType = 0x3 // 8-byte signed integers
	Int32       ElementType = 0x4 // 4-byte signed integers
	FixedString ElementType = 0x5 // fixed-width UTF-8, NUL padded
	VarObject   ElementType = 0x6 // variable-length per-element payloads
)

func (e ElementType) String() string {
	switch e {
	case Float64:
		return "Float64"
	case Float32:
		return "Float32"
	case Int64:
		return "Int64"
	case Int32:
		return "Int32"
	case FixedString:
		return "FixedString"
	case VarObject:
		return "VarObject"
	default:
		return "Unknown"
	}
}

// Width returns the fixed byte width of one element, or 0 for types whose
// width is not implied by the type alone (FixedString carries it on the
// dataset, VarObject has none).
func (e ElementType) Width() int {
	switch e {
	case Float64, Int64:
		return 8
	case Float32, Int32:
		return 4
	default:
		return 0
	}
}

// Numeric reports whether elements are fixed-width numbers.
func (e ElementType) Numeric() bool {
	switch e {
	case Float64, Float32, Int64, Int32:
		return true
	default:
		return false
	}
}

// Valid reports whether e names a known element type.
func (e ElementType) Valid() bool {
	return e >= Float64 && e <= VarObject
}

// validAttrValue checks that an attribute value is one of the scalar or
// textual kinds the format can carry.
func validAttrValue(v any) error {
	switch v.(type) {
	case int64, float64, string, []byte:
		return nil
	default:
		return fmt.Errorf("unsupported attribute value type %T", v)
	}
}
