// Package endian provides byte order utilities for the container binary codec.
//
// It combines the ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single EndianEngine interface, so the container writer and reader can
// carry one value that covers both fixed-offset access and append-style
// encoding. Container files record their byte order in the header flag byte;
// the reader picks the matching engine before decoding anything else.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// binary.LittleEndian and binary.BigEndian both satisfy it, so an engine is
// always one of those two stateless values and is safe for concurrent use.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Native reports the host's byte order, determined by inspecting the memory
// layout of a fixed 16-bit value.
func Native() binary.ByteOrder {
	var v uint16 = 0x0100

	// For little-endian hosts the low byte (0x00) sits at the lowest address.
	b := (*[2]byte)(unsafe.Pointer(&v))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return Native() == binary.LittleEndian
}

// Little returns the little-endian engine, the default for container files.
func Little() EndianEngine {
	return binary.LittleEndian
}

// Big returns the big-endian engine.
func Big() EndianEngine {
	return binary.BigEndian
}
