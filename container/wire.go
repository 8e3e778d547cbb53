package container

import (
	"fmt"

	"github.com/bruceravel/tiled/endian"
)

// On-disk layout:
//
//	header (16 bytes, fixed):
//	  [4] magic "TLC1"
//	  [1] version
//	  [1] flags (bit0: big-endian)
//	  [1] compression type
//	  [1] reserved
//	  [4] layout section size (byte order per flags)
//	  [4] reserved
//	layout section: recursive node records (group layout + attributes +
//	  chunk references), decoded eagerly at open time
//	data region: compressed chunk payloads, referenced by offset relative
//	  to the region start and read lazily
const (
	headerSize    = 16
	formatVersion = 1

	flagBigEndian = 0x01

	recGroup   = 0x01
	recDataset = 0x02

	attrInt64  = 0x01
	attrFloat  = 0x02
	attrString = 0x03
	attrBytes  = 0x04

	// maxNameLength bounds child names and attribute keys so they fit a
	// one-byte length prefix.
	maxNameLength = 255
)

var magic = [4]byte{'T', 'L', 'C', '1'}

// cursor is a bounds-checked reader over the layout section.
type cursor struct {
	buf    []byte
	off    int
	engine endian.EndianEngine
}

func (c *cursor) remain() int {
	return len(c.buf) - c.off
}

func (c *cursor) take(n int) ([]byte, error) {
	if c.remain() < n {
		return nil, fmt.Errorf("layout truncated: want %d bytes at offset %d, have %d", n, c.off, c.remain())
	}
	b := c.buf[c.off : c.off+n]
	c.off += n

	return b, nil
}

func (c *cursor) u8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

func (c *cursor) u16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}

	return c.engine.Uint16(b), nil
}

func (c *cursor) u32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}

	return c.engine.Uint32(b), nil
}

func (c *cursor) u64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}

	return c.engine.Uint64(b), nil
}

// varstring reads a one-byte length prefix followed by that many bytes.
func (c *cursor) varstring() (string, error) {
	n, err := c.u8()
	if err != nil {
		return "", err
	}
	b, err := c.take(int(n))
	if err != nil {
		return "", err
	}

	return string(b), nil
}
