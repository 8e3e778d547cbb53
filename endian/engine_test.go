package endian

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestNative(t *testing.T) {
	var v uint16 = 0x0102
	b := (*[2]byte)(unsafe.Pointer(&v))

	switch b[0] {
	case 0x01:
		require.Equal(t, binary.BigEndian, Native())
	case 0x02:
		require.Equal(t, binary.LittleEndian, Native())
	default:
		t.Fatalf("unexpected probe byte: %v", b[0])
	}
}

func TestIsNativeLittleEndian(t *testing.T) {
	require.Equal(t, Native() == binary.LittleEndian, IsNativeLittleEndian())
}

func TestEngineRoundTrip(t *testing.T) {
	for _, engine := range []EndianEngine{Little(), Big()} {
		buf := engine.AppendUint64(nil, 0xdeadbeefcafe)
		require.Len(t, buf, 8)
		require.Equal(t, uint64(0xdeadbeefcafe), engine.Uint64(buf))

		buf = engine.AppendUint32(nil, 0x01020304)
		require.Equal(t, uint32(0x01020304), engine.Uint32(buf))
	}
}
