package compress

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func testPayload(n int) []byte {
	// Repetitive enough to compress, with some noise.
	rng := rand.New(rand.NewSource(42))
	data := make([]byte, n)
	for i := range data {
		if i%16 < 12 {
			data[i] = byte(i % 7)
		} else {
			data[i] = byte(rng.Intn(256))
		}
	}

	return data
}

func TestCodecRoundTrip(t *testing.T) {
	payload := testPayload(32 * 1024)

	for _, typ := range []Type{None, Zstd, S2, LZ4} {
		t.Run(typ.String(), func(t *testing.T) {
			codec, err := ForType(typ)
			require.NoError(t, err)

			compressed, err := codec.Compress(payload)
			require.NoError(t, err)

			restored, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.True(t, bytes.Equal(payload, restored))
		})
	}
}

func TestCodecEmptyInput(t *testing.T) {
	for _, typ := range []Type{None, Zstd, S2, LZ4} {
		codec, err := ForType(typ)
		require.NoError(t, err)

		compressed, err := codec.Compress(nil)
		require.NoError(t, err)

		restored, err := codec.Decompress(compressed)
		require.NoError(t, err)
		require.Empty(t, restored)
	}
}

func TestCodecCompresses(t *testing.T) {
	payload := testPayload(64 * 1024)
	for _, typ := range []Type{Zstd, S2, LZ4} {
		codec, err := ForType(typ)
		require.NoError(t, err)

		compressed, err := codec.Compress(payload)
		require.NoError(t, err)
		require.Less(t, len(compressed), len(payload), "%v should shrink repetitive data", typ)
	}
}

func TestForTypeUnknown(t *testing.T) {
	_, err := ForType(Type(0xff))
	require.Error(t, err)
}

func TestDecompressCorrupted(t *testing.T) {
	garbage := []byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x02, 0x03}
	for _, typ := range []Type{Zstd, S2} {
		codec, err := ForType(typ)
		require.NoError(t, err)

		_, err = codec.Decompress(garbage)
		require.Error(t, err, "%v must reject garbage", typ)
	}
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "Zstd", Zstd.String())
	require.Equal(t, "Unknown", Type(0x99).String())
	require.True(t, LZ4.Valid())
	require.False(t, Type(0x99).Valid())
}
