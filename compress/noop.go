package compress

// NoopCodec passes chunk payloads through untouched. It is the default for
// datasets whose encoding already leaves little redundancy, and for tests
// that want byte-stable files.
type NoopCodec struct{}

var _ Codec = (*NoopCodec)(nil)

// Compress returns the input slice as-is. The result aliases the input.
func (NoopCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input slice as-is. The result aliases the input.
func (NoopCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
