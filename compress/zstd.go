package compress

// ZstdCodec compresses chunk payloads with Zstandard. It gives the best
// ratio of the codecs here and is the recommended choice for archival
// containers.
//
// The implementation is selected at build time: the default pure-Go path
// (zstd_pure.go) uses klauspost/compress, and the optional cgo path
// (zstd_cgo.go, build tag "gozstd") binds libzstd for higher throughput.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)
