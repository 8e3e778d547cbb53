package container

import (
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/bruceravel/tiled/compress"
	"github.com/bruceravel/tiled/endian"
	"github.com/bruceravel/tiled/internal/hash"
)

// defaultChunkElems is the number of elements per chunk when a dataset is
// written without an explicit chunk size.
const defaultChunkElems = 1024

// Dataset is a leaf node holding a multi-dimensional array. Element bytes
// either live in memory (datasets under construction) or on disk behind
// chunk references (datasets from an opened file).
type Dataset struct {
	name        string
	attrs       map[string]any
	elemType    ElementType
	stringWidth int // FixedString element width; on VarObject, >0 marks a fixed-string subtype
	shape       []int
	size        int

	data     []byte   // in-memory fixed-width element bytes, little-endian
	payloads [][]byte // in-memory VarObject payloads

	chunkElems int
	backing    *backing
}

// backing holds the on-disk location of a dataset's chunks. The file handle
// is shared with the owning File and closed by it, not here.
type backing struct {
	file   *os.File
	engine endian.EndianEngine
	codec  compress.Codec
	chunks []chunkRef
}

// chunkRef locates one stored chunk. The checksum covers the stored
// (compressed) bytes so corruption is caught before decompression.
type chunkRef struct {
	offset     int64
	storedSize uint32
	rawSize    uint32
	checksum   uint64
	elems      int
}

var _ Node = (*Dataset)(nil)

func (d *Dataset) isNode() {}

func newDataset(elemType ElementType, stringWidth int, shape []int) (*Dataset, error) {
	size := 1
	for _, dim := range shape {
		if dim < 0 {
			return nil, fmt.Errorf("negative dimension %d in shape %v", dim, shape)
		}
		size *= dim
	}

	return &Dataset{
		attrs:       make(map[string]any),
		elemType:    elemType,
		stringWidth: stringWidth,
		shape:       slices.Clone(shape),
		size:        size,
		chunkElems:  defaultChunkElems,
	}, nil
}

// NewFloat64Dataset creates an in-memory dataset of 8-byte floats. The
// product of shape must equal len(values).
func NewFloat64Dataset(shape []int, values []float64) (*Dataset, error) {
	d, err := newDataset(Float64, 0, shape)
	if err != nil {
		return nil, err
	}
	if err := d.checkSize(len(values)); err != nil {
		return nil, err
	}

	engine := endian.Little()
	d.data = make([]byte, 0, len(values)*8)
	for _, v := range values {
		d.data = engine.AppendUint64(d.data, math.Float64bits(v))
	}

	return d, nil
}

// NewFloat32Dataset creates an in-memory dataset of 4-byte floats.
func NewFloat32Dataset(shape []int, values []float32) (*Dataset, error) {
	d, err := newDataset(Float32, 0, shape)
	if err != nil {
		return nil, err
	}
	if err := d.checkSize(len(values)); err != nil {
		return nil, err
	}

	engine := endian.Little()
	d.data = make([]byte, 0, len(values)*4)
	for _, v := range values {
		d.data = engine.AppendUint32(d.data, math.Float32bits(v))
	}

	return d, nil
}

// NewInt64Dataset creates an in-memory dataset of 8-byte signed integers.
func NewInt64Dataset(shape []int, values []int64) (*Dataset, error) {
	d, err := newDataset(Int64, 0, shape)
	if err != nil {
		return nil, err
	}
	if err := d.checkSize(len(values)); err != nil {
		return nil, err
	}

	engine := endian.Little()
	d.data = make([]byte, 0, len(values)*8)
	for _, v := range values {
		d.data = engine.AppendUint64(d.data, uint64(v))
	}

	return d, nil
}

// NewInt32Dataset creates an in-memory dataset of 4-byte signed integers.
func NewInt32Dataset(shape []int, values []int32) (*Dataset, error) {
	d, err := newDataset(Int32, 0, shape)
	if err != nil {
		return nil, err
	}
	if err := d.checkSize(len(values)); err != nil {
		return nil, err
	}

	engine := endian.Little()
	d.data = make([]byte, 0, len(values)*4)
	for _, v := range values {
		d.data = engine.AppendUint32(d.data, uint32(v))
	}

	return d, nil
}

// NewStringDataset creates a one-dimensional dataset of fixed-width strings.
// Values longer than width are rejected; shorter ones are NUL padded.
func NewStringDataset(width int, values []string) (*Dataset, error) {
	if width <= 0 {
		return nil, fmt.Errorf("string width must be positive, got %d", width)
	}

	d, err := newDataset(FixedString, width, []int{len(values)})
	if err != nil {
		return nil, err
	}

	d.data = make([]byte, 0, len(values)*width)
	for _, v := range values {
		if len(v) > width {
			return nil, fmt.Errorf("value %q exceeds string width %d", v, width)
		}
		d.data = append(d.data, v...)
		d.data = append(d.data, make([]byte, width-len(v))...)
	}

	return d, nil
}

// NewObjectDataset creates a one-dimensional dataset of variable-length
// per-element payloads. This element encoding is allowed by the format but
// not interoperable; readers are expected to degrade gracefully.
func NewObjectDataset(payloads [][]byte) (*Dataset, error) {
	d, err := newDataset(VarObject, 0, []int{len(payloads)})
	if err != nil {
		return nil, err
	}

	d.payloads = make([][]byte, len(payloads))
	for i, p := range payloads {
		d.payloads[i] = slices.Clone(p)
	}

	return d, nil
}

// NewObjectStringDataset creates a variable-length dataset whose elements
// are declared as fixed-width strings. Despite the VarObject storage, the
// declared width lets readers treat it as a normal string dataset.
func NewObjectStringDataset(width int, values []string) (*Dataset, error) {
	if width <= 0 {
		return nil, fmt.Errorf("string width must be positive, got %d", width)
	}

	payloads := make([][]byte, len(values))
	for i, v := range values {
		if len(v) > width {
			return nil, fmt.Errorf("value %q exceeds string width %d", v, width)
		}
		payloads[i] = []byte(v)
	}

	d, err := newDataset(VarObject, width, []int{len(values)})
	if err != nil {
		return nil, err
	}
	d.payloads = payloads

	return d, nil
}

func (d *Dataset) checkSize(n int) error {
	if n != d.size {
		return fmt.Errorf("shape %v implies %d elements, got %d values", d.shape, d.size, n)
	}

	return nil
}

// Name returns the dataset's name within its parent.
func (d *Dataset) Name() string {
	return d.name
}

// Attributes returns a copy of the dataset's attribute map.
func (d *Dataset) Attributes() map[string]any {
	attrs := make(map[string]any, len(d.attrs))
	for k, v := range d.attrs {
		attrs[k] = v
	}

	return attrs
}

// SetAttr sets one attribute. The value must be int64, float64, string or
// []byte.
func (d *Dataset) SetAttr(key string, value any) error {
	if err := validAttrValue(value); err != nil {
		return fmt.Errorf("attribute %q: %w", key, err)
	}
	d.attrs[key] = value

	return nil
}

// ElemType returns the stored element encoding.
func (d *Dataset) ElemType() ElementType {
	return d.elemType
}

// StringWidth returns the declared string width: the element width for
// FixedString datasets, or the fixed-string subtype width for VarObject
// datasets (0 when the payloads are genuinely ragged).
func (d *Dataset) StringWidth() int {
	return d.stringWidth
}

// Shape returns a copy of the dataset's dimensions.
func (d *Dataset) Shape() []int {
	return slices.Clone(d.shape)
}

// Len returns the total number of elements (the product of the shape).
func (d *Dataset) Len() int {
	return d.size
}

// elemWidth returns the byte width of one stored element, 0 for VarObject.
func (d *Dataset) elemWidth() int {
	if d.elemType == FixedString {
		return d.stringWidth
	}

	return d.elemType.Width()
}

// Engine returns the byte order of the bytes ReadChunk produces.
func (d *Dataset) Engine() endian.EndianEngine {
	if d.backing != nil {
		return d.backing.engine
	}

	return endian.Little()
}

// NumChunks returns the number of chunks a fixed-width dataset is split
// into. VarObject datasets always report 1.
func (d *Dataset) NumChunks() int {
	if d.backing != nil {
		return len(d.backing.chunks)
	}
	if d.elemType == VarObject {
		return 1
	}
	if d.size == 0 {
		return 0
	}

	return (d.size + d.chunkElems - 1) / d.chunkElems
}

// ChunkLen returns the element count of chunk i.
func (d *Dataset) ChunkLen(i int) int {
	if d.backing != nil {
		return d.backing.chunks[i].elems
	}
	if d.elemType == VarObject {
		return d.size
	}

	low := i * d.chunkElems
	high := min(low+d.chunkElems, d.size)

	return high - low
}

// ReadChunk returns the element bytes of chunk i for a fixed-width dataset.
// For an opened file this reads the stored bytes, verifies the checksum and
// decompresses; nothing is cached. The byte order is Engine().
func (d *Dataset) ReadChunk(i int) ([]byte, error) {
	if d.elemType == VarObject {
		return nil, fmt.Errorf("dataset %q: variable-length datasets have no fixed-width chunks", d.name)
	}
	if i < 0 || i >= d.NumChunks() {
		return nil, fmt.Errorf("dataset %q: chunk %d out of range [0, %d)", d.name, i, d.NumChunks())
	}

	if d.backing == nil {
		width := d.elemWidth()
		low := i * d.chunkElems * width
		high := min(low+d.chunkElems*width, len(d.data))

		return d.data[low:high], nil
	}

	return d.backing.read(d.name, i)
}

// ObjectPayload returns the i-th element payload of a VarObject dataset. For
// an opened file the whole payload chunk is re-read and decoded per call.
func (d *Dataset) ObjectPayload(i int) ([]byte, error) {
	if d.elemType != VarObject {
		return nil, fmt.Errorf("dataset %q: not a variable-length dataset", d.name)
	}
	if i < 0 || i >= d.size {
		return nil, fmt.Errorf("dataset %q: element %d out of range [0, %d)", d.name, i, d.size)
	}

	if d.backing == nil {
		return slices.Clone(d.payloads[i]), nil
	}

	raw, err := d.backing.read(d.name, 0)
	if err != nil {
		return nil, err
	}
	payloads, err := decodePayloads(raw, d.backing.engine, d.size)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", d.name, err)
	}

	return payloads[i], nil
}

// read fetches, verifies and decompresses one stored chunk.
func (b *backing) read(name string, i int) ([]byte, error) {
	ref := b.chunks[i]
	if ref.storedSize == 0 {
		return nil, nil
	}

	stored := make([]byte, ref.storedSize)
	if _, err := b.file.ReadAt(stored, ref.offset); err != nil {
		return nil, fmt.Errorf("dataset %q: read chunk %d: %w", name, i, err)
	}

	if sum := hash.Checksum(stored); sum != ref.checksum {
		return nil, fmt.Errorf("dataset %q: chunk %d checksum mismatch: stored %#x, computed %#x",
			name, i, ref.checksum, sum)
	}

	raw, err := b.codec.Decompress(stored)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: decompress chunk %d: %w", name, i, err)
	}
	if len(raw) != int(ref.rawSize) {
		return nil, fmt.Errorf("dataset %q: chunk %d decompressed to %d bytes, expected %d",
			name, i, len(raw), ref.rawSize)
	}

	return raw, nil
}

// decodePayloads splits a VarObject chunk into its length-prefixed elements.
func decodePayloads(raw []byte, engine endian.EndianEngine, count int) ([][]byte, error) {
	payloads := make([][]byte, 0, count)
	for len(payloads) < count {
		if len(raw) < 4 {
			return nil, fmt.Errorf("truncated payload chunk: %d elements decoded, want %d", len(payloads), count)
		}
		n := int(engine.Uint32(raw[:4]))
		raw = raw[4:]
		if len(raw) < n {
			return nil, fmt.Errorf("truncated payload element: want %d bytes, have %d", n, len(raw))
		}
		payloads = append(payloads, slices.Clone(raw[:n]))
		raw = raw[n:]
	}

	return payloads, nil
}
