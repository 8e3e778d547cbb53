package container

import (
	"fmt"
	"math"
	"os"
	"slices"
	"sort"

	"github.com/bruceravel/tiled/compress"
	"github.com/bruceravel/tiled/endian"
	"github.com/bruceravel/tiled/internal/hash"
	"github.com/bruceravel/tiled/internal/options"
	"github.com/bruceravel/tiled/internal/pool"
)

// writerConfig carries the file-level encoding choices.
type writerConfig struct {
	chunkElems  int
	compression compress.Type
	engine      endian.EndianEngine
	bigEndian   bool
}

// WriterOption configures WriteFile.
type WriterOption = options.Option[*writerConfig]

// WithChunkSize sets the number of elements per stored chunk.
func WithChunkSize(elems int) WriterOption {
	return options.New(func(cfg *writerConfig) error {
		if elems <= 0 {
			return fmt.Errorf("chunk size must be positive, got %d", elems)
		}
		cfg.chunkElems = elems

		return nil
	})
}

// WithCompression selects the codec for chunk payloads.
func WithCompression(t compress.Type) WriterOption {
	return options.New(func(cfg *writerConfig) error {
		if !t.Valid() {
			return fmt.Errorf("invalid compression type: %v", t)
		}
		cfg.compression = t

		return nil
	})
}

// WithBigEndian writes the file in big-endian byte order. The default is
// little-endian.
func WithBigEndian() WriterOption {
	return options.NoError(func(cfg *writerConfig) {
		cfg.engine = endian.Big()
		cfg.bigEndian = true
	})
}

// WriteFile persists a container tree to path. The file is self-describing:
// byte order, compression, layout and chunk references are all recorded, so
// Open needs nothing beyond the path.
func WriteFile(root *Group, path string, opts ...WriterOption) error {
	cfg := &writerConfig{
		chunkElems:  defaultChunkElems,
		compression: compress.None,
		engine:      endian.Little(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return fmt.Errorf("container: %w", err)
	}

	codec, err := compress.ForType(cfg.compression)
	if err != nil {
		return fmt.Errorf("container: %w", err)
	}

	layout := pool.Get()
	defer pool.Put(layout)
	data := pool.Get()
	defer pool.Put(data)

	enc := &encoder{cfg: cfg, codec: codec, layout: layout, data: data}
	if err := enc.group(root); err != nil {
		return fmt.Errorf("container: encode %q: %w", path, err)
	}

	out := make([]byte, 0, headerSize+layout.Len()+data.Len())
	out = append(out, magic[:]...)
	out = append(out, formatVersion)
	var flags byte
	if cfg.bigEndian {
		flags |= flagBigEndian
	}
	out = append(out, flags, byte(cfg.compression), 0)
	out = cfg.engine.AppendUint32(out, uint32(layout.Len()))
	out = cfg.engine.AppendUint32(out, 0)
	out = append(out, layout.Bytes()...)
	out = append(out, data.Bytes()...)

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("container: write %q: %w", path, err)
	}

	return nil
}

// encoder accumulates the layout section and the data region while walking
// the tree.
type encoder struct {
	cfg    *writerConfig
	codec  compress.Codec
	layout *pool.ByteBuffer
	data   *pool.ByteBuffer
}

func (e *encoder) group(g *Group) error {
	e.layout.B = append(e.layout.B, recGroup)
	if err := e.varstring(g.name); err != nil {
		return err
	}
	if err := e.attrs(g.attrs); err != nil {
		return err
	}

	e.layout.B = e.cfg.engine.AppendUint32(e.layout.B, uint32(len(g.names)))
	for _, name := range g.names {
		switch child := g.children[name].(type) {
		case *Group:
			if err := e.group(child); err != nil {
				return err
			}
		case *Dataset:
			if err := e.dataset(child); err != nil {
				return fmt.Errorf("dataset %q: %w", name, err)
			}
		}
	}

	return nil
}

func (e *encoder) dataset(d *Dataset) error {
	e.layout.B = append(e.layout.B, recDataset)
	if err := e.varstring(d.name); err != nil {
		return err
	}
	if err := e.attrs(d.attrs); err != nil {
		return err
	}

	e.layout.B = append(e.layout.B, byte(d.elemType))
	e.layout.B = e.cfg.engine.AppendUint32(e.layout.B, uint32(d.stringWidth))
	e.layout.B = append(e.layout.B, byte(len(d.shape)))
	for _, dim := range d.shape {
		e.layout.B = e.cfg.engine.AppendUint32(e.layout.B, uint32(dim))
	}

	chunks, err := e.chunk(d)
	if err != nil {
		return err
	}

	e.layout.B = e.cfg.engine.AppendUint32(e.layout.B, uint32(len(chunks)))
	for _, ref := range chunks {
		e.layout.B = e.cfg.engine.AppendUint64(e.layout.B, uint64(ref.offset))
		e.layout.B = e.cfg.engine.AppendUint32(e.layout.B, ref.storedSize)
		e.layout.B = e.cfg.engine.AppendUint32(e.layout.B, ref.rawSize)
		e.layout.B = e.cfg.engine.AppendUint64(e.layout.B, ref.checksum)
		e.layout.B = e.cfg.engine.AppendUint32(e.layout.B, uint32(ref.elems))
	}

	return nil
}

// chunk splits a dataset into chunk payloads, compresses them and appends
// them to the data region. Offsets are relative to the region start.
func (e *encoder) chunk(d *Dataset) ([]chunkRef, error) {
	if d.elemType == VarObject {
		payloads, err := d.allPayloads()
		if err != nil {
			return nil, err
		}

		raw := make([]byte, 0)
		for _, p := range payloads {
			raw = e.cfg.engine.AppendUint32(raw, uint32(len(p)))
			raw = append(raw, p...)
		}

		ref, err := e.appendChunk(raw, d.size)
		if err != nil {
			return nil, err
		}

		return []chunkRef{ref}, nil
	}

	elems, err := d.elementBytes()
	if err != nil {
		return nil, err
	}
	width := d.elemWidth()
	if e.cfg.bigEndian && d.elemType.Numeric() {
		elems = swapOrder(elems, width)
	}

	var refs []chunkRef
	for low := 0; low < d.size; low += e.cfg.chunkElems {
		high := min(low+e.cfg.chunkElems, d.size)
		ref, err := e.appendChunk(elems[low*width:high*width], high-low)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, nil
}

func (e *encoder) appendChunk(raw []byte, elems int) (chunkRef, error) {
	stored, err := e.codec.Compress(raw)
	if err != nil {
		return chunkRef{}, fmt.Errorf("compress chunk: %w", err)
	}

	ref := chunkRef{
		offset:     int64(e.data.Len()),
		storedSize: uint32(len(stored)),
		rawSize:    uint32(len(raw)),
		checksum:   hash.Checksum(stored),
		elems:      elems,
	}
	e.data.Write(stored)

	return ref, nil
}

func (e *encoder) varstring(s string) error {
	if len(s) > maxNameLength {
		return fmt.Errorf("name %q exceeds %d bytes", s, maxNameLength)
	}
	e.layout.B = append(e.layout.B, byte(len(s)))
	e.layout.B = append(e.layout.B, s...)

	return nil
}

// attrs encodes an attribute map with keys sorted, so identical trees encode
// to identical bytes.
func (e *encoder) attrs(attrs map[string]any) error {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e.layout.B = e.cfg.engine.AppendUint16(e.layout.B, uint16(len(keys)))
	for _, k := range keys {
		if err := e.varstring(k); err != nil {
			return err
		}
		switch v := attrs[k].(type) {
		case int64:
			e.layout.B = append(e.layout.B, attrInt64)
			e.layout.B = e.cfg.engine.AppendUint64(e.layout.B, uint64(v))
		case float64:
			e.layout.B = append(e.layout.B, attrFloat)
			e.layout.B = e.cfg.engine.AppendUint64(e.layout.B, math.Float64bits(v))
		case string:
			e.layout.B = append(e.layout.B, attrString)
			e.layout.B = e.cfg.engine.AppendUint32(e.layout.B, uint32(len(v)))
			e.layout.B = append(e.layout.B, v...)
		case []byte:
			e.layout.B = append(e.layout.B, attrBytes)
			e.layout.B = e.cfg.engine.AppendUint32(e.layout.B, uint32(len(v)))
			e.layout.B = append(e.layout.B, v...)
		default:
			return fmt.Errorf("attribute %q: unsupported value type %T", k, v)
		}
	}

	return nil
}

// elementBytes returns the dataset's contiguous little-endian element bytes,
// pulling chunks back from disk for file-backed datasets.
func (d *Dataset) elementBytes() ([]byte, error) {
	if d.backing == nil {
		return d.data, nil
	}

	out := make([]byte, 0, d.size*d.elemWidth())
	for i := range d.backing.chunks {
		raw, err := d.ReadChunk(i)
		if err != nil {
			return nil, err
		}
		out = append(out, raw...)
	}
	if d.backing.engine == endian.Big() && d.elemType.Numeric() {
		out = swapOrder(out, d.elemWidth())
	}

	return out, nil
}

// allPayloads returns every element payload of a VarObject dataset.
func (d *Dataset) allPayloads() ([][]byte, error) {
	if d.backing == nil {
		return d.payloads, nil
	}

	raw, err := d.backing.read(d.name, 0)
	if err != nil {
		return nil, err
	}

	return decodePayloads(raw, d.backing.engine, d.size)
}

// swapOrder returns a copy of data with the byte order of each width-sized
// element reversed.
func swapOrder(data []byte, width int) []byte {
	if width <= 1 {
		return data
	}

	out := slices.Clone(data)
	for base := 0; base+width <= len(out); base += width {
		slices.Reverse(out[base : base+width])
	}

	return out
}
