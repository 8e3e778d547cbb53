package container

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/bruceravel/tiled/compress"
	"github.com/bruceravel/tiled/endian"
)

// File is a read-only open container. The group layout and attributes are
// decoded at open time; dataset chunks stay on disk until read.
//
// Every Dataset reached through Root shares the File's handle, so the File
// must outlive all reads and be closed by whoever opened it.
type File struct {
	f    *os.File
	root *Group
}

// Open opens a container file read-only.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}

	file, err := parse(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("container: open %q: %w", path, err)
	}

	return file, nil
}

// Root returns the root group.
func (f *File) Root() *Group {
	return f.root
}

// Close releases the underlying file handle. Lazy reads on datasets from
// this file fail afterwards.
func (f *File) Close() error {
	return f.f.Close()
}

func parse(f *os.File) (*File, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if !bytes.Equal(header[:4], magic[:]) {
		return nil, fmt.Errorf("bad magic %q", header[:4])
	}
	if header[4] != formatVersion {
		return nil, fmt.Errorf("unsupported format version %d", header[4])
	}

	engine := endian.Little()
	if header[5]&flagBigEndian != 0 {
		engine = endian.Big()
	}

	compression := compress.Type(header[6])
	codec, err := compress.ForType(compression)
	if err != nil {
		return nil, err
	}

	layoutSize := engine.Uint32(header[8:12])
	layout := make([]byte, layoutSize)
	if _, err := io.ReadFull(f, layout); err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}

	dec := &decoder{
		cur:       &cursor{buf: layout, engine: engine},
		file:      f,
		engine:    engine,
		codec:     codec,
		dataStart: int64(headerSize) + int64(layoutSize),
	}

	root, err := dec.node()
	if err != nil {
		return nil, err
	}
	rootGroup, ok := root.(*Group)
	if !ok {
		return nil, fmt.Errorf("root record is not a group")
	}
	if dec.cur.remain() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after layout", dec.cur.remain())
	}

	return &File{f: f, root: rootGroup}, nil
}

type decoder struct {
	cur       *cursor
	file      *os.File
	engine    endian.EndianEngine
	codec     compress.Codec
	dataStart int64
}

func (d *decoder) node() (Node, error) {
	tag, err := d.cur.u8()
	if err != nil {
		return nil, err
	}

	switch tag {
	case recGroup:
		return d.group()
	case recDataset:
		return d.dataset()
	default:
		return nil, fmt.Errorf("unknown record tag %#x at offset %d", tag, d.cur.off-1)
	}
}

func (d *decoder) group() (*Group, error) {
	name, err := d.cur.varstring()
	if err != nil {
		return nil, err
	}

	g := NewGroup()
	g.name = name
	if g.attrs, err = d.attrs(); err != nil {
		return nil, fmt.Errorf("group %q: %w", name, err)
	}

	count, err := d.cur.u32()
	if err != nil {
		return nil, err
	}
	for range count {
		child, err := d.node()
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
		childName := child.Name()
		if _, dup := g.children[childName]; dup {
			return nil, fmt.Errorf("group %q: duplicate child %q", name, childName)
		}
		g.names = append(g.names, childName)
		g.children[childName] = child
	}

	return g, nil
}

func (d *decoder) dataset() (*Dataset, error) {
	name, err := d.cur.varstring()
	if err != nil {
		return nil, err
	}

	attrs, err := d.attrs()
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}

	typeByte, err := d.cur.u8()
	if err != nil {
		return nil, err
	}
	elemType := ElementType(typeByte)
	if !elemType.Valid() {
		return nil, fmt.Errorf("dataset %q: unknown element type %#x", name, typeByte)
	}

	width, err := d.cur.u32()
	if err != nil {
		return nil, err
	}

	ndims, err := d.cur.u8()
	if err != nil {
		return nil, err
	}
	shape := make([]int, ndims)
	for i := range shape {
		dim, err := d.cur.u32()
		if err != nil {
			return nil, err
		}
		shape[i] = int(dim)
	}

	ds, err := newDataset(elemType, int(width), shape)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", name, err)
	}
	ds.name = name
	ds.attrs = attrs

	chunkCount, err := d.cur.u32()
	if err != nil {
		return nil, err
	}
	chunks := make([]chunkRef, chunkCount)
	total := 0
	for i := range chunks {
		rel, err := d.cur.u64()
		if err != nil {
			return nil, err
		}
		storedSize, err := d.cur.u32()
		if err != nil {
			return nil, err
		}
		rawSize, err := d.cur.u32()
		if err != nil {
			return nil, err
		}
		checksum, err := d.cur.u64()
		if err != nil {
			return nil, err
		}
		elems, err := d.cur.u32()
		if err != nil {
			return nil, err
		}
		chunks[i] = chunkRef{
			offset:     d.dataStart + int64(rel),
			storedSize: storedSize,
			rawSize:    rawSize,
			checksum:   checksum,
			elems:      int(elems),
		}
		total += int(elems)
	}
	if elemType != VarObject && total != ds.size {
		return nil, fmt.Errorf("dataset %q: chunks cover %d elements, shape implies %d", name, total, ds.size)
	}

	ds.backing = &backing{
		file:   d.file,
		engine: d.engine,
		codec:  d.codec,
		chunks: chunks,
	}

	return ds, nil
}

func (d *decoder) attrs() (map[string]any, error) {
	count, err := d.cur.u16()
	if err != nil {
		return nil, err
	}

	attrs := make(map[string]any, count)
	for range count {
		key, err := d.cur.varstring()
		if err != nil {
			return nil, err
		}
		tag, err := d.cur.u8()
		if err != nil {
			return nil, err
		}

		switch tag {
		case attrInt64:
			v, err := d.cur.u64()
			if err != nil {
				return nil, err
			}
			attrs[key] = int64(v)
		case attrFloat:
			v, err := d.cur.u64()
			if err != nil {
				return nil, err
			}
			attrs[key] = math.Float64frombits(v)
		case attrString:
			n, err := d.cur.u32()
			if err != nil {
				return nil, err
			}
			b, err := d.cur.take(int(n))
			if err != nil {
				return nil, err
			}
			attrs[key] = string(b)
		case attrBytes:
			n, err := d.cur.u32()
			if err != nil {
				return nil, err
			}
			b, err := d.cur.take(int(n))
			if err != nil {
				return nil, err
			}
			attrs[key] = append([]byte(nil), b...)
		default:
			return nil, fmt.Errorf("attribute %q: unknown value tag %#x", key, tag)
		}
	}

	return attrs, nil
}
