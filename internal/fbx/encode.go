package fbx

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// DefaultVersion is written when EncodeOptions.Version is zero.
const DefaultVersion = 7400

// EncodeOptions controls the binary writer.
type EncodeOptions struct {
	// Version selects 32-bit (< 7500) or 64-bit record headers.
	Version uint32
	// Compress deflates arrays of at least CompressMin bytes.
	Compress    bool
	CompressMin int
}

var footerMagic = []byte{
	0xf8, 0x5a, 0x8c, 0x6a, 0xde, 0xf5, 0xd9, 0x7e,
	0xec, 0xe9, 0x0c, 0xe3, 0x75, 0x8f, 0x29, 0x0b,
}

type writer struct {
	buf  bytes.Buffer
	wide bool
	opts EncodeOptions
}

// Encode writes the children of root as a binary FBX file.
func Encode(w io.Writer, root *Node, opts EncodeOptions) error {
	if opts.Version == 0 {
		opts.Version = DefaultVersion
	}
	if opts.CompressMin <= 0 {
		opts.CompressMin = 128
	}
	e := &writer{wide: opts.Version >= 7500, opts: opts}
	e.buf.WriteString(binaryMagic)
	e.buf.Write([]byte{0x1a, 0x00})
	e.putU32(opts.Version)

	for _, n := range root.Children {
		if err := e.writeNode(n); err != nil {
			return err
		}
	}
	e.writeNull()
	e.buf.Write(make([]byte, 4))
	e.putU32(opts.Version)
	e.buf.Write(make([]byte, 120))
	e.buf.Write(footerMagic)

	_, err := w.Write(e.buf.Bytes())
	if err != nil {
		return fmt.Errorf("fbx: write: %w", err)
	}
	return nil
}

func (e *writer) putU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *writer) putU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *writer) offsetSize() int {
	if e.wide {
		return 8
	}
	return 4
}

func (e *writer) putOffset(v uint64) {
	if e.wide {
		e.putU64(v)
	} else {
		e.putU32(uint32(v))
	}
}

func (e *writer) patchOffset(at int, v uint64) {
	b := e.buf.Bytes()[at:]
	if e.wide {
		binary.LittleEndian.PutUint64(b, v)
	} else {
		binary.LittleEndian.PutUint32(b, uint32(v))
	}
}

func (e *writer) writeNull() {
	e.buf.Write(make([]byte, 3*e.offsetSize()+1))
}

func (e *writer) writeNode(n *Node) error {
	if len(n.Name) > 255 {
		return fmt.Errorf("fbx: record name %q too long", n.Name[:32])
	}
	start := e.buf.Len()
	e.putOffset(0)
	e.putOffset(uint64(len(n.Properties)))
	e.putOffset(0)
	e.buf.WriteByte(byte(len(n.Name)))
	e.buf.WriteString(n.Name)

	propStart := e.buf.Len()
	for i, p := range n.Properties {
		if err := e.writeProperty(p); err != nil {
			return fmt.Errorf("fbx: %s property %d: %w", n.Name, i, err)
		}
	}
	e.patchOffset(start+2*e.offsetSize(), uint64(e.buf.Len()-propStart))

	if len(n.Children) > 0 {
		for _, c := range n.Children {
			if err := e.writeNode(c); err != nil {
				return err
			}
		}
		e.writeNull()
	}
	e.patchOffset(start, uint64(e.buf.Len()))
	return nil
}

func (e *writer) writeProperty(p Property) error {
	e.buf.WriteByte(p.Type)
	switch p.Type {
	case 'Y':
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(p.Int()))
		e.buf.Write(b[:])
	case 'C':
		if p.Bool() {
			e.buf.WriteByte(1)
		} else {
			e.buf.WriteByte(0)
		}
	case 'I':
		e.putU32(uint32(int32(p.Int())))
	case 'L':
		e.putU64(uint64(p.Int()))
	case 'F':
		e.putU32(math.Float32bits(float32(p.Float())))
	case 'D':
		e.putU64(math.Float64bits(p.Float()))
	case 'S', 'R':
		var raw []byte
		switch x := p.Value.(type) {
		case string:
			raw = []byte(x)
		case []byte:
			raw = x
		}
		e.putU32(uint32(len(raw)))
		e.buf.Write(raw)
	case 'f', 'd', 'l', 'i', 'b':
		return e.writeArray(p)
	default:
		return fmt.Errorf("unknown property type %q", p.Type)
	}
	return nil
}

func (e *writer) writeArray(p Property) error {
	var raw bytes.Buffer
	le := binary.LittleEndian
	count := p.Len()
	switch x := p.Value.(type) {
	case []float32:
		for _, v := range x {
			_ = binary.Write(&raw, le, math.Float32bits(v))
		}
	case []float64:
		for _, v := range x {
			_ = binary.Write(&raw, le, math.Float64bits(v))
		}
	case []int64:
		_ = binary.Write(&raw, le, x)
	case []int32:
		_ = binary.Write(&raw, le, x)
	case []bool:
		for _, v := range x {
			if v {
				raw.WriteByte(1)
			} else {
				raw.WriteByte(0)
			}
		}
	default:
		return fmt.Errorf("array type %q holds %T", p.Type, p.Value)
	}

	payload := raw.Bytes()
	encoding := uint32(0)
	if e.opts.Compress && len(payload) >= e.opts.CompressMin {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		if _, err := zw.Write(payload); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
		payload = z.Bytes()
		encoding = 1
	}
	e.putU32(uint32(count))
	e.putU32(encoding)
	e.putU32(uint32(len(payload)))
	e.buf.Write(payload)
	return nil
}
