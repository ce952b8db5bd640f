package fbx

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const binaryMagic = "Kaydara FBX Binary  \x00"

// headerLen covers the magic, two reserved bytes and the version.
const headerLen = len(binaryMagic) + 2 + 4

// Decode reads a binary or ASCII FBX stream. The returned root is
// anonymous: its children are the top-level records and its single
// property is the file version.
func Decode(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("fbx: read: %w", err)
	}
	if bytes.HasPrefix(data, []byte(binaryMagic)) {
		return decodeBinary(data)
	}
	if looksASCII(data) {
		return decodeASCII(data)
	}
	return nil, ErrNotFBX
}

// IsBinary reports whether data starts with the binary magic.
func IsBinary(data []byte) bool {
	return bytes.HasPrefix(data, []byte(binaryMagic))
}

type reader struct {
	data    []byte
	off     int
	wide    bool
	version uint32
	err     error
}

func decodeBinary(data []byte) (*Node, error) {
	if len(data) < headerLen {
		return nil, ErrTruncated
	}
	version := binary.LittleEndian.Uint32(data[headerLen-4:])
	r := &reader{data: data, off: headerLen, wide: version >= 7500, version: version}
	root := &Node{Properties: []Property{{'I', int32(version)}}}
	for r.off < len(r.data) {
		start := r.off
		n, err := r.readNode()
		if err != nil {
			return nil, err
		}
		if n == nil {
			break
		}
		if r.off <= start {
			return nil, fmt.Errorf("fbx: record at %d does not advance: %w", start, ErrTruncated)
		}
		root.Children = append(root.Children, n)
	}
	return root, nil
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = fmt.Errorf("%w at offset %d", ErrTruncated, r.off)
		return false
	}
	return true
}

func (r *reader) readBytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) readU8() byte {
	if !r.need(1) {
		return 0
	}
	b := r.data[r.off]
	r.off++
	return b
}

func (r *reader) readU16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

func (r *reader) readU32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *reader) readU64() uint64 {
	if !r.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

// readOffset reads a record header field, 32 or 64 bits wide by version.
func (r *reader) readOffset() uint64 {
	if r.wide {
		return r.readU64()
	}
	return uint64(r.readU32())
}

// readNode returns nil at a null record.
func (r *reader) readNode() (*Node, error) {
	start := r.off
	end := r.readOffset()
	numProps := r.readOffset()
	_ = r.readOffset() // property list length
	nameLen := int(r.readU8())
	if r.err != nil {
		return nil, r.err
	}
	if end == 0 && numProps == 0 && nameLen == 0 {
		return nil, nil
	}
	if end > uint64(len(r.data)) || end < uint64(start) {
		return nil, fmt.Errorf("fbx: record at %d ends at %d: %w", start, end, ErrTruncated)
	}

	n := &Node{Name: string(r.readBytes(nameLen))}
	if r.err != nil {
		return nil, r.err
	}
	if end < uint64(r.off) {
		return nil, fmt.Errorf("fbx: record %s at %d ends inside its header at %d: %w", n.Name, start, end, ErrTruncated)
	}
	for i := uint64(0); i < numProps && r.err == nil; i++ {
		p, err := r.readProperty()
		if err != nil {
			return nil, fmt.Errorf("fbx: %s property %d: %w", n.Name, i, err)
		}
		n.Properties = append(n.Properties, p)
	}
	for r.err == nil && uint64(r.off) < end {
		c, err := r.readNode()
		if err != nil {
			return nil, err
		}
		if c == nil {
			break
		}
		n.Children = append(n.Children, c)
	}
	if r.err != nil {
		return nil, r.err
	}
	if uint64(r.off) > end {
		return nil, fmt.Errorf("fbx: record %s at %d overruns its end %d: %w", n.Name, start, end, ErrTruncated)
	}
	r.off = int(end)
	return n, nil
}

func (r *reader) readProperty() (Property, error) {
	code := r.readU8()
	var p Property
	switch code {
	case 'Y':
		p = Property{code, int16(r.readU16())}
	case 'C':
		p = Property{code, r.readU8() != 0}
	case 'I':
		p = Property{code, int32(r.readU32())}
	case 'F':
		p = Property{code, math.Float32frombits(r.readU32())}
	case 'D':
		p = Property{code, math.Float64frombits(r.readU64())}
	case 'L':
		p = Property{code, int64(r.readU64())}
	case 'S':
		p = Property{code, string(r.readBytes(int(r.readU32())))}
	case 'R':
		raw := r.readBytes(int(r.readU32()))
		p = Property{code, append([]byte(nil), raw...)}
	case 'f', 'd', 'l', 'i', 'b':
		return r.readArray(code)
	default:
		if r.err != nil {
			return Property{}, r.err
		}
		return Property{}, fmt.Errorf("unknown property type %q", code)
	}
	return p, r.err
}

func elemSize(code byte) int {
	switch code {
	case 'd', 'l':
		return 8
	case 'f', 'i':
		return 4
	default:
		return 1
	}
}

func (r *reader) readArray(code byte) (Property, error) {
	count := int(r.readU32())
	encoding := r.readU32()
	compLen := int(r.readU32())
	raw := r.readBytes(compLen)
	if r.err != nil {
		return Property{}, r.err
	}

	want := count * elemSize(code)
	switch encoding {
	case 0:
	case 1:
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return Property{}, fmt.Errorf("inflate: %w", err)
		}
		// One byte past want is enough to tell an oversized array.
		raw, err = io.ReadAll(io.LimitReader(zr, int64(want)+1))
		zr.Close()
		if err != nil {
			return Property{}, fmt.Errorf("inflate: %w", err)
		}
	default:
		return Property{}, fmt.Errorf("unknown array encoding %d", encoding)
	}
	if len(raw) != want {
		return Property{}, fmt.Errorf("array of %d elements has %d bytes: %w", count, len(raw), ErrTruncated)
	}

	le := binary.LittleEndian
	switch code {
	case 'f':
		v := make([]float32, count)
		for i := range v {
			v[i] = math.Float32frombits(le.Uint32(raw[i*4:]))
		}
		return Property{code, v}, nil
	case 'd':
		v := make([]float64, count)
		for i := range v {
			v[i] = math.Float64frombits(le.Uint64(raw[i*8:]))
		}
		return Property{code, v}, nil
	case 'l':
		v := make([]int64, count)
		for i := range v {
			v[i] = int64(le.Uint64(raw[i*8:]))
		}
		return Property{code, v}, nil
	case 'i':
		v := make([]int32, count)
		for i := range v {
			v[i] = int32(le.Uint32(raw[i*4:]))
		}
		return Property{code, v}, nil
	default:
		v := make([]bool, count)
		for i := range v {
			v[i] = raw[i] != 0
		}
		return Property{code, v}, nil
	}
}
