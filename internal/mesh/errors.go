package mesh

import "errors"

var (
	// ErrUnsupportedGeometry means the geometry is missing or has no normal channel.
	ErrUnsupportedGeometry = errors.New("mesh: unsupported geometry")
	// ErrUnsupportedReferenceMode means normals use a reference mode other
	// than direct or index-to-direct.
	ErrUnsupportedReferenceMode = errors.New("mesh: unsupported normal reference mode")
	// ErrUnsupportedMappingMode means normals are mapped other than by
	// control point or by polygon vertex.
	ErrUnsupportedMappingMode = errors.New("mesh: unsupported normal mapping mode")
	// ErrNormalIndex means a normal lookup fell outside its arrays.
	ErrNormalIndex = errors.New("mesh: normal index out of range")
	// ErrIndexOverflow means a polygon-vertex index does not fit in 16 bits.
	ErrIndexOverflow = errors.New("mesh: index exceeds 16 bits")
	// ErrIndexOutOfRange means a polygon-vertex index is negative or past
	// the last control point.
	ErrIndexOutOfRange = errors.New("mesh: index out of range")
)
