package fbx

import "errors"

var (
	// ErrImportFailure marks a file that could not be opened or decoded.
	ErrImportFailure = errors.New("fbx: import failure")
	// ErrNotFBX means the input is neither binary nor ASCII FBX.
	ErrNotFBX = errors.New("fbx: unrecognised file format")
	// ErrTruncated means a binary record ran past the end of the input.
	ErrTruncated = errors.New("fbx: truncated data")
	// ErrUnsupportedVersion is returned for pre-7.0 files, which carry no
	// object ids.
	ErrUnsupportedVersion = errors.New("fbx: unsupported version")
)
