//
// errors reported by the chunk codec
//

package pngchunk

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// groups
	ErrMalformedChunkType = errors.New("malformed chunk type")
	ErrTruncatedInput     = errors.New("truncated input")

	ErrInvalidEncoding  = errors.New("chunk type byte is not an ASCII letter")
	ErrInvalidLength    = errors.New("chunk type must be exactly 4 bytes")
	ErrTruncatedLength  = errors.New("truncated chunk length field")
	ErrTruncatedType    = errors.New("truncated chunk type field")
	ErrTruncatedData    = errors.New("truncated chunk data")
	ErrTruncatedCRC     = errors.New("truncated chunk crc field")
	ErrChecksumMismatch = errors.New("chunk crc mismatch")
	ErrBadSignature     = errors.New("invalid PNG signature")
	ErrChunkNotFound    = errors.New("chunk not found")
	ErrNotUTF8          = errors.New("chunk data is not valid utf-8")
)

// ChunkTypeError reports a chunk type that cannot be constructed.
type ChunkTypeError struct {
	Err   error  // ErrInvalidEncoding or ErrInvalidLength
	Input []byte // offending input
	Pos   int    // position of the first bad byte; -1 for length errors
}

func (e *ChunkTypeError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("%v: got %d bytes %q", e.Err, len(e.Input), e.Input)
	}
	return fmt.Sprintf("%v: byte %d (0x%02x) of %q", e.Err, e.Pos, e.Input[e.Pos], e.Input)
}

func (e *ChunkTypeError) Unwrap() error { return e.Err }

func (e *ChunkTypeError) Is(target error) bool { return target == ErrMalformedChunkType }

// TruncatedError reports a buffer that ended before a field could be read.
type TruncatedError struct {
	Err    error // one of the ErrTruncated* field errors
	Offset int   // offset of the field, relative to the parsed buffer
	Want   int   // bytes required by the field
	Have   int   // bytes remaining
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("%v at offset %d: need %d bytes, have %d", e.Err, e.Offset, e.Want, e.Have)
}

func (e *TruncatedError) Unwrap() error { return e.Err }

func (e *TruncatedError) Is(target error) bool { return target == ErrTruncatedInput }

// ChecksumError reports a stored CRC that disagrees with the chunk content.
type ChecksumError struct {
	Type   ChunkType
	Offset int    // offset of the crc field
	Stored uint32 // value found in the stream
	Actual uint32 // value computed over type and data
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%v: chunk %s at offset %d has crc %08x, computed %08x",
		ErrChecksumMismatch, e.Type, e.Offset, e.Stored, e.Actual)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// SignatureError reports a buffer that does not start with the PNG signature.
type SignatureError struct {
	Got []byte
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("%v: % x", ErrBadSignature, e.Got)
}

func (e *SignatureError) Unwrap() error { return ErrBadSignature }

// NotFoundError reports a lookup for a chunk type absent from the image.
type NotFoundError struct {
	Type ChunkType
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", ErrChunkNotFound, e.Type)
}

func (e *NotFoundError) Unwrap() error { return ErrChunkNotFound }
