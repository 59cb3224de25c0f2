//
// PNG chunk type codes
//
// PNG spec, 5.4 Chunk naming conventions
// https://www.w3.org/TR/2003/REC-PNG-20031110/#5Chunk-naming-conventions
//

package pngchunk

const (
	caseBit = 0x20 // bit 5 of a type byte; set for lower case letters
)

// ChunkType is a 4-byte chunk type code. Each byte is an ASCII letter and
// the case of each byte is a property flag.
//
//	byte 0: ancillary bit     upper = critical,       lower = ancillary
//	byte 1: private bit       upper = public,         lower = private
//	byte 2: reserved bit      must be upper case
//	byte 3: safe-to-copy bit  upper = unsafe to copy, lower = safe to copy
type ChunkType [4]byte

func isLetter(c byte) bool {
	return ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z')
}

// ChunkTypeFromBytes makes a ChunkType from raw bytes.
// All bytes must be ASCII letters.
func ChunkTypeFromBytes(b [4]byte) (t ChunkType, err error) {
	for i, c := range b {
		if !isLetter(c) {
			err = &ChunkTypeError{Err: ErrInvalidEncoding, Input: b[:], Pos: i}
			return
		}
	}
	return ChunkType(b), nil
}

// ParseChunkType makes a ChunkType from a 4-character string such as "tEXt".
func ParseChunkType(s string) (t ChunkType, err error) {
	if len(s) != len(t) {
		err = &ChunkTypeError{Err: ErrInvalidLength, Input: []byte(s), Pos: -1}
		return
	}
	var b [4]byte
	copy(b[:], s)
	return ChunkTypeFromBytes(b)
}

// MustParseChunkType is like ParseChunkType but panics on error.
func MustParseChunkType(s string) ChunkType {
	t, err := ParseChunkType(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Bytes returns the raw type code.
func (t ChunkType) Bytes() [4]byte { return t }

func (t ChunkType) String() string { return string(t[:]) }

// IsValid reports whether every byte is a letter and the reserved bit is clear.
func (t ChunkType) IsValid() bool {
	for _, c := range t {
		if !isLetter(c) {
			return false
		}
	}
	return t.IsReservedBitValid()
}

// IsCritical reports whether the chunk is required to display the image.
func (t ChunkType) IsCritical() bool { return t[0]&caseBit == 0 }

// IsPublic reports whether the chunk type is registered in the PNG spec.
func (t ChunkType) IsPublic() bool { return t[1]&caseBit == 0 }

func (t ChunkType) IsReservedBitValid() bool { return t[2]&caseBit == 0 }

// IsSafeToCopy reports whether editors unaware of the chunk may copy it.
func (t ChunkType) IsSafeToCopy() bool { return t[3]&caseBit != 0 }

// IsSpecial reports whether the chunk is both ancillary and private,
// the class used to carry application-defined messages.
func (t ChunkType) IsSpecial() bool { return !t.IsCritical() && !t.IsPublic() }
