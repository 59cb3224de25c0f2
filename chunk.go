//
// a single PNG chunk
//
// PNG spec, 5.3 Chunk layout
// https://www.w3.org/TR/2003/REC-PNG-20031110/#5Chunk-layout
//

package pngchunk

import (
	"bytes"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"unicode/utf8"

	bst "github.com/mixcode/binarystruct"
	"golang.org/x/text/encoding/charmap"
)

const (
	lengthFieldLen = 4
	typeFieldLen   = 4
	crcFieldLen    = 4

	chunkHeaderLen = lengthFieldLen + typeFieldLen
)

// on-disk chunk header. {DataLen, Type}, big-endian.
type chunkHeader struct {
	DataLen int    `binary:"uint32"`  // size of the chunk data
	Type    string `binary:"[4]byte"` // type is 4-byte char sequence
}

// Chunk is a PNG chunk: {Length, Type, [DATA], CRC32}.
// The CRC is always consistent with the type and data.
type Chunk struct {
	typ  ChunkType
	data []byte
	crc  uint32
}

// NewChunk makes a chunk and computes its CRC.
func NewChunk(t ChunkType, data []byte) *Chunk {
	d := make([]byte, len(data))
	copy(d, data)
	return &Chunk{typ: t, data: d, crc: checksum(t, d)}
}

// CRC-32/ISO-HDLC over type and data
func checksum(t ChunkType, data []byte) uint32 {
	h := crc32.NewIEEE()
	h.Write(t[:])
	h.Write(data)
	return h.Sum32()
}

// crcReader is a reader with a built-in CRC32 calculator
type crcReader struct {
	R      io.Reader
	Crc    hash.Hash32
	ReadSz int
}

// a reader & crc32 calculator
func newCrcReader(r io.Reader) *crcReader {
	return &crcReader{R: r, Crc: crc32.NewIEEE()}
}

// reset CRC calculator
func (c *crcReader) ResetCRC(initialData []byte) {
	c.Crc.Reset()
	c.ReadSz = 0
	if initialData != nil {
		c.Crc.Write(initialData)
	}
}

// read data and update CRC32
func (c *crcReader) Read(p []byte) (n int, err error) {
	n, err = c.R.Read(p)
	if err != nil {
		return
	}
	i, err := c.Crc.Write(p[:n])
	c.ReadSz += i
	return
}

// ParseChunk decodes one chunk from the front of b and returns it with
// the number of bytes consumed.
func ParseChunk(b []byte) (c *Chunk, n int, err error) {
	return parseChunk(b, 0)
}

// base is the offset of b in the enclosing stream, used for error reports.
func parseChunk(b []byte, base int) (c *Chunk, n int, err error) {
	if len(b) < lengthFieldLen {
		err = &TruncatedError{Err: ErrTruncatedLength, Offset: base, Want: lengthFieldLen, Have: len(b)}
		return
	}
	if len(b) < chunkHeaderLen {
		err = &TruncatedError{Err: ErrTruncatedType, Offset: base + lengthFieldLen, Want: typeFieldLen, Have: len(b) - lengthFieldLen}
		return
	}

	// read chunk header
	in := bytes.NewReader(b)
	var h chunkHeader
	_, err = bst.Read(in, bst.BigEndian, &h)
	if err != nil {
		return
	}
	var raw [4]byte
	copy(raw[:], h.Type)
	t, err := ChunkTypeFromBytes(raw)
	if err != nil {
		return
	}

	// read data through the CRC calculator
	dataOffset := base + chunkHeaderLen
	if in.Len() < h.DataLen {
		err = &TruncatedError{Err: ErrTruncatedData, Offset: dataOffset, Want: h.DataLen, Have: in.Len()}
		return
	}
	r := newCrcReader(in)
	r.ResetCRC(raw[:])
	data := make([]byte, h.DataLen)
	if _, err = io.ReadFull(r, data); err != nil {
		return
	}

	// Check Chunk CRC
	crcOffset := dataOffset + h.DataLen
	if in.Len() < crcFieldLen {
		err = &TruncatedError{Err: ErrTruncatedCRC, Offset: crcOffset, Want: crcFieldLen, Have: in.Len()}
		return
	}
	var stored uint32
	_, err = bst.Read(in, bst.BigEndian, &stored)
	if err != nil {
		return
	}
	if stored != r.Crc.Sum32() {
		err = &ChecksumError{Type: t, Offset: crcOffset, Stored: stored, Actual: r.Crc.Sum32()}
		return
	}

	c = &Chunk{typ: t, data: data, crc: stored}
	return c, chunkHeaderLen + h.DataLen + crcFieldLen, nil
}

// Length returns the size of the chunk data.
func (c *Chunk) Length() uint32 { return uint32(len(c.data)) }

func (c *Chunk) Type() ChunkType { return c.typ }

// Data returns the chunk data. The slice must not be modified.
func (c *Chunk) Data() []byte { return c.data }

func (c *Chunk) CRC() uint32 { return c.crc }

// Bytes encodes the chunk in its on-disk layout.
func (c *Chunk) Bytes() []byte {
	h, err := bst.Marshal(chunkHeader{DataLen: len(c.data), Type: c.typ.String()}, bst.BigEndian)
	if err != nil {
		panic(err) // fixed layout
	}
	sum, err := bst.Marshal(c.crc, bst.BigEndian)
	if err != nil {
		panic(err)
	}
	b := make([]byte, 0, len(h)+len(c.data)+len(sum))
	b = append(b, h...)
	b = append(b, c.data...)
	return append(b, sum...)
}

// DataAsString returns the chunk data as UTF-8 text.
func (c *Chunk) DataAsString() (s string, err error) {
	if !utf8.Valid(c.data) {
		err = ErrNotUTF8
		return
	}
	return string(c.data), nil
}

// DataAsLatin1 returns the chunk data decoded from ISO 8859-1, the text
// encoding of tEXt and zTXt chunks.
func (c *Chunk) DataAsLatin1() (string, error) {
	b, err := charmap.ISO8859_1.NewDecoder().Bytes(c.data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Chunk) String() string {
	s, err := c.DataAsString()
	if err != nil {
		return fmt.Sprintf("<%s: %d bytes>", c.typ, len(c.data))
	}
	return s
}
