//
// PNG file as a list of chunks
//
// PNG spec
// https://www.w3.org/TR/2003/REC-PNG-20031110/
//

package pngchunk

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	pngHeader = [8]byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a} // PNG file header
)

// Signature returns the 8-byte PNG file signature.
func Signature() [8]byte { return pngHeader }

// PNG image is a list of chunks.
type PNG struct {
	header      [8]byte
	chunk       []*Chunk            // chunks appear in the PNG
	chunkByType map[ChunkType][]int // [type] -> [ChunkIdx, ChunkIdx, ...]
}

// TextEntry is the printable content of a chunk.
type TextEntry struct {
	Type    ChunkType
	Length  uint32
	Text    string
	Decoded bool // false if the data is not UTF-8; Text is then empty
}

// NewPNG makes a PNG from the given chunks.
func NewPNG(chunks ...*Chunk) *PNG {
	p := &PNG{header: pngHeader, chunk: make([]*Chunk, 0, len(chunks))}
	p.chunk = append(p.chunk, chunks...)
	p.reindex()
	return p
}

// ParsePNG decodes an entire PNG file. Any malformed chunk fails the whole parse.
func ParsePNG(b []byte) (parsedPNG *PNG, err error) {
	// read PNG header
	if len(b) < len(pngHeader) || !bytes.Equal(b[:len(pngHeader)], pngHeader[:]) {
		n := len(b)
		if n > len(pngHeader) {
			n = len(pngHeader)
		}
		err = &SignatureError{Got: append([]byte(nil), b[:n]...)}
		return
	}

	newPNG := NewPNG()
	offset := len(pngHeader)
	for offset < len(b) {
		ch, n, e := parseChunk(b[offset:], offset)
		if e != nil {
			err = errors.Wrapf(e, "chunk #%d", len(newPNG.chunk))
			return
		}
		newPNG.AppendChunk(ch)
		offset += n
	}

	return newPNG, nil
}

func (p *PNG) reindex() {
	p.chunkByType = make(map[ChunkType][]int)
	for i, ch := range p.chunk {
		p.chunkByType[ch.typ] = append(p.chunkByType[ch.typ], i)
	}
}

// Header returns the file signature.
func (p *PNG) Header() [8]byte { return p.header }

// Chunks returns the chunks in file order.
func (p *PNG) Chunks() []*Chunk {
	l := make([]*Chunk, len(p.chunk))
	copy(l, p.chunk)
	return l
}

// AppendChunk adds a chunk at the end of the image. Duplicate types are allowed.
func (p *PNG) AppendChunk(ch *Chunk) {
	p.chunk = append(p.chunk, ch)
	p.chunkByType[ch.typ] = append(p.chunkByType[ch.typ], len(p.chunk)-1)
}

// ChunkByType returns the first chunk of type t, or nil.
func (p *PNG) ChunkByType(t ChunkType) *Chunk {
	l := p.chunkByType[t]
	if len(l) < 1 {
		return nil
	}
	return p.chunk[l[0]]
}

// ChunksByType returns every chunk of type t in file order.
func (p *PNG) ChunksByType(t ChunkType) []*Chunk {
	l := p.chunkByType[t]
	if len(l) < 1 {
		return nil
	}
	chunks := make([]*Chunk, len(l))
	for i, idx := range l {
		chunks[i] = p.chunk[idx]
	}
	return chunks
}

// RemoveChunk removes and returns the first chunk of type t.
// The PNG is left unchanged if there is no such chunk.
func (p *PNG) RemoveChunk(t ChunkType) (removed *Chunk, err error) {
	l := p.chunkByType[t]
	if len(l) < 1 {
		err = &NotFoundError{Type: t}
		return
	}
	idx := l[0]
	removed = p.chunk[idx]
	p.chunk = append(p.chunk[:idx:idx], p.chunk[idx+1:]...)
	p.reindex()
	return removed, nil
}

// Bytes encodes the PNG file.
func (p *PNG) Bytes() []byte {
	sz := len(p.header)
	for _, ch := range p.chunk {
		sz += chunkHeaderLen + len(ch.data) + crcFieldLen
	}
	b := make([]byte, 0, sz)
	b = append(b, p.header[:]...)
	for _, ch := range p.chunk {
		b = append(b, ch.Bytes()...)
	}
	return b
}

// SpecialChunks returns the ancillary private chunks with their text.
func (p *PNG) SpecialChunks() []TextEntry {
	var l []TextEntry
	for _, ch := range p.chunk {
		if !ch.typ.IsSpecial() {
			continue
		}
		e := TextEntry{Type: ch.typ, Length: ch.Length()}
		if s, err := ch.DataAsString(); err == nil {
			e.Text, e.Decoded = s, true
		}
		l = append(l, e)
	}
	return l
}

func (p *PNG) String() string {
	var sb strings.Builder
	for _, e := range p.SpecialChunks() {
		if e.Decoded {
			fmt.Fprintf(&sb, "%s: %s\n", e.Type, e.Text)
		} else {
			fmt.Fprintf(&sb, "%s: <binary, %d bytes>\n", e.Type, e.Length)
		}
	}
	return sb.String()
}
