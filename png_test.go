package pngchunk

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/pkg/errors"
)

// encode a small real image
func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 60), uint8(y * 80), 0x40, 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func chunkTypes(p *PNG) (l []string) {
	for _, ch := range p.Chunks() {
		l = append(l, ch.Type().String())
	}
	return
}

func equalChunks(a, b []*Chunk) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i].Bytes(), b[i].Bytes()) {
			return false
		}
	}
	return true
}

func TestParsePNG(t *testing.T) {
	raw := testImage(t)
	p, err := ParsePNG(raw)
	if err != nil {
		t.Fatal(err)
	}
	if p.Header() != Signature() {
		t.Fatalf("header % x", p.Header())
	}
	types := chunkTypes(p)
	if len(types) < 3 || types[0] != "IHDR" || types[len(types)-1] != "IEND" {
		t.Fatalf("unexpected chunks %v", types)
	}
	if !bytes.Equal(p.Bytes(), raw) {
		t.Fatal("re-encoded PNG differs from the input")
	}

	// the output must still be a decodable image
	if _, err := png.Decode(bytes.NewReader(p.Bytes())); err != nil {
		t.Fatal(err)
	}
}

func TestPNGRoundTrip(t *testing.T) {
	p, err := ParsePNG(testImage(t))
	if err != nil {
		t.Fatal(err)
	}
	p.AppendChunk(NewChunk(MustParseChunkType("ruSt"), []byte(testMessage)))
	p.AppendChunk(NewChunk(MustParseChunkType("ruSt"), nil))

	q, err := ParsePNG(p.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if q.Header() != p.Header() || !equalChunks(q.Chunks(), p.Chunks()) {
		t.Fatal("round trip mismatch")
	}
}

func TestParsePNGBadSignature(t *testing.T) {
	raw := testImage(t)
	testcase := [][]byte{
		nil,
		raw[:7],
		append([]byte{0x88}, raw[1:]...),
		append([]byte("GIF89a\x00\x00"), raw[8:]...),
	}
	for i, b := range testcase {
		_, err := ParsePNG(b)
		if !errors.Is(err, ErrBadSignature) {
			t.Errorf("case %d: unexpected error %v", i, err)
		}
	}

	// signature only is an empty but valid PNG
	p, err := ParsePNG(raw[:8])
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Chunks()) != 0 {
		t.Fatal("expected no chunks")
	}
}

func TestParsePNGCorrupted(t *testing.T) {
	raw := testImage(t)

	// flip a bit inside the IHDR data
	b := append([]byte(nil), raw...)
	b[8+8+2] ^= 0x01
	_, err := ParsePNG(b)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("unexpected error %v", err)
	}
	var ce *ChecksumError
	if !errors.As(err, &ce) || ce.Type.String() != "IHDR" || ce.Offset != 8+8+13 {
		t.Fatalf("unexpected error detail %v", err)
	}

	// stream ends in the middle of the last chunk
	_, err = ParsePNG(raw[:len(raw)-2])
	if !errors.Is(err, ErrTruncatedCRC) {
		t.Fatalf("unexpected error %v", err)
	}

	// a few stray bytes after IEND
	_, err = ParsePNG(append(append([]byte(nil), raw...), 0, 0))
	if !errors.Is(err, ErrTruncatedLength) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestAppendRemove(t *testing.T) {
	p, err := ParsePNG(testImage(t))
	if err != nil {
		t.Fatal(err)
	}
	orig := p.Chunks()
	ct := MustParseChunkType("ruSt")
	if p.ChunkByType(ct) != nil {
		t.Fatal("unexpected ruSt chunk")
	}

	p.AppendChunk(NewChunk(ct, []byte(testMessage)))
	if ch := p.ChunkByType(ct); ch == nil || string(ch.Data()) != testMessage {
		t.Fatal("appended chunk not found")
	}
	types := chunkTypes(p)
	if types[len(types)-1] != "ruSt" {
		t.Fatalf("chunk not appended at the end: %v", types)
	}

	removed, err := p.RemoveChunk(ct)
	if err != nil {
		t.Fatal(err)
	}
	if string(removed.Data()) != testMessage {
		t.Fatalf("removed %q", removed.Data())
	}
	if !equalChunks(p.Chunks(), orig) {
		t.Fatal("chunk list differs after append/remove")
	}
}

func TestRemoveChunkNotFound(t *testing.T) {
	p, err := ParsePNG(testImage(t))
	if err != nil {
		t.Fatal(err)
	}
	before := p.Bytes()
	_, err = p.RemoveChunk(MustParseChunkType("ruSt"))
	if !errors.Is(err, ErrChunkNotFound) {
		t.Fatalf("unexpected error %v", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Type.String() != "ruSt" {
		t.Fatalf("unexpected error detail %v", err)
	}
	if !bytes.Equal(p.Bytes(), before) {
		t.Fatal("PNG modified by a failed removal")
	}
}

func TestChunkByTypeFirstMatch(t *testing.T) {
	ct := MustParseChunkType("ruSt")
	other := MustParseChunkType("raNd")
	p := NewPNG(
		NewChunk(MustParseChunkType("IHDR"), make([]byte, 13)),
		NewChunk(ct, []byte("first")),
		NewChunk(other, []byte("other")),
		NewChunk(ct, []byte("second")),
		NewChunk(MustParseChunkType("IEND"), nil),
	)
	if s := string(p.ChunkByType(ct).Data()); s != "first" {
		t.Fatalf("found %q", s)
	}
	if l := p.ChunksByType(ct); len(l) != 2 || string(l[1].Data()) != "second" {
		t.Fatal("ChunksByType mismatch")
	}
	// lookup is case-sensitive
	if p.ChunkByType(MustParseChunkType("RuSt")) != nil {
		t.Fatal("case-insensitive match")
	}

	// removal takes the first one and keeps the order of the rest
	if _, err := p.RemoveChunk(ct); err != nil {
		t.Fatal(err)
	}
	if s := string(p.ChunkByType(ct).Data()); s != "second" {
		t.Fatalf("found %q", s)
	}
	types := chunkTypes(p)
	expected := []string{"IHDR", "raNd", "ruSt", "IEND"}
	if len(types) != len(expected) {
		t.Fatalf("chunks %v", types)
	}
	for i := range types {
		if types[i] != expected[i] {
			t.Fatalf("chunks %v", types)
		}
	}
}

func TestSpecialChunks(t *testing.T) {
	p := NewPNG(
		NewChunk(MustParseChunkType("IHDR"), make([]byte, 13)),
		NewChunk(MustParseChunkType("tEXt"), []byte("Comment\x00hi")),
		NewChunk(MustParseChunkType("ruSt"), []byte("hidden")),
		NewChunk(MustParseChunkType("prVt"), []byte{0xff, 0x00}),
		NewChunk(MustParseChunkType("RuSt"), []byte("critical")),
		NewChunk(MustParseChunkType("IEND"), nil),
	)
	l := p.SpecialChunks()
	if len(l) != 2 {
		t.Fatalf("special chunks %v", l)
	}
	if l[0].Type.String() != "ruSt" || !l[0].Decoded || l[0].Text != "hidden" {
		t.Fatalf("unexpected entry %+v", l[0])
	}
	if l[1].Type.String() != "prVt" || l[1].Decoded || l[1].Length != 2 {
		t.Fatalf("unexpected entry %+v", l[1])
	}
	expected := "ruSt: hidden\nprVt: <binary, 2 bytes>\n"
	if p.String() != expected {
		t.Fatalf("String() = %q", p.String())
	}
}
