//
// read embedded ICC profile from a PNG
//
// PNG spec, 11.3.3.3 iCCP Embedded ICC profile
// https://www.w3.org/TR/2003/REC-PNG-20031110/#11iCCP
//

package pngchunk

import (
	"bytes"
	"compress/zlib"
	"io"

	bst "github.com/mixcode/binarystruct"
	"github.com/pkg/errors"
)

var typeICCP = MustParseChunkType("iCCP")

// ICCProfile decodes the ICC profile and profile name from the first iCCP chunk.
// If there is no ICC profile then nil data and no error is returned.
func (p *PNG) ICCProfile() (iccProfile []byte, profileName string, err error) {
	ch := p.ChunkByType(typeICCP) // use the first chunk
	if ch == nil {
		// PNG does not contain an ICC profile
		return
	}

	// read an icc profile chunk
	in := bytes.NewReader(ch.data)
	var iccpChunk struct {
		Name              string `binary:"zstring"` // ICC profile name
		CompressionMethod byte
	}
	_, err = bst.Read(in, bst.BigEndian, &iccpChunk)
	if err != nil {
		err = errors.Wrap(err, "iCCP header")
		return
	}
	// decompress actual ICC profile chunk
	if iccpChunk.CompressionMethod != 0 {
		err = errors.Errorf("unknown compression method: %d", iccpChunk.CompressionMethod)
		return
	}
	zl, err := zlib.NewReader(in)
	if err != nil {
		return
	}
	iccProfile, err = io.ReadAll(zl)
	zl.Close()
	if err != nil {
		iccProfile = nil
		return
	}

	return iccProfile, iccpChunk.Name, nil
}
