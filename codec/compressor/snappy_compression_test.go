package compressor

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestSimpleSnappyCompression(t *testing.T) {
	comp := &SnappyCompressor{}
	data := "some data"

	compressedBytes, err := comp.Compress([]byte(data))
	assert.Nil(t, err)
	assert.Equal(t, 11, len(compressedBytes))

	decompressedBytes, err := comp.Decompress(compressedBytes)
	assert.Nil(t, err)
	assert.Equal(t, 9, len(decompressedBytes))

	assert.Equal(t, data, string(decompressedBytes))
}

func TestSnappyCompressionWithBuf(t *testing.T) {
	comp := &SnappyCompressor{}
	data := "some data that is a bit longer than the last one"
	scratch := make([]byte, 128)

	compressedBytes, err := comp.CompressWithBuf([]byte(data), scratch)
	assert.Nil(t, err)

	decompressedBytes, err := comp.DecompressWithBuf(compressedBytes, make([]byte, 128))
	assert.Nil(t, err)
	assert.Equal(t, data, string(decompressedBytes))
}
