package compressor

import (
	"github.com/golang/snappy"
)

type SnappyCompressor struct {
}

func (c *SnappyCompressor) Compress(block []byte) ([]byte, error) {
	return snappy.Encode(nil, block), nil
}

func (c *SnappyCompressor) Decompress(buf []byte) ([]byte, error) {
	return snappy.Decode(nil, buf)
}

func (c *SnappyCompressor) CompressWithBuf(block []byte, destinationBuffer []byte) ([]byte, error) {
	return snappy.Encode(destinationBuffer, block), nil
}

func (c *SnappyCompressor) DecompressWithBuf(buf []byte, destinationBuffer []byte) ([]byte, error) {
	return snappy.Decode(destinationBuffer, buf)
}
