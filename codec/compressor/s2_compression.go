package compressor

import (
	"github.com/klauspost/compress/s2"
)

type S2Compressor struct {
}

func (c *S2Compressor) Compress(block []byte) ([]byte, error) {
	return s2.Encode(nil, block), nil
}

func (c *S2Compressor) Decompress(buf []byte) ([]byte, error) {
	return s2.Decode(nil, buf)
}

func (c *S2Compressor) CompressWithBuf(block []byte, destinationBuffer []byte) ([]byte, error) {
	return s2.Encode(destinationBuffer, block), nil
}

func (c *S2Compressor) DecompressWithBuf(buf []byte, destinationBuffer []byte) ([]byte, error) {
	return s2.Decode(destinationBuffer, buf)
}
