package compressor

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// ZstdCompressor holds a reusable encoder/decoder pair, Close must be called to release them.
type ZstdCompressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewZstdCompressor() (*ZstdCompressor, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder with %w", err)
	}

	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder with %w", err)
	}

	return &ZstdCompressor{encoder: encoder, decoder: decoder}, nil
}

func (c *ZstdCompressor) Compress(block []byte) ([]byte, error) {
	return c.encoder.EncodeAll(block, nil), nil
}

func (c *ZstdCompressor) Decompress(buf []byte) ([]byte, error) {
	return c.decoder.DecodeAll(buf, nil)
}

func (c *ZstdCompressor) CompressWithBuf(block []byte, destinationBuffer []byte) ([]byte, error) {
	return c.encoder.EncodeAll(block, destinationBuffer[:0]), nil
}

func (c *ZstdCompressor) DecompressWithBuf(buf []byte, destinationBuffer []byte) ([]byte, error) {
	return c.decoder.DecodeAll(buf, destinationBuffer[:0])
}

func (c *ZstdCompressor) Close() error {
	if err := c.encoder.Close(); err != nil {
		return fmt.Errorf("failed to close zstd encoder with %w", err)
	}
	c.decoder.Close()
	return nil
}
