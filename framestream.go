// Package framestream turns ordinary byte streams into compressed frame
// streams and back. A Writer wraps an io.Writer and compresses everything
// written to it into a single frame (header, compressed blocks, footer), a
// Reader wraps an io.Reader over such a frame and yields the raw bytes
// again. Neither is safe for concurrent use.
package framestream

import (
	"github.com/thomasjungblut/go-framestream/codec"
)

// DefaultBlockSizeBytes is the default capacity of the raw accumulation
// buffer on the write side and of the input/decoded buffers on the read side.
const DefaultBlockSizeBytes = 64 * 1024

const (
	CompressionTypeNone   = codec.CompressionTypeNone
	CompressionTypeSnappy = codec.CompressionTypeSnappy
	CompressionTypeZstd   = codec.CompressionTypeZstd
	CompressionTypeS2     = codec.CompressionTypeS2
	CompressionTypeFlate  = codec.CompressionTypeFlate
)
