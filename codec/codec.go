package codec

import (
	"fmt"

	"github.com/thomasjungblut/go-framestream/codec/compressor"
)

// Encoder is a stateful frame encoding session. Begin must be called exactly
// once before any Update, End exactly once after the last Update. Every
// operation writes into the supplied dst buffer, which must have at least
// CompressBound capacity for the largest input span ever passed to Update,
// and returns the number of bytes written. Close releases the session and
// must be called exactly once, any error from an operation is fatal for the
// session.
type Encoder interface {
	// Begin emits the frame header
	Begin(dst []byte) (int, error)
	// Update compresses the given src span into one body block
	Update(dst []byte, src []byte) (int, error)
	// End emits the frame footer
	End(dst []byte) (int, error)
	// Close releases the session
	Close() error
}

// Decoder is a stateful frame decoding session. Decompress reads framed
// bytes from src and writes decoded bytes to dst, returning how many bytes
// of src were consumed and how many decoded bytes were produced. It may
// consume less than offered and it may produce zero bytes even when input
// was consumed; when src is non-empty and no decoded bytes are pending it
// always consumes at least one byte. Any error is fatal for the session.
type Decoder interface {
	Decompress(dst []byte, src []byte) (int, int, error)
	// Close releases the session
	Close() error
}

func NewCompressorForType(compressionType int) (compressor.CompressionI, error) {
	switch compressionType {
	case CompressionTypeNone:
		return nil, nil
	case CompressionTypeSnappy:
		return &compressor.SnappyCompressor{}, nil
	case CompressionTypeZstd:
		comp, err := compressor.NewZstdCompressor()
		if err != nil {
			return nil, err
		}
		return comp, nil
	case CompressionTypeS2:
		return &compressor.S2Compressor{}, nil
	case CompressionTypeFlate:
		return &compressor.FlateCompressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compression type [%d]", compressionType)
	}
}
