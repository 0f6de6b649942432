package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	pool "github.com/libp2p/go-buffer-pool"
	"github.com/thomasjungblut/go-framestream/codec/compressor"
)

type frameEncoder struct {
	compressionType  int
	compressor       compressor.CompressionI
	blockHeaderCache []byte
	hash             *xxhash.Digest
	bufferPool       *pool.BufferPool

	began  bool
	ended  bool
	closed bool
}

// NewEncoder creates a new frame encoding session with the given compression
// type, the types are all prefixed with CompressionType*.
func NewEncoder(compressionType int) (Encoder, error) {
	comp, err := NewCompressorForType(compressionType)
	if err != nil {
		return nil, fmt.Errorf("creating compressor with type '%d' failed with %w", compressionType, err)
	}

	return &frameEncoder{
		compressionType:  compressionType,
		compressor:       comp,
		blockHeaderCache: make([]byte, BlockHeaderMaxSizeBytes),
		hash:             xxhash.New(),
		bufferPool:       new(pool.BufferPool),
	}, nil
}

func (e *frameEncoder) Begin(dst []byte) (int, error) {
	if e.closed {
		return 0, errors.New("encoder is closed already")
	}
	if e.began {
		return 0, errors.New("frame was already begun")
	}
	if len(dst) < FrameHeaderSizeBytes {
		return 0, fmt.Errorf("destination buffer too small for frame header, expected %d but was %d", FrameHeaderSizeBytes, len(dst))
	}

	header := fillFrameHeader(dst, uint32(e.compressionType))
	e.began = true
	return len(header), nil
}

func (e *frameEncoder) Update(dst []byte, src []byte) (int, error) {
	if e.closed {
		return 0, errors.New("encoder is closed already")
	}
	if !e.began {
		return 0, errors.New("frame was not begun yet")
	}
	if e.ended {
		return 0, errors.New("frame was already ended")
	}

	if len(src) == 0 {
		return 0, nil
	}

	payload := src
	compressedSize := uint64(0)
	if e.compressor != nil {
		scratch := e.bufferPool.Get(len(src))
		defer e.bufferPool.Put(scratch)

		compressed, err := e.compressor.CompressWithBuf(src, scratch)
		if err != nil {
			return 0, fmt.Errorf("failed to compress block of size %d failed with %w", len(src), err)
		}

		// blocks that do not shrink are stored raw, signalled by a zero compressed size
		if len(compressed) < len(src) {
			payload = compressed
			compressedSize = uint64(len(compressed))
		}
	}

	header := fillBlockHeader(e.blockHeaderCache, uint64(len(src)), compressedSize)
	if len(dst) < len(header)+len(payload) {
		return 0, fmt.Errorf("destination buffer too small for block, expected %d but was %d", len(header)+len(payload), len(dst))
	}

	written := copy(dst, header)
	written += copy(dst[written:], payload)
	_, _ = e.hash.Write(src)
	return written, nil
}

func (e *frameEncoder) End(dst []byte) (int, error) {
	if e.closed {
		return 0, errors.New("encoder is closed already")
	}
	if !e.began {
		return 0, errors.New("frame was not begun yet")
	}
	if e.ended {
		return 0, errors.New("frame was already ended")
	}

	header := fillBlockHeader(e.blockHeaderCache, 0, 0)
	if len(dst) < len(header)+ChecksumSizeBytes {
		return 0, fmt.Errorf("destination buffer too small for frame footer, expected %d but was %d", len(header)+ChecksumSizeBytes, len(dst))
	}

	written := copy(dst, header)
	binary.LittleEndian.PutUint64(dst[written:written+ChecksumSizeBytes], e.hash.Sum64())
	written += ChecksumSizeBytes
	e.ended = true
	return written, nil
}

func (e *frameEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	if closer, ok := e.compressor.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close compressor failed with %w", err)
		}
	}
	return nil
}
