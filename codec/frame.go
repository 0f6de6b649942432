package codec

import (
	"encoding/binary"
	"fmt"
)

// A frame is laid out as (all little endian):
// - a fixed size frame header: 4 byte magic number, 4 byte version, 4 byte compression type enum
// - a sequence of body blocks, each with a header of three Uvarints
//   (magic separator, uncompressed payload size, compressed payload size - or 0 if the payload is stored raw)
//   followed by the payload bytes
// - a footer: a block header with both sizes zero, followed by the 8 byte xxhash64 of the raw byte stream
const FrameMagicNumber uint32 = 0x46d601
const Version uint32 = 0x01
const BlockMagicNumberSeparator uint64 = 0x130691

const FrameHeaderSizeBytes = 12
const ChecksumSizeBytes = 8
const BlockHeaderMaxSizeBytes = 3 * binary.MaxVarintLen64

// MaxBlockSizeBytes bounds the declared payload sizes of a single block, sizes beyond it are treated as corruption.
const MaxBlockSizeBytes = 1 << 30

const (
	// never reorder, always append
	CompressionTypeNone   = iota
	CompressionTypeSnappy = iota
	CompressionTypeZstd   = iota
	CompressionTypeS2     = iota
	CompressionTypeFlate  = iota
)

// CompressBound returns the worst case number of bytes a single Update or End
// call can produce for an input span of at most inputSizeBytes. Payloads that
// do not shrink under compression are stored raw, which caps the payload at
// its input size.
func CompressBound(inputSizeBytes int) int {
	bound := inputSizeBytes
	if bound < ChecksumSizeBytes {
		bound = ChecksumSizeBytes
	}
	return BlockHeaderMaxSizeBytes + bound
}

func fillFrameHeader(bytes []byte, compressionType uint32) []byte {
	binary.LittleEndian.PutUint32(bytes[0:4], FrameMagicNumber)
	binary.LittleEndian.PutUint32(bytes[4:8], Version)
	binary.LittleEndian.PutUint32(bytes[8:12], compressionType)
	return bytes[:FrameHeaderSizeBytes]
}

func readFrameHeader(buffer []byte) (int, error) {
	if len(buffer) != FrameHeaderSizeBytes {
		return 0, fmt.Errorf("frame header buffer size mismatch, expected %d but was %d", FrameHeaderSizeBytes, len(buffer))
	}

	magic := binary.LittleEndian.Uint32(buffer[0:4])
	if magic != FrameMagicNumber {
		return 0, fmt.Errorf("frame magic number mismatch, expected %x but was %x", FrameMagicNumber, magic)
	}

	version := binary.LittleEndian.Uint32(buffer[4:8])
	if version != Version {
		return 0, fmt.Errorf("version mismatch, expected %d but was %d", Version, version)
	}

	compressionType := binary.LittleEndian.Uint32(buffer[8:12])
	if compressionType > CompressionTypeFlate {
		return 0, fmt.Errorf("unknown compression type [%d]", compressionType)
	}

	return int(compressionType), nil
}

func fillBlockHeader(bytes []byte, payloadSizeUncompressed uint64, payloadSizeCompressed uint64) []byte {
	off := binary.PutUvarint(bytes, BlockMagicNumberSeparator)
	off += binary.PutUvarint(bytes[off:], payloadSizeUncompressed)
	off += binary.PutUvarint(bytes[off:], payloadSizeCompressed)
	return bytes[:off]
}

// readBlockHeader parses a block header from the given buffer, returning the
// sizes and the number of bytes the header occupies. A zero header length
// means the buffer does not yet contain a complete header.
func readBlockHeader(buffer []byte) (uint64, uint64, int, error) {
	magic, off := binary.Uvarint(buffer)
	if off == 0 {
		return 0, 0, 0, nil
	}
	if off < 0 {
		return 0, 0, 0, fmt.Errorf("block magic number varint overflow")
	}
	if magic != BlockMagicNumberSeparator {
		return 0, 0, 0, fmt.Errorf("magic number mismatch, expected %x but was %x", BlockMagicNumberSeparator, magic)
	}

	payloadSizeUncompressed, n := binary.Uvarint(buffer[off:])
	if n == 0 {
		return 0, 0, 0, nil
	}
	if n < 0 {
		return 0, 0, 0, fmt.Errorf("uncompressed payload size varint overflow")
	}
	off += n

	payloadSizeCompressed, n := binary.Uvarint(buffer[off:])
	if n == 0 {
		return 0, 0, 0, nil
	}
	if n < 0 {
		return 0, 0, 0, fmt.Errorf("compressed payload size varint overflow")
	}
	off += n

	if payloadSizeUncompressed > MaxBlockSizeBytes || payloadSizeCompressed > MaxBlockSizeBytes {
		return 0, 0, 0, fmt.Errorf("block payload sizes [%d/%d] exceed the maximum of %d", payloadSizeUncompressed, payloadSizeCompressed, MaxBlockSizeBytes)
	}

	return payloadSizeUncompressed, payloadSizeCompressed, off, nil
}
