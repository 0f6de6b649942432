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

const (
	decodeStateFrameHeader = iota
	decodeStateBody        = iota
	decodeStateDone        = iota
)

type frameDecoder struct {
	state      int
	compressor compressor.CompressionI
	hash       *xxhash.Digest
	bufferPool *pool.BufferPool

	// stash holds the bytes of an item (frame header, block or footer) that
	// was only partially offered so far
	stash []byte
	// pending is the still undelivered view into pendingBuffer, the staged
	// decoded bytes of the most recently parsed block
	pending       []byte
	pendingBuffer []byte

	closed bool
}

// NewDecoder creates a new frame decoding session. The compression type is
// read from the frame header, so none has to be supplied here.
func NewDecoder() (Decoder, error) {
	return &frameDecoder{
		state:      decodeStateFrameHeader,
		hash:       xxhash.New(),
		bufferPool: new(pool.BufferPool),
	}, nil
}

func (d *frameDecoder) Decompress(dst []byte, src []byte) (int, int, error) {
	if d.closed {
		return 0, 0, errors.New("decoder is closed already")
	}

	if len(d.pending) > 0 {
		return 0, d.drainPending(dst), nil
	}

	if d.state == decodeStateDone {
		if len(src) > 0 {
			return 0, 0, fmt.Errorf("%d bytes of trailing data after frame footer", len(src))
		}
		return 0, 0, nil
	}

	// a single item can span several offered spans, previously stashed bytes
	// are always a strict prefix of the current item
	stashed := len(d.stash)
	view := src
	if stashed > 0 {
		d.stash = append(d.stash, src...)
		view = d.stash
	}

	switch d.state {
	case decodeStateFrameHeader:
		if len(view) < FrameHeaderSizeBytes {
			return d.stashAll(view, src)
		}

		compressionType, err := readFrameHeader(view[:FrameHeaderSizeBytes])
		if err != nil {
			return 0, 0, err
		}

		comp, err := NewCompressorForType(compressionType)
		if err != nil {
			return 0, 0, fmt.Errorf("creating compressor with type '%d' failed with %w", compressionType, err)
		}

		d.compressor = comp
		d.state = decodeStateBody
		return d.consumeItem(FrameHeaderSizeBytes, stashed), 0, nil
	case decodeStateBody:
		payloadSizeUncompressed, payloadSizeCompressed, headerLen, err := readBlockHeader(view)
		if err != nil {
			return 0, 0, err
		}
		if headerLen == 0 {
			return d.stashAll(view, src)
		}

		if payloadSizeUncompressed == 0 && payloadSizeCompressed == 0 {
			return d.readFooter(view, headerLen, stashed, src)
		}

		payloadSize := payloadSizeCompressed
		if payloadSize == 0 {
			payloadSize = payloadSizeUncompressed
		}

		itemLen := headerLen + int(payloadSize)
		if len(view) < itemLen {
			return d.stashAll(view, src)
		}

		decoded, err := d.decodeBlock(view[headerLen:itemLen], payloadSizeUncompressed, payloadSizeCompressed)
		if err != nil {
			return 0, 0, err
		}

		_, _ = d.hash.Write(decoded)
		d.pending = decoded
		d.pendingBuffer = decoded
		return d.consumeItem(itemLen, stashed), d.drainPending(dst), nil
	default:
		return 0, 0, fmt.Errorf("unexpected decoder state [%d]", d.state)
	}
}

func (d *frameDecoder) decodeBlock(payload []byte, payloadSizeUncompressed uint64, payloadSizeCompressed uint64) ([]byte, error) {
	buffer := d.bufferPool.Get(int(payloadSizeUncompressed))
	if payloadSizeCompressed == 0 {
		// stored raw, the payload needs a copy as the view aliases the caller's bytes
		return buffer[:copy(buffer, payload)], nil
	}

	if d.compressor == nil {
		return nil, fmt.Errorf("found compressed block of size %d in an uncompressed frame", payloadSizeCompressed)
	}

	decoded, err := d.compressor.DecompressWithBuf(payload, buffer)
	if err != nil {
		d.bufferPool.Put(buffer)
		return nil, fmt.Errorf("failed to decompress block of size %d failed with %w", payloadSizeCompressed, err)
	}

	if uint64(len(decoded)) != payloadSizeUncompressed {
		return nil, fmt.Errorf("decompressed size mismatch, expected %d but was %d", payloadSizeUncompressed, len(decoded))
	}

	return decoded, nil
}

func (d *frameDecoder) readFooter(view []byte, headerLen int, stashed int, src []byte) (int, int, error) {
	itemLen := headerLen + ChecksumSizeBytes
	if len(view) < itemLen {
		return d.stashAll(view, src)
	}

	expected := binary.LittleEndian.Uint64(view[headerLen:itemLen])
	actual := d.hash.Sum64()
	if expected != actual {
		return 0, 0, fmt.Errorf("frame checksum mismatch, expected %x but was %x", expected, actual)
	}

	d.state = decodeStateDone
	return d.consumeItem(itemLen, stashed), 0, nil
}

// drainPending copies staged decoded bytes into dst and releases the staging
// buffer once it is fully delivered
func (d *frameDecoder) drainPending(dst []byte) int {
	n := copy(dst, d.pending)
	d.pending = d.pending[n:]
	if len(d.pending) == 0 {
		d.bufferPool.Put(d.pendingBuffer)
		d.pending = nil
		d.pendingBuffer = nil
	}
	return n
}

// stashAll keeps the incomplete item for the next call, everything offered
// counts as consumed
func (d *frameDecoder) stashAll(view []byte, src []byte) (int, int, error) {
	if len(d.stash) == 0 {
		d.stash = append(d.stash, view...)
	}
	return len(src), 0, nil
}

// consumeItem resets the stash after a fully parsed item and translates its
// length into the number of bytes consumed from the current src span
func (d *frameDecoder) consumeItem(itemLen int, stashed int) int {
	d.stash = d.stash[:0]
	return itemLen - stashed
}

func (d *frameDecoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	if closer, ok := d.compressor.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close compressor failed with %w", err)
		}
	}
	return nil
}
