package framestream

import (
	"errors"
	"fmt"
	"io"

	"github.com/thomasjungblut/go-framestream/codec"
)

// Writer compresses everything written to it into a single frame on the
// given sink. The frame header is written on construction, the footer
// exactly once on Close. The sink is borrowed and not closed by the Writer.
type Writer struct {
	sink    io.Writer
	encoder codec.Encoder

	raw     []byte
	n       int
	scratch []byte

	closed bool
}

// Write appends the given bytes to the raw buffer, flushing full blocks to
// the sink along the way.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("writer is closed already")
	}

	total := 0
	for len(p) > 0 {
		copied := copy(w.raw[w.n:], p)
		w.n += copied
		total += copied
		p = p[copied:]

		if w.n == len(w.raw) {
			if err := w.flush(); err != nil {
				return total, err
			}
		}
	}

	return total, nil
}

// WriteByte appends a single byte, flushing when it fills the raw buffer.
func (w *Writer) WriteByte(b byte) error {
	if w.closed {
		return errors.New("writer is closed already")
	}

	w.raw[w.n] = b
	w.n++
	if w.n == len(w.raw) {
		return w.flush()
	}
	return nil
}

// Flush compresses all currently buffered bytes into one block and writes it
// to the sink. An empty buffer is a no-op.
func (w *Writer) Flush() error {
	if w.closed {
		return errors.New("writer is closed already")
	}
	return w.flush()
}

func (w *Writer) flush() error {
	if w.n == 0 {
		return nil
	}

	written, err := w.encoder.Update(w.scratch, w.raw[:w.n])
	if err != nil {
		return fmt.Errorf("failed to compress block of size %d failed with %w", w.n, err)
	}

	if err := w.writeSink(w.scratch[:written]); err != nil {
		return fmt.Errorf("failed to write block to sink failed with %w", err)
	}

	w.n = 0
	return nil
}

// Close flushes the remaining buffered bytes, writes the frame footer and
// releases the encoder session. It is idempotent, the footer is written
// exactly once. The encoder session is released even when the final flush or
// footer write fails.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.flush()
	if err == nil {
		var written int
		written, err = w.encoder.End(w.scratch)
		if err != nil {
			err = fmt.Errorf("failed to end frame failed with %w", err)
		} else if sinkErr := w.writeSink(w.scratch[:written]); sinkErr != nil {
			err = fmt.Errorf("failed to write frame footer to sink failed with %w", sinkErr)
		}
	}

	closeErr := w.encoder.Close()
	if err != nil {
		return err
	}
	return closeErr
}

func (w *Writer) writeSink(p []byte) error {
	written, err := w.sink.Write(p)
	if err != nil {
		return err
	}
	if written != len(p) {
		return io.ErrShortWrite
	}
	return nil
}

// options

type WriterOptions struct {
	compressionType int
	blockSizeBytes  int
}

type WriterOption func(*WriterOptions)

// CompressionType sets the block compression for the frame, the types are
// all prefixed with CompressionType*. Defaults to CompressionTypeSnappy.
func CompressionType(p int) WriterOption {
	return func(args *WriterOptions) {
		args.compressionType = p
	}
}

// BlockSizeBytes sets the capacity of the raw accumulation buffer, which is
// the maximum size of a block handed to the compressor in one go. Defaults
// to DefaultBlockSizeBytes.
func BlockSizeBytes(p int) WriterOption {
	return func(args *WriterOptions) {
		args.blockSizeBytes = p
	}
}

// NewWriter creates a new Writer on top of the given sink, the frame header
// is written before it returns. The Writer must be closed to produce a
// complete frame.
func NewWriter(sink io.Writer, writerOptions ...WriterOption) (*Writer, error) {
	opts := &WriterOptions{
		compressionType: CompressionTypeSnappy,
		blockSizeBytes:  DefaultBlockSizeBytes,
	}

	for _, writeOption := range writerOptions {
		writeOption(opts)
	}

	if opts.blockSizeBytes <= 0 {
		return nil, fmt.Errorf("NewWriter: block size must be positive, but was %d", opts.blockSizeBytes)
	}

	encoder, err := codec.NewEncoder(opts.compressionType)
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder failed with %w", err)
	}

	w := &Writer{
		sink:    sink,
		encoder: encoder,
		raw:     make([]byte, opts.blockSizeBytes),
		scratch: make([]byte, codec.CompressBound(opts.blockSizeBytes)),
	}

	written, err := encoder.Begin(w.scratch)
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("failed to begin frame failed with %w", err)
	}

	if err := w.writeSink(w.scratch[:written]); err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("failed to write frame header to sink failed with %w", err)
	}

	return w, nil
}
