package framestream

import (
	"errors"
	"fmt"
	"io"

	"github.com/thomasjungblut/go-framestream/codec"
)

// Reader decompresses a single frame read from the given source. The source
// is borrowed and not closed by the Reader, Close only releases the decoder
// session. Any decode or source error is fatal and sticky, the Reader must
// not be used again after one.
type Reader struct {
	source  io.Reader
	decoder codec.Decoder

	in       []byte
	inOffset int
	inLimit  int

	decoded       []byte
	decodedOffset int
	decodedLimit  int

	sourceEOF bool
	eof       bool
	err       error
	closed    bool
}

// Read copies the next decoded bytes into p, pulling and decoding more
// compressed input as needed. It returns io.EOF once the source is
// exhausted and all decoded bytes were delivered.
func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, errors.New("reader is closed already")
	}
	if r.err != nil {
		return 0, r.err
	}
	if len(p) == 0 {
		return 0, nil
	}

	if r.decodedOffset == r.decodedLimit {
		if err := r.pullMoreDecoded(); err != nil {
			return 0, err
		}
	}

	copied := copy(p, r.decoded[r.decodedOffset:r.decodedLimit])
	r.decodedOffset += copied
	return copied, nil
}

// ReadByte reads a single decoded byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.closed {
		return 0, errors.New("reader is closed already")
	}
	if r.err != nil {
		return 0, r.err
	}

	if r.decodedOffset == r.decodedLimit {
		if err := r.pullMoreDecoded(); err != nil {
			return 0, err
		}
	}

	b := r.decoded[r.decodedOffset]
	r.decodedOffset++
	return b, nil
}

// pullMoreDecoded alternates between refilling the input buffer from the
// source and feeding the unconsumed region to the decoder, until decoded
// bytes are available or the source is exhausted. End of stream is
// permanent, recorded once and never rechecked against the source.
func (r *Reader) pullMoreDecoded() error {
	if r.eof {
		return io.EOF
	}

	for {
		if r.inOffset == r.inLimit {
			if r.sourceEOF {
				r.eof = true
				return io.EOF
			}

			read, err := r.source.Read(r.in)
			if read > 0 {
				r.inOffset = 0
				r.inLimit = read
			}
			if err == io.EOF {
				r.sourceEOF = true
				if read == 0 {
					r.eof = true
					return io.EOF
				}
			} else if err != nil {
				r.err = fmt.Errorf("failed to read from source failed with %w", err)
				return r.err
			} else if read == 0 {
				// a read of zero bytes without an error is not end of stream
				continue
			}
		}

		consumed, produced, err := r.decoder.Decompress(r.decoded, r.in[r.inOffset:r.inLimit])
		if err != nil {
			r.err = fmt.Errorf("failed to decompress failed with %w", err)
			return r.err
		}
		r.inOffset += consumed

		if produced > 0 {
			r.decodedOffset = 0
			r.decodedLimit = produced
			return nil
		}

		if consumed == 0 {
			r.err = io.ErrNoProgress
			return r.err
		}
	}
}

// Close releases the decoder session, it is idempotent and does not close
// the underlying source.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.decoder.Close(); err != nil {
		return fmt.Errorf("failed to close decoder failed with %w", err)
	}
	return nil
}

// options

type ReaderOptions struct {
	readBufferSizeBytes    int
	decodedBufferSizeBytes int
}

type ReaderOption func(*ReaderOptions)

// ReadBufferSizeBytes sets the capacity of the compressed input buffer, the
// maximum number of bytes requested from the source in one read. Defaults to
// DefaultBlockSizeBytes.
func ReadBufferSizeBytes(p int) ReaderOption {
	return func(args *ReaderOptions) {
		args.readBufferSizeBytes = p
	}
}

// DecodedBufferSizeBytes sets the capacity of the decoded output buffer. It
// does not need to match the writer's block size, larger blocks are staged
// by the decoder and delivered across several reads. Defaults to
// DefaultBlockSizeBytes.
func DecodedBufferSizeBytes(p int) ReaderOption {
	return func(args *ReaderOptions) {
		args.decodedBufferSizeBytes = p
	}
}

// NewReader creates a new Reader on top of the given source, which is
// expected to yield exactly one frame.
func NewReader(source io.Reader, readerOptions ...ReaderOption) (*Reader, error) {
	opts := &ReaderOptions{
		readBufferSizeBytes:    DefaultBlockSizeBytes,
		decodedBufferSizeBytes: DefaultBlockSizeBytes,
	}

	for _, readOption := range readerOptions {
		readOption(opts)
	}

	if opts.readBufferSizeBytes <= 0 || opts.decodedBufferSizeBytes <= 0 {
		return nil, fmt.Errorf("NewReader: buffer sizes must be positive, but were %d/%d", opts.readBufferSizeBytes, opts.decodedBufferSizeBytes)
	}

	decoder, err := codec.NewDecoder()
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder failed with %w", err)
	}

	return &Reader{
		source:  source,
		decoder: decoder,
		in:      make([]byte, opts.readBufferSizeBytes),
		decoded: make([]byte, opts.decodedBufferSizeBytes),
	}, nil
}
