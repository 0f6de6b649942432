package framestream

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasjungblut/go-framestream/codec"
)

func TestWriterHeaderWrittenBeforeAnyData(t *testing.T) {
	sink := &countingSink{}
	writer, err := NewWriter(sink)
	require.Nil(t, err)
	defer closeWriter(t, writer)

	// the frame header is on the sink before a single byte was accepted
	assert.Equal(t, 1, sink.writeCalls)
	assert.Equal(t, codec.FrameHeaderSizeBytes, sink.buf.Len())
}

func TestWriterBoundaryExactlyFullTriggersSingleFlush(t *testing.T) {
	sink := &countingSink{}
	writer, err := NewWriter(sink, BlockSizeBytes(8))
	require.Nil(t, err)
	defer closeWriter(t, writer)

	written, err := writer.Write(ascendingBytesOfLen(7))
	require.Nil(t, err)
	assert.Equal(t, 7, written)
	// seven of eight bytes buffered, nothing flushed yet
	assert.Equal(t, 1, sink.writeCalls)

	require.Nil(t, writer.WriteByte(0x07))
	assert.Equal(t, 2, sink.writeCalls)

	// the flushed block carries the full buffered span
	require.Nil(t, writer.Close())
	reader := newReaderOverSink(t, sink)
	defer closeReader(t, reader)
	assertReadsExactly(t, reader, ascendingBytesOfLen(8))
}

func TestWriterFlushWithEmptyBufferIsANoOp(t *testing.T) {
	sink := &countingSink{}
	writer, err := NewWriter(sink)
	require.Nil(t, err)
	defer closeWriter(t, writer)

	require.Nil(t, writer.Flush())
	require.Nil(t, writer.Flush())
	assert.Equal(t, 1, sink.writeCalls)
}

func TestWriterCloseIsIdempotent(t *testing.T) {
	sink := &countingSink{}
	writer, err := NewWriter(sink)
	require.Nil(t, err)

	require.Nil(t, writer.Close())
	footerLen := sink.buf.Len()
	assert.Equal(t, 2, sink.writeCalls)

	// the footer is written exactly once
	require.Nil(t, writer.Close())
	assert.Equal(t, 2, sink.writeCalls)
	assert.Equal(t, footerLen, sink.buf.Len())
}

func TestWriterForbidsWritesAfterClose(t *testing.T) {
	writer, err := NewWriter(&bytes.Buffer{})
	require.Nil(t, err)
	require.Nil(t, writer.Close())

	_, err = writer.Write([]byte("too late"))
	assert.Contains(t, err.Error(), "closed already")
	err = writer.WriteByte(0x1)
	assert.Contains(t, err.Error(), "closed already")
	err = writer.Flush()
	assert.Contains(t, err.Error(), "closed already")
}

func TestWriterSinkErrorOnHeader(t *testing.T) {
	sink := &failingSink{failAfterCalls: 0}
	_, err := NewWriter(sink)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "failed to write frame header")
}

func TestWriterSinkErrorOnFlush(t *testing.T) {
	sink := &failingSink{failAfterCalls: 1}
	writer, err := NewWriter(sink, BlockSizeBytes(4))
	require.Nil(t, err)

	_, err = writer.Write(ascendingBytesOfLen(16))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "failed to write block to sink")
	assert.ErrorIs(t, err, errSinkFailure)

	// the buffered block can't be flushed on close either
	assert.ErrorIs(t, writer.Close(), errSinkFailure)
}

func TestWriterEncoderErrorSurfacesAndStillReleasesSession(t *testing.T) {
	encoder := &failingEncoder{}
	writer := &Writer{
		sink:    &bytes.Buffer{},
		encoder: encoder,
		raw:     make([]byte, 16),
		scratch: make([]byte, codec.CompressBound(16)),
	}

	_, err := writer.Write(ascendingBytesOfLen(16))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "failed to compress block")

	err = writer.Close()
	require.NotNil(t, err)
	assert.True(t, encoder.closed)
}

func TestWriterInvalidBlockSize(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, BlockSizeBytes(0))
	assert.Contains(t, err.Error(), "block size must be positive")
}

func TestWriterUnknownCompressionType(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, CompressionType(42))
	assert.Contains(t, err.Error(), "unknown compression type")
}

// test helpers

type countingSink struct {
	buf        bytes.Buffer
	writeCalls int
}

func (c *countingSink) Write(p []byte) (int, error) {
	c.writeCalls++
	return c.buf.Write(p)
}

var errSinkFailure = errors.New("sink failure")

type failingSink struct {
	calls          int
	failAfterCalls int
}

func (f *failingSink) Write(p []byte) (int, error) {
	f.calls++
	if f.calls > f.failAfterCalls {
		return 0, errSinkFailure
	}
	return len(p), nil
}

type failingEncoder struct {
	closed bool
}

func (f *failingEncoder) Begin(dst []byte) (int, error) {
	return 0, errors.New("begin failure")
}

func (f *failingEncoder) Update(dst []byte, src []byte) (int, error) {
	return 0, errors.New("update failure")
}

func (f *failingEncoder) End(dst []byte) (int, error) {
	return 0, errors.New("end failure")
}

func (f *failingEncoder) Close() error {
	f.closed = true
	return nil
}

func ascendingBytesOfLen(size int) []byte {
	bytes := make([]byte, size)
	for i := 0; i < size; i++ {
		bytes[i] = byte(i)
	}
	return bytes
}

func closeWriter(t *testing.T, writer *Writer) {
	require.Nil(t, writer.Close())
}

func closeReader(t *testing.T, reader *Reader) {
	require.Nil(t, reader.Close())
}

func newReaderOverSink(t *testing.T, sink *countingSink) *Reader {
	reader, err := NewReader(bytes.NewReader(sink.buf.Bytes()))
	require.Nil(t, err)
	return reader
}

func assertReadsExactly(t *testing.T, reader *Reader, expected []byte) {
	decoded := make([]byte, 0, len(expected))
	buf := make([]byte, 32)
	for {
		n, err := reader.Read(buf)
		decoded = append(decoded, buf[:n]...)
		if err != nil {
			assert.Contains(t, err.Error(), "EOF")
			break
		}
	}
	assert.Equal(t, expected, decoded)
}
