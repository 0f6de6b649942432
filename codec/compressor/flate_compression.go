package compressor

import (
	"bytes"
	"compress/flate"
)

type FlateCompressor struct {
}

func (f *FlateCompressor) Compress(block []byte) ([]byte, error) {
	return f.CompressWithBuf(block, nil)
}

func (f *FlateCompressor) Decompress(buf []byte) ([]byte, error) {
	return f.DecompressWithBuf(buf, nil)
}

func (f *FlateCompressor) CompressWithBuf(block []byte, destinationBuffer []byte) ([]byte, error) {
	// we have to set the length of the buffer (keeping capacity) to make sure flate doesn't append
	buf := bytes.NewBuffer(destinationBuffer[:0])
	writer, err := flate.NewWriter(buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	_, err = writer.Write(block)
	if err != nil {
		return nil, err
	}
	err = writer.Close()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *FlateCompressor) DecompressWithBuf(buf []byte, destinationBuffer []byte) ([]byte, error) {
	reader := flate.NewReader(bytes.NewBuffer(buf))
	resultBuffer := bytes.NewBuffer(destinationBuffer[:0])
	_, err := resultBuffer.ReadFrom(reader)
	if err != nil {
		return nil, err
	}

	err = reader.Close()
	if err != nil {
		return nil, err
	}

	return resultBuffer.Bytes(), nil
}
