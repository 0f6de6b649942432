package compressor

type CompressionI interface {
	// compresses the given block of bytes
	Compress(block []byte) ([]byte, error)
	// decompresses the given byte buffer
	Decompress(buf []byte) ([]byte, error)
	// compresses the given block of bytes, reusing the given destination buffer when it has enough capacity
	CompressWithBuf(block []byte, destinationBuffer []byte) ([]byte, error)
	// decompresses the given byte buffer, reusing the given destination buffer when it has enough capacity
	DecompressWithBuf(buf []byte, destinationBuffer []byte) ([]byte, error)
}
