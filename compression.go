package main

import (
	"github.com/pierrec/lz4/v4"
)

const (
	COMPRESSION_HEADER = "LZ4"
)

// compressLZ4 wraps data in the agent's LZ4 block frame: "LZ4" magic,
// little-endian uint64 original size, then the compressed block. Incompressible
// payloads are returned as-is without the frame.
func compressLZ4(data []byte) []byte {
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, buf, nil)
	if err != nil || n == 0 || n >= len(data) {
		return data
	}

	out := make([]byte, 0, len(COMPRESSION_HEADER)+8+n)
	out = append(out, COMPRESSION_HEADER...)
	size := uint64(len(data))
	for i := 0; i < 8; i++ {
		out = append(out, byte(size>>(8*i)))
	}
	return append(out, buf[:n]...)
}

// decompressLZ4 decompresses LZ4-framed data. Unframed data passes through.
func decompressLZ4(data []byte) ([]byte, error) {
	if len(data) < len(COMPRESSION_HEADER)+8 {
		return data, nil // Not compressed
	}

	if string(data[:len(COMPRESSION_HEADER)]) != COMPRESSION_HEADER {
		return data, nil // Not compressed
	}

	offset := len(COMPRESSION_HEADER)
	var originalSize uint64
	for i := 0; i < 8; i++ {
		originalSize |= uint64(data[offset+i]) << (8 * i)
	}

	compressed := data[offset+8:]
	decompressed := make([]byte, originalSize)

	n, err := lz4.UncompressBlock(compressed, decompressed)
	if err != nil {
		return data, err
	}

	return decompressed[:n], nil
}
