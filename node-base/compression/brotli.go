package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// ErrTooLarge is returned when decompressed data exceeds the caller's limit.
var ErrTooLarge = errors.New("decompressed data exceeds limit")

func BrotliCompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	buf := bytes.NewBuffer(nil)
	writer := brotli.NewWriterLevel(buf, brotli.BestCompression)

	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write data to brotli compressor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close brotli compressor: %w", err)
	}

	return buf.Bytes(), nil
}

func MustBrotliCompress(data []byte) []byte {
	compressed, err := BrotliCompress(data)
	if err != nil {
		panic(fmt.Errorf("failed to compress data: %w", err))
	}
	return compressed
}

// BrotliDecompress inflates data, failing with ErrTooLarge once more than
// limit bytes have been produced.
func BrotliDecompress(data []byte, limit int64) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	reader := io.LimitReader(brotli.NewReader(bytes.NewReader(data)), limit+1)
	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read brotli stream: %w", err)
	}
	if int64(len(out)) > limit {
		return nil, ErrTooLarge
	}
	return out, nil
}
