package compression

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	decoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

// ZstdCompress is used for values kept in state, which are small and
// read back often.
func ZstdCompress(data []byte) []byte {
	return encoder.EncodeAll(data, nil)
}

func ZstdDecompress(data []byte) ([]byte, error) {
	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decode zstd data: %w", err)
	}
	return out, nil
}
