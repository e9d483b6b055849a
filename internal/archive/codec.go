package archive

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/klauspost/compress/s2"
)

// Feature blobs are float32 little-endian, block-compressed with s2: lossless,
// cheap to decompress, and friendly to the mostly-smooth dB surfaces the
// extractor produces. Target blobs are 1-byte bools stored raw.

func encodeFloat32(values []float32) []byte {
	raw := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}
	return s2.Encode(nil, raw)
}

func decodeFloat32(blob []byte, want int) ([]float32, error) {
	raw, err := s2.Decode(nil, blob)
	if err != nil {
		return nil, fmt.Errorf("decompress feature blob: %w", err)
	}
	if len(raw) != 4*want {
		return nil, fmt.Errorf("feature blob holds %d bytes, want %d", len(raw), 4*want)
	}
	values := make([]float32, want)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return values, nil
}

func encodeBools(values []bool) []byte {
	raw := make([]byte, len(values))
	for i, v := range values {
		if v {
			raw[i] = 1
		}
	}
	return raw
}

func decodeBools(blob []byte, want int) ([]bool, error) {
	if len(blob) != want {
		return nil, fmt.Errorf("target blob holds %d bytes, want %d", len(blob), want)
	}
	values := make([]bool, want)
	for i, b := range blob {
		values[i] = b != 0
	}
	return values, nil
}
