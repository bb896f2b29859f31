package storage

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the algorithm used for stored payloads
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionLZ4  Compression = "lz4"
	CompressionZSTD Compression = "zstd"
)

// ParseCompression validates a compression name. An empty name selects lz4.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(s); c {
	case "":
		return CompressionLZ4, nil
	case CompressionNone, CompressionLZ4, CompressionZSTD:
		return c, nil
	default:
		return "", fmt.Errorf("unknown compression %q", s)
	}
}

// Blob frame: [UncompressedSize u32][CompressedSize u32][CRC32 u32][Data...]
// CompressedSize == 0 means Data is stored raw.
const frameHeaderSize = 12

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// frame compresses payload and prepends the frame header.
// Payloads that do not shrink are stored raw.
func frame(payload []byte, c Compression) ([]byte, error) {
	var compressed []byte

	switch c {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(payload)))
		n, err := lz4.CompressBlock(payload, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(payload, nil)
		zstdEncoderPool.Put(enc)
	case CompressionNone:
	default:
		return nil, fmt.Errorf("unknown compression %q", c)
	}

	out := make([]byte, frameHeaderSize, frameHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(out[8:], crc32.ChecksumIEEE(payload))

	if len(compressed) == 0 || len(compressed) >= len(payload) {
		return append(out, payload...), nil
	}
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	return append(out, compressed...), nil
}

// unframe reverses frame and verifies the checksum
func unframe(data []byte, c Compression) ([]byte, error) {
	if len(data) < frameHeaderSize {
		return nil, fmt.Errorf("%w: frame too short", ErrCorruptBlob)
	}

	size := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])
	checksum := binary.LittleEndian.Uint32(data[8:])
	body := data[frameHeaderSize:]

	var payload []byte
	if compressedSize == 0 {
		if uint32(len(body)) != size {
			return nil, fmt.Errorf("%w: raw size %d, want %d", ErrCorruptBlob, len(body), size)
		}
		payload = append([]byte(nil), body...)
	} else {
		if uint32(len(body)) != compressedSize {
			return nil, fmt.Errorf("%w: compressed size %d, want %d", ErrCorruptBlob, len(body), compressedSize)
		}

		switch c {
		case CompressionLZ4:
			payload = make([]byte, size)
			n, err := lz4.UncompressBlock(body, payload)
			if err != nil {
				return nil, fmt.Errorf("%w: lz4: %v", ErrCorruptBlob, err)
			}
			payload = payload[:n]
		case CompressionZSTD:
			dec := getZstdDecoder()
			var err error
			payload, err = dec.DecodeAll(body, make([]byte, 0, size))
			zstdDecoderPool.Put(dec)
			if err != nil {
				return nil, fmt.Errorf("%w: zstd: %v", ErrCorruptBlob, err)
			}
		default:
			return nil, fmt.Errorf("%w: compressed frame with compression %q", ErrCorruptBlob, c)
		}

		if uint32(len(payload)) != size {
			return nil, fmt.Errorf("%w: decompressed size %d, want %d", ErrCorruptBlob, len(payload), size)
		}
	}

	if crc32.ChecksumIEEE(payload) != checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptBlob)
	}
	return payload, nil
}
