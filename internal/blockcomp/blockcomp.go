package blockcomp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec selects the compression algorithm for store blocks.
type Codec uint8

const (
	// CodecNone stores blocks raw.
	CodecNone Codec = 0
	// CodecLZ4 favors decompression speed over ratio.
	CodecLZ4 Codec = 1
	// CodecZSTD favors ratio over speed.
	CodecZSTD Codec = 2
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ParseCodec maps a config string to a Codec.
func ParseCodec(s string) (Codec, error) {
	switch s {
	case "", "none":
		return CodecNone, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZSTD, nil
	default:
		return CodecNone, fmt.Errorf("blockcomp: unknown codec %q", s)
	}
}

// CodecFromByte validates a codec byte read back from a file header.
func CodecFromByte(b byte) (Codec, error) {
	switch c := Codec(b); c {
	case CodecNone, CodecLZ4, CodecZSTD:
		return c, nil
	default:
		return CodecNone, fmt.Errorf("blockcomp: unknown codec byte %d", b)
	}
}

// Block header: [UncompressedSize uint32][CompressedSize uint32][Data...].
// CompressedSize == 0 marks a raw block.
const headerSize = 8

var (
	errTruncatedBlock = errors.New("blockcomp: truncated block")
	errSizeMismatch   = errors.New("blockcomp: decompressed size mismatch")
)

// zstd codecs are stateful and expensive to build, so they are pooled.
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

// CompressBlock frames data as a single block, compressing it with the
// given codec. Blocks that do not shrink below 90% of their raw size are
// stored raw so pathological inputs never grow by more than the header.
func CompressBlock(data []byte, codec Codec) ([]byte, error) {
	var compressed []byte
	var err error

	switch codec {
	case CodecLZ4:
		compressed, err = compressLZ4(data)
	case CodecZSTD:
		compressed = compressZSTD(data)
	case CodecNone:
		// Leave compressed nil to take the raw path.
	default:
		return nil, fmt.Errorf("blockcomp: unknown codec %d", codec)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, headerSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0)
		copy(result[headerSize:], data)
		return result, nil
	}

	result := make([]byte, headerSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[headerSize:], compressed)
	return result, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Incompressible.
		return nil, nil
	}
	return compressed[:n], nil
}

func compressZSTD(data []byte) []byte {
	enc := getZstdEncoder()
	defer zstdEncoderPool.Put(enc)
	return enc.EncodeAll(data, nil)
}

// DecompressBlock decodes the block at the head of data and reports how
// many input bytes it consumed, so callers can walk concatenated blocks.
func DecompressBlock(data []byte, codec Codec) (block []byte, consumed int, err error) {
	if len(data) < headerSize {
		return nil, 0, errTruncatedBlock
	}

	uncompressedSize := binary.LittleEndian.Uint32(data[0:])
	compressedSize := binary.LittleEndian.Uint32(data[4:])

	if compressedSize == 0 {
		end := headerSize + int(uncompressedSize)
		if len(data) < end {
			return nil, 0, errTruncatedBlock
		}
		return data[headerSize:end:end], end, nil
	}

	end := headerSize + int(compressedSize)
	if len(data) < end {
		return nil, 0, errTruncatedBlock
	}
	payload := data[headerSize:end]

	switch codec {
	case CodecZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		decoded, err := dec.DecodeAll(payload, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, 0, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, 0, errSizeMismatch
		}
		return decoded, end, nil

	default:
		// CodecNone never reaches here, raw blocks carry compressedSize 0.
		result := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(payload, result)
		if err != nil {
			return nil, 0, err
		}
		if uint32(n) != uncompressedSize {
			return nil, 0, errSizeMismatch
		}
		return result, end, nil
	}
}

// DecompressAll walks every block in data and concatenates the decoded
// payloads.
func DecompressAll(data []byte, codec Codec) ([]byte, error) {
	var result []byte
	for len(data) > 0 {
		block, consumed, err := DecompressBlock(data, codec)
		if err != nil {
			return nil, err
		}
		result = append(result, block...)
		data = data[consumed:]
	}
	return result, nil
}
