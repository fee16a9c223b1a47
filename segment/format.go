package segment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// File type magics, little endian on disk. The shared prefix makes a
// segment file recognizable in a hex dump.
const (
	magicTerms uint32 = 0x54495801 // "TIX" + file type
	magicIdx   uint32 = 0x54495802
	magicNorms uint32 = 0x54495803
	magicStore uint32 = 0x54495804
	magicDel   uint32 = 0x54495805

	formatVersion uint32 = 1

	headerSize = 8 // magic + version
	footerSize = 4 // crc32
)

var (
	ErrBadMagic       = errors.New("segment: bad magic number")
	ErrBadVersion     = errors.New("segment: unsupported format version")
	ErrTruncated      = errors.New("segment: file truncated")
	ErrChecksum       = errors.New("segment: checksum mismatch")
	ErrDocOutOfRange  = errors.New("segment: doc id out of range")
	ErrUnknownField   = errors.New("segment: unknown field")
	ErrSealed         = errors.New("segment: writer already sealed")
	ErrNoDocs         = errors.New("segment: no documents added")
	ErrCorruptTermIdx = errors.New("segment: term info points outside postings file")
)

// crc32Table is the IEEE polynomial, the usual choice for storage
// corruption detection.
var crc32Table = crc32.MakeTable(crc32.IEEE)

func appendHeader(buf []byte, magic uint32) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, magic)
	buf = binary.LittleEndian.AppendUint32(buf, formatVersion)
	return buf
}

func appendFooter(buf []byte) []byte {
	return binary.LittleEndian.AppendUint32(buf, crc32.Checksum(buf, crc32Table))
}

// checkFile verifies header and CRC32 footer and returns the payload in
// between.
func checkFile(data []byte, magic uint32) ([]byte, error) {
	if len(data) < headerSize+footerSize {
		return nil, ErrTruncated
	}
	if got := binary.LittleEndian.Uint32(data[0:]); got != magic {
		return nil, fmt.Errorf("%w: got 0x%08x, want 0x%08x", ErrBadMagic, got, magic)
	}
	if v := binary.LittleEndian.Uint32(data[4:]); v != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, v)
	}
	body, footer := data[:len(data)-footerSize], data[len(data)-footerSize:]
	want := binary.LittleEndian.Uint32(footer)
	if got := crc32.Checksum(body, crc32Table); got != want {
		return nil, fmt.Errorf("%w: computed 0x%08x, stored 0x%08x", ErrChecksum, got, want)
	}
	return body[headerSize:], nil
}

type uvarintReader struct {
	data   []byte
	offset int
	err    error
}

func (r *uvarintReader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.data[r.offset:])
	if n <= 0 {
		r.err = ErrTruncated
		return 0
	}
	r.offset += n
	return v
}

func (r *uvarintReader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.offset+n > len(r.data) {
		r.err = ErrTruncated
		return nil
	}
	b := r.data[r.offset : r.offset+n]
	r.offset += n
	return b
}
