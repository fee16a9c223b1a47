package blockcomp

import (
	"bytes"
	"io"
)

// DefaultBlockSize is the flush threshold used when no size is given.
// Document stores favor small blocks so a single doc lookup decodes
// little beyond the doc itself.
const DefaultBlockSize = 16 * 1024

// Writer buffers writes and emits them as framed compressed blocks.
// Callers that need self-contained blocks (one that never splits a
// record) call FlushBlock at record boundaries once the buffer passes
// the block size.
type Writer struct {
	w         io.Writer
	codec     Codec
	blockSize int
	buffer    *bytes.Buffer
	written   int64
}

// NewWriter returns a block writer flushing through w.
func NewWriter(w io.Writer, codec Codec, blockSize int) *Writer {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Writer{
		w:         w,
		codec:     codec,
		blockSize: blockSize,
		buffer:    bytes.NewBuffer(make([]byte, 0, blockSize)),
	}
}

// Write appends p to the current block buffer.
func (c *Writer) Write(p []byte) (int, error) {
	return c.buffer.Write(p)
}

// Buffered returns the number of bytes waiting in the current block.
func (c *Writer) Buffered() int {
	return c.buffer.Len()
}

// Full reports whether the buffer has reached the block size.
func (c *Writer) Full() bool {
	return c.buffer.Len() >= c.blockSize
}

// FlushBlock compresses and writes the buffered bytes as one block.
// An empty buffer is a no-op.
func (c *Writer) FlushBlock() error {
	if c.buffer.Len() == 0 {
		return nil
	}

	compressed, err := CompressBlock(c.buffer.Bytes(), c.codec)
	if err != nil {
		return err
	}

	n, err := c.w.Write(compressed)
	if err != nil {
		return err
	}
	c.written += int64(n)
	c.buffer.Reset()
	return nil
}

// BytesWritten returns the total block bytes emitted so far. After a
// FlushBlock it is the file offset at which the next block starts.
func (c *Writer) BytesWritten() int64 {
	return c.written
}
