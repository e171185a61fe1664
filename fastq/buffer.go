package fastq

import (
	"bytes"
	"errors"
	"io"
)

// Buffer is a read-ahead window [start, end) over previously loaded bytes.
type Buffer struct {
	data  []byte
	start int
	end   int
}

// NewBuffer returns an empty window able to hold size bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, size)}
}

// Size is the capacity of the window.
func (b *Buffer) Size() int {
	return len(b.data)
}

func (b *Buffer) Remaining() int {
	return b.end - b.start
}

// ReadLine implements BufferSource. A trailing carriage return is dropped
// along with the newline.
func (b *Buffer) ReadLine(dst []byte) ([]byte, bool) {
	i := bytes.IndexByte(b.data[b.start:b.end], '\n')
	if i < 0 {
		return dst, false
	}
	line := b.data[b.start : b.start+i]
	b.start += i + 1
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return append(dst, line...), true
}

// Fill moves the unread bytes to the front of the window and reads from r
// until the window is full or r is exhausted. It returns the number of bytes
// added; io.EOF is returned once r has nothing more to give.
func (b *Buffer) Fill(r io.Reader) (int, error) {
	if b.start > 0 {
		copy(b.data, b.data[b.start:b.end])
		b.end -= b.start
		b.start = 0
	}
	if b.end == len(b.data) {
		return 0, nil
	}
	n, err := io.ReadFull(r, b.data[b.end:])
	b.end += n
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return n, err
}

// Drain empties the window and returns the bytes that were unread. The
// returned slice is only valid until the next Fill.
func (b *Buffer) Drain() []byte {
	p := b.data[b.start:b.end]
	b.start, b.end = 0, 0
	return p
}
