package fastq

import (
	"bufio"
	"errors"
	"io"
)

// Stream is the unbuffered side of a reader session. Bytes handed back from
// the read-ahead window with Push are read before the underlying reader.
type Stream struct {
	r    *bufio.Reader
	pend []byte
	pos  int
	err  error

	// set when a line was read at the end of the stream
	short bool

	// state of the last ReadByte, for UnreadByte
	canUnread bool
	lastPend  bool
}

// NewStream wraps r. A *bufio.Reader is used as is.
func NewStream(r io.Reader) *Stream {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Stream{r: br}
}

// Push puts p in front of the bytes not yet read. p is copied.
func (s *Stream) Push(p []byte) {
	if len(p) == 0 {
		return
	}
	rest := s.pend[s.pos:]
	pend := make([]byte, 0, len(p)+len(rest))
	pend = append(pend, p...)
	s.pend = append(pend, rest...)
	s.pos = 0
	s.canUnread = false
}

// Read implements io.Reader, which Buffer.Fill uses.
func (s *Stream) Read(p []byte) (int, error) {
	s.canUnread = false
	if s.pos < len(s.pend) {
		n := copy(p, s.pend[s.pos:])
		s.consume(n)
		return n, nil
	}
	n, err := s.r.Read(p)
	s.setErr(err)
	return n, err
}

func (s *Stream) ReadByte() (byte, error) {
	if s.pos < len(s.pend) {
		c := s.pend[s.pos]
		s.consume(1)
		s.canUnread, s.lastPend = true, true
		return c, nil
	}
	c, err := s.r.ReadByte()
	if err != nil {
		s.setErr(err)
		s.canUnread = false
		return 0, err
	}
	s.canUnread, s.lastPend = true, false
	return c, nil
}

func (s *Stream) UnreadByte() error {
	if !s.canUnread {
		return bufio.ErrInvalidUnreadByte
	}
	s.canUnread = false
	if s.lastPend {
		s.pos--
		return nil
	}
	return s.r.UnreadByte()
}

// ReadLine implements StreamSource. A trailing carriage return is dropped
// along with the newline.
func (s *Stream) ReadLine(dst []byte) []byte {
	s.canUnread = false
	got := false
	if s.pos < len(s.pend) {
		got = true
		rest := s.pend[s.pos:]
		for i, c := range rest {
			if c == '\n' {
				s.consume(i + 1)
				return trimEOL(append(dst, rest[:i+1]...))
			}
		}
		dst = append(dst, rest...)
		s.consume(len(rest))
	}
	for {
		chunk, err := s.r.ReadSlice('\n')
		dst = append(dst, chunk...)
		got = got || len(chunk) > 0
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if !got && errors.Is(err, io.EOF) {
			s.short = true
		}
		s.setErr(err)
		return trimEOL(dst)
	}
}

// EOF reports whether no byte is left to read. It does not consume input.
func (s *Stream) EOF() bool {
	if s.pos < len(s.pend) {
		return false
	}
	if _, err := s.r.Peek(1); err != nil {
		s.setErr(err)
		return true
	}
	return false
}

func (s *Stream) Err() error {
	return s.err
}

func (s *Stream) consume(n int) {
	s.pos += n
}

func (s *Stream) setErr(err error) {
	if err != nil && !errors.Is(err, io.EOF) && s.err == nil {
		s.err = err
	}
}

func trimEOL(line []byte) []byte {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
		if n > 0 && line[n-1] == '\r' {
			n--
		}
	}
	return line[:n]
}
