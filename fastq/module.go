// Package fastq reads FASTQ records one at a time from a read-ahead buffer
// backed by a stream. A record may straddle any number of buffer refills: the
// parser remembers which of the four lines it expects next, so reading can
// stop when the buffer runs dry and pick up again at exactly the same line,
// either from a refilled buffer or straight from the stream.
package fastq

import (
	"io"
	"os"

	"github.com/tliron/commonlog"
)

// BufferSource is the resident read-ahead window.
type BufferSource interface {
	// Remaining reports the number of unread bytes in the window.
	Remaining() int
	// ReadLine appends the next line to dst without its terminator and moves
	// the cursor past the terminator. When no terminator is left in the window
	// it returns dst unchanged and false, and the cursor does not move.
	ReadLine(dst []byte) ([]byte, bool)
}

// StreamSource is the unbounded input behind the window. ReadByte and
// UnreadByte are used together to test for more data without consuming it.
type StreamSource interface {
	io.ByteScanner
	// ReadLine appends the next line to dst without its terminator. The end
	// of the stream also ends a line.
	ReadLine(dst []byte) []byte
	// EOF reports whether the stream has no more bytes.
	EOF() bool
	// Err returns the first read error other than io.EOF.
	Err() error
}

// exit is replaced in tests.
var exit = os.Exit

// Module holds the parsing position of one reader session. The zero value
// starts at StageHeader. A Module must not be shared between sessions or used
// from several goroutines.
type Module struct {
	stage Stage
	tmp   []byte
	log   commonlog.Logger
}

// NewModule returns a Module that reports internal corruption through log.
func NewModule(log commonlog.Logger) *Module {
	return &Module{log: log}
}

// Stage returns the line expected next.
func (m *Module) Stage() Stage {
	return m.stage
}

// ReadBuffer fills rec from the lines resident in buf, starting at the
// current stage. It returns true once the quality line is read. It returns
// false when buf is empty or holds no complete line for the current stage; the
// stage is then left at that line and the fields already read are kept.
//
// The record is cleared only when a new record is started.
func (m *Module) ReadBuffer(buf BufferSource, rec *Record) bool {
	if m.stage == StageHeader {
		rec.Reset()
	}
	if buf.Remaining() == 0 {
		return false
	}
	for {
		dst := m.field(rec)
		line, ok := buf.ReadLine(*dst)
		if !ok {
			return false
		}
		*dst = line
		if m.advance() {
			return true
		}
	}
}

// ReadTransition finishes rec with lines read directly from s, starting at
// the current stage. Fields already read are left alone and the current field
// is appended to, so a line whose head came from the buffer is completed. It
// returns false without reading when s is failed or exhausted.
func (m *Module) ReadTransition(s StreamSource, rec *Record) bool {
	if s.Err() != nil || s.EOF() {
		return false
	}
	if _, err := s.ReadByte(); err != nil {
		return false
	}
	if err := s.UnreadByte(); err != nil {
		return false
	}
	for {
		dst := m.field(rec)
		*dst = s.ReadLine(*dst)
		if m.advance() {
			return true
		}
	}
}

// ReadFile reads a whole record from s, ignoring the stage. It assumes s is
// positioned at the start of a well-formed record and returns false only when
// s is already exhausted.
func (m *Module) ReadFile(s StreamSource, rec *Record) bool {
	if s.EOF() {
		return false
	}
	rec.Header = s.ReadLine(rec.Header[:0])
	rec.Seq = s.ReadLine(rec.Seq[:0])
	m.tmp = s.ReadLine(m.tmp[:0])
	rec.Qual = s.ReadLine(rec.Qual[:0])
	m.tmp = m.tmp[:0]
	return true
}

func (m *Module) field(rec *Record) *[]byte {
	switch m.stage {
	case StageHeader:
		return &rec.Header
	case StageSeq:
		return &rec.Seq
	case StageSep:
		return &m.tmp
	case StageQual:
		return &rec.Qual
	}
	m.corrupt()
	panic("unreachable")
}

// advance moves past a completed line and reports whether it ended the record.
func (m *Module) advance() bool {
	switch m.stage {
	case StageHeader:
		m.stage = StageSeq
	case StageSeq:
		m.stage = StageSep
	case StageSep:
		m.stage = StageQual
		m.tmp = m.tmp[:0]
	case StageQual:
		m.stage = StageHeader
		return true
	default:
		m.corrupt()
		panic("unreachable")
	}
	return false
}

func (m *Module) corrupt() {
	log := m.log
	if log == nil {
		log = commonlog.GetLogger("fastq")
	}
	log.Criticalf("reader has entered an invalid state (stage %d)", uint8(m.stage))
	exit(1)
}
