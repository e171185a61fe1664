package fastq

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/shenwei356/xopen"
	"github.com/tliron/commonlog"
)

const (
	// DefaultBufferSize is the read-ahead window used unless WithBufferSize
	// says otherwise.
	DefaultBufferSize = 1 << 20

	streamBufferSize = 64 << 10
)

type options struct {
	bufferSize int
	buffered   bool
	validate   bool
	log        commonlog.Logger
}

// Option configures a Reader.
type Option func(*options)

// WithBufferSize sets the size of the read-ahead window.
func WithBufferSize(n int) Option {
	return func(o *options) { o.bufferSize = n }
}

// WithoutBuffer reads every record straight from the stream.
func WithoutBuffer() Option {
	return func(o *options) { o.buffered = false }
}

// WithoutValidation skips the FASTQ format check of the first bytes.
func WithoutValidation() Option {
	return func(o *options) { o.validate = false }
}

func WithLogger(log commonlog.Logger) Option {
	return func(o *options) { o.log = log }
}

// Reader is a reader session over one FASTQ input. Records are taken from
// the read-ahead buffer while it holds them; a record cut by the end of the
// buffer is finished from the stream, and the buffer is refilled for the
// next one.
//
// A Reader is not safe for concurrent use. To read several inputs in
// parallel use one Reader per input.
type Reader struct {
	module  *Module
	stream  *Stream
	buf     *Buffer
	log     commonlog.Logger
	closers []func() error

	records     int
	transitions int
}

// Open opens the named file ("-" for stdin). Compression is detected by
// xopen; files ending in ".zst" are decoded with zstd.
func Open(path string, opts ...Option) (*Reader, error) {
	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	closers := []func() error{fh.Close}
	var src io.Reader = fh
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, fmt.Errorf("open %s: zstd: %w", path, err)
		}
		src = dec
		closers = append([]func() error{func() error { dec.Close(); return nil }}, closers...)
	}
	r, err := NewReader(src, opts...)
	if err != nil {
		for _, c := range closers {
			c()
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	r.closers = closers
	return r, nil
}

// NewReader starts a session over src. Unless WithoutValidation is given the
// first bytes of src must look like FASTQ; empty input is accepted.
func NewReader(src io.Reader, opts ...Option) (*Reader, error) {
	o := options{
		bufferSize: DefaultBufferSize,
		buffered:   true,
		validate:   true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = commonlog.GetLogger("fastq")
	}

	br := bufio.NewReaderSize(src, streamBufferSize)
	if o.validate {
		head, err := br.Peek(streamBufferSize)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, err
		}
		if len(head) > 0 && !Valid(head) {
			return nil, ErrNotFastq
		}
	}

	r := &Reader{
		module: NewModule(o.log),
		stream: NewStream(br),
		log:    o.log,
	}
	if o.buffered {
		if o.bufferSize <= 0 {
			return nil, ErrBufferSize
		}
		r.buf = NewBuffer(o.bufferSize)
	}
	return r, nil
}

// Read reads the next record into rec, reusing its storage. It returns
// io.EOF when the input is exhausted between records and ErrTruncated when it
// ends inside one.
func (r *Reader) Read(rec *Record) error {
	if r.buf == nil {
		if !r.module.ReadFile(r.stream, rec) {
			return r.end()
		}
		return r.complete()
	}

	if r.buf.Remaining() == 0 {
		if _, err := r.buf.Fill(r.stream); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("fill buffer: %w", err)
		}
	}
	if r.module.ReadBuffer(r.buf, rec) {
		return r.complete()
	}

	stage := r.module.Stage()
	r.stream.Push(r.buf.Drain())
	if r.module.ReadTransition(r.stream, rec) {
		r.transitions++
		r.log.Debugf("record %d crossed the buffer boundary at the %s line", r.records+1, stage)
		return r.complete()
	}
	return r.end()
}

// complete accounts for a record the parser reported as finished. The stream
// reads behind it may have run past the end of the input.
func (r *Reader) complete() error {
	if err := r.stream.Err(); err != nil {
		return err
	}
	if r.stream.short {
		r.stream.short = false
		return fmt.Errorf("%w: record %d is missing lines", ErrTruncated, r.records+1)
	}
	r.records++
	return nil
}

func (r *Reader) end() error {
	if err := r.stream.Err(); err != nil {
		return err
	}
	if r.module.Stage() != StageHeader {
		return fmt.Errorf("%w: record %d stops before its %s line", ErrTruncated, r.records+1, r.module.Stage())
	}
	return io.EOF
}

// Records returns the number of complete records read so far.
func (r *Reader) Records() int {
	return r.records
}

// Transitions returns how many records were finished from the stream after
// the buffer ran out.
func (r *Reader) Transitions() int {
	return r.transitions
}

// Close releases the input opened by Open. Readers made with NewReader do
// not close their source.
func (r *Reader) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
