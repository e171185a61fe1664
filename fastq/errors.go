package fastq

import "errors"

var (
	// ErrTruncated is returned when the input ends in the middle of a record.
	ErrTruncated = errors.New("fastq: input ends inside a record")
	// ErrNotFastq is returned when the start of the input is not FASTQ.
	ErrNotFastq = errors.New("fastq: input is not in FASTQ format")
	// ErrBufferSize is returned for a non-positive read-ahead buffer size.
	ErrBufferSize = errors.New("fastq: buffer size must be positive")
)
