package main

import (
	"sync"

	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
)

// FASTQ lines are never wrapped; the width only has to exceed any read.
const lineWidth = 100000

// RecordWriter writes records in an async fashion
// Call Close() when you're done!
// Write may be called from several goroutines.
type RecordWriter struct {
	mu      sync.Mutex
	writer  *xopen.Writer
	cache   []*fastx.Record
	records chan []*fastx.Record
	errors  chan error
	closed  bool
}

func (w *RecordWriter) Write(record *fastx.Record) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cache = append(w.cache, record)
	if cap(w.cache) == len(w.cache) {
		w.flush()
	}
}

// Close flushes the cache, waits for the background writer and closes the
// output. It is safe to call more than once.
func (w *RecordWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.flush()

	close(w.records)
	return <-w.errors
}

func (w *RecordWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flush()
}

func (w *RecordWriter) flush() {
	if len(w.cache) == 0 {
		return
	}
	w.records <- w.cache
	// the background goroutine owns the sent batch
	w.cache = make([]*fastx.Record, 0, cap(w.cache))
}

// NewRecordWriter creates a nice new writer
// cachesize: How many records to buffer at a time
func NewRecordWriter(filename string, cachesize int) (*RecordWriter, error) {

	writer, err := xopen.Wopen(filename)
	if err != nil {
		return nil, err
	}

	w := RecordWriter{
		cache:   make([]*fastx.Record, 0, cachesize),
		records: make(chan []*fastx.Record), // unbuffered
		errors:  make(chan error, 1),
		writer:  writer,
	}

	go func(w *RecordWriter) {
		writer := w.writer
		for records := range w.records {
			for _, record := range records {
				record.FormatToWriter(writer, lineWidth)
			}
		}
		w.errors <- writer.Close()
		close(w.errors)
	}(&w)
	return &w, nil
}
