package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/Altius/stampipes/programs/demux_fastq/fastq"
)

// records cached by each RecordWriter before handing them to its goroutine
const writerCache = 128

// Stats counts what happened to the input records.
type Stats struct {
	Read      atomic.Int64
	Matched   atomic.Int64
	Unmatched atomic.Int64
}

func demux(ctx context.Context, config *Config, log commonlog.Logger) (*Stats, error) {
	mm := config.Mismatches
	if conflicts := config.applyMismatches(); len(conflicts) > 0 {
		log.Warningf("dropping %d barcodes that are ambiguous at %d mismatches", len(conflicts), mm)
	}

	// Open all outputs!
	destinations := make(map[string]*RecordWriter)
	fileLookup := make(map[string]*RecordWriter)
	closeAll := func() error {
		var errs []error
		for filename, fh := range fileLookup {
			if err := fh.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", filename, err))
			}
		}
		return errors.Join(errs...)
	}
	for bc, filename := range config.Destinations {
		// Check if it's already open!
		if fh, opened := fileLookup[filename]; opened {
			destinations[bc] = fh
			continue
		}
		fh, err := NewRecordWriter(filename, writerCache)
		if err != nil {
			closeAll()
			return nil, err
		}
		destinations[bc] = fh
		fileLookup[filename] = fh
	}
	log.Infof("writing %d barcodes to %d files", len(destinations), len(fileLookup))

	opts := []fastq.Option{fastq.WithLogger(log)}
	if config.BufferSize > 0 {
		opts = append(opts, fastq.WithBufferSize(config.BufferSize))
	}
	if config.Unbuffered {
		opts = append(opts, fastq.WithoutBuffer())
	}

	// One reader session per input; outputs are shared.
	stats := &Stats{}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(config.Threads, 1))
	for _, inputFilename := range config.Inputs {
		inputFilename := inputFilename
		g.Go(func() error {
			return demuxFile(ctx, inputFilename, destinations, stats, log, opts...)
		})
	}
	err := g.Wait()
	if cerr := closeAll(); err == nil {
		err = cerr
	}
	return stats, err
}

func demuxFile(ctx context.Context, filename string, destinations map[string]*RecordWriter, stats *Stats, log commonlog.Logger, opts ...fastq.Option) error {
	fq, err := fastq.Open(filename, opts...)
	if err != nil {
		return err
	}
	defer fq.Close()

	var record fastq.Record
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fq.Read(&record)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%s: %w", filename, err)
		}
		stats.Read.Add(1)

		dest, ok := destinations[string(barcode(record.Header))]
		if !ok {
			stats.Unmatched.Add(1)
			continue
		}
		out, err := toFastx(&record)
		if err != nil {
			return fmt.Errorf("%s: record %d: %w", filename, fq.Records(), err)
		}
		dest.Write(out)
		stats.Matched.Add(1)
	}
	log.Infof("%s: %d records, %d finished past a buffer boundary", filename, fq.Records(), fq.Transitions())
	return nil
}

// barcode returns the text after the last colon of a header line.
func barcode(header []byte) []byte {
	i := bytes.LastIndexByte(header, ':')
	if i < 0 {
		return nil
	}
	return header[i+1:]
}

// toFastx copies rec into a record the fastx writer understands. The copy is
// needed because the reader reuses rec for the next read.
func toFastx(rec *fastq.Record) (*fastx.Record, error) {
	name := bytes.Clone(bytes.TrimPrefix(rec.Header, []byte{'@'}))
	id, desc := name, []byte(nil)
	if i := bytes.IndexByte(name, ' '); i >= 0 {
		id, desc = name[:i], name[i+1:]
	}
	s, err := seq.NewSeqWithQual(seq.Unlimit, bytes.Clone(rec.Seq), bytes.Clone(rec.Qual))
	if err != nil {
		return nil, err
	}
	return &fastx.Record{ID: id, Name: name, Desc: desc, Seq: s}, nil
}

// mismatches
func mismatches(input string, distance int) (out []string) {
	mutations := []rune{'A', 'C', 'G', 'T', 'N'}
	toCheck := []string{input}
	seen := make(map[string]struct{}) // avoid double-counting

	for ; distance >= 0; distance-- {
		nextCheck := make([]string, 0, len(input)*(len(mutations)-1))

		for _, curBC := range toCheck {
			seen[curBC] = struct{}{}
			if distance == 0 {
				continue
			}
			for i, c := range curBC {
				switch c {
				case 'A', 'C', 'G', 'T', 'N':
					for _, replacement := range mutations {
						if replacement == c {
							continue
						}
						newBC := curBC[:i] + string(replacement) + curBC[i+1:]
						if _, alreadySeen := seen[newBC]; !alreadySeen {
							nextCheck = append(nextCheck, newBC)
						}
					}
				default:
					// nothing
				}
			}
		}
		toCheck = nextCheck
	}
	for k := range seen {
		out = append(out, k)
	}
	return out
}
