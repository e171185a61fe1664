package fastq

// Record is one FASTQ read. Each field holds a single line with the line
// terminator removed. The separator line is consumed by the parser and never
// stored here.
type Record struct {
	Header []byte
	Seq    []byte
	Qual   []byte
}

// Reset empties every field while keeping the allocated capacity.
func (r *Record) Reset() {
	r.Header = r.Header[:0]
	r.Seq = r.Seq[:0]
	r.Qual = r.Qual[:0]
}
