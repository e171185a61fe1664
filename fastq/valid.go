package fastq

var nucleotide [256]bool

func init() {
	for _, c := range []byte("ACGTUNRYSWKMBDHVacgtunryswkmbdhv.-*") {
		nucleotide[c] = true
	}
}

// Valid reports whether buf looks like the start of FASTQ data: records of a
// header line beginning with '@', a line of nucleotide codes, a separator
// line beginning with '+' and a line of printable quality characters. buf may
// end in the middle of a record, including inside the first header line.
// Blank lines may follow the last record but nothing may follow them.
func Valid(buf []byte) bool {
	const (
		headerStart = iota
		header
		sequence
		sepStart
		sep
		quality
		blank
	)
	state := headerStart
	headerSeen := false
	for _, c := range buf {
		if c > 127 {
			return false
		}
		switch state {
		case headerStart:
			if headerSeen && (c == '\n' || c == '\r') {
				state = blank
				continue
			}
			if c != '@' {
				return false
			}
			state = header
		case header:
			if c == '\n' {
				state = sequence
				headerSeen = true
			}
		case sequence:
			switch {
			case c == '\n':
				state = sepStart
			case c == '\r':
			case !nucleotide[c]:
				return false
			}
		case sepStart:
			if c != '+' {
				return false
			}
			state = sep
		case sep:
			if c == '\n' {
				state = quality
			}
		case quality:
			switch {
			case c == '\n':
				state = headerStart
			case c == '\r':
			case c < '!' || c > '~':
				return false
			}
		case blank:
			if c != '\n' && c != '\r' {
				return false
			}
		}
	}
	return headerSeen || state == header
}
