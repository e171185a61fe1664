package fastq

// Stage identifies the line of the current record that is read next.
type Stage uint8

const (
	StageHeader Stage = iota
	StageSeq
	StageSep
	StageQual
)

func (s Stage) String() string {
	switch s {
	case StageHeader:
		return "header"
	case StageSeq:
		return "sequence"
	case StageSep:
		return "separator"
	case StageQual:
		return "quality"
	}
	return "invalid"
}
