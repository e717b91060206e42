package align

// Read is a DNA sequence with optional per-base Phred quality, and the
// Alignment fields the core fills in (spec.md §3). The caller owns Read;
// align_* mutates Path/Score/Identity/MappingQuality in place.
type Read struct {
	Name     string
	Sequence []byte
	Quality  []byte // len 0 or len(Sequence)

	Path           []Mapping
	Score          int
	Identity       float64
	MappingQuality int
}

// Mapping is one node visited by the alignment path.
type Mapping struct {
	NodeID uint32
	Offset int // position on the node's forward sequence where this mapping starts
	Rank   int // 1-based, dense, monotonically increasing
	Edits  []Edit
}

// Edit describes one edit operation converting node sequence into read
// sequence. Invariants (spec.md §3):
//   - match: FromLen == ToLen, Seq == ""
//   - mismatch (SNV): FromLen == ToLen == 1, len(Seq) == 1
//   - deletion: ToLen == 0
//   - insertion / soft clip: FromLen == 0, len(Seq) == ToLen
type Edit struct {
	FromLen int
	ToLen   int
	Seq     []byte
}

// IsMatch reports whether e is a pure match run.
func (e Edit) IsMatch() bool { return e.FromLen == e.ToLen && len(e.Seq) == 0 }

// IsMismatch reports whether e is a single-base SNV.
func (e Edit) IsMismatch() bool { return e.FromLen == 1 && e.ToLen == 1 && len(e.Seq) == 1 }

// IsDeletion reports whether e consumes no read bases.
func (e Edit) IsDeletion() bool { return e.ToLen == 0 && e.FromLen > 0 }

// IsInsertion reports whether e consumes no node bases (insertion or soft clip).
func (e Edit) IsInsertion() bool { return e.FromLen == 0 && e.ToLen > 0 }

// Params holds scoring parameters (spec.md §3). Costs are non-negative;
// the engine applies the conventional signs.
type Params struct {
	Match           int
	Mismatch        int
	GapOpen         int
	GapExtension    int
	FullLengthBonus int

	// Quality-adjusted mode.
	QualityAdjusted bool
	MaxScaledScore  int
	MaxQualScore    int
	GCContent       float64
}
