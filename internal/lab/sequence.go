package lab

import (
	"fmt"
	"strings"
)

// Nucleotide is one base of a DNA or RNA strand.
type Nucleotide string

const (
	Adenine  Nucleotide = "A"
	Thymine  Nucleotide = "T"
	Cytosine Nucleotide = "C"
	Guanine  Nucleotide = "G"
	Uracil   Nucleotide = "U"
)

// DefaultSequence is the strand every session starts from.
const DefaultSequence = "ATGCGATCCGAATGCG"

// ParseNucleotide reads a single base letter, in either case.
func ParseNucleotide(s string) (Nucleotide, bool) {
	n := Nucleotide(strings.ToUpper(strings.TrimSpace(s)))
	switch n {
	case Adenine, Thymine, Cytosine, Guanine, Uracil:
		return n, true
	}
	return "", false
}

// ParseSequence converts a string like "ATGC" into bases.
func ParseSequence(s string) ([]Nucleotide, error) {
	if s == "" {
		return nil, fmt.Errorf("empty sequence")
	}
	out := make([]Nucleotide, 0, len(s))
	for i, r := range s {
		n, ok := ParseNucleotide(string(r))
		if !ok {
			return nil, fmt.Errorf("invalid nucleotide %q at position %d", r, i)
		}
		out = append(out, n)
	}
	return out, nil
}

// Sequence is the strand the player edits in genetic modification mode.
// It never becomes empty. Out of range positions are ignored or clamped.
type Sequence struct {
	bases    []Nucleotide
	selected Nucleotide
	cursor   int
	rna      bool
}

// NewSequence returns the default starter strand.
func NewSequence() *Sequence {
	s := &Sequence{}
	s.Reset()
	return s
}

// SequenceView is the read-only form handed to the presentation layer.
type SequenceView struct {
	Bases              []Nucleotide `json:"bases"`
	SelectedNucleotide Nucleotide   `json:"selected_nucleotide,omitempty"`
	EditPosition       *int         `json:"edit_position"`
	IsRNA              bool         `json:"is_rna"`
}

func (s *Sequence) View() SequenceView {
	v := SequenceView{
		Bases:              s.Bases(),
		SelectedNucleotide: s.selected,
		IsRNA:              s.rna,
	}
	if s.cursor >= 0 {
		pos := s.cursor
		v.EditPosition = &pos
	}
	return v
}

// Bases returns a copy of the strand.
func (s *Sequence) Bases() []Nucleotide {
	out := make([]Nucleotide, len(s.bases))
	copy(out, s.bases)
	return out
}

func (s *Sequence) String() string {
	var b strings.Builder
	b.Grow(len(s.bases))
	for _, n := range s.bases {
		b.WriteString(string(n))
	}
	return b.String()
}

// Len is the number of bases in the strand.
func (s *Sequence) Len() int { return len(s.bases) }

// IsRNA reports whether the strand uses U in place of T.
func (s *Sequence) IsRNA() bool { return s.rna }

func (s *Sequence) Selected() Nucleotide { return s.selected }

// Cursor returns the edit position and whether one is set.
func (s *Sequence) Cursor() (int, bool) {
	return s.cursor, s.cursor >= 0
}

// alphabet maps T and U to whichever one the current mode uses.
func (s *Sequence) alphabet(n Nucleotide) Nucleotide {
	if s.rna && n == Thymine {
		return Uracil
	}
	if !s.rna && n == Uracil {
		return Thymine
	}
	return n
}

func (s *Sequence) Select(n Nucleotide) {
	if _, ok := ParseNucleotide(string(n)); !ok {
		return
	}
	s.selected = s.alphabet(n)
}

// SetCursor moves the edit position. A negative position clears it; larger
// positions clamp to the strand end, which is where insertions append.
func (s *Sequence) SetCursor(pos int) {
	if pos < 0 {
		s.cursor = -1
		return
	}
	s.cursor = clampInt(pos, 0, len(s.bases))
}

// Edit replaces the base at pos and moves the cursor there.
func (s *Sequence) Edit(pos int, n Nucleotide) {
	if pos < 0 || pos >= len(s.bases) {
		return
	}
	if _, ok := ParseNucleotide(string(n)); !ok {
		return
	}
	s.bases[pos] = s.alphabet(n)
	s.cursor = pos
}

// Insert places n at the cursor (or appends when no cursor is set) and
// advances the cursor past it.
func (s *Sequence) Insert(n Nucleotide) {
	if _, ok := ParseNucleotide(string(n)); !ok {
		return
	}
	pos := len(s.bases)
	if s.cursor >= 0 && s.cursor < len(s.bases) {
		pos = s.cursor
	}
	s.bases = append(s.bases, "")
	copy(s.bases[pos+1:], s.bases[pos:])
	s.bases[pos] = s.alphabet(n)
	s.cursor = pos + 1
}

// Delete removes the base at pos. The last remaining base is never removed.
func (s *Sequence) Delete(pos int) {
	if len(s.bases) <= 1 || pos < 0 || pos >= len(s.bases) {
		return
	}
	s.bases = append(s.bases[:pos], s.bases[pos+1:]...)
	s.cursor = min(pos, len(s.bases)-1)
}

// ToggleRNA switches between DNA and RNA, rewriting T and U accordingly.
func (s *Sequence) ToggleRNA() {
	s.rna = !s.rna
	for i, n := range s.bases {
		s.bases[i] = s.alphabet(n)
	}
	if s.selected != "" {
		s.selected = s.alphabet(s.selected)
	}
}

// Reset restores the starter strand in DNA mode with nothing selected.
func (s *Sequence) Reset() {
	bases, _ := ParseSequence(DefaultSequence)
	s.bases = bases
	s.selected = ""
	s.cursor = -1
	s.rna = false
}

var stopCodons = []string{"TAG", "TAA", "TGA"}

// QuickSequenceVerdict is the fast heuristic check shown while editing: a
// premature stop codon fails, a known beneficial motif succeeds.
func QuickSequenceVerdict(seq string) Verdict {
	dna := strings.ReplaceAll(seq, "U", "T")
	for _, c := range stopCodons {
		if strings.Contains(dna, c) {
			return VerdictFailure
		}
	}
	if strings.Contains(dna, "ATGCGA") || strings.Contains(dna, "GCGAAT") {
		return VerdictSuccess
	}
	return VerdictPartial
}
