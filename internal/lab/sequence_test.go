package lab

import "testing"

func TestNewSequence_Default(t *testing.T) {
	s := NewSequence()
	if s.String() != DefaultSequence {
		t.Errorf("Expected %s, got %s", DefaultSequence, s.String())
	}
	if _, ok := s.Cursor(); ok {
		t.Error("Expected no edit position on a fresh strand")
	}
	if s.IsRNA() {
		t.Error("Expected DNA mode by default")
	}
}

func TestParseSequence(t *testing.T) {
	bases, err := ParseSequence("atgu")
	if err != nil {
		t.Fatalf("ParseSequence: %v", err)
	}
	if len(bases) != 4 || bases[3] != Uracil {
		t.Errorf("Expected [A T G U], got %v", bases)
	}
	if _, err := ParseSequence(""); err == nil {
		t.Error("Expected error for empty sequence")
	}
	if _, err := ParseSequence("ATXG"); err == nil {
		t.Error("Expected error for invalid nucleotide")
	}
}

func TestSequence_Edit(t *testing.T) {
	s := NewSequence()
	s.Edit(0, Guanine)
	if s.Bases()[0] != Guanine {
		t.Errorf("Expected G at 0, got %s", s.Bases()[0])
	}
	if pos, ok := s.Cursor(); !ok || pos != 0 {
		t.Errorf("Expected cursor 0, got %d (%v)", pos, ok)
	}

	before := s.String()
	s.Edit(-1, Adenine)
	s.Edit(s.Len(), Adenine)
	s.Edit(1, "X")
	if s.String() != before {
		t.Errorf("Expected out of range and invalid edits to be ignored, got %s", s.String())
	}
}

func TestSequence_InsertAtCursorAndAppend(t *testing.T) {
	s := NewSequence()
	s.Insert(Cytosine)
	if s.Len() != len(DefaultSequence)+1 || s.Bases()[s.Len()-1] != Cytosine {
		t.Errorf("Expected C appended, got %s", s.String())
	}

	s.Reset()
	s.SetCursor(2)
	s.Insert(Adenine)
	if s.String() != "ATAGCGATCCGAATGCG" {
		t.Errorf("Expected A inserted at 2, got %s", s.String())
	}
	if pos, _ := s.Cursor(); pos != 3 {
		t.Errorf("Expected cursor to advance to 3, got %d", pos)
	}
}

func TestSequence_SetCursorClamps(t *testing.T) {
	s := NewSequence()
	s.SetCursor(100)
	if pos, ok := s.Cursor(); !ok || pos != s.Len() {
		t.Errorf("Expected cursor clamped to %d, got %d", s.Len(), pos)
	}
	s.SetCursor(-5)
	if _, ok := s.Cursor(); ok {
		t.Error("Expected negative position to clear the cursor")
	}
}

func TestSequence_DeleteNeverEmpties(t *testing.T) {
	s := NewSequence()
	for range 40 {
		s.Delete(0)
	}
	if s.Len() != 1 {
		t.Fatalf("Expected a single remaining base, got %d", s.Len())
	}
	s.Delete(0)
	if s.Len() != 1 {
		t.Error("Expected the last base to survive")
	}

	s.Reset()
	s.Delete(s.Len())
	if s.Len() != len(DefaultSequence) {
		t.Error("Expected out of range delete to be ignored")
	}
	s.Delete(s.Len() - 1)
	if pos, _ := s.Cursor(); pos != s.Len()-1 {
		t.Errorf("Expected cursor on the new last base, got %d", pos)
	}
}

func TestSequence_ToggleRNA(t *testing.T) {
	s := NewSequence()
	s.Select(Thymine)
	s.ToggleRNA()
	if !s.IsRNA() {
		t.Fatal("Expected RNA mode")
	}
	if s.String() != "AUGCGAUCCGAAUGCG" {
		t.Errorf("Expected T rewritten to U, got %s", s.String())
	}
	if s.Selected() != Uracil {
		t.Errorf("Expected selection rewritten to U, got %s", s.Selected())
	}

	s.Insert(Thymine)
	if s.Bases()[s.Len()-1] != Uracil {
		t.Error("Expected T inserted as U in RNA mode")
	}

	s.ToggleRNA()
	if s.String() != DefaultSequence+"T" {
		t.Errorf("Expected round trip back to DNA, got %s", s.String())
	}
}

func TestSequence_ViewIsACopy(t *testing.T) {
	s := NewSequence()
	v := s.View()
	v.Bases[0] = Cytosine
	if s.Bases()[0] != Adenine {
		t.Error("Expected view mutation not to leak into the strand")
	}
	if v.EditPosition != nil {
		t.Error("Expected nil edit position in the view")
	}
}

func TestQuickSequenceVerdict(t *testing.T) {
	tests := []struct {
		seq  string
		want Verdict
	}{
		{"ATGCGATCC", VerdictSuccess},
		{"CCGCGAATC", VerdictSuccess},
		{"ATGCGATAG", VerdictFailure},
		{"AUGCGAUAA", VerdictFailure},
		{"CCCCCC", VerdictPartial},
		{"AUGCGA", VerdictSuccess},
	}
	for _, tt := range tests {
		if got := QuickSequenceVerdict(tt.seq); got != tt.want {
			t.Errorf("QuickSequenceVerdict(%s) = %s, expected %s", tt.seq, got, tt.want)
		}
	}
}
