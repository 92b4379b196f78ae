package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/daniacca/genelab/internal/lab"
)

func TestRun_GeneticLevelComplete(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-mode", "genetic_modification", "-level", "1", "-sequence", "ATGCGATCG", "-json"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	var rep report
	if err := json.Unmarshal(out.Bytes(), &rep); err != nil {
		t.Fatalf("Failed to parse report: %v", err)
	}
	if rep.Verdict != lab.VerdictSuccess {
		t.Errorf("Expected success, got %s", rep.Verdict)
	}
	if !rep.MeetsLevel || rep.Score == nil {
		t.Fatal("Expected the level criteria to be met")
	}
	if rep.Score.CreativityBonus != 200 {
		t.Errorf("Expected creativity bonus for the reference strand, got %d", rep.Score.CreativityBonus)
	}
	if rep.Organism != "Bacterium" {
		t.Errorf("Expected E. coli to map to Bacterium, got %s", rep.Organism)
	}
}

func TestRun_DrugTextReport(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-mode", "drug_discovery", "-level", "1", "-components", "nucleoside_analog, lipid_carrier"}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Level 1 (drug_discovery)") {
		t.Errorf("Expected level header, got %q", text)
	}
	if !strings.Contains(text, "Effectiveness:") {
		t.Errorf("Expected effectiveness line, got %q", text)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown mode", []string{"-mode", "tutorial"}, "unknown mode"},
		{"missing level", []string{"-level", "42"}, "has no level 42"},
		{"bad strand", []string{"-sequence", "ATGX"}, "parsing sequence"},
		{"unknown component", []string{"-mode", "drug_discovery", "-components", "lipid_carier"}, "lipid_carrier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(tt.args, &out)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSplitIDs(t *testing.T) {
	got := splitIDs(" a, ,b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Expected [a b], got %v", got)
	}
	if splitIDs("") != nil {
		t.Error("Expected nil for empty input")
	}
}
