package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/daniacca/genelab/internal/content"
	"github.com/daniacca/genelab/internal/lab"
)

// report is what one offline simulation prints with -json.
type report struct {
	Mode       lab.Phase             `json:"mode"`
	Level      int                   `json:"level"`
	LevelName  string                `json:"level_name"`
	Organism   string                `json:"organism"`
	Verdict    lab.Verdict           `json:"verdict"`
	Quick      lab.Verdict           `json:"quick_verdict"`
	Result     *lab.SimulationResult `json:"result,omitempty"`
	MeetsLevel bool                  `json:"meets_level"`
	Score      *lab.ScoreBreakdown   `json:"score,omitempty"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("genelab-sim", flag.ContinueOnError)
	var (
		mode        = fs.String("mode", string(lab.PhaseGeneticModification), "genetic_modification or drug_discovery")
		level       = fs.Int("level", 1, "level number")
		sequence    = fs.String("sequence", lab.DefaultSequence, "strand to simulate (genetic mode)")
		components  = fs.String("components", "", "comma separated component IDs (drug mode)")
		verdictMode = fs.String("verdict-mode", lab.VerdictModeDomain, "domain or random")
		seed        = fs.Uint64("seed", 0, "seed for the random verdict mode; 0 uses crypto randomness")
		elapsed     = fs.Int("time", 60, "seconds spent on the level, for scoring")
		attempts    = fs.Int("attempts", 1, "attempts made, for scoring")
		contentDir  = fs.String("content-dir", "", "directory with content YAML overriding the built-in tables")
		asJSON      = fs.Bool("json", false, "print the report as JSON")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	phase := lab.Phase(*mode)
	if !phase.Playable() {
		return fmt.Errorf("unknown mode %q", *mode)
	}

	var catalog *content.Catalog
	var err error
	if *contentDir != "" {
		catalog, err = content.LoadDir(*contentDir)
	} else {
		catalog, err = content.Load()
	}
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	levelData, ok := catalog.LevelData(phase, *level)
	if !ok {
		return fmt.Errorf("%s has no level %d", phase, *level)
	}

	in := lab.SimulationInput{
		Mode:     phase,
		Level:    levelData,
		HasLevel: true,
		Organism: catalog.OrganismFor(levelData.TargetOrganism),
		EditType: lab.EditCRISPR,
	}
	var quick lab.Verdict
	switch phase {
	case lab.PhaseGeneticModification:
		bases, err := lab.ParseSequence(*sequence)
		if err != nil {
			return fmt.Errorf("parsing sequence: %w", err)
		}
		in.Sequence = bases
		quick = lab.QuickSequenceVerdict(*sequence)
	case lab.PhaseDrugDiscovery:
		drug := lab.NewDrug()
		for _, id := range splitIDs(*components) {
			c, ok := catalog.Component(id)
			if !ok {
				msg := fmt.Sprintf("unknown component %q", id)
				if s := catalog.ClosestComponentIDs(id); len(s) > 0 {
					msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(s, ", "))
				}
				return errors.New(msg)
			}
			drug.Add(c)
		}
		in.Components = drug.Components()
		quick = lab.QuickDrugVerdict(in.Components)
	}

	var rng lab.RandomSource = lab.DefaultRNG()
	if *seed != 0 {
		rng = lab.NewSeededRNG(*seed)
	}
	verdict, result := lab.NewVerdictSource(*verdictMode, rng).Verdict(in)

	rep := report{
		Mode:      phase,
		Level:     levelData.ID,
		LevelName: levelData.Name,
		Organism:  in.Organism.Name,
		Verdict:   verdict,
		Quick:     quick,
		Result:    result,
	}
	if result != nil && levelData.Meets(*result) {
		rep.MeetsLevel = true
		score := lab.CalculateLevelScore(result.Effectiveness, *elapsed, *attempts, len(result.SideEffects), levelData.Difficulty, lab.IsOptimal(in))
		rep.Score = &score
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	printReport(out, rep)
	return nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

func printReport(out io.Writer, rep report) {
	fmt.Fprintf(out, "Level %d (%s): %s\n", rep.Level, rep.Mode, rep.LevelName)
	fmt.Fprintf(out, "Host organism: %s\n", rep.Organism)
	fmt.Fprintf(out, "Verdict: %s (quick check: %s)\n", rep.Verdict, rep.Quick)
	if r := rep.Result; r != nil {
		fmt.Fprintf(out, "Effectiveness: %.2f\n", r.Effectiveness)
		fmt.Fprintf(out, "Score: %d\n", r.Score)
		if len(r.SideEffects) > 0 {
			fmt.Fprintf(out, "Side effects:\n")
			for _, se := range r.SideEffects {
				fmt.Fprintf(out, "  - %s\n", se)
			}
		}
		fmt.Fprintf(out, "%s\n", r.Explanation)
	}
	if rep.Score != nil {
		fmt.Fprintf(out, "Level complete: %d points (base %d, time %d, efficiency %d)\n",
			rep.Score.TotalScore, rep.Score.BaseScore, rep.Score.TimeBonus, rep.Score.EfficiencyBonus)
	} else {
		fmt.Fprintf(out, "Level criteria not met\n")
	}
}
