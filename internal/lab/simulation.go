package lab

import (
	"math"
	"strings"
)

// SimulationResult is the outcome of one detailed simulation run.
type SimulationResult struct {
	Success       bool     `json:"success"`
	Effectiveness float64  `json:"effectiveness"`
	SideEffects   []string `json:"side_effects"`
	Explanation   string   `json:"explanation"`
	Score         int      `json:"score"`
}

// Verdict collapses a result into the three outcome bands.
func (r SimulationResult) Verdict() Verdict {
	switch {
	case r.Success:
		return VerdictSuccess
	case r.Effectiveness > partialThreshold:
		return VerdictPartial
	}
	return VerdictFailure
}

// EditType is the editing technique. It is recorded but does not change the
// outcome.
type EditType string

const (
	EditCRISPR      EditType = "crispr"
	EditBaseEditor  EditType = "base_editor"
	EditPrimeEditor EditType = "prime_editor"
)

const (
	successThreshold = 0.7
	partialThreshold = 0.4
)

const (
	SideEffectOffTarget      = "Potential off-target effects detected"
	SideEffectFrameShift     = "Frame shift mutation may disrupt protein function"
	SideEffectEssentialGenes = "Essential genes may be disrupted"
	SideEffectNoComponents   = "No drug components selected"
	SideEffectLowSelectivity = "Low selectivity may cause host toxicity"
	SideEffectResistance     = "High potential for pathogen resistance development"
	SideEffectToxicity       = "Potential toxicity concerns"
)

// resistancePatterns are motifs that confer resistance when present in an
// edited strand.
var resistancePatterns = []string{"ATGCGA", "GCGAAT", "TTGCGC"}

var geneticExplanations = [3]string{
	"Genetic modification successfully enhances organism resistance with minimal side effects.",
	"Partial success achieved, but optimization needed to reduce side effects.",
	"Genetic modification failed to provide adequate resistance or caused harmful effects.",
}

var drugExplanations = [3]string{
	"Drug design successfully targets pathogen with high selectivity and low toxicity.",
	"Drug shows promise but requires optimization for better efficacy and safety.",
	"Drug design fails to effectively target pathogen or shows significant safety concerns.",
}

// SimulateGeneticModification scores an edited strand against the host
// organism and the pathogen it should resist. It is defined for every input.
func SimulateGeneticModification(seq []Nucleotide, organism OrganismData, pathogen PathogenData, editType EditType) SimulationResult {
	s := joinBases(seq)
	sideEffects := make([]string, 0)
	eff := 0.0
	var explanation strings.Builder

	if hasOffTarget(s, organism.CriticalGenes) {
		sideEffects = append(sideEffects, SideEffectOffTarget)
		eff -= 0.3
	}

	if len(s)%3 != 0 {
		sideEffects = append(sideEffects, SideEffectFrameShift)
		eff -= 0.4
	}

	if found := resistanceGenes(s); len(found) > 0 {
		eff += 0.4
		explanation.WriteString("Enhanced resistance through " + strings.Join(found, ", ") + ". ")
	}

	if disruptsEssentialGenes(s, organism.CriticalGenes) {
		sideEffects = append(sideEffects, SideEffectEssentialGenes)
		eff -= 0.6
	}

	eff += immuneCompatibility(organism.ImmuneSystem) * 0.3
	eff += vulnerabilityCoverage(s, pathogen) * 0.5

	return finish(eff, sideEffects, explanation.String(), 20, geneticExplanations)
}

// SimulateDrugInteraction scores an assembled drug against a pathogen in the
// given host. An empty drug is a defined failure.
func SimulateDrugInteraction(components []DrugComponent, pathogen PathogenData, organism OrganismData) SimulationResult {
	if len(components) == 0 {
		return SimulationResult{
			Success:       false,
			Effectiveness: 0,
			SideEffects:   []string{SideEffectNoComponents},
			Explanation:   "Drug design incomplete - no active components present.",
			Score:         0,
		}
	}

	sideEffects := make([]string, 0)
	eff := 0.0
	explanation := ""

	eff += bindingAffinity(components, pathogen) * 0.4

	sel := selectivity(components, pathogen)
	if sel < 0.5 {
		sideEffects = append(sideEffects, SideEffectLowSelectivity)
	}
	eff += sel * 0.3

	rp := resistancePotential(components, pathogen)
	if rp > 0.7 {
		sideEffects = append(sideEffects, SideEffectResistance)
	}
	eff -= rp * 0.2

	bio, tox := pharmacokinetics(components)
	eff += bio * 0.2
	if tox > 0.6 {
		sideEffects = append(sideEffects, SideEffectToxicity)
	}

	if len(categories(components)) > 1 {
		eff += 0.1
		explanation += "Multi-target approach reduces resistance risk. "
	}

	return finish(eff, sideEffects, explanation, 15, drugExplanations)
}

func finish(eff float64, sideEffects []string, explanation string, sidePenalty int, defaults [3]string) SimulationResult {
	eff = clamp01(eff)
	success := eff > successThreshold && len(sideEffects) == 0

	score := int(math.Round(eff * 100))
	if success {
		score += 50
	}
	score -= sidePenalty * len(sideEffects)
	if score < 0 {
		score = 0
	}

	if explanation == "" {
		switch {
		case success:
			explanation = defaults[0]
		case eff > partialThreshold:
			explanation = defaults[1]
		default:
			explanation = defaults[2]
		}
	}

	return SimulationResult{
		Success:       success,
		Effectiveness: eff,
		SideEffects:   sideEffects,
		Explanation:   explanation,
		Score:         score,
	}
}

func joinBases(seq []Nucleotide) string {
	var b strings.Builder
	b.Grow(len(seq))
	for _, n := range seq {
		b.WriteString(string(n))
	}
	return b.String()
}

// similarity is the fraction of equal characters at equal positions over the
// shorter of the two strings. Empty input has similarity 0.
func similarity(a, b string) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	matches := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(n)
}

func hasOffTarget(s string, genes []string) bool {
	for _, g := range genes {
		if sim := similarity(s, g); sim > 0.8 && sim < 1.0 {
			return true
		}
	}
	return false
}

func disruptsEssentialGenes(s string, genes []string) bool {
	for _, g := range genes {
		if similarity(s, g) > 0.9 {
			return true
		}
	}
	return false
}

func resistanceGenes(s string) []string {
	found := make([]string, 0)
	for _, p := range resistancePatterns {
		if strings.Contains(s, p) {
			found = append(found, p)
		}
	}
	return found
}

func immuneCompatibility(immune ImmuneSystem) float64 {
	c := 0.5
	if immune.Adaptability > 0.7 {
		c += 0.2
	}
	if immune.Memory {
		c += 0.1
	}
	return math.Min(1, c)
}

func vulnerabilityCoverage(s string, pathogen PathogenData) float64 {
	r := 0.0
	for _, v := range pathogen.Vulnerabilities {
		if v.Target != "" && strings.Contains(s, v.Target) {
			r += 0.3
		}
	}
	return math.Min(1, r)
}

var sizeScore = map[Size]float64{
	SizeSmall:  0.8,
	SizeMedium: 0.6,
	SizeLarge:  0.4,
}

func sizeCompatibility(c DrugComponent) float64 {
	if v, ok := sizeScore[c.Properties.Size]; ok {
		return v
	}
	return 0.5
}

func bindingAffinity(components []DrugComponent, pathogen PathogenData) float64 {
	affinity, synergy := 0.0, 0.0
	for _, c := range components {
		switch {
		case c.Category == CategoryNucleicAcidTargeting && pathogen.Type == PathogenVirus:
			affinity += 0.4
		case c.Category == CategoryProteinInhibitor:
			affinity += 0.5
		case c.Category == CategoryDeliverySystem:
			synergy += 0.15
		}

		affinity += sizeCompatibility(c) * 0.2

		if c.Properties.Hydrophobic && pathogen.Type == PathogenVirus {
			affinity += 0.2
		} else if !c.Properties.Hydrophobic && pathogen.Type == PathogenBacteria {
			affinity += 0.15
		}

		if c.Properties.Charged {
			affinity += 0.1
		}
	}
	if len(components) > 1 {
		affinity += synergy
	}
	return math.Min(1, affinity)
}

func selectivity(components []DrugComponent, pathogen PathogenData) float64 {
	s := 0.5
	for _, c := range components {
		if c.Properties.Charged && pathogen.Type == PathogenBacteria {
			s += 0.2
		}
		if c.Properties.Hydrophobic && pathogen.Type == PathogenVirus {
			s += 0.2
		}
	}
	return math.Min(1, s)
}

func resistancePotential(components []DrugComponent, pathogen PathogenData) float64 {
	p := pathogen.MutationRate
	if len(categories(components)) == 1 {
		p += 0.3
	}
	return math.Min(1, p)
}

func pharmacokinetics(components []DrugComponent) (bioavailability, toxicity float64) {
	bioavailability = 0.5
	for _, c := range components {
		switch c.Properties.Size {
		case SizeSmall:
			bioavailability += 0.2
		case SizeLarge:
			bioavailability -= 0.1
			toxicity += 0.1
		}
		if c.Category == CategoryDeliverySystem {
			bioavailability += 0.3
			toxicity -= 0.2
		}
	}
	return clamp01(bioavailability), clamp01(toxicity)
}

func categories(components []DrugComponent) map[Category]struct{} {
	set := make(map[Category]struct{}, len(components))
	for _, c := range components {
		set[c.Category] = struct{}{}
	}
	return set
}
