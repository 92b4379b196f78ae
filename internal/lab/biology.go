package lab

import "strings"

// PathogenType is the broad class of a pathogen. It drives the binding and
// selectivity rules of the drug simulation.
type PathogenType string

const (
	PathogenVirus    PathogenType = "virus"
	PathogenBacteria PathogenType = "bacteria"
	PathogenParasite PathogenType = "parasite"
	PathogenFungus   PathogenType = "fungus"
)

func (t PathogenType) Valid() bool {
	switch t {
	case PathogenVirus, PathogenBacteria, PathogenParasite, PathogenFungus:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Gene is a named region of a pathogen genome, positions are inclusive.
type Gene struct {
	Name     string `yaml:"name" json:"name"`
	Start    int    `yaml:"start" json:"start"`
	End      int    `yaml:"end" json:"end"`
	Function string `yaml:"function" json:"function"`
}

type Genome struct {
	Sequence string `yaml:"sequence" json:"sequence"`
	Genes    []Gene `yaml:"genes,omitempty" json:"genes,omitempty"`
}

type ResistanceMechanism struct {
	Type          string   `yaml:"type" json:"type"`
	Mechanism     string   `yaml:"mechanism" json:"mechanism"`
	Effectiveness float64  `yaml:"effectiveness" json:"effectiveness"`
	Genes         []string `yaml:"genes,omitempty" json:"genes,omitempty"`
}

type Vulnerability struct {
	Target      string     `yaml:"target" json:"target"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	DrugClasses []string   `yaml:"drug_classes,omitempty" json:"drug_classes,omitempty"`
	Difficulty  Difficulty `yaml:"difficulty,omitempty" json:"difficulty,omitempty"`
}

// PathogenData is the immutable description of a pathogen a level is played
// against.
type PathogenData struct {
	ID                   string                `yaml:"id" json:"id"`
	Name                 string                `yaml:"name" json:"name"`
	ScientificName       string                `yaml:"scientific_name,omitempty" json:"scientific_name,omitempty"`
	Type                 PathogenType          `yaml:"type" json:"type"`
	Description          string                `yaml:"description,omitempty" json:"description,omitempty"`
	Difficulty           Difficulty            `yaml:"difficulty,omitempty" json:"difficulty,omitempty"`
	Genome               Genome                `yaml:"genome" json:"genome"`
	DrugTargets          []string              `yaml:"drug_targets,omitempty" json:"drug_targets,omitempty"`
	ResistanceMechanisms []ResistanceMechanism `yaml:"resistance_mechanisms,omitempty" json:"resistance_mechanisms,omitempty"`
	Vulnerabilities      []Vulnerability       `yaml:"vulnerabilities,omitempty" json:"vulnerabilities,omitempty"`
	ReproductionRate     float64               `yaml:"reproduction_rate,omitempty" json:"reproduction_rate,omitempty"`
	MutationRate         float64               `yaml:"mutation_rate" json:"mutation_rate"`
	Severity             string                `yaml:"severity,omitempty" json:"severity,omitempty"`
}

// VulnerabilityTargets returns the target strings of all vulnerabilities.
func (p PathogenData) VulnerabilityTargets() []string {
	out := make([]string, 0, len(p.Vulnerabilities))
	for _, v := range p.Vulnerabilities {
		out = append(out, v.Target)
	}
	return out
}

// ResistanceTo sums the effectiveness of every resistance mechanism whose
// genes are named by one of the interventions (case-insensitive substring),
// capped at 1.
func (p PathogenData) ResistanceTo(interventions []string) float64 {
	total := 0.0
	for _, rm := range p.ResistanceMechanisms {
		if mechanismHit(rm, interventions) {
			total += rm.Effectiveness
		}
	}
	if total > 1 {
		return 1
	}
	return total
}

func mechanismHit(rm ResistanceMechanism, interventions []string) bool {
	for _, drug := range interventions {
		d := strings.ToLower(drug)
		for _, g := range rm.Genes {
			if g != "" && strings.Contains(d, strings.ToLower(g)) {
				return true
			}
		}
	}
	return false
}

// OptimalTargets lists the vulnerabilities worth aiming for first: the easy
// and medium ones.
func (p PathogenData) OptimalTargets() []string {
	out := make([]string, 0)
	for _, v := range p.Vulnerabilities {
		if v.Difficulty == DifficultyEasy || v.Difficulty == DifficultyMedium {
			out = append(out, v.Target)
		}
	}
	return out
}

type ImmuneSystem struct {
	Strength     float64 `yaml:"strength" json:"strength"`
	Adaptability float64 `yaml:"adaptability" json:"adaptability"`
	Memory       bool    `yaml:"memory" json:"memory"`
}

// OrganismData describes the host organism being modified or treated.
type OrganismData struct {
	Type          string       `yaml:"type" json:"type"`
	Name          string       `yaml:"name" json:"name"`
	Keywords      []string     `yaml:"keywords,omitempty" json:"-"`
	ImmuneSystem  ImmuneSystem `yaml:"immune_system" json:"immune_system"`
	CellTypes     []string     `yaml:"cell_types,omitempty" json:"cell_types,omitempty"`
	CriticalGenes []string     `yaml:"critical_genes,omitempty" json:"critical_genes,omitempty"`
}

type SuccessCriteria struct {
	MinEffectiveness float64 `yaml:"min_effectiveness" json:"min_effectiveness"`
	MaxSideEffects   int     `yaml:"max_side_effects" json:"max_side_effects"`
}

// LevelData is one entry of a mode's level table. Levels are numbered from 1.
type LevelData struct {
	ID                 int             `yaml:"id" json:"id"`
	Name               string          `yaml:"name" json:"name"`
	Description        string          `yaml:"description" json:"description"`
	Objective          string          `yaml:"objective" json:"objective"`
	Difficulty         Difficulty      `yaml:"difficulty" json:"difficulty"`
	TargetOrganism     string          `yaml:"target_organism" json:"target_organism"`
	Pathogen           PathogenData    `yaml:"pathogen" json:"pathogen"`
	Hints              []string        `yaml:"hints,omitempty" json:"hints,omitempty"`
	TargetSequence     string          `yaml:"target_sequence,omitempty" json:"target_sequence,omitempty"`
	RequiredComponents []string        `yaml:"required_components,omitempty" json:"required_components,omitempty"`
	SuccessCriteria    SuccessCriteria `yaml:"success_criteria" json:"success_criteria"`
}

// Meets reports whether a simulation result clears the level's bar.
func (l LevelData) Meets(r SimulationResult) bool {
	return r.Effectiveness >= l.SuccessCriteria.MinEffectiveness &&
		len(r.SideEffects) <= l.SuccessCriteria.MaxSideEffects
}
