package lab

import (
	"fmt"
	"strings"
)

// ValidationError collects every problem found in a content table so a bad
// file is reported in one pass instead of one issue at a time.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid content: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "content validation errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) Addf(format string, v ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, v...))
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// Err returns the collected issues as an error, or nil when there are none.
func (e *ValidationError) Err() error {
	if e.HasIssues() {
		return e
	}
	return nil
}

// ValidatePathogen checks the fields the simulation engine depends on.
func ValidatePathogen(p PathogenData, verr *ValidationError) {
	prefix := "pathogen '" + p.ID + "'"
	if p.ID == "" {
		prefix = "pathogen '" + p.Name + "'"
	}
	if p.Name == "" {
		verr.Add(prefix + ": name is required")
	}
	if !p.Type.Valid() {
		verr.Add(prefix + ": invalid type '" + string(p.Type) + "'")
	}
	if p.MutationRate < 0 || p.MutationRate > 1 {
		verr.Addf("%s: mutation rate %.3f outside [0,1]", prefix, p.MutationRate)
	}
	for i, rm := range p.ResistanceMechanisms {
		if rm.Effectiveness < 0 || rm.Effectiveness > 1 {
			verr.Addf("%s: resistance mechanism %d effectiveness %.2f outside [0,1]", prefix, i, rm.Effectiveness)
		}
	}
	for i, v := range p.Vulnerabilities {
		if v.Target == "" {
			verr.Addf("%s: vulnerability %d has no target", prefix, i)
		}
	}
}

// ValidateLevel checks a single level entry of the given mode table.
func ValidateLevel(mode Phase, l LevelData, verr *ValidationError) {
	prefix := fmt.Sprintf("%s level %d", mode, l.ID)
	if l.Name == "" {
		verr.Add(prefix + ": name is required")
	}
	if !l.Difficulty.Valid() {
		verr.Add(prefix + ": invalid difficulty '" + string(l.Difficulty) + "'")
	}
	if l.TargetOrganism == "" {
		verr.Add(prefix + ": target organism is required")
	}
	if l.SuccessCriteria.MinEffectiveness < 0 || l.SuccessCriteria.MinEffectiveness > 1 {
		verr.Addf("%s: min effectiveness %.2f outside [0,1]", prefix, l.SuccessCriteria.MinEffectiveness)
	}
	if l.SuccessCriteria.MaxSideEffects < 0 {
		verr.Add(prefix + ": max side effects cannot be negative")
	}
	if l.TargetSequence != "" {
		if _, err := ParseSequence(l.TargetSequence); err != nil {
			verr.Add(prefix + ": " + err.Error())
		}
	}
	for _, id := range l.RequiredComponents {
		if id == "" {
			verr.Add(prefix + ": empty required component id")
		}
	}
	ValidatePathogen(l.Pathogen, verr)
}
