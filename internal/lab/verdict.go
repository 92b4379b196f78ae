package lab

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// SimulationInput is what a verdict is computed from, captured when the
// simulation is started.
type SimulationInput struct {
	Mode       Phase
	Level      LevelData
	HasLevel   bool
	Organism   OrganismData
	Sequence   []Nucleotide
	Components []DrugComponent
	EditType   EditType
}

// VerdictSource decides the outcome of a simulate action. Result is nil when
// the source does not run a detailed simulation.
type VerdictSource interface {
	Verdict(in SimulationInput) (Verdict, *SimulationResult)
}

// DomainVerdicts runs the detailed simulation for the current mode against
// the current level. Its results can complete levels.
type DomainVerdicts struct{}

func (DomainVerdicts) Verdict(in SimulationInput) (Verdict, *SimulationResult) {
	var r SimulationResult
	switch in.Mode {
	case PhaseGeneticModification:
		editType := in.EditType
		if editType == "" {
			editType = EditCRISPR
		}
		r = SimulateGeneticModification(in.Sequence, in.Organism, in.Level.Pathogen, editType)
	case PhaseDrugDiscovery:
		r = SimulateDrugInteraction(in.Components, in.Level.Pathogen, in.Organism)
	default:
		return VerdictFailure, nil
	}
	return r.Verdict(), &r
}

// RandomSource yields floats in [0, 1).
type RandomSource interface {
	Float64() float64
}

type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

type seededRNG struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRNG returns a reproducible source.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// RandomVerdicts is the demo roll: 60% success, the rest split evenly
// between partial and failure. It never completes a level.
type RandomVerdicts struct {
	RNG RandomSource
}

func (v RandomVerdicts) Verdict(SimulationInput) (Verdict, *SimulationResult) {
	rng := v.RNG
	if rng == nil {
		rng = DefaultRNG()
	}
	if rng.Float64() > 0.4 {
		return VerdictSuccess, nil
	}
	if rng.Float64() > 0.5 {
		return VerdictPartial, nil
	}
	return VerdictFailure, nil
}

const (
	VerdictModeDomain = "domain"
	VerdictModeRandom = "random"
)

// NewVerdictSource maps a config value to a source. Unknown modes use the
// domain simulation.
func NewVerdictSource(mode string, rng RandomSource) VerdictSource {
	if mode == VerdictModeRandom {
		return RandomVerdicts{RNG: rng}
	}
	return DomainVerdicts{}
}
