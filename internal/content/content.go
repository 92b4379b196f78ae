// Package content loads the static game tables: levels for both modes,
// pathogens, host organism profiles and the drug component catalog.
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/daniacca/genelab/internal/lab"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

const (
	levelsFile     = "levels.yaml"
	pathogensFile  = "pathogens.yaml"
	organismsFile  = "organisms.yaml"
	componentsFile = "components.yaml"
)

type levelsDoc struct {
	GeneticModification []lab.LevelData `yaml:"genetic_modification"`
	DrugDiscovery       []lab.LevelData `yaml:"drug_discovery"`
}

type pathogensDoc struct {
	Pathogens []lab.PathogenData `yaml:"pathogens"`
}

type organismsDoc struct {
	Default   string             `yaml:"default"`
	Organisms []lab.OrganismData `yaml:"organisms"`
}

type componentsDoc struct {
	Components []lab.DrugComponent `yaml:"components"`
}

// Catalog is the immutable set of tables. All lookups are pure.
type Catalog struct {
	levels          map[lab.Phase][]lab.LevelData
	pathogens       []lab.PathogenData
	organisms       []lab.OrganismData
	defaultOrganism lab.OrganismData
	components      []lab.DrugComponent
}

// Load reads the tables compiled into the binary.
func Load() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// MustLoad is Load for callers that cannot continue without content.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(fmt.Sprintf("content: %v", err))
	}
	return c
}

// LoadDir reads the four table files from a directory on disk.
func LoadDir(dir string) (*Catalog, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads and validates the tables from fsys.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	var levels levelsDoc
	if err := readYAML(fsys, levelsFile, &levels); err != nil {
		return nil, err
	}
	var pathogens pathogensDoc
	if err := readYAML(fsys, pathogensFile, &pathogens); err != nil {
		return nil, err
	}
	var organisms organismsDoc
	if err := readYAML(fsys, organismsFile, &organisms); err != nil {
		return nil, err
	}
	var components componentsDoc
	if err := readYAML(fsys, componentsFile, &components); err != nil {
		return nil, err
	}

	c := &Catalog{
		levels: map[lab.Phase][]lab.LevelData{
			lab.PhaseGeneticModification: levels.GeneticModification,
			lab.PhaseDrugDiscovery:       levels.DrugDiscovery,
		},
		pathogens:  pathogens.Pathogens,
		organisms:  organisms.Organisms,
		components: components.Components,
	}
	for _, o := range c.organisms {
		if o.Type == organisms.Default {
			c.defaultOrganism = o
		}
	}

	if err := c.Validate(organisms.Default); err != nil {
		return nil, err
	}
	return c, nil
}

func readYAML(fsys fs.FS, name string, out any) error {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// LevelData returns level n (1-based) of a mode's table.
func (c *Catalog) LevelData(mode lab.Phase, n int) (lab.LevelData, bool) {
	levels := c.levels[mode]
	if n < 1 || n > len(levels) {
		return lab.LevelData{}, false
	}
	return levels[n-1], true
}

// LevelCount is the size of a mode's table, 0 for modes without levels.
func (c *Catalog) LevelCount(mode lab.Phase) int {
	return len(c.levels[mode])
}

func (c *Catalog) Levels(mode lab.Phase) []lab.LevelData {
	return append([]lab.LevelData(nil), c.levels[mode]...)
}

func (c *Catalog) LevelsByDifficulty(mode lab.Phase, d lab.Difficulty) []lab.LevelData {
	out := make([]lab.LevelData, 0)
	for _, l := range c.levels[mode] {
		if l.Difficulty == d {
			out = append(out, l)
		}
	}
	return out
}

// NextLevel returns the level after n, if there is one.
func (c *Catalog) NextLevel(mode lab.Phase, n int) (lab.LevelData, bool) {
	return c.LevelData(mode, n+1)
}

func (c *Catalog) Pathogens() []lab.PathogenData {
	return append([]lab.PathogenData(nil), c.pathogens...)
}

func (c *Catalog) PathogenByID(id string) (lab.PathogenData, bool) {
	for _, p := range c.pathogens {
		if p.ID == id {
			return p, true
		}
	}
	return lab.PathogenData{}, false
}

func (c *Catalog) PathogensByType(t lab.PathogenType) []lab.PathogenData {
	out := make([]lab.PathogenData, 0)
	for _, p := range c.pathogens {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) PathogensByDifficulty(d lab.Difficulty) []lab.PathogenData {
	out := make([]lab.PathogenData, 0)
	for _, p := range c.pathogens {
		if p.Difficulty == d {
			out = append(out, p)
		}
	}
	return out
}

// CalculatePathogenResistance is how strongly the pathogen resists the named
// interventions, in [0,1].
func (c *Catalog) CalculatePathogenResistance(p lab.PathogenData, interventions []string) float64 {
	return p.ResistanceTo(interventions)
}

func (c *Catalog) FindOptimalTargets(p lab.PathogenData) []string {
	return p.OptimalTargets()
}

func (c *Catalog) Components() []lab.DrugComponent {
	return append([]lab.DrugComponent(nil), c.components...)
}

func (c *Catalog) Component(id string) (lab.DrugComponent, bool) {
	for _, comp := range c.components {
		if comp.ID == id {
			return comp, true
		}
	}
	return lab.DrugComponent{}, false
}

func (c *Catalog) Organisms() []lab.OrganismData {
	return append([]lab.OrganismData(nil), c.organisms...)
}
