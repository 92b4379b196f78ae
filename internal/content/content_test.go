package content

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/daniacca/genelab/internal/lab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	for _, mode := range []lab.Phase{lab.PhaseGeneticModification, lab.PhaseDrugDiscovery} {
		assert.Equal(t, 10, c.LevelCount(mode), mode)
		for i, l := range c.Levels(mode) {
			assert.Equal(t, i+1, l.ID)
		}
	}
	assert.Zero(t, c.LevelCount(lab.PhaseTutorial))

	l, ok := c.LevelData(lab.PhaseGeneticModification, 1)
	require.True(t, ok)
	assert.Equal(t, "Simple Bacterial Resistance", l.Name)
	assert.Equal(t, "ATGCGATC", l.TargetSequence)
	assert.Contains(t, l.Pathogen.VulnerabilityTargets(), "GCGATC")

	_, ok = c.LevelData(lab.PhaseGeneticModification, 0)
	assert.False(t, ok)
	_, ok = c.LevelData(lab.PhaseDrugDiscovery, 11)
	assert.False(t, ok)

	next, ok := c.NextLevel(lab.PhaseDrugDiscovery, 1)
	require.True(t, ok)
	assert.Equal(t, 2, next.ID)
	_, ok = c.NextLevel(lab.PhaseDrugDiscovery, 10)
	assert.False(t, ok)
}

func TestCatalog_Pathogens(t *testing.T) {
	c := MustLoad()

	assert.Len(t, c.Pathogens(), 7)
	assert.Len(t, c.PathogensByType(lab.PathogenVirus), 3)
	assert.Len(t, c.PathogensByType(lab.PathogenFungus), 1)

	easy := c.PathogensByDifficulty(lab.DifficultyEasy)
	ids := make([]string, 0, len(easy))
	for _, p := range easy {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"rhinovirus", "ecoli"}, ids)

	hiv, ok := c.PathogenByID("hiv_1")
	require.True(t, ok)
	assert.Equal(t, "HIV-1", hiv.Name)

	assert.Equal(t, []string{"reverse transcriptase"}, c.FindOptimalTargets(hiv))
	assert.Zero(t, c.CalculatePathogenResistance(hiv, nil))
	// two pol mechanisms, 0.9 + 0.7, capped
	assert.Equal(t, 1.0, c.CalculatePathogenResistance(hiv, []string{"POL blocker"}))

	_, ok = c.PathogenByID("smallpox")
	assert.False(t, ok)
}

func TestCatalog_Components(t *testing.T) {
	c := MustLoad()

	assert.Len(t, c.Components(), 6)
	comp, ok := c.Component("lipid_carrier")
	require.True(t, ok)
	assert.Equal(t, lab.CategoryDeliverySystem, comp.Category)

	_, ok = c.Component("unobtainium")
	assert.False(t, ok)
}

func TestCatalog_OrganismFor(t *testing.T) {
	c := MustLoad()

	tests := []struct {
		target string
		want   string
	}{
		{"E. coli bacteria", "bacteria"},
		{"Saccharomyces cerevisiae (yeast)", "yeast"},
		{"Nicotiana tabacum (tobacco plant)", "plant"},
		{"Homo sapiens", "human"},
		{"Engineered microorganism", "bacteria"},
		{"Bos taurus (cattle)", "livestock"},
		{"Drosofila", "fruit_fly"},
		{"Quartz crystal", "universal"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, c.OrganismFor(tt.target).Type)
		})
	}
}

func TestCatalog_ClosestIDs(t *testing.T) {
	c := MustLoad()

	got := c.ClosestPathogenIDs("ecolli")
	require.NotEmpty(t, got)
	assert.Equal(t, "ecoli", got[0])

	assert.Equal(t, []string{"enzyme_inhibitor"}, c.ClosestComponentIDs("enzyme_inhibiter"))
	assert.Empty(t, c.ClosestComponentIDs("something else entirely"))
}

func TestLoadFS_MissingFile(t *testing.T) {
	_, err := LoadFS(fstest.MapFS{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read levels.yaml")
}

func TestLoadFS_ParseError(t *testing.T) {
	fsys := fstest.MapFS{levelsFile: {Data: []byte("genetic_modification: [")}}
	_, err := LoadFS(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse levels.yaml")
}

func TestLoadFS_ReportsEveryIssue(t *testing.T) {
	fsys := fstest.MapFS{
		levelsFile: {Data: []byte(`
genetic_modification:
- id: 2
  name: Misnumbered
  difficulty: easy
  target_organism: yeast
  pathogen: {name: p, type: virus, mutation_rate: 0.1}
  success_criteria: {min_effectiveness: 0.5, max_side_effects: 1}
`)},
		pathogensFile: {Data: []byte(`
pathogens:
- {id: dup, name: A, type: virus, mutation_rate: 0.1}
- {id: dup, name: B, type: virus, mutation_rate: 0.1}
`)},
		organismsFile: {Data: []byte(`
default: nowhere
organisms:
- {type: yeast, name: Yeast, immune_system: {strength: 0.3, adaptability: 0.3}}
`)},
		componentsFile: {Data: []byte(`
components:
- {id: c1, name: C1, category: magic, properties: {size: huge}}
`)},
	}

	_, err := LoadFS(fsys)
	require.Error(t, err)

	var verr *lab.ValidationError
	require.ErrorAs(t, err, &verr)
	joined := strings.Join(verr.Issues, "\n")
	for _, want := range []string{
		"level at index 0 has id 2, want 1",
		"drug_discovery: level table is empty",
		"duplicate pathogen id: dup",
		"default organism 'nowhere' is not defined",
		"invalid category 'magic'",
		"invalid size 'huge'",
	} {
		assert.Contains(t, joined, want)
	}
}

func TestLoadDir(t *testing.T) {
	c, err := LoadDir("data")
	require.NoError(t, err)
	assert.Equal(t, 10, c.LevelCount(lab.PhaseGeneticModification))

	_, err = LoadDir(t.TempDir())
	assert.Error(t, err)
}
