package content

import "github.com/daniacca/genelab/internal/lab"

// Validate reports every problem in the loaded tables at once.
func (c *Catalog) Validate(defaultOrganism string) error {
	verr := &lab.ValidationError{}

	for _, mode := range []lab.Phase{lab.PhaseGeneticModification, lab.PhaseDrugDiscovery} {
		levels := c.levels[mode]
		if len(levels) == 0 {
			verr.Addf("%s: level table is empty", mode)
		}
		for i, l := range levels {
			if l.ID != i+1 {
				verr.Addf("%s: level at index %d has id %d, want %d", mode, i, l.ID, i+1)
			}
			lab.ValidateLevel(mode, l, verr)
		}
	}

	seen := make(map[string]bool)
	for _, p := range c.pathogens {
		if p.ID == "" {
			verr.Add("pathogen '" + p.Name + "': id is required")
		} else if seen[p.ID] {
			verr.Add("duplicate pathogen id: " + p.ID)
		}
		seen[p.ID] = true
		lab.ValidatePathogen(p, verr)
	}

	types := make(map[string]bool)
	for _, o := range c.organisms {
		if o.Type == "" {
			verr.Add("organism '" + o.Name + "': type is required")
		} else if types[o.Type] {
			verr.Add("duplicate organism type: " + o.Type)
		}
		types[o.Type] = true
		if o.ImmuneSystem.Adaptability < 0 || o.ImmuneSystem.Adaptability > 1 {
			verr.Addf("organism '%s': adaptability %.2f outside [0,1]", o.Type, o.ImmuneSystem.Adaptability)
		}
	}
	if !types[defaultOrganism] {
		verr.Add("default organism '" + defaultOrganism + "' is not defined")
	}

	ids := make(map[string]bool)
	for _, comp := range c.components {
		if comp.ID == "" {
			verr.Add("component '" + comp.Name + "': id is required")
		} else if ids[comp.ID] {
			verr.Add("duplicate component id: " + comp.ID)
		}
		ids[comp.ID] = true
		if !comp.Category.Valid() {
			verr.Add("component '" + comp.ID + "': invalid category '" + string(comp.Category) + "'")
		}
		switch comp.Properties.Size {
		case lab.SizeSmall, lab.SizeMedium, lab.SizeLarge:
		default:
			verr.Add("component '" + comp.ID + "': invalid size '" + string(comp.Properties.Size) + "'")
		}
	}

	return verr.Err()
}
