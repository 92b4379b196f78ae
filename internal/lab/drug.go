package lab

import "fmt"

// Category groups drug components by mechanism of action.
type Category string

const (
	CategoryNucleicAcidTargeting Category = "DNA/RNA Targeting"
	CategoryProteinInhibitor     Category = "Protein Inhibitors"
	CategoryMembraneDisruptor    Category = "Membrane Disruptors"
	CategoryDeliverySystem       Category = "Delivery Systems"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryNucleicAcidTargeting, CategoryProteinInhibitor, CategoryMembraneDisruptor, CategoryDeliverySystem:
		return true
	}
	return false
}

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

type Atom struct {
	Element string `yaml:"element" json:"element"`
	Bonds   int    `yaml:"bonds" json:"bonds"`
}

type Properties struct {
	Hydrophobic bool `yaml:"hydrophobic" json:"hydrophobic"`
	Charged     bool `yaml:"charged" json:"charged"`
	Size        Size `yaml:"size" json:"size"`
}

// DrugComponent is a building block of a drug. Catalog entries have ID ==
// CatalogID; instances added to a drug get a fresh ID each time.
type DrugComponent struct {
	ID         string     `yaml:"id" json:"id"`
	CatalogID  string     `yaml:"-" json:"catalog_id"`
	Name       string     `yaml:"name" json:"name"`
	Category   Category   `yaml:"category" json:"category"`
	Atoms      []Atom     `yaml:"atoms" json:"atoms"`
	Properties Properties `yaml:"properties" json:"properties"`
}

// Instance copies a catalog entry under a new unique id.
func (c DrugComponent) Instance() DrugComponent {
	inst := c
	inst.CatalogID = c.ID
	if c.CatalogID != "" {
		inst.CatalogID = c.CatalogID
	}
	inst.ID = fmt.Sprintf("%s_%s", inst.CatalogID, NewRandomID())
	inst.Atoms = append([]Atom(nil), c.Atoms...)
	return inst
}

// Drug is the composite the player assembles in drug discovery mode.
// Duplicates are allowed and order is preserved.
type Drug struct {
	components    []DrugComponent
	selected      string
	bindingTarget string
}

func NewDrug() *Drug {
	return &Drug{components: make([]DrugComponent, 0)}
}

// DrugView is the read-only form handed to the presentation layer.
type DrugView struct {
	Components        []DrugComponent `json:"components"`
	SelectedComponent string          `json:"selected_component,omitempty"`
	BindingTarget     string          `json:"binding_target,omitempty"`
}

func (d *Drug) View() DrugView {
	return DrugView{
		Components:        d.Components(),
		SelectedComponent: d.selected,
		BindingTarget:     d.bindingTarget,
	}
}

func (d *Drug) Components() []DrugComponent {
	out := make([]DrugComponent, len(d.components))
	copy(out, d.components)
	return out
}

// Len is the number of components in the drug.
func (d *Drug) Len() int { return len(d.components) }

// Add appends a fresh instance of the catalog component and returns it.
func (d *Drug) Add(c DrugComponent) DrugComponent {
	inst := c.Instance()
	d.components = append(d.components, inst)
	return inst
}

// Remove drops the component at index; out of range is a no-op.
func (d *Drug) Remove(index int) {
	if index < 0 || index >= len(d.components) {
		return
	}
	d.components = append(d.components[:index], d.components[index+1:]...)
}

// Select highlights a catalog component in the palette.
func (d *Drug) Select(catalogID string) { d.selected = catalogID }

// SetBindingTarget records the pathogen structure the drug aims at.
func (d *Drug) SetBindingTarget(target string) { d.bindingTarget = target }

func (d *Drug) Selected() string { return d.selected }

func (d *Drug) BindingTarget() string { return d.bindingTarget }

// Clear empties the drug and forgets the selection and binding target.
func (d *Drug) Clear() {
	d.components = make([]DrugComponent, 0)
	d.selected = ""
	d.bindingTarget = ""
}

// CatalogIDs returns the catalog id of each component, in order.
func (d *Drug) CatalogIDs() []string {
	out := make([]string, 0, len(d.components))
	for _, c := range d.components {
		out = append(out, c.CatalogID)
	}
	return out
}

const maxQuickComponents = 5

// QuickDrugVerdict is the fast heuristic shown while assembling: a balanced
// drug with targeting, inhibitor and delivery parts succeeds.
func QuickDrugVerdict(components []DrugComponent) Verdict {
	if len(components) == 0 || len(components) > maxQuickComponents {
		return VerdictFailure
	}
	var targeting, inhibitor, delivery bool
	for _, c := range components {
		switch c.Category {
		case CategoryNucleicAcidTargeting:
			targeting = true
		case CategoryProteinInhibitor:
			inhibitor = true
		case CategoryDeliverySystem:
			delivery = true
		}
	}
	switch {
	case targeting && inhibitor && delivery:
		return VerdictSuccess
	case targeting || inhibitor:
		return VerdictPartial
	}
	return VerdictFailure
}
