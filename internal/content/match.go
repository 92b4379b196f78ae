package content

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/daniacca/genelab/internal/lab"
)

// OrganismFor maps a level's free-text target organism onto a host profile.
// Keywords contained in the text win; otherwise the closest keyword by edit
// distance is used, and the default profile when nothing is close.
func (c *Catalog) OrganismFor(target string) lab.OrganismData {
	text := strings.ToLower(target)

	for _, o := range c.organisms {
		for _, kw := range o.Keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				return o
			}
		}
	}

	best, bestDist := -1, 0
	for _, word := range strings.FieldsFunc(text, isSeparator) {
		for i, o := range c.organisms {
			for _, kw := range o.Keywords {
				kw = strings.ToLower(kw)
				dist := levenshtein.ComputeDistance(word, kw)
				if dist > distanceLimit(len(kw)) {
					continue
				}
				if best < 0 || dist < bestDist {
					best, bestDist = i, dist
				}
			}
		}
	}
	if best >= 0 {
		return c.organisms[best]
	}
	return c.defaultOrganism
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '(' || r == ')' || r == ',' || r == '-'
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// ClosestPathogenIDs suggests catalog ids near a mistyped one, best first.
func (c *Catalog) ClosestPathogenIDs(id string) []string {
	ids := make([]string, 0, len(c.pathogens))
	for _, p := range c.pathogens {
		ids = append(ids, p.ID)
	}
	return closest(id, ids)
}

// ClosestComponentIDs suggests component ids near a mistyped one.
func (c *Catalog) ClosestComponentIDs(id string) []string {
	ids := make([]string, 0, len(c.components))
	for _, comp := range c.components {
		ids = append(ids, comp.ID)
	}
	return closest(id, ids)
}

func closest(query string, candidates []string) []string {
	type scored struct {
		id   string
		dist int
	}
	q := strings.ToLower(query)
	hits := make([]scored, 0)
	for _, cand := range candidates {
		dist := levenshtein.ComputeDistance(q, strings.ToLower(cand))
		if dist <= distanceLimit(len(cand)) {
			hits = append(hits, scored{id: cand, dist: dist})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist == hits[j].dist {
			return hits[i].id < hits[j].id
		}
		return hits[i].dist < hits[j].dist
	})
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.id)
	}
	return out
}
