// Package geo answers one question: which regions can serve a dataset
// lookup for a given location, ordered smallest-first. It is a pure lookup
// over a static region hierarchy and knows nothing about geometry.
package geo

import (
	_ "embed"
	"fmt"
	"sort"

	"go.yaml.in/yaml/v3"
)

// Synthetic and global locations appended to every containment sequence.
const (
	RestOfWorld = "RoW"
	Global      = "GLO"
)

//go:embed data/regions.yaml
var regionsYAML []byte

// Hierarchy is a containment relation over a fixed region vocabulary.
type Hierarchy struct {
	regions map[string][]string
	members map[string]map[string]struct{}
}

// New builds a Hierarchy from a region → member-locations table.
func New(regions map[string][]string) *Hierarchy {
	h := &Hierarchy{
		regions: regions,
		members: make(map[string]map[string]struct{}, len(regions)),
	}
	for region, members := range regions {
		set := make(map[string]struct{}, len(members))
		for _, m := range members {
			set[m] = struct{}{}
		}
		h.members[region] = set
	}
	return h
}

// Default loads the embedded region hierarchy.
func Default() (*Hierarchy, error) {
	var regions map[string][]string
	if err := yaml.Unmarshal(regionsYAML, &regions); err != nil {
		return nil, fmt.Errorf("parsing region hierarchy: %w", err)
	}
	return New(regions), nil
}

// LocationsContaining returns the ordered fallback sequence for a location:
// every region containing it, smallest-first, then "RoW" immediately before
// the terminal "GLO". The location itself is not part of the sequence.
func (h *Hierarchy) LocationsContaining(location string) []string {
	var containing []string
	for region, members := range h.members {
		if region == location || region == Global || region == RestOfWorld {
			continue
		}
		if _, ok := members[location]; ok {
			containing = append(containing, region)
		}
	}

	sort.Slice(containing, func(i, j int) bool {
		ni, nj := len(h.regions[containing[i]]), len(h.regions[containing[j]])
		if ni != nj {
			return ni < nj
		}
		return containing[i] < containing[j]
	})

	return append(containing, RestOfWorld, Global)
}
