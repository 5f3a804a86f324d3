// Package resolve finds the best-matching background dataset for a
// technosphere flow request under an exact-location-then-geographic-
// containment fallback search.
package resolve

import (
	"strings"

	"github.com/robyistrate/hsc-to-lci/internal/apperr"
	"github.com/robyistrate/hsc-to-lci/internal/background"
	"github.com/robyistrate/hsc-to-lci/internal/geo"
	"github.com/robyistrate/hsc-to-lci/internal/logging"
)

// Aggregated "market" flows also match their "market group" counterparts.
const (
	marketMarker    = "market for"
	marketWord      = "market"
	marketGroupWord = "market group"
)

// Filter selects background candidates by name, reference product and unit.
type Filter struct {
	Name    string
	Product string
	Unit    string
}

// Resolver searches one background store under one region hierarchy.
// Deterministic for a fixed store snapshot.
type Resolver struct {
	Store *background.Store
	Geo   *geo.Hierarchy
	Log   *logging.Logger
}

// Resolve returns the best-matching dataset for the filter at the target
// location. An exact location match short-circuits; otherwise the
// containment fallback sequence is walked smallest-first. Exhausting the
// sequence is a ResolutionError.
func (r *Resolver) Resolve(location string, f Filter) (background.Dataset, error) {
	candidates := r.gather(f)

	// Exact match first: the fallback sequence is never consulted when the
	// requested location has its own dataset.
	for _, ds := range candidates {
		if ds.Location == location {
			return ds, nil
		}
	}

	for _, loc := range r.Geo.LocationsContaining(location) {
		for _, ds := range candidates {
			if ds.Location == loc {
				r.Log.Logf("", "flow %q: no dataset at %q, using %q", f.Name, location, loc)
				return ds, nil
			}
		}
	}

	return background.Dataset{}, &apperr.ResolutionError{
		Name:     f.Name,
		Product:  f.Product,
		Unit:     f.Unit,
		Location: location,
	}
}

// gather collects candidates matching the filter. Market flows additionally
// gather the market-group name variant; market candidates come first, which
// decides tie-breaks during the location walk.
func (r *Resolver) gather(f Filter) []background.Dataset {
	candidates := r.matching(f.Name, f)
	if strings.Contains(f.Name, marketMarker) {
		groupName := strings.ReplaceAll(f.Name, marketWord, marketGroupWord)
		candidates = append(candidates, r.matching(groupName, f)...)
	}
	return candidates
}

func (r *Resolver) matching(name string, f Filter) []background.Dataset {
	var out []background.Dataset
	for _, ds := range r.Store.Entries {
		if ds.Name == name && ds.ReferenceProduct == f.Product && ds.Unit == f.Unit {
			out = append(out, ds)
		}
	}
	return out
}
