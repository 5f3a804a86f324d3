package inventory

import (
	"github.com/robyistrate/hsc-to-lci/internal/apperr"
	"github.com/robyistrate/hsc-to-lci/internal/background"
	"github.com/robyistrate/hsc-to-lci/internal/logging"
)

// linkKey identifies a technosphere link target.
type linkKey struct {
	name     string
	product  string
	location string
}

// Linker resolves every unlinked exchange to a concrete (database, code)
// identifier. Re-running it on a fully-linked inventory performs no lookups
// and changes nothing.
type Linker struct {
	Background *background.Store
	Flows      *background.Flows
	Log        *logging.Logger

	// Lookups counts index and flow-list searches performed; exercised by
	// the idempotence tests.
	Lookups int

	index map[linkKey][]Ref
}

// Link walks every dataset's every exchange lacking an input identifier.
// Technosphere exchanges must match exactly one entry in the union of the
// assembled datasets and the background store; biosphere exchanges must
// match an environmental flow by name, unit and categories.
func (l *Linker) Link(datasets []*Dataset) error {
	l.Log.Logf("", "linking datasets within the database and to the background and biosphere databases")

	for _, ds := range datasets {
		for i := range ds.Exchanges {
			exc := &ds.Exchanges[i]
			if exc.Input != nil {
				continue
			}

			switch exc.Type {
			case TechnosphereExchange, ProductionExchange:
				refs := l.lookup(datasets, linkKey{exc.Name, exc.Product, exc.Location})
				if len(refs) != 1 {
					return &apperr.LinkError{
						Kind:     "technosphere",
						Name:     exc.Name,
						Product:  exc.Product,
						Location: exc.Location,
						Matches:  len(refs),
					}
				}
				ref := refs[0]
				exc.Input = &ref

			case BiosphereExchange:
				l.Lookups++
				flows := l.Flows.Find(exc.Name, exc.Unit, exc.Categories)
				if len(flows) == 0 {
					return &apperr.LinkError{
						Kind:       "biosphere",
						Name:       exc.Name,
						Unit:       exc.Unit,
						Categories: exc.Categories,
						Matches:    0,
					}
				}
				exc.Input = &Ref{Database: exc.Database, Code: flows[0].Code}
			}
		}
	}
	return nil
}

// lookup searches the technosphere index, building it on first use so a
// fully-linked inventory never pays for it.
func (l *Linker) lookup(datasets []*Dataset, key linkKey) []Ref {
	l.Lookups++
	if l.index == nil {
		l.index = map[linkKey][]Ref{}
		for _, ds := range datasets {
			k := linkKey{ds.Name, ds.ReferenceProduct, ds.Location}
			l.index[k] = append(l.index[k], Ref{Database: ds.Database, Code: ds.Code})
		}
		for _, ds := range l.Background.Entries {
			k := linkKey{ds.Name, ds.ReferenceProduct, ds.Location}
			l.index[k] = append(l.index[k], Ref{Database: ds.Database, Code: ds.Code})
		}
	}
	return l.index[key]
}

// Unlinked returns the exchanges still lacking an input identifier; empty
// after a successful Link pass (full-linkage invariant).
func Unlinked(datasets []*Dataset) []Exchange {
	var out []Exchange
	for _, ds := range datasets {
		for _, exc := range ds.Exchanges {
			if exc.Input == nil {
				out = append(out, exc)
			}
		}
	}
	return out
}
