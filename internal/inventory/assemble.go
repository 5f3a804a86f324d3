package inventory

import (
	"github.com/robyistrate/hsc-to-lci/internal/classify"
	"github.com/robyistrate/hsc-to-lci/internal/config"
	"github.com/robyistrate/hsc-to-lci/internal/logging"
	"github.com/robyistrate/hsc-to-lci/internal/resolve"
)

// datasetUnit is the reference unit of every generated dataset: each unit
// process produces exactly one unit of itself.
const datasetUnit = "unit"

// Assembler turns classified streams into unit-process datasets plus one
// aggregate activity dataset.
type Assembler struct {
	Meta     *config.Metadata
	Resolver *resolve.Resolver
	Codes    CodeFunc
	Log      *logging.Logger
}

func (a *Assembler) code() string {
	if a.Codes != nil {
		return a.Codes()
	}
	return NewCode()
}

// newDataset creates an empty dataset with the shared configured fields.
// The name suffix distinguishes unit processes; the aggregate activity
// passes an empty suffix.
func (a *Assembler) newDataset(suffix string) *Dataset {
	name := a.Meta.System.ActivityName
	product := a.Meta.System.ReferenceProduct
	if suffix != "" {
		name += ", " + suffix
		product += ", " + suffix
	}
	ds := &Dataset{
		Name:             name,
		ReferenceProduct: product,
		Location:         a.Meta.System.Location,
		ProductionAmount: 1,
		Unit:             datasetUnit,
		Database:         a.Meta.System.Database,
		Code:             a.code(),
		Comment:          a.Meta.System.Comment,
	}
	ds.Exchanges = append(ds.Exchanges, productionExchange(ds))
	return ds
}

// Assemble builds one dataset per distinct unit process in the classified
// stream set, then the aggregate activity dataset drawing one unit from
// each of them. Technosphere streams are resolved against the background
// store at the configured location; unclassified streams are skipped.
func (a *Assembler) Assemble(streams []classify.ClassifiedStream) ([]*Dataset, error) {
	a.Log.Logf("", "format inventories (%d stream records)", len(streams))

	byUnit := map[string][]classify.ClassifiedStream{}
	for _, s := range streams {
		byUnit[s.UnitProcess] = append(byUnit[s.UnitProcess], s)
	}

	var datasets []*Dataset
	for _, up := range classify.UnitProcesses(streams) {
		ds := a.newDataset(up)

		for _, s := range byUnit[up] {
			switch s.LCI {
			case classify.Technosphere:
				resolved, err := a.Resolver.Resolve(a.Meta.System.Location, resolve.Filter{
					Name:    s.Entry.MatchedName,
					Product: s.Entry.ReferenceProduct,
					Unit:    s.Unit,
				})
				if err != nil {
					return nil, err
				}
				ds.Exchanges = append(ds.Exchanges, Exchange{
					Type:     TechnosphereExchange,
					Name:     resolved.Name,
					Product:  resolved.ReferenceProduct,
					Location: resolved.Location,
					Amount:   s.Amount,
					Unit:     s.Unit,
					Database: a.Meta.Project.BackgroundDatabase,
				})

			case classify.Biosphere:
				ds.Exchanges = append(ds.Exchanges, Exchange{
					Type:       BiosphereExchange,
					Name:       s.Entry.MatchedName,
					Amount:     s.Amount,
					Unit:       s.Unit,
					Categories: s.Categories,
					Database:   a.Meta.BiosphereDatabase,
				})

			default:
				a.Log.Logf(up, "stream %q is not mapped, no exchange generated", s.StreamName)
			}
		}

		datasets = append(datasets, ds)
	}

	// The aggregate activity draws exactly one unit from each unit process.
	// References are by name/product/location; codes are filled in by the
	// linking pass.
	activity := a.newDataset("")
	for _, up := range datasets {
		activity.Exchanges = append(activity.Exchanges, Exchange{
			Type:     TechnosphereExchange,
			Name:     up.Name,
			Product:  up.ReferenceProduct,
			Location: up.Location,
			Amount:   1,
			Unit:     up.Unit,
			Database: up.Database,
		})
	}
	datasets = append(datasets, activity)

	return datasets, nil
}
