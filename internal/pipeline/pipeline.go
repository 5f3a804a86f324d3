// Package pipeline wires the conversion stages into one run: extract,
// convert units, classify, assemble, link. It owns the in-progress
// inventory for the duration of a run; the background stores are loaded
// once and treated as read-only.
package pipeline

import (
	"fmt"

	"github.com/robyistrate/hsc-to-lci/internal/background"
	"github.com/robyistrate/hsc-to-lci/internal/classify"
	"github.com/robyistrate/hsc-to-lci/internal/config"
	"github.com/robyistrate/hsc-to-lci/internal/geo"
	"github.com/robyistrate/hsc-to-lci/internal/inventory"
	"github.com/robyistrate/hsc-to-lci/internal/logging"
	"github.com/robyistrate/hsc-to-lci/internal/refdata"
	"github.com/robyistrate/hsc-to-lci/internal/resolve"
	"github.com/robyistrate/hsc-to-lci/internal/simulation"
	"github.com/robyistrate/hsc-to-lci/internal/units"
)

// Options configures one conversion run.
type Options struct {
	Metadata *config.Metadata
	Policy   simulation.OutputPolicy
	Codes    inventory.CodeFunc // nil for random UUIDs
	Log      *logging.Logger
}

// Pipeline is one conversion run's context: static reference data plus the
// read-only background stores. Not safe for concurrent use; a run is a
// single-threaded batch.
type Pipeline struct {
	meta   *config.Metadata
	flows  refdata.FlowMap
	units  refdata.UnitMap
	gases  refdata.GasTable
	store  *background.Store
	bio    *background.Flows
	geo    *geo.Hierarchy
	policy simulation.OutputPolicy
	codes  inventory.CodeFunc
	log    *logging.Logger
}

// New loads all static inputs. The stream mapping is loaded first so that
// a duplicated mapping row fails the run before any simulation parsing.
func New(opts Options) (*Pipeline, error) {
	m := opts.Metadata

	flows, err := refdata.LoadFlowMap(m.Inputs.MappingFile)
	if err != nil {
		return nil, err
	}
	unitMap, err := refdata.LoadUnitMap()
	if err != nil {
		return nil, err
	}
	gases, err := refdata.LoadGasTable()
	if err != nil {
		return nil, err
	}
	hierarchy, err := geo.Default()
	if err != nil {
		return nil, err
	}

	opts.Log.Logf("", "importing the background database")
	store, err := background.LoadStore(m.Inputs.BackgroundFile, m.Project.BackgroundDatabase)
	if err != nil {
		return nil, fmt.Errorf("loading background database: %w", err)
	}
	opts.Log.Logf("", "importing the biosphere database")
	bio, err := background.LoadFlows(m.Inputs.BiosphereFile)
	if err != nil {
		return nil, fmt.Errorf("loading biosphere database: %w", err)
	}

	return &Pipeline{
		meta:   m,
		flows:  flows,
		units:  unitMap,
		gases:  gases,
		store:  store,
		bio:    bio,
		geo:    hierarchy,
		policy: opts.Policy,
		codes:  opts.Codes,
		log:    opts.Log,
	}, nil
}

// ExtractClassified runs the read-only half of the pipeline: extraction,
// unit conversion and classification. Used by inspect and as the first
// phase of Run.
func (p *Pipeline) ExtractClassified() ([]classify.ClassifiedStream, error) {
	wb, err := simulation.ReadWorkbook(p.meta.Inputs.SimulationFile)
	if err != nil {
		return nil, err
	}

	extractor := &simulation.Extractor{Flows: p.flows, Policy: p.policy, Log: p.log}
	records, err := extractor.Extract(wb)
	if err != nil {
		return nil, err
	}

	p.log.Logf("", "convert process simulation units to background units")
	converter := &units.Converter{Units: p.units, Gases: p.gases}
	records, err = converter.ConvertAll(records)
	if err != nil {
		return nil, err
	}

	p.log.Logf("", "add technosphere/biosphere flow type")
	return classify.Classify(records, p.flows), nil
}

// Run executes the full pipeline and returns the fully-linked inventory.
func (p *Pipeline) Run() ([]*inventory.Dataset, error) {
	streams, err := p.ExtractClassified()
	if err != nil {
		return nil, err
	}

	assembler := &inventory.Assembler{
		Meta: p.meta,
		Resolver: &resolve.Resolver{
			Store: p.store,
			Geo:   p.geo,
			Log:   p.log,
		},
		Codes: p.codes,
		Log:   p.log,
	}
	datasets, err := assembler.Assemble(streams)
	if err != nil {
		return nil, err
	}

	linker := &inventory.Linker{Background: p.store, Flows: p.bio, Log: p.log}
	if err := linker.Link(datasets); err != nil {
		return nil, err
	}
	if unlinked := inventory.Unlinked(datasets); len(unlinked) > 0 {
		return nil, fmt.Errorf("linking left %d exchanges without an input identifier", len(unlinked))
	}

	return datasets, nil
}
