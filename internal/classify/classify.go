// Package classify tags stream records as technosphere, biosphere or
// unclassified flows using the stream-to-flow mapping.
package classify

import (
	"github.com/robyistrate/hsc-to-lci/internal/refdata"
	"github.com/robyistrate/hsc-to-lci/internal/simulation"
)

// LCIType is the inventory classification of one stream record.
type LCIType string

const (
	Technosphere LCIType = "technosphere"
	Biosphere    LCIType = "biosphere"
	None         LCIType = "none"
)

// ClassifiedStream is a StreamRecord augmented with its LCI classification.
// Unclassified records (LCI == None) produce no exchange but are retained
// for reporting.
type ClassifiedStream struct {
	simulation.StreamRecord
	LCI        LCIType
	Entry      refdata.FlowMapEntry // zero value when unclassified
	Categories []string             // biosphere only; 1–2 elements
}

// Classify looks up each record's stream name in the flow map. Output
// records derived from property rows already carry the property name as
// their stream name, so a single lookup covers both tables.
func Classify(records []simulation.StreamRecord, flows refdata.FlowMap) []ClassifiedStream {
	out := make([]ClassifiedStream, 0, len(records))
	for _, rec := range records {
		cs := ClassifiedStream{StreamRecord: rec, LCI: None}
		if entry, ok := flows.Lookup(rec.StreamName); ok {
			cs.Entry = entry
			switch entry.FlowType {
			case refdata.Technosphere:
				cs.LCI = Technosphere
			case refdata.Biosphere:
				cs.LCI = Biosphere
				cs.Categories = entry.Categories()
			}
		}
		out = append(out, cs)
	}
	return out
}

// UnitProcesses returns the sorted-by-first-appearance distinct unit process
// names in a classified stream set.
func UnitProcesses(streams []ClassifiedStream) []string {
	var names []string
	seen := map[string]struct{}{}
	for _, s := range streams {
		if _, ok := seen[s.UnitProcess]; ok {
			continue
		}
		seen[s.UnitProcess] = struct{}{}
		names = append(names, s.UnitProcess)
	}
	return names
}
