package simulation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/robyistrate/hsc-to-lci/internal/apperr"
	"github.com/robyistrate/hsc-to-lci/internal/logging"
	"github.com/robyistrate/hsc-to-lci/internal/refdata"
)

// Properties recognized as waste carriers on technosphere output streams.
const (
	propMassFlow     = "Mass Flow"
	propSolidsFlow   = "Total Solids Flow"
	propLiquidsFlow  = "Total Liquids Flow"
	biosphereAirOnly = "air"
)

// energyUnits are property units that denote an energy flow. Heat and
// energy emissions bypass mass-flow scaling and keep the property unit.
var energyUnits = map[string]struct{}{
	"kW":            {},
	"kWh":           {},
	"MJ":            {},
	"kilowatt hour": {},
	"megajoule":     {},
}

func isEnergyUnit(u string) bool {
	_, ok := energyUnits[strings.TrimSpace(u)]
	return ok
}

// Extractor turns the raw stream tables into normalized StreamRecords.
type Extractor struct {
	Flows  refdata.FlowMap
	Policy OutputPolicy
	Log    *logging.Logger
}

// Extract parses both stream tables. Records are deduplicated, zero-amount
// records are dropped, and the result is sorted by unit process then stream.
func (e *Extractor) Extract(wb *Workbook) ([]StreamRecord, error) {
	e.Log.Logf("", "extract process simulation data (policy=%s)", e.Policy)

	records, err := e.extractInputs(&wb.Inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := e.extractOutputs(&wb.Outputs)
	if err != nil {
		return nil, err
	}
	records = append(records, outputs...)

	records = dedupe(records)
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].UnitProcess != records[j].UnitProcess {
			return records[i].UnitProcess < records[j].UnitProcess
		}
		return records[i].StreamName < records[j].StreamName
	})
	return records, nil
}

// extractInputs yields one record per input row carrying a stream name.
func (e *Extractor) extractInputs(t *Table) ([]StreamRecord, error) {
	if err := t.requireCols(ColUnitName, ColStreamName, ColAmount, ColUnit); err != nil {
		return nil, err
	}

	unitCol := t.Col(ColUnitName)
	streamCol := t.Col(ColStreamName)
	amountCol := t.Col(ColAmount)
	unitOfCol := t.Col(ColUnit)

	var records []StreamRecord
	for _, row := range t.Rows {
		stream := t.Cell(row, streamCol)
		if stream == "" {
			continue
		}
		unitProcess := t.Cell(row, unitCol)

		amount, err := parseNumber(t.Cell(row, amountCol))
		if err != nil {
			return nil, &apperr.ParseError{UnitProcess: unitProcess, Stream: stream, Value: t.Cell(row, amountCol)}
		}

		records = append(records, StreamRecord{
			UnitProcess: unitProcess,
			StreamName:  stream,
			Amount:      amount,
			Unit:        t.Cell(row, unitOfCol),
			Type:        Input,
		})
	}
	return records, nil
}

// outputStream aggregates the per-stream fields spread over property rows.
type outputStream struct {
	unitProcess string
	name        string
	amount      float64
	unit        string
	massFlow    float64
	hasAmount   bool
	hasMassFlow bool
}

// extractOutputs derives records from output property rows. Stream Name and
// Unit Name are forward-filled: an output stream owns several property rows
// and only the first carries the identifying names.
func (e *Extractor) extractOutputs(t *Table) ([]StreamRecord, error) {
	if err := t.requireCols(ColUnitName, ColStreamName, ColProperty, ColPropertyAmount,
		ColPropertyUnit, ColAmount, ColUnit); err != nil {
		return nil, err
	}

	unitCol := t.Col(ColUnitName)
	streamCol := t.Col(ColStreamName)
	propCol := t.Col(ColProperty)
	propAmountCol := t.Col(ColPropertyAmount)
	propUnitCol := t.Col(ColPropertyUnit)
	amountCol := t.Col(ColAmount)
	unitOfCol := t.Col(ColUnit)

	// First pass: forward-fill identifying names and collect per-stream
	// amount, unit and mass flow.
	type filledRow struct {
		unitProcess, stream string
		prop, propAmount    string
		propUnit            string
	}
	streams := map[string]*outputStream{}
	var rows []filledRow
	var lastUnit, lastStream string

	key := func(unitProcess, stream string) string { return unitProcess + "\x00" + stream }

	for _, row := range t.Rows {
		unitProcess := t.Cell(row, unitCol)
		if unitProcess == "" {
			unitProcess = lastUnit
		}
		lastUnit = unitProcess

		stream := t.Cell(row, streamCol)
		if stream == "" {
			stream = lastStream
		}
		lastStream = stream

		if stream == "" {
			continue
		}

		s, ok := streams[key(unitProcess, stream)]
		if !ok {
			s = &outputStream{unitProcess: unitProcess, name: stream}
			streams[key(unitProcess, stream)] = s
		}
		if v := t.Cell(row, amountCol); v != "" && !s.hasAmount {
			amount, err := parseNumber(v)
			if err != nil {
				return nil, &apperr.ParseError{UnitProcess: unitProcess, Stream: stream, Value: v}
			}
			s.amount = amount
			s.hasAmount = true
		}
		if v := t.Cell(row, unitOfCol); v != "" && s.unit == "" {
			s.unit = v
		}

		prop := t.Cell(row, propCol)
		if prop == "" {
			continue
		}
		propAmount := t.Cell(row, propAmountCol)
		if prop == propMassFlow {
			mf, err := parseNumber(propAmount)
			if err != nil {
				return nil, &apperr.ParseError{UnitProcess: unitProcess, Stream: stream, Value: propAmount}
			}
			s.massFlow = mf
			s.hasMassFlow = true
		}

		rows = append(rows, filledRow{
			unitProcess: unitProcess,
			stream:      stream,
			prop:        prop,
			propAmount:  propAmount,
			propUnit:    t.Cell(row, propUnitCol),
		})
	}

	// Second pass: derive at most one record per property row.
	var records []StreamRecord
	for _, r := range rows {
		s := streams[key(r.unitProcess, r.stream)]

		switch {
		case e.isDerivableEmission(r.prop):
			rec, ok, err := e.deriveEmission(r.unitProcess, r.stream, r.prop, r.propAmount, r.propUnit, s)
			if err != nil {
				return nil, err
			}
			if ok {
				records = append(records, rec)
			}

		case e.Policy == PolicyEmissionsAndWaste && e.Flows.IsTechnosphere(r.stream) &&
			(r.prop == propSolidsFlow || r.prop == propLiquidsFlow):
			rec, ok, err := e.deriveWaste(r.unitProcess, r.stream, r.propAmount, s)
			if err != nil {
				return nil, err
			}
			if ok {
				records = append(records, rec)
			}
		}
	}
	return records, nil
}

// isDerivableEmission reports whether a property row names a biosphere flow
// that the active policy derives.
func (e *Extractor) isDerivableEmission(prop string) bool {
	entry, ok := e.Flows.Lookup(prop)
	if !ok || entry.FlowType != refdata.Biosphere {
		return false
	}
	if e.Policy == PolicyEmissionsOnly {
		return entry.Category == biosphereAirOnly
	}
	return true
}

// deriveEmission computes the LCI amount of a biosphere property row.
// Energy-denominated properties are taken directly; all others are scaled
// by mass-flow ratio times the parent stream amount.
func (e *Extractor) deriveEmission(unitProcess, stream, prop, rawAmount, propUnit string, s *outputStream) (StreamRecord, bool, error) {
	amount, err := parseNumber(rawAmount)
	if err != nil {
		return StreamRecord{}, false, &apperr.ParseError{UnitProcess: unitProcess, Stream: prop, Value: rawAmount}
	}
	if amount == 0 {
		return StreamRecord{}, false, nil
	}

	unit := s.unit
	if isEnergyUnit(propUnit) {
		unit = propUnit
	} else {
		if !s.hasMassFlow || s.massFlow == 0 {
			return StreamRecord{}, false, fmt.Errorf("output stream %q at %q has no mass flow to scale emission %q",
				stream, unitProcess, prop)
		}
		amount = amount / s.massFlow * s.amount
	}
	if amount == 0 {
		return StreamRecord{}, false, nil
	}

	return StreamRecord{
		UnitProcess: unitProcess,
		StreamName:  prop,
		Amount:      amount,
		Unit:        unit,
		Type:        Output,
	}, true, nil
}

// deriveWaste computes the LCI amount of a technosphere waste stream from
// its solids/liquids flow property. Output flows carry a negative sign per
// the target-system convention.
func (e *Extractor) deriveWaste(unitProcess, stream, rawAmount string, s *outputStream) (StreamRecord, bool, error) {
	amount, err := parseNumber(rawAmount)
	if err != nil {
		return StreamRecord{}, false, &apperr.ParseError{UnitProcess: unitProcess, Stream: stream, Value: rawAmount}
	}
	if amount == 0 {
		return StreamRecord{}, false, nil
	}
	if !s.hasMassFlow || s.massFlow == 0 {
		return StreamRecord{}, false, fmt.Errorf("output stream %q at %q has no mass flow to scale its waste amount",
			stream, unitProcess)
	}

	derived := -(amount / s.massFlow * s.amount)
	if derived == 0 {
		return StreamRecord{}, false, nil
	}

	return StreamRecord{
		UnitProcess: unitProcess,
		StreamName:  stream,
		Amount:      derived,
		Unit:        s.unit,
		Type:        Output,
	}, true, nil
}

// parseNumber parses a cell value, normalizing decimal commas first.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

// dedupe removes exact-duplicate records, keeping first occurrences.
func dedupe(records []StreamRecord) []StreamRecord {
	seen := map[StreamRecord]struct{}{}
	out := records[:0]
	for _, r := range records {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
