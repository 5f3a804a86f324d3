// Package units rewrites stream amounts and units into the canonical units
// of the target inventory system.
package units

import (
	"fmt"
	"strings"

	"github.com/robyistrate/hsc-to-lci/internal/refdata"
	"github.com/robyistrate/hsc-to-lci/internal/simulation"
)

// Canonical unit names involved in conversions.
const (
	UnitKilogram     = "kilogram"
	UnitCubicMeter   = "cubic meter"
	UnitKilowattHour = "kilowatt hour"
	UnitMegajoule    = "megajoule"
)

// KilowattHourToMegajoule is the fixed energy conversion factor.
const KilowattHourToMegajoule = 3.6

// energyStreams are converted from an energy basis in kilowatt hours to
// megajoules. Matched case-insensitively.
var energyStreams = map[string]struct{}{
	"thermal energy flow": {},
	"heat flow":           {},
}

// Converter rewrites StreamRecords in place into canonical units.
// Conversion is idempotent: a record already in canonical units is
// returned unchanged.
type Converter struct {
	Units refdata.UnitMap
	Gases refdata.GasTable
}

// Convert canonicalizes one record. Raw unit labels are translated through
// the unit map first; gas-like streams are moved from a mass to a volume
// basis, energy streams from kilowatt hours to megajoules.
func (c *Converter) Convert(rec simulation.StreamRecord) (simulation.StreamRecord, error) {
	rec.Unit = c.Units.Canonical(rec.Unit)

	lower := strings.ToLower(rec.StreamName)

	if density, ok := c.Gases.Density(rec.StreamName); ok {
		switch rec.Unit {
		case UnitCubicMeter:
			// already on a volume basis
		case UnitKilogram:
			rec.Amount /= density
			rec.Unit = UnitCubicMeter
		default:
			return rec, fmt.Errorf("gas stream %q at %q: no conversion defined from unit %q",
				rec.StreamName, rec.UnitProcess, rec.Unit)
		}
	}

	if _, ok := energyStreams[lower]; ok {
		switch rec.Unit {
		case UnitMegajoule:
			// already on the target energy basis
		case UnitKilowattHour:
			rec.Amount *= KilowattHourToMegajoule
			rec.Unit = UnitMegajoule
		default:
			return rec, fmt.Errorf("energy stream %q at %q: no conversion defined from unit %q",
				rec.StreamName, rec.UnitProcess, rec.Unit)
		}
	}

	return rec, nil
}

// ConvertAll canonicalizes a whole record sequence.
func (c *Converter) ConvertAll(records []simulation.StreamRecord) ([]simulation.StreamRecord, error) {
	out := make([]simulation.StreamRecord, 0, len(records))
	for _, rec := range records {
		converted, err := c.Convert(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}
