package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robyistrate/hsc-to-lci/internal/refdata"
	"github.com/robyistrate/hsc-to-lci/internal/simulation"
)

func testConverter() *Converter {
	return &Converter{
		Units: refdata.UnitMap{"kg": "kilogram", "kWh": "kilowatt hour", "m3": "cubic meter"},
		Gases: refdata.GasTable{"natural gas": {Density: 0.735}},
	}
}

func TestConvertGasMassToVolume(t *testing.T) {
	c := testConverter()
	rec, err := c.Convert(simulation.StreamRecord{
		UnitProcess: "Reactor", StreamName: "Natural gas", Amount: 7.35, Unit: "kg",
	})
	require.NoError(t, err)
	assert.Equal(t, UnitCubicMeter, rec.Unit)
	assert.InDelta(t, 10.0, rec.Amount, 1e-9)
}

func TestConvertGasCaseInsensitive(t *testing.T) {
	c := testConverter()
	rec, err := c.Convert(simulation.StreamRecord{StreamName: "NATURAL GAS", Amount: 0.735, Unit: "kg"})
	require.NoError(t, err)
	assert.Equal(t, UnitCubicMeter, rec.Unit)
	assert.InDelta(t, 1.0, rec.Amount, 1e-9)
}

func TestConvertGasUnknownUnit(t *testing.T) {
	c := testConverter()
	_, err := c.Convert(simulation.StreamRecord{StreamName: "Natural gas", Amount: 1, Unit: "litre"})
	assert.Error(t, err)
}

func TestConvertEnergyBasis(t *testing.T) {
	c := testConverter()
	rec, err := c.Convert(simulation.StreamRecord{StreamName: "Heat flow", Amount: 2, Unit: "kWh"})
	require.NoError(t, err)
	assert.Equal(t, UnitMegajoule, rec.Unit)
	assert.InDelta(t, 7.2, rec.Amount, 1e-9)
}

func TestConvertIdempotent(t *testing.T) {
	c := testConverter()

	for _, rec := range []simulation.StreamRecord{
		{StreamName: "Natural gas", Amount: 7.35, Unit: "kg"},
		{StreamName: "Thermal energy flow", Amount: 2, Unit: "kWh"},
		{StreamName: "Water", Amount: 3, Unit: "kg"},
	} {
		once, err := c.Convert(rec)
		require.NoError(t, err)
		twice, err := c.Convert(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "reapplying conversion to %q changed the record", rec.StreamName)
	}
}

func TestConvertPassThrough(t *testing.T) {
	c := testConverter()
	rec, err := c.Convert(simulation.StreamRecord{StreamName: "Limestone", Amount: 4, Unit: "kg"})
	require.NoError(t, err)
	// Unit renamed, amount untouched.
	assert.Equal(t, "kilogram", rec.Unit)
	assert.Equal(t, 4.0, rec.Amount)

	// Unmapped units pass through unchanged.
	rec, err = c.Convert(simulation.StreamRecord{StreamName: "Limestone", Amount: 4, Unit: "bale"})
	require.NoError(t, err)
	assert.Equal(t, "bale", rec.Unit)
}
