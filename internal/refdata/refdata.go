// Package refdata loads the static reference tables consumed by the
// pipeline: the unit-name translation map, the gas density table and the
// user-supplied stream-to-flow mapping.
//
// The unit and gas tables ship with the binary; the flow mapping is read
// from the mapping spreadsheet named in the project metadata.
package refdata

import (
	_ "embed"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed data/ecoinvent_units.yaml
var unitsYAML []byte

//go:embed data/gases_properties.yaml
var gasesYAML []byte

// UnitMap translates source-simulator unit labels into canonical unit names.
type UnitMap map[string]string

// Canonical returns the canonical name for a raw unit label. Unmapped units
// pass through unchanged.
func (m UnitMap) Canonical(unit string) string {
	if v, ok := m[unit]; ok {
		return v
	}
	return unit
}

// LoadUnitMap parses the embedded unit translation table.
func LoadUnitMap() (UnitMap, error) {
	var m UnitMap
	if err := yaml.Unmarshal(unitsYAML, &m); err != nil {
		return nil, fmt.Errorf("parsing unit table: %w", err)
	}
	return m, nil
}

// GasProperties holds the physical properties of one gas-like stream.
type GasProperties struct {
	Density float64 `yaml:"density"` // kg/m3
}

// GasTable indexes gas properties by lower-cased stream name.
type GasTable map[string]GasProperties

// Density returns the density for a stream name, matched case-insensitively.
func (t GasTable) Density(streamName string) (float64, bool) {
	p, ok := t[strings.ToLower(streamName)]
	if !ok {
		return 0, false
	}
	return p.Density, true
}

// LoadGasTable parses the embedded gas property table.
func LoadGasTable() (GasTable, error) {
	raw := map[string]GasProperties{}
	if err := yaml.Unmarshal(gasesYAML, &raw); err != nil {
		return nil, fmt.Errorf("parsing gas table: %w", err)
	}
	t := GasTable{}
	for name, props := range raw {
		t[strings.ToLower(name)] = props
	}
	return t, nil
}
