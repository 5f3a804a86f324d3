// Package simulation extracts normalized stream records from the
// semi-structured stream tables of an HSC Chemistry results workbook.
package simulation

import (
	"fmt"
	"strings"
)

// StreamType marks a record as coming from the input or output stream table.
type StreamType string

const (
	Input  StreamType = "input"
	Output StreamType = "output"
)

// StreamRecord is one observed flow at one unit process.
type StreamRecord struct {
	UnitProcess string
	StreamName  string
	Amount      float64
	Unit        string
	Type        StreamType
}

// OutputPolicy selects the output-stream derivation rules. The two source
// pipeline variants are unified behind this enum.
type OutputPolicy int

const (
	// PolicyEmissionsAndWaste derives all mapped biosphere emissions plus
	// technosphere waste streams from their solids/liquids flow properties.
	PolicyEmissionsAndWaste OutputPolicy = iota

	// PolicyEmissionsOnly derives emissions to air only, ignoring waste
	// streams and non-air biosphere properties.
	PolicyEmissionsOnly
)

// ParseOutputPolicy parses the CLI representation of an output policy.
func ParseOutputPolicy(s string) (OutputPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "emissions+waste", "full":
		return PolicyEmissionsAndWaste, nil
	case "emissions":
		return PolicyEmissionsOnly, nil
	default:
		return 0, fmt.Errorf("invalid output policy %q (expected emissions|emissions+waste)", s)
	}
}

func (p OutputPolicy) String() string {
	if p == PolicyEmissionsOnly {
		return "emissions"
	}
	return "emissions+waste"
}
