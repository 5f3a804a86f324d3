// Package inventory builds the linked LCI dataset graph: one dataset per
// unit process, one aggregate activity referencing them all, and a final
// linking pass that resolves every exchange to a concrete identifier.
package inventory

import "github.com/google/uuid"

// ExchangeType tags the role of an exchange within a dataset.
type ExchangeType string

const (
	ProductionExchange   ExchangeType = "production"
	TechnosphereExchange ExchangeType = "technosphere"
	BiosphereExchange    ExchangeType = "biosphere"
)

// Ref identifies a concrete dataset or flow: (database, code).
type Ref struct {
	Database string
	Code     string
}

// Exchange is one flow entry inside a dataset. Technosphere and production
// exchanges carry Product and Location; biosphere exchanges carry
// Categories. Input is nil until the linking pass resolves it.
type Exchange struct {
	Type       ExchangeType
	Name       string
	Product    string
	Location   string
	Amount     float64
	Unit       string
	Categories []string
	Database   string
	Input      *Ref
}

// Dataset is one unit-process record or the aggregate activity record.
// Each dataset exclusively owns its exchange sequence. The code is
// generated once at creation and never changes.
type Dataset struct {
	Name             string
	ReferenceProduct string
	Location         string
	ProductionAmount float64
	Unit             string
	Database         string
	Code             string
	Comment          string
	Exchanges        []Exchange
}

// CodeFunc generates globally-unique dataset codes. The default draws
// random UUIDs; tests inject a deterministic generator.
type CodeFunc func() string

// NewCode is the default CodeFunc.
func NewCode() string { return uuid.NewString() }

// productionExchange builds the self-referential production exchange of a
// dataset: amount = production amount, input = the dataset's own identifier.
func productionExchange(ds *Dataset) Exchange {
	return Exchange{
		Type:     ProductionExchange,
		Name:     ds.Name,
		Product:  ds.ReferenceProduct,
		Location: ds.Location,
		Amount:   ds.ProductionAmount,
		Unit:     ds.Unit,
		Database: ds.Database,
		Input:    &Ref{Database: ds.Database, Code: ds.Code},
	}
}
