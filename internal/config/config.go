// Package config loads and validates the project metadata file that drives
// one conversion run.
package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/robyistrate/hsc-to-lci/internal/apperr"
)

// DefaultBiosphereDatabase is the name of the environmental-flow reference
// database when the metadata file does not override it.
const DefaultBiosphereDatabase = "biosphere3"

// SystemDescription names the inventory database to create and the fields
// shared by every generated dataset.
type SystemDescription struct {
	Database         string `yaml:"database"`
	ActivityName     string `yaml:"activity name"`
	ReferenceProduct string `yaml:"reference product"`
	Location         string `yaml:"location"`
	Comment          string `yaml:"comment"`
}

// Project identifies the target LCA project and the background database
// inside it.
type Project struct {
	Name               string `yaml:"project name"`
	BackgroundDatabase string `yaml:"ecoinvent database"`
}

// InputFiles holds the paths to every spreadsheet a run reads.
type InputFiles struct {
	SimulationFile string `yaml:"simulation file"`
	MappingFile    string `yaml:"mapping file"`
	BackgroundFile string `yaml:"background file"`
	BiosphereFile  string `yaml:"biosphere file"`
}

// Metadata is the parsed project metadata file.
type Metadata struct {
	System            SystemDescription `yaml:"system description"`
	Project           Project           `yaml:"brightway project"`
	Inputs            InputFiles        `yaml:"input files"`
	BiosphereDatabase string            `yaml:"biosphere database"`
}

// Load reads and validates a metadata YAML file. Missing required keys are
// reported as a ConfigError naming the key.
func Load(path string) (*Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata file: %w", err)
	}

	var m Metadata
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, &apperr.ConfigError{Key: path, Message: err.Error()}
	}

	if m.BiosphereDatabase == "" {
		m.BiosphereDatabase = DefaultBiosphereDatabase
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Metadata) validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"system description.database", m.System.Database},
		{"system description.activity name", m.System.ActivityName},
		{"system description.reference product", m.System.ReferenceProduct},
		{"system description.location", m.System.Location},
		{"brightway project.project name", m.Project.Name},
		{"brightway project.ecoinvent database", m.Project.BackgroundDatabase},
		{"input files.simulation file", m.Inputs.SimulationFile},
		{"input files.mapping file", m.Inputs.MappingFile},
		{"input files.background file", m.Inputs.BackgroundFile},
		{"input files.biosphere file", m.Inputs.BiosphereFile},
	}
	for _, r := range required {
		if r.value == "" {
			return apperr.Config(r.key, "required key is missing or empty")
		}
	}
	return nil
}
