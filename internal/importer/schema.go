package importer

import (
	"encoding/json"
	"fmt"
	"os"
)

// ImportSchema is the top-level JSON structure for task import.
type ImportSchema struct {
	Timelines []TimelineImport `json:"timelines,omitempty"`
	Tasks     []TaskImport     `json:"tasks"`
}

// TimelineImport declares a timeline to create. Tasks refer to it by Ref.
type TimelineImport struct {
	Ref  string `json:"ref"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// TaskImport defines a task in the import file. Timeline is a declared
// timeline ref, an existing timeline name, or a unit ("day", "week",
// "month") held by exactly one existing timeline. Date picks the block.
type TaskImport struct {
	Title    string `json:"title"`
	Timeline string `json:"timeline"`
	Date     string `json:"date"`
	Notes    string `json:"notes,omitempty"`
	Status   string `json:"status,omitempty"`
	Repeat   string `json:"repeat,omitempty"`
}

// LoadImportSchema reads and parses a task import JSON file.
func LoadImportSchema(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImportSchema(data)
}

// ParseImportSchema parses task import JSON.
func ParseImportSchema(data []byte) (*ImportSchema, error) {
	var schema ImportSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
