package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// Document is the human-portable import/export shape of a workflow, used for
// backup and sharing.
type Document struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Steps       []Step `json:"steps"`
}

// ParseDocument decodes and validates an exported workflow document. A
// malformed document is rejected whole; nothing is partially imported.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("workflow document is not valid JSON: %w", err)
	}
	if err := validateDocument(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func validateDocument(doc *Document) error {
	if doc.Name == "" {
		return fmt.Errorf("workflow document is missing a name")
	}
	if doc.Steps == nil {
		return fmt.Errorf("workflow document is missing a steps field")
	}

	seen := make(map[string]bool, len(doc.Steps))
	for i, step := range doc.Steps {
		if step.ID == "" {
			return fmt.Errorf("step %d is missing an id", i)
		}
		if step.Type == "" {
			return fmt.Errorf("step %q is missing a type", step.ID)
		}
		if seen[step.ID] {
			return fmt.Errorf("duplicate step id %q", step.ID)
		}
		seen[step.ID] = true
	}
	return nil
}

// ImportFile reads and validates a workflow document from the filesystem.
func ImportFile(fs afero.Fs, path string) (*Document, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read workflow document: %w", err)
	}
	return ParseDocument(data)
}

// ExportFile writes a workflow as a portable document.
func ExportFile(fs afero.Fs, path string, wf *Workflow) error {
	doc := Document{Name: wf.Name, Description: wf.Description, Steps: wf.Steps}
	if doc.Steps == nil {
		doc.Steps = []Step{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode workflow document: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write workflow document: %w", err)
	}
	return nil
}
