package repository

import (
	"fmt"
	"io"

	"github.com/basel-ax/imagegen/internal/domain"
	"gopkg.in/yaml.v3"
)

type exportDocument struct {
	Version string                     `yaml:"version"`
	Count   int                        `yaml:"count"`
	Images  []domain.GeneratedArtifact `yaml:"images"`
}

// ExportYAML writes artifacts as a YAML document
func ExportYAML(w io.Writer, artifacts []domain.GeneratedArtifact) error {
	doc := exportDocument{
		Version: "1.0",
		Count:   len(artifacts),
		Images:  artifacts,
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	return nil
}
