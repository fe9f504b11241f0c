package tribal

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Write serializes the knowledge base to YAML. Key order follows the
// document struct order, not alphabetical.
func Write(w io.Writer, docs []EntityDocument) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("encode knowledge base: %w", err)
	}
	return enc.Close()
}

// WriteFile writes the knowledge base to path, replacing any existing
// file.
func WriteFile(path string, docs []EntityDocument) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file %s: %w", path, err)
	}
	defer f.Close()

	if err := Write(f, docs); err != nil {
		return err
	}
	return f.Close()
}
