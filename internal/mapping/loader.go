package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrParse is returned for malformed mapping documents.
var ErrParse = errors.New("mapping: parse error")

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// LoadFile loads and parses a YAML mapping file from the given path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return Parse(data)
}

// Load reads a YAML mapping document from r.
func Load(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping: %w", err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Document. Data without a mappings key
// yields an empty document.
func Parse(data []byte) (*Document, error) {
	var f file

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	if f.Mappings == nil {
		return NewDocument(), nil
	}

	return f.Mappings, nil
}

// Marshal serializes a Document to YAML under the mappings key.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer

	err := Save(&buf, doc)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Save writes doc to w as YAML.
func Save(w io.Writer, doc *Document) error {
	if doc == nil {
		doc = NewDocument()
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(file{Mappings: doc})
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	return enc.Close()
}

// WriteFile writes a Document to the given path, creating parent directories.
func WriteFile(doc *Document, path string) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}

	return nil
}
