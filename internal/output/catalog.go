// Package output serializes the catalog and renders it to HTML.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/StinkyLord/psl-catalog-builder/internal/model"
)

// CatalogFile is the name of the serialized catalog inside the output
// directory. Develop mode reads it back.
const CatalogFile = "catalog.json"

// MarshalCatalog renders c as JSON indented by four spaces, projects and
// attributes in catalog order. HTML in values is written unescaped.
func MarshalCatalog(c *model.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to marshal catalog JSON: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// DumpCatalog returns the JSON text of c. When outputPath is set it is also
// written there; "-" writes to stdout.
func DumpCatalog(c *model.Catalog, outputPath string) (string, error) {
	data, err := MarshalCatalog(c)
	if err != nil {
		return "", err
	}

	switch outputPath {
	case "":
	case "-":
		if _, err := os.Stdout.Write(append(data, '\n')); err != nil {
			return "", err
		}
	default:
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			return "", fmt.Errorf("failed to write catalog: %w", err)
		}
	}
	return string(data), nil
}

// ReadCatalog loads a catalog written by DumpCatalog.
func ReadCatalog(path string) (*model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c := model.NewCatalog()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	return c, nil
}
