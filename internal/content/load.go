package content

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed data/catalogue.yaml data/catalogue.schema.json
var dataFS embed.FS

const schemaURL = "schema://catalogue.json"

// Format identifies a catalogue encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// document is the on-disk shape of a catalogue.
type document struct {
	Version   string     `json:"version"`
	Bands     []AgeBand  `json:"bands"`
	Questions []Question `json:"questions"`
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error

	defaultOnce sync.Once
	defaultCat  *Catalogue
	defaultErr  error
)

// Default returns the embedded catalogue shipped with the binary.
func Default() (*Catalogue, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open("data/catalogue.yaml")
		if err != nil {
			defaultErr = fmt.Errorf("open embedded catalogue: %w", err)
			return
		}
		defer f.Close()
		defaultCat, defaultErr = Load(f, FormatYAML)
	})
	return defaultCat, defaultErr
}

// LoadFile reads a catalogue from path; the format follows the extension
// (.json, otherwise YAML).
func LoadFile(path string) (*Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalogue: %w", err)
	}
	defer f.Close()

	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	return Load(f, format)
}

// Load decodes, schema-checks and validates a catalogue.
func Load(r io.Reader, format Format) (*Catalogue, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}

	// Normalize YAML to JSON so that both encodings share one schema and
	// one decoding path.
	if format == FormatYAML {
		var generic any
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("parse catalogue YAML: %w", err)
		}
		raw, err = json.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("convert catalogue YAML: %w", err)
		}
	}

	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var doc document
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	return NewCatalogue(doc.Version, doc.Bands, doc.Questions)
}

// validateSchema checks raw JSON against the embedded catalogue schema.
func validateSchema(raw []byte) error {
	schema, err := catalogueSchema()
	if err != nil {
		return err
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid catalogue JSON: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("catalogue schema validation failed: %w", err)
	}
	return nil
}

func catalogueSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		def, err := dataFS.ReadFile("data/catalogue.schema.json")
		if err != nil {
			schemaErr = fmt.Errorf("read catalogue schema: %w", err)
			return
		}
		var parsed any
		if err := json.Unmarshal(def, &parsed); err != nil {
			schemaErr = fmt.Errorf("parse catalogue schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, parsed); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile catalogue schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}
