package forms

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/Health-RI/img2catalog/pkg/errors"
)

// Shape is the expected shape of a resolved field value.
type Shape string

// Supported shapes.
const (
	ShapeString       Shape = "string"
	ShapeStringList   Shape = "string_list"
	ShapeURI          Shape = "uri"
	ShapeURIList      Shape = "uri_list"
	ShapeInteger      Shape = "integer"
	ShapeAgent        Shape = "agent"
	ShapeAgentList    Shape = "agent_list"
	ShapeContactPoint Shape = "contact_point"
	ShapeObject       Shape = "object"
)

// structured reports whether values of this shape may arrive JSON-encoded
// inside a string.
func (s Shape) structured() bool {
	switch s {
	case ShapeStringList, ShapeURIList, ShapeAgent, ShapeAgentList, ShapeContactPoint, ShapeObject:
		return true
	}
	return false
}

func (s Shape) valid() bool {
	switch s {
	case ShapeString, ShapeStringList, ShapeURI, ShapeURIList, ShapeInteger,
		ShapeAgent, ShapeAgentList, ShapeContactPoint, ShapeObject:
		return true
	}
	return false
}

// Field describes one supplemental field.
type Field struct {
	Name        string `yaml:"name"`                  // Name of the resolved field
	Key         string `yaml:"key,omitempty"`         // Dotted path into the form payload, defaults to Name
	Shape       Shape  `yaml:"shape"`                 // Expected value shape
	Fallback    any    `yaml:"fallback,omitempty"`    // Used when the payload has no well-formed value
	Description string `yaml:"description,omitempty"` // Free text, for humans

	fallback Value // Fallback coerced to Shape, set by Definition.Validate
}

// Definition is the ordered list of fields resolved from a form payload.
// It is loaded once per run.
type Definition struct {
	Fields []Field `yaml:"fields"`
}

//go:embed default.yaml
var defaultDefinition []byte

// Default returns the built-in definition covering the optional dataset
// fields of the Health-RI mapping.
func Default() (*Definition, error) {
	return Parse(defaultDefinition, "default.yaml")
}

// LoadFile reads a definition from a YAML file.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigurationError("xnat.form_definition", "cannot read form definition", err)
	}
	return Parse(data, path)
}

// Parse decodes and validates a YAML definition.
func Parse(data []byte, name string) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.NewConfigurationError("xnat.form_definition", "invalid form definition", errors.WrapParse("yaml", name, err))
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks names, shapes and fallbacks. A fallback that does not
// conform to its field shape is a configuration error.
func (d *Definition) Validate() error {
	seen := make(map[string]struct{}, len(d.Fields))
	var errs []error
	for i := range d.Fields {
		f := &d.Fields[i]
		key := fmt.Sprintf("form field %q", f.Name)
		if strings.TrimSpace(f.Name) == "" {
			errs = append(errs, errors.NewConfigurationError(fmt.Sprintf("form field %d", i), "name is required", nil))
			continue
		}
		if _, dup := seen[f.Name]; dup {
			errs = append(errs, errors.NewConfigurationError(key, "defined more than once", nil))
		}
		seen[f.Name] = struct{}{}
		if !f.Shape.valid() {
			errs = append(errs, errors.NewConfigurationError(key, fmt.Sprintf("unknown shape %q", f.Shape), nil))
			continue
		}
		if f.Key == "" {
			f.Key = f.Name
		}
		if f.Fallback != nil {
			v, err := coerce(f.Shape, f.Fallback)
			if err != nil {
				errs = append(errs, errors.NewConfigurationError(key, "fallback does not match shape "+string(f.Shape), err))
				continue
			}
			f.fallback = v
		}
	}
	return errors.Join(errs...)
}

// Field returns the field with the given name.
func (d *Definition) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
