package parser

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/tenet_schema.json
var tenetSchema string

//go:embed schemas/binding_schema.json
var bindingSchema string

// compiledSchema caches one compiled schema; compile errors are sticky.
type compiledSchema struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

var (
	tenetCompiled   compiledSchema
	bindingCompiled compiledSchema
)

// ValidateTenetFrontmatter validates tenet front matter against the embedded
// tenet schema. The returned error is the raw validation error; callers
// translate it into findings.
func ValidateTenetFrontmatter(frontmatter map[string]any) error {
	return validateWithSchema(frontmatter, tenetSchema, &tenetCompiled)
}

// ValidateBindingFrontmatter validates binding front matter against the
// embedded binding schema.
func ValidateBindingFrontmatter(frontmatter map[string]any) error {
	return validateWithSchema(frontmatter, bindingSchema, &bindingCompiled)
}

func (c *compiledSchema) get(schemaJSON string) (*jsonschema.Schema, error) {
	c.once.Do(func() {
		compiler := jsonschema.NewCompiler()

		// Parse the schema JSON first
		var schemaDoc any
		if err := json.Unmarshal([]byte(schemaJSON), &schemaDoc); err != nil {
			c.err = fmt.Errorf("failed to parse schema JSON: %w", err)
			return
		}

		// Add the schema as a resource with a temporary URL
		schemaURL := "http://contoso.com/schema.json"
		if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
			c.err = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}

		c.schema, c.err = compiler.Compile(schemaURL)
	})
	return c.schema, c.err
}

// validateWithSchema validates front matter against a JSON schema. The map
// is marshaled to JSON and back to normalize YAML-decoded types before
// validation; nil front matter validates as an empty object.
func validateWithSchema(frontmatter map[string]any, schemaJSON string, cache *compiledSchema) error {
	schema, err := cache.get(schemaJSON)
	if err != nil {
		return fmt.Errorf("schema compilation failed: %w", err)
	}

	if frontmatter == nil {
		frontmatter = make(map[string]any)
	}

	frontmatterJSON, err := json.Marshal(frontmatter)
	if err != nil {
		return fmt.Errorf("failed to marshal front matter: %w", err)
	}

	var normalized any
	if err := json.Unmarshal(frontmatterJSON, &normalized); err != nil {
		return fmt.Errorf("failed to normalize front matter: %w", err)
	}

	return schema.Validate(normalized)
}
