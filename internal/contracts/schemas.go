package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	AdminBranchRequest    = "AdminBranchRequest/1.0.0"
	AdminApartmentRequest = "AdminApartmentRequest/1.0.0"
	AdminRoomRequest      = "AdminRoomRequest/1.0.0"
	ListingChangedEvent   = "ListingChangedEvent/1.0.0"
)

var schemaFiles = map[string]string{
	AdminBranchRequest:    "schemas/branch.v1.json",
	AdminApartmentRequest: "schemas/apartment.v1.json",
	AdminRoomRequest:      "schemas/room.v1.json",
	ListingChangedEvent:   "schemas/listing_changed.v1.json",
}

// Ресурсы регистрируются под своими $id
const schemaBaseURL = "https://listing-service/"

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	for key, file := range schemaFiles {
		raw, err := schemaFS.ReadFile(file)
		if err != nil {
			panic(fmt.Sprintf("failed to read embedded schema %s: %v", file, err))
		}
		url := schemaBaseURL + file
		if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
			panic(fmt.Sprintf("failed to add schema %s: %v", file, err))
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			panic(fmt.Sprintf("failed to compile schema %s: %v", file, err))
		}
		compiledSchemas[key] = schema
	}
}

// Validate проверяет JSON-документ по схеме с ключом "<Type>/<version>"
func Validate(key string, body []byte) error {
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema '%s' not found", key)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("body is not a valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}
