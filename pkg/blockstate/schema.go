package blockstate

import (
	"bytes"
	_ "embed"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed blockstate.schema.json
var schemaSource string

var schema = jsonschema.MustCompileString("blockstate.schema.json", schemaSource)

// validate checks the document shape before any bits are assigned.
func validate(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return malformed(err, "invalid json")
	}
	if err := schema.Validate(doc); err != nil {
		return malformed(err, "schema")
	}
	return nil
}
