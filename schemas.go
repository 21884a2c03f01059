package main

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaPair is the create and update contract of one entity.
type schemaPair struct {
	create *gojsonschema.Schema
	update *gojsonschema.Schema
}

func loadSchemas(name string) (schemaPair, error) {
	create, err := compileSchema("schemas/" + name + ".create.json")
	if err != nil {
		return schemaPair{}, err
	}
	update, err := compileSchema("schemas/" + name + ".update.json")
	if err != nil {
		return schemaPair{}, err
	}
	return schemaPair{create: create, update: update}, nil
}

func compileSchema(path string) (*gojsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", path, err)
	}
	return s, nil
}

// validateBody checks a request body against schema and returns the sorted
// names of the top-level fields it carries. It never touches storage.
func validateBody(schema *gojsonschema.Schema, body []byte) ([]string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, invalidField("Field required", "missing", "body")
	}
	if !json.Valid(body) {
		return nil, invalidField("JSON decode error", "json_invalid", "body")
	}

	res, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, fmt.Errorf("validating body: %w", err)
	}
	if !res.Valid() {
		verr := &ValidationError{}
		for _, e := range res.Errors() {
			verr.Fields = append(verr.Fields, fieldError(e))
		}
		return nil, verr
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		return nil, invalidField("Input should be an object", "model_attributes_type", "body")
	}
	fields := make([]string, 0, len(present))
	for k := range present {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields, nil
}

// decodeBody unmarshals an already validated body into dst. Values the schema
// accepts but Go cannot hold (1.0 for an integer, say) surface as 422.
func decodeBody(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return invalidField("Input should be a valid "+typeErr.Type.String(), "type_error", append([]any{"body"}, splitPath(typeErr.Field)...)...)
		}
		return invalidField(err.Error(), "value_error", "body")
	}
	return nil
}

func fieldError(e gojsonschema.ResultError) FieldError {
	loc := []any{"body"}
	if f := e.Field(); f != "(root)" {
		loc = append(loc, splitPath(f)...)
	}
	switch e.Type() {
	case "required", "additional_property_not_allowed":
		if p, ok := e.Details()["property"].(string); ok {
			loc = append(loc, p)
		}
	}
	return FieldError{Loc: loc, Msg: e.Description(), Type: e.Type()}
}

// splitPath turns "tags.0" into ["tags", 0].
func splitPath(path string) []any {
	var out []any
	for _, part := range strings.Split(path, ".") {
		if n, err := strconv.Atoi(part); err == nil {
			out = append(out, n)
			continue
		}
		out = append(out, part)
	}
	return out
}
