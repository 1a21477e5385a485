package report

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of Report, for validating report files.
func Schema() ([]byte, error) {
	r := jsonschema.Reflector{
		FieldNameTag:               "json",
		RequiredFromJSONSchemaTags: true,
	}

	schema := r.Reflect(&Report{})
	schema.Title = "impmock diagnostics report"
	schema.Description = "Setup coverage and unmatched calls of the mocks in one test run"
	schema.ID = ""

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}

	return data, nil
}
