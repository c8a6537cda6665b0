package analysis

import (
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var resultSchemaJSON string

var resultSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(resultSchemaJSON))
})

type wireResult struct {
	Score         int      `json:"score"`
	Verdict       string   `json:"verdict"`
	Summary       string   `json:"summary"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	Suggestions   []string `json:"suggestions"`
}

// DecodeResult validates a success body against the result contract and converts it.
func DecodeResult(body []byte) (*Result, error) {
	schema, err := resultSchema()
	if err != nil {
		return nil, err
	}

	validation, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, &MalformedResponseError{Err: err}
	}

	if !validation.Valid() {
		problems := make([]string, len(validation.Errors()))
		for i, desc := range validation.Errors() {
			problems[i] = desc.String()
		}
		return nil, &MalformedResponseError{Problems: problems}
	}

	var items map[string]any
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}

	var wire wireResult
	cfg := &mapstructure.DecoderConfig{
		Result:     &wire,
		TagName:    "json",
		ErrorUnset: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}

	return &Result{
		Score:         wire.Score,
		Verdict:       wire.Verdict,
		Summary:       wire.Summary,
		MatchedSkills: append([]string{}, wire.MatchedSkills...),
		MissingSkills: append([]string{}, wire.MissingSkills...),
		Suggestions:   ParseSuggestions(wire.Suggestions),
	}, nil
}
