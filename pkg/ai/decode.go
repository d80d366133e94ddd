package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// MalformedOutputError reports that a model response violated its output
// contract: not JSON after fence stripping, or JSON that fails schema
// validation. Transport failures are ordinary errors, never this type.
type MalformedOutputError struct {
	Stage  string
	Reason string
	Raw    string
}

// Error implements the error interface.
func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output in %s stage: %s", e.Stage, e.Reason)
}

const rawExcerptLimit = 256

func newMalformedOutputError(stage, reason, raw string) *MalformedOutputError {
	if len(raw) > rawExcerptLimit {
		raw = raw[:rawExcerptLimit]
	}
	return &MalformedOutputError{Stage: stage, Reason: reason, Raw: raw}
}

// StripFences removes a leading/trailing markdown code fence (``` or
// ```json) from model output. Models wrap JSON in fences even when told not
// to, so every stage cleans its response through here before parsing.
func StripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	cleaned = strings.TrimPrefix(cleaned, "```")
	if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 {
		// Drop the language tag line (e.g. "json").
		first := strings.TrimSpace(cleaned[:idx])
		if first == "" || !strings.ContainsAny(first, "{[") {
			cleaned = cleaned[idx+1:]
		}
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// DecodeObject strips fences from raw model output, parses it as JSON and,
// when a schema is supplied, validates the parsed document before decoding
// it into target. All stages share this decoder so parse and contract
// failures surface uniformly as *MalformedOutputError.
func DecodeObject(stage, raw string, schema *jsonschema.Schema, target interface{}) error {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return newMalformedOutputError(stage, "empty response", raw)
	}

	if schema != nil {
		var document interface{}
		if err := json.Unmarshal([]byte(cleaned), &document); err != nil {
			return newMalformedOutputError(stage, fmt.Sprintf("invalid json: %v", err), cleaned)
		}
		if err := schema.Validate(document); err != nil {
			return newMalformedOutputError(stage, fmt.Sprintf("schema violation: %v", err), cleaned)
		}
	}

	decoder := json.NewDecoder(strings.NewReader(cleaned))
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		return newMalformedOutputError(stage, fmt.Sprintf("invalid json: %v", err), cleaned)
	}

	return nil
}

// MustCompileSchema compiles an embedded JSON schema document, panicking on
// error. Schemas are package constants, so a failure is a programming bug.
func MustCompileSchema(name, document string) *jsonschema.Schema {
	schema, err := jsonschema.CompileString(name, document)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return schema
}
