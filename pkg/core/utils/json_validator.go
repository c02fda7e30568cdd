package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/go-playground/validator/v10"
	hjson "github.com/hjson/hjson-go/v4"
)

// Validate is the shared validator instance. Custom rules are registered once in init.
var Validate = validator.New()

func init() {
	// progress_step: an int in 0..100 that is a multiple of 10.
	_ = Validate.RegisterValidation("progress_step", func(fl validator.FieldLevel) bool {
		p := fl.Field().Int()
		return p >= 0 && p <= 100 && p%10 == 0
	})
}

// ValidateJSON unmarshals jsonData into schema and checks its validate tags.
// Code is the source of truth for LLM output: a reply that decodes but breaks a tag is rejected.
func ValidateJSON(jsonData string, schema interface{}) error {
	if err := json.Unmarshal([]byte(jsonData), schema); err != nil {
		return fmt.Errorf("JSON_STRUCTURAL_ERROR: %v", err)
	}
	if err := Validate.Struct(schema); err != nil {
		return fmt.Errorf("JSON_SCHEMA_VIOLATION: %w", err)
	}
	return nil
}

// RepairJSON attempts to fix common JSON errors from LLM outputs:
// unquoted keys, single quotes, unclosed arrays/objects, TRUE/FALSE/Null,
// trailing commas, comments and markdown code fences.
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %v", err)
	}
	return repaired, nil
}

// ParseHJSON parses Human-friendly JSON (comments, unquoted keys and strings,
// optional commas) and returns standard JSON.
func ParseHJSON(hjsonData string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(hjsonData), &result); err != nil {
		return "", fmt.Errorf("HJSON_PARSE_ERROR: %v", err)
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("JSON_MARSHAL_ERROR: %v", err)
	}
	return string(jsonBytes), nil
}

// StripCodeFence removes an outer ```json ... ``` (or bare ```) wrapper.
func StripCodeFence(input string) string {
	s := strings.TrimSpace(input)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(s)
}

// SmartParse tries multiple parsing strategies to extract valid JSON into schema.
// Order of attempts:
// 1. Standard JSON parse
// 2. JSON repair
// 3. Hjson parse (most lenient)
func SmartParse(input string, schema interface{}) (string, error) {
	input = StripCodeFence(input)

	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return input, nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return repaired, nil
		}
	}

	if hjsonResult, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal([]byte(hjsonResult), schema); err == nil {
			return hjsonResult, nil
		}
	}

	return "", fmt.Errorf("SMART_PARSE_FAILED: all parsing strategies failed for input")
}
