// Package utils holds small parsing helpers shared by the LLM and
// config layers.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON fixes the JSON defects models commonly produce: markdown
// fences, single quotes, unquoted keys, trailing commas, unclosed
// braces.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// ParseHJSONToStruct decodes a human-edited Hjson document (comments,
// unquoted keys, optional commas) into a struct.
func ParseHJSONToStruct(data []byte, schema interface{}) error {
	if err := hjson.Unmarshal(data, schema); err != nil {
		return fmt.Errorf("hjson unmarshal: %w", err)
	}
	return nil
}

// SmartParse decodes input into schema trying strict JSON first, then
// repaired JSON, then Hjson. Returns the form that decoded.
func SmartParse(input string, schema interface{}) (string, error) {
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return input, nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return repaired, nil
		}
	}

	var loose interface{}
	if err := hjson.Unmarshal([]byte(input), &loose); err == nil {
		if normalized, err := json.Marshal(loose); err == nil {
			if err := json.Unmarshal(normalized, schema); err == nil {
				return string(normalized), nil
			}
		}
	}

	return "", fmt.Errorf("input is not decodable as JSON, repaired JSON, or Hjson")
}
