// Package utils holds small shared helpers for taming LLM output: lenient
// JSON parsing and markdown cleanup.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON fixes the common defects of model-generated JSON: single quotes,
// unquoted keys, trailing commas, unclosed brackets, surrounding markdown
// fences.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// SmartParse tries progressively more forgiving strategies to decode input
// into target: strict JSON, then repaired JSON, then Hjson. Returns the
// variant that decoded successfully.
func SmartParse(input string, target interface{}) (string, error) {
	if err := json.Unmarshal([]byte(input), target); err == nil {
		return input, nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), target); err == nil {
			return repaired, nil
		}
	}

	// Hjson tolerates comments, unquoted strings, and missing commas.
	var loose interface{}
	if err := hjson.Unmarshal([]byte(input), &loose); err == nil {
		if strict, err := json.Marshal(loose); err == nil {
			if err := json.Unmarshal(strict, target); err == nil {
				return string(strict), nil
			}
		}
	}

	return "", fmt.Errorf("smart parse: all decoding strategies failed")
}
