package results

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteJSON writes a sweep result to a JSON file.
func WriteJSON(res *SweepResult, filename string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// ReadJSON reads a sweep result from a JSON file.
func ReadJSON(filename string) (*SweepResult, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var res SweepResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	return &res, nil
}

// Marshal serializes a sweep result to compact JSON, the form stored in
// the cache.
func Marshal(res *SweepResult) ([]byte, error) {
	return json.Marshal(res)
}

// Unmarshal parses a sweep result from its cached serialization.
func Unmarshal(data []byte) (*SweepResult, error) {
	var res SweepResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("unmarshal cached results: %w", err)
	}
	return &res, nil
}
