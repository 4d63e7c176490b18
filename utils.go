package main

import (
	"encoding/json"
	"fmt"
)

// Helper functions for extracting values from loosely-typed payloads

func getStringFromMap(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// descriptorFromRaw extracts a field descriptor from a raw drag payload.
// Older builder clients send the catalog entry as an untyped object; "name"
// is required, "streamAlias" optional.
func descriptorFromRaw(raw json.RawMessage) *FieldDescriptor {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	name := getStringFromMap(m, "name")
	if name == "" {
		name = getStringFromMap(m, "column")
	}
	if name == "" {
		return nil
	}
	return &FieldDescriptor{
		Name:        name,
		StreamAlias: getStringFromMap(m, "streamAlias"),
	}
}
