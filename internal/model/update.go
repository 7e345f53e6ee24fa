package model

import (
	"bytes"
	"encoding/json"
)

// nullableColumns maps the JSON names of nullable fields to their columns.
// An update clears them when the field is sent as an explicit null.
var nullableColumns = map[string]string{
	"description":       "description",
	"location":          "location",
	"reminderTime":      "reminder_time",
	"recurrencePattern": "recurrence_pattern",
}

var jsonNull = []byte("null")

// nullKeys returns the names among keys that data, a JSON object, sets to null.
func nullKeys(data []byte, keys ...string) ([]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var out []string
	for _, key := range keys {
		if v, ok := raw[key]; ok && bytes.Equal(bytes.TrimSpace(v), jsonNull) {
			out = append(out, key)
		}
	}
	return out, nil
}

// withNulls adds an explicit null for each key to the JSON object in data.
func withNulls(data []byte, keys []string) ([]byte, error) {
	if len(keys) == 0 {
		return data, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, key := range keys {
		if _, set := raw[key]; !set {
			raw[key] = jsonNull
		}
	}
	return json.Marshal(raw)
}

// clearColumns nulls the column of every nullable field named in keys.
func clearColumns(cols map[string]interface{}, keys, nullable []string) {
	for _, key := range nullable {
		if hasKey(keys, key) {
			cols[nullableColumns[key]] = nil
		}
	}
}

func hasKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
