package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// JSONMap stores arbitrary structured metadata as a JSON object column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]interface{}(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	if m == nil {
		return fmt.Errorf("models.JSONMap: Scan on nil pointer")
	}
	raw, err := rawJSONString(value, "models.JSONMap")
	if err != nil {
		return err
	}
	if raw == "" {
		*m = JSONMap{}
		return nil
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return fmt.Errorf("models.JSONMap: %w", err)
	}
	*m = out
	return nil
}

// Int reads an integer-valued key; ok is false when absent or not numeric.
func (m JSONMap) Int(key string) (int, bool) {
	v, present := m[key]
	if !present {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

// ScoreMap stores named confidence scores as a JSON object column.
type ScoreMap map[string]float64

func (m ScoreMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]float64(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *ScoreMap) Scan(value interface{}) error {
	if m == nil {
		return fmt.Errorf("models.ScoreMap: Scan on nil pointer")
	}
	raw, err := rawJSONString(value, "models.ScoreMap")
	if err != nil {
		return err
	}
	if raw == "" {
		*m = ScoreMap{}
		return nil
	}
	var out map[string]float64
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return fmt.Errorf("models.ScoreMap: %w", err)
	}
	*m = out
	return nil
}

func rawJSONString(value interface{}, label string) (string, error) {
	if value == nil {
		return "", nil
	}
	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return "", fmt.Errorf("%s: unsupported Scan type %T", label, value)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return "", nil
	}
	return raw, nil
}
