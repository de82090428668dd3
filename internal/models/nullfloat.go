package models

import (
	"bytes"
	"encoding/json"
)

// NullFloat is a float64 that may be undefined. Indicator columns use it
// for rows where insufficient history exists, so an undefined cell is
// distinguishable from a legitimate 0.0 and marshals as JSON null.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a defined NullFloat
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// Null returns an undefined NullFloat
func Null() NullFloat {
	return NullFloat{}
}

// Or returns the value when defined, otherwise the fallback.
func (f NullFloat) Or(fallback float64) float64 {
	if f.Valid {
		return f.Float64
	}
	return fallback
}

var jsonNull = []byte("null")

// MarshalJSON encodes undefined values as null
func (f NullFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return jsonNull, nil
	}
	return json.Marshal(f.Float64)
}

// UnmarshalJSON decodes null as undefined
func (f *NullFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*f = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = NullFloat{Float64: v, Valid: true}
	return nil
}
