package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// MetricValue is a financial metric that is either a finite number or
// undefined. Undefined values arise from zero/missing denominators or
// insufficient history and serialize as JSON null so consumers can render
// them as "N/A" instead of mistaking them for zero.
type MetricValue struct {
	value   float64
	defined bool
}

// Defined returns a MetricValue holding v. Non-finite inputs collapse to
// Undefined so NaN/Inf never escape into results.
func Defined(v float64) MetricValue {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined()
	}
	return MetricValue{value: v, defined: true}
}

// Undefined returns the undefined MetricValue.
func Undefined() MetricValue {
	return MetricValue{}
}

// MetricFromPtr converts a nullable float into a MetricValue.
func MetricFromPtr(v *float64) MetricValue {
	if v == nil {
		return Undefined()
	}
	return Defined(*v)
}

// IsDefined reports whether the metric holds a number.
func (m MetricValue) IsDefined() bool {
	return m.defined
}

// Float64 returns the numeric value and whether it is defined.
func (m MetricValue) Float64() (float64, bool) {
	return m.value, m.defined
}

// Ptr returns the value as a nullable float for database persistence.
func (m MetricValue) Ptr() *float64 {
	if !m.defined {
		return nil
	}
	v := m.value
	return &v
}

func (m MetricValue) String() string {
	if !m.defined {
		return "undefined"
	}
	return fmt.Sprintf("%g", m.value)
}

// MarshalJSON encodes the value as a number, or null when undefined.
func (m MetricValue) MarshalJSON() ([]byte, error) {
	if !m.defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON decodes a number or null.
func (m *MetricValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Undefined()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Defined(v)
	return nil
}
