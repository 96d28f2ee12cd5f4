package osuapi

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/guregu/null/v6"
)

// TimeLayout is the timestamp format the API uses, in UTC.
const TimeLayout = "2006-01-02 15:04:05"

var nullLiteral = []byte("null")

// The API encodes nearly every numeric field as a JSON string ("9", "5.06")
// and uses null for absent values. The scalar types below wrap the null
// package's types with decoding that accepts the string form, the bare
// number form and null, so models read naturally regardless of how a field
// arrives. Marshalling is inherited: numbers out, null for absent.

// Int is a nullable integer field.
type Int struct {
	null.Int
}

// IntFrom returns a valid Int holding v.
func IntFrom(v int64) Int {
	return Int{null.IntFrom(v)}
}

func (i *Int) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, nullLiteral) {
		i.Int = null.NewInt(0, false)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			i.Int = null.NewInt(0, false)
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse integer %q: %w", s, err)
		}
		i.Int = null.NewInt(n, true)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed to parse integer: %w", err)
	}
	i.Int = null.NewInt(n, true)
	return nil
}

// Float is a nullable floating point field.
type Float struct {
	null.Float
}

// FloatFrom returns a valid Float holding v.
func FloatFrom(v float64) Float {
	return Float{null.FloatFrom(v)}
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, nullLiteral) {
		f.Float = null.NewFloat(0, false)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			f.Float = null.NewFloat(0, false)
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("failed to parse float %q: %w", s, err)
		}
		f.Float = null.NewFloat(n, true)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed to parse float: %w", err)
	}
	f.Float = null.NewFloat(n, true)
	return nil
}

// Bool is a nullable boolean field. The API writes booleans as "0" and "1".
type Bool struct {
	null.Bool
}

// BoolFrom returns a valid Bool holding v.
func BoolFrom(v bool) Bool {
	return Bool{null.BoolFrom(v)}
}

func (b *Bool) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, nullLiteral) {
		b.Bool = null.NewBool(false, false)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "":
			b.Bool = null.NewBool(false, false)
		case "0":
			b.Bool = null.NewBool(false, true)
		case "1":
			b.Bool = null.NewBool(true, true)
		default:
			v, err := strconv.ParseBool(s)
			if err != nil {
				return fmt.Errorf("failed to parse bool %q: %w", s, err)
			}
			b.Bool = null.NewBool(v, true)
		}
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		b.Bool = null.NewBool(n != 0, true)
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to parse bool: %w", err)
	}
	b.Bool = null.NewBool(v, true)
	return nil
}

// Timestamp is a nullable date field in the API's "2006-01-02 15:04:05"
// layout. Values are interpreted as UTC.
type Timestamp struct {
	null.Time
}

// TimestampFrom returns a valid Timestamp holding v.
func TimestampFrom(v time.Time) Timestamp {
	return Timestamp{null.TimeFrom(v)}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, nullLiteral) {
		t.Time = null.NewTime(time.Time{}, false)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to parse timestamp: %w", err)
	}
	if s == "" {
		t.Time = null.NewTime(time.Time{}, false)
		return nil
	}
	parsed, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	t.Time = null.NewTime(parsed, true)
	return nil
}
