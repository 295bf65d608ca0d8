package util

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hupe1980/agentcrew/core"
)

// Declared parameter type names understood by CoerceValue.
const (
	TypeInt    = "int"
	TypeString = "string"
	TypeBool   = "bool"
	TypeFloat  = "float"
)

// ValidationError represents parameter validation errors with detailed information.
type ValidationError struct {
	Field   string `json:"field"`   // Field that failed validation
	Value   any    `json:"value"`   // Value that was provided
	Message string `json:"message"` // Human-readable error message
	Err     error  `json:"-"`       // Sentinel classifying the failure
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Unwrap exposes the classifying sentinel to errors.Is.
func (e *ValidationError) Unwrap() error { return e.Err }

// KnownType reports whether typ is a declared type name CoerceValue handles.
func KnownType(typ string) bool {
	switch typ {
	case TypeInt, TypeString, TypeBool, TypeFloat:
		return true
	default:
		return false
	}
}

// CoerceValue converts value to the Go representation of the declared type:
// int, string, bool or float64. Values already of that type are returned
// unchanged. Conversion follows direct-cast rules: numeric strings parse,
// floats truncate to int, booleans map to 0/1 and anything scalar renders
// as a string.
func CoerceValue(field string, value any, typ string) (any, error) {
	fail := func(format string, args ...any) error {
		return &ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf(format, args...),
			Err:     core.ErrTypeCoercion,
		}
	}

	if value == nil {
		return nil, fail("cannot convert null to %s", typ)
	}

	if n, ok := value.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			value = int(i)
		} else if f, err := n.Float64(); err == nil {
			value = f
		} else {
			value = n.String()
		}
	}

	switch typ {
	case TypeInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			i, err := strconv.Atoi(fmt.Sprint(v))
			if err != nil {
				return nil, fail("cannot convert %v to int", v)
			}
			return i, nil
		case float32:
			return truncate(float64(v), fail)
		case float64:
			return truncate(v, fail)
		case bool:
			if v {
				return 1, nil
			}
			return 0, nil
		case string:
			i, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fail("cannot convert %q to int", v)
			}
			return i, nil
		}
	case TypeFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			f, err := strconv.ParseFloat(fmt.Sprint(v), 64)
			if err != nil {
				return nil, fail("cannot convert %v to float", v)
			}
			return f, nil
		case bool:
			if v {
				return 1.0, nil
			}
			return 0.0, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fail("cannot convert %q to float", v)
			}
			return f, nil
		}
	case TypeBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fail("cannot convert %q to bool", v)
			}
			return b, nil
		case float64:
			return v != 0, nil
		case int:
			return v != 0, nil
		}
	case TypeString:
		switch v := value.(type) {
		case string:
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32:
			return fmt.Sprint(v), nil
		}
	default:
		return nil, fail("undeclared type %q", typ)
	}

	return nil, fail("cannot convert %T to %s", value, typ)
}

func truncate(f float64, fail func(string, ...any) error) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return nil, fail("cannot convert %v to int", f)
	}

	return int(f), nil
}
