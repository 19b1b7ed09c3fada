// Package types provides the semantic field types used by the expression
// compiler to describe how a computed value should be interpreted.
package types

import "time"

// FieldType identifies the semantic type of an expression result.
type FieldType string

const (
	// Unknown means no type has been declared or inferred yet.
	Unknown FieldType = ""

	Integer    FieldType = "IntegerField"
	BigInteger FieldType = "BigIntegerField"
	Float      FieldType = "FloatField"
	Decimal    FieldType = "DecimalField"
	Text       FieldType = "TextField"
	Bool       FieldType = "BooleanField"
	Date       FieldType = "DateField"
	Time       FieldType = "TimeField"
	DateTime   FieldType = "DateTimeField"
	Duration   FieldType = "DurationField"
)

// IsTemporal reports whether the type represents a point in time.
// Duration is a span, not a point, and is deliberately excluded.
func (f FieldType) IsTemporal() bool {
	switch f {
	case Date, Time, DateTime:
		return true
	}
	return false
}

// IsNumeric reports whether the type is an arithmetic number type.
func (f FieldType) IsNumeric() bool {
	switch f {
	case Integer, BigInteger, Float, Decimal:
		return true
	}
	return false
}

// String returns the type name.
func (f FieldType) String() string {
	if f == Unknown {
		return "Unknown"
	}
	return string(f)
}

// DateTimeValue is a convenience alias for timestamp values.
type DateTimeValue = time.Time

// DecimalValue represents an exact decimal number carried as text so that
// drivers without a native decimal type do not lose precision.
type DecimalValue struct {
	value string
}

// NewDecimal creates a decimal from its string representation.
func NewDecimal(value string) DecimalValue {
	return DecimalValue{value: value}
}

// String returns the string representation.
func (d DecimalValue) String() string {
	return d.value
}

// PrepValue converts a Go value to the shape expected as a bind parameter
// for a column of the given type. Values of unknown shape pass through
// untouched and are left to the driver.
func PrepValue(ft FieldType, v any) any {
	if v == nil {
		return nil
	}
	switch ft {
	case Decimal:
		if d, ok := v.(DecimalValue); ok {
			return d.String()
		}
	case Duration:
		if d, ok := v.(time.Duration); ok {
			return d.Microseconds()
		}
	case Bool:
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return v
}
