package cronexpr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrParse is returned for any input that is not a valid five-field expression.
// Callers should only test for it with errors.Is; the wrapped detail is for logs.
var ErrParse = errors.New("expression could not be parsed")

const fieldCount = 5

// Field identifies a column of the expression.
type Field int

const (
	FieldMinute Field = iota
	FieldHour
	FieldDayOfMonth
	FieldMonth
	FieldDayOfWeek
)

var fieldNames = [fieldCount]string{"minute", "hour", "day-of-month", "month", "day-of-week"}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// Expression is a fully parsed schedule. The zero value is not meaningful;
// build one with Parse.
type Expression struct {
	Minute     Value
	Hour       Value
	DayOfMonth Value
	Month      Value
	DayOfWeek  Value
}

// Parse decodes a line of exactly five single-space separated fields.
// Any malformed field fails the whole expression.
func Parse(text string) (Expression, error) {
	tokens := strings.Split(text, " ")
	if len(tokens) != fieldCount {
		return Expression{}, fmt.Errorf("%w: expected %d fields, got %d", ErrParse, fieldCount, len(tokens))
	}

	var vals [fieldCount]Value
	for i, tok := range tokens {
		v, err := ParseField(tok)
		if err != nil {
			return Expression{}, fmt.Errorf("%s: %w", Field(i), err)
		}
		vals[i] = v
	}

	return Expression{
		Minute:     vals[FieldMinute],
		Hour:       vals[FieldHour],
		DayOfMonth: vals[FieldDayOfMonth],
		Month:      vals[FieldMonth],
		DayOfWeek:  vals[FieldDayOfWeek],
	}, nil
}

// Get returns the value stored for f.
func (e Expression) Get(f Field) Value {
	switch f {
	case FieldMinute:
		return e.Minute
	case FieldHour:
		return e.Hour
	case FieldDayOfMonth:
		return e.DayOfMonth
	case FieldMonth:
		return e.Month
	case FieldDayOfWeek:
		return e.DayOfWeek
	}
	return nil
}

// String prints the expression in canonical cron syntax.
func (e Expression) String() string {
	parts := make([]string, fieldCount)
	for i := range parts {
		v := e.Get(Field(i))
		if v == nil {
			parts[i] = "*"
			continue
		}
		parts[i] = v.String()
	}
	return strings.Join(parts, " ")
}

// Describe renders e as a sentence. It is shorthand for Render(e).
func (e Expression) Describe() string { return Render(e) }

// Describe parses text and renders it in one step.
func Describe(text string) (string, error) {
	e, err := Parse(text)
	if err != nil {
		return "", err
	}
	return Render(e), nil
}
