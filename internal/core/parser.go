package core

// parser.go turns one fixed-width line into a ParsedLine.
//
// Layout (0-based, end-exclusive, in characters):
//
//	userId     0-10
//	name      10-55
//	orderId   55-65
//	productId 65-75
//	value     75-87
//	date      87-95 (yyyymmdd)
//
// Every field is validated on its own and all failures for a line are
// reported together. A line only yields a record when every field is valid.

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// LineLength is the minimum length of a record line, in characters.
const LineLength = 95

// Field names used in validation messages.
const (
	FieldUserID    = "userId"
	FieldName      = "name"
	FieldOrderID   = "orderId"
	FieldProductID = "productId"
	FieldValue     = "value"
	FieldDate      = "date"
)

type fieldRange struct {
	name       string
	start, end int
}

var layout = [...]fieldRange{
	{FieldUserID, 0, 10},
	{FieldName, 10, 55},
	{FieldOrderID, 55, 65},
	{FieldProductID, 65, 75},
	{FieldValue, 75, 87},
	{FieldDate, 87, 95},
}

// ValidationError describes why a single field was rejected.
type ValidationError struct {
	Field   string // Field name, e.g. "orderId"
	Value   string // Trimmed raw text
	Message string // Complete human-readable message
}

func (e *ValidationError) Error() string {
	return e.Message
}

func fieldErr(field, raw, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Value: raw, Message: fmt.Sprintf(format, args...)}
}

// LineError ties an error to its 1-based physical line number.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("Line %d: %s", e.Line, e.Err.Error())
}

func (e LineError) Unwrap() error {
	return e.Err
}

// ParseLine validates a single record line. It returns the parsed record and
// no errors, or a nil record and at least one error.
func ParseLine(line string, lineNumber int) (*ParsedLine, []LineError) {
	if n := utf8.RuneCountInString(line); n < LineLength {
		return nil, []LineError{{
			Line: lineNumber,
			Err:  fmt.Errorf("line too short: got %d, expected %d", n, LineLength),
		}}
	}

	fields, err := splitFields(line)
	if err != nil {
		return nil, []LineError{{Line: lineNumber, Err: err}}
	}

	userID, userErr := parsePositiveInt(FieldUserID, fields[0])
	name, nameErr := parseName(fields[1])
	orderID, orderErr := parsePositiveInt(FieldOrderID, fields[2])
	productID, productErr := parsePositiveInt(FieldProductID, fields[3])
	value, valueErr := parseValue(FieldValue, fields[4])
	date, dateErr := parseDate(fields[5])

	var errs []LineError
	for _, fe := range []*ValidationError{userErr, nameErr, orderErr, productErr, valueErr, dateErr} {
		if fe != nil {
			errs = append(errs, LineError{Line: lineNumber, Err: fe})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return &ParsedLine{
		UserID:    userID,
		Name:      name,
		OrderID:   orderID,
		ProductID: productID,
		Value:     value,
		Date:      date,
	}, nil
}

// splitFields cuts the line at the fixed character offsets. ASCII lines are
// sliced directly; anything else is sliced by rune.
func splitFields(line string) ([len(layout)]string, error) {
	var out [len(layout)]string

	if utf8.RuneCountInString(line) == len(line) {
		for i, f := range layout {
			out[i] = line[f.start:f.end]
		}
		return out, nil
	}

	runes := []rune(line)
	for i, f := range layout {
		if f.end > len(runes) {
			return out, fmt.Errorf("fields out of expected range: %s needs %d characters, line has %d",
				f.name, f.end, len(runes))
		}
		out[i] = string(runes[f.start:f.end])
	}
	return out, nil
}

func parsePositiveInt(field, raw string) (int64, *ValidationError) {
	s := strings.TrimSpace(raw)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fieldErr(field, s, "%s invalid: '%s'", field, s)
	}
	if v <= 0 {
		return 0, fieldErr(field, s, "%s must be positive: %d", field, v)
	}
	return v, nil
}

func parseName(raw string) (string, *ValidationError) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fieldErr(FieldName, s, "name must not be empty")
	}
	return s, nil
}

// parseValue accepts both '.' and ',' as the decimal separator.
func parseValue(field, raw string) (decimal.Decimal, *ValidationError) {
	s := strings.TrimSpace(raw)
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Decimal{}, fieldErr(field, s, "%s invalid: '%s'", field, s)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fieldErr(field, s, "%s must not be negative: %s", field, d.String())
	}
	return d, nil
}

func parseDate(raw string) (civil.Date, *ValidationError) {
	s := strings.TrimSpace(raw)
	if len(s) != 8 || !allDigits(s) {
		return civil.Date{}, fieldErr(FieldDate, s, "date must have 8 digits (yyyymmdd): '%s'", s)
	}

	year, _ := strconv.Atoi(s[0:4])
	month, _ := strconv.Atoi(s[4:6])
	day, _ := strconv.Atoi(s[6:8])

	if month < 1 || month > 12 {
		return civil.Date{}, fieldErr(FieldDate, s, "invalid date: '%s' - month out of range: %d", s, month)
	}
	d := civil.Date{Year: year, Month: time.Month(month), Day: day}
	if !d.IsValid() {
		return civil.Date{}, fieldErr(FieldDate, s, "invalid date: '%s' - day out of range for %s %d: %d",
			s, d.Month, year, day)
	}
	return d, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
