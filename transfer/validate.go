package transfer

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	numberPattern = regexp.MustCompile(`^[+-]?\d*\.?\d*$`)
	datePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Kind classifies the outcome of a record check.
type Kind int

const (
	// Valid means every field met its contract.
	Valid Kind = iota
	// InvalidFields means the record is an object but some fields are bad.
	InvalidFields
	// Unusable means the record is not an object at all.
	Unusable
)

func (k Kind) String() string {
	switch k {
	case Valid:
		return "valid"
	case InvalidFields:
		return "invalid_fields"
	case Unusable:
		return "unusable"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ValidationError reports caller-supplied data that does not meet the
// field contracts. Fields is nil when the record was not an object.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if e.Unusable() {
		return "transfer record is not valid"
	}
	return "transfer record is not valid: " + strings.Join(e.Fields, ", ")
}

// Unusable reports whether the record as a whole could not be inspected,
// as opposed to carrying individual bad fields.
func (e *ValidationError) Unusable() bool {
	return e.Fields == nil
}

// Result is the outcome of Check.
type Result struct {
	Kind   Kind
	Fields []string

	transfer Transfer
}

// OK reports whether the record is valid.
func (r Result) OK() bool { return r.Kind == Valid }

// Transfer returns the typed record. It is the zero value unless OK.
func (r Result) Transfer() Transfer { return r.transfer }

// Err converts the result into an error, nil when valid.
func (r Result) Err() error {
	switch r.Kind {
	case Valid:
		return nil
	case Unusable:
		return &ValidationError{}
	default:
		return &ValidationError{Fields: r.Fields}
	}
}

// ValidateID fails with a ValidationError on field "id" when id is
// missing or not a string.
func ValidateID(id any) error {
	if !Present(id) || !IsValidString(id) {
		return &ValidationError{Fields: []string{"id"}}
	}
	return nil
}

// Check inspects a decoded JSON record. When id is non-nil it is
// validated as well and a failure contributes "id" to the field set.
func Check(record any, id any) Result {
	obj, ok := record.(map[string]any)
	if !ok {
		return Result{Kind: Unusable}
	}

	var (
		invalid []string
		t       Transfer
	)

	if v := obj["accountHolder"]; Present(v) {
		if s, ok := v.(string); ok {
			t.AccountHolder = s
		} else {
			invalid = append(invalid, "accountHolder")
		}
	}
	if v := obj["note"]; Present(v) {
		if s, ok := v.(string); ok {
			t.Note = s
		} else {
			invalid = append(invalid, "note")
		}
	}

	if s, ok := obj["iban"].(string); ok && s != "" {
		t.IBAN = s
	} else {
		invalid = append(invalid, "iban")
	}

	if amount, ok := parseAmount(obj["amount"]); ok {
		t.Amount = amount
	} else {
		invalid = append(invalid, "amount")
	}

	if s, ok := obj["date"].(string); ok && IsValidDate(s) {
		t.Date = s
	} else {
		invalid = append(invalid, "date")
	}

	if id != nil && ValidateID(id) != nil {
		invalid = append(invalid, "id")
	}

	if len(invalid) > 0 {
		return Result{Kind: InvalidFields, Fields: invalid}
	}
	return Result{Kind: Valid, transfer: t}
}

// Validate returns nil or a *ValidationError for the record.
func Validate(record any, id any) error {
	return Check(record, id).Err()
}

// Parse validates the record and returns it typed, with a string amount
// normalized to a number.
func Parse(record any, id any) (Transfer, error) {
	r := Check(record, id)
	if err := r.Err(); err != nil {
		return Transfer{}, err
	}
	return r.transfer, nil
}

// IsValid reports whether Validate would succeed.
func IsValid(record any, id any) bool {
	return Check(record, id).OK()
}

// IsValidString reports whether v is a string.
func IsValidString(v any) bool {
	_, ok := v.(string)
	return ok
}

// IsValidNumber accepts a JSON number or a plain decimal string such as
// "-50.12". Thousands separators and exponents are rejected.
func IsValidNumber(v any) bool {
	_, ok := toFloat(v)
	return ok
}

// IsValidDate reports whether s is a real calendar date in YYYY-MM-DD
// form. "2022-02-30" is rejected.
func IsValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return false
	}
	return d.Format(dateLayout) == s
}

// parseAmount treats zero as missing, like the rest of the falsy values.
func parseAmount(v any) (float64, bool) {
	if !Present(v) {
		return 0, false
	}
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return toFloat(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		if !numberPattern.MatchString(n) {
			return 0, false
		}
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// Present reports whether a decoded JSON value counts as supplied.
// nil, false, "" and numeric zero are all absent.
func Present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	}
	return true
}
