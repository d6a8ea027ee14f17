package loader

import (
	"fmt"
	"regexp"

	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/ports"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

var addressFields = []string{"streetLine1", "city", "postalCode", "countryCode"}

// ValidationBuilder is the fluent accumulator producing a
// ports.ValidationResult (spec §4.5 "Validation Builder").
type ValidationBuilder struct {
	rec      record.Record
	op       ports.LoaderOperation
	errors   []ports.FieldIssue
	warnings []ports.FieldIssue
}

// NewValidationBuilder starts a validation pass over rec for operation op.
func NewValidationBuilder(rec record.Record, op ports.LoaderOperation) *ValidationBuilder {
	return &ValidationBuilder{rec: rec, op: op}
}

// RequiredForCreate enforces that each field is present and non-null,
// short-circuiting on operations other than CREATE.
func (b *ValidationBuilder) RequiredForCreate(fields ...string) *ValidationBuilder {
	if b.op != ports.OpCreate {
		return b
	}
	for _, field := range fields {
		value, ok := b.rec.Get(field)
		if !ok || value.IsNull() {
			b.errors = append(b.errors, ports.FieldIssue{
				Field:   field,
				Code:    "REQUIRED",
				Message: fmt.Sprintf("%s is required", field),
			})
			continue
		}
		if s, isString := value.AsString(); isString && s == "" {
			b.errors = append(b.errors, ports.FieldIssue{
				Field:   field,
				Code:    "REQUIRED",
				Message: fmt.Sprintf("%s is required", field),
			})
		}
	}
	return b
}

// Email validates field against the email pattern of spec §4.5 when present.
func (b *ValidationBuilder) Email(field string) *ValidationBuilder {
	value, ok := b.rec.Get(field)
	if !ok || value.IsNull() {
		return b
	}
	s, isString := value.AsString()
	if !isString || !emailPattern.MatchString(s) {
		b.errors = append(b.errors, ports.FieldIssue{
			Field:   field,
			Code:    "INVALID_FORMAT",
			Message: fmt.Sprintf("%s is not a valid email address", field),
		})
	}
	return b
}

// Address validates that prefix's nested address object carries
// streetLine1, city, postalCode, and countryCode when the object itself is
// present.
func (b *ValidationBuilder) Address(prefix string) *ValidationBuilder {
	value, ok := b.rec.Get(prefix)
	if !ok || value.IsNull() {
		return b
	}
	obj, isObject := value.AsObject()
	if !isObject {
		b.errors = append(b.errors, ports.FieldIssue{
			Field:   prefix,
			Code:    "INVALID_VALUE",
			Message: fmt.Sprintf("%s must be an address object", prefix),
		})
		return b
	}
	for _, field := range addressFields {
		v, present := obj[field]
		if !present || v.IsNull() {
			b.errors = append(b.errors, ports.FieldIssue{
				Field:   prefix + "." + field,
				Code:    "REQUIRED",
				Message: fmt.Sprintf("%s.%s is required", prefix, field),
			})
		}
	}
	return b
}

// Warn appends a non-fatal finding that does not affect Valid.
func (b *ValidationBuilder) Warn(field, code, message string) *ValidationBuilder {
	b.warnings = append(b.warnings, ports.FieldIssue{Field: field, Code: code, Message: message})
	return b
}

// Result materializes the accumulated findings.
func (b *ValidationBuilder) Result() ports.ValidationResult {
	return ports.ValidationResult{
		Valid:    len(b.errors) == 0,
		Errors:   b.errors,
		Warnings: b.warnings,
	}
}
