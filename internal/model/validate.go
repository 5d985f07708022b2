package model

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateShipmentRequest checks a ShipmentRequest for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the record is valid.
func ValidateShipmentRequest(r *ShipmentRequest) error {
	var ve ValidationError

	name := strings.TrimSpace(r.Name)
	if name == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: FieldName, Message: "is required"})
	} else if len([]rune(name)) > 255 {
		ve.Errors = append(ve.Errors, FieldError{Field: FieldName, Message: "must be 255 characters or fewer"})
	}

	if !r.Status.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   FieldStatus,
			Message: fmt.Sprintf("invalid value %q", r.Status),
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// FieldDelta is a set of field mutations for one shipment request, keyed by
// column name. Values are strings; an empty estimated_delivery clears it.
type FieldDelta map[string]string

// editableFields are the columns a FieldDelta may touch. Derived columns
// (assigned_agent, record_link) are display-only.
var editableFields = map[string]bool{
	FieldName:              true,
	FieldStatus:            true,
	FieldDestination:       true,
	FieldEstimatedDelivery: true,
}

// IsEditable reports whether a column may be written through a FieldDelta.
func IsEditable(field string) bool {
	return editableFields[field]
}

// ValidateDelta checks that every key is editable and every value is
// acceptable for its column.
func ValidateDelta(d FieldDelta) error {
	var ve ValidationError
	if len(d) == 0 {
		ve.Errors = append(ve.Errors, FieldError{Field: "fields", Message: "at least one field is required"})
		return &ve
	}
	for field, value := range d {
		if !IsEditable(field) {
			ve.Errors = append(ve.Errors, FieldError{Field: field, Message: "is not editable"})
			continue
		}
		switch field {
		case FieldName:
			if strings.TrimSpace(value) == "" {
				ve.Errors = append(ve.Errors, FieldError{Field: field, Message: "must not be empty"})
			}
		case FieldStatus:
			if !Status(value).IsValid() {
				ve.Errors = append(ve.Errors, FieldError{Field: field, Message: fmt.Sprintf("invalid value %q", value)})
			}
		case FieldEstimatedDelivery:
			if value == "" {
				continue
			}
			if _, err := time.Parse(DateLayout, value); err != nil {
				ve.Errors = append(ve.Errors, FieldError{Field: field, Message: fmt.Sprintf("must be a date (%s)", DateLayout)})
			}
		}
	}
	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// Apply validates d and writes it onto r.
func (d FieldDelta) Apply(r *ShipmentRequest) error {
	if err := ValidateDelta(d); err != nil {
		return err
	}
	for field, value := range d {
		switch field {
		case FieldName:
			r.Name = strings.TrimSpace(value)
		case FieldStatus:
			r.Status = Status(value)
		case FieldDestination:
			r.Destination = value
		case FieldEstimatedDelivery:
			if value == "" {
				r.EstimatedDelivery = nil
				continue
			}
			t, _ := time.Parse(DateLayout, value)
			r.EstimatedDelivery = &t
		}
	}
	return nil
}
