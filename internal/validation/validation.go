// Package validation schema-checks request bodies before authorization and
// handlers run. Every violation is collected, not just the first, and
// reported as a 400 with field-level detail. The validator never touches
// the store.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/waterline/internal/apperr"
)

// FieldType enumerates the value kinds a schema field can declare.
type FieldType int

const (
	TypeString FieldType = iota
	TypeNumber
	TypeInteger
	TypeBool
	TypeUUID
	TypeDate
	TypeArray
)

// Field declares the constraints for one request-body key.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	MinLen   int
	MaxLen   int
	Min      *float64
	Pattern  *regexp.Regexp
	Enum     []string
	Items    *Schema // element schema for TypeArray
}

// Schema is the static declarative shape of one resource's request body.
// MinFields rejects bodies that carry none of the declared keys; unknown
// keys are always rejected.
type Schema struct {
	Fields    []Field
	MinFields int
}

// MinValue is a convenience for Field.Min literals.
func MinValue(v float64) *float64 {
	return &v
}

// Check validates data against the schema. Required constraints are only
// enforced when enforceRequired is set (creates, not partial updates).
func (s *Schema) Check(data map[string]interface{}, enforceRequired bool) []apperr.FieldError {
	return s.check(data, enforceRequired, "")
}

func (s *Schema) check(data map[string]interface{}, enforceRequired bool, prefix string) []apperr.FieldError {
	var errs []apperr.FieldError

	known := make(map[string]Field, len(s.Fields))
	for _, f := range s.Fields {
		known[f.Name] = f
	}

	for key := range data {
		if _, ok := known[key]; !ok {
			errs = append(errs, apperr.FieldError{Field: prefix + key, Message: "is not allowed"})
		}
	}

	seen := 0
	for _, f := range s.Fields {
		value, present := data[f.Name]
		if !present || value == nil {
			if f.Required && enforceRequired {
				errs = append(errs, apperr.FieldError{Field: prefix + f.Name, Message: "is required"})
			}
			continue
		}
		seen++
		errs = append(errs, f.checkValue(value, enforceRequired, prefix)...)
	}

	if seen < s.MinFields {
		errs = append(errs, apperr.FieldError{Field: prefix + "body", Message: "must have at least 1 field"})
	}

	return errs
}

func (f Field) checkValue(value interface{}, enforceRequired bool, prefix string) []apperr.FieldError {
	name := prefix + f.Name

	fail := func(message string) []apperr.FieldError {
		return []apperr.FieldError{{Field: name, Message: message}}
	}

	switch f.Type {
	case TypeString:
		str, ok := value.(string)
		if !ok {
			return fail("must be a string")
		}
		var errs []apperr.FieldError
		if f.MinLen > 0 && len(str) < f.MinLen {
			errs = append(errs, apperr.FieldError{Field: name, Message: fmt.Sprintf("length must be at least %d", f.MinLen)})
		}
		if f.MaxLen > 0 && len(str) > f.MaxLen {
			errs = append(errs, apperr.FieldError{Field: name, Message: fmt.Sprintf("length must be at most %d", f.MaxLen)})
		}
		if f.Pattern != nil && !f.Pattern.MatchString(str) {
			errs = append(errs, apperr.FieldError{Field: name, Message: "has an invalid format"})
		}
		if len(f.Enum) > 0 && !contains(f.Enum, str) {
			errs = append(errs, apperr.FieldError{Field: name, Message: fmt.Sprintf("must be one of %v", f.Enum)})
		}
		return errs

	case TypeNumber, TypeInteger:
		num, ok := value.(float64)
		if !ok {
			return fail("must be a number")
		}
		var errs []apperr.FieldError
		if f.Type == TypeInteger && num != math.Trunc(num) {
			errs = append(errs, apperr.FieldError{Field: name, Message: "must be an integer"})
		}
		if f.Min != nil && num < *f.Min {
			errs = append(errs, apperr.FieldError{Field: name, Message: fmt.Sprintf("must be at least %v", *f.Min)})
		}
		return errs

	case TypeBool:
		if _, ok := value.(bool); !ok {
			return fail("must be a boolean")
		}
		return nil

	case TypeUUID:
		str, ok := value.(string)
		if !ok {
			return fail("must be a string")
		}
		if _, err := uuid.Parse(str); err != nil {
			return fail("must be a valid id")
		}
		return nil

	case TypeDate:
		str, ok := value.(string)
		if !ok {
			return fail("must be a string")
		}
		if _, err := time.Parse(time.RFC3339, str); err != nil {
			return fail("must be an RFC3339 date")
		}
		return nil

	case TypeArray:
		list, ok := value.([]interface{})
		if !ok {
			return fail("must be an array")
		}
		var errs []apperr.FieldError
		for i, element := range list {
			obj, ok := element.(map[string]interface{})
			if !ok {
				errs = append(errs, apperr.FieldError{Field: fmt.Sprintf("%s.%d", name, i), Message: "must be an object"})
				continue
			}
			if f.Items != nil {
				errs = append(errs, f.Items.check(obj, enforceRequired, fmt.Sprintf("%s.%d.", name, i))...)
			}
		}
		return errs
	}

	return nil
}

// Body returns middleware that validates a create payload, enforcing
// required fields.
func Body(schema *Schema) fiber.Handler {
	return middleware(schema, true)
}

// Partial returns middleware that validates a partial-update payload.
// Required constraints are skipped; at least one declared field must be
// present.
func Partial(schema *Schema) fiber.Handler {
	return middleware(schema, false)
}

func middleware(schema *Schema, enforceRequired bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var data map[string]interface{}
		if err := json.Unmarshal(c.Body(), &data); err != nil {
			return apperr.BadRequest("invalid request body")
		}

		if errs := schema.Check(data, enforceRequired); len(errs) > 0 {
			return apperr.Validation(errs)
		}

		return c.Next()
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
