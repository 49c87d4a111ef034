// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate collects field-level failures and reports them as one
// VALIDATION_ERROR.
//
// Services validate their inputs; repositories trust what they are given.
//
//	validator := &validate.Validator{}
//	validator.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, 300)
//	if err := validator.Err(); err != nil {
//		return nil, err
//	}
//
// A Validator is single-use and not safe for concurrent use.
package validate

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/pkg/slug"
	"github.com/taibuivan/briefly/pkg/uuid"
)

const summaryMessage = "Validation failed"

// ErrInvalidJSON is returned when a request body cannot be decoded.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

type Validator struct {
	errs []apperr.FieldError
}

// # Strings

// Required rejects empty and whitespace-only values.
func (v *Validator) Required(field, value string) *Validator {
	return v.check(field, strings.TrimSpace(value) == "", "This field is required")
}

// MinLen counts runes, not bytes.
func (v *Validator) MinLen(field, value string, limit int) *Validator {
	return v.check(field, utf8.RuneCountInString(value) < limit, fmt.Sprintf("Minimum %d characters", limit))
}

// MaxLen counts runes, not bytes.
func (v *Validator) MaxLen(field, value string, limit int) *Validator {
	return v.check(field, utf8.RuneCountInString(value) > limit, fmt.Sprintf("Maximum %d characters", limit))
}

// Slug accepts only values already in the form [slug.From] produces:
// lowercase ASCII letters and digits in hyphen-separated runs.
func (v *Validator) Slug(field, value string) *Validator {
	return v.check(field, value == "" || slug.From(value) != value,
		"Must be a valid URL slug (lowercase letters, digits, hyphens only)")
}

// UUID accepts the canonical 36-character form only; ids are passed straight
// into ::uuid casts and the braced or urn forms are refused up front.
func (v *Validator) UUID(field, value string) *Validator {
	return v.check(field, !uuid.Valid(value), "Must be a valid UUID")
}

// URL accepts absolute http and https URLs.
func (v *Validator) URL(field, value string) *Validator {
	parsed, err := url.Parse(value)
	invalid := err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https")
	return v.check(field, invalid, "Must be a valid http(s) URL")
}

// # Numbers

// Range is inclusive on both ends.
func (v *Validator) Range(field string, value, low, high int) *Validator {
	return v.check(field, value < low || value > high, fmt.Sprintf("Must be between %d and %d", low, high))
}

// Between is the float form of [Validator.Range]. Out-of-range values are
// rejected, never clamped.
func (v *Validator) Between(field string, value, low, high float64) *Validator {
	return v.check(field, value < low || value > high, fmt.Sprintf("Must be between %g and %g", low, high))
}

// # Results

// Custom records message when failed is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	return v.check(field, failed, message)
}

func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Err returns nil when every rule passed.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return apperr.ValidationError(summaryMessage, v.errs...)
}

func (v *Validator) check(field string, failed bool, message string) *Validator {
	if failed {
		v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
	}
	return v
}

// RequiredError builds a single-field validation failure without a chain.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError(summaryMessage, apperr.FieldError{Field: field, Message: message})
}
