// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer helps with the optional fields of Briefly's payloads.

PATCH inputs use nil for "leave unchanged", so services constantly build,
read and default pointers. Key Functions:
  - To: Creates a pointer from a value literal.
  - Val / Fallback: Dereference with the zero value or a default.
  - Blank: Reports whether an optional string carries no text.
*/
package pointer

import "strings"

// To returns a pointer to v, e.g. pointer.To(15) for a reading time.
func To[T any](v T) *T {
	return &v
}

// Val dereferences p, returning the zero value when p is nil.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Fallback dereferences p, returning fallback when p is nil.
func Fallback[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// Blank reports whether p is nil or holds only whitespace.
func Blank(p *string) bool {
	return p == nil || strings.TrimSpace(*p) == ""
}
