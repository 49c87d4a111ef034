// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package query reads typed values out of a URL query string.

Filters are forgiving: a malformed value behaves exactly like an absent one,
so a typo in ?limit= degrades to the default instead of failing the request.
Handlers that must reject bad input validate through the validate package.
*/
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/taibuivan/briefly/pkg/slice"
)

// Int returns the integer under key, or fallback when absent or malformed.
func Int(values url.Values, key string, fallback int) int {
	if n := OptionalInt(values, key); n != nil {
		return *n
	}
	return fallback
}

// OptionalInt returns nil when key is absent or malformed.
func OptionalInt(values url.Values, key string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(values.Get(key)))
	if err != nil {
		return nil
	}
	return &n
}

// Bool accepts the [strconv.ParseBool] spellings ("1", "true", "false", ...).
func Bool(values url.Values, key string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(values.Get(key)))
	if err != nil {
		return fallback
	}
	return b
}

// List splits a comma-separated value into trimmed, lowercased, distinct
// entries. "Fiction, ,fiction,History" yields [fiction history].
func List(values url.Values, key string) []string {
	raw := values.Get(key)
	if raw == "" {
		return nil
	}

	entries := slice.Map(strings.Split(raw, ","), func(entry string) string {
		return strings.ToLower(strings.TrimSpace(entry))
	})
	return slice.Unique(slice.Filter(entries, func(entry string) bool { return entry != "" }))
}
