// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/ctxutil"
	"github.com/taibuivan/briefly/internal/platform/sec"
	"github.com/taibuivan/briefly/internal/platform/validate"
)

// maxJSONBytes bounds every JSON request body.
const maxJSONBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Description: Unknown fields are rejected so that a typo in a PATCH payload is
reported instead of silently ignored. Trailing data after the object is an error.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON (with the offending field when known), otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(request.Body, maxJSONBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		if field, ok := unknownField(err); ok {
			return validate.RequiredError(field, "Unknown field")
		}

		var typeError *json.UnmarshalTypeError
		if errors.As(err, &typeError) && typeError.Field != "" {
			return validate.RequiredError(typeError.Field, fmt.Sprintf("Must be of type %s", typeError.Type))
		}
		return validate.ErrInvalidJSON
	}

	if decoder.More() {
		return validate.ErrInvalidJSON
	}
	return nil
}

// unknownField extracts the field name from encoding/json's unknown field error.
func unknownField(err error) (string, bool) {
	const prefix = "json: unknown field "
	message := err.Error()
	if !strings.HasPrefix(message, prefix) {
		return "", false
	}
	return strings.Trim(strings.TrimPrefix(message, prefix), `"`), true
}

/*
FormFile reads a single multipart file part into memory.

Parameters:
  - request: *http.Request (already parsed or parseable as multipart/form-data)
  - field: string (Form field name)
  - maxBytes: int64 (Upper bound on the file size)

Returns:
  - *Upload: nil when the part is absent
  - error: apperr.ValidationError when the part is too large or unreadable
*/
func FormFile(request *http.Request, field string, maxBytes int64) (*Upload, error) {
	if request.MultipartForm == nil {
		if err := request.ParseMultipartForm(maxBytes + 1<<20); err != nil {
			return nil, validate.RequiredError(field, "Invalid multipart payload")
		}
	}

	file, header, err := request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, validate.RequiredError(field, "Unreadable file")
	}
	defer file.Close()

	return readUpload(file, header, field, maxBytes)
}

// Upload is an in-memory file part.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Reader returns a fresh reader over the upload bytes.
func (upload *Upload) Reader() io.Reader {
	return bytes.NewReader(upload.Data)
}

// Size returns the upload length in bytes.
func (upload *Upload) Size() int64 {
	return int64(len(upload.Data))
}

func readUpload(file multipart.File, header *multipart.FileHeader, field string, maxBytes int64) (*Upload, error) {
	if header.Size > maxBytes {
		return nil, validate.RequiredError(field, fmt.Sprintf("File exceeds %d bytes", maxBytes))
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, validate.RequiredError(field, "Unreadable file")
	}
	if int64(len(data)) > maxBytes {
		return nil, validate.RequiredError(field, fmt.Sprintf("File exceeds %d bytes", maxBytes))
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return &Upload{Filename: header.Filename, ContentType: contentType, Data: data}, nil
}

/*
FormValues parses a multipart form and returns its text fields.

Description: Any field outside allowed is rejected, mirroring [DecodeJSON]'s
unknown field policy. File parts are not included.

Parameters:
  - request: *http.Request
  - maxBytes: int64 (Upper bound on the whole form kept in memory)
  - allowed: ...string (Accepted text field names)

Returns:
  - url.Values: The parsed fields
  - error: apperr.ValidationError on unknown fields or unparseable bodies
*/
func FormValues(request *http.Request, maxBytes int64, allowed ...string) (url.Values, error) {
	if request.MultipartForm == nil {
		if err := request.ParseMultipartForm(maxBytes); err != nil {
			return nil, apperr.ValidationError("Invalid multipart payload")
		}
	}

	accepted := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		accepted[name] = struct{}{}
	}

	for name := range request.MultipartForm.Value {
		if _, ok := accepted[name]; !ok {
			return nil, validate.RequiredError(name, "Unknown field")
		}
	}
	return url.Values(request.MultipartForm.Value), nil
}

// IsMultipart reports whether the request carries a multipart/form-data body.
func IsMultipart(request *http.Request) bool {
	return strings.HasPrefix(request.Header.Get("Content-Type"), "multipart/form-data")
}

/*
ID retrieves a named URL parameter (UUID/Slug) from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
UUIDParam retrieves a named URL parameter and checks that it is a UUID.

Returns:
  - string: The lowercase identifier
  - error: apperr.ValidationError when malformed
*/
func UUIDParam(request *http.Request, name string) (string, error) {
	value := strings.ToLower(chi.URLParam(request, name))
	if err := (&validate.Validator{}).UUID(name, value).Err(); err != nil {
		return "", err
	}
	return value, nil
}

/*
Claims extracts the authenticated user claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - *sec.AuthClaims: The authenticated user claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

/*
RequiredUserID returns the User ID of the currently logged-in user.

Returns:
  - string: User UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
