// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr

// # Partial Failures

const (
	WarnCoverUploadFailed  = "COVER_UPLOAD_FAILED"
	WarnNarrationFailed    = "NARRATION_FAILED"
	WarnQueuePublishFailed = "QUEUE_PUBLISH_FAILED"
)

// Warning reports a best-effort step that failed while the operation as a
// whole succeeded. It is returned next to the result, never instead of it.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Warnings accumulates [Warning] values. The zero value is ready to use and
// always marshals as an array.
type Warnings []Warning

// Add appends a warning with the given code and message.
func (warnings *Warnings) Add(code, message string) {
	*warnings = append(*warnings, Warning{Code: code, Message: message})
}

// Has reports whether a warning with code was recorded.
func (warnings Warnings) Has(code string) bool {
	for _, warning := range warnings {
		if warning.Code == code {
			return true
		}
	}
	return false
}

// OrEmpty returns a non-nil slice so JSON output is [] rather than null.
func (warnings Warnings) OrEmpty() Warnings {
	if warnings == nil {
		return Warnings{}
	}
	return warnings
}
