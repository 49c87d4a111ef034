// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond writes the Briefly JSON envelopes.
//
// Successful responses are {"data": ...}, with a "meta" block for paginated
// lists. Failures are {"error", "code", "details"?, "preview"?}; the preview
// carries the teaser of a summary the caller is not entitled to read.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/ctxutil"
	"github.com/taibuivan/briefly/pkg/pagination"
)

const contentType = "application/json; charset=utf-8"

type envelope struct {
	Data any              `json:"data"`
	Meta *pagination.Meta `json:"meta,omitempty"`
}

type failure struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
	Preview any                 `json:"preview,omitempty"`
}

// # Success

// JSON encodes payload as-is. Handlers normally use the enveloped helpers.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", contentType)
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

func OK(writer http.ResponseWriter, data any) {
	Status(writer, http.StatusOK, data)
}

func Created(writer http.ResponseWriter, data any) {
	Status(writer, http.StatusCreated, data)
}

// Status wraps data in the success envelope under an explicit status, e.g.
// 503 for a degraded readiness probe.
func Status(writer http.ResponseWriter, statusCode int, data any) {
	JSON(writer, statusCode, envelope{Data: data})
}

func Paginated(writer http.ResponseWriter, data any, meta pagination.Meta) {
	JSON(writer, http.StatusOK, envelope{Data: data, Meta: &meta})
}

func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// # Failure

// Error renders err. Anything that is not an [apperr.AppError] is reported
// as INTERNAL_ERROR and its text never reaches the client.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	ErrorWithPreview(writer, request, err, nil)
}

// ErrorWithPreview renders err like [Error] and attaches preview, used for
// premium summaries a free reader may only glimpse.
func ErrorWithPreview(writer http.ResponseWriter, request *http.Request, err error, preview any) {
	appError := classify(request, err)

	JSON(writer, appError.HTTPStatus, failure{
		Error:   appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
		Preview: preview,
	})
}

func classify(request *http.Request, err error) *apperr.AppError {
	context := request.Context()
	logger := ctxutil.GetLogger(context).With(slog.String("request_id", ctxutil.GetRequestID(context)))

	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		logger.ErrorContext(context, "unhandled_error_swallowed", slog.String("error", err.Error()))
		return apperr.Internal(err)
	}

	if appError.HTTPStatus >= http.StatusInternalServerError {
		logger.ErrorContext(context, "api_server_error",
			slog.String("code", appError.Code),
			slog.Any("cause", appError.Cause),
		)
	}
	return appError
}
