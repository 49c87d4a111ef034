// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package summary provides summaries of books, their key insights, search, and
the admin editing and narration endpoints.

# Routing Strategy

  - Public: reading is gated per summary by the entitlement rule.
  - Restricted: create, edit, publish and narrate require [sec.RoleAdmin].
*/
package summary

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/briefly/internal/platform/middleware"
	requestutil "github.com/taibuivan/briefly/internal/platform/request"
	"github.com/taibuivan/briefly/internal/platform/respond"
	"github.com/taibuivan/briefly/internal/platform/sec"
	"github.com/taibuivan/briefly/pkg/pagination"
	"github.com/taibuivan/briefly/pkg/query"
)

// Handler implements the HTTP layer for summaries.
type Handler struct {
	service *Service
}

// NewHandler constructs a summary [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the summary endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{id}", handler.getSummary)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Post("/", handler.createSummary)
		admin.Patch("/{id}", handler.updateSummary)
		admin.Delete("/{id}", handler.deleteSummary)
		admin.Post("/{id}/publish", handler.publish(true))
		admin.Post("/{id}/unpublish", handler.publish(false))
		admin.Post("/{id}/narrate", handler.narrate)
	})

	return router
}

// # Reading Endpoints

/*
GET /api/v1/summaries/{id}.

Response:
  - 200: Summary: With ordered key insights
  - 401: LOGIN_REQUIRED: Premium summary, anonymous caller
  - 402: SUBSCRIPTION_REQUIRED: Premium summary, no active subscription (with preview)
  - 404: Not found or unpublished
*/
func (handler *Handler) getSummary(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	summary, preview, err := handler.service.Read(request.Context(), requestutil.Claims(request), id)
	if err != nil {
		if preview != nil {
			respond.ErrorWithPreview(writer, request, err, preview)
			return
		}
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}

/*
ListForBook serves GET /api/v1/books/{id}/summaries.

Response:
  - 200: []Summary: Published summaries (admins also see drafts), bodies cut to a preview
*/
func (handler *Handler) ListForBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	summaries, err := handler.service.ListForBook(request.Context(), requestutil.Claims(request), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summaries)
}

/*
Search serves GET /api/v1/search.

Request:
  - q: string (websearch syntax)
  - categories: string (Comma separated slugs)
  - reading_time_max: int (Minutes)
  - audio_only: bool
  - include_premium: bool (Default true)
  - page, limit: int

Response:
  - 200: []Summary: Ranked, paginated
*/
func (handler *Handler) Search(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	params := request.URL.Query()

	filter := SearchFilter{
		Query:          params.Get("q"),
		Categories:     query.List(params, "categories"),
		ReadingTimeMax: query.OptionalInt(params, FieldReadingTimeMax),
		AudioOnly:      query.Bool(params, "audio_only", false),
		IncludePremium: query.Bool(params, "include_premium", true),
	}

	summaries, total, err := handler.service.Search(request.Context(), requestutil.Claims(request), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, summaries, paginationParams.Meta(total))
}

// # Admin Endpoints

/*
POST /api/v1/summaries.

Request:
  - body: CreateInput

Response:
  - 201: Summary: Unpublished
  - 400: Validation failed
*/
func (handler *Handler) createSummary(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	summary, err := handler.service.CreateSummary(request.Context(), requestutil.Claims(request), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, summary)
}

func (handler *Handler) updateSummary(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	summary, err := handler.service.UpdateSummary(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, summary)
}

func (handler *Handler) deleteSummary(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteSummary(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// publish returns the handler for POST /{id}/publish and /{id}/unpublish.
func (handler *Handler) publish(published bool) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, err := requestutil.UUIDParam(request, "id")
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		summary, err := handler.service.SetPublished(request.Context(), id, published)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, summary)
	}
}

/*
POST /api/v1/summaries/{id}/narrate.

Response:
  - 200: NarrationResult: With a NARRATION_FAILED warning when audio could not be produced
*/
func (handler *Handler) narrate(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Narrate(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

