// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/briefly/internal/platform/middleware"
	requestutil "github.com/taibuivan/briefly/internal/platform/request"
	"github.com/taibuivan/briefly/internal/platform/respond"
	"github.com/taibuivan/briefly/internal/platform/sec"
	"github.com/taibuivan/briefly/pkg/pagination"
)

// Handler implements the admin generation endpoints.
type Handler struct {
	generationService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{generationService: service}
}

// Routes returns the admin-only routes, mounted at /admin/generation-requests.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(sec.RoleAdmin))

	router.Post("/", handler.createRequest)
	router.Get("/", handler.listRequests)
	router.Get("/{id}", handler.getRequest)

	return router
}

/*
POST /api/v1/admin/generation-requests.

Request:
  - body: CreateInput

Response:
  - 201: CreateResult: The pending request with warnings
  - 400: Validation failed
  - 404: Book not found
*/
func (handler *Handler) createRequest(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.generationService.CreateRequest(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, result)
}

// GET /api/v1/admin/generation-requests?status=&page=&limit=.
func (handler *Handler) listRequests(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	status := Status(request.URL.Query().Get(FieldStatus))

	requests, total, err := handler.generationService.ListRequests(request.Context(), status, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, requests, params.Meta(total))
}

func (handler *Handler) getRequest(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	generation, err := handler.generationService.GetRequest(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, generation)
}
