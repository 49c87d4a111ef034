// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/briefly/internal/platform/middleware"
	requestutil "github.com/taibuivan/briefly/internal/platform/request"
	"github.com/taibuivan/briefly/internal/platform/respond"
	"github.com/taibuivan/briefly/pkg/query"
)

// Handler implements the reader library endpoints.
type Handler struct {
	libraryService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{libraryService: service}
}

// Routes returns the authenticated library routes, mounted at /library.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Put("/progress/{summaryID}", handler.putProgress)
	router.Get("/history", handler.listHistory)

	router.Post("/bookmarks/{summaryID}/toggle", handler.toggleBookmark)
	router.Get("/bookmarks", handler.listBookmarks)

	router.Route("/collections", func(r chi.Router) {
		r.Get("/", handler.listCollections)
		r.Post("/", handler.createCollection)
		r.Get("/{id}", handler.getCollection)
		r.Patch("/{id}", handler.updateCollection)
		r.Delete("/{id}", handler.deleteCollection)
		r.Put("/{id}/items/{summaryID}", handler.addItem)
		r.Delete("/{id}/items/{summaryID}", handler.removeItem)
	})

	return router
}

// PublicRoutes returns the shared collection lookup, mounted at /collections.
func (handler *Handler) PublicRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{id}", handler.getCollection)
	return router
}

// # Progress

/*
PUT /api/v1/library/progress/{summaryID}.

Request:
  - body: {"progress": 0..100}

Response:
  - 200: Progress
  - 400: Progress out of range
  - 404: Summary not found
*/
func (handler *Handler) putProgress(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ProgressInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	progress, err := handler.libraryService.RecordProgress(request.Context(), userID, requestutil.ID(request, "summaryID"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, progress)
}

// GET /api/v1/library/history?limit=.
func (handler *Handler) listHistory(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	limit := query.Int(request.URL.Query(), FieldLimit, defaultHistoryLimit)
	history, err := handler.libraryService.History(request.Context(), userID, limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, history)
}

// # Bookmarks

/*
POST /api/v1/library/bookmarks/{summaryID}/toggle.

Response:
  - 200: {"bookmarked": bool}
  - 404: Summary not found
*/
func (handler *Handler) toggleBookmark(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.libraryService.ToggleBookmark(request.Context(), userID, requestutil.ID(request, "summaryID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) listBookmarks(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookmarks, err := handler.libraryService.Bookmarks(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, bookmarks)
}

// # Collections

func (handler *Handler) listCollections(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	collections, err := handler.libraryService.Collections(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collections)
}

func (handler *Handler) createCollection(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CollectionInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.libraryService.CreateCollection(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, collection)
}

/*
GET /api/v1/library/collections/{id} and GET /api/v1/collections/{id}.

Response:
  - 200: Collection: With its items
  - 404: Missing, or private and not owned by the caller
*/
func (handler *Handler) getCollection(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var callerID string
	if claims := requestutil.Claims(request); claims != nil {
		callerID = claims.UserID
	}

	collection, err := handler.libraryService.Collection(request.Context(), callerID, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collection)
}

func (handler *Handler) updateCollection(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	id, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CollectionUpdate
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.libraryService.UpdateCollection(request.Context(), userID, id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collection)
}

func (handler *Handler) deleteCollection(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	id, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.libraryService.DeleteCollection(request.Context(), userID, id); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) addItem(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	id, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.libraryService.AddItem(request.Context(), userID, id, requestutil.ID(request, "summaryID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) removeItem(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	id, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.libraryService.RemoveItem(request.Context(), userID, id, requestutil.ID(request, "summaryID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
