// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book provides the catalogue of books and the admin content mutator.

# Routing Strategy

  - Public: browsing and detail lookups (GET /books).
  - Restricted: create, update and delete require [sec.RoleAdmin].

Creation accepts either a JSON body or a multipart form carrying the same
fields plus an optional "cover" image part.
*/
package book

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/briefly/internal/platform/constants"
	"github.com/taibuivan/briefly/internal/platform/middleware"
	requestutil "github.com/taibuivan/briefly/internal/platform/request"
	"github.com/taibuivan/briefly/internal/platform/respond"
	"github.com/taibuivan/briefly/internal/platform/sec"
	"github.com/taibuivan/briefly/internal/platform/validate"
	"github.com/taibuivan/briefly/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for the book catalogue.
type Handler struct {
	service   *Service
	summaries http.HandlerFunc
}

// NewHandler constructs a book [Handler]. summaries serves
// GET /books/{id}/summaries and may be nil.
func NewHandler(service *Service, summaries http.HandlerFunc) *Handler {
	return &Handler{service: service, summaries: summaries}
}

// Routes returns a [chi.Router] configured with the book endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery Endpoints
	router.Get("/", handler.listBooks)
	router.Get("/{id}", handler.getBook)
	if handler.summaries != nil {
		router.Get("/{id}/summaries", handler.summaries)
	}

	// ## Content Management (Admin Protected)
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Post("/", handler.createBook)
		admin.Patch("/{id}", handler.updateBook)
		admin.Delete("/{id}", handler.deleteBook)
	})

	return router
}

// # Book Endpoints

/*
GET /api/v1/books.

Request:
  - q: string (Title or author substring)
  - category: string (Category slug)
  - page, limit: int

Response:
  - 200: []Book: Paginated list of books
*/
func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query:        queryParams.Get("q"),
		CategorySlug: queryParams.Get("category"),
	}

	books, total, err := handler.service.ListBooks(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, paginationParams.Meta(total))
}

/*
GET /api/v1/books/{id}.

Response:
  - 200: Book: Joined with author name and categories
  - 404: Book not found
*/
func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.GetBook(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}

/*
POST /api/v1/books.

Description: Creates a book. Best-effort steps that fail (the cover upload) are
reported in "warnings" while the response stays 201.

Request:
  - application/json: CreateInput
  - multipart/form-data: CreateInput fields plus a "cover" file part

Response:
  - 201: CreateResult: {book, warnings}
  - 400: VALIDATION_ERROR
  - 422: CATEGORY_LINK_FAILED
*/
func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	var (
		input CreateInput
		cover *Cover
		err   error
	)

	if requestutil.IsMultipart(request) {
		input, cover, err = decodeMultipart(request)
	} else {
		err = requestutil.DecodeJSON(request, &input)
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.CreateBook(request.Context(), input, cover)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, result)
}

func (handler *Handler) updateBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.UpdateBook(request.Context(), bookID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}

func (handler *Handler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.UUIDParam(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteBook(request.Context(), bookID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Request Payloads

// decodeMultipart maps form fields onto [CreateInput] and reads the cover part.
func decodeMultipart(request *http.Request) (CreateInput, *Cover, error) {
	var input CreateInput

	values, err := requestutil.FormValues(request, constants.MaxCoverBytes+1<<20,
		FieldTitle, FieldDescription, FieldAuthorName, FieldPublishedYear, FieldISBN,
		FieldLanguage, FieldPageCount, FieldCoverImageURL, FieldCategoryIDs,
	)
	if err != nil {
		return input, nil, err
	}

	input.Title = values.Get(FieldTitle)
	input.Language = values.Get(FieldLanguage)
	input.Description = optionalString(values.Get(FieldDescription))
	input.AuthorName = optionalString(values.Get(FieldAuthorName))
	input.ISBN = optionalString(values.Get(FieldISBN))
	input.CoverImageURL = optionalString(values.Get(FieldCoverImageURL))

	if input.PublishedYear, err = optionalInt(FieldPublishedYear, values.Get(FieldPublishedYear)); err != nil {
		return input, nil, err
	}
	if input.PageCount, err = optionalInt(FieldPageCount, values.Get(FieldPageCount)); err != nil {
		return input, nil, err
	}

	// Both repeated fields and a single comma separated value are accepted.
	for _, raw := range values[FieldCategoryIDs] {
		input.CategoryIDs = append(input.CategoryIDs, strings.Split(raw, ",")...)
	}

	upload, err := requestutil.FormFile(request, FieldCover, constants.MaxCoverBytes)
	if err != nil || upload == nil {
		return input, nil, err
	}

	return input, &Cover{Filename: upload.Filename, ContentType: upload.ContentType, Data: upload.Data}, nil
}

func optionalString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func optionalInt(field, value string) (*int, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil, validate.RequiredError(field, "Must be a whole number")
	}
	return &parsed, nil
}
