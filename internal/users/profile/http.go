// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/briefly/internal/platform/constants"
	"github.com/taibuivan/briefly/internal/platform/middleware"
	requestutil "github.com/taibuivan/briefly/internal/platform/request"
	"github.com/taibuivan/briefly/internal/platform/respond"
	"github.com/taibuivan/briefly/internal/platform/validate"
)

// Handler implements the profile endpoints.
type Handler struct {
	profileService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{profileService: service}
}

// Routes returns the caller's own profile routes, mounted at /me.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", handler.getMe)
		r.Patch("/", handler.updateMe)
		r.Put("/avatar", handler.putAvatar)
	})

	return router
}

// PublicRoutes returns the read-only profile lookups, mounted at /profiles.
func (handler *Handler) PublicRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{username}", handler.getByUsername)
	return router
}

/*
GET /api/v1/me.

Response:
  - 200: Profile: Created on first access
  - 401: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.profileService.GetProfile(request.Context(), claims.UserID, claims.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

/*
PATCH /api/v1/me.

Request:
  - body: UpdateInput (Partial JSON, unknown fields rejected)

Response:
  - 200: Profile: The updated profile
  - 400: Validation failed
  - 409: Username taken
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.profileService.UpdateProfile(request.Context(), claims.UserID, claims.Email, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

/*
PUT /api/v1/me/avatar.

Request:
  - file: multipart image part (max 2 MiB)

Response:
  - 200: Profile: With the new avatar_url
  - 503: Object storage unavailable
*/
func (handler *Handler) putAvatar(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	upload, err := requestutil.FormFile(request, FieldFile, constants.MaxAvatarBytes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if upload == nil {
		respond.Error(writer, request, validate.RequiredError(FieldFile, "An image file is required"))
		return
	}

	profile, err := handler.profileService.SetAvatar(request.Context(), claims.UserID, claims.Email, &Avatar{
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		Data:        upload.Data,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

/*
GET /api/v1/profiles/{username}.

Response:
  - 200: Profile: Without preferences
  - 404: Profile not found
*/
func (handler *Handler) getByUsername(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.profileService.GetPublicProfile(request.Context(), requestutil.ID(request, "username"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}
