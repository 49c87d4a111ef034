// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package billing provides plans, subscription status and the payment relay.

# Routing Strategy

  - Public: plan listing and the provider webhook (signature-verified).
  - Private: status, checkout and cancellation require an authenticated caller.
*/
package billing

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/constants"
	"github.com/taibuivan/briefly/internal/platform/middleware"
	requestutil "github.com/taibuivan/briefly/internal/platform/request"
	"github.com/taibuivan/briefly/internal/platform/respond"
)

// Handler implements the HTTP layer for billing.
type Handler struct {
	service *Service
}

// NewHandler constructs a billing [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the billing endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/plans", handler.listPlans)
	router.Post("/webhook", handler.webhook)

	router.Group(func(private chi.Router) {
		private.Use(middleware.RequireAuth)

		private.Get("/subscription", handler.subscription)
		private.Post("/checkout", handler.checkout)
		private.Post("/cancel", handler.cancel)
	})

	return router
}

/*
GET /api/v1/billing/plans.

Response:
  - 200: []Plan: Active plans, prices in cents
*/
func (handler *Handler) listPlans(writer http.ResponseWriter, request *http.Request) {
	plans, err := handler.service.ListPlans(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, plans)
}

/*
GET /api/v1/billing/subscription.

Response:
  - 200: Status: Derived subscription status of the caller
*/
func (handler *Handler) subscription(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	status, err := handler.service.Status(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, status)
}

/*
POST /api/v1/billing/checkout.

Request:
  - plan_id: string (UUID)
  - yearly: bool

Response:
  - 200: CheckoutSession: Hosted checkout URL
  - 404: Plan not found or inactive
  - 503: Payment provider unavailable
*/
func (handler *Handler) checkout(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CheckoutInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.CreateCheckout(request.Context(), claims, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, session)
}

/*
POST /api/v1/billing/cancel.

Response:
  - 200: Status: Status after scheduling cancellation
  - 404: No active subscription
*/
func (handler *Handler) cancel(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	status, err := handler.service.CancelSubscription(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, status)
}

/*
POST /api/v1/billing/webhook.

Description: The raw body is read unmodified; signature verification is
computed over the exact bytes the provider sent.

Response:
  - 200: WebhookResult: {received, duplicate}
  - 400: Missing or invalid signature
*/
func (handler *Handler) webhook(writer http.ResponseWriter, request *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(writer, request.Body, constants.MaxWebhookBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(writer, request, apperr.ValidationError("Webhook payload too large"))
			return
		}
		respond.Error(writer, request, apperr.ValidationError("Unreadable webhook payload"))
		return
	}

	result, err := handler.service.HandleWebhook(request.Context(), payload, request.Header.Get(constants.HeaderStripeSignature))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}
