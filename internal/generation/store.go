// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generation

import (
	"context"

	"github.com/taibuivan/briefly/internal/core/summary"
)

// Repository defines the data access contract for generation requests.
type Repository interface {
	Create(context context.Context, request *Request) error
	FindByID(context context.Context, id string) (*Request, error)

	// List filters by status when it is non-empty, newest first.
	List(context context.Context, status Status, limit, offset int) ([]*Request, int, error)

	/*
		ClaimPending moves the oldest pending request to processing.

		Description: An empty bookID claims across all books. Rows locked by
		another worker are skipped, so two workers never claim the same row.

		Returns:
		  - *Request: The claimed request, or nil when nothing is pending
		  - error: Database failures
	*/
	ClaimPending(context context.Context, bookID string) (*Request, error)

	/*
		Complete inserts the summary with its insights and marks the request
		completed, all in one transaction. It fails without writing anything
		when the request is no longer processing.
	*/
	Complete(context context.Context, requestID string, result *summary.Summary) error

	// Fail records message on a processing request.
	Fail(context context.Context, requestID, message string) error
}
