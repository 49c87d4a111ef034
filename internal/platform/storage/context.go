// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	stdctx "context"
	"time"
)

// contextWithTimeout exists because the drivers name their context parameter
// "context", which shadows the package inside those functions.
func contextWithTimeout(parent stdctx.Context, timeout time.Duration) (stdctx.Context, stdctx.CancelFunc) {
	return stdctx.WithTimeout(parent, timeout)
}
