// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/briefly/pkg/pagination"
)

/*
TestNewMeta covers page counting and the has_more flag.
*/
func TestNewMeta(t *testing.T) {
	meta := pagination.NewMeta(1, 20, 45)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasMore)

	last := pagination.NewMeta(3, 20, 45)
	assert.False(t, last.HasMore)

	empty := pagination.NewMeta(1, 20, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasMore)
}

/*
TestFromRequest verifies the defaults and the limit cap.
*/
func TestFromRequest(t *testing.T) {
	params := pagination.FromRequest(httptest.NewRequest("GET", "/search?page=3&limit=10", nil))
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, 20, params.Offset())

	capped := pagination.FromRequest(httptest.NewRequest("GET", "/search?page=-1&limit=5000", nil))
	assert.Equal(t, pagination.DefaultPage, capped.Page)
	assert.Equal(t, pagination.MaxLimit, capped.Limit)

	garbage := pagination.FromRequest(httptest.NewRequest("GET", "/books?page=two&limit=0", nil))
	assert.Equal(t, pagination.Params{Page: pagination.DefaultPage, Limit: pagination.DefaultLimit}, garbage)
}

/*
TestParams_Meta checks that the metadata echoes the parsed parameters.
*/
func TestParams_Meta(t *testing.T) {
	meta := pagination.Params{Page: 2, Limit: 10}.Meta(25)
	assert.Equal(t, pagination.Meta{Page: 2, Limit: 10, Total: 25, TotalPages: 3, HasMore: true}, meta)
}
