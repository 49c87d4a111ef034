// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/briefly/pkg/pointer"
)

/*
TestBlank covers the optional-text shapes a PATCH payload can carry.
*/
func TestBlank(t *testing.T) {
	assert.True(t, pointer.Blank(nil))
	assert.True(t, pointer.Blank(pointer.To("")))
	assert.True(t, pointer.Blank(pointer.To(" \n\t")))
	assert.False(t, pointer.Blank(pointer.To("Atomic Habits")))
}

/*
TestFallback checks defaulting of an omitted reading time.
*/
func TestFallback(t *testing.T) {
	assert.Equal(t, 15, pointer.Fallback[int](nil, 15))
	assert.Equal(t, 30, pointer.Fallback(pointer.To(30), 15))
	assert.Equal(t, 0, pointer.Val[int](nil))
}
