// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestBuildSearch_BindsEveryValue ensures user input only travels as arguments.
*/
func TestBuildSearch_BindsEveryValue(t *testing.T) {
	hostile := "'); DROP TABLE briefly.summaries; --"
	maxMinutes := 20

	clause := buildSearch(SearchFilter{
		Query:          hostile,
		Categories:     []string{"business", hostile},
		ReadingTimeMax: &maxMinutes,
		AudioOnly:      true,
		ExcludePremium: true,
	})

	assert.NotContains(t, clause.where, hostile)
	assert.NotContains(t, clause.rank, hostile)
	assert.NotContains(t, clause.where, "DROP")

	assert.Contains(t, clause.where, "websearch_to_tsquery('english', $1)")
	assert.Contains(t, clause.where, "= ANY($2)")
	assert.Contains(t, clause.where, "s.reading_time <= $3")
	assert.Contains(t, clause.where, "s.audio_url IS NOT NULL")
	assert.Contains(t, clause.where, "s.is_premium = FALSE")
	assert.Equal(t, "ts_rank(s.search_document, websearch_to_tsquery('english', $1))", clause.rank)

	assert.Equal(t, []any{hostile, []string{"business", hostile}, 20}, clause.args)
}

/*
TestBuildSearch_Defaults lists published rows only and ranks by recency.
*/
func TestBuildSearch_Defaults(t *testing.T) {
	clause := buildSearch(SearchFilter{Query: "   "})

	assert.Equal(t, "s.is_published = TRUE", clause.where)
	assert.Equal(t, "0", clause.rank)
	assert.Empty(t, clause.args)
}

/*
TestPreviewText cuts on characters, not bytes.
*/
func TestPreviewText(t *testing.T) {
	short := "Short body."
	assert.Equal(t, short, previewText(short))

	long := ""
	for i := 0; i < 300; i++ {
		long += "é"
	}
	preview := previewText(long)
	assert.Len(t, []rune(preview), 280)
}
