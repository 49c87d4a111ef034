// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package summary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/taibuivan/briefly/internal/platform/database/schema"
)

// searchClause is the WHERE clause, rank expression and bound arguments of a search.
type searchClause struct {
	where string
	rank  string
	args  []any
}

/*
buildSearch translates a filter into SQL fragments.

Description: User input only ever travels in args; the fragments contain
column names and $n placeholders, nothing else.
*/
func buildSearch(filter SearchFilter) searchClause {
	var (
		conditions = []string{fmt.Sprintf("s.%s = TRUE", schema.CoreSummary.IsPublished)}
		args       []any
		rank       = "0"
	)

	bind := func(value any) string {
		args = append(args, value)
		return "$" + strconv.Itoa(len(args))
	}

	// 1. Full text
	if query := strings.TrimSpace(filter.Query); query != "" {
		tsQuery := fmt.Sprintf("websearch_to_tsquery('english', %s)", bind(query))
		conditions = append(conditions, fmt.Sprintf("s.%s @@ %s", schema.CoreSummary.SearchDocument, tsQuery))
		rank = fmt.Sprintf("ts_rank(s.%s, %s)", schema.CoreSummary.SearchDocument, tsQuery)
	}

	// 2. Categories (any of)
	if len(filter.Categories) > 0 {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM %s bc JOIN %s c ON c.%s = bc.%s
			WHERE bc.%s = s.%s AND c.%s = ANY(%s)
		)`,
			schema.CoreBookCategory.Table, schema.CoreCategory.Table, schema.CoreCategory.ID, schema.CoreBookCategory.CategoryID,
			schema.CoreBookCategory.BookID, schema.CoreSummary.BookID, schema.CoreCategory.Slug, bind(filter.Categories),
		))
	}

	// 3. Reading time ceiling
	if filter.ReadingTimeMax != nil {
		conditions = append(conditions, fmt.Sprintf("s.%s <= %s", schema.CoreSummary.ReadingTime, bind(*filter.ReadingTimeMax)))
	}

	// 4. Narrated only
	if filter.AudioOnly {
		conditions = append(conditions, fmt.Sprintf("s.%s IS NOT NULL", schema.CoreSummary.AudioURL))
	}

	// 5. Premium visibility
	if filter.ExcludePremium {
		conditions = append(conditions, fmt.Sprintf("s.%s = FALSE", schema.CoreSummary.IsPremium))
	}

	return searchClause{
		where: strings.Join(conditions, " AND "),
		rank:  rank,
		args:  args,
	}
}
