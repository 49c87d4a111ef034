// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/briefly/internal/platform/migration"
)

/*
TestToPgx5DSN checks the scheme rewrite expected by the pgx/v5 driver.
*/
func TestToPgx5DSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"postgres", "postgres://u:p@db:5432/briefly", "pgx5://u:p@db:5432/briefly"},
		{"postgresql", "postgresql://u:p@db/briefly?sslmode=disable", "pgx5://u:p@db/briefly?sslmode=disable"},
		{"already_pgx5", "pgx5://db/briefly", "pgx5://db/briefly"},
		{"keyword_dsn", "host=db dbname=briefly", "host=db dbname=briefly"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, migration.ToPgx5DSN(tt.in))
		})
	}
}
