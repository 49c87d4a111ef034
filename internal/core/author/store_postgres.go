// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/briefly/internal/platform/database/schema"
	"github.com/taibuivan/briefly/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new author repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var selectColumns = strings.Join(schema.CoreAuthor.Columns(), ", ")

func scanAuthor(row pgx.Row) (*Author, error) {
	a := &Author{}
	err := row.Scan(&a.ID, &a.Name, &a.Bio, &a.ImageURL, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Author, int, error) {
	where := ""
	args := []any{}

	if filter.Query != "" {
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		where = fmt.Sprintf(" WHERE %s ILIKE $1", schema.CoreAuthor.Name)
	}

	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s%s`, schema.CoreAuthor.Table, where)

	var total int
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_authors")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY %s ASC LIMIT $%s OFFSET $%s`,
		selectColumns, schema.CoreAuthor.Table, where, schema.CoreAuthor.Name,
		itos(len(args)+1), itos(len(args)+2),
	)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_authors")
	}
	defer rows.Close()

	authors := []*Author{}
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_author")
		}
		authors = append(authors, a)
	}

	return authors, total, dberr.Wrap(rows.Err(), "list_authors")
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Author, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns, schema.CoreAuthor.Table, schema.CoreAuthor.ID,
	)

	a, err := scanAuthor(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.NotFoundAs(err, "Author", "get_author")
	}
	return a, nil
}

func (repository *PostgresRepository) FindByName(context context.Context, name string) (*Author, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(%s) = lower($1) ORDER BY %s ASC LIMIT 1`,
		selectColumns, schema.CoreAuthor.Table, schema.CoreAuthor.Name, schema.CoreAuthor.CreatedAt,
	)

	a, err := scanAuthor(repository.db.QueryRow(context, query, name))
	if err != nil {
		return nil, dberr.NotFoundAs(err, "Author", "find_author_by_name")
	}
	return a, nil
}

func (repository *PostgresRepository) Create(context context.Context, a *Author) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING %s, %s
	`,
		schema.CoreAuthor.Table, schema.CoreAuthor.ID, schema.CoreAuthor.Name, schema.CoreAuthor.Bio,
		schema.CoreAuthor.ImageURL, schema.CoreAuthor.CreatedAt, schema.CoreAuthor.UpdatedAt,
		schema.CoreAuthor.CreatedAt, schema.CoreAuthor.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, a.ID, a.Name, a.Bio, a.ImageURL).Scan(&a.CreatedAt, &a.UpdatedAt)
	return dberr.Wrap(err, "create_author")
}

func (repository *PostgresRepository) Update(context context.Context, a *Author) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1
		RETURNING %s, %s
	`,
		schema.CoreAuthor.Table, schema.CoreAuthor.Name, schema.CoreAuthor.Bio,
		schema.CoreAuthor.ImageURL, schema.CoreAuthor.UpdatedAt, schema.CoreAuthor.ID,
		schema.CoreAuthor.CreatedAt, schema.CoreAuthor.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, a.ID, a.Name, a.Bio, a.ImageURL).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return dberr.NotFoundAs(err, "Author", "update_author")
	}
	return nil
}

// escapeLike neutralises LIKE wildcards in user input.
func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

func itos(i int) string {
	return strconv.Itoa(i)
}
