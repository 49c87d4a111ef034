// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/briefly/internal/platform/database/schema"
	"github.com/taibuivan/briefly/internal/platform/dberr"
	"github.com/taibuivan/briefly/pkg/uuid"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Plans

var selectPlan = fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s FROM %s`,
	schema.BillingPlan.ID, schema.BillingPlan.Name, schema.BillingPlan.Description, schema.BillingPlan.PriceMonthly,
	schema.BillingPlan.PriceYearly, schema.BillingPlan.Features, schema.BillingPlan.IsActive, schema.BillingPlan.Table,
)

func scanPlan(row pgx.Row) (*Plan, error) {
	p := &Plan{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceMonthly, &p.PriceYearly, &p.Features, &p.IsActive)
	return p, err
}

func (repository *PostgresRepository) ListActivePlans(context context.Context) ([]*Plan, error) {
	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s ASC`, selectPlan, schema.BillingPlan.IsActive, schema.BillingPlan.PriceMonthly)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_plans")
	}
	defer rows.Close()

	plans := []*Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_plan")
		}
		plans = append(plans, p)
	}
	return plans, dberr.Wrap(rows.Err(), "list_plans")
}

func (repository *PostgresRepository) FindPlan(context context.Context, id string) (*Plan, error) {
	query := fmt.Sprintf(`%s WHERE %s = $1`, selectPlan, schema.BillingPlan.ID)

	p, err := scanPlan(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.NotFoundAs(err, "Plan", "get_plan")
	}
	return p, nil
}

func (repository *PostgresRepository) FindPlanByName(context context.Context, name string) (*Plan, error) {
	query := fmt.Sprintf(`%s WHERE %s = $1`, selectPlan, schema.BillingPlan.Name)

	p, err := scanPlan(repository.pool.QueryRow(context, query, name))
	if err != nil {
		return nil, dberr.NotFoundAs(err, "Plan", "get_plan_by_name")
	}
	return p, nil
}

// # Subscriptions

func (repository *PostgresRepository) CurrentSubscription(context context.Context, userID string) (*Subscription, error) {
	s := schema.BillingSubscription
	query := fmt.Sprintf(`
		SELECT s.%s, s.%s, s.%s, p.%s, s.%s, s.%s, s.%s, s.%s, s.%s, s.%s, s.%s, s.%s, s.%s
		FROM %s s
		LEFT JOIN %s p ON p.%s = s.%s
		WHERE s.%s = $1
		ORDER BY (s.%s IN ('active', 'trialing')) DESC, s.%s DESC NULLS LAST
		LIMIT 1
	`,
		s.ID, s.UserID, s.PlanID, schema.BillingPlan.Name, s.Status, s.PaymentProvider, s.CustomerID,
		s.SubscriptionID, s.CurrentPeriodStart, s.CurrentPeriodEnd, s.CancelAtPeriodEnd, s.CreatedAt, s.UpdatedAt,
		s.Table,
		schema.BillingPlan.Table, schema.BillingPlan.ID, s.PlanID,
		s.UserID,
		s.Status, s.CurrentPeriodEnd,
	)

	sub := &Subscription{}
	err := repository.pool.QueryRow(context, query, userID).Scan(
		&sub.ID, &sub.UserID, &sub.PlanID, &sub.PlanName, &sub.Status, &sub.PaymentProvider, &sub.CustomerID,
		&sub.SubscriptionID, &sub.CurrentPeriodStart, &sub.CurrentPeriodEnd, &sub.CancelAtPeriodEnd,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.NotFoundAs(err, "Subscription", "get_current_subscription")
	}
	return sub, nil
}

func (repository *PostgresRepository) CustomerID(context context.Context, userID string) (string, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s IS NOT NULL
		ORDER BY %s DESC
		LIMIT 1
	`,
		schema.BillingSubscription.CustomerID, schema.BillingSubscription.Table,
		schema.BillingSubscription.UserID, schema.BillingSubscription.CustomerID,
		schema.BillingSubscription.UpdatedAt,
	)

	var customerID string
	if err := repository.pool.QueryRow(context, query, userID).Scan(&customerID); err != nil {
		return "", dberr.NotFoundAs(err, "Customer", "get_customer_id")
	}
	return customerID, nil
}

func (repository *PostgresRepository) UserByCustomer(context context.Context, customerID string) (string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT 1`,
		schema.BillingSubscription.UserID, schema.BillingSubscription.Table,
		schema.BillingSubscription.CustomerID, schema.BillingSubscription.UpdatedAt,
	)

	var userID string
	if err := repository.pool.QueryRow(context, query, customerID).Scan(&userID); err != nil {
		return "", dberr.NotFoundAs(err, "Customer", "get_user_by_customer")
	}
	return userID, nil
}

func (repository *PostgresRepository) MarkCancelAtPeriodEnd(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = NOW() WHERE %s = $1`,
		schema.BillingSubscription.Table, schema.BillingSubscription.CancelAtPeriodEnd,
		schema.BillingSubscription.UpdatedAt, schema.BillingSubscription.ID,
	)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "mark_cancel_at_period_end")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Webhook Relay

/*
ApplyWebhook records a delivery and applies its mutation atomically.

Description: The ledger insert uses ON CONFLICT DO NOTHING. When no row is
inserted the event was already processed and the transaction is rolled back
without touching the subscription table, so a redelivered event is a no-op.
*/
func (repository *PostgresRepository) ApplyWebhook(context context.Context, eventID, eventType string, change *Change) (string, bool, error) {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return "", false, dberr.Wrap(err, "begin_webhook")
	}
	defer transaction.Rollback(context)

	// ── 1. Idempotency ledger ──
	ledger := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, NOW())
		ON CONFLICT (%s) DO NOTHING
	`,
		schema.BillingWebhookEvent.Table, schema.BillingWebhookEvent.EventID, schema.BillingWebhookEvent.EventType,
		schema.BillingWebhookEvent.ReceivedAt, schema.BillingWebhookEvent.EventID,
	)

	tag, err := transaction.Exec(context, ledger, eventID, eventType)
	if err != nil {
		return "", false, dberr.Wrap(err, "record_webhook_event")
	}
	if tag.RowsAffected() == 0 {
		return "", true, nil
	}

	// ── 2. Mutation ──
	var userID string
	switch {
	case change == nil:
	case change.Upsert != nil:
		userID, err = upsertSubscription(context, transaction, change.Upsert)
	default:
		userID, err = updateSubscription(context, transaction, change)
	}
	if err != nil {
		return "", false, err
	}

	if err := transaction.Commit(context); err != nil {
		return "", false, dberr.Wrap(err, "commit_webhook")
	}
	return userID, false, nil
}

func upsertSubscription(context context.Context, transaction pgx.Tx, sub *Subscription) (string, error) {
	s := schema.BillingSubscription
	query := fmt.Sprintf(`
		INSERT INTO %s AS existing (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = COALESCE(EXCLUDED.%s, existing.%s),
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = NOW()
		RETURNING %s
	`,
		s.Table,
		s.ID, s.UserID, s.PlanID, s.Status, s.PaymentProvider, s.CustomerID, s.SubscriptionID,
		s.CurrentPeriodStart, s.CurrentPeriodEnd, s.CancelAtPeriodEnd, s.CreatedAt, s.UpdatedAt,
		s.SubscriptionID,
		s.PlanID, s.PlanID,
		s.Status, s.Status,
		s.CustomerID, s.CustomerID, s.CustomerID,
		s.CurrentPeriodStart, s.CurrentPeriodStart,
		s.CurrentPeriodEnd, s.CurrentPeriodEnd,
		s.CancelAtPeriodEnd, s.CancelAtPeriodEnd,
		s.UpdatedAt,
		s.UserID,
	)

	var userID string
	err := transaction.QueryRow(context, query,
		uuid.New(), sub.UserID, sub.PlanID, sub.Status, providerStripe, sub.CustomerID, sub.SubscriptionID,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd,
	).Scan(&userID)
	return userID, dberr.Wrap(err, "upsert_subscription")
}

// updateSubscription applies a status and/or period change to an existing row.
// Events for unknown subscriptions are recorded but change nothing.
func updateSubscription(context context.Context, transaction pgx.Tx, change *Change) (string, error) {
	s := schema.BillingSubscription
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = COALESCE($2, %s),
		    %s = COALESCE($3, %s),
		    %s = COALESCE($4, %s),
		    %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		s.Table,
		s.Status, s.Status,
		s.CurrentPeriodStart, s.CurrentPeriodStart,
		s.CurrentPeriodEnd, s.CurrentPeriodEnd,
		s.UpdatedAt,
		s.SubscriptionID,
		s.UserID,
	)

	var userID string
	err := transaction.QueryRow(context, query, change.SubscriptionID, change.Status, change.PeriodStart, change.PeriodEnd).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return userID, dberr.Wrap(err, "update_subscription")
}
