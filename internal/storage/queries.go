package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sungwon/newsmail/internal/dispatch"
	"github.com/sungwon/newsmail/internal/metrics"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Queries runs the recipient and summary queries.
type Queries struct {
	db DBTX
}

// New creates Queries over db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const listNewsSummaries = `-- name: ListNewsSummaries :many
SELECT u.email, ns.content
FROM users u
LEFT JOIN news_summaries ns
  ON ns.user_id = u.id AND ns.summary_date = $1
WHERE u.subscribed
ORDER BY u.email
`

// ListNewsSummaries returns every subscribed user paired with the content
// generated for day. Users without a summary for day carry empty content.
func (q *Queries) ListNewsSummaries(ctx context.Context, day time.Time) ([]dispatch.RecipientNotification, error) {
	defer observe("list_news_summaries", time.Now())

	rows, err := q.db.Query(ctx, listNewsSummaries, dateOnly(day))
	if err != nil {
		metrics.DBErrorsTotal.WithLabelValues("list_news_summaries").Inc()
		return nil, fmt.Errorf("list news summaries: %w", err)
	}
	defer rows.Close()

	var items []dispatch.RecipientNotification
	for rows.Next() {
		var (
			email   string
			content *string
		)
		if err := rows.Scan(&email, &content); err != nil {
			metrics.DBErrorsTotal.WithLabelValues("list_news_summaries").Inc()
			return nil, fmt.Errorf("scan news summary: %w", err)
		}
		n := dispatch.RecipientNotification{Recipient: dispatch.Recipient{Email: email}}
		if content != nil {
			n.NewsContent = *content
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		metrics.DBErrorsTotal.WithLabelValues("list_news_summaries").Inc()
		return nil, fmt.Errorf("iterate news summaries: %w", err)
	}
	return items, nil
}

const upsertUser = `-- name: UpsertUser :one
INSERT INTO users (email, name)
VALUES ($1, $2)
ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
RETURNING id
`

// UpsertUser creates or renames a user and returns its ID.
func (q *Queries) UpsertUser(ctx context.Context, email, name string) (uuid.UUID, error) {
	defer observe("upsert_user", time.Now())

	var id uuid.UUID
	if err := q.db.QueryRow(ctx, upsertUser, email, name).Scan(&id); err != nil {
		metrics.DBErrorsTotal.WithLabelValues("upsert_user").Inc()
		return uuid.Nil, fmt.Errorf("upsert user: %w", err)
	}
	return id, nil
}

const setUserSubscribed = `-- name: SetUserSubscribed :exec
UPDATE users SET subscribed = $2 WHERE email = $1
`

// SetUserSubscribed toggles whether a user receives daily summaries.
func (q *Queries) SetUserSubscribed(ctx context.Context, email string, subscribed bool) error {
	defer observe("set_user_subscribed", time.Now())

	if _, err := q.db.Exec(ctx, setUserSubscribed, email, subscribed); err != nil {
		metrics.DBErrorsTotal.WithLabelValues("set_user_subscribed").Inc()
		return fmt.Errorf("set user subscribed: %w", err)
	}
	return nil
}

const upsertNewsSummary = `-- name: UpsertNewsSummary :exec
INSERT INTO news_summaries (user_id, summary_date, content)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, summary_date) DO UPDATE
SET content = EXCLUDED.content, updated_at = now()
`

// UpsertNewsSummary stores the content generated for a user on day. A nil
// content records that generation produced nothing.
func (q *Queries) UpsertNewsSummary(ctx context.Context, userID uuid.UUID, day time.Time, content *string) error {
	defer observe("upsert_news_summary", time.Now())

	if _, err := q.db.Exec(ctx, upsertNewsSummary, userID, dateOnly(day), content); err != nil {
		metrics.DBErrorsTotal.WithLabelValues("upsert_news_summary").Inc()
		return fmt.Errorf("upsert news summary: %w", err)
	}
	return nil
}

// dateOnly strips the clock so the value maps onto a DATE column as the
// calendar day it represents in its own location.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func observe(query string, start time.Time) {
	metrics.DBQueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}
