package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/order-insights/internal/core/domain"
)

type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (s *DocumentStore) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026040201)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS categorized_orders (
	customer_id BIGINT PRIMARY KEY,
	customer JSONB NOT NULL DEFAULT '{}'::jsonb,
	buckets JSONB NOT NULL DEFAULT '{}'::jsonb,
	predictions JSONB NOT NULL DEFAULT '{}'::jsonb,
	tag_lookup JSONB NOT NULL DEFAULT '{}'::jsonb,
	filter JSONB NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_categorized_orders_updated_at ON categorized_orders(updated_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Upsert fully replaces the customer's document. There is no partial field
// merge at this level; the write carries the whole snapshot.
func (s *DocumentStore) Upsert(ctx context.Context, doc *domain.CategorizedOrdersDocument) error {
	customerJSON, err := json.Marshal(doc.Customer)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	bucketsJSON, err := json.Marshal(doc.Buckets)
	if err != nil {
		return fmt.Errorf("marshal buckets: %w", err)
	}
	predictionsJSON, err := json.Marshal(doc.Predictions)
	if err != nil {
		return fmt.Errorf("marshal predictions: %w", err)
	}
	tagLookupJSON, err := json.Marshal(doc.TagLookup)
	if err != nil {
		return fmt.Errorf("marshal tag lookup: %w", err)
	}
	filterJSON, err := json.Marshal(doc.Filter)
	if err != nil {
		return fmt.Errorf("marshal filter: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO categorized_orders (customer_id, customer, buckets, predictions, tag_lookup, filter, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (customer_id) DO UPDATE SET
	customer = EXCLUDED.customer,
	buckets = EXCLUDED.buckets,
	predictions = EXCLUDED.predictions,
	tag_lookup = EXCLUDED.tag_lookup,
	filter = EXCLUDED.filter,
	updated_at = EXCLUDED.updated_at
`,
		doc.CustomerID, customerJSON, bucketsJSON, predictionsJSON, tagLookupJSON, filterJSON, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert categorized orders: %w", err)
	}
	return nil
}

func (s *DocumentStore) GetByCustomerID(ctx context.Context, customerID int64) (*domain.CategorizedOrdersDocument, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT customer_id, customer, buckets, predictions, tag_lookup, filter, updated_at
FROM categorized_orders
WHERE customer_id = $1
`, customerID)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrCustomerNotFound, "get categorized orders", fmt.Errorf("customer %d", customerID))
		}
		return nil, err
	}
	return doc, nil
}

func (s *DocumentStore) ListCustomerIDs(ctx context.Context) (map[int64]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT customer_id FROM categorized_orders`)
	if err != nil {
		return nil, fmt.Errorf("list customer ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan customer id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer ids: %w", err)
	}
	return ids, nil
}

func (s *DocumentStore) ListAll(ctx context.Context) ([]domain.CategorizedOrdersDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT customer_id, customer, buckets, predictions, tag_lookup, filter, updated_at
FROM categorized_orders
ORDER BY customer_id
`)
	if err != nil {
		return nil, fmt.Errorf("list categorized orders: %w", err)
	}
	defer rows.Close()

	var docs []domain.CategorizedOrdersDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categorized orders: %w", err)
	}
	return docs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.CategorizedOrdersDocument, error) {
	var doc domain.CategorizedOrdersDocument
	var customerRaw, bucketsRaw, predictionsRaw, tagLookupRaw, filterRaw []byte

	err := row.Scan(&doc.CustomerID, &customerRaw, &bucketsRaw, &predictionsRaw, &tagLookupRaw, &filterRaw, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan categorized orders: %w", err)
	}

	if err := json.Unmarshal(customerRaw, &doc.Customer); err != nil {
		return nil, fmt.Errorf("unmarshal customer: %w", err)
	}
	if err := json.Unmarshal(bucketsRaw, &doc.Buckets); err != nil {
		return nil, fmt.Errorf("unmarshal buckets: %w", err)
	}
	if err := json.Unmarshal(predictionsRaw, &doc.Predictions); err != nil {
		return nil, fmt.Errorf("unmarshal predictions: %w", err)
	}
	if err := json.Unmarshal(tagLookupRaw, &doc.TagLookup); err != nil {
		return nil, fmt.Errorf("unmarshal tag lookup: %w", err)
	}
	if err := json.Unmarshal(filterRaw, &doc.Filter); err != nil {
		return nil, fmt.Errorf("unmarshal filter: %w", err)
	}
	return &doc, nil
}
