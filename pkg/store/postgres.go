// Package store persists normalized DTEs in Postgres.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fizko/dte/internal/models"
)

type StoreConfig struct {
	ConnString string
	TableName  string
	BatchSize  int
}

type Store struct {
	config StoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(config StoreConfig) (*Store, error) {
	if config.TableName == "" {
		config.TableName = "dtes"
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	s := &Store{
		config: config,
		pool:   pool,
	}

	if err := s.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) initialize() error {
	ctx := context.Background()

	// A document is identified by (type, issuer, folio); re-syncing the same
	// period must update rows instead of duplicating them.
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			folio INTEGER NOT NULL,
			document_type INTEGER NOT NULL,
			issue_date DATE NOT NULL,
			issuer_rut TEXT NOT NULL,
			issuer_dv TEXT NOT NULL,
			recipient_rut TEXT NOT NULL,
			recipient_dv TEXT NOT NULL,
			issuer_name TEXT,
			recipient_name TEXT,
			net_amount NUMERIC(18,2) NOT NULL,
			tax_amount NUMERIC(18,2) NOT NULL,
			total_amount NUMERIC(18,2) NOT NULL,
			status TEXT,
			track_id TEXT,
			raw JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (document_type, issuer_rut, issuer_dv, folio)
		)`, s.config.TableName)

	_, err := s.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_issue_date_idx
		ON %s (issue_date)`,
		s.config.TableName, s.config.TableName)

	_, err = s.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

func (s *Store) Store(ctx context.Context, docs []*models.DTE) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, folio, document_type, issue_date,
			issuer_rut, issuer_dv, recipient_rut, recipient_dv,
			issuer_name, recipient_name,
			net_amount, tax_amount, total_amount,
			status, track_id, raw)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (document_type, issuer_rut, issuer_dv, folio) DO UPDATE SET
			issue_date = EXCLUDED.issue_date,
			recipient_rut = EXCLUDED.recipient_rut,
			recipient_dv = EXCLUDED.recipient_dv,
			issuer_name = EXCLUDED.issuer_name,
			recipient_name = EXCLUDED.recipient_name,
			net_amount = EXCLUDED.net_amount,
			tax_amount = EXCLUDED.tax_amount,
			total_amount = EXCLUDED.total_amount,
			status = EXCLUDED.status,
			track_id = EXCLUDED.track_id,
			raw = EXCLUDED.raw`,
		s.config.TableName)

	for _, doc := range docs {
		_, err = tx.Exec(ctx, stmt,
			uuid.New(),
			doc.Folio,
			doc.DocumentType,
			doc.IssueDate,
			doc.IssuerRUT,
			doc.IssuerDV,
			doc.RecipientRUT,
			doc.RecipientDV,
			doc.IssuerName,
			doc.RecipientName,
			doc.NetAmount,
			doc.TaxAmount,
			doc.TotalAmount,
			doc.Status,
			doc.TrackID,
			doc.Raw,
		)
		if err != nil {
			return fmt.Errorf("failed to insert document: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// QueryPeriod returns the documents issued within the given month, oldest
// first.
func (s *Store) QueryPeriod(ctx context.Context, year int, month time.Month) ([]*models.DTE, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	query := fmt.Sprintf(`
		SELECT folio, document_type, issue_date,
			issuer_rut, issuer_dv, recipient_rut, recipient_dv,
			issuer_name, recipient_name,
			net_amount, tax_amount, total_amount,
			status, track_id
		FROM %s
		WHERE issue_date >= $1 AND issue_date < $2
		ORDER BY issue_date, folio`,
		s.config.TableName)

	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %v", err)
	}
	defer rows.Close()

	var docs []*models.DTE
	for rows.Next() {
		doc := &models.DTE{}
		err := rows.Scan(
			&doc.Folio,
			&doc.DocumentType,
			&doc.IssueDate,
			&doc.IssuerRUT,
			&doc.IssuerDV,
			&doc.RecipientRUT,
			&doc.RecipientDV,
			&doc.IssuerName,
			&doc.RecipientName,
			&doc.NetAmount,
			&doc.TaxAmount,
			&doc.TotalAmount,
			&doc.Status,
			&doc.TrackID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

// CountByType returns how many stored documents exist per document type,
// for operational reporting.
func (s *Store) CountByType(ctx context.Context) (map[int]int, error) {
	query := fmt.Sprintf(`
		SELECT document_type, count(*)
		FROM %s
		GROUP BY document_type`,
		s.config.TableName)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %v", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var docType, count int
		if err := rows.Scan(&docType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		counts[docType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
