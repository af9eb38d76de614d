package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/lead-crawler/internal/domain"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS leads (
	id              BIGSERIAL PRIMARY KEY,
	title           TEXT NOT NULL,
	address         TEXT NOT NULL DEFAULT '',
	phone           TEXT NOT NULL DEFAULT '',
	country         TEXT NOT NULL DEFAULT '',
	website         TEXT NOT NULL DEFAULT '',
	email           TEXT NOT NULL DEFAULT '',
	mobile_number   TEXT NOT NULL DEFAULT '',
	whatsapp_number TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (title, address, website)
);
CREATE INDEX IF NOT EXISTS leads_website_idx ON leads (website);
`

// PostgresStore keeps every processed lead so results survive across runs
// and can be queried over the API.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

// Migrate creates the leads table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// SaveLeads upserts a batch of leads in one transaction. Contact fields that
// are empty in the new row keep their stored value.
func (s *PostgresStore) SaveLeads(ctx context.Context, leads []domain.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, l := range leads {
		batch.Queue(`INSERT INTO leads (title, address, phone, country, website, email, mobile_number, whatsapp_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (title, address, website) DO UPDATE SET
			  phone = COALESCE(NULLIF(EXCLUDED.phone, ''), leads.phone),
			  country = EXCLUDED.country,
			  email = COALESCE(NULLIF(EXCLUDED.email, ''), leads.email),
			  mobile_number = COALESCE(NULLIF(EXCLUDED.mobile_number, ''), leads.mobile_number),
			  whatsapp_number = COALESCE(NULLIF(EXCLUDED.whatsapp_number, ''), leads.whatsapp_number),
			  updated_at = NOW()`,
			l.Title, l.Address, l.Phone, l.Country, l.Website, l.Email, l.Mobile, l.WhatsApp)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert leads: %w", err)
	}
	return tx.Commit(ctx)
}

// FindByWebsite returns the stored leads for a normalized website URL.
func (s *PostgresStore) FindByWebsite(ctx context.Context, website string) ([]domain.Lead, error) {
	rows, err := s.db.Query(ctx,
		`SELECT title, address, phone, country, website, email, mobile_number, whatsapp_number, updated_at
		 FROM leads WHERE website = $1 ORDER BY updated_at DESC`,
		website,
	)
	if err != nil {
		return nil, err
	}
	leads, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Lead, error) {
		var l domain.Lead
		err := row.Scan(&l.Title, &l.Address, &l.Phone, &l.Country, &l.Website, &l.Email, &l.Mobile, &l.WhatsApp, &l.UpdatedAt)
		return l, err
	})
	if err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, ErrNotFound
	}
	return leads, nil
}
