package output

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sink mirrors finalized datasets into Postgres, next to the JSON files.
// It is optional; runs without PG_DSN never construct one.
type Sink struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS consumables (
	category TEXT NOT NULL,
	name_en  TEXT NOT NULL,
	hq       BOOLEAN NOT NULL,
	ilvl     INTEGER NOT NULL,
	payload  JSONB NOT NULL,
	PRIMARY KEY (category, name_en, hq)
);
CREATE TABLE IF NOT EXISTS recipes (
	class    TEXT NOT NULL,
	id       TEXT NOT NULL,
	level    INTEGER NOT NULL,
	payload  JSONB NOT NULL,
	PRIMARY KEY (class, id)
);`

func NewSink(ctx context.Context, dsn string) (*Sink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Sink{pool: pool}, nil
}

func (s *Sink) Close() {
	s.pool.Close()
}

func (s *Sink) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()
	return fn(tx)
}

const upsertConsumable = `
INSERT INTO consumables (category, name_en, hq, ilvl, payload)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (category, name_en, hq)
DO UPDATE SET ilvl = EXCLUDED.ilvl, payload = EXCLUDED.payload`

// StoreRecords upserts one category's finalized records in a single
// transaction, so the table never holds a half-written category.
func (s *Sink) StoreRecords(ctx context.Context, category string, records []domain.Record) error {
	err := s.withTransaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range records {
			payload, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("marshal record %q: %w", r.Name["en"], err)
			}
			batch.Queue(upsertConsumable, category, r.Name["en"], r.HQ, r.ILvl, payload)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("store %s records: %w", category, err)
	}
	slog.Info("Mirrored records to Postgres", "category", category, "count", len(records))
	return nil
}

const upsertRecipe = `
INSERT INTO recipes (class, id, level, payload)
VALUES ($1, $2, $3, $4)
ON CONFLICT (class, id)
DO UPDATE SET level = EXCLUDED.level, payload = EXCLUDED.payload`

// StoreRecipes upserts one class's recipes in a single transaction.
func (s *Sink) StoreRecipes(ctx context.Context, class string, recipes []domain.Recipe) error {
	err := s.withTransaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range recipes {
			payload, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("marshal recipe %s: %w", r.ID, err)
			}
			batch.Queue(upsertRecipe, class, r.ID, r.Level, payload)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("store %s recipes: %w", class, err)
	}
	slog.Info("Mirrored recipes to Postgres", "class", class, "count", len(recipes))
	return nil
}
