package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
)

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

const createDocumentsTable = `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (collection, id)
	)
`

// Postgres is a document store backed by a JSONB table
type Postgres struct {
	Pool         *pgxpool.Pool
	pollInterval time.Duration
}

// NewPostgres connects to databaseURL and makes sure the documents table exists
func NewPostgres(ctx context.Context, databaseURL string, pollInterval time.Duration) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createDocumentsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	return &Postgres{Pool: pool, pollInterval: pollInterval}, nil
}

var _ contract.DocumentStore = (*Postgres)(nil)

func (p *Postgres) Close() {
	p.Pool.Close()
}

func (p *Postgres) Get(ctx context.Context, collection, id string) (*entity.Document, error) {
	doc := &entity.Document{}
	var data []byte

	err := p.Pool.QueryRow(ctx,
		`SELECT collection, id, data, updated_at FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&doc.Collection, &doc.ID, &data, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}

	doc.Data = json.RawMessage(data)
	return doc, nil
}

func (p *Postgres) Query(ctx context.Context, collection string, q entity.Query) ([]*entity.Document, error) {
	sql, args, err := buildQuery(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := p.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents in %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		doc := &entity.Document{}
		var data []byte
		if err := rows.Scan(&doc.Collection, &doc.ID, &data, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.Data = json.RawMessage(data)
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// buildQuery translates q into SQL over the JSONB data column
func buildQuery(collection string, q entity.Query) (string, []any, error) {
	var sb strings.Builder
	args := []any{collection}

	sb.WriteString(`SELECT collection, id, data, updated_at FROM documents WHERE collection = $1`)

	for _, f := range q.Filters {
		if !fieldPattern.MatchString(f.Field) {
			return "", nil, fmt.Errorf("invalid filter field %q", f.Field)
		}
		if !f.Op.Valid() {
			return "", nil, fmt.Errorf("invalid filter operator %q", f.Op)
		}
		args = append(args, strings.Split(f.Field, "."), f.Value)
		sb.WriteString(fmt.Sprintf(" AND data #>> $%d %s $%d", len(args)-1, f.Op.SQL(), len(args)))
	}

	if q.OrderBy != "" {
		if !fieldPattern.MatchString(q.OrderBy) {
			return "", nil, fmt.Errorf("invalid order field %q", q.OrderBy)
		}
		direction := "ASC"
		if q.Descending {
			direction = "DESC"
		}
		args = append(args, strings.Split(q.OrderBy, "."))
		sb.WriteString(fmt.Sprintf(" ORDER BY data #>> $%d %s, updated_at %s", len(args), direction, direction))
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	return sb.String(), args, nil
}

func (p *Postgres) Set(ctx context.Context, collection, id string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = p.Pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		collection, id, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", collection, id, err)
	}

	return nil
}

func (p *Postgres) Subscribe(ctx context.Context, collection string, onChange func()) (func(), error) {
	return Watch(ctx, p.pollInterval, func(ctx context.Context) (string, error) {
		var latest *time.Time
		var count int64
		err := p.Pool.QueryRow(ctx,
			`SELECT MAX(updated_at), COUNT(*) FROM documents WHERE collection = $1`,
			collection,
		).Scan(&latest, &count)
		if err != nil {
			return "", fmt.Errorf("failed to read change marker for %s: %w", collection, err)
		}

		marker := fmt.Sprintf("|%d", count)
		if latest != nil {
			marker = latest.UTC().Format(time.RFC3339Nano) + marker
		}
		return marker, nil
	}, onChange)
}
