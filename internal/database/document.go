package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/veonhoon/bible-reader-sub000/internal/docstore"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
)

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

type documentRepo struct {
	db           dbConn
	pollInterval time.Duration
}

func newDocumentRepo(db dbConn, pollInterval time.Duration) contract.DocumentStore {
	return &documentRepo{db: db, pollInterval: pollInterval}
}

func (r *documentRepo) Get(ctx context.Context, collection, id string) (*entity.Document, error) {
	doc := &entity.Document{}
	query := `
		SELECT collection, id, data, updated_at
		FROM documents
		WHERE collection = ? AND id = ?
	`

	var data string
	err := r.db.QueryRowContext(ctx, query, collection, id).Scan(
		&doc.Collection,
		&doc.ID,
		&data,
		&doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}

	doc.Data = json.RawMessage(data)
	return doc, nil
}

func (r *documentRepo) Query(ctx context.Context, collection string, q entity.Query) ([]*entity.Document, error) {
	var sb strings.Builder
	args := []interface{}{collection}

	sb.WriteString(`SELECT collection, id, data, updated_at FROM documents WHERE collection = ?`)

	for _, f := range q.Filters {
		if !fieldPattern.MatchString(f.Field) {
			return nil, fmt.Errorf("invalid filter field %q", f.Field)
		}
		if !f.Op.Valid() {
			return nil, fmt.Errorf("invalid filter operator %q", f.Op)
		}
		sb.WriteString(fmt.Sprintf(" AND json_extract(data, ?) %s ?", f.Op.SQL()))
		args = append(args, "$."+f.Field, f.Value)
	}

	if q.OrderBy != "" {
		if !fieldPattern.MatchString(q.OrderBy) {
			return nil, fmt.Errorf("invalid order field %q", q.OrderBy)
		}
		direction := "ASC"
		if q.Descending {
			direction = "DESC"
		}
		sb.WriteString(fmt.Sprintf(" ORDER BY json_extract(data, ?) %s, updated_at %s", direction, direction))
		args = append(args, "$."+q.OrderBy)
	}

	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents in %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		doc := &entity.Document{}
		var data string
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

func (r *documentRepo) Set(ctx context.Context, collection, id string, data any) error {
	query := `
		INSERT INTO documents (collection, id, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, collection, id, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", collection, id, err)
	}

	return nil
}

func (r *documentRepo) Subscribe(ctx context.Context, collection string, onChange func()) (func(), error) {
	return docstore.Watch(ctx, r.pollInterval, func(ctx context.Context) (string, error) {
		return r.changeMarker(ctx, collection)
	}, onChange)
}

func (r *documentRepo) changeMarker(ctx context.Context, collection string) (string, error) {
	query := `SELECT COALESCE(MAX(updated_at), ''), COUNT(*) FROM documents WHERE collection = ?`

	var latest string
	var count int64
	if err := r.db.QueryRowContext(ctx, query, collection).Scan(&latest, &count); err != nil {
		return "", fmt.Errorf("failed to read change marker for %s: %w", collection, err)
	}

	return fmt.Sprintf("%s|%d", latest, count), nil
}
