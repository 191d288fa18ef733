package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
	"github.com/veonhoon/bible-reader-sub000/internal/domain/entity"
)

type notificationRepo struct {
	db dbConn
}

func newNotificationRepo(db dbConn) contract.NotificationRepo {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *entity.ScheduledNotification) error {
	query := `
		INSERT INTO scheduled_notifications (id, scope, fire_at, title, subtitle, body, snippet_id, week_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.Scope,
		n.FireAt.UTC(),
		n.Title,
		n.Subtitle,
		n.Body,
		n.SnippetID,
		n.WeekID,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create scheduled notification: %w", err)
	}

	return nil
}

func (r *notificationRepo) DeleteByScope(ctx context.Context, scope string) (int64, error) {
	query := `DELETE FROM scheduled_notifications WHERE scope = ?`

	result, err := r.db.ExecContext(ctx, query, scope)
	if err != nil {
		return 0, fmt.Errorf("failed to delete scheduled notifications: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

func (r *notificationRepo) ListByScope(ctx context.Context, scope string) ([]*entity.ScheduledNotification, error) {
	query := `
		SELECT id, scope, fire_at, title, subtitle, body, snippet_id, week_id, created_at
		FROM scheduled_notifications
		WHERE scope = ?
		ORDER BY fire_at ASC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled notifications: %w", err)
	}
	defer rows.Close()

	return scanNotifications(rows)
}

func scanNotifications(rows *sql.Rows) ([]*entity.ScheduledNotification, error) {
	var notifications []*entity.ScheduledNotification
	for rows.Next() {
		n := &entity.ScheduledNotification{}
		err := rows.Scan(
			&n.ID,
			&n.Scope,
			&n.FireAt,
			&n.Title,
			&n.Subtitle,
			&n.Body,
			&n.SnippetID,
			&n.WeekID,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scheduled notifications: %w", err)
	}

	return notifications, nil
}
