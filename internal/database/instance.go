package database

import (
	"time"

	"github.com/veonhoon/bible-reader-sub000/internal/domain/contract"
)

// instance implements DataManager interface
type instance struct {
	db               *DB
	kvRepo           contract.KeyValueRepo
	notificationRepo contract.NotificationRepo
	documentRepo     contract.DocumentStore
	pollInterval     time.Duration
}

// NewInstance creates a new database instance with all repositories.
// pollInterval drives document subscriptions.
func NewInstance(db *DB, pollInterval time.Duration) contract.DataManager {
	instance := &instance{
		db:           db,
		pollInterval: pollInterval,
	}
	instance.repoInstances()
	return instance
}

// repoInstances initializes all repositories
func (i *instance) repoInstances() {
	i.kvRepo = newKeyValueRepo(i.db.conn)
	i.notificationRepo = newNotificationRepo(i.db.conn)
	i.documentRepo = newDocumentRepo(i.db.conn, i.pollInterval)
}

// KeyValue returns the key/value repository
func (i *instance) KeyValue() contract.KeyValueRepo {
	return i.kvRepo
}

// Notification returns the local outbox repository
func (i *instance) Notification() contract.NotificationRepo {
	return i.notificationRepo
}

// Document returns the sqlite document store
func (i *instance) Document() contract.DocumentStore {
	return i.documentRepo
}
