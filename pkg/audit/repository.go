package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/scribeworks/compliance/pkg/common/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type archivedEntryModel struct {
	ID            int64          `gorm:"primaryKey;column:id"`
	EventID       string         `gorm:"column:event_id;index"`
	UserID        string         `gorm:"column:user_id;index"`
	Action        string         `gorm:"column:action"`
	Resource      string         `gorm:"column:resource"`
	Outcome       string         `gorm:"column:outcome"`
	IntegrityHash string         `gorm:"column:integrity_hash"`
	Payload       datatypes.JSON `gorm:"column:payload"`
	OccurredAt    time.Time      `gorm:"column:occurred_at"`
	ArchivedAt    time.Time      `gorm:"column:archived_at"`
}

func (archivedEntryModel) TableName() string { return "audit_archive" }

// Repository persists entries that the in-memory Trail is about to discard.
// Wire Archive through Trail.OnRotate; the Trail itself never touches storage.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&archivedEntryModel{})
}

func (r *Repository) Archive(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]archivedEntryModel, 0, len(entries))
	for _, e := range entries {
		row := archivedEntryModel{
			EventID:       e.EventID,
			UserID:        e.UserID,
			Action:        e.Action,
			Resource:      e.Resource,
			Outcome:       e.Outcome,
			IntegrityHash: e.IntegrityHash,
			OccurredAt:    e.Timestamp,
			ArchivedAt:    now,
		}
		if data, err := json.Marshal(e); err == nil {
			row.Payload = datatypes.JSON(data)
		}
		rows = append(rows, row)
	}

	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *Repository) ListByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []archivedEntryModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{
			Timestamp:     row.OccurredAt,
			EventID:       row.EventID,
			UserID:        row.UserID,
			Action:        row.Action,
			Resource:      row.Resource,
			Outcome:       row.Outcome,
			IntegrityHash: row.IntegrityHash,
		})
	}
	return entries, nil
}

// ArchiveHook adapts the repository to the Trail's OnRotate signature. Errors
// are logged and swallowed: archival is best-effort and rotation must not
// block on storage.
func (r *Repository) ArchiveHook() func([]Entry) {
	return func(entries []Entry) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.Archive(ctx, entries); err != nil && logger.Log != nil {
			logger.Log.WithError(err).Error("Failed to archive rotated audit entries")
		}
	}
}
