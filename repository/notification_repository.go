package repository

import (
	"context"
	"time"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// claimLease is how long a claimed queue entry stays invisible to other
// workers. A worker that dies mid-batch loses its claim once the lease
// expires and the entries become due again.
const claimLease = 5 * time.Minute

type NotificationRepository interface {
	CreateWithEntry(ctx context.Context, n *models.Notification, entry *models.QueueEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	FindByUser(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Update(ctx context.Context, n *models.Notification) error

	ClaimDue(ctx context.Context, now time.Time, limit int) ([]models.QueueEntry, error)
	UpdateEntry(ctx context.Context, entry *models.QueueEntry) error
	PendingEntries(ctx context.Context, now time.Time) (int64, error)
	ListEntries(ctx context.Context, now time.Time, filter models.QueueEntryFilter) ([]models.QueueEntry, int64, error)

	CreateLog(ctx context.Context, log *models.DeliveryLog) error
	FindLogs(ctx context.Context, filter models.DeliveryLogFilter) ([]models.DeliveryLog, int64, error)
}

type gormNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

// CreateWithEntry persists a notification and its queue entry atomically, so
// a notification can never exist without a delivery attempt scheduled.
func (r *gormNotificationRepository) CreateWithEntry(ctx context.Context, n *models.Notification, entry *models.QueueEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		entry.NotificationID = n.ID
		return tx.Create(entry).Error
	})
}

func (r *gormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *gormNotificationRepository) FindByUser(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ?", filter.UserID)
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := models.PageBounds(filter.Page, filter.PageSize)
	var notifications []models.Notification
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *gormNotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips is_read for one notification owned by userID. The affected
// row count lets callers distinguish "not yours" from "done".
func (r *gormNotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

func (r *gormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

func (r *gormNotificationRepository) Update(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(n).Error
}

// ClaimDue selects due, unprocessed queue entries with FOR UPDATE SKIP
// LOCKED and pushes their next_attempt_at forward by a lease, all in one
// transaction. Concurrent workers therefore never hand out the same entry
// twice: locked rows are skipped, and committed claims are no longer due.
func (r *gormNotificationRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("processed = ? AND next_attempt_at <= ?", false, now).
			Order("next_attempt_at ASC").
			Limit(limit).
			Find(&entries).Error
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(entries))
		for i := range entries {
			ids[i] = entries[i].ID
		}
		return tx.Model(&models.QueueEntry{}).
			Where("id IN ?", ids).
			Update("next_attempt_at", now.Add(claimLease)).Error
	})
	if err != nil {
		return nil, err
	}

	// Recipient data is loaded outside the claim transaction to keep the
	// row locks short.
	for i := range entries {
		if err := r.db.WithContext(ctx).
			Preload("User").
			First(&entries[i].Notification, "id = ?", entries[i].NotificationID).Error; err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (r *gormNotificationRepository) UpdateEntry(ctx context.Context, entry *models.QueueEntry) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(entry).Error
}

func (r *gormNotificationRepository) PendingEntries(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.QueueEntry{}).
		Where("processed = ? AND next_attempt_at <= ?", false, now).
		Count(&count).Error
	return count, err
}

// ListEntries pages through queue entries for the admin inspection view.
// "due" and "exhausted" are derived states, not columns, so the filter
// reproduces the processor's own predicates.
func (r *gormNotificationRepository) ListEntries(ctx context.Context, now time.Time, filter models.QueueEntryFilter) ([]models.QueueEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.QueueEntry{})
	switch filter.State {
	case models.QueueStatePending:
		query = query.Where("processed = ?", false)
	case models.QueueStateDue:
		query = query.Where("processed = ? AND next_attempt_at <= ?", false, now)
	case models.QueueStateProcessed:
		query = query.Where("processed = ?", true)
	case models.QueueStateExhausted:
		query = query.Where("processed = ? AND last_error <> ''", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := models.PageBounds(filter.Page, filter.PageSize)
	var entries []models.QueueEntry
	err := query.
		Order("next_attempt_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *gormNotificationRepository) CreateLog(ctx context.Context, log *models.DeliveryLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *gormNotificationRepository) FindLogs(ctx context.Context, filter models.DeliveryLogFilter) ([]models.DeliveryLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DeliveryLog{})

	if filter.UserID != uuid.Nil {
		query = query.
			Joins("JOIN notifications ON notifications.id = delivery_logs.notification_id").
			Where("notifications.user_id = ?", filter.UserID)
	}
	if filter.Channel != "" {
		query = query.Where("delivery_logs.channel = ?", filter.Channel)
	}
	if filter.Success != nil {
		query = query.Where("delivery_logs.success = ?", *filter.Success)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := models.PageBounds(filter.Page, filter.PageSize)
	var logs []models.DeliveryLog
	err := query.
		Order("delivery_logs.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
