package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/repository"
)

func TestCreateWithEntry(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	notifID := uuid.New()
	entryID := uuid.New()
	n := &models.Notification{
		UserID:         uuid.New(),
		Type:           models.TypeAppointmentBooked,
		Title:          "Appointment booked",
		Message:        "See you soon",
		EmailRequested: true,
	}
	entry := &models.QueueEntry{
		MaxAttempts:   models.DefaultMaxAttempts,
		NextAttemptAt: time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "notifications"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(notifID.String()))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "queue_entries"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(entryID.String()))
	mock.ExpectCommit()

	err := repo.CreateWithEntry(context.Background(), n, entry)
	assert.NoError(t, err)
	assert.Equal(t, notifID, n.ID)
	assert.Equal(t, notifID, entry.NotificationID)
	assert.Equal(t, entryID, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimDue_LeasesClaimedEntries(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	entryID := uuid.New()
	notifID := uuid.New()
	userID := uuid.New()
	now := time.Now().UTC()

	entryRows := sqlmock.NewRows([]string{"id", "notification_id", "attempts", "max_attempts", "next_attempt_at", "processed"}).
		AddRow(entryID.String(), notifID.String(), 0, 3, now.Add(-time.Minute), false)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "queue_entries" WHERE processed = $1 AND next_attempt_at <= $2`)).
		WithArgs(false, now, 5).
		WillReturnRows(entryRows)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "queue_entries"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Recipient load happens after the claim transaction commits.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "notifications"`)).
		WithArgs(notifID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "email_requested"}).
			AddRow(notifID.String(), userID.String(), "Appointment booked", true))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name"}).
			AddRow(userID.String(), "pat@example.com", "Priya"))

	entries, err := repo.ClaimDue(context.Background(), now, 5)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, entryID, entries[0].ID)
	assert.Equal(t, notifID, entries[0].Notification.ID)
	assert.Equal(t, "pat@example.com", entries[0].Notification.User.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimDue_NothingDue(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "queue_entries"`)).
		WithArgs(false, now, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	entries, err := repo.ClaimDue(context.Background(), now, 10)
	assert.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRead_ReportsAffectedRows(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "notifications"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	affected, err := repo.MarkRead(context.Background(), uuid.New(), uuid.New())
	assert.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestMarkRead_NotOwnedOrAlreadyRead(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "notifications"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	affected, err := repo.MarkRead(context.Background(), uuid.New(), uuid.New())
	assert.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestPendingEntries(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "queue_entries"`)).
		WithArgs(false, now).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.PendingEntries(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestListEntries_ExhaustedState(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	entryID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "queue_entries" WHERE processed = $1 AND last_error <> ''`)).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "queue_entries" WHERE processed = $1 AND last_error <> ''`)).
		WithArgs(true, models.DefaultPageSize).
		WillReturnRows(sqlmock.NewRows([]string{"id", "attempts", "max_attempts", "processed", "last_error"}).
			AddRow(entryID.String(), 3, 3, true, "smtp: connection refused"))

	entries, total, err := repo.ListEntries(context.Background(), now, models.QueueEntryFilter{
		State: models.QueueStateExhausted,
		Page:  1,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, entryID, entries[0].ID)
		assert.True(t, entries[0].Exhausted())
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
