package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hospital-admin-dashboard/internal/models"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	return NewStore(db, zap.NewNop()), mock
}

func TestStore_Record(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `audit_entries`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	store.Record(context.Background(), models.AuditEntry{
		Action:        models.AuditApprove,
		AppointmentID: "42",
		Success:       true,
		Detail:        "15",
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RecordFailureIsSwallowed(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `audit_entries`").WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	assert.NotPanics(t, func() {
		store.Record(context.Background(), models.AuditEntry{Action: models.AuditSweep, Candidates: 2})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Recent(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "action", "appointment_id", "actor", "success", "detail", "candidates", "cancelled", "failed"}).
		AddRow("e2", now, now, "sweep", "", "", true, "Auto-cancelled due to no-show", 3, 3, 0).
		AddRow("e1", now.Add(-time.Hour), now.Add(-time.Hour), "approve", "42", "admin", true, "15", 0, 0, 0)
	mock.ExpectQuery("SELECT \\* FROM `audit_entries` ORDER BY created_at desc LIMIT").WillReturnRows(rows)

	entries, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.AuditSweep, entries[0].Action)
	assert.Equal(t, 3, entries[0].Cancelled)
	assert.Equal(t, "42", entries[1].AppointmentID)
	require.NoError(t, mock.ExpectationsWereMet())
}
