package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/presence-api/internal/models"
)

func TestDeviceRepositoryUpsertPendingRequestCollapses(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDeviceRepository(db)
	requestedAt := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "student_index", "device_id", "device_name", "device_os", "requested_at", "status", "notes"}).
		AddRow("req-1", "221045", "device-b", "Pixel 9", "Android 15", requestedAt, models.DeviceLinkPending, nil)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO device_link_requests")).
		WillReturnRows(rows)

	stored, err := repo.UpsertPendingRequest(context.Background(), &models.DeviceLinkRequest{
		StudentIndex: "221045",
		DeviceID:     "device-b",
		DeviceName:   "Pixel 9",
		DeviceOS:     "Android 15",
	})
	require.NoError(t, err)
	require.Equal(t, "req-1", stored.ID)
	require.Equal(t, "device-b", stored.DeviceID)
	require.Equal(t, models.DeviceLinkPending, stored.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepositoryCountForStudentSince(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDeviceRepository(db)
	since := time.Now().UTC().AddDate(0, -6, 0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM device_link_requests")).
		WithArgs("221045", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountForStudentSince(context.Background(), "221045", since)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDeviceRepository(db)
	notes := "auto-approved after review window"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE device_link_requests SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), "req-1", models.DeviceLinkAutoApproved, &notes))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE device_link_requests SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.Error(t, repo.UpdateStatus(context.Background(), "missing", models.DeviceLinkAutoApproved, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepositoryUpsertDevice(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDeviceRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_devices")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertDevice(context.Background(), &models.StudentDevice{
		StudentIndex: "221045",
		DeviceID:     "device-a",
		DeviceName:   "iPhone 15",
		DeviceOS:     "iOS 18",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
