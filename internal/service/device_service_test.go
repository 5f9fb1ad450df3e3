package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupulse/presence-api/internal/models"
	appErrors "github.com/edupulse/presence-api/pkg/errors"
)

type mockDeviceRepo struct {
	devices      map[string]*models.StudentDevice
	pending      map[string]*models.DeviceLinkRequest
	resolved     []models.DeviceLinkRequest
	requestCount map[string]int
	statuses     map[string]models.DeviceLinkStatus
}

func newMockDeviceRepo() *mockDeviceRepo {
	return &mockDeviceRepo{
		devices:      make(map[string]*models.StudentDevice),
		pending:      make(map[string]*models.DeviceLinkRequest),
		requestCount: make(map[string]int),
		statuses:     make(map[string]models.DeviceLinkStatus),
	}
}

func (m *mockDeviceRepo) GetDevice(ctx context.Context, studentIndex string) (*models.StudentDevice, error) {
	if device, ok := m.devices[studentIndex]; ok {
		return device, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDeviceRepo) UpsertDevice(ctx context.Context, device *models.StudentDevice) error {
	m.devices[device.StudentIndex] = device
	return nil
}

func (m *mockDeviceRepo) UpsertPendingRequest(ctx context.Context, req *models.DeviceLinkRequest) (*models.DeviceLinkRequest, error) {
	stored := *req
	if existing, ok := m.pending[req.StudentIndex]; ok {
		stored.ID = existing.ID
	} else if stored.ID == "" {
		stored.ID = "req-" + req.StudentIndex
	}
	stored.Status = models.DeviceLinkPending
	if stored.RequestedAt.IsZero() {
		stored.RequestedAt = time.Now().UTC()
	}
	m.pending[req.StudentIndex] = &stored
	return &stored, nil
}

func (m *mockDeviceRepo) InsertResolvedRequest(ctx context.Context, req *models.DeviceLinkRequest) error {
	m.resolved = append(m.resolved, *req)
	return nil
}

func (m *mockDeviceRepo) ListPending(ctx context.Context) ([]models.DeviceLinkRequest, error) {
	var out []models.DeviceLinkRequest
	for _, req := range m.pending {
		out = append(out, *req)
	}
	return out, nil
}

func (m *mockDeviceRepo) CountForStudentSince(ctx context.Context, studentIndex string, since time.Time) (int, error) {
	return m.requestCount[studentIndex], nil
}

func (m *mockDeviceRepo) UpdateStatus(ctx context.Context, id string, status models.DeviceLinkStatus, notes *string) error {
	m.statuses[id] = status
	for studentIndex, req := range m.pending {
		if req.ID == id {
			delete(m.pending, studentIndex)
		}
	}
	return nil
}

type mockNotifier struct {
	sent []string
}

func (m *mockNotifier) Send(ctx context.Context, subject, body string) error {
	m.sent = append(m.sent, subject)
	return nil
}

func TestRequestLinkFirstDeviceAutoApproves(t *testing.T) {
	repo := newMockDeviceRepo()
	svc := NewDeviceService(repo, &mockNotifier{}, nil, 6, nil, nil)

	result, err := svc.RequestLink(context.Background(), LinkDeviceRequest{
		StudentIndex: "221045",
		DeviceID:     "device-a",
		DeviceName:   "Pixel 9",
		DeviceOS:     "Android 15",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DeviceLinkAutoApproved, result.Status)
	require.Contains(t, repo.devices, "221045")
	assert.Equal(t, "device-a", repo.devices["221045"].DeviceID)
	require.Len(t, repo.resolved, 1)

	approved, err := svc.IsApproved(context.Background(), "221045", "device-a")
	require.NoError(t, err)
	assert.True(t, approved)

	approved, err = svc.IsApproved(context.Background(), "221045", "device-x")
	require.NoError(t, err)
	assert.False(t, approved)
}

func TestRequestLinkSameDeviceConflicts(t *testing.T) {
	repo := newMockDeviceRepo()
	repo.devices["221045"] = &models.StudentDevice{StudentIndex: "221045", DeviceID: "device-a"}
	svc := NewDeviceService(repo, &mockNotifier{}, nil, 6, nil, nil)

	_, err := svc.RequestLink(context.Background(), LinkDeviceRequest{
		StudentIndex: "221045",
		DeviceID:     "device-a",
		DeviceName:   "Pixel 9",
		DeviceOS:     "Android 15",
	})
	assert.ErrorIs(t, err, appErrors.ErrDeviceAlreadyRegistered)
}

func TestRequestLinkNewDeviceGoesPending(t *testing.T) {
	repo := newMockDeviceRepo()
	repo.devices["221045"] = &models.StudentDevice{StudentIndex: "221045", DeviceID: "device-a"}
	svc := NewDeviceService(repo, &mockNotifier{}, nil, 6, nil, nil)

	result, err := svc.RequestLink(context.Background(), LinkDeviceRequest{
		StudentIndex: "221045",
		DeviceID:     "device-b",
		DeviceName:   "Pixel 9",
		DeviceOS:     "Android 15",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DeviceLinkPending, result.Status)
	// Binding untouched until the sweep decides.
	assert.Equal(t, "device-a", repo.devices["221045"].DeviceID)

	// A second ask before resolution overwrites the pending slot.
	again, err := svc.RequestLink(context.Background(), LinkDeviceRequest{
		StudentIndex: "221045",
		DeviceID:     "device-c",
		DeviceName:   "Pixel 9 Pro",
		DeviceOS:     "Android 15",
	})
	require.NoError(t, err)
	assert.Equal(t, result.ID, again.ID)
	assert.Equal(t, "device-c", again.DeviceID)
}

func TestResolvePendingAutoApprovesSingleRequest(t *testing.T) {
	repo := newMockDeviceRepo()
	repo.devices["221045"] = &models.StudentDevice{StudentIndex: "221045", DeviceID: "device-a"}
	repo.pending["221045"] = &models.DeviceLinkRequest{
		ID:           "req-1",
		StudentIndex: "221045",
		DeviceID:     "device-b",
		Status:       models.DeviceLinkPending,
		RequestedAt:  time.Now().UTC(),
	}
	repo.requestCount["221045"] = 1
	notifier := &mockNotifier{}
	svc := NewDeviceService(repo, notifier, nil, 6, nil, nil)

	require.NoError(t, svc.ResolvePending(context.Background()))
	assert.Equal(t, models.DeviceLinkAutoApproved, repo.statuses["req-1"])
	assert.Equal(t, "device-b", repo.devices["221045"].DeviceID)
	assert.Empty(t, notifier.sent)
}

func TestResolvePendingFlagsRepeatRequester(t *testing.T) {
	repo := newMockDeviceRepo()
	repo.devices["221045"] = &models.StudentDevice{StudentIndex: "221045", DeviceID: "device-a"}
	repo.pending["221045"] = &models.DeviceLinkRequest{
		ID:           "req-2",
		StudentIndex: "221045",
		DeviceID:     "device-c",
		DeviceName:   "Pixel 9",
		DeviceOS:     "Android 15",
		Status:       models.DeviceLinkPending,
		RequestedAt:  time.Now().UTC(),
	}
	repo.requestCount["221045"] = 3
	notifier := &mockNotifier{}
	svc := NewDeviceService(repo, notifier, nil, 6, nil, nil)

	require.NoError(t, svc.ResolvePending(context.Background()))
	assert.Equal(t, models.DeviceLinkFlaggedForReview, repo.statuses["req-2"])
	// Binding stays on the old device pending manual review.
	assert.Equal(t, "device-a", repo.devices["221045"].DeviceID)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "221045")
}
