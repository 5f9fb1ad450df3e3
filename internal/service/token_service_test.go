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

type mockOccurrenceRepo struct {
	occurrences map[string]*models.ClassOccurrence
	byToken     map[string]*models.ClassOccurrence
	setTokens   []string
}

func (m *mockOccurrenceRepo) GetByID(ctx context.Context, id string) (*models.ClassOccurrence, error) {
	if occ, ok := m.occurrences[id]; ok {
		return occ, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockOccurrenceRepo) FindByToken(ctx context.Context, secret string) (*models.ClassOccurrence, error) {
	if occ, ok := m.byToken[secret]; ok {
		return occ, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockOccurrenceRepo) SetToken(ctx context.Context, occurrenceID, secret string, expiresAt time.Time) error {
	m.setTokens = append(m.setTokens, secret)
	occ := m.occurrences[occurrenceID]
	occ.Token = &secret
	occ.TokenExpires = &expiresAt
	if m.byToken == nil {
		m.byToken = make(map[string]*models.ClassOccurrence)
	}
	m.byToken[secret] = occ
	return nil
}

type mockResetRepo struct {
	resets []string
}

func (m *mockResetRepo) ResetPendingForOccurrence(ctx context.Context, occurrenceID string) error {
	m.resets = append(m.resets, occurrenceID)
	return nil
}

func TestTokenServiceIssueResetsPendingAndStoresSecret(t *testing.T) {
	occRepo := &mockOccurrenceRepo{occurrences: map[string]*models.ClassOccurrence{
		"occ-1": {ID: "occ-1", RoomID: "room-1"},
	}}
	resets := &mockResetRepo{}
	svc := NewTokenService(occRepo, resets, 5*time.Minute, nil, nil)

	token, err := svc.Issue(context.Background(), "occ-1")
	require.NoError(t, err)
	assert.Equal(t, "occ-1", token.OccurrenceID)
	assert.NotEmpty(t, token.Secret)
	assert.WithinDuration(t, token.IssuedAt.Add(5*time.Minute), token.ExpiresAt, time.Second)
	assert.Equal(t, []string{"occ-1"}, resets.resets)
	require.Len(t, occRepo.setTokens, 1)

	// Reissue replaces the secret and resets pending rows again.
	second, err := svc.Issue(context.Background(), "occ-1")
	require.NoError(t, err)
	assert.NotEqual(t, token.Secret, second.Secret)
	assert.Len(t, resets.resets, 2)
}

func TestTokenServiceIssueUnknownOccurrence(t *testing.T) {
	svc := NewTokenService(&mockOccurrenceRepo{}, &mockResetRepo{}, 5*time.Minute, nil, nil)

	_, err := svc.Issue(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTokenServiceValidate(t *testing.T) {
	occRepo := &mockOccurrenceRepo{occurrences: map[string]*models.ClassOccurrence{
		"occ-1": {ID: "occ-1", RoomID: "room-1"},
	}}
	svc := NewTokenService(occRepo, &mockResetRepo{}, 5*time.Minute, nil, nil)

	token, err := svc.Issue(context.Background(), "occ-1")
	require.NoError(t, err)

	occ, err := svc.Validate(context.Background(), token.Secret)
	require.NoError(t, err)
	assert.Equal(t, "occ-1", occ.ID)

	_, err = svc.Validate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	_, err = svc.Validate(context.Background(), "")
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestTokenServiceValidateExpired(t *testing.T) {
	expired := time.Now().Add(-time.Minute)
	secret := "stale-secret"
	occ := &models.ClassOccurrence{ID: "occ-1", Token: &secret, TokenExpires: &expired}
	occRepo := &mockOccurrenceRepo{
		occurrences: map[string]*models.ClassOccurrence{"occ-1": occ},
		byToken:     map[string]*models.ClassOccurrence{secret: occ},
	}
	svc := NewTokenService(occRepo, &mockResetRepo{}, 5*time.Minute, nil, nil)

	_, err := svc.Validate(context.Background(), secret)
	assert.ErrorIs(t, err, appErrors.ErrExpiredToken)
}
