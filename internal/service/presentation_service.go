package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/edupulse/presence-api/internal/models"
	appErrors "github.com/edupulse/presence-api/pkg/errors"
)

// PresentationService keeps per-occurrence slide deck links in Redis with a
// bounded TTL. Links are ephemeral classroom state; nothing touches Postgres.
type PresentationService struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewPresentationService constructs the presentation service.
func NewPresentationService(client *redis.Client, ttl time.Duration, logger *zap.Logger) *PresentationService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresentationService{client: client, ttl: ttl, logger: logger}
}

func presentationKey(occurrenceID string) string {
	return fmt.Sprintf("presentation:%s", occurrenceID)
}

// Publish stores the link for an occurrence, replacing any previous one.
func (s *PresentationService) Publish(ctx context.Context, occurrenceID, url, uploadedBy string) (*models.PresentationLink, error) {
	if url == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "presentation url is required")
	}
	link := &models.PresentationLink{
		OccurrenceID: occurrenceID,
		URL:          url,
		UploadedBy:   uploadedBy,
		CachedAt:     time.Now().UTC(),
	}
	payload, err := json.Marshal(link)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode presentation link")
	}
	if err := s.client.Set(ctx, presentationKey(occurrenceID), payload, s.ttl).Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "store presentation link")
	}
	return link, nil
}

// Get returns the current link for an occurrence, if any.
func (s *PresentationService) Get(ctx context.Context, occurrenceID string) (*models.PresentationLink, error) {
	raw, err := s.client.Get(ctx, presentationKey(occurrenceID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no presentation published for this occurrence")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load presentation link")
	}
	var link models.PresentationLink
	if err := json.Unmarshal(raw, &link); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decode presentation link")
	}
	return &link, nil
}

// Remove drops the link before its TTL runs out.
func (s *PresentationService) Remove(ctx context.Context, occurrenceID string) error {
	if err := s.client.Del(ctx, presentationKey(occurrenceID)).Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "remove presentation link")
	}
	return nil
}
