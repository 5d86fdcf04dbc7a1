package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/berlinbruno/money-trail/internal/database"
	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/insights"
	"github.com/berlinbruno/money-trail/internal/notify"
)

// DefaultUnreadLimit is how many unread notifications are listed when no limit is given.
const DefaultUnreadLimit = 3

// NotificationService persists alert notifications and manages read state. With Dedupe
// set, a notification is not stored again while an identical one is unread.
type NotificationService struct {
	Notifications  *repository.NotificationRepo
	Engine         *insights.Engine
	CurrencySymbol string
	Dedupe         bool
	Now            func() time.Time
	Log            zerolog.Logger
}

func (s *NotificationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return database.Now()
}

// GenerateAlertNotifications evaluates alert progress and stores one notification per
// alert at or above 50%. It returns the stored notifications.
func (s *NotificationService) GenerateAlertNotifications(ctx context.Context) ([]repository.Notification, error) {
	progress, err := s.Engine.AlertProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("alert progress: %w", err)
	}
	now := s.now()
	var stored []repository.Notification
	for _, n := range notify.Build(progress, s.CurrencySymbol) {
		if s.Dedupe {
			dup, err := s.Notifications.ExistsUnread(ctx, n)
			if err != nil {
				return stored, err
			}
			if dup {
				continue
			}
		}
		id, err := s.Notifications.Add(ctx, n, now)
		if err != nil {
			return stored, fmt.Errorf("store notification: %w", err)
		}
		n.ID = id
		n.CreatedAt, n.UpdatedAt = now, now
		stored = append(stored, n)
	}
	s.Log.Info().Int("alerts", len(progress)).Int("notifications", len(stored)).Msg("alert notifications generated")
	return stored, nil
}

// ListUnread returns the newest unread notifications; limit ≤ 0 uses DefaultUnreadLimit.
func (s *NotificationService) ListUnread(ctx context.Context, limit int) ([]repository.Notification, error) {
	if limit <= 0 {
		limit = DefaultUnreadLimit
	}
	return s.Notifications.ListUnread(ctx, limit)
}

// List returns notifications newest first; limit ≤ 0 returns all.
func (s *NotificationService) List(ctx context.Context, limit int) ([]repository.Notification, error) {
	return s.Notifications.List(ctx, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, id int64) error {
	return s.Notifications.SetRead(ctx, id, true, s.now())
}

func (s *NotificationService) MarkUnread(ctx context.Context, id int64) error {
	return s.Notifications.SetRead(ctx, id, false, s.now())
}
