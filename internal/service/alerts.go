package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
	"github.com/berlinbruno/money-trail/internal/insights"
)

// AlertInput carries the fields of a new or edited alert.
type AlertInput struct {
	Type      domain.AlertType `json:"type"`
	Frequency domain.Frequency `json:"frequency"`
	Category  domain.Category  `json:"category"`
	Threshold decimal.Decimal  `json:"threshold"`
}

// AlertService manages alert definitions. An alert is unique within its
// (type, frequency, category).
type AlertService struct {
	Alerts *repository.AlertRepo
	Engine *insights.Engine
	Log    zerolog.Logger
}

func (s *AlertService) validate(in AlertInput) (AlertInput, error) {
	t, err := domain.ParseAlertType(string(in.Type))
	if err != nil {
		return in, err
	}
	in.Type = t
	f, err := domain.ParseFrequency(string(in.Frequency))
	if err != nil {
		return in, err
	}
	in.Frequency = f
	cat, err := domain.ParseCategory(t.TransactionType(), string(in.Category))
	if err != nil {
		return in, err
	}
	in.Category = cat
	if !in.Threshold.IsPositive() {
		return in, fmt.Errorf("%w: %s", domain.ErrInvalidThreshold, in.Threshold)
	}
	return in, nil
}

func (s *AlertService) ensureUnique(ctx context.Context, in AlertInput, self int64) error {
	existing, err := s.Alerts.FindByKey(ctx, in.Type, in.Frequency, in.Category)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return fmt.Errorf("%w: %s %s %q", domain.ErrDuplicateAlert, in.Frequency, in.Type, in.Category)
	}
	return nil
}

// Create validates and stores a new alert.
func (s *AlertService) Create(ctx context.Context, in AlertInput) (*repository.Alert, error) {
	in, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, in, 0); err != nil {
		return nil, err
	}
	id, err := s.Alerts.Insert(ctx, repository.Alert{
		Type:      in.Type,
		Frequency: in.Frequency,
		Category:  in.Category,
		Threshold: in.Threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("insert alert: %w", err)
	}
	s.Log.Info().Int64("id", id).Str("type", string(in.Type)).Str("category", string(in.Category)).Msg("alert created")
	return s.Get(ctx, id)
}

// Update changes the category and threshold of alert id. Type and frequency are fixed.
func (s *AlertService) Update(ctx context.Context, id int64, category domain.Category, threshold decimal.Decimal) (*repository.Alert, error) {
	cur, err := s.Alerts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, repository.ErrNotFound
	}
	in, err := s.validate(AlertInput{Type: cur.Type, Frequency: cur.Frequency, Category: category, Threshold: threshold})
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, in, id); err != nil {
		return nil, err
	}
	if err := s.Alerts.Update(ctx, id, in.Category, in.Threshold); err != nil {
		return nil, fmt.Errorf("update alert %d: %w", id, err)
	}
	return s.Get(ctx, id)
}

func (s *AlertService) Delete(ctx context.Context, id int64) error {
	return s.Alerts.Delete(ctx, id)
}

// Get returns alert id with its current value filled in.
func (s *AlertService) Get(ctx context.Context, id int64) (*repository.Alert, error) {
	a, err := s.Alerts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, repository.ErrNotFound
	}
	if err := s.fill(ctx, a, nil); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns alerts matching f with current values for their windows.
func (s *AlertService) List(ctx context.Context, f repository.AlertFilters) ([]repository.Alert, error) {
	alerts, err := s.Alerts.List(ctx, f)
	if err != nil {
		return nil, err
	}
	cache := make(map[string]decimal.Decimal)
	for i := range alerts {
		if err := s.fill(ctx, &alerts[i], cache); err != nil {
			return nil, err
		}
	}
	return alerts, nil
}

func (s *AlertService) fill(ctx context.Context, a *repository.Alert, cache map[string]decimal.Decimal) error {
	if s.Engine == nil {
		return nil
	}
	key := string(a.Type) + "/" + string(a.Frequency)
	if v, ok := cache[key]; ok {
		a.CurrentValue = v
		return nil
	}
	v, err := s.Engine.TypeTotal(ctx, a.Type.TransactionType(), a.Frequency)
	if err != nil {
		return fmt.Errorf("alert current value: %w", err)
	}
	a.CurrentValue = v
	if cache != nil {
		cache[key] = v
	}
	return nil
}
