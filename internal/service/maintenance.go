package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/berlinbruno/money-trail/internal/database"
)

// MaintenanceService houses destructive actions.
type MaintenanceService struct {
	DB  *sql.DB
	Log zerolog.Logger
}

// Reset wipes all user data, including the sync watermark. The schema stays intact.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"notifications",
			"alerts",
			"transactions",
			"config",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, "VACUUM"); err != nil {
		s.Log.Warn().Err(err).Msg("vacuum after reset failed")
	}
	s.Log.Info().Msg("all data reset")
	return nil
}
