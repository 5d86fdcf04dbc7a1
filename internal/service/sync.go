package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/sms"
)

// LastSyncKey is the config key holding the sync watermark.
const LastSyncKey = "lastSmsSync"

// DefaultMaxCount caps how many messages one sync reads.
const DefaultMaxCount = 200

// Filter selects inbox messages. After is exclusive and Until inclusive.
type Filter struct {
	BodyPattern string
	After       time.Time
	Until       time.Time
	MaxCount    int
}

// MessageSource lists raw messages from an inbox.
type MessageSource interface {
	ListInboxMessages(ctx context.Context, f Filter) ([]sms.Message, error)
}

// SyncResult describes one RunSync call.
type SyncResult struct {
	RunID        string
	Fetched      int
	Inserted     []repository.Transaction
	Skipped      int
	Errors       []error
	Watermark    time.Time
	WatermarkSet bool
}

// SyncService pulls new messages from a source and advances the watermark.
type SyncService struct {
	Config   *repository.ConfigRepo
	Source   MessageSource
	Ingest   *IngestService
	Now      func() time.Time
	MaxCount int
	Log      zerolog.Logger
}

func (s *SyncService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// LastSync returns the stored watermark, or the Unix epoch when none is stored.
func (s *SyncService) LastSync(ctx context.Context) (time.Time, error) {
	v, ok, err := s.Config.Get(ctx, LastSyncKey)
	if err != nil {
		return time.Time{}, fmt.Errorf("read %s: %w", LastSyncKey, err)
	}
	if !ok || v == "" {
		return time.Unix(0, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		s.Log.Warn().Str("value", v).Msg("unparseable sync watermark, starting from epoch")
		return time.Unix(0, 0).UTC(), nil
	}
	return t.UTC(), nil
}

// RunSync fetches messages newer than the watermark and ingests them. The watermark
// moves to the sync start time only when at least one transaction was inserted and
// the stored watermark is not already later.
func (s *SyncService) RunSync(ctx context.Context) (SyncResult, error) {
	res := SyncResult{RunID: uuid.NewString()}
	log := s.Log.With().Str("run_id", res.RunID).Logger()

	last, err := s.LastSync(ctx)
	if err != nil {
		return res, err
	}
	now := s.now()
	limit := s.MaxCount
	if limit <= 0 {
		limit = DefaultMaxCount
	}

	msgs, err := s.Source.ListInboxMessages(ctx, Filter{
		BodyPattern: sms.FinancePattern,
		After:       last,
		Until:       now,
		MaxCount:    limit,
	})
	if err != nil {
		log.Error().Err(err).Msg("sms fetch failed")
		return res, fmt.Errorf("fetch inbox messages: %w", err)
	}
	res.Fetched = len(msgs)

	batch := s.Ingest.InsertBatch(ctx, msgs)
	res.Inserted = batch.Inserted
	res.Skipped = batch.Skipped
	res.Errors = batch.Errors

	res.Watermark = last
	if len(res.Inserted) > 0 {
		// another run may have stored a later watermark while this one was fetching
		wm, advanced, err := s.Config.AdvanceTime(ctx, LastSyncKey, now)
		if err != nil {
			return res, fmt.Errorf("store %s: %w", LastSyncKey, err)
		}
		res.Watermark = wm
		res.WatermarkSet = advanced
	}

	log.Info().
		Time("after", last).
		Time("until", now).
		Int("fetched", res.Fetched).
		Int("inserted", len(res.Inserted)).
		Int("skipped", res.Skipped).
		Int("errors", len(res.Errors)).
		Msg("sms sync complete")
	return res, nil
}
