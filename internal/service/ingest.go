package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/berlinbruno/money-trail/internal/categorize"
	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
	"github.com/berlinbruno/money-trail/internal/sms"
)

// DefaultAccount labels SMS transactions when no account is configured.
const DefaultAccount = "default"

// IngestService turns inbox messages into pending transactions.
type IngestService struct {
	Transactions   *repository.TransactionRepo
	Parser         sms.MessageParser
	Categorizer    *categorize.Categorizer
	DefaultAccount string
	Log            zerolog.Logger
}

// BatchResult summarizes one InsertBatch call.
type BatchResult struct {
	Inserted []repository.Transaction
	Skipped  int
	Errors   []error
}

func (s *IngestService) parser() sms.MessageParser {
	if s.Parser == nil {
		return sms.RegexParser{}
	}
	return s.Parser
}

func (s *IngestService) categorizer() *categorize.Categorizer {
	if s.Categorizer == nil {
		return categorize.Default()
	}
	return s.Categorizer
}

// InsertMessage parses m and stores it as a pending SMS transaction. It returns nil
// without error when the message is unusable or was already ingested.
func (s *IngestService) InsertMessage(ctx context.Context, m sms.Message) (*repository.Transaction, error) {
	parsed := s.parser().Parse(m.Body)
	if !parsed.Usable() {
		return nil, nil
	}
	hash := m.Fingerprint()
	exists, err := s.Transactions.ExistsBySMSHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("check sms hash: %w", err)
	}
	if exists {
		return nil, nil
	}

	txType := domain.Debit
	if parsed.Type == sms.DirectionCredit {
		txType = domain.Credit
	}
	account := s.DefaultAccount
	if account == "" {
		account = DefaultAccount
	}
	t := repository.Transaction{
		Account:         account,
		Type:            txType,
		Title:           m.Sender,
		Amount:          parsed.Amount,
		Date:            m.Time(),
		Mode:            domain.ModeOther,
		Category:        s.categorizer().ForType(m.Body, txType),
		Source:          domain.SourceSMS,
		PendingApproval: true,
		SMSHash:         &hash,
	}
	id, err := s.Transactions.Insert(ctx, t)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("insert sms transaction: %w", err)
	}
	t.ID = id
	s.Log.Debug().Int64("id", id).Str("sender", m.Sender).Str("type", string(txType)).
		Str("amount", t.Amount.String()).Msg("sms transaction inserted")
	return &t, nil
}

// InsertBatch ingests msgs in order. A failure on one message is collected and the
// batch moves on.
func (s *IngestService) InsertBatch(ctx context.Context, msgs []sms.Message) BatchResult {
	var res BatchResult
	for _, m := range msgs {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, err)
			break
		}
		t, err := s.InsertMessage(ctx, m)
		if err != nil {
			s.Log.Warn().Err(err).Str("sender", m.Sender).Msg("sms ingest failed")
			res.Errors = append(res.Errors, err)
			continue
		}
		if t == nil {
			res.Skipped++
			continue
		}
		res.Inserted = append(res.Inserted, *t)
	}
	return res
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
