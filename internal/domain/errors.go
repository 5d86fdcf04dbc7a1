package domain

import "errors"

var (
	ErrInvalidType          = errors.New("invalid transaction type")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrInvalidMode          = errors.New("invalid transaction mode")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrEmptyTitle           = errors.New("title is required")
	ErrInvalidThreshold     = errors.New("threshold must be greater than zero")
	ErrDuplicateAlert       = errors.New("alert already exists for category")
	ErrUnsupportedPeriod    = errors.New("unsupported period")
	ErrUnsupportedFrequency = errors.New("unsupported frequency")
)
