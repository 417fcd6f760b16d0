package repository

import (
	"context"

	"recording-whisper/internal/app/model"
)

// RunDAO is the run journal: one row per transcription invocation, success
// or failure. Journal writes are additive; the orchestrator downgrades their
// errors to warnings.
type RunDAO interface {
	Close() error

	Record(ctx context.Context, rec model.RunRecord) error

	Recent(ctx context.Context, limit int) ([]model.RunRecord, error)
}

// NoopDAO is used when no journal backend could be opened.
type NoopDAO struct{}

func (NoopDAO) Close() error { return nil }

func (NoopDAO) Record(context.Context, model.RunRecord) error { return nil }

func (NoopDAO) Recent(context.Context, int) ([]model.RunRecord, error) { return nil, nil }
