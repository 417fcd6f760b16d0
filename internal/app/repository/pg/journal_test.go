package pg

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "recording-whisper/internal/app/errors"
	"recording-whisper/internal/app/model"
	"recording-whisper/internal/app/repository"
)

func TestPostgresDB_Interface(t *testing.T) {
	var _ repository.RunDAO = (*PostgresDB)(nil)
}

func testRecord() model.RunRecord {
	return model.RunRecord{
		ID:            "2f6d8a1e-0000-4000-8000-000000000001",
		SourceFile:    "meeting.mp3",
		SourcePath:    "/audio/meeting.mp3",
		OutputPath:    "transcripts/transcript_20240314_092653.txt",
		AudioDuration: 3000,
		ChunkCount:    3,
		Model:         "gpt-4o-transcribe",
		Language:      "ja",
		CompletedAt:   time.Date(2024, 3, 14, 9, 31, 2, 0, time.UTC),
		HasError:      false,
		ErrorMessage:  "",
	}
}

func TestPostgresDB_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	pdb := newWithDB(db)
	rec := testRecord()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO runs")).
		WithArgs(rec.ID, rec.SourceFile, rec.SourcePath, rec.OutputPath, rec.AudioDuration,
			rec.ChunkCount, rec.Model, rec.Language, rec.CompletedAt, rec.HasError, rec.ErrorMessage).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = pdb.Record(context.Background(), rec)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDB_RecordFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	pdb := newWithDB(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO runs")).
		WillReturnError(errors.New("connection reset"))

	err = pdb.Record(context.Background(), testRecord())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInsertFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDB_Recent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	pdb := newWithDB(db)
	rec := testRecord()

	rows := sqlmock.NewRows([]string{
		"id", "source_file", "source_path", "output_path", "audio_duration",
		"chunk_count", "model", "language", "completed_at", "has_error", "error_message",
	}).AddRow(rec.ID, rec.SourceFile, rec.SourcePath, rec.OutputPath, rec.AudioDuration,
		rec.ChunkCount, rec.Model, rec.Language, rec.CompletedAt, rec.HasError, rec.ErrorMessage)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, source_file")).
		WithArgs(10).
		WillReturnRows(rows)

	records, err := pdb.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec, records[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDB_RecentQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	pdb := newWithDB(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, source_file")).
		WillReturnError(errors.New("relation does not exist"))

	_, err = pdb.Recent(context.Background(), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrQueryFailed)
}

func TestPostgresDB_Close(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	pdb := newWithDB(db)
	mock.ExpectClose()

	assert.NoError(t, pdb.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
