package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	apperrors "recording-whisper/internal/app/errors"
	"recording-whisper/internal/app/model"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	source_file    TEXT NOT NULL,
	source_path    TEXT NOT NULL,
	output_path    TEXT NOT NULL,
	audio_duration REAL NOT NULL,
	chunk_count    INTEGER NOT NULL,
	model          TEXT NOT NULL,
	language       TEXT NOT NULL,
	completed_at   TIMESTAMP NOT NULL,
	has_error      INTEGER NOT NULL DEFAULT 0,
	error_message  TEXT NOT NULL DEFAULT ''
);`

// SQLiteDB is the local run journal backend.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) the journal database and its schema.
func NewSQLiteDB(dbFilePath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc", dbFilePath))
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrDatabaseConnection, "failed to open %s: %v", dbFilePath, err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, apperrors.Wrapf(apperrors.ErrDatabaseConnection, "failed to create runs table: %v", err)
	}
	return &SQLiteDB{db: db}, nil
}

func (sdb *SQLiteDB) Close() error {
	return sdb.db.Close()
}

func (sdb *SQLiteDB) Record(ctx context.Context, rec model.RunRecord) error {
	insertSQL := `INSERT INTO runs (id, source_file, source_path, output_path, audio_duration, chunk_count, model, language, completed_at, has_error, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	_, err := sdb.db.ExecContext(ctx, insertSQL,
		rec.ID, rec.SourceFile, rec.SourcePath, rec.OutputPath, rec.AudioDuration,
		rec.ChunkCount, rec.Model, rec.Language, rec.CompletedAt, boolToInt(rec.HasError), rec.ErrorMessage)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrInsertFailed, "failed to record run: %v", err)
	}
	return nil
}

func (sdb *SQLiteDB) Recent(ctx context.Context, limit int) ([]model.RunRecord, error) {
	query := `
		SELECT id, source_file, source_path, output_path, audio_duration, chunk_count, model, language, completed_at, has_error, error_message
		FROM runs
		ORDER BY completed_at DESC
		LIMIT ?;`
	rows, err := sdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrQueryFailed, "query failed: %v", err)
	}
	defer rows.Close()

	records := make([]model.RunRecord, 0)
	for rows.Next() {
		var rec model.RunRecord
		var hasError int
		err = rows.Scan(&rec.ID, &rec.SourceFile, &rec.SourcePath, &rec.OutputPath, &rec.AudioDuration,
			&rec.ChunkCount, &rec.Model, &rec.Language, &rec.CompletedAt, &hasError, &rec.ErrorMessage)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrQueryFailed, "db scan failed: %v", err)
		}
		rec.HasError = hasError != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrQueryFailed, "rows iteration failed: %v", err)
	}
	return records, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
