package pg

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	apperrors "recording-whisper/internal/app/errors"
	"recording-whisper/internal/app/model"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	source_file    TEXT NOT NULL,
	source_path    TEXT NOT NULL,
	output_path    TEXT NOT NULL,
	audio_duration DOUBLE PRECISION NOT NULL,
	chunk_count    INTEGER NOT NULL,
	model          TEXT NOT NULL,
	language       TEXT NOT NULL,
	completed_at   TIMESTAMPTZ NOT NULL,
	has_error      BOOLEAN NOT NULL DEFAULT FALSE,
	error_message  TEXT NOT NULL DEFAULT ''
);`

// PostgresDB is the shared run journal backend, selected when a DSN is
// configured.
type PostgresDB struct {
	db *sql.DB
}

func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrDatabaseConnection, "failed to open postgres: %v", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, apperrors.Wrapf(apperrors.ErrDatabaseConnection, "failed to create runs table: %v", err)
	}
	return &PostgresDB{db: db}, nil
}

// newWithDB wires an existing connection, used by tests.
func newWithDB(db *sql.DB) *PostgresDB {
	return &PostgresDB{db: db}
}

func (pdb *PostgresDB) Close() error {
	return pdb.db.Close()
}

func (pdb *PostgresDB) Record(ctx context.Context, rec model.RunRecord) error {
	insertSQL := `INSERT INTO runs (id, source_file, source_path, output_path, audio_duration, chunk_count, model, language, completed_at, has_error, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`
	_, err := pdb.db.ExecContext(ctx, insertSQL,
		rec.ID, rec.SourceFile, rec.SourcePath, rec.OutputPath, rec.AudioDuration,
		rec.ChunkCount, rec.Model, rec.Language, rec.CompletedAt, rec.HasError, rec.ErrorMessage)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrInsertFailed, "failed to record run: %v", err)
	}
	return nil
}

func (pdb *PostgresDB) Recent(ctx context.Context, limit int) ([]model.RunRecord, error) {
	query := `
		SELECT id, source_file, source_path, output_path, audio_duration, chunk_count, model, language, completed_at, has_error, error_message
		FROM runs
		ORDER BY completed_at DESC
		LIMIT $1;`
	rows, err := pdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrQueryFailed, "query failed: %v", err)
	}
	defer rows.Close()

	records := make([]model.RunRecord, 0)
	for rows.Next() {
		var rec model.RunRecord
		err = rows.Scan(&rec.ID, &rec.SourceFile, &rec.SourcePath, &rec.OutputPath, &rec.AudioDuration,
			&rec.ChunkCount, &rec.Model, &rec.Language, &rec.CompletedAt, &rec.HasError, &rec.ErrorMessage)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrQueryFailed, "db scan failed: %v", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrQueryFailed, "rows iteration failed: %v", err)
	}
	return records, nil
}
