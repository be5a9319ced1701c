package infra

import (
	"context"
	"database/sql"
	"time"

	"github.com/Vovarama1992/voice_translator/internal/ports"
)

const runsSchema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id              BIGSERIAL PRIMARY KEY,
	session_id      TEXT        NOT NULL,
	source_lang     TEXT        NOT NULL,
	target_lang     TEXT        NOT NULL,
	transcript      TEXT        NOT NULL DEFAULT '',
	translated_text TEXT        NOT NULL DEFAULT '',
	status          TEXT        NOT NULL,
	failed_stage    TEXT        NOT NULL DEFAULT '',
	error_text      TEXT        NOT NULL DEFAULT '',
	audio_url       TEXT,
	created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS pipeline_runs_session_idx ON pipeline_runs (session_id, created_at DESC);
`

type runRepo struct {
	db *sql.DB
}

func NewRunRepo(db *sql.DB) ports.RunRepo {
	return &runRepo{db: db}
}

// EnsureRunsSchema создаёт таблицу истории, если её ещё нет.
func EnsureRunsSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, runsSchema)
	return err
}

func (r *runRepo) Create(ctx context.Context, run ports.Run) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO pipeline_runs
			(session_id, source_lang, target_lang, transcript, translated_text,
			 status, failed_stage, error_text, audio_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		run.SessionID, run.SourceLang, run.TargetLang, run.Transcript, run.TranslatedText,
		run.Status, run.FailedStage, run.Error, run.AudioURL, run.CreatedAt,
	).Scan(&id)
	return id, err
}

func (r *runRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]ports.Run, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, source_lang, target_lang, transcript, translated_text,
		       status, failed_stage, error_text, audio_url, created_at
		FROM pipeline_runs
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ports.Run
	for rows.Next() {
		var run ports.Run
		if err := rows.Scan(
			&run.ID,
			&run.SessionID,
			&run.SourceLang,
			&run.TargetLang,
			&run.Transcript,
			&run.TranslatedText,
			&run.Status,
			&run.FailedStage,
			&run.Error,
			&run.AudioURL,
			&run.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
