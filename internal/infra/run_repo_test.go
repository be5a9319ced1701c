package infra

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/voice_translator/internal/ports"
)

var runColumns = []string{
	"id", "session_id", "source_lang", "target_lang", "transcript", "translated_text",
	"status", "failed_stage", "error_text", "audio_url", "created_at",
}

func TestEnsureRunsSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS pipeline_runs`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureRunsSchema(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	url := "https://s3.example/out.mp3"
	created := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO pipeline_runs`)).
		WithArgs("s1", "Hindi", "Tamil", "नमस्ते", "வணக்கம்",
			ports.RunStatusSucceeded, "", "", url, created).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := NewRunRepo(db).Create(context.Background(), ports.Run{
		SessionID:      "s1",
		SourceLang:     "Hindi",
		TargetLang:     "Tamil",
		Transcript:     "नमस्ते",
		TranslatedText: "வணக்கம்",
		Status:         ports.RunStatusSucceeded,
		AudioURL:       &url,
		CreatedAt:      created,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepo_CreateFillsTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO pipeline_runs`)).
		WithArgs("s1", "Hindi", "Tamil", "", "",
			ports.RunStatusFailed, "transcribe", "Error: boom", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	_, err = NewRunRepo(db).Create(context.Background(), ports.Run{
		SessionID:   "s1",
		SourceLang:  "Hindi",
		TargetLang:  "Tamil",
		Status:      ports.RunStatusFailed,
		FailedStage: "transcribe",
		Error:       "Error: boom",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepo_ListBySession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	newer := time.Date(2026, 10, 19, 12, 5, 0, 0, time.UTC)
	older := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(runColumns).
		AddRow(2, "s1", "Hindi", "Tamil", "a", "b", "succeeded", "", "", "https://s3.example/x.mp3", newer).
		AddRow(1, "s1", "Hindi", "Tamil", "a", "", "failed", "translate", "Error: boom", nil, older)

	mock.ExpectQuery(`FROM pipeline_runs\s+WHERE session_id = \$1\s+ORDER BY created_at DESC\s+LIMIT \$2`).
		WithArgs("s1", 20).
		WillReturnRows(rows)

	runs, err := NewRunRepo(db).ListBySession(context.Background(), "s1", 20)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, int64(2), runs[0].ID)
	assert.Equal(t, ports.RunStatusSucceeded, runs[0].Status)
	require.NotNil(t, runs[0].AudioURL)
	assert.Equal(t, "https://s3.example/x.mp3", *runs[0].AudioURL)
	assert.Equal(t, newer, runs[0].CreatedAt)

	assert.Equal(t, int64(1), runs[1].ID)
	assert.Equal(t, "translate", runs[1].FailedStage)
	assert.Equal(t, "Error: boom", runs[1].Error)
	assert.Nil(t, runs[1].AudioURL)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepo_ListEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM pipeline_runs`).
		WithArgs("nobody", 20).
		WillReturnRows(sqlmock.NewRows(runColumns))

	runs, err := NewRunRepo(db).ListBySession(context.Background(), "nobody", 20)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
