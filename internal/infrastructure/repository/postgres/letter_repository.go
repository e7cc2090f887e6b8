package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mkravets/denial-appeals/internal/core/domain"
)

// LetterRepository persists letter state with optimistic concurrency: every
// transition write is a single UPDATE guarded by id AND version, so content
// and status become visible together and a stale writer loses cleanly.
type LetterRepository struct {
	db *sql.DB
}

func NewLetterRepository(db *sql.DB) *LetterRepository {
	return &LetterRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *LetterRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS letters (
	id TEXT PRIMARY KEY,
	user_email TEXT NOT NULL,
	payment_session_id TEXT NOT NULL DEFAULT '',
	payment_status TEXT NOT NULL,
	price_id TEXT NOT NULL DEFAULT '',
	letter_text TEXT NOT NULL DEFAULT '',
	storage_key TEXT NOT NULL DEFAULT '',
	analysis JSONB,
	summary TEXT NOT NULL DEFAULT '',
	ai_response TEXT NOT NULL DEFAULT '',
	error_detail TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	version BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_letters_status ON letters(status);
CREATE INDEX IF NOT EXISTS idx_letters_created_at ON letters(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *LetterRepository) Create(ctx context.Context, letter *domain.LetterRecord) error {
	analysisJSON, err := marshalAnalysis(letter.Analysis)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO letters (
	id, user_email, payment_session_id, payment_status, price_id, letter_text, storage_key,
	analysis, summary, ai_response, error_detail, status, version, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
`,
		letter.ID, letter.UserEmail, letter.PaymentSessionID, string(letter.PaymentStatus),
		letter.PriceID, letter.LetterText, letter.StorageKey, analysisJSON, letter.Summary,
		letter.AIResponse, letter.ErrorDetail, string(letter.Status), letter.Version,
		letter.CreatedAt, letter.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert letter: %w", err)
	}
	return nil
}

func (r *LetterRepository) GetByID(ctx context.Context, id string) (*domain.LetterRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_email, payment_session_id, payment_status, price_id, letter_text, storage_key,
	analysis, summary, ai_response, error_detail, status, version, created_at, updated_at
FROM letters
WHERE id = $1
`, id)

	var letter domain.LetterRecord
	var analysisRaw []byte
	var paymentStatus, status string

	err := row.Scan(
		&letter.ID, &letter.UserEmail, &letter.PaymentSessionID, &paymentStatus, &letter.PriceID,
		&letter.LetterText, &letter.StorageKey, &analysisRaw, &letter.Summary, &letter.AIResponse,
		&letter.ErrorDetail, &status, &letter.Version, &letter.CreatedAt, &letter.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrLetterNotFound, "get letter", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan letter: %w", err)
	}

	if len(analysisRaw) > 0 {
		var analysis domain.Analysis
		if err := json.Unmarshal(analysisRaw, &analysis); err != nil {
			return nil, fmt.Errorf("unmarshal analysis: %w", err)
		}
		letter.Analysis = &analysis
	}
	letter.PaymentStatus = domain.PaymentStatus(paymentStatus)
	letter.Status = domain.LetterStatus(status)
	return &letter, nil
}

func (r *LetterRepository) SaveAnalysis(ctx context.Context, id string, version int64, analysis domain.Analysis, summary string) error {
	analysisJSON, err := marshalAnalysis(&analysis)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE letters
SET analysis = $3, summary = $4, status = $5, error_detail = '', version = version + 1, updated_at = $6
WHERE id = $1 AND version = $2
`, id, version, analysisJSON, summary, string(domain.StatusAnalyzed), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return r.checkGuardedWrite(ctx, id, result, "save analysis")
}

func (r *LetterRepository) SaveResponse(ctx context.Context, id string, version int64, aiResponse string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE letters
SET ai_response = $3, status = $4, error_detail = '', version = version + 1, updated_at = $5
WHERE id = $1 AND version = $2
`, id, version, aiResponse, string(domain.StatusResponded), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save response: %w", err)
	}
	return r.checkGuardedWrite(ctx, id, result, "save response")
}

func (r *LetterRepository) MarkError(ctx context.Context, id string, version int64, detail string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE letters
SET status = $3, error_detail = $4, version = version + 1, updated_at = $5
WHERE id = $1 AND version = $2
`, id, version, string(domain.StatusError), detail, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark error: %w", err)
	}
	return r.checkGuardedWrite(ctx, id, result, "mark error")
}

// UpdatePayment is not version-guarded: payment linkage is independent of the
// lifecycle fields and never races a transition write on the same columns.
func (r *LetterRepository) UpdatePayment(ctx context.Context, id, sessionID string, status domain.PaymentStatus) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE letters
SET payment_session_id = $2, payment_status = $3, updated_at = $4
WHERE id = $1
`, id, sessionID, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payment rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrLetterNotFound, "update payment", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *LetterRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("record store ping: %w", err)
	}
	return nil
}

// checkGuardedWrite distinguishes a missing row from a stale version after a
// zero-row conditional update.
func (r *LetterRepository) checkGuardedWrite(ctx context.Context, id string, result sql.Result, operation string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM letters WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("%s conflict check: %w", operation, err)
	}
	if !exists {
		return domain.WrapError(domain.ErrLetterNotFound, operation, fmt.Errorf("id %s", id))
	}
	return domain.WrapError(domain.ErrConflict, operation, fmt.Errorf("stale version for id %s", id))
}

func marshalAnalysis(analysis *domain.Analysis) ([]byte, error) {
	if analysis == nil {
		return nil, nil
	}
	raw, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis: %w", err)
	}
	return raw, nil
}
