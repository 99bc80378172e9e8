// internal/contacts/repository.go
package contacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	apperrors "partner-intake/internal/common/errors"
	"partner-intake/internal/common/logger"
	"partner-intake/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS partner_contacts (
	id                UUID PRIMARY KEY,
	market_type       TEXT NOT NULL,
	target_market     TEXT NOT NULL,
	company_name      TEXT NOT NULL DEFAULT '',
	email             TEXT NOT NULL DEFAULT '',
	form_completed    BOOLEAN NOT NULL DEFAULT FALSE,
	form_completed_at TIMESTAMPTZ,
	answers           JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS partner_contacts_market_idx ON partner_contacts (market_type, target_market);
CREATE INDEX IF NOT EXISTS partner_contacts_incomplete_idx ON partner_contacts (updated_at) WHERE NOT form_completed;
`

// Repository persists contacts in PostgreSQL. Indexed columns are kept next to
// the full questionnaire payload in a JSONB column.
type Repository struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log.Component("contacts"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create partner_contacts schema: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*models.Contact, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewContactNotFoundError(id)
	}

	var (
		contact                            models.Contact
		storedID, marketType, targetMarket string
		answers                            []byte
		completed                          bool
		completedAt                        sql.NullTime
	)
	row := r.db.QueryRowContext(ctx, `
		SELECT id, market_type, target_market, answers, form_completed, form_completed_at
		FROM partner_contacts
		WHERE id = $1`, id)
	if err := row.Scan(&storedID, &marketType, &targetMarket, &answers, &completed, &completedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewContactNotFoundError(id)
		}
		return nil, apperrors.NewContactReadFailedError(err)
	}

	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &contact); err != nil {
			return nil, apperrors.NewContactReadFailedError(fmt.Errorf("decode answers: %w", err))
		}
	}
	contact.ID = storedID
	contact.MarketType = marketType
	contact.TargetMarket = targetMarket
	contact.FormCompleted = completed
	contact.FormCompletedAt = nil
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		contact.FormCompletedAt = &t
	}
	return &contact, nil
}

func (r *Repository) Create(ctx context.Context, contact models.Contact) (string, error) {
	id := uuid.New().String()
	contact.ID = id

	answers, err := json.Marshal(contact)
	if err != nil {
		return "", apperrors.NewContactWriteFailedError(fmt.Errorf("encode answers: %w", err))
	}

	now := r.now()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO partner_contacts (
			id, market_type, target_market, company_name, email,
			form_completed, form_completed_at, answers, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		id,
		contact.MarketType,
		contact.TargetMarket,
		contact.CompanyName,
		contact.Email,
		contact.FormCompleted,
		nullTime(contact.FormCompletedAt),
		answers,
		now,
	)
	if err != nil {
		return "", apperrors.NewContactWriteFailedError(describe(err))
	}

	r.logger.Info("contact created", map[string]interface{}{
		"contactId":    id,
		"marketType":   contact.MarketType,
		"targetMarket": contact.TargetMarket,
	})
	return id, nil
}

func (r *Repository) Update(ctx context.Context, id string, contact models.Contact) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewContactNotFoundError(id)
	}
	contact.ID = id

	answers, err := json.Marshal(contact)
	if err != nil {
		return apperrors.NewContactWriteFailedError(fmt.Errorf("encode answers: %w", err))
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE partner_contacts SET
			market_type = $2,
			target_market = $3,
			company_name = $4,
			email = $5,
			form_completed = $6,
			form_completed_at = $7,
			answers = $8,
			updated_at = $9
		WHERE id = $1`,
		id,
		contact.MarketType,
		contact.TargetMarket,
		contact.CompanyName,
		contact.Email,
		contact.FormCompleted,
		nullTime(contact.FormCompletedAt),
		answers,
		r.now(),
	)
	if err != nil {
		return apperrors.NewContactWriteFailedError(describe(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewContactWriteFailedError(err)
	}
	if affected == 0 {
		return apperrors.NewContactNotFoundError(id)
	}

	r.logger.Info("contact updated", map[string]interface{}{
		"contactId":     id,
		"formCompleted": contact.FormCompleted,
	})
	return nil
}

// ListIncomplete returns contacts that have not finished the questionnaire,
// most recently touched first.
func (r *Repository) ListIncomplete(ctx context.Context, limit int) ([]models.ContactSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, company_name, email, market_type, target_market, form_completed, updated_at
		FROM partner_contacts
		WHERE form_completed = FALSE
		ORDER BY updated_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.NewContactReadFailedError(err)
	}
	defer rows.Close()

	var out []models.ContactSummary
	for rows.Next() {
		var s models.ContactSummary
		if err := rows.Scan(&s.ID, &s.CompanyName, &s.Email, &s.MarketType, &s.TargetMarket, &s.FormCompleted, &s.UpdatedAt); err != nil {
			return nil, apperrors.NewContactReadFailedError(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewContactReadFailedError(err)
	}
	return out, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// describe keeps the postgres error code in the message.
func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("postgres %s (%s): %w", pqErr.Code, pqErr.Code.Name(), err)
	}
	return err
}
