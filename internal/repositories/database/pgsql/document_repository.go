package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EnmanuelOvalles37/consumo-ledger/internal/apperrors"
	"github.com/EnmanuelOvalles37/consumo-ledger/internal/core/domain"
	portsrepo "github.com/EnmanuelOvalles37/consumo-ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxDocumentRepository struct {
	BaseRepository
}

var _ portsrepo.DocumentRepositoryFacade = (*PgxDocumentRepository)(nil)

// newPgxDocumentRepository creates a new repository for billing documents.
func newPgxDocumentRepository(pool *pgxpool.Pool) *PgxDocumentRepository {
	return &PgxDocumentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

const receivableColumns = `receivable_id, company_id, period_from, period_to, total, paid, status, issued_at, due_at, created_at, created_by, last_updated_at, last_updated_by`

func scanReceivable(row pgx.Row) (*domain.ReceivableDocument, error) {
	var d domain.ReceivableDocument
	err := row.Scan(
		&d.ReceivableID,
		&d.CompanyID,
		&d.Period.From,
		&d.Period.To,
		&d.Total,
		&d.Paid,
		&d.Status,
		&d.IssuedAt,
		&d.DueAt,
		&d.CreatedAt,
		&d.CreatedBy,
		&d.LastUpdatedAt,
		&d.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

const payableColumns = `payable_id, provider_id, period_from, period_to, gross, commission_rate, commission, total, paid, status, issued_at, created_at, created_by, last_updated_at, last_updated_by`

func scanPayable(row pgx.Row) (*domain.PayableDocument, error) {
	var d domain.PayableDocument
	err := row.Scan(
		&d.PayableID,
		&d.ProviderID,
		&d.Period.From,
		&d.Period.To,
		&d.Gross,
		&d.CommissionRate,
		&d.Commission,
		&d.Total,
		&d.Paid,
		&d.Status,
		&d.IssuedAt,
		&d.CreatedAt,
		&d.CreatedBy,
		&d.LastUpdatedAt,
		&d.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PgxDocumentRepository) FindReceivableByID(ctx context.Context, receivableID string) (*domain.ReceivableDocument, error) {
	query := `SELECT ` + receivableColumns + ` FROM receivable_documents WHERE receivable_id = $1;`
	doc, err := scanReceivable(r.Pool.QueryRow(ctx, query, receivableID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: receivable %s", apperrors.ErrNotFound, receivableID)
		}
		return nil, fmt.Errorf("failed to find receivable %s: %w", receivableID, err)
	}
	return doc, nil
}

func (r *PgxDocumentRepository) FindLatestReceivableByCompany(ctx context.Context, companyID string) (*domain.ReceivableDocument, error) {
	// Voided documents still bound the billed period, so no status filter.
	query := `
		SELECT ` + receivableColumns + `
		FROM receivable_documents
		WHERE company_id = $1
		ORDER BY period_to DESC
		LIMIT 1;
	`
	doc, err := scanReceivable(r.Pool.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no receivables for company %s", apperrors.ErrNotFound, companyID)
		}
		return nil, fmt.Errorf("failed to find latest receivable for company %s: %w", companyID, err)
	}
	return doc, nil
}

func (r *PgxDocumentRepository) ListReceivables(ctx context.Context, filter portsrepo.DocumentFilter, limit int, offset int) ([]domain.ReceivableDocument, error) {
	query := `
		SELECT ` + receivableColumns + `
		FROM receivable_documents
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR company_id = $2)
		  AND ($3::timestamptz IS NULL OR issued_at >= $3)
		  AND ($4::timestamptz IS NULL OR issued_at <= $4)
		ORDER BY issued_at DESC, receivable_id
		LIMIT $5 OFFSET $6;
	`
	rows, err := r.Pool.Query(ctx, query, string(filter.Status), filter.CompanyID, filter.IssuedFrom, filter.IssuedTo, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list receivables: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.ReceivableDocument, 0)
	for rows.Next() {
		doc, err := scanReceivable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receivable row: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *PgxDocumentRepository) ListEmployeeIDsForReceivable(ctx context.Context, receivableID string) ([]string, error) {
	query := `
		SELECT DISTINCT employee_id
		FROM consumptions
		WHERE receivable_id = $1
		ORDER BY employee_id;
	`
	rows, err := r.Pool.Query(ctx, query, receivableID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees for receivable %s: %w", receivableID, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgxDocumentRepository) CreateReceivableWithConsumptions(ctx context.Context, doc domain.ReceivableDocument, consumptionIDs []string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Serialize cutoffs per company: lock the company row, then re-verify
	// the derived period start against the latest document under that lock.
	// A run whose derivation went stale overlaps and rolls back here.
	var companyID string
	err = tx.QueryRow(ctx, `
		SELECT company_id FROM companies WHERE company_id = $1 FOR UPDATE;
	`, doc.CompanyID).Scan(&companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: company %s", apperrors.ErrNotFound, doc.CompanyID)
		}
		return fmt.Errorf("failed to lock company %s: %w", doc.CompanyID, err)
	}

	var lastPeriodTo *time.Time
	err = tx.QueryRow(ctx, `
		SELECT MAX(period_to) FROM receivable_documents WHERE company_id = $1;
	`, doc.CompanyID).Scan(&lastPeriodTo)
	if err != nil {
		return fmt.Errorf("failed to check billed periods for company %s: %w", doc.CompanyID, err)
	}
	if lastPeriodTo != nil && !lastPeriodTo.Before(doc.Period.From) {
		return fmt.Errorf("%w: period starting %s overlaps billed periods for company %s", apperrors.ErrConflict, doc.Period.From.Format(time.RFC3339), doc.CompanyID)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO receivable_documents (`+receivableColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`,
		doc.ReceivableID,
		doc.CompanyID,
		doc.Period.From,
		doc.Period.To,
		doc.Total,
		doc.Paid,
		doc.Status,
		doc.IssuedAt,
		doc.DueAt,
		doc.CreatedAt,
		doc.CreatedBy,
		doc.LastUpdatedAt,
		doc.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: receivable %s", apperrors.ErrDuplicate, doc.ReceivableID)
		}
		return fmt.Errorf("failed to insert receivable %s: %w", doc.ReceivableID, err)
	}

	// Guarded linking: a consumption reversed or billed since collection
	// does not match, the count check catches it, and the whole transaction
	// rolls back.
	tag, err := tx.Exec(ctx, `
		UPDATE consumptions
		SET receivable_id = $1, last_updated_at = $2, last_updated_by = $3
		WHERE consumption_id = ANY($4) AND reversed = FALSE AND receivable_id IS NULL;
	`, doc.ReceivableID, doc.CreatedAt, doc.CreatedBy, consumptionIDs)
	if err != nil {
		return fmt.Errorf("failed to link consumptions to receivable %s: %w", doc.ReceivableID, err)
	}
	if int(tag.RowsAffected()) != len(consumptionIDs) {
		return fmt.Errorf("%w: linked %d of %d consumptions for receivable %s", apperrors.ErrConflict, tag.RowsAffected(), len(consumptionIDs), doc.ReceivableID)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxDocumentRepository) ApplyReceivablePayment(ctx context.Context, payment domain.Payment) (*domain.ReceivableDocument, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	// Re-read under the row lock and replay the state machine on current
	// data; the service's dry run only produced the early error.
	doc, err := scanReceivable(tx.QueryRow(ctx, `SELECT `+receivableColumns+` FROM receivable_documents WHERE receivable_id = $1 FOR UPDATE;`, payment.DocumentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: receivable %s", apperrors.ErrNotFound, payment.DocumentID)
		}
		return nil, fmt.Errorf("failed to lock receivable %s: %w", payment.DocumentID, err)
	}
	if err := doc.ApplyPayment(payment.Amount); err != nil {
		return nil, err
	}
	doc.LastUpdatedAt = payment.PaidAt
	doc.LastUpdatedBy = payment.RecordedBy

	_, err = tx.Exec(ctx, `
		UPDATE receivable_documents
		SET paid = $2, status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE receivable_id = $1;
	`, doc.ReceivableID, doc.Paid, doc.Status, doc.LastUpdatedAt, doc.LastUpdatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to update receivable %s: %w", doc.ReceivableID, err)
	}

	if err := insertPayment(ctx, tx, payment); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *PgxDocumentRepository) UpdateReceivableStatus(ctx context.Context, receivableID string, status domain.DocumentStatus, userID string, now time.Time) error {
	// Guarded transition: terminal rows do not match.
	tag, err := r.Pool.Exec(ctx, receivableStatusUpdateQuery, receivableID, status, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update receivable %s status: %w", receivableID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: receivable %s not transitionable to %s", apperrors.ErrConflict, receivableID, status)
	}
	return nil
}

const receivableStatusUpdateQuery = `
	UPDATE receivable_documents
	SET status = $2, last_updated_at = $3, last_updated_by = $4
	WHERE receivable_id = $1 AND status NOT IN ('PAID', 'REFINANCED', 'VOIDED');
`

// UpdateReceivableStatusInTx runs the guarded transition inside a
// caller-owned transaction. The refinancing repository uses it so the source
// flip commits together with the refinancing insert.
func (r *PgxDocumentRepository) UpdateReceivableStatusInTx(ctx context.Context, tx pgx.Tx, receivableID string, status domain.DocumentStatus, userID string, now time.Time) error {
	tag, err := tx.Exec(ctx, receivableStatusUpdateQuery, receivableID, status, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update receivable %s status: %w", receivableID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: receivable %s not transitionable to %s", apperrors.ErrConflict, receivableID, status)
	}
	return nil
}

func (r *PgxDocumentRepository) FindPayableByID(ctx context.Context, payableID string) (*domain.PayableDocument, error) {
	query := `SELECT ` + payableColumns + ` FROM payable_documents WHERE payable_id = $1;`
	doc, err := scanPayable(r.Pool.QueryRow(ctx, query, payableID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payable %s", apperrors.ErrNotFound, payableID)
		}
		return nil, fmt.Errorf("failed to find payable %s: %w", payableID, err)
	}
	return doc, nil
}

func (r *PgxDocumentRepository) FindLatestPayableByProvider(ctx context.Context, providerID string) (*domain.PayableDocument, error) {
	query := `
		SELECT ` + payableColumns + `
		FROM payable_documents
		WHERE provider_id = $1
		ORDER BY period_to DESC
		LIMIT 1;
	`
	doc, err := scanPayable(r.Pool.QueryRow(ctx, query, providerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no payables for provider %s", apperrors.ErrNotFound, providerID)
		}
		return nil, fmt.Errorf("failed to find latest payable for provider %s: %w", providerID, err)
	}
	return doc, nil
}

func (r *PgxDocumentRepository) ListPayables(ctx context.Context, filter portsrepo.DocumentFilter, limit int, offset int) ([]domain.PayableDocument, error) {
	query := `
		SELECT ` + payableColumns + `
		FROM payable_documents
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR provider_id = $2)
		  AND ($3::timestamptz IS NULL OR issued_at >= $3)
		  AND ($4::timestamptz IS NULL OR issued_at <= $4)
		ORDER BY issued_at DESC, payable_id
		LIMIT $5 OFFSET $6;
	`
	rows, err := r.Pool.Query(ctx, query, string(filter.Status), filter.ProviderID, filter.IssuedFrom, filter.IssuedTo, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list payables: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.PayableDocument, 0)
	for rows.Next() {
		doc, err := scanPayable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payable row: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

func (r *PgxDocumentRepository) CreatePayableWithConsumptions(ctx context.Context, doc domain.PayableDocument, consumptionIDs []string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Same serialization as the receivable side, keyed on the provider row.
	var providerID string
	err = tx.QueryRow(ctx, `
		SELECT provider_id FROM providers WHERE provider_id = $1 FOR UPDATE;
	`, doc.ProviderID).Scan(&providerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: provider %s", apperrors.ErrNotFound, doc.ProviderID)
		}
		return fmt.Errorf("failed to lock provider %s: %w", doc.ProviderID, err)
	}

	var lastPeriodTo *time.Time
	err = tx.QueryRow(ctx, `
		SELECT MAX(period_to) FROM payable_documents WHERE provider_id = $1;
	`, doc.ProviderID).Scan(&lastPeriodTo)
	if err != nil {
		return fmt.Errorf("failed to check settled periods for provider %s: %w", doc.ProviderID, err)
	}
	if lastPeriodTo != nil && !lastPeriodTo.Before(doc.Period.From) {
		return fmt.Errorf("%w: period starting %s overlaps settled periods for provider %s", apperrors.ErrConflict, doc.Period.From.Format(time.RFC3339), doc.ProviderID)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO payable_documents (`+payableColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`,
		doc.PayableID,
		doc.ProviderID,
		doc.Period.From,
		doc.Period.To,
		doc.Gross,
		doc.CommissionRate,
		doc.Commission,
		doc.Total,
		doc.Paid,
		doc.Status,
		doc.IssuedAt,
		doc.CreatedAt,
		doc.CreatedBy,
		doc.LastUpdatedAt,
		doc.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: payable %s", apperrors.ErrDuplicate, doc.PayableID)
		}
		return fmt.Errorf("failed to insert payable %s: %w", doc.PayableID, err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE consumptions
		SET payable_id = $1, last_updated_at = $2, last_updated_by = $3
		WHERE consumption_id = ANY($4) AND reversed = FALSE AND payable_id IS NULL;
	`, doc.PayableID, doc.CreatedAt, doc.CreatedBy, consumptionIDs)
	if err != nil {
		return fmt.Errorf("failed to link consumptions to payable %s: %w", doc.PayableID, err)
	}
	if int(tag.RowsAffected()) != len(consumptionIDs) {
		return fmt.Errorf("%w: linked %d of %d consumptions for payable %s", apperrors.ErrConflict, tag.RowsAffected(), len(consumptionIDs), doc.PayableID)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxDocumentRepository) ApplyPayablePayment(ctx context.Context, payment domain.Payment) (*domain.PayableDocument, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	doc, err := scanPayable(tx.QueryRow(ctx, `SELECT `+payableColumns+` FROM payable_documents WHERE payable_id = $1 FOR UPDATE;`, payment.DocumentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payable %s", apperrors.ErrNotFound, payment.DocumentID)
		}
		return nil, fmt.Errorf("failed to lock payable %s: %w", payment.DocumentID, err)
	}
	if err := doc.ApplyPayment(payment.Amount); err != nil {
		return nil, err
	}
	doc.LastUpdatedAt = payment.PaidAt
	doc.LastUpdatedBy = payment.RecordedBy

	_, err = tx.Exec(ctx, `
		UPDATE payable_documents
		SET paid = $2, status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE payable_id = $1;
	`, doc.PayableID, doc.Paid, doc.Status, doc.LastUpdatedAt, doc.LastUpdatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to update payable %s: %w", doc.PayableID, err)
	}

	if err := insertPayment(ctx, tx, payment); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *PgxDocumentRepository) UpdatePayableStatus(ctx context.Context, payableID string, status domain.DocumentStatus, userID string, now time.Time) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE payable_documents
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE payable_id = $1 AND status NOT IN ('PAID', 'REFINANCED', 'VOIDED');
	`, payableID, status, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update payable %s status: %w", payableID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: payable %s not transitionable to %s", apperrors.ErrConflict, payableID, status)
	}
	return nil
}

const paymentColumns = `payment_id, document_id, document_kind, amount, method, reference, recorded_by, paid_at, created_at, created_by, last_updated_at, last_updated_by`

// insertPayment records the immutable payment row inside the caller's
// transaction.
func insertPayment(ctx context.Context, tx pgx.Tx, payment domain.Payment) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`,
		payment.PaymentID,
		payment.DocumentID,
		payment.DocumentKind,
		payment.Amount,
		payment.Method,
		payment.Reference,
		payment.RecordedBy,
		payment.PaidAt,
		payment.CreatedAt,
		payment.CreatedBy,
		payment.LastUpdatedAt,
		payment.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: payment %s", apperrors.ErrDuplicate, payment.PaymentID)
		}
		return fmt.Errorf("failed to insert payment %s: %w", payment.PaymentID, err)
	}
	return nil
}

func (r *PgxDocumentRepository) ListPaymentsByDocument(ctx context.Context, documentID string, kind domain.DocumentKind) ([]domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE document_id = $1 AND document_kind = $2
		ORDER BY paid_at, payment_id;
	`
	rows, err := r.Pool.Query(ctx, query, documentID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for document %s: %w", documentID, err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		var p domain.Payment
		err := rows.Scan(
			&p.PaymentID,
			&p.DocumentID,
			&p.DocumentKind,
			&p.Amount,
			&p.Method,
			&p.Reference,
			&p.RecordedBy,
			&p.PaidAt,
			&p.CreatedAt,
			&p.CreatedBy,
			&p.LastUpdatedAt,
			&p.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
